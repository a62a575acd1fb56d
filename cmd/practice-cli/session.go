package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/service"
)

func sessionCmd() *cobra.Command {
	var weight float64
	cmd := &cobra.Command{
		Use:   "session <schedule>",
		Short: "按练习计划抽取一次练习会话",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSchedule(ctx, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("staleness") {
				weight = core.StalenessWeight()
			}
			session, err := practice().SampleSession(ctx, id, weight)
			if err != nil {
				return err
			}
			return printSession(ctx, session)
		},
	}
	cmd.Flags().Float64VarP(&weight, "staleness", "w", 0, "取舍系数 0-1，缺省使用配置")
	return cmd
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <schedule>...",
		Short: "为多个练习计划各抽取一次会话",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids := make([]int64, 0, len(args))
			for _, ref := range args {
				id, err := resolveSchedule(ctx, ref)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			sessions, err := practice().PlanSessions(ctx, ids, core.StalenessWeight())
			if err != nil {
				return err
			}
			for i, session := range sessions {
				if i > 0 {
					fmt.Println()
				}
				if err := printSession(ctx, session); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <schedule>",
		Short: "持续监听配置与数据变化并重新抽取会话（Ctrl+C 退出）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSchedule(ctx, args[0])
			if err != nil {
				return err
			}
			events := core.Hub.Subscribe(ctx, 16)
			if err := core.WatchConfig(ctx); err != nil {
				return err
			}

			sample := func() error {
				session, err := practice().SampleSession(ctx, id, core.StalenessWeight())
				if err != nil {
					return err
				}
				fmt.Printf("\n⏱  %s\n", time.Now().Format("15:04:05"))
				return printSession(ctx, session)
			}
			if err := sample(); err != nil {
				return err
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case evt, ok := <-events:
					if !ok {
						return nil
					}
					if evt.Type != eventbus.ConfigReloaded {
						continue
					}
					if err := sample(); err != nil {
						return err
					}
				}
			}
		},
	}
}

func printSession(ctx context.Context, session *service.Session) error {
	names, err := groupNames(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("🎵 %s (%d 分钟)\n", session.Schedule.Name, session.Schedule.TotalSeconds()/60)
	for i := range session.Slots {
		slot := &session.Slots[i]
		label := slotGroupName(slot.Slot, names)
		if !slot.Filled() {
			fmt.Printf("  %d. [%s] %d 分钟  （未分配）\n", i+1, label, slot.Slot.DurationInSecs/60)
			continue
		}
		fmt.Printf("  %d. [%s] %d 分钟  %s (%s)\n", i+1, label, slot.Slot.DurationInSecs/60,
			slot.Skill.Name, service.FormatLastPracticed(slot.Skill, time.Now()))
	}
	return nil
}
