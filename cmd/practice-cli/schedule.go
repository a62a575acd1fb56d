package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "管理练习计划",
	}
	cmd.AddCommand(scheduleAddCmd(), scheduleListCmd(), scheduleDeleteCmd())
	return cmd
}

func scheduleAddCmd() *cobra.Command {
	var slots []string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "新增练习计划",
		Long: `每个 --slot 描述一个时间槽，格式为 "分组:分钟" 或 "分钟"（不限分组），例如：
  practice schedule add Weekday --slot Warm-ups:5 --slot Etudes:20 --slot 10`,
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sched := &schema.Schedule{Name: args[0]}
			for _, arg := range slots {
				slot, err := parseSlot(arg, func(ref string) (int64, error) {
					return resolveGroup(ctx, ref)
				})
				if err != nil {
					return err
				}
				sched.Slots = append(sched.Slots, slot)
			}
			id, err := practice().AddSchedule(ctx, sched)
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已新增练习计划 %s (id=%d, %d 分钟)\n", sched.Name, id, sched.TotalSeconds()/60)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&slots, "slot", "s", nil, "时间槽，格式 分组:分钟 或 分钟")
	return cmd
}

// parseSlot 解析 "分组:分钟" 或 "分钟"
func parseSlot(arg string, resolve func(ref string) (int64, error)) (schema.Slot, error) {
	var slot schema.Slot
	groupRef, minutesStr := "", arg
	if i := strings.LastIndex(arg, ":"); i >= 0 {
		groupRef, minutesStr = arg[:i], arg[i+1:]
	}
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil {
		return slot, fmt.Errorf("无效的时间槽: %s", arg)
	}
	slot.DurationInSecs = minutes * 60
	if groupRef != "" {
		id, err := resolve(groupRef)
		if err != nil {
			return slot, err
		}
		slot.GroupID = schema.Int64Ptr(id)
	}
	return slot, nil
}

func scheduleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部练习计划",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schedules, err := practice().ListSchedules(ctx)
			if err != nil {
				return err
			}
			names, err := groupNames(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("🗓  练习计划 (%d)\n", len(schedules))
			for _, sched := range schedules {
				fmt.Printf("  • [%d] %s  %d 分钟\n", sched.ID, sched.Name, sched.TotalSeconds()/60)
				for _, slot := range sched.Slots {
					fmt.Printf("      - %s  %d 分钟\n", slotGroupName(slot, names), slot.DurationInSecs/60)
				}
			}
			return nil
		},
	}
}

func scheduleDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <schedule>",
		Short:   "删除练习计划",
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveSchedule(ctx, args[0])
			if err != nil {
				return err
			}
			if err := practice().DeleteSchedule(ctx, id); err != nil {
				return err
			}
			fmt.Printf("✅ 已删除练习计划 %s\n", args[0])
			return nil
		},
	}
}

func slotGroupName(slot schema.Slot, names map[int64]string) string {
	if slot.GroupID == nil {
		return "任意"
	}
	return joinGroupNames([]int64{*slot.GroupID}, names)
}
