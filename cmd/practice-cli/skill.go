package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/SkillPractice/internal/schema"
	"github.com/yuqie6/SkillPractice/internal/service"
)

func skillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skill",
		Short: "管理技能",
	}
	cmd.AddCommand(skillAddCmd(), skillListCmd(), skillDeleteCmd(), skillPracticeCmd())
	return cmd
}

func skillAddCmd() *cobra.Command {
	var priority int
	var groups []string
	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "新增技能",
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			groupIDs, err := resolveGroups(ctx, groups)
			if err != nil {
				return err
			}
			skill := schema.NewSkill(args[0], groupIDs...)
			skill.Priority = priority
			id, err := practice().AddSkill(ctx, skill)
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已新增技能 %s (id=%d)\n", skill.Name, id)
			return nil
		},
	}
	cmd.Flags().IntVarP(&priority, "priority", "p", schema.DefaultPriority, "优先级 1-10")
	cmd.Flags().StringSliceVarP(&groups, "group", "g", nil, "所属分组（ID 或名称，可重复）")
	return cmd
}

func skillListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部技能",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			skills, err := practice().ListSkills(ctx)
			if err != nil {
				return err
			}
			names, err := groupNames(ctx)
			if err != nil {
				return err
			}
			now := time.Now()
			fmt.Printf("🎯 技能 (%d)\n", len(skills))
			for i := range skills {
				s := &skills[i]
				fmt.Printf("  • [%d] %s  P%d  %s  累计 %s", s.ID, s.Name, s.Priority,
					service.FormatLastPracticed(s, now), service.FormatPracticed(s.SecondsPracticed))
				if len(s.GroupIDs) > 0 {
					fmt.Printf("  (%s)", joinGroupNames(s.GroupIDs, names))
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func skillDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "删除技能",
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := practice().DeleteSkill(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("✅ 已删除技能 %d\n", id)
			return nil
		},
	}
}

func skillPracticeCmd() *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:     "practice <id>",
		Short:   "记录一次练习",
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			skill, err := practice().RecordPractice(cmd.Context(), id, int64(minutes)*60)
			if err != nil {
				return err
			}
			fmt.Printf("✅ %s 累计练习 %s\n", skill.Name, service.FormatPracticed(skill.SecondsPracticed))
			return nil
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", schema.DefaultSlotDurationSecs/60, "练习分钟数")
	return cmd
}
