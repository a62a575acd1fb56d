package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuqie6/SkillPractice/internal/schema"
	"github.com/yuqie6/SkillPractice/internal/service"
)

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "管理技能分组",
	}
	cmd.AddCommand(groupAddCmd(), groupListCmd(), groupUpdateCmd(), groupReplaceCmd(), groupDeleteCmd(), groupAncestorsCmd())
	return cmd
}

func groupAddCmd() *cobra.Command {
	var parents []string
	var id int64
	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "新增分组（默认以名称指纹作为 ID）",
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parentIDs, err := resolveGroups(ctx, parents)
			if err != nil {
				return err
			}
			group := service.NewSkillGroup(args[0], parentIDs...)
			if cmd.Flags().Changed("id") {
				group.ID = schema.Int64Ptr(id)
			}
			if err := practice().AddGroup(ctx, group); err != nil {
				return err
			}
			fmt.Printf("✅ 已新增分组 %s (id=%d)\n", group.Name, group.GroupID())
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&parents, "parent", "p", nil, "父分组（ID 或名称，可重复）")
	cmd.Flags().Int64Var(&id, "id", 0, "指定分组 ID")
	return cmd
}

func groupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出全部分组",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			groups, err := practice().ListGroups(ctx)
			if err != nil {
				return err
			}
			names, err := groupNames(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("📁 分组 (%d)\n", len(groups))
			for _, g := range groups {
				fmt.Printf("  • %s [%d]", g.Name, g.GroupID())
				if len(g.ParentIDs) > 0 {
					fmt.Printf(" ← %s", joinGroupNames(g.ParentIDs, names))
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func groupUpdateCmd() *cobra.Command {
	var name string
	var parents []string
	cmd := &cobra.Command{
		Use:     "update <group>",
		Short:   "修改分组名称或父分组",
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := practice()
			id, err := resolveGroup(ctx, args[0])
			if err != nil {
				return err
			}
			group, err := svc.GetGroup(ctx, id)
			if err != nil {
				return err
			}
			if name != "" {
				group.Name = name
			}
			if cmd.Flags().Changed("parent") {
				if group.ParentIDs, err = resolveGroups(ctx, parents); err != nil {
					return err
				}
			}
			if err := svc.UpdateGroup(ctx, group); err != nil {
				return err
			}
			fmt.Printf("✅ 已更新分组 %s\n", group.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "新名称")
	cmd.Flags().StringSliceVarP(&parents, "parent", "p", nil, "父分组（覆盖原有父分组；传空字符串清空）")
	return cmd
}

func groupReplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "replace <old> <new>",
		Short:   "将所有对 old 的引用改为 new",
		Args:    cobra.ExactArgs(2),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			oldID, err := resolveGroup(ctx, args[0])
			if err != nil {
				return err
			}
			newID, err := resolveGroup(ctx, args[1])
			if err != nil {
				return err
			}
			stats, err := practice().ReplaceGroup(ctx, oldID, &newID)
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已替换: 技能 %d, 分组 %d, 练习计划 %d\n", stats.Skills, stats.Groups, stats.Schedules)
			return nil
		},
	}
}

func groupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <group>",
		Short:   "删除分组并移除所有引用",
		Args:    cobra.ExactArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveGroup(ctx, args[0])
			if err != nil {
				return err
			}
			if err := practice().DeleteGroup(ctx, id); err != nil {
				return err
			}
			fmt.Printf("✅ 已删除分组 %s\n", args[0])
			return nil
		},
	}
}

func groupAncestorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ancestors <group>",
		Short: "查看分组的全部祖先",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveGroup(ctx, args[0])
			if err != nil {
				return err
			}
			ancestors, err := practice().AncestorsOf(id)
			if err != nil {
				return err
			}
			if ancestors == nil {
				fmt.Println("（根分组，没有祖先）")
				return nil
			}
			names, err := groupNames(ctx)
			if err != nil {
				return err
			}
			fmt.Println(joinGroupNames(ancestors.Sorted(), names))
			return nil
		},
	}
}

func joinGroupNames(ids []int64, names map[int64]string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("#%d", id))
		}
	}
	return strings.Join(parts, ", ")
}
