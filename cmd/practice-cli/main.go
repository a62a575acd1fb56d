package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yuqie6/SkillPractice/internal/bootstrap"
	"github.com/yuqie6/SkillPractice/internal/service"
)

// skipCore 标记不需要打开数据库的命令
const skipCore = "skip-core"

var (
	cfgFile string
	core    *bootstrap.Core
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "practice",
		Short:         "SkillPractice - 技能练习计划与会话抽取",
		Long:          `SkillPractice 管理技能、技能分组（有向无环图）与练习计划，并按优先级和近期练习量抽取练习会话。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipCore] != "" {
				return nil
			}
			var err error
			core, err = bootstrap.NewCore(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("初始化失败: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	// 添加子命令
	rootCmd.AddCommand(groupCmd())
	rootCmd.AddCommand(skillCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func practice() *service.PracticeService {
	return core.Services.Practice
}

// writable 写命令的前置检查
func writable(cmd *cobra.Command, args []string) error {
	return core.RequireWritable()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的 ID: %s", s)
	}
	return id, nil
}

// resolveGroup 按 ID 或名称查找分组
func resolveGroup(ctx context.Context, ref string) (int64, error) {
	svc := practice()
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && svc.IsValidGroupID(id) {
		return id, nil
	}
	groups, err := svc.ListGroups(ctx)
	if err != nil {
		return 0, err
	}
	for i := range groups {
		if groups[i].Name == ref {
			return groups[i].GroupID(), nil
		}
	}
	return 0, fmt.Errorf("分组不存在: %s", ref)
}

func resolveGroups(ctx context.Context, refs []string) ([]int64, error) {
	out := make([]int64, 0, len(refs))
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		id, err := resolveGroup(ctx, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// resolveSchedule 按 ID 或名称查找练习计划
func resolveSchedule(ctx context.Context, ref string) (int64, error) {
	schedules, err := practice().ListSchedules(ctx)
	if err != nil {
		return 0, err
	}
	id, idErr := strconv.ParseInt(ref, 10, 64)
	for i := range schedules {
		if schedules[i].Name == ref || (idErr == nil && schedules[i].ID == id) {
			return schedules[i].ID, nil
		}
	}
	return 0, fmt.Errorf("练习计划不存在: %s", ref)
}

// groupNames ID -> 名称，用于输出
func groupNames(ctx context.Context) (map[int64]string, error) {
	groups, err := practice().ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(groups))
	for i := range groups {
		names[groups[i].GroupID()] = groups[i].Name
	}
	return names, nil
}
