package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuqie6/SkillPractice/internal/pkg/buildinfo"
	"github.com/yuqie6/SkillPractice/internal/pkg/config"
	"github.com/yuqie6/SkillPractice/internal/service"
)

func seedCmd() *cobra.Command {
	var reset bool
	var demo bool
	cmd := &cobra.Command{
		Use:     "seed [file.yaml]",
		Short:   "从 YAML 导入分组、技能与练习计划",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: writable,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var r io.Reader
			switch {
			case demo:
				r = strings.NewReader(service.DemoSeed)
			case len(args) == 1:
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("打开种子文件失败: %w", err)
				}
				defer f.Close()
				r = f
			default:
				return fmt.Errorf("需要指定种子文件或 --demo")
			}

			svc := practice()
			if reset {
				if err := svc.ClearAll(ctx); err != nil {
					return err
				}
			}
			stats, err := svc.ImportSeed(ctx, r)
			if err != nil {
				return err
			}
			fmt.Printf("✅ 已导入: 分组 %d, 技能 %d, 练习计划 %d\n", stats.Groups, stats.Skills, stats.Schedules)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "导入前清空全部数据")
	cmd.Flags().BoolVar(&demo, "demo", false, "导入内置示例数据")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件管理",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "写入默认配置文件",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipCore: "1"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("配置文件已存在: %s（使用 --force 覆盖）", path)
			}
			if err := config.WriteFile(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("✅ 已写入配置文件 %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "覆盖已有文件")
	cmd.AddCommand(initCmd)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "显示版本信息",
		Annotations: map[string]string{skipCore: "1"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("practice %s (%s)\n", buildinfo.Version, buildinfo.Commit)
		},
	}
}
