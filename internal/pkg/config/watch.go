package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce 编辑器保存时常连续触发多次写事件，合并为一次重载
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch 监听配置文件变化，重新加载并校验通过后回调 onChange，直到 ctx 结束。
// 监听的是所在目录，文件被替换（先删后建）也能感知。
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("path 不能为空")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("解析配置路径失败: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监控失败: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("监控配置目录失败: %w", err)
	}

	go watchLoop(ctx, watcher, abs, debounce, onChange)
	slog.Info("配置热加载已启动", "path", abs)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, debounce time.Duration, onChange func(*Config)) {
	defer watcher.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("配置文件监控错误", "error", err)
		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				slog.Warn("配置重载失败，保留当前配置", "error", err)
				continue
			}
			slog.Info("配置已重载", "path", path)
			onChange(cfg)
		}
	}
}
