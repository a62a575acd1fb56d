package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/pkg/config"
	"github.com/yuqie6/SkillPractice/internal/repository"
	"github.com/yuqie6/SkillPractice/internal/service"
)

// Core 持有跨命令共享的核心依赖
type Core struct {
	Cfg     *config.Config
	CfgPath string
	DB      *repository.Database
	Hub     *eventbus.Hub

	Repos struct {
		Records *repository.RecordRepository
	}

	Services struct {
		Practice *service.PracticeService
	}

	stalenessWeight atomic.Uint64 // math.Float64bits
}

// NewCore 构建核心依赖：配置 -> 日志 -> 数据库 -> 仓储 -> 服务
func NewCore(ctx context.Context, cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, CfgPath: cfgPath, DB: db, Hub: eventbus.NewHub()}
	c.setStalenessWeight(cfg.Sampler.StalenessWeight)

	// Repos
	c.Repos.Records = repository.NewRecordRepository(db.DB)

	// Services
	c.Services.Practice, err = service.NewPracticeService(ctx, c.Repos.Records, &service.PracticeServiceConfig{
		RequireSlotGroup: cfg.Schedule.RequireSlotGroup,
		Events:           c.Hub,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("初始化练习服务失败: %w", err)
	}

	return c, nil
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// RequireWritable 数据库处于安全模式时拒绝写入
func (c *Core) RequireWritable() error {
	if c.DB != nil && c.DB.SafeMode {
		return fmt.Errorf("数据库处于安全模式，禁止写入: %s", c.DB.MigrationError)
	}
	return nil
}

// StalenessWeight 当前生效的采样取舍系数，配置热加载后随之更新
func (c *Core) StalenessWeight() float64 {
	return math.Float64frombits(c.stalenessWeight.Load())
}

func (c *Core) setStalenessWeight(w float64) {
	c.stalenessWeight.Store(math.Float64bits(w))
}

// WatchConfig 监听配置文件，热更新采样取舍系数与日志级别。
// 时间槽分组策略影响已有数据的校验口径，只在重启后生效。
func (c *Core) WatchConfig(ctx context.Context) error {
	if c.CfgPath == "" {
		return fmt.Errorf("未指定配置文件路径，无法热加载")
	}
	return config.Watch(ctx, c.CfgPath, 0, c.applyConfig)
}

func (c *Core) applyConfig(cfg *config.Config) {
	old := c.StalenessWeight()
	c.setStalenessWeight(cfg.Sampler.StalenessWeight)
	config.SetupLogger(cfg.App.LogLevel)
	if cfg.Schedule.RequireSlotGroup != c.Cfg.Schedule.RequireSlotGroup {
		slog.Warn("schedule.require_slot_group 修改需重启后生效")
	}
	slog.Info("配置已应用", "staleness_weight", cfg.Sampler.StalenessWeight, "previous", old)
	c.Hub.Publish(eventbus.Event{
		Type: eventbus.ConfigReloaded,
		Data: map[string]any{"staleness_weight": cfg.Sampler.StalenessWeight},
	})
}
