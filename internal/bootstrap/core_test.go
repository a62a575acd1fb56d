package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/pkg/config"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

func newTestCore(t *testing.T, weight float64) (*Core, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.App.LogLevel = "error"
	cfg.Storage.DBPath = filepath.Join(dir, "practice.db")
	cfg.Sampler.StalenessWeight = weight
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteFile(path, cfg))

	core, err := NewCore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core, path
}

func TestNewCoreWiresPracticeService(t *testing.T) {
	ctx := context.Background()
	core, _ := newTestCore(t, 0.3)
	require.NoError(t, core.RequireWritable())
	assert.InDelta(t, 0.3, core.StalenessWeight(), 1e-9)

	events := core.Hub.Subscribe(ctx, 4)
	require.Eventually(t, func() bool { return core.Hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	svc := core.Services.Practice
	require.NoError(t, svc.AddGroup(ctx, &schema.SkillGroup{ID: schema.Int64Ptr(1), Name: "Etudes"}))
	select {
	case evt := <-events:
		assert.Equal(t, eventbus.GroupAdded, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	groups, err := svc.ListGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestCoreWatchConfigUpdatesWeight(t *testing.T) {
	core, path := newTestCore(t, 0.2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, core.WatchConfig(ctx))

	cfg := *core.Cfg
	cfg.Sampler.StalenessWeight = 0.9
	require.NoError(t, config.WriteFile(path, &cfg))

	assert.Eventually(t, func() bool {
		return core.StalenessWeight() > 0.89
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCoreWatchConfigRequiresPath(t *testing.T) {
	core := &Core{}
	assert.Error(t, core.WatchConfig(context.Background()))
}

func TestNewCoreRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sampler:\n  staleness_weight: 3\n"), 0o600))
	_, err := NewCore(context.Background(), path)
	assert.Error(t, err)
}
