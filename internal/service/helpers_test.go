package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/repository"
	"github.com/yuqie6/SkillPractice/internal/schema"
	"github.com/yuqie6/SkillPractice/internal/testutil"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// recordingPublisher 收集发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(evt eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, evt := range p.events {
		out = append(out, evt.Type)
	}
	return out
}

func newTestService(t *testing.T, cfg *PracticeServiceConfig) (*PracticeService, *repository.RecordRepository) {
	t.Helper()
	if cfg == nil {
		cfg = &PracticeServiceConfig{}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}
	if cfg.NewRand == nil {
		var seed uint64
		var mu sync.Mutex
		cfg.NewRand = func() *rand.Rand {
			mu.Lock()
			defer mu.Unlock()
			seed++
			return rand.New(rand.NewPCG(seed, 0x5eed))
		}
	}
	repo := repository.NewRecordRepository(testutil.OpenTestDB(t))
	svc, err := NewPracticeService(context.Background(), repo, cfg)
	require.NoError(t, err)
	return svc, repo
}

func mustAddGroup(t *testing.T, svc *PracticeService, id int64, name string, parents ...int64) {
	t.Helper()
	require.NoError(t, svc.AddGroup(context.Background(), &schema.SkillGroup{
		ID:        schema.Int64Ptr(id),
		Name:      name,
		ParentIDs: parents,
	}))
}

func mustAddSkill(t *testing.T, svc *PracticeService, name string, priority int, groups ...int64) int64 {
	t.Helper()
	skill := schema.NewSkill(name, groups...)
	skill.Priority = priority
	id, err := svc.AddSkill(context.Background(), skill)
	require.NoError(t, err)
	return id
}

func mustAddSchedule(t *testing.T, svc *PracticeService, name string, slotGroups ...*int64) int64 {
	t.Helper()
	sched := &schema.Schedule{Name: name}
	for _, gid := range slotGroups {
		sched.Slots = append(sched.Slots, schema.Slot{GroupID: gid, DurationInSecs: schema.DefaultSlotDurationSecs})
	}
	id, err := svc.AddSchedule(context.Background(), sched)
	require.NoError(t, err)
	return id
}

// addDiamond 构造分组：0 为根，1 -> {0}，2 -> {1}，3 -> {1}，4 -> {2,3}
func addDiamond(t *testing.T, svc *PracticeService) {
	t.Helper()
	mustAddGroup(t, svc, 0, "g0")
	mustAddGroup(t, svc, 1, "g1", 0)
	mustAddGroup(t, svc, 2, "g2", 1)
	mustAddGroup(t, svc, 3, "g3", 1)
	mustAddGroup(t, svc, 4, "g4", 2, 3)
}
