package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

func TestReplaceGroupRewritesReferences(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _ := newTestService(t, &PracticeServiceConfig{Events: pub})
	addDiamond(t, svc)
	mustAddGroup(t, svc, 10, "other")

	onlyOld := mustAddSkill(t, svc, "only-old", 5, 2)
	both := mustAddSkill(t, svc, "both", 5, 2, 10)
	untouched := mustAddSkill(t, svc, "untouched", 5, 3)
	schedID := mustAddSchedule(t, svc, "daily", schema.Int64Ptr(2), nil, schema.Int64Ptr(3))

	stats, err := svc.ReplaceGroup(ctx, 2, schema.Int64Ptr(10))
	require.NoError(t, err)
	assert.Equal(t, ReplaceStats{Skills: 2, Groups: 1, Schedules: 1}, stats)

	got, err := svc.GetSkill(ctx, onlyOld)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, got.GroupIDs)

	got, err = svc.GetSkill(ctx, both)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, got.GroupIDs, "union collapses to a single reference")

	got, err = svc.GetSkill(ctx, untouched)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, got.GroupIDs)

	g4, err := svc.GetGroup(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 10}, g4.ParentIDs)
	assert.Equal(t, []int64{3, 10}, svc.hierarchy.ParentsOf(4))

	sched, err := svc.GetSchedule(ctx, schedID)
	require.NoError(t, err)
	require.Len(t, sched.Slots, 3)
	assert.Equal(t, int64(10), *sched.Slots[0].GroupID)
	assert.Nil(t, sched.Slots[1].GroupID)
	assert.Equal(t, int64(3), *sched.Slots[2].GroupID)

	assert.Contains(t, pub.Types(), eventbus.GroupReplaced)
}

func TestReplaceGroupRejectsDescendant(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	addDiamond(t, svc)
	id := mustAddSkill(t, svc, "s", 5, 1)

	_, err := svc.ReplaceGroup(ctx, 1, schema.Int64Ptr(4))
	assert.True(t, errors.Is(err, ErrValidation), "err=%v", err)

	got, err := svc.GetSkill(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got.GroupIDs)
}

func TestReplaceGroupInvalidIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	addDiamond(t, svc)

	_, err := svc.ReplaceGroup(ctx, 42, schema.Int64Ptr(1))
	assert.True(t, errors.Is(err, ErrValidation), "err=%v", err)

	_, err = svc.ReplaceGroup(ctx, 1, schema.Int64Ptr(42))
	assert.True(t, errors.Is(err, ErrValidation), "err=%v", err)

	stats, err := svc.ReplaceGroup(ctx, 1, schema.Int64Ptr(1))
	require.NoError(t, err)
	assert.Zero(t, stats)
}

func TestReplaceGroupWithAncestorPromotesReferences(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	addDiamond(t, svc)
	id := mustAddSkill(t, svc, "s", 5, 4)

	_, err := svc.ReplaceGroup(ctx, 4, schema.Int64Ptr(1))
	require.NoError(t, err)

	got, err := svc.GetSkill(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got.GroupIDs)
}

func TestDeleteGroupRemovesReferences(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, _ := newTestService(t, &PracticeServiceConfig{Events: pub})
	addDiamond(t, svc)
	skillID := mustAddSkill(t, svc, "s", 5, 2, 3)
	schedID := mustAddSchedule(t, svc, "daily", schema.Int64Ptr(2))

	require.NoError(t, svc.DeleteGroup(ctx, 2))

	assert.False(t, svc.IsValidGroupID(2))
	_, err := svc.GetGroup(ctx, 2)
	assert.True(t, IsNotFound(err))

	skill, err := svc.GetSkill(ctx, skillID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, skill.GroupIDs)

	g4, err := svc.GetGroup(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, g4.ParentIDs)

	sched, err := svc.GetSchedule(ctx, schedID)
	require.NoError(t, err)
	assert.Nil(t, sched.Slots[0].GroupID)

	ancestors, err := svc.AncestorsOf(4)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 3}, ancestors.Sorted())
	assert.Contains(t, pub.Types(), eventbus.GroupDeleted)
}

func TestDeleteGroupRollsBackWhenSlotRequiresGroup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &PracticeServiceConfig{RequireSlotGroup: true})
	addDiamond(t, svc)
	skillID := mustAddSkill(t, svc, "s", 5, 2)
	mustAddSchedule(t, svc, "daily", schema.Int64Ptr(2))

	err := svc.DeleteGroup(ctx, 2)
	assert.True(t, errors.Is(err, ErrValidation), "err=%v", err)

	assert.True(t, svc.IsValidGroupID(2))
	skill, err := svc.GetSkill(ctx, skillID)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, skill.GroupIDs)
	assert.Equal(t, []int64{2, 3}, svc.hierarchy.ParentsOf(4))
}
