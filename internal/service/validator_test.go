package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

func TestValidatorRejects(t *testing.T) {
	v := NewValidator(diamondHierarchy(), ValidatorOptions{})

	tests := []struct {
		name string
		err  error
	}{
		{"skill empty name", v.ValidateSkill(&schema.Skill{Priority: 5})},
		{"skill priority 0", v.ValidateSkill(&schema.Skill{Name: "s", Priority: 0})},
		{"skill priority 11", v.ValidateSkill(&schema.Skill{Name: "s", Priority: 11})},
		{"skill unknown group", v.ValidateSkill(&schema.Skill{Name: "s", Priority: 5, GroupIDs: []int64{42}})},
		{"skill negative last practiced", v.ValidateSkill(&schema.Skill{Name: "s", Priority: 5, DateLastPracticed: schema.Int64Ptr(-1)})},
		{"group without id", v.ValidateSkillGroup(&schema.SkillGroup{Name: "g"})},
		{"group without name", v.ValidateSkillGroup(&schema.SkillGroup{ID: schema.Int64Ptr(9)})},
		{"group unknown parent", v.ValidateSkillGroup(&schema.SkillGroup{ID: schema.Int64Ptr(9), Name: "g", ParentIDs: []int64{42}})},
		{"group self parent", v.ValidateSkillGroup(&schema.SkillGroup{ID: schema.Int64Ptr(2), Name: "g2", ParentIDs: []int64{2}})},
		{"group cycle", v.ValidateSkillGroup(&schema.SkillGroup{ID: schema.Int64Ptr(1), Name: "g1", ParentIDs: []int64{4}})},
		{"schedule without slots", v.ValidateSchedule(&schema.Schedule{Name: "s"})},
		{"schedule without name", v.ValidateSchedule(&schema.Schedule{Slots: []schema.Slot{{DurationInSecs: 60}}})},
		{"slot duration 0", v.ValidateSchedule(&schema.Schedule{Name: "s", Slots: []schema.Slot{{DurationInSecs: 0}}})},
		{"slot unknown group", v.ValidateSchedule(&schema.Schedule{Name: "s", Slots: []schema.Slot{{GroupID: schema.Int64Ptr(42), DurationInSecs: 60}}})},
		{"nil skill", v.ValidateSkill(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, errors.Is(tt.err, ErrValidation), "err=%v", tt.err)
			var verr *ValidationError
			assert.True(t, errors.As(tt.err, &verr))
		})
	}
}

func TestValidatorAccepts(t *testing.T) {
	v := NewValidator(diamondHierarchy(), ValidatorOptions{})

	assert.NoError(t, v.ValidateSkill(&schema.Skill{Name: "s", Priority: 1}))
	assert.NoError(t, v.ValidateSkill(&schema.Skill{Name: "s", Priority: 10, GroupIDs: []int64{0, 4}}))
	assert.NoError(t, v.ValidateSkillGroup(&schema.SkillGroup{ID: schema.Int64Ptr(0), Name: "root"}))
	assert.NoError(t, v.ValidateSkillGroup(&schema.SkillGroup{ID: schema.Int64Ptr(-7), Name: "leaf", ParentIDs: []int64{4}}))
	assert.NoError(t, v.ValidateSkillGroup(&schema.SkillGroup{ID: schema.Int64Ptr(3), Name: "g3", ParentIDs: []int64{2}}))
	assert.NoError(t, v.ValidateSchedule(&schema.Schedule{Name: "s", Slots: []schema.Slot{
		{DurationInSecs: 60},
		{GroupID: schema.Int64Ptr(0), DurationInSecs: 600},
	}}))
}

func TestValidatorRequireSlotGroup(t *testing.T) {
	v := NewValidator(diamondHierarchy(), ValidatorOptions{RequireSlotGroup: true})

	err := v.ValidateSchedule(&schema.Schedule{Name: "s", Slots: []schema.Slot{{DurationInSecs: 60}}})
	assert.True(t, errors.Is(err, ErrValidation))

	err = v.ValidateSchedule(&schema.Schedule{Name: "s", Slots: []schema.Slot{{GroupID: schema.Int64Ptr(1), DurationInSecs: 60}}})
	assert.NoError(t, err)
}
