package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/yuqie6/SkillPractice/internal/schema"
)

// stalenessHalfPointHours 近 100 天练习量达到该小时数时，陈旧度得分为 0.5
const stalenessHalfPointHours = 10.0

// Unfilled 会话中未分配技能的时间槽
const Unfilled int64 = -1

// SkillSource 单次、不可回退的技能序列；fn 返回错误时应停止遍历并原样返回
type SkillSource func(fn func(skill *schema.Skill) error) error

// SliceSource 以切片构造技能序列
func SliceSource(skills []schema.Skill) SkillSource {
	return func(fn func(skill *schema.Skill) error) error {
		for i := range skills {
			if err := fn(&skills[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

// StoreSource 以存储游标构造技能序列（按名称升序）
func StoreSource(ctx context.Context, st RecordStore) SkillSource {
	return func(fn func(skill *schema.Skill) error) error {
		return st.ForEach(ctx, schema.KindSkill, func(rec schema.Record) error {
			skill, err := schema.DecodeSkill(rec.ID, rec.Payload)
			if err != nil {
				return err
			}
			return fn(skill)
		})
	}
}

// Session 一次具体的练习会话，Slots 与计划的时间槽一一对应
type Session struct {
	Schedule schema.Schedule
	Slots    []SessionSlot
}

// SessionSlot 会话中的时间槽
type SessionSlot struct {
	Slot    schema.Slot
	SkillID int64
	Skill   *schema.Skill
}

// Filled 是否已分配技能
func (s *SessionSlot) Filled() bool {
	return s.Skill != nil
}

func (s *SessionSlot) fillWith(skill *schema.Skill) {
	s.SkillID = skill.ID
	s.Skill = skill
}

func (s *SessionSlot) clear() {
	s.SkillID = Unfilled
	s.Skill = nil
}

// Assignment 每个时间槽分配的技能 ID，未分配为 Unfilled
func (s *Session) Assignment() []int64 {
	out := make([]int64, len(s.Slots))
	for i := range s.Slots {
		out[i] = s.Slots[i].SkillID
	}
	return out
}

// Weight 技能被抽中的相对权重。
// stalenessWeight ∈ [0,1] 在“最近练得少”与“优先级高”之间取舍。
func Weight(skill *schema.Skill, stalenessWeight float64) float64 {
	stalenessWeight = min(max(stalenessWeight, 0), 1)
	priorityNorm := float64(skill.Priority) / float64(schema.MaxPriority)
	estHours := float64(max(skill.EstSecondsPracticed100Days, 0)) / 3600
	stalenessNorm := 1 - estHours/(estHours+stalenessHalfPointHours)
	return stalenessWeight*stalenessNorm + (1-stalenessWeight)*priorityNorm
}

// SessionSampler 单遍加权蓄水池采样：每个时间槽独立维护累计权重，
// 技能按时间槽顺序寻找第一个可放入的位置，一旦放入即停止，保证同一技能最多占一个时间槽。
type SessionSampler struct {
	hierarchy *GroupHierarchy
	newRand   func() *rand.Rand
}

// NewSessionSampler 创建采样器，newRand 为 nil 时使用随机种子
func NewSessionSampler(hierarchy *GroupHierarchy, newRand func() *rand.Rand) *SessionSampler {
	if newRand == nil {
		newRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &SessionSampler{hierarchy: hierarchy, newRand: newRand}
}

// CanFill 时间槽能否放入该技能：未限定分组，或限定分组等于/是技能某个直接分组的祖先
func (s *SessionSampler) CanFill(slot *schema.Slot, skill *schema.Skill) (bool, error) {
	if slot.GroupID == nil {
		return true, nil
	}
	want := *slot.GroupID
	for _, gid := range skill.GroupIDs {
		if gid == want {
			return true, nil
		}
		ok, err := s.hierarchy.IsAncestorOf(want, gid)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Sample 为计划采样一次会话
func (s *SessionSampler) Sample(sched *schema.Schedule, skills SkillSource, stalenessWeight float64) (*Session, error) {
	session := &Session{
		Schedule: sched.Clone(),
		Slots:    make([]SessionSlot, len(sched.Slots)),
	}
	for i := range session.Slots {
		session.Slots[i].Slot = session.Schedule.Slots[i]
		session.Slots[i].SkillID = Unfilled
	}
	cumulative := make([]float64, len(session.Slots))
	rng := s.newRand()

	considered := 0
	err := skills(func(skill *schema.Skill) error {
		considered++
		w := Weight(skill, stalenessWeight)
		for i := range session.Slots {
			slot := &session.Slots[i]
			ok, err := s.CanFill(&slot.Slot, skill)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			cumulative[i] += w
			if !slot.Filled() || rng.Float64() < w/cumulative[i] {
				slot.fillWith(skill)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("采样会话失败: %w", err)
	}

	slog.Debug("会话采样完成", "schedule", sched.Name, "skills", considered, "slots", len(session.Slots))
	return session, nil
}

// Refill 重新读取已分配技能的最新记录，不重新抽样；技能已被删除时该时间槽置空
func (s *SessionSampler) Refill(session *Session, fetch func(id int64) (*schema.Skill, error)) error {
	for i := range session.Slots {
		slot := &session.Slots[i]
		if !slot.Filled() {
			continue
		}
		skill, err := fetch(slot.SkillID)
		if err != nil {
			if IsNotFound(err) {
				slog.Warn("会话中的技能已被删除", "skill_id", slot.SkillID)
				slot.clear()
				continue
			}
			return err
		}
		slot.fillWith(skill)
	}
	return nil
}

// SampleSession 从存储读取计划与技能并采样一次会话
func (s *PracticeService) SampleSession(ctx context.Context, scheduleID int64, stalenessWeight float64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampleLocked(ctx, scheduleID, stalenessWeight)
}

func (s *PracticeService) sampleLocked(ctx context.Context, scheduleID int64, stalenessWeight float64) (*Session, error) {
	sched, err := getSchedule(ctx, s.store, scheduleID)
	if err != nil {
		return nil, err
	}
	return s.sampler.Sample(sched, StoreSource(ctx, s.store), stalenessWeight)
}

// RefillSession 刷新会话中技能的统计信息
func (s *PracticeService) RefillSession(ctx context.Context, session *Session) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampler.Refill(session, func(id int64) (*schema.Skill, error) {
		return getSkill(ctx, s.store, id)
	})
}
