package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

// PracticeServiceConfig 服务配置
type PracticeServiceConfig struct {
	RequireSlotGroup bool              // 时间槽是否必须绑定分组
	Events           EventPublisher    // 可选，写入成功后发布事件
	Now              func() time.Time  // 可选，测试注入时钟
	NewRand          func() *rand.Rand // 可选，测试注入随机源
}

// PracticeService 技能/分组/练习计划的读写入口。
// 一把读写锁覆盖缓存、校验以及一次逻辑操作内的存储读写：
// 写操作独占，祖先查询与会话采样可并发。
type PracticeService struct {
	mu        sync.RWMutex
	store     RecordStore
	hierarchy *GroupHierarchy
	validator *Validator
	sampler   *SessionSampler
	events    EventPublisher
	now       func() time.Time
}

// NewPracticeService 创建服务并从存储构建分组缓存
func NewPracticeService(ctx context.Context, store RecordStore, cfg *PracticeServiceConfig) (*PracticeService, error) {
	if store == nil {
		return nil, fmt.Errorf("store 不能为空")
	}
	if cfg == nil {
		cfg = &PracticeServiceConfig{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	h := NewGroupHierarchy()
	s := &PracticeService{
		store:     store,
		hierarchy: h,
		validator: NewValidator(h, ValidatorOptions{RequireSlotGroup: cfg.RequireSlotGroup}),
		sampler:   NewSessionSampler(h, cfg.NewRand),
		events:    cfg.Events,
		now:       now,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload 从存储整体重建分组缓存
func (s *PracticeService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *PracticeService) reloadLocked(ctx context.Context) error {
	groups, err := listGroups(ctx, s.store)
	if err != nil {
		return err
	}
	s.hierarchy.Load(groups)
	slog.Debug("分组缓存已加载", "groups", len(groups))
	return nil
}

func (s *PracticeService) publish(typ string, data map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventbus.Event{Type: typ, Timestamp: s.now().UnixMilli(), Data: data})
}

// ===== Skill =====

// AddSkill 校验并插入技能，成功后回填 skill.ID
func (s *PracticeService) AddSkill(ctx context.Context, skill *schema.Skill) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validator.ValidateSkill(skill); err != nil {
		return 0, err
	}
	rec := skill.Clone()
	rec.GroupIDs = schema.NormalizeIDs(rec.GroupIDs)

	exists, err := s.store.ExistsWithName(ctx, schema.KindSkill, rec.Name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("skill %q: %w", rec.Name, ErrDuplicateName)
	}
	payload, err := schema.EncodeSkill(&rec)
	if err != nil {
		return 0, err
	}
	id, err := s.store.Insert(ctx, schema.KindSkill, nil, rec.Name, payload)
	if err != nil {
		return 0, err
	}
	skill.ID = id
	slog.Debug("新增技能", "id", id, "name", rec.Name)
	s.publish(eventbus.SkillAdded, map[string]any{"id": id, "name": rec.Name})
	return id, nil
}

// UpdateSkill 校验并覆盖技能
func (s *PracticeService) UpdateSkill(ctx context.Context, id int64, skill *schema.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateSkillIn(ctx, s.store, id, skill); err != nil {
		return err
	}
	s.publish(eventbus.SkillUpdated, map[string]any{"id": id, "name": skill.Name})
	return nil
}

func (s *PracticeService) updateSkillIn(ctx context.Context, st RecordStore, id int64, skill *schema.Skill) error {
	if err := s.validator.ValidateSkill(skill); err != nil {
		return err
	}
	rec := skill.Clone()
	rec.ID = id
	rec.GroupIDs = schema.NormalizeIDs(rec.GroupIDs)

	old, err := getSkill(ctx, st, id)
	if err != nil {
		return err
	}
	if old.Name != rec.Name {
		exists, err := st.ExistsWithName(ctx, schema.KindSkill, rec.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("skill %q: %w", rec.Name, ErrDuplicateName)
		}
	}
	payload, err := schema.EncodeSkill(&rec)
	if err != nil {
		return err
	}
	if err := st.Update(ctx, schema.KindSkill, id, rec.Name, payload); err != nil {
		return storeErr("更新技能", err)
	}
	skill.ID = id
	return nil
}

// DeleteSkill 删除技能
func (s *PracticeService) DeleteSkill(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, schema.KindSkill, id); err != nil {
		return storeErr("删除技能", err)
	}
	s.publish(eventbus.SkillDeleted, map[string]any{"id": id})
	return nil
}

// GetSkill 根据 ID 获取技能
func (s *PracticeService) GetSkill(ctx context.Context, id int64) (*schema.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSkill(ctx, s.store, id)
}

// ListSkills 按名称升序获取全部技能
func (s *PracticeService) ListSkills(ctx context.Context) ([]schema.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSkills(ctx, s.store)
}

// HasSkillWithName 是否存在同名技能
func (s *PracticeService) HasSkillWithName(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ExistsWithName(ctx, schema.KindSkill, name)
}

// ===== SkillGroup =====

// AddGroup 校验并插入分组，随后更新缓存
func (s *PracticeService) AddGroup(ctx context.Context, group *schema.SkillGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validator.ValidateSkillGroup(group); err != nil {
		return err
	}
	rec := group.Clone()
	rec.ParentIDs = schema.NormalizeIDs(rec.ParentIDs)
	id := rec.GroupID()
	if s.hierarchy.IsValidID(id) {
		return invalidf("skill_group", "分组 ID %d 已存在", id)
	}

	exists, err := s.store.ExistsWithName(ctx, schema.KindSkillGroup, rec.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("skill_group %q: %w", rec.Name, ErrDuplicateName)
	}
	payload, err := schema.EncodeSkillGroup(&rec)
	if err != nil {
		return err
	}
	got, err := s.store.Insert(ctx, schema.KindSkillGroup, &id, rec.Name, payload)
	if err != nil {
		return err
	}
	if got != id {
		return invariant("新增分组", fmt.Sprintf("写入 ID %d 与期望 %d 不一致", got, id), nil)
	}
	s.hierarchy.OnGroupAdded(&rec)
	slog.Debug("新增分组", "id", id, "name", rec.Name, "parents", rec.ParentIDs)
	s.publish(eventbus.GroupAdded, map[string]any{"id": id, "name": rec.Name})
	return nil
}

// UpdateGroup 校验并覆盖分组（按 group.ID 定位），随后更新缓存
func (s *PracticeService) UpdateGroup(ctx context.Context, group *schema.SkillGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateGroupIn(ctx, s.store, group); err != nil {
		return err
	}
	s.publish(eventbus.GroupUpdated, map[string]any{"id": group.GroupID(), "name": group.Name})
	return nil
}

func (s *PracticeService) updateGroupIn(ctx context.Context, st RecordStore, group *schema.SkillGroup) error {
	if err := s.validator.ValidateSkillGroup(group); err != nil {
		return err
	}
	rec := group.Clone()
	rec.ParentIDs = schema.NormalizeIDs(rec.ParentIDs)
	id := rec.GroupID()

	old, err := getGroup(ctx, st, id)
	if err != nil {
		return err
	}
	if old.Name != rec.Name {
		exists, err := st.ExistsWithName(ctx, schema.KindSkillGroup, rec.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("skill_group %q: %w", rec.Name, ErrDuplicateName)
		}
	}
	payload, err := schema.EncodeSkillGroup(&rec)
	if err != nil {
		return err
	}
	if err := st.Update(ctx, schema.KindSkillGroup, id, rec.Name, payload); err != nil {
		return storeErr("更新分组", err)
	}
	s.hierarchy.OnGroupUpdated(&rec)
	return nil
}

// GetGroup 根据 ID 获取分组
func (s *PracticeService) GetGroup(ctx context.Context, id int64) (*schema.SkillGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getGroup(ctx, s.store, id)
}

// ListGroups 按名称升序获取全部分组
func (s *PracticeService) ListGroups(ctx context.Context) ([]schema.SkillGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listGroups(ctx, s.store)
}

// HasGroupWithName 是否存在同名分组
func (s *PracticeService) HasGroupWithName(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ExistsWithName(ctx, schema.KindSkillGroup, name)
}

// IsValidGroupID 分组 ID 是否存在
func (s *PracticeService) IsValidGroupID(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy.IsValidID(id)
}

// AncestorsOf 分组的全部祖先；没有父分组时返回 nil
func (s *PracticeService) AncestorsOf(id int64) (GroupSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy.AncestorsOf(id)
}

// IsAncestorOf candidate 是否为 id 的祖先
func (s *PracticeService) IsAncestorOf(candidate, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy.IsAncestorOf(candidate, id)
}

// EffectiveGroups 技能的直接分组及其全部祖先
func (s *PracticeService) EffectiveGroups(skill *schema.Skill) (GroupSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hierarchy.EffectiveGroups(skill)
}

// ===== Schedule =====

// AddSchedule 校验并插入练习计划，成功后回填 sched.ID
func (s *PracticeService) AddSchedule(ctx context.Context, sched *schema.Schedule) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validator.ValidateSchedule(sched); err != nil {
		return 0, err
	}
	rec := sched.Clone()
	exists, err := s.store.ExistsWithName(ctx, schema.KindSchedule, rec.Name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("schedule %q: %w", rec.Name, ErrDuplicateName)
	}
	payload, err := schema.EncodeSchedule(&rec)
	if err != nil {
		return 0, err
	}
	id, err := s.store.Insert(ctx, schema.KindSchedule, nil, rec.Name, payload)
	if err != nil {
		return 0, err
	}
	sched.ID = id
	slog.Debug("新增练习计划", "id", id, "name", rec.Name, "slots", len(rec.Slots))
	s.publish(eventbus.ScheduleAdded, map[string]any{"id": id, "name": rec.Name})
	return id, nil
}

// UpdateSchedule 校验并覆盖练习计划
func (s *PracticeService) UpdateSchedule(ctx context.Context, id int64, sched *schema.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateScheduleIn(ctx, s.store, id, sched); err != nil {
		return err
	}
	s.publish(eventbus.ScheduleUpdated, map[string]any{"id": id, "name": sched.Name})
	return nil
}

func (s *PracticeService) updateScheduleIn(ctx context.Context, st RecordStore, id int64, sched *schema.Schedule) error {
	if err := s.validator.ValidateSchedule(sched); err != nil {
		return err
	}
	rec := sched.Clone()
	rec.ID = id

	old, err := getSchedule(ctx, st, id)
	if err != nil {
		return err
	}
	if old.Name != rec.Name {
		exists, err := st.ExistsWithName(ctx, schema.KindSchedule, rec.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("schedule %q: %w", rec.Name, ErrDuplicateName)
		}
	}
	payload, err := schema.EncodeSchedule(&rec)
	if err != nil {
		return err
	}
	if err := st.Update(ctx, schema.KindSchedule, id, rec.Name, payload); err != nil {
		return storeErr("更新练习计划", err)
	}
	sched.ID = id
	return nil
}

// DeleteSchedule 删除练习计划
func (s *PracticeService) DeleteSchedule(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, schema.KindSchedule, id); err != nil {
		return storeErr("删除练习计划", err)
	}
	s.publish(eventbus.ScheduleDeleted, map[string]any{"id": id})
	return nil
}

// GetSchedule 根据 ID 获取练习计划
func (s *PracticeService) GetSchedule(ctx context.Context, id int64) (*schema.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSchedule(ctx, s.store, id)
}

// ListSchedules 按名称升序获取全部练习计划
func (s *PracticeService) ListSchedules(ctx context.Context) ([]schema.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSchedules(ctx, s.store)
}

// HasScheduleWithName 是否存在同名练习计划
func (s *PracticeService) HasScheduleWithName(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ExistsWithName(ctx, schema.KindSchedule, name)
}

// ClearAll 清空全部记录与缓存
func (s *PracticeService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.hierarchy.Load(nil)
	slog.Info("已清空全部数据")
	return nil
}

// ===== 存储读取辅助 =====

func getSkill(ctx context.Context, st RecordStore, id int64) (*schema.Skill, error) {
	payload, err := st.GetByID(ctx, schema.KindSkill, id)
	if err != nil {
		return nil, storeErr("查询技能", err)
	}
	return schema.DecodeSkill(id, payload)
}

func listSkills(ctx context.Context, st RecordStore) ([]schema.Skill, error) {
	recs, err := st.ListAll(ctx, schema.KindSkill)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Skill, 0, len(recs))
	for _, rec := range recs {
		skill, err := schema.DecodeSkill(rec.ID, rec.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *skill)
	}
	return out, nil
}

func getGroup(ctx context.Context, st RecordStore, id int64) (*schema.SkillGroup, error) {
	payload, err := st.GetByID(ctx, schema.KindSkillGroup, id)
	if err != nil {
		return nil, storeErr("查询分组", err)
	}
	return schema.DecodeSkillGroup(payload)
}

func listGroups(ctx context.Context, st RecordStore) ([]schema.SkillGroup, error) {
	recs, err := st.ListAll(ctx, schema.KindSkillGroup)
	if err != nil {
		return nil, err
	}
	out := make([]schema.SkillGroup, 0, len(recs))
	for _, rec := range recs {
		g, err := schema.DecodeSkillGroup(rec.Payload)
		if err != nil {
			return nil, err
		}
		if g.ID == nil || *g.ID != rec.ID {
			return nil, invariant("加载分组", fmt.Sprintf("行 ID %d 与负载 ID 不一致", rec.ID), nil)
		}
		out = append(out, *g)
	}
	return out, nil
}

func getSchedule(ctx context.Context, st RecordStore, id int64) (*schema.Schedule, error) {
	payload, err := st.GetByID(ctx, schema.KindSchedule, id)
	if err != nil {
		return nil, storeErr("查询练习计划", err)
	}
	return schema.DecodeSchedule(id, payload)
}

func listSchedules(ctx context.Context, st RecordStore) ([]schema.Schedule, error) {
	recs, err := st.ListAll(ctx, schema.KindSchedule)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Schedule, 0, len(recs))
	for _, rec := range recs {
		sched, err := schema.DecodeSchedule(rec.ID, rec.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *sched)
	}
	return out, nil
}

// IsNotFound 是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
