package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

// ReplaceStats 一次分组替换改写的记录数
type ReplaceStats struct {
	Skills    int
	Groups    int
	Schedules int
}

// ReplaceGroup 将所有对 oldID 的引用替换为 newID；newID 为 nil 时直接移除引用。
// 技能的分组、分组的父分组、时间槽的分组都会被改写，每条改写后的记录重新校验并写入，
// 全部在一个事务内完成。oldID 不能是 newID 的祖先；oldID == newID 时不做任何事。
func (s *PracticeService) ReplaceGroup(ctx context.Context, oldID int64, newID *int64) (ReplaceStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newID != nil && *newID == oldID {
		if !s.hierarchy.IsValidID(oldID) {
			return ReplaceStats{}, invalidf("skill_group", "无效的分组 ID %d", oldID)
		}
		return ReplaceStats{}, nil
	}

	var stats ReplaceStats
	err := s.store.Transaction(ctx, func(tx RecordStore) error {
		var err error
		stats, err = s.replaceIn(ctx, tx, oldID, newID)
		return err
	})
	if err != nil {
		s.resyncAfterFailure(ctx, "替换分组", err)
		return ReplaceStats{}, err
	}

	data := map[string]any{"old_id": oldID, "skills": stats.Skills, "groups": stats.Groups, "schedules": stats.Schedules}
	if newID != nil {
		data["new_id"] = *newID
	}
	slog.Info("分组引用已替换", "old_id", oldID, "new_id", newID, "skills", stats.Skills, "groups", stats.Groups, "schedules", stats.Schedules)
	s.publish(eventbus.GroupReplaced, data)
	return stats, nil
}

// DeleteGroup 先移除所有对该分组的引用，再删除分组本身
func (s *PracticeService) DeleteGroup(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hierarchy.IsValidID(id) {
		return fmt.Errorf("skill_group id=%d: %w", id, ErrNotFound)
	}

	var stats ReplaceStats
	err := s.store.Transaction(ctx, func(tx RecordStore) error {
		var err error
		if stats, err = s.replaceIn(ctx, tx, id, nil); err != nil {
			return err
		}
		if err := tx.Delete(ctx, schema.KindSkillGroup, id); err != nil {
			return storeErr("删除分组", err)
		}
		return nil
	})
	if err != nil {
		s.resyncAfterFailure(ctx, "删除分组", err)
		return err
	}
	s.hierarchy.OnGroupRemoved(id)

	slog.Info("分组已删除", "id", id, "skills", stats.Skills, "groups", stats.Groups, "schedules", stats.Schedules)
	s.publish(eventbus.GroupDeleted, map[string]any{"id": id})
	return nil
}

// resyncAfterFailure 事务回滚后缓存可能已被部分改写，从存储重建
func (s *PracticeService) resyncAfterFailure(ctx context.Context, op string, cause error) {
	if err := s.reloadLocked(ctx); err != nil {
		slog.Error("回滚后重建分组缓存失败", "op", op, "cause", cause, "error", err)
	}
}

func (s *PracticeService) replaceIn(ctx context.Context, tx RecordStore, oldID int64, newID *int64) (ReplaceStats, error) {
	var stats ReplaceStats
	if !s.hierarchy.IsValidID(oldID) {
		return stats, invalidf("skill_group", "无效的分组 ID %d", oldID)
	}
	if newID != nil {
		if *newID == oldID {
			return stats, nil
		}
		if !s.hierarchy.IsValidID(*newID) {
			return stats, invalidf("skill_group", "无效的分组 ID %d", *newID)
		}
		descendant, err := s.hierarchy.IsAncestorOf(oldID, *newID)
		if err != nil {
			return stats, err
		}
		if descendant {
			return stats, invalidf("skill_group", "不能用后代分组 %d 替换分组 %d", *newID, oldID)
		}
	}

	skills, err := listSkills(ctx, tx)
	if err != nil {
		return stats, err
	}
	for i := range skills {
		skill := &skills[i]
		ids, changed := schema.ReplaceID(skill.GroupIDs, oldID, newID)
		if !changed {
			continue
		}
		skill.GroupIDs = ids
		if err := s.updateSkillIn(ctx, tx, skill.ID, skill); err != nil {
			return stats, fmt.Errorf("改写技能 %d: %w", skill.ID, err)
		}
		stats.Skills++
	}

	groups, err := listGroups(ctx, tx)
	if err != nil {
		return stats, err
	}
	for i := range groups {
		group := &groups[i]
		ids, changed := schema.ReplaceID(group.ParentIDs, oldID, newID)
		if !changed {
			continue
		}
		group.ParentIDs = ids
		if err := s.updateGroupIn(ctx, tx, group); err != nil {
			return stats, fmt.Errorf("改写分组 %d: %w", group.GroupID(), err)
		}
		stats.Groups++
	}

	schedules, err := listSchedules(ctx, tx)
	if err != nil {
		return stats, err
	}
	for i := range schedules {
		sched := &schedules[i]
		changed := false
		for j := range sched.Slots {
			slot := &sched.Slots[j]
			if slot.GroupID == nil || *slot.GroupID != oldID {
				continue
			}
			if newID != nil {
				slot.GroupID = schema.Int64Ptr(*newID)
			} else {
				slot.GroupID = nil
			}
			changed = true
		}
		if !changed {
			continue
		}
		if err := s.updateScheduleIn(ctx, tx, sched.ID, sched); err != nil {
			return stats, fmt.Errorf("改写练习计划 %d: %w", sched.ID, err)
		}
		stats.Schedules++
	}
	return stats, nil
}
