package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuqie6/SkillPractice/internal/eventbus"
	"github.com/yuqie6/SkillPractice/internal/schema"
)

// estimateWindow 练习量估计的衰减窗口
const estimateWindow = 100 * 24 * time.Hour

// ApplyPractice 记录一次练习：累计秒数、最后练习时间，并按线性衰减更新近 100 天练习量估计
func ApplyPractice(skill *schema.Skill, seconds int64, now time.Time) {
	if skill == nil || seconds <= 0 {
		return
	}
	nowSec := now.Unix()

	est := seconds
	if skill.DateLastPracticed != nil {
		elapsed := time.Duration(max(nowSec-*skill.DateLastPracticed, 0)) * time.Second
		keep := 1 - min(1, float64(elapsed)/float64(estimateWindow))
		est += int64(keep * float64(skill.EstSecondsPracticed100Days))
	}

	skill.SecondsPracticed += seconds
	skill.EstSecondsPracticed100Days = est
	skill.DateLastPracticed = &nowSec
}

// RecordPractice 为技能累加练习时长并持久化
func (s *PracticeService) RecordPractice(ctx context.Context, skillID int64, seconds int64) (*schema.Skill, error) {
	if seconds <= 0 {
		return nil, invalidf("skill", "练习时长必须为正数: %d", seconds)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	skill, err := getSkill(ctx, s.store, skillID)
	if err != nil {
		return nil, err
	}
	ApplyPractice(skill, seconds, s.now())
	if err := s.updateSkillIn(ctx, s.store, skillID, skill); err != nil {
		return nil, fmt.Errorf("记录练习失败: %w", err)
	}

	slog.Debug("记录练习", "skill_id", skillID, "seconds", seconds, "total", skill.SecondsPracticed)
	s.publish(eventbus.SkillPracticed, map[string]any{"id": skillID, "seconds": seconds})
	return skill, nil
}
