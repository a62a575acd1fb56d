package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PlanSessions 并发为多个练习计划各采样一次会话，结果顺序与 scheduleIDs 一致。
// 会话之间相互独立，同一技能可出现在不同会话中。
func (s *PracticeService) PlanSessions(ctx context.Context, scheduleIDs []int64, stalenessWeight float64) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*Session, len(scheduleIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range scheduleIDs {
		g.Go(func() error {
			session, err := s.sampleLocked(gctx, id, stalenessWeight)
			if err != nil {
				return err
			}
			sessions[i] = session
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sessions, nil
}
