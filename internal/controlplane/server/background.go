package server

import (
	"context"
	"time"

	"github.com/betbot/opsboard/internal/domain"
)

const artifactGCInterval = 5 * time.Minute

func (s *Server) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCtx = ctx
	s.bgCancel = cancel

	interval := s.cfg.AlertInterval
	if interval <= 0 {
		interval = s.cfg.ViewPeriod
	}

	s.bgWG.Add(2)
	go func() {
		defer s.bgWG.Done()
		if s.cfg.AlertsEnabled {
			s.alertLoop(ctx, interval)
		}
	}()
	go func() {
		defer s.bgWG.Done()
		s.artifacts.RunGC(ctx, artifactGCInterval)
	}()
}

// evaluateAlerts 生成一份实时盈亏快照并评估全部规则
func (s *Server) evaluateAlerts(ctx context.Context) ([]domain.AlertEvent, error) {
	fired, err := s.engine.Evaluate(ctx, s.gen.PairPnL())
	if len(fired) > 0 {
		s.snapshots.Clear()
	}
	if fired == nil {
		fired = []domain.AlertEvent{}
	}
	return fired, err
}

func (s *Server) alertLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		case <-s.rulesKick.C():
		}
		runCtx, cancel := context.WithTimeout(ctx, interval)
		fired, err := s.evaluateAlerts(runCtx)
		cancel()
		if err != nil {
			log.Warnf("alert evaluation: %v", err)
			continue
		}
		if len(fired) > 0 {
			log.Infof("alert evaluation fired %d event(s)", len(fired))
		}
	}
}
