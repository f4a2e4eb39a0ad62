package dating

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type SchedulerConfig struct {
	RecomputeInterval time.Duration
	AnalysisHour      int
	AnalysisLimit     int
}

type Scheduler struct {
	batch   *BatchRecomputer
	service Service
	cfg     SchedulerConfig
	logger  *zap.Logger
}

func NewScheduler(batch *BatchRecomputer, service Service, cfg SchedulerConfig, logger *zap.Logger) *Scheduler {
	if cfg.RecomputeInterval <= 0 {
		cfg.RecomputeInterval = 15 * time.Minute
	}
	if cfg.AnalysisLimit <= 0 {
		cfg.AnalysisLimit = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{batch: batch, service: service, cfg: cfg, logger: logger}
}

func (s *Scheduler) Start(ctx context.Context) {
	// Flagged records are recomputed on a fixed interval
	go s.runEvery(ctx, "recompute_stale", s.cfg.RecomputeInterval, s.recomputeStale)

	// Personality refresh for edited profiles once a day
	go s.runDaily(ctx, "analyze_pending", s.cfg.AnalysisHour, 0, s.analyzePending)
}

func (s *Scheduler) recomputeStale(ctx context.Context) error {
	_, err := s.batch.RunStale(ctx)
	return err
}

func (s *Scheduler) analyzePending(ctx context.Context) error {
	n, err := s.service.AnalyzePending(ctx, s.cfg.AnalysisLimit)
	if err != nil {
		return err
	}
	s.logger.Info("personality analysis refreshed", zap.Int("profiles", n))
	return nil
}

func (s *Scheduler) runDaily(ctx context.Context, name string, hour, minute int, task func(context.Context) error) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			if err := task(ctx); err != nil {
				s.logger.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runEvery(ctx context.Context, name string, interval time.Duration, task func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				s.logger.Error("periodic task failed", zap.String("task", name), zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
