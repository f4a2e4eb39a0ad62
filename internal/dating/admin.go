// internal/dating/admin.go

package dating

import (
	"context"
	"time"
)

// EngineStats is an operational snapshot of the stored compatibility data.
type EngineStats struct {
	TotalRecords         int64            `json:"total_records" db:"total_records"`
	StaleRecords         int64            `json:"stale_records" db:"stale_records"`
	AverageCompatibility float64          `json:"average_compatibility" db:"average_compatibility"`
	StatusCounts         map[string]int64 `json:"status_counts"`
	AnalyzedProfiles     int64            `json:"analyzed_profiles" db:"analyzed_profiles"`
	PendingAnalysis      int64            `json:"pending_analysis" db:"pending_analysis"`
	LastBatch            *BatchSummary    `json:"last_batch,omitempty"`
	LastUpdated          time.Time        `json:"last_updated"`
}

type StatsStore interface {
	RecordStats(ctx context.Context) (*EngineStats, error)
}

type AdminService struct {
	stats StatsStore
	batch *BatchRecomputer
}

func NewAdminService(stats StatsStore, batch *BatchRecomputer) *AdminService {
	return &AdminService{stats: stats, batch: batch}
}

func (a *AdminService) GetStats(ctx context.Context) (*EngineStats, error) {
	stats, err := a.stats.RecordStats(ctx)
	if err != nil {
		return nil, err
	}
	if a.batch != nil {
		stats.LastBatch = a.batch.LastSummary()
	}
	stats.LastUpdated = time.Now()
	return stats, nil
}

// StartRecompute kicks off a stale recompute in the background.
func (a *AdminService) StartRecompute(ctx context.Context) string {
	return a.batch.RunStaleAsync(ctx)
}

func (a *AdminService) LastRecompute() *BatchSummary {
	return a.batch.LastSummary()
}
