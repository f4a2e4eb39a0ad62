// internal/dating/batch.go

package dating

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BatchConfig struct {
	ChunkSize  int
	ChunkDelay time.Duration
	StaleLimit int
}

func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		ChunkSize:  10,
		ChunkDelay: time.Second,
		StaleLimit: 1000,
	}
}

// BatchRecomputer recomputes flagged records user by user, in chunks.
type BatchRecomputer struct {
	service Service
	records RecordStore
	cfg     BatchConfig
	logger  *zap.Logger

	mu   sync.Mutex
	last *BatchSummary
}

func NewBatchRecomputer(service Service, records RecordStore, cfg BatchConfig, logger *zap.Logger) *BatchRecomputer {
	def := DefaultBatchConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkDelay < 0 {
		cfg.ChunkDelay = 0
	}
	if cfg.StaleLimit <= 0 {
		cfg.StaleLimit = def.StaleLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRecomputer{service: service, records: records, cfg: cfg, logger: logger}
}

// Run processes userIDs chunk by chunk. Users inside a chunk run
// concurrently and a failing user never stops the others. Cancellation is
// checked between chunks; the partial summary is returned with ctx.Err().
func (b *BatchRecomputer) Run(ctx context.Context, userIDs []int64) (*BatchSummary, error) {
	return b.run(ctx, uuid.NewString(), userIDs)
}

func (b *BatchRecomputer) RunStale(ctx context.Context) (*BatchSummary, error) {
	return b.runStale(ctx, uuid.NewString())
}

// RunStaleAsync starts a stale recompute detached from ctx's cancellation
// and returns its batch id.
func (b *BatchRecomputer) RunStaleAsync(ctx context.Context) string {
	batchID := uuid.NewString()
	go func() {
		if _, err := b.runStale(context.WithoutCancel(ctx), batchID); err != nil {
			b.logger.Error("stale recompute failed", zap.String("batch_id", batchID), zap.Error(err))
		}
	}()
	return batchID
}

// LastSummary returns the most recent finished run, or nil.
func (b *BatchRecomputer) LastSummary() *BatchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *BatchRecomputer) runStale(ctx context.Context, batchID string) (*BatchSummary, error) {
	ids, err := b.records.ListStaleUsers(ctx, b.cfg.StaleLimit)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, batchID, ids)
}

type userOutcome struct {
	userID  int64
	records int
	err     error
}

func (b *BatchRecomputer) run(ctx context.Context, batchID string, userIDs []int64) (*BatchSummary, error) {
	summary := &BatchSummary{
		BatchID:   batchID,
		Requested: len(userIDs),
		Failures:  []BatchFailure{},
		StartedAt: time.Now(),
	}
	log := b.logger.With(zap.String("batch_id", batchID))
	log.Info("batch recompute started",
		zap.Int("users", len(userIDs)), zap.Int("chunk_size", b.cfg.ChunkSize))

	var runErr error
	for i, chunk := range chunkIDs(userIDs, b.cfg.ChunkSize) {
		if i > 0 {
			if err := sleepCtx(ctx, b.cfg.ChunkDelay); err != nil {
				runErr = err
				break
			}
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		outcomes := make([]userOutcome, len(chunk))
		var g errgroup.Group
		for j, userID := range chunk {
			j, userID := j, userID
			g.Go(func() error {
				n, err := b.service.RecomputeUser(ctx, userID)
				outcomes[j] = userOutcome{userID: userID, records: n, err: err}
				return nil
			})
		}
		g.Wait()

		for _, o := range outcomes {
			summary.Processed++
			summary.Records += o.records
			RecordBatchUser(o.err == nil)
			if o.err != nil {
				summary.Failures = append(summary.Failures, BatchFailure{UserID: o.userID, Error: o.err.Error()})
				log.Warn("user recompute failed", zap.Int64("user_id", o.userID), zap.Error(o.err))
				continue
			}
			summary.Succeeded++
		}
		log.Debug("chunk finished", zap.Int("chunk", i), zap.Int("processed", summary.Processed))
	}

	summary.FinishedAt = time.Now()
	summary.Cancelled = runErr != nil

	b.mu.Lock()
	b.last = summary
	b.mu.Unlock()

	log.Info("batch recompute finished",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", len(summary.Failures)),
		zap.Int("records_updated", summary.Records),
		zap.Bool("cancelled", summary.Cancelled))

	return summary, runErr
}

func chunkIDs(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
