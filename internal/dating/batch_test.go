package dating

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecomputer overrides RecomputeUser and tracks concurrency.
type stubRecomputer struct {
	Service

	fail    map[int64]bool
	delay   time.Duration
	onCall  func(userID int64)
	mu      sync.Mutex
	calls   []int64
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (s *stubRecomputer) RecomputeUser(ctx context.Context, userID int64) (int, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, userID)
	s.mu.Unlock()
	if s.onCall != nil {
		s.onCall(userID)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail[userID] {
		return 0, fmt.Errorf("recompute %d: %w", userID, errStoreDown)
	}
	return 2, nil
}

func (s *stubRecomputer) Calls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64{}, s.calls...)
}

func TestChunkIDs(t *testing.T) {
	chunks := chunkIDs([]int64{1, 2, 3, 4, 5}, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int64{1, 2}, chunks[0])
	assert.Equal(t, []int64{3, 4}, chunks[1])
	assert.Equal(t, []int64{5}, chunks[2])

	assert.Empty(t, chunkIDs(nil, 10))
	assert.Len(t, chunkIDs([]int64{1, 2, 3}, 10), 1)
}

func TestBatchRunSummarizesPartialFailure(t *testing.T) {
	stub := &stubRecomputer{fail: map[int64]bool{3: true}}
	batch := NewBatchRecomputer(stub, nil, BatchConfig{ChunkSize: 2}, nil)
	failedBefore := testutil.ToFloat64(batchUsers.WithLabelValues("failed"))

	summary, err := batch.Run(context.Background(), []int64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.BatchID)
	assert.Equal(t, 5, summary.Requested)
	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 8, summary.Records)
	assert.False(t, summary.Cancelled)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, int64(3), summary.Failures[0].UserID)
	assert.Contains(t, summary.Failures[0].Error, "store unavailable")
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, stub.Calls())
	assert.Same(t, summary, batch.LastSummary())
	assert.Equal(t, 1.0, testutil.ToFloat64(batchUsers.WithLabelValues("failed"))-failedBefore)
}

func TestBatchRunBoundsConcurrencyByChunk(t *testing.T) {
	stub := &stubRecomputer{delay: 10 * time.Millisecond}
	batch := NewBatchRecomputer(stub, nil, BatchConfig{ChunkSize: 3}, nil)

	ids := make([]int64, 10)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	summary, err := batch.Run(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Succeeded)
	assert.LessOrEqual(t, stub.maxSeen.Load(), int32(3))
}

func TestBatchRunStopsBetweenChunksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &stubRecomputer{}
	stub.onCall = func(userID int64) {
		if userID == 2 {
			cancel()
		}
	}
	batch := NewBatchRecomputer(stub, nil, BatchConfig{ChunkSize: 2, ChunkDelay: time.Hour}, nil)

	summary, err := batch.Run(ctx, []int64{1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.True(t, summary.Cancelled)
	assert.Equal(t, 2, summary.Processed)
	assert.ElementsMatch(t, []int64{1, 2}, stub.Calls())
	assert.Same(t, summary, batch.LastSummary())
}

func TestBatchRunStale(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)
	ctx := context.Background()

	for _, pair := range [][2]int64{{1, 2}, {1, 3}, {2, 4}} {
		_, err := svc.ComputePair(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}
	_, err := svc.ProfileChanged(ctx, 1)
	require.NoError(t, err)

	batch := NewBatchRecomputer(svc, store, BatchConfig{ChunkSize: 1}, nil)
	summary, err := batch.RunStale(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Requested)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, 2, summary.Records)
	assert.False(t, store.record(1, 2).NeedsRecalculation)
	assert.False(t, store.record(1, 3).NeedsRecalculation)

	stale, err := store.ListStaleUsers(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestBatchRunStaleAsync(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := svc.ComputePair(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.ProfileChanged(ctx, 2)
	require.NoError(t, err)

	batch := NewBatchRecomputer(svc, store, BatchConfig{}, nil)
	assert.Nil(t, batch.LastSummary())

	batchID := batch.RunStaleAsync(ctx)
	cancel()
	require.NotEmpty(t, batchID)

	assert.Eventually(t, func() bool {
		last := batch.LastSummary()
		return last != nil && last.BatchID == batchID
	}, 2*time.Second, 10*time.Millisecond)

	last := batch.LastSummary()
	assert.False(t, last.Cancelled)
	assert.Equal(t, 2, last.Succeeded)
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), 0))
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}
