package dating

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

func TestComputePairStoresOneRecordPerPair(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	pub := &recordingPublisher{}
	svc := newTestService(store, pub)
	ctx := context.Background()

	first, err := svc.ComputePair(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.User1ID)
	assert.Equal(t, int64(2), first.User2ID)
	assert.GreaterOrEqual(t, first.OverallCompatibility, 0)
	assert.LessOrEqual(t, first.OverallCompatibility, 100)
	assert.Equal(t, matching.CurrentModelInfo().ModelVersion, first.ModelInfo.ModelVersion)

	second, err := svc.ComputePair(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OverallCompatibility, second.OverallCompatibility)
	assert.Len(t, store.records, 1)

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, matching.NewPairKey(1, 2), events[0].Pair)
	assert.Equal(t, first.ID, events[0].Record.ID)
}

func TestComputePairErrors(t *testing.T) {
	svc := newTestService(newMemStore(fixtureProfiles()...), nil)
	ctx := context.Background()

	_, err := svc.ComputePair(ctx, 1, 1)
	assert.ErrorIs(t, err, matching.ErrSameUser)

	_, err = svc.ComputePair(ctx, 1, 99)
	assert.ErrorIs(t, err, matching.ErrNotFound)
	var nf *matching.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(99), nf.UserID)
}

func TestComputePairFillsMissingPersonality(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)

	record, err := svc.ComputePair(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.NotZero(t, record.Breakdown.PersonalityMatch.Score)
	assert.Nil(t, store.profiles[1].Personality)
}

func TestComputePairRetriesConflicts(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	store.conflicts = 2
	svc := newTestService(store, nil)
	before := testutil.ToFloat64(recordConflicts)

	record, err := svc.ComputePair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.NotNil(t, record)
	assert.Equal(t, 3, store.upserts)
	assert.Equal(t, 2.0, testutil.ToFloat64(recordConflicts)-before)
}

func TestComputePairGivesUpAfterRepeatedConflicts(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	store.conflicts = 10
	svc := newTestService(store, nil)

	_, err := svc.ComputePair(context.Background(), 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, matching.ErrRecordConflict)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
	assert.Equal(t, 3, store.upserts)
}

func TestComputePairIgnoresPublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("redis down")}
	svc := newTestService(newMemStore(fixtureProfiles()...), pub)

	_, err := svc.ComputePair(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Len(t, pub.Events(), 1)
}

func TestComputeForTargets(t *testing.T) {
	svc := newTestService(newMemStore(fixtureProfiles()...), nil)

	result, err := svc.ComputeForTargets(context.Background(), 1, []int64{2, 3, 2, 99, 1})
	require.NoError(t, err)
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, int64(1), result.UserID)
	require.Len(t, result.Results, 4)
	assert.Equal(t, 2, result.Failed)

	byTarget := map[int64]*TargetResult{}
	for _, r := range result.Results {
		byTarget[r.TargetUserID] = r
	}
	assert.NotNil(t, byTarget[2].Record)
	assert.NotNil(t, byTarget[3].Record)
	assert.Contains(t, byTarget[99].Error, "user 99 not found")
	assert.Equal(t, matching.ErrSameUser.Error(), byTarget[1].Error)
}

func TestComputeForTargetsUnknownUser(t *testing.T) {
	svc := newTestService(newMemStore(fixtureProfiles()...), nil)

	_, err := svc.ComputeForTargets(context.Background(), 42, []int64{1})
	assert.ErrorIs(t, err, matching.ErrNotFound)
}

func TestProfileChangedFlagsAndRecomputes(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)
	ctx := context.Background()

	for _, pair := range [][2]int64{{1, 2}, {1, 3}, {2, 3}} {
		_, err := svc.ComputePair(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}
	before := testutil.ToFloat64(recordsMarkedStale)

	flagged, err := svc.ProfileChanged(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), flagged)
	assert.Equal(t, 2.0, testutil.ToFloat64(recordsMarkedStale)-before)
	assert.True(t, store.record(1, 2).NeedsRecalculation)
	assert.True(t, store.record(3, 1).NeedsRecalculation)
	assert.False(t, store.record(2, 3).NeedsRecalculation)
	assert.Contains(t, store.saved, int64(1))

	updated, err := svc.RecomputeUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.False(t, store.record(1, 2).NeedsRecalculation)
	assert.False(t, store.record(1, 3).NeedsRecalculation)
}

func TestRecomputeUserReportsFailedPairs(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)
	ctx := context.Background()

	_, err := svc.ComputePair(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.ComputePair(ctx, 1, 3)
	require.NoError(t, err)
	_, err = svc.ProfileChanged(ctx, 1)
	require.NoError(t, err)
	delete(store.profiles, 3)

	updated, err := svc.RecomputeUser(ctx, 1)
	assert.Equal(t, 1, updated)
	assert.ErrorIs(t, err, matching.ErrNotFound)
}

func TestSetRelationshipStatus(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetRelationshipStatus(ctx, 1, 2, "friends"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.SetRelationshipStatus(ctx, 1, 2, matching.StatusMatched), ErrRecordNotFound)
	assert.ErrorIs(t, svc.SetRelationshipStatus(ctx, 2, 2, matching.StatusMatched), matching.ErrSameUser)

	_, err := svc.ComputePair(ctx, 1, 2)
	require.NoError(t, err)
	require.NoError(t, svc.SetRelationshipStatus(ctx, 2, 1, matching.StatusMatched))
	assert.Equal(t, matching.StatusMatched, store.record(1, 2).RelationshipStatus)
}

func TestRecommendations(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)
	ctx := context.Background()

	for _, target := range []int64{2, 3, 4} {
		_, err := svc.ComputePair(ctx, 1, target)
		require.NoError(t, err)
	}
	require.NoError(t, svc.SetRelationshipStatus(ctx, 1, 4, matching.StatusRejected))

	recs, err := svc.Recommendations(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.GreaterOrEqual(t, recs[0].OverallCompatibility, recs[1].OverallCompatibility)
	for _, r := range recs {
		assert.NotEqual(t, int64(4), r.UserID)
	}

	recs, err = svc.Recommendations(ctx, 1, 101, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)

	_, err = svc.Recommendations(ctx, 77, 0, 10)
	assert.ErrorIs(t, err, matching.ErrNotFound)
}

func TestAnalyzePendingSkipsFailures(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	store.pending = []int64{1, 99, 2}
	svc := newTestService(store, nil)

	n, err := svc.AnalyzePending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, store.saved, int64(1))
	assert.Contains(t, store.saved, int64(2))
}

func TestAnalyzeUser(t *testing.T) {
	store := newMemStore(fixtureProfiles()...)
	svc := newTestService(store, nil)

	analysis, err := svc.AnalyzeUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), analysis.UserID)
	assert.Equal(t, matching.AnalyzeProfile(store.profiles[1]), analysis.Analysis)
	assert.NotEmpty(t, analysis.Features.InterestCategories)
}
