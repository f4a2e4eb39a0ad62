// internal/dating/service.go

package dating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

var (
	ErrRecordNotFound = errors.New("compatibility record not found")
	ErrInvalidStatus  = errors.New("invalid relationship status")
)

// Service manages persisted compatibility records and the personality data
// they are computed from.
type Service interface {
	// Pair records
	ComputePair(ctx context.Context, a, b int64) (*matching.CompatibilityRecord, error)
	ComputeForTargets(ctx context.Context, userID int64, targetIDs []int64) (*TargetBatchResult, error)
	RecomputeUser(ctx context.Context, userID int64) (int, error)
	SetRelationshipStatus(ctx context.Context, a, b int64, status matching.RelationshipStatus) error
	Recommendations(ctx context.Context, userID int64, minScore, limit int) ([]*Recommendation, error)

	// Profile changes
	ProfileChanged(ctx context.Context, userID int64) (int64, error)
	AnalyzeUser(ctx context.Context, userID int64) (*UserAnalysis, error)
	AnalyzePending(ctx context.Context, limit int) (int, error)
}

type service struct {
	records   RecordStore
	profiles  ProfileStore
	publisher EventPublisher
	logger    *zap.Logger
	retry     retryConfig
}

func NewService(records RecordStore, profiles ProfileStore, publisher EventPublisher, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		records:   records,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger,
		retry:     defaultRetryConfig(),
	}
}

func (s *service) ComputePair(ctx context.Context, a, b int64) (*matching.CompatibilityRecord, error) {
	if a == b {
		return nil, matching.ErrSameUser
	}
	start := time.Now()

	pa, err := s.loadProfile(ctx, a)
	if err != nil {
		return nil, err
	}
	pb, err := s.loadProfile(ctx, b)
	if err != nil {
		return nil, err
	}

	overall, breakdown := matching.ScoreRecord(pa, pb)
	fields := RecordFields{
		OverallCompatibility: overall,
		Breakdown:            breakdown,
		ModelInfo:            matching.CurrentModelInfo(),
	}

	var record *matching.CompatibilityRecord
	err = retry(ctx, s.retry, func() error {
		rec, err := s.records.UpsertPairRecord(ctx, a, b, fields)
		if errors.Is(err, matching.ErrRecordConflict) {
			RecordConflict()
			s.logger.Warn("pair record conflict, retrying",
				zap.Stringer("pair", matching.NewPairKey(a, b)), zap.Error(err))
			if _, ferr := s.records.FindPairRecord(ctx, a, b); ferr != nil {
				return ferr
			}
			return &retryableError{Err: err}
		}
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compute pair %s: %w", matching.NewPairKey(a, b), err)
	}

	RecordComputed(record.OverallCompatibility, time.Since(start))

	evt := CompatibilityChanged{Pair: record.Pair(), Record: record, ChangedAt: record.LastUpdated}
	if err := s.publisher.PublishCompatibilityChanged(ctx, evt); err != nil {
		s.logger.Warn("publish compatibility change failed",
			zap.Stringer("pair", evt.Pair), zap.Error(err))
	}

	return record, nil
}

// loadProfile fetches a profile and fills in a missing personality vector
// from its own fields.
func (s *service) loadProfile(ctx context.Context, userID int64) (*matching.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Personality == nil {
		analysis := matching.AnalyzeProfile(p)
		p.Personality = &analysis.Vector
	}
	return p, nil
}

func (s *service) ComputeForTargets(ctx context.Context, userID int64, targetIDs []int64) (*TargetBatchResult, error) {
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	result := &TargetBatchResult{
		BatchID: uuid.NewString(),
		UserID:  userID,
		Results: make([]*TargetResult, 0, len(targetIDs)),
	}
	seen := make(map[int64]struct{}, len(targetIDs))

	for _, target := range targetIDs {
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}

		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry := &TargetResult{TargetUserID: target}
		record, err := s.ComputePair(ctx, userID, target)
		if err != nil {
			entry.Error = err.Error()
			result.Failed++
			s.logger.Debug("target compatibility failed",
				zap.String("batch_id", result.BatchID),
				zap.Int64("user_id", userID),
				zap.Int64("target_id", target),
				zap.Error(err))
		} else {
			entry.Record = record
		}
		result.Results = append(result.Results, entry)
	}

	s.logger.Info("target compatibility batch finished",
		zap.String("batch_id", result.BatchID),
		zap.Int64("user_id", userID),
		zap.Int("targets", len(result.Results)),
		zap.Int("failed", result.Failed))

	return result, nil
}

// RecomputeUser recomputes every flagged record involving the user. It keeps
// going after a failed pair and reports all failures together.
func (s *service) RecomputeUser(ctx context.Context, userID int64) (int, error) {
	partners, err := s.records.ListStalePartners(ctx, userID)
	if err != nil {
		return 0, err
	}

	updated := 0
	var errs []error
	for _, partner := range partners {
		if _, err := s.ComputePair(ctx, userID, partner); err != nil {
			errs = append(errs, err)
			continue
		}
		updated++
	}
	return updated, errors.Join(errs...)
}

func (s *service) SetRelationshipStatus(ctx context.Context, a, b int64, status matching.RelationshipStatus) error {
	if a == b {
		return matching.ErrSameUser
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.records.SetRelationshipStatus(ctx, a, b, status)
}

func (s *service) Recommendations(ctx context.Context, userID int64, minScore, limit int) ([]*Recommendation, error) {
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.records.ListUserRecords(ctx, userID, minScore, limit)
}

func (s *service) ProfileChanged(ctx context.Context, userID int64) (int64, error) {
	marked, err := s.records.MarkNeedsRecalculation(ctx, userID)
	if err != nil {
		return 0, err
	}
	RecordMarkedStale(marked)

	if _, err := s.AnalyzeUser(ctx, userID); err != nil {
		return marked, err
	}

	s.logger.Info("profile change processed",
		zap.Int64("user_id", userID), zap.Int64("records_flagged", marked))
	return marked, nil
}

func (s *service) AnalyzeUser(ctx context.Context, userID int64) (*UserAnalysis, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	analysis := matching.AnalyzeProfile(p)
	features := matching.ExtractFeatures(p, analysis)
	if err := s.profiles.SavePersonality(ctx, userID, analysis, features); err != nil {
		return nil, err
	}

	return &UserAnalysis{UserID: userID, Analysis: analysis, Features: features}, nil
}

// AnalyzePending refreshes personality data for users whose profile changed
// since the last analysis. Individual failures are logged and skipped.
func (s *service) AnalyzePending(ctx context.Context, limit int) (int, error) {
	ids, err := s.profiles.ListProfilesNeedingAnalysis(ctx, limit)
	if err != nil {
		return 0, err
	}

	analyzed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return analyzed, err
		}
		if _, err := s.AnalyzeUser(ctx, id); err != nil {
			s.logger.Warn("personality analysis failed", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		analyzed++
	}
	return analyzed, nil
}
