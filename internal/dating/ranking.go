// internal/dating/ranking.go

package dating

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

type RankingConfig struct {
	DefaultLimit  int
	MaxLimit      int
	CandidatePool int
	MinScore      float64
	Workers       int
}

func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		DefaultLimit:  15,
		MaxLimit:      50,
		CandidatePool: 500,
		MinScore:      0,
		Workers:       8,
	}
}

// RankOptions are per-request overrides. Zero Limit and nil MinScore fall
// back to the configured defaults.
type RankOptions struct {
	Limit    int
	MinScore *float64
}

// Ranker produces discovery candidates for a user.
type Ranker interface {
	RankCandidates(ctx context.Context, userID int64, opts RankOptions) ([]*matching.MatchCandidate, error)
	LocationMatches(ctx context.Context, userID int64, limit int) ([]*LocationMatch, error)
	RecentSwipers(ctx context.Context, userID int64, limit int) ([]*matching.Profile, error)
}

type RankingService struct {
	profiles ProfileStore
	cfg      RankingConfig
	logger   *zap.Logger
}

func NewRankingService(profiles ProfileStore, cfg RankingConfig, logger *zap.Logger) *RankingService {
	def := DefaultRankingConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = def.MaxLimit
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = def.CandidatePool
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{profiles: profiles, cfg: cfg, logger: logger}
}

func (s *RankingService) RankCandidates(ctx context.Context, userID int64, opts RankOptions) ([]*matching.MatchCandidate, error) {
	start := time.Now()

	user, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	pool, err := s.profiles.ListCandidates(ctx, userID, s.cfg.CandidatePool)
	if err != nil {
		return nil, err
	}

	decidedIDs, err := s.profiles.GetDecidedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	eligible := matching.Eligible(userID, pool, matching.NewDecidedSet(decidedIDs...))
	scored := make([]*matching.MatchCandidate, len(eligible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, c := range eligible {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i] = matching.ScoreCandidate(user, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	top := matching.SelectTop(scored, s.limit(opts.Limit), s.minScore(opts.MinScore))

	RecordRanking(len(eligible), len(top), time.Since(start))
	s.logger.Debug("ranked candidates",
		zap.Int64("user_id", userID),
		zap.Int("pool", len(pool)),
		zap.Int("excluded", len(pool)-len(eligible)),
		zap.Int("returned", len(top)))

	return top, nil
}

// LocationMatches lists active users in the same area as userID, unscored
// and in candidate order.
func (s *RankingService) LocationMatches(ctx context.Context, userID int64, limit int) ([]*LocationMatch, error) {
	user, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("location matches: %w", err)
	}

	pool, err := s.profiles.ListCandidates(ctx, userID, s.cfg.CandidatePool)
	if err != nil {
		return nil, err
	}

	limit = s.limit(limit)
	matches := []*LocationMatch{}
	for _, c := range pool {
		if len(matches) == limit {
			break
		}
		if c.ID != userID && matching.SameArea(user.Location, c.Location) {
			matches = append(matches, &LocationMatch{Profile: c, MatchReason: "Similar location"})
		}
	}

	s.logger.Debug("location matches",
		zap.Int64("user_id", userID),
		zap.Int("pool", len(pool)),
		zap.Int("returned", len(matches)))
	return matches, nil
}

// RecentSwipers lists users who swiped on userID, newest first.
func (s *RankingService) RecentSwipers(ctx context.Context, userID int64, limit int) ([]*matching.Profile, error) {
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return nil, fmt.Errorf("recent swipers: %w", err)
	}
	return s.profiles.ListRecentSwipers(ctx, userID, s.limit(limit))
}

func (s *RankingService) limit(requested int) int {
	if requested <= 0 {
		return s.cfg.DefaultLimit
	}
	return min(requested, s.cfg.MaxLimit)
}

func (s *RankingService) minScore(requested *float64) float64 {
	if requested == nil {
		return s.cfg.MinScore
	}
	return *requested
}
