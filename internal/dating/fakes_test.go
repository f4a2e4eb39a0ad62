package dating

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

// memStore is an in-memory RecordStore, ProfileStore and StatsStore.
type memStore struct {
	mu sync.Mutex

	profiles map[int64]*matching.Profile
	decided  map[int64][]int64
	swipers  map[int64][]int64
	records  map[matching.PairKey]*matching.CompatibilityRecord
	saved    map[int64]matching.PersonalityAnalysis
	pending  []int64
	nextID   int64

	// conflicts makes the next n upserts fail with a uniqueness conflict.
	conflicts int
	upserts   int
}

func newMemStore(profiles ...*matching.Profile) *memStore {
	s := &memStore{
		profiles: map[int64]*matching.Profile{},
		decided:  map[int64][]int64{},
		swipers:  map[int64][]int64{},
		records:  map[matching.PairKey]*matching.CompatibilityRecord{},
		saved:    map[int64]matching.PersonalityAnalysis{},
	}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *memStore) GetProfile(_ context.Context, userID int64) (*matching.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, &matching.NotFoundError{UserID: userID}
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListCandidates(_ context.Context, userID int64, limit int) ([]*matching.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*matching.Profile{}
	for id, p := range s.profiles {
		if id != userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) GetDecidedUserIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64{}, s.decided[userID]...), nil
}

// swipe records from swiping on to; later swipes list first.
func (s *memStore) swipe(from, to int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swipers[to] = append([]int64{from}, s.swipers[to]...)
	s.decided[from] = append(s.decided[from], to)
}

func (s *memStore) ListRecentSwipers(_ context.Context, userID int64, limit int) ([]*matching.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*matching.Profile{}
	for _, id := range s.swipers[userID] {
		if p, ok := s.profiles[id]; ok && len(out) < limit {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) SavePersonality(_ context.Context, userID int64, analysis matching.PersonalityAnalysis, _ matching.ProfileFeatures) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[userID] = analysis
	return nil
}

func (s *memStore) ListProfilesNeedingAnalysis(_ context.Context, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[:min(limit, len(s.pending))], nil
}

func (s *memStore) FindPairRecord(_ context.Context, a, b int64) (*matching.CompatibilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[matching.NewPairKey(a, b)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) UpsertPairRecord(_ context.Context, a, b int64, fields RecordFields) (*matching.CompatibilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	key := matching.NewPairKey(a, b)
	if s.conflicts > 0 {
		s.conflicts--
		return nil, &matching.RecordConflictError{Pair: key}
	}

	now := time.Now()
	rec, ok := s.records[key]
	if !ok {
		s.nextID++
		rec = &matching.CompatibilityRecord{
			ID:                 s.nextID,
			User1ID:            key.Low,
			User2ID:            key.High,
			RelationshipStatus: matching.StatusPotential,
			CreatedAt:          now,
		}
		s.records[key] = rec
	}
	rec.OverallCompatibility = fields.OverallCompatibility
	rec.Breakdown = fields.Breakdown
	rec.ModelInfo = fields.ModelInfo
	rec.NeedsRecalculation = false
	rec.LastUpdated = now

	cp := *rec
	return &cp, nil
}

func (s *memStore) MarkNeedsRecalculation(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, rec := range s.records {
		if key.Contains(userID) {
			rec.NeedsRecalculation = true
			n++
		}
	}
	return n, nil
}

func (s *memStore) SetRelationshipStatus(_ context.Context, a, b int64, status matching.RelationshipStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[matching.NewPairKey(a, b)]
	if !ok {
		return ErrRecordNotFound
	}
	rec.RelationshipStatus = status
	return nil
}

func (s *memStore) ListStaleUsers(_ context.Context, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[int64]bool{}
	ids := []int64{}
	for key, rec := range s.records {
		if !rec.NeedsRecalculation {
			continue
		}
		for _, id := range []int64{key.Low, key.High} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[:min(limit, len(ids))], nil
}

func (s *memStore) ListStalePartners(_ context.Context, userID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []int64{}
	for key, rec := range s.records {
		if rec.NeedsRecalculation && key.Contains(userID) {
			ids = append(ids, rec.PartnerOf(userID))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *memStore) ListUserRecords(_ context.Context, userID int64, minScore, limit int) ([]*Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := []*Recommendation{}
	for key, rec := range s.records {
		if !key.Contains(userID) || rec.OverallCompatibility < minScore {
			continue
		}
		if rec.RelationshipStatus != matching.StatusPotential && rec.RelationshipStatus != matching.StatusMatched {
			continue
		}
		partner := rec.PartnerOf(userID)
		name := ""
		if p, ok := s.profiles[partner]; ok {
			name = p.DisplayName
		}
		recs = append(recs, &Recommendation{
			UserID:               partner,
			DisplayName:          name,
			OverallCompatibility: rec.OverallCompatibility,
			RelationshipStatus:   rec.RelationshipStatus,
			LastUpdated:          rec.LastUpdated,
		})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].OverallCompatibility != recs[j].OverallCompatibility {
			return recs[i].OverallCompatibility > recs[j].OverallCompatibility
		}
		return recs[i].UserID < recs[j].UserID
	})
	return recs[:min(limit, len(recs))], nil
}

func (s *memStore) RecordStats(_ context.Context) (*EngineStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &EngineStats{StatusCounts: map[string]int64{}}
	var total int
	for _, rec := range s.records {
		stats.TotalRecords++
		if rec.NeedsRecalculation {
			stats.StaleRecords++
		}
		stats.StatusCounts[string(rec.RelationshipStatus)]++
		total += rec.OverallCompatibility
	}
	if stats.TotalRecords > 0 {
		stats.AverageCompatibility = float64(total) / float64(stats.TotalRecords)
	}
	stats.AnalyzedProfiles = int64(len(s.saved))
	return stats, nil
}

// record returns a snapshot of the stored pair, or a zero record.
func (s *memStore) record(a, b int64) matching.CompatibilityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[matching.NewPairKey(a, b)]; ok {
		return *rec
	}
	return matching.CompatibilityRecord{}
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []CompatibilityChanged
	err    error
}

func (p *recordingPublisher) PublishCompatibilityChanged(_ context.Context, evt CompatibilityChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Events() []CompatibilityChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]CompatibilityChanged{}, p.events...)
}

var errStoreDown = errors.New("store unavailable")

func intPtr(v int) *int { return &v }

// fixtureProfiles returns a small population with overlapping interests.
func fixtureProfiles() []*matching.Profile {
	return []*matching.Profile{
		{
			ID: 1, DisplayName: "Ada", Interests: []string{"music", "coding", "travel"},
			Location: "Lagos, Nigeria", Age: intPtr(28), Occupation: "Software Engineer",
			Education: "Bachelor", Bio: "I love music and building things",
		},
		{
			ID: 2, DisplayName: "Bayo", Interests: []string{"music", "coding", "hiking"},
			Location: "Lagos, Nigeria", Age: intPtr(29), Occupation: "Data Scientist",
			Education: "Master", Bio: "music and data keep me happy",
		},
		{
			ID: 3, DisplayName: "Chi", Interests: []string{"painting", "yoga"},
			Location: "Abuja, Nigeria", Age: intPtr(35), Occupation: "Nurse",
			Education: "Bachelor", Bio: "calm and caring",
		},
		{
			ID: 4, DisplayName: "Dayo", Interests: []string{"travel"},
			Location: "London, UK", Age: intPtr(45), Occupation: "Chef",
		},
		{ID: 5, DisplayName: "Efe"},
	}
}

func newTestService(store *memStore, pub EventPublisher) *service {
	svc := NewService(store, store, pub, nil).(*service)
	svc.retry.InitialDelay = time.Millisecond
	svc.retry.MaxDelay = time.Millisecond
	return svc
}
