// internal/matching/rank.go

package matching

import (
	"sort"
)

// DecidedSet holds candidate ids the user already acted on (swipes, active
// matches, blocks). They never appear in a ranking.
type DecidedSet map[int64]struct{}

func NewDecidedSet(ids ...int64) DecidedSet {
	s := make(DecidedSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s DecidedSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// ScoreCandidate computes the discovery candidate for user against c.
func ScoreCandidate(user, c *Profile) *MatchCandidate {
	score, breakdown := ScoreDiscovery(user, c)
	return &MatchCandidate{
		Profile:         c,
		OverallScore:    score,
		Percent:         Percent(score),
		Breakdown:       breakdown,
		SharedInterests: SharedInterests(user.Interests, c.Interests),
		Reason:          MatchReason(score, breakdown),
	}
}

// Eligible drops nil profiles, the user itself and decided candidates while
// keeping pool order.
func Eligible(userID int64, pool []*Profile, decided DecidedSet) []*Profile {
	out := make([]*Profile, 0, len(pool))
	for _, c := range pool {
		if c == nil || c.ID == userID || decided.Has(c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SelectTop keeps candidates scoring above minScore, sorts them by score
// descending with ties in input order, and truncates to limit. A limit <= 0
// keeps every candidate.
func SelectTop(scored []*MatchCandidate, limit int, minScore float64) []*MatchCandidate {
	kept := make([]*MatchCandidate, 0, len(scored))
	for _, c := range scored {
		if c != nil && c.OverallScore > minScore {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].OverallScore > kept[j].OverallScore
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

// RankCandidates scores the eligible pool sequentially and returns the top
// limit candidates.
func RankCandidates(user *Profile, pool []*Profile, decided DecidedSet, limit int, minScore float64) []*MatchCandidate {
	eligible := Eligible(user.ID, pool, decided)
	scored := make([]*MatchCandidate, len(eligible))
	for i, c := range eligible {
		scored[i] = ScoreCandidate(user, c)
	}
	return SelectTop(scored, limit, minScore)
}
