// internal/matching/aggregate.go

package matching

import (
	"math"
)

// Weights for the discovery score used when ranking unmatched candidates.
type DiscoveryWeights struct {
	Interest   float64
	Location   float64
	Age        float64
	Occupation float64
	Bio        float64
}

var DefaultDiscoveryWeights = DiscoveryWeights{
	Interest:   0.40,
	Location:   0.25,
	Age:        0.15,
	Occupation: 0.10,
	Bio:        0.10,
}

// Weights for the persisted pair record score.
type RecordWeights struct {
	Personality float64
	Interest    float64
	Demographic float64
}

var DefaultRecordWeights = RecordWeights{
	Personality: 0.40,
	Interest:    0.35,
	Demographic: 0.25,
}

func (w DiscoveryWeights) Apply(b SimilarityBreakdown) float64 {
	score := w.Interest*b.Interest +
		w.Location*b.Location +
		w.Age*b.Age +
		w.Occupation*b.Occupation +
		w.Bio*b.Bio
	return clamp(score, 0, 1)
}

// Breakdown computes every discovery dimension for the pair.
func Breakdown(a, b *Profile) SimilarityBreakdown {
	return SimilarityBreakdown{
		Interest:   InterestSimilarity(a.Interests, b.Interests),
		Location:   LocationSimilarity(a.Location, b.Location),
		Age:        AgeCompatibility(a.Age, b.Age),
		Occupation: OccupationSimilarity(a.Occupation, b.Occupation),
		Bio:        BioSimilarity(a.Bio, b.Bio),
	}
}

// ScoreDiscovery returns the weighted discovery score in [0,1] with its
// breakdown.
func ScoreDiscovery(a, b *Profile) (float64, SimilarityBreakdown) {
	breakdown := Breakdown(a, b)
	return DefaultDiscoveryWeights.Apply(breakdown), breakdown
}

// Percent renders a [0,1] score as a user facing integer percentage.
func Percent(score float64) int {
	return int(math.Round(clamp(score, 0, 1) * 100))
}

// ScoreRecord computes the persisted compatibility (0-100) and its breakdown.
func ScoreRecord(a, b *Profile) (int, RecordBreakdown) {
	return DefaultRecordWeights.score(a, b)
}

func (w RecordWeights) score(a, b *Profile) (int, RecordBreakdown) {
	personality := personalityCosine(a.Personality, b.Personality)
	interests := interestMatch(a.Interests, b.Interests)
	demographic := Demographics(a, b)

	overall := w.Personality*personality +
		w.Interest*float64(interests.Score) +
		w.Demographic*float64(demographic.Score)

	breakdown := RecordBreakdown{
		PersonalityMatch: PersonalityMatch{
			Score:   int(math.Round(personality)),
			Details: traitDistance(a.Personality, b.Personality),
		},
		InterestSimilarity:       interests,
		DemographicCompatibility: demographic,
	}
	return int(math.Round(clamp(overall, 0, 100))), breakdown
}

func interestMatch(a, b []string) InterestMatch {
	m := InterestMatch{
		Score:           int(math.Round(InterestSimilarity(a, b) * 100)),
		CommonInterests: SharedInterests(a, b),
	}
	na, nb := len(NormalizeInterests(a)), len(NormalizeInterests(b))
	if na > 0 && nb > 0 {
		m.InterestOverlap = int(math.Round(float64(len(m.CommonInterests)) / float64(min(na, nb)) * 100))
	}
	return m
}

// Demographics scores age, location, education and occupation on a 0-100
// scale. Any side missing a field gets 50 for that field.
func Demographics(a, b *Profile) DemographicBreakdown {
	d := DemographicBreakdown{
		Age:        ageDemographic(a, b),
		Location:   exactOrConstant(a.Location, b.Location, 30),
		Education:  educationDemographic(a.Education, b.Education),
		Occupation: exactOrConstant(a.Occupation, b.Occupation, 60),
	}
	mean := float64(d.Age+d.Location+d.Education+d.Occupation) / 4
	d.Score = int(math.Round(mean))
	return d
}

func ageDemographic(a, b *Profile) int {
	ageA, okA := a.KnownAge()
	ageB, okB := b.KnownAge()
	if !okA || !okB {
		return neutralPercent
	}
	diff := ageA - ageB
	if diff < 0 {
		diff = -diff
	}
	return max(0, 100-5*diff)
}

func exactOrConstant(a, b string, mismatch int) int {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return neutralPercent
	}
	if na == nb {
		return 100
	}
	return mismatch
}

func educationDemographic(a, b string) int {
	la, lb := educationIndex(a), educationIndex(b)
	if la < 0 || lb < 0 {
		return neutralPercent
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return max(30, 100-20*diff)
}
