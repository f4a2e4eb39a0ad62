// internal/matching/models.go

package matching

import (
	"fmt"
	"time"
)

// Profile is the read-only view of a user the engine scores against.
// Empty strings and nil pointers mean the field is absent.
type Profile struct {
	ID          int64              `json:"id" db:"id"`
	DisplayName string             `json:"display_name,omitempty" db:"display_name"`
	Interests   []string           `json:"interests"`
	Location    string             `json:"location,omitempty" db:"location"`
	Age         *int               `json:"age,omitempty" db:"age"`
	Occupation  string             `json:"occupation,omitempty" db:"occupation"`
	Education   string             `json:"education,omitempty" db:"education"`
	Bio         string             `json:"bio,omitempty" db:"bio"`
	Personality *PersonalityVector `json:"personality_vector,omitempty"`
}

// KnownAge returns the age and whether it is usable. Non-positive ages are
// treated as absent.
func (p *Profile) KnownAge() (int, bool) {
	if p == nil || p.Age == nil || *p.Age <= 0 {
		return 0, false
	}
	return *p.Age, true
}

type PersonalityVector struct {
	Openness          float64 `json:"openness" db:"openness"`
	Conscientiousness float64 `json:"conscientiousness" db:"conscientiousness"`
	Extraversion      float64 `json:"extraversion" db:"extraversion"`
	Agreeableness     float64 `json:"agreeableness" db:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism" db:"neuroticism"`
}

// traits returns the vector in a fixed trait order.
func (v PersonalityVector) traits() [5]float64 {
	return [5]float64{v.Openness, v.Conscientiousness, v.Extraversion, v.Agreeableness, v.Neuroticism}
}

// SimilarityBreakdown holds the discovery dimension scores, each in [0,1].
type SimilarityBreakdown struct {
	Interest   float64 `json:"interests"`
	Location   float64 `json:"location"`
	Age        float64 `json:"age"`
	Occupation float64 `json:"occupation"`
	Bio        float64 `json:"bio"`
}

type MatchCandidate struct {
	Profile         *Profile            `json:"profile"`
	OverallScore    float64             `json:"overall_score"`
	Percent         int                 `json:"compatibility_score"`
	Breakdown       SimilarityBreakdown `json:"breakdown"`
	SharedInterests []string            `json:"shared_interests"`
	Reason          string              `json:"reason"`
}

type RelationshipStatus string

const (
	StatusPotential RelationshipStatus = "potential"
	StatusMatched   RelationshipStatus = "matched"
	StatusRejected  RelationshipStatus = "rejected"
	StatusBlocked   RelationshipStatus = "blocked"
)

func (s RelationshipStatus) Valid() bool {
	switch s {
	case StatusPotential, StatusMatched, StatusRejected, StatusBlocked:
		return true
	}
	return false
}

// TraitDistance is the absolute per-trait difference between two vectors.
type TraitDistance struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

type PersonalityMatch struct {
	Score   int           `json:"score"`
	Details TraitDistance `json:"details"`
}

type InterestMatch struct {
	Score           int      `json:"score"`
	CommonInterests []string `json:"common_interests"`
	InterestOverlap int      `json:"interest_overlap"`
}

// DemographicBreakdown sub-scores are all on a 0-100 scale.
type DemographicBreakdown struct {
	Age        int `json:"age_compatibility"`
	Location   int `json:"location_compatibility"`
	Education  int `json:"education_compatibility"`
	Occupation int `json:"occupation_compatibility"`
	Score      int `json:"score"`
}

type RecordBreakdown struct {
	PersonalityMatch         PersonalityMatch     `json:"personality_match"`
	InterestSimilarity       InterestMatch        `json:"interest_similarity"`
	DemographicCompatibility DemographicBreakdown `json:"demographic_compatibility"`
}

type ModelInfo struct {
	ModelVersion  string   `json:"model_version"`
	AlgorithmUsed string   `json:"algorithm_used"`
	Confidence    float64  `json:"confidence_score"`
	FeaturesUsed  []string `json:"features_used"`
}

// CurrentModelInfo describes the scoring that produced a persisted record.
func CurrentModelInfo() ModelInfo {
	return ModelInfo{
		ModelVersion:  "compatibility-v1.2.0",
		AlgorithmUsed: "weighted_cosine_similarity",
		Confidence:    0.88,
		FeaturesUsed:  []string{"personality", "interests", "demographics"},
	}
}

// CompatibilityRecord is the persisted score for one unordered user pair.
// User1ID is always the smaller id.
type CompatibilityRecord struct {
	ID                   int64              `json:"id" db:"id"`
	User1ID              int64              `json:"user1_id" db:"user1_id"`
	User2ID              int64              `json:"user2_id" db:"user2_id"`
	OverallCompatibility int                `json:"overall_compatibility" db:"overall_compatibility"`
	Breakdown            RecordBreakdown    `json:"breakdown"`
	RelationshipStatus   RelationshipStatus `json:"relationship_status" db:"relationship_status"`
	NeedsRecalculation   bool               `json:"needs_recalculation" db:"needs_recalculation"`
	ModelInfo            ModelInfo          `json:"model_info"`
	LastUpdated          time.Time          `json:"last_updated" db:"last_updated"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
}

func (r *CompatibilityRecord) Pair() PairKey {
	return NewPairKey(r.User1ID, r.User2ID)
}

// PartnerOf returns the other user of the pair.
func (r *CompatibilityRecord) PartnerOf(userID int64) int64 {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// PairKey is the normalized key of an unordered user pair.
type PairKey struct {
	Low  int64 `json:"user1_id"`
	High int64 `json:"user2_id"`
}

func NewPairKey(a, b int64) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Low: a, High: b}
}

func (k PairKey) String() string {
	return fmt.Sprintf("%d:%d", k.Low, k.High)
}

func (k PairKey) Contains(userID int64) bool {
	return k.Low == userID || k.High == userID
}

type PersonalityAnalysis struct {
	Vector      PersonalityVector `json:"personality_vector"`
	SocialScore float64           `json:"social_score"`
	Confidence  float64           `json:"confidence"`
}

// ProfileFeatures are the derived, persisted per-user features.
type ProfileFeatures struct {
	InterestCategories []string `json:"interest_categories"`
	AgeGroup           string   `json:"age_group"`
	EducationLevel     int      `json:"education_level"`
	SocialScore        float64  `json:"social_score"`
}
