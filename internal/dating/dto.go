// internal/dating/dto.go
package dating

import (
	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

// DTOs for API requests/responses

type DiscoverParams struct {
	Limit    int      `json:"limit" validate:"omitempty,min=1,max=50"`
	MinScore *float64 `json:"min_score,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type ListParams struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=50"`
}

type BatchCompatibilityDTO struct {
	TargetUserIDs []int64 `json:"target_user_ids" validate:"required,min=1,max=100,dive,gt=0"`
}

type RecommendationParams struct {
	MinCompatibility int `json:"min_compatibility" validate:"gte=0,lte=100"`
	Limit            int `json:"limit" validate:"min=1,max=50"`
}

func DefaultRecommendationParams() RecommendationParams {
	return RecommendationParams{MinCompatibility: 60, Limit: 10}
}

type RelationshipStatusDTO struct {
	Status matching.RelationshipStatus `json:"status" validate:"required,oneof=potential matched rejected blocked"`
}

type DiscoverResponse struct {
	Candidates []*matching.MatchCandidate `json:"candidates"`
	Count      int                        `json:"count"`
}

type LocationMatchesResponse struct {
	Matches []*LocationMatch `json:"matches"`
	Count   int              `json:"count"`
}

type IncomingSwipesResponse struct {
	Users []*matching.Profile `json:"users"`
	Count int                 `json:"count"`
}

type RecommendationsResponse struct {
	Recommendations []*Recommendation `json:"recommendations"`
	Count           int               `json:"count"`
}

type ProfileChangedResponse struct {
	UserID         int64 `json:"user_id"`
	RecordsFlagged int64 `json:"records_flagged"`
}

type RecomputeAcceptedResponse struct {
	BatchID string `json:"batch_id"`
	Status  string `json:"status"`
}
