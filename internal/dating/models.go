package dating

import (
	"time"

	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

// RecordFields are the computed values written by UpsertPairRecord.
type RecordFields struct {
	OverallCompatibility int                      `json:"overall_compatibility"`
	Breakdown            matching.RecordBreakdown `json:"breakdown"`
	ModelInfo            matching.ModelInfo       `json:"model_info"`
}

// CompatibilityChanged is emitted after a pair record is written.
type CompatibilityChanged struct {
	Pair      matching.PairKey              `json:"pair"`
	Record    *matching.CompatibilityRecord `json:"record"`
	ChangedAt time.Time                     `json:"changed_at"`
}

// ProfileChanged is the consumed signal telling the engine a user's profile
// fields were edited.
type ProfileChanged struct {
	UserID int64 `json:"user_id"`
}

// Recommendation is a stored record seen from one user's side.
type Recommendation struct {
	UserID               int64                       `json:"user_id" db:"partner_id"`
	DisplayName          string                      `json:"display_name" db:"display_name"`
	OverallCompatibility int                         `json:"compatibility_score" db:"overall_compatibility"`
	RelationshipStatus   matching.RelationshipStatus `json:"relationship_status" db:"relationship_status"`
	LastUpdated          time.Time                   `json:"last_updated" db:"last_updated"`
}

type BatchFailure struct {
	UserID int64  `json:"user_id"`
	Error  string `json:"error"`
}

// BatchSummary reports the outcome of a batch run. Partial progress is kept
// even when the run was cancelled.
type BatchSummary struct {
	BatchID    string         `json:"batch_id"`
	Requested  int            `json:"requested"`
	Processed  int            `json:"processed"`
	Succeeded  int            `json:"succeeded"`
	Records    int            `json:"records_updated"`
	Failures   []BatchFailure `json:"failures"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Cancelled  bool           `json:"cancelled"`
}

// TargetResult is one entry of a targeted compatibility batch.
type TargetResult struct {
	TargetUserID int64                         `json:"target_user_id"`
	Record       *matching.CompatibilityRecord `json:"record,omitempty"`
	Error        string                        `json:"error,omitempty"`
}

type TargetBatchResult struct {
	BatchID string          `json:"batch_id"`
	UserID  int64           `json:"user_id"`
	Results []*TargetResult `json:"results"`
	Failed  int             `json:"failed"`
}

func ptr[T any](v T) *T {
	return &v
}

// UserAnalysis is the personality and feature set derived for one user.
type UserAnalysis struct {
	UserID   int64                        `json:"user_id"`
	Analysis matching.PersonalityAnalysis `json:"analysis"`
	Features matching.ProfileFeatures     `json:"features"`
}

// LocationMatch is a candidate picked on location alone.
type LocationMatch struct {
	Profile     *matching.Profile `json:"profile"`
	MatchReason string            `json:"match_reason"`
}
