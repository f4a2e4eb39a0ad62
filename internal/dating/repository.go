// internal/dating/repository.go

package dating

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

// RecordStore persists one compatibility record per unordered user pair.
// Every method accepts the pair in either order.
type RecordStore interface {
	FindPairRecord(ctx context.Context, a, b int64) (*matching.CompatibilityRecord, error)
	UpsertPairRecord(ctx context.Context, a, b int64, fields RecordFields) (*matching.CompatibilityRecord, error)
	MarkNeedsRecalculation(ctx context.Context, userID int64) (int64, error)
	SetRelationshipStatus(ctx context.Context, a, b int64, status matching.RelationshipStatus) error

	ListStaleUsers(ctx context.Context, limit int) ([]int64, error)
	ListStalePartners(ctx context.Context, userID int64) ([]int64, error)
	ListUserRecords(ctx context.Context, userID int64, minScore, limit int) ([]*Recommendation, error)
}

// ProfileStore is the read side of user profiles plus the derived
// personality data the engine writes back.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*matching.Profile, error)
	ListCandidates(ctx context.Context, userID int64, limit int) ([]*matching.Profile, error)
	GetDecidedUserIDs(ctx context.Context, userID int64) ([]int64, error)
	ListRecentSwipers(ctx context.Context, userID int64, limit int) ([]*matching.Profile, error)
	SavePersonality(ctx context.Context, userID int64, analysis matching.PersonalityAnalysis, features matching.ProfileFeatures) error
	ListProfilesNeedingAnalysis(ctx context.Context, limit int) ([]int64, error)
}

const uniqueViolation = "23505"

const (
	profileColumns = `
        SELECT u.id, u.display_name, u.interests, u.location,
               EXTRACT(YEAR FROM AGE(u.birth_date))::int AS age,
               u.occupation, u.education, u.bio,
               pp.openness, pp.conscientiousness, pp.extraversion,
               pp.agreeableness, pp.neuroticism
        FROM users u
        LEFT JOIN personality_profiles pp ON pp.user_id = u.id
    `

	getProfileQuery = profileColumns + ` WHERE u.id = $1`

	listCandidatesQuery = profileColumns + `
        WHERE u.id <> $1 AND u.is_active = TRUE
        ORDER BY u.id
        LIMIT $2
    `

	recentSwipersQuery = profileColumns + `
        JOIN swipes s ON s.swiper_id = u.id
        WHERE s.swiped_id = $1 AND u.is_active = TRUE
        ORDER BY s.created_at DESC, s.id DESC
        LIMIT $2
    `

	decidedUsersQuery = `
        SELECT swiped_id FROM swipes WHERE swiper_id = $1
        UNION
        SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
        FROM matches
        WHERE (user1_id = $1 OR user2_id = $1) AND is_active = TRUE
        UNION
        SELECT blocked_id FROM blocks WHERE blocker_id = $1
        UNION
        SELECT blocker_id FROM blocks WHERE blocked_id = $1
    `

	savePersonalityQuery = `
        INSERT INTO personality_profiles (
            user_id, openness, conscientiousness, extraversion, agreeableness, neuroticism,
            social_score, confidence, interest_categories, age_group, education_level, analyzed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
        ON CONFLICT (user_id)
        DO UPDATE SET
            openness = EXCLUDED.openness,
            conscientiousness = EXCLUDED.conscientiousness,
            extraversion = EXCLUDED.extraversion,
            agreeableness = EXCLUDED.agreeableness,
            neuroticism = EXCLUDED.neuroticism,
            social_score = EXCLUDED.social_score,
            confidence = EXCLUDED.confidence,
            interest_categories = EXCLUDED.interest_categories,
            age_group = EXCLUDED.age_group,
            education_level = EXCLUDED.education_level,
            analyzed_at = NOW()
    `

	profilesNeedingAnalysisQuery = `
        SELECT u.id
        FROM users u
        LEFT JOIN personality_profiles pp ON pp.user_id = u.id
        WHERE u.is_active = TRUE AND (pp.user_id IS NULL OR pp.analyzed_at < u.updated_at)
        ORDER BY u.id
        LIMIT $1
    `

	recordColumns = `id, user1_id, user2_id, overall_compatibility, breakdown, relationship_status,
        needs_recalculation, model_info, last_updated, created_at`

	findPairRecordQuery = `
        SELECT ` + recordColumns + `
        FROM compatibility_scores
        WHERE user1_id = $1 AND user2_id = $2
    `

	upsertPairRecordQuery = `
        INSERT INTO compatibility_scores (
            user1_id, user2_id, overall_compatibility, breakdown, model_info,
            relationship_status, needs_recalculation, last_updated
        ) VALUES ($1, $2, $3, $4, $5, 'potential', FALSE, NOW())
        ON CONFLICT (user1_id, user2_id)
        DO UPDATE SET
            overall_compatibility = EXCLUDED.overall_compatibility,
            breakdown = EXCLUDED.breakdown,
            model_info = EXCLUDED.model_info,
            needs_recalculation = FALSE,
            last_updated = NOW()
        RETURNING ` + recordColumns

	markNeedsRecalculationQuery = `
        UPDATE compatibility_scores
        SET needs_recalculation = TRUE
        WHERE user1_id = $1 OR user2_id = $1
    `

	setRelationshipStatusQuery = `
        UPDATE compatibility_scores
        SET relationship_status = $3, last_updated = NOW()
        WHERE user1_id = $1 AND user2_id = $2
    `

	staleUsersQuery = `
        SELECT user_id FROM (
            SELECT user1_id AS user_id FROM compatibility_scores WHERE needs_recalculation = TRUE
            UNION
            SELECT user2_id AS user_id FROM compatibility_scores WHERE needs_recalculation = TRUE
        ) stale
        ORDER BY user_id
        LIMIT $1
    `

	stalePartnersQuery = `
        SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END AS partner_id
        FROM compatibility_scores
        WHERE (user1_id = $1 OR user2_id = $1) AND needs_recalculation = TRUE
        ORDER BY partner_id
    `

	userRecordsQuery = `
        SELECT p.partner_id, COALESCE(u.display_name, '') AS display_name,
               p.overall_compatibility, p.relationship_status, p.last_updated
        FROM (
            SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END AS partner_id,
                   overall_compatibility, relationship_status, last_updated
            FROM compatibility_scores
            WHERE (user1_id = $1 OR user2_id = $1)
                  AND overall_compatibility >= $2
                  AND relationship_status IN ('potential', 'matched')
        ) p
        JOIN users u ON u.id = p.partner_id
        ORDER BY p.overall_compatibility DESC, p.partner_id
        LIMIT $3
    `
)

const (
	recordStatsQuery = `
        SELECT
            COUNT(*) AS total_records,
            COUNT(CASE WHEN needs_recalculation = TRUE THEN 1 END) AS stale_records,
            COALESCE(AVG(overall_compatibility), 0)::FLOAT AS average_compatibility
        FROM compatibility_scores
    `

	statusCountsQuery = `
        SELECT relationship_status, COUNT(*) AS total
        FROM compatibility_scores
        GROUP BY relationship_status
    `

	analysisStatsQuery = `
        SELECT
            COUNT(pp.user_id) AS analyzed_profiles,
            COUNT(CASE WHEN pp.user_id IS NULL OR pp.analyzed_at < u.updated_at THEN 1 END) AS pending_analysis
        FROM users u
        LEFT JOIN personality_profiles pp ON pp.user_id = u.id
        WHERE u.is_active = TRUE
    `
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type profileRow struct {
	ID                int64           `db:"id"`
	DisplayName       sql.NullString  `db:"display_name"`
	Interests         pq.StringArray  `db:"interests"`
	Location          sql.NullString  `db:"location"`
	Age               sql.NullInt64   `db:"age"`
	Occupation        sql.NullString  `db:"occupation"`
	Education         sql.NullString  `db:"education"`
	Bio               sql.NullString  `db:"bio"`
	Openness          sql.NullFloat64 `db:"openness"`
	Conscientiousness sql.NullFloat64 `db:"conscientiousness"`
	Extraversion      sql.NullFloat64 `db:"extraversion"`
	Agreeableness     sql.NullFloat64 `db:"agreeableness"`
	Neuroticism       sql.NullFloat64 `db:"neuroticism"`
}

func (r *profileRow) toProfile() *matching.Profile {
	p := &matching.Profile{
		ID:          r.ID,
		DisplayName: r.DisplayName.String,
		Interests:   []string(r.Interests),
		Location:    r.Location.String,
		Occupation:  r.Occupation.String,
		Education:   r.Education.String,
		Bio:         r.Bio.String,
	}
	if r.Age.Valid {
		p.Age = ptr(int(r.Age.Int64))
	}
	if r.Openness.Valid {
		p.Personality = &matching.PersonalityVector{
			Openness:          r.Openness.Float64,
			Conscientiousness: r.Conscientiousness.Float64,
			Extraversion:      r.Extraversion.Float64,
			Agreeableness:     r.Agreeableness.Float64,
			Neuroticism:       r.Neuroticism.Float64,
		}
	}
	return p
}

type recordRow struct {
	ID                   int64     `db:"id"`
	User1ID              int64     `db:"user1_id"`
	User2ID              int64     `db:"user2_id"`
	OverallCompatibility int       `db:"overall_compatibility"`
	Breakdown            []byte    `db:"breakdown"`
	RelationshipStatus   string    `db:"relationship_status"`
	NeedsRecalculation   bool      `db:"needs_recalculation"`
	ModelInfo            []byte    `db:"model_info"`
	LastUpdated          time.Time `db:"last_updated"`
	CreatedAt            time.Time `db:"created_at"`
}

func (r *recordRow) toRecord() (*matching.CompatibilityRecord, error) {
	rec := &matching.CompatibilityRecord{
		ID:                   r.ID,
		User1ID:              r.User1ID,
		User2ID:              r.User2ID,
		OverallCompatibility: r.OverallCompatibility,
		RelationshipStatus:   matching.RelationshipStatus(r.RelationshipStatus),
		NeedsRecalculation:   r.NeedsRecalculation,
		LastUpdated:          r.LastUpdated,
		CreatedAt:            r.CreatedAt,
	}
	if len(r.Breakdown) > 0 {
		if err := json.Unmarshal(r.Breakdown, &rec.Breakdown); err != nil {
			return nil, fmt.Errorf("decode breakdown for pair %d:%d: %w", r.User1ID, r.User2ID, err)
		}
	}
	if len(r.ModelInfo) > 0 {
		if err := json.Unmarshal(r.ModelInfo, &rec.ModelInfo); err != nil {
			return nil, fmt.Errorf("decode model info for pair %d:%d: %w", r.User1ID, r.User2ID, err)
		}
	}
	return rec, nil
}

// Profiles

func (r *PostgresRepository) GetProfile(ctx context.Context, userID int64) (*matching.Profile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, getProfileQuery, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &matching.NotFoundError{UserID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", userID, err)
	}
	return row.toProfile(), nil
}

func (r *PostgresRepository) ListCandidates(ctx context.Context, userID int64, limit int) ([]*matching.Profile, error) {
	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, listCandidatesQuery, userID, limit); err != nil {
		return nil, fmt.Errorf("list candidates for %d: %w", userID, err)
	}
	return toProfiles(rows), nil
}

// ListRecentSwipers returns active users who swiped on userID, newest swipe first.
func (r *PostgresRepository) ListRecentSwipers(ctx context.Context, userID int64, limit int) ([]*matching.Profile, error) {
	var rows []profileRow
	if err := r.db.SelectContext(ctx, &rows, recentSwipersQuery, userID, limit); err != nil {
		return nil, fmt.Errorf("list swipers of %d: %w", userID, err)
	}
	return toProfiles(rows), nil
}

func toProfiles(rows []profileRow) []*matching.Profile {
	profiles := make([]*matching.Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].toProfile())
	}
	return profiles
}

func (r *PostgresRepository) GetDecidedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, decidedUsersQuery, userID); err != nil {
		return nil, fmt.Errorf("decided users for %d: %w", userID, err)
	}
	return ids, nil
}

func (r *PostgresRepository) SavePersonality(ctx context.Context, userID int64, analysis matching.PersonalityAnalysis, features matching.ProfileFeatures) error {
	v := analysis.Vector
	_, err := r.db.ExecContext(
		ctx, savePersonalityQuery,
		userID, v.Openness, v.Conscientiousness, v.Extraversion, v.Agreeableness, v.Neuroticism,
		analysis.SocialScore, analysis.Confidence,
		pq.Array(features.InterestCategories), features.AgeGroup, features.EducationLevel,
	)
	if err != nil {
		return fmt.Errorf("save personality for %d: %w", userID, err)
	}
	return nil
}

func (r *PostgresRepository) ListProfilesNeedingAnalysis(ctx context.Context, limit int) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, profilesNeedingAnalysisQuery, limit); err != nil {
		return nil, fmt.Errorf("list profiles needing analysis: %w", err)
	}
	return ids, nil
}

// Compatibility records

func (r *PostgresRepository) FindPairRecord(ctx context.Context, a, b int64) (*matching.CompatibilityRecord, error) {
	key := matching.NewPairKey(a, b)

	var row recordRow
	err := r.db.GetContext(ctx, &row, findPairRecordQuery, key.Low, key.High)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pair record %s: %w", key, err)
	}
	return row.toRecord()
}

func (r *PostgresRepository) UpsertPairRecord(ctx context.Context, a, b int64, fields RecordFields) (*matching.CompatibilityRecord, error) {
	key := matching.NewPairKey(a, b)

	breakdownJSON, err := json.Marshal(fields.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("encode breakdown: %w", err)
	}
	modelJSON, err := json.Marshal(fields.ModelInfo)
	if err != nil {
		return nil, fmt.Errorf("encode model info: %w", err)
	}

	var row recordRow
	err = r.db.QueryRowxContext(
		ctx, upsertPairRecordQuery,
		key.Low, key.High, fields.OverallCompatibility, breakdownJSON, modelJSON,
	).StructScan(&row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, &matching.RecordConflictError{Pair: key, Err: err}
		}
		return nil, fmt.Errorf("upsert pair record %s: %w", key, err)
	}
	return row.toRecord()
}

func (r *PostgresRepository) MarkNeedsRecalculation(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, markNeedsRecalculationQuery, userID)
	if err != nil {
		return 0, fmt.Errorf("mark records of %d stale: %w", userID, err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) SetRelationshipStatus(ctx context.Context, a, b int64, status matching.RelationshipStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	key := matching.NewPairKey(a, b)

	res, err := r.db.ExecContext(ctx, setRelationshipStatusQuery, key.Low, key.High, string(status))
	if err != nil {
		return fmt.Errorf("set relationship status %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresRepository) ListStaleUsers(ctx context.Context, limit int) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, staleUsersQuery, limit); err != nil {
		return nil, fmt.Errorf("list stale users: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) ListStalePartners(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, stalePartnersQuery, userID); err != nil {
		return nil, fmt.Errorf("list stale partners of %d: %w", userID, err)
	}
	return ids, nil
}

func (r *PostgresRepository) ListUserRecords(ctx context.Context, userID int64, minScore, limit int) ([]*Recommendation, error) {
	recs := []*Recommendation{}
	if err := r.db.SelectContext(ctx, &recs, userRecordsQuery, userID, minScore, limit); err != nil {
		return nil, fmt.Errorf("list records of %d: %w", userID, err)
	}
	return recs, nil
}

// Stats

func (r *PostgresRepository) RecordStats(ctx context.Context) (*EngineStats, error) {
	stats := &EngineStats{StatusCounts: map[string]int64{}}

	err := r.db.QueryRowContext(ctx, recordStatsQuery).Scan(
		&stats.TotalRecords,
		&stats.StaleRecords,
		&stats.AverageCompatibility,
	)
	if err != nil {
		return nil, fmt.Errorf("record stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, statusCountsQuery)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var total int64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		stats.StatusCounts[status] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, analysisStatsQuery).Scan(
		&stats.AnalyzedProfiles,
		&stats.PendingAnalysis,
	)
	if err != nil {
		return nil, fmt.Errorf("analysis stats: %w", err)
	}
	return stats, nil
}
