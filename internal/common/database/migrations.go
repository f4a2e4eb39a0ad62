// internal/common/database/migrations.go
// Schema for the tables the matching engine reads and writes

package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var migrations = []string{
	// Users (owned by the account service, created here for standalone runs)
	`CREATE TABLE IF NOT EXISTS users (
        id SERIAL PRIMARY KEY,
        display_name VARCHAR(100) NOT NULL DEFAULT '',
        interests TEXT[] NOT NULL DEFAULT '{}',
        location VARCHAR(255),
        birth_date DATE,
        occupation VARCHAR(255),
        education VARCHAR(255),
        bio TEXT,
        is_active BOOLEAN DEFAULT TRUE,
        created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
    )`,

	`CREATE TABLE IF NOT EXISTS swipes (
        id SERIAL PRIMARY KEY,
        swiper_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        swiped_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        direction VARCHAR(10) NOT NULL DEFAULT 'left',
        created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT unique_swipe UNIQUE(swiper_id, swiped_id)
    )`,

	`CREATE TABLE IF NOT EXISTS matches (
        id SERIAL PRIMARY KEY,
        user1_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        user2_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        is_active BOOLEAN DEFAULT TRUE,
        matched_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT unique_match UNIQUE(user1_id, user2_id)
    )`,

	`CREATE TABLE IF NOT EXISTS blocks (
        id SERIAL PRIMARY KEY,
        blocker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        blocked_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT unique_block UNIQUE(blocker_id, blocked_id)
    )`,

	`CREATE TABLE IF NOT EXISTS personality_profiles (
        user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        openness NUMERIC(3,1) NOT NULL,
        conscientiousness NUMERIC(3,1) NOT NULL,
        extraversion NUMERIC(3,1) NOT NULL,
        agreeableness NUMERIC(3,1) NOT NULL,
        neuroticism NUMERIC(3,1) NOT NULL,
        social_score NUMERIC(3,1) NOT NULL,
        confidence NUMERIC(3,2) NOT NULL,
        interest_categories TEXT[] NOT NULL DEFAULT '{}',
        age_group VARCHAR(20),
        education_level VARCHAR(50),
        analyzed_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
    )`,

	// One record per unordered pair, stored with the smaller id first
	`CREATE TABLE IF NOT EXISTS compatibility_scores (
        id SERIAL PRIMARY KEY,
        user1_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        user2_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        overall_compatibility INTEGER NOT NULL CHECK (overall_compatibility BETWEEN 0 AND 100),
        breakdown JSONB NOT NULL DEFAULT '{}',
        relationship_status VARCHAR(20) NOT NULL DEFAULT 'potential',
        needs_recalculation BOOLEAN NOT NULL DEFAULT FALSE,
        model_info JSONB NOT NULL DEFAULT '{}',
        last_updated TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
        created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT unique_compatibility_pair UNIQUE(user1_id, user2_id),
        CONSTRAINT ordered_compatibility_pair CHECK (user1_id < user2_id)
    )`,

	`CREATE INDEX IF NOT EXISTS idx_swipes_swiper ON swipes(swiper_id)`,
	`CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_id)`,
	`CREATE INDEX IF NOT EXISTS idx_compat_user1 ON compatibility_scores(user1_id)`,
	`CREATE INDEX IF NOT EXISTS idx_compat_user2 ON compatibility_scores(user2_id)`,
	`CREATE INDEX IF NOT EXISTS idx_compat_stale ON compatibility_scores(needs_recalculation) WHERE needs_recalculation = TRUE`,
}

// Migrate creates any missing tables and indexes. Every statement is
// idempotent, so it runs on each start.
func Migrate(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	for i, migration := range migrations {
		logger.Debug("running migration", zap.Int("step", i+1), zap.Int("total", len(migrations)))
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	logger.Info("migrations executed", zap.Int("statements", len(migrations)))
	return nil
}
