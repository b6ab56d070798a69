package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			level INTEGER DEFAULT 1,
			xp INTEGER DEFAULT 0,
			total_xp INTEGER DEFAULT 0,
			current_theme TEXT DEFAULT 'default',
			unlocked_themes TEXT,
			unlocked_badges TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			epic_id TEXT,

			status TEXT DEFAULT 'pending',
			verification_mode TEXT DEFAULT 'self_declaration',
			priority TEXT DEFAULT 'medium',

			due_date DATETIME,
			completed_date DATETIME,
			photo_evidence_url TEXT,

			xp_reward INTEGER NOT NULL,
			reward_display_name TEXT,
			is_routine INTEGER DEFAULT 0,

			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS epics (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT DEFAULT 'active',
			gift_id TEXT,
			task_ids TEXT,
			start_date DATETIME NOT NULL,
			target_date DATETIME,
			completed_date DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// The unlock condition is stored as JSON and decoded through the
		// canonical codec, so legacy rows with the old shape keep working.
		`CREATE TABLE IF NOT EXISTS gifts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT DEFAULT 'locked',
			type TEXT DEFAULT 'self_reward',
			unlock_condition TEXT NOT NULL,
			price REAL NOT NULL,
			currency TEXT DEFAULT 'JPY',
			reward_url TEXT,
			gift_url TEXT,
			current_streak INTEGER DEFAULT 0,
			last_streak_date DATETIME,
			unlocked_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// One row per user per calendar day.
		`CREATE TABLE IF NOT EXISTS activity (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			completed_tasks_count INTEGER DEFAULT 0,
			total_tasks_count INTEGER DEFAULT 0,
			xp_gained INTEGER DEFAULT 0,
			completion_rate REAL DEFAULT 0,
			UNIQUE(user_id, date)
		);`,
		`CREATE TABLE IF NOT EXISTS streaks (
			user_id TEXT PRIMARY KEY,
			current_streak INTEGER DEFAULT 0,
			longest_streak INTEGER DEFAULT 0,
			last_activity_date DATETIME
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_epic_id ON tasks(epic_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_gifts_status ON gifts(status);`,
		`CREATE INDEX IF NOT EXISTS idx_activity_user_date ON activity(user_id, date);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE gifts ADD COLUMN reward_url TEXT;`,
		`ALTER TABLE gifts ADD COLUMN current_streak INTEGER DEFAULT 0;`,
		`ALTER TABLE gifts ADD COLUMN last_streak_date DATETIME;`,
		`ALTER TABLE tasks ADD COLUMN reward_display_name TEXT;`,
		`ALTER TABLE tasks ADD COLUMN is_routine INTEGER DEFAULT 0;`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}
