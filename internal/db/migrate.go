package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		role                TEXT NOT NULL DEFAULT '',
		communication_style TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id             TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		accepted_categories TEXT NOT NULL DEFAULT '[]',
		avoided_categories  TEXT NOT NULL DEFAULT '[]',
		constraints         TEXT NOT NULL DEFAULT '[]',
		updated_at          TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'todo'
		                CHECK(status IN ('todo','in_progress','done')),
		priority        TEXT NOT NULL DEFAULT 'medium'
		                CHECK(priority IN ('high','medium','low')),
		due_date        TEXT,
		assigned_to     TEXT NOT NULL DEFAULT '',
		can_delegate    INTEGER NOT NULL DEFAULT 0,
		estimated_hours REAL NOT NULL DEFAULT 0,
		completed_at    TEXT,
		created_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status)`,

	`CREATE TABLE IF NOT EXISTS meetings (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		attendees    TEXT NOT NULL DEFAULT '[]',
		is_recurring INTEGER NOT NULL DEFAULT 0,
		is_optional  INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_meetings_user_start ON meetings(user_id, start_time)`,

	`CREATE TABLE IF NOT EXISTS qualitative_entries (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content    TEXT NOT NULL,
		entry_type TEXT NOT NULL DEFAULT 'diary'
		           CHECK(entry_type IN ('diary','check_in','transcript')),
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_entries_user_created ON qualitative_entries(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS burnout_analyses (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		final_score          REAL NOT NULL CHECK(final_score >= 0 AND final_score <= 100),
		level                TEXT NOT NULL CHECK(level IN ('GREEN','YELLOW','RED')),
		workload_score       REAL NOT NULL,
		sentiment_adjustment REAL NOT NULL DEFAULT 0,
		breakdown            TEXT NOT NULL DEFAULT '{}',
		contribution         TEXT NOT NULL DEFAULT '{}',
		metrics              TEXT NOT NULL DEFAULT '{}',
		sentiment            TEXT NOT NULL DEFAULT '{}',
		insights             TEXT NOT NULL DEFAULT '[]',
		trend                TEXT NOT NULL DEFAULT '{}',
		degraded             INTEGER NOT NULL DEFAULT 0,
		analyzed_at          TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_analyses_user_time ON burnout_analyses(user_id, analyzed_at)`,

	`CREATE TABLE IF NOT EXISTS behavioral_profiles (
		user_id         TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		baseline_score  REAL NOT NULL,
		stress_triggers TEXT NOT NULL DEFAULT '[]',
		trend_direction TEXT NOT NULL DEFAULT 'stable'
		                CHECK(trend_direction IN ('rising','falling','stable')),
		sample_days     INTEGER NOT NULL DEFAULT 0,
		version         INTEGER NOT NULL DEFAULT 1,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS strategy_documents (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		text         TEXT NOT NULL,
		category     TEXT NOT NULL DEFAULT '',
		evidence_tag TEXT NOT NULL DEFAULT '',
		embedding    BLOB NOT NULL,
		dims         INTEGER NOT NULL,
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS recommendations (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		analysis_id     TEXT NOT NULL REFERENCES burnout_analyses(id) ON DELETE CASCADE,
		title           TEXT NOT NULL,
		priority        TEXT NOT NULL CHECK(priority IN ('high','medium','low')),
		category        TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		action_steps    TEXT NOT NULL DEFAULT '[]',
		expected_impact TEXT NOT NULL DEFAULT '',
		metadata        TEXT NOT NULL DEFAULT '{}',
		created_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_analysis ON recommendations(analysis_id)`,

	`CREATE TABLE IF NOT EXISTS recommendation_applications (
		id                   TEXT PRIMARY KEY,
		recommendation_id    TEXT NOT NULL UNIQUE REFERENCES recommendations(id) ON DELETE CASCADE,
		user_id              TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status               TEXT NOT NULL DEFAULT 'applied'
		                     CHECK(status IN ('applied','in_progress','completed','cancelled')),
		tasks_created        INTEGER NOT NULL DEFAULT 0,
		events_created       INTEGER NOT NULL DEFAULT 0,
		score_before         REAL NOT NULL DEFAULT 0,
		score_after          REAL,
		improvement          REAL,
		effectiveness_rating INTEGER CHECK(effectiveness_rating BETWEEN 1 AND 5),
		notes                TEXT NOT NULL DEFAULT '',
		applied_at           TEXT NOT NULL,
		completed_at         TEXT,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_applications_user ON recommendation_applications(user_id)`,

	`CREATE TABLE IF NOT EXISTS recommendation_action_items (
		id             TEXT PRIMARY KEY,
		application_id TEXT NOT NULL REFERENCES recommendation_applications(id) ON DELETE CASCADE,
		step_index     INTEGER NOT NULL,
		text           TEXT NOT NULL,
		kind           TEXT NOT NULL CHECK(kind IN ('task','time_block')),
		priority       TEXT NOT NULL CHECK(priority IN ('high','medium','low')),
		due_date       TEXT,
		duration_min   INTEGER NOT NULL DEFAULT 0,
		task_id        TEXT,
		event_id       TEXT,
		created_at     TEXT NOT NULL,
		CHECK(task_id IS NULL OR event_id IS NULL)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_action_items_application ON recommendation_action_items(application_id)`,

	`CREATE TABLE IF NOT EXISTS recommendation_feedback (
		id                TEXT PRIMARY KEY,
		recommendation_id TEXT NOT NULL REFERENCES recommendations(id) ON DELETE CASCADE,
		user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rating            INTEGER NOT NULL CHECK(rating BETWEEN 1 AND 5),
		completed         INTEGER NOT NULL DEFAULT 0,
		notes             TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_feedback_recommendation ON recommendation_feedback(recommendation_id)`,
}
