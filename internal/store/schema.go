package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Table names.
const (
	tableUsers          = "users"
	tableExams          = "exams"
	tableSections       = "sections"
	tableQuestions      = "questions"
	tableSectionMastery = "section_progress"
	tableSessionAnswers = "section_question_progress"
	tableHistory        = "question_history"
	tableSettings       = "favorite_settings"
	tableMockAttempts   = "mock_attempts"
	tableMockDetails    = "mock_attempt_details"
)

// schema is applied on every Open; each statement is idempotent.
// Timestamps are stored as unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exams (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		rank INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exam_id INTEGER NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		rank INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_exam ON sections(exam_id, rank)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		body TEXT NOT NULL,
		option_a TEXT NOT NULL,
		option_b TEXT NOT NULL,
		option_c TEXT NOT NULL,
		option_d TEXT NOT NULL,
		correct_answer TEXT NOT NULL CHECK (correct_answer IN ('A', 'B', 'C', 'D')),
		explanation TEXT,
		rank INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_section ON questions(section_id, rank)`,
	`CREATE TABLE IF NOT EXISTS section_progress (
		user_id TEXT NOT NULL,
		section_id INTEGER NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		correct_count INTEGER NOT NULL DEFAULT 0,
		total_count INTEGER NOT NULL DEFAULT 0,
		last_studied_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, section_id),
		CHECK (correct_count >= 0 AND correct_count <= total_count)
	)`,
	`CREATE TABLE IF NOT EXISTS section_question_progress (
		user_id TEXT NOT NULL,
		section_id INTEGER NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
		question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		last_answer TEXT NOT NULL,
		is_correct INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, section_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS question_history (
		user_id TEXT NOT NULL,
		question_id INTEGER NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		is_correct INTEGER,
		favorite_level1 INTEGER NOT NULL DEFAULT 0,
		favorite_level2 INTEGER NOT NULL DEFAULT 0,
		favorite_level3 INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS favorite_settings (
		user_id TEXT PRIMARY KEY,
		level1_enabled INTEGER NOT NULL DEFAULT 1,
		level2_enabled INTEGER NOT NULL DEFAULT 1,
		level3_enabled INTEGER NOT NULL DEFAULT 1,
		combine_mode TEXT NOT NULL DEFAULT 'OR' CHECK (combine_mode IN ('OR', 'AND')),
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS mock_attempts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		exam_id INTEGER,
		score INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		taken_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mock_attempts_user ON mock_attempts(user_id, taken_at DESC)`,
	`CREATE TABLE IF NOT EXISTS mock_attempt_details (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		attempt_id TEXT NOT NULL REFERENCES mock_attempts(id) ON DELETE CASCADE,
		question_id INTEGER NOT NULL,
		user_answer TEXT NOT NULL,
		is_correct INTEGER NOT NULL,
		answered_at INTEGER NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
