package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DropSchema removes every table. Used by repository tests.
func DropSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		DROP TABLE IF EXISTS team_scores CASCADE;
		DROP TABLE IF EXISTS judge_scores CASCADE;
		DROP TABLE IF EXISTS teams CASCADE;
		DROP TABLE IF EXISTS users CASCADE;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

const schema = `
-- Users (role records, provisioned out of band)
CREATE TABLE IF NOT EXISTS users (
    uid TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('volunteer', 'judge', 'admin')),
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT users_email_key UNIQUE (email)
);

-- Teams
CREATE TABLE IF NOT EXISTS teams (
    id SERIAL PRIMARY KEY,
    team_number TEXT NOT NULL,
    team_name TEXT NOT NULL,
    school_name TEXT NOT NULL,
    student1 TEXT NOT NULL,
    student2 TEXT NOT NULL,
    category TEXT NOT NULL CHECK (category IN ('jr', 'sr')),
    status TEXT NOT NULL DEFAULT 'registered'
        CHECK (status IN ('registered', 'waiting', 'checked-in', 'completed')),
    arrival_time TIMESTAMPTZ,
    check_in_time TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT teams_team_number_key UNIQUE (team_number)
);

-- Judge scores, one per (team, judge)
CREATE TABLE IF NOT EXISTS judge_scores (
    id SERIAL PRIMARY KEY,
    team_number TEXT NOT NULL,
    judge_id TEXT NOT NULL,
    judge_name TEXT NOT NULL,
    criteria1 INTEGER NOT NULL CHECK (criteria1 BETWEEN 1 AND 10),
    criteria2 INTEGER NOT NULL CHECK (criteria2 BETWEEN 1 AND 10),
    criteria3 INTEGER NOT NULL CHECK (criteria3 BETWEEN 1 AND 10),
    criteria4 INTEGER NOT NULL CHECK (criteria4 BETWEEN 1 AND 10),
    criteria5 INTEGER NOT NULL CHECK (criteria5 BETWEEN 1 AND 10),
    comments TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT judge_scores_team_judge_key UNIQUE (team_number, judge_id)
);

CREATE INDEX IF NOT EXISTS idx_judge_scores_team_number ON judge_scores(team_number);

-- Team score aggregates, rebuilt by the standings job
CREATE TABLE IF NOT EXISTS team_scores (
    team_number TEXT PRIMARY KEY,
    category TEXT NOT NULL,
    avg_criteria1 DOUBLE PRECISION NOT NULL,
    avg_criteria2 DOUBLE PRECISION NOT NULL,
    avg_criteria3 DOUBLE PRECISION NOT NULL,
    avg_criteria4 DOUBLE PRECISION NOT NULL,
    avg_criteria5 DOUBLE PRECISION NOT NULL,
    total_score DOUBLE PRECISION NOT NULL,
    rank INTEGER,
    judge_count INTEGER NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
