package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE session_status AS ENUM ('working', 'break', 'signed_out'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS work_sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		username TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ,
		total_work_minutes INTEGER NOT NULL DEFAULT 0,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		status session_status NOT NULL DEFAULT 'working',
		last_break_start TIMESTAMPTZ,
		work_summary TEXT,
		UNIQUE (user_id, session_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_sessions_active ON work_sessions (user_id) WHERE end_time IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_work_sessions_started_at ON work_sessions (start_time)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		activity_type TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		duration_minutes INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_user_time ON activity_log (user_id, occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_time ON activity_log (occurred_at)`,
	`CREATE TABLE IF NOT EXISTS channel_mappings (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, guild_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channel_mappings_guild ON channel_mappings (guild_id)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
