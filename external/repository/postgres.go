package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ferret9/worklogbot/internal/repository"
)

const sessionColumns = `id, user_id, session_id, username, start_time, end_time,
	total_work_minutes, break_minutes, status, last_break_start, work_summary`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func scanSession(row pgx.Row) (*repository.Session, error) {
	var s repository.Session
	err := row.Scan(&s.ID, &s.UserID, &s.SessionID, &s.Username, &s.StartTime, &s.EndTime,
		&s.TotalWorkMinutes, &s.BreakMinutes, &s.Status, &s.LastBreakStart, &s.WorkSummary)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO work_sessions (user_id, session_id, username, start_time, status)
		 VALUES ($1, $2, $3, $4, 'working')
		 RETURNING `+sessionColumns,
		input.UserID, input.SessionID, input.Username, input.StartTime)
	return scanSession(row)
}

func (r *PostgresRepository) GetActiveSession(ctx context.Context, userID string) (*repository.Session, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM work_sessions WHERE user_id = $1 AND end_time IS NULL
		 LIMIT 1`,
		userID)
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) SetSessionOnBreak(ctx context.Context, userID, sessionID string, breakStart time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE work_sessions SET status = 'break', last_break_start = $3
		 WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID, breakStart)
	return err
}

func (r *PostgresRepository) SetSessionWorking(ctx context.Context, userID, sessionID string, addBreakMinutes int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE work_sessions
		 SET status = 'working', break_minutes = break_minutes + $3, last_break_start = NULL
		 WHERE user_id = $1 AND session_id = $2`,
		userID, sessionID, addBreakMinutes)
	return err
}

func (r *PostgresRepository) CloseSession(ctx context.Context, input repository.CloseSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE work_sessions
		 SET status = 'signed_out', end_time = $3, total_work_minutes = $4,
		     work_summary = COALESCE($5, work_summary)
		 WHERE user_id = $1 AND session_id = $2`,
		input.UserID, input.SessionID, input.EndTime, input.TotalWorkMinutes, input.WorkSummary)
	return err
}

func (r *PostgresRepository) ListSessionsStartedBetween(ctx context.Context, start, end time.Time) ([]repository.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM work_sessions WHERE start_time >= $1 AND start_time < $2
		 ORDER BY start_time ASC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) InsertLogEntry(ctx context.Context, input repository.InsertLogEntryInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_log (user_id, occurred_at, activity_type, details, duration_minutes)
		 VALUES ($1, $2, $3, $4, $5)`,
		input.UserID, input.OccurredAt, string(input.ActivityType), input.Details, input.DurationMinutes)
	return err
}

func (r *PostgresRepository) ListLogEntriesBetween(ctx context.Context, start, end time.Time) ([]repository.LogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, occurred_at, activity_type, details, duration_minutes
		 FROM activity_log WHERE occurred_at >= $1 AND occurred_at < $2
		 ORDER BY occurred_at ASC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.LogEntry
	for rows.Next() {
		var e repository.LogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.OccurredAt, &e.ActivityType, &e.Details, &e.DurationMinutes); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) UpsertChannelMapping(ctx context.Context, mapping repository.ChannelMapping) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO channel_mappings (user_id, guild_id, channel_id, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, guild_id)
		 DO UPDATE SET channel_id = EXCLUDED.channel_id, updated_at = EXCLUDED.updated_at`,
		mapping.UserID, mapping.GuildID, mapping.ChannelID, mapping.UpdatedAt)
	return err
}

func (r *PostgresRepository) GetChannelMapping(ctx context.Context, userID, guildID string) (*repository.ChannelMapping, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, guild_id, channel_id, updated_at
		 FROM channel_mappings WHERE user_id = $1 AND guild_id = $2`,
		userID, guildID)
	var m repository.ChannelMapping
	err := row.Scan(&m.UserID, &m.GuildID, &m.ChannelID, &m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PostgresRepository) ListChannelMappingsByGuild(ctx context.Context, guildID string) ([]repository.ChannelMapping, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, guild_id, channel_id, updated_at
		 FROM channel_mappings WHERE guild_id = $1`,
		guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.ChannelMapping
	for rows.Next() {
		var m repository.ChannelMapping
		if err := rows.Scan(&m.UserID, &m.GuildID, &m.ChannelID, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
