package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	UserID    string
	SessionID string
	Username  string
	StartTime time.Time
}

type CloseSessionInput struct {
	UserID           string
	SessionID        string
	EndTime          time.Time
	TotalWorkMinutes int
	WorkSummary      *string
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	// GetActiveSession returns the user's session without an end time, or nil
	// when there is none. If more than one such row exists (a data anomaly),
	// an arbitrary match is returned.
	GetActiveSession(ctx context.Context, userID string) (*Session, error)
	SetSessionOnBreak(ctx context.Context, userID, sessionID string, breakStart time.Time) error
	// SetSessionWorking restores working status, adds the closed break
	// interval to the cumulative break minutes, and clears the break start.
	SetSessionWorking(ctx context.Context, userID, sessionID string, addBreakMinutes int) error
	CloseSession(ctx context.Context, input CloseSessionInput) error
	ListSessionsStartedBetween(ctx context.Context, start, end time.Time) ([]Session, error)
}

type InsertLogEntryInput struct {
	UserID          string
	OccurredAt      time.Time
	ActivityType    ActivityType
	Details         string
	DurationMinutes *int
}

type ActivityLogRepository interface {
	InsertLogEntry(ctx context.Context, input InsertLogEntryInput) error
	ListLogEntriesBetween(ctx context.Context, start, end time.Time) ([]LogEntry, error)
}

type ChannelMappingRepository interface {
	UpsertChannelMapping(ctx context.Context, mapping ChannelMapping) error
	GetChannelMapping(ctx context.Context, userID, guildID string) (*ChannelMapping, error)
	ListChannelMappingsByGuild(ctx context.Context, guildID string) ([]ChannelMapping, error)
}

type Repository interface {
	SessionRepository
	ActivityLogRepository
	ChannelMappingRepository
}
