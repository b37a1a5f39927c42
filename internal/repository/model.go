package repository

import "time"

type SessionStatus string

const (
	SessionStatusWorking   SessionStatus = "working"
	SessionStatusBreak     SessionStatus = "break"
	SessionStatusSignedOut SessionStatus = "signed_out"
)

// CanTransitionTo reports whether moving from s to next is a legal session
// status transition. Signed-out sessions never transition again.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionStatusWorking:
		return next == SessionStatusBreak || next == SessionStatusSignedOut
	case SessionStatusBreak:
		return next == SessionStatusWorking || next == SessionStatusSignedOut
	default:
		return false
	}
}

// Active reports whether the status counts as an active work period.
func (s SessionStatus) Active() bool {
	return s == SessionStatusWorking || s == SessionStatusBreak
}

// Session is one work period for a user, from sign-in to sign-out.
// EndTime is nil until the session is closed; BreakMinutes accumulates
// closed break intervals only.
type Session struct {
	ID               string
	UserID           string
	SessionID        string
	Username         string
	StartTime        time.Time
	EndTime          *time.Time
	TotalWorkMinutes int
	BreakMinutes     int
	Status           SessionStatus
	LastBreakStart   *time.Time
	WorkSummary      *string
}

type ActivityType string

const (
	ActivitySignIn         ActivityType = "SignIn"
	ActivityBreak          ActivityType = "Break"
	ActivityBackFromBreak  ActivityType = "BackFromBreak"
	ActivitySignOut        ActivityType = "SignOut"
	ActivityUpdate         ActivityType = "Update"
	ActivityChannelMapping ActivityType = "ChannelMapping"
)

// LogEntry is an append-only audit record. Entries are never updated or
// deleted; ordering is by OccurredAt.
type LogEntry struct {
	ID              string
	UserID          string
	OccurredAt      time.Time
	ActivityType    ActivityType
	Details         string
	DurationMinutes *int
}

// ChannelMapping associates a user with their private notification channel
// in a guild. At most one mapping exists per (user, guild) pair.
type ChannelMapping struct {
	UserID    string
	GuildID   string
	ChannelID string
	UpdatedAt time.Time
}
