package worklog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ferret9/worklogbot/internal/repository"
)

const defaultBreakReason = "No reason provided"

// Tracker owns the session lifecycle: sign-in, breaks, updates, sign-out.
// Every mutating operation appends an activity-log entry. Store errors
// propagate to the caller unmodified; there is no retry.
//
// In the default (permissive) mode StartSession does not check for an
// existing active session, so two near-simultaneous sign-ins can both
// succeed and leave two active sessions for one user. Strict mode closes
// that race with a per-user lock and an active-session pre-check.
type Tracker struct {
	repo   repository.Repository
	strict bool
	clock  func() time.Time

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewTracker(repo repository.Repository, strict bool) *Tracker {
	return &Tracker{
		repo:      repo,
		strict:    strict,
		clock:     time.Now,
		userLocks: make(map[string]*sync.Mutex),
	}
}

func (t *Tracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		t.userLocks[userID] = lock
	}
	return lock
}

// lockUser serializes a read-modify-write sequence for one user when strict
// mode is on. The returned func is a no-op unlock otherwise.
func (t *Tracker) lockUser(userID string) func() {
	if !t.strict {
		return func() {}
	}
	lock := t.userLock(userID)
	lock.Lock()
	return lock.Unlock
}

// StartSession creates a new working session and logs a SignIn entry.
func (t *Tracker) StartSession(ctx context.Context, userID, username string) (string, error) {
	defer t.lockUser(userID)()

	if t.strict {
		existing, err := t.repo.GetActiveSession(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("check active session: %w", err)
		}
		if existing != nil {
			return "", ErrSessionActive
		}
	}

	now := t.clock()
	sessionID := uuid.NewString()
	if _, err := t.repo.CreateSession(ctx, repository.CreateSessionInput{
		UserID:    userID,
		SessionID: sessionID,
		Username:  username,
		StartTime: now,
	}); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if err := t.repo.InsertLogEntry(ctx, repository.InsertLogEntryInput{
		UserID:       userID,
		OccurredAt:   now,
		ActivityType: repository.ActivitySignIn,
		Details:      "Started work session",
	}); err != nil {
		return "", fmt.Errorf("log sign-in: %w", err)
	}
	slog.Info("started work session", "user_id", userID, "session_id", sessionID)
	return sessionID, nil
}

// ActiveSession returns the user's active session, or nil when none exists.
func (t *Tracker) ActiveSession(ctx context.Context, userID string) (*repository.Session, error) {
	return t.repo.GetActiveSession(ctx, userID)
}

// StartBreak moves an active session onto break and records the break start.
func (t *Tracker) StartBreak(ctx context.Context, userID, reason string) (time.Time, error) {
	defer t.lockUser(userID)()

	sess, err := t.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("get active session: %w", err)
	}
	if sess == nil {
		return time.Time{}, ErrNoActiveSession
	}
	if !sess.Status.CanTransitionTo(repository.SessionStatusBreak) {
		return time.Time{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sess.Status, repository.SessionStatusBreak)
	}

	now := t.clock()
	if err := t.repo.SetSessionOnBreak(ctx, userID, sess.SessionID, now); err != nil {
		return time.Time{}, fmt.Errorf("set session on break: %w", err)
	}
	if reason == "" {
		reason = defaultBreakReason
	}
	if err := t.repo.InsertLogEntry(ctx, repository.InsertLogEntryInput{
		UserID:       userID,
		OccurredAt:   now,
		ActivityType: repository.ActivityBreak,
		Details:      reason,
	}); err != nil {
		return time.Time{}, fmt.Errorf("log break: %w", err)
	}
	slog.Info("break started", "user_id", userID, "session_id", sess.SessionID)
	return now, nil
}

// BreakResult reports the length of a just-closed break.
type BreakResult struct {
	Minutes int
	Seconds int64
}

// EndBreak closes the open break interval, adds the rounded minutes to the
// session's cumulative break duration, and restores working status.
func (t *Tracker) EndBreak(ctx context.Context, userID string) (BreakResult, error) {
	defer t.lockUser(userID)()

	sess, err := t.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return BreakResult{}, fmt.Errorf("get active session: %w", err)
	}
	if sess == nil {
		return BreakResult{}, ErrNoActiveSession
	}
	if sess.LastBreakStart == nil {
		return BreakResult{}, ErrNoBreakStart
	}
	if sess.LastBreakStart.IsZero() {
		return BreakResult{}, ErrInvalidBreakStart
	}
	if !sess.Status.CanTransitionTo(repository.SessionStatusWorking) {
		return BreakResult{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sess.Status, repository.SessionStatusWorking)
	}

	now := t.clock()
	seconds := int64(now.Sub(*sess.LastBreakStart).Round(time.Second) / time.Second)
	minutes := roundSecondsToMinutes(seconds)

	if err := t.repo.SetSessionWorking(ctx, userID, sess.SessionID, minutes); err != nil {
		return BreakResult{}, fmt.Errorf("set session working: %w", err)
	}
	if err := t.repo.InsertLogEntry(ctx, repository.InsertLogEntryInput{
		UserID:          userID,
		OccurredAt:      now,
		ActivityType:    repository.ActivityBackFromBreak,
		Details:         fmt.Sprintf("Returned from break (%d minutes)", minutes),
		DurationMinutes: &minutes,
	}); err != nil {
		return BreakResult{}, fmt.Errorf("log back from break: %w", err)
	}
	slog.Info("break ended", "user_id", userID, "session_id", sess.SessionID, "break_minutes", minutes)
	return BreakResult{Minutes: minutes, Seconds: seconds}, nil
}

// SessionSummary is returned by EndSession for the closed session.
type SessionSummary struct {
	TotalWorkMinutes  int
	TotalBreakMinutes int
	StartTime         time.Time
	EndTime           time.Time
	WorkSummary       string
}

// EndSession closes the user's active session. Work duration is total elapsed
// minutes minus cumulative break minutes; inconsistent clocks or breaks can
// drive it negative and that is not guarded. Returns (nil, nil) when no
// active session matches.
func (t *Tracker) EndSession(ctx context.Context, userID, sessionID, workSummary string) (*SessionSummary, error) {
	defer t.lockUser(userID)()

	sess, err := t.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	now := t.clock()
	totalMinutes := roundSecondsToMinutes(int64(now.Sub(sess.StartTime).Round(time.Second) / time.Second))
	workMinutes := totalMinutes - sess.BreakMinutes

	var summary *string
	if workSummary != "" {
		summary = &workSummary
	}
	if err := t.repo.CloseSession(ctx, repository.CloseSessionInput{
		UserID:           userID,
		SessionID:        sessionID,
		EndTime:          now,
		TotalWorkMinutes: workMinutes,
		WorkSummary:      summary,
	}); err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}

	details := fmt.Sprintf("Ended work session (%d minutes)", workMinutes)
	if workSummary != "" {
		details += " with summary"
	}
	if err := t.repo.InsertLogEntry(ctx, repository.InsertLogEntryInput{
		UserID:          userID,
		OccurredAt:      now,
		ActivityType:    repository.ActivitySignOut,
		Details:         details,
		DurationMinutes: &workMinutes,
	}); err != nil {
		return nil, fmt.Errorf("log sign-out: %w", err)
	}
	slog.Info("ended work session", "user_id", userID, "session_id", sessionID, "work_minutes", workMinutes)
	return &SessionSummary{
		TotalWorkMinutes:  workMinutes,
		TotalBreakMinutes: sess.BreakMinutes,
		StartTime:         sess.StartTime,
		EndTime:           now,
		WorkSummary:       workSummary,
	}, nil
}

// RecordUpdate appends an Update log entry without touching the session.
func (t *Tracker) RecordUpdate(ctx context.Context, userID, text string) (time.Time, error) {
	now := t.clock()
	if err := t.repo.InsertLogEntry(ctx, repository.InsertLogEntryInput{
		UserID:       userID,
		OccurredAt:   now,
		ActivityType: repository.ActivityUpdate,
		Details:      text,
	}); err != nil {
		return time.Time{}, fmt.Errorf("log update: %w", err)
	}
	return now, nil
}

// CurrentDuration returns the live duration breakdown for the user's active
// session, or nil when there is none.
func (t *Tracker) CurrentDuration(ctx context.Context, userID string) (*DurationInfo, error) {
	sess, err := t.repo.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	info := Breakdown(sess, t.clock())
	return &info, nil
}

// roundSecondsToMinutes rounds half away from zero, matching the rounding
// used when the records were first written.
func roundSecondsToMinutes(seconds int64) int {
	if seconds < 0 {
		return int((seconds - 30) / 60)
	}
	return int((seconds + 30) / 60)
}
