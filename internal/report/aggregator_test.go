package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferret9/worklogbot/internal/repository"
)

type mockSessionRepo struct {
	sessions []repository.Session
	listErr  error

	lastStart time.Time
	lastEnd   time.Time
}

func (m *mockSessionRepo) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) GetActiveSession(ctx context.Context, userID string) (*repository.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) SetSessionOnBreak(ctx context.Context, userID, sessionID string, breakStart time.Time) error {
	return nil
}

func (m *mockSessionRepo) SetSessionWorking(ctx context.Context, userID, sessionID string, addBreakMinutes int) error {
	return nil
}

func (m *mockSessionRepo) CloseSession(ctx context.Context, input repository.CloseSessionInput) error {
	return nil
}

func (m *mockSessionRepo) ListSessionsStartedBetween(ctx context.Context, start, end time.Time) ([]repository.Session, error) {
	m.lastStart = start
	m.lastEnd = end
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []repository.Session
	for _, sess := range m.sessions {
		if !sess.StartTime.Before(start) && sess.StartTime.Before(end) {
			out = append(out, sess)
		}
	}
	return out, nil
}

func manila(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	return loc
}

func closedSession(userID, username string, start time.Time, workMinutes, breakMinutes int, summary string) repository.Session {
	end := start.Add(time.Duration(workMinutes+breakMinutes) * time.Minute)
	sess := repository.Session{
		UserID:           userID,
		SessionID:        "sess-" + userID + start.Format("150405"),
		Username:         username,
		StartTime:        start,
		EndTime:          &end,
		TotalWorkMinutes: workMinutes,
		BreakMinutes:     breakMinutes,
		Status:           repository.SessionStatusSignedOut,
	}
	if summary != "" {
		sess.WorkSummary = &summary
	}
	return sess
}

func TestDaily_EmptyDayYieldsEmptyReport(t *testing.T) {
	agg := NewAggregator(&mockSessionRepo{}, manila(t))

	reports, err := agg.Daily(context.Background(), time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestDaily_UsesLocalDayBounds(t *testing.T) {
	loc := manila(t)
	repo := &mockSessionRepo{}
	agg := NewAggregator(repo, loc)

	_, err := agg.Daily(context.Background(), time.Date(2025, time.March, 3, 15, 30, 0, 0, loc))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, loc), repo.lastStart)
	assert.Equal(t, time.Date(2025, time.March, 4, 0, 0, 0, 0, loc), repo.lastEnd)
}

func TestDaily_GroupsSessionsByUser(t *testing.T) {
	loc := manila(t)
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, loc)
	repo := &mockSessionRepo{sessions: []repository.Session{
		closedSession("user-1", "alice", day.Add(9*time.Hour), 180, 15, "Morning tickets"),
		closedSession("user-2", "bob", day.Add(10*time.Hour), 240, 30, ""),
		closedSession("user-1", "alice", day.Add(14*time.Hour), 120, 0, "Afternoon review"),
	}}
	agg := NewAggregator(repo, loc)

	reports, err := agg.Daily(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Two sessions for the same user fold into one entry, in first-seen order.
	assert.Equal(t, "alice", reports[0].Username)
	assert.Len(t, reports[0].Sessions, 2)
	assert.Equal(t, 300, reports[0].TotalWorkMinutes)
	assert.Equal(t, 15, reports[0].TotalBreakMinutes)

	assert.Equal(t, "bob", reports[1].Username)
	assert.Len(t, reports[1].Sessions, 1)
	assert.Equal(t, 240, reports[1].TotalWorkMinutes)
}

func TestDaily_MarksOpenSessions(t *testing.T) {
	loc := manila(t)
	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, loc)
	repo := &mockSessionRepo{sessions: []repository.Session{
		{
			UserID:    "user-1",
			SessionID: "sess-1",
			Username:  "alice",
			StartTime: day.Add(9 * time.Hour),
			Status:    repository.SessionStatusWorking,
		},
	}}
	agg := NewAggregator(repo, loc)

	reports, err := agg.Daily(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Sessions, 1)
	assert.True(t, reports[0].Sessions[0].Open)
	assert.Zero(t, reports[0].TotalWorkMinutes)
}

func TestDaily_PropagatesStoreError(t *testing.T) {
	repo := &mockSessionRepo{listErr: errors.New("timeout")}
	agg := NewAggregator(repo, manila(t))

	_, err := agg.Daily(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestWeeklyByUser_GroupsByUserAndDay(t *testing.T) {
	loc := manila(t)
	monday := time.Date(2025, time.March, 3, 0, 0, 0, 0, loc)
	repo := &mockSessionRepo{sessions: []repository.Session{
		closedSession("user-1", "alice", monday.Add(9*time.Hour), 300, 30, ""),
		closedSession("user-1", "alice", monday.AddDate(0, 0, 2).Add(10*time.Hour), 200, 0, ""),
		closedSession("user-2", "bob", monday.AddDate(0, 0, 2).Add(8*time.Hour), 400, 60, ""),
	}}
	agg := NewAggregator(repo, loc)

	reports, err := agg.WeeklyByUser(context.Background(), monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, reports, 2)

	alice := reports["user-1"]
	require.NotNil(t, alice)
	assert.Equal(t, 500, alice.TotalWorkMinutes)
	assert.Equal(t, 30, alice.TotalBreakMinutes)
	require.Len(t, alice.Days, 2)
	assert.Equal(t, 300, alice.Days["2025-03-03"].TotalWorkMinutes)
	assert.Equal(t, 200, alice.Days["2025-03-05"].TotalWorkMinutes)
	assert.Equal(t, 1, alice.Days["2025-03-03"].SessionCount)

	bob := reports["user-2"]
	require.NotNil(t, bob)
	assert.Equal(t, 400, bob.TotalWorkMinutes)
}

func TestWeeklyByUser_ExcludesSessionsOutsideWeek(t *testing.T) {
	loc := manila(t)
	monday := time.Date(2025, time.March, 3, 0, 0, 0, 0, loc)
	repo := &mockSessionRepo{sessions: []repository.Session{
		closedSession("user-1", "alice", monday.AddDate(0, 0, -1).Add(9*time.Hour), 100, 0, ""),
		closedSession("user-1", "alice", monday.AddDate(0, 0, 7).Add(9*time.Hour), 100, 0, ""),
		closedSession("user-1", "alice", monday.Add(9*time.Hour), 60, 0, ""),
	}}
	agg := NewAggregator(repo, loc)

	reports, err := agg.WeeklyByUser(context.Background(), monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 60, reports["user-1"].TotalWorkMinutes)
}
