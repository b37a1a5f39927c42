package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ferret9/worklogbot/internal/repository"
)

const dayKeyLayout = "2006-01-02"

// SessionReport is one session's contribution to a report.
type SessionReport struct {
	SessionID        string
	StartTime        time.Time
	EndTime          *time.Time
	TotalWorkMinutes int
	BreakMinutes     int
	WorkSummary      *string
	// Open marks a session that had not been signed out when the report ran.
	Open bool
}

// UserDailyReport aggregates one user's sessions for a single local day.
type UserDailyReport struct {
	UserID            string
	Username          string
	TotalWorkMinutes  int
	TotalBreakMinutes int
	Sessions          []SessionReport
}

// DayReport is one day's totals within a weekly report.
type DayReport struct {
	Date              string
	TotalWorkMinutes  int
	TotalBreakMinutes int
	SessionCount      int
}

// UserWeeklyReport aggregates one user's week, keyed by local date.
type UserWeeklyReport struct {
	UserID            string
	Username          string
	TotalWorkMinutes  int
	TotalBreakMinutes int
	Days              map[string]*DayReport
}

// Aggregator builds daily and weekly summaries from stored sessions. A
// session belongs to the local day its start time falls on; sessions still
// open when the report runs contribute their recorded break minutes but no
// work minutes.
type Aggregator struct {
	repo repository.SessionRepository
	loc  *time.Location
}

func NewAggregator(repo repository.SessionRepository, loc *time.Location) *Aggregator {
	return &Aggregator{repo: repo, loc: loc}
}

// dayBounds returns the [start, end) interval of the local day containing t.
func (a *Aggregator) dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(a.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.loc)
	return start, start.AddDate(0, 0, 1)
}

// Daily returns one report per user for the local day containing date,
// ordered by first session start. Users with no sessions that day do not
// appear; an empty day yields an empty slice.
func (a *Aggregator) Daily(ctx context.Context, date time.Time) ([]UserDailyReport, error) {
	start, end := a.dayBounds(date)
	sessions, err := a.repo.ListSessionsStartedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list sessions for daily report: %w", err)
	}

	byUser := make(map[string]*UserDailyReport)
	var order []string
	for _, sess := range sessions {
		report, ok := byUser[sess.UserID]
		if !ok {
			report = &UserDailyReport{UserID: sess.UserID, Username: sess.Username}
			byUser[sess.UserID] = report
			order = append(order, sess.UserID)
		}
		report.Sessions = append(report.Sessions, toSessionReport(sess))
		report.TotalWorkMinutes += sess.TotalWorkMinutes
		report.TotalBreakMinutes += sess.BreakMinutes
	}

	out := make([]UserDailyReport, 0, len(order))
	for _, userID := range order {
		out = append(out, *byUser[userID])
	}
	return out, nil
}

// WeeklyByUser aggregates sessions started in [weekStart, weekEnd)'s local
// days, grouped per user and per day.
func (a *Aggregator) WeeklyByUser(ctx context.Context, weekStart, weekEnd time.Time) (map[string]*UserWeeklyReport, error) {
	start, _ := a.dayBounds(weekStart)
	_, end := a.dayBounds(weekEnd.Add(-time.Nanosecond))
	sessions, err := a.repo.ListSessionsStartedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list sessions for weekly report: %w", err)
	}

	byUser := make(map[string]*UserWeeklyReport)
	for _, sess := range sessions {
		report, ok := byUser[sess.UserID]
		if !ok {
			report = &UserWeeklyReport{
				UserID:   sess.UserID,
				Username: sess.Username,
				Days:     make(map[string]*DayReport),
			}
			byUser[sess.UserID] = report
		}
		dayKey := sess.StartTime.In(a.loc).Format(dayKeyLayout)
		day, ok := report.Days[dayKey]
		if !ok {
			day = &DayReport{Date: dayKey}
			report.Days[dayKey] = day
		}
		day.TotalWorkMinutes += sess.TotalWorkMinutes
		day.TotalBreakMinutes += sess.BreakMinutes
		day.SessionCount++
		report.TotalWorkMinutes += sess.TotalWorkMinutes
		report.TotalBreakMinutes += sess.BreakMinutes
	}
	return byUser, nil
}

func toSessionReport(sess repository.Session) SessionReport {
	return SessionReport{
		SessionID:        sess.SessionID,
		StartTime:        sess.StartTime,
		EndTime:          sess.EndTime,
		TotalWorkMinutes: sess.TotalWorkMinutes,
		BreakMinutes:     sess.BreakMinutes,
		WorkSummary:      sess.WorkSummary,
		Open:             sess.EndTime == nil,
	}
}
