package worklog

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferret9/worklogbot/internal/repository"
)

// ElapsedSeconds returns whole seconds between start and end. The result is
// not clamped: a start time in the future yields a negative value.
func ElapsedSeconds(start, end time.Time) int64 {
	return end.Sub(start).Milliseconds() / 1000
}

// DurationInfo is a live work/break breakdown for a session.
type DurationInfo struct {
	Status       repository.SessionStatus
	StartTime    time.Time
	TotalSeconds int64
	BreakSeconds int64
	WorkSeconds  int64
}

// Breakdown computes the current durations for a session. Cumulative break
// minutes cover closed intervals only; when the session is on break the open
// interval since LastBreakStart is added before subtracting.
func Breakdown(s *repository.Session, now time.Time) DurationInfo {
	total := ElapsedSeconds(s.StartTime, now)
	breakSeconds := int64(s.BreakMinutes) * 60
	if s.Status == repository.SessionStatusBreak && s.LastBreakStart != nil {
		breakSeconds += ElapsedSeconds(*s.LastBreakStart, now)
	}
	return DurationInfo{
		Status:       s.Status,
		StartTime:    s.StartTime,
		TotalSeconds: total,
		BreakSeconds: breakSeconds,
		WorkSeconds:  total - breakSeconds,
	}
}

// FormatSeconds renders a duration as "1 hour 1 minute 1 second". Zero head
// units are omitted; seconds are always shown.
func FormatSeconds(totalSeconds int64) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, pluralize(hours, "hour"))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, pluralize(minutes, "minute"))
	}
	parts = append(parts, pluralize(seconds, "second"))
	return strings.Join(parts, " ")
}

// FormatMinutes renders whole minutes as "2 hours and 5 minutes".
func FormatMinutes(totalMinutes int) string {
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	switch {
	case hours == 0:
		return pluralize(int64(minutes), "minute")
	case minutes == 0:
		return pluralize(int64(hours), "hour")
	default:
		return pluralize(int64(hours), "hour") + " and " + pluralize(int64(minutes), "minute")
	}
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
