package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ferret9/worklogbot/internal/worklog"
)

const sessionTimeLayout = "3:04 PM"

// RenderDaily formats daily reports as a Discord message. Returns a short
// no-activity notice when the day is empty.
func RenderDaily(date time.Time, loc *time.Location, reports []UserDailyReport) string {
	header := fmt.Sprintf("**Daily Work Report — %s**", date.In(loc).Format("Monday, January 2, 2006"))
	if len(reports) == 0 {
		return header + "\n\nNo work sessions were recorded."
	}

	var b strings.Builder
	b.WriteString(header)
	for _, report := range reports {
		b.WriteString(fmt.Sprintf("\n\n**%s**\nTotal work: %s | Breaks: %s",
			report.Username,
			worklog.FormatMinutes(report.TotalWorkMinutes),
			worklog.FormatMinutes(report.TotalBreakMinutes)))
		for _, sess := range report.Sessions {
			b.WriteString("\n" + renderSessionLine(sess, loc))
		}
	}
	return b.String()
}

func renderSessionLine(sess SessionReport, loc *time.Location) string {
	start := sess.StartTime.In(loc).Format(sessionTimeLayout)
	end := "still active"
	if sess.EndTime != nil {
		end = sess.EndTime.In(loc).Format(sessionTimeLayout)
	}
	line := fmt.Sprintf("• %s – %s (%s worked)", start, end, worklog.FormatMinutes(sess.TotalWorkMinutes))
	if sess.WorkSummary != nil && *sess.WorkSummary != "" {
		line += fmt.Sprintf("\n  Summary: %s", *sess.WorkSummary)
	}
	return line
}

// RenderWeekly formats a week's per-user reports, users sorted by name and
// days in calendar order.
func RenderWeekly(weekStart, weekEnd time.Time, loc *time.Location, reports map[string]*UserWeeklyReport) string {
	header := fmt.Sprintf("**Weekly Work Report — %s to %s**",
		weekStart.In(loc).Format("January 2"),
		weekEnd.In(loc).Format("January 2, 2006"))
	if len(reports) == 0 {
		return header + "\n\nNo work sessions were recorded this week."
	}

	users := make([]*UserWeeklyReport, 0, len(reports))
	for _, report := range reports {
		users = append(users, report)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	var b strings.Builder
	b.WriteString(header)
	for _, report := range users {
		b.WriteString(fmt.Sprintf("\n\n**%s** — %s total", report.Username, worklog.FormatMinutes(report.TotalWorkMinutes)))

		days := make([]*DayReport, 0, len(report.Days))
		for _, day := range report.Days {
			days = append(days, day)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
		for _, day := range days {
			date, err := time.ParseInLocation(dayKeyLayout, day.Date, loc)
			label := day.Date
			if err == nil {
				label = date.Format("Mon Jan 2")
			}
			b.WriteString(fmt.Sprintf("\n• %s: %s (%d session(s))", label, worklog.FormatMinutes(day.TotalWorkMinutes), day.SessionCount))
		}
	}
	return b.String()
}
