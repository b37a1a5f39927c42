package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ferret9/worklogbot/internal/report"
	"github.com/ferret9/worklogbot/internal/scheduler"
	"github.com/ferret9/worklogbot/internal/webhook"
)

// ScheduledJobs returns every recurring job the bot runs: the daily report,
// the weekly report, the hourly role sync, and one update reminder per
// configured time.
func (m *Manager) ScheduledJobs() []scheduler.Job {
	jobs := []scheduler.Job{
		{Name: "daily-report", Spec: "0 9 * * *", Run: m.RunDailyReport},
		{Name: "weekly-report", Spec: "0 9 * * 0", Run: m.RunWeeklyReport},
		{Name: "role-sync", Spec: "0 * * * *", Run: m.RunRoleSync},
	}
	for _, rt := range m.cfg.ReminderTimes {
		jobs = append(jobs, scheduler.Job{
			Name: fmt.Sprintf("update-reminder-%02d%02d", rt.Hour, rt.Minute),
			Spec: fmt.Sprintf("%d %d * * *", rt.Minute, rt.Hour),
			Run:  m.RunUpdateReminder,
		})
	}
	return jobs
}

// RunDailyReport posts yesterday's report to the daily report channel and
// forwards it to the report webhook when configured.
func (m *Manager) RunDailyReport(ctx context.Context) {
	yesterday := m.clock().In(m.loc).AddDate(0, 0, -1)
	reports, err := m.reports.Daily(ctx, yesterday)
	if err != nil {
		slog.Error("daily report aggregation failed", "error", err)
		return
	}

	body := report.RenderDaily(yesterday, m.loc, reports)
	if m.cfg.DailyReportChannelID != "" {
		if err := m.discord.SendChannelMessage(m.cfg.DailyReportChannelID, body); err != nil {
			slog.Error("failed to post daily report", "error", err)
		}
	}
	if err := m.webhook.SendReport(ctx, webhook.ReportPayload{
		ReportType: "daily",
		Date:       yesterday.Format("2006-01-02"),
		Body:       body,
	}); err != nil {
		slog.Error("failed to send daily report webhook", "error", err)
	}
}

// RunWeeklyReport posts the Monday-to-Sunday report for the week containing
// the current local day.
func (m *Manager) RunWeeklyReport(ctx context.Context) {
	now := m.clock().In(m.loc)
	monday := now.AddDate(0, 0, -mondayOffset(now.Weekday()))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, m.loc)
	sunday := monday.AddDate(0, 0, 6)

	reports, err := m.reports.WeeklyByUser(ctx, monday, monday.AddDate(0, 0, 7))
	if err != nil {
		slog.Error("weekly report aggregation failed", "error", err)
		return
	}

	body := report.RenderWeekly(monday, sunday, m.loc, reports)
	if m.cfg.WeeklyReportChannelID != "" {
		if err := m.discord.SendChannelMessage(m.cfg.WeeklyReportChannelID, body); err != nil {
			slog.Error("failed to post weekly report", "error", err)
		}
	}
	if err := m.webhook.SendReport(ctx, webhook.ReportPayload{
		ReportType: "weekly",
		Date:       monday.Format("2006-01-02"),
		Body:       body,
	}); err != nil {
		slog.Error("failed to send weekly report webhook", "error", err)
	}
}

// mondayOffset is the number of days back to the Monday of d's week.
func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// RunRoleSync reconciles roles for every member currently holding a managed
// status role.
func (m *Manager) RunRoleSync(ctx context.Context) {
	m.reconciler.SyncAllUserRoles(ctx, m.cfg.DiscordGuildID)
}

// RunUpdateReminder pings the Working role in the updates channel.
func (m *Manager) RunUpdateReminder(ctx context.Context) {
	if m.cfg.UpdatesChannelID == "" {
		return
	}
	roleID, err := m.reconciler.WorkingRoleID(ctx, m.cfg.DiscordGuildID)
	if err != nil {
		slog.Error("failed to resolve Working role for reminder", "error", err)
		return
	}
	msg := fmt.Sprintf("<@&%s> %s", roleID, messageUpdateReminder)
	if err := m.discord.SendChannelMessage(m.cfg.UpdatesChannelID, msg); err != nil {
		slog.Error("failed to post update reminder", "error", err)
	}
}
