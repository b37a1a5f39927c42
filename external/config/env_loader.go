package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	internalconfig "github.com/ferret9/worklogbot/internal/config"
)

type envConfig struct {
	Env                   string `env:"ENV" envDefault:"production"`
	DiscordToken          string `env:"DISCORD_TOKEN,required"`
	DiscordGuildID        string `env:"DISCORD_GUILD_ID,required"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	Timezone              string `env:"TIMEZONE" envDefault:"Asia/Manila"`
	TeamChannelID         string `env:"TEAM_CHANNEL_ID"`
	UpdatesChannelID      string `env:"UPDATES_CHANNEL_ID"`
	ActivityLogChannelID  string `env:"ACTIVITY_LOG_CHANNEL_ID"`
	DailyReportChannelID  string `env:"DAILY_REPORT_CHANNEL_ID"`
	WeeklyReportChannelID string `env:"WEEKLY_REPORT_CHANNEL_ID"`
	WorkLogCategoryID     string `env:"WORK_LOG_CATEGORY_ID"`
	InternRoleID          string `env:"INTERN_ROLE_ID"`
	ReminderTimes         string `env:"REMINDER_TIMES" envDefault:"10:00,14:00,21:00,02:00"`
	StrictSessions        bool   `env:"STRICT_SESSIONS" envDefault:"false"`
	ReportWebhookURL      string `env:"REPORT_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	reminders, err := parseReminderTimes(raw.ReminderTimes)
	if err != nil {
		return nil, fmt.Errorf("REMINDER_TIMES is invalid: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                   raw.Env,
		DiscordToken:          raw.DiscordToken,
		DiscordGuildID:        raw.DiscordGuildID,
		DatabaseURL:           raw.DatabaseURL,
		Timezone:              raw.Timezone,
		TeamChannelID:         raw.TeamChannelID,
		UpdatesChannelID:      raw.UpdatesChannelID,
		ActivityLogChannelID:  raw.ActivityLogChannelID,
		DailyReportChannelID:  raw.DailyReportChannelID,
		WeeklyReportChannelID: raw.WeeklyReportChannelID,
		WorkLogCategoryID:     raw.WorkLogCategoryID,
		InternRoleID:          raw.InternRoleID,
		ReminderTimes:         reminders,
		StrictSessions:        raw.StrictSessions,
		ReportWebhookURL:      raw.ReportWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseReminderTimes parses a comma-separated list of HH:MM times.
func parseReminderTimes(s string) ([]internalconfig.ReminderTime, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var times []internalconfig.ReminderTime
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		hhmm := strings.SplitN(part, ":", 2)
		if len(hhmm) != 2 {
			return nil, fmt.Errorf("%q is not in HH:MM format", part)
		}
		hour, err := strconv.Atoi(hhmm[0])
		if err != nil {
			return nil, fmt.Errorf("%q has a non-numeric hour", part)
		}
		minute, err := strconv.Atoi(hhmm[1])
		if err != nil {
			return nil, fmt.Errorf("%q has a non-numeric minute", part)
		}
		times = append(times, internalconfig.ReminderTime{Hour: hour, Minute: minute})
	}
	return times, nil
}
