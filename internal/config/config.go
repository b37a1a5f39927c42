package config

import (
	"fmt"
	"time"
)

// ReminderTime is a wall-clock time of day at which a status-update
// reminder is posted.
type ReminderTime struct {
	Hour   int
	Minute int
}

type Config struct {
	Env                   string
	DiscordToken          string
	DiscordGuildID        string
	DatabaseURL           string
	Timezone              string
	TeamChannelID         string
	UpdatesChannelID      string
	ActivityLogChannelID  string
	DailyReportChannelID  string
	WeeklyReportChannelID string
	WorkLogCategoryID     string
	InternRoleID          string
	ReminderTimes         []ReminderTime
	StrictSessions        bool
	ReportWebhookURL      string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	for _, rt := range c.ReminderTimes {
		if rt.Hour < 0 || rt.Hour > 23 || rt.Minute < 0 || rt.Minute > 59 {
			return fmt.Errorf("reminder time %02d:%02d is out of range", rt.Hour, rt.Minute)
		}
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "TIMEZONE", value: c.Timezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves the configured timezone. Validate guarantees it parses,
// so callers after startup may treat an error here as a programming bug.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
