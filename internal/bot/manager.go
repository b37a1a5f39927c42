package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ferret9/worklogbot/internal/channels"
	"github.com/ferret9/worklogbot/internal/config"
	"github.com/ferret9/worklogbot/internal/discord"
	"github.com/ferret9/worklogbot/internal/report"
	"github.com/ferret9/worklogbot/internal/roles"
	"github.com/ferret9/worklogbot/internal/webhook"
	"github.com/ferret9/worklogbot/internal/worklog"
)

const commandTimeout = 30 * time.Second

// Manager wires slash commands, voice events, and scheduled jobs to the
// work-session services.
type Manager struct {
	cfg        *config.Config
	loc        *time.Location
	tracker    *worklog.Tracker
	reconciler *roles.Reconciler
	reports    *report.Aggregator
	cache      *channels.Cache
	webhook    webhook.Sender
	discord    discord.Client
	clock      func() time.Time
}

func NewManager(
	cfg *config.Config,
	loc *time.Location,
	tracker *worklog.Tracker,
	reconciler *roles.Reconciler,
	reports *report.Aggregator,
	cache *channels.Cache,
	wh webhook.Sender,
	dc discord.Client,
) *Manager {
	return &Manager{
		cfg:        cfg,
		loc:        loc,
		tracker:    tracker,
		reconciler: reconciler,
		reports:    reports,
		cache:      cache,
		webhook:    wh,
		discord:    dc,
		clock:      time.Now,
	}
}

// SlashCommandDefinitions returns the guild commands this bot registers.
func (m *Manager) SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: "signin", Description: slashCommandSignInDescription},
		{Name: "signout", Description: slashCommandSignOutDescription, Options: []discord.SlashCommandOption{
			{Name: "summary", Description: optionSummaryDescription},
		}},
		{Name: "break", Description: slashCommandBreakDescription, Options: []discord.SlashCommandOption{
			{Name: "reason", Description: optionReasonDescription},
		}},
		{Name: "back", Description: slashCommandBackDescription},
		{Name: "time", Description: slashCommandTimeDescription},
		{Name: "update", Description: slashCommandUpdateDescription, Options: []discord.SlashCommandOption{
			{Name: "message", Description: optionMessageDescription, Required: true},
		}},
		{Name: "syncroles", Description: slashCommandSyncRolesDescription},
	}
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	if event.GuildID != m.cfg.DiscordGuildID {
		m.respond(event, messageEphemeralWrongGuild)
		return
	}
	if !m.userMayTrack(event) {
		m.respond(event, messageEphemeralNotPermitted)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch event.CommandName {
	case "signin":
		m.handleSignIn(ctx, event)
	case "signout":
		m.handleSignOut(ctx, event)
	case "break":
		m.handleBreak(ctx, event)
	case "back":
		m.handleBack(ctx, event)
	case "time":
		m.handleTime(ctx, event)
	case "update":
		m.handleUpdate(ctx, event)
	case "syncroles":
		m.handleSyncRoles(ctx, event)
	default:
		m.respond(event, messageEphemeralUnknownCommand)
	}
}

// userMayTrack gates commands behind the configured tracked-member role. An
// empty role id disables the gate.
func (m *Manager) userMayTrack(event discord.SlashCommandEvent) bool {
	if m.cfg.InternRoleID == "" {
		return true
	}
	member, err := m.discord.GuildMember(event.GuildID, event.UserID)
	if err != nil {
		slog.Error("failed to fetch member for permission check", "error", err, "user_id", event.UserID)
		return false
	}
	return member.HasRole(m.cfg.InternRoleID)
}

func (m *Manager) respond(event discord.SlashCommandEvent, content string) {
	if err := event.RespondEphemeral(content); err != nil {
		slog.Error("failed to respond to interaction", "error", err, "command", event.CommandName, "user_id", event.UserID)
	}
}

func (m *Manager) displayName(event discord.SlashCommandEvent) string {
	if event.Nickname != "" {
		return event.Nickname
	}
	return event.Username
}

func (m *Manager) handleSignIn(ctx context.Context, event discord.SlashCommandEvent) {
	if _, err := m.tracker.StartSession(ctx, event.UserID, event.Username); err != nil {
		// Only strict mode produces ErrSessionActive.
		if errors.Is(err, worklog.ErrSessionActive) {
			m.respond(event, messageEphemeralAlreadySignedIn)
			return
		}
		slog.Error("sign-in failed", "error", err, "user_id", event.UserID)
		m.respond(event, messageEphemeralCommandFailed)
		return
	}

	m.reconciler.SyncUserRoles(ctx, event.GuildID, event.UserID)

	now := m.clock()
	m.postToUserLogChannel(ctx, event, logChannelSignIn(now, m.loc))
	m.announceToTeam(teamSignInPost(m.displayName(event)))
	m.respond(event, signInReply(now, m.loc))
}

// announceToTeam posts into the shared team channel when one is configured.
func (m *Manager) announceToTeam(content string) {
	if m.cfg.TeamChannelID == "" {
		return
	}
	if err := m.discord.SendChannelMessage(m.cfg.TeamChannelID, content); err != nil {
		slog.Error("failed to post to team channel", "error", err)
	}
}

func (m *Manager) handleSignOut(ctx context.Context, event discord.SlashCommandEvent) {
	sess, err := m.tracker.ActiveSession(ctx, event.UserID)
	if err != nil {
		slog.Error("sign-out failed", "error", err, "user_id", event.UserID)
		m.respond(event, messageEphemeralCommandFailed)
		return
	}
	if sess == nil {
		m.respond(event, messageEphemeralNoActiveSession)
		return
	}

	summary := event.Options["summary"]
	result, err := m.tracker.EndSession(ctx, event.UserID, sess.SessionID, summary)
	if err != nil {
		slog.Error("sign-out failed", "error", err, "user_id", event.UserID)
		m.respond(event, messageEphemeralCommandFailed)
		return
	}
	if result == nil {
		m.respond(event, messageEphemeralNoActiveSession)
		return
	}

	m.reconciler.SyncUserRoles(ctx, event.GuildID, event.UserID)
	m.postToUserLogChannel(ctx, event, logChannelSignOut(result.TotalWorkMinutes, result.TotalBreakMinutes, result.WorkSummary))
	m.announceToTeam(teamSignOutPost(m.displayName(event), result.TotalWorkMinutes))
	m.respond(event, signOutReply(result.TotalWorkMinutes, result.TotalBreakMinutes))
}

func (m *Manager) handleBreak(ctx context.Context, event discord.SlashCommandEvent) {
	reason := event.Options["reason"]
	if _, err := m.tracker.StartBreak(ctx, event.UserID, reason); err != nil {
		switch {
		case errors.Is(err, worklog.ErrNoActiveSession):
			m.respond(event, messageEphemeralNoActiveSession)
		case errors.Is(err, worklog.ErrInvalidTransition):
			m.respond(event, messageEphemeralAlreadyOnBreak)
		default:
			slog.Error("break failed", "error", err, "user_id", event.UserID)
			m.respond(event, messageEphemeralCommandFailed)
		}
		return
	}

	m.reconciler.SyncUserRoles(ctx, event.GuildID, event.UserID)
	if reason == "" {
		reason = "No reason provided"
	}
	m.postToUserLogChannel(ctx, event, logChannelBreak(reason))
	m.respond(event, breakReply(reason))
}

func (m *Manager) handleBack(ctx context.Context, event discord.SlashCommandEvent) {
	result, err := m.tracker.EndBreak(ctx, event.UserID)
	if err != nil {
		switch {
		case errors.Is(err, worklog.ErrNoActiveSession):
			m.respond(event, messageEphemeralNoActiveSession)
		case errors.Is(err, worklog.ErrNoBreakStart),
			errors.Is(err, worklog.ErrInvalidBreakStart),
			errors.Is(err, worklog.ErrInvalidTransition):
			m.respond(event, messageEphemeralNotOnBreak)
		default:
			slog.Error("back failed", "error", err, "user_id", event.UserID)
			m.respond(event, messageEphemeralCommandFailed)
		}
		return
	}

	m.reconciler.SyncUserRoles(ctx, event.GuildID, event.UserID)
	m.postToUserLogChannel(ctx, event, logChannelBack(result.Minutes))
	m.respond(event, backReply(result.Seconds))
}

func (m *Manager) handleTime(ctx context.Context, event discord.SlashCommandEvent) {
	info, err := m.tracker.CurrentDuration(ctx, event.UserID)
	if err != nil {
		slog.Error("time lookup failed", "error", err, "user_id", event.UserID)
		m.respond(event, messageEphemeralCommandFailed)
		return
	}
	if info == nil {
		m.respond(event, messageEphemeralNoActiveSession)
		return
	}
	m.respond(event, timeReply(*info))
}

func (m *Manager) handleUpdate(ctx context.Context, event discord.SlashCommandEvent) {
	text := strings.TrimSpace(event.Options["message"])
	if text == "" {
		m.respond(event, messageEphemeralMessageRequired)
		return
	}
	if _, err := m.tracker.RecordUpdate(ctx, event.UserID, text); err != nil {
		slog.Error("update failed", "error", err, "user_id", event.UserID)
		m.respond(event, messageEphemeralCommandFailed)
		return
	}

	if m.cfg.UpdatesChannelID != "" {
		if err := m.discord.SendChannelMessage(m.cfg.UpdatesChannelID, updatePost(m.displayName(event), text)); err != nil {
			slog.Error("failed to post update to updates channel", "error", err, "user_id", event.UserID)
		}
	}
	m.postToUserLogChannel(ctx, event, updatePost(m.displayName(event), text))
	m.respond(event, updateReply())
}

func (m *Manager) handleSyncRoles(ctx context.Context, event discord.SlashCommandEvent) {
	count := m.reconciler.SyncAllUserRoles(ctx, event.GuildID)
	m.respond(event, syncRolesReply(count))
}

// postToUserLogChannel writes into the user's private log channel, creating
// the channel on first use. Failures are logged and never fail the command.
func (m *Manager) postToUserLogChannel(ctx context.Context, event discord.SlashCommandEvent, content string) {
	channelID, err := m.ensureUserLogChannel(ctx, event.GuildID, event.UserID, m.displayName(event))
	if err != nil {
		slog.Error("failed to resolve user log channel", "error", err, "user_id", event.UserID)
		return
	}
	if err := m.discord.SendChannelMessage(channelID, content); err != nil {
		slog.Error("failed to post to user log channel", "error", err, "user_id", event.UserID, "channel_id", channelID)
	}
}

// ensureUserLogChannel returns the user's private log channel, creating and
// caching one under the configured category when none is mapped yet.
func (m *Manager) ensureUserLogChannel(ctx context.Context, guildID, userID, displayName string) (string, error) {
	channelID, err := m.cache.Get(ctx, userID, guildID)
	if err != nil {
		return "", err
	}
	if channelID != "" {
		return channelID, nil
	}

	channelID, err = m.discord.CreatePrivateTextChannel(guildID, discord.PrivateChannelRequest{
		Name:       logChannelName(displayName),
		CategoryID: m.cfg.WorkLogCategoryID,
		UserID:     userID,
	})
	if err != nil {
		return "", fmt.Errorf("create log channel: %w", err)
	}
	if err := m.cache.Set(ctx, userID, guildID, channelID); err != nil {
		slog.Error("failed to persist channel mapping", "error", err, "user_id", userID, "channel_id", channelID)
	}
	slog.Info("created user log channel", "user_id", userID, "channel_id", channelID)
	return channelID, nil
}

// logChannelName derives a Discord-safe channel name from a display name.
func logChannelName(displayName string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(displayName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "member"
	}
	return name + "-work-log"
}

func (m *Manager) HandleVoiceStateUpdate(event discord.VoiceStateEvent) {
	if event.GuildID != m.cfg.DiscordGuildID || event.UserIsBot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	roleID, err := m.reconciler.InMeetingRoleID(ctx, event.GuildID)
	if err != nil {
		slog.Error("failed to resolve In Meeting role", "error", err, "guild_id", event.GuildID)
		return
	}

	joined := event.AfterChannelID != ""
	if joined {
		if err := m.discord.AddMemberRole(event.GuildID, event.UserID, roleID); err != nil {
			slog.Error("failed to add In Meeting role", "error", err, "user_id", event.UserID)
		}
		m.logVoiceActivity(voiceJoinedPost(event.UserID, event.AfterChannelID))
		return
	}
	if err := m.discord.RemoveMemberRole(event.GuildID, event.UserID, roleID); err != nil {
		slog.Error("failed to remove In Meeting role", "error", err, "user_id", event.UserID)
	}
	m.logVoiceActivity(voiceLeftPost(event.UserID, event.BeforeChannelID))
}

// logVoiceActivity mirrors voice joins and leaves into the activity log
// channel when one is configured.
func (m *Manager) logVoiceActivity(content string) {
	if m.cfg.ActivityLogChannelID == "" {
		return
	}
	if err := m.discord.SendChannelMessage(m.cfg.ActivityLogChannelID, content); err != nil {
		slog.Error("failed to post to activity log channel", "error", err)
	}
}
