package discord

import "context"

type SlashCommandOption struct {
	Name        string
	Description string
	Required    bool
}

type SlashCommandDefinition struct {
	Name        string
	Description string
	Options     []SlashCommandOption
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	Username         string
	Nickname         string
	Options          map[string]string
	RespondEphemeral func(content string) error
}

type VoiceStateEvent struct {
	GuildID         string
	UserID          string
	UserIsBot       bool
	BeforeChannelID string
	AfterChannelID  string
}

type Member struct {
	UserID   string
	Username string
	Nickname string
	IsBot    bool
	RoleIDs  []string
}

func (m Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// DisplayName returns the nickname when set, otherwise the username.
func (m Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.Username
}

type Role struct {
	ID       string
	Name     string
	Color    int
	Position int
}

type RoleParams struct {
	Name        string
	Color       int
	Permissions int64
}

// PrivateChannelRequest describes a per-user text channel visible only to
// the user, the bot, and administrators.
type PrivateChannelRequest struct {
	Name       string
	CategoryID string
	UserID     string
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	GetBotUserID() (string, error)

	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	RegisterVoiceStateUpdateHandler(handler func(VoiceStateEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error

	SendChannelMessage(channelID, content string) error

	GuildMember(guildID, userID string) (Member, error)
	GuildRoles(guildID string) ([]Role, error)
	CreateRole(guildID string, params RoleParams) (Role, error)
	EditRole(guildID, roleID string, params RoleParams) error
	SetRolePositions(guildID string, positions map[string]int) error
	AddMemberRole(guildID, userID, roleID string) error
	RemoveMemberRole(guildID, userID, roleID string) error
	// MembersWithAnyRole returns guild members holding at least one of the
	// given roles.
	MembersWithAnyRole(guildID string, roleIDs []string) ([]Member, error)
	// BotHighestRolePosition returns the position of the bot's highest role.
	BotHighestRolePosition(guildID string) (int, error)

	CreatePrivateTextChannel(guildID string, req PrivateChannelRequest) (string, error)
}
