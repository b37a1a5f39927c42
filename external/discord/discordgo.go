package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	discordpkg "github.com/ferret9/worklogbot/internal/discord"
)

type Client struct {
	session *discordgo.Session
	token   string
}

func NewClient(token string) discordpkg.Client {
	return &Client{token: token}
}

func (c *Client) Connect(ctx context.Context) error {
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	c.session = s
	s.Identify.Intents = discordgo.MakeIntent(
		discordgo.IntentsGuilds |
			discordgo.IntentsGuildMembers |
			discordgo.IntentsGuildVoiceStates)
	s.State.TrackMembers = true
	s.State.TrackRoles = true
	s.State.TrackVoice = true
	return s.Open()
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) GetBotUserID() (string, error) {
	if c.session.State != nil && c.session.State.User != nil {
		return c.session.State.User.ID, nil
	}
	u, err := c.session.User("@me")
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (c *Client) RegisterSlashCommandHandler(handler func(discordpkg.SlashCommandEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic == nil || ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := ic.ApplicationCommandData()
		if data.Name == "" {
			return
		}
		userID := ""
		username := ""
		nickname := ""
		if ic.Member != nil && ic.Member.User != nil {
			userID = ic.Member.User.ID
			username = ic.Member.User.Username
			nickname = ic.Member.Nick
		}
		if userID == "" && ic.User != nil {
			userID = ic.User.ID
			username = ic.User.Username
		}
		if userID == "" {
			return
		}
		options := make(map[string]string, len(data.Options))
		for _, opt := range data.Options {
			if opt == nil || opt.Type != discordgo.ApplicationCommandOptionString {
				continue
			}
			options[opt.Name] = opt.StringValue()
		}
		slog.Info("slash command interaction received", "guild_id", ic.GuildID, "channel_id", ic.ChannelID, "command", data.Name, "user_id", userID)
		handler(discordpkg.SlashCommandEvent{
			GuildID:     ic.GuildID,
			ChannelID:   ic.ChannelID,
			CommandName: data.Name,
			UserID:      userID,
			Username:    username,
			Nickname:    nickname,
			Options:     options,
			RespondEphemeral: func(content string) error {
				return s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseChannelMessageWithSource,
					Data: &discordgo.InteractionResponseData{
						Content: content,
						Flags:   discordgo.MessageFlagsEphemeral,
					},
				})
			},
		})
	})
}

func (c *Client) RegisterVoiceStateUpdateHandler(handler func(discordpkg.VoiceStateEvent)) {
	c.session.AddHandler(func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		if vs == nil {
			return
		}
		beforeChannelID := ""
		if vs.BeforeUpdate != nil {
			beforeChannelID = vs.BeforeUpdate.ChannelID
		}
		afterChannelID := vs.ChannelID
		if beforeChannelID == afterChannelID {
			return
		}
		if vs.GuildID == "" || vs.UserID == "" {
			return
		}
		handler(discordpkg.VoiceStateEvent{
			GuildID:         vs.GuildID,
			UserID:          vs.UserID,
			UserIsBot:       c.resolveUserIsBot(vs.GuildID, vs.UserID),
			BeforeChannelID: beforeChannelID,
			AfterChannelID:  afterChannelID,
		})
	})
}

func (c *Client) resolveUserIsBot(guildID, userID string) bool {
	member, err := c.session.State.Member(guildID, userID)
	if err == nil && member != nil && member.User != nil {
		return member.User.Bot
	}
	return false
}

func (c *Client) UpsertGuildSlashCommands(guildID string, defs []discordpkg.SlashCommandDefinition) error {
	appID := c.applicationID()
	if appID == "" {
		return fmt.Errorf("discord application id is not available")
	}
	existing, err := c.session.ApplicationCommands(appID, guildID)
	if err != nil {
		return err
	}
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		existingByName[cmd.Name] = cmd
	}
	for _, def := range defs {
		if err := c.upsertGuildSlashCommand(appID, guildID, def, existingByName); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) upsertGuildSlashCommand(appID, guildID string, def discordpkg.SlashCommandDefinition, existingByName map[string]*discordgo.ApplicationCommand) error {
	if def.Name == "" {
		return nil
	}
	payload := &discordgo.ApplicationCommand{
		Name:        def.Name,
		Description: def.Description,
		Options:     commandOptions(def.Options),
	}
	cmd, ok := existingByName[def.Name]
	if !ok {
		_, err := c.session.ApplicationCommandCreate(appID, guildID, payload)
		return err
	}
	if cmd.Description == def.Description && len(cmd.Options) == len(def.Options) {
		return nil
	}
	_, err := c.session.ApplicationCommandEdit(appID, guildID, cmd.ID, payload)
	return err
}

func commandOptions(opts []discordpkg.SlashCommandOption) []*discordgo.ApplicationCommandOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]*discordgo.ApplicationCommandOption, 0, len(opts))
	for _, opt := range opts {
		out = append(out, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        opt.Name,
			Description: opt.Description,
			Required:    opt.Required,
		})
	}
	return out
}

func (c *Client) applicationID() string {
	if c.session.State != nil && c.session.State.User != nil {
		return c.session.State.User.ID
	}
	return ""
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	return err
}

func (c *Client) GuildMember(guildID, userID string) (discordpkg.Member, error) {
	member, err := c.session.State.Member(guildID, userID)
	if err != nil || member == nil || member.User == nil {
		member, err = c.session.GuildMember(guildID, userID)
		if err != nil {
			return discordpkg.Member{}, err
		}
	}
	return toMember(member), nil
}

func toMember(m *discordgo.Member) discordpkg.Member {
	out := discordpkg.Member{
		Nickname: m.Nick,
		RoleIDs:  m.Roles,
	}
	if m.User != nil {
		out.UserID = m.User.ID
		out.Username = m.User.Username
		out.IsBot = m.User.Bot
	}
	return out
}

func (c *Client) GuildRoles(guildID string) ([]discordpkg.Role, error) {
	roles, err := c.session.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	out := make([]discordpkg.Role, 0, len(roles))
	for _, r := range roles {
		if r == nil {
			continue
		}
		out = append(out, discordpkg.Role{ID: r.ID, Name: r.Name, Color: r.Color, Position: r.Position})
	}
	return out, nil
}

func (c *Client) CreateRole(guildID string, params discordpkg.RoleParams) (discordpkg.Role, error) {
	role, err := c.session.GuildRoleCreate(guildID, roleParams(params))
	if err != nil {
		return discordpkg.Role{}, err
	}
	return discordpkg.Role{ID: role.ID, Name: role.Name, Color: role.Color, Position: role.Position}, nil
}

func (c *Client) EditRole(guildID, roleID string, params discordpkg.RoleParams) error {
	_, err := c.session.GuildRoleEdit(guildID, roleID, roleParams(params))
	return err
}

func roleParams(params discordpkg.RoleParams) *discordgo.RoleParams {
	color := params.Color
	perms := params.Permissions
	return &discordgo.RoleParams{
		Name:        params.Name,
		Color:       &color,
		Permissions: &perms,
	}
}

func (c *Client) SetRolePositions(guildID string, positions map[string]int) error {
	reorder := make([]*discordgo.Role, 0, len(positions))
	for roleID, position := range positions {
		reorder = append(reorder, &discordgo.Role{ID: roleID, Position: position})
	}
	_, err := c.session.GuildRoleReorder(guildID, reorder)
	return err
}

func (c *Client) AddMemberRole(guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (c *Client) RemoveMemberRole(guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleRemove(guildID, userID, roleID)
}

const memberPageSize = 1000

func (c *Client) MembersWithAnyRole(guildID string, roleIDs []string) ([]discordpkg.Member, error) {
	members, err := c.listGuildMembers(guildID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = struct{}{}
	}
	var out []discordpkg.Member
	for _, m := range members {
		for _, roleID := range m.Roles {
			if _, ok := wanted[roleID]; ok {
				out = append(out, toMember(m))
				break
			}
		}
	}
	return out, nil
}

func (c *Client) listGuildMembers(guildID string) ([]*discordgo.Member, error) {
	if guild, err := c.session.State.Guild(guildID); err == nil && guild != nil && len(guild.Members) > 0 {
		return guild.Members, nil
	}
	var all []*discordgo.Member
	after := ""
	for {
		page, err := c.session.GuildMembers(guildID, after, memberPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < memberPageSize {
			return all, nil
		}
		last := page[len(page)-1]
		if last.User == nil {
			return all, nil
		}
		after = last.User.ID
	}
}

func (c *Client) BotHighestRolePosition(guildID string) (int, error) {
	botUserID, err := c.GetBotUserID()
	if err != nil {
		return 0, err
	}
	member, err := c.GuildMember(guildID, botUserID)
	if err != nil {
		return 0, err
	}
	roles, err := c.GuildRoles(guildID)
	if err != nil {
		return 0, err
	}
	positionByID := make(map[string]int, len(roles))
	for _, r := range roles {
		positionByID[r.ID] = r.Position
	}
	highest := 0
	for _, roleID := range member.RoleIDs {
		if pos, ok := positionByID[roleID]; ok && pos > highest {
			highest = pos
		}
	}
	return highest, nil
}

func (c *Client) CreatePrivateTextChannel(guildID string, req discordpkg.PrivateChannelRequest) (string, error) {
	botUserID, err := c.GetBotUserID()
	if err != nil {
		return "", err
	}
	channel, err := c.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     req.Name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: req.CategoryID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				// @everyone shares the guild id.
				ID:   guildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
			{
				ID:    req.UserID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
			},
			{
				ID:    botUserID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory | discordgo.PermissionManageMessages,
			},
		},
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}
