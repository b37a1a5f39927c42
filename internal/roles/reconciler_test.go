package roles

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferret9/worklogbot/internal/discord"
	"github.com/ferret9/worklogbot/internal/repository"
)

type mockDiscordClient struct {
	roles      []discord.Role
	members    map[string]*discord.Member
	botHighest int

	createdRoles int
	editedRoles  int
	addCalls     []string
	removeCalls  []string
	positionSets []map[string]int

	memberErr error
	addErr    error
}

func newMockDiscordClient() *mockDiscordClient {
	return &mockDiscordClient{
		members:    map[string]*discord.Member{},
		botHighest: 10,
	}
}

func (m *mockDiscordClient) Connect(ctx context.Context) error { return nil }
func (m *mockDiscordClient) Close() error                      { return nil }
func (m *mockDiscordClient) GetBotUserID() (string, error)     { return "bot-1", nil }

func (m *mockDiscordClient) RegisterSlashCommandHandler(func(discord.SlashCommandEvent))    {}
func (m *mockDiscordClient) RegisterVoiceStateUpdateHandler(func(discord.VoiceStateEvent))  {}
func (m *mockDiscordClient) UpsertGuildSlashCommands(string, []discord.SlashCommandDefinition) error {
	return nil
}

func (m *mockDiscordClient) SendChannelMessage(channelID, content string) error { return nil }

func (m *mockDiscordClient) GuildMember(guildID, userID string) (discord.Member, error) {
	if m.memberErr != nil {
		return discord.Member{}, m.memberErr
	}
	member, ok := m.members[userID]
	if !ok {
		return discord.Member{}, errors.New("member not found")
	}
	return *member, nil
}

func (m *mockDiscordClient) GuildRoles(guildID string) ([]discord.Role, error) {
	out := make([]discord.Role, len(m.roles))
	copy(out, m.roles)
	return out, nil
}

func (m *mockDiscordClient) CreateRole(guildID string, params discord.RoleParams) (discord.Role, error) {
	m.createdRoles++
	role := discord.Role{
		ID:    fmt.Sprintf("role-%d", len(m.roles)+1),
		Name:  params.Name,
		Color: params.Color,
	}
	m.roles = append(m.roles, role)
	return role, nil
}

func (m *mockDiscordClient) EditRole(guildID, roleID string, params discord.RoleParams) error {
	m.editedRoles++
	for i := range m.roles {
		if m.roles[i].ID == roleID {
			m.roles[i].Name = params.Name
			m.roles[i].Color = params.Color
		}
	}
	return nil
}

func (m *mockDiscordClient) SetRolePositions(guildID string, positions map[string]int) error {
	m.positionSets = append(m.positionSets, positions)
	for roleID, pos := range positions {
		for i := range m.roles {
			if m.roles[i].ID == roleID {
				m.roles[i].Position = pos
			}
		}
	}
	return nil
}

func (m *mockDiscordClient) AddMemberRole(guildID, userID, roleID string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.addCalls = append(m.addCalls, userID+":"+roleID)
	if member, ok := m.members[userID]; ok && !member.HasRole(roleID) {
		member.RoleIDs = append(member.RoleIDs, roleID)
	}
	return nil
}

func (m *mockDiscordClient) RemoveMemberRole(guildID, userID, roleID string) error {
	m.removeCalls = append(m.removeCalls, userID+":"+roleID)
	member, ok := m.members[userID]
	if !ok {
		return nil
	}
	kept := member.RoleIDs[:0]
	for _, id := range member.RoleIDs {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	member.RoleIDs = kept
	return nil
}

func (m *mockDiscordClient) MembersWithAnyRole(guildID string, roleIDs []string) ([]discord.Member, error) {
	wanted := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = struct{}{}
	}
	var out []discord.Member
	for _, member := range m.members {
		for _, roleID := range member.RoleIDs {
			if _, ok := wanted[roleID]; ok {
				out = append(out, *member)
				break
			}
		}
	}
	return out, nil
}

func (m *mockDiscordClient) BotHighestRolePosition(guildID string) (int, error) {
	return m.botHighest, nil
}

func (m *mockDiscordClient) CreatePrivateTextChannel(guildID string, req discord.PrivateChannelRequest) (string, error) {
	return "channel-1", nil
}

type mockSessionRepo struct {
	sessions map[string]*repository.Session
	err      error
}

func (m *mockSessionRepo) CreateSession(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	return nil, nil
}

func (m *mockSessionRepo) GetActiveSession(ctx context.Context, userID string) (*repository.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions[userID], nil
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
	return nil, nil
}

func activeSession(userID string, status repository.SessionStatus) *repository.Session {
	return &repository.Session{
		UserID:    userID,
		SessionID: "sess-" + userID,
		StartTime: time.Now(),
		Status:    status,
	}
}

func TestSetupRoles_CreatesAllRolesOnce(t *testing.T) {
	dc := newMockDiscordClient()
	r := NewReconciler(dc, &mockSessionRepo{sessions: map[string]*repository.Session{}})

	roleMap, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)

	assert.Equal(t, 4, dc.createdRoles)
	assert.Equal(t, "Working", roleMap[RoleWorking].Name)
	assert.Equal(t, "In Meeting", roleMap[RoleInMeeting].Name)
	assert.Equal(t, "On Break", roleMap[RoleOnBreak].Name)
	assert.Equal(t, "Not Available", roleMap[RoleNotAvailable].Name)
	assert.Equal(t, 0x4CAF50, roleMap[RoleWorking].Color)
	assert.Equal(t, 0x2196F3, roleMap[RoleInMeeting].Color)
	assert.Equal(t, 0xFFC107, roleMap[RoleOnBreak].Color)
	assert.Equal(t, 0x9E9E9E, roleMap[RoleNotAvailable].Color)

	// A second run matches by name and never duplicates.
	_, err = r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.Equal(t, 4, dc.createdRoles)
	assert.Equal(t, 4, dc.editedRoles)
}

func TestSetupRoles_PositionsBelowBotHighestRole(t *testing.T) {
	dc := newMockDiscordClient()
	dc.botHighest = 20
	r := NewReconciler(dc, &mockSessionRepo{sessions: map[string]*repository.Session{}})

	roleMap, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	require.Len(t, dc.positionSets, 1)

	positions := dc.positionSets[0]
	// In Meeting sits highest, Not Available lowest, all below the bot.
	assert.Equal(t, 19, positions[roleMap[RoleInMeeting].ID])
	assert.Equal(t, 18, positions[roleMap[RoleWorking].ID])
	assert.Equal(t, 17, positions[roleMap[RoleOnBreak].ID])
	assert.Equal(t, 16, positions[roleMap[RoleNotAvailable].ID])
}

func TestSyncUserRoles_AssignsWorkingRole(t *testing.T) {
	dc := newMockDiscordClient()
	repo := &mockSessionRepo{sessions: map[string]*repository.Session{
		"user-1": activeSession("user-1", repository.SessionStatusWorking),
	}}
	r := NewReconciler(dc, repo)
	roleMap, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	dc.members["user-1"] = &discord.Member{UserID: "user-1", Username: "alice"}

	ok := r.SyncUserRoles(context.Background(), "guild-1", "user-1")
	assert.True(t, ok)
	assert.Equal(t, []string{"user-1:" + roleMap[RoleWorking].ID}, dc.addCalls)
	assert.Empty(t, dc.removeCalls)
}

func TestSyncUserRoles_SwapsToBreakRole(t *testing.T) {
	dc := newMockDiscordClient()
	repo := &mockSessionRepo{sessions: map[string]*repository.Session{
		"user-1": activeSession("user-1", repository.SessionStatusBreak),
	}}
	r := NewReconciler(dc, repo)
	roleMap, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	dc.members["user-1"] = &discord.Member{
		UserID:  "user-1",
		RoleIDs: []string{roleMap[RoleWorking].ID},
	}

	ok := r.SyncUserRoles(context.Background(), "guild-1", "user-1")
	assert.True(t, ok)
	assert.Equal(t, []string{"user-1:" + roleMap[RoleOnBreak].ID}, dc.addCalls)
	assert.Equal(t, []string{"user-1:" + roleMap[RoleWorking].ID}, dc.removeCalls)
}

func TestSyncUserRoles_RemovesBothWhenSignedOut(t *testing.T) {
	dc := newMockDiscordClient()
	repo := &mockSessionRepo{sessions: map[string]*repository.Session{}}
	r := NewReconciler(dc, repo)
	roleMap, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	dc.members["user-1"] = &discord.Member{
		UserID:  "user-1",
		RoleIDs: []string{roleMap[RoleWorking].ID, roleMap[RoleOnBreak].ID},
	}

	ok := r.SyncUserRoles(context.Background(), "guild-1", "user-1")
	assert.True(t, ok)
	assert.Empty(t, dc.addCalls)
	assert.Len(t, dc.removeCalls, 2)
}

func TestSyncUserRoles_IsIdempotent(t *testing.T) {
	dc := newMockDiscordClient()
	repo := &mockSessionRepo{sessions: map[string]*repository.Session{
		"user-1": activeSession("user-1", repository.SessionStatusWorking),
	}}
	r := NewReconciler(dc, repo)
	_, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	dc.members["user-1"] = &discord.Member{UserID: "user-1"}

	require.True(t, r.SyncUserRoles(context.Background(), "guild-1", "user-1"))
	addsAfterFirst := len(dc.addCalls)
	removesAfterFirst := len(dc.removeCalls)

	// A second sync with no session change issues no role calls.
	require.True(t, r.SyncUserRoles(context.Background(), "guild-1", "user-1"))
	assert.Equal(t, addsAfterFirst, len(dc.addCalls))
	assert.Equal(t, removesAfterFirst, len(dc.removeCalls))
}

func TestSyncUserRoles_ReturnsFalseOnMemberLookupFailure(t *testing.T) {
	dc := newMockDiscordClient()
	dc.memberErr = errors.New("unknown member")
	r := NewReconciler(dc, &mockSessionRepo{sessions: map[string]*repository.Session{}})

	assert.False(t, r.SyncUserRoles(context.Background(), "guild-1", "user-1"))
}

func TestSyncUserRoles_ReturnsFalseOnRoleCallFailure(t *testing.T) {
	dc := newMockDiscordClient()
	repo := &mockSessionRepo{sessions: map[string]*repository.Session{
		"user-1": activeSession("user-1", repository.SessionStatusWorking),
	}}
	r := NewReconciler(dc, repo)
	_, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)
	dc.members["user-1"] = &discord.Member{UserID: "user-1"}
	dc.addErr = errors.New("missing permissions")

	assert.False(t, r.SyncUserRoles(context.Background(), "guild-1", "user-1"))
}

func TestSyncAllUserRoles_VisitsOnlyCurrentRoleHolders(t *testing.T) {
	dc := newMockDiscordClient()
	repo := &mockSessionRepo{sessions: map[string]*repository.Session{
		// Holds Working, should keep it.
		"user-1": activeSession("user-1", repository.SessionStatusWorking),
		// Has an active session but holds neither role; the bulk pass
		// does not visit them.
		"user-3": activeSession("user-3", repository.SessionStatusWorking),
	}}
	r := NewReconciler(dc, repo)
	roleMap, err := r.SetupRoles(context.Background(), "guild-1")
	require.NoError(t, err)

	dc.members["user-1"] = &discord.Member{UserID: "user-1", RoleIDs: []string{roleMap[RoleWorking].ID}}
	// Signed out but still holding On Break; the bulk pass strips it.
	dc.members["user-2"] = &discord.Member{UserID: "user-2", RoleIDs: []string{roleMap[RoleOnBreak].ID}}
	dc.members["user-3"] = &discord.Member{UserID: "user-3"}

	count := r.SyncAllUserRoles(context.Background(), "guild-1")

	assert.Equal(t, 2, count)
	assert.False(t, dc.members["user-2"].HasRole(roleMap[RoleOnBreak].ID))
	assert.False(t, dc.members["user-3"].HasRole(roleMap[RoleWorking].ID))
}
