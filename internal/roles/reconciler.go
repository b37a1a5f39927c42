package roles

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ferret9/worklogbot/internal/discord"
	"github.com/ferret9/worklogbot/internal/repository"
)

// Managed role keys.
const (
	RoleWorking      = "working"
	RoleInMeeting    = "inMeeting"
	RoleOnBreak      = "onBreak"
	RoleNotAvailable = "notAvailable"
)

type roleDefinition struct {
	Name string
	// Color is an RGB value applied on create and on every setup pass.
	Color int
	// Position is the relative rank; a higher number sits higher in the
	// guild hierarchy.
	Position int
}

var roleDefinitions = map[string]roleDefinition{
	RoleWorking:      {Name: "Working", Color: 0x4CAF50, Position: 3},
	RoleInMeeting:    {Name: "In Meeting", Color: 0x2196F3, Position: 4},
	RoleOnBreak:      {Name: "On Break", Color: 0xFFC107, Position: 2},
	RoleNotAvailable: {Name: "Not Available", Color: 0x9E9E9E, Position: 1},
}

// Reconciler keeps guild role assignments in line with session status:
// Working -> the Working role, Break -> the On Break role, signed out or no
// session -> neither. The In Meeting role is voice-driven and never touched
// by session sync.
type Reconciler struct {
	dc   discord.Client
	repo repository.SessionRepository
}

func NewReconciler(dc discord.Client, repo repository.SessionRepository) *Reconciler {
	return &Reconciler{dc: dc, repo: repo}
}

// SetupRoles ensures the four managed roles exist with their fixed colors,
// creating missing ones (matched by exact name) and re-applying color and
// permissions to existing ones, then positions them just below the bot's
// highest role. Re-running never duplicates roles.
func (r *Reconciler) SetupRoles(ctx context.Context, guildID string) (map[string]discord.Role, error) {
	existing, err := r.dc.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("list guild roles: %w", err)
	}
	byName := make(map[string]discord.Role, len(existing))
	for _, role := range existing {
		byName[role.Name] = role
	}

	keys := make([]string, 0, len(roleDefinitions))
	for key := range roleDefinitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return roleDefinitions[keys[i]].Position > roleDefinitions[keys[j]].Position
	})

	roleMap := make(map[string]discord.Role, len(keys))
	for _, key := range keys {
		def := roleDefinitions[key]
		params := discord.RoleParams{Name: def.Name, Color: def.Color}
		role, ok := byName[def.Name]
		if !ok {
			created, err := r.dc.CreateRole(guildID, params)
			if err != nil {
				return nil, fmt.Errorf("create role %q: %w", def.Name, err)
			}
			slog.Info("created managed role", "guild_id", guildID, "role", def.Name, "role_id", created.ID)
			role = created
		} else if err := r.dc.EditRole(guildID, role.ID, params); err != nil {
			return nil, fmt.Errorf("update role %q: %w", def.Name, err)
		}
		roleMap[key] = role
	}

	if err := r.applyRolePositions(guildID, roleMap); err != nil {
		slog.Error("failed to update role positions", "error", err, "guild_id", guildID)
	}
	return roleMap, nil
}

// applyRolePositions places the managed roles directly below the bot's
// highest role, preserving their relative hierarchy.
func (r *Reconciler) applyRolePositions(guildID string, roleMap map[string]discord.Role) error {
	botHighest, err := r.dc.BotHighestRolePosition(guildID)
	if err != nil {
		return fmt.Errorf("resolve bot role position: %w", err)
	}
	base := botHighest - 1
	positions := make(map[string]int, len(roleMap))
	for key, role := range roleMap {
		def := roleDefinitions[key]
		positions[role.ID] = base - (len(roleDefinitions) - def.Position)
	}
	return r.dc.SetRolePositions(guildID, positions)
}

// RoleMap resolves the managed roles by name, running SetupRoles when any
// are missing.
func (r *Reconciler) RoleMap(ctx context.Context, guildID string) (map[string]discord.Role, error) {
	existing, err := r.dc.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("list guild roles: %w", err)
	}
	roleMap := make(map[string]discord.Role, len(roleDefinitions))
	for key, def := range roleDefinitions {
		for _, role := range existing {
			if role.Name == def.Name {
				roleMap[key] = role
				break
			}
		}
	}
	if len(roleMap) != len(roleDefinitions) {
		return r.SetupRoles(ctx, guildID)
	}
	return roleMap, nil
}

// SyncUserRoles reconciles one member's Working/On Break roles against their
// active session status, issuing add/remove calls only for roles whose
// desired state differs from the current one. Running it twice without a
// session change issues no calls the second time. Returns false when the
// member cannot be fetched or any call fails.
func (r *Reconciler) SyncUserRoles(ctx context.Context, guildID, userID string) bool {
	member, err := r.dc.GuildMember(guildID, userID)
	if err != nil {
		slog.Warn("member not found during role sync", "guild_id", guildID, "user_id", userID, "error", err)
		return false
	}
	roleMap, err := r.RoleMap(ctx, guildID)
	if err != nil {
		slog.Error("failed to resolve role map", "error", err, "guild_id", guildID)
		return false
	}
	sess, err := r.repo.GetActiveSession(ctx, userID)
	if err != nil {
		slog.Error("failed to load active session during role sync", "error", err, "user_id", userID)
		return false
	}

	shouldHaveWorking := sess != nil && sess.Status == repository.SessionStatusWorking
	shouldHaveBreak := sess != nil && sess.Status == repository.SessionStatusBreak

	if err := r.reconcileRole(guildID, member, roleMap[RoleWorking].ID, shouldHaveWorking); err != nil {
		slog.Error("failed to reconcile Working role", "error", err, "user_id", userID)
		return false
	}
	if err := r.reconcileRole(guildID, member, roleMap[RoleOnBreak].ID, shouldHaveBreak); err != nil {
		slog.Error("failed to reconcile On Break role", "error", err, "user_id", userID)
		return false
	}
	return true
}

func (r *Reconciler) reconcileRole(guildID string, member discord.Member, roleID string, desired bool) error {
	has := member.HasRole(roleID)
	switch {
	case desired && !has:
		return r.dc.AddMemberRole(guildID, member.UserID, roleID)
	case !desired && has:
		return r.dc.RemoveMemberRole(guildID, member.UserID, roleID)
	default:
		return nil
	}
}

// SyncAllUserRoles runs SyncUserRoles for every member currently holding the
// Working or On Break role and returns the number of successful syncs.
// Members who should acquire a role but currently hold neither are not
// visited by this path; they pick their role up through the per-command
// sync instead.
func (r *Reconciler) SyncAllUserRoles(ctx context.Context, guildID string) int {
	roleMap, err := r.RoleMap(ctx, guildID)
	if err != nil {
		slog.Error("failed to resolve role map for bulk sync", "error", err, "guild_id", guildID)
		return 0
	}
	members, err := r.dc.MembersWithAnyRole(guildID, []string{roleMap[RoleWorking].ID, roleMap[RoleOnBreak].ID})
	if err != nil {
		slog.Error("failed to list members for bulk sync", "error", err, "guild_id", guildID)
		return 0
	}
	count := 0
	for _, member := range members {
		if r.SyncUserRoles(ctx, guildID, member.UserID) {
			count++
		}
	}
	slog.Info("bulk role sync completed", "guild_id", guildID, "synced", count, "candidates", len(members))
	return count
}

// InMeetingRoleID resolves the voice-driven In Meeting role.
func (r *Reconciler) InMeetingRoleID(ctx context.Context, guildID string) (string, error) {
	roleMap, err := r.RoleMap(ctx, guildID)
	if err != nil {
		return "", err
	}
	return roleMap[RoleInMeeting].ID, nil
}

// WorkingRoleID resolves the Working role, used for update reminders.
func (r *Reconciler) WorkingRoleID(ctx context.Context, guildID string) (string, error) {
	roleMap, err := r.RoleMap(ctx, guildID)
	if err != nil {
		return "", err
	}
	return roleMap[RoleWorking].ID, nil
}
