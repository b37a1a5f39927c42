package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ferret9/worklogbot/internal/repository"
)

// Store is the persistence surface the cache needs: mapping rows plus the
// activity log that records mapping changes.
type Store interface {
	repository.ChannelMappingRepository
	repository.ActivityLogRepository
}

// Cache is an in-memory map of user ID to private log channel ID, backed by
// the channel mapping store. Reads prefer the cache and fall through to the
// store on a miss; writes update the cache first and then persist. There is
// no eviction: the mapping set is bounded by guild membership.
type Cache struct {
	repo Store

	mu      sync.RWMutex
	entries map[string]string
}

func NewCache(repo Store) *Cache {
	return &Cache{
		repo:    repo,
		entries: make(map[string]string),
	}
}

// Get returns the user's channel ID, reading through to the store on a cache
// miss and caching any hit. Returns "" when no mapping exists.
func (c *Cache) Get(ctx context.Context, userID, guildID string) (string, error) {
	c.mu.RLock()
	channelID, ok := c.entries[userID]
	c.mu.RUnlock()
	if ok {
		return channelID, nil
	}

	mapping, err := c.repo.GetChannelMapping(ctx, userID, guildID)
	if err != nil {
		return "", fmt.Errorf("load channel mapping: %w", err)
	}
	if mapping == nil {
		return "", nil
	}

	c.mu.Lock()
	c.entries[userID] = mapping.ChannelID
	c.mu.Unlock()
	return mapping.ChannelID, nil
}

// Set caches the mapping and persists it. The cache is updated before the
// store write, so a store failure leaves a cache entry with no backing row;
// the entry is rebuilt from the store on the next restart.
func (c *Cache) Set(ctx context.Context, userID, guildID, channelID string) error {
	c.mu.Lock()
	c.entries[userID] = channelID
	c.mu.Unlock()

	now := time.Now()
	if err := c.repo.UpsertChannelMapping(ctx, repository.ChannelMapping{
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("persist channel mapping: %w", err)
	}

	if err := c.repo.InsertLogEntry(ctx, repository.InsertLogEntryInput{
		UserID:       userID,
		OccurredAt:   now,
		ActivityType: repository.ActivityChannelMapping,
		Details:      fmt.Sprintf("Mapped to channel %s", channelID),
	}); err != nil {
		slog.Error("failed to log channel mapping", "error", err, "user_id", userID)
	}
	return nil
}

// LoadAll seeds the cache with every stored mapping for the guild. Existing
// entries are kept; stored rows overwrite them.
func (c *Cache) LoadAll(ctx context.Context, guildID string) (int, error) {
	mappings, err := c.repo.ListChannelMappingsByGuild(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("list channel mappings: %w", err)
	}

	c.mu.Lock()
	for _, mapping := range mappings {
		c.entries[mapping.UserID] = mapping.ChannelID
	}
	c.mu.Unlock()

	slog.Info("channel mapping cache loaded", "guild_id", guildID, "mappings", len(mappings))
	return len(mappings), nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
