package cache

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"auth-gate/internal/domain"
	"auth-gate/utils/logger"

	"golang.org/x/sync/singleflight"
)

// Config holds freshness windows and sweep intervals for the identity cache.
// Guild membership is considered more time-sensitive than the profile, so its
// TTL and sweep interval are expected to be the shorter of the two.
type Config struct {
	ProfileTTL           time.Duration
	GuildTTL             time.Duration
	ProfileSweepInterval time.Duration
	GuildSweepInterval   time.Duration
}

// profileEntry is a cached upstream profile with its fetch timestamp.
type profileEntry struct {
	profile   domain.Profile
	fetchedAt time.Time
}

// guildEntry is a cached guild list with its fetch timestamp.
type guildEntry struct {
	guilds    []domain.Guild
	fetchedAt time.Time
}

// IdentityCache is a process-wide read-through cache in front of the
// identity provider. Profiles and guild lists are tracked in independent
// stores so their freshness windows never interfere.
// Implements domain.IdentityCache.
type IdentityCache struct {
	provider domain.IdentityProvider
	cfg      Config
	logger   *slog.Logger

	// now is swapped out by tests to control TTL evaluation.
	now func() time.Time

	mu       sync.RWMutex
	profiles map[string]profileEntry
	guilds   map[string]guildEntry

	flight singleflight.Group
}

// NewIdentityCache creates an empty identity cache. Sweep timers are not
// started until Start is called.
func NewIdentityCache(provider domain.IdentityProvider, cfg Config, logger *slog.Logger) *IdentityCache {
	return &IdentityCache{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		profiles: make(map[string]profileEntry),
		guilds:   make(map[string]guildEntry),
	}
}

// GetProfile returns the cached profile for userID if it is still fresh,
// otherwise fetches it from the provider and stores it. Upstream failures
// propagate to the caller and are never cached.
func (c *IdentityCache) GetProfile(ctx context.Context, userID, accessToken string) (*domain.Profile, error) {
	if p, ok := c.freshProfile(userID); ok {
		return p, nil
	}

	// Concurrent misses for the same user collapse into one upstream call.
	v, err, _ := c.flight.Do("profile:"+userID, func() (interface{}, error) {
		// A previous flight may have populated the entry while we waited.
		if p, ok := c.freshProfile(userID); ok {
			return p, nil
		}

		ctx := logger.WithCacheResource(ctx, "profile")
		profile, err := c.provider.FetchProfile(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		c.logger.DebugContext(ctx, "profile fetched from upstream", "user_id", userID)

		c.mu.Lock()
		c.profiles[userID] = profileEntry{profile: *profile, fetchedAt: c.now()}
		c.mu.Unlock()

		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Profile), nil
}

// GetGuilds returns the cached guild list for userID if it is still fresh,
// otherwise fetches it from the provider and stores it. Order is preserved
// exactly as upstream returned it.
func (c *IdentityCache) GetGuilds(ctx context.Context, userID, accessToken string) ([]domain.Guild, error) {
	if g, ok := c.freshGuilds(userID); ok {
		return g, nil
	}

	v, err, _ := c.flight.Do("guilds:"+userID, func() (interface{}, error) {
		if g, ok := c.freshGuilds(userID); ok {
			return g, nil
		}

		ctx := logger.WithCacheResource(ctx, "guilds")
		guilds, err := c.provider.FetchGuilds(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		c.logger.DebugContext(ctx, "guilds fetched from upstream", "user_id", userID, "count", len(guilds))

		// The stored list is private to the cache; callers get their own copy.
		c.mu.Lock()
		c.guilds[userID] = guildEntry{guilds: slices.Clone(guilds), fetchedAt: c.now()}
		c.mu.Unlock()

		return guilds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Guild), nil
}

// freshProfile returns the cached profile when present and within TTL.
func (c *IdentityCache) freshProfile(userID string) (*domain.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.profiles[userID]
	if !found || c.now().Sub(entry.fetchedAt) >= c.cfg.ProfileTTL {
		return nil, false
	}
	p := entry.profile
	return &p, true
}

// freshGuilds returns the cached guild list when present and within TTL.
func (c *IdentityCache) freshGuilds(userID string) ([]domain.Guild, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.guilds[userID]
	if !found || c.now().Sub(entry.fetchedAt) >= c.cfg.GuildTTL {
		return nil, false
	}
	return slices.Clone(entry.guilds), true
}

// Invalidate drops both cached sub-resources for one user.
func (c *IdentityCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.profiles, userID)
	delete(c.guilds, userID)
}

// SweepProfiles unconditionally empties the profile store. The map reference
// is replaced in one step, so readers see either the old store or an empty
// one, never a torn state.
func (c *IdentityCache) SweepProfiles() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = make(map[string]profileEntry)
}

// SweepGuilds unconditionally empties the guild store.
func (c *IdentityCache) SweepGuilds() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guilds = make(map[string]guildEntry)
}

// SweepAll empties both stores.
func (c *IdentityCache) SweepAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles = make(map[string]profileEntry)
	c.guilds = make(map[string]guildEntry)
}

// Start launches the periodic full-flush sweeps, one independent timer per
// store. The goroutine exits when ctx is cancelled.
func (c *IdentityCache) Start(ctx context.Context) {
	go func() {
		profileTicker := time.NewTicker(c.cfg.ProfileSweepInterval)
		defer profileTicker.Stop()

		guildTicker := time.NewTicker(c.cfg.GuildSweepInterval)
		defer guildTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-profileTicker.C:
				c.SweepProfiles()
				c.logger.Debug("profile cache swept")
			case <-guildTicker.C:
				c.SweepGuilds()
				c.logger.Debug("guild cache swept")
			}
		}
	}()
}
