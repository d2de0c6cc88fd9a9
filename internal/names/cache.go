// Package names provides a process-lifetime memoization cache for user
// display names, emails, and avatars. It is not a source of truth; dropping
// and repopulating it is always safe.
package names

import (
	"context"
	"sync"
)

// Profile is the cached shape of a chat-platform user.
type Profile struct {
	DisplayName string
	Email       string
	AvatarURL   string
}

// Resolver fetches a profile from the chat platform.
type Resolver func(ctx context.Context, userID string) (Profile, error)

// Cache memoizes profile lookups for the process lifetime. No TTL and no
// eviction: display names change rarely enough that staleness is acceptable.
type Cache struct {
	mu       sync.RWMutex
	resolve  Resolver
	profiles map[string]Profile
}

// NewCache creates a cache around the given resolver. Construct once at
// process start and pass to every component that needs name resolution.
func NewCache(resolve Resolver) *Cache {
	return &Cache{
		resolve:  resolve,
		profiles: make(map[string]Profile),
	}
}

// Lookup returns the profile for userID, resolving and memoizing on first
// use. Resolution failures are returned but never cached.
func (c *Cache) Lookup(ctx context.Context, userID string) (Profile, error) {
	c.mu.RLock()
	p, ok := c.profiles[userID]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := c.resolve(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	c.mu.Lock()
	c.profiles[userID] = p
	c.mu.Unlock()
	return p, nil
}

// DisplayName returns the display name for userID, falling back to the raw
// identifier when resolution fails.
func (c *Cache) DisplayName(ctx context.Context, userID string) string {
	p, err := c.Lookup(ctx, userID)
	if err != nil || p.DisplayName == "" {
		return userID
	}
	return p.DisplayName
}

// Email returns the user's email, or empty when unknown. An empty email is
// an expected absence, never an error.
func (c *Cache) Email(ctx context.Context, userID string) string {
	p, err := c.Lookup(ctx, userID)
	if err != nil {
		return ""
	}
	return p.Email
}
