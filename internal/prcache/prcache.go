// Package prcache caches pull-request status lookups per project path.
//
// The underlying probe shells out to the GitHub CLI, which is
// rate-limited and noisy when no remote exists, while the typical caller
// is a polling loop. The cache bounds external calls to one per project
// per TTL window and supports on-demand invalidation.
package prcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"featdeck/internal/ghcli"
)

// DefaultTTL is how long a cached status remains valid.
const DefaultTTL = 5 * time.Minute

// Status is one cached probe result for a project.
type Status struct {
	PRs       []ghcli.PR
	CheckedAt time.Time
}

// Probe fetches the open pull requests for a project checkout.
type Probe func(ctx context.Context, projectPath string) ([]ghcli.PR, error)

// Cache is a TTL cache of pull-request status keyed by project path.
// It is process-local and safe for concurrent use. Construct one per
// scheduler instance; there is no package-level cache.
type Cache struct {
	probe     Probe
	available func() bool
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.RWMutex
	entries map[string]Status
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for swallowed probe failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache around a probe. The available func reports whether
// the remote-hosting CLI exists at all; when it returns false, Status
// yields nil immediately and nothing is cached.
func New(probe Probe, available func() bool, opts ...Option) *Cache {
	c := &Cache{
		probe:     probe,
		available: available,
		ttl:       DefaultTTL,
		now:       time.Now,
		logger:    slog.Default(),
		entries:   make(map[string]Status),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the pull-request status for projectPath, probing at
// most once per TTL window. It returns nil when the CLI is unavailable
// or the probe fails; neither is an error to the caller.
func (c *Cache) Status(ctx context.Context, projectPath string) *Status {
	if c.available != nil && !c.available() {
		return nil
	}

	c.mu.RLock()
	entry, ok := c.entries[projectPath]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.CheckedAt) < c.ttl {
		return &entry
	}

	prs, err := c.probe(ctx, projectPath)
	if err != nil {
		c.logger.Debug("pr status probe failed", "project", projectPath, "error", err)
		return nil
	}

	fresh := Status{PRs: prs, CheckedAt: c.now()}
	c.mu.Lock()
	c.entries[projectPath] = fresh
	c.mu.Unlock()
	return &fresh
}

// Invalidate drops any cached entry for projectPath, guaranteeing the
// next Status call performs a fresh probe.
func (c *Cache) Invalidate(projectPath string) {
	c.mu.Lock()
	delete(c.entries, projectPath)
	c.mu.Unlock()
}

// InvalidateAll clears the whole cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]Status)
	c.mu.Unlock()
}
