// Copyright 2025 AgentDash
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backends

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"agentdash/platform/backends/base"
	"agentdash/platform/tenant"
)

// ExecContext partitions the cache by execution context. A server-side
// handle and a browser-side handle for the same tenant must never be shared:
// the server context holds the long-lived service credential, the browser
// context only ever gets the short-lived, scope-limited anon credential.
type ExecContext string

const (
	ContextServer  ExecContext = "server"
	ContextBrowser ExecContext = "browser"
)

// cacheEntry is one live handle with its construction metadata.
type cacheEntry struct {
	handle     base.Handle
	config     *base.Config
	createdAt  time.Time
	lastAccess time.Time
}

// Cache is the process-wide keyed cache of live backend handles. It
// guarantees at most one live handle per (agent id, exec context) pair:
// insert-if-absent semantics under a double-checked lock, so concurrent
// first requests for the same key perform exactly one construction and all
// observe the same handle. Construction failures are raised, never cached.
type Cache struct {
	mu sync.RWMutex

	// handles keyed "agentID/execContext"
	handles map[string]*cacheEntry

	registry *tenant.Registry
	factory  HandleFactory
	logger   *log.Logger
	stats    CacheStats
}

// CacheStats tracks cache performance metrics.
type CacheStats struct {
	mu               sync.Mutex
	Hits             int64
	Misses           int64
	Creations        int64
	CreationFailures int64
	Evictions        int64
	LastCreation     time.Time
}

// CacheOptions holds options for creating a Cache.
type CacheOptions struct {
	Registry *tenant.Registry
	Factory  HandleFactory
	Logger   *log.Logger
}

// NewCache creates a new client cache over the given tenant registry.
func NewCache(opts CacheOptions) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[CLIENT_CACHE] ", log.LstdFlags)
	}

	factory := opts.Factory
	if factory == nil {
		factory = NewHandle
	}

	return &Cache{
		handles:  make(map[string]*cacheEntry),
		registry: opts.Registry,
		factory:  factory,
		logger:   logger,
	}
}

// handleKey generates the cache key for a tenant's handle in one context.
func handleKey(agentID string, execCtx ExecContext) string {
	return agentID + "/" + string(execCtx)
}

// GetOrCreate returns the live handle for (agentID, execCtx), constructing
// and connecting it on first use. Subsequent calls are O(1) lookups with no
// network or credential work. Propagates tenant.ErrUnknownTenant and
// tenant.ErrMissingCredential without attempting any connection.
func (c *Cache) GetOrCreate(ctx context.Context, agentID string, execCtx ExecContext) (base.Handle, error) {
	key := handleKey(agentID, execCtx)

	// Fast path: existing handle under read lock
	c.mu.RLock()
	entry, exists := c.handles[key]
	if exists {
		handle := entry.handle
		c.mu.RUnlock()
		c.touch(key)
		c.recordHit()
		return handle, nil
	}
	c.mu.RUnlock()

	return c.createHandle(ctx, agentID, execCtx)
}

// touch updates the last access time for a cache entry. Separate from the
// read path so reads never hold the write lock.
func (c *Cache) touch(key string) {
	c.mu.Lock()
	if entry, exists := c.handles[key]; exists {
		entry.lastAccess = time.Now()
	}
	c.mu.Unlock()
}

// createHandle resolves, validates, constructs, and connects a new handle
// under the write lock. The lock is the single-writer boundary that
// serializes racing first requests for the same key.
func (c *Cache) createHandle(ctx context.Context, agentID string, execCtx ExecContext) (base.Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := handleKey(agentID, execCtx)

	// Double-check: another goroutine may have won the race
	if entry, exists := c.handles[key]; exists {
		entry.lastAccess = time.Now()
		c.recordHit()
		return entry.handle, nil
	}

	c.recordMiss()

	tenantCfg, err := c.registry.Resolve(agentID)
	if err != nil {
		return nil, err
	}

	if err := tenant.Validate(tenantCfg); err != nil {
		c.logger.Printf("Configuration defect for tenant '%s': %v", agentID, err)
		return nil, err
	}

	handleCfg, err := buildHandleConfig(tenantCfg, execCtx)
	if err != nil {
		c.logger.Printf("Cannot build %s-context handle for tenant '%s': %v", execCtx, agentID, err)
		return nil, err
	}

	handle, err := c.factory(tenantCfg.BackendKind)
	if err != nil {
		c.recordCreationFailure()
		return nil, fmt.Errorf("failed to create handle for '%s': %w", agentID, err)
	}

	connectTimeout := tenantCfg.Timeout
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := handle.Connect(connectCtx, handleCfg); err != nil {
		// Not cached as a negative result: a later call may legitimately
		// succeed after the configuration or backend is fixed.
		c.recordCreationFailure()
		c.logger.Printf("Failed to connect handle '%s': %v", key, err)
		return nil, fmt.Errorf("failed to connect backend for '%s': %w", agentID, err)
	}

	now := time.Now()
	c.handles[key] = &cacheEntry{
		handle:     handle,
		config:     handleCfg,
		createdAt:  now,
		lastAccess: now,
	}
	c.recordCreation()

	// First creation for a tenant means a new backend connection was opened
	c.logger.Printf("Opened backend connection '%s' (kind=%s, context=%s, label=%s)",
		key, tenantCfg.BackendKind, execCtx, tenantCfg.ContextLabel)

	return handle, nil
}

// buildHandleConfig maps a tenant config onto a handle config for one
// execution context. The browser context never sees the service credential;
// a tenant without an anon credential simply has no browser-side access.
func buildHandleConfig(cfg *tenant.Config, execCtx ExecContext) (*base.Config, error) {
	handleCfg := &base.Config{
		AgentID:     cfg.AgentID,
		Name:        handleKey(cfg.AgentID, execCtx),
		Kind:        cfg.BackendKind,
		EndpointURL: cfg.EndpointURL,
		Database:    cfg.Database,
		Options:     cfg.Options,
		Timeout:     cfg.Timeout,
	}

	switch execCtx {
	case ContextServer:
		handleCfg.Credential = cfg.ServiceCredential
		handleCfg.StorageKey = "dash-" + cfg.AgentID
	case ContextBrowser:
		if cfg.AnonCredential == "" {
			return nil, fmt.Errorf("%w: agent '%s' has no browser-scoped credential",
				tenant.ErrMissingCredential, cfg.AgentID)
		}
		handleCfg.Credential = cfg.AnonCredential
		handleCfg.StorageKey = "dash-" + cfg.AgentID + "-session"
	default:
		return nil, fmt.Errorf("unsupported execution context: %s", execCtx)
	}

	return handleCfg, nil
}

// Remove disconnects and evicts one cached handle. Used when a tenant's
// credentials rotate.
func (c *Cache) Remove(ctx context.Context, agentID string, execCtx ExecContext) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := handleKey(agentID, execCtx)
	entry, exists := c.handles[key]
	if !exists {
		return
	}

	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := entry.handle.Disconnect(disconnectCtx); err != nil {
		c.logger.Printf("Warning: failed to disconnect handle '%s': %v", key, err)
	}
	cancel()

	delete(c.handles, key)
	c.recordEviction()
	c.logger.Printf("Evicted handle '%s'", key)
}

// DisconnectAll disconnects all cached handles. Used during graceful shutdown.
func (c *Cache) DisconnectAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Printf("Disconnecting %d cached handles...", len(c.handles))

	for key, entry := range c.handles {
		disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := entry.handle.Disconnect(disconnectCtx); err != nil {
			c.logger.Printf("Warning: failed to disconnect handle '%s': %v", key, err)
		}
		cancel()
	}

	c.handles = make(map[string]*cacheEntry)
	c.logger.Println("All handles disconnected")
}

// Count returns the number of live cached handles.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

// Stats returns a copy of the cache performance counters.
func (c *Cache) Stats() CacheStats {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()

	return CacheStats{
		Hits:             c.stats.Hits,
		Misses:           c.stats.Misses,
		Creations:        c.stats.Creations,
		CreationFailures: c.stats.CreationFailures,
		Evictions:        c.stats.Evictions,
		LastCreation:     c.stats.LastCreation,
	}
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	promCacheHits.Inc()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	promCacheMisses.Inc()
}

func (c *Cache) recordCreation() {
	c.stats.mu.Lock()
	c.stats.Creations++
	c.stats.LastCreation = time.Now()
	c.stats.mu.Unlock()
	promCacheCreations.Inc()
}

func (c *Cache) recordCreationFailure() {
	c.stats.mu.Lock()
	c.stats.CreationFailures++
	c.stats.mu.Unlock()
	promCacheCreationFailures.Inc()
}

func (c *Cache) recordEviction() {
	c.stats.mu.Lock()
	c.stats.Evictions++
	c.stats.mu.Unlock()
	promCacheEvictions.Inc()
}
