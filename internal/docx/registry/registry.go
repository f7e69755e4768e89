// Package registry caches one tenant handle per tenant id, building each lazily
// on first use and evicting idle handles on a schedule.
package registry

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docx-mcp/internal/common"
	"github.com/ternarybob/docx-mcp/internal/docx/control"
	"github.com/ternarybob/docx-mcp/internal/docx/docxerr"
	"github.com/ternarybob/docx-mcp/internal/docx/store"
)

// Handle bundles one tenant's store and control plane. Registry callers
// reach the control plane through this, never the store directly.
type Handle struct {
	Store   *store.Store
	Control *control.Plane
}

// BuildHandleFunc constructs a fresh handle for a tenant on first access.
type BuildHandleFunc func(tenantID string) (*Handle, error)

// Config configures a Registry's cache and builder.
type Config struct {
	Build BuildHandleFunc
	// TTL is how long a handle may sit unused before the sweeper evicts it.
	// Zero disables eviction entirely.
	TTL time.Duration
	// SweepInterval is how often the sweeper checks for idle handles.
	SweepInterval time.Duration
	// MaxEntries caps the number of concurrently cached handles. Zero means
	// unlimited.
	MaxEntries int
	// TenantDir resolves a tenant id to its on-disk data directory, used by
	// DeleteTenant to remove the directory after closing the handle. Nil
	// means DeleteTenant only evicts the cache entry, leaving disk state.
	TenantDir func(tenantID string) string
}

// entry caches (at most) one built handle per tenant. buildMu makes the
// build itself single-flight: concurrent GetOrInit calls for the same
// tenant block on the same build rather than racing two builders. A failed
// build leaves handle nil, so the next caller retries instead of being
// stuck with a cached error forever.
type entry struct {
	buildMu  sync.Mutex
	handle   *Handle
	lastUsed atomic.Int64
}

func newEntry() *entry {
	e := &entry{}
	e.touch()
	return e
}

func (e *entry) touch() {
	e.lastUsed.Store(time.Now().UnixMilli())
}

func (e *entry) idleFor(nowMs int64) time.Duration {
	last := e.lastUsed.Load()
	idleMs := nowMs - last
	if idleMs < 0 {
		idleMs = 0
	}
	return time.Duration(idleMs) * time.Millisecond
}

// Registry is a concurrency-safe cache of tenant handles.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	config  Config
	cron    *cron.Cron
	logger  arbor.ILogger
}

// New constructs a Registry from config. SweepInterval defaults to one
// minute when unset; it has no effect unless TTL is also non-zero.
func New(config Config, logger arbor.ILogger) *Registry {
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Minute
	}
	return &Registry{
		entries: make(map[string]*entry),
		config:  config,
		logger:  logger,
	}
}

// GetOrInit returns the cached handle for tenantID, building it on first
// access. Concurrent callers for a new tenant share a single build.
func (r *Registry) GetOrInit(tenantID string) (*Handle, error) {
	e, err := r.entryFor(tenantID)
	if err != nil {
		return nil, err
	}
	e.touch()

	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	if e.handle != nil {
		return e.handle, nil
	}

	handle, err := r.config.Build(tenantID)
	if err != nil {
		return nil, docxerr.Wrap(docxerr.BuildFailed, "build tenant handle for "+tenantID, err)
	}
	e.handle = handle
	return handle, nil
}

// entryFor fetches or allocates the cache slot for tenantID, enforcing
// MaxEntries on allocation.
func (r *Registry) entryFor(tenantID string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[tenantID]
	r.mu.RUnlock()
	if ok {
		return e, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[tenantID]; ok {
		return e, nil
	}
	if r.config.MaxEntries > 0 && len(r.entries) >= r.config.MaxEntries {
		return nil, docxerr.New(docxerr.CapacityReached, "tenant registry capacity reached (max "+strconv.Itoa(r.config.MaxEntries)+")")
	}
	e = newEntry()
	r.entries[tenantID] = e
	return e, nil
}

// ListTenants returns every tenant id currently cached.
func (r *Registry) ListTenants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// EvictIdle drops every cached entry that has sat unused for longer than
// TTL, returning the count evicted. A zero TTL is a no-op.
func (r *Registry) EvictIdle() int {
	if r.config.TTL <= 0 {
		return 0
	}
	now := time.Now().UnixMilli()

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		if e.idleFor(now) > r.config.TTL {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

// SpawnSweeper starts a background cron job that calls EvictIdle on
// SweepInterval. It is a no-op (returns nil) when TTL is zero, since
// nothing would ever be evicted. Call Stop to halt it.
func (r *Registry) SpawnSweeper() *cron.Cron {
	if r.config.TTL <= 0 {
		return nil
	}
	c := cron.New()
	spec := "@every " + r.config.SweepInterval.String()
	_, err := c.AddFunc(spec, func() {
		common.SafeGo(r.logger, "registry-sweeper", func() {
			evicted := r.EvictIdle()
			if evicted > 0 && r.logger != nil {
				r.logger.Debug().Int("evicted", evicted).Msg("tenant registry sweep evicted idle handles")
			}
		})
	})
	if err != nil {
		if r.logger != nil {
			r.logger.Error().Err(err).Str("spec", spec).Msg("failed to schedule tenant registry sweeper")
		}
		return nil
	}
	c.Start()
	r.cron = c
	return c
}

// Stop halts the sweeper, if one was spawned.
func (r *Registry) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// DeleteTenant closes and discards the cached handle for tenantID, if any,
// then removes its on-disk directory when TenantDir is configured. This is
// the only destructive operation the registry exposes, backing the
// delete_solution tool's drop of an entire tenant database.
func (r *Registry) DeleteTenant(tenantID string) error {
	r.mu.Lock()
	e, ok := r.entries[tenantID]
	if ok {
		delete(r.entries, tenantID)
	}
	r.mu.Unlock()

	if ok && e.handle != nil && e.handle.Store != nil {
		if err := e.handle.Store.Close(); err != nil {
			return docxerr.Wrap(docxerr.StorageFailure, "close tenant handle before delete", err)
		}
	}

	if r.config.TenantDir == nil {
		return nil
	}
	dir := r.config.TenantDir(tenantID)
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return docxerr.Wrap(docxerr.StorageFailure, "remove tenant directory", err)
	}
	return nil
}
