// Package pkgcache gives Go's garbage-collected Package values the same
// observable identity the C original gets from manual reference counting:
// two lookups of the same package id within the same repository return the
// same *core.Package pointer for as long as the cache is live, and a
// Release/Acquire pair tracks a count for parity with the original's
// acquire/release contract (spec.md §3). Reaching a zero refcount does
// NOT evict the entry — see Release's doc comment — only
// InvalidateRepository does, for the genuine repository-teardown case.
package pkgcache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/mlow/low/core"
)

const packageCacheKeyPrefix = "low::pkgcache::v1"

// CacheKey returns the deterministic repositorycache key for (repoID, id):
// low::pkgcache::v1::<repo id>::<hex package id>, each segment path-escaped,
// mirroring the teacher's RateLimitStateCacheKey construction.
func CacheKey(repoID string, id core.PackageID) string {
	segments := []string{repoID, fmt.Sprintf("%x", id[:])}
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(append([]string{packageCacheKeyPrefix}, segments...), "::")
}

// FetchFunc loads the Package for id when it isn't already interned.
type FetchFunc func(ctx context.Context) (*core.Package, error)

// Cache is the per-process package intern table. One Cache is shared across
// every repository the resolver touches; CacheKey namespaces entries by
// repository id so the same 16-byte id in two repositories interns
// separately, per spec.md §3's "unique within one repository" identity.
type Cache struct {
	backend repositorycache.CacheService

	mu    sync.Mutex
	refs  map[string]int
}

// New wraps backend, an in-process repositorycache.CacheService, as a
// package intern table. backend must hand back the exact value it was given
// (not a deserialized copy) for pointer-identity sharing to hold; this is
// true of go-repository-cache's in-memory implementations, the only ones
// this module wires.
func New(backend repositorycache.CacheService) *Cache {
	return &Cache{backend: backend, refs: make(map[string]int)}
}

// Acquire returns the interned *core.Package for (repoID, id), invoking
// fetch only on the first lookup, and increments its reference count.
// Every successful Acquire must be paired with a Release.
func (c *Cache) Acquire(ctx context.Context, repoID string, id core.PackageID, fetch FetchFunc) (*core.Package, error) {
	if c == nil {
		return nil, fmt.Errorf("pkgcache: cache is not configured")
	}
	if fetch == nil {
		return nil, fmt.Errorf("pkgcache: fetch function is required")
	}
	key := CacheKey(repoID, id)
	pkg, err := repositorycache.GetOrFetch(ctx, c.backend, key, fetch)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.refs[key]++
	c.mu.Unlock()
	return pkg, nil
}

// Release decrements (repoID, id)'s reference count for the spec's
// observable-refcount contract. It deliberately does NOT evict the entry
// from backend at zero: spec.md §3's termination argument (and the
// resolver's removal cascade in particular) depends on every Acquire of
// the same id returning the same *core.Package for as long as the cache is
// live, including the many transient acquire-then-release existence
// checks the resolver performs against packages that are never otherwise
// retained. Evicting at zero refs would force the next Acquire to re-fetch
// a fresh pointer from the backend, breaking the pointer-identity
// membership tests (Transaction.InRemove and friends) rely on and
// defeating the fixpoint's termination guarantee. Go's GC already keeps a
// Package alive for every holder regardless of what this bookkeeping
// says; actual eviction happens only via InvalidateRepository, when a
// repository is genuinely torn down (spec.md §3: "destroying the
// repository invalidates all its packages").
func (c *Cache) Release(ctx context.Context, repoID string, id core.PackageID) error {
	if c == nil {
		return fmt.Errorf("pkgcache: cache is not configured")
	}
	key := CacheKey(repoID, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	count, tracked := c.refs[key]
	if !tracked || count <= 0 {
		return fmt.Errorf("pkgcache: release of %s with no outstanding acquire", key)
	}
	// The entry's key is kept in refs even at count 0 (rather than
	// deleted) so InvalidateRepository's prefix scan can still find and
	// evict it later; only InvalidateRepository removes a key from refs.
	c.refs[key] = count - 1
	return nil
}

// InvalidateRepository evicts every cached entry interned under repoID and
// drops their refcount bookkeeping, for the repository-shutdown lifecycle
// event spec.md §3 describes ("destroying the repository invalidates all
// its packages") — distinct from the zero-refcount transition Release
// tracks, which by itself must not evict (see Release's doc comment).
func (c *Cache) InvalidateRepository(ctx context.Context, repoID string) error {
	if c == nil {
		return fmt.Errorf("pkgcache: cache is not configured")
	}
	prefix := strings.Join([]string{packageCacheKeyPrefix, url.PathEscape(repoID)}, "::") + "::"

	c.mu.Lock()
	var keys []string
	for key := range c.refs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		delete(c.refs, key)
	}
	c.mu.Unlock()

	for _, key := range keys {
		if err := c.backend.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// RefCount reports the current outstanding Acquire count for (repoID, id),
// for tests asserting the spec's reference-count contract.
func (c *Cache) RefCount(repoID string, id core.PackageID) int {
	if c == nil {
		return 0
	}
	key := CacheKey(repoID, id)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs[key]
}
