// Package download implements spec.md §4.5: single-mirror and
// mirror-failover fetch, digest-based integrity verification, and the
// on-disk cache/content layout of §4.8 that the external executor later
// consumes.
package download

import (
	"context"
	"math/rand"
	"strings"
	"sync"
)

// Mirrors tracks a repository's mirror URLs and their process-local
// bad-flags. Grounded on the teacher's ratelimit/policy.go MemoryStateStore
// shape (mutex-guarded map keyed by a normalized string, get/upsert), with
// a mirror's bad-flag playing the role of a rate-limit bucket's throttled
// state. Per spec.md §5/§9 ("Mirror bad-flag: process-local, not
// persisted"), a Mirrors value is never written to disk or shared across
// processes.
type Mirrors struct {
	mu   sync.Mutex
	urls []string
	bad  map[string]bool
}

// NewMirrors builds a Mirrors over urls, all initially good. Empty or
// duplicate entries are dropped.
func NewMirrors(urls []string) *Mirrors {
	m := &Mirrors{bad: make(map[string]bool)}
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		m.urls = append(m.urls, u)
	}
	return m
}

// Pick implements spec.md §4.5's pick_random: a uniformly random URL whose
// bad-flag is clear, or ok=false when every mirror is bad (or there are
// none). It satisfies repo.MirrorList.
func (m *Mirrors) Pick(_ context.Context) (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var good []string
	for _, u := range m.urls {
		if !m.bad[u] {
			good = append(good, u)
		}
	}
	if len(good) == 0 {
		return "", false
	}
	return good[rand.Intn(len(good))], true
}

// MarkBad flips url's bad-flag. Unknown URLs are recorded anyway: a mirror
// list refreshed between queries may still report a now-stale URL bad.
func (m *Mirrors) MarkBad(url string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bad[url] = true
}

// Reset clears every bad-flag, for a caller starting a fresh transaction
// against the same repository.
func (m *Mirrors) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for u := range m.bad {
		delete(m.bad, u)
	}
}

// JoinURL implements spec.md §4.5's slash-insertion rule: base + '/' + rel,
// inserting the slash only when base doesn't already end with one.
func JoinURL(base, rel string) string {
	if strings.HasSuffix(base, "/") {
		return base + rel
	}
	return base + "/" + rel
}
