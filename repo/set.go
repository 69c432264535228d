package repo

import "sync"

// RepositorySet is an ordered collection of named repositories, per
// spec.md §3/§4.4. Insertion order is preserved so Union's repo-visitation
// order is stable and reproducible across runs, matching spec.md §5's
// stable-visitation requirement for everything the resolver iterates.
type RepositorySet struct {
	mu    sync.RWMutex
	order []string
	repos map[string]*Repository
}

// NewRepositorySet constructs an empty set.
func NewRepositorySet() *RepositorySet {
	return &RepositorySet{repos: map[string]*Repository{}}
}

// Add registers repo under its own ID, replacing any existing entry with
// the same ID in place (preserving its original position).
func (s *RepositorySet) Add(r *Repository) {
	if s == nil || r == nil || r.ID() == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.repos[r.ID()]; !exists {
		s.order = append(s.order, r.ID())
	}
	s.repos[r.ID()] = r
}

// Remove drops the repository with the given id, if present.
func (s *RepositorySet) Remove(id string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.repos[id]; !exists {
		return
	}
	delete(s.repos, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the repository registered under id, if any.
func (s *RepositorySet) Get(id string) (*Repository, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.repos[id]
	return r, ok
}

// Len returns the number of registered repositories, enabled or not.
func (s *RepositorySet) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// All returns every registered repository in insertion order.
func (s *RepositorySet) All() []*Repository {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Repository, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.repos[id])
	}
	return out
}

// Enabled returns every currently-enabled repository, in insertion order,
// re-reading Enabled() on each call per spec.md §9's per-query contract.
func (s *RepositorySet) Enabled() []*Repository {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Repository, 0, len(s.order))
	for _, id := range s.order {
		if r := s.repos[id]; r != nil && r.Enabled() {
			out = append(out, r)
		}
	}
	return out
}
