// Package repo defines the repository query surface of spec.md §4.3 and
// the repository-set union iterator of §4.4: the interfaces backend
// implementations (store/sql) satisfy, and the plumbing that lets a
// resolver query "all enabled repositories" as if they were one.
package repo

import (
	"context"

	"github.com/mlow/low/core"
)

// Backend is the capability-query surface every repository implementation
// (installed or available) exposes, per spec.md §4.3's query table.
type Backend interface {
	ListAll(ctx context.Context) (core.PackageIter, error)
	ListByName(ctx context.Context, name string) (core.PackageIter, error)
	SearchProvides(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error)
	SearchRequires(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error)
	SearchConflicts(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error)
	SearchObsoletes(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error)
	SearchFiles(ctx context.Context, path string) (core.PackageIter, error)
	SearchDetails(ctx context.Context, substring string) (core.PackageIter, error)
}

// MirrorList is the subset of the download layer's mirror type a
// Repository needs to expose, kept here (rather than imported from
// download) to avoid a repo<->download import cycle: download needs a
// *repo.Repository to know where to cache things, and repo needs to hand
// out a mirror list, so the mirror type itself is defined once in download
// and referenced here only through this narrow accessor interface.
type MirrorList interface {
	Pick(ctx context.Context) (string, bool)
	MarkBad(url string)
}

// DeltaInfo describes the delta-RPM metadata a repository may carry for a
// given package, per spec.md §4.5's delta-aware fetch path. Non-goals
// exclude delta *rebuild*; the core still models delta presence so the
// download layer can decide whether a full download is the only option.
type DeltaInfo struct {
	BaseNEVRA    string
	LocationHref string
	Digest       string
	DigestKind   core.DigestKind
	Size         int64
}

// Repository is one named, enabled-or-not package source, backed by a
// Backend and (for available repositories) a mirror list and delta index.
// Installed repositories (there is exactly one, per spec.md) leave
// GetMirrorList/GetDelta returning ok=false.
type Repository struct {
	id      string
	enabled bool
	backend Backend

	mirrors MirrorList
	deltas  map[string]DeltaInfo
}

// NewRepository constructs a Repository wrapping backend under id.
func NewRepository(id string, enabled bool, backend Backend) *Repository {
	return &Repository{id: id, enabled: enabled, backend: backend}
}

// WithMirrorList attaches a mirror list (available repositories only).
func (r *Repository) WithMirrorList(mirrors MirrorList) *Repository {
	r.mirrors = mirrors
	return r
}

// WithDeltas attaches a package-name-keyed delta index.
func (r *Repository) WithDeltas(deltas map[string]DeltaInfo) *Repository {
	r.deltas = deltas
	return r
}

// ID implements core.RepositoryRef.
func (r *Repository) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// Enabled implements core.RepositoryRef.
func (r *Repository) Enabled() bool {
	if r == nil {
		return false
	}
	return r.enabled
}

// SetEnabled toggles this repository's participation in future Union
// queries; per spec.md §9 "per-query re-read", callers must re-read
// Enabled() on every new query rather than caching it.
func (r *Repository) SetEnabled(enabled bool) {
	if r == nil {
		return
	}
	r.enabled = enabled
}

// Backend returns the underlying query surface.
func (r *Repository) Backend() Backend {
	if r == nil {
		return nil
	}
	return r.backend
}

// GetMirrorList returns this repository's mirror list, or ok=false for an
// installed repository (spec.md §4.3).
func (r *Repository) GetMirrorList() (MirrorList, bool) {
	if r == nil || r.mirrors == nil {
		return nil, false
	}
	return r.mirrors, true
}

// GetDelta returns the delta metadata for name, if this repository
// publishes one (spec.md §4.3/§4.5).
func (r *Repository) GetDelta(name string) (DeltaInfo, bool) {
	if r == nil || r.deltas == nil {
		return DeltaInfo{}, false
	}
	d, ok := r.deltas[name]
	return d, ok
}

var _ core.RepositoryRef = (*Repository)(nil)
