package core

import (
	"context"
	"fmt"
)

// DigestKind enumerates the digest algorithms spec §3 allows on a Package.
type DigestKind string

const (
	DigestNone   DigestKind = "NONE"
	DigestMD5    DigestKind = "MD5"
	DigestSHA1   DigestKind = "SHA1"
	DigestSHA256 DigestKind = "SHA256"
)

// PackageID is the 16-byte package id blob spec §3/§6 use as the stable
// cross-process identity for installed packages and transaction output.
type PackageID [16]byte

// RepositoryRef is the minimal, non-owning view of a Repository a Package
// needs: its id (for tiebreaking, spec §4.7.4) and mirror/delta accessors
// the download layer needs (spec §4.3). The full Repository interface
// lives in package repo to avoid an import cycle between core and repo.
type RepositoryRef interface {
	ID() string
	Enabled() bool
}

// PackageIter is implemented by every query result, per spec §4.3/§4.4: a
// lazy, single-pass, forward-only stream that yields each match exactly
// once and must be paired with Close.
type PackageIter interface {
	Next(ctx context.Context) (*Package, bool, error)
	Close() error
}

// Package is the immutable-identity, lazily-populated entity of spec §3.
// Two lookups of the "same" package from the same repository are expected
// to return a pointer to the same Package value; that sharing is the job of
// package pkgcache, not of Package itself.
type Package struct {
	// Identity tuple (spec §3 invariant: unique within one repository).
	Name    string
	Epoch   int
	Version string
	Release string
	Arch    Arch

	// ID is the 16-byte package id blob. Installed packages always carry
	// one; available packages may synthesize one from their metadata (see
	// store/sql) since upstream repomd doesn't hand out ids directly.
	ID PackageID

	// Human fields.
	Summary     string
	Description string
	URL         string
	License     string

	InstalledSize int64
	PackageSize   int64

	Repository RepositoryRef

	// LocationHref is empty for installed packages (spec §3 invariant:
	// "Installed packages carry no location_href and no digest").
	LocationHref string
	Digest       string
	DigestKind   DigestKind

	// Dependency and file-list fields are lazily populated sequences; a nil
	// loader means "already resolved to an empty/complete slice," letting
	// tests construct a Package literal without wiring a loader.
	provides DependencyLoader
	requires DependencyLoader
	conflicts DependencyLoader
	obsoletes DependencyLoader
	files     FileLoader

	providesCache  []PackageDependency
	requiresCache  []PackageDependency
	conflictsCache []PackageDependency
	obsoletesCache []PackageDependency
	filesCache     []string
}

// DependencyLoader lazily produces one of a package's dependency sequences.
type DependencyLoader func(ctx context.Context) ([]PackageDependency, error)

// FileLoader lazily produces a package's absolute file-path list.
type FileLoader func(ctx context.Context) ([]string, error)

// NewPackage constructs a Package with eagerly-known identity/attribute
// fields; dependency and file sequences are wired in with the With* setters
// below by the backend that produces it.
func NewPackage(name string, epoch int, version, release string, arch Arch) *Package {
	return &Package{Name: name, Epoch: epoch, Version: version, Release: release, Arch: arch}
}

// WithProvidesLoader, WithRequiresLoader, WithConflictsLoader,
// WithObsoletesLoader, and WithFilesLoader wire the lazy sequences; each
// returns the receiver for chaining at construction time.
func (p *Package) WithProvidesLoader(l DependencyLoader) *Package  { p.provides = l; return p }
func (p *Package) WithRequiresLoader(l DependencyLoader) *Package  { p.requires = l; return p }
func (p *Package) WithConflictsLoader(l DependencyLoader) *Package { p.conflicts = l; return p }
func (p *Package) WithObsoletesLoader(l DependencyLoader) *Package { p.obsoletes = l; return p }
func (p *Package) WithFilesLoader(l FileLoader) *Package           { p.files = l; return p }

// EVR returns the package's parsed epoch-version-release triple.
func (p *Package) EVR() EVR {
	if p == nil {
		return EVR{}
	}
	return EVR{Epoch: p.Epoch, Version: p.Version, Release: p.Release}
}

// NEVRA renders "name-epoch:version-release.arch" for diagnostics.
func (p *Package) NEVRA() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%s-%s.%s", p.Name, p.EVR().String(), p.Arch)
}

// String implements a human-readable summary of the package, exposed so an
// external front end can print transaction members without the core owning
// presentation (SPEC_FULL §7 supplement).
func (p *Package) String() string {
	if p == nil {
		return "<nil package>"
	}
	repoID := ""
	if p.Repository != nil {
		repoID = p.Repository.ID()
	}
	if repoID == "" {
		return p.NEVRA()
	}
	return fmt.Sprintf("%s from %s", p.NEVRA(), repoID)
}

func (p *Package) Provides(ctx context.Context) ([]PackageDependency, error) {
	return p.loadDeps(ctx, p.provides, &p.providesCache)
}

func (p *Package) Requires(ctx context.Context) ([]PackageDependency, error) {
	return p.loadDeps(ctx, p.requires, &p.requiresCache)
}

func (p *Package) Conflicts(ctx context.Context) ([]PackageDependency, error) {
	return p.loadDeps(ctx, p.conflicts, &p.conflictsCache)
}

func (p *Package) Obsoletes(ctx context.Context) ([]PackageDependency, error) {
	return p.loadDeps(ctx, p.obsoletes, &p.obsoletesCache)
}

func (p *Package) Files(ctx context.Context) ([]string, error) {
	if p == nil {
		return nil, nil
	}
	if p.filesCache != nil || p.files == nil {
		return p.filesCache, nil
	}
	files, err := p.files(ctx)
	if err != nil {
		return nil, err
	}
	p.filesCache = files
	return files, nil
}

func (p *Package) loadDeps(ctx context.Context, loader DependencyLoader, cache *[]PackageDependency) ([]PackageDependency, error) {
	if p == nil {
		return nil, nil
	}
	if *cache != nil || loader == nil {
		return *cache, nil
	}
	deps, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	*cache = deps
	return deps, nil
}

// SameIdentity reports whether two packages share the (name, epoch,
// version, release, arch) tuple spec §3 calls unique within a repository.
// This is value identity; pointer identity (the sharing guarantee pkgcache
// provides) is the stronger property membership sets rely on.
func SameIdentity(a, b *Package) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name && a.Epoch == b.Epoch && a.Version == b.Version &&
		a.Release == b.Release && a.Arch == b.Arch
}
