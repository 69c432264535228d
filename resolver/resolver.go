// Package resolver implements spec.md §4.7: the fixpoint dependency
// resolution loop that drives a core.Transaction from its caller-seeded
// install/update/remove sets to a fully resolved (or UNRESOLVABLE)
// transaction.
//
// Grounded on the teacher's sync/orchestrator.go shape (a struct holding its
// collaborators, receiver methods driving a job through a small state
// machine, plain error returns at each step) and on the queue/visited
// iterate-until-stable idiom read from
// _examples/other_examples/9a3a874b_immutos-debco__internal-resolve-resolve.go.go,
// adapted from "expand a dependency queue once" to "repeat three whole
// passes until none of them change anything," per spec.md's Design Notes
// correcting the C original's early-return bug with true fixpoint
// iteration.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/mlow/low/core"
	"github.com/mlow/low/pkgcache"
	"github.com/mlow/low/repo"
)

// ErrUnresolved is returned by Resolve when a pass determined one or more
// packages are UNRESOLVABLE; the transaction's Unresolved() slice carries
// the detail, per spec.md §4.7's "return Unresolved with the current
// snapshot."
var ErrUnresolved = errors.New("resolver: transaction has unresolved packages")

// Resolver holds the query surfaces a resolve pass needs: the single
// installed repository, the set of available repositories, the host
// architecture for candidate arch preference, and the package intern cache
// that gives repeated lookups of the same id the pointer identity
// Transaction's membership sets rely on.
type Resolver struct {
	Installed *repo.Repository
	Available *repo.RepositorySet
	HostArch  core.Arch
	Cache     *pkgcache.Cache

	Recorder core.ProgressRecorder
	Tracer   core.Tracer
}

// New constructs a Resolver. recorder/tracer may be nil; they default to the
// no-op implementations core.Runtime itself defaults to.
func New(installed *repo.Repository, available *repo.RepositorySet, hostArch core.Arch, cache *pkgcache.Cache) *Resolver {
	return &Resolver{
		Installed: installed,
		Available: available,
		HostArch:  hostArch,
		Cache:     cache,
		Recorder:  core.NopProgressRecorder{},
		Tracer:    core.NopTracer{},
	}
}

// Resolve runs the outer fixpoint loop of spec.md §4.7 against txn: repeat
// conflicts → requires → removal-cascade until a full cycle makes no
// change. Any pass that finds an UNRESOLVABLE package halts resolution
// immediately and returns ErrUnresolved; txn.Unresolved() carries the
// detail. Any other error is a query/transport failure, not a resolution
// failure.
func (r *Resolver) Resolve(ctx context.Context, txn *core.Transaction) error {
	if r == nil {
		return errors.New("resolver: nil resolver")
	}
	if txn == nil {
		return errors.New("resolver: nil transaction")
	}

	for {
		startedAt := time.Now()

		unresolvable, err := r.conflictsPass(ctx, txn)
		if err != nil {
			r.observe(ctx, startedAt, "resolve_pass", err)
			return err
		}
		if unresolvable {
			r.observe(ctx, startedAt, "resolve_pass", ErrUnresolved)
			return ErrUnresolved
		}

		requiresChanged, unresolvable, err := r.requiresPass(ctx, txn)
		if err != nil {
			r.observe(ctx, startedAt, "resolve_pass", err)
			return err
		}
		if unresolvable {
			r.observe(ctx, startedAt, "resolve_pass", ErrUnresolved)
			return ErrUnresolved
		}

		removalChanged, err := r.removalPass(ctx, txn)
		if err != nil {
			r.observe(ctx, startedAt, "resolve_pass", err)
			return err
		}

		r.observe(ctx, startedAt, "resolve_pass", nil)

		if !requiresChanged && !removalChanged {
			return nil
		}
	}
}

func (r *Resolver) observe(ctx context.Context, startedAt time.Time, operation string, err error) {
	core.Observe(ctx, r.Recorder, r.Tracer, startedAt, operation, err, nil)
}

// intern routes pkg through the package cache so repeat lookups of the same
// (repoID, id) pair within a resolve share one pointer, per spec.md §3's
// reference-counted-sharing invariant. A nil cache (tests constructing
// Packages by hand) degrades to identity passthrough.
func (r *Resolver) intern(ctx context.Context, repoID string, pkg *core.Package) (*core.Package, error) {
	if r.Cache == nil || pkg == nil {
		return pkg, nil
	}
	return r.Cache.Acquire(ctx, repoID, pkg.ID, func(context.Context) (*core.Package, error) { return pkg, nil })
}

// release drops the transient reference intern acquired, mirroring the C
// original's acquire-inspect-release pattern for a lookup whose result
// isn't retained by a Transaction set. See pkgcache.Cache.Release's doc
// comment: this is bookkeeping for the spec's observable reference count,
// not memory management.
func (r *Resolver) release(ctx context.Context, repoID string, pkg *core.Package) {
	if r.Cache == nil || pkg == nil {
		return
	}
	_ = r.Cache.Release(ctx, repoID, pkg.ID)
}

// drain exhausts it, interning and releasing each result (a transient
// existence check, per the acquire/inspect/release pattern above), and
// returns the collected packages. repoID identifies the backend it came
// from for the cache key.
func (r *Resolver) drain(ctx context.Context, repoID string, it core.PackageIter) ([]*core.Package, error) {
	if it == nil {
		return nil, nil
	}
	defer it.Close()

	var out []*core.Package
	for {
		pkg, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		interned, err := r.intern(ctx, repoID, pkg)
		if err != nil {
			return nil, err
		}
		out = append(out, interned)
		r.release(ctx, repoID, interned)
	}
}

// drainAvailable fans query out across every enabled available repository
// via repo.Union, interning each hit under its own repository's id (unlike
// drain, every result keeps its acquired reference: callers of
// drainAvailable are gathering install candidates, and the eventual winner
// must still be live in the cache when chooseBest returns it).
func (r *Resolver) drainAvailable(ctx context.Context, query repo.Query) ([]*core.Package, error) {
	it, err := repo.Union(ctx, r.Available, query)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []*core.Package
	for {
		pkg, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		interned, err := r.intern(ctx, repositoryID(pkg), pkg)
		if err != nil {
			return nil, err
		}
		out = append(out, interned)
	}
}

func (r *Resolver) installedID() string {
	if r.Installed == nil {
		return ""
	}
	return r.Installed.ID()
}

// RemoveAvailableRepository drops repoID from the available repository set
// and evicts its packages from the intern cache, implementing spec.md §3's
// "destroying the repository invalidates all its packages" weak-back-edge
// rule for available repositories.
func (r *Resolver) RemoveAvailableRepository(ctx context.Context, repoID string) error {
	if r == nil || r.Available == nil {
		return nil
	}
	r.Available.Remove(repoID)
	if r.Cache == nil {
		return nil
	}
	return r.Cache.InvalidateRepository(ctx, repoID)
}

// Close evicts the installed repository's interned packages from the
// cache, for process shutdown. The installed repository itself is owned by
// the caller (it opened the RPM database handle) and is not closed here.
func (r *Resolver) Close(ctx context.Context) error {
	if r == nil || r.Cache == nil {
		return nil
	}
	return r.Cache.InvalidateRepository(ctx, r.installedID())
}
