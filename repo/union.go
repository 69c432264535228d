package repo

import (
	"context"

	"github.com/mlow/low/core"
)

// Query constructs a per-repository PackageIter for one Backend query
// method, letting Union stay agnostic of which of Backend's eight methods
// is being fanned out across the set.
type Query func(ctx context.Context, backend Backend) (core.PackageIter, error)

// ListAllQuery, ListByNameQuery, and friends adapt each Backend method to
// Query, so callers write Union(ctx, set, repo.ListByNameQuery("bash")).
func ListAllQuery() Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.ListAll(ctx) }
}

func ListByNameQuery(name string) Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.ListByName(ctx, name) }
}

func SearchProvidesQuery(dep core.PackageDependency) Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.SearchProvides(ctx, dep) }
}

func SearchRequiresQuery(dep core.PackageDependency) Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.SearchRequires(ctx, dep) }
}

func SearchConflictsQuery(dep core.PackageDependency) Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.SearchConflicts(ctx, dep) }
}

func SearchObsoletesQuery(dep core.PackageDependency) Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.SearchObsoletes(ctx, dep) }
}

func SearchFilesQuery(path string) Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.SearchFiles(ctx, path) }
}

func SearchDetailsQuery(substring string) Query {
	return func(ctx context.Context, b Backend) (core.PackageIter, error) { return b.SearchDetails(ctx, substring) }
}

// unionIter is the PackageIter spec.md §4.4 describes: it advances the
// current repository's iterator, and on exhaustion constructs a fresh
// iterator for the next enabled repository via the same Query, chaining
// across the whole RepositorySet. Grounded on the teacher's
// inbound/dispatcher.go dispatch-to-the-first-matching-handler shape,
// adapted here from "try handlers until one claims the request" to "drain
// iterators until the set is exhausted."
//
// repos is the set's full insertion-ordered membership, captured once (the
// membership itself is stable for the life of one Union call); enabled
// state is not part of that snapshot. Each advance past a repository calls
// Enabled() on it fresh, so toggling a repository mid-iteration is observed
// on the iterator's next step rather than baked in at construction.
type unionIter struct {
	ctx     context.Context
	query   Query
	repos   []*Repository
	idx     int
	current core.PackageIter
}

// Union returns a PackageIter that lazily visits query's results across
// every repository in set that is enabled at the time its turn comes up, in
// set's insertion order, per spec.md §4.4.  The returned iterator owns no
// goroutines; each Next call advances synchronously, matching the
// single-threaded cooperative model of §5.
func Union(ctx context.Context, set *RepositorySet, query Query) (core.PackageIter, error) {
	if set == nil {
		return &unionIter{ctx: ctx, query: query}, nil
	}
	return &unionIter{ctx: ctx, query: query, repos: set.All()}, nil
}

func (u *unionIter) Next(ctx context.Context) (*core.Package, bool, error) {
	if u == nil {
		return nil, false, nil
	}
	for {
		if u.current == nil {
			for u.idx < len(u.repos) && !u.repos[u.idx].Enabled() {
				u.idx++
			}
			if u.idx >= len(u.repos) {
				return nil, false, nil
			}
			next, err := u.query(ctx, u.repos[u.idx].Backend())
			if err != nil {
				return nil, false, err
			}
			u.current = next
		}
		pkg, ok, err := u.current.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return pkg, true, nil
		}
		if err := u.current.Close(); err != nil {
			return nil, false, err
		}
		u.current = nil
		u.idx++
	}
}

func (u *unionIter) Close() error {
	if u == nil || u.current == nil {
		return nil
	}
	err := u.current.Close()
	u.current = nil
	return err
}

var _ core.PackageIter = (*unionIter)(nil)
