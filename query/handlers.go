package query

import (
	"context"

	"github.com/mlow/low/core"
	"github.com/mlow/low/repo"
)

// PackageReader exposes the two query targets spec.md §4.3/§4.4 define:
// the single installed repository's backend, and the set of available
// repositories Union fans a query out across. Satisfied directly by a
// *repo.Repository (via its Backend() accessor) paired with a
// *repo.RepositorySet, wired once at facade construction.
type PackageReader interface {
	Installed() repo.Backend
	Available() *repo.RepositorySet
}

// TransactionReader is the read side of core.Transaction the snapshot
// query needs; *core.Transaction satisfies this directly.
type TransactionReader interface {
	Install() []*core.Package
	Update() []core.UpdatePair
	Updated() []*core.Package
	Remove() []*core.Package
	Unresolved() []core.UnresolvedEntry
}

// TransactionSnapshot is a read-only copy of a Transaction's five
// membership sets, the result type TransactionSnapshotQuery returns.
type TransactionSnapshot struct {
	Install    []*core.Package
	Update     []core.UpdatePair
	Updated    []*core.Package
	Remove     []*core.Package
	Unresolved []core.UnresolvedEntry
}

func scopedIter(ctx context.Context, reader PackageReader, scope Scope, q repo.Query) (core.PackageIter, error) {
	if reader == nil {
		return nil, queryDependencyError("query: package reader is required")
	}
	switch scope {
	case ScopeInstalled:
		backend := reader.Installed()
		if backend == nil {
			return nil, queryDependencyError("query: no installed repository configured")
		}
		return q(ctx, backend)
	case ScopeAvailable:
		return repo.Union(ctx, reader.Available(), q)
	default:
		return nil, queryInvalidInputError("query: unknown scope")
	}
}

func drainPackages(ctx context.Context, it core.PackageIter) ([]*core.Package, error) {
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
		out = append(out, pkg)
	}
}

type ListAllQuery struct {
	reader PackageReader
}

func NewListAllQuery(reader PackageReader) *ListAllQuery {
	return &ListAllQuery{reader: reader}
}

func (q *ListAllQuery) Query(ctx context.Context, msg ListAllMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.ListAllQuery())
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type ListByNameQuery struct {
	reader PackageReader
}

func NewListByNameQuery(reader PackageReader) *ListByNameQuery {
	return &ListByNameQuery{reader: reader}
}

func (q *ListByNameQuery) Query(ctx context.Context, msg ListByNameMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.ListByNameQuery(msg.Name))
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type SearchProvidesQuery struct {
	reader PackageReader
}

func NewSearchProvidesQuery(reader PackageReader) *SearchProvidesQuery {
	return &SearchProvidesQuery{reader: reader}
}

func (q *SearchProvidesQuery) Query(ctx context.Context, msg SearchProvidesMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.SearchProvidesQuery(msg.Dep))
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type SearchRequiresQuery struct {
	reader PackageReader
}

func NewSearchRequiresQuery(reader PackageReader) *SearchRequiresQuery {
	return &SearchRequiresQuery{reader: reader}
}

func (q *SearchRequiresQuery) Query(ctx context.Context, msg SearchRequiresMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.SearchRequiresQuery(msg.Dep))
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type SearchConflictsQuery struct {
	reader PackageReader
}

func NewSearchConflictsQuery(reader PackageReader) *SearchConflictsQuery {
	return &SearchConflictsQuery{reader: reader}
}

func (q *SearchConflictsQuery) Query(ctx context.Context, msg SearchConflictsMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.SearchConflictsQuery(msg.Dep))
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type SearchObsoletesQuery struct {
	reader PackageReader
}

func NewSearchObsoletesQuery(reader PackageReader) *SearchObsoletesQuery {
	return &SearchObsoletesQuery{reader: reader}
}

func (q *SearchObsoletesQuery) Query(ctx context.Context, msg SearchObsoletesMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.SearchObsoletesQuery(msg.Dep))
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type SearchFilesQuery struct {
	reader PackageReader
}

func NewSearchFilesQuery(reader PackageReader) *SearchFilesQuery {
	return &SearchFilesQuery{reader: reader}
}

func (q *SearchFilesQuery) Query(ctx context.Context, msg SearchFilesMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.SearchFilesQuery(msg.Path))
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type SearchDetailsQuery struct {
	reader PackageReader
}

func NewSearchDetailsQuery(reader PackageReader) *SearchDetailsQuery {
	return &SearchDetailsQuery{reader: reader}
}

func (q *SearchDetailsQuery) Query(ctx context.Context, msg SearchDetailsMessage) ([]*core.Package, error) {
	it, err := scopedIter(ctx, q.reader, msg.Scope, repo.SearchDetailsQuery(msg.Substring))
	if err != nil {
		return nil, err
	}
	return drainPackages(ctx, it)
}

type TransactionSnapshotQuery struct {
	reader TransactionReader
}

func NewTransactionSnapshotQuery(reader TransactionReader) *TransactionSnapshotQuery {
	return &TransactionSnapshotQuery{reader: reader}
}

func (q *TransactionSnapshotQuery) Query(ctx context.Context, _ TransactionSnapshotMessage) (TransactionSnapshot, error) {
	if q == nil || q.reader == nil {
		return TransactionSnapshot{}, queryDependencyError("query: transaction reader is required")
	}
	return TransactionSnapshot{
		Install:    q.reader.Install(),
		Update:     q.reader.Update(),
		Updated:    q.reader.Updated(),
		Remove:     q.reader.Remove(),
		Unresolved: q.reader.Unresolved(),
	}, nil
}
