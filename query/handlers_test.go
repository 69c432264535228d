package query

import (
	"context"
	"testing"

	"github.com/mlow/low/core"
	"github.com/mlow/low/repo"
)

type sliceBackend struct {
	pkgs []*core.Package
}

func (b sliceBackend) ListAll(ctx context.Context) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}
func (b sliceBackend) ListByName(ctx context.Context, name string) (core.PackageIter, error) {
	var out []*core.Package
	for _, p := range b.pkgs {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return &sliceIter{pkgs: out}, nil
}
func (b sliceBackend) SearchProvides(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}
func (b sliceBackend) SearchRequires(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}
func (b sliceBackend) SearchConflicts(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}
func (b sliceBackend) SearchObsoletes(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}
func (b sliceBackend) SearchFiles(ctx context.Context, path string) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}
func (b sliceBackend) SearchDetails(ctx context.Context, substring string) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}

var _ repo.Backend = sliceBackend{}

type sliceIter struct {
	pkgs []*core.Package
	idx  int
}

func (it *sliceIter) Next(ctx context.Context) (*core.Package, bool, error) {
	if it.idx >= len(it.pkgs) {
		return nil, false, nil
	}
	p := it.pkgs[it.idx]
	it.idx++
	return p, true, nil
}

func (it *sliceIter) Close() error { return nil }

type fakeReader struct {
	installed repo.Backend
	available *repo.RepositorySet
}

func (r fakeReader) Installed() repo.Backend            { return r.installed }
func (r fakeReader) Available() *repo.RepositorySet { return r.available }

func TestListAllQueryInstalledScope(t *testing.T) {
	bash := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	reader := fakeReader{installed: sliceBackend{pkgs: []*core.Package{bash}}}

	q := NewListAllQuery(reader)
	got, err := q.Query(context.Background(), ListAllMessage{Scope: ScopeInstalled})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0] != bash {
		t.Fatalf("ListAllQuery = %v, want [bash]", got)
	}
}

func TestListAllQueryAvailableScopeUnionsRepos(t *testing.T) {
	base := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	updates := core.NewPackage("bash", 0, "5.3", "1", "x86_64")

	set := repo.NewRepositorySet()
	set.Add(repo.NewRepository("base", true, sliceBackend{pkgs: []*core.Package{base}}))
	set.Add(repo.NewRepository("updates", true, sliceBackend{pkgs: []*core.Package{updates}}))

	reader := fakeReader{available: set}
	q := NewListAllQuery(reader)
	got, err := q.Query(context.Background(), ListAllMessage{Scope: ScopeAvailable})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 || got[0] != base || got[1] != updates {
		t.Fatalf("ListAllQuery available scope = %v, want [base, updates]", got)
	}
}

func TestListByNameQueryFiltersByName(t *testing.T) {
	bash := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	vim := core.NewPackage("vim", 0, "9.0", "1", "x86_64")
	reader := fakeReader{installed: sliceBackend{pkgs: []*core.Package{bash, vim}}}

	q := NewListByNameQuery(reader)
	got, err := q.Query(context.Background(), ListByNameMessage{Scope: ScopeInstalled, Name: "vim"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0] != vim {
		t.Fatalf("ListByNameQuery = %v, want [vim]", got)
	}
}

func TestListAllQueryMissingInstalledBackend(t *testing.T) {
	q := NewListAllQuery(fakeReader{})
	if _, err := q.Query(context.Background(), ListAllMessage{Scope: ScopeInstalled}); err == nil {
		t.Fatal("expected error when no installed backend is configured")
	}
}

func TestTransactionSnapshotQuery(t *testing.T) {
	txn := core.NewTransaction(nil, nil, nil)
	pkg := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	txn.AddInstall(pkg)

	q := NewTransactionSnapshotQuery(txn)
	snap, err := q.Query(context.Background(), TransactionSnapshotMessage{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(snap.Install) != 1 || snap.Install[0] != pkg {
		t.Fatalf("TransactionSnapshot.Install = %v, want [bash]", snap.Install)
	}
}

func TestTransactionSnapshotQueryNilReader(t *testing.T) {
	q := NewTransactionSnapshotQuery(nil)
	if _, err := q.Query(context.Background(), TransactionSnapshotMessage{}); err == nil {
		t.Fatal("expected error for nil transaction reader")
	}
}
