package low

import (
	"context"
	"testing"

	"github.com/mlow/low/adapters/gocommand"
	"github.com/mlow/low/command"
	"github.com/mlow/low/core"
	"github.com/mlow/low/query"
	"github.com/mlow/low/repo"
	"github.com/mlow/low/resolver"
)

type fakeSliceIter struct {
	pkgs []*core.Package
	idx  int
}

func (it *fakeSliceIter) Next(ctx context.Context) (*core.Package, bool, error) {
	if it == nil || it.idx >= len(it.pkgs) {
		return nil, false, nil
	}
	pkg := it.pkgs[it.idx]
	it.idx++
	return pkg, true, nil
}

func (it *fakeSliceIter) Close() error { return nil }

var _ core.PackageIter = (*fakeSliceIter)(nil)

type fakeBackend struct {
	pkgs []*core.Package
}

func (b *fakeBackend) ListAll(ctx context.Context) (core.PackageIter, error) {
	return &fakeSliceIter{pkgs: b.pkgs}, nil
}

func (b *fakeBackend) ListByName(ctx context.Context, name string) (core.PackageIter, error) {
	var out []*core.Package
	for _, pkg := range b.pkgs {
		if pkg.Name == name {
			out = append(out, pkg)
		}
	}
	return &fakeSliceIter{pkgs: out}, nil
}

func (b *fakeBackend) SearchProvides(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &fakeSliceIter{}, nil
}

func (b *fakeBackend) SearchRequires(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &fakeSliceIter{}, nil
}

func (b *fakeBackend) SearchConflicts(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &fakeSliceIter{}, nil
}

func (b *fakeBackend) SearchObsoletes(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &fakeSliceIter{}, nil
}

func (b *fakeBackend) SearchFiles(ctx context.Context, path string) (core.PackageIter, error) {
	return &fakeSliceIter{}, nil
}

func (b *fakeBackend) SearchDetails(ctx context.Context, substring string) (core.PackageIter, error) {
	return &fakeSliceIter{}, nil
}

var _ repo.Backend = (*fakeBackend)(nil)

func newTestResolver() *resolver.Resolver {
	installed := repo.NewRepository("installed", true, &fakeBackend{})

	bash := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	available := repo.NewRepositorySet()
	available.Add(repo.NewRepository("updates", true, &fakeBackend{pkgs: []*core.Package{bash}}))

	return resolver.New(installed, available, core.Arch("x86_64"), nil)
}

func TestNewFacadeRequiresResolver(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatal("expected error for nil resolver")
	}
}

func TestFacadeListAllAvailableScope(t *testing.T) {
	r := newTestResolver()
	facade, err := NewFacade(r)
	if err != nil {
		t.Fatalf("NewFacade: %v", err)
	}
	t.Cleanup(facade.Close)

	pkgs, err := facade.Queries().ListAll.Query(context.Background(), query.ListAllMessage{Scope: query.ScopeAvailable})
	if err != nil {
		t.Fatalf("ListAll query: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "bash" {
		t.Fatalf("expected one available package named bash, got %v", pkgs)
	}
}

func TestFacadeAddInstallAndSnapshot(t *testing.T) {
	r := newTestResolver()
	facade, err := NewFacade(r)
	if err != nil {
		t.Fatalf("NewFacade: %v", err)
	}
	t.Cleanup(facade.Close)

	txn, snapshot := facade.NewTransaction(nil)
	ctx := context.Background()
	if err := facade.Commands().AddInstall.Execute(ctx, command.AddInstallMessage{Txn: txn, Name: "bash"}); err != nil {
		t.Fatalf("AddInstall: %v", err)
	}

	result, err := snapshot.Query(ctx, query.TransactionSnapshotMessage{})
	if err != nil {
		t.Fatalf("snapshot query: %v", err)
	}
	if len(result.Install) != 1 || result.Install[0].Name != "bash" {
		t.Fatalf("expected bash in install snapshot, got %v", result.Install)
	}
}

// TestFacadeDispatchesThroughGoCommandBus drives the same add_install +
// list_all operations as the tests above, but through the go-command
// dispatch bus NewFacade wires via adapters/gocommand rather than calling
// the Commander/Querier directly, the way the teacher's
// compatibility_integration_test.go exercises its own RegistryAdapter
// wiring with gocommand.Dispatch/gocommand.Query.
func TestFacadeDispatchesThroughGoCommandBus(t *testing.T) {
	r := newTestResolver()
	facade, err := NewFacade(r)
	if err != nil {
		t.Fatalf("NewFacade: %v", err)
	}
	t.Cleanup(facade.Close)

	ctx := context.Background()
	txn, snapshot := facade.NewTransaction(nil)

	if err := gocommand.Dispatch(ctx, command.AddInstallMessage{Txn: txn, Name: "bash"}); err != nil {
		t.Fatalf("dispatch add_install: %v", err)
	}

	result, err := snapshot.Query(ctx, query.TransactionSnapshotMessage{})
	if err != nil {
		t.Fatalf("snapshot query: %v", err)
	}
	if len(result.Install) != 1 || result.Install[0].Name != "bash" {
		t.Fatalf("expected bash in install snapshot via bus dispatch, got %v", result.Install)
	}

	if err := gocommand.Dispatch(ctx, command.ResolveMessage{Txn: txn}); err != nil {
		t.Fatalf("dispatch resolve: %v", err)
	}

	pkgs, err := gocommand.Query[query.ListAllMessage, []*core.Package](ctx, query.ListAllMessage{Scope: query.ScopeAvailable})
	if err != nil {
		t.Fatalf("dispatch list_all query: %v", err)
	}
	if len(pkgs) != 1 || pkgs[0].Name != "bash" {
		t.Fatalf("expected one available package named bash via bus query, got %v", pkgs)
	}
}
