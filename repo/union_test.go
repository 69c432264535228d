package repo

import (
	"context"
	"testing"

	"github.com/mlow/low/core"
)

// sliceIter is a minimal core.PackageIter over an in-memory slice, used to
// back fakeUnionBackend without touching any store/sql machinery.
type sliceIter struct {
	pkgs   []*core.Package
	idx    int
	closed bool
}

func (it *sliceIter) Next(ctx context.Context) (*core.Package, bool, error) {
	if it.idx >= len(it.pkgs) {
		return nil, false, nil
	}
	p := it.pkgs[it.idx]
	it.idx++
	return p, true, nil
}

func (it *sliceIter) Close() error {
	it.closed = true
	return nil
}

// fakeUnionBackend implements Backend with a fixed ListAll result, enough
// to exercise Union's chaining behavior across repositories.
type fakeUnionBackend struct {
	pkgs []*core.Package
}

func (b *fakeUnionBackend) ListAll(ctx context.Context) (core.PackageIter, error) {
	return &sliceIter{pkgs: b.pkgs}, nil
}
func (b *fakeUnionBackend) ListByName(ctx context.Context, name string) (core.PackageIter, error) {
	return &sliceIter{}, nil
}
func (b *fakeUnionBackend) SearchProvides(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{}, nil
}
func (b *fakeUnionBackend) SearchRequires(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{}, nil
}
func (b *fakeUnionBackend) SearchConflicts(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{}, nil
}
func (b *fakeUnionBackend) SearchObsoletes(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return &sliceIter{}, nil
}
func (b *fakeUnionBackend) SearchFiles(ctx context.Context, path string) (core.PackageIter, error) {
	return &sliceIter{}, nil
}
func (b *fakeUnionBackend) SearchDetails(ctx context.Context, substring string) (core.PackageIter, error) {
	return &sliceIter{}, nil
}

var _ Backend = (*fakeUnionBackend)(nil)

func drainAll(t *testing.T, ctx context.Context, it core.PackageIter) []*core.Package {
	t.Helper()
	var out []*core.Package
	for {
		pkg, ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		out = append(out, pkg)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return out
}

func TestUnionVisitsEnabledReposInOrder(t *testing.T) {
	base := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	updates := core.NewPackage("bash", 0, "5.3", "1", "x86_64")

	set := NewRepositorySet()
	set.Add(NewRepository("base", true, &fakeUnionBackend{pkgs: []*core.Package{base}}))
	set.Add(NewRepository("updates", true, &fakeUnionBackend{pkgs: []*core.Package{updates}}))

	it, err := Union(context.Background(), set, ListAllQuery())
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	got := drainAll(t, context.Background(), it)
	if len(got) != 2 || got[0] != base || got[1] != updates {
		t.Fatalf("Union visitation order = %v, want [base, updates]", got)
	}
}

func TestUnionSkipsDisabledRepos(t *testing.T) {
	base := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	extrasPkg := core.NewPackage("vim", 0, "9.0", "1", "x86_64")

	set := NewRepositorySet()
	set.Add(NewRepository("base", true, &fakeUnionBackend{pkgs: []*core.Package{base}}))
	extras := NewRepository("extras", false, &fakeUnionBackend{pkgs: []*core.Package{extrasPkg}})
	set.Add(extras)

	it, err := Union(context.Background(), set, ListAllQuery())
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	got := drainAll(t, context.Background(), it)
	if len(got) != 1 || got[0] != base {
		t.Fatalf("expected disabled repo skipped, got %v", got)
	}
}

func TestUnionReReadsEnabledStateMidIteration(t *testing.T) {
	base := core.NewPackage("bash", 0, "5.2", "1", "x86_64")
	updatesPkg := core.NewPackage("bash", 0, "5.3", "1", "x86_64")

	set := NewRepositorySet()
	set.Add(NewRepository("base", true, &fakeUnionBackend{pkgs: []*core.Package{base}}))
	updates := NewRepository("updates", true, &fakeUnionBackend{pkgs: []*core.Package{updatesPkg}})
	set.Add(updates)

	it, err := Union(context.Background(), set, ListAllQuery())
	if err != nil {
		t.Fatalf("Union: %v", err)
	}

	// Disable "updates" after the iterator is constructed but before it
	// ever reaches that repository's turn: a snapshot taken at Union-call
	// time would still visit it, but re-reading Enabled() per advance must
	// skip it.
	updates.SetEnabled(false)

	got := drainAll(t, context.Background(), it)
	if len(got) != 1 || got[0] != base {
		t.Fatalf("expected disabling mid-iteration to be observed on next advance, got %v", got)
	}
}

func TestUnionEmptySet(t *testing.T) {
	it, err := Union(context.Background(), NewRepositorySet(), ListAllQuery())
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	got := drainAll(t, context.Background(), it)
	if len(got) != 0 {
		t.Fatalf("expected no results from empty set, got %v", got)
	}
}

func TestUnionNilSet(t *testing.T) {
	it, err := Union(context.Background(), nil, ListAllQuery())
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	_, ok, err := it.Next(context.Background())
	if err != nil || ok {
		t.Fatalf("expected nil set to yield an immediately exhausted iterator, got ok=%v err=%v", ok, err)
	}
}
