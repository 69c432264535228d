package sqlstore

import (
	"context"
	"testing"

	"github.com/mlow/low/core"
)

func seedPackage(t *testing.T, ctx context.Context, b *InstalledBackend, name, version string) *packageRecord {
	t.Helper()
	record := &packageRecord{
		ID:      idToString(core.PackageID{byte(len(name)), byte(len(version)), 1}),
		Name:    name,
		Version: version,
		Release: "1",
		Arch:    "x86_64",
	}
	if _, err := b.db.NewInsert().Model(record).Exec(ctx); err != nil {
		t.Fatalf("seed package %s: %v", name, err)
	}
	return record
}

func newTestInstalledBackend(t *testing.T) (*InstalledBackend, context.Context) {
	t.Helper()
	ctx := context.Background()
	db, err := NewFactory(false).OpenMemorySQLite(ctx)
	if err != nil {
		t.Fatalf("open memory sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewInstalledBackend(db, "installed"), ctx
}

func TestInstalledBackendListAllFiltersGPGPubkey(t *testing.T) {
	b, ctx := newTestInstalledBackend(t)
	seedPackage(t, ctx, b, "bash", "5.2")
	seedPackage(t, ctx, b, "gpg-pubkey", "1.0")

	it, err := b.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	defer it.Close()

	var names []string
	for {
		pkg, ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		names = append(names, pkg.Name)
	}
	if len(names) != 1 || names[0] != "bash" {
		t.Fatalf("expected only bash to survive gpg-pubkey filtering, got %v", names)
	}
}

func TestInstalledBackendListByName(t *testing.T) {
	b, ctx := newTestInstalledBackend(t)
	seedPackage(t, ctx, b, "bash", "5.2")
	seedPackage(t, ctx, b, "zsh", "5.9")

	it, err := b.ListByName(ctx, "zsh")
	if err != nil {
		t.Fatalf("ListByName: %v", err)
	}
	defer it.Close()

	pkg, ok, err := it.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("expected one zsh hit, err=%v ok=%v", err, ok)
	}
	if pkg.Name != "zsh" {
		t.Fatalf("expected zsh, got %s", pkg.Name)
	}
	if _, ok, err := it.Next(ctx); err != nil || ok {
		t.Fatalf("expected exactly one hit for zsh")
	}
}

func TestInstalledBackendSearchProvidesMatchesDirection(t *testing.T) {
	b, ctx := newTestInstalledBackend(t)
	record := seedPackage(t, ctx, b, "bash", "5.2")

	if _, err := b.db.NewInsert().Model(&depRecord{
		PackageID: record.ID,
		Name:      "libc.so.6",
		Sense:     string(core.SenseNone),
	}).Exec(ctx); err != nil {
		t.Fatalf("seed provides row: %v", err)
	}

	it, err := b.SearchProvides(ctx, core.PackageDependency{Name: "libc.so.6", Sense: core.SenseNone})
	if err != nil {
		t.Fatalf("SearchProvides: %v", err)
	}
	defer it.Close()

	pkg, ok, err := it.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("expected a provides hit, err=%v ok=%v", err, ok)
	}
	if pkg.Name != "bash" {
		t.Fatalf("expected bash to provide libc.so.6, got %s", pkg.Name)
	}
}

func TestInstalledBackendSearchFiles(t *testing.T) {
	b, ctx := newTestInstalledBackend(t)
	record := seedPackage(t, ctx, b, "bash", "5.2")

	if _, err := b.db.NewInsert().Model(&fileRecord{
		PackageID: record.ID,
		Path:      "/bin/bash",
	}).Exec(ctx); err != nil {
		t.Fatalf("seed file row: %v", err)
	}

	it, err := b.SearchFiles(ctx, "/bin/bash")
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	defer it.Close()

	pkg, ok, err := it.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("expected a file hit, err=%v ok=%v", err, ok)
	}
	if pkg.Name != "bash" {
		t.Fatalf("expected bash to own /bin/bash, got %s", pkg.Name)
	}
}

func TestInstalledBackendSearchDetailsMatchesSummaryOrDescription(t *testing.T) {
	b, ctx := newTestInstalledBackend(t)
	record := seedPackage(t, ctx, b, "bash", "5.2")
	record.Summary = "The GNU Bourne Again shell"
	if _, err := b.db.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
		t.Fatalf("update summary: %v", err)
	}

	it, err := b.SearchDetails(ctx, "Bourne Again")
	if err != nil {
		t.Fatalf("SearchDetails: %v", err)
	}
	defer it.Close()

	pkg, ok, err := it.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("expected a details hit, err=%v ok=%v", err, ok)
	}
	if pkg.Name != "bash" {
		t.Fatalf("expected bash, got %s", pkg.Name)
	}
}
