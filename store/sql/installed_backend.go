package sqlstore

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/mlow/low/core"
	"github.com/mlow/low/repo"
	"github.com/uptrace/bun"
)

// InstalledBackend is the local RPM database view of spec.md §4.3: exactly
// one per system, backed by a single SQLite database via bun.
type InstalledBackend struct {
	backendCore
}

// NewInstalledBackend wraps db (already migrated) as an installed-packages
// repo.Backend. id is the repository id installed packages report through
// Package.Repository (spec.md uses "installed" as a well-known id).
func NewInstalledBackend(db *bun.DB, id string) *InstalledBackend {
	b := &InstalledBackend{backendCore{db: db, repo: repository.NewRepository[*packageRecord](db, packageHandlers())}}
	b.ref = repo.NewRepository(id, true, b)
	return b
}

func (b *InstalledBackend) ListAll(ctx context.Context) (core.PackageIter, error) {
	return b.listAll(ctx)
}

func (b *InstalledBackend) ListByName(ctx context.Context, name string) (core.PackageIter, error) {
	return b.listByName(ctx, name)
}

func (b *InstalledBackend) SearchProvides(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "provides", dep, false)
}

func (b *InstalledBackend) SearchRequires(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "requires", dep, true)
}

func (b *InstalledBackend) SearchConflicts(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "conflicts", dep, true)
}

func (b *InstalledBackend) SearchObsoletes(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "obsoletes", dep, true)
}

func (b *InstalledBackend) SearchFiles(ctx context.Context, path string) (core.PackageIter, error) {
	return b.searchFiles(ctx, path)
}

func (b *InstalledBackend) SearchDetails(ctx context.Context, substring string) (core.PackageIter, error) {
	return b.searchDetails(ctx, substring)
}

var _ repo.Backend = (*InstalledBackend)(nil)
