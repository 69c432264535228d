package sqlstore

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/mlow/low/core"
	"github.com/mlow/low/repo"
	"github.com/uptrace/bun"
)

// AvailableBackend is one repository's metadata view of spec.md §4.3: a
// primary database (packages/provides/requires/conflicts/obsoletes) plus
// a separate filelists database, mirroring upstream yum's own primary.xml/
// filelists.xml split.
type AvailableBackend struct {
	backendCore

	mirrors repo.MirrorList
	deltas  map[string]repo.DeltaInfo
}

// NewAvailableBackend wraps primary/filelists (already migrated) as one
// enabled-by-default repo.Backend under id.
func NewAvailableBackend(id string, primary, filelists *bun.DB) *AvailableBackend {
	b := &AvailableBackend{backendCore: backendCore{
		db:      primary,
		filesDB: filelists,
		repo:    repository.NewRepository[*packageRecord](primary, packageHandlers()),
	}}
	ref := repo.NewRepository(id, true, b)
	b.ref = ref
	return b
}

// WithMirrorList and WithDeltas attach the download layer's mirror list
// and delta index, surfaced through the Repository wrapper's
// GetMirrorList/GetDelta accessors once RegisteredRepository returns it.
func (b *AvailableBackend) WithMirrorList(mirrors repo.MirrorList) *AvailableBackend {
	b.mirrors = mirrors
	return b
}

func (b *AvailableBackend) WithDeltas(deltas map[string]repo.DeltaInfo) *AvailableBackend {
	b.deltas = deltas
	return b
}

// RegisteredRepository builds the *repo.Repository this backend should be
// registered under in a repo.RepositorySet, carrying the mirror list and
// delta index alongside the Backend.
func (b *AvailableBackend) RegisteredRepository(id string, enabled bool) *repo.Repository {
	r := repo.NewRepository(id, enabled, b)
	if b.mirrors != nil {
		r = r.WithMirrorList(b.mirrors)
	}
	if b.deltas != nil {
		r = r.WithDeltas(b.deltas)
	}
	return r
}

func (b *AvailableBackend) ListAll(ctx context.Context) (core.PackageIter, error) {
	return b.listAll(ctx)
}

func (b *AvailableBackend) ListByName(ctx context.Context, name string) (core.PackageIter, error) {
	return b.listByName(ctx, name)
}

func (b *AvailableBackend) SearchProvides(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "provides", dep, false)
}

func (b *AvailableBackend) SearchRequires(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "requires", dep, true)
}

func (b *AvailableBackend) SearchConflicts(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "conflicts", dep, true)
}

func (b *AvailableBackend) SearchObsoletes(ctx context.Context, dep core.PackageDependency) (core.PackageIter, error) {
	return b.searchDependency(ctx, "obsoletes", dep, true)
}

func (b *AvailableBackend) SearchFiles(ctx context.Context, path string) (core.PackageIter, error) {
	return b.searchFiles(ctx, path)
}

func (b *AvailableBackend) SearchDetails(ctx context.Context, substring string) (core.PackageIter, error) {
	return b.searchDetails(ctx, substring)
}

var _ repo.Backend = (*AvailableBackend)(nil)
