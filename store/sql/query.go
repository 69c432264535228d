package sqlstore

import (
	"context"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/mlow/low/core"
	"github.com/uptrace/bun"
)

// backendCore is the shared query implementation installedBackend and
// availableBackend both embed: a *bun.DB, the packageRecord repository,
// a core.RepositoryRef back-reference for Package.Repository, and the
// "gpg-pubkey packages are filtered" rule from spec.md §4.3, applied
// uniformly to every listing path.
type backendCore struct {
	db   *bun.DB
	repo repository.Repository[*packageRecord]
	ref  core.RepositoryRef

	// filesDB is the filelists metadata database, per spec.md §4.3's
	// "primary and filelists metadata databases" split. Nil means files
	// live alongside everything else in db (the installed backend's case:
	// one SQLite file, no primary/filelists split).
	filesDB *bun.DB
}

func (b *backendCore) filesDatabase() *bun.DB {
	if b.filesDB != nil {
		return b.filesDB
	}
	return b.db
}

const gpgPubkeyName = "gpg-pubkey"

// nevraKey is the (name, epoch, version, release, arch) tuple spec.md
// §4.3 asks listings to deduplicate on, distinct from the row's package
// id: metadata can carry more than one row for the same NEVRA (a repo
// that concatenates primary.xml from more than one upstream source, for
// instance), and two such rows must surface as one package.
type nevraKey struct {
	name    string
	epoch   int
	version string
	release string
	arch    string
}

func (b *backendCore) toPackages(records []*packageRecord) []*core.Package {
	out := make([]*core.Package, 0, len(records))
	seen := make(map[nevraKey]struct{}, len(records))
	for _, r := range records {
		if r.Name == gpgPubkeyName {
			continue
		}
		key := nevraKey{name: r.Name, epoch: r.Epoch, version: r.Version, release: r.Release, arch: r.Arch}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r.toDomain(b.db, b.filesDatabase(), b.ref))
	}
	return out
}

func (b *backendCore) listAll(ctx context.Context) (core.PackageIter, error) {
	records, _, err := b.repo.List(ctx, repository.OrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	return newSliceIter(b.toPackages(records)), nil
}

func (b *backendCore) listByName(ctx context.Context, name string) (core.PackageIter, error) {
	records, _, err := b.repo.List(ctx,
		repository.SelectBy("name", "=", strings.TrimSpace(name)),
		repository.OrderBy("version ASC"),
	)
	if err != nil {
		return nil, err
	}
	return newSliceIter(b.toPackages(records)), nil
}

func (b *backendCore) searchDetails(ctx context.Context, substring string) (core.PackageIter, error) {
	// instr() is a plain byte-offset scan, case-sensitive for ASCII, unlike
	// LIKE which SQLite folds case on for ASCII operands; spec.md §4.3
	// requires the case-sensitive match.
	needle := strings.TrimSpace(substring)
	records, _, err := b.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					WhereOr("instr(?TableAlias.name, ?) > 0", needle).
					WhereOr("instr(?TableAlias.summary, ?) > 0", needle).
					WhereOr("instr(?TableAlias.description, ?) > 0", needle).
					WhereOr("instr(?TableAlias.url, ?) > 0", needle)
			})
		}),
	)
	if err != nil {
		return nil, err
	}
	return newSliceIter(b.toPackages(records)), nil
}

func (b *backendCore) searchFiles(ctx context.Context, path string) (core.PackageIter, error) {
	var rows []fileRecord
	if err := b.filesDatabase().NewSelect().Model(&rows).Where("path = ?", strings.TrimSpace(path)).Scan(ctx); err != nil {
		return nil, err
	}
	return newSliceIter(b.loadByPackageIDs(ctx, distinctPackageIDs(rows))), nil
}

// searchDependency implements search_provides/search_requires/
// search_conflicts/search_obsoletes. reverse=false compares
// core.Satisfies(dep, row) (provides: does this provide satisfy dep);
// reverse=true compares core.Satisfies(row, dep) (requires/conflicts/
// obsoletes: does dep satisfy this row), per spec.md §4.3's four distinct
// directions.
func (b *backendCore) searchDependency(ctx context.Context, table string, dep core.PackageDependency, reverse bool) (core.PackageIter, error) {
	var rows []depRecord
	err := b.db.NewSelect().
		Model(&rows).
		ModelTableExpr(table+" AS d").
		Where("name = ?", dep.Name).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	matched := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		candidate := core.PackageDependency{Name: row.Name, Sense: core.DependencySense(row.Sense), EVR: row.EVR}
		var ok bool
		if reverse {
			ok = core.Satisfies(candidate, dep)
		} else {
			ok = core.Satisfies(dep, candidate)
		}
		if ok {
			matched[row.PackageID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}
	return newSliceIter(b.loadByPackageIDs(ctx, ids)), nil
}

func (b *backendCore) loadByPackageIDs(ctx context.Context, ids []string) []*core.Package {
	if len(ids) == 0 {
		return nil
	}
	var records []*packageRecord
	if err := b.db.NewSelect().Model(&records).Where("id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil
	}
	return b.toPackages(records)
}

func distinctPackageIDs(rows []fileRecord) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, row := range rows {
		if _, ok := seen[row.PackageID]; ok {
			continue
		}
		seen[row.PackageID] = struct{}{}
		out = append(out, row.PackageID)
	}
	return out
}
