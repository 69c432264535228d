package sqlstore

import (
	"context"
	"encoding/hex"

	"github.com/mlow/low/core"
	"github.com/uptrace/bun"
)

func idToString(id core.PackageID) string {
	return hex.EncodeToString(id[:])
}

func stringToID(s string) core.PackageID {
	var id core.PackageID
	decoded, err := hex.DecodeString(s)
	if err != nil || len(decoded) != len(id) {
		return id
	}
	copy(id[:], decoded)
	return id
}

// toDomain converts a packageRecord into a *core.Package, wiring its four
// dependency loaders against db and its file loader against filesDB (the
// same handle as db for the installed backend, the separate filelists
// database for the available backend). ref is the repo.Repository this
// record was loaded from, attached so candidate selection can read
// Package.Repository.ID() (spec.md §4.7.4's tiebreak).
func (r *packageRecord) toDomain(db, filesDB *bun.DB, ref core.RepositoryRef) *core.Package {
	if r == nil {
		return nil
	}
	pkg := core.NewPackage(r.Name, r.Epoch, r.Version, r.Release, core.Arch(r.Arch))
	pkg.ID = stringToID(r.ID)
	pkg.Summary = r.Summary
	pkg.Description = r.Description
	pkg.URL = r.URL
	pkg.License = r.License
	pkg.InstalledSize = r.InstalledSize
	pkg.PackageSize = r.PackageSize
	pkg.LocationHref = r.LocationHref
	pkg.Digest = r.Digest
	pkg.DigestKind = core.DigestKind(r.DigestKind)
	pkg.Repository = ref

	id := r.ID
	pkg.WithProvidesLoader(depLoader(db, "provides", id))
	pkg.WithRequiresLoader(depLoader(db, "requires", id))
	pkg.WithConflictsLoader(depLoader(db, "conflicts", id))
	pkg.WithObsoletesLoader(depLoader(db, "obsoletes", id))
	pkg.WithFilesLoader(fileLoader(filesDB, id))
	return pkg
}

func depLoader(db *bun.DB, table string, packageID string) core.DependencyLoader {
	return func(ctx context.Context) ([]core.PackageDependency, error) {
		var rows []depRecord
		err := db.NewSelect().
			Model(&rows).
			ModelTableExpr(table+" AS d").
			Where("package_id = ?", packageID).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]core.PackageDependency, 0, len(rows))
		for _, row := range rows {
			out = append(out, core.PackageDependency{
				Name:  row.Name,
				Sense: core.DependencySense(row.Sense),
				EVR:   row.EVR,
			})
		}
		return out, nil
	}
}

func fileLoader(db *bun.DB, packageID string) core.FileLoader {
	return func(ctx context.Context) ([]string, error) {
		var rows []fileRecord
		err := db.NewSelect().Model(&rows).Where("package_id = ?", packageID).Scan(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Path)
		}
		return out, nil
	}
}
