// Package sqlstore implements the installed and available repository
// backends of spec.md §4.3 on top of uptrace/bun, mirroring the teacher's
// store/sql package (one *record model per table, go-repository-bun
// Repository[T] wrapping each, a RepositoryFactory assembling them from a
// shared *bun.DB).
package sqlstore

import "github.com/uptrace/bun"

// packageRecord is the packages table row: the full Package entity minus
// its dependency/file sequences, which live in their own tables and are
// loaded lazily through core.Package's loader fields.
type packageRecord struct {
	bun.BaseModel `bun:"table:packages,alias:pkg"`

	ID            string `bun:"id,pk"`
	Name          string `bun:"name,notnull"`
	Epoch         int    `bun:"epoch,notnull"`
	Version       string `bun:"version,notnull"`
	Release       string `bun:"release,notnull"`
	Arch          string `bun:"arch,notnull"`
	Summary       string `bun:"summary,notnull"`
	Description   string `bun:"description,notnull"`
	URL           string `bun:"url,notnull"`
	License       string `bun:"license,notnull"`
	InstalledSize int64  `bun:"installed_size,notnull"`
	PackageSize   int64  `bun:"package_size,notnull"`
	LocationHref  string `bun:"location_href,notnull"`
	Digest        string `bun:"digest,notnull"`
	DigestKind    string `bun:"digest_kind,notnull"`
}

// depRecord backs provides/requires/conflicts/obsoletes: same three
// columns beyond the owning package id, so one Go type serves all four
// tables (the table name comes from whichever bun.Ident the query uses).
type depRecord struct {
	bun.BaseModel `bun:"table:provides,alias:d"`

	PackageID string `bun:"package_id,notnull"`
	Name      string `bun:"name,notnull"`
	Sense     string `bun:"sense,notnull"`
	EVR       string `bun:"evr,notnull"`
}

type fileRecord struct {
	bun.BaseModel `bun:"table:files,alias:f"`

	PackageID string `bun:"package_id,notnull"`
	Path      string `bun:"path,notnull"`
}
