package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	"github.com/mlow/low/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// OpenPostgres opens a Postgres-backed available-repository metadata
// database, for deployments that centrally host repository metadata
// rather than letting every client fetch+cache its own primary/filelists
// SQLite pair — the shared-cache deployment shape real yum mirrors
// sometimes run behind a database-backed metadata proxy. It applies the
// same packages/provides/requires/conflicts/obsoletes/files schema as the
// SQLite path, against the Postgres dialect's migration tree.
func (f *Factory) OpenPostgres(ctx context.Context, dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}

	debug := false
	if f != nil {
		debug = f.debug
	}
	client, err := persistence.New(persistenceConfig{driver: "postgres", server: dsn, debug: debug}, sqlDB, pgdialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	db := client.DB()
	if err := migrations.Apply(ctx, db, migrations.DialectPostgres); err != nil {
		return nil, err
	}
	return db, nil
}

// NewPostgresAvailableBackend builds an AvailableBackend for one
// repository whose primary and filelists tables both live in db, the
// Postgres analogue of NewAvailableBackend's two-SQLite-file split
// (Postgres has no per-repository file boundary, so callers provision one
// database per repository the way they would one SQLite pair per
// repository).
func NewPostgresAvailableBackend(id string, db *bun.DB) *AvailableBackend {
	return NewAvailableBackend(id, db, db)
}
