package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mlow/low/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// persistenceConfig satisfies go-persistence-bun's Config interface,
// mirroring the teacher's own minimal test-time implementation
// (sqlstore_integration_test.go's testPersistenceConfig) promoted here to
// production code since this module has no larger app-config type to
// delegate to.
type persistenceConfig struct {
	driver      string
	server      string
	debug       bool
	pingTimeout time.Duration
}

func (c persistenceConfig) GetDebug() bool             { return c.debug }
func (c persistenceConfig) GetDriver() string          { return c.driver }
func (c persistenceConfig) GetServer() string          { return c.server }
func (c persistenceConfig) GetPingTimeout() time.Duration {
	if c.pingTimeout > 0 {
		return c.pingTimeout
	}
	return 5 * time.Second
}

// Factory builds the installed and per-repository available backends on
// top of SQLite databases rooted under a cache directory, mirroring the
// teacher's RepositoryFactory (one *bun.DB per logical store, all built
// through go-persistence-bun).
type Factory struct {
	debug bool
}

// NewFactory constructs a Factory. debug enables bun query logging the
// way the teacher's persistenceConfig.GetDebug does.
func NewFactory(debug bool) *Factory {
	return &Factory{debug: debug}
}

// OpenSQLite opens (creating if needed) a SQLite database at path and
// applies the packages schema, returning the *bun.DB ready for
// NewInstalledBackend/NewAvailableBackend.
func (f *Factory) OpenSQLite(ctx context.Context, path string) (*bun.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	debug := false
	if f != nil {
		debug = f.debug
	}
	client, err := persistence.New(persistenceConfig{driver: "sqlite3", server: dsn, debug: debug}, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	db := client.DB()
	if err := migrations.Apply(ctx, db, migrations.DialectSQLite); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenMemorySQLite opens an in-process, non-shared SQLite database, used
// by tests and by a transient "no installed db yet" bootstrap.
func (f *Factory) OpenMemorySQLite(ctx context.Context) (*bun.DB, error) {
	return f.OpenSQLite(ctx, ":memory:")
}

// InstalledDBPath and AvailableDBPaths compute the on-disk location of the
// installed database and one repository's primary/filelists databases
// under cacheRoot, per spec.md §4.8's cache layout.
func InstalledDBPath(cacheRoot string) string {
	return cacheRoot + "/installed.db"
}

func AvailablePrimaryDBPath(cacheRoot, repoID string) string {
	return cacheRoot + "/" + repoID + "/repodata/primary.db"
}

func AvailableFilelistsDBPath(cacheRoot, repoID string) string {
	return cacheRoot + "/" + repoID + "/repodata/filelists.db"
}
