// Package migrations embeds the packages/provides/requires/conflicts/
// obsoletes/files schema used by both store/sql backends, one dialect
// tree per supported database, mirroring the teacher's dialect-keyed
// embedded-filesystem registration (migrations_fs.go, migrations/registry.go)
// trimmed down to this module's single schema generation instead of the
// teacher's many independently-versioned service tables.
package migrations

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

//go:embed data/sqlite/*.sql data/postgres/*.sql
var schemaFS embed.FS

// FS returns the embedded schema tree for one dialect ("sqlite" or
// "postgres"), sub-rooted so callers see bare filenames.
func FS(dialect string) (fs.FS, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case DialectSQLite:
		return fs.Sub(schemaFS, "data/sqlite")
	case DialectPostgres:
		return fs.Sub(schemaFS, "data/postgres")
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

// Apply executes every embedded .sql file for dialect against db, in
// filename order, splitting each file on its top-level statement
// terminator. Statements are idempotent (CREATE TABLE/INDEX IF NOT
// EXISTS), so Apply is safe to call once per backend construction rather
// than needing a separate "already applied" ledger.
func Apply(ctx context.Context, db *bun.DB, dialect string) error {
	if db == nil {
		return fmt.Errorf("migrations: db is nil")
	}
	sub, err := FS(dialect)
	if err != nil {
		return err
	}
	entries, err := fs.ReadDir(sub, ".")
	if err != nil {
		return fmt.Errorf("migrations: read schema dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		contents, err := fs.ReadFile(sub, name)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(contents)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrations: apply %s: %w", name, err)
			}
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(script))
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(b.String())
			if stmt != "" {
				out = append(out, stmt)
			}
			b.Reset()
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
