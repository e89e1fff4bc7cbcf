package ledger

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/harun/sesh/pkg/sesherr"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DefaultMigrations returns the migration set compiled into the binary.
func DefaultMigrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(fmt.Sprintf("ledger: embedded migrations: %v", err))
	}
	return sub
}

// Migrate applies every *.sql file in fsys that has not been applied yet,
// in lexical order. Each file runs in its own transaction together with
// its bookkeeping row, so a failed file leaves no trace and earlier files
// stay applied. Running Migrate again is a no-op.
func (l *Ledger) Migrate(ctx context.Context, fsys fs.FS) error {
	const op = "ledger.migrate"

	if _, err := l.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return sesherr.New(sesherr.ErrMigration, op, err)
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return sesherr.New(sesherr.ErrMigration, op, err)
	}
	sort.Strings(names)

	applied, err := l.appliedVersions(ctx)
	if err != nil {
		return sesherr.New(sesherr.ErrMigration, op, err)
	}

	pending := 0
	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")
		if applied[version] {
			continue
		}

		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return sesherr.New(sesherr.ErrMigration, op, fmt.Errorf("%s: %w", name, err))
		}

		if err := l.applyMigration(ctx, version, string(script)); err != nil {
			l.logger.Error().Err(err).Str("version", version).Msg("Migration failed")
			return sesherr.New(sesherr.ErrMigration, op, fmt.Errorf("%s: %w", name, err))
		}

		l.logger.Info().Str("version", version).Msg("Migration applied")
		pending++
	}

	l.logger.Debug().Int("applied", pending).Int("total", len(names)).Msg("Ledger schema up to date")
	return nil
}

func (l *Ledger) applyMigration(ctx context.Context, version, script string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		version, formatTime(time.Now())); err != nil {
		return err
	}
	return tx.Commit()
}

func (l *Ledger) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// AppliedMigrations lists applied versions in order.
func (l *Ledger) AppliedMigrations(ctx context.Context) ([]string, error) {
	applied, err := l.appliedVersions(ctx)
	if err != nil {
		return nil, storageErr("ledger.applied_migrations", err)
	}
	versions := make([]string, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions, nil
}
