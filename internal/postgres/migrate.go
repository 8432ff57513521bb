package postgres

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate menjalankan file migrations/*.sql yang belum tercatat, urut nama file.
// Tiap file jalan dalam transaksi sendiri bersama pencatatan versinya.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return storageErr(err, "create schema_migrations")
	}

	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return errors.Wrap(err, "list migrations")
	}
	sort.Strings(files)

	for _, file := range files {
		var applied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, file).Scan(&applied); err != nil {
			return storageErr(err, "check migration")
		}
		if applied {
			log.Debug("migration already applied", "file", file)
			continue
		}

		content, err := migrationFS.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "read migration %s", file)
		}

		log.Info("applying migration", "file", file)
		err = pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, file)
			return err
		})
		if err != nil {
			return storageErr(err, "apply migration "+file)
		}
	}
	return nil
}
