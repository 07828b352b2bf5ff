package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func MustConnect(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		panic(err)
	}
	if err := pool.Ping(ctx); err != nil {
		panic(err)
	}
	return pool
}

// ApplyMigrations прогоняет *.sql из dir в лексикографическом порядке,
// отмечая применённые в schema_migrations. Никаких down-миграций.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, log zerolog.Logger) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return err
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, f := range files {
		applied, err := applyOne(ctx, pool, f)
		if err != nil {
			return err
		}
		if applied {
			log.Info().Str("migration", filepath.Base(f)).Msg("migration applied")
		}
	}
	return nil
}

func applyOne(ctx context.Context, pool *pgxpool.Pool, path string) (bool, error) {
	name := filepath.Base(path)

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename=$1)`, name).Scan(&exists); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	sqlBytes, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	sqlText := strings.TrimSpace(string(sqlBytes))
	if sqlText == "" {
		return false, errors.New("empty migration: " + name)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, sqlText); err != nil {
		_ = tx.Rollback(ctx)
		return false, fmt.Errorf("migration %s failed: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations(filename) VALUES($1)`, name); err != nil {
		_ = tx.Rollback(ctx)
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
