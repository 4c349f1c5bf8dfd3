package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/peerfeedback/internal/db/migrations"
)

// migrate applies the Postgres schema. SQLite stores migrate themselves on
// open.
func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if !strings.HasPrefix(dbURL, "postgres://") && !strings.HasPrefix(dbURL, "postgresql://") {
		slog.Error("DATABASE_URL must be a postgres:// URL")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		slog.Error("failed to connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		slog.Error("failed to create migrations table", "err", err)
		os.Exit(1)
	}

	var (
		src fs.FS = migrations.Postgres
		dir       = "postgres"
	)
	if d := os.Getenv("MIGRATIONS_DIR"); d != "" {
		src, dir = os.DirFS(d), "."
	}

	files, err := fs.Glob(src, path.Join(dir, "*.sql"))
	if err != nil {
		slog.Error("failed to read migrations", "err", err)
		os.Exit(1)
	}
	sort.Strings(files)

	applied := 0
	for _, f := range files {
		version := strings.TrimSuffix(path.Base(f), ".sql")

		var exists bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
			version,
		).Scan(&exists); err != nil {
			slog.Error("failed to check migration", "version", version, "err", err)
			os.Exit(1)
		}
		if exists {
			continue
		}

		sql, err := fs.ReadFile(src, f)
		if err != nil {
			slog.Error("failed to read migration", "file", f, "err", err)
			os.Exit(1)
		}

		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			slog.Error("migration failed", "version", version, "err", err)
			os.Exit(1)
		}

		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version,
		); err != nil {
			slog.Error("failed to record migration", "version", version, "err", err)
			os.Exit(1)
		}

		applied++
		fmt.Printf("applied: %s\n", version)
	}

	fmt.Printf("migrations complete (%d applied)\n", applied)
}
