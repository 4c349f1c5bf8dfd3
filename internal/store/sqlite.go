package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/peerfeedback/internal/db/migrations"
	"github.com/peerfeedback/internal/feedback"
)

// SQLiteStore keeps feedback in a local SQLite file. It is meant for
// development and single-host deployments.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens path, applies the embedded migrations and pings it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := runMigrations(db); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// One writer at a time; prevents SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return err
	}

	dbDriver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return err
	}

	return m.Up()
}

// InsertFeedback writes one record in a single statement.
func (s *SQLiteStore) InsertFeedback(ctx context.Context, rec feedback.Record) error {
	var name sql.NullString
	if rec.ReviewerName != nil {
		name = sql.NullString{String: *rec.ReviewerName, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, insertFeedbackSQL+` VALUES (?, ?, ?, ?, ?)`,
		rec.Reviewee,
		name,
		rec.GoodFeedback,
		rec.ImproveFeedback,
		string(rec.Language),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}
