package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peerfeedback/internal/feedback"
)

// PostgresStore inserts feedback into a hosted Postgres database. The
// schema is applied separately with cmd/migrate.
type PostgresStore struct {
	db *pgxpool.Pool
}

// OpenPostgres connects a pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(pool), nil
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// InsertFeedback writes one record in a single statement.
func (s *PostgresStore) InsertFeedback(ctx context.Context, rec feedback.Record) error {
	var name pgtype.Text
	if rec.ReviewerName != nil {
		name = pgtype.Text{String: *rec.ReviewerName, Valid: true}
	}
	_, err := s.db.Exec(ctx, insertFeedbackSQL+` VALUES ($1, $2, $3, $4, $5)`,
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
