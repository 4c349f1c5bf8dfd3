package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/peerfeedback/internal/feedback"
)

// FeedbackStore is the persistence client behind the form.
type FeedbackStore interface {
	feedback.Inserter
	Ping(ctx context.Context) error
	Close()
}

const insertFeedbackSQL = `INSERT INTO feedback (reviewee, reviewer_name, good_feedback, improve_feedback, language)`

// Open returns the store selected by databaseURL. An empty URL yields a nil
// store and no error: the form then reports that it is not configured.
//
// Supported forms are postgres:// and postgresql:// URLs, sqlite:<path>, and
// bare paths ending in .db or .sqlite.
func Open(ctx context.Context, databaseURL string) (FeedbackStore, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	switch {
	case databaseURL == "":
		return nil, nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		s, err := OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasPrefix(databaseURL, "sqlite:"):
		s, err := OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite:"))
		if err != nil {
			return nil, err
		}
		return s, nil
	case strings.HasSuffix(databaseURL, ".db"), strings.HasSuffix(databaseURL, ".sqlite"):
		s, err := OpenSQLite(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("store: unsupported DATABASE_URL scheme")
}
