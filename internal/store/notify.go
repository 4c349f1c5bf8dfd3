package store

import (
	"context"
	"log/slog"

	"github.com/peerfeedback/internal/feedback"
)

// Notifier is told about every stored record.
type Notifier interface {
	NotifyFeedback(rec feedback.Record) error
}

type notifyingInserter struct {
	next     feedback.Inserter
	notifier Notifier
	logger   *slog.Logger
}

// Notifying wraps next so that each successful insert is followed by a
// notification. A failed notification is logged; the submission still
// counts as stored.
func Notifying(next feedback.Inserter, notifier Notifier, logger *slog.Logger) feedback.Inserter {
	if logger == nil {
		logger = slog.Default()
	}
	return &notifyingInserter{next: next, notifier: notifier, logger: logger}
}

func (n *notifyingInserter) InsertFeedback(ctx context.Context, rec feedback.Record) error {
	if err := n.next.InsertFeedback(ctx, rec); err != nil {
		return err
	}
	if err := n.notifier.NotifyFeedback(rec); err != nil {
		n.logger.Warn("store: feedback notification failed", "err", err)
	}
	return nil
}
