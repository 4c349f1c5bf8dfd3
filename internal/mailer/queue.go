package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/peerfeedback/internal/feedback"
)

const feedbackSubject = "New peer feedback"

// ErrQueueStopped is returned by Enqueue once Start has drained the queue.
var ErrQueueStopped = errors.New("mailer: queue stopped, message not queued")

type queuedMessage struct {
	msg     Message
	retries int
}

// Queue sends messages in the background at a fixed rate, retrying failed
// sends with linear backoff.
type Queue struct {
	mailer   *Mailer
	ch       chan queuedMessage
	rate     time.Duration
	maxRetry int
	backoff  time.Duration
	retries  sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewQueue(m *Mailer, rate time.Duration, bufferSize, maxRetry int) *Queue {
	return &Queue{
		mailer:   m,
		ch:       make(chan queuedMessage, bufferSize),
		rate:     rate,
		maxRetry: maxRetry,
		backoff:  5 * time.Second,
	}
}

// Start processes queued messages at the configured rate until ctx is cancelled.
// On shutdown it drains any remaining messages before returning.
func (q *Queue) Start(ctx context.Context) {
	ticker := time.NewTicker(q.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.retries.Wait()
			q.mu.Lock()
			q.stopped = true
			q.mu.Unlock()
			q.drain()
			return
		case <-ticker.C:
			select {
			case item := <-q.ch:
				q.attempt(ctx, item)
			default:
				// no message ready; wait for next tick
			}
		}
	}
}

// Enqueue adds a message to the queue without blocking.
func (q *Queue) Enqueue(msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return ErrQueueStopped
	}

	select {
	case q.ch <- queuedMessage{msg: msg}:
		return nil
	default:
		return fmt.Errorf("mailer: queue full, message not queued")
	}
}

// attempt sends a message, scheduling a context-aware retry with backoff on failure.
func (q *Queue) attempt(ctx context.Context, item queuedMessage) {
	err := q.mailer.send(item.msg)
	if err == nil {
		return
	}

	if item.retries >= q.maxRetry {
		slog.Error("mailer: message dropped after max retries", "subject", item.msg.Subject, "err", err)
		return
	}

	item.retries++
	backoff := time.Duration(item.retries) * q.backoff
	slog.Warn("mailer: send failed, retrying with backoff", "subject", item.msg.Subject, "retry", item.retries, "backoff", backoff, "err", err)

	q.retries.Add(1)
	go func() {
		defer q.retries.Done()
		select {
		case <-time.After(backoff):
			select {
			case q.ch <- item:
			default:
				slog.Error("mailer: requeue failed, queue full, message dropped", "subject", item.msg.Subject)
			}
		case <-ctx.Done():
			slog.Warn("mailer: retry cancelled during shutdown", "subject", item.msg.Subject)
		}
	}()
}

// drain flushes remaining queued messages on shutdown, best-effort.
func (q *Queue) drain() {
	for {
		select {
		case item := <-q.ch:
			if err := q.mailer.send(item.msg); err != nil {
				slog.Error("mailer: drain send failed", "subject", item.msg.Subject, "err", err)
			}
		default:
			return
		}
	}
}

// NotifyFeedback renders rec, encrypts it when a PGP key is configured and
// enqueues it for the configured recipients.
func (q *Queue) NotifyFeedback(rec feedback.Record) error {
	cfg := q.mailer.cfg
	if len(cfg.To) == 0 {
		return fmt.Errorf("mailer: no recipients configured")
	}

	body, err := RenderFeedback(rec)
	if err != nil {
		return err
	}
	if cfg.PGPPublicKey != "" {
		body, err = encryptBody(cfg.PGPPublicKey, body)
		if err != nil {
			return fmt.Errorf("encrypt feedback: %w", err)
		}
	}

	return q.Enqueue(Message{
		To:      cfg.To,
		Subject: feedbackSubject,
		Body:    body,
	})
}

// Ping delegates to the underlying Mailer.
func (q *Queue) Ping() error {
	return q.mailer.Ping()
}
