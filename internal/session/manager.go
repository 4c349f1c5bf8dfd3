package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/peerfeedback/internal/feedback"
	"github.com/peerfeedback/internal/i18n"
)

// NewFormFunc builds a fresh form for a new session.
type NewFormFunc func(locale i18n.Locale) *feedback.Form

// Manager keeps one form per browser session in memory. Nothing survives a
// restart.
type Manager struct {
	mu      sync.Mutex
	forms   map[string]*feedback.Form
	ttl     time.Duration
	limit   int
	newForm NewFormFunc
	now     func() time.Time
}

// NewManager returns a manager that drops forms idle for ttl and holds at
// most limit forms. limit <= 0 means no cap.
func NewManager(ttl time.Duration, limit int, newForm NewFormFunc) *Manager {
	return &Manager{
		forms:   make(map[string]*feedback.Form),
		ttl:     ttl,
		limit:   limit,
		newForm: newForm,
		now:     time.Now,
	}
}

// Create starts a session and returns its id and form. At the cap, the
// least recently active form without a submit in flight is evicted first.
func (m *Manager) Create(locale i18n.Locale) (string, *feedback.Form) {
	id := uuid.NewString()
	f := m.newForm(locale)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limit > 0 && len(m.forms) >= m.limit {
		m.evictOldestLocked()
	}
	m.forms[id] = f
	return id, f
}

func (m *Manager) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, f := range m.forms {
		if f.Busy() {
			continue
		}
		if t := f.LastActivity(); oldestID == "" || t.Before(oldest) {
			oldestID, oldest = id, t
		}
	}
	if oldestID != "" {
		delete(m.forms, oldestID)
		slog.Debug("session: evicted idle form at capacity", "limit", m.limit)
	}
}

// Get returns the form of a live session.
func (m *Manager) Get(id string) (*feedback.Form, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[id]
	return f, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.forms)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed. Forms with a submission in flight are kept.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, f := range m.forms {
		if f.Busy() || f.LastActivity().After(cutoff) {
			continue
		}
		delete(m.forms, id)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("session: swept idle forms", "removed", n, "live", m.Len())
			}
		}
	}
}
