package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/peerfeedback/internal/i18n"
)

var (
	// ErrSubmitInFlight rejects a submit while another one is pending.
	ErrSubmitInFlight = errors.New("feedback: submission already in flight")
	// ErrNameLocked rejects reviewer name edits while the form is anonymous.
	ErrNameLocked = errors.New("feedback: reviewer name is disabled while anonymous")
	// ErrUnknownField is returned for field names outside Fields.
	ErrUnknownField = errors.New("feedback: unknown field")
)

// Field names one editable text field of the form.
type Field string

const (
	FieldStrengths    Field = "strengths"
	FieldImprovements Field = "improvements"
	FieldReviewerName Field = "reviewerName"
)

// ParseField maps a wire name to a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldStrengths, FieldImprovements, FieldReviewerName:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Fields holds the text the user has typed so far.
type Fields struct {
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
	ReviewerName string `json:"reviewerName"`
}

// Counts are the raw character counts shown next to each answer.
type Counts struct {
	Strengths    int `json:"strengths"`
	Improvements int `json:"improvements"`
}

// View is a consistent snapshot of a form for rendering.
type View struct {
	Locale     i18n.Locale `json:"locale"`
	Fields     Fields      `json:"fields"`
	Anonymous  bool        `json:"anonymous"`
	Status     Status      `json:"status"`
	Counts     Counts      `json:"counts"`
	Valid      bool        `json:"valid"`
	CanSubmit  bool        `json:"canSubmit"`
	NameLocked bool        `json:"nameLocked"`
}

// Config wires a Form to its collaborators.
type Config struct {
	Reviewee Profile
	Limits   Limits
	Locale   i18n.Locale
	// Store may be nil, in which case every valid submit fails with a
	// configuration error.
	Store  Inserter
	Logger *slog.Logger
}

// Form is the submission state machine of one browser session. It is safe
// for concurrent use; the lock is never held across the store call.
type Form struct {
	mu        sync.Mutex
	reviewee  Profile
	limits    Limits
	store     Inserter
	logger    *slog.Logger
	locale    i18n.Locale
	fields    Fields
	anonymous bool
	status    Status
	touched   time.Time
}

// NewForm returns an empty, idle form.
func NewForm(cfg Config) *Form {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	locale := cfg.Locale
	if _, ok := i18n.Parse(string(locale)); !ok {
		locale = i18n.Default
	}
	return &Form{
		reviewee: cfg.Reviewee,
		limits:   cfg.Limits,
		store:    cfg.Store,
		logger:   logger,
		locale:   locale,
		status:   Idle(),
		touched:  time.Now(),
	}
}

// View returns a snapshot of the form.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *Form) viewLocked() View {
	valid := f.limits.Valid(f.fields.Strengths, f.fields.Improvements)
	return View{
		Locale:    f.locale,
		Fields:    f.fields,
		Anonymous: f.anonymous,
		Status:    f.status,
		Counts: Counts{
			Strengths:    utf8.RuneCountInString(f.fields.Strengths),
			Improvements: utf8.RuneCountInString(f.fields.Improvements),
		},
		Valid:      valid,
		CanSubmit:  valid && !f.status.IsSubmitting(),
		NameLocked: f.anonymous,
	}
}

// Locale returns the active locale.
func (f *Form) Locale() i18n.Locale {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locale
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status.IsSubmitting()
}

// LastActivity returns when the form was last changed.
func (f *Form) LastActivity() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

// resetStatusLocked clears a success or error banner. A pending submission
// is left alone.
func (f *Form) resetStatusLocked() {
	if f.status.Terminal() {
		f.status = Idle()
	}
	f.touched = time.Now()
}

// SetField updates one field. A success or error banner is cleared before
// the value is applied.
func (f *Form) SetField(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch field {
	case FieldStrengths:
		f.resetStatusLocked()
		f.fields.Strengths = value
	case FieldImprovements:
		f.resetStatusLocked()
		f.fields.Improvements = value
	case FieldReviewerName:
		if f.anonymous {
			return ErrNameLocked
		}
		f.resetStatusLocked()
		f.fields.ReviewerName = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// SetAnonymous toggles anonymity. Turning it on clears the reviewer name;
// turning it off does not bring the old value back.
func (f *Form) SetAnonymous(anonymous bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resetStatusLocked()
	f.anonymous = anonymous
	if anonymous {
		f.fields.ReviewerName = ""
	}
}

// SetLocale switches the display language.
func (f *Form) SetLocale(l i18n.Locale) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locale = l
	f.touched = time.Now()
}

// Submit validates the form and, when it is valid and a store is present,
// inserts exactly one record. The returned status is the form's new status.
// A submit while another is in flight returns ErrSubmitInFlight and changes
// nothing. The store call is not cancelled when ctx is.
func (f *Form) Submit(ctx context.Context) (Status, error) {
	f.mu.Lock()
	if f.status.IsSubmitting() {
		st := f.status
		f.mu.Unlock()
		return st, ErrSubmitInFlight
	}
	f.touched = time.Now()
	msgs := i18n.For(f.locale)

	if !f.limits.Valid(f.fields.Strengths, f.fields.Improvements) {
		f.status = Failed(ReasonValidation, msgs.InvalidMessage)
		st := f.status
		f.mu.Unlock()
		return st, nil
	}
	if f.store == nil {
		f.status = Failed(ReasonConfiguration, msgs.EnvMissing)
		st := f.status
		f.mu.Unlock()
		f.logger.Warn("feedback: store not configured, submission rejected")
		return st, nil
	}

	rec := f.recordLocked()
	f.status = Submitting()
	store := f.store
	f.mu.Unlock()

	err := store.InsertFeedback(context.WithoutCancel(ctx), rec)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = time.Now()
	if err != nil {
		f.logger.Error("feedback: insert failed", "err", err, "lang", rec.Language)
		f.status = Failed(ReasonPersistence, msgs.ErrorGeneric)
		return f.status, nil
	}

	f.logger.Info("feedback: submission stored",
		"lang", rec.Language,
		"anonymous", rec.Anonymous(),
		"good_len", utf8.RuneCountInString(rec.GoodFeedback),
		"improve_len", utf8.RuneCountInString(rec.ImproveFeedback),
	)
	f.status = Succeeded(msgs.SuccessBody)
	f.fields = Fields{}
	f.anonymous = false
	return f.status, nil
}

func (f *Form) recordLocked() Record {
	rec := Record{
		Reviewee:        f.reviewee.Name,
		GoodFeedback:    strings.TrimSpace(f.fields.Strengths),
		ImproveFeedback: strings.TrimSpace(f.fields.Improvements),
		Language:        f.locale,
	}
	if !f.anonymous {
		if name := strings.TrimSpace(f.fields.ReviewerName); name != "" {
			rec.ReviewerName = &name
		}
	}
	return rec
}
