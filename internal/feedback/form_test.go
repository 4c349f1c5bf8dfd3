package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/peerfeedback/internal/i18n"
)

type fakeStore struct {
	mu      sync.Mutex
	records []Record
	err     error
	// started and release, when set, hold InsertFeedback until released.
	started chan struct{}
	release chan struct{}
}

func (s *fakeStore) InsertFeedback(ctx context.Context, rec Record) error {
	if s.started != nil {
		s.started <- struct{}{}
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.err
}

func (s *fakeStore) calls() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

func newTestForm(store Inserter, locale i18n.Locale) *Form {
	return NewForm(Config{
		Reviewee: DefaultReviewee,
		Limits:   DefaultLimits(),
		Locale:   locale,
		Store:    store,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func fill(t *testing.T, f *Form, strengths, improvements, name string) {
	t.Helper()
	for field, v := range map[Field]string{
		FieldStrengths:    strengths,
		FieldImprovements: improvements,
		FieldReviewerName: name,
	} {
		if err := f.SetField(field, v); err != nil {
			t.Fatalf("SetField(%s): %v", field, err)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestSubmitExampleScenario(t *testing.T) {
	store := &fakeStore{}
	f := newTestForm(store, i18n.EN)
	fill(t, f, "Great job on the release", "Plan earlier next time", "")

	st, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !st.IsSuccess() || st.Message() != i18n.For(i18n.EN).SuccessBody {
		t.Fatalf("unexpected status %+v", st)
	}

	want := []Record{{
		Reviewee:        DefaultReviewee.Name,
		ReviewerName:    nil,
		GoodFeedback:    "Great job on the release",
		ImproveFeedback: "Plan earlier next time",
		Language:        i18n.EN,
	}}
	if diff := cmp.Diff(want, store.calls()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitInvalidMakesNoCall(t *testing.T) {
	cases := []struct {
		name         string
		strengths    string
		improvements string
	}{
		{"empty", "", ""},
		{"strengths short", "short", "long enough text"},
		{"improvements short", "long enough text", "         x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			f := newTestForm(store, i18n.JA)
			fill(t, f, tc.strengths, tc.improvements, "")

			st, err := f.Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if !st.IsError() || st.Reason() != ReasonValidation {
				t.Fatalf("expected validation error, got %+v", st)
			}
			if st.Message() != i18n.For(i18n.JA).InvalidMessage {
				t.Errorf("unexpected message %q", st.Message())
			}
			if n := len(store.calls()); n != 0 {
				t.Errorf("expected no store calls, got %d", n)
			}
		})
	}
}

func TestSubmitWithoutStore(t *testing.T) {
	f := newTestForm(nil, i18n.EN)
	fill(t, f, "Great job on the release", "Plan earlier next time", "Aiko")

	st, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !st.IsError() || st.Reason() != ReasonConfiguration {
		t.Fatalf("expected configuration error, got %+v", st)
	}
	if st.Message() != i18n.For(i18n.EN).EnvMissing {
		t.Errorf("unexpected message %q", st.Message())
	}
	if v := f.View(); v.Fields.Strengths == "" {
		t.Error("fields should be kept after a configuration error")
	}
}

func TestSubmitSuccessResetsForm(t *testing.T) {
	store := &fakeStore{}
	f := newTestForm(store, i18n.EN)
	fill(t, f, "Great job on the release", "Plan earlier next time", "Aiko")
	f.SetAnonymous(true)

	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	v := f.View()
	if v.Fields != (Fields{}) {
		t.Errorf("expected empty fields, got %+v", v.Fields)
	}
	if v.Anonymous {
		t.Error("expected anonymity to be reset")
	}
	if !v.Status.IsSuccess() {
		t.Errorf("expected success, got %v", v.Status.State())
	}
	if recs := store.calls(); len(recs) != 1 || recs[0].ReviewerName != nil {
		t.Errorf("anonymous submission must not carry a name: %+v", recs)
	}
}

func TestSubmitFailureKeepsFields(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	f := newTestForm(store, i18n.JA)
	fill(t, f, "Great job on the release", "Plan earlier next time", "  Aiko  ")

	st, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !st.IsError() || st.Reason() != ReasonPersistence {
		t.Fatalf("expected persistence error, got %+v", st)
	}
	if st.Message() != i18n.For(i18n.JA).ErrorGeneric {
		t.Errorf("unexpected message %q", st.Message())
	}

	want := Fields{
		Strengths:    "Great job on the release",
		Improvements: "Plan earlier next time",
		ReviewerName: "  Aiko  ",
	}
	if diff := cmp.Diff(want, f.View().Fields); diff != "" {
		t.Errorf("fields changed (-want +got):\n%s", diff)
	}

	recs := store.calls()
	if len(recs) != 1 {
		t.Fatalf("expected exactly one call, got %d", len(recs))
	}
	if diff := cmp.Diff(strPtr("Aiko"), recs[0].ReviewerName); diff != "" {
		t.Errorf("reviewer name should be trimmed (-want +got):\n%s", diff)
	}
	if recs[0].Language != i18n.JA {
		t.Errorf("expected language ja, got %q", recs[0].Language)
	}
}

func TestSubmitTransitionsThroughSubmitting(t *testing.T) {
	store := &fakeStore{started: make(chan struct{}), release: make(chan struct{})}
	f := newTestForm(store, i18n.EN)
	fill(t, f, "Great job on the release", "Plan earlier next time", "")

	done := make(chan Status)
	go func() {
		st, _ := f.Submit(context.Background())
		done <- st
	}()

	<-store.started
	v := f.View()
	if !v.Status.IsSubmitting() {
		t.Fatalf("expected submitting while in flight, got %v", v.Status.State())
	}
	if v.CanSubmit {
		t.Error("submit must be disabled while in flight")
	}
	if !f.Busy() {
		t.Error("expected Busy while in flight")
	}

	st, err := f.Submit(context.Background())
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	if !st.IsSubmitting() {
		t.Errorf("rejected submit should report the pending status, got %v", st.State())
	}

	// Edits stay possible and do not abort the pending call.
	if err := f.SetField(FieldStrengths, "typed while sending"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if !f.View().Status.IsSubmitting() {
		t.Error("edits must not change a pending status")
	}

	close(store.release)
	if st := <-done; !st.IsSuccess() {
		t.Fatalf("expected success, got %v", st.State())
	}
	if n := len(store.calls()); n != 1 {
		t.Errorf("expected exactly one insert, got %d", n)
	}
	if f.View().Fields.Strengths != "" {
		t.Error("success clears fields")
	}
}

func TestSubmitIgnoresCallerCancellation(t *testing.T) {
	store := &fakeStore{}
	f := newTestForm(store, i18n.EN)
	fill(t, f, "Great job on the release", "Plan earlier next time", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := f.Submit(ctx)
	if err != nil || !st.IsSuccess() {
		t.Fatalf("expected success, got %v, %v", st.State(), err)
	}
}

func TestEditClearsTerminalStatus(t *testing.T) {
	f := newTestForm(nil, i18n.EN)

	st, _ := f.Submit(context.Background())
	if !st.IsError() {
		t.Fatalf("expected error, got %v", st.State())
	}

	if err := f.SetField(FieldImprovements, "x"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	v := f.View()
	if !v.Status.IsIdle() {
		t.Errorf("expected idle after edit, got %v", v.Status.State())
	}
	if v.Fields.Improvements != "x" {
		t.Errorf("edit not applied: %q", v.Fields.Improvements)
	}

	store := &fakeStore{}
	f = newTestForm(store, i18n.EN)
	fill(t, f, "Great job on the release", "Plan earlier next time", "")
	if st, _ := f.Submit(context.Background()); !st.IsSuccess() {
		t.Fatalf("expected success, got %v", st.State())
	}
	f.SetAnonymous(true)
	if !f.View().Status.IsIdle() {
		t.Error("toggling anonymity should clear the success banner")
	}
}

func TestAnonymityToggle(t *testing.T) {
	f := newTestForm(&fakeStore{}, i18n.EN)
	if err := f.SetField(FieldReviewerName, "Aiko"); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	f.SetAnonymous(true)
	v := f.View()
	if v.Fields.ReviewerName != "" {
		t.Errorf("expected reviewer name cleared, got %q", v.Fields.ReviewerName)
	}
	if !v.NameLocked {
		t.Error("expected name locked while anonymous")
	}
	if err := f.SetField(FieldReviewerName, "Aiko"); !errors.Is(err, ErrNameLocked) {
		t.Errorf("expected ErrNameLocked, got %v", err)
	}

	f.SetAnonymous(false)
	v = f.View()
	if v.Fields.ReviewerName != "" {
		t.Errorf("turning anonymity off must not restore the name, got %q", v.Fields.ReviewerName)
	}
	if err := f.SetField(FieldReviewerName, "Ken"); err != nil {
		t.Errorf("expected name editable again, got %v", err)
	}
}

func TestBlankNameSentAsAbsent(t *testing.T) {
	store := &fakeStore{}
	f := newTestForm(store, i18n.EN)
	fill(t, f, "Great job on the release", "Plan earlier next time", "   ")

	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if recs := store.calls(); len(recs) != 1 || recs[0].ReviewerName != nil {
		t.Errorf("blank name should be sent as absent: %+v", recs)
	}
}

func TestSetFieldUnknown(t *testing.T) {
	f := newTestForm(nil, i18n.EN)
	if err := f.SetField(Field("email"), "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	if _, err := ParseField("email"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField from ParseField, got %v", err)
	}
	if f, err := ParseField("reviewerName"); err != nil || f != FieldReviewerName {
		t.Errorf("ParseField(reviewerName) = %q, %v", f, err)
	}
}

func TestLocaleSwitchChangesMessages(t *testing.T) {
	f := newTestForm(nil, i18n.EN)
	f.SetLocale(i18n.JA)
	st, _ := f.Submit(context.Background())
	if st.Message() != i18n.For(i18n.JA).InvalidMessage {
		t.Errorf("expected japanese message, got %q", st.Message())
	}
	if f.Locale() != i18n.JA {
		t.Errorf("expected ja, got %q", f.Locale())
	}
}

func TestNewFormDefaultsUnknownLocale(t *testing.T) {
	f := newTestForm(nil, i18n.Locale("fr"))
	if f.Locale() != i18n.Default {
		t.Errorf("expected default locale, got %q", f.Locale())
	}
}

func TestViewCountsAndCanSubmit(t *testing.T) {
	f := newTestForm(&fakeStore{}, i18n.EN)
	fill(t, f, "  良い点は丁寧な説明です", "short", "")

	v := f.View()
	if v.Counts.Strengths != 13 || v.Counts.Improvements != 5 {
		t.Errorf("unexpected counts %+v", v.Counts)
	}
	if v.Valid || v.CanSubmit {
		t.Error("form should not be submittable")
	}

	if err := f.SetField(FieldImprovements, "plan the kickoff earlier"); err != nil {
		t.Fatal(err)
	}
	if v := f.View(); !v.Valid || !v.CanSubmit {
		t.Error("form should be submittable")
	}
}

func TestStatusJSON(t *testing.T) {
	raw, err := json.Marshal(Failed(ReasonPersistence, "boom"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"state":"error","reason":"persistence","message":"boom"}`
	if string(raw) != want {
		t.Errorf("got %s, want %s", raw, want)
	}

	raw, _ = json.Marshal(Idle())
	if string(raw) != `{"state":"idle"}` {
		t.Errorf("unexpected idle JSON %s", raw)
	}
}
