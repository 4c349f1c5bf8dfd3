package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/peerfeedback/internal/feedback"
	"github.com/peerfeedback/internal/i18n"
	"github.com/peerfeedback/internal/middleware"
)

// FormHandler serves the feedback page and its JSON API. The form itself is
// taken from the request context, one per browser session.
type FormHandler struct {
	BaseHandler
	reviewee      feedback.Profile
	limits        feedback.Limits
	templates     *template.Template
	secureCookies bool
}

func NewFormHandler(logger *slog.Logger, reviewee feedback.Profile, limits feedback.Limits, tmpl *template.Template, secureCookies bool) *FormHandler {
	return &FormHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		reviewee:      reviewee,
		limits:        limits,
		templates:     tmpl,
		secureCookies: secureCookies,
	}
}

// PageData is what form.html and closed.html render.
type PageData struct {
	T       i18n.Bundle
	Locale  i18n.Locale
	Options []i18n.Option
	Profile feedback.Profile
	Limits  feedback.Limits
	View    feedback.View

	StrengthsCounter    string
	ImprovementsCounter string
}

func (h *FormHandler) pageData(locale i18n.Locale, view feedback.View) PageData {
	t := i18n.For(locale)
	return PageData{
		T:                   t,
		Locale:              locale,
		Options:             i18n.Options(locale),
		Profile:             h.reviewee,
		Limits:              h.limits,
		View:                view,
		StrengthsCounter:    h.counter(t, view.Counts.Strengths),
		ImprovementsCounter: h.counter(t, view.Counts.Improvements),
	}
}

func (h *FormHandler) counter(t i18n.Bundle, n int) string {
	if h.limits.Max <= 0 {
		return fmt.Sprint(n)
	}
	return fmt.Sprintf(t.CounterFormat, n, h.limits.Max)
}

// ClosedData renders the closed page in the request's locale.
func (h *FormHandler) ClosedData(r *http.Request) any {
	return h.pageData(middleware.LocaleFromContext(r.Context()), feedback.View{})
}

func (h *FormHandler) render(w http.ResponseWriter, status int, form *feedback.Form) {
	view := form.View()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, "form.html", h.pageData(view.Locale, view)); err != nil {
		h.Logger.Error("form: template error", "err", err)
	}
}

// Page renders the form for the session.
func (h *FormHandler) Page(w http.ResponseWriter, r *http.Request) {
	form := middleware.FormFromContext(r.Context())
	if form == nil {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	h.render(w, http.StatusOK, form)
}

// SubmitPage is the form post used when scripts are off: it applies the
// posted values, submits, and renders the result.
func (h *FormHandler) SubmitPage(w http.ResponseWriter, r *http.Request) {
	form := middleware.FormFromContext(r.Context())
	if form == nil {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	anonymous := r.PostForm.Get("anonymous") != ""
	form.SetAnonymous(anonymous)
	_ = form.SetField(feedback.FieldStrengths, r.PostForm.Get("strengths"))
	_ = form.SetField(feedback.FieldImprovements, r.PostForm.Get("improvements"))
	if !anonymous {
		_ = form.SetField(feedback.FieldReviewerName, r.PostForm.Get("reviewerName"))
	}

	st, err := form.Submit(r.Context())
	code := submitStatusCode(st, err)
	if code == http.StatusCreated {
		code = http.StatusOK
	}
	h.render(w, code, form)
}

// NotFound renders the localized 404 page, or a JSON error under /api/.
func (h *FormHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		h.errorResponse(w, r, http.StatusNotFound, "not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	data := h.pageData(middleware.LocaleFromContext(r.Context()), feedback.View{})
	if err := h.templates.ExecuteTemplate(w, "not_found.html", data); err != nil {
		h.Logger.Error("form: template error", "err", err)
	}
}

// View returns the current form snapshot.
func (h *FormHandler) View(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}
	h.writeView(w, r, http.StatusOK, form.View())
}

// SetField updates one text field.
func (h *FormHandler) SetField(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}

	field, err := feedback.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		h.errorResponse(w, r, http.StatusNotFound, err.Error())
		return
	}

	var input struct {
		Value string `json:"value"`
	}
	if err := h.readJSON(w, r, &input); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := form.SetField(field, input.Value); err != nil {
		switch {
		case errors.Is(err, feedback.ErrNameLocked):
			h.errorResponse(w, r, http.StatusConflict, err.Error())
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	h.writeView(w, r, http.StatusOK, form.View())
}

// SetAnonymous toggles anonymous submission.
func (h *FormHandler) SetAnonymous(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}

	var input struct {
		Anonymous *bool `json:"anonymous"`
	}
	if err := h.readJSON(w, r, &input); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if input.Anonymous == nil {
		h.errorResponse(w, r, http.StatusUnprocessableEntity, "anonymous must be provided")
		return
	}

	form.SetAnonymous(*input.Anonymous)
	h.writeView(w, r, http.StatusOK, form.View())
}

// SetLocale switches the display language and remembers it in a cookie.
func (h *FormHandler) SetLocale(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}

	var input struct {
		Locale string `json:"locale"`
	}
	if err := h.readJSON(w, r, &input); err != nil {
		h.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	locale, ok := i18n.Parse(input.Locale)
	if !ok {
		h.errorResponse(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("unsupported locale %q", input.Locale))
		return
	}

	form.SetLocale(locale)
	middleware.SetLanguageCookie(w, locale, h.secureCookies)
	h.writeView(w, r, http.StatusOK, form.View())
}

// Submit runs one submission and reports the resulting status.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form, ok := h.form(w, r)
	if !ok {
		return
	}

	st, err := form.Submit(r.Context())
	code := submitStatusCode(st, err)
	if errors.Is(err, feedback.ErrSubmitInFlight) {
		if err := h.writeJSON(w, code, envelope{"error": err.Error(), "status": st, "form": form.View()}, nil); err != nil {
			h.logError(r, err)
		}
		return
	}
	h.writeView(w, r, code, form.View())
}

// submitStatusCode maps a submission outcome onto an HTTP status.
func submitStatusCode(st feedback.Status, err error) int {
	if errors.Is(err, feedback.ErrSubmitInFlight) {
		return http.StatusConflict
	}
	if st.IsSuccess() {
		return http.StatusCreated
	}
	switch st.Reason() {
	case feedback.ReasonValidation:
		return http.StatusUnprocessableEntity
	case feedback.ReasonConfiguration:
		return http.StatusServiceUnavailable
	case feedback.ReasonPersistence:
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func (h *FormHandler) form(w http.ResponseWriter, r *http.Request) (*feedback.Form, bool) {
	form := middleware.FormFromContext(r.Context())
	if form == nil {
		h.serverErrorResponse(w, r, errors.New("form: no session form in context"))
		return nil, false
	}
	return form, true
}

func (h *FormHandler) writeView(w http.ResponseWriter, r *http.Request, status int, view feedback.View) {
	if err := h.writeJSON(w, status, envelope{"form": view}, nil); err != nil {
		h.logError(r, err)
	}
}
