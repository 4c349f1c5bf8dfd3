package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/peerfeedback/internal/feedback"
	"github.com/peerfeedback/internal/i18n"
)

type contextKey string

const (
	contextKeyLocale contextKey = "locale"
	contextKeyForm   contextKey = "form"
)

// LocaleFromContext returns the locale resolved for the request, or the
// package default when none was.
func LocaleFromContext(ctx context.Context) i18n.Locale {
	if v, ok := ctx.Value(contextKeyLocale).(i18n.Locale); ok {
		return v
	}
	return i18n.Default
}

// FormFromContext returns the session form attached by FormSession.
func FormFromContext(ctx context.Context) *feedback.Form {
	v, _ := ctx.Value(contextKeyForm).(*feedback.Form)
	return v
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
