package middleware

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"
)

// FeedbackWindow blocks form routes with a 403 once closed reports true.
// Pages get the closed.html template rendered with data(r).
func FeedbackWindow(closed func(now time.Time) bool, tmpl *template.Template, data func(r *http.Request) any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !closed(time.Now()) {
				next.ServeHTTP(w, r)
				return
			}
			if isAPI(r) {
				writeJSONError(w, http.StatusForbidden, "feedback closed")
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			if err := tmpl.ExecuteTemplate(w, "closed.html", data(r)); err != nil {
				slog.Error("window: template error", "err", err)
			}
		})
	}
}
