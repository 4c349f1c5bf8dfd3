package middleware

import (
	"context"
	"net/http"

	"github.com/peerfeedback/internal/feedback"
	"github.com/peerfeedback/internal/i18n"
)

const SessionCookieName = "feedback_session"

// FormSessions looks up and creates per-browser forms.
type FormSessions interface {
	Get(id string) (*feedback.Form, bool)
	Create(locale i18n.Locale) (string, *feedback.Form)
}

// FormSession attaches the browser's form to the request context. A missing
// or expired session cookie starts a new form in the request's locale.
// An explicit ?lang= is applied to an existing form.
func FormSession(sessions FormSessions, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := LocaleFromContext(r.Context())

			var form *feedback.Form
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				form, _ = sessions.Get(cookie.Value)
			}

			if form == nil {
				var id string
				id, form = sessions.Create(locale)
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			} else if _, ok := i18n.Parse(r.URL.Query().Get("lang")); ok && form.Locale() != locale {
				form.SetLocale(locale)
			}

			ctx := context.WithValue(r.Context(), contextKeyForm, form)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
