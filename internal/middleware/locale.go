package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/peerfeedback/internal/i18n"
)

const LanguageCookieName = "lang"

// Locale resolves the display language from ?lang=, the language cookie or
// Accept-Language, in that order, falling back to fallback.
func Locale(fallback i18n.Locale) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), contextKeyLocale, resolveLocale(r, fallback))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveLocale(r *http.Request, fallback i18n.Locale) i18n.Locale {
	if l, ok := i18n.Parse(r.URL.Query().Get("lang")); ok {
		return l
	}
	if c, err := r.Cookie(LanguageCookieName); err == nil {
		if l, ok := i18n.Parse(c.Value); ok {
			return l
		}
	}
	return i18n.Match(r.Header.Get("Accept-Language"), fallback)
}

// SetLanguageCookie remembers the chosen language for a year.
func SetLanguageCookie(w http.ResponseWriter, l i18n.Locale, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookieName,
		Value:    string(l),
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
