package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/peerfeedback/internal/feedback"
	"github.com/peerfeedback/internal/handler"
	"github.com/peerfeedback/internal/middleware"
	"github.com/peerfeedback/internal/web"
)

func (app *App) routes() http.Handler {
	cfg := app.config

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	// Static files
	r.Handle("/static/*", web.Static("/static/"))

	// Health check
	r.Get("/api/health", handler.Health(app.store))

	limits := feedback.Limits{Min: cfg.MinChars, Max: cfg.MaxChars}
	formHandler := handler.NewFormHandler(app.logger, feedback.DefaultReviewee, limits, web.Templates, cfg.SecureCookies)

	// One limiter for both submit routes, shared by every client.
	submitLimit := middleware.SubmitLimit(cfg.SubmitLimitPerMinute)
	formLimit, formBurst := middleware.PerMinute(cfg.RateLimitPerMinute)

	r.NotFound(middleware.Locale(cfg.DefaultLocale)(http.HandlerFunc(formHandler.NotFound)).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		// Limit before FormSession so rejected requests never allocate a form.
		r.Use(middleware.RateLimit(formLimit, formBurst))
		r.Use(middleware.Locale(cfg.DefaultLocale))
		r.Use(middleware.FeedbackWindow(cfg.Closed, web.Templates, formHandler.ClosedData))
		r.Use(middleware.FormSession(app.sessions, cfg.SecureCookies))

		r.Get("/", formHandler.Page)
		r.With(submitLimit).Post("/", formHandler.SubmitPage)

		r.Route("/api/form", func(r chi.Router) {
			r.Get("/", formHandler.View)
			r.Put("/fields/{field}", formHandler.SetField)
			r.Put("/anonymous", formHandler.SetAnonymous)
			r.Put("/locale", formHandler.SetLocale)
			r.With(submitLimit).Post("/submit", formHandler.Submit)
		})
	})
	return r
}
