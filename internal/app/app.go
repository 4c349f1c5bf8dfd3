package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peerfeedback/internal/config"
	"github.com/peerfeedback/internal/feedback"
	"github.com/peerfeedback/internal/i18n"
	"github.com/peerfeedback/internal/mailer"
	"github.com/peerfeedback/internal/session"
	"github.com/peerfeedback/internal/store"
)

const (
	sweepInterval   = time.Minute
	mailRate        = 2 * time.Second
	mailBuffer      = 100
	mailMaxRetry    = 3
	shutdownTimeout = 30 * time.Second
)

type App struct {
	config   *config.Config
	logger   *slog.Logger
	store    store.FeedbackStore // nil when DATABASE_URL is unset
	queue    *mailer.Queue       // nil when notifications are off
	sessions *session.Manager
}

func (app *App) Close() {
	if app.store != nil {
		app.store.Close()
	}
}

// New loads configuration from args and the environment and opens the
// feedback store.
func New(ctx context.Context, args []string) (*App, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if st == nil {
		logger.Warn("DATABASE_URL not set, submissions will be rejected as not configured")
	}

	queue, err := newQueue(cfg)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, fmt.Errorf("mailer: %w", err)
	}
	if queue != nil {
		if err := queue.Ping(); err != nil {
			logger.Warn("smtp server unreachable, notifications will be retried", "err", err)
		}
	}

	return build(cfg, logger, st, queue), nil
}

// build wires the form sessions to st, decorated with notifications when
// queue is set. st and queue may be nil.
func build(cfg *config.Config, logger *slog.Logger, st store.FeedbackStore, queue *mailer.Queue) *App {
	var inserter feedback.Inserter
	if st != nil {
		inserter = st
		if queue != nil {
			inserter = store.Notifying(st, queue, logger)
		}
	}

	limits := feedback.Limits{Min: cfg.MinChars, Max: cfg.MaxChars}
	sessions := session.NewManager(cfg.SessionTTL, cfg.MaxSessions, func(locale i18n.Locale) *feedback.Form {
		return feedback.NewForm(feedback.Config{
			Reviewee: feedback.DefaultReviewee,
			Limits:   limits,
			Locale:   locale,
			Store:    inserter,
			Logger:   logger,
		})
	})

	return &App{
		config:   cfg,
		logger:   logger,
		store:    st,
		queue:    queue,
		sessions: sessions,
	}
}

// newQueue returns nil, nil when notifications are not configured.
func newQueue(cfg *config.Config) (*mailer.Queue, error) {
	if !cfg.NotifyEnabled() {
		return nil, nil
	}

	mcfg := &mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Pass:        cfg.SMTPPass,
		FromAddress: cfg.SMTPFromAddress,
		FromName:    cfg.SMTPFromName,
		To:          []string{cfg.NotifyEmail},
	}
	if cfg.PGPPublicKeyPath != "" {
		key, err := os.ReadFile(cfg.PGPPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read PGP public key: %w", err)
		}
		mcfg.PGPPublicKey = string(key)
	}

	m := mailer.New(mcfg)
	if mcfg.PGPPublicKey != "" {
		if err := m.CanEncrypt(); err != nil {
			return nil, fmt.Errorf("PGP public key: %w", err)
		}
	}

	return mailer.NewQueue(m, mailRate, mailBuffer, mailMaxRetry), nil
}

func (app *App) Start(ctx context.Context) error {
	// Create an errgroup derived from the parent context
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	g.Go(func() error {
		app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// The mail queue is stopped only once Shutdown has returned.
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()

	g.Go(func() error {
		<-gctx.Done() // Wait for OS signal or a sibling to fail
		defer stopQueue()

		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return app.sessions.Run(gctx, sweepInterval)
	})

	if app.queue != nil {
		g.Go(func() error {
			app.queue.Start(queueCtx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("stopped server")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo

	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	slog.SetDefault(logger)
	return logger
}
