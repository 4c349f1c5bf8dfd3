package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/peerfeedback/internal/i18n"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// Database; empty leaves the form without a store.
	DatabaseURL string

	// Form
	DefaultLocale i18n.Locale
	MinChars      int
	MaxChars      int
	ClosesAt      time.Time // zero means the form never closes

	// Sessions and limits
	SessionTTL           time.Duration
	MaxSessions          int
	RateLimitPerMinute   int
	SubmitLimitPerMinute int
	SecureCookies        bool

	// SMTP
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPass         string
	SMTPFromAddress  string
	SMTPFromName     string
	NotifyEmail      string
	PGPPublicKeyPath string
}

// Load reads .env, the environment and then args, in increasing priority.
func Load(args []string) (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{}
	var (
		locale   string
		closesAt string
	)

	fs := flag.NewFlagSet("peerfeedback", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", getEnv("PORT", "8080"), "Server port")
	fs.StringVar(&cfg.Env, "env", getEnv("ENV", "development"), "Environment (development, production)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", getEnv("DATABASE_URL", ""), "postgres:// URL or sqlite:<path>")
	fs.StringVar(&locale, "default-locale", getEnv("DEFAULT_LOCALE", string(i18n.Default)), "Locale used when the request expresses none (en, ja)")
	fs.IntVar(&cfg.MinChars, "min-chars", getEnvInt("MIN_CHARS", 10), "Minimum characters per answer")
	fs.IntVar(&cfg.MaxChars, "max-chars", getEnvInt("MAX_CHARS", 500), "Maximum characters per answer, 0 for unbounded")
	fs.StringVar(&closesAt, "closes-at", getEnv("FEEDBACK_CLOSES_AT", ""), "Close time, RFC 3339 or YYYY-MM-DD")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", getEnvDuration("SESSION_TTL", 2*time.Hour), "Idle time before a form session is dropped")
	fs.IntVar(&cfg.MaxSessions, "max-sessions", getEnvInt("MAX_SESSIONS", 10000), "Form sessions held in memory before the oldest idle one is dropped")
	fs.IntVar(&cfg.RateLimitPerMinute, "rate-limit", getEnvInt("RATE_LIMIT_PER_MINUTE", 120), "API requests per minute per IP")
	fs.IntVar(&cfg.SubmitLimitPerMinute, "submit-limit", getEnvInt("SUBMIT_LIMIT_PER_MINUTE", 10), "Submissions per minute, all clients")

	cfg.SecureCookies = getEnv("SECURE_COOKIES", "false") == "true"
	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUser = getEnv("SMTP_USER", "")
	cfg.SMTPPass = getEnv("SMTP_PASS", "")
	cfg.SMTPFromAddress = getEnv("SMTP_FROM_ADDRESS", "")
	cfg.SMTPFromName = getEnv("SMTP_FROM_NAME", "Peer Feedback")
	cfg.NotifyEmail = getEnv("NOTIFY_EMAIL", "")
	cfg.PGPPublicKeyPath = getEnv("PGP_PUBLIC_KEY_PATH", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	l, ok := i18n.Parse(locale)
	if !ok {
		return nil, fmt.Errorf("DEFAULT_LOCALE %q is not one of en, ja", locale)
	}
	cfg.DefaultLocale = l

	t, err := parseClosesAt(closesAt)
	if err != nil {
		return nil, err
	}
	cfg.ClosesAt = t

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.MinChars < 0 {
		return fmt.Errorf("MIN_CHARS must not be negative")
	}
	if c.MaxChars > 0 && c.MaxChars < c.MinChars {
		return fmt.Errorf("MAX_CHARS must be at least MIN_CHARS (%d)", c.MinChars)
	}
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1m")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.SubmitLimitPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.NotifyEnabled() && c.SMTPFromAddress == "" {
		return fmt.Errorf("SMTP_FROM_ADDRESS is required when NOTIFY_EMAIL is set")
	}
	return nil
}

// NotifyEnabled reports whether stored feedback should be mailed on.
func (c *Config) NotifyEnabled() bool {
	return c.SMTPHost != "" && c.NotifyEmail != ""
}

// Closed reports whether the feedback window has passed at now.
func (c *Config) Closed(now time.Time) bool {
	return !c.ClosesAt.IsZero() && !now.Before(c.ClosesAt)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// parseClosesAt accepts RFC 3339 or a bare date. A bare date closes at the
// end of that day, UTC.
func parseClosesAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("FEEDBACK_CLOSES_AT %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return d.AddDate(0, 0, 1), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
