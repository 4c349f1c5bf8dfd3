package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the active display language. It is also recorded on every
// submitted feedback record.
type Locale string

const (
	EN Locale = "en"
	JA Locale = "ja"
)

// Default is the locale used when nothing else selects one.
const Default = EN

// Locales lists the supported locales in toggle order.
var Locales = []Locale{EN, JA}

var labels = map[Locale]string{
	EN: "English",
	JA: "日本語",
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Japanese})

// Parse returns the locale named by s. Region subtags are ignored, so
// "ja-JP" parses as JA.
func Parse(s string) (Locale, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	switch Locale(s) {
	case EN:
		return EN, true
	case JA:
		return JA, true
	}
	return "", false
}

// Match negotiates an Accept-Language header against the supported locales.
// fallback is returned when the header is empty, malformed or matches nothing.
func Match(acceptLanguage string, fallback Locale) Locale {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return Locales[idx]
}

// Label returns the human readable name of l in its own language.
func (l Locale) Label() string {
	return labels[l]
}

func (l Locale) String() string {
	return string(l)
}

// Option is one entry of the language toggle.
type Option struct {
	Locale Locale
	Label  string
	Active bool
}

// Options returns the language toggle entries with active marked.
func Options(active Locale) []Option {
	opts := make([]Option, 0, len(Locales))
	for _, l := range Locales {
		opts = append(opts, Option{Locale: l, Label: l.Label(), Active: l == active})
	}
	return opts
}
