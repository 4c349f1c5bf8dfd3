package feedback

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultMinChars = 10
	DefaultMaxChars = 500
)

// Limits bounds the length of both feedback answers, counted in characters.
// Max <= 0 disables the upper bound.
type Limits struct {
	Min int
	Max int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{Min: DefaultMinChars, Max: DefaultMaxChars}
}

// Valid reports whether both answers are long enough once trimmed and
// neither raw answer exceeds the upper bound.
func (l Limits) Valid(strengths, improvements string) bool {
	return l.validOne(strengths) && l.validOne(improvements)
}

func (l Limits) validOne(s string) bool {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < l.Min {
		return false
	}
	if l.Max > 0 && utf8.RuneCountInString(s) > l.Max {
		return false
	}
	return true
}
