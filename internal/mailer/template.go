package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/peerfeedback/internal/feedback"
)

//go:embed templates/feedback.tmpl
var templateFS embed.FS

var feedbackTmpl = template.Must(template.ParseFS(templateFS, "templates/feedback.tmpl"))

type feedbackData struct {
	Reviewee        string
	ReviewerName    string
	Language        string
	GoodFeedback    string
	ImproveFeedback string
}

// RenderFeedback formats a stored record as a plain text notification.
func RenderFeedback(rec feedback.Record) (string, error) {
	data := feedbackData{
		Reviewee:        rec.Reviewee,
		Language:        rec.Language.Label(),
		GoodFeedback:    normalizeNewlines(rec.GoodFeedback),
		ImproveFeedback: normalizeNewlines(rec.ImproveFeedback),
	}
	if rec.ReviewerName != nil {
		data.ReviewerName = normalizeNewlines(*rec.ReviewerName)
	}

	var buf bytes.Buffer
	if err := feedbackTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render feedback: %w", err)
	}
	return buf.String(), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
