package feedback

import (
	"context"

	"github.com/peerfeedback/internal/i18n"
)

// Record is the unit delivered to the feedback store. It is built fresh for
// every accepted submission and never modified afterwards.
type Record struct {
	Reviewee        string      `json:"reviewee"`
	ReviewerName    *string     `json:"reviewer_name"`
	GoodFeedback    string      `json:"good_feedback"`
	ImproveFeedback string      `json:"improve_feedback"`
	Language        i18n.Locale `json:"language"`
}

// Anonymous reports whether the record carries no reviewer name.
func (r Record) Anonymous() bool {
	return r.ReviewerName == nil
}

// Inserter persists feedback records.
type Inserter interface {
	InsertFeedback(ctx context.Context, rec Record) error
}

// Profile describes the person the feedback is about.
type Profile struct {
	Handle   string
	Name     string
	Role     string
	Location string
}

// Initials returns up to two leading letters of the profile name.
func (p Profile) Initials() string {
	var out []rune
	prev := ' '
	for _, r := range p.Name {
		if prev == ' ' && r != ' ' {
			out = append(out, r)
			if len(out) == 2 {
				break
			}
		}
		prev = r
	}
	return string(out)
}

// DefaultReviewee is the fixed subject of the form.
var DefaultReviewee = Profile{
	Handle:   "ls-daud",
	Name:     "Daud Abdilah Zubaidi",
	Role:     "Software Engineer",
	Location: "lakesuccess-jp",
}
