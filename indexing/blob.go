package indexing

import (
	"fmt"
	"strings"

	"github.com/Soo0803/ternswipe-matcher/core"
)

// SeekerBlob renders the text embedded for a seeker: headline, summary,
// courses and skills, one per line. Empty headline and summary lines are
// dropped; the labelled lines are always present.
func SeekerBlob(s *core.Seeker) string {
	return joinLines(
		s.Headline,
		s.Summary,
		"Courses: "+strings.Join(s.Courses, ", "),
		"Skills: "+strings.Join(s.Skills, ", "),
	)
}

// OfferBlob renders the text embedded for an offer: title, description,
// required skills (only when there are any) and weekly hours.
func OfferBlob(o *core.Offer) string {
	required := ""
	if len(o.RequiredSkills) > 0 {
		required = "#required: " + strings.Join(o.RequiredSkills, ", ")
	}
	return joinLines(
		o.Title,
		o.Description,
		required,
		fmt.Sprintf("Hours: %d/week", o.WeeklyHours),
	)
}

func joinLines(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
