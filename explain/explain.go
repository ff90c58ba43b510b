// Package explain turns a scored candidate into short human-readable reasons.
package explain

import "github.com/Soo0803/ternswipe-matcher/core"

// Reason strings.
const (
	ReasonSkills       = "skills match"
	ReasonAvailability = "availability fits"
	ReasonAffinity     = "strong topic affinity"
	ReasonPotential    = "high potential"
	ReasonFallback     = "overall good fit"
)

// Thresholds are the minimum feature values that earn each reason.
type Thresholds struct {
	Coverage     float64
	Availability float64
	Similarity   float64
	Potential    float64
}

// DefaultThresholds returns 0.66 for coverage and availability, 0.65 for
// similarity and 0.7 for potential.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Coverage:     0.66,
		Availability: 0.66,
		Similarity:   0.65,
		Potential:    0.7,
	}
}

// Reasons explains c with the default thresholds.
func Reasons(c core.Candidate) []string {
	return ReasonsWith(c, DefaultThresholds())
}

// ReasonsWith lists, in fixed order, every reason whose threshold c meets.
// It never returns an empty list.
func ReasonsWith(c core.Candidate, t Thresholds) []string {
	var out []string
	if c.Coverage >= t.Coverage {
		out = append(out, ReasonSkills)
	}
	if c.Availability >= t.Availability {
		out = append(out, ReasonAvailability)
	}
	if c.Similarity >= t.Similarity {
		out = append(out, ReasonAffinity)
	}
	if c.Potential >= t.Potential {
		out = append(out, ReasonPotential)
	}
	if len(out) == 0 {
		out = append(out, ReasonFallback)
	}
	return out
}

// Explanation pairs a candidate with its reasons.
type Explanation struct {
	core.Candidate
	Reasons []string
}

// Explain explains each candidate, preserving order.
func Explain(candidates []core.Candidate, t Thresholds) []Explanation {
	out := make([]Explanation, len(candidates))
	for i, c := range candidates {
		out[i] = Explanation{Candidate: c, Reasons: ReasonsWith(c, t)}
	}
	return out
}
