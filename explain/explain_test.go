package explain

import (
	"testing"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/stretchr/testify/assert"
)

func candidate(sim, coverage, avail, potential float64) core.Candidate {
	return core.Candidate{
		OfferID:    "p1",
		Similarity: sim,
		Features:   core.Features{Coverage: coverage, Availability: avail, Potential: potential},
	}
}

func TestReasons(t *testing.T) {
	tests := []struct {
		name string
		c    core.Candidate
		want []string
	}{
		{"all reasons in order", candidate(0.9, 1, 0.8, 0.75), []string{ReasonSkills, ReasonAvailability, ReasonAffinity, ReasonPotential}},
		{"thresholds are inclusive", candidate(0.65, 0.66, 0.66, 0.7), []string{ReasonSkills, ReasonAvailability, ReasonAffinity, ReasonPotential}},
		{"skills only", candidate(0.2, 0.67, 0.5, 0.5), []string{ReasonSkills}},
		{"nothing qualifies", candidate(0.64, 0.65, 0.65, 0.69), []string{ReasonFallback}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reasons(tt.c))
		})
	}
}

func TestReasonsWith_CustomThresholds(t *testing.T) {
	c := candidate(0.5, 0.5, 0.5, 0.5)
	assert.Equal(t, []string{ReasonFallback}, Reasons(c))
	assert.Equal(t, []string{ReasonAffinity}, ReasonsWith(c, Thresholds{Coverage: 1, Availability: 1, Similarity: 0.5, Potential: 1}))
}

func TestExplain(t *testing.T) {
	cs := []core.Candidate{candidate(0.9, 0, 0, 0), candidate(0, 0, 0, 0)}
	cs[1].OfferID = "p2"

	got := Explain(cs, DefaultThresholds())
	assert.Len(t, got, 2)
	assert.Equal(t, core.ID("p1"), got[0].OfferID)
	assert.Equal(t, []string{ReasonAffinity}, got[0].Reasons)
	assert.Equal(t, []string{ReasonFallback}, got[1].Reasons)
	assert.Empty(t, Explain(nil, DefaultThresholds()))
}
