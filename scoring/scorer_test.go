package scoring

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// scenarioPair has coverage 2/3, availability 0.7 (unknown dates, equal
// hours) and potential 0.6.
func scenarioPair() (*core.Seeker, *core.Offer) {
	seeker := &core.Seeker{
		ID:          "s1",
		Skills:      []string{"python", "nlp"},
		WeeklyHours: 10,
		Aptitude:    ptr(2.4),
		Reliability: ptr(0.6),
	}
	offer := &core.Offer{
		ID:             "p1",
		RequiredSkills: []string{"python", "nlp", "keras"},
		WeeklyHours:    10,
		Capacity:       1,
		Open:           true,
	}
	return seeker, offer
}

func newTestScorer(t *testing.T, opts ...Option) *Scorer {
	t.Helper()
	s, err := NewScorer(opts...)
	require.NoError(t, err)
	return s
}

func TestScorePair_CanonicalScenario(t *testing.T) {
	seeker, offer := scenarioPair()
	c := newTestScorer(t).ScorePair(seeker, offer, 0.8)

	assert.Equal(t, core.ID("s1"), c.SeekerID)
	assert.Equal(t, core.ID("p1"), c.OfferID)
	assert.InDelta(t, 2.0/3.0, c.Coverage, 1e-9)
	assert.InDelta(t, 0.7, c.Availability, 1e-9)
	assert.InDelta(t, 0.6, c.Potential, 1e-9)
	assert.InDelta(t, 0.7183, c.Fit, 1e-4)
	assert.InDelta(t, 0.765, c.PAccept, 1e-9)
	assert.InDelta(t, 0.6267, c.Perf, 1e-4)
	assert.Equal(t, 1.0, c.Gate)
	assert.Zero(t, c.Bonus)
	assert.Zero(t, c.Penalty)
	// 0.6936 when every term is rounded to 4 places first.
	assert.InDelta(t, 0.6936, c.Score, 5e-4)
	assert.Equal(t, 0.6934, c.Rounded().Score)
}

func TestScorePair_NegativeSimilarity(t *testing.T) {
	seeker, offer := scenarioPair()
	s := newTestScorer(t)

	got := s.ScorePair(seeker, offer, -0.98)
	want := s.ScorePair(seeker, offer, 0)
	assert.Equal(t, 0.0, got.Similarity)
	assert.Equal(t, want, got)
	assert.InDelta(t, 0.50*2.0/3.0+0.15*0.7, got.Fit, 1e-9)

	got = s.ScorePair(seeker, offer, 1.5)
	assert.Equal(t, 1.0, got.Similarity)
}

func TestScorePair_Profiles(t *testing.T) {
	seeker, offer := scenarioPair()

	t.Run("embedding fit weights", func(t *testing.T) {
		c := newTestScorer(t, WithProfile(EmbeddingFitProfile())).ScorePair(seeker, offer, 0.8)
		assert.InDelta(t, 0.55*0.8+0.30*2.0/3.0+0.15*0.7, c.Fit, 1e-9)
	})

	t.Run("soft gate adds the discipline bonus", func(t *testing.T) {
		cs := *seeker
		cs.Major = "Computer Science"
		c := newTestScorer(t, WithProfile(SoftGateProfile())).ScorePair(&cs, offer, 0.8)
		assert.InDelta(t, 0.015*(0.6+0.4*2.0/3.0), c.Bonus, 1e-9)
		assert.Equal(t, 1.0, c.Gate)
		base := 0.30*c.PAccept + 0.50*c.Perf + 0.20*c.Fit
		assert.InDelta(t, base+c.Bonus, c.Score, 1e-9)
	})
}

func TestScorePair_GateMonotone(t *testing.T) {
	offer := &core.Offer{ID: "p1", RequiredSkills: []string{"a", "b", "c", "d", "e"}}
	held := [][]string{{"a"}, {"a", "b"}, {"a", "b", "c"}}

	for _, profile := range []Profile{CanonicalProfile(), EmbeddingFitProfile(), SoftGateProfile()} {
		t.Run(profile.Name, func(t *testing.T) {
			s := newTestScorer(t, WithProfile(profile))
			prev := -1.0
			for _, skills := range held {
				c := s.ScorePair(&core.Seeker{ID: "s1", Skills: skills}, offer, 0.5)
				assert.GreaterOrEqual(t, c.Score, prev, "coverage %.1f", c.Coverage)
				prev = c.Score
			}
		})
	}
}

func TestScorePair_Penalties(t *testing.T) {
	seeker, offer := scenarioPair()
	s := newTestScorer(t)
	clean := s.ScorePair(seeker, offer, 0.8)

	flags := []core.BehaviorFlags{
		{LackCommitment: true},
		{PoorCommunication: true},
		{WeakWriting: true},
		{WeakQuantitative: true},
		{LackCommitment: true, PoorCommunication: true, WeakWriting: true, WeakQuantitative: true},
	}
	for _, f := range flags {
		flagged := *seeker
		flagged.Flags = f
		c := s.ScorePair(&flagged, offer, 0.8)
		assert.LessOrEqual(t, c.Score, clean.Score)
		assert.InDelta(t, clean.Score-DefaultPenalties().Total(f), c.Score, 1e-9)
	}

	t.Run("never below zero", func(t *testing.T) {
		weak := &core.Seeker{
			ID:          "s2",
			Reliability: ptr(0),
			Flags:       core.BehaviorFlags{LackCommitment: true, PoorCommunication: true, WeakWriting: true, WeakQuantitative: true},
		}
		c := s.ScorePair(weak, &core.Offer{ID: "p2", RequiredSkills: []string{"latex"}}, 0)
		assert.Equal(t, 0.0, c.Score)
		assert.InDelta(t, 0.27, c.Penalty, 1e-9)
	})
}

func TestScoreOffers_Ordering(t *testing.T) {
	seeker, _ := scenarioPair()
	offers := []*core.Offer{
		{ID: "p3", RequiredSkills: []string{"latex"}},
		{ID: "p2", RequiredSkills: []string{"python"}},
		{ID: "p1", RequiredSkills: []string{"python"}},
	}
	sims := map[core.ID]float64{"p1": 0.5, "p2": 0.5, "p3": 0.9}

	got := newTestScorer(t).ScoreOffers(seeker, offers, sims)
	require.Len(t, got, 3)
	assert.Equal(t, []core.ID{"p1", "p2", "p3"}, []core.ID{got[0].OfferID, got[1].OfferID, got[2].OfferID})
	assert.Equal(t, got[0].Score, got[1].Score)

	t.Run("missing similarity scores as zero", func(t *testing.T) {
		got := newTestScorer(t).ScoreOffers(seeker, offers[:1], nil)
		assert.Zero(t, got[0].Similarity)
	})
}

func TestScoreSeekers_Ordering(t *testing.T) {
	_, offer := scenarioPair()
	seekers := []*core.Seeker{
		{ID: "s2", Skills: []string{"python"}},
		{ID: "s1", Skills: []string{"python", "nlp", "keras"}},
		{ID: "s0", Skills: []string{"python"}},
	}
	got := newTestScorer(t).ScoreSeekers(offer, seekers, map[core.ID]float64{"s0": 0.4, "s1": 0.4, "s2": 0.4})
	require.Len(t, got, 3)
	assert.Equal(t, []core.ID{"s1", "s0", "s2"}, []core.ID{got[0].SeekerID, got[1].SeekerID, got[2].SeekerID})
	for _, c := range got {
		assert.Equal(t, core.ID("p1"), c.OfferID)
	}
}

func TestCompareCandidates(t *testing.T) {
	a := core.Candidate{OfferID: "b", Features: core.Features{Score: 0.5, PAccept: 0.7}}
	b := core.Candidate{OfferID: "a", Features: core.Features{Score: 0.5, PAccept: 0.6}}
	assert.Negative(t, compareCandidates(a, b, a.OfferID, b.OfferID))

	b.PAccept = 0.7
	assert.Positive(t, compareCandidates(a, b, a.OfferID, b.OfferID))
}

func TestNewScorer_Options(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := newTestScorer(t)
		assert.Equal(t, ProfileCanonical, s.Profile().Name)
		assert.Equal(t, DefaultBlendPredictor(), s.predictor)
	})

	t.Run("invalid profile", func(t *testing.T) {
		_, err := NewScorer(WithProfile(Profile{Name: "broken"}))
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("invalid aptitude scale", func(t *testing.T) {
		_, err := NewScorer(WithAptitudeScale(0))
		assert.Error(t, err)
	})

	t.Run("aptitude scale", func(t *testing.T) {
		seeker, offer := scenarioPair()
		seeker.Aptitude = ptr(60)
		c := newTestScorer(t, WithAptitudeScale(100)).ScorePair(seeker, offer, 0.8)
		assert.InDelta(t, 0.6, c.Potential, 1e-9)
	})

	t.Run("injected predictor", func(t *testing.T) {
		seeker, offer := scenarioPair()
		s := newTestScorer(t, WithPredictor(PredictorFunc(func(Features) float64 { return 2 })))
		assert.Equal(t, 1.0, s.ScorePair(seeker, offer, 0.8).PAccept)
	})

	t.Run("unconfirmed profile is logged", func(t *testing.T) {
		var buf bytes.Buffer
		newTestScorer(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		assert.Contains(t, buf.String(), "awaiting product-owner confirmation")
		assert.Contains(t, buf.String(), ProfileCanonical)
	})
}
