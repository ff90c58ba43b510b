package scoring

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/signals"
)

const (
	perfPotentialWeight = 0.6
	perfCoverageWeight  = 0.4
)

// Scorer computes features and scores for (seeker, offer) pairs.
// A Scorer is immutable and safe for concurrent use.
type Scorer struct {
	profile       Profile
	predictor     AcceptancePredictor
	aptitudeScale float64
	logger        *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer) error

// WithProfile sets the scoring profile. Default is CanonicalProfile.
func WithProfile(p Profile) Option {
	return func(s *Scorer) error {
		if err := p.Validate(); err != nil {
			return err
		}
		s.profile = p
		return nil
	}
}

// WithPredictor sets the acceptance predictor. Default is DefaultBlendPredictor.
func WithPredictor(p AcceptancePredictor) Option {
	return func(s *Scorer) error {
		if p == nil {
			p = DefaultBlendPredictor()
		}
		s.predictor = p
		return nil
	}
}

// WithAptitudeScale sets the maximum of the aptitude source scale.
func WithAptitudeScale(scale float64) Option {
	return func(s *Scorer) error {
		if scale <= 0 {
			return fmt.Errorf("aptitude scale must be positive, got %v", scale)
		}
		s.aptitudeScale = scale
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewScorer creates a Scorer.
func NewScorer(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		profile:       CanonicalProfile(),
		predictor:     DefaultBlendPredictor(),
		aptitudeScale: signals.DefaultAptitudeScale,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "scorer")
	if !s.profile.Confirmed {
		s.logger.Info("scoring profile awaiting product-owner confirmation", "profile", s.profile.String())
	}
	return s, nil
}

// Profile returns the active scoring profile.
func (s *Scorer) Profile() Profile {
	return s.profile
}

// seekerInputs are the per-seeker values shared by every pair.
type seekerInputs struct {
	potential   float64
	aptitude    float64
	reliability float64
}

func (s *Scorer) seekerInputs(seeker *core.Seeker) seekerInputs {
	apt, rel := signals.PotentialComponents(seeker.Aptitude, seeker.Reliability, s.aptitudeScale)
	return seekerInputs{
		potential:   signals.Potential(seeker.Aptitude, seeker.Reliability, s.aptitudeScale),
		aptitude:    apt,
		reliability: rel,
	}
}

// ScorePair scores a single pair. Similarity is clamped to [0,1] first,
// so a negative cosine counts as no similarity.
func (s *Scorer) ScorePair(seeker *core.Seeker, offer *core.Offer, similarity float64) core.Candidate {
	return s.score(seeker, offer, similarity, s.seekerInputs(seeker))
}

func (s *Scorer) score(seeker *core.Seeker, offer *core.Offer, similarity float64, in seekerInputs) core.Candidate {
	p := s.profile
	similarity = signals.Clamp01(similarity)
	coverage := signals.SkillCoverage(seeker.Skills, offer.RequiredSkills)
	avail := signals.AvailabilityOverlap(seeker.Availability, offer.Period, seeker.WeeklyHours, offer.WeeklyHours)

	fit := signals.Clamp01(p.Fit.Similarity*similarity + p.Fit.Coverage*coverage + p.Fit.Availability*avail)
	pAccept := signals.Clamp01(s.predictor.PredictAccept(Features{
		Similarity:   similarity,
		Coverage:     coverage,
		Availability: avail,
		Aptitude:     in.aptitude,
		Reliability:  in.reliability,
		Flags:        seeker.Flags,
	}))
	perf := signals.Clamp01(perfPotentialWeight*in.potential + perfCoverageWeight*coverage)

	base := p.Score.Accept*pAccept + p.Score.Perf*perf + p.Score.Fit*fit
	gate := p.Gate.Multiplier(coverage)
	bonus := p.Bonus.Amount(seeker.Major, offer.RequiredSkills, coverage)
	penalty := p.Penalties.Total(seeker.Flags)

	return core.Candidate{
		SeekerID:   seeker.ID,
		OfferID:    offer.ID,
		Similarity: similarity,
		Features: core.Features{
			Coverage:     coverage,
			Availability: avail,
			Potential:    in.potential,
			Fit:          fit,
			PAccept:      pAccept,
			Perf:         perf,
			Score:        signals.Clamp01(base*gate + bonus - penalty),
		},
		Gate:    gate,
		Bonus:   bonus,
		Penalty: penalty,
	}
}

// ScoreOffers scores one seeker against each offer, using similarities
// keyed by offer ID (missing entries score as 0), and sorts the result by
// score, then p_accept, then offer ID.
func (s *Scorer) ScoreOffers(seeker *core.Seeker, offers []*core.Offer, similarities map[core.ID]float64) []core.Candidate {
	in := s.seekerInputs(seeker)
	out := make([]core.Candidate, 0, len(offers))
	for _, offer := range offers {
		out = append(out, s.score(seeker, offer, similarities[offer.ID], in))
	}
	slices.SortFunc(out, func(a, b core.Candidate) int {
		return compareCandidates(a, b, a.OfferID, b.OfferID)
	})
	return out
}

// ScoreSeekers scores each seeker against one offer, using similarities
// keyed by seeker ID, and sorts the result by score, then p_accept, then
// seeker ID.
func (s *Scorer) ScoreSeekers(offer *core.Offer, seekers []*core.Seeker, similarities map[core.ID]float64) []core.Candidate {
	out := make([]core.Candidate, 0, len(seekers))
	for _, seeker := range seekers {
		out = append(out, s.score(seeker, offer, similarities[seeker.ID], s.seekerInputs(seeker)))
	}
	slices.SortFunc(out, func(a, b core.Candidate) int {
		return compareCandidates(a, b, a.SeekerID, b.SeekerID)
	})
	return out
}

func compareCandidates(a, b core.Candidate, idA, idB core.ID) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.PAccept, a.PAccept); c != 0 {
		return c
	}
	return cmp.Compare(idA, idB)
}
