package scoring

import (
	"fmt"
	"slices"
)

// FitWeights combine similarity, coverage and availability into fit.
type FitWeights struct {
	Similarity   float64
	Coverage     float64
	Availability float64
}

// ScoreWeights combine p_accept, perf and fit into the base score.
type ScoreWeights struct {
	Accept float64
	Perf   float64
	Fit    float64
}

// Profile is a named, versioned set of scoring constants.
type Profile struct {
	Name    string
	Version int
	Fit     FitWeights
	Score   ScoreWeights
	Gate    GatePolicy
	Bonus   DisciplineBonus
	// Penalties are subtracted once per set behavioral flag.
	Penalties Penalties
	// Confirmed is set once product owners have signed off on the constants.
	Confirmed bool
}

// Built-in profile names.
const (
	ProfileCanonical    = "v1-hard-gate"
	ProfileEmbeddingFit = "v0-embedding-fit"
	ProfileSoftGate     = "v2-soft-gate"
)

// CanonicalProfile weights coverage highest in fit, halves scores under
// 30% coverage and applies behavioral penalties.
func CanonicalProfile() Profile {
	return Profile{
		Name:      ProfileCanonical,
		Version:   1,
		Fit:       FitWeights{Similarity: 0.35, Coverage: 0.50, Availability: 0.15},
		Score:     ScoreWeights{Accept: 0.35, Perf: 0.45, Fit: 0.20},
		Gate:      HardGate{},
		Penalties: DefaultPenalties(),
	}
}

// EmbeddingFitProfile leans on embedding similarity for fit and applies
// neither a gate nor penalties.
func EmbeddingFitProfile() Profile {
	return Profile{
		Name:    ProfileEmbeddingFit,
		Version: 0,
		Fit:     FitWeights{Similarity: 0.55, Coverage: 0.30, Availability: 0.15},
		Score:   ScoreWeights{Accept: 0.35, Perf: 0.45, Fit: 0.20},
		Gate:    NoGate{},
	}
}

// SoftGateProfile uses the softened coverage gate, a discipline bonus and
// behavioral penalties.
func SoftGateProfile() Profile {
	return Profile{
		Name:      ProfileSoftGate,
		Version:   2,
		Fit:       FitWeights{Similarity: 0.35, Coverage: 0.50, Availability: 0.15},
		Score:     ScoreWeights{Accept: 0.30, Perf: 0.50, Fit: 0.20},
		Gate:      DefaultSoftGate(),
		Bonus:     DefaultDisciplineBonus(),
		Penalties: DefaultPenalties(),
	}
}

var builtinProfiles = map[string]func() Profile{
	ProfileCanonical:    CanonicalProfile,
	ProfileEmbeddingFit: EmbeddingFitProfile,
	ProfileSoftGate:     SoftGateProfile,
}

// ProfileNames lists the built-in profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ProfileByName returns a built-in profile. An empty name selects the canonical profile.
func ProfileByName(name string) (Profile, error) {
	if name == "" {
		return CanonicalProfile(), nil
	}
	build, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return build(), nil
}

// Validate checks that weights and penalties are non-negative and a gate is set.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if p.Gate == nil {
		return fmt.Errorf("%w: %s has no gate policy", ErrInvalidProfile, p.Name)
	}
	weights := []float64{
		p.Fit.Similarity, p.Fit.Coverage, p.Fit.Availability,
		p.Score.Accept, p.Score.Perf, p.Score.Fit,
		p.Penalties.LackCommitment, p.Penalties.PoorCommunication,
		p.Penalties.WeakWriting, p.Penalties.WeakQuantitative,
		p.Bonus.Base, p.Bonus.RelatedFraction,
	}
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%w: %s has a negative weight", ErrInvalidProfile, p.Name)
		}
	}
	return nil
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (v%d, gate=%s)", p.Name, p.Version, p.Gate.Name())
}
