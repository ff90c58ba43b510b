package scoring

// GatePolicy maps skill coverage to a multiplier applied to the base score.
// Multipliers must be non-decreasing in coverage.
type GatePolicy interface {
	Multiplier(coverage float64) float64
	Name() string
}

var (
	_ GatePolicy = NoGate{}
	_ GatePolicy = HardGate{}
	_ GatePolicy = SoftGate{}
)

// NoGate leaves every score unchanged.
type NoGate struct{}

func (NoGate) Multiplier(float64) float64 { return 1 }
func (NoGate) Name() string               { return "none" }

// HardGate halves scores below 30% coverage and takes 15% off below 50%.
type HardGate struct{}

func (HardGate) Multiplier(coverage float64) float64 {
	switch {
	case coverage < 0.3:
		return 0.5
	case coverage < 0.5:
		return 0.85
	default:
		return 1
	}
}

func (HardGate) Name() string { return "hard" }

// RawCoverageGate is the four-step gate SoftGate softens: 0.2 with no
// coverage, 0.5 below 34%, 0.85 below 50%, otherwise 1.
func RawCoverageGate(coverage float64) float64 {
	switch {
	case coverage <= 0:
		return 0.2
	case coverage < 0.34:
		return 0.5
	case coverage < 0.5:
		return 0.85
	default:
		return 1
	}
}

// SoftGate lifts RawCoverageGate into [Floor, 1] and blends the result
// toward 1 by (1 - Blend).
type SoftGate struct {
	Floor float64
	Blend float64
}

// DefaultSoftGate never takes more than 6% off a score.
func DefaultSoftGate() SoftGate {
	return SoftGate{Floor: 0.85, Blend: 0.40}
}

func (g SoftGate) Multiplier(coverage float64) float64 {
	soft := g.Floor + (1-g.Floor)*RawCoverageGate(coverage)
	return (1 - g.Blend) + g.Blend*soft
}

func (SoftGate) Name() string { return "soft" }
