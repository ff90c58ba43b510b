package scoring

import "github.com/Soo0803/ternswipe-matcher/core"

// Penalties are the fixed amounts subtracted per behavioral flag.
type Penalties struct {
	LackCommitment    float64
	PoorCommunication float64
	WeakWriting       float64
	WeakQuantitative  float64
}

// DefaultPenalties returns 0.10 for low commitment, 0.07 for poor
// communication and 0.05 each for weak writing and weak quantitative skill.
func DefaultPenalties() Penalties {
	return Penalties{
		LackCommitment:    0.10,
		PoorCommunication: 0.07,
		WeakWriting:       0.05,
		WeakQuantitative:  0.05,
	}
}

// Total sums the penalties of every set flag.
func (p Penalties) Total(flags core.BehaviorFlags) float64 {
	total := 0.0
	if flags.LackCommitment {
		total += p.LackCommitment
	}
	if flags.PoorCommunication {
		total += p.PoorCommunication
	}
	if flags.WeakWriting {
		total += p.WeakWriting
	}
	if flags.WeakQuantitative {
		total += p.WeakQuantitative
	}
	return total
}
