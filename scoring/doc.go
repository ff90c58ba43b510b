// Package scoring turns a (seeker, offer, similarity) triple into the
// feature bundle and scalar score used for ranking.
//
// Per pair the scorer computes skill coverage, availability and potential
// with package signals, then
//
//	fit      = clamp(wSim*similarity + wCov*coverage + wAvail*availability)
//	p_accept = clamp(predictor(features))
//	perf     = clamp(0.6*potential + 0.4*coverage)
//	base     = wAccept*p_accept + wPerf*perf + wFit*fit
//	score    = clamp(base*gate(coverage) + bonus - penalties)
//
// The weights, the gate policy, the discipline bonus and the behavioral
// penalties come from a named, versioned Profile. Several profiles exist
// because the formulas diverged over time; ProfileCanonical is the default
// and none of them is marked confirmed until product sign-off.
//
// The acceptance probability comes from an AcceptancePredictor: the closed
// form BlendPredictor by default, or a LogisticPredictor loaded from a
// model file. Anything else can be plugged in with PredictorFunc.
package scoring
