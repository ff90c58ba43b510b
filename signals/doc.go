// Package signals computes the per-pair matching signals: skill coverage,
// availability overlap and seeker potential.
//
// Every function is pure and total. Missing inputs map to a neutral default
// of 0.5 instead of an error, because partial profiles are expected and
// must still produce a usable, conservative score. Results are always
// within [0, 1].
package signals
