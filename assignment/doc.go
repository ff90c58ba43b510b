// Package assignment greedily maps seekers to offers under capacity limits.
//
// Seekers are processed in caller order. Each seeker's shortlist is walked
// from the best candidate down, and the first offer with a free slot wins.
// The outcome is order dependent and not globally optimal.
package assignment
