package core

import (
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID identifies a seeker or an offer. IDs are assigned by the external
// profile store and treated as opaque strings.
type ID string

// ContentHash returns a deterministic 64-bit BLAKE2b digest of text.
// Identical text always produces the identical hash.
func ContentHash(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// NormalizeSkill lowercases a skill and collapses internal whitespace.
func NormalizeSkill(skill string) string {
	return strings.Join(strings.Fields(strings.ToLower(skill)), " ")
}

// NormalizeSkills normalizes and deduplicates a skill list, keeping the
// order of first appearance and dropping empty entries.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		n := NormalizeSkill(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Interval is a date range. A zero Start or End means that endpoint is unknown.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an Interval from two dates.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Known reports whether both endpoints are present.
func (i Interval) Known() bool {
	return !i.Start.IsZero() && !i.End.IsZero()
}

// BehaviorFlags are known negative signals about a seeker.
type BehaviorFlags struct {
	LackCommitment    bool
	PoorCommunication bool
	WeakWriting       bool
	WeakQuantitative  bool
}

// Any reports whether at least one flag is set.
func (f BehaviorFlags) Any() bool {
	return f.LackCommitment || f.PoorCommunication || f.WeakWriting || f.WeakQuantitative
}

// Seeker is a read-only snapshot of a student profile.
type Seeker struct {
	ID           ID
	Headline     string
	Summary      string
	Courses      []string // Ordered, duplicates allowed
	Skills       []string // Canonical skills
	SkillsText   string   // Raw free-text skills, normalized into Skills on import
	Major        string
	WeeklyHours  int
	Availability Interval
	Aptitude     *float64 // Source scale (e.g. 0-4 GPA); nil when unknown
	Reliability  *float64 // 0-1; nil when unknown
	Flags        BehaviorFlags
	UpdatedAt    time.Time
}

// Offer is a read-only snapshot of a project.
type Offer struct {
	ID             ID
	Title          string
	Description    string
	RequiredSkills []string // Empty means no constraint
	WeeklyHours    int
	Period         Interval
	Capacity       int
	Open           bool
	UpdatedAt      time.Time
}

// EntityKind distinguishes the two sides of the marketplace.
type EntityKind int

const (
	// KindSeeker marks seeker-side records.
	KindSeeker EntityKind = iota + 1
	// KindOffer marks offer-side records.
	KindOffer
)

func (k EntityKind) String() string {
	switch k {
	case KindSeeker:
		return "seeker"
	case KindOffer:
		return "offer"
	default:
		return "unknown"
	}
}

// Embedding is a precomputed dense vector for one seeker or offer.
type Embedding struct {
	Owner       ID
	Kind        EntityKind
	Vector      []float32
	ContentHash uint64 // Hash of the text blob the vector was computed from
	Model       string
	UpdatedAt   time.Time
}

// SimilarityMatch is one retrieval hit.
type SimilarityMatch struct {
	ID    ID
	Score float64
}

// Features is the per-pair feature bundle produced by scoring.
type Features struct {
	Coverage     float64
	Availability float64
	Potential    float64
	Fit          float64
	PAccept      float64
	Perf         float64
	Score        float64
}

// Candidate is a scored (seeker, offer) pair.
type Candidate struct {
	SeekerID   ID
	OfferID    ID
	Similarity float64
	Features
	Gate    float64 // Multiplier applied by the coverage gate
	Bonus   float64 // Additive discipline bonus
	Penalty float64 // Total behavioral penalty subtracted
}

// Rounded returns a copy with every numeric field rounded to 4 decimal places.
func (c Candidate) Rounded() Candidate {
	c.Similarity = round4(c.Similarity)
	c.Coverage = round4(c.Coverage)
	c.Availability = round4(c.Availability)
	c.Potential = round4(c.Potential)
	c.Fit = round4(c.Fit)
	c.PAccept = round4(c.PAccept)
	c.Perf = round4(c.Perf)
	c.Score = round4(c.Score)
	c.Gate = round4(c.Gate)
	c.Bonus = round4(c.Bonus)
	c.Penalty = round4(c.Penalty)
	return c
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Outcome reports how a lookup-driven operation ended.
type Outcome int

const (
	// OutcomeOK means the operation produced a result.
	OutcomeOK Outcome = iota
	// OutcomeNotFound means the requested seeker or offer does not exist.
	OutcomeNotFound
	// OutcomeEmbeddingMissing means the entity exists but has no embedding yet.
	OutcomeEmbeddingMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeEmbeddingMissing:
		return "embedding_missing"
	default:
		return "unknown"
	}
}

// Assignment maps one seeker to at most one offer.
// An empty OfferID means the seeker was left unassigned.
type Assignment struct {
	SeekerID ID
	OfferID  ID
	Score    float64
	Outcome  Outcome
	Err      error // Set when ranking this seeker failed unexpectedly
}

// Assigned reports whether the seeker received an offer.
func (a Assignment) Assigned() bool {
	return a.OfferID != ""
}
