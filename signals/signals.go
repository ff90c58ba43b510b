package signals

import (
	"math"
	"time"

	"github.com/Soo0803/ternswipe-matcher/core"
)

const (
	// Neutral is the default used whenever an input is missing.
	Neutral = 0.5

	// DefaultAptitudeScale is the maximum of the default aptitude scale (4.0 GPA).
	DefaultAptitudeScale = 4.0

	dateWeight  = 0.6
	hoursWeight = 0.4

	aptitudeWeight    = 0.6
	reliabilityWeight = 0.4
)

// Clamp01 clamps v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SkillCoverage returns the fraction of required skills the seeker holds.
// No requirements means full coverage. Skills are compared after
// case and whitespace normalization.
func SkillCoverage(seekerSkills, requiredSkills []string) float64 {
	required := toSet(requiredSkills)
	if len(required) == 0 {
		return 1.0
	}
	held := toSet(seekerSkills)
	if len(held) == 0 {
		return 0.0
	}

	matched := 0
	for skill := range required {
		if held[skill] {
			matched++
		}
	}
	return Clamp01(float64(matched) / float64(len(required)))
}

// AvailabilityOverlap blends date overlap (weight 0.6) and weekly hours
// closeness (weight 0.4).
func AvailabilityOverlap(seeker, offer core.Interval, seekerHours, offerHours int) float64 {
	return Clamp01(dateWeight*DateOverlap(seeker, offer) + hoursWeight*HoursOverlap(seekerHours, offerHours))
}

// DateOverlap returns overlapping days divided by the days spanned by the
// union of both intervals, counting days inclusively. An interval with an
// unknown endpoint yields the neutral default. Reversed endpoints are swapped.
func DateOverlap(seeker, offer core.Interval) float64 {
	if !seeker.Known() || !offer.Known() {
		return Neutral
	}

	s0, s1 := ordered(dayNumber(seeker.Start), dayNumber(seeker.End))
	p0, p1 := ordered(dayNumber(offer.Start), dayNumber(offer.End))

	left := max(s0, p0)
	right := min(s1, p1)
	if right <= left {
		return 0
	}

	total := max(s1, p1) - min(s0, p0) + 1
	inter := right - left + 1
	return Clamp01(float64(inter) / float64(max(1, total)))
}

// HoursOverlap scores how close two weekly loads are. A missing or
// non-positive value yields the neutral default.
func HoursOverlap(seekerHours, offerHours int) float64 {
	if seekerHours <= 0 || offerHours <= 0 {
		return Neutral
	}
	diff := math.Abs(float64(seekerHours - offerHours))
	return Clamp01(1 - diff/float64(max(seekerHours, offerHours)))
}

// Potential blends normalized aptitude (weight 0.6) with reliability
// (weight 0.4). A nil or non-positive aptitude and a nil reliability fall
// back to the neutral default. A non-positive scale uses DefaultAptitudeScale.
func Potential(aptitude, reliability *float64, scale float64) float64 {
	apt, rel := PotentialComponents(aptitude, reliability, scale)
	return Clamp01(aptitudeWeight*apt + reliabilityWeight*rel)
}

// PotentialComponents returns the normalized aptitude and reliability
// that feed Potential.
func PotentialComponents(aptitude, reliability *float64, scale float64) (float64, float64) {
	if scale <= 0 {
		scale = DefaultAptitudeScale
	}

	apt := Neutral
	if aptitude != nil && *aptitude > 0 {
		apt = Clamp01(*aptitude / scale)
	}

	rel := Neutral
	if reliability != nil {
		rel = Clamp01(*reliability)
	}
	return apt, rel
}

func toSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		if n := core.NormalizeSkill(s); n != "" {
			set[n] = true
		}
	}
	return set
}

// dayNumber returns the number of whole days since the Unix epoch for the
// calendar date of t in UTC.
func dayNumber(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func ordered(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Cosine returns the cosine similarity of two vectors. Vectors of
// different lengths or with a zero norm yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
