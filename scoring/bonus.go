package scoring

import (
	"strings"
	"unicode"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/signals"
)

// DisciplineBonus rewards offers whose required skills overlap the skill
// set associated with the seeker's declared major.
type DisciplineBonus struct {
	Enabled bool
	// Base is awarded for two or more overlapping skills.
	Base float64
	// RelatedFraction of Base is awarded for a single overlapping skill.
	RelatedFraction float64
	// Majors maps a major phrase to its related canonical skills.
	Majors map[string][]string
}

// DefaultMajorSkills returns the related skill sets for common majors.
// Aliases are listed for skills the taxonomy may abbreviate.
func DefaultMajorSkills() map[string][]string {
	cs := []string{"python", "nlp", "natural language processing", "keras", "tensorflow",
		"pytorch", "gnn", "graph neural networks", "statistics", "machine learning",
		"cv", "computer vision"}
	ee := []string{"signal processing", "matlab", "python", "pytorch"}
	bme := []string{"signal processing", "cv", "computer vision", "statistics", "matlab"}
	math := []string{"statistics", "python", "matlab", "data analysis"}
	return map[string][]string{
		"cs":                     cs,
		"computer science":       cs,
		"ee":                     ee,
		"electrical engineering": ee,
		"bme":                    bme,
		"biomedical":             bme,
		"cheme":                  nil,
		"chemical":               nil,
		"math":                   math,
		"mathematics":            math,
	}
}

// DefaultDisciplineBonus is an enabled bonus of 0.015, halved for a single overlap.
func DefaultDisciplineBonus() DisciplineBonus {
	return DisciplineBonus{
		Enabled:         true,
		Base:            0.015,
		RelatedFraction: 0.5,
		Majors:          DefaultMajorSkills(),
	}
}

// Amount returns the bonus for a seeker major against an offer's required
// skills, scaled by 0.6 + 0.4*coverage. Major phrases match on whole words.
func (b DisciplineBonus) Amount(major string, required []string, coverage float64) float64 {
	if !b.Enabled || b.Base <= 0 || len(required) == 0 {
		return 0
	}
	related := b.relatedSkills(major)
	if len(related) == 0 {
		return 0
	}

	overlap := 0
	for _, skill := range core.NormalizeSkills(required) {
		if related[skill] {
			overlap++
		}
	}

	var bonus float64
	switch {
	case overlap >= 2:
		bonus = b.Base
	case overlap == 1:
		bonus = b.Base * b.RelatedFraction
	default:
		return 0
	}
	return bonus * (0.6 + 0.4*signals.Clamp01(coverage))
}

func (b DisciplineBonus) relatedSkills(major string) map[string]bool {
	words := wordPhrase(major)
	if words == "" {
		return nil
	}
	related := make(map[string]bool)
	for phrase, skills := range b.Majors {
		key := wordPhrase(phrase)
		if key == "" || !strings.Contains(words, key) {
			continue
		}
		for _, s := range skills {
			related[core.NormalizeSkill(s)] = true
		}
	}
	return related
}

// wordPhrase lowercases text, splits it on non-alphanumerics and returns the
// words space-padded on both sides so containment checks match whole words.
func wordPhrase(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}
