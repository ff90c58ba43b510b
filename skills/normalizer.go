package skills

import (
	"log/slog"
	"sort"
	"strings"
)

const (
	// DefaultMaxFuzzy bounds how many leftover tokens are fuzzy matched.
	DefaultMaxFuzzy = 2

	// DefaultFuzzyThreshold is the minimum partial ratio (0-100) for a fuzzy hit.
	DefaultFuzzyThreshold = 92.0

	// DefaultMinTokenLength is the shortest token considered for fuzzy matching.
	DefaultMinTokenLength = 3
)

// Normalizer maps free-text skill mentions to canonical skills.
// It is safe for concurrent use.
type Normalizer struct {
	taxonomy       *Taxonomy
	maxFuzzy       int
	fuzzyThreshold float64
	minTokenLength int
	logger         *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer) error

// WithMaxFuzzy sets how many leftover tokens may be fuzzy matched.
// Zero disables fuzzy matching.
func WithMaxFuzzy(n int) Option {
	return func(nz *Normalizer) error {
		if n < 0 {
			n = 0
		}
		nz.maxFuzzy = n
		return nil
	}
}

// WithFuzzyThreshold sets the minimum partial ratio for a fuzzy hit.
func WithFuzzyThreshold(threshold float64) Option {
	return func(nz *Normalizer) error {
		nz.fuzzyThreshold = threshold
		return nil
	}
}

// WithMinTokenLength sets the shortest token considered for fuzzy matching.
func WithMinTokenLength(n int) Option {
	return func(nz *Normalizer) error {
		nz.minTokenLength = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(nz *Normalizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		nz.logger = logger
		return nil
	}
}

// NewNormalizer creates a normalizer over the given taxonomy.
func NewNormalizer(taxonomy *Taxonomy, opts ...Option) (*Normalizer, error) {
	if taxonomy == nil {
		return nil, ErrTaxonomyRequired
	}

	nz := &Normalizer{
		taxonomy:       taxonomy,
		maxFuzzy:       DefaultMaxFuzzy,
		fuzzyThreshold: DefaultFuzzyThreshold,
		minTokenLength: DefaultMinTokenLength,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(nz); err != nil {
			return nil, err
		}
	}

	return nz, nil
}

// Taxonomy returns the taxonomy the normalizer resolves against.
func (nz *Normalizer) Taxonomy() *Taxonomy {
	return nz.taxonomy
}

// Normalize extracts canonical skills from text. Dictionary phrases are
// matched first, longest match winning. Up to maxFuzzy leftover tokens are
// then compared against the canonical keys by partial ratio. The result is
// sorted and deduplicated.
func (nz *Normalizer) Normalize(text string) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return []string{}
	}

	hits := make(map[string]bool)
	consumed := make([]bool, len(tokens))

	for i := 0; i < len(tokens); {
		matched := 0
		for n := min(nz.taxonomy.maxTokens, len(tokens)-i); n > 0; n-- {
			phrase := strings.Join(tokens[i:i+n], " ")
			if canon, ok := nz.taxonomy.phrases[phrase]; ok {
				hits[canon] = true
				matched = n
				break
			}
		}
		if matched == 0 {
			i++
			continue
		}
		for j := i; j < i+matched; j++ {
			consumed[j] = true
		}
		i += matched
	}

	for _, tok := range nz.leftovers(tokens, consumed) {
		canon, score := nz.bestCanonical(tok)
		if score >= nz.fuzzyThreshold {
			nz.logger.Debug("fuzzy skill match", "token", tok, "skill", canon, "score", score)
			hits[canon] = true
		}
	}

	out := make([]string, 0, len(hits))
	for skill := range hits {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// NormalizeList normalizes each entry of a skill list and unions the results.
// Entries that resolve to nothing are kept verbatim after case and
// whitespace normalization.
func (nz *Normalizer) NormalizeList(skills []string) []string {
	set := make(map[string]bool)
	for _, s := range skills {
		found := nz.Normalize(s)
		if len(found) == 0 {
			if n := strings.Join(strings.Fields(strings.ToLower(s)), " "); n != "" {
				set[n] = true
			}
			continue
		}
		for _, f := range found {
			set[f] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// leftovers picks the fuzzy candidates: the first maxFuzzy distinct tokens
// that are unconsumed, not stop words and at least minTokenLength long.
func (nz *Normalizer) leftovers(tokens []string, consumed []bool) []string {
	if nz.maxFuzzy == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []string
	for i, tok := range tokens {
		if consumed[i] || stopWords[tok] || len([]rune(tok)) < nz.minTokenLength || seen[tok] {
			continue
		}
		seen[tok] = true
		candidates = append(candidates, tok)
		if len(candidates) == nz.maxFuzzy {
			break
		}
	}

	return candidates
}

// bestCanonical returns the canonical key with the highest partial ratio.
// Ties resolve to the alphabetically first key.
func (nz *Normalizer) bestCanonical(token string) (string, float64) {
	best, bestScore := "", -1.0
	for _, canon := range nz.taxonomy.canonical {
		if score := partialRatio(token, canon); score > bestScore {
			best, bestScore = canon, score
		}
	}
	return best, bestScore
}
