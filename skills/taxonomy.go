package skills

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Taxonomy maps synonyms to canonical skills. Every synonym resolves to
// exactly one canonical key, and every canonical key resolves to itself.
type Taxonomy struct {
	canonical []string          // Sorted canonical keys
	phrases   map[string]string // Tokenized synonym phrase -> canonical key
	maxTokens int               // Longest phrase in tokens
}

// NewTaxonomy builds a Taxonomy from a canonical-to-synonyms table.
// Keys and synonyms are normalized the same way input text is.
func NewTaxonomy(table map[string][]string) (*Taxonomy, error) {
	if len(table) == 0 {
		return nil, ErrEmptyTaxonomy
	}

	t := &Taxonomy{
		phrases: make(map[string]string),
	}

	for key := range table {
		canon := strings.Join(tokenize(key), " ")
		if canon == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCanonical, key)
		}
		if _, ok := t.phrases[canon]; ok {
			return nil, fmt.Errorf("%w: canonical key %q declared twice", ErrDuplicateSynonym, canon)
		}
		t.canonical = append(t.canonical, canon)
		t.phrases[canon] = canon
	}

	for key, synonyms := range table {
		canon := strings.Join(tokenize(key), " ")
		for _, syn := range synonyms {
			tokens := tokenize(syn)
			if len(tokens) == 0 {
				continue
			}
			phrase := strings.Join(tokens, " ")
			if existing, ok := t.phrases[phrase]; ok && existing != canon {
				return nil, fmt.Errorf("%w: %q maps to %q and %q", ErrDuplicateSynonym, phrase, existing, canon)
			}
			t.phrases[phrase] = canon
		}
	}

	for phrase := range t.phrases {
		if n := strings.Count(phrase, " ") + 1; n > t.maxTokens {
			t.maxTokens = n
		}
	}
	sort.Strings(t.canonical)

	return t, nil
}

// DefaultTaxonomy returns the built-in research skill taxonomy.
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(map[string][]string{
		"python":                {"py", "python3"},
		"pytorch":               {"torch", "pytorch lightning", "torchscript"},
		"tensorflow":            {"tf", "keras"},
		"signal processing":     {"dsp", "fourier", "spectral analysis"},
		"machine learning":      {"ml", "supervised learning", "unsupervised learning"},
		"data analysis":         {"pandas", "numpy", "data wrangling"},
		"computer vision":       {"cv", "opencv", "image processing"},
		"nlp":                   {"natural language processing", "text mining"},
		"graph neural networks": {"gnn", "graph nets"},
		"matlab":                {},
		"c++":                   {"cpp"},
		"latex":                 {},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTaxonomy reads a YAML taxonomy file of the form:
//
//	skills:
//	  python: [py, python3]
//	  latex: []
func LoadTaxonomy(path string) (*Taxonomy, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", path, err)
	}

	table := make(map[string][]string)
	if err := k.Unmarshal("skills", &table); err != nil {
		return nil, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}
	return NewTaxonomy(table)
}

// Canonical returns the sorted canonical skill keys.
func (t *Taxonomy) Canonical() []string {
	out := make([]string, len(t.canonical))
	copy(out, t.canonical)
	return out
}

// Lookup resolves a phrase to its canonical key.
func (t *Taxonomy) Lookup(phrase string) (string, bool) {
	canon, ok := t.phrases[strings.Join(tokenize(phrase), " ")]
	return canon, ok
}
