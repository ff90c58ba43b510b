package skills

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultNormalizer(t *testing.T, opts ...Option) *Normalizer {
	t.Helper()
	nz, err := NewNormalizer(DefaultTaxonomy(), opts...)
	require.NoError(t, err)
	return nz
}

func TestNewNormalizer(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		nz, err := NewNormalizer(DefaultTaxonomy())
		require.NoError(t, err)
		assert.NotNil(t, nz)
		assert.Equal(t, DefaultMaxFuzzy, nz.maxFuzzy)
		assert.Equal(t, DefaultFuzzyThreshold, nz.fuzzyThreshold)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		nz, err := NewNormalizer(DefaultTaxonomy(), WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, nz.logger)
	})

	t.Run("nil taxonomy", func(t *testing.T) {
		_, err := NewNormalizer(nil)
		assert.Equal(t, ErrTaxonomyRequired, err)
	})
}

func TestNormalize_Dictionary(t *testing.T) {
	nz := newDefaultNormalizer(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "synonyms and multi-token phrases",
			text: "Experienced with PyTorch Lightning and OpenCV; some ML",
			want: []string{"computer vision", "machine learning", "pytorch"},
		},
		{
			name: "longest match wins",
			text: "image processing and natural language processing",
			want: []string{"computer vision", "nlp"},
		},
		{
			name: "symbols survive tokenization",
			text: "C++ and LaTeX, cpp",
			want: []string{"c++", "latex"},
		},
		{
			name: "canonical keys match themselves",
			text: "Signal Processing, MATLAB",
			want: []string{"matlab", "signal processing"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "punctuation only",
			text: " , ; ",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nz.Normalize(tt.text))
		})
	}
}

func TestNormalize_Fuzzy(t *testing.T) {
	t.Run("near-miss tokens map to canonical keys", func(t *testing.T) {
		nz := newDefaultNormalizer(t)
		got := nz.Normalize("tensorflow2 and matlab2023")
		assert.Equal(t, []string{"matlab", "tensorflow"}, got)
	})

	t.Run("fuzzy attempts are capped", func(t *testing.T) {
		nz := newDefaultNormalizer(t, WithMaxFuzzy(1))
		got := nz.Normalize("tensorflow2 and matlab2023")
		assert.Equal(t, []string{"tensorflow"}, got)
	})

	t.Run("candidates are taken in order of appearance", func(t *testing.T) {
		nz := newDefaultNormalizer(t)
		// Two short leftovers come first and use up the attempts
		assert.Empty(t, nz.Normalize("built models with tensorflow2"))
		assert.Equal(t, []string{"tensorflow"}, nz.Normalize("built tensorflow2 models"))
	})

	t.Run("fuzzy matching can be disabled", func(t *testing.T) {
		nz := newDefaultNormalizer(t, WithMaxFuzzy(0))
		assert.Empty(t, nz.Normalize("tensorflow2"))
	})

	t.Run("low confidence matches are rejected", func(t *testing.T) {
		nz := newDefaultNormalizer(t)
		assert.Empty(t, nz.Normalize("pytorh"))
	})

	t.Run("short tokens are skipped", func(t *testing.T) {
		nz := newDefaultNormalizer(t, WithMinTokenLength(12))
		assert.Empty(t, nz.Normalize("tensorflow2"))
	})

	t.Run("dictionary hits are never fuzzy candidates", func(t *testing.T) {
		nz := newDefaultNormalizer(t)
		assert.Equal(t, []string{"python"}, nz.Normalize("python3"))
	})
}

func TestNormalize_Deterministic(t *testing.T) {
	nz := newDefaultNormalizer(t)
	text := "pandas, numpy, keras, gnn and dsp with matlab2023"
	want := nz.Normalize(text)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, nz.Normalize(text))
		}()
	}
	wg.Wait()
}

func TestNormalizeList(t *testing.T) {
	nz := newDefaultNormalizer(t)
	got := nz.NormalizeList([]string{"Py", "Deep  Fishing", "torch", "python"})
	assert.Equal(t, []string{"deep fishing", "python", "pytorch"}, got)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100.0, ratio("", ""))
	assert.Equal(t, 100.0, ratio("nlp", "nlp"))
	assert.Equal(t, 100.0, partialRatio("matlab", "matlab2023"))
	assert.Equal(t, 100.0, partialRatio("matlab2023", "matlab"))
	assert.Equal(t, 0.0, partialRatio("", "python"))
	assert.InDelta(t, 83.333, partialRatio("pytorh", "pytorch"), 0.01)
}

func TestNewTaxonomy(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		_, err := NewTaxonomy(nil)
		assert.ErrorIs(t, err, ErrEmptyTaxonomy)
	})

	t.Run("synonym claimed twice", func(t *testing.T) {
		_, err := NewTaxonomy(map[string][]string{
			"statistics": {"stats"},
			"stata":      {"stats"},
		})
		assert.ErrorIs(t, err, ErrDuplicateSynonym)
	})

	t.Run("synonym collides with another canonical key", func(t *testing.T) {
		_, err := NewTaxonomy(map[string][]string{
			"python": {},
			"py":     {"python"},
		})
		assert.ErrorIs(t, err, ErrDuplicateSynonym)
	})

	t.Run("blank canonical key", func(t *testing.T) {
		_, err := NewTaxonomy(map[string][]string{" ": {"x"}})
		assert.ErrorIs(t, err, ErrInvalidCanonical)
	})

	t.Run("canonical keys are sorted", func(t *testing.T) {
		tax := DefaultTaxonomy()
		canon := tax.Canonical()
		assert.Len(t, canon, 12)
		assert.Equal(t, "c++", canon[0])
		assert.Equal(t, "tensorflow", canon[len(canon)-1])
	})

	t.Run("lookup normalizes input", func(t *testing.T) {
		tax := DefaultTaxonomy()
		canon, ok := tax.Lookup("  Natural Language   Processing ")
		assert.True(t, ok)
		assert.Equal(t, "nlp", canon)

		_, ok = tax.Lookup("cooking")
		assert.False(t, ok)
	})
}

func TestLoadTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	content := `
skills:
  go: [golang]
  rust: [rustlang, rust lang]
  statistics: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tax, err := LoadTaxonomy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust", "statistics"}, tax.Canonical())

	canon, ok := tax.Lookup("Golang")
	assert.True(t, ok)
	assert.Equal(t, "go", canon)

	nz, err := NewNormalizer(tax)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, nz.Normalize("golang and rust lang"))

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
