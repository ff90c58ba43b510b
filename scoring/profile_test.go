package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileByName(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := ProfileByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
		assert.NoError(t, p.Validate())
		assert.False(t, p.Confirmed)
	}

	p, err := ProfileByName("")
	require.NoError(t, err)
	assert.Equal(t, ProfileCanonical, p.Name)

	_, err = ProfileByName("v9")
	assert.ErrorIs(t, err, ErrUnknownProfile)

	assert.Equal(t, []string{ProfileEmbeddingFit, ProfileCanonical, ProfileSoftGate}, ProfileNames())
}

func TestProfile_Validate(t *testing.T) {
	p := CanonicalProfile()
	p.Penalties.WeakWriting = -0.1
	assert.ErrorIs(t, p.Validate(), ErrInvalidProfile)

	p = CanonicalProfile()
	p.Gate = nil
	assert.ErrorIs(t, p.Validate(), ErrInvalidProfile)

	assert.Equal(t, "v1-hard-gate (v1, gate=hard)", CanonicalProfile().String())
}

func TestGates(t *testing.T) {
	hard := HardGate{}
	assert.Equal(t, 0.5, hard.Multiplier(0.29))
	assert.Equal(t, 0.85, hard.Multiplier(0.3))
	assert.Equal(t, 0.85, hard.Multiplier(0.49))
	assert.Equal(t, 1.0, hard.Multiplier(0.5))

	assert.Equal(t, 0.2, RawCoverageGate(0))
	assert.Equal(t, 0.5, RawCoverageGate(0.33))
	assert.Equal(t, 0.85, RawCoverageGate(0.34))
	assert.Equal(t, 1.0, RawCoverageGate(0.5))

	soft := DefaultSoftGate()
	assert.InDelta(t, 0.952, soft.Multiplier(0), 1e-9)
	assert.InDelta(t, 0.97, soft.Multiplier(0.2), 1e-9)
	assert.InDelta(t, 0.991, soft.Multiplier(0.4), 1e-9)
	assert.InDelta(t, 1.0, soft.Multiplier(0.8), 1e-9)

	for _, g := range []GatePolicy{NoGate{}, hard, soft} {
		prev := 0.0
		for c := 0.0; c <= 1.0; c += 0.05 {
			m := g.Multiplier(c)
			assert.GreaterOrEqual(t, m, prev, "%s at %.2f", g.Name(), c)
			assert.LessOrEqual(t, m, 1.0)
			prev = m
		}
	}
}

func TestDisciplineBonus(t *testing.T) {
	b := DefaultDisciplineBonus()

	t.Run("two or more overlaps", func(t *testing.T) {
		got := b.Amount("Computer Science", []string{"Python", "NLP", "latex"}, 1)
		assert.InDelta(t, 0.015, got, 1e-9)
	})

	t.Run("single overlap earns the related fraction", func(t *testing.T) {
		got := b.Amount("BSc Mathematics", []string{"statistics", "latex"}, 0.5)
		assert.InDelta(t, 0.0075*0.8, got, 1e-9)
	})

	t.Run("whole words only", func(t *testing.T) {
		assert.Zero(t, b.Amount("Economics", []string{"python", "nlp"}, 1))
		assert.Zero(t, b.Amount("Chemical Engineering", []string{"python", "nlp"}, 1))
	})

	t.Run("disabled or empty", func(t *testing.T) {
		assert.Zero(t, DisciplineBonus{}.Amount("cs", []string{"python", "nlp"}, 1))
		assert.Zero(t, b.Amount("", []string{"python", "nlp"}, 1))
		assert.Zero(t, b.Amount("cs", nil, 1))
	})
}

func TestPenalties_Total(t *testing.T) {
	p := DefaultPenalties()
	assert.Zero(t, p.Total(core.BehaviorFlags{}))
	assert.InDelta(t, 0.17, p.Total(core.BehaviorFlags{LackCommitment: true, PoorCommunication: true}), 1e-9)
}

func TestPredictors(t *testing.T) {
	f := Features{Similarity: 0.8, Availability: 0.7}

	t.Run("blend", func(t *testing.T) {
		assert.InDelta(t, 0.765, DefaultBlendPredictor().PredictAccept(f), 1e-9)
		assert.Equal(t, 1.0, DefaultBlendPredictor().PredictAccept(Features{Similarity: 2, Availability: 2}))
	})

	t.Run("logistic", func(t *testing.T) {
		p, err := NewLogisticPredictor(0, nil)
		require.NoError(t, err)
		assert.Equal(t, 0.5, p.PredictAccept(f))

		p, err = NewLogisticPredictor(-1, map[string]float64{FeatureSimilarity: 2, FeatureLackCommitment: -3})
		require.NoError(t, err)
		clean := p.PredictAccept(f)
		assert.Greater(t, clean, 0.5)
		f.Flags.LackCommitment = true
		assert.Less(t, p.PredictAccept(f), clean)

		_, err = NewLogisticPredictor(0, map[string]float64{"gpa_squared": 1})
		assert.ErrorIs(t, err, ErrUnknownFeature)
	})

	t.Run("load model file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.yaml")
		require.NoError(t, os.WriteFile(path, []byte("intercept: 0.5\ncoefficients:\n  similarity: 1.5\n  availability: 0.5\n"), 0o644))

		p, err := NewPredictor(PredictorLogistic, path)
		require.NoError(t, err)
		lp := p.(*LogisticPredictor)
		assert.Equal(t, 0.5, lp.Intercept)
		assert.Equal(t, map[string]float64{"similarity": 1.5, "availability": 0.5}, lp.Coefficients)
	})

	t.Run("selection errors", func(t *testing.T) {
		_, err := NewPredictor(PredictorLogistic, "")
		assert.ErrorIs(t, err, ErrModelFileRequired)

		_, err = NewPredictor("lgbm", "")
		assert.ErrorIs(t, err, ErrUnknownPredictor)

		_, err = LoadLogisticModel(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)

		p, err := NewPredictor("", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultBlendPredictor(), p)
	})
}
