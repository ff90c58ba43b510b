package scoring

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/signals"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Features are the per-pair inputs an AcceptancePredictor sees.
type Features struct {
	Similarity   float64
	Coverage     float64
	Availability float64
	Aptitude     float64 // Normalized to [0, 1], neutral when unknown
	Reliability  float64 // Neutral when unknown
	Flags        core.BehaviorFlags
}

// AcceptancePredictor estimates the probability that a seeker accepts an offer.
type AcceptancePredictor interface {
	PredictAccept(f Features) float64
}

// PredictorFunc adapts a function to AcceptancePredictor.
type PredictorFunc func(f Features) float64

func (fn PredictorFunc) PredictAccept(f Features) float64 {
	return fn(f)
}

// Predictor names accepted by NewPredictor.
const (
	PredictorBlend    = "blend"
	PredictorLogistic = "logistic"
)

// NewPredictor builds a predictor by name. The logistic predictor reads
// its coefficients from modelFile.
func NewPredictor(name, modelFile string) (AcceptancePredictor, error) {
	switch name {
	case "", PredictorBlend:
		return DefaultBlendPredictor(), nil
	case PredictorLogistic:
		if modelFile == "" {
			return nil, fmt.Errorf("%s predictor: %w", name, ErrModelFileRequired)
		}
		return LoadLogisticModel(modelFile)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPredictor, name)
	}
}

// BlendPredictor is the closed-form weighted blend of similarity and availability.
type BlendPredictor struct {
	SimilarityWeight   float64
	AvailabilityWeight float64
}

// DefaultBlendPredictor weights similarity 0.65 and availability 0.35.
func DefaultBlendPredictor() BlendPredictor {
	return BlendPredictor{SimilarityWeight: 0.65, AvailabilityWeight: 0.35}
}

func (p BlendPredictor) PredictAccept(f Features) float64 {
	return signals.Clamp01(p.SimilarityWeight*f.Similarity + p.AvailabilityWeight*f.Availability)
}

// Feature names a LogisticPredictor may carry coefficients for.
const (
	FeatureSimilarity        = "similarity"
	FeatureCoverage          = "coverage"
	FeatureAvailability      = "availability"
	FeatureAptitude          = "aptitude"
	FeatureReliability       = "reliability"
	FeatureLackCommitment    = "lack_commitment"
	FeaturePoorCommunication = "poor_communication"
	FeatureWeakWriting       = "weak_writing"
	FeatureWeakQuantitative  = "weak_quantitative"
)

var knownFeatures = []string{
	FeatureSimilarity, FeatureCoverage, FeatureAvailability, FeatureAptitude,
	FeatureReliability, FeatureLackCommitment, FeaturePoorCommunication,
	FeatureWeakWriting, FeatureWeakQuantitative,
}

// LogisticPredictor is a trained logistic model: sigmoid(intercept + w·x).
type LogisticPredictor struct {
	Intercept    float64            `koanf:"intercept"`
	Coefficients map[string]float64 `koanf:"coefficients"`
}

// NewLogisticPredictor validates that every coefficient names a known feature.
func NewLogisticPredictor(intercept float64, coefficients map[string]float64) (*LogisticPredictor, error) {
	for name := range coefficients {
		if !slices.Contains(knownFeatures, name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
	}
	return &LogisticPredictor{Intercept: intercept, Coefficients: maps.Clone(coefficients)}, nil
}

// LoadLogisticModel reads a YAML model file of the form:
//
//	intercept: -1.2
//	coefficients:
//	  similarity: 2.4
//	  availability: 0.8
//	  lack_commitment: -0.9
func LoadLogisticModel(path string) (*LogisticPredictor, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}

	var m LogisticPredictor
	if err := k.Unmarshal("", &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return NewLogisticPredictor(m.Intercept, m.Coefficients)
}

func (p *LogisticPredictor) PredictAccept(f Features) float64 {
	z := p.Intercept
	for _, name := range knownFeatures {
		z += p.Coefficients[name] * featureValue(f, name)
	}
	return 1 / (1 + math.Exp(-z))
}

func featureValue(f Features, name string) float64 {
	switch name {
	case FeatureSimilarity:
		return f.Similarity
	case FeatureCoverage:
		return f.Coverage
	case FeatureAvailability:
		return f.Availability
	case FeatureAptitude:
		return f.Aptitude
	case FeatureReliability:
		return f.Reliability
	case FeatureLackCommitment:
		return indicator(f.Flags.LackCommitment)
	case FeaturePoorCommunication:
		return indicator(f.Flags.PoorCommunication)
	case FeatureWeakWriting:
		return indicator(f.Flags.WeakWriting)
	case FeatureWeakQuantitative:
		return indicator(f.Flags.WeakQuantitative)
	default:
		return 0
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
