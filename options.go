// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package matcher

import (
	"fmt"
	"log/slog"

	"github.com/Soo0803/ternswipe-matcher/ai"
	"github.com/Soo0803/ternswipe-matcher/assignment"
	"github.com/Soo0803/ternswipe-matcher/config"
	"github.com/Soo0803/ternswipe-matcher/explain"
	"github.com/Soo0803/ternswipe-matcher/metrics"
	"github.com/Soo0803/ternswipe-matcher/retrieval"
	"github.com/Soo0803/ternswipe-matcher/scoring"
	"github.com/Soo0803/ternswipe-matcher/signals"
	"github.com/Soo0803/ternswipe-matcher/skills"
)

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig       *ai.Config
	provider       ai.AIProvider
	inMemory       bool
	taxonomy       *skills.Taxonomy
	maxFuzzy       int
	fuzzyThreshold float64
	profile        scoring.Profile
	predictor      scoring.AcceptancePredictor
	aptitudeScale  float64
	annLimit       int
	lexicalLimit   int
	monitor        retrieval.Monitor
	resultLimit    int
	perSeekerTopN  int
	workers        int
	thresholds     explain.Thresholds
	metrics        *metrics.Manager
	logger         *slog.Logger
}

func defaultEngineOptions() *engineOptions {
	return &engineOptions{
		aiConfig:       ai.DefaultConfig(),
		maxFuzzy:       skills.DefaultMaxFuzzy,
		fuzzyThreshold: skills.DefaultFuzzyThreshold,
		profile:        scoring.CanonicalProfile(),
		predictor:      scoring.DefaultBlendPredictor(),
		aptitudeScale:  signals.DefaultAptitudeScale,
		annLimit:       retrieval.DefaultANNLimit,
		lexicalLimit:   retrieval.DefaultLexicalLimit,
		resultLimit:    DefaultResultLimit,
		perSeekerTopN:  assignment.DefaultPerSeekerTopN,
		workers:        1,
		thresholds:     explain.DefaultThresholds(),
		logger:         slog.Default(),
	}
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider uses provider instead of building one from the AI config.
// The engine closes it on Close.
func WithAIProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The path passed to NewEngine is ignored.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithTaxonomy replaces the built-in skill taxonomy.
func WithTaxonomy(taxonomy *skills.Taxonomy) EngineOption {
	return func(o *engineOptions) {
		o.taxonomy = taxonomy
	}
}

// WithFuzzyMatching bounds fuzzy skill matching.
func WithFuzzyMatching(maxTokens int, threshold float64) EngineOption {
	return func(o *engineOptions) {
		o.maxFuzzy = maxTokens
		o.fuzzyThreshold = threshold
	}
}

// WithProfile sets the scoring profile.
func WithProfile(profile scoring.Profile) EngineOption {
	return func(o *engineOptions) {
		o.profile = profile
	}
}

// WithPredictor sets the acceptance predictor.
func WithPredictor(predictor scoring.AcceptancePredictor) EngineOption {
	return func(o *engineOptions) {
		if predictor != nil {
			o.predictor = predictor
		}
	}
}

// WithAptitudeScale sets the maximum of the aptitude source scale.
func WithAptitudeScale(scale float64) EngineOption {
	return func(o *engineOptions) {
		o.aptitudeScale = scale
	}
}

// WithRetrievalLimits sets the dense and lexical retrieval depths.
func WithRetrievalLimits(ann, lexical int) EngineOption {
	return func(o *engineOptions) {
		o.annLimit = ann
		o.lexicalLimit = lexical
	}
}

// WithRetrievalMonitor observes every candidate generation.
func WithRetrievalMonitor(monitor retrieval.Monitor) EngineOption {
	return func(o *engineOptions) {
		o.monitor = monitor
	}
}

// WithResultLimit sets the number of results returned when a caller passes no limit.
func WithResultLimit(limit int) EngineOption {
	return func(o *engineOptions) {
		if limit > 0 {
			o.resultLimit = limit
		}
	}
}

// WithPerSeekerTopN caps the offers tried per seeker during assignment.
func WithPerSeekerTopN(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.perSeekerTopN = n
		}
	}
}

// WithWorkers sizes the pool used by RankBatch and Assign.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithExplainThresholds sets the thresholds used by ExplainOffers.
func WithExplainThresholds(t explain.Thresholds) EngineOption {
	return func(o *engineOptions) {
		o.thresholds = t
	}
}

// WithMetrics records engine activity on m.
func WithMetrics(m *metrics.Manager) EngineOption {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// OptionsFromConfig translates a loaded Config into engine options,
// reading the taxonomy and model files it names.
func OptionsFromConfig(cfg *config.Config) ([]EngineOption, error) {
	profile, err := scoring.ProfileByName(cfg.ScoringProfile)
	if err != nil {
		return nil, err
	}
	predictor, err := scoring.NewPredictor(cfg.Predictor, cfg.ModelFile)
	if err != nil {
		return nil, err
	}
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.EmbeddingHost),
		ai.WithEmbeddingModel(cfg.EmbeddingModel),
		ai.WithAPIToken(cfg.APIToken),
		ai.WithDimensions(cfg.EmbeddingDimensions),
		ai.WithRequestTimeout(cfg.EmbeddingTimeout),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding config: %w", err)
	}

	opts := []EngineOption{
		WithAIConfig(aiConfig),
		WithProfile(profile),
		WithPredictor(predictor),
		WithAptitudeScale(cfg.AptitudeScale),
		WithRetrievalLimits(cfg.KANN, cfg.KLexical),
		WithFuzzyMatching(cfg.MaxFuzzy, cfg.FuzzyThreshold),
		WithResultLimit(cfg.ResultLimit),
		WithPerSeekerTopN(cfg.PerSeekerTopN),
		WithWorkers(cfg.WorkerCount),
	}
	if cfg.DBPath == "" {
		opts = append(opts, WithInMemory())
	}
	if cfg.TaxonomyFile != "" {
		taxonomy, err := skills.LoadTaxonomy(cfg.TaxonomyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTaxonomy(taxonomy))
	}
	return opts, nil
}
