// Package config defines the matcher's process configuration and its loader.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath is the Badger directory. Empty means in-memory.
	DBPath string `koanf:"db_path"`

	// EmbeddingHost is the OpenAI-compatible embedding endpoint.
	EmbeddingHost  string `koanf:"embedding_host"`
	EmbeddingModel string `koanf:"embedding_model"`
	APIToken       string `koanf:"api_token"`

	// EmbeddingDimensions is the expected vector length; 0 accepts the model's.
	EmbeddingDimensions int           `koanf:"embedding_dimensions"`
	EmbeddingTimeout    time.Duration `koanf:"embedding_timeout"`

	// KANN and KLexical bound dense and lexical retrieval depth.
	KANN     int `koanf:"k_ann"`
	KLexical int `koanf:"k_lexical"`

	// PerSeekerTopN caps the offers tried per seeker during assignment.
	PerSeekerTopN int `koanf:"per_seeker_top_n"`

	// ResultLimit is the default number of ranked results returned.
	ResultLimit int `koanf:"result_limit"`

	// WorkerCount sizes the batch ranking and assignment worker pools.
	WorkerCount int `koanf:"worker_count"`

	// ScoringProfile names the built-in scoring profile.
	ScoringProfile string `koanf:"scoring_profile"`

	// Predictor selects the acceptance predictor: blend or logistic.
	Predictor string `koanf:"predictor"`
	// ModelFile is the logistic model read when Predictor is logistic.
	ModelFile string `koanf:"model_file"`

	// TaxonomyFile replaces the built-in skill taxonomy when set.
	TaxonomyFile string `koanf:"taxonomy_file"`

	// AptitudeScale is the maximum of the aptitude source scale.
	AptitudeScale float64 `koanf:"aptitude_scale"`

	MaxFuzzy       int     `koanf:"max_fuzzy"`
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`

	// MetricsFile, when set, receives a Prometheus textfile after each command.
	MetricsFile string `koanf:"metrics_file"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		EmbeddingHost:    "http://localhost:11434/v1",
		EmbeddingModel:   "nomic-embed-text",
		APIToken:         "none",
		EmbeddingTimeout: 30 * time.Second,
		KANN:             200,
		KLexical:         100,
		PerSeekerTopN:    20,
		ResultLimit:      20,
		WorkerCount:      runtime.NumCPU(),
		ScoringProfile:   "v1-hard-gate",
		Predictor:        "blend",
		AptitudeScale:    4.0,
		MaxFuzzy:         2,
		FuzzyThreshold:   92,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.EmbeddingDimensions < 0 || c.EmbeddingTimeout < 0 {
		return fmt.Errorf("%w: embedding_dimensions and embedding_timeout must not be negative", ErrInvalidConfig)
	}
	if c.KANN < 1 {
		return fmt.Errorf("%w: k_ann must be positive", ErrInvalidConfig)
	}
	if c.KLexical < 0 {
		return fmt.Errorf("%w: k_lexical must not be negative", ErrInvalidConfig)
	}
	if c.PerSeekerTopN < 1 || c.ResultLimit < 1 || c.WorkerCount < 1 {
		return fmt.Errorf("%w: per_seeker_top_n, result_limit and worker_count must be positive", ErrInvalidConfig)
	}
	if c.AptitudeScale <= 0 {
		return fmt.Errorf("%w: aptitude_scale must be positive", ErrInvalidConfig)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("%w: fuzzy_threshold must be within 0-100", ErrInvalidConfig)
	}
	if c.Predictor == "logistic" && c.ModelFile == "" {
		return fmt.Errorf("%w: model_file is required for the logistic predictor", ErrInvalidConfig)
	}
	return nil
}
