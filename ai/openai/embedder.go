package openai

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Soo0803/ternswipe-matcher/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// defaultBatchSize caps the texts sent per embedding request.
const defaultBatchSize = 64

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// Every returned vector has the same length: the configured Dimensions,
// or else the length of the first vector the service produced.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	timeout  time.Duration
	dims     atomic.Int64
	logger   *slog.Logger
}

// newEmbedder returns the concrete type for Provider.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIToken),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(defaultBatchSize),
	)
	if err != nil {
		return nil, err
	}

	e := &Embedder{
		embedder: embedder,
		model:    config.EmbeddingModel,
		timeout:  config.RequestTimeout,
		logger:   slog.Default().With("component", "openai-embedder", "model", config.EmbeddingModel),
	}
	e.dims.Store(int64(config.Dimensions))
	return e, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// Model returns the configured embedding model.
func (e *Embedder) Model() string {
	return e.model
}

// EmbedText embeds one seeker or offer blob.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds a batch of blobs, preserving order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return e.embed(ctx, texts)
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding model %s returned %d vectors for %d texts", e.model, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if err := e.checkDimensions(len(v)); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}

	e.logger.Debug("generated embeddings", "count", len(texts), "elapsed", time.Since(start))
	return vectors, nil
}

// checkDimensions pins the first observed length when none was configured.
func (e *Embedder) checkDimensions(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: model %s returned an empty vector", ai.ErrDimensionMismatch, e.model)
	}
	if e.dims.CompareAndSwap(0, int64(n)) {
		return nil
	}
	if want := e.dims.Load(); int64(n) != want {
		return fmt.Errorf("%w: model %s returned %d values, want %d", ai.ErrDimensionMismatch, e.model, n, want)
	}
	return nil
}
