package indexing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Soo0803/ternswipe-matcher/ai"
	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/storage"
	"github.com/panjf2000/ants/v2"
)

// Config holds configuration for an indexing run.
type Config struct {
	// BatchSize is the number of blobs sent per embedding request
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding request
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay
	MaxRetryDelay time.Duration

	// PoolSize is the number of batches embedded concurrently
	PoolSize int

	// Force re-embeds records even when their blob is unchanged
	Force bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		MaxRetryDelay:  30 * time.Second,
		PoolSize:       max(runtime.NumCPU()/2, 1),
	}
}

// Stats summarizes an indexing run.
type Stats struct {
	Embedded int // Records whose embedding was written
	Skipped  int // Records whose stored embedding was current
	Failed   int // Records in batches that could not be embedded or stored
}

// Add returns the field-wise sum of two runs.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Embedded: s.Embedded + o.Embedded,
		Skipped:  s.Skipped + o.Skipped,
		Failed:   s.Failed + o.Failed,
	}
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) Option {
	return func(ix *Indexer) {
		if config != nil {
			ix.config = config
		}
	}
}

// WithProgress writes progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(ix *Indexer) {
		ix.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// pending is one record awaiting an embedding.
type pending struct {
	owner core.ID
	blob  string
	hash  uint64
}

// Indexer embeds seekers and offers and persists the vectors.
type Indexer struct {
	seekers    storage.SeekerRepository
	offers     storage.OfferRepository
	embeddings storage.EmbeddingRepository
	embedder   ai.Embedder
	config     *Config
	pool       *ants.Pool
	progress   io.Writer
	logger     *slog.Logger
}

// NewIndexer creates an indexer. Call Release when done.
func NewIndexer(
	seekers storage.SeekerRepository,
	offers storage.OfferRepository,
	embeddings storage.EmbeddingRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Indexer, error) {
	if seekers == nil || offers == nil || embeddings == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ix := &Indexer{
		seekers:    seekers,
		offers:     offers,
		embeddings: embeddings,
		embedder:   embedder,
		config:     DefaultConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.config.BatchSize = max(ix.config.BatchSize, 1)
	ix.config.MaxRetries = max(ix.config.MaxRetries, 1)
	ix.logger = ix.logger.With("component", "indexer")

	pool, err := ants.NewPool(max(ix.config.PoolSize, 1))
	if err != nil {
		return nil, err
	}
	ix.pool = pool
	return ix, nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// IndexSeekers embeds the given seekers, or every seeker when ids is empty.
// Unknown IDs are ignored.
func (ix *Indexer) IndexSeekers(ctx context.Context, ids ...core.ID) (Stats, error) {
	var (
		seekers []*core.Seeker
		err     error
	)
	if len(ids) == 0 {
		seekers, err = ix.seekers.ListSeekers(ctx)
	} else {
		seekers, err = ix.seekers.GetSeekers(ctx, ids...)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load seekers: %w", err)
	}

	blobs := make([]pending, len(seekers))
	for i, s := range seekers {
		blob := SeekerBlob(s)
		blobs[i] = pending{owner: s.ID, blob: blob, hash: core.ContentHash(blob)}
	}
	return ix.index(ctx, core.KindSeeker, blobs)
}

// IndexOffers embeds the given offers, or every offer when ids is empty.
// Closed offers are embedded too so they are ready when reopened.
func (ix *Indexer) IndexOffers(ctx context.Context, ids ...core.ID) (Stats, error) {
	var (
		offers []*core.Offer
		err    error
	)
	if len(ids) == 0 {
		offers, err = ix.offers.ListOffers(ctx)
	} else {
		offers, err = ix.offers.GetOffers(ctx, ids...)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load offers: %w", err)
	}

	blobs := make([]pending, len(offers))
	for i, o := range offers {
		blob := OfferBlob(o)
		blobs[i] = pending{owner: o.ID, blob: blob, hash: core.ContentHash(blob)}
	}
	return ix.index(ctx, core.KindOffer, blobs)
}

// IndexAll embeds every seeker and offer.
func (ix *Indexer) IndexAll(ctx context.Context) (Stats, error) {
	seekerStats, err := ix.IndexSeekers(ctx)
	if err != nil {
		return seekerStats, err
	}
	offerStats, err := ix.IndexOffers(ctx)
	return seekerStats.Add(offerStats), err
}

func (ix *Indexer) index(ctx context.Context, kind core.EntityKind, items []pending) (Stats, error) {
	var stats Stats

	todo := make([]pending, 0, len(items))
	for _, item := range items {
		current, err := ix.isCurrent(ctx, kind, item)
		if err != nil {
			return stats, err
		}
		if current {
			stats.Skipped++
			continue
		}
		todo = append(todo, item)
	}

	ix.logger.Info("indexing embeddings", "kind", kind, "records", len(items), "stale", len(todo))
	if len(todo) == 0 {
		return stats, nil
	}

	tracker := NewProgressTracker(ix.progress, "Embedding "+kind.String()+"s", len(todo), ix.config.ReportInterval)
	tracker.Start()
	defer tracker.Finish()

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	record := func(batch []pending, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			stats.Failed += len(batch)
			errs = append(errs, err)
		} else {
			stats.Embedded += len(batch)
		}
		tracker.Increment(len(batch))
	}

	for start := 0; start < len(todo); start += ix.config.BatchSize {
		batch := todo[start:min(start+ix.config.BatchSize, len(todo))]
		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			record(batch, ix.processBatch(ctx, kind, batch))
		})
		if err != nil {
			wg.Done()
			record(batch, fmt.Errorf("failed to schedule batch: %w", err))
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		ix.logger.Error("indexing finished with failures", "kind", kind, "failed", stats.Failed)
	}
	return stats, errors.Join(errs...)
}

// isCurrent reports whether the stored embedding was computed from the
// same blob by the same model.
func (ix *Indexer) isCurrent(ctx context.Context, kind core.EntityKind, item pending) (bool, error) {
	if ix.config.Force {
		return false, nil
	}
	existing, err := ix.embeddings.GetEmbedding(ctx, kind, item.owner)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read embedding for %s %s: %w", kind, item.owner, err)
	}
	return existing.ContentHash == item.hash && existing.Model == ix.embedder.Model(), nil
}

// processBatch embeds one batch and stores the normalized vectors.
func (ix *Indexer) processBatch(ctx context.Context, kind core.EntityKind, batch []pending) error {
	texts := make([]string, len(batch))
	for i, item := range batch {
		texts[i] = item.blob
	}

	var vectors [][]float32
	backoff := Backoff{Attempts: ix.config.MaxRetries, Base: ix.config.RetryDelay, Max: ix.config.MaxRetryDelay}
	err := backoff.Do(ctx, ix.logger, func() error {
		var err error
		vectors, err = ix.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", ix.config.MaxRetries, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}

	model := ix.embedder.Model()
	embeddings := make([]*core.Embedding, len(batch))
	for i, item := range batch {
		embeddings[i] = &core.Embedding{
			Owner:       item.owner,
			Kind:        kind,
			Vector:      NormalizeVector(vectors[i]),
			ContentHash: item.hash,
			Model:       model,
		}
	}

	if err := ix.embeddings.PutEmbeddings(ctx, embeddings...); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}
	return nil
}
