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


// Package matcher ranks offers for seekers, seekers for offers, and
// greedily assigns seekers to offers under capacity limits.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Soo0803/ternswipe-matcher/ai"
	"github.com/Soo0803/ternswipe-matcher/ai/openai"
	"github.com/Soo0803/ternswipe-matcher/assignment"
	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/explain"
	"github.com/Soo0803/ternswipe-matcher/indexing"
	"github.com/Soo0803/ternswipe-matcher/lexical"
	"github.com/Soo0803/ternswipe-matcher/metrics"
	"github.com/Soo0803/ternswipe-matcher/retrieval"
	"github.com/Soo0803/ternswipe-matcher/scoring"
	"github.com/Soo0803/ternswipe-matcher/signals"
	"github.com/Soo0803/ternswipe-matcher/skills"
	"github.com/Soo0803/ternswipe-matcher/storage"
	"github.com/Soo0803/ternswipe-matcher/storage/badger"
	"github.com/panjf2000/ants/v2"
)

// DefaultResultLimit is the number of ranked results returned when a caller passes no limit.
const DefaultResultLimit = 20

// Engine wires storage, embeddings, retrieval and scoring together.
// It is safe for concurrent use.
type Engine struct {
	repos       *badger.Repositories
	provider    ai.AIProvider
	normalizer  *skills.Normalizer
	offerIndex  *lexical.Handle
	seekerIndex *lexical.Handle
	generator   *retrieval.Generator
	scorer      *scoring.Scorer
	pool        *ants.Pool
	options     *engineOptions
	metrics     *metrics.Manager
	logger      *slog.Logger
	closeOnce   sync.Once
}

// NewEngine opens the store at filePath and builds every component.
// The lexical indexes are built from the stored records before returning.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := defaultEngineOptions()
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}
	repos, err := badger.NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	e, err := newEngine(repos, options)
	if err != nil {
		repos.Close()
		return nil, err
	}
	if err := e.RefreshLexicalIndex(context.Background()); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func newEngine(repos *badger.Repositories, options *engineOptions) (*Engine, error) {
	logger := options.logger

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	taxonomy := options.taxonomy
	if taxonomy == nil {
		taxonomy = skills.DefaultTaxonomy()
	}
	normalizer, err := skills.NewNormalizer(taxonomy,
		skills.WithMaxFuzzy(options.maxFuzzy),
		skills.WithFuzzyThreshold(options.fuzzyThreshold),
		skills.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	offerIndex := lexical.NewHandle(nil)
	seekerIndex := lexical.NewHandle(nil)
	genOpts := []retrieval.Option{
		retrieval.WithANNLimit(options.annLimit),
		retrieval.WithLexicalLimit(options.lexicalLimit),
		retrieval.WithOfferIndex(offerIndex),
		retrieval.WithSeekerIndex(seekerIndex),
		retrieval.WithLogger(logger),
	}
	if options.monitor != nil {
		genOpts = append(genOpts, retrieval.WithMonitor(options.monitor))
	}
	generator, err := retrieval.NewGenerator(repos.Seekers, repos.Offers, repos.Embeddings, genOpts...)
	if err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer(
		scoring.WithProfile(options.profile),
		scoring.WithPredictor(options.predictor),
		scoring.WithAptitudeScale(options.aptitudeScale),
		scoring.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(options.workers)
	if err != nil {
		return nil, err
	}

	return &Engine{
		repos:       repos,
		provider:    provider,
		normalizer:  normalizer,
		offerIndex:  offerIndex,
		seekerIndex: seekerIndex,
		generator:   generator,
		scorer:      scorer,
		pool:        pool,
		options:     options,
		metrics:     options.metrics,
		logger:      logger.With("component", "engine"),
	}, nil
}

// Close releases the worker pool, the AI provider and the store.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.pool.Release()
		if perr := e.provider.Close(); perr != nil {
			e.logger.Error("error closing AI provider", "err", perr)
		}
		if err = e.repos.Close(); err != nil {
			e.logger.Error("error closing storage", "err", err)
		}
	})
	return err
}

// Seekers returns the seeker repository.
func (e *Engine) Seekers() storage.SeekerRepository {
	return e.repos.Seekers
}

// Offers returns the offer repository.
func (e *Engine) Offers() storage.OfferRepository {
	return e.repos.Offers
}

// Embeddings returns the embedding repository.
func (e *Engine) Embeddings() storage.EmbeddingRepository {
	return e.repos.Embeddings
}

// Scorer returns the pair scorer.
func (e *Engine) Scorer() *scoring.Scorer {
	return e.scorer
}

// Metrics returns the metrics manager, which may be nil.
func (e *Engine) Metrics() *metrics.Manager {
	return e.metrics
}

// NormalizeSkills extracts canonical skills from free text.
func (e *Engine) NormalizeSkills(text string) []string {
	return e.normalizer.Normalize(text)
}

// PutSeekers normalizes skills, stores the seekers and refreshes the
// lexical indexes. Free-text skills are merged into the skill list.
func (e *Engine) PutSeekers(ctx context.Context, seekers ...*core.Seeker) error {
	for _, s := range seekers {
		if s == nil {
			continue
		}
		merged := e.normalizer.NormalizeList(s.Skills)
		if s.SkillsText != "" {
			merged = e.normalizer.NormalizeList(append(merged, e.normalizer.Normalize(s.SkillsText)...))
		}
		s.Skills = merged
	}
	if err := e.repos.Seekers.PutSeekers(ctx, seekers...); err != nil {
		return err
	}
	return e.RefreshLexicalIndex(ctx)
}

// PutOffers normalizes required skills, stores the offers and refreshes
// the lexical indexes.
func (e *Engine) PutOffers(ctx context.Context, offers ...*core.Offer) error {
	for _, o := range offers {
		if o != nil {
			o.RequiredSkills = e.normalizer.NormalizeList(o.RequiredSkills)
		}
	}
	if err := e.repos.Offers.PutOffers(ctx, offers...); err != nil {
		return err
	}
	return e.RefreshLexicalIndex(ctx)
}

// RefreshLexicalIndex rebuilds both lexical indexes from the stored
// records and swaps them in. Searches in flight keep the old index.
func (e *Engine) RefreshLexicalIndex(ctx context.Context) error {
	offers, err := e.repos.Offers.ListOffers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list offers: %w", err)
	}
	seekers, err := e.repos.Seekers.ListSeekers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list seekers: %w", err)
	}

	offerDocs := make([]lexical.Document, 0, len(offers))
	for _, o := range offers {
		offerDocs = append(offerDocs, lexical.Document{ID: o.ID, Text: retrieval.OfferDocument(o)})
	}
	seekerDocs := make([]lexical.Document, 0, len(seekers))
	for _, s := range seekers {
		seekerDocs = append(seekerDocs, lexical.Document{ID: s.ID, Text: retrieval.SeekerQuery(s)})
	}

	e.offerIndex.Swap(lexical.NewIndex(offerDocs))
	e.seekerIndex.Swap(lexical.NewIndex(seekerDocs))
	e.metrics.SetLexicalDocuments(core.KindOffer, len(offerDocs))
	e.metrics.SetLexicalDocuments(core.KindSeeker, len(seekerDocs))

	e.logger.Debug("lexical indexes refreshed", "offers", len(offerDocs), "seekers", len(seekerDocs))
	return nil
}

func (e *Engine) limit(limit int) int {
	if limit <= 0 {
		return e.options.resultLimit
	}
	return limit
}

// RankOffers returns the seeker's best open offers, highest score first.
// A missing seeker or embedding is reported through the outcome.
func (e *Engine) RankOffers(ctx context.Context, seekerID core.ID, limit int) ([]core.Candidate, core.Outcome, error) {
	start := time.Now()
	candidates, outcome, err := e.rankOffers(ctx, seekerID, 0, e.limit(limit))
	e.observe(metrics.DirectionOffers, outcome, len(candidates), start, err)
	return candidates, outcome, err
}

// ShortlistOffers scores only the seeker's width most similar open offers
// and returns all of them, highest score first. Offers further down the
// retrieval order are never scored.
func (e *Engine) ShortlistOffers(ctx context.Context, seekerID core.ID, width int) ([]core.Candidate, core.Outcome, error) {
	start := time.Now()
	candidates, outcome, err := e.rankOffers(ctx, seekerID, width, 0)
	e.observe(metrics.DirectionOffers, outcome, len(candidates), start, err)
	return candidates, outcome, err
}

// rankOffers scores the first width retrieval matches (all when width is
// not positive) and keeps the best limit of them.
func (e *Engine) rankOffers(ctx context.Context, seekerID core.ID, width, limit int) ([]core.Candidate, core.Outcome, error) {
	res, err := e.generator.OffersForSeeker(ctx, seekerID)
	if err != nil {
		return nil, core.OutcomeOK, err
	}
	if res.Outcome != core.OutcomeOK {
		return []core.Candidate{}, res.Outcome, nil
	}

	seeker, err := e.repos.Seekers.GetSeeker(ctx, seekerID)
	if errors.Is(err, storage.ErrNotFound) {
		return []core.Candidate{}, core.OutcomeNotFound, nil
	}
	if err != nil {
		return nil, core.OutcomeOK, fmt.Errorf("failed to load seeker %s: %w", seekerID, err)
	}

	matches := res.Matches
	if width > 0 && len(matches) > width {
		matches = matches[:width]
	}
	ids, sims := splitMatches(matches)
	offers, err := e.repos.Offers.GetOffers(ctx, ids...)
	if err != nil {
		return nil, core.OutcomeOK, fmt.Errorf("failed to load offers: %w", err)
	}

	ranked := e.scorer.ScoreOffers(seeker, offers, sims)
	return truncate(ranked, limit), core.OutcomeOK, nil
}

// RankSeekers returns the offer's best seekers, highest score first.
func (e *Engine) RankSeekers(ctx context.Context, offerID core.ID, limit int) ([]core.Candidate, core.Outcome, error) {
	start := time.Now()
	candidates, outcome, err := e.rankSeekers(ctx, offerID, e.limit(limit))
	e.observe(metrics.DirectionSeekers, outcome, len(candidates), start, err)
	return candidates, outcome, err
}

func (e *Engine) rankSeekers(ctx context.Context, offerID core.ID, limit int) ([]core.Candidate, core.Outcome, error) {
	res, err := e.generator.SeekersForOffer(ctx, offerID)
	if err != nil {
		return nil, core.OutcomeOK, err
	}
	if res.Outcome != core.OutcomeOK {
		return []core.Candidate{}, res.Outcome, nil
	}

	offer, err := e.repos.Offers.GetOffer(ctx, offerID)
	if errors.Is(err, storage.ErrNotFound) {
		return []core.Candidate{}, core.OutcomeNotFound, nil
	}
	if err != nil {
		return nil, core.OutcomeOK, fmt.Errorf("failed to load offer %s: %w", offerID, err)
	}

	ids, sims := splitMatches(res.Matches)
	seekers, err := e.repos.Seekers.GetSeekers(ctx, ids...)
	if err != nil {
		return nil, core.OutcomeOK, fmt.Errorf("failed to load seekers: %w", err)
	}

	ranked := e.scorer.ScoreSeekers(offer, seekers, sims)
	return truncate(ranked, limit), core.OutcomeOK, nil
}

// ScorePairs scores a seeker against explicitly chosen offers, open or
// not. Similarity is the cosine of the stored embeddings, clamped by the
// scorer; an offer without an embedding scores with similarity 0. Unknown offers are skipped.
func (e *Engine) ScorePairs(ctx context.Context, seekerID core.ID, offerIDs []core.ID) ([]core.Candidate, core.Outcome, error) {
	seeker, err := e.repos.Seekers.GetSeeker(ctx, seekerID)
	if errors.Is(err, storage.ErrNotFound) {
		return []core.Candidate{}, core.OutcomeNotFound, nil
	}
	if err != nil {
		return nil, core.OutcomeOK, fmt.Errorf("failed to load seeker %s: %w", seekerID, err)
	}

	seekerVec, err := e.repos.Embeddings.GetEmbedding(ctx, core.KindSeeker, seekerID)
	if errors.Is(err, storage.ErrNotFound) {
		return []core.Candidate{}, core.OutcomeEmbeddingMissing, nil
	}
	if err != nil {
		return nil, core.OutcomeOK, fmt.Errorf("failed to load embedding for seeker %s: %w", seekerID, err)
	}

	offers, err := e.repos.Offers.GetOffers(ctx, offerIDs...)
	if err != nil {
		return nil, core.OutcomeOK, fmt.Errorf("failed to load offers: %w", err)
	}

	sims := make(map[core.ID]float64, len(offers))
	for _, o := range offers {
		emb, err := e.repos.Embeddings.GetEmbedding(ctx, core.KindOffer, o.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, core.OutcomeOK, fmt.Errorf("failed to load embedding for offer %s: %w", o.ID, err)
		}
		sims[o.ID] = signals.Cosine(seekerVec.Vector, emb.Vector)
	}
	return e.scorer.ScoreOffers(seeker, offers, sims), core.OutcomeOK, nil
}

// ExplainOffers ranks the seeker's top offers and attaches reasons to each.
func (e *Engine) ExplainOffers(ctx context.Context, seekerID core.ID, topK int) ([]explain.Explanation, core.Outcome, error) {
	candidates, outcome, err := e.RankOffers(ctx, seekerID, topK)
	if err != nil {
		return nil, outcome, err
	}
	return explain.Explain(candidates, e.options.thresholds), outcome, nil
}

// BatchResult is one seeker's entry in a RankBatch response.
type BatchResult struct {
	SeekerID   core.ID
	Candidates []core.Candidate
	Outcome    core.Outcome
	Err        error
}

// RankBatch ranks offers for many seekers on the engine's worker pool.
// Results keep input order; one seeker's failure, including a panic, is
// reported on its own entry and does not affect the others.
func (e *Engine) RankBatch(ctx context.Context, seekerIDs []core.ID, limit int) []BatchResult {
	results := make([]BatchResult, len(seekerIDs))
	var wg sync.WaitGroup
	for i, id := range seekerIDs {
		results[i].SeekerID = id
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i].Candidates, results[i].Outcome = nil, core.OutcomeOK
					results[i].Err = fmt.Errorf("ranking seeker %s panicked: %v", id, r)
					e.logger.Error("ranking panicked", "seeker", id, "panic", r)
				}
			}()
			results[i].Candidates, results[i].Outcome, results[i].Err = e.RankOffers(ctx, id, limit)
		})
		if err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("failed to schedule ranking: %w", err)
		}
	}
	wg.Wait()
	return results
}

// Assign greedily maps seekers to open offers in the given order.
// Options override the engine's per-seeker depth and concurrency.
func (e *Engine) Assign(ctx context.Context, seekerIDs []core.ID, opts ...assignment.Option) (*assignment.Result, error) {
	start := time.Now()
	base := []assignment.Option{
		assignment.WithPerSeekerTopN(e.options.perSeekerTopN),
		assignment.WithConcurrency(e.options.workers),
		assignment.WithLogger(e.options.logger),
	}
	engine, err := assignment.NewEngine(e, e.repos.Offers, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	result, err := engine.Run(ctx, seekerIDs)
	if err != nil {
		e.metrics.RecordError("assignment")
		return nil, err
	}
	assigned, failed := result.Assigned(), result.Failed()
	e.metrics.RecordAssignment(assigned, len(seekerIDs)-assigned-failed, failed, time.Since(start))
	return result, nil
}

// NewIndexer creates an indexer over the engine's repositories and embedder.
// The caller must Release it.
func (e *Engine) NewIndexer(opts ...indexing.Option) (*indexing.Indexer, error) {
	base := []indexing.Option{indexing.WithLogger(e.options.logger)}
	return indexing.NewIndexer(e.repos.Seekers, e.repos.Offers, e.repos.Embeddings, e.provider.Embedder(), append(base, opts...)...)
}

// IndexAll embeds every seeker and offer whose text changed since it was
// last embedded, recording the outcome in metrics.
func (e *Engine) IndexAll(ctx context.Context, opts ...indexing.Option) (indexing.Stats, error) {
	ix, err := e.NewIndexer(opts...)
	if err != nil {
		return indexing.Stats{}, err
	}
	defer ix.Release()

	seekerStats, seekerErr := ix.IndexSeekers(ctx)
	e.metrics.RecordIndexing(core.KindSeeker, seekerStats.Embedded, seekerStats.Skipped, seekerStats.Failed)
	offerStats, offerErr := ix.IndexOffers(ctx)
	e.metrics.RecordIndexing(core.KindOffer, offerStats.Embedded, offerStats.Skipped, offerStats.Failed)

	if err := errors.Join(seekerErr, offerErr); err != nil {
		e.metrics.RecordError("indexing")
		return seekerStats.Add(offerStats), err
	}
	return seekerStats.Add(offerStats), nil
}

func (e *Engine) observe(direction string, outcome core.Outcome, n int, start time.Time, err error) {
	if err != nil {
		e.logger.Error("ranking failed", "direction", direction, "err", err)
		e.metrics.RecordError("ranking")
		return
	}
	e.metrics.RecordRanking(direction, outcome, n, time.Since(start))
}

func splitMatches(matches []core.SimilarityMatch) ([]core.ID, map[core.ID]float64) {
	ids := make([]core.ID, len(matches))
	sims := make(map[core.ID]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		sims[m.ID] = m.Score
	}
	return ids, sims
}

func truncate(cs []core.Candidate, limit int) []core.Candidate {
	if limit > 0 && len(cs) > limit {
		return cs[:limit]
	}
	return cs
}
