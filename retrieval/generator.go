package retrieval

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/lexical"
	"github.com/Soo0803/ternswipe-matcher/storage"
)

const (
	// DefaultANNLimit is the number of dense neighbors retrieved.
	DefaultANNLimit = 200
	// DefaultLexicalLimit is the number of BM25 hits retrieved.
	DefaultLexicalLimit = 100

	// lexicalWeight is the share of the normalized lexical score in a blend.
	lexicalWeight = 0.3
)

// Result is the candidate set for one entity.
// Matches is empty unless Outcome is core.OutcomeOK.
type Result struct {
	Outcome core.Outcome
	Matches []core.SimilarityMatch
}

// Generator produces fused dense and lexical candidates in both directions.
type Generator struct {
	seekers      storage.SeekerRepository
	offers       storage.OfferRepository
	embeddings   storage.EmbeddingRepository
	offerIndex   lexical.Searcher
	seekerIndex  lexical.Searcher
	annLimit     int
	lexicalLimit int
	monitor      Monitor
	logger       *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithANNLimit sets how many dense neighbors are retrieved.
func WithANNLimit(limit int) Option {
	return func(g *Generator) error {
		if limit < 1 {
			return fmt.Errorf("ann limit must be positive, got %d", limit)
		}
		g.annLimit = limit
		return nil
	}
}

// WithLexicalLimit sets how many lexical hits are retrieved.
func WithLexicalLimit(limit int) Option {
	return func(g *Generator) error {
		if limit < 0 {
			return fmt.Errorf("lexical limit must not be negative, got %d", limit)
		}
		g.lexicalLimit = limit
		return nil
	}
}

// WithOfferIndex sets the lexical index searched for offers.
func WithOfferIndex(index lexical.Searcher) Option {
	return func(g *Generator) error {
		g.offerIndex = index
		return nil
	}
}

// WithSeekerIndex sets the lexical index searched for seekers.
func WithSeekerIndex(index lexical.Searcher) Option {
	return func(g *Generator) error {
		g.seekerIndex = index
		return nil
	}
}

// WithMonitor installs hooks that observe every generation.
func WithMonitor(monitor Monitor) Option {
	return func(g *Generator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		g.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a candidate generator. Without lexical indexes,
// candidates come from dense retrieval only.
func NewGenerator(
	seekers storage.SeekerRepository,
	offers storage.OfferRepository,
	embeddings storage.EmbeddingRepository,
	opts ...Option,
) (*Generator, error) {
	if seekers == nil {
		return nil, ErrSeekerRepositoryRequired
	}
	if offers == nil {
		return nil, ErrOfferRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}

	g := &Generator{
		seekers:      seekers,
		offers:       offers,
		embeddings:   embeddings,
		annLimit:     DefaultANNLimit,
		lexicalLimit: DefaultLexicalLimit,
		monitor:      &noopMonitor{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	// A nil *Index searches as empty
	if g.offerIndex == nil {
		g.offerIndex = (*lexical.Index)(nil)
	}
	if g.seekerIndex == nil {
		g.seekerIndex = (*lexical.Index)(nil)
	}
	g.logger = g.logger.With("component", "retrieval")
	return g, nil
}

// OffersForSeeker returns open offers related to the seeker, most similar first.
func (g *Generator) OffersForSeeker(ctx context.Context, seekerID core.ID) (*Result, error) {
	g.monitor.Start(core.KindSeeker, seekerID)

	seeker, err := g.seekers.GetSeeker(ctx, seekerID)
	if errors.Is(err, storage.ErrNotFound) {
		return g.finish(&Result{Outcome: core.OutcomeNotFound}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load seeker %s: %w", seekerID, err)
	}

	open, err := g.openOffers(ctx)
	if err != nil {
		return nil, err
	}
	isOpen := func(id core.ID) bool { return open[id] }

	query := SeekerQuery(seeker)
	return g.generate(ctx, core.KindSeeker, seekerID, core.KindOffer, query, g.offerIndex, isOpen)
}

// SeekersForOffer returns seekers related to the offer, most similar first.
// Closed offers still get candidates; they are only excluded as targets.
func (g *Generator) SeekersForOffer(ctx context.Context, offerID core.ID) (*Result, error) {
	g.monitor.Start(core.KindOffer, offerID)

	offer, err := g.offers.GetOffer(ctx, offerID)
	if errors.Is(err, storage.ErrNotFound) {
		return g.finish(&Result{Outcome: core.OutcomeNotFound}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load offer %s: %w", offerID, err)
	}

	query := OfferQuery(offer)
	return g.generate(ctx, core.KindOffer, offerID, core.KindSeeker, query, g.seekerIndex, nil)
}

// generate runs dense and lexical retrieval for the source entity against
// the target side and fuses the results.
func (g *Generator) generate(
	ctx context.Context,
	sourceKind core.EntityKind,
	sourceID core.ID,
	targetKind core.EntityKind,
	query string,
	index lexical.Searcher,
	filter func(core.ID) bool,
) (*Result, error) {
	embedding, err := g.embeddings.GetEmbedding(ctx, sourceKind, sourceID)
	if errors.Is(err, storage.ErrNotFound) {
		g.logger.Debug("embedding missing", "kind", sourceKind, "id", sourceID)
		return g.finish(&Result{Outcome: core.OutcomeEmbeddingMissing}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load embedding for %s %s: %w", sourceKind, sourceID, err)
	}

	ann, err := g.embeddings.FindSimilar(ctx, targetKind, embedding.Vector, g.annLimit, filter)
	if err != nil {
		g.logger.Error("error querying for similar embeddings", "kind", targetKind, "err", err)
		return nil, fmt.Errorf("dense retrieval failed: %w", err)
	}
	g.monitor.AfterANN(ann)

	var hits []lexical.Hit
	if query != "" && g.lexicalLimit > 0 {
		hits = index.Search(query, g.lexicalLimit, filter)
	}
	g.monitor.AfterLexical(query, hits)

	return g.finish(&Result{Outcome: core.OutcomeOK, Matches: Fuse(ann, hits)}), nil
}

func (g *Generator) finish(result *Result) *Result {
	if result.Matches == nil {
		result.Matches = []core.SimilarityMatch{}
	}
	g.monitor.Finish(result)
	return result
}

func (g *Generator) openOffers(ctx context.Context) (map[core.ID]bool, error) {
	offers, err := g.offers.ListOpenOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open offers: %w", err)
	}
	open := make(map[core.ID]bool, len(offers))
	for _, o := range offers {
		open[o.ID] = true
	}
	return open, nil
}

// Fuse blends lexical hits into dense matches. Each lexical score is
// divided by the highest lexical score; the blended similarity of an ID is
// max(dense, 0.7*dense + 0.3*normalized), with dense 0 for lexical-only IDs.
// The result is sorted by similarity descending, ties by ID ascending.
func Fuse(ann []core.SimilarityMatch, hits []lexical.Hit) []core.SimilarityMatch {
	similarity := make(map[core.ID]float64, len(ann)+len(hits))
	for _, m := range ann {
		similarity[m.ID] = m.Score
	}

	maxLexical := 0.0
	for _, h := range hits {
		maxLexical = max(maxLexical, h.Score)
	}
	if maxLexical <= 0 {
		maxLexical = 1
	}

	for _, h := range hits {
		dense := similarity[h.ID]
		blended := (1-lexicalWeight)*dense + lexicalWeight*(h.Score/maxLexical)
		similarity[h.ID] = max(dense, blended)
	}

	out := make([]core.SimilarityMatch, 0, len(similarity))
	for id, score := range similarity {
		out = append(out, core.SimilarityMatch{ID: id, Score: score})
	}
	slices.SortFunc(out, func(a, b core.SimilarityMatch) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// SeekerQuery is the lexical query for a seeker: headline, summary and
// skills separated by spaces. Empty parts are skipped.
func SeekerQuery(s *core.Seeker) string {
	return joinQuery(s.Headline, s.Summary, strings.Join(s.Skills, ", "))
}

// OfferQuery is the lexical query for an offer: title, description and
// required skills separated by spaces.
func OfferQuery(o *core.Offer) string {
	return joinQuery(o.Title, o.Description, strings.Join(o.RequiredSkills, ", "))
}

// OfferDocument is the text an offer is indexed under: title and
// description. Required skills reach seekers through dense retrieval.
func OfferDocument(o *core.Offer) string {
	return joinQuery(o.Title, o.Description)
}

func joinQuery(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
