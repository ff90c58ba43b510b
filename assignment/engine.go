package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/storage"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultPerSeekerTopN is how many ranked offers each seeker may fall back through.
	DefaultPerSeekerTopN = 20

	// minShortlistWidth is the smallest number of most similar offers
	// scored per seeker.
	minShortlistWidth = 50
)

// Ranker produces a seeker's shortlist: the width offers most similar to
// the seeker, scored and ordered best first.
type Ranker interface {
	ShortlistOffers(ctx context.Context, seekerID core.ID, width int) ([]core.Candidate, core.Outcome, error)
}

// RankerFunc adapts a function to Ranker.
type RankerFunc func(ctx context.Context, seekerID core.ID, width int) ([]core.Candidate, core.Outcome, error)

func (fn RankerFunc) ShortlistOffers(ctx context.Context, seekerID core.ID, width int) ([]core.Candidate, core.Outcome, error) {
	return fn(ctx, seekerID, width)
}

// Result is the outcome of one assignment run.
type Result struct {
	RunID       string
	Assignments []core.Assignment // In input order
	Remaining   map[core.ID]int   // Capacity left per open offer
}

// Assigned counts seekers that received an offer.
func (r *Result) Assigned() int {
	n := 0
	for _, a := range r.Assignments {
		if a.Assigned() {
			n++
		}
	}
	return n
}

// Failed counts seekers whose ranking returned an error.
func (r *Result) Failed() int {
	n := 0
	for _, a := range r.Assignments {
		if a.Err != nil {
			n++
		}
	}
	return n
}

// Engine runs greedy capacity-constrained assignment.
type Engine struct {
	ranker      Ranker
	offers      storage.OfferRepository
	topN        int
	concurrency int
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPerSeekerTopN caps how many ranked offers are tried per seeker.
func WithPerSeekerTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// WithConcurrency ranks up to n seekers in parallel. Commits stay
// sequential in input order, so the result matches a sequential run.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an assignment engine.
func NewEngine(ranker Ranker, offers storage.OfferRepository, opts ...Option) (*Engine, error) {
	if ranker == nil {
		return nil, ErrRankerRequired
	}
	if offers == nil {
		return nil, ErrOfferRepositoryRequired
	}
	e := &Engine{
		ranker:      ranker,
		offers:      offers,
		topN:        DefaultPerSeekerTopN,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "assignment")
	return e, nil
}

// shortlist is one seeker's ranking outcome.
type shortlist struct {
	candidates []core.Candidate
	outcome    core.Outcome
	err        error
}

// Run assigns each seeker to at most one open offer.
// Ranking failures are recorded per seeker and do not stop the run.
func (e *Engine) Run(ctx context.Context, seekerIDs []core.ID) (*Result, error) {
	open, err := e.offers.ListOpenOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open offers: %w", err)
	}
	table := NewCapacityTable(open)

	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)
	logger.Debug("assignment started", "seekers", len(seekerIDs), "offers", len(open))

	repeated := duplicates(seekerIDs)
	lists, err := e.rankAll(ctx, seekerIDs, repeated)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:       runID,
		Assignments: make([]core.Assignment, len(seekerIDs)),
	}
	for i, id := range seekerIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if repeated[i] {
			result.Assignments[i] = core.Assignment{SeekerID: id, Outcome: core.OutcomeOK, Err: ErrDuplicateSeeker}
			logger.Warn("duplicate seeker skipped", "seeker", id, "position", i)
			continue
		}
		result.Assignments[i] = commit(table, id, lists[i])
		if lists[i].err != nil {
			logger.Warn("ranking failed", "seeker", id, "err", lists[i].err)
		}
	}
	result.Remaining = table.Snapshot()

	logger.Info("assignment finished",
		"seekers", len(seekerIDs),
		"assigned", result.Assigned(),
		"failed", result.Failed())
	return result, nil
}

// commit gives the seeker the first shortlisted offer with a free slot.
func commit(table *CapacityTable, id core.ID, list shortlist) core.Assignment {
	a := core.Assignment{SeekerID: id, Outcome: list.outcome, Err: list.err}
	for _, c := range list.candidates {
		if table.TryReserve(c.OfferID) {
			a.OfferID = c.OfferID
			a.Score = c.Score
			break
		}
	}
	return a
}

// duplicates flags every seeker ID already seen at an earlier position.
func duplicates(seekerIDs []core.ID) []bool {
	seen := make(map[core.ID]bool, len(seekerIDs))
	repeated := make([]bool, len(seekerIDs))
	for i, id := range seekerIDs {
		repeated[i] = seen[id]
		seen[id] = true
	}
	return repeated
}

// rankAll ranks every seeker not marked in skip.
func (e *Engine) rankAll(ctx context.Context, seekerIDs []core.ID, skip []bool) ([]shortlist, error) {
	lists := make([]shortlist, len(seekerIDs))
	if e.concurrency <= 1 || len(seekerIDs) <= 1 {
		for i, id := range seekerIDs {
			if !skip[i] {
				lists[i] = e.rankOne(ctx, id)
			}
		}
		return lists, nil
	}

	pool, err := ants.NewPool(e.concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create ranking pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, id := range seekerIDs {
		if skip[i] {
			continue
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			lists[i] = e.rankOne(ctx, id)
		})
		if err != nil {
			wg.Done()
			lists[i] = shortlist{err: fmt.Errorf("failed to schedule ranking: %w", err)}
		}
	}
	wg.Wait()
	return lists, nil
}

func (e *Engine) rankOne(ctx context.Context, id core.ID) (list shortlist) {
	defer func() {
		if r := recover(); r != nil {
			list = shortlist{err: fmt.Errorf("ranking seeker %s panicked: %v", id, r)}
		}
	}()

	candidates, outcome, err := e.ranker.ShortlistOffers(ctx, id, max(minShortlistWidth, e.topN))
	if err != nil {
		return shortlist{err: fmt.Errorf("failed to rank seeker %s: %w", id, err)}
	}
	if len(candidates) > e.topN {
		candidates = candidates[:e.topN]
	}
	return shortlist{candidates: candidates, outcome: outcome}
}
