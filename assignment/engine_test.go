package assignment

import (
	"context"
	"errors"
	"testing"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRankingBroken = errors.New("ranking broken")

// staticRanker ranks from fixed per-seeker offer lists.
func staticRanker(lists map[core.ID][]core.ID) Ranker {
	return RankerFunc(func(ctx context.Context, seekerID core.ID, width int) ([]core.Candidate, core.Outcome, error) {
		switch seekerID {
		case "broken":
			return nil, core.OutcomeOK, errRankingBroken
		case "panics":
			panic("boom")
		}
		ids, ok := lists[seekerID]
		if !ok {
			return nil, core.OutcomeNotFound, nil
		}
		out := make([]core.Candidate, 0, len(ids))
		for i, id := range ids {
			if i == width {
				break
			}
			out = append(out, core.Candidate{
				SeekerID: seekerID,
				OfferID:  id,
				Features: core.Features{Score: 0.9 - 0.1*float64(i)},
			})
		}
		return out, core.OutcomeOK, nil
	})
}

func setupEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	require.NoError(t, repos.Offers.PutOffers(context.Background(),
		&core.Offer{ID: "p1", Capacity: 1, Open: true},
		&core.Offer{ID: "p2", Capacity: 1, Open: true},
		&core.Offer{ID: "p3", Capacity: 0, Open: true},
		&core.Offer{ID: "p4", Capacity: 5, Open: false},
	))

	ranker := staticRanker(map[core.ID][]core.ID{
		"s1": {"p1", "p2"},
		"s2": {"p1", "p2"},
		"s3": {"p1", "p2", "p3", "p4"},
		"s4": {"p2"},
	})
	e, err := NewEngine(ranker, repos.Offers, opts...)
	require.NoError(t, err)
	return e
}

func summarize(r *Result) map[core.ID]core.ID {
	out := make(map[core.ID]core.ID, len(r.Assignments))
	for _, a := range r.Assignments {
		out[a.SeekerID] = a.OfferID
	}
	return out
}

func TestEngine_Run(t *testing.T) {
	e := setupEngine(t)
	seekers := []core.ID{"s1", "s2", "s3", "broken", "ghost", "s4"}

	result, err := e.Run(context.Background(), seekers)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Assignments, len(seekers))
	for i, a := range result.Assignments {
		assert.Equal(t, seekers[i], a.SeekerID)
	}

	assert.Equal(t, map[core.ID]core.ID{
		"s1": "p1", "s2": "p2", "s3": "", "broken": "", "ghost": "", "s4": "",
	}, summarize(result))
	assert.InDelta(t, 0.8, result.Assignments[1].Score, 1e-9)
	assert.ErrorIs(t, result.Assignments[3].Err, errRankingBroken)
	assert.Equal(t, core.OutcomeNotFound, result.Assignments[4].Outcome)
	assert.NoError(t, result.Assignments[5].Err)

	assert.Equal(t, map[core.ID]int{"p1": 0, "p2": 0, "p3": 0}, result.Remaining)
	assert.Equal(t, 2, result.Assigned())
	assert.Equal(t, 1, result.Failed())
}

func TestEngine_OrderDependence(t *testing.T) {
	e := setupEngine(t)
	result, err := e.Run(context.Background(), []core.ID{"s4", "s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, map[core.ID]core.ID{"s4": "p2", "s1": "p1", "s2": ""}, summarize(result))
}

func TestEngine_PerSeekerTopN(t *testing.T) {
	e := setupEngine(t, WithPerSeekerTopN(1))
	result, err := e.Run(context.Background(), []core.ID{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, map[core.ID]core.ID{"s1": "p1", "s2": ""}, summarize(result))
}

func TestEngine_ConcurrentMatchesSequential(t *testing.T) {
	seekers := []core.ID{"s3", "s1", "panics", "s2", "broken", "s4", "ghost"}

	sequential, err := setupEngine(t).Run(context.Background(), seekers)
	require.NoError(t, err)
	parallel, err := setupEngine(t, WithConcurrency(4)).Run(context.Background(), seekers)
	require.NoError(t, err)

	assert.Equal(t, summarize(sequential), summarize(parallel))
	assert.Equal(t, sequential.Remaining, parallel.Remaining)
	assert.NotEqual(t, sequential.RunID, parallel.RunID)
	assert.Equal(t, 2, parallel.Failed())
	assert.ErrorContains(t, parallel.Assignments[2].Err, "panicked")
}

func TestEngine_DuplicateSeekers(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		e := setupEngine(t, WithConcurrency(concurrency))
		result, err := e.Run(context.Background(), []core.ID{"s1", "s1", "s2"})
		require.NoError(t, err)

		require.Len(t, result.Assignments, 3)
		assert.Equal(t, core.ID("p1"), result.Assignments[0].OfferID)
		assert.False(t, result.Assignments[1].Assigned())
		assert.ErrorIs(t, result.Assignments[1].Err, ErrDuplicateSeeker)
		assert.Equal(t, core.ID("p2"), result.Assignments[2].OfferID)
		assert.Equal(t, 2, result.Assigned())
	}
}

func TestEngine_ShortlistWidth(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	var widths []int
	ranker := RankerFunc(func(ctx context.Context, seekerID core.ID, width int) ([]core.Candidate, core.Outcome, error) {
		widths = append(widths, width)
		return nil, core.OutcomeOK, nil
	})

	for _, n := range []int{5, 80} {
		e, err := NewEngine(ranker, repos.Offers, WithPerSeekerTopN(n))
		require.NoError(t, err)
		_, err = e.Run(context.Background(), []core.ID{"s1"})
		require.NoError(t, err)
	}
	assert.Equal(t, []int{minShortlistWidth, 80}, widths)
}

func TestEngine_CancelledContext(t *testing.T) {
	e := setupEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []core.ID{"s1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := NewEngine(nil, nil)
	assert.ErrorIs(t, err, ErrRankerRequired)

	_, err = NewEngine(staticRanker(nil), nil)
	assert.ErrorIs(t, err, ErrOfferRepositoryRequired)
}
