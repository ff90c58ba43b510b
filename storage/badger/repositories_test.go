package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func seekerIDs(seekers []*core.Seeker) []core.ID {
	out := make([]core.ID, len(seekers))
	for i, s := range seekers {
		out[i] = s.ID
	}
	return out
}

func offerIDs(offers []*core.Offer) []core.ID {
	out := make([]core.ID, len(offers))
	for i, o := range offers {
		out[i] = o.ID
	}
	return out
}

func TestSeekerRepository(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	err := repos.Seekers.PutSeekers(ctx,
		&core.Seeker{ID: "s2", Headline: "EE student", Skills: []string{"matlab"}},
		&core.Seeker{ID: "s1", Headline: "CS student", Skills: []string{"python"}},
	)
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		s, err := repos.Seekers.GetSeeker(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "CS student", s.Headline)
		assert.False(t, s.UpdatedAt.IsZero())
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := repos.Seekers.GetSeeker(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("get many skips missing", func(t *testing.T) {
		got, err := repos.Seekers.GetSeekers(ctx, "s2", "nope", "s1")
		require.NoError(t, err)
		assert.Equal(t, []core.ID{"s2", "s1"}, seekerIDs(got))
	})

	t.Run("list is ordered by ID", func(t *testing.T) {
		got, err := repos.Seekers.ListSeekers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{"s1", "s2"}, seekerIDs(got))
	})

	t.Run("put replaces", func(t *testing.T) {
		require.NoError(t, repos.Seekers.PutSeekers(ctx, &core.Seeker{ID: "s1", Headline: "updated"}))
		s, err := repos.Seekers.GetSeeker(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "updated", s.Headline)
	})

	t.Run("invalid seeker writes nothing", func(t *testing.T) {
		err := repos.Seekers.PutSeekers(ctx,
			&core.Seeker{ID: "s3"},
			&core.Seeker{ID: "s4", WeeklyHours: -1},
		)
		require.ErrorIs(t, err, core.ErrInvalidSeeker)
		_, err = repos.Seekers.GetSeeker(ctx, "s3")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repos.Seekers.DeleteSeekers(ctx, "s2"))
		_, err := repos.Seekers.GetSeeker(ctx, "s2")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, repos.Seekers.DeleteSeekers(ctx, "s2"), storage.ErrNotFound)
	})
}

func TestOfferRepository(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	err := repos.Offers.PutOffers(ctx,
		&core.Offer{ID: "p3", Title: "Closed", Capacity: 1, Open: false},
		&core.Offer{ID: "p1", Title: "Imaging", Capacity: 2, Open: true},
		&core.Offer{ID: "p2", Title: "NLP", Capacity: 0, Open: true},
	)
	require.NoError(t, err)

	t.Run("list all", func(t *testing.T) {
		got, err := repos.Offers.ListOffers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{"p1", "p2", "p3"}, offerIDs(got))
	})

	t.Run("list open", func(t *testing.T) {
		got, err := repos.Offers.ListOpenOffers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.ID{"p1", "p2"}, offerIDs(got))
	})

	t.Run("get", func(t *testing.T) {
		o, err := repos.Offers.GetOffer(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 2, o.Capacity)
		assert.True(t, o.Open)
	})

	t.Run("negative capacity rejected", func(t *testing.T) {
		err := repos.Offers.PutOffers(ctx, &core.Offer{ID: "p4", Capacity: -1})
		assert.ErrorIs(t, err, core.ErrNegativeCapacity)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repos.Offers.DeleteOffers(ctx, "p3"))
		got, err := repos.Offers.GetOffers(ctx, "p1", "p3")
		require.NoError(t, err)
		assert.Equal(t, []core.ID{"p1"}, offerIDs(got))
	})
}

func TestEmbeddingRepository(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	err := repos.Embeddings.PutEmbeddings(ctx,
		&core.Embedding{Owner: "p1", Kind: core.KindOffer, Vector: []float32{1, 0, 0}},
		&core.Embedding{Owner: "p2", Kind: core.KindOffer, Vector: []float32{3, 4, 0}},
		&core.Embedding{Owner: "p3", Kind: core.KindOffer, Vector: []float32{0, 0, 2}},
		&core.Embedding{Owner: "p4", Kind: core.KindOffer, Vector: []float32{2, 0, 0}},
		&core.Embedding{Owner: "p5", Kind: core.KindOffer, Vector: []float32{1, 0}},
		&core.Embedding{Owner: "s1", Kind: core.KindSeeker, Vector: []float32{1, 0, 0}},
	)
	require.NoError(t, err)

	query := []float32{1, 0, 0}

	t.Run("ranked by cosine with ID ties", func(t *testing.T) {
		got, err := repos.Embeddings.FindSimilar(ctx, core.KindOffer, query, 10, nil)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, core.ID("p1"), got[0].ID)
		assert.Equal(t, core.ID("p4"), got[1].ID)
		assert.InDelta(t, 1.0, got[0].Score, 1e-9)
		assert.InDelta(t, 1.0, got[1].Score, 1e-9)
		assert.Equal(t, core.ID("p2"), got[2].ID)
		assert.InDelta(t, 0.6, got[2].Score, 1e-6)
		assert.Equal(t, core.ID("p3"), got[3].ID)
		assert.InDelta(t, 0.0, got[3].Score, 1e-9)
	})

	t.Run("kinds are separate", func(t *testing.T) {
		got, err := repos.Embeddings.FindSimilar(ctx, core.KindSeeker, query, 10, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, core.ID("s1"), got[0].ID)
	})

	t.Run("filter and limit", func(t *testing.T) {
		got, err := repos.Embeddings.FindSimilar(ctx, core.KindOffer, query, 1,
			func(id core.ID) bool { return id != "p1" })
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, core.ID("p4"), got[0].ID)
	})

	t.Run("zero query vector", func(t *testing.T) {
		got, err := repos.Embeddings.FindSimilar(ctx, core.KindOffer, []float32{0, 0, 0}, 10, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("get and delete", func(t *testing.T) {
		e, err := repos.Embeddings.GetEmbedding(ctx, core.KindSeeker, "s1")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, e.Vector)

		require.NoError(t, repos.Embeddings.DeleteEmbeddings(ctx, core.KindSeeker, "s1", "missing"))
		_, err = repos.Embeddings.GetEmbedding(ctx, core.KindSeeker, "s1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("empty vector rejected", func(t *testing.T) {
		err := repos.Embeddings.PutEmbeddings(ctx, &core.Embedding{Owner: "x", Kind: core.KindOffer})
		assert.Error(t, err)
	})
}

func TestRepositories_ConcurrentAccess(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := core.ID(fmt.Sprintf("s%02d", i))
			assert.NoError(t, repos.Seekers.PutSeekers(ctx, &core.Seeker{ID: id}))
			_, err := repos.Seekers.GetSeeker(ctx, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := repos.Seekers.ListSeekers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
