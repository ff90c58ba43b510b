package badger

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/storage"
	"github.com/dgraph-io/badger/v4"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
// Similarity search is an exact scan over one side's vectors.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("embedding repository: nil backend")
	}
	return &EmbeddingRepository{backend: backend}, nil
}

// Close releases resources. The backend is owned by the caller.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// PutEmbeddings inserts or replaces embeddings.
func (r *EmbeddingRepository) PutEmbeddings(ctx context.Context, embeddings ...*core.Embedding) error {
	for _, e := range embeddings {
		if e == nil || e.Owner == "" {
			return fmt.Errorf("%w: embedding owner is empty", core.ErrEmptyID)
		}
		if len(e.Vector) == 0 {
			return fmt.Errorf("%w: embedding for %s %s has no vector", storage.ErrInvalidQuery, e.Kind, e.Owner)
		}
	}

	now := time.Now().UTC()
	return r.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, e := range embeddings {
			e.UpdatedAt = now
			if err := tx.Set(makeEmbeddingKey(e.Kind, e.Owner), storage.MarshalEmbedding(e)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetEmbedding retrieves the embedding of one seeker or offer.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, kind core.EntityKind, owner core.ID) (*core.Embedding, error) {
	var result *core.Embedding
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeEmbeddingKey(kind, owner), storage.UnmarshalEmbedding)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// DeleteEmbeddings removes embeddings. Missing embeddings are ignored.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, kind core.EntityKind, owners ...core.ID) error {
	return r.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, owner := range owners {
			if err := tx.Delete(makeEmbeddingKey(kind, owner)); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindSimilar ranks one side's embeddings by cosine similarity to vector.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, kind core.EntityKind, vector []float32, limit int, filter func(core.ID) bool) ([]core.SimilarityMatch, error) {
	if limit <= 0 || len(vector) == 0 {
		return []core.SimilarityMatch{}, nil
	}
	queryNorm := norm(vector)
	if queryNorm == 0 {
		return []core.SimilarityMatch{}, nil
	}

	results := []core.SimilarityMatch{}
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, makeEmbeddingKindPrefix(kind), storage.UnmarshalEmbedding, func(e *core.Embedding) bool {
			if filter != nil && !filter(e.Owner) {
				return true
			}
			// Vectors from a different model are not comparable
			if len(e.Vector) != len(vector) {
				return true
			}
			n := norm(e.Vector)
			if n == 0 {
				return true
			}
			results = append(results, core.SimilarityMatch{
				ID:    e.Owner,
				Score: dotProduct(vector, e.Vector) / (queryNorm * n),
			})
			return ctx.Err() == nil
		})
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b core.SimilarityMatch) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float64 {
	var sum float64
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dotProduct(v, v))
}
