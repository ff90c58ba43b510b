package storage

import (
	"context"

	"github.com/Soo0803/ternswipe-matcher/core"
)

// SeekerRepository provides operations for seeker snapshots.
// Implementations must be thread-safe and support concurrent access.
type SeekerRepository interface {
	// PutSeekers inserts or replaces seekers.
	// Each seeker is validated with core.ValidateSeeker before anything is written.
	// Sets UpdatedAt to the current time.
	PutSeekers(ctx context.Context, seekers ...*core.Seeker) error

	// GetSeeker retrieves a single seeker by ID.
	// Returns ErrNotFound if the seeker doesn't exist.
	GetSeeker(ctx context.Context, id core.ID) (*core.Seeker, error)

	// GetSeekers retrieves multiple seekers by their IDs.
	// Returns only the seekers that exist (no error for missing seekers), in request order.
	GetSeekers(ctx context.Context, ids ...core.ID) ([]*core.Seeker, error)

	// ListSeekers returns every stored seeker ordered by ID.
	ListSeekers(ctx context.Context) ([]*core.Seeker, error)

	// DeleteSeekers removes seekers by their IDs.
	// Returns ErrNotFound if any seeker doesn't exist.
	DeleteSeekers(ctx context.Context, ids ...core.ID) error

	// Close releases resources held by the repository.
	Close() error
}

// OfferRepository provides operations for offer snapshots.
type OfferRepository interface {
	// PutOffers inserts or replaces offers.
	// Each offer is validated with core.ValidateOffer before anything is written.
	PutOffers(ctx context.Context, offers ...*core.Offer) error

	// GetOffer retrieves a single offer by ID.
	// Returns ErrNotFound if the offer doesn't exist.
	GetOffer(ctx context.Context, id core.ID) (*core.Offer, error)

	// GetOffers retrieves multiple offers by their IDs.
	// Returns only the offers that exist, in request order.
	GetOffers(ctx context.Context, ids ...core.ID) ([]*core.Offer, error)

	// ListOffers returns every stored offer ordered by ID.
	ListOffers(ctx context.Context) ([]*core.Offer, error)

	// ListOpenOffers returns the offers whose Open flag is set, ordered by ID.
	ListOpenOffers(ctx context.Context) ([]*core.Offer, error)

	// DeleteOffers removes offers by their IDs.
	// Returns ErrNotFound if any offer doesn't exist.
	DeleteOffers(ctx context.Context, ids ...core.ID) error

	// Close releases resources held by the repository.
	Close() error
}

// EmbeddingRepository stores precomputed embeddings and answers
// nearest-neighbor queries over them.
type EmbeddingRepository interface {
	// PutEmbeddings inserts or replaces embeddings keyed by (Kind, Owner).
	PutEmbeddings(ctx context.Context, embeddings ...*core.Embedding) error

	// GetEmbedding retrieves the embedding of one seeker or offer.
	// Returns ErrNotFound if no embedding has been stored.
	GetEmbedding(ctx context.Context, kind core.EntityKind, owner core.ID) (*core.Embedding, error)

	// DeleteEmbeddings removes embeddings. Missing embeddings are ignored.
	DeleteEmbeddings(ctx context.Context, kind core.EntityKind, owners ...core.ID) error

	// FindSimilar ranks embeddings of the given kind by cosine similarity to vector.
	// Owners rejected by filter are skipped; a nil filter accepts all.
	// Results are ordered by similarity (highest first, ties by ID), up to limit results.
	FindSimilar(ctx context.Context, kind core.EntityKind, vector []float32, limit int, filter func(core.ID) bool) ([]core.SimilarityMatch, error)

	// Close releases resources held by the repository.
	Close() error
}
