package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/storage"
	"github.com/dgraph-io/badger/v4"
)

// OfferRepository implements storage.OfferRepository for BadgerDB.
type OfferRepository struct {
	backend *Backend
}

var _ storage.OfferRepository = (*OfferRepository)(nil)

// NewOfferRepository creates a new OfferRepository.
func NewOfferRepository(backend *Backend) (*OfferRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("offer repository: nil backend")
	}
	return &OfferRepository{backend: backend}, nil
}

// Close releases resources. The backend is owned by the caller.
func (r *OfferRepository) Close() error {
	return nil
}

// PutOffers inserts or replaces offers.
func (r *OfferRepository) PutOffers(ctx context.Context, offers ...*core.Offer) error {
	for _, offer := range offers {
		if err := core.ValidateOffer(offer); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	return r.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, offer := range offers {
			offer.UpdatedAt = now
			if err := tx.Set(makeOfferKey(offer.ID), storage.MarshalOffer(offer)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOffer retrieves a single offer by ID.
func (r *OfferRepository) GetOffer(ctx context.Context, id core.ID) (*core.Offer, error) {
	var result *core.Offer
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeOfferKey(id), storage.UnmarshalOffer)
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

// GetOffers retrieves multiple offers by their IDs.
func (r *OfferRepository) GetOffers(ctx context.Context, ids ...core.ID) ([]*core.Offer, error) {
	var result []*core.Offer
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			offer, err := readRecord(tx, makeOfferKey(id), storage.UnmarshalOffer)
			if err != nil {
				return err
			}
			if offer != nil {
				result = append(result, offer)
			}
		}
		return nil
	})
	return result, err
}

// ListOffers returns every stored offer ordered by ID.
func (r *OfferRepository) ListOffers(ctx context.Context) ([]*core.Offer, error) {
	var result []*core.Offer
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(offerPrefix+":"), storage.UnmarshalOffer, func(o *core.Offer) bool {
			result = append(result, o)
			return true
		})
	})
	return result, err
}

// DeleteOffers removes offers by their IDs.
func (r *OfferRepository) DeleteOffers(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeOfferKey(id)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: offer %s", storage.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListOpenOffers returns the offers that accept applications, ordered by ID.
func (r *OfferRepository) ListOpenOffers(ctx context.Context) ([]*core.Offer, error) {
	var result []*core.Offer
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(offerPrefix+":"), storage.UnmarshalOffer, func(o *core.Offer) bool {
			if o.Open {
				result = append(result, o)
			}
			return true
		})
	})
	return result, err
}
