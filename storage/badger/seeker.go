package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/Soo0803/ternswipe-matcher/storage"
	"github.com/dgraph-io/badger/v4"
)

// SeekerRepository implements storage.SeekerRepository for BadgerDB.
type SeekerRepository struct {
	backend *Backend
}

var _ storage.SeekerRepository = (*SeekerRepository)(nil)

// NewSeekerRepository creates a new SeekerRepository.
func NewSeekerRepository(backend *Backend) (*SeekerRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("seeker repository: nil backend")
	}
	return &SeekerRepository{backend: backend}, nil
}

// Close releases resources. The backend is owned by the caller.
func (r *SeekerRepository) Close() error {
	return nil
}

// PutSeekers inserts or replaces seekers.
func (r *SeekerRepository) PutSeekers(ctx context.Context, seekers ...*core.Seeker) error {
	for _, seeker := range seekers {
		if err := core.ValidateSeeker(seeker); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	return r.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, seeker := range seekers {
			seeker.UpdatedAt = now
			if err := tx.Set(makeSeekerKey(seeker.ID), storage.MarshalSeeker(seeker)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSeeker retrieves a single seeker by ID.
func (r *SeekerRepository) GetSeeker(ctx context.Context, id core.ID) (*core.Seeker, error) {
	var result *core.Seeker
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		var err error
		result, err = readRecord(tx, makeSeekerKey(id), storage.UnmarshalSeeker)
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

// GetSeekers retrieves multiple seekers by their IDs.
func (r *SeekerRepository) GetSeekers(ctx context.Context, ids ...core.ID) ([]*core.Seeker, error) {
	var result []*core.Seeker
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			seeker, err := readRecord(tx, makeSeekerKey(id), storage.UnmarshalSeeker)
			if err != nil {
				return err
			}
			if seeker != nil {
				result = append(result, seeker)
			}
		}
		return nil
	})
	return result, err
}

// ListSeekers returns every stored seeker ordered by ID.
func (r *SeekerRepository) ListSeekers(ctx context.Context) ([]*core.Seeker, error) {
	var result []*core.Seeker
	err := r.backend.View(ctx, func(tx *badger.Txn) error {
		return scanPrefix(tx, []byte(seekerPrefix+":"), storage.UnmarshalSeeker, func(s *core.Seeker) bool {
			result = append(result, s)
			return true
		})
	})
	return result, err
}

// DeleteSeekers removes seekers by their IDs.
func (r *SeekerRepository) DeleteSeekers(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTransaction(ctx, func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSeekerKey(id)
			if _, err := tx.Get(key); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: seeker %s", storage.ErrNotFound, id)
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
