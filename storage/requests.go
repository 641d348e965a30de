package storage

import (
	"fmt"

	"group-lab/domain"
	"group-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

type joinRequestStore struct {
	txn *badger.Txn
}

// Create persists a PENDING request under three keys: the record
// itself, a creation-ordered group index, and the pending marker that
// caps the pair at one open request. Reading the marker first makes
// racing duplicates conflict instead of both committing.
func (s joinRequestStore) Create(r domain.JoinRequest) error {
	marker := pendingKey(r.GroupID, r.UserID)
	if _, err := s.txn.Get(marker); err == nil {
		return errors.ErrRequestAlreadyPending
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	data, err := encode(fromRequest(r))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	if err = s.txn.Set(requestKey(r.ID), data); err != nil {
		return err
	}
	if err = s.txn.Set(requestIndexKey(r.GroupID, r.CreatedAt, r.ID), []byte(r.ID)); err != nil {
		return err
	}
	return s.txn.Set(marker, []byte(r.ID))
}

func (s joinRequestStore) Get(requestID string) (domain.JoinRequest, error) {
	item, err := s.txn.Get(requestKey(requestID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.JoinRequest{}, errors.ErrRequestNotFound
	}
	if err != nil {
		return domain.JoinRequest{}, err
	}

	var d diskRequest
	if err = item.Value(func(val []byte) error {
		return decode(val, &d)
	}); err != nil {
		return domain.JoinRequest{}, err
	}
	return toRequest(d), nil
}

// Update rewrites the record and, once the request left PENDING, clears
// the marker in the same transaction so the user may file again later.
func (s joinRequestStore) Update(r domain.JoinRequest) error {
	data, err := encode(fromRequest(r))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	if err = s.txn.Set(requestKey(r.ID), data); err != nil {
		return err
	}
	if r.Status.Terminal() {
		return s.txn.Delete(pendingKey(r.GroupID, r.UserID))
	}
	return nil
}

// ListByGroup walks the creation-ordered index, oldest first, and
// resolves each entry to its record.
func (s joinRequestStore) ListByGroup(groupID string) ([]domain.JoinRequest, error) {
	var ids []string

	options := badger.DefaultIteratorOptions
	it := s.txn.NewIterator(options)

	prefix := requestIndexPrefix(groupID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
		if err != nil {
			it.Close()
			return nil, err
		}
	}
	it.Close()

	var requests []domain.JoinRequest
	for _, id := range ids {
		r, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, nil
}
