package storage

import (
	"fmt"

	"group-lab/domain"
	"group-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

type membershipStore struct {
	txn *badger.Txn
}

// Put inserts the membership row. The read of the key before the write
// is what turns concurrent duplicate adds into a transaction conflict:
// only one of the racing transactions commits.
func (s membershipStore) Put(m domain.Membership) error {
	key := memberKey(m.GroupID, m.UserID)
	if _, err := s.txn.Get(key); err == nil {
		return errors.ErrAlreadyMember
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	data, err := encode(fromMembership(m))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.txn.Set(key, data)
}

func (s membershipStore) Get(groupID, userID string) (domain.Membership, error) {
	item, err := s.txn.Get(memberKey(groupID, userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Membership{}, errors.ErrMemberNotFound
	}
	if err != nil {
		return domain.Membership{}, err
	}

	var d diskMembership
	if err = item.Value(func(val []byte) error {
		return decode(val, &d)
	}); err != nil {
		return domain.Membership{}, err
	}
	return toMembership(d), nil
}

func (s membershipStore) Update(m domain.Membership) error {
	key := memberKey(m.GroupID, m.UserID)
	if _, err := s.txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrMemberNotFound
	} else if err != nil {
		return err
	}

	data, err := encode(fromMembership(m))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.txn.Set(key, data)
}

func (s membershipStore) Delete(groupID, userID string) error {
	key := memberKey(groupID, userID)
	if _, err := s.txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrMemberNotFound
	} else if err != nil {
		return err
	}
	return s.txn.Delete(key)
}

// ListByGroup scans the member:{group_id}: prefix. Keys sort by user id,
// so the order is stable across calls.
func (s membershipStore) ListByGroup(groupID string) ([]domain.Membership, error) {
	var members []domain.Membership

	options := badger.DefaultIteratorOptions
	it := s.txn.NewIterator(options)
	defer it.Close()

	prefix := memberPrefix(groupID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var d diskMembership
		err := it.Item().Value(func(val []byte) error {
			return decode(val, &d)
		})
		if err != nil {
			return nil, err
		}
		members = append(members, toMembership(d))
	}
	return members, nil
}
