package storage

import (
	"fmt"

	"group-lab/domain"
	"group-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

type groupStore struct {
	txn *badger.Txn
}

func (s groupStore) Create(group domain.Group) error {
	data, err := encode(fromGroup(group))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return s.txn.Set(groupKey(group.ID), data)
}

func (s groupStore) Get(groupID string) (domain.Group, error) {
	item, err := s.txn.Get(groupKey(groupID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}

	var d diskGroup
	if err = item.Value(func(val []byte) error {
		return decode(val, &d)
	}); err != nil {
		return domain.Group{}, err
	}
	return toGroup(d), nil
}

func (s groupStore) List() ([]domain.Group, error) {
	var groups []domain.Group

	options := badger.DefaultIteratorOptions
	it := s.txn.NewIterator(options)
	defer it.Close()

	prefix := []byte(groupPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var d diskGroup
		err := it.Item().Value(func(val []byte) error {
			return decode(val, &d)
		})
		if err != nil {
			return nil, err
		}
		groups = append(groups, toGroup(d))
	}
	return groups, nil
}
