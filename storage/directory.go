package storage

import (
	"fmt"

	"group-lab/contract"
	"group-lab/domain"
	"group-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

// UserDirectory persists accounts outside the membership unit of work.
// The email key doubles as the uniqueness guard and the login lookup.
type UserDirectory struct {
	db *badger.DB
}

func NewUserDirectory(db *badger.DB) contract.IUserDirectory {
	return &UserDirectory{db: db}
}

// CreateUser writes the record and its email alias in one transaction.
// The read on the email key makes duplicate registrations fail, racing
// ones abort on conflict.
func (u *UserDirectory) CreateUser(user domain.User) error {
	data, err := encode(fromUser(user))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	return u.db.Update(func(txn *badger.Txn) error {
		alias := userEmailKey(user.Email)
		if _, err := txn.Get(alias); err == nil {
			return errors.ErrEmailTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		return txn.Set(alias, []byte(user.ID))
	})
}

func (u *UserDirectory) UserByID(id string) (domain.User, error) {
	var d diskUser

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decode(val, &d)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(d), nil
}

func (u *UserDirectory) UserByEmail(email string) (domain.User, error) {
	var d diskUser

	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if err != nil {
			return err
		}

		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get(userKey(string(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decode(val, &d)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(d), nil
}
