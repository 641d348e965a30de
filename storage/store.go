// Package storage is the BadgerDB implementation of the membership
// stores. Badger transactions run under serializable snapshot
// isolation, so two concurrent check-then-insert attempts on the same
// keys cannot both commit; the loser aborts with badger.ErrConflict.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"group-lab/contract"
	"group-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// ReadWrite runs fn inside a single read-write transaction. Everything
// fn does commits or aborts together. A serialization conflict is
// reported as ErrTxConflict so callers can map it to their Conflict
// category instead of retrying blindly.
func (s *Store) ReadWrite(ctx context.Context, fn func(tx contract.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(storeTx{txn: txn})
	})
	if errors.Is(err, badger.ErrConflict) {
		s.log.Warn("transaction aborted on conflict", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", errors.ErrTxConflict, err)
	}
	return err
}

// ReadOnly runs fn inside a snapshot transaction.
func (s *Store) ReadOnly(ctx context.Context, fn func(tx contract.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(storeTx{txn: txn})
	})
}

// storeTx binds the stores to one badger transaction. It only lives for
// the duration of the closure handed to ReadWrite or ReadOnly.
type storeTx struct {
	txn *badger.Txn
}

func (t storeTx) Groups() contract.GroupStore {
	return groupStore{txn: t.txn}
}

func (t storeTx) Members() contract.MembershipStore {
	return membershipStore{txn: t.txn}
}

func (t storeTx) Requests() contract.JoinRequestStore {
	return joinRequestStore{txn: t.txn}
}
