package storage

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"group-lab/contract"
	"group-lab/domain"
	"group-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// SetupTestDB initializes a temporary in-memory Badger instance
func SetupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func newTestStore(t *testing.T) *Store {
	return NewStore(SetupTestDB(t), slog.Default())
}

func TestGroupStore_CreateGetList(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	groupA := domain.NewGroup("gophers", "Gopher talk", domain.GroupPublic, "owner-1", time.Now().UTC())
	groupB := domain.NewGroup("rustaceans", "", domain.GroupPrivate, "owner-2", time.Now().UTC())

	err := store.ReadWrite(ctx, func(tx contract.Tx) error {
		if err := tx.Groups().Create(groupA); err != nil {
			return err
		}
		return tx.Groups().Create(groupB)
	})
	req.NoError(err)

	err = store.ReadOnly(ctx, func(tx contract.Tx) error {
		got, err := tx.Groups().Get(groupA.ID)
		req.NoError(err)
		req.Equal(groupA.Name, got.Name)
		req.Equal(groupA.Description, got.Description)
		req.Equal(groupA.Type, got.Type)
		req.Equal(groupA.OwnerID, got.OwnerID)

		all, err := tx.Groups().List()
		req.NoError(err)
		req.Len(all, 2)
		return nil
	})
	req.NoError(err)

	t.Run("should return group not found for unknown id", func(t *testing.T) {
		err := store.ReadOnly(ctx, func(tx contract.Tx) error {
			_, err := tx.Groups().Get("nope")
			return err
		})
		require.ErrorIs(t, err, errors.ErrGroupNotFound)
	})
}

func TestMembershipStore_PairIdentity(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	groupID := uuid.NewString()
	userID := uuid.NewString()
	m := domain.NewMembership(groupID, userID, domain.RoleMember, time.Now().UTC())

	req.NoError(store.ReadWrite(ctx, func(tx contract.Tx) error {
		return tx.Members().Put(m)
	}))

	t.Run("should refuse a second row for the same pair", func(t *testing.T) {
		err := store.ReadWrite(ctx, func(tx contract.Tx) error {
			return tx.Members().Put(domain.NewMembership(groupID, userID, domain.RoleAdmin, time.Now().UTC()))
		})
		require.ErrorIs(t, err, errors.ErrAlreadyMember)
	})

	t.Run("should keep the original role after the refused insert", func(t *testing.T) {
		err := store.ReadOnly(ctx, func(tx contract.Tx) error {
			got, err := tx.Members().Get(groupID, userID)
			req.NoError(err)
			req.Equal(domain.RoleMember, got.Role)
			return nil
		})
		req.NoError(err)
	})

	t.Run("should update an existing row", func(t *testing.T) {
		m.Role = domain.RoleAdmin
		err := store.ReadWrite(ctx, func(tx contract.Tx) error {
			return tx.Members().Update(m)
		})
		req.NoError(err)

		err = store.ReadOnly(ctx, func(tx contract.Tx) error {
			got, err := tx.Members().Get(groupID, userID)
			req.NoError(err)
			req.Equal(domain.RoleAdmin, got.Role)
			return nil
		})
		req.NoError(err)
	})

	t.Run("should refuse to update a missing row", func(t *testing.T) {
		err := store.ReadWrite(ctx, func(tx contract.Tx) error {
			return tx.Members().Update(domain.NewMembership(groupID, "ghost", domain.RoleMember, time.Now()))
		})
		require.ErrorIs(t, err, errors.ErrMemberNotFound)
	})

	t.Run("should delete and then miss the row", func(t *testing.T) {
		req.NoError(store.ReadWrite(ctx, func(tx contract.Tx) error {
			return tx.Members().Delete(groupID, userID)
		}))

		err := store.ReadOnly(ctx, func(tx contract.Tx) error {
			_, err := tx.Members().Get(groupID, userID)
			return err
		})
		require.ErrorIs(t, err, errors.ErrMemberNotFound)

		err = store.ReadWrite(ctx, func(tx contract.Tx) error {
			return tx.Members().Delete(groupID, userID)
		})
		require.ErrorIs(t, err, errors.ErrMemberNotFound)
	})
}

func TestMembershipStore_ListByGroup(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	groupID := "group-under-test"
	otherGroup := "another-group"

	// Given: three members in the group and one elsewhere
	err := store.ReadWrite(ctx, func(tx contract.Tx) error {
		for _, userID := range []string{"charlie", "alice", "bob"} {
			if err := tx.Members().Put(domain.NewMembership(groupID, userID, domain.RoleMember, time.Now().UTC())); err != nil {
				return err
			}
		}
		return tx.Members().Put(domain.NewMembership(otherGroup, "mallory", domain.RoleAdmin, time.Now().UTC()))
	})
	req.NoError(err)

	// Then: the scan returns only this group's rows, sorted by user id
	err = store.ReadOnly(ctx, func(tx contract.Tx) error {
		members, err := tx.Members().ListByGroup(groupID)
		req.NoError(err)
		req.Len(members, 3)
		req.Equal("alice", members[0].UserID)
		req.Equal("bob", members[1].UserID)
		req.Equal("charlie", members[2].UserID)
		return nil
	})
	req.NoError(err)
}

func TestJoinRequestStore_PendingMarker(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	groupID := uuid.NewString()
	userID := uuid.NewString()

	first := domain.NewJoinRequest(groupID, userID, time.Now().UTC())
	req.NoError(store.ReadWrite(ctx, func(tx contract.Tx) error {
		return tx.Requests().Create(first)
	}))

	t.Run("should refuse a second request while one is pending", func(t *testing.T) {
		err := store.ReadWrite(ctx, func(tx contract.Tx) error {
			return tx.Requests().Create(domain.NewJoinRequest(groupID, userID, time.Now().UTC()))
		})
		require.ErrorIs(t, err, errors.ErrRequestAlreadyPending)
	})

	t.Run("should allow a new request once the previous one is terminal", func(t *testing.T) {
		req.NoError(store.ReadWrite(ctx, func(tx contract.Tx) error {
			loaded, err := tx.Requests().Get(first.ID)
			if err != nil {
				return err
			}
			if err = loaded.Reject(time.Now().UTC()); err != nil {
				return err
			}
			return tx.Requests().Update(loaded)
		}))

		second := domain.NewJoinRequest(groupID, userID, time.Now().UTC())
		req.NoError(store.ReadWrite(ctx, func(tx contract.Tx) error {
			return tx.Requests().Create(second)
		}))

		// Both requests stay listed as history
		err := store.ReadOnly(ctx, func(tx contract.Tx) error {
			all, err := tx.Requests().ListByGroup(groupID)
			req.NoError(err)
			req.Len(all, 2)
			req.Equal(first.ID, all[0].ID, "oldest request must come first")
			req.Equal(domain.RequestRejected, all[0].Status)
			req.Equal(second.ID, all[1].ID)
			req.Equal(domain.RequestPending, all[1].Status)
			return nil
		})
		req.NoError(err)
	})

	t.Run("should return request not found for unknown id", func(t *testing.T) {
		err := store.ReadOnly(ctx, func(tx contract.Tx) error {
			_, err := tx.Requests().Get("missing")
			return err
		})
		require.ErrorIs(t, err, errors.ErrRequestNotFound)
	})
}

func TestStore_RollbackOnError(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	group := domain.NewGroup("doomed", "", domain.GroupPublic, "owner", time.Now().UTC())

	// When: the closure writes a group and then fails
	err := store.ReadWrite(ctx, func(tx contract.Tx) error {
		if err := tx.Groups().Create(group); err != nil {
			return err
		}
		return errors.ErrNotAdmin
	})
	req.ErrorIs(err, errors.ErrNotAdmin)

	// Then: nothing was committed
	err = store.ReadOnly(ctx, func(tx contract.Tx) error {
		_, err := tx.Groups().Get(group.ID)
		return err
	})
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func TestStore_CancelledContext(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.ReadWrite(ctx, func(tx contract.Tx) error {
		t.Fatal("closure must not run on a cancelled context")
		return nil
	})
	req.ErrorIs(err, context.Canceled)
}

// TestStore_ConcurrentDuplicateRequests pins the isolation guarantee:
// two transactions that both observe "no pending request" and insert
// one cannot both commit. The barrier keeps both transactions open at
// the same time, so the loser must abort on conflict.
func TestStore_ConcurrentDuplicateRequests(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()

	groupID := uuid.NewString()
	userID := uuid.NewString()

	var barrier sync.WaitGroup
	barrier.Add(2)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- store.ReadWrite(ctx, func(tx contract.Tx) error {
				err := tx.Requests().Create(domain.NewJoinRequest(groupID, userID, time.Now().UTC()))

				// Hold the transaction open until the other one performed
				// its read, forcing the commits to overlap.
				barrier.Done()
				barrier.Wait()
				return err
			})
		}()
	}

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			failures = append(failures, err)
		}
	}

	// Then: exactly one commit went through
	req.Len(failures, 1, "exactly one of the two transactions must fail")
	req.ErrorIs(failures[0], errors.ErrTxConflict)
	req.Equal(errors.KindConflict, errors.KindOf(failures[0]))

	// And: a single pending request exists
	err := store.ReadOnly(ctx, func(tx contract.Tx) error {
		all, err := tx.Requests().ListByGroup(groupID)
		req.NoError(err)
		req.Len(all, 1)
		return nil
	})
	req.NoError(err)
}
