//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"

	"group-lab/domain"
)

// UnitOfWork runs a function against a single store transaction. Every
// read and write inside fn commits or aborts together, which is what
// makes multi-record operations (create group + owner membership,
// approve request + insert membership) atomic.
type UnitOfWork interface {
	ReadWrite(ctx context.Context, fn func(tx Tx) error) error
	ReadOnly(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the stores bound to one transaction. A Tx must not be
// retained outside the closure it was handed to.
type Tx interface {
	Groups() GroupStore
	Members() MembershipStore
	Requests() JoinRequestStore
}

type GroupStore interface {
	Create(group domain.Group) error
	Get(groupID string) (domain.Group, error)
	List() ([]domain.Group, error)
}

// MembershipStore persists membership rows keyed by (group, user).
type MembershipStore interface {
	// Put inserts a new row. Fails with ErrAlreadyMember when the pair
	// already holds one.
	Put(m domain.Membership) error
	Get(groupID, userID string) (domain.Membership, error)
	// Update overwrites an existing row. Fails with ErrMemberNotFound
	// when there is nothing to update.
	Update(m domain.Membership) error
	Delete(groupID, userID string) error
	ListByGroup(groupID string) ([]domain.Membership, error)
}

// JoinRequestStore persists join requests and the single-PENDING rule.
type JoinRequestStore interface {
	// Create inserts a PENDING request. Fails with ErrRequestAlreadyPending
	// when the (group, user) pair already has one in flight.
	Create(r domain.JoinRequest) error
	Get(requestID string) (domain.JoinRequest, error)
	// Update rewrites the request and clears the pending marker once the
	// status is terminal.
	Update(r domain.JoinRequest) error
	ListByGroup(groupID string) ([]domain.JoinRequest, error)
}

// IUserDirectory is the account store. It lives outside the unit of work
// because directory writes never pair with membership writes.
type IUserDirectory interface {
	CreateUser(user domain.User) error
	UserByID(id string) (domain.User, error)
	UserByEmail(email string) (domain.User, error)
}
