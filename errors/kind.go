package errors

import (
	stderrors "errors"
)

// Kind classifies an error for callers that act on categories rather
// than on individual sentinels (CLIs, future transports).
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidOperation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindConflict:
		return "CONFLICT"
	case KindInvalidOperation:
		return "INVALID_OPERATION"
	default:
		return "INTERNAL"
	}
}

var kinds = map[error]Kind{
	ErrUserNotFound:    KindNotFound,
	ErrGroupNotFound:   KindNotFound,
	ErrMemberNotFound:  KindNotFound,
	ErrRequestNotFound: KindNotFound,

	ErrNotAdmin:           KindForbidden,
	ErrInvalidCredentials: KindForbidden,

	ErrAlreadyMember:         KindConflict,
	ErrRequestAlreadyPending: KindConflict,
	ErrRequestAlreadyHandled: KindConflict,
	ErrEmailTaken:            KindConflict,
	ErrTxConflict:            KindConflict,

	ErrGroupNotPublic:      KindInvalidOperation,
	ErrGroupNotPrivate:     KindInvalidOperation,
	ErrOwnerCannotLeave:    KindInvalidOperation,
	ErrInvalidGroupType:    KindInvalidOperation,
	ErrInvalidRole:         KindInvalidOperation,
	ErrInvalidGroupName:    KindInvalidOperation,
	ErrInvalidPassword:     KindInvalidOperation,
	ErrInvalidRegistration: KindInvalidOperation,
}

// KindOf resolves the kind of err by unwrapping until a known sentinel
// matches. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	for sentinel, kind := range kinds {
		if stderrors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// Is re-exports the standard library check so callers of this package
// do not need a second errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
