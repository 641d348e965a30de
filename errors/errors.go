package errors

import "fmt"

var (
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrGroupNotFound   = fmt.Errorf("group not found")
	ErrMemberNotFound  = fmt.Errorf("member not found in this group")
	ErrRequestNotFound = fmt.Errorf("join request not found")

	ErrNotAdmin           = fmt.Errorf("only group admins can perform this action")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	ErrAlreadyMember         = fmt.Errorf("user is already a member of this group")
	ErrRequestAlreadyPending = fmt.Errorf("join request already sent")
	ErrRequestAlreadyHandled = fmt.Errorf("join request has already been processed")
	ErrEmailTaken            = fmt.Errorf("email already registered")
	ErrTxConflict            = fmt.Errorf("transaction conflict, please retry")

	ErrGroupNotPublic   = fmt.Errorf("can only request to join public groups")
	ErrGroupNotPrivate  = fmt.Errorf("can only directly add members to private groups")
	ErrOwnerCannotLeave = fmt.Errorf("group owner cannot leave the group, transfer ownership or delete the group")
	ErrInvalidGroupType = fmt.Errorf("group type must be PUBLIC or PRIVATE")
	ErrInvalidRole      = fmt.Errorf("role must be ADMIN or MEMBER")
	ErrInvalidGroupName = fmt.Errorf("group name must not be empty")

	ErrInvalidPassword     = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidRegistration = fmt.Errorf("invalid registration input")
	ErrTokenGeneration     = fmt.Errorf("failed to generate token")
)
