// Package domain contains core concepts of the group membership system.
// This file defines Membership rows and roles.
package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Membership links a user to a group with a role. Its identity is the
// (GroupID, UserID) pair; a user holds at most one row per group.
type Membership struct {
	GroupID  string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

func NewMembership(groupID, userID string, role Role, at time.Time) Membership {
	return Membership{
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: at,
	}
}

func (m Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
