// Package domain contains core concepts of the group membership system.
// This file defines Group entities and their visibility rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type GroupType string

const (
	// GroupPublic groups accept join requests from any user.
	GroupPublic GroupType = "PUBLIC"
	// GroupPrivate groups only grow through direct adds by an admin.
	GroupPrivate GroupType = "PRIVATE"
)

func (t GroupType) Valid() bool {
	return t == GroupPublic || t == GroupPrivate
}

// Group is a chat group. OwnerID is the creator and never changes.
type Group struct {
	ID          string
	Name        string
	Description string
	Type        GroupType
	OwnerID     string
	CreatedAt   time.Time
}

func NewGroup(name, description string, groupType GroupType, ownerID string, at time.Time) Group {
	return Group{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Type:        groupType,
		OwnerID:     ownerID,
		CreatedAt:   at,
	}
}
