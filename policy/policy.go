// Package policy holds the authorization rules of the membership engine.
// Every predicate is pure: it decides from state the caller already
// loaded, and never touches storage.
package policy

import (
	"group-lab/domain"
)

// CanManageGroup reports whether the actor may perform admin actions
// (approve or reject requests, add members, change roles).
// The actor membership is nil when the actor does not belong to the group.
func CanManageGroup(actor *domain.Membership) bool {
	return actor != nil && actor.IsAdmin()
}

// CanRemoveMember reports whether actorID may remove targetID.
// Members always may remove themselves; removing someone else is an
// admin action.
func CanRemoveMember(actorID, targetID string, actor *domain.Membership) bool {
	if actorID == targetID {
		return true
	}
	return CanManageGroup(actor)
}

// CanLeave reports whether userID may leave the group. The owner cannot,
// this is the single place ownership is protected from orphaning a group.
func CanLeave(group domain.Group, userID string) bool {
	return group.OwnerID != userID
}
