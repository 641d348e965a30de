// Package domain contains core concepts of the group membership system.
// This file defines the JoinRequest state machine.
// A request is PENDING until an admin resolves it; terminal states are final.
package domain

import (
	"group-lab/errors"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Terminal reports whether the status is final.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// JoinRequest is a user's intent to join a public group.
// ResolvedAt stays zero while the request is PENDING.
type JoinRequest struct {
	ID         string
	GroupID    string
	UserID     string
	Status     RequestStatus
	CreatedAt  time.Time
	ResolvedAt time.Time
}

func NewJoinRequest(groupID, userID string, at time.Time) JoinRequest {
	return JoinRequest{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		Status:    RequestPending,
		CreatedAt: at,
	}
}

// Approve moves the request to APPROVED. Only a PENDING request can move.
func (r *JoinRequest) Approve(at time.Time) error {
	if r.Status.Terminal() {
		return errors.ErrRequestAlreadyHandled
	}
	r.Status = RequestApproved
	r.ResolvedAt = at
	return nil
}

// Reject moves the request to REJECTED. Only a PENDING request can move.
func (r *JoinRequest) Reject(at time.Time) error {
	if r.Status.Terminal() {
		return errors.ErrRequestAlreadyHandled
	}
	r.Status = RequestRejected
	r.ResolvedAt = at
	return nil
}
