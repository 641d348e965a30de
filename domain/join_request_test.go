package domain

import (
	"group-lab/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJoinRequest_Approve(t *testing.T) {
	t.Run("should approve a pending request", func(t *testing.T) {
		req := require.New(t)
		now := time.Now()
		jr := NewJoinRequest("group-1", "user-1", now)

		req.Equal(RequestPending, jr.Status)
		req.True(jr.ResolvedAt.IsZero())

		resolved := now.Add(time.Minute)
		req.NoError(jr.Approve(resolved))

		req.Equal(RequestApproved, jr.Status)
		req.Equal(resolved, jr.ResolvedAt)
	})

	t.Run("should refuse to approve twice", func(t *testing.T) {
		req := require.New(t)
		jr := NewJoinRequest("group-1", "user-1", time.Now())

		req.NoError(jr.Approve(time.Now()))
		req.ErrorIs(jr.Approve(time.Now()), errors.ErrRequestAlreadyHandled)
	})

	t.Run("should refuse to approve a rejected request", func(t *testing.T) {
		req := require.New(t)
		jr := NewJoinRequest("group-1", "user-1", time.Now())

		req.NoError(jr.Reject(time.Now()))
		req.ErrorIs(jr.Approve(time.Now()), errors.ErrRequestAlreadyHandled)
		req.Equal(RequestRejected, jr.Status)
	})
}

func TestJoinRequest_Reject(t *testing.T) {
	t.Run("should reject a pending request", func(t *testing.T) {
		req := require.New(t)
		jr := NewJoinRequest("group-1", "user-1", time.Now())

		req.NoError(jr.Reject(time.Now()))
		req.Equal(RequestRejected, jr.Status)
		req.False(jr.ResolvedAt.IsZero())
	})

	t.Run("should refuse to reject an approved request", func(t *testing.T) {
		req := require.New(t)
		jr := NewJoinRequest("group-1", "user-1", time.Now())

		req.NoError(jr.Approve(time.Now()))
		req.ErrorIs(jr.Reject(time.Now()), errors.ErrRequestAlreadyHandled)
		req.Equal(RequestApproved, jr.Status)
	})
}

func TestRequestStatus_Terminal(t *testing.T) {
	req := require.New(t)

	req.False(RequestPending.Terminal())
	req.True(RequestApproved.Terminal())
	req.True(RequestRejected.Terminal())
}

func TestEnums_Valid(t *testing.T) {
	req := require.New(t)

	req.True(GroupPublic.Valid())
	req.True(GroupPrivate.Valid())
	req.False(GroupType("SECRET").Valid())

	req.True(RoleAdmin.Valid())
	req.True(RoleMember.Valid())
	req.False(Role("OWNER").Valid())
}
