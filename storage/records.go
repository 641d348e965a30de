package storage

import (
	"encoding/json"
	"time"

	"group-lab/domain"
)

// Disk records are the JSON shapes written to badger. Timestamps are
// stored as UnixNano so records stay comparable and compact; conversion
// back always normalizes to UTC.

type diskUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func fromUser(u domain.User) diskUser {
	return diskUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UnixNano(),
	}
}

func toUser(d diskUser) domain.User {
	return domain.User{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    time.Unix(0, d.CreatedAt).UTC(),
	}
}

type diskGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   int64  `json:"created_at"`
}

func fromGroup(g domain.Group) diskGroup {
	return diskGroup{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Type:        string(g.Type),
		OwnerID:     g.OwnerID,
		CreatedAt:   g.CreatedAt.UnixNano(),
	}
}

func toGroup(d diskGroup) domain.Group {
	return domain.Group{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Type:        domain.GroupType(d.Type),
		OwnerID:     d.OwnerID,
		CreatedAt:   time.Unix(0, d.CreatedAt).UTC(),
	}
}

type diskMembership struct {
	GroupID  string `json:"group_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

func fromMembership(m domain.Membership) diskMembership {
	return diskMembership{
		GroupID:  m.GroupID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt.UnixNano(),
	}
}

func toMembership(d diskMembership) domain.Membership {
	return domain.Membership{
		GroupID:  d.GroupID,
		UserID:   d.UserID,
		Role:     domain.Role(d.Role),
		JoinedAt: time.Unix(0, d.JoinedAt).UTC(),
	}
}

type diskRequest struct {
	ID         string `json:"id"`
	GroupID    string `json:"group_id"`
	UserID     string `json:"user_id"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
	ResolvedAt int64  `json:"resolved_at,omitempty"`
}

func fromRequest(r domain.JoinRequest) diskRequest {
	d := diskRequest{
		ID:        r.ID,
		GroupID:   r.GroupID,
		UserID:    r.UserID,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.UnixNano(),
	}
	if !r.ResolvedAt.IsZero() {
		d.ResolvedAt = r.ResolvedAt.UnixNano()
	}
	return d
}

func toRequest(d diskRequest) domain.JoinRequest {
	r := domain.JoinRequest{
		ID:        d.ID,
		GroupID:   d.GroupID,
		UserID:    d.UserID,
		Status:    domain.RequestStatus(d.Status),
		CreatedAt: time.Unix(0, d.CreatedAt).UTC(),
	}
	if d.ResolvedAt != 0 {
		r.ResolvedAt = time.Unix(0, d.ResolvedAt).UTC()
	}
	return r
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
