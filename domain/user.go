// Package domain contains core concepts of the group membership system.
// This file defines the User entity as seen by the membership engine.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"
)

// User is an account known to the directory. PasswordHash is the
// argon2id encoded string, never the plain password.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
