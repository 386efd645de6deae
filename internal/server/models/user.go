// Package models contains the server-side domain types.
package models

import "time"

// Role is the closed set of identities governing authorization.
type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User is an account record. PasswordHash is never serialized; role is
// immutable after creation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
