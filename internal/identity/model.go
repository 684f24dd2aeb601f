// Package identity implements the embedded identity store: user records,
// credentials, and the current-session pointer, persisted to the shared
// key/value namespace.
package identity

import "time"

// Role determines what a user may administer. It is assigned once at
// registration and never changes: the first user registered against an empty
// store becomes RoleAdmin, everyone after that RoleUser.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User is a stored user record. ID, Role, and CreatedAt are immutable after
// registration; Name, Email, and Avatar can change through UpdateProfile.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileUpdate is a partial update applied to the current session's user.
// Nil fields are left untouched. Role, ID, and CreatedAt are not part of the
// contract and cannot be changed.
type ProfileUpdate struct {
	Name   *string
	Email  *string
	Avatar *string
}
