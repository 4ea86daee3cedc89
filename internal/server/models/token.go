package models

import "time"

// IssuedToken is the server-side record of a credential handed out at login,
// signup or reset request. Revoked rows are never flipped back.
type IssuedToken struct {
	Token     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}
