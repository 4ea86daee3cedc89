// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered principal. At least one of Email and PhoneNumber is set.
type User struct {
	ID           string
	Name         string
	Email        string
	PhoneNumber  string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    time.Time
}
