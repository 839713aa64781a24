// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account allowed to sign in. PasswordHash is an argon2id PHC
// string or a legacy bcrypt hash and never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}
