// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. The email is the identity: it is the primary
// key of the users table and the owner column of every record table.
//
// PasswordHash is a full bcrypt string (cost and salt embedded), so no separate
// salt column exists. It never leaves the server, hence the "-" JSON tag.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Token is the bearer credential handed out on register and login.
//
// Expiry is a misnomer kept for wire compatibility with existing clients: it
// holds the issuance timestamp, and nothing enforces an expiry on it.
type Token struct {
	Hash   string `json:"hash"`
	Email  string `json:"email"`
	Expiry string `json:"expiry"`
}
