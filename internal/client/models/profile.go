// Package models holds the client's view of gateway responses.
package models

import "time"

// Profile is the signed-in user as reported by the gateway. CreatedAt is
// zero when the gateway did not send it (login responses).
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}
