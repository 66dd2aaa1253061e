// Package models holds the gateway's user record types.
package models

import "time"

// User is a record in the user store. PasswordHash never leaves the gateway.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the public part of a User.
type Profile struct {
	ID        string
	UserName  string
	Email     string
	CreatedAt time.Time
}

func (u *User) Profile() *Profile {
	return &Profile{ID: u.ID, UserName: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt}
}
