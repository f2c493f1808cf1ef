// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserAlreadyExists indicates that the user with the given passport is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrPassportConflict indicates that the passport is registered to a user with different data.
	ErrPassportConflict = errors.New("passport belongs to another user")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword indicates the wrong password for the given user.
	ErrWrongPassword = errors.New("wrong password")
)

// User holds user data.
//
// Passport is the identity of the user and never changes after registration.
type User struct {
	Passport       string    `json:"passport"`
	FullName       string    `json:"full_name"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserWithoutPassword is User data excluding password data.
type UserWithoutPassword struct {
	Passport  string    `json:"passport"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u User) UserWithoutPassword {
	return UserWithoutPassword{
		Passport:  u.Passport,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
