package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrRequisiteAlreadyExists indicates that the user already has an account with the given requisite.
	ErrRequisiteAlreadyExists = errors.New("account requisite already exists")
)

// Account holds user balance data.
type Account struct {
	Requisite string    `json:"requisite"`
	Owner     string    `json:"owner"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}
