package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates negative amount.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidOwner indicates that the user is unauthorized to transfer money from the account.
	ErrInvalidOwner = errors.New("unauthorized owner")
)

// Transfer holds transfer data between two accounts.
type Transfer struct {
	ID            uuid.UUID `json:"id"`
	FromPassport  string    `json:"from_passport"`
	FromRequisite string    `json:"from_requisite"`
	ToPassport    string    `json:"to_passport"`
	ToRequisite   string    `json:"to_requisite"`
	Amount        string    `json:"amount"` // must be positive
	CreatedAt     time.Time `json:"created_at"`
}

// CreateTransferParams is the input data for the transfer.
type CreateTransferParams struct {
	FromPassport  string `json:"from_passport"`
	FromRequisite string `json:"from_requisite"`
	ToPassport    string `json:"to_passport"`
	ToRequisite   string `json:"to_requisite"`
	Amount        string `json:"amount"`
}

// ListTransfersParams is the input data to get transfers of one account.
type ListTransfersParams struct {
	Passport  string `json:"passport"`
	Requisite string `json:"requisite"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

// TransferResult is the result of the transfer.
type TransferResult struct {
	Transfer    Transfer `json:"transfer"`
	FromAccount Account  `json:"from_account"`
	ToAccount   Account  `json:"to_account"`
}
