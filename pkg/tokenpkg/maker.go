// Package tokenpkg provides access token creation and verification.
package tokenpkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const minSecretKeySize = 32

// Different types of error returned by the VerifyToken function.
var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific passport and duration.
	CreateToken(passport string, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// Payload contains the payload data of the token.
type Payload struct {
	ID        uuid.UUID `json:"id"`
	Passport  string    `json:"passport"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

// NewPayload creates a new token payload with a specific passport and duration.
func NewPayload(passport string, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		ID:        tokenID,
		Passport:  passport,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	return payload, nil
}

// Valid checks if the token payload is valid or not.
func (payload *Payload) Valid() error {
	if time.Now().After(payload.ExpiredAt) {
		return ErrExpiredToken
	}

	return nil
}

// New returns the maker of the given kind ("paseto" or "jwt").
func New(kind, symmetricKey string) (Maker, error) {
	switch kind {
	case "", "paseto":
		return NewPasetoMaker(symmetricKey)
	case "jwt":
		return NewJWTMaker(symmetricKey)
	}

	return nil, fmt.Errorf("unsupported token kind %q", kind)
}
