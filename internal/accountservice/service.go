// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/bank-registry/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Attach(ctx context.Context, passport string, a domain.Account) (domain.Account, error)
	Account(ctx context.Context, passport, requisite string) (domain.Account, error)
	Accounts(ctx context.Context, passport string) ([]domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Create opens and returns account with the given requisite and opening balance for the owner.
func (s *Service) Create(ctx context.Context, owner, requisite, balance string) (domain.Account, error) {
	account, err := s.repo.Attach(ctx, owner, domain.Account{
		Requisite: requisite,
		Owner:     owner,
		Balance:   balance,
	})
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Str("requisite", requisite).Msg("account is not opened")
		return account, err
	}

	return account, nil
}

// Get returns the owner's account with the given requisite.
func (s *Service) Get(ctx context.Context, owner, requisite string) (domain.Account, error) {
	account, err := s.repo.Account(ctx, owner, requisite)
	if err != nil {
		return account, err
	}

	return account, nil
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string) ([]domain.Account, error) {
	accounts, err := s.repo.Accounts(ctx, owner)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}
