// Package userservice manages business logic layer of users.
package userservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-petr/bank-registry/internal/domain"
	"github.com/go-petr/bank-registry/pkg/errorspkg"
	"github.com/go-petr/bank-registry/pkg/passpkg"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Register(ctx context.Context, u domain.User) (domain.User, error)
	User(ctx context.Context, passport string) (domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New return user service struct to manage user bussines logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// Create registers and returns user.
func (s *Service) Create(ctx context.Context, passport, password, fullName string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.User{
		Passport:       passport,
		FullName:       fullName,
		HashedPassword: hashedPassword,
	}

	gotUser, err := s.repo.Register(ctx, arg)
	if err != nil {
		return result, err
	}

	result = domain.NewUserWithoutPassword(gotUser)

	return result, nil
}

// CheckPassword checks if the password is valid for the given passport.
func (s *Service) CheckPassword(ctx context.Context, passport, pass string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWithoutPassword

	gotUser, err := s.repo.User(ctx, passport)
	if err != nil {
		return response, err
	}

	err = passpkg.Check(pass, gotUser.HashedPassword)
	if err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrWrongPassword
	}

	response = domain.NewUserWithoutPassword(gotUser)

	return response, nil
}

// Get returns the user with the given passport.
func (s *Service) Get(ctx context.Context, passport string) (domain.UserWithoutPassword, error) {
	gotUser, err := s.repo.User(ctx, passport)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return domain.NewUserWithoutPassword(gotUser), nil
}
