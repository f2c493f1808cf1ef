// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-registry/internal/domain"
	"github.com/go-petr/bank-registry/internal/metrics"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferResult, error)
	Transfers(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo    Repo
	metrics *metrics.Metrics
}

// New return transfer service struct to manage transfer bussines logic.
// m may be nil.
func New(tr Repo, m *metrics.Metrics) *Service {
	return &Service{
		repo:    tr,
		metrics: m,
	}
}

func validRequest(ctx context.Context, fromPassport string, arg domain.CreateTransferParams) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return amount, domain.ErrInvalidAmount
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		l.Info().Str("amount", arg.Amount).Msg("non-positive amount")
		return amount, domain.ErrNegativeAmount
	}

	if arg.FromPassport != fromPassport {
		l.Info().Str("from_passport", arg.FromPassport).Msg("transfer from foreign account")
		return amount, domain.ErrInvalidOwner
	}

	return amount, nil
}

// Transfer checks if transfer request is valid and then executes transfer on behalf of fromPassport.
// An empty arg.FromPassport means the account of fromPassport.
func (s *Service) Transfer(ctx context.Context, fromPassport string, arg domain.CreateTransferParams) (domain.TransferResult, error) {
	if arg.FromPassport == "" {
		arg.FromPassport = fromPassport
	}

	amount, err := validRequest(ctx, fromPassport, arg)
	if err != nil {
		s.metrics.ObserveTransfer(0, err)
		return domain.TransferResult{}, err
	}

	result, err := s.repo.Transfer(ctx, arg)
	s.metrics.ObserveTransfer(amount.InexactFloat64(), err)

	if err != nil {
		return result, err
	}

	return result, nil
}

// List returns a page of transfers of the owner's account, oldest first.
func (s *Service) List(ctx context.Context, owner, requisite string, pageSize, pageID int32) ([]domain.Transfer, error) {
	offset := int64(pageID-1) * int64(pageSize)
	if offset > math.MaxInt32 {
		offset = math.MaxInt32
	}

	arg := domain.ListTransfersParams{
		Passport:  owner,
		Requisite: requisite,
		Limit:     pageSize,
		Offset:    int32(offset),
	}

	transfers, err := s.repo.Transfers(ctx, arg)
	if err != nil {
		return nil, err
	}

	return transfers, nil
}
