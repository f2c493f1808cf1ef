package transferservice

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/bank-registry/internal/domain"
	"github.com/go-petr/bank-registry/internal/metrics"
	"github.com/go-petr/bank-registry/internal/registry"
	"github.com/go-petr/bank-registry/pkg/errorspkg"
	"github.com/go-petr/bank-registry/pkg/randompkg"
)

func randomAccount(balance string) domain.Account {
	return domain.Account{
		Requisite: randompkg.Requisite(),
		Owner:     randompkg.Passport(),
		Balance:   balance,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	testAccount1 := randomAccount("900")
	testAccount2 := randomAccount("1100")
	testAmount := "100"

	validArg := domain.CreateTransferParams{
		FromPassport:  testAccount1.Owner,
		FromRequisite: testAccount1.Requisite,
		ToPassport:    testAccount2.Owner,
		ToRequisite:   testAccount2.Requisite,
		Amount:        testAmount,
	}

	testResult := domain.TransferResult{
		Transfer: domain.Transfer{
			ID:            uuid.New(),
			FromPassport:  testAccount1.Owner,
			FromRequisite: testAccount1.Requisite,
			ToPassport:    testAccount2.Owner,
			ToRequisite:   testAccount2.Requisite,
			Amount:        testAmount,
		},
		FromAccount: testAccount1,
		ToAccount:   testAccount2,
	}

	type input struct {
		fromPassport string
		arg          domain.CreateTransferParams
	}

	testCases := []struct {
		name          string
		input         input
		buildStubs    func(repo *MockRepo)
		checkResponse func(t *testing.T, res domain.TransferResult, err error)
	}{
		{
			name: "InvalidAmount",
			input: input{
				fromPassport: testAccount1.Owner,
				arg: domain.CreateTransferParams{
					FromPassport:  testAccount1.Owner,
					FromRequisite: testAccount1.Requisite,
					ToPassport:    testAccount2.Owner,
					ToRequisite:   testAccount2.Requisite,
					Amount:        "!@#$",
				},
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "ZeroAmount",
			input: input{
				fromPassport: testAccount1.Owner,
				arg: domain.CreateTransferParams{
					FromPassport:  testAccount1.Owner,
					FromRequisite: testAccount1.Requisite,
					ToPassport:    testAccount2.Owner,
					ToRequisite:   testAccount2.Requisite,
					Amount:        "0",
				},
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNegativeAmount)
			},
		},
		{
			name: "NegativeAmount",
			input: input{
				fromPassport: testAccount1.Owner,
				arg: domain.CreateTransferParams{
					FromPassport:  testAccount1.Owner,
					FromRequisite: testAccount1.Requisite,
					ToPassport:    testAccount2.Owner,
					ToRequisite:   testAccount2.Requisite,
					Amount:        "-10",
				},
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.ErrorIs(t, err, domain.ErrNegativeAmount)
			},
		},
		{
			name: "InvalidOwner",
			input: input{
				fromPassport: testAccount2.Owner,
				arg:          validArg,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidOwner)
			},
		},
		{
			name: "InsufficientBalance",
			input: input{
				fromPassport: testAccount1.Owner,
				arg:          validArg,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfer(gomock.Any(), validArg).
					Times(1).
					Return(domain.TransferResult{}, domain.ErrInsufficientBalance)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientBalance)
			},
		},
		{
			name: "RepoError",
			input: input{
				fromPassport: testAccount1.Owner,
				arg:          validArg,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfer(gomock.Any(), validArg).
					Times(1).
					Return(domain.TransferResult{}, errorspkg.ErrInternal)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
		{
			name: "DefaultFromPassport",
			input: input{
				fromPassport: testAccount1.Owner,
				arg: domain.CreateTransferParams{
					FromRequisite: testAccount1.Requisite,
					ToPassport:    testAccount2.Owner,
					ToRequisite:   testAccount2.Requisite,
					Amount:        testAmount,
				},
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfer(gomock.Any(), validArg).
					Times(1).
					Return(testResult, nil)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testResult, res)
			},
		},
		{
			name: "OK",
			input: input{
				fromPassport: testAccount1.Owner,
				arg:          validArg,
			},
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfer(gomock.Any(), validArg).
					Times(1).
					Return(testResult, nil)
			},
			checkResponse: func(t *testing.T, res domain.TransferResult, err error) {
				require.NoError(t, err)
				require.Equal(t, testResult, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo, nil)

			res, err := service.Transfer(context.Background(), tc.input.fromPassport, tc.input.arg)
			tc.checkResponse(t, res, err)
		})
	}
}

func TestTransferMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	m, err := metrics.New(reg)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	gomock.InOrder(
		repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(1).Return(domain.TransferResult{}, nil),
		repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(1).Return(domain.TransferResult{}, domain.ErrInsufficientBalance),
	)

	service := New(repo, m)

	passport := randompkg.Passport()
	arg := domain.CreateTransferParams{
		FromPassport:  passport,
		FromRequisite: randompkg.Requisite(),
		ToPassport:    randompkg.Passport(),
		ToRequisite:   randompkg.Requisite(),
		Amount:        "12.5",
	}

	_, err = service.Transfer(context.Background(), passport, arg)
	require.NoError(t, err)

	_, err = service.Transfer(context.Background(), passport, arg)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	arg.Amount = "abc"
	_, err = service.Transfer(context.Background(), passport, arg)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	want := `
# HELP bank_transfers_total Number of transfer attempts by outcome.
# TYPE bank_transfers_total counter
bank_transfers_total{outcome="insufficient_balance"} 1
bank_transfers_total{outcome="invalid_amount"} 1
bank_transfers_total{outcome="ok"} 1
# HELP bank_transferred_amount_total Sum of amounts moved by successful transfers.
# TYPE bank_transferred_amount_total counter
bank_transferred_amount_total 12.5
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(want),
		"bank_transfers_total", "bank_transferred_amount_total")
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	t.Parallel()

	account := randomAccount("10")

	testCases := []struct {
		name       string
		pageSize   int32
		pageID     int32
		buildStubs func(repo *MockRepo)
		wantError  error
	}{
		{
			name:     "FirstPage",
			pageSize: 5,
			pageID:   1,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfers(gomock.Any(), domain.ListTransfersParams{
						Passport:  account.Owner,
						Requisite: account.Requisite,
						Limit:     5,
						Offset:    0,
					}).
					Times(1).
					Return([]domain.Transfer{}, nil)
			},
		},
		{
			name:     "ThirdPage",
			pageSize: 10,
			pageID:   3,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfers(gomock.Any(), domain.ListTransfersParams{
						Passport:  account.Owner,
						Requisite: account.Requisite,
						Limit:     10,
						Offset:    20,
					}).
					Times(1).
					Return([]domain.Transfer{}, nil)
			},
		},
		{
			name:     "OffsetOverflow",
			pageSize: 2,
			pageID:   math.MaxInt32,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfers(gomock.Any(), domain.ListTransfersParams{
						Passport:  account.Owner,
						Requisite: account.Requisite,
						Limit:     2,
						Offset:    math.MaxInt32,
					}).
					Times(1).
					Return([]domain.Transfer{}, nil)
			},
		},
		{
			name:     "AccountNotFound",
			pageSize: 5,
			pageID:   1,
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().
					Transfers(gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, domain.ErrAccountNotFound)
			},
			wantError: domain.ErrAccountNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			got, err := New(repo, nil).List(context.Background(), account.Owner, account.Requisite, tc.pageSize, tc.pageID)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				require.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
		})
	}
}

func TestListPastTheEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	r := registry.New()
	r.AddUser(domain.User{Passport: "P1", FullName: "Alice"})
	r.AddUser(domain.User{Passport: "P2", FullName: "Bob"})
	r.AddAccount("P1", domain.Account{Requisite: "A1", Balance: "100"})
	r.AddAccount("P2", domain.Account{Requisite: "B1", Balance: "0"})

	s := New(r, nil)

	for i := 0; i < 2; i++ {
		_, err := s.Transfer(ctx, "P1", domain.CreateTransferParams{
			FromRequisite: "A1", ToPassport: "P2", ToRequisite: "B1", Amount: "10",
		})
		require.NoError(t, err)
	}

	testCases := []struct {
		name   string
		pageID int32
		want   int
	}{
		{name: "FirstPage", pageID: 1, want: 2},
		{name: "SecondPage", pageID: 2, want: 0},
		{name: "OffsetOverflow", pageID: math.MaxInt32, want: 0},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got, err := s.List(ctx, "P1", "A1", 2, tc.pageID)
			require.NoError(t, err)
			require.Len(t, got, tc.want)
		})
	}
}
