// Package registry keeps users and their accounts in memory and moves money between accounts.
//
// Registry is the system of record of the application. All methods are safe for concurrent use:
// a single lock guards the whole registry, so a transfer is never observed half-applied.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-registry/internal/domain"
)

// ErrInvalidSnapshot indicates that a snapshot breaks registry invariants.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

type account struct {
	requisite string
	balance   decimal.Decimal
	createdAt time.Time
}

type holder struct {
	user     domain.User
	accounts []*account
}

func (h *holder) find(requisite string) *account {
	for _, a := range h.accounts {
		if a.requisite == requisite {
			return a
		}
	}

	return nil
}

// Registry maps users, keyed by passport, to the ordered list of their accounts.
type Registry struct {
	mu        sync.RWMutex
	users     map[string]*holder
	passports []string // registration order
	transfers []domain.Transfer
	now       func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		users: make(map[string]*holder),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func view(owner string, a *account) domain.Account {
	return domain.Account{
		Requisite: a.requisite,
		Owner:     owner,
		Balance:   a.balance.String(),
		CreatedAt: a.createdAt,
	}
}

// AddUser registers the user with an empty account list.
// It is a no-op if the passport is already registered.
func (r *Registry) AddUser(u domain.User) {
	_, _ = r.Register(context.Background(), u)
}

// AddAccount attaches the account to the user with the given passport.
// It is a no-op if there is no such user or the user already has an account with the same requisite.
func (r *Registry) AddAccount(passport string, a domain.Account) {
	_, _ = r.Attach(context.Background(), passport, a)
}

// FindByPassport returns the user with the given passport.
func (r *Registry) FindByPassport(passport string) (domain.User, bool) {
	u, err := r.User(context.Background(), passport)

	return u, err == nil
}

// FindByRequisite returns the account with the given requisite owned by the user with the given passport.
func (r *Registry) FindByRequisite(passport, requisite string) (domain.Account, bool) {
	a, err := r.Account(context.Background(), passport, requisite)

	return a, err == nil
}

// TransferMoney moves amount from the source account to the destination account.
// It reports whether the transfer was applied; on false neither balance has changed.
func (r *Registry) TransferMoney(srcPassport, srcRequisite, destPassport, destRequisite string, amount decimal.Decimal) bool {
	arg := domain.CreateTransferParams{
		FromPassport:  srcPassport,
		FromRequisite: srcRequisite,
		ToPassport:    destPassport,
		ToRequisite:   destRequisite,
		Amount:        amount.String(),
	}

	_, err := r.Transfer(context.Background(), arg)

	return err == nil
}

// Register registers the user and returns it.
//
// A taken passport yields domain.ErrUserAlreadyExists when the stored user has the same full name,
// and domain.ErrPassportConflict otherwise.
func (r *Registry) Register(ctx context.Context, u domain.User) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.users[u.Passport]; ok {
		if h.user.FullName != u.FullName {
			l.Warn().Str("passport", u.Passport).Msg("passport registered with different data")
			return domain.User{}, domain.ErrPassportConflict
		}

		return domain.User{}, domain.ErrUserAlreadyExists
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.now()
	}

	r.users[u.Passport] = &holder{user: u}
	r.passports = append(r.passports, u.Passport)

	l.Debug().Str("passport", u.Passport).Msg("user registered")

	return u, nil
}

// Attach adds the account to the user with the given passport and returns it.
//
// An empty balance opens the account with zero balance.
func (r *Registry) Attach(ctx context.Context, passport string, a domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	balance := decimal.Zero

	if a.Balance != "" {
		var err error

		balance, err = decimal.NewFromString(a.Balance)
		if err != nil {
			l.Info().Err(err).Send()
			return domain.Account{}, domain.ErrInvalidAmount
		}

		if balance.IsNegative() {
			return domain.Account{}, domain.ErrNegativeAmount
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.users[passport]
	if !ok {
		return domain.Account{}, domain.ErrUserNotFound
	}

	if h.find(a.Requisite) != nil {
		return domain.Account{}, domain.ErrRequisiteAlreadyExists
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	acc := &account{
		requisite: a.Requisite,
		balance:   balance,
		createdAt: createdAt,
	}
	h.accounts = append(h.accounts, acc)

	l.Debug().Str("passport", passport).Str("requisite", a.Requisite).Msg("account attached")

	return view(passport, acc), nil
}

// User returns the user with the given passport.
func (r *Registry) User(ctx context.Context, passport string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.users[passport]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	return h.user, nil
}

// Account returns the account with the given requisite owned by the user with the given passport.
func (r *Registry) Account(ctx context.Context, passport, requisite string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.users[passport]
	if !ok {
		return domain.Account{}, domain.ErrUserNotFound
	}

	a := h.find(requisite)
	if a == nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return view(passport, a), nil
}

// Accounts returns the accounts of the user in the order they were attached.
func (r *Registry) Accounts(ctx context.Context, passport string) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.users[passport]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	items := make([]domain.Account, 0, len(h.accounts))
	for _, a := range h.accounts {
		items = append(items, view(passport, a))
	}

	return items, nil
}

func (r *Registry) account(passport, requisite string) *account {
	h, ok := r.users[passport]
	if !ok {
		return nil
	}

	return h.find(requisite)
}

// Transfer performs a money transfer from one account to the other and records it.
//
// The balance check, the debit and the credit happen under one lock.
func (r *Registry) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	if amount.IsNegative() {
		return domain.TransferResult{}, domain.ErrNegativeAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.account(arg.FromPassport, arg.FromRequisite)
	to := r.account(arg.ToPassport, arg.ToRequisite)

	if from == nil || to == nil {
		return domain.TransferResult{}, domain.ErrAccountNotFound
	}

	if from.balance.LessThan(amount) {
		return domain.TransferResult{}, domain.ErrInsufficientBalance
	}

	// A zero amount moves nothing and is not recorded.
	if amount.IsZero() {
		return domain.TransferResult{
			FromAccount: view(arg.FromPassport, from),
			ToAccount:   view(arg.ToPassport, to),
		}, nil
	}

	from.balance = from.balance.Sub(amount)
	to.balance = to.balance.Add(amount)

	t := domain.Transfer{
		ID:            uuid.New(),
		FromPassport:  arg.FromPassport,
		FromRequisite: arg.FromRequisite,
		ToPassport:    arg.ToPassport,
		ToRequisite:   arg.ToRequisite,
		Amount:        amount.String(),
		CreatedAt:     r.now(),
	}
	r.transfers = append(r.transfers, t)

	l.Debug().Str("transfer_id", t.ID.String()).Str("amount", t.Amount).Msg("transfer applied")

	result := domain.TransferResult{
		Transfer:    t,
		FromAccount: view(arg.FromPassport, from),
		ToAccount:   view(arg.ToPassport, to),
	}

	return result, nil
}

// Transfers returns the transfers where the given account is the source or the destination,
// oldest first. A non-positive limit returns everything after offset, a negative offset returns nothing.
func (r *Registry) Transfers(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.account(arg.Passport, arg.Requisite) == nil {
		return nil, domain.ErrAccountNotFound
	}

	items := []domain.Transfer{}
	if arg.Offset < 0 {
		return items, nil
	}

	skipped := int32(0)

	for _, t := range r.transfers {
		from := t.FromPassport == arg.Passport && t.FromRequisite == arg.Requisite
		to := t.ToPassport == arg.Passport && t.ToRequisite == arg.Requisite

		if !from && !to {
			continue
		}

		if skipped < arg.Offset {
			skipped++
			continue
		}

		if arg.Limit > 0 && int32(len(items)) == arg.Limit {
			break
		}

		items = append(items, t)
	}

	return items, nil
}

// Snapshot returns a copy of the registry state.
func (r *Registry) Snapshot() domain.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := domain.Snapshot{
		Users:     make([]domain.User, 0, len(r.passports)),
		Accounts:  []domain.Account{},
		Transfers: make([]domain.Transfer, len(r.transfers)),
	}

	for _, p := range r.passports {
		h := r.users[p]
		s.Users = append(s.Users, h.user)

		for _, a := range h.accounts {
			s.Accounts = append(s.Accounts, view(p, a))
		}
	}

	copy(s.Transfers, r.transfers)

	return s
}

// Restore replaces the registry state with the snapshot.
// The registry is left untouched if the snapshot is invalid.
func (r *Registry) Restore(s domain.Snapshot) error {
	users := make(map[string]*holder, len(s.Users))
	passports := make([]string, 0, len(s.Users))

	for _, u := range s.Users {
		if _, ok := users[u.Passport]; ok {
			return fmt.Errorf("%w: duplicate passport %q", ErrInvalidSnapshot, u.Passport)
		}

		users[u.Passport] = &holder{user: u}
		passports = append(passports, u.Passport)
	}

	for _, a := range s.Accounts {
		h, ok := users[a.Owner]
		if !ok {
			return fmt.Errorf("%w: unknown owner %q", ErrInvalidSnapshot, a.Owner)
		}

		if h.find(a.Requisite) != nil {
			return fmt.Errorf("%w: duplicate requisite %q of %q", ErrInvalidSnapshot, a.Requisite, a.Owner)
		}

		balance, err := decimal.NewFromString(a.Balance)
		if err != nil {
			return fmt.Errorf("%w: balance of %q: %v", ErrInvalidSnapshot, a.Requisite, err)
		}

		if balance.IsNegative() {
			return fmt.Errorf("%w: negative balance of %q", ErrInvalidSnapshot, a.Requisite)
		}

		h.accounts = append(h.accounts, &account{
			requisite: a.Requisite,
			balance:   balance,
			createdAt: a.CreatedAt,
		})
	}

	transfers := make([]domain.Transfer, len(s.Transfers))
	copy(transfers, s.Transfers)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = users
	r.passports = passports
	r.transfers = transfers

	return nil
}
