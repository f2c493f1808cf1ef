// Package snapshotrepo persists registry snapshots in Postgres.
package snapshotrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-registry/internal/domain"
	"github.com/go-petr/bank-registry/pkg/dbpkg"
)

// RepoPGS facilitates snapshot repository layer logic.
type RepoPGS struct {
	db *sql.DB
}

// NewRepoPGS returns snapshot RepoPGS.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// Queries of the snapshot tables.
const (
	ClearQuery = `TRUNCATE TABLE transfers, accounts, users`

	InsertUserQuery = `
INSERT INTO users (
    passport,
    full_name,
    hashed_password,
    position,
    created_at
) VALUES (
    $1, $2, $3, $4, $5
)`

	InsertAccountQuery = `
INSERT INTO accounts (
    owner,
    requisite,
    balance,
    position,
    created_at
) VALUES (
    $1, $2, $3, $4, $5
)`

	InsertTransferQuery = `
INSERT INTO transfers (
    id,
    from_passport,
    from_requisite,
    to_passport,
    to_requisite,
    amount,
    seq,
    created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
)`

	ListUsersQuery = `
SELECT passport, full_name, hashed_password, created_at
FROM users
ORDER BY position`

	ListAccountsQuery = `
SELECT a.owner, a.requisite, a.balance, a.created_at
FROM accounts a
JOIN users u ON u.passport = a.owner
ORDER BY u.position, a.position`

	ListTransfersQuery = `
SELECT id, from_passport, from_requisite, to_passport, to_requisite, amount, created_at
FROM transfers
ORDER BY seq`
)

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		switch pqErr.Constraint {
		case "users_pkey":
			return domain.ErrUserAlreadyExists
		case "accounts_pkey":
			return domain.ErrRequisiteAlreadyExists
		}
	}

	return err
}

func exec(ctx context.Context, q dbpkg.SQLInterface, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := q.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return mapError(err)
		}
	}

	return nil
}

func save(ctx context.Context, q dbpkg.SQLInterface, s domain.Snapshot) error {
	if _, err := q.ExecContext(ctx, ClearQuery); err != nil {
		return err
	}

	users := make([][]any, 0, len(s.Users))
	for i, u := range s.Users {
		users = append(users, []any{u.Passport, u.FullName, u.HashedPassword, i, u.CreatedAt})
	}

	if err := exec(ctx, q, InsertUserQuery, users); err != nil {
		return fmt.Errorf("insert users: %w", err)
	}

	positions := make(map[string]int, len(s.Users))

	accounts := make([][]any, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		accounts = append(accounts, []any{a.Owner, a.Requisite, a.Balance, positions[a.Owner], a.CreatedAt})
		positions[a.Owner]++
	}

	if err := exec(ctx, q, InsertAccountQuery, accounts); err != nil {
		return fmt.Errorf("insert accounts: %w", err)
	}

	transfers := make([][]any, 0, len(s.Transfers))
	for i, t := range s.Transfers {
		transfers = append(transfers, []any{
			t.ID, t.FromPassport, t.FromRequisite, t.ToPassport, t.ToRequisite, t.Amount, i, t.CreatedAt,
		})
	}

	if err := exec(ctx, q, InsertTransferQuery, transfers); err != nil {
		return fmt.Errorf("insert transfers: %w", err)
	}

	return nil
}

// Save replaces the stored snapshot with s in one transaction.
func (r *RepoPGS) Save(ctx context.Context, s domain.Snapshot) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	if err := save(ctx, tx, s); err != nil {
		l.Error().Err(err).Send()

		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return err
	}

	l.Info().
		Int("users", len(s.Users)).
		Int("accounts", len(s.Accounts)).
		Int("transfers", len(s.Transfers)).
		Msg("snapshot saved")

	return nil
}

// Load returns the stored snapshot. An empty database yields an empty snapshot.
func (r *RepoPGS) Load(ctx context.Context) (domain.Snapshot, error) {
	l := zerolog.Ctx(ctx)

	s, err := load(ctx, r.db)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Snapshot{}, err
	}

	return s, nil
}

func load(ctx context.Context, q dbpkg.SQLInterface) (domain.Snapshot, error) {
	s := domain.Snapshot{
		Users:     []domain.User{},
		Accounts:  []domain.Account{},
		Transfers: []domain.Transfer{},
	}

	rows, err := q.QueryContext(ctx, ListUsersQuery)
	if err != nil {
		return s, err
	}

	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Passport, &u.FullName, &u.HashedPassword, &u.CreatedAt); err != nil {
			rows.Close()
			return s, err
		}

		s.Users = append(s.Users, u)
	}

	if err := closeRows(rows); err != nil {
		return s, err
	}

	rows, err = q.QueryContext(ctx, ListAccountsQuery)
	if err != nil {
		return s, err
	}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.Owner, &a.Requisite, &a.Balance, &a.CreatedAt); err != nil {
			rows.Close()
			return s, err
		}

		s.Accounts = append(s.Accounts, a)
	}

	if err := closeRows(rows); err != nil {
		return s, err
	}

	rows, err = q.QueryContext(ctx, ListTransfersQuery)
	if err != nil {
		return s, err
	}

	for rows.Next() {
		var t domain.Transfer

		err := rows.Scan(
			&t.ID,
			&t.FromPassport,
			&t.FromRequisite,
			&t.ToPassport,
			&t.ToRequisite,
			&t.Amount,
			&t.CreatedAt,
		)
		if err != nil {
			rows.Close()
			return s, err
		}

		s.Transfers = append(s.Transfers, t)
	}

	if err := closeRows(rows); err != nil {
		return s, err
	}

	return s, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Close(); err != nil {
		return err
	}

	return rows.Err()
}
