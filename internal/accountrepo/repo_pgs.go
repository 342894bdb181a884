// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/pkg/dbpkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, number, customer_id, kind, mode, balance, sms_alert, remote_banking, card, created_at`

func scan(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Number,
		&a.CustomerID,
		&a.Kind,
		&a.Mode,
		&a.Balance,
		&a.Services.SMSAlert,
		&a.Services.RemoteBanking,
		&a.Services.Card,
		&a.CreatedAt,
	)

	return a, err
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "accounts_balance_check":
			return domain.ErrInsufficientFunds
		case "accounts_customer_id_fkey":
			return domain.ErrCustomerNotFound
		case "accounts_kind_check":
			return domain.ErrInvalidAccountKind
		case "accounts_mode_check":
			return domain.ErrInvalidOperationMode
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrStore, err)
}

const createQuery = `
INSERT INTO
	accounts (customer_id, kind, mode, balance, sms_alert, remote_banking, card, created_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + columns

// Create creates the account and then returns it with its id and number.
func (r *RepoPGS) Create(ctx context.Context, a domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		a.CustomerID, a.Kind, a.Mode, a.Balance,
		a.Services.SMSAlert, a.Services.RemoteBanking, a.Services.Card, a.CreatedAt,
	)

	created, err := scan(row)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, translate(err)
	}

	return created, nil
}

const getQuery = `
SELECT ` + columns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scan(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			l.Error().Err(err).Send()
		}

		return domain.Account{}, translate(err)
	}

	return a, nil
}

const setBalanceQuery = `
UPDATE accounts
SET balance = $1
WHERE id = $2
RETURNING ` + columns

// SetBalance stores the new account balance and returns the changed account.
func (r *RepoPGS) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scan(r.db.QueryRowContext(ctx, setBalanceQuery, balance, id))
	if err != nil {
		l.Error().Err(err).Int64("account_id", id).Send()
		return domain.Account{}, translate(err)
	}

	return a, nil
}

const compareAndSetBalanceQuery = `
UPDATE accounts
SET balance = $1
WHERE id = $2 AND balance = $3
RETURNING ` + columns

// CompareAndSetBalance stores the new account balance only while the account still holds prior.
//
// It returns domain.ErrBalanceConflict when the stored balance differs from prior.
func (r *RepoPGS) CompareAndSetBalance(ctx context.Context, id int64, prior, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scan(r.db.QueryRowContext(ctx, compareAndSetBalanceQuery, balance, id, prior))
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := r.Get(ctx, id); err != nil {
			return domain.Account{}, err
		}

		l.Warn().Int64("account_id", id).Str("prior_balance", prior.String()).Msg("balance conflict")

		return domain.Account{}, domain.ErrBalanceConflict
	}

	if err != nil {
		l.Error().Err(err).Int64("account_id", id).Send()
		return domain.Account{}, translate(err)
	}

	return a, nil
}

const listByCustomerQuery = `
SELECT ` + columns + `
FROM accounts
WHERE customer_id = $1
ORDER BY id
`

// ListByCustomer returns the accounts of the given customer ordered by id.
func (r *RepoPGS) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByCustomerQuery, customerID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, translate(err)
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, translate(err)
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, translate(err)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, translate(err)
	}

	return items, nil
}
