// Package transactionrepo manages repository layer of account transactions.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/pkg/dbpkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const columns = `id, account_id, kind, direction, amount, balance_after, description, related_account_id, created_at`

func scan(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var (
		t       domain.Transaction
		related sql.NullInt64
	)

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Kind,
		&t.Direction,
		&t.Amount,
		&t.BalanceAfter,
		&t.Description,
		&related,
		&t.CreatedAt,
	)

	if related.Valid {
		id := related.Int64
		t.RelatedAccountID = &id
	}

	return t, err
}

func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "transactions_account_id_fkey":
			return domain.ErrAccountNotFound
		case "transactions_amount_check":
			return domain.ErrInvalidAmount
		case "transactions_balance_after_check":
			return domain.ErrInsufficientFunds
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrStore, err)
}

const createQuery = `
INSERT INTO
	transactions (account_id, kind, direction, amount, balance_after, description, related_account_id, created_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + columns

// Create appends the transaction to the account log and returns it with its id.
func (r *RepoPGS) Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		t.AccountID, t.Kind, t.Direction, t.Amount, t.BalanceAfter,
		t.Description, t.RelatedAccountID, t.CreatedAt,
	)

	created, err := scan(row)
	if err != nil {
		l.Error().Err(err).Int64("account_id", t.AccountID).Send()
		return domain.Transaction{}, translate(err)
	}

	return created, nil
}

const listQuery = `
SELECT ` + columns + `
FROM transactions
WHERE
	account_id = $1
	AND ($2::timestamptz IS NULL OR created_at >= $2)
	AND ($3::timestamptz IS NULL OR created_at <= $3)
ORDER BY created_at DESC, id DESC
`

// List returns the account transactions inside the period, most recent first.
func (r *RepoPGS) List(ctx context.Context, accountID int64, period domain.Period) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	from := sql.NullTime{Time: period.From, Valid: !period.From.IsZero()}
	to := sql.NullTime{Time: period.To, Valid: !period.To.IsZero()}

	rows, err := r.db.QueryContext(ctx, listQuery, accountID, from, to)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, translate(err)
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, translate(err)
		}

		items = append(items, t)
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
