// Package ledgerrepo assembles the table repositories into the PostgreSQL ledger store.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/go-petr/bank-ledger/internal/accountrepo"
	"github.com/go-petr/bank-ledger/internal/customerrepo"
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-petr/bank-ledger/internal/transactionrepo"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates ledger repository layer logic.
//
// Reads go straight to the connection pool, writes run inside one database transaction.
type RepoPGS struct {
	conn         *sql.DB
	customers    *customerrepo.RepoPGS
	accounts     *accountrepo.RepoPGS
	transactions *transactionrepo.RepoPGS
}

// NewRepoPGS returns ledger RepoPGS with connection to start transactions.
func NewRepoPGS(conn *sql.DB) *RepoPGS {
	return &RepoPGS{
		conn:         conn,
		customers:    customerrepo.NewRepoPGS(conn),
		accounts:     accountrepo.NewRepoPGS(conn),
		transactions: transactionrepo.NewRepoPGS(conn),
	}
}

// GetCustomer returns the customer with the given id.
func (r *RepoPGS) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	return r.customers.Get(ctx, id)
}

// ListCustomers returns every customer ordered by id.
func (r *RepoPGS) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return r.customers.List(ctx)
}

// UpdateCustomer replaces the stored customer fields and returns the stored customer.
func (r *RepoPGS) UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	return r.customers.Update(ctx, c)
}

// GetAccount returns the account with the given id.
func (r *RepoPGS) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	return r.accounts.Get(ctx, id)
}

// ListCustomerAccounts returns the accounts of the customer ordered by id.
func (r *RepoPGS) ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.Account, error) {
	if _, err := r.customers.Get(ctx, customerID); err != nil {
		return nil, err
	}

	return r.accounts.ListByCustomer(ctx, customerID)
}

// ListTransactions returns the account transactions inside the period, most recent first.
func (r *RepoPGS) ListTransactions(ctx context.Context, accountID int64, period domain.Period) ([]domain.Transaction, error) {
	return r.transactions.List(ctx, accountID, period)
}

// CommitAccountsAndTransactions stores the new account balances and appends the transactions
// within a single database transaction.
//
// The balance of an account with transactions is only written while the account still holds
// the balance those transactions started from, so a replayed commit fails with
// domain.ErrBalanceConflict instead of appending the transactions twice.
func (r *RepoPGS) CommitAccountsAndTransactions(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Transaction, error) {
	var stored []domain.Transaction

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		accountRepo := accountrepo.NewRepoPGS(tx)
		transactionRepo := transactionrepo.NewRepoPGS(tx)

		// Rows are updated in id order so that concurrent commits never wait on each other in a cycle.
		ordered := make([]domain.Account, len(accounts))
		copy(ordered, accounts)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

		prior := domain.PriorBalances(accounts, transactions)

		for _, a := range ordered {
			var err error

			if p, ok := prior[a.ID]; ok {
				_, err = accountRepo.CompareAndSetBalance(ctx, a.ID, p, a.Balance)
			} else {
				_, err = accountRepo.SetBalance(ctx, a.ID, a.Balance)
			}

			if err != nil {
				return err
			}
		}

		stored = make([]domain.Transaction, 0, len(transactions))

		for _, t := range transactions {
			created, err := transactionRepo.Create(ctx, t)
			if err != nil {
				return err
			}

			stored = append(stored, created)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// CreateCustomerWithAccount stores the customer, its account and the account transactions
// within a single database transaction.
func (r *RepoPGS) CreateCustomerWithAccount(ctx context.Context, customer domain.Customer, account domain.Account, transactions []domain.Transaction) (domain.OpenAccountResult, error) {
	var result domain.OpenAccountResult

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error

		result.Customer, err = customerrepo.NewRepoPGS(tx).Create(ctx, customer)
		if err != nil {
			return err
		}

		account.CustomerID = result.Customer.ID

		result.Account, err = accountrepo.NewRepoPGS(tx).Create(ctx, account)
		if err != nil {
			return err
		}

		transactionRepo := transactionrepo.NewRepoPGS(tx)
		result.Transactions = make([]domain.Transaction, 0, len(transactions))

		for _, t := range transactions {
			t.AccountID = result.Account.ID

			created, err := transactionRepo.Create(ctx, t)
			if err != nil {
				return err
			}

			result.Transactions = append(result.Transactions, created)
		}

		return nil
	})
	if err != nil {
		return domain.OpenAccountResult{}, err
	}

	return result, nil
}

// DeleteCustomer removes the customer, its accounts and their transactions.
func (r *RepoPGS) DeleteCustomer(ctx context.Context, customerID int64) error {
	return r.customers.Delete(ctx, customerID)
}

func (r *RepoPGS) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}

	return nil
}
