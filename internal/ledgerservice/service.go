// Package ledgerservice manages the ledger core: deposits, withdrawals, transfers and onboarding.
package ledgerservice

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store provides the persistence interface needed by the ledger core.
//
// CommitAccountsAndTransactions and CreateCustomerWithAccount must be atomic:
// either every listed change is applied or none is.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Store interface {
	GetAccount(ctx context.Context, id int64) (domain.Account, error)
	ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.Account, error)
	ListTransactions(ctx context.Context, accountID int64, period domain.Period) ([]domain.Transaction, error)
	CommitAccountsAndTransactions(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Transaction, error)
	CreateCustomerWithAccount(ctx context.Context, customer domain.Customer, account domain.Account, transactions []domain.Transaction) (domain.OpenAccountResult, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
}

// RetryPolicy bounds the retries of a failed persist phase.
type RetryPolicy struct {
	Retries int
	Backoff time.Duration
}

// Service facilitates ledger core logic.
type Service struct {
	store    Store
	locks    *accountLocks
	recorder Recorder
	retry    RetryPolicy
	now      func() time.Time
}

// New returns ledger service struct to manage balances and their transaction log.
func New(store Store, retry RetryPolicy) *Service {
	if retry.Retries < 0 {
		retry.Retries = 0
	}

	return &Service{
		store:    store,
		locks:    newAccountLocks(),
		recorder: NewRecorder(time.Now),
		retry:    retry,
		now:      time.Now,
	}
}

const (
	depositDescription    = "Deposit"
	withdrawalDescription = "Withdrawal"
)

// Deposit adds amount to the account balance and records a DEPOSIT transaction.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (domain.Account, error) {
	return s.apply(ctx, accountID, amount, ApplyDeposit, domain.TransactionDeposit, domain.Credit, depositDescription)
}

// Withdraw takes amount from the account balance and records a WITHDRAWAL transaction.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (domain.Account, error) {
	return s.apply(ctx, accountID, amount, ApplyWithdrawal, domain.TransactionWithdrawal, domain.Debit, withdrawalDescription)
}

type guardFunc func(domain.Account, decimal.Decimal) (domain.Account, error)

func (s *Service) apply(ctx context.Context, accountID int64, amount decimal.Decimal, guard guardFunc,
	kind domain.TransactionKind, dir domain.Direction, description string,
) (domain.Account, error) {
	l := zerolog.Ctx(ctx).With().Int64("account_id", accountID).Str("kind", string(kind)).Logger()

	if !domain.ValidAmount(amount) {
		l.Info().Err(domain.ErrInvalidAmount).Str("amount", amount.String()).Send()
		return domain.Account{}, domain.ErrInvalidAmount
	}

	release, err := s.locks.acquire(ctx, accountID)
	if err != nil {
		l.Warn().Err(err).Msg("waiting for account")
		return domain.Account{}, err
	}
	defer release()

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	updated, err := guard(account, amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount.String()).Send()
		return domain.Account{}, err
	}

	tx := s.recorder.Record(updated, kind, dir, amount, description, nil)

	err = s.persist(ctx, func() error {
		_, err := s.store.CommitAccountsAndTransactions(ctx, []domain.Account{updated}, []domain.Transaction{tx})
		return err
	})
	if err != nil {
		l.Error().Err(err).Msg("commit failed")
		return domain.Account{}, err
	}

	return updated, nil
}

// Transfer moves amount between two accounts and records one TRANSFER leg on each of them.
//
// It returns the updated source account.
func (s *Service) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx).With().Int64("from_account_id", fromID).Int64("to_account_id", toID).Logger()

	if fromID == toID {
		l.Info().Err(domain.ErrSameAccountTransfer).Send()
		return domain.Account{}, domain.ErrSameAccountTransfer
	}

	if !domain.ValidAmount(amount) {
		l.Info().Err(domain.ErrInvalidAmount).Str("amount", amount.String()).Send()
		return domain.Account{}, domain.ErrInvalidAmount
	}

	release, err := s.locks.acquire(ctx, fromID, toID)
	if err != nil {
		l.Warn().Err(err).Msg("waiting for accounts")
		return domain.Account{}, err
	}
	defer release()

	from, err := s.store.GetAccount(ctx, fromID)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	to, err := s.store.GetAccount(ctx, toID)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	from, err = ApplyWithdrawal(from, amount)
	if err != nil {
		l.Info().Err(err).Str("amount", amount.String()).Send()
		return domain.Account{}, err
	}

	to, err = ApplyDeposit(to, amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, err
	}

	fromLeg := s.recorder.Record(from, domain.TransactionTransfer, domain.Debit, amount,
		"Transfer to account "+to.Number, &toID)
	toLeg := s.recorder.Record(to, domain.TransactionTransfer, domain.Credit, amount,
		"Transfer from account "+from.Number, &fromID)

	err = s.persist(ctx, func() error {
		_, err := s.store.CommitAccountsAndTransactions(ctx,
			[]domain.Account{from, to},
			[]domain.Transaction{fromLeg, toLeg},
		)

		return err
	})
	if err != nil {
		l.Error().Err(err).Msg("commit failed")
		return domain.Account{}, err
	}

	return from, nil
}

// GetAccount returns the account with the given id.
func (s *Service) GetAccount(ctx context.Context, accountID int64) (domain.Account, error) {
	return s.store.GetAccount(ctx, accountID)
}

// GetBalance returns the current balance of the account.
func (s *Service) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// GetHistory returns the account transactions inside the period, most recent first.
func (s *Service) GetHistory(ctx context.Context, accountID int64, period domain.Period) ([]domain.Transaction, error) {
	if !period.Valid() {
		return nil, domain.ErrInvalidPeriod
	}

	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	return s.store.ListTransactions(ctx, accountID, period)
}

// DeleteCustomer removes the customer together with all of its accounts.
//
// Mutation rights on every account of the customer are held while the store deletes them.
func (s *Service) DeleteCustomer(ctx context.Context, customerID int64) error {
	l := zerolog.Ctx(ctx).With().Int64("customer_id", customerID).Logger()

	accounts, err := s.store.ListCustomerAccounts(ctx, customerID)
	if err != nil {
		l.Info().Err(err).Send()
		return err
	}

	ids := make([]int64, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}

	release, err := s.locks.acquire(ctx, ids...)
	if err != nil {
		l.Warn().Err(err).Msg("waiting for accounts")
		return err
	}
	defer release()

	err = s.persist(ctx, func() error {
		return s.store.DeleteCustomer(ctx, customerID)
	})
	if err != nil {
		l.Error().Err(err).Msg("delete failed")
		return err
	}

	return nil
}

// persist runs op and retries it while it fails with a store error.
//
// A balance conflict means an earlier attempt may already have committed, so it is returned as is.
func (s *Service) persist(ctx context.Context, op func() error) error {
	l := zerolog.Ctx(ctx)
	attempt := 0

	retried := func() error {
		attempt++

		err := op()
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrStore) || errors.Is(err, domain.ErrBalanceConflict) {
			return backoff.Permanent(err)
		}

		l.Warn().Err(err).Int("attempt", attempt).Msg("persist failed")

		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retry.Backoff), uint64(s.retry.Retries))

	return backoff.Retry(retried, backoff.WithContext(policy, ctx))
}
