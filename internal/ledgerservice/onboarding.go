package ledgerservice

import (
	"context"

	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/rs/zerolog"
)

const initialDepositDescription = "Initial deposit"

// OpenAccount creates a customer, its first account and the optional opening deposit as one unit.
//
// The opening balance goes through the deposit path, so it is backed by a regular DEPOSIT transaction.
func (s *Service) OpenAccount(ctx context.Context, arg domain.OpenAccountParams) (domain.OpenAccountResult, error) {
	l := zerolog.Ctx(ctx)

	if err := validOpenAccount(arg); err != nil {
		l.Info().Err(err).Send()
		return domain.OpenAccountResult{}, err
	}

	account := domain.Account{
		Kind:      arg.Kind,
		Mode:      arg.Mode,
		Services:  arg.Services,
		CreatedAt: s.now().UTC(),
	}

	var opening []domain.Transaction

	if arg.InitialDeposit.IsPositive() {
		funded, err := ApplyDeposit(account, arg.InitialDeposit)
		if err != nil {
			l.Info().Err(err).Send()
			return domain.OpenAccountResult{}, err
		}

		account = funded
		opening = append(opening, s.recorder.Record(account, domain.TransactionDeposit, domain.Credit,
			arg.InitialDeposit, initialDepositDescription, nil))
	}

	var result domain.OpenAccountResult

	err := s.persist(ctx, func() error {
		var err error
		result, err = s.store.CreateCustomerWithAccount(ctx, arg.Customer, account, opening)

		return err
	})
	if err != nil {
		l.Error().Err(err).Msg("onboarding failed")
		return domain.OpenAccountResult{}, err
	}

	l.Info().
		Int64("customer_id", result.Customer.ID).
		Int64("account_id", result.Account.ID).
		Str("initial_deposit", arg.InitialDeposit.String()).
		Msg("account opened")

	return result, nil
}

func validOpenAccount(arg domain.OpenAccountParams) error {
	if arg.InitialDeposit.IsNegative() {
		return domain.ErrNegativeInitialDeposit
	}

	if !domain.BoundedExponent(arg.InitialDeposit) {
		return domain.ErrInvalidAmount
	}

	if err := arg.Customer.Validate(); err != nil {
		return err
	}

	if !arg.Kind.Valid() {
		return domain.ErrInvalidAccountKind
	}

	if !arg.Mode.Valid() {
		return domain.ErrInvalidOperationMode
	}

	return nil
}
