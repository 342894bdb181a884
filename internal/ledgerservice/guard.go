package ledgerservice

import (
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// ApplyDeposit returns a copy of the account with amount added to its balance.
func ApplyDeposit(a domain.Account, amount decimal.Decimal) (domain.Account, error) {
	if !domain.ValidAmount(amount) {
		return a, domain.ErrInvalidAmount
	}

	a.Balance = a.Balance.Add(amount)

	return a, nil
}

// ApplyWithdrawal returns a copy of the account with amount taken from its balance.
//
// The balance never drops below zero.
func ApplyWithdrawal(a domain.Account, amount decimal.Decimal) (domain.Account, error) {
	if !domain.ValidAmount(amount) {
		return a, domain.ErrInvalidAmount
	}

	if amount.GreaterThan(a.Balance) {
		return a, domain.ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)

	return a, nil
}
