package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the kind of balance-affecting event.
type TransactionKind string

// Supported transaction kinds.
const (
	TransactionDeposit    TransactionKind = "DEPOSIT"
	TransactionWithdrawal TransactionKind = "WITHDRAWAL"
	TransactionTransfer   TransactionKind = "TRANSFER"
)

// Direction tells on which side of the account a transaction lands.
type Direction string

// Transaction directions.
const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// Transaction is an immutable record of one balance change of an account.
type Transaction struct {
	ID               int64           `json:"id"`
	AccountID        int64           `json:"account_id"`
	Kind             TransactionKind `json:"kind"`
	Direction        Direction       `json:"direction"`
	Amount           decimal.Decimal `json:"amount"` // always positive
	BalanceAfter     decimal.Decimal `json:"balance_after"`
	Description      string          `json:"description"`
	RelatedAccountID *int64          `json:"related_account_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// SignedAmount returns the effect of the transaction on the account balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == Debit {
		return t.Amount.Neg()
	}

	return t.Amount
}

// PriorBalances returns the balance every account touched by transactions held before they applied.
//
// accounts carry balances with the transactions already applied. Accounts without
// transactions are absent from the result.
func PriorBalances(accounts []Account, transactions []Transaction) map[int64]decimal.Decimal {
	delta := make(map[int64]decimal.Decimal)
	for _, t := range transactions {
		delta[t.AccountID] = delta[t.AccountID].Add(t.SignedAmount())
	}

	prior := make(map[int64]decimal.Decimal, len(delta))

	for _, a := range accounts {
		if d, ok := delta[a.ID]; ok {
			prior[a.ID] = a.Balance.Sub(d)
		}
	}

	return prior
}

// AmountExponentLimit bounds the decimal exponent of every accepted amount in both directions.
const AmountExponentLimit = 18

// BoundedExponent reports whether the exponent of d lies within AmountExponentLimit.
//
// Arithmetic on a decimal rescales to the smaller exponent, so an unbounded one
// such as 1e300000000 makes a single addition run practically forever.
func BoundedExponent(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= -AmountExponentLimit && e <= AmountExponentLimit
}

// ValidAmount reports whether amount may be moved by an operation.
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && BoundedExponent(amount)
}

// Period is an inclusive time range. A zero bound leaves that side open.
type Period struct {
	From time.Time
	To   time.Time
}

// Valid reports whether the period does not end before it starts.
func (p Period) Valid() bool {
	return p.From.IsZero() || p.To.IsZero() || !p.To.Before(p.From)
}

// Contains reports whether ts falls inside the period.
func (p Period) Contains(ts time.Time) bool {
	if !p.From.IsZero() && ts.Before(p.From) {
		return false
	}

	if !p.To.IsZero() && ts.After(p.To) {
		return false
	}

	return true
}

// OpenAccountParams is the input data of the onboarding workflow.
type OpenAccountParams struct {
	Customer       Customer
	Kind           AccountKind
	Mode           OperationMode
	InitialDeposit decimal.Decimal
	Services       ServiceFlags
}

// OpenAccountResult is the result of the onboarding workflow.
type OpenAccountResult struct {
	Customer     Customer      `json:"customer"`
	Account      Account       `json:"account"`
	Transactions []Transaction `json:"transactions"`
}
