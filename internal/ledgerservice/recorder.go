package ledgerservice

import (
	"time"

	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Recorder builds transaction records for completed balance changes.
//
// Identifiers are left zero, the store allocates them on commit.
type Recorder struct {
	now func() time.Time
}

// NewRecorder returns Recorder stamping records with the given clock.
func NewRecorder(now func() time.Time) Recorder {
	return Recorder{now: now}
}

// Record returns the transaction that moved the account to its current balance.
func (r Recorder) Record(after domain.Account, kind domain.TransactionKind, dir domain.Direction,
	amount decimal.Decimal, description string, related *int64,
) domain.Transaction {
	return domain.Transaction{
		AccountID:        after.ID,
		Kind:             kind,
		Direction:        dir,
		Amount:           amount,
		BalanceAfter:     after.Balance,
		Description:      description,
		RelatedAccountID: related,
		CreatedAt:        r.now().UTC(),
	}
}
