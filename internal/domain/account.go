package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the product type of an account.
type AccountKind string

// Supported account kinds.
const (
	AccountSavings AccountKind = "SAVINGS"
	AccountCurrent AccountKind = "CURRENT"
)

// Valid reports whether k is a supported kind.
func (k AccountKind) Valid() bool {
	return k == AccountSavings || k == AccountCurrent
}

// OperationMode tells who may operate the account.
type OperationMode string

// Supported operation modes.
const (
	OperationSelf  OperationMode = "SELF"
	OperationJoint OperationMode = "JOINT"
)

// Valid reports whether m is a supported mode.
func (m OperationMode) Valid() bool {
	return m == OperationSelf || m == OperationJoint
}

// ServiceFlags holds the optional services enabled on an account.
type ServiceFlags struct {
	SMSAlert      bool `json:"sms_alert"`
	RemoteBanking bool `json:"remote_banking"`
	Card          bool `json:"card"`
}

// Account holds the balance of a customer account.
//
// Balance is never negative and is only changed by deposits, withdrawals and transfers.
type Account struct {
	ID         int64           `json:"id"`
	Number     string          `json:"number"`
	CustomerID int64           `json:"customer_id"`
	Kind       AccountKind     `json:"kind"`
	Mode       OperationMode   `json:"mode"`
	Balance    decimal.Decimal `json:"balance"`
	Services   ServiceFlags    `json:"services"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AccountNumber derives the public account number from the account id.
func AccountNumber(id int64) string {
	return fmt.Sprintf("ACC%010d", id)
}
