// Package validationpkg provides request validators for ledger specific fields.
package validationpkg

import (
	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Tags of the validators registered by Register.
const (
	TagDecimal       = "decimal"
	TagAccountKind   = "account_kind"
	TagOperationMode = "operation_mode"
	TagCustomerClass = "customer_class"
)

// ValidDecimal validates whether the string is a decimal number of a bounded exponent.
var ValidDecimal validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	d, err := decimal.NewFromString(s)

	return err == nil && domain.BoundedExponent(d)
}

// ValidAccountKind validates whether the account kind is supported.
var ValidAccountKind validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && domain.AccountKind(s).Valid()
}

// ValidOperationMode validates whether the operation mode is supported.
var ValidOperationMode validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && domain.OperationMode(s).Valid()
}

// ValidCustomerClass validates whether the customer class is supported.
var ValidCustomerClass validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && domain.CustomerClass(s).Valid()
}

// Register adds all ledger validators to v.
func Register(v *validator.Validate) error {
	validators := map[string]validator.Func{
		TagDecimal:       ValidDecimal,
		TagAccountKind:   ValidAccountKind,
		TagOperationMode: ValidOperationMode,
		TagCustomerClass: ValidCustomerClass,
	}

	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	return nil
}
