// Package domain provides definitions of all ledger entities.
package domain

import (
	"strings"
	"time"
)

// CustomerClass is the customer category.
type CustomerClass string

// Supported customer classes.
const (
	CustomerPublic CustomerClass = "PUBLIC"
	CustomerStaff  CustomerClass = "STAFF"
)

// Valid reports whether c is a supported class.
func (c CustomerClass) Valid() bool {
	return c == CustomerPublic || c == CustomerStaff
}

// Customer holds biographical and contact data of an account holder.
type Customer struct {
	ID            int64         `json:"id"`
	FullName      string        `json:"full_name"`
	FatherName    string        `json:"father_name,omitempty"`
	DateOfBirth   time.Time     `json:"date_of_birth"`
	Gender        string        `json:"gender,omitempty"`
	MaritalStatus string        `json:"marital_status,omitempty"`
	Address       string        `json:"address,omitempty"`
	City          string        `json:"city,omitempty"`
	State         string        `json:"state,omitempty"`
	MobileNumber  string        `json:"mobile_number"`
	Email         string        `json:"email,omitempty"`
	Nationality   string        `json:"nationality,omitempty"`
	Class         CustomerClass `json:"class"`
}

// Validate checks the fields every customer record must carry.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.FullName) == "" || c.DateOfBirth.IsZero() || strings.TrimSpace(c.MobileNumber) == "" {
		return ErrInvalidCustomer
	}

	if !c.Class.Valid() {
		return ErrInvalidCustomerClass
	}

	return nil
}
