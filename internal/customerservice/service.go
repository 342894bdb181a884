// Package customerservice manages business logic layer of customers.
package customerservice

import (
	"context"

	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by customer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package customerservice
type Repo interface {
	GetCustomer(ctx context.Context, id int64) (domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
	ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.Account, error)
}

// Service facilitates customer service layer logic.
type Service struct {
	repo Repo
}

// New returns customer service struct to manage customer business logic.
func New(cr Repo) *Service {
	return &Service{repo: cr}
}

// Get returns the customer with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// List returns every customer ordered by id.
func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// Update validates and stores the customer fields.
//
// Accounts are not touched, the ledger never changes customer data itself.
func (s *Service) Update(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	if err := c.Validate(); err != nil {
		l.Info().Err(err).Int64("customer_id", c.ID).Send()
		return domain.Customer{}, err
	}

	return s.repo.UpdateCustomer(ctx, c)
}

// ListAccounts returns the accounts owned by the customer.
func (s *Service) ListAccounts(ctx context.Context, customerID int64) ([]domain.Account, error) {
	return s.repo.ListCustomerAccounts(ctx, customerID)
}
