// Package memstore provides an in-memory ledger store.
//
// Every mutating call validates all of its input before touching state,
// so a failed call leaves the store exactly as it was.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/go-petr/bank-ledger/internal/domain"
)

// Store keeps customers, accounts and transactions in memory. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	lastCustomerID    int64
	lastAccountID     int64
	lastTransactionID int64

	customers    map[int64]domain.Customer
	accounts     map[int64]domain.Account
	transactions map[int64][]domain.Transaction // per account, in commit order
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		customers:    make(map[int64]domain.Customer),
		accounts:     make(map[int64]domain.Account),
		transactions: make(map[int64][]domain.Transaction),
	}
}

// GetCustomer returns the customer with the given id.
func (s *Store) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	return c, nil
}

// ListCustomers returns every customer ordered by id.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		items = append(items, c)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

// UpdateCustomer replaces the stored customer fields and returns the stored customer.
func (s *Store) UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[c.ID]; !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	s.customers[c.ID] = c

	return c, nil
}

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id int64) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// ListCustomerAccounts returns the accounts of the customer ordered by id.
func (s *Store) ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.customers[customerID]; !ok {
		return nil, domain.ErrCustomerNotFound
	}

	items := []domain.Account{}

	for _, a := range s.accounts {
		if a.CustomerID == customerID {
			items = append(items, a)
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

// ListTransactions returns the account transactions inside the period, most recent first.
func (s *Store) ListTransactions(ctx context.Context, accountID int64, period domain.Period) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.transactions[accountID]
	items := make([]domain.Transaction, 0, len(log))

	for i := len(log) - 1; i >= 0; i-- {
		if period.Contains(log[i].CreatedAt) {
			items = append(items, log[i])
		}
	}

	return items, nil
}

// CommitAccountsAndTransactions stores the new account balances and appends the transactions.
//
// It returns the transactions with their allocated ids, or domain.ErrBalanceConflict when an
// account no longer holds the balance its transactions started from.
func (s *Store) CommitAccountsAndTransactions(ctx context.Context, accounts []domain.Account, transactions []domain.Transaction) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		if _, ok := s.accounts[a.ID]; !ok {
			return nil, domain.ErrAccountNotFound
		}

		if a.Balance.IsNegative() {
			return nil, domain.ErrInsufficientFunds
		}
	}

	for _, t := range transactions {
		if _, ok := s.accounts[t.AccountID]; !ok {
			return nil, domain.ErrAccountNotFound
		}
	}

	for id, prior := range domain.PriorBalances(accounts, transactions) {
		if !s.accounts[id].Balance.Equal(prior) {
			return nil, domain.ErrBalanceConflict
		}
	}

	for _, a := range accounts {
		stored := s.accounts[a.ID]
		stored.Balance = a.Balance
		s.accounts[a.ID] = stored
	}

	return s.appendTransactions(transactions), nil
}

// CreateCustomerWithAccount stores the customer, its account and the account transactions as one unit.
func (s *Store) CreateCustomerWithAccount(ctx context.Context, customer domain.Customer, account domain.Account, transactions []domain.Transaction) (domain.OpenAccountResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.Balance.IsNegative() {
		return domain.OpenAccountResult{}, domain.ErrInsufficientFunds
	}

	s.lastCustomerID++
	customer.ID = s.lastCustomerID
	s.customers[customer.ID] = customer

	s.lastAccountID++
	account.ID = s.lastAccountID
	account.Number = domain.AccountNumber(account.ID)
	account.CustomerID = customer.ID
	s.accounts[account.ID] = account

	opening := make([]domain.Transaction, len(transactions))
	for i, t := range transactions {
		t.AccountID = account.ID
		opening[i] = t
	}

	return domain.OpenAccountResult{
		Customer:     customer,
		Account:      account,
		Transactions: s.appendTransactions(opening),
	}, nil
}

// DeleteCustomer removes the customer, its accounts and their transactions.
func (s *Store) DeleteCustomer(ctx context.Context, customerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return domain.ErrCustomerNotFound
	}

	for id, a := range s.accounts {
		if a.CustomerID == customerID {
			delete(s.accounts, id)
			delete(s.transactions, id)
		}
	}

	delete(s.customers, customerID)

	return nil
}

// appendTransactions must be called with mu held.
func (s *Store) appendTransactions(transactions []domain.Transaction) []domain.Transaction {
	stored := make([]domain.Transaction, len(transactions))

	for i, t := range transactions {
		s.lastTransactionID++
		t.ID = s.lastTransactionID
		s.transactions[t.AccountID] = append(s.transactions[t.AccountID], t)
		stored[i] = t
	}

	return stored
}
