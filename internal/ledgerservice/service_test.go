package ledgerservice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-petr/bank-ledger/internal/domain"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestService(store Store) *Service {
	s := New(store, RetryPolicy{Retries: 2, Backoff: time.Millisecond})
	s.now = func() time.Time { return testNow }
	s.recorder = NewRecorder(s.now)

	return s
}

func testAccount(id int64, balance string) domain.Account {
	return domain.Account{
		ID:         id,
		Number:     domain.AccountNumber(id),
		CustomerID: 10 + id,
		Kind:       domain.AccountSavings,
		Mode:       domain.OperationSelf,
		Balance:    decimal.RequireFromString(balance),
		CreatedAt:  testNow.Add(-time.Hour),
	}
}

var errStoreDown = fmt.Errorf("%w: connection refused", domain.ErrStore)

func TestDeposit(t *testing.T) {
	account := testAccount(1, "100")

	testCases := []struct {
		name          string
		amount        decimal.Decimal
		buildStubs    func(store *MockStore)
		checkResponse func(res domain.Account, err error)
	}{
		{
			name:   "OK",
			amount: decimal.RequireFromString("50.5"),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, accounts []domain.Account, txs []domain.Transaction) ([]domain.Transaction, error) {
						require.Len(t, accounts, 1)
						require.True(t, decimal.RequireFromString("150.5").Equal(accounts[0].Balance))
						require.Len(t, txs, 1)
						require.Equal(t, account.ID, txs[0].AccountID)
						require.Equal(t, domain.TransactionDeposit, txs[0].Kind)
						require.Equal(t, domain.Credit, txs[0].Direction)
						require.Equal(t, "Deposit", txs[0].Description)
						require.True(t, decimal.RequireFromString("50.5").Equal(txs[0].Amount))
						require.True(t, decimal.RequireFromString("150.5").Equal(txs[0].BalanceAfter))
						require.Nil(t, txs[0].RelatedAccountID)
						require.Equal(t, testNow, txs[0].CreatedAt)

						return txs, nil
					})
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, account.ID, res.ID)
				require.True(t, decimal.RequireFromString("150.5").Equal(res.Balance))
			},
		},
		{
			name:   "ZeroAmount",
			amount: decimal.Zero,
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
				require.Empty(t, res)
			},
		},
		{
			name:   "HugeExponent",
			amount: decimal.RequireFromString("1e300000000"),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
				require.Empty(t, res)
			},
		},
		{
			name:   "NegativeAmount",
			amount: decimal.NewFromInt(-1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidArgument)
			},
		},
		{
			name:   "AccountNotFound",
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrNotFound)
				require.Empty(t, res)
			},
		},
		{
			name:   "StoreFailureRetried",
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				gomock.InOrder(
					store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
						Times(2).Return(nil, errStoreDown),
					store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
						Times(1).Return([]domain.Transaction{{ID: 1}}, nil),
				)
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.True(t, decimal.NewFromInt(101).Equal(res.Balance))
			},
		},
		{
			name:   "StoreFailureExhausted",
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(3).Return(nil, errStoreDown)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrStore)
				require.Equal(t, "StoreError", domain.Kind(err))
				require.Empty(t, res)
			},
		},
		{
			name:   "BalanceConflictNotRetried",
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).Return(nil, domain.ErrBalanceConflict)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrBalanceConflict)
				require.Equal(t, "StoreError", domain.Kind(err))
				require.Empty(t, res)
			},
		},
		{
			name:   "RejectedCommitNotRetried",
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).Return(nil, domain.ErrAccountNotFound)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStore(ctrl)
			tc.buildStubs(store)

			s := newTestService(store)

			res, err := s.Deposit(context.Background(), account.ID, tc.amount)
			tc.checkResponse(res, err)
			require.Zero(t, s.locks.size())
		})
	}
}

func TestWithdraw(t *testing.T) {
	account := testAccount(1, "100")

	testCases := []struct {
		name          string
		amount        decimal.Decimal
		buildStubs    func(store *MockStore)
		checkResponse func(res domain.Account, err error)
	}{
		{
			name:   "OK",
			amount: decimal.NewFromInt(30),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, accounts []domain.Account, txs []domain.Transaction) ([]domain.Transaction, error) {
						require.True(t, decimal.NewFromInt(70).Equal(accounts[0].Balance))
						require.Equal(t, domain.TransactionWithdrawal, txs[0].Kind)
						require.Equal(t, domain.Debit, txs[0].Direction)
						require.Equal(t, "Withdrawal", txs[0].Description)
						require.True(t, decimal.NewFromInt(70).Equal(txs[0].BalanceAfter))

						return txs, nil
					})
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.True(t, decimal.NewFromInt(70).Equal(res.Balance))
			},
		},
		{
			name:   "WholeBalance",
			amount: decimal.NewFromInt(100),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(nil, nil)
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.True(t, res.Balance.IsZero())
			},
		},
		{
			name:   "InsufficientFunds",
			amount: decimal.RequireFromString("100.01"),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.ID)).Times(1).Return(account, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
				require.Equal(t, "InsufficientFunds", domain.Kind(err))
				require.Empty(t, res)
			},
		},
		{
			name:   "ZeroAmount",
			amount: decimal.Zero,
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStore(ctrl)
			tc.buildStubs(store)

			res, err := newTestService(store).Withdraw(context.Background(), account.ID, tc.amount)
			tc.checkResponse(res, err)
		})
	}
}

func TestTransfer(t *testing.T) {
	from := testAccount(2, "100")
	to := testAccount(1, "5")

	testCases := []struct {
		name          string
		fromID, toID  int64
		amount        decimal.Decimal
		buildStubs    func(store *MockStore)
		checkResponse func(res domain.Account, err error)
	}{
		{
			name:   "OK",
			fromID: from.ID,
			toID:   to.ID,
			amount: decimal.NewFromInt(30),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(from.ID)).Times(1).Return(from, nil)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(to.ID)).Times(1).Return(to, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					DoAndReturn(func(_ context.Context, accounts []domain.Account, txs []domain.Transaction) ([]domain.Transaction, error) {
						require.Len(t, accounts, 2)
						require.Equal(t, from.ID, accounts[0].ID)
						require.True(t, decimal.NewFromInt(70).Equal(accounts[0].Balance))
						require.Equal(t, to.ID, accounts[1].ID)
						require.True(t, decimal.NewFromInt(35).Equal(accounts[1].Balance))

						require.Len(t, txs, 2)

						debit, credit := txs[0], txs[1]
						require.Equal(t, from.ID, debit.AccountID)
						require.Equal(t, domain.TransactionTransfer, debit.Kind)
						require.Equal(t, domain.Debit, debit.Direction)
						require.Equal(t, "Transfer to account "+to.Number, debit.Description)
						require.Equal(t, to.ID, *debit.RelatedAccountID)
						require.True(t, decimal.NewFromInt(70).Equal(debit.BalanceAfter))

						require.Equal(t, to.ID, credit.AccountID)
						require.Equal(t, domain.TransactionTransfer, credit.Kind)
						require.Equal(t, domain.Credit, credit.Direction)
						require.Equal(t, "Transfer from account "+from.Number, credit.Description)
						require.Equal(t, from.ID, *credit.RelatedAccountID)
						require.True(t, decimal.NewFromInt(35).Equal(credit.BalanceAfter))

						return txs, nil
					})
			},
			checkResponse: func(res domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, from.ID, res.ID)
				require.True(t, decimal.NewFromInt(70).Equal(res.Balance))
			},
		},
		{
			name:   "SameAccount",
			fromID: from.ID,
			toID:   from.ID,
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrSameAccountTransfer)
				require.Equal(t, "InvalidArgument", domain.Kind(err))
			},
		},
		{
			name:   "SameAccountCheckedBeforeAmount",
			fromID: from.ID,
			toID:   from.ID,
			amount: decimal.Zero,
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrSameAccountTransfer)
			},
		},
		{
			name:   "InvalidAmount",
			fromID: from.ID,
			toID:   to.ID,
			amount: decimal.NewFromInt(-10),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name:   "SourceNotFound",
			fromID: from.ID,
			toID:   to.ID,
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(from.ID)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
		{
			name:   "DestinationNotFound",
			fromID: from.ID,
			toID:   to.ID,
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(from.ID)).Times(1).Return(from, nil)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(to.ID)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
		{
			name:   "InsufficientFunds",
			fromID: from.ID,
			toID:   to.ID,
			amount: decimal.NewFromInt(101),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(from.ID)).Times(1).Return(from, nil)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(to.ID)).Times(1).Return(to, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
				require.Empty(t, res)
			},
		},
		{
			name:   "CommitFailure",
			fromID: from.ID,
			toID:   to.ID,
			amount: decimal.NewFromInt(1),
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(from.ID)).Times(1).Return(from, nil)
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(to.ID)).Times(1).Return(to, nil)
				store.EXPECT().CommitAccountsAndTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(3).Return(nil, errStoreDown)
			},
			checkResponse: func(res domain.Account, err error) {
				require.ErrorIs(t, err, domain.ErrStore)
				require.Empty(t, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStore(ctrl)
			tc.buildStubs(store)

			s := newTestService(store)

			res, err := s.Transfer(context.Background(), tc.fromID, tc.toID, tc.amount)
			tc.checkResponse(res, err)
			require.Zero(t, s.locks.size())
		})
	}
}

func TestMutationWaitsForContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)

	s := newTestService(store)

	release, err := s.locks.acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = s.Deposit(ctx, 1, decimal.NewFromInt(1))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = s.Transfer(ctx, 2, 1, decimal.NewFromInt(1))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(int64(1))).Times(1).Return(testAccount(1, "42.42"), nil)
	store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(int64(2))).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)

	s := newTestService(store)

	balance, err := s.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "42.42", balance.String())

	balance, err = s.GetBalance(context.Background(), 2)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.True(t, balance.IsZero())
}

func TestGetHistory(t *testing.T) {
	period := domain.Period{From: testNow.AddDate(0, -1, 0), To: testNow}
	history := []domain.Transaction{{ID: 2, AccountID: 1}, {ID: 1, AccountID: 1}}

	testCases := []struct {
		name          string
		buildStubs    func(store *MockStore)
		checkResponse func(res []domain.Transaction, err error)
	}{
		{
			name: "OK",
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(int64(1))).Times(1).Return(testAccount(1, "0"), nil)
				store.EXPECT().ListTransactions(gomock.Any(), gomock.Eq(int64(1)), gomock.Eq(period)).Times(1).Return(history, nil)
			},
			checkResponse: func(res []domain.Transaction, err error) {
				require.NoError(t, err)
				require.Equal(t, history, res)
			},
		},
		{
			name: "AccountNotFound",
			buildStubs: func(store *MockStore) {
				store.EXPECT().GetAccount(gomock.Any(), gomock.Eq(int64(1))).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				store.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res []domain.Transaction, err error) {
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
				require.Nil(t, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStore(ctrl)
			tc.buildStubs(store)

			res, err := newTestService(store).GetHistory(context.Background(), 1, period)
			tc.checkResponse(res, err)
		})
	}
}

func TestGetHistoryInvertedPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockStore(ctrl)
	store.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
	store.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	period := domain.Period{From: testNow, To: testNow.Add(-time.Hour)}

	res, err := newTestService(store).GetHistory(context.Background(), 1, period)
	require.ErrorIs(t, err, domain.ErrInvalidPeriod)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Nil(t, res)
}

func TestDeleteCustomer(t *testing.T) {
	testCases := []struct {
		name       string
		buildStubs func(store *MockStore)
		wantErr    error
	}{
		{
			name: "OK",
			buildStubs: func(store *MockStore) {
				store.EXPECT().ListCustomerAccounts(gomock.Any(), gomock.Eq(int64(7))).Times(1).
					Return([]domain.Account{testAccount(3, "1"), testAccount(4, "2")}, nil)
				store.EXPECT().DeleteCustomer(gomock.Any(), gomock.Eq(int64(7))).Times(1).Return(nil)
			},
		},
		{
			name: "CustomerNotFound",
			buildStubs: func(store *MockStore) {
				store.EXPECT().ListCustomerAccounts(gomock.Any(), gomock.Eq(int64(7))).Times(1).
					Return(nil, domain.ErrCustomerNotFound)
				store.EXPECT().DeleteCustomer(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrCustomerNotFound,
		},
		{
			name: "StoreFailure",
			buildStubs: func(store *MockStore) {
				store.EXPECT().ListCustomerAccounts(gomock.Any(), gomock.Eq(int64(7))).Times(1).Return([]domain.Account{}, nil)
				store.EXPECT().DeleteCustomer(gomock.Any(), gomock.Eq(int64(7))).Times(3).Return(errStoreDown)
			},
			wantErr: domain.ErrStore,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := NewMockStore(ctrl)
			tc.buildStubs(store)

			s := newTestService(store)

			err := s.DeleteCustomer(context.Background(), 7)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			require.Zero(t, s.locks.size())
		})
	}
}
