package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

type mockWalletRepo struct {
	mock.Mock
}

func (m *mockWalletRepo) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletRepo) Credit(ctx context.Context, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, description, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletTransaction), args.Error(1)
}

func (m *mockWalletRepo) Debit(ctx context.Context, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, description, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WalletTransaction), args.Error(1)
}

func (m *mockWalletRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WalletTransaction), args.Error(1)
}

func (m *mockWalletRepo) HasSufficientFunds(ctx context.Context, userID uuid.UUID, amount float64) (bool, error) {
	args := m.Called(ctx, userID, amount)
	return args.Bool(0), args.Error(1)
}

func TestWalletServiceDepositRejectsNonPositiveAmount(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)

	for _, amount := range []float64{0, -10} {
		_, err := svc.Deposit(context.Background(), uuid.New(), amount)
		assert.Error(t, err)
	}
	repo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletServiceDeposit(t *testing.T) {
	userID := uuid.New()
	tx := &models.WalletTransaction{ID: uuid.New(), UserID: userID, Amount: 100.0, Type: models.WalletTransactionCredit}

	repo := new(mockWalletRepo)
	repo.On("Credit", mock.Anything, userID, 100.0, "Пополнение кошелька", (*uuid.UUID)(nil)).Return(tx, nil)

	svc := NewWalletService(repo)

	got, err := svc.Deposit(context.Background(), userID, 100.0)

	assert.NoError(t, err)
	assert.Equal(t, tx, got)
	repo.AssertExpectations(t)
}

func TestWalletServiceHasSufficientFunds(t *testing.T) {
	userID := uuid.New()

	repo := new(mockWalletRepo)
	repo.On("HasSufficientFunds", mock.Anything, userID, 30.0).Return(true, nil)
	repo.On("HasSufficientFunds", mock.Anything, userID, 300.0).Return(false, nil)

	svc := NewWalletService(repo)

	ok, err := svc.HasSufficientFunds(context.Background(), userID, 30.0)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasSufficientFunds(context.Background(), userID, 300.0)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestWalletServiceListTransactionsNormalizesPagination(t *testing.T) {
	userID := uuid.New()

	repo := new(mockWalletRepo)
	repo.On("ListTransactions", mock.Anything, userID, 20, 0).Return([]models.WalletTransaction{}, nil)

	svc := NewWalletService(repo)

	_, err := svc.ListTransactions(context.Background(), userID, -5, -1)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
