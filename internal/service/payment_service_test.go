package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkuznetsov/paperdesk-backend/internal/logger"
	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

func init() {
	logger.Init("error")
}

type mockSettlementRepo struct {
	mock.Mock
}

func (m *mockSettlementRepo) SettleWithWallet(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockSettlementRepo) SettleWithExternal(ctx context.Context, orderID uuid.UUID, externalTransactionID string, processedAt time.Time) (*models.Payment, error) {
	args := m.Called(ctx, orderID, externalTransactionID, processedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockSettlementRepo) SettleWithHybrid(ctx context.Context, orderID uuid.UUID, walletAmount float64, externalTransactionID string) (*models.Payment, error) {
	args := m.Called(ctx, orderID, walletAmount, externalTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockSettlementRepo) CancelAndRefund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockSettlementRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

type mockSettlementOrders struct {
	mock.Mock
}

func (m *mockSettlementOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type mockSettlementWallets struct {
	mock.Mock
}

func (m *mockSettlementWallets) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

type mockSettlementRewards struct {
	mock.Mock
}

func (m *mockSettlementRewards) EarnForPayment(ctx context.Context, userID uuid.UUID, amountPaid float64, orderID *uuid.UUID) error {
	args := m.Called(ctx, userID, amountPaid, orderID)
	return args.Error(0)
}

func TestSettlementServicePayWithWallet(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 72.0}
	payment := &models.Payment{ID: uuid.New(), OrderID: orderID, Method: models.PaymentMethodWallet, Amount: 72.0, Status: models.PaymentStatusCompleted}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	payments := new(mockSettlementRepo)
	payments.On("ListByOrder", mock.Anything, orderID).Return([]models.Payment{}, nil)
	payments.On("SettleWithWallet", mock.Anything, orderID).Return(payment, nil)

	rewards := new(mockSettlementRewards)
	rewards.On("EarnForPayment", mock.Anything, clientID, 72.0, &orderID).Return(nil)

	svc := NewSettlementService(payments, orders, new(mockSettlementWallets), rewards, nil)

	got, err := svc.Pay(context.Background(), orderID, clientID, PayInput{Method: models.PaymentMethodWallet})

	assert.NoError(t, err)
	assert.Equal(t, payment, got)
	payments.AssertExpectations(t)
	rewards.AssertExpectations(t)
}

func TestSettlementServicePayRejectsForeignOrder(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: uuid.New(), Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	svc := NewSettlementService(new(mockSettlementRepo), orders, new(mockSettlementWallets), new(mockSettlementRewards), nil)

	_, err := svc.Pay(context.Background(), orderID, uuid.New(), PayInput{Method: models.PaymentMethodWallet})

	assert.ErrorIs(t, err, repository.ErrOrderNotOwnedByYou)
}

func TestSettlementServicePayRejectsDoublePayment(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusActive, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	payments := new(mockSettlementRepo)
	payments.On("ListByOrder", mock.Anything, orderID).Return([]models.Payment{
		{OrderID: orderID, Status: models.PaymentStatusCompleted},
	}, nil)

	svc := NewSettlementService(payments, orders, new(mockSettlementWallets), new(mockSettlementRewards), nil)

	_, err := svc.Pay(context.Background(), orderID, clientID, PayInput{Method: models.PaymentMethodWallet})

	assert.Error(t, err)
	payments.AssertNotCalled(t, "SettleWithWallet", mock.Anything, mock.Anything)
}

func TestSettlementServicePayHybridValidatesWalletAmount(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	payments := new(mockSettlementRepo)
	payments.On("ListByOrder", mock.Anything, orderID).Return([]models.Payment{}, nil)

	svc := NewSettlementService(payments, orders, new(mockSettlementWallets), new(mockSettlementRewards), nil)

	for _, walletAmount := range []float64{0, -1, 50.0, 60.0} {
		_, err := svc.Pay(context.Background(), orderID, clientID, PayInput{
			Method:                models.PaymentMethodHybrid,
			WalletAmount:          walletAmount,
			ExternalTransactionID: "ext-1",
		})
		assert.Error(t, err)
	}
	payments.AssertNotCalled(t, "SettleWithHybrid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementServicePayUnknownMethod(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	payments := new(mockSettlementRepo)
	payments.On("ListByOrder", mock.Anything, orderID).Return([]models.Payment{}, nil)

	svc := NewSettlementService(payments, orders, new(mockSettlementWallets), new(mockSettlementRewards), nil)

	_, err := svc.Pay(context.Background(), orderID, clientID, PayInput{Method: "bitcoin"})

	assert.Error(t, err)
}

func TestSettlementServicePayInsufficientFunds(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	payments := new(mockSettlementRepo)
	payments.On("ListByOrder", mock.Anything, orderID).Return([]models.Payment{}, nil)
	payments.On("SettleWithWallet", mock.Anything, orderID).
		Return(nil, &repository.InsufficientFundsError{Required: 50.0, Available: 10.0})

	rewards := new(mockSettlementRewards)

	svc := NewSettlementService(payments, orders, new(mockSettlementWallets), rewards, nil)

	_, err := svc.Pay(context.Background(), orderID, clientID, PayInput{Method: models.PaymentMethodWallet})

	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)
	rewards.AssertNotCalled(t, "EarnForPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementServicePaymentOptionsFullBalance(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	wallets := new(mockSettlementWallets)
	wallets.On("GetWallet", mock.Anything, clientID).Return(&models.Wallet{UserID: clientID, Balance: 120.0}, nil)

	svc := NewSettlementService(new(mockSettlementRepo), orders, wallets, new(mockSettlementRewards), nil)

	options, err := svc.PaymentOptions(context.Background(), orderID, clientID)

	assert.NoError(t, err)
	assert.Equal(t, []PaymentOption{
		{Method: models.PaymentMethodWallet, WalletAmount: 50.0},
		{Method: models.PaymentMethodExternal, ExternalAmount: 50.0},
	}, options)
}

func TestSettlementServicePaymentOptionsPartialBalance(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	wallets := new(mockSettlementWallets)
	wallets.On("GetWallet", mock.Anything, clientID).Return(&models.Wallet{UserID: clientID, Balance: 12.5}, nil)

	svc := NewSettlementService(new(mockSettlementRepo), orders, wallets, new(mockSettlementRewards), nil)

	options, err := svc.PaymentOptions(context.Background(), orderID, clientID)

	assert.NoError(t, err)
	assert.Equal(t, []PaymentOption{
		{Method: models.PaymentMethodHybrid, WalletAmount: 12.5, ExternalAmount: 37.5},
		{Method: models.PaymentMethodExternal, ExternalAmount: 50.0},
	}, options)
}

func TestSettlementServicePaymentOptionsEmptyWallet(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	wallets := new(mockSettlementWallets)
	wallets.On("GetWallet", mock.Anything, clientID).Return(&models.Wallet{UserID: clientID, Balance: 0}, nil)

	svc := NewSettlementService(new(mockSettlementRepo), orders, wallets, new(mockSettlementRewards), nil)

	options, err := svc.PaymentOptions(context.Background(), orderID, clientID)

	assert.NoError(t, err)
	assert.Equal(t, []PaymentOption{
		{Method: models.PaymentMethodExternal, ExternalAmount: 50.0},
	}, options)
}

func TestSettlementServicePaymentOptionsForeignOrder(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: uuid.New(), Status: models.OrderStatusWaitingForPayment, Price: 50.0}

	orders := new(mockSettlementOrders)
	orders.On("GetByID", mock.Anything, orderID).Return(order, nil)

	wallets := new(mockSettlementWallets)

	svc := NewSettlementService(new(mockSettlementRepo), orders, wallets, new(mockSettlementRewards), nil)

	_, err := svc.PaymentOptions(context.Background(), orderID, uuid.New())

	assert.ErrorIs(t, err, repository.ErrOrderNotOwnedByYou)
	wallets.AssertNotCalled(t, "GetWallet", mock.Anything, mock.Anything)
}

func TestSettlementServiceRefundWithoutPayment(t *testing.T) {
	orderID := uuid.New()

	payments := new(mockSettlementRepo)
	payments.On("CancelAndRefund", mock.Anything, orderID).Return(nil, repository.ErrNoCompletedPayment)

	svc := NewSettlementService(payments, new(mockSettlementOrders), new(mockSettlementWallets), new(mockSettlementRewards), nil)

	payment, err := svc.Refund(context.Background(), orderID)

	assert.NoError(t, err)
	assert.Nil(t, payment)
}
