package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actorID *uuid.UUID, notes *string) (*models.Order, error) {
	args := m.Called(ctx, orderID, newStatus, actorID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) AssignWriter(ctx context.Context, orderID, writerID uuid.UUID, actorID *uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID, writerID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdatePricing(ctx context.Context, orderID uuid.UUID, features models.FeatureSnapshots, price float64) (*models.Order, error) {
	args := m.Called(ctx, orderID, features, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderStatusHistory), args.Error(1)
}

type mockOrderPricing struct {
	mock.Mock
}

func (m *mockOrderPricing) Estimate(ctx context.Context, input EstimateInput) (*PriceEstimate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PriceEstimate), args.Error(1)
}

type mockOrderCoupons struct {
	mock.Mock
}

func (m *mockOrderCoupons) Apply(ctx context.Context, code string, userID uuid.UUID, orderID *uuid.UUID, total float64) (float64, *models.Coupon, error) {
	args := m.Called(ctx, code, userID, orderID, total)
	if args.Get(1) == nil {
		return args.Get(0).(float64), nil, args.Error(2)
	}
	return args.Get(0).(float64), args.Get(1).(*models.Coupon), args.Error(2)
}

type mockOrderRefunder struct {
	mock.Mock
}

func (m *mockOrderRefunder) Refund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func TestOrderServicePlace(t *testing.T) {
	clientID := uuid.New()

	pricing := new(mockOrderPricing)
	pricing.On("Estimate", mock.Anything, mock.Anything).Return(&PriceEstimate{Total: 72.0}, nil)

	repo := new(mockOrderRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.ClientID == clientID &&
			o.Status == models.OrderStatusWaitingForPayment &&
			o.Price == 72.0 &&
			o.Words == 5*WordsPerPage
	})).Return(nil)

	svc := NewOrderService(repo, pricing, new(mockOrderCoupons), new(mockOrderRefunder), nil, nil)

	order, err := svc.Place(context.Background(), clientID, PlaceOrderInput{
		Topic:         "Essay on distributed systems",
		DeadlineHours: 72,
		Pages:         5,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusWaitingForPayment, order.Status)
	repo.AssertExpectations(t)
}

func TestOrderServicePlaceWithCoupon(t *testing.T) {
	clientID := uuid.New()

	pricing := new(mockOrderPricing)
	pricing.On("Estimate", mock.Anything, mock.Anything).Return(&PriceEstimate{Total: 100.0}, nil)

	coupons := new(mockOrderCoupons)
	coupons.On("Apply", mock.Anything, "WELCOME10", clientID, (*uuid.UUID)(nil), 100.0).
		Return(90.0, &models.Coupon{Code: "WELCOME10"}, nil)

	repo := new(mockOrderRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Price == 90.0
	})).Return(nil)

	svc := NewOrderService(repo, pricing, coupons, new(mockOrderRefunder), nil, nil)

	_, err := svc.Place(context.Background(), clientID, PlaceOrderInput{
		Topic:         "Essay",
		DeadlineHours: 24,
		Pages:         1,
		CouponCode:    "WELCOME10",
	})

	assert.NoError(t, err)
	coupons.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestOrderServicePlaceValidation(t *testing.T) {
	svc := NewOrderService(new(mockOrderRepo), new(mockOrderPricing), new(mockOrderCoupons), new(mockOrderRefunder), nil, nil)

	_, err := svc.Place(context.Background(), uuid.New(), PlaceOrderInput{DeadlineHours: 24, Pages: 1})
	assert.Error(t, err)

	_, err = svc.Place(context.Background(), uuid.New(), PlaceOrderInput{Topic: "Essay", DeadlineHours: 24, Pages: 0})
	assert.Error(t, err)

	_, err = svc.Place(context.Background(), uuid.New(), PlaceOrderInput{Topic: "Essay", DeadlineHours: 0, Pages: 1})
	assert.Error(t, err)
}

func TestOrderServiceTransitionRejectsInvalid(t *testing.T) {
	orderID := uuid.New()
	actorID := uuid.New()

	repo := new(mockOrderRepo)
	repo.On("GetByID", mock.Anything, orderID).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusActive}, nil)

	svc := NewOrderService(repo, new(mockOrderPricing), new(mockOrderCoupons), new(mockOrderRefunder), nil, nil)

	_, err := svc.Transition(context.Background(), orderID, models.OrderStatusCompleted, actorID, nil)

	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	repo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderServiceCancelRefundsPaidOrder(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusActive, Price: 50.0}
	cancelled := &models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusCancelled, Price: 50.0}

	repo := new(mockOrderRepo)
	repo.On("GetByID", mock.Anything, orderID).Return(order, nil)
	repo.On("TransitionStatus", mock.Anything, orderID, models.OrderStatusCancelled, &clientID, (*string)(nil)).
		Return(cancelled, nil)

	refunds := new(mockOrderRefunder)
	refunds.On("Refund", mock.Anything, orderID).
		Return(&models.Payment{OrderID: orderID, Status: models.PaymentStatusRefunded}, nil)

	svc := NewOrderService(repo, new(mockOrderPricing), new(mockOrderCoupons), refunds, nil, nil)

	got, err := svc.Cancel(context.Background(), orderID, clientID, models.RoleClient, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	refunds.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestOrderServiceCancelRejectsTerminal(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()

	repo := new(mockOrderRepo)
	repo.On("GetByID", mock.Anything, orderID).
		Return(&models.Order{ID: orderID, ClientID: clientID, Status: models.OrderStatusCompleted}, nil)

	refunds := new(mockOrderRefunder)

	svc := NewOrderService(repo, new(mockOrderPricing), new(mockOrderCoupons), refunds, nil, nil)

	_, err := svc.Cancel(context.Background(), orderID, clientID, models.RoleClient, nil)

	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	refunds.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything)
}

func TestOrderServiceCancelRejectsForeignOrder(t *testing.T) {
	orderID := uuid.New()

	repo := new(mockOrderRepo)
	repo.On("GetByID", mock.Anything, orderID).
		Return(&models.Order{ID: orderID, ClientID: uuid.New(), Status: models.OrderStatusActive}, nil)

	svc := NewOrderService(repo, new(mockOrderPricing), new(mockOrderCoupons), new(mockOrderRefunder), nil, nil)

	_, err := svc.Cancel(context.Background(), orderID, uuid.New(), models.RoleClient, nil)

	assert.ErrorIs(t, err, repository.ErrOrderNotOwnedByYou)
}

func TestOrderServiceAddServices(t *testing.T) {
	orderID := uuid.New()
	clientID := uuid.New()
	featureID := uuid.New()
	order := &models.Order{
		ID:       orderID,
		ClientID: clientID,
		Status:   models.OrderStatusActive,
		Pages:    4,
		Price:    40.0,
	}

	combinedFeatures := models.FeatureSnapshots{
		{ID: featureID, Name: "Plagiarism report", Type: models.IncrementTypeFixed, Amount: 5.0},
	}

	pricing := new(mockOrderPricing)
	// Первая оценка — заказ как есть, вторая — с новыми услугами.
	pricing.On("Estimate", mock.Anything, mock.MatchedBy(func(in EstimateInput) bool {
		return len(in.Features) == 0
	})).Return(&PriceEstimate{Total: 40.0}, nil)
	pricing.On("Estimate", mock.Anything, mock.MatchedBy(func(in EstimateInput) bool {
		return len(in.Features) == 1
	})).Return(&PriceEstimate{Total: 45.0, Features: combinedFeatures}, nil)

	repo := new(mockOrderRepo)
	repo.On("GetByID", mock.Anything, orderID).Return(order, nil)
	repo.On("UpdatePricing", mock.Anything, orderID, combinedFeatures, 45.0).
		Return(&models.Order{ID: orderID, Price: 45.0, Features: combinedFeatures}, nil)

	svc := NewOrderService(repo, pricing, new(mockOrderCoupons), new(mockOrderRefunder), nil, nil)

	updated, err := svc.AddServices(context.Background(), orderID, clientID, []FeatureSelection{{ID: &featureID}})

	assert.NoError(t, err)
	assert.Equal(t, 45.0, updated.Price)
	repo.AssertExpectations(t)
}
