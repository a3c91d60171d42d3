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

type mockInquiryRepo struct {
	mock.Mock
}

func (m *mockInquiryRepo) Create(ctx context.Context, inquiry *models.Inquiry) error {
	args := m.Called(ctx, inquiry)
	return args.Error(0)
}

func (m *mockInquiryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *mockInquiryRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Inquiry, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *mockInquiryRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Inquiry, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *mockInquiryRepo) UpdateEstimate(ctx context.Context, id uuid.UUID, price float64) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *mockInquiryRepo) ConvertToOrder(ctx context.Context, inquiryID uuid.UUID, actorID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, inquiryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func TestInquiryServiceCreateWithEstimate(t *testing.T) {
	clientID := uuid.New()

	pricing := new(mockOrderPricing)
	pricing.On("Estimate", mock.Anything, mock.Anything).Return(&PriceEstimate{Total: 30.0}, nil)

	repo := new(mockInquiryRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(i *models.Inquiry) bool {
		return i.Status == models.InquiryStatusDraft && i.EstimatedPrice != nil && *i.EstimatedPrice == 30.0
	})).Return(nil)

	svc := NewInquiryService(repo, pricing, nil)

	inquiry, err := svc.Create(context.Background(), clientID, CreateInquiryInput{
		Topic: "Term paper", DeadlineHours: 48, Pages: 3,
	})

	assert.NoError(t, err)
	assert.NotNil(t, inquiry.EstimatedPrice)
	repo.AssertExpectations(t)
}

func TestInquiryServiceCreateSurvivesEstimateFailure(t *testing.T) {
	pricing := new(mockOrderPricing)
	pricing.On("Estimate", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	repo := new(mockInquiryRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(i *models.Inquiry) bool {
		return i.EstimatedPrice == nil
	})).Return(nil)

	svc := NewInquiryService(repo, pricing, nil)

	inquiry, err := svc.Create(context.Background(), uuid.New(), CreateInquiryInput{
		Topic: "Term paper", DeadlineHours: 48, Pages: 3,
	})

	assert.NoError(t, err)
	assert.Nil(t, inquiry.EstimatedPrice)
}

func TestInquiryServiceSubmitOnlyDraft(t *testing.T) {
	inquiryID := uuid.New()
	clientID := uuid.New()

	repo := new(mockInquiryRepo)
	repo.On("GetByID", mock.Anything, inquiryID).
		Return(&models.Inquiry{ID: inquiryID, ClientID: clientID, Status: models.InquiryStatusSubmitted}, nil)

	svc := NewInquiryService(repo, new(mockOrderPricing), nil)

	_, err := svc.Submit(context.Background(), inquiryID, clientID)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestInquiryServiceConvert(t *testing.T) {
	inquiryID := uuid.New()
	clientID := uuid.New()
	order := &models.Order{ID: uuid.New(), ClientID: clientID, Status: models.OrderStatusWaitingForPayment, Price: 30.0}

	repo := new(mockInquiryRepo)
	repo.On("GetByID", mock.Anything, inquiryID).
		Return(&models.Inquiry{ID: inquiryID, ClientID: clientID, Status: models.InquiryStatusSubmitted}, nil)
	repo.On("ConvertToOrder", mock.Anything, inquiryID, clientID).Return(order, nil)

	svc := NewInquiryService(repo, new(mockOrderPricing), nil)

	got, err := svc.Convert(context.Background(), inquiryID, clientID, models.RoleClient)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusWaitingForPayment, got.Status)
}

func TestInquiryServiceConvertAlreadyConverted(t *testing.T) {
	inquiryID := uuid.New()
	clientID := uuid.New()

	repo := new(mockInquiryRepo)
	repo.On("GetByID", mock.Anything, inquiryID).
		Return(&models.Inquiry{ID: inquiryID, ClientID: clientID, Status: models.InquiryStatusConverted}, nil)
	repo.On("ConvertToOrder", mock.Anything, inquiryID, clientID).
		Return(nil, repository.ErrInquiryConverted)

	svc := NewInquiryService(repo, new(mockOrderPricing), nil)

	_, err := svc.Convert(context.Background(), inquiryID, clientID, models.RoleClient)

	assert.ErrorIs(t, err, repository.ErrInquiryConverted)
}
