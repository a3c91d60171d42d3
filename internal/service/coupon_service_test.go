package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

type mockCouponRepo struct {
	mock.Mock
}

func (m *mockCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func (m *mockCouponRepo) HasUsage(ctx context.Context, couponID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCouponRepo) Redeem(ctx context.Context, code string, userID uuid.UUID, orderID *uuid.UUID, now time.Time) (*models.Coupon, error) {
	args := m.Called(ctx, code, userID, orderID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

func activeCoupon(code, discountType string, amount float64) *models.Coupon {
	return &models.Coupon{
		ID:           uuid.New(),
		Code:         code,
		DiscountType: discountType,
		Amount:       amount,
		StartsAt:     time.Now().Add(-time.Hour),
		EndsAt:       time.Now().Add(time.Hour),
		UsageLimit:   10,
		IsActive:     true,
	}
}

func TestCouponServicePreviewPercent(t *testing.T) {
	userID := uuid.New()
	coupon := activeCoupon("WELCOME10", models.IncrementTypePercent, 10)

	repo := new(mockCouponRepo)
	repo.On("GetByCode", mock.Anything, "WELCOME10").Return(coupon, nil)
	repo.On("HasUsage", mock.Anything, coupon.ID, userID).Return(false, nil)

	svc := NewCouponService(repo)

	discounted, got, err := svc.Preview(context.Background(), "WELCOME10", userID, 100.0)

	assert.NoError(t, err)
	assert.Equal(t, 90.0, discounted)
	assert.Equal(t, coupon, got)
}

func TestCouponServicePreviewExpired(t *testing.T) {
	userID := uuid.New()
	coupon := activeCoupon("OLD", models.IncrementTypePercent, 10)
	coupon.EndsAt = time.Now().Add(-time.Minute)

	repo := new(mockCouponRepo)
	repo.On("GetByCode", mock.Anything, "OLD").Return(coupon, nil)

	svc := NewCouponService(repo)

	_, _, err := svc.Preview(context.Background(), "OLD", userID, 100.0)

	assert.Error(t, err)
}

func TestCouponServicePreviewAlreadyUsed(t *testing.T) {
	userID := uuid.New()
	coupon := activeCoupon("ONCE", models.IncrementTypeFixed, 5)

	repo := new(mockCouponRepo)
	repo.On("GetByCode", mock.Anything, "ONCE").Return(coupon, nil)
	repo.On("HasUsage", mock.Anything, coupon.ID, userID).Return(true, nil)

	svc := NewCouponService(repo)

	_, _, err := svc.Preview(context.Background(), "ONCE", userID, 100.0)

	assert.ErrorIs(t, err, repository.ErrCouponAlreadyUsed)
}

func TestCouponServiceApplyFixedNeverNegative(t *testing.T) {
	userID := uuid.New()
	coupon := activeCoupon("BIG", models.IncrementTypeFixed, 200)

	repo := new(mockCouponRepo)
	repo.On("Redeem", mock.Anything, "BIG", userID, (*uuid.UUID)(nil), mock.Anything).Return(coupon, nil)

	svc := NewCouponService(repo)

	discounted, _, err := svc.Apply(context.Background(), "BIG", userID, nil, 100.0)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, discounted)
}
