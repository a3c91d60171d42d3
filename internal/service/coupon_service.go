package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	HasUsage(ctx context.Context, couponID, userID uuid.UUID) (bool, error)
	Redeem(ctx context.Context, code string, userID uuid.UUID, orderID *uuid.UUID, now time.Time) (*models.Coupon, error)
}

// CouponService применяет промокоды к цене заказа. Скидка считается от
// итоговой цены; результат никогда не опускается ниже нуля.
type CouponService struct {
	repo CouponRepository
	now  func() time.Time
}

func NewCouponService(repo CouponRepository) *CouponService {
	return &CouponService{repo: repo, now: time.Now}
}

// Preview считает скидку без фиксации использования. Используется на
// странице оформления заказа до его создания.
func (s *CouponService) Preview(ctx context.Context, code string, userID uuid.UUID, total float64) (float64, *models.Coupon, error) {
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return 0, nil, err
	}

	now := s.now()
	if now.Before(coupon.StartsAt) || now.After(coupon.EndsAt) {
		return 0, nil, fmt.Errorf("срок действия промокода истёк или ещё не начался")
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return 0, nil, repository.ErrCouponExhausted
	}
	used, err := s.repo.HasUsage(ctx, coupon.ID, userID)
	if err != nil {
		return 0, nil, err
	}
	if used {
		return 0, nil, repository.ErrCouponAlreadyUsed
	}

	return discountedTotal(coupon, total), coupon, nil
}

// Apply фиксирует использование промокода и возвращает цену со скидкой.
// Все проверки — окно действия, лимит, повторное использование —
// выполняются репозиторием под блокировкой строки купона.
func (s *CouponService) Apply(ctx context.Context, code string, userID uuid.UUID, orderID *uuid.UUID, total float64) (float64, *models.Coupon, error) {
	coupon, err := s.repo.Redeem(ctx, code, userID, orderID, s.now())
	if err != nil {
		return 0, nil, err
	}
	return discountedTotal(coupon, total), coupon, nil
}

// discountedTotal применяет скидку купона к итоговой цене.
func discountedTotal(coupon *models.Coupon, total float64) float64 {
	var discount float64
	switch coupon.DiscountType {
	case models.IncrementTypePercent:
		discount = total * coupon.Amount / 100
	case models.IncrementTypeFixed:
		discount = coupon.Amount
	}
	result := round2(total - discount)
	if result < 0 {
		return 0
	}
	return result
}
