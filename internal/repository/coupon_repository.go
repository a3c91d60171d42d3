package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

var (
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")
	ErrCouponAlreadyUsed = errors.New("coupon already used by this user")
)

const couponColumns = `id, code, discount_type, amount, starts_at, ends_at,
	usage_limit, used_count, is_active, created_at`

// CouponRepository хранит промокоды и их применения.
type CouponRepository struct {
	db *sqlx.DB
}

func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// GetByCode возвращает активный купон по коду.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.GetContext(ctx, &coupon, `
		SELECT `+couponColumns+` FROM coupons WHERE code = $1 AND is_active = TRUE
	`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("coupon repository: get by code: %w", err)
	}
	return &coupon, nil
}

// HasUsage сообщает, применял ли пользователь купон раньше.
func (r *CouponRepository) HasUsage(ctx context.Context, couponID, userID uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2
	`, couponID, userID)
	return count > 0, err
}

// Redeem фиксирует применение купона. Счётчик использований и одноразовость
// для пользователя проверяются под блокировкой строки купона: конкурентные
// применения не могут совместно превысить лимит.
func (r *CouponRepository) Redeem(ctx context.Context, code string, userID uuid.UUID, orderID *uuid.UUID, now time.Time) (*models.Coupon, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var coupon models.Coupon
	err = tx.GetContext(ctx, &coupon, `
		SELECT `+couponColumns+` FROM coupons WHERE code = $1 AND is_active = TRUE FOR UPDATE
	`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("coupon repository: lock coupon: %w", err)
	}

	if now.Before(coupon.StartsAt) || now.After(coupon.EndsAt) {
		return nil, ErrCouponNotFound
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, ErrCouponExhausted
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO coupon_usages (coupon_id, user_id, order_id) VALUES ($1, $2, $3)
	`, coupon.ID, userID, orderID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCouponAlreadyUsed
		}
		return nil, fmt.Errorf("coupon repository: insert usage: %w", err)
	}

	err = tx.GetContext(ctx, &coupon, `
		UPDATE coupons SET used_count = used_count + 1 WHERE id = $1
		RETURNING `+couponColumns+`
	`, coupon.ID)
	if err != nil {
		return nil, fmt.Errorf("coupon repository: increment usage: %w", err)
	}

	return &coupon, tx.Commit()
}
