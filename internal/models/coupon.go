package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon — промокод с окном действия и лимитом использований.
// UsageLimit = 0 означает отсутствие лимита.
type Coupon struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	DiscountType string    `db:"discount_type" json:"discount_type"`
	Amount       float64   `db:"amount" json:"amount"`
	StartsAt     time.Time `db:"starts_at" json:"starts_at"`
	EndsAt       time.Time `db:"ends_at" json:"ends_at"`
	UsageLimit   int       `db:"usage_limit" json:"usage_limit"`
	UsedCount    int       `db:"used_count" json:"used_count"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CouponUsage фиксирует применение купона пользователем; пара
// (coupon_id, user_id) уникальна — купон одноразовый для пользователя.
type CouponUsage struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	CouponID  uuid.UUID  `db:"coupon_id" json:"coupon_id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	OrderID   *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
