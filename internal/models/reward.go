package models

import (
	"time"

	"github.com/google/uuid"
)

// Reward — бонусный счёт пользователя. Доступный остаток — это
// PointsEarned - PointsRedeemed, он никогда не опускается ниже нуля.
type Reward struct {
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	PointsEarned   int       `db:"points_earned" json:"points_earned"`
	PointsRedeemed int       `db:"points_redeemed" json:"points_redeemed"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Balance возвращает доступный остаток баллов.
func (r *Reward) Balance() int {
	return r.PointsEarned - r.PointsRedeemed
}

// RewardTransaction — строка журнала начислений и списаний баллов.
type RewardTransaction struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	OrderID     *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Points      int        `db:"points" json:"points"`
	Description *string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
