package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusHistory — строка журнала переходов статуса заказа.
// Журнал только дописывается, существующие строки никогда не изменяются.
type OrderStatusHistory struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrderID        uuid.UUID  `db:"order_id" json:"order_id"`
	PreviousStatus *string    `db:"previous_status" json:"previous_status,omitempty"`
	NewStatus      string     `db:"new_status" json:"new_status"`
	ActorID        *uuid.UUID `db:"actor_id" json:"actor_id,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
