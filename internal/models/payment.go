package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Payment — одна попытка оплаты заказа. У заказа может быть несколько
// платежей: неудачная попытка, успешная, позднее возврат.
type Payment struct {
	ID                    uuid.UUID       `db:"id" json:"id"`
	OrderID               uuid.UUID       `db:"order_id" json:"order_id"`
	UserID                uuid.UUID       `db:"user_id" json:"user_id"`
	Method                string          `db:"method" json:"method"`
	Status                string          `db:"status" json:"status"`
	Amount                float64         `db:"amount" json:"amount"`
	ExternalTransactionID *string         `db:"external_transaction_id" json:"external_transaction_id,omitempty"`
	Metadata              json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt             time.Time       `db:"created_at" json:"created_at"`
	CompletedAt           *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// HybridMetadata — детали гибридного платежа: какая часть списана с кошелька,
// какая проведена через внешний шлюз.
type HybridMetadata struct {
	WalletAmount   float64 `json:"walletAmount"`
	ExternalAmount float64 `json:"externalAmount"`
}

// ExternalMetadata — детали платежа через внешний шлюз.
type ExternalMetadata struct {
	ExternalTransactionID string    `json:"externalTransactionId"`
	ProcessedAt           time.Time `json:"processedAt"`
}
