package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FeatureSnapshot — снимок дополнительной услуги на момент оформления заказа.
// Хранится в заказе по значению, а не по ссылке: правка каталога не должна
// менять цену уже оформленного заказа.
type FeatureSnapshot struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Amount float64   `json:"amount"`
}

// FeatureSnapshots сериализуется в JSONB колонку orders.features.
type FeatureSnapshots []FeatureSnapshot

func (f FeatureSnapshots) Value() (driver.Value, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(f)
}

func (f *FeatureSnapshots) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	case nil:
		*f = nil
		return nil
	default:
		return fmt.Errorf("features: неподдерживаемый тип %T", src)
	}
}

// Order описывает оплачиваемый заказ на письменную работу.
type Order struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	ClientID        uuid.UUID        `db:"client_id" json:"client_id"`
	WriterID        *uuid.UUID       `db:"writer_id" json:"writer_id,omitempty"`
	Topic           string           `db:"topic" json:"topic"`
	Instructions    string           `db:"instructions" json:"instructions"`
	AcademicLevelID *uuid.UUID       `db:"academic_level_id" json:"academic_level_id,omitempty"`
	ServiceTypeID   *uuid.UUID       `db:"service_type_id" json:"service_type_id,omitempty"`
	LanguageID      *uuid.UUID       `db:"language_id" json:"language_id,omitempty"`
	SubjectID       *uuid.UUID       `db:"subject_id" json:"subject_id,omitempty"`
	DeadlineHours   int              `db:"deadline_hours" json:"deadline_hours"`
	Pages           int              `db:"pages" json:"pages"`
	Words           int              `db:"words" json:"words"`
	Price           float64          `db:"price" json:"price"`
	Features        FeatureSnapshots `db:"features" json:"features"`
	Status          string           `db:"status" json:"status"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// IsTerminal сообщает, достиг ли заказ конечного статуса.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// orderTransitions описывает машину состояний заказа. Отмена доступна из
// любого нетерминального статуса и добавляется в CanTransition.
var orderTransitions = map[string][]string{
	OrderStatusWaitingForPayment: {OrderStatusActive},
	OrderStatusPlaced:            {OrderStatusActive},
	OrderStatusActive:            {OrderStatusAssigned},
	OrderStatusAssigned:          {OrderStatusInProgress},
	OrderStatusInProgress:        {OrderStatusSubmitted},
	OrderStatusSubmitted:         {OrderStatusWaitingForReview},
	OrderStatusWaitingForReview:  {OrderStatusInRevision, OrderStatusCompleted},
	OrderStatusInRevision:        {OrderStatusSubmitted},
}

// CanTransition проверяет допустимость перехода статуса заказа.
func CanTransition(from, to string) bool {
	if from == OrderStatusCompleted || from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
