package models

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry — бесплатная заявка с теми же атрибутами работы, что и заказ.
// После конвертации в заказ статус становится терминальным: заявка
// конвертируется ровно один раз.
type Inquiry struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ClientID           uuid.UUID  `db:"client_id" json:"client_id"`
	Topic              string     `db:"topic" json:"topic"`
	Instructions       string     `db:"instructions" json:"instructions"`
	AcademicLevelID    *uuid.UUID `db:"academic_level_id" json:"academic_level_id,omitempty"`
	ServiceTypeID      *uuid.UUID `db:"service_type_id" json:"service_type_id,omitempty"`
	LanguageID         *uuid.UUID `db:"language_id" json:"language_id,omitempty"`
	SubjectID          *uuid.UUID `db:"subject_id" json:"subject_id,omitempty"`
	DeadlineHours      int        `db:"deadline_hours" json:"deadline_hours"`
	Pages              int        `db:"pages" json:"pages"`
	EstimatedPrice     *float64   `db:"estimated_price" json:"estimated_price,omitempty"`
	Status             string     `db:"status" json:"status"`
	ConvertedToOrderID *uuid.UUID `db:"converted_to_order_id" json:"converted_to_order_id,omitempty"`
	ConvertedAt        *time.Time `db:"converted_at" json:"converted_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}
