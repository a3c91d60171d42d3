package models

import (
	"time"

	"github.com/google/uuid"
)

// AcademicLevel представляет академический уровень работы ("High School", "PhD" и т.д.).
type AcademicLevel struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AcademicRate хранит базовую цену страницы для пары (уровень, срок в часах).
// Ставки удаляются только мягко: исторические заказы ссылаются на старые цены.
type AcademicRate struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AcademicLevelID uuid.UUID `db:"academic_level_id" json:"academic_level_id"`
	DeadlineHours   int       `db:"deadline_hours" json:"deadline_hours"`
	PricePerPage    float64   `db:"price_per_page" json:"price_per_page"`
	IsDeleted       bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// PricingModifier описывает надбавку за предмет, тип услуги или язык.
type PricingModifier struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	IncrementType string    `db:"increment_type" json:"increment_type"`
	Increment     float64   `db:"increment" json:"increment"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AdditionalFeature описывает дополнительную услугу ("Plagiarism Report" и т.д.).
type AdditionalFeature struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	IncrementType string    `db:"increment_type" json:"increment_type"`
	Amount        float64   `db:"amount" json:"amount"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PricingPreset хранит плоскую цену для тройки (уровень, тип услуги, тип срока).
// Используется устаревшим упрощённым способом расчёта.
type PricingPreset struct {
	ID               uuid.UUID `db:"id" json:"id"`
	AcademicLevelID  uuid.UUID `db:"academic_level_id" json:"academic_level_id"`
	ServiceTypeID    uuid.UUID `db:"service_type_id" json:"service_type_id"`
	DeadlineType     string    `db:"deadline_type" json:"deadline_type"`
	BasePricePerPage float64   `db:"base_price_per_page" json:"base_price_per_page"`
	Multiplier       float64   `db:"multiplier" json:"multiplier"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
