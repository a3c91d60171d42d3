package dto

import (
	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/service"
)

// FeatureSelectionRequest — выбранная дополнительная услуга.
// Либо id из каталога, либо inline-описание (name + type + amount).
type FeatureSelectionRequest struct {
	ID     *string `json:"id"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// ToSelections конвертирует запрос в селекции сервисного слоя.
// Возвращает ошибку при некорректном UUID.
func ToSelections(reqs []FeatureSelectionRequest) ([]service.FeatureSelection, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	selections := make([]service.FeatureSelection, 0, len(reqs))
	for _, r := range reqs {
		var id *uuid.UUID
		if r.ID != nil && *r.ID != "" {
			parsed, err := uuid.Parse(*r.ID)
			if err != nil {
				return nil, err
			}
			id = &parsed
		}
		selections = append(selections, service.FeatureSelection{
			ID:     id,
			Name:   r.Name,
			Type:   r.Type,
			Amount: r.Amount,
		})
	}

	return selections, nil
}

// EstimateRequest — запрос на расчёт цены без создания заказа.
type EstimateRequest struct {
	AcademicLevelID *string                   `json:"academic_level_id"`
	ServiceTypeID   *string                   `json:"service_type_id"`
	LanguageID      *string                   `json:"language_id"`
	DeadlineHours   int                       `json:"deadline_hours" binding:"required,gt=0"`
	Pages           int                       `json:"pages" binding:"required,gt=0"`
	Features        []FeatureSelectionRequest `json:"features"`
}

// PlaceOrderRequest — запрос на создание заказа.
type PlaceOrderRequest struct {
	Topic           string                    `json:"topic" binding:"required"`
	Instructions    string                    `json:"instructions"`
	AcademicLevelID *string                   `json:"academic_level_id"`
	ServiceTypeID   *string                   `json:"service_type_id"`
	LanguageID      *string                   `json:"language_id"`
	SubjectID       *string                   `json:"subject_id"`
	DeadlineHours   int                       `json:"deadline_hours" binding:"required,gt=0"`
	Pages           int                       `json:"pages" binding:"required,gt=0"`
	Features        []FeatureSelectionRequest `json:"features"`
	CouponCode      string                    `json:"coupon_code"`
}

// AddServicesRequest — докупка дополнительных услуг к существующему заказу.
type AddServicesRequest struct {
	Features []FeatureSelectionRequest `json:"features" binding:"required"`
}

// TransitionOrderRequest — перевод заказа в новый статус (персонал).
type TransitionOrderRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// AssignWriterRequest — назначение автора на заказ.
type AssignWriterRequest struct {
	WriterID string `json:"writer_id" binding:"required"`
}

// CancelOrderRequest — отмена заказа с необязательной причиной.
type CancelOrderRequest struct {
	Reason *string `json:"reason"`
}

// PayOrderRequest — запрос на оплату заказа.
type PayOrderRequest struct {
	Method                string  `json:"method" binding:"required"`
	ExternalTransactionID string  `json:"external_transaction_id"`
	WalletAmount          float64 `json:"wallet_amount"`
}

// DepositRequest — пополнение кошелька.
type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// RedeemPointsRequest — обмен бонусных баллов на деньги в кошельке.
type RedeemPointsRequest struct {
	Points int `json:"points" binding:"required,gt=0"`
}

// CouponPreviewRequest — проверка купона без фиксации использования.
type CouponPreviewRequest struct {
	Code  string  `json:"code" binding:"required"`
	Total float64 `json:"total" binding:"required,gt=0"`
}

// CreateInquiryRequest — создание заявки (черновика заказа).
type CreateInquiryRequest struct {
	Topic           string  `json:"topic" binding:"required"`
	Instructions    string  `json:"instructions"`
	AcademicLevelID *string `json:"academic_level_id"`
	ServiceTypeID   *string `json:"service_type_id"`
	LanguageID      *string `json:"language_id"`
	SubjectID       *string `json:"subject_id"`
	DeadlineHours   int     `json:"deadline_hours" binding:"required,gt=0"`
	Pages           int     `json:"pages" binding:"required,gt=0"`
}

// InquiryEstimateRequest — ручная корректировка оценки заявки (персонал).
type InquiryEstimateRequest struct {
	Price float64 `json:"price"`
}

// RegisterRequest — регистрация пользователя.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// LoginRequest — вход по email и паролю.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — обновление пары токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateRateRequest — создание тарифа каталога (админ).
type CreateRateRequest struct {
	AcademicLevelID string  `json:"academic_level_id" binding:"required"`
	DeadlineHours   int     `json:"deadline_hours" binding:"required,gt=0"`
	PricePerPage    float64 `json:"price_per_page" binding:"required,gt=0"`
}

// UpdateRateRequest — изменение цены тарифа (админ).
type UpdateRateRequest struct {
	PricePerPage float64 `json:"price_per_page" binding:"required,gt=0"`
}

// BulkAdjustRatesRequest — массовая корректировка тарифов (админ).
// Сначала применяется процент, затем фиксированная надбавка.
type BulkAdjustRatesRequest struct {
	Percent float64 `json:"percent"`
	Flat    float64 `json:"flat"`
}

// ParseOptionalUUID разбирает необязательный идентификатор из запроса.
func ParseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
