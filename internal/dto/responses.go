package dto

import (
	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/service"
)

// ErrorResponse — стандартный формат ошибки.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse — стандартный формат успешного ответа с данными.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse — пользователь и пара токенов после регистрации или входа.
type AuthResponse struct {
	User   *models.User       `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

// NewAuthResponse собирает ответ из результата аутентификации.
func NewAuthResponse(result *service.AuthResult) *AuthResponse {
	return &AuthResponse{User: result.User, Tokens: result.TokenPair}
}

// CouponPreviewResponse — результат проверки купона.
type CouponPreviewResponse struct {
	Code            string  `json:"code"`
	DiscountType    string  `json:"discount_type"`
	Amount          float64 `json:"amount"`
	OriginalTotal   float64 `json:"original_total"`
	DiscountedTotal float64 `json:"discounted_total"`
}

// RedeemResponse — результат обмена баллов: проводка по кошельку.
type RedeemResponse struct {
	Transaction *models.WalletTransaction `json:"transaction"`
	Points      int                       `json:"points"`
}
