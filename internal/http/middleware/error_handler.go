package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vkuznetsov/paperdesk-backend/internal/logger"
	"github.com/vkuznetsov/paperdesk-backend/internal/pkg/apperror"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode, message := classify(err.Err)
		c.JSON(statusCode, gin.H{"error": message})
	}
}

// classify сопоставляет известным ошибкам статус код и сообщение.
func classify(err error) (int, string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, appErr.Message
	}

	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return http.StatusNotFound, "заказ не найден"
	case errors.Is(err, repository.ErrInquiryNotFound):
		return http.StatusNotFound, "заявка не найдена"
	case errors.Is(err, repository.ErrCouponNotFound):
		return http.StatusNotFound, "купон не найден"
	case errors.Is(err, repository.ErrRateNotFound):
		return http.StatusNotFound, "тариф не найден"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "пользователь не найден"
	case errors.Is(err, repository.ErrOrderNotOwnedByYou):
		return http.StatusForbidden, "заказ принадлежит другому клиенту"
	case errors.Is(err, repository.ErrInvalidTransition):
		return http.StatusConflict, "недопустимый переход статуса заказа"
	case errors.Is(err, repository.ErrInquiryConverted):
		return http.StatusConflict, "заявка уже конвертирована в заказ"
	case errors.Is(err, repository.ErrInsufficientFunds):
		return http.StatusPaymentRequired, "недостаточно средств на кошельке"
	case errors.Is(err, repository.ErrInsufficientPoints):
		return http.StatusPaymentRequired, "недостаточно бонусных баллов"
	}

	if msg := err.Error(); msg != "" && !containsInternalKeywords(msg) {
		statusCode := http.StatusBadRequest
		if contains(msg, "нет прав") || contains(msg, "не авторизован") {
			statusCode = http.StatusForbidden
		}
		return statusCode, msg
	}

	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку без учёта регистра.
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
