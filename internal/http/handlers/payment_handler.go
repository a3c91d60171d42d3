package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkuznetsov/paperdesk-backend/internal/dto"
	"github.com/vkuznetsov/paperdesk-backend/internal/http/handlers/common"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
	"github.com/vkuznetsov/paperdesk-backend/internal/service"
)

// PaymentHandler предоставляет HTTP слой движка оплат.
type PaymentHandler struct {
	settlements *service.SettlementService
}

func NewPaymentHandler(settlements *service.SettlementService) *PaymentHandler {
	return &PaymentHandler{settlements: settlements}
}

// Pay обрабатывает POST /orders/:id/pay.
func (h *PaymentHandler) Pay(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.PayOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := h.settlements.Pay(c.Request.Context(), orderID, userID, service.PayInput{
		Method:                req.Method,
		ExternalTransactionID: req.ExternalTransactionID,
		WalletAmount:          req.WalletAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			common.RespondNotFound(c, "заказ не найден")
		case errors.Is(err, repository.ErrOrderNotOwnedByYou):
			common.RespondForbidden(c, "заказ принадлежит другому клиенту")
		case errors.Is(err, repository.ErrInsufficientFunds):
			common.RespondError(c, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, repository.ErrInvalidTransition):
			common.RespondError(c, http.StatusConflict, err.Error())
		default:
			common.RespondBadRequest(c, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, payment)
}

// PaymentOptions обрабатывает GET /orders/:id/payment-options.
func (h *PaymentHandler) PaymentOptions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	options, err := h.settlements.PaymentOptions(c.Request.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			common.RespondNotFound(c, "заказ не найден")
		case errors.Is(err, repository.ErrOrderNotOwnedByYou):
			common.RespondForbidden(c, "заказ принадлежит другому клиенту")
		default:
			common.RespondInternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"options": options})
}

// ListOrderPayments обрабатывает GET /orders/:id/payments.
func (h *PaymentHandler) ListOrderPayments(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payments, err := h.settlements.ListOrderPayments(c.Request.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			common.RespondNotFound(c, "заказ не найден")
		case errors.Is(err, repository.ErrOrderNotOwnedByYou):
			common.RespondForbidden(c, "заказ принадлежит другому клиенту")
		default:
			common.RespondInternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
