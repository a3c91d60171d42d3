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

// RewardHandler предоставляет HTTP слой бонусной программы.
type RewardHandler struct {
	rewards *service.RewardService
}

func NewRewardHandler(rewards *service.RewardService) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// GetAccount обрабатывает GET /rewards.
func (h *RewardHandler) GetAccount(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	account, err := h.rewards.GetAccount(c.Request.Context(), userID)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, account)
}

// Redeem обрабатывает POST /rewards/redeem: обмен баллов на пополнение кошелька.
func (h *RewardHandler) Redeem(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.RedeemPointsRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	transaction, err := h.rewards.Redeem(c.Request.Context(), userID, req.Points)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientPoints) {
			common.RespondError(c, http.StatusPaymentRequired, "недостаточно бонусных баллов")
			return
		}
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.RedeemResponse{
		Transaction: transaction,
		Points:      req.Points,
	})
}

// ListTransactions обрабатывает GET /rewards/transactions.
func (h *RewardHandler) ListTransactions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	transactions, err := h.rewards.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
