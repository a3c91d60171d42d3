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

// CouponHandler предоставляет проверку купонов.
type CouponHandler struct {
	coupons *service.CouponService
}

func NewCouponHandler(coupons *service.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Preview обрабатывает POST /coupons/preview.
// Использование не фиксируется: купон списывается только при создании заказа.
func (h *CouponHandler) Preview(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CouponPreviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	discounted, coupon, err := h.coupons.Preview(c.Request.Context(), req.Code, userID, req.Total)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCouponNotFound):
			common.RespondNotFound(c, "купон не найден")
		case errors.Is(err, repository.ErrCouponAlreadyUsed):
			common.RespondError(c, http.StatusConflict, "купон уже использован")
		case errors.Is(err, repository.ErrCouponExhausted):
			common.RespondError(c, http.StatusConflict, "лимит использований купона исчерпан")
		default:
			common.RespondBadRequest(c, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, dto.CouponPreviewResponse{
		Code:            coupon.Code,
		DiscountType:    coupon.DiscountType,
		Amount:          coupon.Amount,
		OriginalTotal:   req.Total,
		DiscountedTotal: discounted,
	})
}
