package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkuznetsov/paperdesk-backend/internal/dto"
	"github.com/vkuznetsov/paperdesk-backend/internal/http/handlers/common"
	"github.com/vkuznetsov/paperdesk-backend/internal/metrics"
	"github.com/vkuznetsov/paperdesk-backend/internal/service"
	"github.com/vkuznetsov/paperdesk-backend/internal/validation"
)

// PricingHandler отвечает за публичный расчёт цены.
type PricingHandler struct {
	pricing *service.PricingService
}

func NewPricingHandler(pricing *service.PricingService) *PricingHandler {
	return &PricingHandler{pricing: pricing}
}

// Estimate обрабатывает POST /estimate. Доступен без авторизации:
// калькулятор цены показывается ещё до регистрации.
func (h *PricingHandler) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidatePages(req.Pages); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateDeadlineHours(req.DeadlineHours); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	levelID, err := dto.ParseOptionalUUID(req.AcademicLevelID)
	if err != nil {
		common.RespondBadRequest(c, "неверный academic_level_id")
		return
	}
	serviceTypeID, err := dto.ParseOptionalUUID(req.ServiceTypeID)
	if err != nil {
		common.RespondBadRequest(c, "неверный service_type_id")
		return
	}
	languageID, err := dto.ParseOptionalUUID(req.LanguageID)
	if err != nil {
		common.RespondBadRequest(c, "неверный language_id")
		return
	}

	features, err := dto.ToSelections(req.Features)
	if err != nil {
		common.RespondBadRequest(c, "features содержит некорректный UUID")
		return
	}

	estimate, err := h.pricing.Estimate(c.Request.Context(), service.EstimateInput{
		AcademicLevelID: levelID,
		ServiceTypeID:   serviceTypeID,
		LanguageID:      languageID,
		DeadlineHours:   req.DeadlineHours,
		Pages:           req.Pages,
		Features:        features,
	})
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	metrics.EstimatesTotal.Inc()

	c.JSON(http.StatusOK, estimate)
}
