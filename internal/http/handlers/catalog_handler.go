package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/dto"
	"github.com/vkuznetsov/paperdesk-backend/internal/http/handlers/common"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
	"github.com/vkuznetsov/paperdesk-backend/internal/service"
)

// CatalogHandler отдаёт справочники прайс-листа и обслуживает
// административные операции над тарифами.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListLevels GET /catalog/levels
func (h *CatalogHandler) ListLevels(c *gin.Context) {
	levels, err := h.catalog.Levels(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

// ListRates GET /catalog/rates?level_id=...
func (h *CatalogHandler) ListRates(c *gin.Context) {
	var levelID *uuid.UUID
	if raw := c.Query("level_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "неверный level_id")
			return
		}
		levelID = &parsed
	}

	rates, err := h.catalog.Rates(c.Request.Context(), levelID)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

// ListSubjects GET /catalog/subjects
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.catalog.Subjects(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// ListServiceTypes GET /catalog/service-types
func (h *CatalogHandler) ListServiceTypes(c *gin.Context) {
	types, err := h.catalog.ServiceTypes(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_types": types})
}

// ListLanguages GET /catalog/languages
func (h *CatalogHandler) ListLanguages(c *gin.Context) {
	languages, err := h.catalog.Languages(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": languages})
}

// ListFeatures GET /catalog/features
func (h *CatalogHandler) ListFeatures(c *gin.Context) {
	features, err := h.catalog.Features(c.Request.Context())
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"features": features})
}

// CreateRate POST /admin/catalog/rates
func (h *CatalogHandler) CreateRate(c *gin.Context) {
	var req dto.CreateRateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	levelID, err := uuid.Parse(req.AcademicLevelID)
	if err != nil {
		common.RespondBadRequest(c, "неверный academic_level_id")
		return
	}

	rate, err := h.catalog.CreateRate(c.Request.Context(), levelID, req.DeadlineHours, req.PricePerPage)
	if err != nil {
		if errors.Is(err, repository.ErrRateExists) {
			common.RespondError(c, http.StatusConflict, "тариф для этого уровня и дедлайна уже существует")
			return
		}
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusCreated, rate)
}

// UpdateRate PUT /admin/catalog/rates/:id
func (h *CatalogHandler) UpdateRate(c *gin.Context) {
	rateID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateRateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rate, err := h.catalog.UpdateRate(c.Request.Context(), rateID, req.PricePerPage)
	if err != nil {
		if errors.Is(err, repository.ErrRateNotFound) {
			common.RespondNotFound(c, "тариф не найден")
			return
		}
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, rate)
}

// DeleteRate DELETE /admin/catalog/rates/:id
func (h *CatalogHandler) DeleteRate(c *gin.Context) {
	rateID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.catalog.DeleteRate(c.Request.Context(), rateID); err != nil {
		if errors.Is(err, repository.ErrRateNotFound) {
			common.RespondNotFound(c, "тариф не найден")
			return
		}
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "тариф удалён"})
}

// BulkAdjustRates POST /admin/catalog/rates/bulk-adjust
func (h *CatalogHandler) BulkAdjustRates(c *gin.Context) {
	var req dto.BulkAdjustRatesRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.catalog.BulkAdjustRates(c.Request.Context(), req.Percent, req.Flat)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
