package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkuznetsov/paperdesk-backend/internal/dto"
	"github.com/vkuznetsov/paperdesk-backend/internal/http/handlers/common"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
	"github.com/vkuznetsov/paperdesk-backend/internal/service"
	"github.com/vkuznetsov/paperdesk-backend/internal/validation"
)

// InquiryHandler предоставляет HTTP слой заявок.
type InquiryHandler struct {
	inquiries *service.InquiryService
}

func NewInquiryHandler(inquiries *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

// Create обрабатывает POST /inquiries.
func (h *InquiryHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateInquiryRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateTopic(req.Topic); err != nil {
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
	subjectID, err := dto.ParseOptionalUUID(req.SubjectID)
	if err != nil {
		common.RespondBadRequest(c, "неверный subject_id")
		return
	}

	inquiry, err := h.inquiries.Create(c.Request.Context(), userID, service.CreateInquiryInput{
		Topic:           req.Topic,
		Instructions:    req.Instructions,
		AcademicLevelID: levelID,
		ServiceTypeID:   serviceTypeID,
		LanguageID:      languageID,
		SubjectID:       subjectID,
		DeadlineHours:   req.DeadlineHours,
		Pages:           req.Pages,
	})
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusCreated, inquiry)
}

// Get обрабатывает GET /inquiries/:id.
func (h *InquiryHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	inquiryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	inquiry, err := h.inquiries.Get(c.Request.Context(), inquiryID, userID, role)
	if err != nil {
		respondInquiryError(c, err)
		return
	}

	c.JSON(http.StatusOK, inquiry)
}

// ListMy обрабатывает GET /inquiries/my.
func (h *InquiryHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	inquiries, err := h.inquiries.ListMy(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries})
}

// Submit обрабатывает POST /inquiries/:id/submit.
func (h *InquiryHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	inquiryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	inquiry, err := h.inquiries.Submit(c.Request.Context(), inquiryID, userID)
	if err != nil {
		respondInquiryError(c, err)
		return
	}

	c.JSON(http.StatusOK, inquiry)
}

// UpdateEstimate обрабатывает PUT /staff/inquiries/:id/estimate.
func (h *InquiryHandler) UpdateEstimate(c *gin.Context) {
	inquiryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.InquiryEstimateRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	inquiry, err := h.inquiries.UpdateEstimate(c.Request.Context(), inquiryID, req.Price)
	if err != nil {
		respondInquiryError(c, err)
		return
	}

	c.JSON(http.StatusOK, inquiry)
}

// Convert обрабатывает POST /inquiries/:id/convert.
func (h *InquiryHandler) Convert(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	inquiryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.inquiries.Convert(c.Request.Context(), inquiryID, userID, role)
	if err != nil {
		respondInquiryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// respondInquiryError отображает типовые ошибки заявок в HTTP статусы.
func respondInquiryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInquiryNotFound):
		common.RespondNotFound(c, "заявка не найдена")
	case errors.Is(err, repository.ErrInquiryConverted):
		common.RespondError(c, http.StatusConflict, "заявка уже конвертирована в заказ")
	default:
		common.RespondBadRequest(c, err.Error())
	}
}
