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

// OrderHandler предоставляет HTTP слой жизненного цикла заказа.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler создаёт хэндлер.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Place обрабатывает POST /orders.
func (h *OrderHandler) Place(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.PlaceOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateTopic(req.Topic); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateInstructions(req.Instructions); err != nil {
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

	input, err := placeInputFromRequest(req)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Place(c.Request.Context(), userID, *input)
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

	c.JSON(http.StatusCreated, order)
}

// Get обрабатывает GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListMy обрабатывает GET /orders/my.
func (h *OrderHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListMy(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListByStatus обрабатывает GET /staff/orders?status=...
func (h *OrderHandler) ListByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		common.RespondBadRequest(c, "параметр status обязателен")
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Transition обрабатывает PUT /staff/orders/:id/status.
func (h *OrderHandler) Transition(c *gin.Context) {
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

	var req dto.TransitionOrderRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Transition(c.Request.Context(), orderID, req.Status, userID, req.Notes)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// AssignWriter обрабатывает PUT /staff/orders/:id/writer.
func (h *OrderHandler) AssignWriter(c *gin.Context) {
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

	var req dto.AssignWriterRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	writerID, err := dto.ParseOptionalUUID(&req.WriterID)
	if err != nil || writerID == nil {
		common.RespondBadRequest(c, "неверный writer_id")
		return
	}

	order, err := h.orders.AssignWriter(c.Request.Context(), orderID, *writerID, userID)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Cancel обрабатывает POST /orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	// Тело необязательно: отмена без причины тоже валидна.
	var req dto.CancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.orders.Cancel(c.Request.Context(), orderID, userID, role, req.Reason)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// AddServices обрабатывает POST /orders/:id/services.
func (h *OrderHandler) AddServices(c *gin.Context) {
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

	var req dto.AddServicesRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	selections, err := dto.ToSelections(req.Features)
	if err != nil {
		common.RespondBadRequest(c, "features содержит некорректный UUID")
		return
	}

	order, err := h.orders.AddServices(c.Request.Context(), orderID, userID, selections)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// History обрабатывает GET /orders/:id/history.
func (h *OrderHandler) History(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	history, err := h.orders.History(c.Request.Context(), orderID, userID, role)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// respondOrderError отображает типовые ошибки заказов в HTTP статусы.
func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		common.RespondNotFound(c, "заказ не найден")
	case errors.Is(err, repository.ErrOrderNotOwnedByYou):
		common.RespondForbidden(c, "заказ принадлежит другому клиенту")
	case errors.Is(err, repository.ErrInvalidTransition):
		common.RespondError(c, http.StatusConflict, err.Error())
	default:
		common.RespondBadRequest(c, err.Error())
	}
}

// placeInputFromRequest разбирает идентификаторы каталога из запроса.
func placeInputFromRequest(req dto.PlaceOrderRequest) (*service.PlaceOrderInput, error) {
	levelID, err := dto.ParseOptionalUUID(req.AcademicLevelID)
	if err != nil {
		return nil, errors.New("неверный academic_level_id")
	}
	serviceTypeID, err := dto.ParseOptionalUUID(req.ServiceTypeID)
	if err != nil {
		return nil, errors.New("неверный service_type_id")
	}
	languageID, err := dto.ParseOptionalUUID(req.LanguageID)
	if err != nil {
		return nil, errors.New("неверный language_id")
	}
	subjectID, err := dto.ParseOptionalUUID(req.SubjectID)
	if err != nil {
		return nil, errors.New("неверный subject_id")
	}
	features, err := dto.ToSelections(req.Features)
	if err != nil {
		return nil, errors.New("features содержит некорректный UUID")
	}

	return &service.PlaceOrderInput{
		Topic:           req.Topic,
		Instructions:    req.Instructions,
		AcademicLevelID: levelID,
		ServiceTypeID:   serviceTypeID,
		LanguageID:      languageID,
		SubjectID:       subjectID,
		DeadlineHours:   req.DeadlineHours,
		Pages:           req.Pages,
		Features:        features,
		CouponCode:      req.CouponCode,
	}, nil
}
