package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/logger"
	"github.com/vkuznetsov/paperdesk-backend/internal/metrics"
	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Inquiry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Inquiry, error)
	UpdateEstimate(ctx context.Context, id uuid.UUID, price float64) error
	ConvertToOrder(ctx context.Context, inquiryID uuid.UUID, actorID uuid.UUID) (*models.Order, error)
}

// CreateInquiryInput — параметры заявки; совпадают с атрибутами заказа,
// но заявка бесплатна и ни к чему не обязывает.
type CreateInquiryInput struct {
	Topic           string
	Instructions    string
	AcademicLevelID *uuid.UUID
	ServiceTypeID   *uuid.UUID
	LanguageID      *uuid.UUID
	SubjectID       *uuid.UUID
	DeadlineHours   int
	Pages           int
}

// InquiryService управляет заявками и их конвертацией в заказы.
type InquiryService struct {
	repo    InquiryRepository
	pricing OrderPricing
	events  OrderEventPublisher
}

func NewInquiryService(repo InquiryRepository, pricing OrderPricing, events OrderEventPublisher) *InquiryService {
	return &InquiryService{repo: repo, pricing: pricing, events: events}
}

// Create создаёт заявку и сразу считает предварительную цену.
// Неудача расчёта не мешает созданию: оценка остаётся пустой.
func (s *InquiryService) Create(ctx context.Context, clientID uuid.UUID, input CreateInquiryInput) (*models.Inquiry, error) {
	if input.Topic == "" {
		return nil, fmt.Errorf("тема работы обязательна")
	}
	if input.Pages < 1 {
		return nil, fmt.Errorf("количество страниц должно быть не меньше одной")
	}

	inquiry := &models.Inquiry{
		ClientID:        clientID,
		Topic:           input.Topic,
		Instructions:    input.Instructions,
		AcademicLevelID: input.AcademicLevelID,
		ServiceTypeID:   input.ServiceTypeID,
		LanguageID:      input.LanguageID,
		SubjectID:       input.SubjectID,
		DeadlineHours:   input.DeadlineHours,
		Pages:           input.Pages,
		Status:          models.InquiryStatusDraft,
	}

	estimate, err := s.pricing.Estimate(ctx, EstimateInput{
		AcademicLevelID: input.AcademicLevelID,
		ServiceTypeID:   input.ServiceTypeID,
		LanguageID:      input.LanguageID,
		DeadlineHours:   input.DeadlineHours,
		Pages:           input.Pages,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("не удалось рассчитать предварительную цену заявки")
	} else {
		inquiry.EstimatedPrice = &estimate.Total
	}

	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// Get возвращает заявку. Клиент видит только свои заявки.
func (s *InquiryService) Get(ctx context.Context, inquiryID, actorID uuid.UUID, role string) (*models.Inquiry, error) {
	inquiry, err := s.repo.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if !isStaff(role) && inquiry.ClientID != actorID {
		return nil, repository.ErrOrderNotOwnedByYou
	}
	return inquiry, nil
}

// ListMy возвращает заявки клиента.
func (s *InquiryService) ListMy(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Inquiry, error) {
	limit, offset = clampPagination(limit, offset)
	return s.repo.ListByClient(ctx, clientID, limit, offset)
}

// Submit переводит черновик заявки в отправленную.
func (s *InquiryService) Submit(ctx context.Context, inquiryID, actorID uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.repo.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.ClientID != actorID {
		return nil, repository.ErrOrderNotOwnedByYou
	}
	if inquiry.Status != models.InquiryStatusDraft {
		return nil, fmt.Errorf("отправить можно только черновик заявки")
	}
	return s.repo.UpdateStatus(ctx, inquiryID, models.InquiryStatusSubmitted)
}

// UpdateEstimate выставляет заявке цену вручную. Только для персонала.
func (s *InquiryService) UpdateEstimate(ctx context.Context, inquiryID uuid.UUID, price float64) (*models.Inquiry, error) {
	if price < 0 {
		return nil, fmt.Errorf("цена не может быть отрицательной")
	}
	if err := s.repo.UpdateEstimate(ctx, inquiryID, price); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, inquiryID)
}

// Convert превращает заявку в заказ в статусе ожидания оплаты. Заявка
// конвертируется ровно один раз; повторная попытка получает
// ErrInquiryConverted.
func (s *InquiryService) Convert(ctx context.Context, inquiryID, actorID uuid.UUID, role string) (*models.Order, error) {
	inquiry, err := s.repo.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if !isStaff(role) && inquiry.ClientID != actorID {
		return nil, repository.ErrOrderNotOwnedByYou
	}

	order, err := s.repo.ConvertToOrder(ctx, inquiryID, actorID)
	if err != nil {
		return nil, err
	}

	metrics.InquiriesConvertedTotal.Inc()
	metrics.OrdersPlacedTotal.Inc()
	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, order.ID, order.ClientID, order.Price); err != nil {
			logger.Log.WithError(err).WithField("order_id", order.ID).Error("не удалось опубликовать событие создания заказа")
		}
	}
	return order, nil
}
