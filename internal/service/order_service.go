package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/logger"
	"github.com/vkuznetsov/paperdesk-backend/internal/metrics"
	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

// WordsPerPage — принятая норма объёма страницы.
const WordsPerPage = 275

// OrderRepository описывает взаимодействие сервиса с хранилищем заказов.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error)
	TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actorID *uuid.UUID, notes *string) (*models.Order, error)
	AssignWriter(ctx context.Context, orderID, writerID uuid.UUID, actorID *uuid.UUID) (*models.Order, error)
	UpdatePricing(ctx context.Context, orderID uuid.UUID, features models.FeatureSnapshots, price float64) (*models.Order, error)
	ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

// OrderPricing — контракт с движком цен.
type OrderPricing interface {
	Estimate(ctx context.Context, input EstimateInput) (*PriceEstimate, error)
}

// OrderCoupons — контракт с сервисом промокодов.
type OrderCoupons interface {
	Apply(ctx context.Context, code string, userID uuid.UUID, orderID *uuid.UUID, total float64) (float64, *models.Coupon, error)
}

// OrderRefunder возвращает деньги за отменённый заказ.
type OrderRefunder interface {
	Refund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
}

// OrderEventPublisher публикует события жизненного цикла заказа.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, orderID, clientID uuid.UUID, price float64) error
	PublishOrderStatusChanged(ctx context.Context, orderID, clientID uuid.UUID, fromStatus, toStatus string) error
	PublishOrderCancelled(ctx context.Context, orderID, clientID uuid.UUID, refunded bool) error
}

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// PlaceOrderInput — параметры оформления заказа.
type PlaceOrderInput struct {
	Topic           string
	Instructions    string
	AcademicLevelID *uuid.UUID
	ServiceTypeID   *uuid.UUID
	LanguageID      *uuid.UUID
	SubjectID       *uuid.UUID
	DeadlineHours   int
	Pages           int
	Features        []FeatureSelection
	CouponCode      string
}

// OrderService управляет жизненным циклом заказа. Статус заказа меняется
// только через него и через движок оплат; оба пути проходят проверку
// машины состояний под блокировкой строки.
type OrderService struct {
	repo    OrderRepository
	pricing OrderPricing
	coupons OrderCoupons
	refunds OrderRefunder
	events  OrderEventPublisher
	hub     WSNotifier
}

func NewOrderService(repo OrderRepository, pricing OrderPricing, coupons OrderCoupons, refunds OrderRefunder, events OrderEventPublisher, hub WSNotifier) *OrderService {
	return &OrderService{
		repo:    repo,
		pricing: pricing,
		coupons: coupons,
		refunds: refunds,
		events:  events,
		hub:     hub,
	}
}

// Place оформляет заказ: считает цену по каталогу, применяет промокод и
// создаёт заказ в статусе ожидания оплаты.
func (s *OrderService) Place(ctx context.Context, clientID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	if input.Topic == "" {
		return nil, fmt.Errorf("тема работы обязательна")
	}
	if input.Pages < 1 {
		return nil, fmt.Errorf("количество страниц должно быть не меньше одной")
	}
	if input.DeadlineHours <= 0 {
		return nil, fmt.Errorf("срок выполнения должен быть положительным")
	}

	estimate, err := s.pricing.Estimate(ctx, EstimateInput{
		AcademicLevelID: input.AcademicLevelID,
		ServiceTypeID:   input.ServiceTypeID,
		LanguageID:      input.LanguageID,
		DeadlineHours:   input.DeadlineHours,
		Pages:           input.Pages,
		Features:        input.Features,
	})
	if err != nil {
		return nil, err
	}

	price := estimate.Total
	if input.CouponCode != "" {
		// Использование фиксируется до создания заказа, ссылка на заказ
		// в записи использования остаётся пустой.
		discounted, _, err := s.coupons.Apply(ctx, input.CouponCode, clientID, nil, price)
		if err != nil {
			return nil, err
		}
		price = discounted
	}

	order := &models.Order{
		ClientID:        clientID,
		Topic:           input.Topic,
		Instructions:    input.Instructions,
		AcademicLevelID: input.AcademicLevelID,
		ServiceTypeID:   input.ServiceTypeID,
		LanguageID:      input.LanguageID,
		SubjectID:       input.SubjectID,
		DeadlineHours:   input.DeadlineHours,
		Pages:           input.Pages,
		Words:           input.Pages * WordsPerPage,
		Price:           price,
		Features:        estimate.Features,
		Status:          models.OrderStatusWaitingForPayment,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	metrics.OrdersPlacedTotal.Inc()
	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, order.ID, clientID, order.Price); err != nil {
			logger.Log.WithError(err).WithField("order_id", order.ID).Error("не удалось опубликовать событие создания заказа")
		}
	}

	return order, nil
}

// Get возвращает заказ. Клиент видит только свои заказы, персонал — любые.
func (s *OrderService) Get(ctx context.Context, orderID, actorID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isStaff(role) && order.ClientID != actorID {
		return nil, repository.ErrOrderNotOwnedByYou
	}
	return order, nil
}

// ListMy возвращает заказы клиента.
func (s *OrderService) ListMy(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Order, error) {
	limit, offset = clampPagination(limit, offset)
	return s.repo.ListByClient(ctx, clientID, limit, offset)
}

// ListByStatus возвращает заказы в статусе. Только для персонала.
func (s *OrderService) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	if _, ok := models.ValidOrderStatuses[status]; !ok {
		return nil, fmt.Errorf("неизвестный статус заказа: %s", status)
	}
	limit, offset = clampPagination(limit, offset)
	return s.repo.ListByStatus(ctx, status, limit, offset)
}

// Transition переводит заказ в новый статус. Допустимость перехода
// проверяется машиной состояний; повторная проверка выполняется
// репозиторием под блокировкой строки.
func (s *OrderService) Transition(ctx context.Context, orderID uuid.UUID, newStatus string, actorID uuid.UUID, notes *string) (*models.Order, error) {
	if _, ok := models.ValidOrderStatuses[newStatus]; !ok {
		return nil, fmt.Errorf("неизвестный статус заказа: %s", newStatus)
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(current.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, current.Status, newStatus)
	}

	order, err := s.repo.TransitionStatus(ctx, orderID, newStatus, &actorID, notes)
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, order, current.Status, newStatus)
	return order, nil
}

// AssignWriter назначает исполнителя на заказ.
func (s *OrderService) AssignWriter(ctx context.Context, orderID, writerID, actorID uuid.UUID) (*models.Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(current.Status, models.OrderStatusAssigned) {
		return nil, fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, current.Status, models.OrderStatusAssigned)
	}

	order, err := s.repo.AssignWriter(ctx, orderID, writerID, &actorID)
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(ctx, order, current.Status, models.OrderStatusAssigned)
	return order, nil
}

// Cancel отменяет заказ и возвращает деньги на кошелёк, если заказ был
// оплачен. Клиент отменяет только свои заказы.
func (s *OrderService) Cancel(ctx context.Context, orderID, actorID uuid.UUID, role string, notes *string) (*models.Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isStaff(role) && current.ClientID != actorID {
		return nil, repository.ErrOrderNotOwnedByYou
	}
	if current.IsTerminal() {
		return nil, fmt.Errorf("%w: %s -> %s", repository.ErrInvalidTransition, current.Status, models.OrderStatusCancelled)
	}

	payment, err := s.refunds.Refund(ctx, orderID)
	if err != nil {
		return nil, err
	}
	refunded := payment != nil

	order, err := s.repo.TransitionStatus(ctx, orderID, models.OrderStatusCancelled, &actorID, notes)
	if err != nil {
		return nil, err
	}

	metrics.OrdersCancelledTotal.Inc()
	metrics.OrderTransitionsTotal.WithLabelValues(current.Status, models.OrderStatusCancelled).Inc()
	if s.events != nil {
		if err := s.events.PublishOrderCancelled(ctx, orderID, order.ClientID, refunded); err != nil {
			logger.Log.WithError(err).WithField("order_id", orderID).Error("не удалось опубликовать событие отмены заказа")
		}
	}
	s.broadcast(order.ClientID, "order_cancelled", order)

	return order, nil
}

// AddServices докупает дополнительные услуги к неотменённому заказу.
// Доплата считается как разница между оценкой заказа с новыми услугами и
// без них: изменение каталожных ставок после оформления не влияет на уже
// оплаченную часть цены.
func (s *OrderService) AddServices(ctx context.Context, orderID, clientID uuid.UUID, selections []FeatureSelection) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, repository.ErrOrderNotOwnedByYou
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("нельзя докупить услуги к завершённому или отменённому заказу")
	}

	existing := make([]FeatureSelection, 0, len(order.Features))
	for _, f := range order.Features {
		existing = append(existing, FeatureSelection{Name: f.Name, Type: f.Type, Amount: f.Amount})
	}

	base := EstimateInput{
		AcademicLevelID: order.AcademicLevelID,
		ServiceTypeID:   order.ServiceTypeID,
		LanguageID:      order.LanguageID,
		DeadlineHours:   order.DeadlineHours,
		Pages:           order.Pages,
		Features:        existing,
	}
	baseEstimate, err := s.pricing.Estimate(ctx, base)
	if err != nil {
		return nil, err
	}

	combined := base
	combined.Features = append(append([]FeatureSelection{}, existing...), selections...)
	combinedEstimate, err := s.pricing.Estimate(ctx, combined)
	if err != nil {
		return nil, err
	}

	delta := round2(combinedEstimate.Total - baseEstimate.Total)
	if delta <= 0 {
		return nil, fmt.Errorf("не выбрано ни одной новой услуги")
	}

	return s.repo.UpdatePricing(ctx, orderID, combinedEstimate.Features, round2(order.Price+delta))
}

// History возвращает историю смены статусов заказа.
func (s *OrderService) History(ctx context.Context, orderID, actorID uuid.UUID, role string) ([]models.OrderStatusHistory, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isStaff(role) && order.ClientID != actorID {
		return nil, repository.ErrOrderNotOwnedByYou
	}
	return s.repo.ListStatusHistory(ctx, orderID)
}

func (s *OrderService) notifyStatusChange(ctx context.Context, order *models.Order, fromStatus, toStatus string) {
	metrics.OrderTransitionsTotal.WithLabelValues(fromStatus, toStatus).Inc()
	if s.events != nil {
		if err := s.events.PublishOrderStatusChanged(ctx, order.ID, order.ClientID, fromStatus, toStatus); err != nil {
			logger.Log.WithError(err).WithField("order_id", order.ID).Error("не удалось опубликовать событие смены статуса")
		}
	}
	s.broadcast(order.ClientID, "order_status_changed", order)
}

func (s *OrderService) broadcast(userID uuid.UUID, event string, data interface{}) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToUser(userID, event, data); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.WithError(err).WithField("user_id", userID).Debug("не удалось отправить WebSocket уведомление")
	}
}

func isStaff(role string) bool {
	return role == models.RoleAdmin || role == models.RoleWriter
}

func clampPagination(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
