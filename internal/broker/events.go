package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Типы доменных событий, публикуемых в Kafka.
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderPaid          = "OrderPaid"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderCancelled     = "OrderCancelled"
)

// BaseEvent — общие поля каждого события.
type BaseEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// OrderPlacedEvent публикуется при создании заказа.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID  uuid.UUID `json:"order_id"`
	ClientID uuid.UUID `json:"client_id"`
	Price    float64   `json:"price"`
}

// OrderPaidEvent публикуется после успешного проведения оплаты.
type OrderPaidEvent struct {
	BaseEvent
	OrderID  uuid.UUID `json:"order_id"`
	ClientID uuid.UUID `json:"client_id"`
	Method   string    `json:"method"`
	Amount   float64   `json:"amount"`
}

// OrderStatusChangedEvent публикуется при каждой смене статуса заказа.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    uuid.UUID `json:"order_id"`
	ClientID   uuid.UUID `json:"client_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
}

// OrderCancelledEvent публикуется при отмене заказа.
type OrderCancelledEvent struct {
	BaseEvent
	OrderID  uuid.UUID `json:"order_id"`
	ClientID uuid.UUID `json:"client_id"`
	Refunded bool      `json:"refunded"`
}

// EventPublisher — типизированная обёртка над продюсером.
type EventPublisher struct {
	producer *Producer
}

func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, orderID, clientID uuid.UUID, price float64) error {
	return ep.producer.PublishEvent(ctx, "order-"+orderID.String(), &OrderPlacedEvent{
		BaseEvent: newBaseEvent(EventTypeOrderPlaced),
		OrderID:   orderID,
		ClientID:  clientID,
		Price:     price,
	})
}

func (ep *EventPublisher) PublishOrderPaid(ctx context.Context, orderID, clientID uuid.UUID, method string, amount float64) error {
	return ep.producer.PublishEvent(ctx, "order-"+orderID.String(), &OrderPaidEvent{
		BaseEvent: newBaseEvent(EventTypeOrderPaid),
		OrderID:   orderID,
		ClientID:  clientID,
		Method:    method,
		Amount:    amount,
	})
}

func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, orderID, clientID uuid.UUID, fromStatus, toStatus string) error {
	return ep.producer.PublishEvent(ctx, "order-"+orderID.String(), &OrderStatusChangedEvent{
		BaseEvent:  newBaseEvent(EventTypeOrderStatusChanged),
		OrderID:    orderID,
		ClientID:   clientID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
	})
}

func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, orderID, clientID uuid.UUID, refunded bool) error {
	return ep.producer.PublishEvent(ctx, "order-"+orderID.String(), &OrderCancelledEvent{
		BaseEvent: newBaseEvent(EventTypeOrderCancelled),
		OrderID:   orderID,
		ClientID:  clientID,
		Refunded:  refunded,
	})
}
