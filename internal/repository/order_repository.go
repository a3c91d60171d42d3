package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = errors.New("order status transition is not allowed")
	ErrOrderNotOwnedByYou = errors.New("order belongs to another client")
)

const orderColumns = `id, client_id, writer_id, topic, instructions, academic_level_id,
	service_type_id, language_id, subject_id, deadline_hours, pages, words, price,
	features, status, created_at, updated_at`

// OrderRepository хранит заказы и журнал переходов их статусов.
type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create сохраняет новый заказ и первую строку журнала статусов.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (client_id, topic, instructions, academic_level_id, service_type_id,
			language_id, subject_id, deadline_hours, pages, words, price, features, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+orderColumns+`
	`, order.ClientID, order.Topic, order.Instructions, order.AcademicLevelID, order.ServiceTypeID,
		order.LanguageID, order.SubjectID, order.DeadlineHours, order.Pages, order.Words,
		order.Price, order.Features, order.Status)
	if err != nil {
		return fmt.Errorf("order repository: create: %w", err)
	}

	if err := insertStatusHistoryTx(ctx, tx, order.ID, nil, order.Status, &order.ClientID, nil); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID возвращает заказ.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: get by id: %w", err)
	}
	return &order, nil
}

// ListByClient возвращает заказы клиента, свежие первыми.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders
		WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	return orders, err
}

// ListByStatus возвращает заказы в указанном статусе (для персонала).
func (r *OrderRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, status, limit, offset)
	return orders, err
}

// TransitionStatus атомарно меняет статус заказа и дописывает одну строку
// журнала. Допустимость перехода повторно проверяется под блокировкой строки:
// проверка на уровне сервиса могла устареть к моменту записи.
func (r *OrderRepository) TransitionStatus(ctx context.Context, orderID uuid.UUID, newStatus string, actorID *uuid.UUID, notes *string) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := transitionOrderTx(ctx, tx, orderID, newStatus, actorID, notes)
	if err != nil {
		return nil, err
	}

	return order, tx.Commit()
}

// AssignWriter привязывает автора и переводит заказ в assigned одним действием.
func (r *OrderRepository) AssignWriter(ctx context.Context, orderID, writerID uuid.UUID, actorID *uuid.UUID) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET writer_id = $2 WHERE id = $1`, orderID, writerID); err != nil {
		return nil, fmt.Errorf("order repository: assign writer: %w", err)
	}

	order, err := transitionOrderTx(ctx, tx, orderID, models.OrderStatusAssigned, actorID, nil)
	if err != nil {
		return nil, err
	}

	return order, tx.Commit()
}

// UpdatePricing сохраняет новый снимок услуг и цену заказа. Единственный
// способ изменить цену после оформления — явные операции допродажи.
func (r *OrderRepository) UpdatePricing(ctx context.Context, orderID uuid.UUID, features models.FeatureSnapshots, price float64) (*models.Order, error) {
	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders SET features = $2, price = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns+`
	`, orderID, features, price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: update pricing: %w", err)
	}
	return &order, nil
}

// ListStatusHistory возвращает журнал переходов заказа в хронологическом порядке.
func (r *OrderRepository) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	err := r.db.SelectContext(ctx, &history, `
		SELECT id, order_id, previous_status, new_status, actor_id, notes, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY created_at ASC
	`, orderID)
	return history, err
}

// transitionOrderTx — единственное место, где меняется orders.status.
// Используется и менеджером жизненного цикла, и движком оплат (внутри
// транзакции списания средств).
func transitionOrderTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, newStatus string, actorID *uuid.UUID, notes *string) (*models.Order, error) {
	var current string
	err := tx.GetContext(ctx, &current, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("order repository: lock order: %w", err)
	}

	if !models.CanTransition(current, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, newStatus)
	}

	var order models.Order
	err = tx.GetContext(ctx, &order, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING `+orderColumns+`
	`, orderID, newStatus)
	if err != nil {
		return nil, fmt.Errorf("order repository: update status: %w", err)
	}

	if err := insertStatusHistoryTx(ctx, tx, orderID, &current, newStatus, actorID, notes); err != nil {
		return nil, err
	}

	return &order, nil
}

// insertStatusHistoryTx дописывает строку журнала статусов.
func insertStatusHistoryTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, previous *string, newStatus string, actorID *uuid.UUID, notes *string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, previous_status, new_status, actor_id, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, orderID, previous, newStatus, actorID, notes)
	if err != nil {
		return fmt.Errorf("order repository: insert status history: %w", err)
	}
	return nil
}
