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
	ErrInquiryNotFound  = errors.New("inquiry not found")
	ErrInquiryConverted = errors.New("inquiry is already converted")
)

const inquiryColumns = `id, client_id, topic, instructions, academic_level_id, service_type_id,
	language_id, subject_id, deadline_hours, pages, estimated_price, status,
	converted_to_order_id, converted_at, created_at, updated_at`

// InquiryRepository хранит бесплатные заявки и выполняет их конвертацию в заказы.
type InquiryRepository struct {
	db *sqlx.DB
}

func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create сохраняет новую заявку.
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	err := r.db.GetContext(ctx, inquiry, `
		INSERT INTO inquiries (client_id, topic, instructions, academic_level_id, service_type_id,
			language_id, subject_id, deadline_hours, pages, estimated_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+inquiryColumns+`
	`, inquiry.ClientID, inquiry.Topic, inquiry.Instructions, inquiry.AcademicLevelID,
		inquiry.ServiceTypeID, inquiry.LanguageID, inquiry.SubjectID, inquiry.DeadlineHours,
		inquiry.Pages, inquiry.EstimatedPrice, inquiry.Status)
	if err != nil {
		return fmt.Errorf("inquiry repository: create: %w", err)
	}
	return nil
}

// GetByID возвращает заявку.
func (r *InquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := r.db.GetContext(ctx, &inquiry, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("inquiry repository: get by id: %w", err)
	}
	return &inquiry, nil
}

// ListByClient возвращает заявки клиента, свежие первыми.
func (r *InquiryRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	err := r.db.SelectContext(ctx, &inquiries, `
		SELECT `+inquiryColumns+` FROM inquiries
		WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	return inquiries, err
}

// UpdateStatus переводит заявку в submitted (из draft).
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := r.db.GetContext(ctx, &inquiry, `
		UPDATE inquiries SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status != 'converted'
		RETURNING `+inquiryColumns+`
	`, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInquiryConverted
		}
		return nil, fmt.Errorf("inquiry repository: update status: %w", err)
	}
	return &inquiry, nil
}

// UpdateEstimate сохраняет расчётную цену заявки.
func (r *InquiryRepository) UpdateEstimate(ctx context.Context, id uuid.UUID, price float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE inquiries SET estimated_price = $2, updated_at = NOW() WHERE id = $1
	`, id, price)
	return err
}

// ConvertToOrder создаёт заказ из заявки и помечает заявку конвертированной
// одной транзакцией. Повторная конвертация невозможна: строка заявки
// блокируется и статус перепроверяется под блокировкой.
func (r *InquiryRepository) ConvertToOrder(ctx context.Context, inquiryID uuid.UUID, actorID uuid.UUID) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var inquiry models.Inquiry
	err = tx.GetContext(ctx, &inquiry, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1 FOR UPDATE`, inquiryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("inquiry repository: lock inquiry: %w", err)
	}

	if inquiry.Status == models.InquiryStatusConverted {
		return nil, ErrInquiryConverted
	}

	// Неоценённая заявка конвертируется в бесплатный заказ.
	price := 0.0
	if inquiry.EstimatedPrice != nil {
		price = *inquiry.EstimatedPrice
	}

	var order models.Order
	err = tx.GetContext(ctx, &order, `
		INSERT INTO orders (client_id, topic, instructions, academic_level_id, service_type_id,
			language_id, subject_id, deadline_hours, pages, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'waiting_for_payment')
		RETURNING `+orderColumns+`
	`, inquiry.ClientID, inquiry.Topic, inquiry.Instructions, inquiry.AcademicLevelID,
		inquiry.ServiceTypeID, inquiry.LanguageID, inquiry.SubjectID, inquiry.DeadlineHours,
		inquiry.Pages, price)
	if err != nil {
		return nil, fmt.Errorf("inquiry repository: create order: %w", err)
	}

	if err := insertStatusHistoryTx(ctx, tx, order.ID, nil, order.Status, &actorID, nil); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inquiries SET status = 'converted', converted_to_order_id = $2, converted_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, inquiryID, order.ID)
	if err != nil {
		return nil, fmt.Errorf("inquiry repository: mark converted: %w", err)
	}

	return &order, tx.Commit()
}
