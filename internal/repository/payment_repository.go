package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

var ErrNoCompletedPayment = errors.New("no completed payment found for this order")

// PaymentRepository выполняет расчёты по заказам. Каждый метод оплаты —
// одна транзакция на все затронутые строки: кошелёк, журнал операций,
// платёж, статус заказа и его журнал. Частичное применение невозможно.
type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, order_id, user_id, method, status, amount,
	external_transaction_id, metadata, created_at, completed_at`

// SettleWithWallet оплачивает заказ целиком с кошелька клиента.
// При нехватке средств не меняется ничего: ни баланс, ни платежи, ни статус.
func (r *PaymentRepository) SettleWithWallet(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := lockOrderForSettlement(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := debitTx(ctx, tx, order.ClientID, order.Price, "Оплата заказа с кошелька", &orderID); err != nil {
		return nil, err
	}

	payment, err := insertCompletedPaymentTx(ctx, tx, order, models.PaymentMethodWallet, nil, nil)
	if err != nil {
		return nil, err
	}

	if _, err := transitionOrderTx(ctx, tx, orderID, models.OrderStatusActive, &order.ClientID, nil); err != nil {
		return nil, err
	}

	return payment, tx.Commit()
}

// SettleWithExternal фиксирует оплату через внешний шлюз. Вызов шлюза
// считается уже подтверждённым синхронно; подтверждение вебхуком —
// будущее расширение со статусом pending.
func (r *PaymentRepository) SettleWithExternal(ctx context.Context, orderID uuid.UUID, externalTransactionID string, processedAt time.Time) (*models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := lockOrderForSettlement(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(models.ExternalMetadata{
		ExternalTransactionID: externalTransactionID,
		ProcessedAt:           processedAt,
	})

	payment, err := insertCompletedPaymentTx(ctx, tx, order, models.PaymentMethodExternal, &externalTransactionID, metadata)
	if err != nil {
		return nil, err
	}

	if _, err := transitionOrderTx(ctx, tx, orderID, models.OrderStatusActive, &order.ClientID, nil); err != nil {
		return nil, err
	}

	return payment, tx.Commit()
}

// SettleWithHybrid делит оплату между кошельком и внешним шлюзом:
// walletAmount списывается с кошелька, остаток числится за шлюзом.
// Если списание не прошло, платёж не создаётся и статус не меняется.
func (r *PaymentRepository) SettleWithHybrid(ctx context.Context, orderID uuid.UUID, walletAmount float64, externalTransactionID string) (*models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := lockOrderForSettlement(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if _, err := debitTx(ctx, tx, order.ClientID, walletAmount, "Частичная оплата заказа с кошелька", &orderID); err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(models.HybridMetadata{
		WalletAmount:   walletAmount,
		ExternalAmount: order.Price - walletAmount,
	})

	payment, err := insertCompletedPaymentTx(ctx, tx, order, models.PaymentMethodHybrid, &externalTransactionID, metadata)
	if err != nil {
		return nil, err
	}

	if _, err := transitionOrderTx(ctx, tx, orderID, models.OrderStatusActive, &order.ClientID, nil); err != nil {
		return nil, err
	}

	return payment, tx.Commit()
}

// CancelAndRefund возвращает стоимость заказа на кошелёк клиента и помечает
// последний завершённый платёж возвращённым. Возврат всегда идёт на кошелёк
// независимо от исходного способа оплаты. Статус заказа здесь не меняется —
// это делает менеджер жизненного цикла отдельным переходом.
func (r *PaymentRepository) CancelAndRefund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("payment repository: lock order: %w", err)
	}

	var payment models.Payment
	err = tx.GetContext(ctx, &payment, `
		SELECT `+paymentColumns+` FROM payments
		WHERE order_id = $1 AND status = 'completed'
		ORDER BY created_at DESC LIMIT 1
		FOR UPDATE
	`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoCompletedPayment
		}
		return nil, fmt.Errorf("payment repository: find completed payment: %w", err)
	}

	if _, err := creditTx(ctx, tx, order.ClientID, order.Price, "Возврат средств за отменённый заказ", &orderID); err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &payment, `
		UPDATE payments SET status = 'refunded' WHERE id = $1
		RETURNING `+paymentColumns+`
	`, payment.ID)
	if err != nil {
		return nil, fmt.Errorf("payment repository: mark refunded: %w", err)
	}

	return &payment, tx.Commit()
}

// ListByOrder возвращает все платежи заказа, свежие первыми. Позволяет
// вызывающей стороне проверить наличие завершённого платежа перед повтором
// расчёта: ключа идемпотентности у расчётов нет.
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, `
		SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC
	`, orderID)
	return payments, err
}

// lockOrderForSettlement блокирует строку заказа на время расчёта.
func lockOrderForSettlement(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("payment repository: lock order: %w", err)
	}
	return &order, nil
}

// insertCompletedPaymentTx создаёт платёж и сразу помечает его завершённым.
func insertCompletedPaymentTx(ctx context.Context, tx *sqlx.Tx, order *models.Order, method string, externalTransactionID *string, metadata json.RawMessage) (*models.Payment, error) {
	if metadata == nil {
		metadata = json.RawMessage(`{}`)
	}

	var payment models.Payment
	err := tx.GetContext(ctx, &payment, `
		INSERT INTO payments (order_id, user_id, method, status, amount, external_transaction_id, metadata, completed_at)
		VALUES ($1, $2, $3, 'completed', $4, $5, $6, NOW())
		RETURNING `+paymentColumns+`
	`, order.ID, order.ClientID, method, order.Price, externalTransactionID, []byte(metadata))
	if err != nil {
		return nil, fmt.Errorf("payment repository: insert payment: %w", err)
	}
	return &payment, nil
}
