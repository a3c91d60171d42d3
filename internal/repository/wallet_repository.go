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

var ErrInsufficientFunds = errors.New("insufficient funds")

// InsufficientFundsError несёт требуемую и доступную суммы, чтобы вызывающая
// сторона могла объяснить отказ пользователю. Совместима с
// errors.Is(err, ErrInsufficientFunds).
type InsufficientFundsError struct {
	Required  float64
	Available float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %.2f, available %.2f", e.Required, e.Available)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// WalletRepository владеет кошельком как агрегатом: кэшированный баланс и
// журнал операций меняются только вместе, внутри одной транзакции. Прямое
// выставление баланса снаружи невозможно — только Credit и Debit.
type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetWallet возвращает кошелёк пользователя, создаёт если не существует.
func (r *WalletRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, balance, updated_at
	`
	if err := r.db.GetContext(ctx, &wallet, query, userID); err != nil {
		return nil, fmt.Errorf("wallet repository: get wallet: %w", err)
	}
	return &wallet, nil
}

// HasSufficientFunds проверяет, хватает ли на кошельке средств на сумму.
// Чистое чтение без блокировки: окончательная проверка выполняется
// в транзакции списания.
func (r *WalletRepository) HasSufficientFunds(ctx context.Context, userID uuid.UUID, amount float64) (bool, error) {
	wallet, err := r.GetWallet(ctx, userID)
	if err != nil {
		return false, err
	}
	return wallet.Balance >= amount, nil
}

// Credit пополняет кошелёк и дописывает завершённую операцию в журнал.
func (r *WalletRepository) Credit(ctx context.Context, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	transaction, err := creditTx(ctx, tx, userID, amount, description, orderID)
	if err != nil {
		return nil, err
	}

	return transaction, tx.Commit()
}

// Debit списывает средства. Проверка достаточности и уменьшение баланса
// выполняются под блокировкой строки: два конкурентных списания не могут
// оба пройти проверку и совместно увести баланс в минус.
func (r *WalletRepository) Debit(ctx context.Context, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	transaction, err := debitTx(ctx, tx, userID, amount, description, orderID)
	if err != nil {
		return nil, err
	}

	return transaction, tx.Commit()
}

// ListTransactions возвращает журнал операций пользователя.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	var transactions []models.WalletTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, user_id, order_id, type, amount, status, description, created_at, completed_at
		FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return transactions, err
}

// creditTx выполняет пополнение внутри уже открытой транзакции.
// Используется также движком оплат при возвратах и обмене баллов.
func creditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2, updated_at = NOW()
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: credit update balance: %w", err)
	}

	var transaction models.WalletTransaction
	err = tx.GetContext(ctx, &transaction, `
		INSERT INTO wallet_transactions (user_id, order_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, 'credit', $3, 'completed', $4, NOW())
		RETURNING id, user_id, order_id, type, amount, status, description, created_at, completed_at
	`, userID, orderID, amount, description)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: credit create transaction: %w", err)
	}

	return &transaction, nil
}

// debitTx выполняет списание внутри уже открытой транзакции.
func debitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error) {
	var wallet models.Wallet
	err := tx.GetContext(ctx, &wallet, `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &InsufficientFundsError{Required: amount, Available: 0}
		}
		return nil, fmt.Errorf("wallet repository: debit lock wallet: %w", err)
	}
	if wallet.Balance < amount {
		return nil, &InsufficientFundsError{Required: amount, Available: wallet.Balance}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: debit update balance: %w", err)
	}

	var transaction models.WalletTransaction
	err = tx.GetContext(ctx, &transaction, `
		INSERT INTO wallet_transactions (user_id, order_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, 'debit', $3, 'completed', $4, NOW())
		RETURNING id, user_id, order_id, type, amount, status, description, created_at, completed_at
	`, userID, orderID, amount, description)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: debit create transaction: %w", err)
	}

	return &transaction, nil
}
