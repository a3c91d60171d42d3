package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository/common"
)

var ErrInsufficientPoints = errors.New("insufficient reward points")

// RewardRepository хранит бонусные счета. Остаток баллов, как и баланс
// кошелька, никогда не уходит в минус: проверка и списание выполняются
// под блокировкой строки.
type RewardRepository struct {
	db *sqlx.DB
}

func NewRewardRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// GetAccount возвращает бонусный счёт пользователя, создаёт если не существует.
func (r *RewardRepository) GetAccount(ctx context.Context, userID uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	err := r.db.GetContext(ctx, &reward, `
		INSERT INTO rewards (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, points_earned, points_redeemed, updated_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("reward repository: get account: %w", err)
	}
	return &reward, nil
}

// Earn начисляет баллы и дописывает операцию в журнал.
func (r *RewardRepository) Earn(ctx context.Context, userID uuid.UUID, points int, description string, orderID *uuid.UUID) (*models.RewardTransaction, error) {
	var transaction models.RewardTransaction
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rewards (user_id, points_earned) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET points_earned = rewards.points_earned + $2, updated_at = NOW()
		`, userID, points)
		if err != nil {
			return fmt.Errorf("reward repository: earn update account: %w", err)
		}

		err = tx.GetContext(ctx, &transaction, `
			INSERT INTO reward_transactions (user_id, order_id, type, points, description)
			VALUES ($1, $2, 'earn', $3, $4)
			RETURNING id, user_id, order_id, type, points, description, created_at
		`, userID, orderID, points, description)
		if err != nil {
			return fmt.Errorf("reward repository: earn create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

// RedeemToWallet обменивает баллы на пополнение кошелька. Списание баллов
// и зачисление денег выполняются в одной транзакции: баллы не могут пропасть
// без зачисления, деньги не могут появиться без списания.
func (r *RewardRepository) RedeemToWallet(ctx context.Context, userID uuid.UUID, points int, creditAmount float64) (*models.RewardTransaction, *models.WalletTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var reward models.Reward
	err = tx.GetContext(ctx, &reward, `
		SELECT user_id, points_earned, points_redeemed, updated_at FROM rewards WHERE user_id = $1 FOR UPDATE
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInsufficientPoints
		}
		return nil, nil, fmt.Errorf("reward repository: lock account: %w", err)
	}
	if reward.Balance() < points {
		return nil, nil, ErrInsufficientPoints
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE rewards SET points_redeemed = points_redeemed + $2, updated_at = NOW() WHERE user_id = $1
	`, userID, points)
	if err != nil {
		return nil, nil, fmt.Errorf("reward repository: redeem update account: %w", err)
	}

	var transaction models.RewardTransaction
	err = tx.GetContext(ctx, &transaction, `
		INSERT INTO reward_transactions (user_id, type, points, description)
		VALUES ($1, 'redeem', $2, 'Обмен баллов на пополнение кошелька')
		RETURNING id, user_id, order_id, type, points, description, created_at
	`, userID, points)
	if err != nil {
		return nil, nil, fmt.Errorf("reward repository: redeem create transaction: %w", err)
	}

	walletTransaction, err := creditTx(ctx, tx, userID, creditAmount, "Обмен бонусных баллов", nil)
	if err != nil {
		return nil, nil, err
	}

	return &transaction, walletTransaction, tx.Commit()
}

// ListTransactions возвращает журнал операций по баллам.
func (r *RewardRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RewardTransaction, error) {
	var transactions []models.RewardTransaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, user_id, order_id, type, points, description, created_at
		FROM reward_transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return transactions, err
}
