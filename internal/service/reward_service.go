package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

// RewardPointValue — стоимость одного балла при обмене на деньги кошелька.
const RewardPointValue = 0.10

type RewardRepository interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (*models.Reward, error)
	Earn(ctx context.Context, userID uuid.UUID, points int, description string, orderID *uuid.UUID) (*models.RewardTransaction, error)
	RedeemToWallet(ctx context.Context, userID uuid.UUID, points int, creditAmount float64) (*models.RewardTransaction, *models.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RewardTransaction, error)
}

// RewardService ведёт бонусные счета: начисление баллов за оплаты и обмен
// баллов на пополнение кошелька.
type RewardService struct {
	repo RewardRepository
}

func NewRewardService(repo RewardRepository) *RewardService {
	return &RewardService{repo: repo}
}

// GetAccount возвращает бонусный счёт пользователя.
func (s *RewardService) GetAccount(ctx context.Context, userID uuid.UUID) (*models.Reward, error) {
	return s.repo.GetAccount(ctx, userID)
}

// EarnForPayment начисляет баллы за оплаченный заказ: один балл за каждые
// полные RewardPointsPerUnit оплаченных денег. Нулевое начисление не
// создаёт записей в журнале.
func (s *RewardService) EarnForPayment(ctx context.Context, userID uuid.UUID, amountPaid float64, orderID *uuid.UUID) error {
	points := int(math.Floor(amountPaid / RewardPointsPerUnit))
	if points <= 0 {
		return nil
	}
	_, err := s.repo.Earn(ctx, userID, points, "Начисление баллов за оплату заказа", orderID)
	return err
}

// Redeem обменивает баллы на пополнение кошелька.
func (s *RewardService) Redeem(ctx context.Context, userID uuid.UUID, points int) (*models.WalletTransaction, error) {
	if points <= 0 {
		return nil, fmt.Errorf("количество баллов должно быть положительным")
	}
	creditAmount := math.Round(float64(points)*RewardPointValue*100) / 100
	_, walletTransaction, err := s.repo.RedeemToWallet(ctx, userID, points, creditAmount)
	if err != nil {
		return nil, err
	}
	return walletTransaction, nil
}

// ListTransactions возвращает журнал операций по баллам.
func (s *RewardService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RewardTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
