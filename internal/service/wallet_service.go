package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

type WalletRepository interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error)
	Debit(ctx context.Context, userID uuid.UUID, amount float64, description string, orderID *uuid.UUID) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error)
	HasSufficientFunds(ctx context.Context, userID uuid.UUID, amount float64) (bool, error)
}

// WalletService управляет кошельками клиентов: баланс, пополнение,
// история операций. Списания при оплате заказов делает SettlementService.
type WalletService struct {
	repo WalletRepository
}

func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{repo: repo}
}

// GetWallet возвращает кошелёк пользователя, создавая его при первом обращении.
func (s *WalletService) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return s.repo.GetWallet(ctx, userID)
}

// HasSufficientFunds сообщает, хватит ли баланса на указанную сумму.
// Проверка советующая: реальную гарантию даёт транзакция списания.
func (s *WalletService) HasSufficientFunds(ctx context.Context, userID uuid.UUID, amount float64) (bool, error) {
	return s.repo.HasSufficientFunds(ctx, userID, amount)
}

// Deposit пополняет кошелёк.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount float64) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("сумма должна быть положительной")
	}
	return s.repo.Credit(ctx, userID, amount, "Пополнение кошелька", nil)
}

// ListTransactions возвращает историю операций по кошельку.
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
