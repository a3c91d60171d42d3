package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/logger"
	"github.com/vkuznetsov/paperdesk-backend/internal/metrics"
	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

// RewardPointsPerUnit — сколько оплаченных денег даёт один балл лояльности.
const RewardPointsPerUnit = 10.0

type SettlementRepository interface {
	SettleWithWallet(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	SettleWithExternal(ctx context.Context, orderID uuid.UUID, externalTransactionID string, processedAt time.Time) (*models.Payment, error)
	SettleWithHybrid(ctx context.Context, orderID uuid.UUID, walletAmount float64, externalTransactionID string) (*models.Payment, error)
	CancelAndRefund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

type SettlementOrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type SettlementWallets interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
}

type SettlementRewards interface {
	EarnForPayment(ctx context.Context, userID uuid.UUID, amountPaid float64, orderID *uuid.UUID) error
}

// PaymentEventPublisher публикует событие об успешной оплате.
type PaymentEventPublisher interface {
	PublishOrderPaid(ctx context.Context, orderID, clientID uuid.UUID, method string, amount float64) error
}

// PayInput — параметры проведения оплаты.
type PayInput struct {
	Method                string
	ExternalTransactionID string
	WalletAmount          float64
}

// PaymentOption — доступный клиенту способ оплаты заказа с готовой
// разбивкой суммы для гибридного варианта.
type PaymentOption struct {
	Method         string  `json:"method"`
	WalletAmount   float64 `json:"wallet_amount,omitempty"`
	ExternalAmount float64 `json:"external_amount,omitempty"`
}

// SettlementService проводит оплату заказов. Все денежные изменения
// происходят в одной транзакции на уровне репозитория; сервис отвечает
// за валидацию, права доступа, баллы лояльности и события.
type SettlementService struct {
	payments SettlementRepository
	orders   SettlementOrderRepository
	wallets  SettlementWallets
	rewards  SettlementRewards
	events   PaymentEventPublisher
	now      func() time.Time
}

func NewSettlementService(payments SettlementRepository, orders SettlementOrderRepository, wallets SettlementWallets, rewards SettlementRewards, events PaymentEventPublisher) *SettlementService {
	return &SettlementService{
		payments: payments,
		orders:   orders,
		wallets:  wallets,
		rewards:  rewards,
		events:   events,
		now:      time.Now,
	}
}

// Pay проводит оплату заказа выбранным способом.
// Повторная оплата отклоняется по наличию завершённого платежа:
// ключей идемпотентности нет, проверка выполняется до проведения.
func (s *SettlementService) Pay(ctx context.Context, orderID, clientID uuid.UUID, input PayInput) (*models.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, repository.ErrOrderNotOwnedByYou
	}

	existing, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Status == models.PaymentStatusCompleted {
			return nil, fmt.Errorf("заказ уже оплачен")
		}
	}

	payment, err := s.settle(ctx, order, input)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues(input.Method, "failed").Inc()
		return nil, err
	}
	metrics.SettlementsTotal.WithLabelValues(input.Method, "success").Inc()

	// Баллы и событие не входят в транзакцию оплаты: их потеря терпима,
	// потеря денег — нет.
	if err := s.rewards.EarnForPayment(ctx, clientID, payment.Amount, &orderID); err != nil {
		logger.Log.WithError(err).WithField("order_id", orderID).Error("не удалось начислить баллы за оплату")
	}
	if s.events != nil {
		if err := s.events.PublishOrderPaid(ctx, orderID, clientID, input.Method, payment.Amount); err != nil {
			logger.Log.WithError(err).WithField("order_id", orderID).Error("не удалось опубликовать событие оплаты")
		}
	}

	return payment, nil
}

func (s *SettlementService) settle(ctx context.Context, order *models.Order, input PayInput) (*models.Payment, error) {
	switch input.Method {
	case models.PaymentMethodWallet:
		return s.payments.SettleWithWallet(ctx, order.ID)
	case models.PaymentMethodExternal:
		if input.ExternalTransactionID == "" {
			return nil, fmt.Errorf("не указан идентификатор внешней транзакции")
		}
		return s.payments.SettleWithExternal(ctx, order.ID, input.ExternalTransactionID, s.now())
	case models.PaymentMethodHybrid:
		if input.WalletAmount <= 0 || input.WalletAmount >= order.Price {
			return nil, fmt.Errorf("сумма с кошелька при гибридной оплате должна быть больше нуля и меньше цены заказа")
		}
		if input.ExternalTransactionID == "" {
			return nil, fmt.Errorf("не указан идентификатор внешней транзакции")
		}
		return s.payments.SettleWithHybrid(ctx, order.ID, input.WalletAmount, input.ExternalTransactionID)
	default:
		return nil, fmt.Errorf("неизвестный способ оплаты: %s", input.Method)
	}
}

// PaymentOptions возвращает доступные способы оплаты заказа исходя из
// текущего баланса кошелька. Внешняя оплата доступна всегда, оплата
// кошельком — при достаточном балансе, гибридная — при частичном.
func (s *SettlementService) PaymentOptions(ctx context.Context, orderID, clientID uuid.UUID) ([]PaymentOption, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, repository.ErrOrderNotOwnedByYou
	}

	wallet, err := s.wallets.GetWallet(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var options []PaymentOption
	if wallet.Balance >= order.Price {
		options = append(options, PaymentOption{
			Method:       models.PaymentMethodWallet,
			WalletAmount: round2(order.Price),
		})
	} else if wallet.Balance > 0 {
		options = append(options, PaymentOption{
			Method:         models.PaymentMethodHybrid,
			WalletAmount:   round2(wallet.Balance),
			ExternalAmount: round2(order.Price - wallet.Balance),
		})
	}
	options = append(options, PaymentOption{
		Method:         models.PaymentMethodExternal,
		ExternalAmount: round2(order.Price),
	})
	return options, nil
}

// Refund возвращает средства за отменённый заказ на кошелёк клиента.
// Возврат всегда идёт на кошелёк независимо от исходного способа оплаты.
// Смену статуса заказа выполняет OrderService, не этот метод.
func (s *SettlementService) Refund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.CancelAndRefund(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNoCompletedPayment) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// ListOrderPayments возвращает платежи заказа.
func (s *SettlementService) ListOrderPayments(ctx context.Context, orderID, clientID uuid.UUID) ([]models.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, repository.ErrOrderNotOwnedByYou
	}
	return s.payments.ListByOrder(ctx, orderID)
}
