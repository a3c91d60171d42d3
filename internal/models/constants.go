package models

// OrderStatus константы статусов заказов
const (
	OrderStatusWaitingForPayment = "waiting_for_payment"
	OrderStatusPlaced            = "placed"
	OrderStatusActive            = "active"
	OrderStatusAssigned          = "assigned"
	OrderStatusInProgress        = "in_progress"
	OrderStatusSubmitted         = "submitted"
	OrderStatusWaitingForReview  = "waiting_for_review"
	OrderStatusInRevision        = "in_revision"
	OrderStatusCompleted         = "completed"
	OrderStatusCancelled         = "cancelled"
)

// ValidOrderStatuses список валидных статусов заказов
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusWaitingForPayment: {},
	OrderStatusPlaced:            {},
	OrderStatusActive:            {},
	OrderStatusAssigned:          {},
	OrderStatusInProgress:        {},
	OrderStatusSubmitted:         {},
	OrderStatusWaitingForReview:  {},
	OrderStatusInRevision:        {},
	OrderStatusCompleted:         {},
	OrderStatusCancelled:         {},
}

// InquiryStatus константы статусов заявок
const (
	InquiryStatusDraft     = "draft"
	InquiryStatusSubmitted = "submitted"
	InquiryStatusConverted = "converted"
)

// Типы надбавок в каталоге тарифов
const (
	IncrementTypePercent = "percent"
	IncrementTypeFixed   = "fixed"
)

// Способы оплаты заказа
const (
	PaymentMethodWallet   = "wallet"
	PaymentMethodExternal = "external"
	PaymentMethodHybrid   = "hybrid"
)

// Статусы платежей
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusCancelled = "cancelled"
)

// Типы операций по кошельку
const (
	WalletTransactionCredit = "credit"
	WalletTransactionDebit  = "debit"
)

// Статусы операций по кошельку
const (
	WalletTransactionStatusCompleted = "completed"
	WalletTransactionStatusFailed    = "failed"
)

// Типы операций по бонусному счёту
const (
	RewardTransactionEarn   = "earn"
	RewardTransactionRedeem = "redeem"
)

// Роли пользователей
const (
	RoleClient = "client"
	RoleWriter = "writer"
	RoleAdmin  = "admin"
)

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleClient: {},
	RoleWriter: {},
	RoleAdmin:  {},
}
