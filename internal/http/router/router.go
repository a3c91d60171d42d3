package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vkuznetsov/paperdesk-backend/internal/config"
	"github.com/vkuznetsov/paperdesk-backend/internal/http/handlers"
	"github.com/vkuznetsov/paperdesk-backend/internal/http/middleware"
	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/service"
)

// SetupRouter собирает все маршруты сервиса.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	pricingHandler *handlers.PricingHandler,
	catalogHandler *handlers.CatalogHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	walletHandler *handlers.WalletHandler,
	couponHandler *handlers.CouponHandler,
	rewardHandler *handlers.RewardHandler,
	inquiryHandler *handlers.InquiryHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/me", authHandler.Me)
	}

	// Публичные маршруты: калькулятор цены и справочники доступны
	// до регистрации.
	estimateRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	api.POST("/estimate", estimateRateLimit, pricingHandler.Estimate)
	api.GET("/ws", wsHandler.Handle)

	api.GET("/catalog/levels", catalogHandler.ListLevels)
	api.GET("/catalog/rates", catalogHandler.ListRates)
	api.GET("/catalog/subjects", catalogHandler.ListSubjects)
	api.GET("/catalog/service-types", catalogHandler.ListServiceTypes)
	api.GET("/catalog/languages", catalogHandler.ListLanguages)
	api.GET("/catalog/features", catalogHandler.ListFeatures)

	// Маршруты клиента.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/orders", orderHandler.Place)
		protected.GET("/orders/my", orderHandler.ListMy)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.Get)
		protected.POST("/orders/:id/cancel", middleware.UUIDValidator("id"), orderHandler.Cancel)
		protected.POST("/orders/:id/services", middleware.UUIDValidator("id"), orderHandler.AddServices)
		protected.GET("/orders/:id/history", middleware.UUIDValidator("id"), orderHandler.History)
		protected.POST("/orders/:id/pay", middleware.UUIDValidator("id"), paymentHandler.Pay)
		protected.GET("/orders/:id/payment-options", middleware.UUIDValidator("id"), paymentHandler.PaymentOptions)
		protected.GET("/orders/:id/payments", middleware.UUIDValidator("id"), paymentHandler.ListOrderPayments)

		protected.GET("/wallet", walletHandler.GetWallet)
		protected.POST("/wallet/deposit", walletHandler.Deposit)
		protected.GET("/wallet/transactions", walletHandler.ListTransactions)

		protected.POST("/coupons/preview", couponHandler.Preview)

		protected.GET("/rewards", rewardHandler.GetAccount)
		protected.POST("/rewards/redeem", rewardHandler.Redeem)
		protected.GET("/rewards/transactions", rewardHandler.ListTransactions)

		protected.POST("/inquiries", inquiryHandler.Create)
		protected.GET("/inquiries/my", inquiryHandler.ListMy)
		protected.GET("/inquiries/:id", middleware.UUIDValidator("id"), inquiryHandler.Get)
		protected.POST("/inquiries/:id/submit", middleware.UUIDValidator("id"), inquiryHandler.Submit)
		protected.POST("/inquiries/:id/convert", middleware.UUIDValidator("id"), inquiryHandler.Convert)
	}

	// Маршруты персонала: авторы и администраторы.
	staff := api.Group("/staff")
	staff.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRoles(models.RoleWriter, models.RoleAdmin))
	{
		staff.GET("/orders", orderHandler.ListByStatus)
		staff.PUT("/orders/:id/status", middleware.UUIDValidator("id"), orderHandler.Transition)
		staff.PUT("/orders/:id/writer", middleware.UUIDValidator("id"), orderHandler.AssignWriter)
		staff.PUT("/inquiries/:id/estimate", middleware.UUIDValidator("id"), inquiryHandler.UpdateEstimate)
	}

	// Административные маршруты: управление прайс-листом.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/catalog/rates", catalogHandler.CreateRate)
		admin.PUT("/catalog/rates/:id", middleware.UUIDValidator("id"), catalogHandler.UpdateRate)
		admin.DELETE("/catalog/rates/:id", middleware.UUIDValidator("id"), catalogHandler.DeleteRate)
		admin.POST("/catalog/rates/bulk-adjust", catalogHandler.BulkAdjustRates)
	}

	return r
}
