package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vkuznetsov/paperdesk-backend/internal/broker"
	"github.com/vkuznetsov/paperdesk-backend/internal/cache"
	"github.com/vkuznetsov/paperdesk-backend/internal/config"
	"github.com/vkuznetsov/paperdesk-backend/internal/db"
	httpHandlers "github.com/vkuznetsov/paperdesk-backend/internal/http/handlers"
	httpRouter "github.com/vkuznetsov/paperdesk-backend/internal/http/router"
	"github.com/vkuznetsov/paperdesk-backend/internal/logger"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
	"github.com/vkuznetsov/paperdesk-backend/internal/service"
	"github.com/vkuznetsov/paperdesk-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Кэш справочников. Отсутствие Redis не фатально: каталог
	// обслуживается напрямую из базы.
	var catalogCache service.CatalogCache
	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient, err = cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CatalogCacheTTL)
		if err != nil {
			logger.Log.Warnf("main: Redis недоступен, кэш каталога отключён: %v", err)
		} else {
			defer cacheClient.Close()
			catalogCache = cacheClient
		}
	}

	// Публикация событий заказов. Без брокера сервис работает,
	// события просто не отправляются.
	var orderEvents service.OrderEventPublisher
	var paymentEvents service.PaymentEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := broker.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher := broker.NewEventPublisher(producer)
		orderEvents = publisher
		paymentEvents = publisher
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	catalogRepo := repository.NewCatalogRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	walletRepo := repository.NewWalletRepository(dbConn)
	inquiryRepo := repository.NewInquiryRepository(dbConn)
	couponRepo := repository.NewCouponRepository(dbConn)
	rewardRepo := repository.NewRewardRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	pricingService := service.NewPricingService(catalogRepo, cfg.BasePricePerPage)
	catalogService := service.NewCatalogService(catalogRepo, catalogCache)
	walletService := service.NewWalletService(walletRepo)
	couponService := service.NewCouponService(couponRepo)
	rewardService := service.NewRewardService(rewardRepo)
	settlementService := service.NewSettlementService(paymentRepo, orderRepo, walletRepo, rewardService, paymentEvents)
	orderService := service.NewOrderService(orderRepo, pricingService, couponService, settlementService, orderEvents, hub)
	inquiryService := service.NewInquiryService(inquiryRepo, pricingService, orderEvents)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	pricingHandler := httpHandlers.NewPricingHandler(pricingService)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogService)
	orderHandler := httpHandlers.NewOrderHandler(orderService)
	paymentHandler := httpHandlers.NewPaymentHandler(settlementService)
	walletHandler := httpHandlers.NewWalletHandler(walletService)
	couponHandler := httpHandlers.NewCouponHandler(couponService)
	rewardHandler := httpHandlers.NewRewardHandler(rewardService)
	inquiryHandler := httpHandlers.NewInquiryHandler(inquiryService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, cacheClient)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		pricingHandler,
		catalogHandler,
		orderHandler,
		paymentHandler,
		walletHandler,
		couponHandler,
		rewardHandler,
		inquiryHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
