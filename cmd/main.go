package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	createBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/create_booking"
	createRecurringHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/create_recurring_booking"
	getBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_booking"
	getCourtBookingsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_court_bookings"
	getCourtSchedulesHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_court_schedules"
	getDiscountTiersHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_discount_tiers"
	getUserBookingsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_user_bookings"
	paymentNotificationHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/payment_notification"
	previewRecurringHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/preview_recurring_booking"
	updateDiscountTiersHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/update_discount_tiers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/config"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	discountRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/discount"
	recurringRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/recurring"
	scheduleRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/schedule"
	transactionRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/transaction"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/midtrans"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/payments"
	pricingService "github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
	createBookingUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	createRecurringUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_recurring_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
	previewRecurringUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/preview_recurring_booking"
	processNotificationUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/process_payment_notification"
	"github.com/m04kA/SMC-CourtBookingService/pkg/cache"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/migrator"
	"github.com/m04kA/SMC-CourtBookingService/pkg/mq"
	"github.com/m04kA/SMC-CourtBookingService/pkg/txmanager"
)

const rateLimitVisitorTTL = 10 * time.Minute

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-CourtBookingService...")

	// Метрики выключены: nil-коллектор, все наблюдения становятся no-op
	var metricsCollector *metrics.Metrics
	stopBackgroundCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrator.Up(db, cfg.Database.MigrationsDir); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Migrations applied from %s", cfg.Database.MigrationsDir)
	}

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopBackgroundCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	courtRepository := courtRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	recurringRepository := recurringRepo.NewRepository(wrappedDB)
	transactionRepository := transactionRepo.NewRepository(wrappedDB)
	discountRepository := discountRepo.NewRepository(wrappedDB)

	// Публикация событий (RabbitMQ или no-op)
	var publisher interface {
		Publish(ctx context.Context, event *mq.Event) error
		Close() error
	} = mq.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rabbit
		log.Info("RabbitMQ publisher ready (exchange=%s)", cfg.RabbitMQ.Exchange)
	}
	defer publisher.Close()

	// Кэш предпросмотра (Redis или no-op)
	var previewCache previewRecurringUC.Cache = cache.NopCache{}
	var pricingGenerations pricingService.GenerationCounter = cache.NopCache{}
	if cfg.Redis.Enabled {
		connectCtx, cancelConnect := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(connectCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancelConnect()
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		redisCache := cache.NewRedisCache(client, cfg.Redis.Prefix)
		previewCache = redisCache
		pricingGenerations = redisCache
		log.Info("Redis preview cache ready (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.PreviewTTLSeconds)
	}

	// Платежный шлюз
	midtransClient := midtrans.NewClient(
		cfg.Midtrans.BaseURL,
		cfg.Midtrans.ServerKey,
		time.Duration(cfg.Midtrans.Timeout)*time.Second,
		log,
	)
	signatureVerifier := midtrans.NewSignatureVerifier(cfg.Midtrans.ServerKey)
	log.Info("Midtrans client initialized (base_url=%s, timeout=%ds)", cfg.Midtrans.BaseURL, cfg.Midtrans.Timeout)

	// Таблица скидок из конфига используется, пока в БД пусто
	var fallbackTable *domain.DiscountTable
	if len(cfg.Pricing.DiscountTiers) > 0 {
		tiers := make([]domain.DiscountTier, 0, len(cfg.Pricing.DiscountTiers))
		for _, t := range cfg.Pricing.DiscountTiers {
			tiers = append(tiers, domain.DiscountTier{MinSessions: t.MinSessions, Percentage: t.Percentage})
		}
		fallbackTable, err = domain.NewDiscountTable(tiers)
		if err != nil {
			log.Fatal("Invalid pricing.discount_tiers: %v", err)
		}
	}

	// Сервисы
	availabilityChecker := availability.NewChecker(bookingRepository)
	slotKeeper := availability.NewSlotKeeper(scheduleRepository, log)
	paymentInitiator := payments.NewInitiator(midtransClient, transactionRepository, cfg.Reservation.PaymentExpiryMinutes, log)
	bookingSvc := bookingsService.NewService(bookingRepository, courtRepository, cfg.Admin, log)
	pricingSvc := pricingService.NewService(discountRepository, txMgr, cfg.Admin, fallbackTable, pricingGenerations, log)

	// Use cases
	createRecurringUseCase := createRecurringUC.NewUseCase(
		courtRepository,
		scheduleRepository,
		recurringRepository,
		bookingRepository,
		availabilityChecker,
		slotKeeper,
		pricingSvc,
		paymentInitiator,
		publisher,
		txMgr,
		metricsCollector,
		createRecurringUC.Options{
			BaseTimeout:          time.Duration(cfg.Reservation.BaseTimeoutMs) * time.Millisecond,
			PerOccurrenceTimeout: time.Duration(cfg.Reservation.PerOccurrenceTimeoutMs) * time.Millisecond,
			SlotDurationMinutes:  cfg.Reservation.SlotDurationMinutes,
			MaxOccurrences:       cfg.Reservation.MaxOccurrences,
		},
		log,
	)

	previewRecurringUseCase := previewRecurringUC.NewUseCase(
		courtRepository,
		scheduleRepository,
		pricingSvc,
		previewCache,
		time.Duration(cfg.Redis.PreviewTTLSeconds)*time.Second,
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		courtRepository,
		scheduleRepository,
		availabilityChecker,
		slotKeeper,
		paymentInitiator,
		publisher,
		txMgr,
		metricsCollector,
		createBookingUC.Options{
			Timeout:             time.Duration(cfg.Reservation.BaseTimeoutMs) * time.Millisecond,
			SlotDurationMinutes: cfg.Reservation.SlotDurationMinutes,
		},
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		courtRepository,
		scheduleRepository,
		bookingRepository,
		cfg.Reservation.SlotDurationMinutes,
		log,
	)

	processNotificationUseCase := processNotificationUC.NewUseCase(
		signatureVerifier,
		transactionRepository,
		recurringRepository,
		bookingRepository,
		slotKeeper,
		publisher,
		txMgr,
		metricsCollector,
		log,
	)

	// Handlers
	createRecurring := createRecurringHandler.NewHandler(createRecurringUseCase, log)
	previewRecurring := previewRecurringHandler.NewHandler(previewRecurringUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getCourtBookings := getCourtBookingsHandler.NewHandler(bookingSvc, log)
	getCourtSchedules := getCourtSchedulesHandler.NewHandler(getAvailableSlotsUseCase, log)
	paymentNotification := paymentNotificationHandler.NewHandler(processNotificationUseCase, log)
	getDiscountTiers := getDiscountTiersHandler.NewHandler(pricingSvc, log)
	updateDiscountTiers := updateDiscountTiersHandler.NewHandler(pricingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Слоты корта на день
	api.HandleFunc("/courts/{courtId}/schedules", getCourtSchedules.Handle).Methods(http.MethodGet)

	// Предпросмотр серии и стоимости
	api.HandleFunc("/courts/{courtId}/recurring-bookings/preview", previewRecurring.Handle).Methods(http.MethodGet)

	// Таблица скидок
	api.HandleFunc("/pricing/discount-tiers", getDiscountTiers.Handle).Methods(http.MethodGet)

	// Уведомления платежного шлюза (аутентификация по подписи)
	api.HandleFunc("/payments/notification", paymentNotification.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Чтение
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/courts/{courtId}/bookings", getCourtBookings.Handle).Methods(http.MethodGet)

	// Запись, с ограничением частоты на пользователя
	writes := protected.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, rateLimitVisitorTTL)
		go limiter.RunCleanup(time.Minute, stopBackgroundCh)
		writes.Use(limiter.Middleware)
		log.Info("Rate limit enabled for write routes (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	writes.HandleFunc("/recurring-bookings", createRecurring.Handle).Methods(http.MethodPost)
	writes.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	writes.HandleFunc("/pricing/discount-tiers", updateDiscountTiers.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик пула и очистку rate limiter
	close(stopBackgroundCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
