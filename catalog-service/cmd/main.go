package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/catalog-service/internal/app/catalog/config"
	"storefront/catalog-service/internal/app/catalog/handler"
	"storefront/catalog-service/internal/app/catalog/processor"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/util"
	"storefront/pkg/logger"
)

const serviceName = "catalog-service"

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// === ИНИЦИАЛИЗАЦИЯ ЛОГГЕРА ===
	logger.Init(serviceName, cfg.Log.Level)
	if cfg.Log.LogstashAddr != "" {
		closeLogstash, err := logger.InitLogstash(cfg.Log.LogstashAddr, serviceName, cfg.Log.Level)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Log.LogstashAddr).Msg("Logstash unavailable, logging to stdout only")
		} else {
			defer closeLogstash()
		}
	}

	// === ПОДКЛЮЧЕНИЕ К MONGODB ===
	// Подключение ленивое: первый запрос или первый пересчет открывает клиент
	conn := repository.NewConnection(cfg.Database.URI, cfg.Database.Name, cfg.Database.ConnectTimeout)

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Кеш количества документов необязателен
	var counts util.CountCache
	if addr := cfg.Redis.Address(); addr != "" {
		redisCache, err := util.NewRedisCountCache(addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CountTTL)
		if err != nil {
			logger.Warn().Err(err).Str("addr", addr).Msg("Redis unavailable, document counts are not cached")
		} else {
			counts = redisCache
			logger.Info().Str("addr", addr).Msg("Connected to Redis")
		}
	}

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	var publisher util.MessagePublisher
	var kafkaProducer *util.KafkaProducer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer = util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		publisher = kafkaProducer
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")
	}

	notifier := util.NewCatalogNotifier(publisher, counts)

	// === ПРОВАЙДЕР РЕСУРСОВ ===
	opts := []api.ProviderOption{
		api.WithNotifier(notifier),
		api.WithCountCache(counts),
	}
	if cfg.Stripe.SecretKey != "" {
		opts = append(opts, api.WithPayments(func() util.PaymentGateway {
			return util.NewStripeGateway(cfg.Stripe.SecretKey)
		}))
	} else {
		logger.Warn().Msg("STRIPE_SECRET_KEY is not set, checkout is disabled")
	}
	if cfg.JWT.StaffOrgID == "" {
		logger.Warn().Msg("STAFF_ORG_ID is not set, admin operations are denied")
	}
	provider := api.NewProvider(conn, cfg.JWT.StaffOrgID, opts...)

	identity, err := handler.NewIdentityMiddleware(cfg.JWT.Secret, cfg.JWT.PublicKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure token verification")
	}

	// === НАСТРОЙКА МАРШРУТОВ ===
	router := handler.SetupRoutes(handler.RouterConfig{
		Handler:      handler.NewCatalogHandler(cfg.Stripe.Currency),
		Provider:     provider,
		Identity:     identity,
		Database:     conn,
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	// === ПЛАНИРОВЩИК ПЕРЕСЧЕТА КОЛИЧЕСТВА ДОКУМЕНТОВ ===
	ctx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	scheduler := processor.NewCronScheduler(conn, counts)
	if err := scheduler.Start(ctx, cfg.Scheduler.CountRefresh); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}

	// === НАСТРОЙКА HTTP СЕРВЕРА ===
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	cancelJobs()
	scheduler.Stop()
	// Дожидаемся фоновых уведомлений до закрытия Kafka и Redis
	notifier.Wait()

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Kafka producer")
		}
	}
	if counts != nil {
		if err := counts.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
	if err := conn.Disconnect(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}
