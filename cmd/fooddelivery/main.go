package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fooddelivery/internal/app/orders"
	"fooddelivery/internal/app/payments"
	"fooddelivery/internal/app/restaurants"
	"fooddelivery/internal/app/tracking"
	"fooddelivery/internal/app/users"
	"fooddelivery/internal/app/wishlist"
	"fooddelivery/internal/config"
	"fooddelivery/internal/domain"
	api_http "fooddelivery/internal/handler/http/api"
	kafka_handler "fooddelivery/internal/handler/kafka"
	"fooddelivery/internal/infrastructure/database"
	kafka_infra "fooddelivery/internal/infrastructure/kafka"
	redis_infra "fooddelivery/internal/infrastructure/redis"
	"fooddelivery/internal/outbox"
	inbox_pg "fooddelivery/internal/repository/inbox_repo/postgres"
	orders_pg "fooddelivery/internal/repository/orders_repo/postgres"
	outbox_pg "fooddelivery/internal/repository/outbox_repo/postgres"
	payments_pg "fooddelivery/internal/repository/payments_repo/postgres"
	restaurants_pg "fooddelivery/internal/repository/restaurants_repo/postgres"
	route_redis "fooddelivery/internal/repository/route_repo/redis"
	users_file "fooddelivery/internal/repository/users_repo/file"
)

func ensureKafkaTopics(ctx context.Context, brokerURLs []string, topics []string, logger *zap.Logger) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokerURLs[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka broker for admin operations: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get kafka controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}

	if err := controllerConn.CreateTopics(topicConfigs...); err != nil {
		if !errors.Is(err, kafka.TopicAlreadyExists) {
			return fmt.Errorf("failed to create Kafka topics: %w", err)
		}
		logger.Info("One or more Kafka topics already exist, skipping creation.")
		return nil
	}
	logger.Info("Kafka topics ensured successfully.", zap.Strings("topics", topics))
	return nil
}

func connectDB(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	dsn := cfg.GetDBConnectionString()

	const maxRetries = 10
	retryDelay := 5 * time.Second

	var err error
	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		db, err = database.NewPostgresDB(dsn)
		if err == nil {
			return db, nil
		}
		logger.Warn("Failed to connect to database, retrying",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_in", retryDelay),
			zap.Error(err))
		time.Sleep(retryDelay)
	}
	return nil, err
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()
	appLogger.Info("Food delivery service starting...")

	db, err := connectDB(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		} else {
			appLogger.Info("Database connection closed.")
		}
	}()
	appLogger.Info("Connected to PostgreSQL.")

	m, err := migrate.New(cfg.MigrationsPath, cfg.GetDBMigrationConnectionString())
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed (or no new migrations).")

	kafkaBrokers := cfg.GetKafkaBrokers()
	topicsCtx, cancelTopics := context.WithTimeout(context.Background(), 10*time.Second)
	err = ensureKafkaTopics(topicsCtx, kafkaBrokers, []string{cfg.KafkaSettlementTopic, cfg.KafkaLocationTopic}, appLogger)
	cancelTopics()
	if err != nil {
		appLogger.Fatal("Failed to ensure Kafka topics", zap.Error(err))
	}

	redisClient, err := redis_infra.NewClient(context.Background(), redis_infra.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	userRepository := users_file.NewUserRepository(cfg.UsersFile, appLogger.With(zap.String("component", "UserRepository")))
	if err := userRepository.Load(context.Background()); err != nil {
		appLogger.Fatal("Failed to load user registry", zap.Error(err))
	}
	orderRepository := orders_pg.NewOrderRepository(appLogger.With(zap.String("component", "OrderRepository")))
	paymentRepository := payments_pg.NewPaymentRepository()
	outboxRepository := outbox_pg.NewOutboxRepository()
	inboxRepository := inbox_pg.NewInboxRepository()
	restaurantRepository := restaurants_pg.NewRestaurantRepository(db)
	routeRepository := route_redis.NewRouteRepository(redisClient, cfg.TrackingTTL)

	menu := domain.DefaultMenu()
	services := api_http.Services{
		Users: users.NewUserService(userRepository, cfg.DefaultDeliveryAddress, appLogger.With(zap.String("component", "UserService"))),
		Restaurants: restaurants.NewRestaurantService(restaurantRepository, cfg.CatalogueCacheTTL,
			appLogger.With(zap.String("component", "RestaurantService"))),
		Orders: orders.NewOrderService(db, orderRepository, userRepository, menu,
			orders.Pricing{TaxRate: cfg.TaxRate, DeliveryFee: cfg.DeliveryFee},
			appLogger.With(zap.String("component", "OrderService"))),
		Settlements: payments.NewSettlementService(db, orderRepository, paymentRepository, outboxRepository,
			payments.NewMockGateway(),
			payments.ServiceConfig{SettlementTopic: cfg.KafkaSettlementTopic, DeliveryETA: cfg.DeliveryETA},
			appLogger.With(zap.String("component", "SettlementService"))),
		Wishlist: wishlist.NewWishlistService(menu, appLogger.With(zap.String("component", "WishlistService"))),
		Tracking: tracking.NewTrackingService(db, routeRepository, inboxRepository,
			appLogger.With(zap.String("component", "TrackingService"))),
		Menu: menu,
	}
	appLogger.Info("Services initialized.")

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: api_http.NewRouter(services, cfg.CORSAllowedOrigins, appLogger),
	}

	kafkaProducer := kafka_infra.NewProducer(kafkaBrokers, appLogger.With(zap.String("component", "KafkaProducer")))
	defer kafkaProducer.Close()

	outboxProcessor := outbox.NewProcessor(
		db,
		outboxRepository,
		kafkaProducer,
		cfg.KafkaSettlementTopic,
		cfg.OutboxPollInterval,
		cfg.OutboxPollTimeout,
		cfg.OutboxBatchSize,
		appLogger.With(zap.String("component", "OutboxProcessor")),
	)

	locationConsumer := kafka_infra.NewConsumer(
		kafkaBrokers,
		cfg.KafkaLocationTopic,
		cfg.KafkaConsumerGroup,
		kafka_handler.LocationUpdateMessageHandler(services.Tracking, appLogger.With(zap.String("component", "LocationUpdateHandler"))),
		appLogger.With(zap.String("component", "LocationConsumer")),
	)

	ctxMain, cancelMain := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	wg.Add(2)
	go func() {
		defer wg.Done()
		outboxProcessor.Start(ctxMain)
	}()
	go func() {
		defer wg.Done()
		if err := locationConsumer.Consume(ctxMain); err != nil {
			appLogger.Error("Location consumer failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	appLogger.Info("Shutting down application...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server gracefully shut down.")
	}

	cancelMain()
	if err := locationConsumer.Close(); err != nil {
		appLogger.Error("Error closing location consumer", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		appLogger.Warn("Background workers did not stop before the shutdown deadline.")
	}

	appLogger.Info("Application gracefully shut down.")
}
