package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/coordination-service/pkg/cloudevents"
	"github.com/wms-platform/coordination-service/pkg/kafka"
	"github.com/wms-platform/coordination-service/pkg/logging"
	"github.com/wms-platform/coordination-service/pkg/metrics"
	"github.com/wms-platform/coordination-service/pkg/middleware"
	"github.com/wms-platform/coordination-service/pkg/mongodb"

	"github.com/wms-platform/coordination-service/internal/application"
	kafkaAdapter "github.com/wms-platform/coordination-service/internal/infrastructure/kafka"
	mongoRepo "github.com/wms-platform/coordination-service/internal/infrastructure/mongodb"
)

const serviceName = "coordination-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting coordination-service API")

	config := loadConfig()
	ctx := context.Background()

	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	kafkaProducer := kafka.NewProducer(config.Kafka)
	producer := kafka.NewCircuitBreakerProducer(kafkaProducer, m, logger)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceCoordination)

	db := mongoClient.Database()
	taskRepo := mongoRepo.NewTaskRepository(db)
	waveRepo := mongoRepo.NewWaveRepository(db)
	shipmentRepo := mongoRepo.NewShipmentRepository(db)
	ticketRepo := mongoRepo.NewTicketRepository(db)
	handOffRepo := mongoRepo.NewHandOffRepository(db)

	eventPublisher := kafkaAdapter.NewEventPublisher(producer, eventFactory)

	taskService := application.NewTaskApplicationService(
		taskRepo, waveRepo, shipmentRepo, ticketRepo, eventPublisher, m, logger)
	lifecycleService := application.NewLifecycleApplicationService(
		waveRepo, shipmentRepo, taskRepo, handOffRepo, eventPublisher, m, logger)
	ticketService := application.NewTicketApplicationService(
		ticketRepo, eventPublisher, m, logger)

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		tasks := api.Group("/tasks")
		{
			tasks.POST("", createTaskHandler(taskService, logger))
			tasks.GET("", listClaimableTasksHandler(taskService, logger))
			tasks.GET("/mine", listMyTasksHandler(taskService, logger))
			tasks.GET("/:taskId", getTaskHandler(taskService, logger))
			tasks.POST("/:taskId/claim", claimTaskHandler(taskService, logger))
			tasks.POST("/:taskId/release", releaseTaskHandler(taskService, logger))
			tasks.POST("/:taskId/complete", completeTaskHandler(taskService, logger))
		}

		waves := api.Group("/waves")
		{
			waves.POST("", createWaveHandler(lifecycleService, logger))
			waves.GET("/:waveId", getWaveHandler(lifecycleService, logger))
			waves.POST("/:waveId/release", releaseWaveHandler(lifecycleService, logger))
		}

		shipments := api.Group("/shipments")
		{
			shipments.POST("", createShipmentHandler(lifecycleService, logger))
			shipments.GET("/:shipmentId", getShipmentHandler(lifecycleService, logger))
			shipments.POST("/:shipmentId/pack", startPackingHandler(lifecycleService, logger))
			shipments.POST("/:shipmentId/ship", confirmShipHandler(lifecycleService, logger))
			shipments.GET("/:shipmentId/handoffs", listHandOffsHandler(lifecycleService, logger))
		}

		tickets := api.Group("/tickets")
		{
			tickets.POST("", openTicketHandler(ticketService, logger))
			tickets.GET("", listTicketsHandler(ticketService, logger))
			tickets.GET("/stats", ticketStatsHandler(ticketService, logger))
			tickets.GET("/:ticketId", getTicketHandler(ticketService, logger))
			tickets.POST("/:ticketId/assign", assignTicketHandler(ticketService, logger))
			tickets.POST("/:ticketId/resolve", resolveTicketHandler(ticketService, logger))
			tickets.POST("/:ticketId/close", closeTicketHandler(ticketService, logger))
			tickets.POST("/:ticketId/reopen", reopenTicketHandler(ticketService, logger))
		}
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8007"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "wms_coordination"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntQuery(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}
