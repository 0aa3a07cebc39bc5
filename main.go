package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schedly/api/audit"
	"github.com/schedly/api/config"
	"github.com/schedly/api/controller"
	"github.com/schedly/api/db"
	"github.com/schedly/api/guard/engine"
	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/router"
	"github.com/schedly/api/service"
	"github.com/schedly/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService()
	notificationService := util.NewNotificationService()
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize Elasticsearch audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Initialize services
	services, membershipDAO, organizationDAO, err := service.InitializeServices(
		db.Neo4jDriver,
		auditService,
		validationUtil,
		cacheService,
		notificationService,
		eventBus,
	)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Initialize the authorization evaluator
	evaluator := engine.NewEvaluator(
		membershipDAO,
		organizationDAO,
		db.NewDecisionCache(db.RedisClient),
		auditService,
		config.GetDuration("guard.decisionCacheTTL"),
	)

	// Initialize controllers
	controllers := controller.InitializeControllers(services, auditService)

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	ginRouter := router.SetupRouter(controllers, evaluator, 100, time.Minute) // 100 requests per minute

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: ginRouter,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
