package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fairwaylabs/caddie/internal/api"
	"github.com/fairwaylabs/caddie/internal/api/handlers"
	"github.com/fairwaylabs/caddie/internal/api/middleware"
	"github.com/fairwaylabs/caddie/internal/services"
	ws "github.com/fairwaylabs/caddie/internal/websocket"
	"github.com/fairwaylabs/caddie/pkg/config"
	"github.com/fairwaylabs/caddie/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Select the document store backend
	var store services.DocumentStore
	switch cfg.StoreBackend {
	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = services.NewRedisDocumentStore(redisClient)
	default:
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		store, err = services.NewGormDocumentStore(db)
		if err != nil {
			logrus.Fatalf("Failed to initialize document store: %v", err)
		}
	}

	// Initialize state and services
	book := services.NewCaddiebook(store, logger)
	book.Load(context.Background())

	cueHub := ws.NewCueHub(logger)
	go cueHub.Run()

	bridge := services.NewGeminiClient(cfg, logger)
	caddieService := services.NewCaddieService(book, bridge, cueHub, logger)

	var weatherService *services.WeatherService
	if cfg.WeatherEnabled {
		weatherService = services.NewWeatherService(cfg.CourseLatitude, cfg.CourseLongitude, logger)
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health check endpoint
	healthHandler := handlers.NewHealthHandler(bridge, cueHub)
	router.GET("/health", healthHandler.Health)

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, book, caddieService, weatherService, logger)

	// Audio cue WebSocket at root level (not under /api/v1)
	router.GET("/ws", cueHub.HandleWebSocket)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // chat turns wait on the model call
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
