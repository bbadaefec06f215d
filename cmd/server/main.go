package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/animedex/backend/internal/database"
	"github.com/animedex/backend/internal/handlers"
	"github.com/animedex/backend/internal/logger"
	"github.com/animedex/backend/internal/repository"
	"github.com/animedex/backend/internal/search"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Info("AnimeDex server starting")

	if err := database.Initialize(); err != nil {
		logger.Error("Failed to initialize database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	esClient, err := search.NewClient()
	if err != nil {
		logger.Error("Failed to connect to Elasticsearch", zap.Error(err))
		os.Exit(1)
	}

	if err := esClient.EnsureIndices(context.Background()); err != nil {
		logger.Error("Failed to ensure search indices", zap.Error(err))
		os.Exit(1)
	}

	catalog := repository.NewCatalogRepository(database.DB)
	service := search.NewService(esClient, catalog)
	indexer := search.NewIndexer(esClient, catalog)

	// Redis is optional; without it searches just go uncached
	var searcher search.Searcher = service
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Warn("Invalid REDIS_URL, running without cache", zap.Error(err))
		} else {
			redisClient := redis.NewClient(opts)
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				logger.Warn("Redis unreachable, running without cache", zap.Error(err))
			} else {
				searcher = search.NewCachedService(service, redisClient)
				logger.Info("Search cache enabled")
			}
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	h := handlers.New(searcher, indexer, esClient)
	h.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Info("Listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
