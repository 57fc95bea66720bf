package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/bazaar/internal/api"
	"github.com/eldtechnologies/bazaar/internal/assets"
	"github.com/eldtechnologies/bazaar/internal/config"
	"github.com/eldtechnologies/bazaar/internal/hub"
	"github.com/eldtechnologies/bazaar/internal/service"
	"github.com/eldtechnologies/bazaar/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Catalog database: PostgreSQL when configured, SQLite otherwise
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite initialization failed")
		}
		db = sqliteStore
		logger.Info().Msg("using SQLite catalog database")
	}
	defer db.Close()

	// Message store: Redis when configured, in-memory otherwise
	var messages store.MessageStore
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisMessageStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		messages = redisStore
		redisClient = redisStore.Client()
		logger.Info().Msg("connected to Redis")
	} else {
		messages = store.NewMemoryMessageStore()
		logger.Warn().Msg("REDIS_URL not set, messages will not survive restarts")
	}

	// Asset storage: MinIO when configured, local disk otherwise
	var uploader assets.Uploader
	if cfg.MinioEndpoint != "" {
		minioUploader, err := assets.NewMinioUploader(ctx, assets.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			UseSSL:        cfg.MinioUseSSL,
			Bucket:        cfg.MinioBucket,
			PublicBaseURL: cfg.MinioPublicURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("minio connection failed")
		}
		uploader = minioUploader
		// Images are served straight from object storage
		cfg.UploadDir = ""
		logger.Info().Str("bucket", cfg.MinioBucket).Msg("connected to MinIO")
	} else {
		localUploader, err := assets.NewLocalUploader(cfg.UploadDir, cfg.PublicURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("upload directory initialization failed")
		}
		uploader = localUploader
		logger.Info().Str("dir", cfg.UploadDir).Msg("storing images on local disk")
	}

	janitor := assets.NewJanitor(uploader, logger)

	liveHub := hub.New()
	catalog := service.NewCatalog(db, uploader, janitor, logger)
	chat := service.NewChat(db, messages, liveHub, logger)

	// Create router
	router := api.NewRouter(logger, cfg, db, messages, catalog, chat, liveHub, redisClient)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting Bazaar server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	// Drain pending asset deletes before exit
	janitor.Close()

	logger.Info().Msg("server stopped")
}
