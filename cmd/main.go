package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Dosada05/volley-mixer/config"
	"github.com/Dosada05/volley-mixer/db"
	"github.com/Dosada05/volley-mixer/handlers"
	"github.com/Dosada05/volley-mixer/logging"
	"github.com/Dosada05/volley-mixer/metrics"
	"github.com/Dosada05/volley-mixer/pairing"
	"github.com/Dosada05/volley-mixer/realtime"
	"github.com/Dosada05/volley-mixer/repositories"
	api "github.com/Dosada05/volley-mixer/routes"
	"github.com/Dosada05/volley-mixer/services"
	"github.com/Dosada05/volley-mixer/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.Int("courts", cfg.NumCourts),
		slog.Bool("publishing", cfg.R2Enabled()),
	)

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn, logger); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	// Публикация таблицы в Cloudflare R2 (необязательно)
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger, recorder)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		wsHub.Run(ctx)
	}()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	byeRepo := repositories.NewPostgresByeRepository(dbConn)
	transactor := repositories.NewSQLTransactor(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	generator := pairing.NewEngine()
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)
	rosterService := services.NewRosterService(transactor, playerRepo, roundRepo, wsHub, logger)
	roundService := services.NewRoundService(
		transactor,
		playerRepo,
		roundRepo,
		teamRepo,
		matchRepo,
		byeRepo,
		generator,
		cfg.NumCourts,
		wsHub,
		recorder,
		logger,
	)
	matchService := services.NewMatchService(matchRepo, wsHub, recorder, logger)
	leaderboardService := services.NewLeaderboardService(playerRepo, teamRepo, matchRepo, byeRepo, roundService, uploader, logger)
	dashboardService := services.NewDashboardService(playerRepo, roundRepo, teamRepo, matchRepo, byeRepo)
	logger.Info("Services initialized", slog.String("generator", generator.GetName()))

	if cfg.OrganizerEmail != "" {
		if _, err := authService.EnsureOrganizer(ctx, cfg.OrganizerName, cfg.OrganizerEmail, cfg.OrganizerPassword); err != nil {
			logger.Error("failed to provision organizer account", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Warn("ORGANIZER_EMAIL is not set; organizer endpoints are unusable until an account exists")
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.AllowedOrigins,
		Gatherer:       registry,
	}, api.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Players:     handlers.NewPlayerHandler(rosterService),
		Rounds:      handlers.NewRoundHandler(roundService, matchService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, cfg.AllowedOrigins, logger),
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			<-hubDone
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	stop()
	<-hubDone
	logger.Info("application exited")
}
