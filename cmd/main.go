package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/bridge-judging/config"
	"github.com/Dosada05/bridge-judging/db"
	"github.com/Dosada05/bridge-judging/handlers"
	"github.com/Dosada05/bridge-judging/live"
	"github.com/Dosada05/bridge-judging/metrics"
	"github.com/Dosada05/bridge-judging/models"
	"github.com/Dosada05/bridge-judging/repositories"
	api "github.com/Dosada05/bridge-judging/routes"
	"github.com/Dosada05/bridge-judging/services"
	"github.com/Dosada05/bridge-judging/storage"
	"github.com/go-chi/chi/v5"
)

type stores struct {
	teams      repositories.TeamRepository
	scores     repositories.JudgeScoreRepository
	teamScores repositories.TeamScoreRepository
	users      repositories.UserRepository
}

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Хранилище: postgres или память процесса
	var (
		repos  stores
		dbConn *sql.DB
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		mem := repositories.NewMemoryDB()
		repos = stores{
			teams:      repositories.NewMemoryTeamRepository(mem),
			scores:     repositories.NewMemoryJudgeScoreRepository(mem),
			teamScores: repositories.NewMemoryTeamScoreRepository(mem),
			users:      repositories.NewMemoryUserRepository(mem),
		}
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		dbConn, err = db.Connect(cfg.DatabaseURL, 5*time.Second)
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
		if err := db.CreateSchema(ctx, dbConn); err != nil {
			logger.Error("failed to create schema", slog.Any("error", err))
			os.Exit(1)
		}
		teamRepo := repositories.NewPostgresTeamRepository(dbConn)
		repos = stores{
			teams:      teamRepo,
			scores:     repositories.NewPostgresJudgeScoreRepository(dbConn, teamRepo),
			teamScores: repositories.NewPostgresTeamScoreRepository(dbConn),
			users:      repositories.NewPostgresUserRepository(dbConn),
		}
		logger.Info("database connection established")
	}

	// Архив выгрузок в Cloudflare R2 включается только при полной конфигурации
	var uploader storage.FileUploader
	if cfg.ArchiveEnabled() {
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
		logger.Info("Cloudflare R2 uploader initialized")
	}

	rec := metrics.New()

	// Инициализация WebSocket Hub
	hub := live.NewHub(logger, rec)
	go hub.Run(ctx)
	logger.Info("live hub started")

	// Инициализация сервисов
	userService := services.NewUserService(repos.users, 0)
	authService := services.NewAuthService(repos.users, services.NewMemorySessionStore(), cfg.JWTSecretKey, cfg.TokenTTL, logger)
	teamService := services.NewTeamService(repos.teams, hub, logger)
	checkInService := services.NewCheckInService(repos.teams, hub, rec, logger)
	scoringService := services.NewScoringService(repos.teams, repos.scores, hub, rec, logger)
	standingsService := services.NewStandingsService(repos.teams, repos.scores, repos.teamScores, hub, rec, logger)
	reportService := services.NewReportService(repos.teams, repos.teamScores, uploader, cfg.ExportLocation, logger)
	logger.Info("services initialized")

	if cfg.BootstrapAdminEmail != "" {
		bootstrapAdmin(ctx, logger, userService, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
	}

	// Периодический пересчёт итоговых баллов
	go func() {
		ticker := time.NewTicker(cfg.StandingsInterval)
		defer ticker.Stop()
		logger.Info("standings scheduler started", slog.Duration("interval", cfg.StandingsInterval))

		if _, err := standingsService.Recompute(ctx); err != nil {
			logger.Error("scheduler: initial standings run failed", slog.Any("error", err))
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := standingsService.Recompute(ctx); err != nil {
					logger.Error("scheduler: standings run failed", slog.Any("error", err))
				}
			}
		}
	}()

	// *sql.DB нельзя передать как nil интерфейс, поэтому проверку делаем явно
	var pinger handlers.Pinger
	if dbConn != nil {
		pinger = dbConn
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Dependencies{
		AuthHandler:      handlers.NewAuthHandler(authService),
		TeamHandler:      handlers.NewTeamHandler(teamService),
		CheckInHandler:   handlers.NewCheckInHandler(checkInService),
		ScoringHandler:   handlers.NewScoringHandler(scoringService),
		DashboardHandler: handlers.NewDashboardHandler(reportService, standingsService),
		WebSocketHandler: handlers.NewWebSocketHandler(hub, teamService, cfg.CORSOrigins, logger),
		HealthHandler:    handlers.NewHealthHandler(pinger),
		Resolver:         authService,
		Metrics:          rec,
		CORSOrigins:      cfg.CORSOrigins,
		Logger:           logger,
	})
	logger.Info("routes configured")

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
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}
	// Останавливает планировщик и закрывает подписчиков хаба.
	stop()
	logger.Info("application exited")
}

// bootstrapAdmin provisions the configured admin unless the email is taken.
func bootstrapAdmin(ctx context.Context, logger *slog.Logger, users services.UserService, email, password string) {
	user, err := users.Provision(ctx, services.ProvisionUserInput{
		Email:    email,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
		Password: password,
	})
	switch {
	case errors.Is(err, services.ErrUserEmailConflict):
		logger.Info("bootstrap admin already exists", slog.String("email", email))
	case err != nil:
		logger.Error("failed to provision bootstrap admin", slog.Any("error", err))
		os.Exit(1)
	default:
		logger.Info("bootstrap admin provisioned", slog.String("uid", user.UID))
	}
}
