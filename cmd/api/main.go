package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/presta-go-api/internal/config"
	"github.com/noah-isme/presta-go-api/internal/database"
	"github.com/noah-isme/presta-go-api/internal/handler"
	"github.com/noah-isme/presta-go-api/internal/middleware"
	"github.com/noah-isme/presta-go-api/internal/models"
	"github.com/noah-isme/presta-go-api/internal/repository"
	"github.com/noah-isme/presta-go-api/internal/router"
	"github.com/noah-isme/presta-go-api/internal/service"
	"github.com/noah-isme/presta-go-api/pkg/events"
	"github.com/noah-isme/presta-go-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.ActivityType{}, &models.Submission{}, &models.Verification{}, &models.PointsCache{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := storage.New(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}

	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := events.Connect(cfg.NATSURL, logger)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	typeRepo := repository.NewActivityTypeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTRefreshSecret, logger)
	submissionService := service.NewSubmissionService(submissionRepo, userRepo, typeRepo, pointsRepo, validate, uploader, logger)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, validate, publisher, logger)
	leaderboardService := service.NewLeaderboardService(pointsRepo, redisClient, cfg.LeaderboardCacheTTL, logger)
	activityTypeService := service.NewActivityTypeService(typeRepo, validate, logger)
	reconcileService := service.NewReconcileService(pointsRepo, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	verificationHandler := handler.NewVerificationHandler(verificationService, logger)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, logger)
	activityTypeHandler := handler.NewActivityTypeHandler(activityTypeService, logger)
	adminHandler := handler.NewAdminHandler(reconcileService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         authHandler,
		SubmissionHandler:   submissionHandler,
		VerificationHandler: verificationHandler,
		LeaderboardHandler:  leaderboardHandler,
		ActivityTypeHandler: activityTypeHandler,
		AdminHandler:        adminHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	reconcileCtx, stopReconciler := context.WithCancel(context.Background())
	defer stopReconciler()
	go reconcileService.Run(reconcileCtx, cfg.ReconcileInterval)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopReconciler)
}

func waitForShutdown(app *fiber.App, stopReconciler context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopReconciler()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
