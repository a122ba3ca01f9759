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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck-api/internal/config"
	"github.com/quizdeck/quizdeck-api/internal/database"
	"github.com/quizdeck/quizdeck-api/internal/handler"
	"github.com/quizdeck/quizdeck-api/internal/middleware"
	"github.com/quizdeck/quizdeck-api/internal/repository"
	"github.com/quizdeck/quizdeck-api/internal/router"
	"github.com/quizdeck/quizdeck-api/internal/service"
	cloud "github.com/quizdeck/quizdeck-api/pkg/cloudinary"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	notifier := service.NewNatsNotifier(natsConn, logger)

	authService := service.NewAuthService(studentRepo, assignmentRepo, validate, service.TeacherCredential{
		TeacherID:    cfg.TeacherID,
		PasswordHash: cfg.TeacherPasswordHash,
		Salt:         cfg.TeacherPasswordSalt,
	}, cfg.JWTSecret, cfg.SessionTTL, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, uploader, logger)
	attemptService := service.NewAttemptService(assignmentRepo, submissionRepo, notifier, logger)
	resultsService := service.NewResultsService(submissionRepo, assignmentRepo, service.NewLogReportDelivery(logger), validate, logger)
	analyticsService := service.NewAnalyticsService(submissionRepo, assignmentRepo, redisClient, cfg.AnalyticsCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	attemptHandler := handler.NewAttemptHandler(attemptService, validate, logger)
	resultsHandler := handler.NewResultsHandler(resultsService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		AssignmentHandler: assignmentHandler,
		AttemptHandler:    attemptHandler,
		ResultsHandler:    resultsHandler,
		AnalyticsHandler:  analyticsHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
