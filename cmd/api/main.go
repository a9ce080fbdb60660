package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/arisylafeta/aadf-procurement/internal/config"
	"github.com/arisylafeta/aadf-procurement/internal/database"
	"github.com/arisylafeta/aadf-procurement/internal/handler"
	"github.com/arisylafeta/aadf-procurement/internal/middleware"
	"github.com/arisylafeta/aadf-procurement/internal/models"
	"github.com/arisylafeta/aadf-procurement/internal/repository"
	"github.com/arisylafeta/aadf-procurement/internal/router"
	"github.com/arisylafeta/aadf-procurement/internal/service"
	"github.com/arisylafeta/aadf-procurement/pkg/ai"
	"github.com/arisylafeta/aadf-procurement/pkg/storage"
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

	if err := db.AutoMigrate(&models.Procurement{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, dashboard caching disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, rating events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	store, err := storage.New(storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		UseSSL:    cfg.StorageUseSSL,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create storage client: %v", err)
	}

	docRater, textRater, err := buildRaters(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create AI rater: %v", err)
	}

	submissionRepo := repository.NewSubmissionRepository(db)
	procurementRepo := repository.NewProcurementRepository(db)

	coreRater := service.NewCoreSectionRater(store, docRater, cfg.RaterTimeout, logger)
	experienceRater := service.NewExperienceSectionRater(store, docRater, procurementRepo, cfg.RaterTimeout, logger)
	teamRater := service.NewTeamSectionRater(store, docRater, textRater, cfg.RaterTimeout, logger)
	priceRater := service.NewPriceSectionRater(submissionRepo, logger)

	var publisher service.EventPublisher
	if natsConn != nil {
		publisher = natsConn
	}

	ratingService := service.NewRatingService(submissionRepo, coreRater, experienceRater, teamRater, priceRater, publisher, logger)
	submissionService := service.NewSubmissionService(submissionRepo, procurementRepo, logger)
	procurementService := service.NewProcurementService(procurementRepo, logger)
	dashboardService := service.NewDashboardService(procurementRepo, submissionRepo, redisClient, cfg.DashboardCacheTTL, cfg.QualificationThreshold, logger)

	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	procurementHandler := handler.NewProcurementHandler(procurementService, dashboardService, logger)
	ratingHandler := handler.NewRatingHandler(ratingService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler:  submissionHandler,
		ProcurementHandler: procurementHandler,
		RatingHandler:      ratingHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildRaters(cfg config.Config, logger zerolog.Logger) (ai.DocumentRater, ai.TextRater, error) {
	switch cfg.AIProvider {
	case "openai":
		rater, err := ai.NewOpenAIRater(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return rater, rater, nil
	case "gemini":
		rater, err := ai.NewGeminiRater(context.Background(), ai.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return rater, rater, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
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
