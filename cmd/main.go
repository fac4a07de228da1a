package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bookwise/backend/internal/config"
	"github.com/bookwise/backend/internal/db"
	"github.com/bookwise/backend/internal/handlers"
	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/middleware"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/server"
	"github.com/bookwise/backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(cfg, log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	regUserRepo := repos.NewRegisteredUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	userRepo := repos.NewUserRepo(thePG, log)
	bookRepo := repos.NewBookRepo(thePG, log)
	ratingRepo := repos.NewRatingRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	sessionService := services.NewSessionService(cfg.Session.Capacity)
	candidateService := services.NewCandidateService(log, bookRepo, cfg.Recommend.SearchScanLimit, cfg.Recommend.MaxKeywords)
	indexMapService := services.NewIndexMapService(log, bookRepo, userRepo)
	registry := services.NewModelRegistry()
	loaderService := services.NewLoaderService(log, cfg.Model.Paths, cfg.Model.EmbedDim, cfg.Model.InitSeed, indexMapService, registry)
	interactionService := services.NewInteractionService(thePG, log, userRepo, bookRepo, ratingRepo, sessionService, cfg.Interaction.ImplicitRating)
	recommenderService := services.NewRecommenderService(log, bookRepo, sessionService, candidateService, registry, cfg.Model.MaxSeqLen, cfg.Recommend.CandidatePool, cfg.Recommend.DefaultTopK)
	authService := services.NewAuthService(thePG, log, regUserRepo, userTokenRepo, interactionService, cfg.JWT.SecretKey, cfg.AccessTTL(), cfg.RefreshTTL())
	bookService := services.NewBookService(log, bookRepo)

	// Initial model load in the background so startup is not gated on the
	// checkpoint. Until it finishes, recommendations answer 503.
	go func() {
		if err := loaderService.Load(context.Background()); err != nil {
			switch {
			case errors.Is(err, services.ErrCatalogEmpty):
				log.Warn("Skipping initial model load, catalog is empty")
			case errors.Is(err, services.ErrCheckpointNotFound):
				log.Warn("Skipping initial model load, no checkpoint found", "paths", cfg.Model.Paths)
			default:
				log.Error("Initial model load failed", "error", err)
			}
		}
	}()

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	bookHandler := handlers.NewBookHandler(log, bookService, interactionService)
	interactionHandler := handlers.NewInteractionHandler(log, interactionService)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommenderService, bookService)
	modelHandler := handlers.NewModelHandler(log, loaderService, registry)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:           authHandler,
		AuthMiddleware:        authMiddleware,
		BookHandler:           bookHandler,
		InteractionHandler:    interactionHandler,
		RecommendationHandler: recommendationHandler,
		ModelHandler:          modelHandler,
	})

	fmt.Printf("Server listening on :%s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
