package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/devdish/devdish/backend/config"
	"github.com/devdish/devdish/backend/internal/api"
	"github.com/devdish/devdish/backend/internal/blob"
	"github.com/devdish/devdish/backend/internal/database"
	"github.com/devdish/devdish/backend/internal/middleware"
	"github.com/devdish/devdish/backend/internal/server"
	"github.com/devdish/devdish/backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	server.SetupLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data stores")
	}
	defer stores.Close()

	store, err := blob.New(ctx, &cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image store")
	}

	// Redis only backs rate limiting, so the API still starts without it
	var redisClient *redis.Client
	if client, err := database.NewRedisClient(cfg); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, rate limiting disabled")
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	// Initialize services
	images := service.NewImageService(store, cfg.Storage)
	svc := api.Services{
		Auth:         service.NewAuthService(stores.Users, cfg.JWTSecret, cfg.JWTExpiry),
		Recipes:      service.NewRecipeService(stores.Recipes, images),
		Interactions: service.NewInteractionService(stores.Recipes, stores.Users),
		Users:        service.NewUserService(stores.Users, stores.Recipes, images),
		Images:       images,
	}

	var limiters api.Limiters
	if redisClient != nil {
		limiters = api.Limiters{
			Like:           middleware.NewLikeRateLimiter(redisClient),
			RecipeCreation: middleware.NewRecipeCreationRateLimiter(redisClient),
			Upload:         middleware.NewUploadRateLimiter(redisClient),
		}
	}

	checks := make(map[string]api.Check, len(stores.Checks))
	for name, check := range stores.Checks {
		checks[name] = check
	}

	srv := server.NewServer(cfg, svc, limiters, checks)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	log.Info().Msg("Server stopped")
}
