package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-tailor/internal/adapter/http"
	"resume-tailor/internal/adapter/repository"
	"resume-tailor/internal/config"
	"resume-tailor/internal/infrastructure/migration"
	"resume-tailor/internal/usecase"
	"resume-tailor/pkg/ai"
	infra "resume-tailor/pkg/infrastructure"
	"resume-tailor/pkg/logger"
	"resume-tailor/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

func main() {
	log := logger.New("resume-tailor")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("load configuration")
	}

	ctx := context.Background()

	pool, err := infra.NewProfilePool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect profile database")
	}
	defer pool.Close()

	if err := migration.RunMigrations(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	// Backend selection is pure configuration; resolve once.
	provider, err := ai.NewProvider(ai.ProviderOptions{
		Backend:         cfg.AIBackend,
		Model:           cfg.AIModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OllamaHost:      cfg.OllamaHost,
		RelayURL:        cfg.RelayURL,
		PollInterval:    cfg.PollInterval,
		WaitCeiling:     cfg.WaitCeiling,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("resolve ai backend")
	}

	ingestor := usecase.NewIngestor(provider, cfg.AIModel, cfg.PollInterval, cfg.WaitCeiling, log)
	reconciler := usecase.NewReconciler(repository.NewProfileRepo(pool), log)

	auth := httpadapter.NewAuth(repository.NewTokenRepo(pool), log)
	ingestLimit := httpadapter.NewRateLimit(ratelimit.New("ingest", cfg.IngestLimit, cfg.IngestWindow))
	fetchLimit := httpadapter.NewRateLimit(ratelimit.New("fetch", cfg.FetchLimit, cfg.FetchWindow))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	h := httpadapter.NewHandler(ingestor, reconciler, provider, pool, log)
	h.Register(app, auth, ingestLimit, fetchLimit)

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Str("backend", cfg.AIBackend).Msg("server starting")
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
