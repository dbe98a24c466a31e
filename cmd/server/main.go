package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kartikfr/card-genius/internal/auth"
	"github.com/kartikfr/card-genius/internal/cache"
	"github.com/kartikfr/card-genius/internal/config"
	"github.com/kartikfr/card-genius/internal/database"
	"github.com/kartikfr/card-genius/internal/engine"
	"github.com/kartikfr/card-genius/internal/enrichment"
	"github.com/kartikfr/card-genius/internal/events"
	"github.com/kartikfr/card-genius/internal/handler"
	"github.com/kartikfr/card-genius/internal/repository"
	"github.com/kartikfr/card-genius/internal/router"
	"github.com/kartikfr/card-genius/internal/service"
	"github.com/kartikfr/card-genius/seeds"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupLogging(cfg)

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := database.MigrateDown(cfg.DatabaseURL); err != nil {
			log.Fatalf("failed to migrate down: %v", err)
		}
		log.Info("migrations dropped")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func run(ctx context.Context, cfg *config.Config) error {
	// ------------ PostgreSQL ---------------
	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to migrate up: %w", err)
	}

	// ------------ Setup Seed Data ---------------
	repo := repository.NewRepository(pool)
	if err := checkSeed(ctx, repo, pool); err != nil {
		return fmt.Errorf("failed to check seed: %w", err)
	}

	// ------------ Redis ---------------
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	recCache := cache.NewCache(redisClient, cfg.CacheTTL, cfg.UpdatesCacheTTL)
	if err := recCache.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("connected to Redis")

	// ------------ Events ---------------
	var bus events.Bus = events.NoopBus{}
	if cfg.NATSURL != "" {
		natsBus, err := events.ConnectNATS(cfg.NATSURL, uuid.NewString())
		if err != nil {
			return err
		}
		bus = natsBus
	} else {
		log.Info("NATS_URL not set, catalog events disabled")
	}
	defer bus.Close()

	// ------------ Services ---------------
	var searcher enrichment.Searcher
	if cfg.GeminiAPIKey != "" {
		gemini, err := enrichment.NewGeminiSearcher(ctx, &http.Client{}, "", cfg.GeminiModel, cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
		searcher = gemini
	} else {
		log.Info("GEMINI_API_KEY not set, card updates unavailable")
	}
	updates := enrichment.NewService(searcher, cfg.UpdatesTimeout)

	svc := service.NewService(repo, recCache, engine.NewEngine(engine.DefaultBonuses()), updates, bus, cfg.BatchConcurrency)
	if err := svc.LoadCatalog(ctx); err != nil {
		return err
	}
	if err := bus.SubscribeCatalogChanged(svc.HandleCatalogChanged); err != nil {
		return err
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	authn, err := auth.NewAuthenticator(tokens, cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		return err
	}

	go svc.RunSessionJanitor(ctx, cfg.SessionTTL, time.Minute)

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(handler.NewHandler(svc, authn), authn.Tokens()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("received shutdown signal, shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func checkSeed(ctx context.Context, repo *repository.Repository, pool *pgxpool.Pool) error {
	count, err := repo.CountCards(ctx)
	if err != nil {
		return fmt.Errorf("check cards count: %w", err)
	}
	if count > 0 {
		log.WithField("cards", count).Info("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool)
}
