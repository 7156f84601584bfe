package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/cache"
	"github.com/tcgpulse/tcgpulse_api/internal/config"
	"github.com/tcgpulse/tcgpulse_api/internal/database"
	"github.com/tcgpulse/tcgpulse_api/internal/handler"
	"github.com/tcgpulse/tcgpulse_api/internal/middleware"
	"github.com/tcgpulse/tcgpulse_api/internal/repository"
	"github.com/tcgpulse/tcgpulse_api/internal/service"
	"github.com/tcgpulse/tcgpulse_api/internal/worker"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

// main is the application entrypoint for the tcgpulse price sync API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting tcgpulse api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis. The read cache is optional: if Redis is down the
	// API still serves everything straight from Postgres.
	var priceCache *cache.PriceCache
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis connection failed - price read cache disabled")
	} else {
		defer redisClient.Close()
		priceCache = cache.NewPriceCache(redisClient)
		log.Info().Msg("redis connected successfully")
	}

	// 4. Initialize upstream feed client
	feed := tcgcsv.NewClient(cfg.Feed.BaseURL, cfg.Feed.CategoryID)

	// 5. Initialize repositories
	groupRepo := repository.NewGroupRepository(db)
	priceRepo := repository.NewPriceHistoryRepository(db)
	jobRepo := repository.NewSyncJobRepository(db)

	// 6. Initialize services
	syncSvc := service.NewSyncService(feed, priceRepo, groupRepo, priceCache)
	bulkSvc := service.NewBulkSyncService(feed, syncSvc, groupRepo, jobRepo, cfg.Sync.Delay, cfg.Sync.CutoffDate)
	jobSvc := service.NewJobService(jobRepo, syncSvc, cfg.Sync.BatchSize, cfg.Sync.Delay)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(db),
		Group:  handler.NewGroupHandler(groupRepo, priceRepo),
		Price:  handler.NewPriceHandler(priceRepo, priceCache),
		Sync:   handler.NewSyncHandler(syncSvc, bulkSvc, jobSvc),
		Feed:   handler.NewFeedHandler(feed),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewScheduleWorker(bulkSvc, cfg.Sync.CronSpec).Start(ctx)
	go worker.NewJobWorker(jobSvc, cfg.Sync.JobInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health *handler.HealthHandler
	Group  *handler.GroupHandler
	Price  *handler.PriceHandler
	Sync   *handler.SyncHandler
	Feed   *handler.FeedHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Card group read endpoints
	groups := router.Group("/v1/groups")
	{
		groups.GET("", handlers.Group.ListGroups)
		groups.GET("/:groupId", handlers.Group.GetGroup)
	}

	// Price history read endpoints
	prices := router.Group("/v1/prices")
	{
		prices.GET("", handlers.Price.ListPrices)
		prices.GET("/recent", handlers.Price.GetRecent)
		prices.GET("/paginated", handlers.Price.ListPaginated)
		prices.GET("/sets", handlers.Price.GetSets)
	}

	// Sync trigger endpoints (called by external cron). Guarded so that
	// overlapping triggers cannot run two syncs at once.
	sync := router.Group("/v1/sync")
	sync.Use(middleware.NewSyncGuard().Handle())
	{
		sync.POST("/groups/:groupId", handlers.Sync.SyncGroup)
		sync.POST("/all", handlers.Sync.SyncAll)
		sync.POST("/jobs", handlers.Sync.ProcessJobs)
	}

	// Feed probe
	router.GET("/v1/feed/csv", handlers.Feed.FetchCSV)
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
