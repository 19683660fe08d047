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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/activity-service/internal/activity"
	"github.com/SAP-F-2025/activity-service/internal/cache"
	"github.com/SAP-F-2025/activity-service/internal/config"
	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/handlers"
	"github.com/SAP-F-2025/activity-service/internal/repositories"
	"github.com/SAP-F-2025/activity-service/internal/repositories/fs"
	"github.com/SAP-F-2025/activity-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/activity-service/internal/services"
	"github.com/SAP-F-2025/activity-service/internal/utils"
	"github.com/SAP-F-2025/activity-service/internal/validator"
	"github.com/SAP-F-2025/activity-service/pkg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "activityd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := logger.Slog()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	sources, err := fs.NewSourceStore(cfg.ActivitiesDir)
	if err != nil {
		return fmt.Errorf("open activities: %w", err)
	}
	results, err := newResultRepository(cfg)
	if err != nil {
		return err
	}

	// Cache
	activityCache, err := newActivityCache(cfg, logger)
	if err != nil {
		return err
	}

	// Events
	bus, err := cfg.Events.CreateEventBus(slogger)
	if err != nil {
		return fmt.Errorf("create event bus: %w", err)
	}
	defer func() {
		if err := bus.Publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()
	hub := events.NewHub(slogger)

	// Services and handlers
	v := validator.New()
	manager := services.NewServiceManager(services.Dependencies{
		Compiler:  activity.NewCompiler(),
		Sources:   sources,
		Results:   results,
		Cache:     activityCache,
		Publisher: bus.Publisher,
		Validator: v,
		Logger:    slogger,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: !containsWildcard(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(manager, hub, handlers.NewCasdoorParser(cfg.Auth), v, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if bus.Subscriber != nil {
		relay := events.NewRelay(bus.Subscriber, hub, cfg.Events.Topic, slogger)
		g.Go(func() error { return relay.Run(gctx) })
	}
	g.Go(func() error {
		logger.Info("Activity service listening", "port", cfg.Port, "results_store", cfg.ResultsStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newResultRepository(cfg *config.Config) (repositories.ResultRepository, error) {
	switch cfg.ResultsStore {
	case "postgres", "sqlite":
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewResultPostgreSQL(db), nil
	case "fs":
		return fs.NewResultStore(cfg.ResultsDir)
	default:
		return nil, fmt.Errorf("unknown RESULTS_STORE %q", cfg.ResultsStore)
	}
}

// newActivityCache uses Redis when REDIS_URL is set and an in-process cache
// otherwise.
func newActivityCache(cfg *config.Config, logger utils.Logger) (*cache.ActivityCache, error) {
	if cfg.RedisURL == "" {
		return cache.NewActivityCache(cache.NewMemoryCache(), cfg.CacheTTL), nil
	}

	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	zlog, err := newZapLogger(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Caching compiled activities in Redis", "ttl", cfg.CacheTTL)
	return cache.NewActivityCache(cache.NewRedisCache(client, zlog.Named("cache")), cfg.CacheTTL), nil
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
