package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	v1 "go-agora/cmd/api/router/v1"
	cacheAdapter "go-agora/internal/infrastructure/cache/adapter"
	cacheport "go-agora/internal/infrastructure/cache/port"
	"go-agora/internal/infrastructure/config"
	"go-agora/internal/infrastructure/database"
	"go-agora/internal/infrastructure/logging"
	queueAdapter "go-agora/internal/infrastructure/queue/adapter"
	"go-agora/internal/infrastructure/realtime"
	idAdapter "go-agora/internal/pkg/identity/adapter"
	"go-agora/internal/pkg/moderation/analyzer"
	"go-agora/internal/pkg/moderation/filter"
	repoAdapter "go-agora/internal/pkg/moderation/persistence/repository/adapter"
	"go-agora/internal/pkg/moderation/pipeline"
	threadHTTP "go-agora/internal/pkg/thread/presentation/http"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Redis backs the rate limiter. Without it the limiter fails open, so a
	// missing cache degrades moderation rather than blocking startup.
	var cache cacheport.Cache
	if redisCache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
	} else {
		cache = redisCache
		defer func() { _ = redisCache.Close() }()
	}

	tasks, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Fatal("failed to build queue client", zap.Error(err))
	}
	defer func() { _ = tasks.Close() }()

	// Realtime: connection registry plus typing presence, wired so an empty
	// thread also drops its presence map.
	registry := realtime.NewRegistry(logger, cfg.LivenessInterval)
	presence := realtime.NewPresenceTracker(logger, registry, cfg.TypingTTL, cfg.TypingSweepTick)
	registry.OnThreadEmpty(presence.DropThreadIfIdle)
	registry.Start()
	defer registry.Close()
	presence.Start()
	defer presence.Close()

	// Moderation pipeline stages.
	var ml analyzer.Analyzer
	switch {
	case cfg.AnalyzerURL == "":
		logger.Warn("no analyzer configured, content classification disabled")
	case cfg.AnalyzerMode == "structured":
		ml = analyzer.NewStructuredClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout, cfg.AnalyzerRPS)
	default:
		ml = analyzer.NewSummaryClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout, cfg.AnalyzerRPS)
	}

	repo := repoAdapter.NewPgModerationRepository(pool)
	pipe := pipeline.New(logger,
		filter.NewRateLimiter(logger, cache, "messages", cfg.RateLimitMessages, cfg.RateLimitWindow),
		filter.NewRuleFilter(logger, repo),
		filter.NewClassifier(logger, ml, cfg.ModerationEnabled, cfg.ToxicityThreshold, cfg.AnalyzerTimeout),
		filter.NewContextualAnalyzer(),
	)

	identity := idAdapter.NewHeaderResolver()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, tasks, identity)
	threadHTTP.RegisterRoutes(r, pool, pipe, registry, presence, identity, logger, cfg.LivenessInterval)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
}
