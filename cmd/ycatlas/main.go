package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/seedscope/ycatlas/internal/config"
	"github.com/seedscope/ycatlas/internal/db"
	dbRedis "github.com/seedscope/ycatlas/internal/db/redis"
	"github.com/seedscope/ycatlas/internal/ingest"
	logpkg "github.com/seedscope/ycatlas/internal/logger"
	"github.com/seedscope/ycatlas/internal/metrics"
	budgetrepo "github.com/seedscope/ycatlas/internal/repository/budget"
	companiesrepo "github.com/seedscope/ycatlas/internal/repository/companies"
	"github.com/seedscope/ycatlas/internal/repository/embcache"
	chiTransport "github.com/seedscope/ycatlas/internal/transport/chi"
	"github.com/seedscope/ycatlas/internal/transport/firecrawl"
	openaiTransport "github.com/seedscope/ycatlas/internal/transport/openai"
	"github.com/seedscope/ycatlas/internal/transport/ycapi"
	analyticsuc "github.com/seedscope/ycatlas/internal/usecase/analytics"
	chatuc "github.com/seedscope/ycatlas/internal/usecase/chat"
	embeddinguc "github.com/seedscope/ycatlas/internal/usecase/embedding"
	facetsuc "github.com/seedscope/ycatlas/internal/usecase/facets"
	healthuc "github.com/seedscope/ycatlas/internal/usecase/health"
	projectionuc "github.com/seedscope/ycatlas/internal/usecase/projection"
	searchuc "github.com/seedscope/ycatlas/internal/usecase/search"
	usageuc "github.com/seedscope/ycatlas/internal/usecase/usage"
	"github.com/seedscope/ycatlas/internal/version"
)

const providerName = "openai"

func main() {
	app := &cli.App{
		Name:  "ycatlas",
		Usage: "Search, analytics and embedding maps over the YC company directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Configuration environment (local, dev, prod)",
				Value:   config.GetEnv(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: runServe,
			},
			{
				Name:   "sync",
				Usage:  "Fetch the published company directory into the local database",
				Action: runSync,
			},
			{
				Name:   "scrape",
				Usage:  "Scrape company websites as markdown",
				Action: runScrape,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Re-scrape every company regardless of page age",
					},
				},
			},
			{
				Name:   "embed",
				Usage:  "Generate embeddings for companies with new or changed source text",
				Action: runEmbed,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Companies embedded per provider call",
						Value: ingest.DefaultEmbedBatchSize,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap loads the configuration and builds the logger shared by every
// command.
func bootstrap(c *cli.Context) (config.Config, *zap.Logger, error) {
	env := c.String("env")

	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func runServe(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ycatlas API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", c.String("env")),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
	)

	sqlDB, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	ctx := context.Background()
	cache := connectCache(ctx, cfg, logger)
	if cache != nil {
		defer cache.Close()
	}

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	// Single BudgetTracker shared between the embedder chain and the usage
	// endpoint.
	budget := buildBudget(ctx, cfg, cache, logger)

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker embeddinguc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	// Query embedder chain: OpenAI -> cache -> budget and logging.
	base := newEmbedderBase(cfg, logger)
	embedder := buildQueryEmbedder(base, cache, budgetChecker, cfg, logger)
	logger.Info("Embedder created",
		zap.String("provider", providerName),
		zap.String("model", cfg.Embedding.Model),
		zap.Bool("cache", cache != nil),
		zap.Bool("budget", budget != nil),
	)

	repo := companiesrepo.New(sqlDB)

	searchSvc := searchuc.New(repo, embedder)
	facetsSvc := facetsuc.New(repo)
	analyticsSvc := analyticsuc.New(repo)
	projectionSvc := projectionuc.New(repo, searchSvc)

	chatter := openaiTransport.NewChatter(&openaiTransport.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Chat.Model,
		Logger:  logger,
	})
	chatSvc := chatuc.New(searchSvc, repo, chatter, cfg.Chat.ContextTopK)

	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader, providerName)

	var cachePinger healthuc.CachePinger
	if cache != nil {
		cachePinger = cache
	}
	healthSvc := healthuc.New(sqlDB, cachePinger, base)

	server := chiTransport.NewServer(
		searchSvc, facetsSvc, analyticsSvc, projectionSvc, repo, chatSvc, usageSvc, healthSvc,
		chiTransport.Limits{
			DefaultPageSize: cfg.Search.DefaultPageSize,
			MaxPageSize:     cfg.Search.MaxPageSize,
			SimilarLimit:    cfg.Search.SimilarLimit,
			DefaultTopN:     cfg.Analytics.DefaultTopN,
			MaxTopN:         cfg.Analytics.MaxTopN,
		},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.HTTP.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func runSync(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	source := ycapi.New(&ycapi.Config{
		SourceURL: cfg.Sync.SourceURL,
		Timeout:   time.Duration(cfg.Sync.TimeoutSec) * time.Second,
		Logger:    logger,
	})

	res, err := ingest.NewSyncPipeline(source, companiesrepo.New(sqlDB), logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Printf("synced %d companies in %s\n", res.Companies, res.Duration.Round(time.Millisecond))
	return nil
}

func runScrape(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Scrape.APIKey == "" {
		return fmt.Errorf("scrape.api_key is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	scraper := firecrawl.New(&firecrawl.Config{
		APIKey:  cfg.Scrape.APIKey,
		BaseURL: cfg.Scrape.BaseURL,
		Timeout: time.Duration(cfg.Scrape.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	pipeline := ingest.NewScrapePipeline(
		scraper, companiesrepo.New(sqlDB),
		cfg.Scrape.Concurrency, cfg.Scrape.MaxRetries,
		time.Duration(cfg.Scrape.MaxAgeHours)*time.Hour,
		logger,
	)

	res, err := pipeline.Run(ctx, c.Bool("refresh"))
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	fmt.Printf("scraped %d of %d candidates (%d failed) in %s\n",
		res.Scraped, res.Candidates, res.Failed, res.Duration.Round(time.Millisecond))
	return nil
}

func runEmbed(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	metrics.RegisterEmbeddingMetrics()

	// The cache store only persists budget counters here; corpus embeddings
	// are deduplicated by source hash, not cached.
	var cache *dbRedis.Store
	if cfg.Embedding.Budget.Enabled() {
		cache = connectCache(ctx, cfg, logger)
		if cache != nil {
			defer cache.Close()
		}
	}

	budget := buildBudget(ctx, cfg, cache, logger)
	var budgetChecker embeddinguc.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	embedder := embeddinguc.NewInstrumentedEmbedder(
		newEmbedderBase(cfg, logger), providerName, cfg.Embedding.Model, budgetChecker, logger,
	)

	res, err := ingest.NewEmbedPipeline(embedder, companiesrepo.New(sqlDB), c.Int("batch-size"), logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	fmt.Printf("embedded %d of %d candidates (%d unchanged, %d tokens) in %s\n",
		res.Embedded, res.Candidates, res.Skipped, res.Tokens, res.Duration.Round(time.Millisecond))
	return nil
}

// connectCache connects to the optional Redis store. An unreachable cache is
// a warning, not a startup failure.
func connectCache(ctx context.Context, cfg config.Config, logger *zap.Logger) *dbRedis.Store {
	if !cfg.Embedding.Cache.Enabled() {
		return nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Embedding.Cache.Addrs,
		Password: cfg.Embedding.Cache.Password,
	})
	if err != nil {
		logger.Warn("Embedding cache unavailable", zap.Error(err))
		return nil
	}

	if err := store.WaitForReady(ctx, 5*time.Second); err != nil {
		logger.Warn("Embedding cache not reachable", zap.Error(err))
		store.Close()
		return nil
	}

	logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Embedding.Cache.Addrs))
	return store
}

// buildBudget creates the shared token budget tracker, nil when no limit is
// configured. With a cache store attached the counters survive restarts.
func buildBudget(ctx context.Context, cfg config.Config, cache *dbRedis.Store, logger *zap.Logger) *embeddinguc.BudgetTracker {
	bc := cfg.Embedding.Budget
	if !bc.Enabled() {
		return nil
	}

	action := embeddinguc.BudgetActionWarn
	if bc.Action == "reject" {
		action = embeddinguc.BudgetActionReject
	}

	tracker := embeddinguc.NewBudgetTracker(providerName, bc.DailyTokens, bc.MonthlyTokens, action, logger)
	if cache != nil {
		tracker.WithStore(ctx, budgetrepo.New(cache, 48*time.Hour, 62*24*time.Hour))
	}
	return tracker
}

func newEmbedderBase(cfg config.Config, logger *zap.Logger) *openaiTransport.Embedder {
	return openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
}

// buildQueryEmbedder assembles the serving chain: OpenAI -> cache -> budget
// and logging instrumentation.
func buildQueryEmbedder(
	base *openaiTransport.Embedder,
	cache *dbRedis.Store,
	budget embeddinguc.BudgetChecker,
	cfg config.Config,
	logger *zap.Logger,
) *embeddinguc.InstrumentedEmbedder {
	if cache != nil {
		cached := embcache.New(base, cache, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.Cache.TTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger)
		return embeddinguc.NewInstrumentedEmbedder(cached, providerName, cfg.Embedding.Model, budget, logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(base, providerName, cfg.Embedding.Model, budget, logger)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain
// text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates
// X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
