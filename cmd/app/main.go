package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freight-ai-assistant/internal/config"
	aiAdapters "freight-ai-assistant/internal/infra/adapters/ai"
	"freight-ai-assistant/internal/infra/adapters/storage"
	"freight-ai-assistant/internal/infra/adapters/vector"
	pg "freight-ai-assistant/internal/infra/db/postgres"
	"freight-ai-assistant/internal/infra/logging"
	"freight-ai-assistant/internal/infra/metrics"
	"freight-ai-assistant/internal/infra/queue"
	red "freight-ai-assistant/internal/infra/redis"
	"freight-ai-assistant/internal/infra/sched"
	"freight-ai-assistant/internal/infra/web"
	"freight-ai-assistant/internal/infra/worker"
	"freight-ai-assistant/internal/quote"
	"freight-ai-assistant/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logging, relaxed checks)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	sessionStore := red.NewSessionStore(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	docRepo := pg.NewDocumentRepo(pool)
	invoiceRepo := pg.NewInvoiceRepo(pool)
	shipmentRepo := pg.NewShipmentRepo(pool)

	// ---- AI Adapter (OpenAI -> Gemini) ----
	var provider aiAdapters.Provider
	if cfg.AI.OpenAIKey != "" {
		provider, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.ChatModel, cfg.AI.EmbeddingModel, logger)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.ChatModel).Msg("AI adapter: OpenAI")
	} else if cfg.AI.GeminiKey != "" {
		provider, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.ChatModel, logger)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.ChatModel).Msg("AI adapter: Gemini")
	} else {
		log.Fatalf("no AI provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}
	if cfg.AI.ConcurrentLimit > 0 {
		provider = aiAdapters.NewLimited(provider, cfg.AI.ConcurrentLimit)
	}

	// ---- Vector index / file staging ----
	index, err := vector.NewHTTPIndex(cfg.Vector.BaseURL, cfg.Vector.APIKey)
	if err != nil {
		log.Fatalf("vector index: %v", err)
	}
	files, err := storage.NewLocalStore(cfg.Pipeline.TempDir)
	if err != nil {
		log.Fatalf("file store: %v", err)
	}

	// ---- Queues ----
	docQueue := queue.New(queue.DocumentQueue, redisClient,
		queue.RetryPolicy{
			MaxAttempts:   cfg.Queues.Document.MaxAttempts,
			InitialDelay:  cfg.Queues.Document.InitialDelay,
			BackoffFactor: cfg.Queues.Document.BackoffFactor,
		},
		rateLimiter,
		queue.RateLimit{Limit: cfg.Queues.Document.RateLimit, Window: cfg.Queues.Document.RateWindow},
		cfg.Queues.Retention, logger)
	invQueue := queue.New(queue.InvoiceQueue, redisClient,
		queue.RetryPolicy{
			MaxAttempts:   cfg.Queues.Invoice.MaxAttempts,
			InitialDelay:  cfg.Queues.Invoice.InitialDelay,
			BackoffFactor: cfg.Queues.Invoice.BackoffFactor,
		},
		rateLimiter,
		queue.RateLimit{Limit: cfg.Queues.Invoice.RateLimit, Window: cfg.Queues.Invoice.RateWindow},
		cfg.Queues.Retention, logger)

	// ---- Processing pipeline ----
	chunker, err := worker.NewChunker(cfg.Pipeline.ChunkTokens, cfg.Pipeline.OverlapTokens)
	if err != nil {
		log.Fatalf("chunker: %v", err)
	}
	processor := worker.NewDocumentProcessor(
		files, provider, provider, index, chunker,
		docRepo, invoiceRepo, sessionStore, locker,
		cfg.Vector.IndexName, cfg.Pipeline.MinContentChars, cfg.Pipeline.BatchSize, logger)

	docPool := worker.NewPool(docQueue, processor, cfg.Queues.Document.Concurrency, logger)
	invPool := worker.NewPool(invQueue, processor, cfg.Queues.Invoice.Concurrency, logger)
	docPool.Start(ctx)
	invPool.Start(ctx)

	// ---- Conversation ----
	convUC := usecase.NewConversationUseCase(
		sessionStore, provider, provider, quote.NewEngine(), shipmentRepo, locker, logger)

	// ---- Retention sweeper ----
	retention := sched.NewRetentionWorker(1*time.Minute, []*queue.Queue{docQueue, invQueue}, logger)
	go func() { _ = retention.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	srv := web.NewServer(convUC, userRepo, docRepo, invoiceRepo, shipmentRepo,
		files, docQueue, invQueue, auth, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	docPool.Stop()
	invPool.Stop()
}
