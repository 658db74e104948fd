// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/aide-ai/content-assistant/internal/config"
	"github.com/aide-ai/content-assistant/internal/handler"
	"github.com/aide-ai/content-assistant/internal/llm"
	"github.com/aide-ai/content-assistant/internal/middleware"
	"github.com/aide-ai/content-assistant/internal/service"
	"github.com/aide-ai/content-assistant/internal/store"
	"github.com/aide-ai/content-assistant/pkg/logger"
	"github.com/aide-ai/content-assistant/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "content-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to MongoDB. The client is constructed once here and injected
	// into the stores; nothing else in the process touches the connection.
	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoConnectTimeout)
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Warn("failed to ensure indexes", zap.Error(err))
	}

	conversationStore := store.NewMongoConversationStore(db)
	messageStore := store.NewMongoMessageStore(db)
	userStore := store.NewMongoUserStore(db)

	// Initialize LLM client
	llmClient, err := newLLMClient(cfg)
	if err != nil {
		log.Warn("no generation provider available, generation disabled", zap.Error(err))
	}

	// Initialize services
	conversationSvc := service.NewConversationService(conversationStore, messageStore, log)
	messageSvc := service.NewMessageService(messageStore, conversationStore, log)
	userSvc := service.NewUserService(userStore, log)
	generationSvc := service.NewGenerationService(llmClient, conversationStore, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	conversationHandler := handler.NewConversationHandler(conversationSvc, log)
	messageHandler := handler.NewMessageHandler(messageSvc, log)
	generateHandler := handler.NewGenerateHandler(generationSvc, log)
	webhookHandler := handler.NewWebhookHandler(userSvc, cfg.WebhookSecret, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Identity-provider webhook (signature-verified, no session)
	r.Post("/webhooks", webhookHandler.Handle)

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(middleware.UserSync(userSvc, log))

		// Conversations
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Create)
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Patch("/", conversationHandler.Update)
				r.Delete("/", conversationHandler.Delete)

				// Messages
				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Append)
			})
		})

		// Generation
		r.Post("/generate", generateHandler.Generate)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// newLLMClient picks the generation provider from config.
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case "anthropic":
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		return llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel,
			llm.WithGeminiBaseURL(cfg.GeminiBaseURL))
	}
}
