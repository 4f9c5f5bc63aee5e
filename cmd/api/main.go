package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/contactship-crm/internal/config"
	"github.com/xavierca1/contactship-crm/internal/infra/cache"
	"github.com/xavierca1/contactship-crm/internal/infra/database"
	"github.com/xavierca1/contactship-crm/internal/infra/http/handlers"
	"github.com/xavierca1/contactship-crm/internal/infra/http/middleware"
	"github.com/xavierca1/contactship-crm/internal/infra/integration/openai"
	"github.com/xavierca1/contactship-crm/internal/infra/integration/randomuser"
	"github.com/xavierca1/contactship-crm/internal/infra/mail"
	"github.com/xavierca1/contactship-crm/internal/infra/queue"
	"github.com/xavierca1/contactship-crm/internal/infra/worker"
	"github.com/xavierca1/contactship-crm/internal/usecase"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("falha ao conectar no banco: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
	if err != nil {
		log.Fatalf("falha ao conectar no RabbitMQ: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	syncJobRepo := database.NewSyncJobRepository(db)

	// 2. Integrações e adapters
	randomUserClient := randomuser.NewClient(cfg.RandomUserURL, cfg.FetchTimeout)
	summarizer := openai.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	leadCache := cache.NewLeadCache(cfg.CacheTTL, logger.With("component", "cache"))

	// 3. UseCases
	reconciler := usecase.NewReconciler(leadRepo, logger.With("component", "reconciler"))
	runSyncUC := usecase.NewRunSyncUseCase(
		syncJobRepo,
		map[string]usecase.SourceAdapter{"randomuser-api": randomUserClient},
		reconciler,
		logger.With("component", "orchestrator"),
	)
	triggerSyncUC := usecase.NewTriggerSyncUseCase(syncJobRepo, producer, logger.With("component", "sync"))
	leadUC := usecase.NewLeadUseCase(leadRepo, leadCache, logger.With("component", "leads"))
	summaryUC := usecase.NewGenerateSummaryUseCase(leadRepo, summarizer, leadCache, logger.With("component", "ai"))
	loginUC := usecase.NewLoginUseCase(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecret)

	// 4. Workers (consumidor da fila, DLQ e scheduler)
	syncWorker := queue.NewWorker(rabbitMQ.Ch, runSyncUC, logger.With("component", "worker"))
	go func() {
		if err := syncWorker.Start(ctx, queue.QueueName); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("sync worker morreu: %v", err)
		}
	}()

	var alerts queue.AlertSender
	if cfg.MailHost != "" && cfg.AlertEmail != "" {
		alerts = mail.NewAlertSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailUser, cfg.AlertEmail)
	}
	dlqWorker := queue.NewDLQWorker(rabbitMQ.Ch, alerts, logger.With("component", "dlq"))
	go func() {
		if err := dlqWorker.Start(ctx, queue.DLQName); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("dlq worker stopped", "error", err)
		}
	}()

	scheduler := worker.NewSyncScheduler(triggerSyncUC, cfg.SyncSource, cfg.SyncBatchSize, cfg.SyncInterval, logger.With("component", "scheduler"))
	go scheduler.Start(ctx)

	// 5. Handlers
	syncHandler := handlers.NewSyncHandler(triggerSyncUC)
	leadHandler := handlers.NewLeadHandler(leadUC, summaryUC)
	authHandler := handlers.NewAuthHandler(loginUC)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Post("/auth/login", authHandler.HandleLogin)
	r.Get("/health", healthHandler.Handle)
	r.Handle(cfg.MetricsPath, promhttp.Handler())

	// Captura pública de lead (rate limited dentro do handler)
	r.Post("/leads", leadHandler.HandleCreate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Get("/leads", leadHandler.HandleList)
		r.Get("/leads/stats", leadHandler.HandleStats)
		r.Get("/leads/{id}", leadHandler.HandleGet)
		r.Patch("/leads/{id}", leadHandler.HandleUpdate)
		r.Delete("/leads/{id}", leadHandler.HandleDelete)
		r.Post("/leads/{id}/summary", leadHandler.HandleGenerateSummary)

		r.Post("/sync/trigger", syncHandler.HandleTrigger)
		r.Get("/sync/jobs", syncHandler.HandleListJobs)
		r.Get("/sync/jobs/{id}", syncHandler.HandleGetJob)
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		logger.Info("contactship API listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("servidor HTTP caiu: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
