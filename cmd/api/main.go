package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/neighborly/backend/internal/auth"
	"github.com/neighborly/backend/internal/billing"
	"github.com/neighborly/backend/internal/config"
	"github.com/neighborly/backend/internal/handlers"
	"github.com/neighborly/backend/internal/middleware"
	"github.com/neighborly/backend/internal/moderation"
	"github.com/neighborly/backend/internal/notify"
	"github.com/neighborly/backend/internal/repository"
	"github.com/neighborly/backend/internal/router"
)

// riverNoticeQueue adapts the River client to billing.NoticeQueue.
type riverNoticeQueue struct {
	client *river.Client[pgx.Tx]
}

func (q riverNoticeQueue) InsertTx(ctx context.Context, tx pgx.Tx, args notify.PaymentNoticeArgs) error {
	_, err := q.client.InsertTx(ctx, tx, args, nil)
	return err
}

func (q riverNoticeQueue) Insert(ctx context.Context, args notify.PaymentNoticeArgs) error {
	_, err := q.client.Insert(ctx, args, nil)
	return err
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database successfully!")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Repositories
	taskRepo := repository.NewTaskRepo(pool)
	userRepo := repository.NewUserRepo(pool)
	planRepo := repository.NewPlanRepo(pool)
	settingRepo := repository.NewSettingRepo(pool)
	payoutFailureRepo := repository.NewPayoutFailureRepo(pool)
	bannedWordRepo := repository.NewBannedWordRepo(pool)

	// Moderation filter, loaded once at boot.
	words, err := bannedWordRepo.ListWords(ctx)
	if err != nil {
		slog.Warn("Failed to load banned words (moderation filter empty)", "error", err)
	}
	screener := moderation.NewFilter(words)

	// Notification worker
	workers := river.NewWorkers()
	river.AddWorker(workers, notify.NewPaymentNoticeWorker(cfg.OpsWebhookURL, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	// Billing
	verifier := billing.NewVerifier(settingRepo)
	payoutClient := billing.NewStripePayoutClient(cfg.StripeAPIKey, cfg.Currency)
	reconciler := billing.NewReconciler(pool, taskRepo, userRepo, planRepo, payoutClient, payoutFailureRepo, riverNoticeQueue{riverClient}, logger)

	// Auth
	authSvc := auth.NewService(userRepo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, logger)

	// Handlers
	taskHandler := &handlers.TaskHandler{
		TaskRepo: taskRepo,
		UserRepo: userRepo,
		Screener: screener,
		Logger:   logger,
	}
	userHandler := &handlers.UserHandler{
		UserRepo: userRepo,
		PlanRepo: planRepo,
		Logger:   logger,
	}
	webhookHandler := &handlers.WebhookHandler{
		Verifier:   verifier,
		Reconciler: reconciler,
		Logger:     logger,
	}

	webhookLimiter := middleware.NewWebhookLimiter(cfg.WebhookRateMax, time.Minute, nil)

	apiRouter := router.New(authHandler, taskHandler, userHandler, webhookHandler, authSvc, webhookLimiter)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}).Handler(apiRouter)

	// Start River client (processes notification jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
