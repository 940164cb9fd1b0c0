package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailmind_backend/internal/campaigns"
	"mailmind_backend/internal/conversations"
	"mailmind_backend/internal/crm"
	"mailmind_backend/internal/email"
	"mailmind_backend/internal/events"
	"mailmind_backend/internal/handover"
	apphttp "mailmind_backend/internal/http"
	"mailmind_backend/internal/http/router"
	"mailmind_backend/internal/leads"
	"mailmind_backend/internal/scheduler"
	"mailmind_backend/internal/webhook"
	"mailmind_backend/migrations"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/db"
	"mailmind_backend/platform/logger"
	"mailmind_backend/platform/retry"
	"mailmind_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := retry.Do(ctx, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := retry.Do(ctx, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	campaignsModule := campaigns.NewModule(pool, val)
	leadsModule := leads.NewModule(pool, eventBus, val, log)
	conversationsModule := conversations.NewModule(pool)

	handoverModule, err := handover.NewModule(
		pool,
		conversationsModule.Repository(),
		campaignsModule.Repository(),
		leadsModule.Service(),
		sender,
		cfg,
		eventBus,
		log,
	)
	if err != nil {
		log.Error("failed to initialize handover module", "error", err)
		panic("failed to initialize handover module: " + err.Error())
	}

	// CRM relay and notification redelivery go through the task queue;
	// without Redis handovers still work, they just lose those two paths.
	schedClient, closeSched := initSchedulerClient(cfg, log)
	if closeSched != nil {
		defer closeSched()
	}
	if schedClient != nil {
		handoverModule.SetNotificationRetrier(schedClient)
		if cfg.IsCRMEnabled() {
			crm.NewRelay(schedClient, log).RegisterHandlers(eventBus)
		}
	}

	webhookModule := webhook.NewModule(
		campaignsModule.Repository(),
		leadsModule.Service(),
		conversationsModule.Repository(),
		handoverModule.Service(),
		cfg,
		eventBus,
		log,
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			campaignsModule,
			leadsModule,
			conversationsModule,
			handoverModule,
			webhookModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSchedulerClient(cfg *config.Config, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; task queue disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}
