package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"mailmind_backend/internal/crm"
	"mailmind_backend/internal/email"
	"mailmind_backend/internal/handover/domain"
	"mailmind_backend/internal/handover/notifier"
	"mailmind_backend/internal/handover/repository"
	"mailmind_backend/internal/leads"
	"mailmind_backend/platform/config"
	"mailmind_backend/platform/logger"
)

// WorkerConfig combines the config interfaces the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
	config.HandoverConfig
}

// Worker consumes queued tasks; runs as its own process.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	briefs   *repository.Repository
	leads    *leads.Repository
	notifier *notifier.Notifier
	crm      *crm.Client
	log      *logger.Logger
}

func NewWorker(cfg WorkerConfig, pool *pgxpool.Pool, sender email.Sender, crmClient *crm.Client, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		briefs:   repository.NewRepository(pool),
		leads:    leads.NewRepository(pool),
		notifier: notifier.New(sender, cfg, log),
		crm:      crmClient,
		log:      log,
	}

	mux.HandleFunc(TaskCRMPushHandover, w.handleCRMPushHandover)
	mux.HandleFunc(TaskCRMLeadSync, w.handleCRMLeadSync)
	mux.HandleFunc(TaskNotificationRetry, w.handleNotificationRetry)

	return w, nil
}

func (w *Worker) handleCRMPushHandover(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCRMPushHandoverPayload(task)
	if err != nil {
		return err
	}

	briefID, err := uuid.Parse(payload.BriefID)
	if err != nil {
		return err
	}

	stored, err := w.briefs.GetByID(ctx, briefID)
	if err != nil {
		return err
	}

	return w.crm.Push(ctx, crm.PayloadFromStored(stored))
}

func (w *Worker) handleCRMLeadSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCRMLeadSyncPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	lead, err := w.leads.GetByID(ctx, leadID)
	if err != nil {
		return err
	}

	return w.crm.PushLead(ctx, crm.LeadPayloadFrom(lead))
}

func (w *Worker) handleNotificationRetry(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseNotificationRetryPayload(task)
	if err != nil {
		return err
	}

	briefID, err := uuid.Parse(payload.BriefID)
	if err != nil {
		return err
	}

	stored, err := w.briefs.GetByID(ctx, briefID)
	if err != nil {
		return err
	}
	if stored.DeliveryStatus == domain.DeliverySent {
		return nil
	}

	// The recipient was resolved when the brief was first delivered; reuse it
	// so a retried brief can't land on a different desk.
	routing := notifier.CampaignRouting{Recipient: stored.Recipient}
	status := w.notifier.Deliver(ctx, routing, stored.Brief, stored.SalesBrief)

	if err := w.briefs.SetDeliveryOutcome(ctx, stored.ID, status, stored.Recipient); err != nil {
		w.log.DatabaseError("record delivery outcome", err)
	}

	if status != domain.DeliverySent {
		return fmt.Errorf("notification redelivery failed for brief %s", stored.ID)
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
