package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"mailmind_backend/platform/config"
)

const crmPushMaxRetry = 5

// Client enqueues background tasks for the worker process.
type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// PushHandover queues a CRM relay for a stored brief. Failed pushes are
// retried by the queue, not the publishing request.
func (c *Client) PushHandover(ctx context.Context, briefID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewCRMPushHandoverTask(CRMPushHandoverPayload{BriefID: briefID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(crmPushMaxRetry),
		asynq.Timeout(30*time.Second),
	)
	return err
}

// SyncLead queues a CRM sync for a freshly created lead.
func (c *Client) SyncLead(ctx context.Context, leadID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewCRMLeadSyncTask(CRMLeadSyncPayload{LeadID: leadID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(crmPushMaxRetry),
		asynq.Timeout(30*time.Second),
	)
	return err
}

// RetryNotification queues a redelivery for a brief whose notification email
// failed. The in-request send already did its bounded retry; this path covers
// longer provider outages.
func (c *Client) RetryNotification(ctx context.Context, briefID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewNotificationRetryTask(NotificationRetryPayload{BriefID: briefID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(crmPushMaxRetry),
		asynq.ProcessIn(time.Minute),
	)
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
