package jobs

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// auditUniqueness keeps a manual trigger from stacking on a running audit.
const auditUniqueness = time.Hour

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueLedgerAudit schedules an out-of-band ledger audit. A second request
// within an hour is rejected with asynq.ErrDuplicateTask.
func (c *Client) EnqueueLedgerAudit(ctx context.Context, payload LedgerAuditPayload) (*asynq.TaskInfo, error) {
	task, err := NewLedgerAuditTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Unique(auditUniqueness),
	)
}

// Close releases client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
