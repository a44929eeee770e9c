package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/resilience"
	"github.com/noah-isme/backend-kasir/internal/sales"
)

const (
	defaultQueue    = "receipts"
	defaultRetries  = 5
	defaultDeadline = 30 * time.Second
)

// Enqueuer is the subset of *asynq.Client used by Publisher.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher enqueues receipt tasks for completed sales. When a Breaker is set
// enqueues are skipped while it is open so an unavailable queue does not slow
// down sales.
type Publisher struct {
	Client  Enqueuer
	Queue   string
	Breaker *resilience.Breaker
	Now     func() time.Time
}

// PublishSale enqueues a receipt for sale under a fresh receipt id, which is
// also the asynq task id. asynq's own retries of that task reuse the id, so the
// worker's ON CONFLICT insert records it once. Each call is a new receipt;
// duplicate sales are kept out by the Idempotency-Key middleware upstream.
func (p Publisher) PublishSale(ctx context.Context, sale sales.SaleResult, discount int64) error {
	if p.Client == nil {
		return nil
	}
	rec := FromSale(sale, discount, p.now())
	payload, err := json.Marshal(rec)
	if err != nil {
		obs.ObserveReceipt("enqueue", "error")
		return fmt.Errorf("encode receipt: %w", err)
	}
	task := asynq.NewTask(TaskType, payload)
	enqueue := func(ctx context.Context) error {
		_, err := p.Client.EnqueueContext(ctx, task,
			asynq.Queue(p.queue()),
			asynq.TaskID(rec.ID.String()),
			asynq.MaxRetry(defaultRetries),
			asynq.Timeout(defaultDeadline),
		)
		return err
	}
	if p.Breaker != nil {
		err = p.Breaker.Do(ctx, enqueue)
	} else {
		err = enqueue(ctx)
	}
	if errors.Is(err, resilience.ErrOpenCircuit) {
		obs.ObserveReceipt("enqueue", "skipped")
		return fmt.Errorf("enqueue receipt %s: %w", rec.ID, err)
	}
	if err != nil {
		obs.ObserveReceipt("enqueue", "error")
		return fmt.Errorf("enqueue receipt %s: %w", rec.ID, err)
	}
	obs.ObserveReceipt("enqueue", "ok")
	return nil
}

func (p Publisher) queue() string {
	if p.Queue == "" {
		return defaultQueue
	}
	return p.Queue
}

func (p Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
