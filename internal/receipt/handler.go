package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/obs"
)

// Recorder persists receipts.
type Recorder interface {
	Record(ctx context.Context, rec Receipt) error
}

// Handler consumes receipt tasks on the worker.
type Handler struct {
	Recorder Recorder
	Logger   *zerolog.Logger
}

// ProcessTask implements asynq.Handler. Undecodable payloads are not retried.
func (h Handler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	if h.Recorder == nil {
		return errors.New("receipt handler: recorder not configured")
	}
	var rec Receipt
	if err := json.Unmarshal(task.Payload(), &rec); err != nil {
		obs.ObserveReceipt("record", "invalid")
		return fmt.Errorf("decode receipt: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.Recorder.Record(ctx, rec); err != nil {
		obs.ObserveReceipt("record", "error")
		return err
	}
	obs.ObserveReceipt("record", "ok")
	if h.Logger != nil {
		h.Logger.Debug().
			Str("receipt_id", rec.ID.String()).
			Int("line_items", len(rec.LineItems)).
			Str("total", rec.TotalSalePrice.String()).
			Msg("receipt recorded")
	}
	return nil
}
