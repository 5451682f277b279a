package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/receipt"
)

// Task names
const (
	TypeValidateReceipts = "receipts:validate"
	TypeValidateOne      = "receipts:validate_one"
)

// ReceiptValidator checks a stored receipt against the payment API
type ReceiptValidator interface {
	ValidateReceipt(ctx context.Context, receipt string) (bool, error)
}

// TaskHandlers holds dependencies for all task handlers.
type TaskHandlers struct {
	receipts  *receipt.Store
	validator ReceiptValidator
	logger    *zap.Logger
}

// NewTaskHandlers creates task handlers over the receipt store and API client.
func NewTaskHandlers(receipts *receipt.Store, validator ReceiptValidator, logger *zap.Logger) *TaskHandlers {
	return &TaskHandlers{
		receipts:  receipts,
		validator: validator,
		logger:    logger,
	}
}

// RegisterHandlers registers all task handlers with the server mux.
func RegisterHandlers(mux *asynq.ServeMux, h *TaskHandlers) {
	mux.HandleFunc(TypeValidateReceipts, h.HandleValidateReceipts)
	mux.HandleFunc(TypeValidateOne, h.HandleValidateOne)
}

// RegisterScheduledTasks registers all scheduled (cron) tasks
func RegisterScheduledTasks(scheduler *asynq.Scheduler, logger *zap.Logger) {
	// Revalidate stored receipts hourly
	_, err := scheduler.Register("0 * * * *", asynq.NewTask(TypeValidateReceipts, nil))
	if err != nil {
		logger.Error("Failed to schedule receipt revalidation", zap.Error(err))
	}
}

// HandleValidateReceipts revalidates every stored receipt against the API.
// Invalid receipts are reported, never removed; entitlement decisions belong
// to the caller.
func (h *TaskHandlers) HandleValidateReceipts(ctx context.Context, t *asynq.Task) error {
	receipts, err := h.receipts.Receipts(ctx)
	if err != nil {
		h.logger.Error("Failed to load stored receipts", zap.Error(err))
		return err
	}

	h.logger.Info("Revalidating stored receipts", zap.Int("count", len(receipts)))

	for _, r := range receipts {
		valid, err := h.validator.ValidateReceipt(ctx, r)
		if err != nil {
			h.logger.Warn("Receipt validation query failed", zap.Error(err))
			continue
		}
		if !valid {
			h.logger.Warn("Stored receipt is no longer valid")
		}
	}

	return nil
}

// HandleValidateOne revalidates a single receipt from the task payload
func (h *TaskHandlers) HandleValidateOne(ctx context.Context, t *asynq.Task) error {
	var payload struct {
		Receipt string `json:"receipt"`
	}
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	valid, err := h.validator.ValidateReceipt(ctx, payload.Receipt)
	if err != nil {
		return err
	}

	h.logger.Info("Receipt validated", zap.Bool("valid", valid))
	return nil
}
