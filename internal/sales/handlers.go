package sales

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// ReceiptPublisher hands completed sales to background processing.
type ReceiptPublisher interface {
	PublishSale(ctx context.Context, sale SaleResult, discount int64) error
}

// Handler exposes the sales endpoint.
type Handler struct {
	service  *Service
	receipts ReceiptPublisher
	logger   zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service  *Service
	Receipts ReceiptPublisher
	Logger   *zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Handler{service: cfg.Service, receipts: cfg.Receipts, logger: logger}
}

// Create handles POST /sales.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "sales service not configured")
		return
	}
	raw, err := common.DecodeRaw(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	var body map[string]any
	if raw != nil {
		obj, ok := raw.(map[string]any)
		if !ok {
			common.WriteError(w, common.Schema("Request body must be a JSON object."))
			return
		}
		body = obj
	}

	result, err := h.service.ProcessSale(r.Context(), body)
	if err != nil {
		if !common.IsAppError(err) {
			h.logger.Error().Err(err).Msg("process sale")
		}
		common.WriteError(w, err)
		return
	}

	if h.receipts != nil {
		discount, _ := common.AsInt(body["discount"])
		if err := h.receipts.PublishSale(r.Context(), result, discount); err != nil {
			h.logger.Warn().Err(err).Msg("enqueue sale receipt")
		}
	}
	common.JSON(w, http.StatusOK, result)
}
