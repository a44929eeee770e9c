package sales

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
)

var tracer = otel.Tracer("kasir/sales")

// Service validates sale requests, prices every line item and spreads the
// discount across them.
type Service struct {
	processor *Processor
	logger    zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Catalog Catalog
	Logger  *zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("sales: catalog is required")
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "sales").Logger()
	}
	return &Service{processor: NewProcessor(cfg.Catalog), logger: logger}, nil
}

// ProcessSale turns a decoded request body into a priced, discounted sale.
// The first invalid field or line item aborts the whole sale.
func (s *Service) ProcessSale(ctx context.Context, body map[string]any) (SaleResult, error) {
	ctx, span := tracer.Start(ctx, "sales.ProcessSale")
	defer span.End()

	rawItems, discount, err := validateSale(body)
	if err != nil {
		obs.ObserveSale(outcome(err), 0, 0)
		return SaleResult{}, err
	}
	span.SetAttributes(
		attribute.Int("sale.line_items", len(rawItems)),
		attribute.Int64("sale.discount", discount),
	)

	priced := make([]PricedLineItem, 0, len(rawItems))
	total := decimal.Zero
	for _, raw := range rawItems {
		item, err := s.processor.ProcessLineItem(ctx, raw)
		if err != nil {
			span.RecordError(err)
			obs.ObserveSale(outcome(err), 0, 0)
			if !common.IsAppError(err) {
				s.logger.Error().Err(err).Msg("price line item")
			}
			return SaleResult{}, err
		}
		priced = append(priced, item)
		total = total.Add(item.Price)
	}

	result := SaleResult{
		LineItems:      ApplyDiscount(priced, decimal.NewFromInt(discount)),
		TotalSalePrice: total,
	}
	amount, _ := total.Float64()
	obs.ObserveSale("ok", len(priced), amount)
	s.logger.Debug().
		Int("line_items", len(priced)).
		Str("total", total.String()).
		Int64("discount", discount).
		Msg("sale processed")
	return result, nil
}

func validateSale(body map[string]any) ([]any, int64, error) {
	if body == nil {
		return nil, 0, common.Validation(msgBodyMissing)
	}
	rawItems, ok := body["line_items"]
	if !ok {
		return nil, 0, common.Validation(msgLineItemsMissing)
	}
	rawDiscount, ok := body["discount"]
	if !ok {
		return nil, 0, common.Validation(msgDiscountMissing)
	}
	discount, err := common.ParseInt(rawDiscount)
	if errors.Is(err, common.ErrNotInt) {
		return nil, 0, common.Schema(msgDiscountType)
	}
	items, ok := rawItems.([]any)
	if !ok {
		return nil, 0, common.Schema(msgLineItemsType)
	}
	if len(items) == 0 {
		return nil, 0, common.Validation(msgLineItemsEmpty)
	}
	if discount < 0 {
		return nil, 0, common.Validation(msgDiscountNegative)
	}
	if err != nil {
		return nil, 0, common.Validation(msgDiscountRange)
	}
	return items, discount, nil
}

func outcome(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case common.CodeValidation:
			return "validation_error"
		case common.CodeSchema:
			return "schema_error"
		case common.CodeNotFound:
			return "not_found"
		}
	}
	return "error"
}
