package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/common"
)

// Catalog resolves product ids. catalog.Service satisfies it.
type Catalog interface {
	Lookup(ctx context.Context, id int64) (catalog.Product, error)
}

// Processor prices individual line items against the catalog.
type Processor struct {
	catalog Catalog
}

// NewProcessor constructs a Processor.
func NewProcessor(c Catalog) *Processor {
	return &Processor{catalog: c}
}

// ProcessLineItem validates one raw {"id", "quantity"} entry and prices it.
func (p *Processor) ProcessLineItem(ctx context.Context, raw any) (PricedLineItem, error) {
	item, _ := raw.(map[string]any)
	id, idErr := common.ParseInt(item["id"])
	quantity, qtyErr := common.ParseInt(item["quantity"])
	if errors.Is(idErr, common.ErrNotInt) || errors.Is(qtyErr, common.ErrNotInt) {
		return PricedLineItem{}, common.Schema(msgLineItemTypes)
	}
	if quantity <= 0 {
		return PricedLineItem{}, common.Validation(msgQuantityPositive)
	}
	if qtyErr != nil {
		return PricedLineItem{}, common.Validation(msgQuantityRange)
	}
	// No catalog id lies outside int64.
	if idErr != nil {
		return PricedLineItem{}, common.NotFound(fmt.Sprintf(msgProductNotFound, item["id"]), catalog.ErrNotFound)
	}

	product, err := p.catalog.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return PricedLineItem{}, common.NotFound(fmt.Sprintf(msgProductNotFound, id), err)
		}
		return PricedLineItem{}, fmt.Errorf("lookup product %d: %w", id, err)
	}
	return PricedLineItem{
		ID:       id,
		Quantity: quantity,
		Price:    product.Price.Mul(decimal.NewFromInt(quantity)),
	}, nil
}
