package sales

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// PricedLineItem is a requested line item resolved against the catalog.
// Price is quantity times the product's unit price.
type PricedLineItem struct {
	ID       int64
	Quantity int64
	Price    decimal.Decimal
}

// DiscountedLineItem carries the line's share of the sale discount. The
// discount is informational and is not subtracted from Price.
type DiscountedLineItem struct {
	PricedLineItem
	Discount decimal.Decimal
}

// SaleResult is the outcome of a processed sale.
type SaleResult struct {
	LineItems      []DiscountedLineItem
	TotalSalePrice decimal.Decimal
}

type lineItemJSON struct {
	ID       int64       `json:"id"`
	Quantity int64       `json:"quantity"`
	Price    json.Number `json:"price"`
	Discount json.Number `json:"discount"`
}

type saleResultJSON struct {
	LineItems      []lineItemJSON `json:"line_items"`
	TotalSalePrice json.Number    `json:"total_sale_price"`
}

// MarshalJSON renders amounts as JSON numbers.
func (r SaleResult) MarshalJSON() ([]byte, error) {
	out := saleResultJSON{
		LineItems:      make([]lineItemJSON, 0, len(r.LineItems)),
		TotalSalePrice: common.Number(r.TotalSalePrice),
	}
	for _, item := range r.LineItems {
		out.LineItems = append(out.LineItems, lineItemJSON{
			ID:       item.ID,
			Quantity: item.Quantity,
			Price:    common.Number(item.Price),
			Discount: common.Number(item.Discount),
		})
	}
	return json.Marshal(out)
}
