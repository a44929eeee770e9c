package receipt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-kasir/internal/sales"
)

// TaskType identifies receipt tasks on the queue.
const TaskType = "sale:receipt"

// LineItem is a receipt line as sold.
type LineItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

// Receipt is the durable record of a completed sale.
type Receipt struct {
	ID             uuid.UUID       `json:"id"`
	SoldAt         time.Time       `json:"sold_at"`
	Discount       int64           `json:"discount"`
	TotalSalePrice decimal.Decimal `json:"total_sale_price"`
	LineItems      []LineItem      `json:"line_items"`
}

// FromSale builds a receipt with a fresh id for a processed sale.
func FromSale(sale sales.SaleResult, discount int64, soldAt time.Time) Receipt {
	items := make([]LineItem, 0, len(sale.LineItems))
	for _, item := range sale.LineItems {
		items = append(items, LineItem{
			ProductID: item.ID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Discount:  item.Discount,
		})
	}
	return Receipt{
		ID:             uuid.New(),
		SoldAt:         soldAt.UTC(),
		Discount:       discount,
		TotalSalePrice: sale.TotalSalePrice,
		LineItems:      items,
	}
}
