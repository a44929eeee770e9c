package receipt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool used by PostgresRecorder.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRecorder persists receipts to the sale_receipts table.
type PostgresRecorder struct {
	db DBTX
}

// NewPostgresRecorder constructs a PostgresRecorder.
func NewPostgresRecorder(db DBTX) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

const insertReceiptSQL = `INSERT INTO sale_receipts (id, total_sale_price, discount, line_items, sold_at)
VALUES ($1, $2::numeric, $3, $4::jsonb, $5)
ON CONFLICT (id) DO NOTHING`

// Record stores rec. Redelivered receipts are ignored.
func (s *PostgresRecorder) Record(ctx context.Context, rec Receipt) error {
	items, err := json.Marshal(rec.LineItems)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	if _, err := s.db.Exec(ctx, insertReceiptSQL, rec.ID, rec.TotalSalePrice.String(), rec.Discount, string(items), rec.SoldAt); err != nil {
		return fmt.Errorf("insert receipt %s: %w", rec.ID, err)
	}
	return nil
}
