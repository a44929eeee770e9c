package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// ErrNotFound is returned by stores when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// Product is an immutable catalog entry.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type productJSON struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// MarshalJSON renders the price as a JSON number.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(productJSON{ID: p.ID, Name: p.Name, Price: common.Number(p.Price)})
}

// Store persists products. Get must return a fully written product or an
// error wrapping ErrNotFound, never a partial record.
type Store interface {
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Insert(ctx context.Context, name string, price decimal.Decimal) (Product, error)
}

// InitialProducts is the catalog a fresh installation starts with.
func InitialProducts() []Product {
	return []Product{
		{ID: 1, Name: "Chrome Toaster", Price: decimal.NewFromInt(100)},
		{ID: 2, Name: "Copper Kettle", Price: decimal.RequireFromString("49.99")},
		{ID: 3, Name: "Mixing Bowl", Price: decimal.NewFromInt(20)},
	}
}

// SeedIfEmpty inserts InitialProducts when the store holds no products yet.
// It reports whether anything was inserted.
func SeedIfEmpty(ctx context.Context, store Store) (bool, error) {
	existing, err := store.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, p := range InitialProducts() {
		if _, err := store.Insert(ctx, p.Name, p.Price); err != nil {
			return false, err
		}
	}
	return true, nil
}
