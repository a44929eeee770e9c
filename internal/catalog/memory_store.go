package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps products in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]Product
	nextID   int64
}

// NewMemoryStore returns a store pre-populated with products. Ids of later
// inserts continue after the highest seeded id.
func NewMemoryStore(products ...Product) *MemoryStore {
	s := &MemoryStore{products: make(map[int64]Product, len(products)), nextID: 1}
	for _, p := range products {
		s.products[p.ID] = p
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, fmt.Errorf("get product %d: %w", id, ErrNotFound)
	}
	return p, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, name string, price decimal.Decimal) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Product{ID: s.nextID, Name: name, Price: price}
	s.products[p.ID] = p
	s.nextID++
	return p, nil
}
