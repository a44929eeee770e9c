package sales

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/common"
)

type countingCatalog struct {
	inner   Catalog
	lookups []int64
	err     error
}

func (c *countingCatalog) Lookup(ctx context.Context, id int64) (catalog.Product, error) {
	c.lookups = append(c.lookups, id)
	if c.err != nil {
		return catalog.Product{}, c.err
	}
	return c.inner.Lookup(ctx, id)
}

func newCatalog(t *testing.T) *countingCatalog {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: catalog.NewMemoryStore(catalog.InitialProducts()...)})
	require.NoError(t, err)
	return &countingCatalog{inner: svc}
}

func newTestService(t *testing.T, c Catalog) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{Catalog: c})
	require.NoError(t, err)
	return svc
}

// decodeBody mirrors how the HTTP layer hands bodies to the service.
func decodeBody(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	require.NoError(t, dec.Decode(&body))
	return body
}

func requireAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, message, appErr.Message)
}

func TestProcessSale(t *testing.T) {
	svc := newTestService(t, newCatalog(t))

	result, err := svc.ProcessSale(context.Background(), decodeBody(t,
		`{"line_items":[{"id":1,"quantity":2},{"id":2,"quantity":1}],"discount":10}`))
	require.NoError(t, err)

	require.Len(t, result.LineItems, 2)
	require.Equal(t, "200", result.LineItems[0].Price.String())
	require.Equal(t, "49.99", result.LineItems[1].Price.String())
	require.Equal(t, "5", result.LineItems[0].Discount.String())
	require.Equal(t, "5", result.LineItems[1].Discount.String())
	require.Equal(t, "249.99", result.TotalSalePrice.String())

	payload, err := json.Marshal(result)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"line_items": [
			{"id": 1, "quantity": 2, "price": 200, "discount": 5},
			{"id": 2, "quantity": 1, "price": 49.99, "discount": 5}
		],
		"total_sale_price": 249.99
	}`, string(payload))
}

func TestProcessSaleSingleItemTakesWholeDiscount(t *testing.T) {
	svc := newTestService(t, newCatalog(t))

	result, err := svc.ProcessSale(context.Background(), decodeBody(t,
		`{"line_items":[{"id":3,"quantity":4}],"discount":10}`))
	require.NoError(t, err)
	require.Len(t, result.LineItems, 1)
	require.Equal(t, "10", result.LineItems[0].Discount.String())
	require.Equal(t, "80", result.TotalSalePrice.String())
}

func TestProcessSaleKeepsInputOrder(t *testing.T) {
	c := newCatalog(t)
	svc := newTestService(t, c)

	result, err := svc.ProcessSale(context.Background(), decodeBody(t,
		`{"line_items":[{"id":3,"quantity":1},{"id":1,"quantity":1},{"id":2,"quantity":1}],"discount":0}`))
	require.NoError(t, err)
	require.Equal(t, []int64{3, 1, 2}, c.lookups)
	for i, id := range []int64{3, 1, 2} {
		require.Equal(t, id, result.LineItems[i].ID)
	}
}

func TestProcessSaleValidation(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		code    string
		message string
	}{
		{name: "missing line_items", body: `{"discount":10}`, code: common.CodeValidation, message: "Missing 'line_items' field."},
		{name: "missing discount", body: `{"line_items":[{"id":1,"quantity":1}]}`, code: common.CodeValidation, message: "Missing 'discount' field."},
		{name: "both missing reports line_items", body: `{}`, code: common.CodeValidation, message: "Missing 'line_items' field."},
		{name: "decimal discount", body: `{"line_items":[{"id":1,"quantity":1}],"discount":2.5}`, code: common.CodeSchema, message: "'discount' must be an int."},
		{name: "string discount", body: `{"line_items":[{"id":1,"quantity":1}],"discount":"10"}`, code: common.CodeSchema, message: "'discount' must be an int."},
		{name: "discount checked before line_items type", body: `{"line_items":"x","discount":"10"}`, code: common.CodeSchema, message: "'discount' must be an int."},
		{name: "line_items not a list", body: `{"line_items":{"id":1},"discount":10}`, code: common.CodeSchema, message: "'line_items' must be a list."},
		{name: "empty line_items", body: `{"line_items":[],"discount":10}`, code: common.CodeValidation, message: "Request must include at least one line item."},
		{name: "negative discount", body: `{"line_items":[{"id":1,"quantity":1}],"discount":-1}`, code: common.CodeValidation, message: "'discount' must be >= 0."},
		{name: "string quantity", body: `{"line_items":[{"id":1,"quantity":"2"}],"discount":10}`, code: common.CodeSchema, message: "A product's ID and quantity must be integers."},
		{name: "decimal id", body: `{"line_items":[{"id":1.0,"quantity":2}],"discount":10}`, code: common.CodeSchema, message: "A product's ID and quantity must be integers."},
		{name: "entry not an object", body: `{"line_items":[7],"discount":10}`, code: common.CodeSchema, message: "A product's ID and quantity must be integers."},
		{name: "zero quantity", body: `{"line_items":[{"id":1,"quantity":0}],"discount":10}`, code: common.CodeValidation, message: "Each product must have a positive purchase quantity."},
		{name: "negative quantity", body: `{"line_items":[{"id":1,"quantity":-3}],"discount":10}`, code: common.CodeValidation, message: "Each product must have a positive purchase quantity."},
		{name: "discount beyond int64", body: `{"line_items":[{"id":1,"quantity":1}],"discount":100000000000000000000}`, code: common.CodeValidation, message: "'discount' is too large."},
		{name: "negative discount beyond int64", body: `{"line_items":[{"id":1,"quantity":1}],"discount":-100000000000000000000}`, code: common.CodeValidation, message: "'discount' must be >= 0."},
		{name: "id beyond int64", body: `{"line_items":[{"id":100000000000000000000,"quantity":1}],"discount":10}`, code: common.CodeNotFound, message: "Product with id 100000000000000000000 not found."},
		{name: "quantity beyond int64", body: `{"line_items":[{"id":1,"quantity":100000000000000000000}],"discount":10}`, code: common.CodeValidation, message: "Each product's purchase quantity is too large."},
		{name: "unknown product", body: `{"line_items":[{"id":1,"quantity":1},{"id":99,"quantity":1}],"discount":10}`, code: common.CodeNotFound, message: "Product with id 99 not found."},
	}
	svc := newTestService(t, newCatalog(t))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ProcessSale(context.Background(), decodeBody(t, tc.body))
			requireAppError(t, err, tc.code, tc.message)
		})
	}
}

func TestProcessSaleMissingBody(t *testing.T) {
	svc := newTestService(t, newCatalog(t))
	_, err := svc.ProcessSale(context.Background(), nil)
	requireAppError(t, err, common.CodeValidation, "Request body is missing.")
}

func TestProcessSaleStopsAtFirstFailingItem(t *testing.T) {
	c := newCatalog(t)
	svc := newTestService(t, c)

	_, err := svc.ProcessSale(context.Background(), decodeBody(t,
		`{"line_items":[{"id":42,"quantity":1},{"id":1,"quantity":1}],"discount":0}`))
	requireAppError(t, err, common.CodeNotFound, "Product with id 42 not found.")
	require.Equal(t, []int64{42}, c.lookups)
}

func TestProcessSalePropagatesInfrastructureErrors(t *testing.T) {
	boom := errors.New("connection reset")
	svc := newTestService(t, &countingCatalog{err: boom})

	_, err := svc.ProcessSale(context.Background(), decodeBody(t,
		`{"line_items":[{"id":1,"quantity":1}],"discount":0}`))
	require.ErrorIs(t, err, boom)
	require.False(t, common.IsAppError(err))
}

func TestNewServiceRequiresCatalog(t *testing.T) {
	_, err := NewService(ServiceConfig{})
	require.Error(t, err)
}
