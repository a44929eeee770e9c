package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
)

const maxNameLength = 100

// maxPrice is the largest value the products.price NUMERIC(12,2) column holds.
var maxPrice = decimal.RequireFromString("9999999999.99")

var tracer = otel.Tracer("kasir/catalog")

// Service exposes catalog lookups to the sales engine and product management
// to the HTTP layer. Products never change after creation, so single product
// lookups are cached without invalidation.
type Service struct {
	store  Store
	cache  *Cache
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store  Store
	Cache  *Cache
	Logger *zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "catalog").Logger()
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, logger: logger}, nil
}

// Lookup returns the product with id. Absent products yield an error wrapping ErrNotFound.
func (s *Service) Lookup(ctx context.Context, id int64) (Product, error) {
	ctx, span := tracer.Start(ctx, "catalog.Lookup")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	key := productCacheKey(id)
	var cached Product
	ok, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("read product cache")
	}
	if ok {
		obs.ObserveCatalogCache("hit")
		return cached, nil
	}
	if s.cache != nil {
		obs.ObserveCatalogCache("miss")
	}

	product, err := s.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return Product{}, err
	}
	if err := s.cache.SetJSON(ctx, key, product); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", id).Msg("write product cache")
	}
	return product, nil
}

// ListAll returns every product ordered by id.
func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	ctx, span := tracer.Start(ctx, "catalog.ListAll")
	defer span.End()

	var cached []Product
	ok, err := s.cache.GetJSON(ctx, listCacheKey, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Msg("read product list cache")
	}
	if ok {
		return cached, nil
	}
	products, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, listCacheKey, products); err != nil {
		s.logger.Warn().Err(err).Msg("write product list cache")
	}
	return products, nil
}

// Create validates a raw creation payload and stores the new product.
// Validation failures are AppErrors rendered with 422.
func (s *Service) Create(ctx context.Context, body map[string]any) (Product, error) {
	ctx, span := tracer.Start(ctx, "catalog.Create")
	defer span.End()

	name, price, err := validateCreate(body)
	if err != nil {
		return Product{}, err
	}
	product, err := s.store.Insert(ctx, name, price)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrRejected) {
			return Product{}, unprocessable(common.Validation("Product was rejected by the catalog."))
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	if err := s.cache.Delete(ctx, listCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("invalidate product list cache")
	}
	s.logger.Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("product created")
	return product, nil
}

func validateCreate(body map[string]any) (string, decimal.Decimal, error) {
	rawName, hasName := body["name"]
	rawPrice, hasPrice := body["price"]
	if len(body) == 0 || !hasName || !hasPrice {
		return "", decimal.Zero, unprocessable(common.Validation("Request must include name and price."))
	}
	if len(body) > 2 {
		return "", decimal.Zero, unprocessable(common.Validation("Request must only include name and price."))
	}
	name, ok := rawName.(string)
	if !ok {
		return "", decimal.Zero, unprocessable(common.Schema("'name' must be of type string."))
	}
	if name == "" {
		return "", decimal.Zero, unprocessable(common.Validation("'name' must not be empty."))
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", decimal.Zero, unprocessable(common.Validation(fmt.Sprintf("'name' must be at most %d characters.", maxNameLength)))
	}
	price, ok := common.AsDecimal(rawPrice)
	if !ok {
		return "", decimal.Zero, unprocessable(common.Schema("'price' must be of type float or int."))
	}
	if !price.IsPositive() {
		return "", decimal.Zero, unprocessable(common.Validation("'price' must be > 0."))
	}
	if !price.Equal(price.Round(2)) {
		return "", decimal.Zero, unprocessable(common.Validation("'price' must have at most 2 decimal places."))
	}
	if price.GreaterThan(maxPrice) {
		return "", decimal.Zero, unprocessable(common.Validation(fmt.Sprintf("'price' must be <= %s.", maxPrice.StringFixed(2))))
	}
	return name, price, nil
}

func unprocessable(err *common.AppError) *common.AppError {
	return err.WithStatus(http.StatusUnprocessableEntity)
}
