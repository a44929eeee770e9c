package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// SQLSTATEs raised when the products table refuses a row's values.
const (
	pgCheckViolation    = "23514"
	pgStringTooLong     = "22001"
	pgNumericOutOfRange = "22003"
)

// ErrRejected wraps constraint violations reported by the database on insert.
var ErrRejected = errors.New("product rejected by store")

// DBTX is the subset of pgxpool.Pool used by PostgresStore.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads and writes the products table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	getProductSQL    = `SELECT id, name, price::text FROM products WHERE id = $1`
	listProductsSQL  = `SELECT id, name, price::text FROM products ORDER BY id`
	insertProductSQL = `INSERT INTO products (name, price) VALUES ($1, $2::numeric) RETURNING id, name, price::text`
)

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx, getProductSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("get product %d: %w", id, ErrNotFound)
		}
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Insert implements Store.
func (s *PostgresStore) Insert(ctx context.Context, name string, price decimal.Decimal) (Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx, insertProductSQL, name, price.String()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && rejectedCode(pgErr.Code) {
			return Product{}, fmt.Errorf("%w: %s %s", ErrRejected, pgErr.Code, pgErr.ConstraintName)
		}
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// rejectedCode reports whether a SQLSTATE means the row itself was refused.
func rejectedCode(code string) bool {
	switch code {
	case pgCheckViolation, pgStringTooLong, pgNumericOutOfRange:
		return true
	}
	return false
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &price); err != nil {
		return Product{}, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = parsed
	return p, nil
}
