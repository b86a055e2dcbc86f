package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductCategory classifies non-lens stock.
type ProductCategory string

const (
	CategoryFrame     ProductCategory = "frame"
	CategoryAccessory ProductCategory = "accessory"
)

// Product is a frame or accessory catalog entry with simple piece stock.
type Product struct {
	ID           int             `json:"id"`
	StoreID      int             `json:"store_id"`
	Category     ProductCategory `json:"category"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Brand        *string         `json:"brand,omitempty"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Quantity     int             `json:"quantity"`
	ReorderLevel int             `json:"reorder_level"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProductInput holds the fields required to create a new product.
type ProductInput struct {
	Category     ProductCategory
	Code         string
	Name         string
	Brand        string
	SalePrice    decimal.Decimal
	ReorderLevel int
}

// ProductService manages frame and accessory stock.
type ProductService interface {
	CreateProduct(ctx context.Context, storeID int, input ProductInput) (*Product, error)
	// GetProducts returns active products, optionally limited to one category.
	GetProducts(ctx context.Context, storeID int, category *ProductCategory) ([]Product, error)
	GetProductByID(ctx context.Context, storeID, productID int) (*Product, error)
	// ReceiveStock adds pieces with weighted-average cost blending.
	ReceiveStock(ctx context.Context, storeID, productID, qty int, unitCost decimal.Decimal) (*Product, error)
	// DeductStockTx removes pieces within the caller's transaction.
	DeductStockTx(ctx context.Context, tx pgx.Tx, productID, qty int) error
	// RestoreStockTx adds pieces back within the caller's transaction.
	RestoreStockTx(ctx context.Context, tx pgx.Tx, productID, qty int) error
}

type productService struct {
	pool *pgxpool.Pool
}

// NewProductService constructs a ProductService backed by PostgreSQL.
func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = `id, store_id, category, code, name, brand,
	sale_price, unit_cost, quantity, reorder_level, is_active, created_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID, &p.StoreID, &p.Category, &p.Code, &p.Name, &p.Brand,
		&p.SalePrice, &p.UnitCost, &p.Quantity, &p.ReorderLevel, &p.IsActive, &p.CreatedAt,
	)
}

func (s *productService) CreateProduct(ctx context.Context, storeID int, input ProductInput) (*Product, error) {
	if input.Code == "" || input.Name == "" {
		return nil, fmt.Errorf("product code and name are required")
	}
	if input.Category != CategoryFrame && input.Category != CategoryAccessory {
		return nil, fmt.Errorf("invalid product category %q", input.Category)
	}

	var brand *string
	if input.Brand != "" {
		brand = &input.Brand
	}

	p := &Product{}
	err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (store_id, category, code, name, brand, sale_price, reorder_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		storeID, string(input.Category), input.Code, input.Name, brand, input.SalePrice, input.ReorderLevel,
	), p)
	if err != nil {
		return nil, fmt.Errorf("create product %q: %w", input.Code, err)
	}
	return p, nil
}

func (s *productService) GetProducts(ctx context.Context, storeID int, category *ProductCategory) ([]Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE store_id = $1 AND is_active = true`
	args := []any{storeID}
	if category != nil {
		query += " AND category = $2"
		args = append(args, string(*category))
	}
	query += " ORDER BY code"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *productService) GetProductByID(ctx context.Context, storeID, productID int) (*Product, error) {
	p := &Product{}
	err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE store_id = $1 AND id = $2`,
		storeID, productID,
	), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found for store %d", productID, storeID)
		}
		return nil, fmt.Errorf("fetch product %d: %w", productID, err)
	}
	return p, nil
}

func (s *productService) ReceiveStock(ctx context.Context, storeID, productID, qty int, unitCost decimal.Decimal) (*Product, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := receiveProductStockTx(ctx, tx, storeID, productID, qty, unitCost); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit product receipt: %w", err)
	}
	return s.GetProductByID(ctx, storeID, productID)
}

// receiveProductStockTx is the shared receipt path, also used by the purchase
// service inside its own transaction.
func receiveProductStockTx(ctx context.Context, tx pgx.Tx, storeID, productID, qty int, unitCost decimal.Decimal) error {
	if qty <= 0 {
		return fmt.Errorf("receive quantity must be positive, got %d", qty)
	}
	if unitCost.IsNegative() {
		return fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	var oldQty int
	var oldCost decimal.Decimal
	var code string
	err := tx.QueryRow(ctx, `
		SELECT quantity, unit_cost, code FROM products
		WHERE store_id = $1 AND id = $2
		FOR UPDATE`,
		storeID, productID,
	).Scan(&oldQty, &oldCost, &code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %d not found for store %d", productID, storeID)
		}
		return fmt.Errorf("lock product %d: %w", productID, err)
	}

	newQty := oldQty + qty
	newCost := unitCost
	if newQty > 0 {
		newCost = oldCost.Mul(decimal.NewFromInt(int64(oldQty))).
			Add(unitCost.Mul(decimal.NewFromInt(int64(qty)))).
			Div(decimal.NewFromInt(int64(newQty)))
	}

	_, err = tx.Exec(ctx, `
		UPDATE products SET quantity = $1, unit_cost = $2 WHERE id = $3
	`, newQty, newCost, productID)
	if err != nil {
		return fmt.Errorf("update product %s stock: %w", code, err)
	}
	return nil
}

func (s *productService) DeductStockTx(ctx context.Context, tx pgx.Tx, productID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("deduct quantity must be positive, got %d", qty)
	}

	var available int
	var code string
	err := tx.QueryRow(ctx,
		"SELECT quantity, code FROM products WHERE id = $1 FOR UPDATE", productID,
	).Scan(&available, &code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %d not found", productID)
		}
		return fmt.Errorf("lock product %d: %w", productID, err)
	}

	if available < qty {
		return fmt.Errorf("only %d piece(s) of %s available, requested %d", available, code, qty)
	}

	_, err = tx.Exec(ctx, "UPDATE products SET quantity = quantity - $1 WHERE id = $2", qty, productID)
	if err != nil {
		return fmt.Errorf("deduct product %s stock: %w", code, err)
	}
	return nil
}

func (s *productService) RestoreStockTx(ctx context.Context, tx pgx.Tx, productID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("restore quantity must be positive, got %d", qty)
	}
	tag, err := tx.Exec(ctx, "UPDATE products SET quantity = quantity + $1 WHERE id = $2", qty, productID)
	if err != nil {
		return fmt.Errorf("restore product %d stock: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d not found", productID)
	}
	return nil
}
