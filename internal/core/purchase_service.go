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

type purchaseService struct {
	pool   *pgxpool.Pool
	lenses LensService
}

// NewPurchaseService constructs a PurchaseService backed by PostgreSQL.
func NewPurchaseService(pool *pgxpool.Pool, lenses LensService) PurchaseService {
	return &purchaseService{pool: pool, lenses: lenses}
}

func (s *purchaseService) CreatePurchase(ctx context.Context, storeID int, input PurchaseInput) (*Purchase, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("purchase must have at least one line")
	}
	if input.AmountPaid.IsNegative() {
		return nil, fmt.Errorf("amount paid cannot be negative, got %s", input.AmountPaid)
	}
	purchaseDate := input.PurchaseDate
	if purchaseDate == "" {
		purchaseDate = time.Now().Format("2006-01-02")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var vendorType PartyType
	err = tx.QueryRow(ctx,
		"SELECT party_type FROM parties WHERE store_id = $1 AND id = $2 AND is_active = true",
		storeID, input.VendorID,
	).Scan(&vendorType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vendor %d not found for store %d", input.VendorID, storeID)
		}
		return nil, fmt.Errorf("resolve vendor: %w", err)
	}
	if vendorType != PartyVendor {
		return nil, fmt.Errorf("party %d is a %s, not a vendor", input.VendorID, vendorType)
	}

	number, err := NextDocumentNumber(ctx, tx, storeID, DocPurchase)
	if err != nil {
		return nil, err
	}

	type preparedLine struct {
		input     PurchaseLineInput
		desc      string
		lineTotal decimal.Decimal
	}

	var prepared []preparedLine
	total := decimal.Zero
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive, got %d", i+1, line.Quantity)
		}
		if line.UnitCost.IsNegative() {
			return nil, fmt.Errorf("line %d: unit cost cannot be negative, got %s", i+1, line.UnitCost)
		}

		var p preparedLine
		p.input = line

		switch line.Kind {
		case LineLensPower:
			lens, err := s.lenses.GetLensByID(ctx, storeID, line.LensID)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			rec, err := receivePowerStockTx(ctx, tx, lens, line.PowerKey, line.Quantity, line.UnitCost)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			p.desc = line.Description
			if p.desc == "" {
				p.desc = fmt.Sprintf("%s %s", lens.Name, rec.PowerKey)
			}
			p.input.PowerKey = rec.PowerKey

		case LineProduct:
			if err := receiveProductStockTx(ctx, tx, storeID, line.ProductID, line.Quantity, line.UnitCost); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			p.desc = line.Description
			if p.desc == "" {
				var name string
				if err := tx.QueryRow(ctx, "SELECT name FROM products WHERE id = $1", line.ProductID).Scan(&name); err != nil {
					return nil, fmt.Errorf("line %d: resolve product name: %w", i+1, err)
				}
				p.desc = name
			}

		default:
			return nil, fmt.Errorf("line %d: invalid line kind %q", i+1, line.Kind)
		}

		p.lineTotal = line.UnitCost.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(p.lineTotal)
		prepared = append(prepared, p)
	}

	if input.AmountPaid.GreaterThan(total) {
		return nil, fmt.Errorf("amount paid %s exceeds purchase total %s", input.AmountPaid, total)
	}

	var purchaseID int
	err = tx.QueryRow(ctx, `
		INSERT INTO purchases (store_id, purchase_number, vendor_id, purchase_date, total_amount, amount_paid, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, storeID, number, input.VendorID, purchaseDate, total, input.AmountPaid, input.Notes).Scan(&purchaseID)
	if err != nil {
		return nil, fmt.Errorf("insert purchase %s: %w", number, err)
	}

	for i, p := range prepared {
		var lensID, productID *int
		var powerKey *string
		if p.input.Kind == LineLensPower {
			lensID = &p.input.LensID
			powerKey = &p.input.PowerKey
		} else {
			productID = &p.input.ProductID
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO purchase_lines (purchase_id, line_number, kind, lens_id, power_key, product_id,
			                            description, quantity, unit_cost, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, purchaseID, i+1, string(p.input.Kind), lensID, powerKey, productID,
			p.desc, p.input.Quantity, p.input.UnitCost, p.lineTotal)
		if err != nil {
			return nil, fmt.Errorf("insert line %d of purchase %s: %w", i+1, number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase %s: %w", number, err)
	}

	return s.GetPurchase(ctx, storeID, purchaseID)
}

func (s *purchaseService) GetPurchase(ctx context.Context, storeID, purchaseID int) (*Purchase, error) {
	p := &Purchase{}
	err := s.pool.QueryRow(ctx, `
		SELECT pu.id, pu.store_id, pu.purchase_number, pu.vendor_id, pa.name, pu.purchase_date::text,
		       pu.total_amount, pu.amount_paid, pu.notes, pu.created_at
		FROM purchases pu
		JOIN parties pa ON pa.id = pu.vendor_id
		WHERE pu.store_id = $1 AND pu.id = $2`,
		storeID, purchaseID,
	).Scan(
		&p.ID, &p.StoreID, &p.PurchaseNumber, &p.VendorID, &p.VendorName,
		&p.PurchaseDate, &p.TotalAmount, &p.AmountPaid, &p.Notes, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %d not found for store %d", purchaseID, storeID)
		}
		return nil, fmt.Errorf("fetch purchase %d: %w", purchaseID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, purchase_id, line_number, kind, lens_id, power_key, product_id,
		       description, quantity, unit_cost, line_total
		FROM purchase_lines
		WHERE purchase_id = $1
		ORDER BY line_number`,
		purchaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch lines of purchase %d: %w", purchaseID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l PurchaseLine
		if err := rows.Scan(
			&l.ID, &l.PurchaseID, &l.LineNumber, &l.Kind, &l.LensID, &l.PowerKey, &l.ProductID,
			&l.Description, &l.Quantity, &l.UnitCost, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		p.Lines = append(p.Lines, l)
	}
	return p, rows.Err()
}

func (s *purchaseService) ListPurchases(ctx context.Context, storeID int, vendorID *int) ([]Purchase, error) {
	query := `
		SELECT pu.id, pu.store_id, pu.purchase_number, pu.vendor_id, pa.name, pu.purchase_date::text,
		       pu.total_amount, pu.amount_paid, pu.notes, pu.created_at
		FROM purchases pu
		JOIN parties pa ON pa.id = pu.vendor_id
		WHERE pu.store_id = $1`
	args := []any{storeID}
	if vendorID != nil {
		query += " AND pu.vendor_id = $2"
		args = append(args, *vendorID)
	}
	query += " ORDER BY pu.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(
			&p.ID, &p.StoreID, &p.PurchaseNumber, &p.VendorID, &p.VendorName,
			&p.PurchaseDate, &p.TotalAmount, &p.AmountPaid, &p.Notes, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (s *purchaseService) RecordPayment(ctx context.Context, storeID, purchaseID int, amount decimal.Decimal) (*Purchase, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number string
	var total, paid decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT purchase_number, total_amount, amount_paid
		FROM purchases
		WHERE store_id = $1 AND id = $2
		FOR UPDATE`,
		storeID, purchaseID,
	).Scan(&number, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase %d not found for store %d", purchaseID, storeID)
		}
		return nil, fmt.Errorf("lock purchase %d: %w", purchaseID, err)
	}

	outstanding := total.Sub(paid)
	if amount.GreaterThan(outstanding) {
		return nil, fmt.Errorf("payment %s exceeds outstanding %s on purchase %s", amount, outstanding, number)
	}

	_, err = tx.Exec(ctx, "UPDATE purchases SET amount_paid = amount_paid + $1 WHERE id = $2", amount, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("record payment on purchase %s: %w", number, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment on purchase %s: %w", number, err)
	}
	return s.GetPurchase(ctx, storeID, purchaseID)
}
