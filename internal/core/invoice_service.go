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

type invoiceService struct {
	pool     *pgxpool.Pool
	lenses   LensService
	products ProductService
}

// NewInvoiceService constructs an InvoiceService backed by PostgreSQL.
func NewInvoiceService(pool *pgxpool.Pool, lenses LensService, products ProductService) InvoiceService {
	return &invoiceService{pool: pool, lenses: lenses, products: products}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, storeID int, input InvoiceInput) (*Invoice, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("invoice must have at least one line")
	}
	if input.AmountPaid.IsNegative() {
		return nil, fmt.Errorf("amount paid cannot be negative, got %s", input.AmountPaid)
	}
	invoiceDate := input.InvoiceDate
	if invoiceDate == "" {
		invoiceDate = time.Now().Format("2006-01-02")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve customer, store-scoped.
	var customerType PartyType
	err = tx.QueryRow(ctx,
		"SELECT party_type FROM parties WHERE store_id = $1 AND id = $2 AND is_active = true",
		storeID, input.CustomerID,
	).Scan(&customerType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d not found for store %d", input.CustomerID, storeID)
		}
		return nil, fmt.Errorf("resolve customer: %w", err)
	}
	if customerType != PartyCustomer {
		return nil, fmt.Errorf("party %d is a %s, not a customer", input.CustomerID, customerType)
	}

	number, err := NextDocumentNumber(ctx, tx, storeID, DocInvoice)
	if err != nil {
		return nil, err
	}

	type preparedLine struct {
		input     InvoiceLineInput
		desc      string
		unitPrice decimal.Decimal
		pieces    int
		lineTotal decimal.Decimal
	}

	var prepared []preparedLine
	total := decimal.Zero
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive, got %d", i+1, line.Quantity)
		}

		var p preparedLine
		p.input = line

		switch line.Kind {
		case LineLensPower:
			lens, err := s.lenses.GetLensByID(ctx, storeID, line.LensID)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			key, err := ParsePowerKey(line.PowerKey)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			if line.EyeSelection != EyeBoth && line.EyeSelection != EyeLeft && line.EyeSelection != EyeRight {
				return nil, fmt.Errorf("line %d: invalid eye selection %q", i+1, line.EyeSelection)
			}

			p.pieces = PiecesForEye(line.EyeSelection, line.Quantity)
			if err := s.lenses.DeductPowerStockTx(ctx, tx, line.LensID, key.String(), p.pieces); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}

			p.unitPrice = line.UnitPrice
			if p.unitPrice.IsZero() {
				p.unitPrice = lens.SalePrice
			}
			// Lens pieces are priced individually.
			p.lineTotal = p.unitPrice.Mul(decimal.NewFromInt(int64(p.pieces)))
			p.desc = line.Description
			if p.desc == "" {
				p.desc = fmt.Sprintf("%s %s (%s)", lens.Name, key.String(), line.EyeSelection)
			}
			p.input.PowerKey = key.String()

		case LineProduct:
			product, err := s.products.GetProductByID(ctx, storeID, line.ProductID)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			p.pieces = line.Quantity
			if err := s.products.DeductStockTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}

			p.unitPrice = line.UnitPrice
			if p.unitPrice.IsZero() {
				p.unitPrice = product.SalePrice
			}
			p.lineTotal = p.unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			p.desc = line.Description
			if p.desc == "" {
				p.desc = product.Name
			}

		default:
			return nil, fmt.Errorf("line %d: invalid line kind %q", i+1, line.Kind)
		}

		total = total.Add(p.lineTotal)
		prepared = append(prepared, p)
	}

	if input.AmountPaid.GreaterThan(total) {
		return nil, fmt.Errorf("amount paid %s exceeds invoice total %s", input.AmountPaid, total)
	}

	var invoiceID int
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (store_id, invoice_number, customer_id, invoice_date, total_amount, amount_paid, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, storeID, number, input.CustomerID, invoiceDate, total, input.AmountPaid, input.Notes).Scan(&invoiceID)
	if err != nil {
		return nil, fmt.Errorf("insert invoice %s: %w", number, err)
	}

	for i, p := range prepared {
		var lensID, productID *int
		var powerKey *string
		var eye *EyeSelection
		if p.input.Kind == LineLensPower {
			lensID = &p.input.LensID
			powerKey = &p.input.PowerKey
			eye = &p.input.EyeSelection
		} else {
			productID = &p.input.ProductID
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_lines (invoice_id, line_number, kind, lens_id, power_key, product_id,
			                           description, eye_selection, quantity, pieces, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, invoiceID, i+1, string(p.input.Kind), lensID, powerKey, productID,
			p.desc, eye, p.input.Quantity, p.pieces, p.unitPrice, p.lineTotal)
		if err != nil {
			return nil, fmt.Errorf("insert line %d of invoice %s: %w", i+1, number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invoice %s: %w", number, err)
	}

	return s.GetInvoice(ctx, storeID, invoiceID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, storeID, invoiceID int) (*Invoice, error) {
	inv := &Invoice{}
	err := s.pool.QueryRow(ctx, `
		SELECT i.id, i.store_id, i.invoice_number, i.customer_id, p.name, i.invoice_date::text,
		       i.total_amount, i.amount_paid, i.notes, i.created_at
		FROM invoices i
		JOIN parties p ON p.id = i.customer_id
		WHERE i.store_id = $1 AND i.id = $2`,
		storeID, invoiceID,
	).Scan(
		&inv.ID, &inv.StoreID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerName,
		&inv.InvoiceDate, &inv.TotalAmount, &inv.AmountPaid, &inv.Notes, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found for store %d", invoiceID, storeID)
		}
		return nil, fmt.Errorf("fetch invoice %d: %w", invoiceID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, line_number, kind, lens_id, power_key, product_id,
		       description, eye_selection, quantity, pieces, unit_price, line_total
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY line_number`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch lines of invoice %d: %w", invoiceID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(
			&l.ID, &l.InvoiceID, &l.LineNumber, &l.Kind, &l.LensID, &l.PowerKey, &l.ProductID,
			&l.Description, &l.EyeSelection, &l.Quantity, &l.Pieces, &l.UnitPrice, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	return inv, rows.Err()
}

func (s *invoiceService) ListInvoices(ctx context.Context, storeID int, customerID *int) ([]Invoice, error) {
	query := `
		SELECT i.id, i.store_id, i.invoice_number, i.customer_id, p.name, i.invoice_date::text,
		       i.total_amount, i.amount_paid, i.notes, i.created_at
		FROM invoices i
		JOIN parties p ON p.id = i.customer_id
		WHERE i.store_id = $1`
	args := []any{storeID}
	if customerID != nil {
		query += " AND i.customer_id = $2"
		args = append(args, *customerID)
	}
	query += " ORDER BY i.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.StoreID, &inv.InvoiceNumber, &inv.CustomerID, &inv.CustomerName,
			&inv.InvoiceDate, &inv.TotalAmount, &inv.AmountPaid, &inv.Notes, &inv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *invoiceService) RecordPayment(ctx context.Context, storeID, invoiceID int, amount decimal.Decimal) (*Invoice, error) {
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
		SELECT invoice_number, total_amount, amount_paid
		FROM invoices
		WHERE store_id = $1 AND id = $2
		FOR UPDATE`,
		storeID, invoiceID,
	).Scan(&number, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found for store %d", invoiceID, storeID)
		}
		return nil, fmt.Errorf("lock invoice %d: %w", invoiceID, err)
	}

	outstanding := total.Sub(paid)
	if amount.GreaterThan(outstanding) {
		return nil, fmt.Errorf("payment %s exceeds outstanding %s on invoice %s", amount, outstanding, number)
	}

	_, err = tx.Exec(ctx, "UPDATE invoices SET amount_paid = amount_paid + $1 WHERE id = $2", amount, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("record payment on invoice %s: %w", number, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment on invoice %s: %w", number, err)
	}
	return s.GetInvoice(ctx, storeID, invoiceID)
}

// ReturnLine takes back quantity units of one invoice line. Stock comes back
// (pieces in proportion to the line's eye selection) and the line and header
// totals shrink by the returned value. If payments already exceed the reduced
// total, the excess surfaces as customer credit through the balance fold.
func (s *invoiceService) ReturnLine(ctx context.Context, storeID, invoiceID, lineID, quantity int) (*Invoice, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("return quantity must be positive, got %d", quantity)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number string
	err = tx.QueryRow(ctx, `
		SELECT invoice_number FROM invoices
		WHERE store_id = $1 AND id = $2
		FOR UPDATE`,
		storeID, invoiceID,
	).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d not found for store %d", invoiceID, storeID)
		}
		return nil, fmt.Errorf("lock invoice %d: %w", invoiceID, err)
	}

	var l InvoiceLine
	err = tx.QueryRow(ctx, `
		SELECT id, kind, lens_id, power_key, product_id, quantity, pieces, unit_price, line_total
		FROM invoice_lines
		WHERE invoice_id = $1 AND id = $2
		FOR UPDATE`,
		invoiceID, lineID,
	).Scan(&l.ID, &l.Kind, &l.LensID, &l.PowerKey, &l.ProductID, &l.Quantity, &l.Pieces, &l.UnitPrice, &l.LineTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("line %d not found on invoice %s", lineID, number)
		}
		return nil, fmt.Errorf("lock line %d: %w", lineID, err)
	}

	if quantity > l.Quantity {
		return nil, fmt.Errorf("cannot return %d units from line %d of invoice %s: only %d remain", quantity, lineID, number, l.Quantity)
	}

	piecesBack := l.Pieces / l.Quantity * quantity
	refund := l.LineTotal.Mul(decimal.NewFromInt(int64(quantity))).Div(decimal.NewFromInt(int64(l.Quantity)))

	switch l.Kind {
	case LineLensPower:
		if err := s.lenses.RestorePowerStockTx(ctx, tx, *l.LensID, *l.PowerKey, piecesBack); err != nil {
			return nil, fmt.Errorf("return on invoice %s: %w", number, err)
		}
	case LineProduct:
		if err := s.products.RestoreStockTx(ctx, tx, *l.ProductID, piecesBack); err != nil {
			return nil, fmt.Errorf("return on invoice %s: %w", number, err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoice_lines
		SET quantity = quantity - $1, pieces = pieces - $2, line_total = line_total - $3
		WHERE id = $4
	`, quantity, piecesBack, refund, lineID)
	if err != nil {
		return nil, fmt.Errorf("reduce line %d: %w", lineID, err)
	}

	_, err = tx.Exec(ctx, "UPDATE invoices SET total_amount = total_amount - $1 WHERE id = $2", refund, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("reduce invoice %s total: %w", number, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit return on invoice %s: %w", number, err)
	}
	return s.GetInvoice(ctx, storeID, invoiceID)
}
