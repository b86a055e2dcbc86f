package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineKind distinguishes lens-power lines from plain product lines.
type InvoiceLineKind string

const (
	LineLensPower InvoiceLineKind = "lens_power"
	LineProduct   InvoiceLineKind = "product"
)

// Invoice is a sales invoice header. TotalAmount and AmountPaid feed the
// customer balance as (total - paid) exposure.
type Invoice struct {
	ID            int             `json:"id"`
	StoreID       int             `json:"store_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    int             `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	InvoiceDate   string          `json:"invoice_date"` // YYYY-MM-DD
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Notes         string          `json:"notes"`
	Lines         []InvoiceLine   `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InvoiceLine is one line item. Lens-power lines price per piece: Pieces is
// the raw stock deduction (doubled for both-eye selections) and LineTotal
// covers all pieces. Product lines have Pieces == Quantity.
type InvoiceLine struct {
	ID           int             `json:"id"`
	InvoiceID    int             `json:"invoice_id"`
	LineNumber   int             `json:"line_number"`
	Kind         InvoiceLineKind `json:"kind"`
	LensID       *int            `json:"lens_id,omitempty"`
	PowerKey     *string         `json:"power_key,omitempty"`
	ProductID    *int            `json:"product_id,omitempty"`
	Description  string          `json:"description"`
	EyeSelection *EyeSelection   `json:"eye_selection,omitempty"`
	Quantity     int             `json:"quantity"`
	Pieces       int             `json:"pieces"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// InvoiceLineInput is used when creating a new invoice.
// UnitPrice zero means "use the catalog price".
type InvoiceLineInput struct {
	Kind         InvoiceLineKind
	LensID       int
	PowerKey     string
	EyeSelection EyeSelection
	ProductID    int
	Description  string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// InvoiceInput is the input for creating a new sales invoice.
type InvoiceInput struct {
	CustomerID  int
	InvoiceDate string // YYYY-MM-DD; empty means today
	Notes       string
	AmountPaid  decimal.Decimal // payment taken at billing time
	Lines       []InvoiceLineInput
}

// InvoiceService manages sales invoices. Stock deduction is atomic with
// invoice creation; returns restock and shrink the invoice in one transaction.
type InvoiceService interface {
	// CreateInvoice assigns a gapless invoice number, writes the lines, and
	// deducts lens-power and product stock, all in one transaction. A
	// quantity overrun on any line aborts the whole invoice with a message
	// naming the power or product and the available count.
	CreateInvoice(ctx context.Context, storeID int, input InvoiceInput) (*Invoice, error)

	GetInvoice(ctx context.Context, storeID, invoiceID int) (*Invoice, error)

	// ListInvoices returns invoice headers, newest first, optionally limited
	// to one customer.
	ListInvoices(ctx context.Context, storeID int, customerID *int) ([]Invoice, error)

	// RecordPayment adds to amount_paid; a payment exceeding the outstanding
	// amount is rejected.
	RecordPayment(ctx context.Context, storeID, invoiceID int, amount decimal.Decimal) (*Invoice, error)

	// ReturnLine takes back quantity units of one line: stock is restored and
	// the line and header totals are reduced proportionally.
	ReturnLine(ctx context.Context, storeID, invoiceID, lineID, quantity int) (*Invoice, error)
}
