package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a vendor purchase header. TotalAmount and AmountPaid feed the
// vendor balance as (total - paid) exposure.
type Purchase struct {
	ID             int             `json:"id"`
	StoreID        int             `json:"store_id"`
	PurchaseNumber string          `json:"purchase_number"`
	VendorID       int             `json:"vendor_id"`
	VendorName     string          `json:"vendor_name"`
	PurchaseDate   string          `json:"purchase_date"` // YYYY-MM-DD
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Notes          string          `json:"notes"`
	Lines          []PurchaseLine  `json:"lines"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PurchaseLine is one received line item. Lens-power lines receive pieces of a
// single power; product lines receive plain piece stock.
type PurchaseLine struct {
	ID          int             `json:"id"`
	PurchaseID  int             `json:"purchase_id"`
	LineNumber  int             `json:"line_number"`
	Kind        InvoiceLineKind `json:"kind"`
	LensID      *int            `json:"lens_id,omitempty"`
	PowerKey    *string         `json:"power_key,omitempty"`
	ProductID   *int            `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PurchaseLineInput is used when recording a new purchase.
type PurchaseLineInput struct {
	Kind        InvoiceLineKind
	LensID      int
	PowerKey    string
	ProductID   int
	Description string
	Quantity    int
	UnitCost    decimal.Decimal
}

// PurchaseInput is the input for recording a new vendor purchase.
type PurchaseInput struct {
	VendorID     int
	PurchaseDate string // YYYY-MM-DD; empty means today
	Notes        string
	AmountPaid   decimal.Decimal // payment made at receipt time
	Lines        []PurchaseLineInput
}

// PurchaseService manages vendor purchases. Stock receipt is atomic with
// purchase creation.
type PurchaseService interface {
	// CreatePurchase assigns a gapless purchase number, writes the lines, and
	// receives lens-power and product stock with weighted-average cost
	// blending, all in one transaction.
	CreatePurchase(ctx context.Context, storeID int, input PurchaseInput) (*Purchase, error)

	GetPurchase(ctx context.Context, storeID, purchaseID int) (*Purchase, error)

	// ListPurchases returns purchase headers, newest first, optionally limited
	// to one vendor.
	ListPurchases(ctx context.Context, storeID int, vendorID *int) ([]Purchase, error)

	// RecordPayment adds to amount_paid; a payment exceeding the outstanding
	// amount is rejected.
	RecordPayment(ctx context.Context, storeID, purchaseID int, amount decimal.Decimal) (*Purchase, error)
}
