package app

import (
	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// CreatePartyRequest is the input for creating a customer or vendor.
type CreatePartyRequest struct {
	Type           core.PartyType
	Code           string
	Name           string
	Phone          string
	Email          string
	Address        string
	OpeningBalance decimal.Decimal
}

// CreateLensRequest is the input for creating a lens catalog entry.
type CreateLensRequest struct {
	Code         string
	Name         string
	LensType     core.LensType
	Material     string
	Coating      string
	Axis         int // 0 means the default axis
	SalePrice    decimal.Decimal
	ReorderLevel int
}

// ReceivePowerRequest is the input for receiving pieces of one lens power.
type ReceivePowerRequest struct {
	LensID   int
	PowerKey string
	Quantity int
	UnitCost decimal.Decimal
}

// SelectPowerRequest is the input for confirming a power pick.
type SelectPowerRequest struct {
	LensID   int
	PowerKey string
	Eye      core.EyeSelection
	Quantity int
}

// CreateProductRequest is the input for creating a frame or accessory.
type CreateProductRequest struct {
	Category     core.ProductCategory
	Code         string
	Name         string
	Brand        string
	SalePrice    decimal.Decimal
	ReorderLevel int
}

// ReceiveProductRequest is the input for receiving product pieces.
type ReceiveProductRequest struct {
	ProductID int
	Quantity  int
	UnitCost  decimal.Decimal
}

// InvoiceLineRequest is a single line within a CreateInvoiceRequest.
type InvoiceLineRequest struct {
	Kind        core.InvoiceLineKind
	LensID      int
	PowerKey    string
	Eye         core.EyeSelection
	ProductID   int
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal // zero means "use catalog price"
}

// CreateInvoiceRequest is the input for creating a sales invoice.
type CreateInvoiceRequest struct {
	CustomerID  int
	InvoiceDate string // YYYY-MM-DD; empty means today
	Notes       string
	AmountPaid  decimal.Decimal
	Lines       []InvoiceLineRequest
}

// PurchaseLineRequest is a single line within a CreatePurchaseRequest.
type PurchaseLineRequest struct {
	Kind        core.InvoiceLineKind
	LensID      int
	PowerKey    string
	ProductID   int
	Description string
	Quantity    int
	UnitCost    decimal.Decimal
}

// CreatePurchaseRequest is the input for recording a vendor purchase.
type CreatePurchaseRequest struct {
	VendorID     int
	PurchaseDate string // YYYY-MM-DD; empty means today
	Notes        string
	AmountPaid   decimal.Decimal
	Lines        []PurchaseLineRequest
}

// PaymentRequest is the input for recording a payment against a document.
type PaymentRequest struct {
	DocumentID int // invoice or purchase ID
	Amount     decimal.Decimal
}

// ReturnRequest is the input for returning units of one invoice line.
type ReturnRequest struct {
	InvoiceID int
	LineID    int
	Quantity  int
}

// TransactionRequest is the input for recording a manual ledger transaction.
type TransactionRequest struct {
	PartyID int
	Type    core.TransactionType
	Amount  decimal.Decimal
	Date    string // YYYY-MM-DD; empty means today
	Notes   string
}
