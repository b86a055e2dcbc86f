package app

import (
	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID      int
	StoreID     int
	Username    string
	DisplayName string
	Role        string
}

// UserResult is returned by GetUser.
type UserResult struct {
	User *core.User
}

// PartyResult is returned by CreateParty.
type PartyResult struct {
	Party *core.Party
}

// PartyWithBalance pairs a party with its computed balance for list views.
type PartyWithBalance struct {
	Party     core.Party         `json:"party"`
	Balance   decimal.Decimal    `json:"balance"`
	Formatted string             `json:"formatted"`
	Status    core.BalanceStatus `json:"status"`
	Label     string             `json:"label"`
	Degraded  bool               `json:"degraded,omitempty"`
}

// PartyListResult is returned by ListParties.
type PartyListResult struct {
	Parties []PartyWithBalance
}

// BalanceResult is returned by GetPartyBalance. Degraded means the live
// balance could not be computed and Balance holds only the opening balance.
type BalanceResult struct {
	PartyID   int                `json:"party_id"`
	Direction core.PartyType     `json:"direction"`
	Balance   decimal.Decimal    `json:"balance"`
	Formatted string             `json:"formatted"`
	Status    core.BalanceStatus `json:"status"`
	Label     string             `json:"label"`
	Degraded  bool               `json:"degraded,omitempty"`
}

// StatementResult is returned by GetPartyStatement.
type StatementResult struct {
	Statement *core.PartyStatement
}

// LensResult is returned by CreateLens.
type LensResult struct {
	Lens *core.Lens
}

// LensListResult is returned by ListLenses.
type LensListResult struct {
	Lenses []core.Lens
}

// PowerListResult is returned by GetPowerInventory.
type PowerListResult struct {
	LensID  int
	Records []core.PowerRecord
}

// PowerSearchResult is returned by SearchPowers.
type PowerSearchResult struct {
	LensID  int
	Filter  core.PowerFilter
	Matches []core.PowerMatch
}

// PowerReceiptResult is returned by ReceivePowerStock.
type PowerReceiptResult struct {
	Record *core.PowerRecord
}

// PowerSelectionResult is returned by SelectPower.
type PowerSelectionResult struct {
	Selection *core.PowerSelection
}

// ProductResult is returned by CreateProduct and ReceiveProductStock.
type ProductResult struct {
	Product *core.Product
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// InvoiceResult is returned by invoice operations.
type InvoiceResult struct {
	Invoice *core.Invoice
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice
}

// PurchaseResult is returned by purchase operations.
type PurchaseResult struct {
	Purchase *core.Purchase
}

// PurchaseListResult is returned by ListPurchases.
type PurchaseListResult struct {
	Purchases []core.Purchase
}

// TransactionResult is returned by RecordTransaction.
type TransactionResult struct {
	Transaction *core.Transaction
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	Transactions []core.Transaction
}
