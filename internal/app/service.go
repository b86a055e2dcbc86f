package app

import (
	"context"

	"optics-backoffice/internal/core"
)

// Session identifies the authenticated operator and pins every call to one
// store. Adapters build it once from the verified token and pass it
// explicitly; nothing in the application layer reads ambient auth state.
type Session struct {
	UserID  int
	StoreID int
	Role    string
}

// ApplicationService is the single interface all UI adapters call. It
// decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)

	// CreateParty creates a customer or vendor for the session's store.
	CreateParty(ctx context.Context, session Session, req CreatePartyRequest) (*PartyResult, error)

	// ListParties returns active customers or vendors with their live
	// balances. A balance that cannot be computed falls back to the party's
	// opening balance and is flagged Degraded.
	ListParties(ctx context.Context, session Session, partyType core.PartyType) (*PartyListResult, error)

	// GetParty returns one party's master record.
	GetParty(ctx context.Context, session Session, partyID int) (*PartyResult, error)

	// GetPartyBalance returns one party's live balance with its display
	// status. A fetch failure degrades to the opening balance with the
	// Degraded flag set.
	GetPartyBalance(ctx context.Context, session Session, partyID int) (*BalanceResult, error)

	// GetPartyStatement returns the dated ledger history with running balance.
	GetPartyStatement(ctx context.Context, session Session, partyID int) (*StatementResult, error)

	// CreateLens creates a lens catalog entry.
	CreateLens(ctx context.Context, session Session, req CreateLensRequest) (*LensResult, error)

	// ListLenses returns the active lens catalog.
	ListLenses(ctx context.Context, session Session) (*LensListResult, error)

	// GetPowerInventory returns a lens's in-stock power records.
	GetPowerInventory(ctx context.Context, session Session, lensID int) (*PowerListResult, error)

	// SearchPowers ranks a lens's power inventory against a tolerance filter.
	// Filter fields arrive as raw text; blank or malformed fields are
	// treated as absent.
	SearchPowers(ctx context.Context, session Session, lensID int, sph, cyl, add string) (*PowerSearchResult, error)

	// ReceivePowerStock adds pieces of one power with cost blending.
	ReceivePowerStock(ctx context.Context, session Session, req ReceivePowerRequest) (*PowerReceiptResult, error)

	// SelectPower validates a confirmed power pick against stock and returns
	// the priced selection for invoice building. Stock is not deducted.
	SelectPower(ctx context.Context, session Session, req SelectPowerRequest) (*PowerSelectionResult, error)

	// CreateProduct creates a frame or accessory catalog entry.
	CreateProduct(ctx context.Context, session Session, req CreateProductRequest) (*ProductResult, error)

	// ListProducts returns active products, optionally limited to one category.
	ListProducts(ctx context.Context, session Session, category *core.ProductCategory) (*ProductListResult, error)

	// ReceiveProductStock adds product pieces with cost blending.
	ReceiveProductStock(ctx context.Context, session Session, req ReceiveProductRequest) (*ProductResult, error)

	// CreateInvoice creates a sales invoice, deducting stock atomically.
	CreateInvoice(ctx context.Context, session Session, req CreateInvoiceRequest) (*InvoiceResult, error)

	// GetInvoice returns one invoice with its lines.
	GetInvoice(ctx context.Context, session Session, invoiceID int) (*InvoiceResult, error)

	// ListInvoices returns invoice headers, optionally for one customer.
	ListInvoices(ctx context.Context, session Session, customerID *int) (*InvoiceListResult, error)

	// RecordInvoicePayment records a payment against an invoice.
	RecordInvoicePayment(ctx context.Context, session Session, req PaymentRequest) (*InvoiceResult, error)

	// ReturnInvoiceLine takes back units of one invoice line, restocking and
	// reducing the invoice.
	ReturnInvoiceLine(ctx context.Context, session Session, req ReturnRequest) (*InvoiceResult, error)

	// CreatePurchase records a vendor purchase, receiving stock atomically.
	CreatePurchase(ctx context.Context, session Session, req CreatePurchaseRequest) (*PurchaseResult, error)

	// GetPurchase returns one purchase with its lines.
	GetPurchase(ctx context.Context, session Session, purchaseID int) (*PurchaseResult, error)

	// ListPurchases returns purchase headers, optionally for one vendor.
	ListPurchases(ctx context.Context, session Session, vendorID *int) (*PurchaseListResult, error)

	// RecordPurchasePayment records a payment against a purchase.
	RecordPurchasePayment(ctx context.Context, session Session, req PaymentRequest) (*PurchaseResult, error)

	// RecordTransaction records a manual received/paid ledger entry.
	RecordTransaction(ctx context.Context, session Session, req TransactionRequest) (*TransactionResult, error)

	// ListTransactions returns manual transactions, optionally for one party.
	ListTransactions(ctx context.Context, session Session, partyID *int) (*TransactionListResult, error)

	// GetReorderReport returns the cached low-stock report for the store.
	GetReorderReport(ctx context.Context, session Session) (*core.ReorderReport, error)
}
