package app

import (
	"context"
	"log"

	"optics-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

type appService struct {
	users        core.UserService
	parties      core.PartyService
	balances     core.BalanceService
	lenses       core.LensService
	products     core.ProductService
	invoices     core.InvoiceService
	purchases    core.PurchaseService
	transactions core.TransactionService
	reorder      core.ReorderService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	users core.UserService,
	parties core.PartyService,
	balances core.BalanceService,
	lenses core.LensService,
	products core.ProductService,
	invoices core.InvoiceService,
	purchases core.PurchaseService,
	transactions core.TransactionService,
	reorder core.ReorderService,
) ApplicationService {
	return &appService{
		users:        users,
		parties:      parties,
		balances:     balances,
		lenses:       lenses,
		products:     products,
		invoices:     invoices,
		purchases:    purchases,
		transactions: transactions,
		reorder:      reorder,
	}
}

// AuthenticateUser verifies credentials and returns a session on success.
func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserSession{
		UserID:      user.ID,
		StoreID:     user.StoreID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

// GetUser returns user profile by ID.
func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: user}, nil
}

// CreateParty creates a customer or vendor for the session's store.
func (s *appService) CreateParty(ctx context.Context, session Session, req CreatePartyRequest) (*PartyResult, error) {
	party, err := s.parties.CreateParty(ctx, session.StoreID, req.Type, core.PartyInput{
		Code:           req.Code,
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		return nil, err
	}
	return &PartyResult{Party: party}, nil
}

// ListParties returns active parties of one direction with live balances.
func (s *appService) ListParties(ctx context.Context, session Session, partyType core.PartyType) (*PartyListResult, error) {
	parties, err := s.parties.GetParties(ctx, session.StoreID, partyType)
	if err != nil {
		return nil, err
	}

	result := &PartyListResult{}
	for _, p := range parties {
		entry := PartyWithBalance{Party: p}
		balance, err := s.partyBalance(ctx, session.StoreID, &p)
		if err != nil {
			// Balance computation failed; show the opening balance rather
			// than dropping the party from the list, and say so.
			log.Printf("balance for party %d degraded to opening: %v", p.ID, err)
			balance = p.OpeningBalance
			entry.Degraded = true
		}
		entry.Balance = balance
		entry.Formatted = core.FormatCurrency(&balance)
		entry.Status = core.ClassifyBalance(balance)
		entry.Label = entry.Status.Label(p.Type)
		result.Parties = append(result.Parties, entry)
	}
	return result, nil
}

// GetParty returns one party's master record.
func (s *appService) GetParty(ctx context.Context, session Session, partyID int) (*PartyResult, error) {
	party, err := s.parties.GetPartyByID(ctx, session.StoreID, partyID)
	if err != nil {
		return nil, err
	}
	return &PartyResult{Party: party}, nil
}

// GetPartyBalance returns one party's live balance with display status.
func (s *appService) GetPartyBalance(ctx context.Context, session Session, partyID int) (*BalanceResult, error) {
	party, err := s.parties.GetPartyByID(ctx, session.StoreID, partyID)
	if err != nil {
		return nil, err
	}

	result := &BalanceResult{PartyID: partyID, Direction: party.Type}
	balance, err := s.partyBalance(ctx, session.StoreID, party)
	if err != nil {
		log.Printf("balance for party %d degraded to opening: %v", partyID, err)
		balance = party.OpeningBalance
		result.Degraded = true
	}
	result.Balance = balance
	result.Formatted = core.FormatCurrency(&balance)
	result.Status = core.ClassifyBalance(balance)
	result.Label = result.Status.Label(party.Type)
	return result, nil
}

func (s *appService) partyBalance(ctx context.Context, storeID int, party *core.Party) (decimal.Decimal, error) {
	if party.Type == core.PartyVendor {
		return s.balances.VendorBalance(ctx, storeID, party.ID)
	}
	return s.balances.CustomerBalance(ctx, storeID, party.ID)
}

// GetPartyStatement returns the dated ledger history with running balance.
func (s *appService) GetPartyStatement(ctx context.Context, session Session, partyID int) (*StatementResult, error) {
	stmt, err := s.balances.PartyStatement(ctx, session.StoreID, partyID)
	if err != nil {
		return nil, err
	}
	return &StatementResult{Statement: stmt}, nil
}

// CreateLens creates a lens catalog entry.
func (s *appService) CreateLens(ctx context.Context, session Session, req CreateLensRequest) (*LensResult, error) {
	lens, err := s.lenses.CreateLens(ctx, session.StoreID, core.LensInput{
		Code:         req.Code,
		Name:         req.Name,
		LensType:     req.LensType,
		Material:     req.Material,
		Coating:      req.Coating,
		Axis:         req.Axis,
		SalePrice:    req.SalePrice,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		return nil, err
	}
	return &LensResult{Lens: lens}, nil
}

// ListLenses returns the active lens catalog.
func (s *appService) ListLenses(ctx context.Context, session Session) (*LensListResult, error) {
	lenses, err := s.lenses.GetLenses(ctx, session.StoreID)
	if err != nil {
		return nil, err
	}
	return &LensListResult{Lenses: lenses}, nil
}

// GetPowerInventory returns a lens's in-stock power records.
func (s *appService) GetPowerInventory(ctx context.Context, session Session, lensID int) (*PowerListResult, error) {
	records, err := s.lenses.GetPowerInventory(ctx, session.StoreID, lensID)
	if err != nil {
		return nil, err
	}
	return &PowerListResult{LensID: lensID, Records: records}, nil
}

// SearchPowers ranks a lens's power inventory against a tolerance filter.
func (s *appService) SearchPowers(ctx context.Context, session Session, lensID int, sph, cyl, add string) (*PowerSearchResult, error) {
	filter := core.ParsePowerFilter(sph, cyl, add)
	matches, err := s.lenses.SearchPowers(ctx, session.StoreID, lensID, filter)
	if err != nil {
		return nil, err
	}
	return &PowerSearchResult{LensID: lensID, Filter: filter, Matches: matches}, nil
}

// ReceivePowerStock adds pieces of one power with cost blending.
func (s *appService) ReceivePowerStock(ctx context.Context, session Session, req ReceivePowerRequest) (*PowerReceiptResult, error) {
	record, err := s.lenses.ReceivePowerStock(ctx, session.StoreID, req.LensID, req.PowerKey, req.Quantity, req.UnitCost)
	if err != nil {
		return nil, err
	}
	return &PowerReceiptResult{Record: record}, nil
}

// SelectPower validates a confirmed power pick against stock.
func (s *appService) SelectPower(ctx context.Context, session Session, req SelectPowerRequest) (*PowerSelectionResult, error) {
	selection, err := s.lenses.BuildPowerSelection(ctx, session.StoreID, req.LensID, req.PowerKey, req.Eye, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &PowerSelectionResult{Selection: selection}, nil
}

// CreateProduct creates a frame or accessory catalog entry.
func (s *appService) CreateProduct(ctx context.Context, session Session, req CreateProductRequest) (*ProductResult, error) {
	product, err := s.products.CreateProduct(ctx, session.StoreID, core.ProductInput{
		Category:     req.Category,
		Code:         req.Code,
		Name:         req.Name,
		Brand:        req.Brand,
		SalePrice:    req.SalePrice,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

// ListProducts returns active products, optionally limited to one category.
func (s *appService) ListProducts(ctx context.Context, session Session, category *core.ProductCategory) (*ProductListResult, error) {
	products, err := s.products.GetProducts(ctx, session.StoreID, category)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// ReceiveProductStock adds product pieces with cost blending.
func (s *appService) ReceiveProductStock(ctx context.Context, session Session, req ReceiveProductRequest) (*ProductResult, error) {
	product, err := s.products.ReceiveStock(ctx, session.StoreID, req.ProductID, req.Quantity, req.UnitCost)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

// CreateInvoice creates a sales invoice, deducting stock atomically.
func (s *appService) CreateInvoice(ctx context.Context, session Session, req CreateInvoiceRequest) (*InvoiceResult, error) {
	lines := make([]core.InvoiceLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.InvoiceLineInput{
			Kind:         l.Kind,
			LensID:       l.LensID,
			PowerKey:     l.PowerKey,
			EyeSelection: l.Eye,
			ProductID:    l.ProductID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
		}
	}
	invoice, err := s.invoices.CreateInvoice(ctx, session.StoreID, core.InvoiceInput{
		CustomerID:  req.CustomerID,
		InvoiceDate: req.InvoiceDate,
		Notes:       req.Notes,
		AmountPaid:  req.AmountPaid,
		Lines:       lines,
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

// GetInvoice returns one invoice with its lines.
func (s *appService) GetInvoice(ctx context.Context, session Session, invoiceID int) (*InvoiceResult, error) {
	invoice, err := s.invoices.GetInvoice(ctx, session.StoreID, invoiceID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

// ListInvoices returns invoice headers, optionally for one customer.
func (s *appService) ListInvoices(ctx context.Context, session Session, customerID *int) (*InvoiceListResult, error) {
	invoices, err := s.invoices.ListInvoices(ctx, session.StoreID, customerID)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

// RecordInvoicePayment records a payment against an invoice.
func (s *appService) RecordInvoicePayment(ctx context.Context, session Session, req PaymentRequest) (*InvoiceResult, error) {
	invoice, err := s.invoices.RecordPayment(ctx, session.StoreID, req.DocumentID, req.Amount)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

// ReturnInvoiceLine takes back units of one invoice line.
func (s *appService) ReturnInvoiceLine(ctx context.Context, session Session, req ReturnRequest) (*InvoiceResult, error) {
	invoice, err := s.invoices.ReturnLine(ctx, session.StoreID, req.InvoiceID, req.LineID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: invoice}, nil
}

// CreatePurchase records a vendor purchase, receiving stock atomically.
func (s *appService) CreatePurchase(ctx context.Context, session Session, req CreatePurchaseRequest) (*PurchaseResult, error) {
	lines := make([]core.PurchaseLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.PurchaseLineInput{
			Kind:        l.Kind,
			LensID:      l.LensID,
			PowerKey:    l.PowerKey,
			ProductID:   l.ProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
		}
	}
	purchase, err := s.purchases.CreatePurchase(ctx, session.StoreID, core.PurchaseInput{
		VendorID:     req.VendorID,
		PurchaseDate: req.PurchaseDate,
		Notes:        req.Notes,
		AmountPaid:   req.AmountPaid,
		Lines:        lines,
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase}, nil
}

// GetPurchase returns one purchase with its lines.
func (s *appService) GetPurchase(ctx context.Context, session Session, purchaseID int) (*PurchaseResult, error) {
	purchase, err := s.purchases.GetPurchase(ctx, session.StoreID, purchaseID)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase}, nil
}

// ListPurchases returns purchase headers, optionally for one vendor.
func (s *appService) ListPurchases(ctx context.Context, session Session, vendorID *int) (*PurchaseListResult, error) {
	purchases, err := s.purchases.ListPurchases(ctx, session.StoreID, vendorID)
	if err != nil {
		return nil, err
	}
	return &PurchaseListResult{Purchases: purchases}, nil
}

// RecordPurchasePayment records a payment against a purchase.
func (s *appService) RecordPurchasePayment(ctx context.Context, session Session, req PaymentRequest) (*PurchaseResult, error) {
	purchase, err := s.purchases.RecordPayment(ctx, session.StoreID, req.DocumentID, req.Amount)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase}, nil
}

// RecordTransaction records a manual received/paid ledger entry.
func (s *appService) RecordTransaction(ctx context.Context, session Session, req TransactionRequest) (*TransactionResult, error) {
	txn, err := s.transactions.RecordTransaction(ctx, session.StoreID, core.TransactionInput{
		PartyID:         req.PartyID,
		Type:            req.Type,
		Amount:          req.Amount,
		TransactionDate: req.Date,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: txn}, nil
}

// ListTransactions returns manual transactions, optionally for one party.
func (s *appService) ListTransactions(ctx context.Context, session Session, partyID *int) (*TransactionListResult, error) {
	txns, err := s.transactions.ListTransactions(ctx, session.StoreID, partyID)
	if err != nil {
		return nil, err
	}
	return &TransactionListResult{Transactions: txns}, nil
}

// GetReorderReport returns the cached low-stock report for the store.
func (s *appService) GetReorderReport(ctx context.Context, session Session) (*core.ReorderReport, error) {
	return s.reorder.GetReorderReport(ctx, session.StoreID)
}
