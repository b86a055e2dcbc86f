package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StatementEntry is one row of a party statement with a running balance.
type StatementEntry struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	Document    string          `json:"document"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// PartyStatement is a party's ledger history: opening balance, dated entries
// with a running balance, and the closing balance with its status.
type PartyStatement struct {
	Party          *Party           `json:"party"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Entries        []StatementEntry `json:"entries"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
	Status         BalanceStatus    `json:"status"`
}

// BalanceService computes live party balances from the ledger tables.
// Fetch failures surface as errors; callers decide how to degrade.
type BalanceService interface {
	// CustomerBalance computes a customer's current balance. Positive means
	// the customer owes the store.
	CustomerBalance(ctx context.Context, storeID, customerID int) (decimal.Decimal, error)

	// VendorBalance computes a vendor's current balance. Positive means the
	// store owes the vendor.
	VendorBalance(ctx context.Context, storeID, vendorID int) (decimal.Decimal, error)

	// PartyStatement builds the dated ledger history for either direction,
	// with a running balance per entry.
	PartyStatement(ctx context.Context, storeID, partyID int) (*PartyStatement, error)
}

type balanceService struct {
	pool    *pgxpool.Pool
	parties PartyService
}

// NewBalanceService constructs a BalanceService backed by PostgreSQL.
func NewBalanceService(pool *pgxpool.Pool, parties PartyService) BalanceService {
	return &balanceService{pool: pool, parties: parties}
}

func (s *balanceService) CustomerBalance(ctx context.Context, storeID, customerID int) (decimal.Decimal, error) {
	party, err := s.parties.GetPartyByID(ctx, storeID, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	if party.Type != PartyCustomer {
		return decimal.Zero, fmt.Errorf("party %d is a %s, not a customer", customerID, party.Type)
	}

	exposures, err := s.fetchExposures(ctx, "invoices", "customer_id", storeID, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	txns, err := s.fetchTransactions(ctx, storeID, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return CustomerBalance(party.OpeningBalance, exposures, txns), nil
}

func (s *balanceService) VendorBalance(ctx context.Context, storeID, vendorID int) (decimal.Decimal, error) {
	party, err := s.parties.GetPartyByID(ctx, storeID, vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	if party.Type != PartyVendor {
		return decimal.Zero, fmt.Errorf("party %d is a %s, not a vendor", vendorID, party.Type)
	}

	exposures, err := s.fetchExposures(ctx, "purchases", "vendor_id", storeID, vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	txns, err := s.fetchTransactions(ctx, storeID, vendorID)
	if err != nil {
		return decimal.Zero, err
	}
	return VendorBalance(party.OpeningBalance, exposures, txns), nil
}

func (s *balanceService) fetchExposures(ctx context.Context, table, partyColumn string, storeID, partyID int) ([]Exposure, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT total_amount, amount_paid FROM %s WHERE store_id = $1 AND %s = $2", table, partyColumn),
		storeID, partyID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s exposures for party %d: %w", table, partyID, err)
	}
	defer rows.Close()

	var exposures []Exposure
	for rows.Next() {
		var e Exposure
		if err := rows.Scan(&e.Total, &e.Paid); err != nil {
			return nil, fmt.Errorf("scan exposure: %w", err)
		}
		exposures = append(exposures, e)
	}
	return exposures, rows.Err()
}

func (s *balanceService) fetchTransactions(ctx context.Context, storeID, partyID int) ([]LedgerTransaction, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT txn_type, amount FROM transactions WHERE store_id = $1 AND party_id = $2",
		storeID, partyID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for party %d: %w", partyID, err)
	}
	defer rows.Close()

	var txns []LedgerTransaction
	for rows.Next() {
		var t LedgerTransaction
		if err := rows.Scan(&t.Type, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// statementRow is one dated ledger event before the running balance is applied.
type statementRow struct {
	date     string
	document string
	desc     string
	delta    decimal.Decimal // signed in the party's balance direction
}

func (s *balanceService) PartyStatement(ctx context.Context, storeID, partyID int) (*PartyStatement, error) {
	party, err := s.parties.GetPartyByID(ctx, storeID, partyID)
	if err != nil {
		return nil, err
	}

	var rows []statementRow
	switch party.Type {
	case PartyCustomer:
		rows, err = s.documentRows(ctx,
			"SELECT invoice_date::text, invoice_number, total_amount, amount_paid FROM invoices WHERE store_id = $1 AND customer_id = $2",
			storeID, partyID, "Invoice")
	case PartyVendor:
		rows, err = s.documentRows(ctx,
			"SELECT purchase_date::text, purchase_number, total_amount, amount_paid FROM purchases WHERE store_id = $1 AND vendor_id = $2",
			storeID, partyID, "Purchase")
	default:
		return nil, fmt.Errorf("party %d has unknown type %q", partyID, party.Type)
	}
	if err != nil {
		return nil, err
	}

	// The settling direction clears the debt: received for customers,
	// paid for vendors.
	settling := TxnReceived
	if party.Type == PartyVendor {
		settling = TxnPaid
	}

	txnRows, err := s.pool.Query(ctx, `
		SELECT transaction_date::text, txn_type, amount, notes
		FROM transactions
		WHERE store_id = $1 AND party_id = $2`,
		storeID, partyID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for party %d: %w", partyID, err)
	}
	defer txnRows.Close()

	for txnRows.Next() {
		var date, notes string
		var txnType TransactionType
		var amount decimal.Decimal
		if err := txnRows.Scan(&date, &txnType, &amount, &notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		delta := amount
		if txnType == settling {
			delta = amount.Neg()
		}
		desc := fmt.Sprintf("Amount %s", txnType)
		if notes != "" {
			desc = fmt.Sprintf("%s (%s)", desc, notes)
		}
		rows = append(rows, statementRow{date: date, document: "", desc: desc, delta: delta})
	}
	if err := txnRows.Err(); err != nil {
		return nil, err
	}

	sortStatementRows(rows)

	stmt := &PartyStatement{
		Party:          party,
		OpeningBalance: party.OpeningBalance,
	}
	running := party.OpeningBalance
	for _, r := range rows {
		running = running.Add(r.delta)
		entry := StatementEntry{
			Date:        r.date,
			Document:    r.document,
			Description: r.desc,
			Balance:     running,
		}
		if r.delta.Sign() >= 0 {
			entry.Debit = r.delta
		} else {
			entry.Credit = r.delta.Neg()
		}
		stmt.Entries = append(stmt.Entries, entry)
	}
	stmt.ClosingBalance = running
	stmt.Status = ClassifyBalance(running)
	return stmt, nil
}

func (s *balanceService) documentRows(ctx context.Context, query string, storeID, partyID int, label string) ([]statementRow, error) {
	dbRows, err := s.pool.Query(ctx, query, storeID, partyID)
	if err != nil {
		return nil, fmt.Errorf("fetch documents for party %d: %w", partyID, err)
	}
	defer dbRows.Close()

	var rows []statementRow
	for dbRows.Next() {
		var date, number string
		var total, paid decimal.Decimal
		if err := dbRows.Scan(&date, &number, &total, &paid); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		rows = append(rows, statementRow{
			date:     date,
			document: number,
			desc:     fmt.Sprintf("%s %s", label, number),
			delta:    total.Sub(paid),
		})
	}
	return rows, dbRows.Err()
}

// sortStatementRows orders entries chronologically. Dates are YYYY-MM-DD so
// lexical order is date order; stability keeps same-day entries in fetch order.
func sortStatementRows(rows []statementRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date < rows[j].date
	})
}
