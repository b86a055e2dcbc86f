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

// Transaction is a manual ledger entry against a party, outside any invoice
// or purchase: an advance, a settlement payment, a refund.
type Transaction struct {
	ID              int             `json:"id"`
	StoreID         int             `json:"store_id"`
	PartyID         int             `json:"party_id"`
	PartyName       string          `json:"party_name"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transaction_date"` // YYYY-MM-DD
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionInput is the input for recording a manual transaction.
type TransactionInput struct {
	PartyID         int
	Type            TransactionType
	Amount          decimal.Decimal
	TransactionDate string // YYYY-MM-DD; empty means today
	Notes           string
}

// TransactionService records and lists manual ledger transactions.
type TransactionService interface {
	// RecordTransaction validates the party belongs to the store and the
	// amount is positive, then writes the entry.
	RecordTransaction(ctx context.Context, storeID int, input TransactionInput) (*Transaction, error)

	// ListTransactions returns transactions newest first, optionally limited
	// to one party.
	ListTransactions(ctx context.Context, storeID int, partyID *int) ([]Transaction, error)
}

type transactionService struct {
	pool *pgxpool.Pool
}

// NewTransactionService constructs a TransactionService backed by PostgreSQL.
func NewTransactionService(pool *pgxpool.Pool) TransactionService {
	return &transactionService{pool: pool}
}

func (s *transactionService) RecordTransaction(ctx context.Context, storeID int, input TransactionInput) (*Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("transaction amount must be positive, got %s", input.Amount)
	}
	if input.Type != TxnReceived && input.Type != TxnPaid {
		return nil, fmt.Errorf("invalid transaction type %q", input.Type)
	}
	txnDate := input.TransactionDate
	if txnDate == "" {
		txnDate = time.Now().Format("2006-01-02")
	}

	var partyName string
	err := s.pool.QueryRow(ctx,
		"SELECT name FROM parties WHERE store_id = $1 AND id = $2 AND is_active = true",
		storeID, input.PartyID,
	).Scan(&partyName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("party %d not found for store %d", input.PartyID, storeID)
		}
		return nil, fmt.Errorf("resolve party: %w", err)
	}

	t := &Transaction{PartyName: partyName}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO transactions (store_id, party_id, txn_type, amount, transaction_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, store_id, party_id, txn_type, amount, transaction_date::text, notes, created_at`,
		storeID, input.PartyID, string(input.Type), input.Amount, txnDate, input.Notes,
	).Scan(&t.ID, &t.StoreID, &t.PartyID, &t.Type, &t.Amount, &t.TransactionDate, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record transaction for party %d: %w", input.PartyID, err)
	}
	return t, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, storeID int, partyID *int) ([]Transaction, error) {
	query := `
		SELECT t.id, t.store_id, t.party_id, p.name, t.txn_type, t.amount,
		       t.transaction_date::text, t.notes, t.created_at
		FROM transactions t
		JOIN parties p ON p.id = t.party_id
		WHERE t.store_id = $1`
	args := []any{storeID}
	if partyID != nil {
		query += " AND t.party_id = $2"
		args = append(args, *partyID)
	}
	query += " ORDER BY t.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.StoreID, &t.PartyID, &t.PartyName, &t.Type, &t.Amount,
			&t.TransactionDate, &t.Notes, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
