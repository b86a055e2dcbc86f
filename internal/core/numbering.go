package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DocType identifies a numbered document series.
type DocType string

const (
	DocInvoice  DocType = "INV"
	DocPurchase DocType = "PUR"
)

// NextDocumentNumber assigns the next gapless number in a store's document
// series, e.g. "INV-MAIN-00042". It must run inside the transaction that
// creates the document so a failed insert rolls the sequence back too; the
// ON CONFLICT upsert serializes concurrent callers on the sequence row.
func NextDocumentNumber(ctx context.Context, tx pgx.Tx, storeID int, docType DocType) (string, error) {
	var storeCode string
	if err := tx.QueryRow(ctx, "SELECT code FROM stores WHERE id = $1", storeID).Scan(&storeCode); err != nil {
		return "", fmt.Errorf("resolve store %d: %w", storeID, err)
	}

	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (store_id, doc_type, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (store_id, doc_type)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, storeID, string(docType)).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("advance %s sequence for store %d: %w", docType, storeID, err)
	}

	return fmt.Sprintf("%s-%s-%05d", docType, storeCode, lastNumber), nil
}
