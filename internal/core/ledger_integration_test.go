package core_test

import (
	"context"
	"os"
	"testing"

	"optics-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoice_lines, invoices, purchase_lines, purchases, transactions,
			lens_powers, lenses, products, parties, users, document_sequences, stores CASCADE;

		INSERT INTO stores (id, code, name) VALUES (1, 'MAIN', 'Test Store');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestBalanceService_CustomerEndToEnd(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	storeID := 1

	parties := core.NewPartyService(pool)
	balances := core.NewBalanceService(pool, parties)
	txns := core.NewTransactionService(pool)

	customer, err := parties.CreateParty(ctx, storeID, core.PartyCustomer, core.PartyInput{
		Code:           "C001",
		Name:           "Walk-in Customer",
		OpeningBalance: mustDec(t, "1000"),
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	t.Run("OpeningOnly", func(t *testing.T) {
		b, err := balances.CustomerBalance(ctx, storeID, customer.ID)
		if err != nil {
			t.Fatalf("CustomerBalance: %v", err)
		}
		if !b.Equal(mustDec(t, "1000")) {
			t.Errorf("expected 1000, got %s", b)
		}
	})

	t.Run("InvoiceExposureAdds", func(t *testing.T) {
		_, err := pool.Exec(ctx, `
			INSERT INTO invoices (store_id, invoice_number, customer_id, total_amount, amount_paid)
			VALUES (1, 'INV-MAIN-00001', $1, 5000, 2000)`, customer.ID)
		if err != nil {
			t.Fatalf("seed invoice: %v", err)
		}

		b, err := balances.CustomerBalance(ctx, storeID, customer.ID)
		if err != nil {
			t.Fatalf("CustomerBalance: %v", err)
		}
		if !b.Equal(mustDec(t, "4000")) {
			t.Errorf("expected 4000, got %s", b)
		}
	})

	t.Run("ReceivedTransactionSettles", func(t *testing.T) {
		_, err := txns.RecordTransaction(ctx, storeID, core.TransactionInput{
			PartyID: customer.ID,
			Type:    core.TxnReceived,
			Amount:  mustDec(t, "4000"),
		})
		if err != nil {
			t.Fatalf("RecordTransaction: %v", err)
		}

		b, err := balances.CustomerBalance(ctx, storeID, customer.ID)
		if err != nil {
			t.Fatalf("CustomerBalance: %v", err)
		}
		if !b.IsZero() {
			t.Errorf("expected settled (0), got %s", b)
		}
		if got := core.ClassifyBalance(b); got != core.StatusSettled {
			t.Errorf("expected settled status, got %s", got)
		}
	})

	t.Run("StatementRunningBalance", func(t *testing.T) {
		stmt, err := balances.PartyStatement(ctx, storeID, customer.ID)
		if err != nil {
			t.Fatalf("PartyStatement: %v", err)
		}
		if !stmt.OpeningBalance.Equal(mustDec(t, "1000")) {
			t.Errorf("expected opening 1000, got %s", stmt.OpeningBalance)
		}
		if len(stmt.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(stmt.Entries))
		}
		if !stmt.ClosingBalance.IsZero() {
			t.Errorf("expected closing 0, got %s", stmt.ClosingBalance)
		}
		if stmt.Status != core.StatusSettled {
			t.Errorf("expected settled, got %s", stmt.Status)
		}
	})

	t.Run("DirectionMismatchRejected", func(t *testing.T) {
		if _, err := balances.VendorBalance(ctx, storeID, customer.ID); err == nil {
			t.Error("expected error computing vendor balance for a customer, got nil")
		}
	})
}

func TestBalanceService_VendorEndToEnd(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	storeID := 1

	parties := core.NewPartyService(pool)
	balances := core.NewBalanceService(pool, parties)
	txns := core.NewTransactionService(pool)

	vendor, err := parties.CreateParty(ctx, storeID, core.PartyVendor, core.PartyInput{
		Code: "V001",
		Name: "Lens Supplier",
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO purchases (store_id, purchase_number, vendor_id, total_amount, amount_paid)
		VALUES (1, 'PUR-MAIN-00001', $1, 2000, 0)`, vendor.ID)
	if err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	b, err := balances.VendorBalance(ctx, storeID, vendor.ID)
	if err != nil {
		t.Fatalf("VendorBalance: %v", err)
	}
	if !b.Equal(mustDec(t, "2000")) {
		t.Errorf("expected payable 2000, got %s", b)
	}
	if got := core.ClassifyBalance(b).Label(core.PartyVendor); got != "Payable" {
		t.Errorf("expected Payable label, got %s", got)
	}

	// Paying the vendor settles; a refund received back adds.
	if _, err := txns.RecordTransaction(ctx, storeID, core.TransactionInput{
		PartyID: vendor.ID, Type: core.TxnPaid, Amount: mustDec(t, "2500"),
	}); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}

	b, err = balances.VendorBalance(ctx, storeID, vendor.ID)
	if err != nil {
		t.Fatalf("VendorBalance: %v", err)
	}
	if !b.Equal(mustDec(t, "-500")) {
		t.Errorf("expected credit -500, got %s", b)
	}
	if got := core.ClassifyBalance(b); got != core.StatusCredit {
		t.Errorf("expected credit status, got %s", got)
	}
}

func TestTransactionService_Validation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewTransactionService(pool)

	t.Run("UnknownPartyRejected", func(t *testing.T) {
		_, err := svc.RecordTransaction(ctx, 1, core.TransactionInput{
			PartyID: 9999, Type: core.TxnReceived, Amount: mustDec(t, "100"),
		})
		if err == nil {
			t.Error("expected error for unknown party, got nil")
		}
	})

	t.Run("NonPositiveAmountRejected", func(t *testing.T) {
		_, err := svc.RecordTransaction(ctx, 1, core.TransactionInput{
			PartyID: 1, Type: core.TxnReceived, Amount: decimal.Zero,
		})
		if err == nil {
			t.Error("expected error for zero amount, got nil")
		}
	})
}
