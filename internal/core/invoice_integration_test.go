package core_test

import (
	"context"
	"testing"

	"optics-backoffice/internal/core"
)

type invoiceFixture struct {
	parties   core.PartyService
	lenses    core.LensService
	products  core.ProductService
	invoices  core.InvoiceService
	purchases core.PurchaseService
	customer  *core.Party
	vendor    *core.Party
	lens      *core.Lens
	product   *core.Product
}

func newInvoiceFixture(t *testing.T) (*invoiceFixture, func()) {
	pool := setupTestDB(t)
	ctx := context.Background()

	f := &invoiceFixture{
		parties:  core.NewPartyService(pool),
		lenses:   core.NewLensService(pool),
		products: core.NewProductService(pool),
	}
	f.invoices = core.NewInvoiceService(pool, f.lenses, f.products)
	f.purchases = core.NewPurchaseService(pool, f.lenses)

	var err error
	f.customer, err = f.parties.CreateParty(ctx, 1, core.PartyCustomer, core.PartyInput{Code: "C001", Name: "Customer"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	f.vendor, err = f.parties.CreateParty(ctx, 1, core.PartyVendor, core.PartyInput{Code: "V001", Name: "Vendor"})
	if err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	f.lens = seedLens(t, f.lenses, core.SingleVision, "SV-01")
	f.product, err = f.products.CreateProduct(ctx, 1, core.ProductInput{
		Category: core.CategoryFrame, Code: "FR-01", Name: "Frame", SalePrice: mustDec(t, "1200"),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := f.lenses.ReceivePowerStock(ctx, 1, f.lens.ID, "-1.00_-0.50", 10, mustDec(t, "100")); err != nil {
		t.Fatalf("receive power stock: %v", err)
	}
	if _, err := f.products.ReceiveStock(ctx, 1, f.product.ID, 10, mustDec(t, "500")); err != nil {
		t.Fatalf("receive product stock: %v", err)
	}

	return f, pool.Close
}

func TestInvoiceService_Lifecycle(t *testing.T) {
	f, closePool := newInvoiceFixture(t)
	defer closePool()
	ctx := context.Background()

	inv, err := f.invoices.CreateInvoice(ctx, 1, core.InvoiceInput{
		CustomerID: f.customer.ID,
		AmountPaid: mustDec(t, "1000"),
		Lines: []core.InvoiceLineInput{
			{
				Kind:         core.LineLensPower,
				LensID:       f.lens.ID,
				PowerKey:     "-1.00_-0.50",
				EyeSelection: core.EyeBoth,
				Quantity:     2, // 2 pairs = 4 pieces @ 450
			},
			{
				Kind:      core.LineProduct,
				ProductID: f.product.ID,
				Quantity:  1, // 1 @ 1200
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	if inv.InvoiceNumber != "INV-MAIN-00001" {
		t.Errorf("expected INV-MAIN-00001, got %s", inv.InvoiceNumber)
	}
	if !inv.TotalAmount.Equal(mustDec(t, "3000")) { // 4*450 + 1200
		t.Errorf("expected total 3000, got %s", inv.TotalAmount)
	}
	if len(inv.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(inv.Lines))
	}
	if inv.Lines[0].Pieces != 4 {
		t.Errorf("expected 4 pieces on lens line, got %d", inv.Lines[0].Pieces)
	}

	t.Run("StockDeducted", func(t *testing.T) {
		records, err := f.lenses.GetPowerInventory(ctx, 1, f.lens.ID)
		if err != nil {
			t.Fatalf("GetPowerInventory: %v", err)
		}
		if len(records) != 1 || records[0].Quantity != 6 {
			t.Errorf("expected 6 pieces left, got %+v", records)
		}
		p, err := f.products.GetProductByID(ctx, 1, f.product.ID)
		if err != nil {
			t.Fatalf("GetProductByID: %v", err)
		}
		if p.Quantity != 9 {
			t.Errorf("expected 9 frames left, got %d", p.Quantity)
		}
	})

	t.Run("OverrunAbortsWholeInvoice", func(t *testing.T) {
		_, err := f.invoices.CreateInvoice(ctx, 1, core.InvoiceInput{
			CustomerID: f.customer.ID,
			Lines: []core.InvoiceLineInput{
				{Kind: core.LineProduct, ProductID: f.product.ID, Quantity: 1},
				{Kind: core.LineLensPower, LensID: f.lens.ID, PowerKey: "-1.00_-0.50", EyeSelection: core.EyeBoth, Quantity: 50},
			},
		})
		if err == nil {
			t.Fatal("expected overrun error, got nil")
		}
		// The product line must have been rolled back with the lens failure.
		p, err := f.products.GetProductByID(ctx, 1, f.product.ID)
		if err != nil {
			t.Fatalf("GetProductByID: %v", err)
		}
		if p.Quantity != 9 {
			t.Errorf("expected rollback to keep 9 frames, got %d", p.Quantity)
		}
	})

	t.Run("NumberingStaysGapless", func(t *testing.T) {
		inv2, err := f.invoices.CreateInvoice(ctx, 1, core.InvoiceInput{
			CustomerID: f.customer.ID,
			Lines: []core.InvoiceLineInput{
				{Kind: core.LineProduct, ProductID: f.product.ID, Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("CreateInvoice: %v", err)
		}
		// The failed invoice above rolled its sequence bump back.
		if inv2.InvoiceNumber != "INV-MAIN-00002" {
			t.Errorf("expected INV-MAIN-00002, got %s", inv2.InvoiceNumber)
		}
	})

	t.Run("PaymentCappedAtOutstanding", func(t *testing.T) {
		if _, err := f.invoices.RecordPayment(ctx, 1, inv.ID, mustDec(t, "5000")); err == nil {
			t.Error("expected error for payment above outstanding, got nil")
		}
		updated, err := f.invoices.RecordPayment(ctx, 1, inv.ID, mustDec(t, "2000"))
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if !updated.AmountPaid.Equal(mustDec(t, "3000")) {
			t.Errorf("expected paid 3000, got %s", updated.AmountPaid)
		}
	})

	t.Run("ReturnRestocksAndShrinks", func(t *testing.T) {
		// Return 1 of the 2 lens pairs: 2 pieces back, 900 off the total.
		updated, err := f.invoices.ReturnLine(ctx, 1, inv.ID, inv.Lines[0].ID, 1)
		if err != nil {
			t.Fatalf("ReturnLine: %v", err)
		}
		if !updated.TotalAmount.Equal(mustDec(t, "2100")) {
			t.Errorf("expected total 2100 after return, got %s", updated.TotalAmount)
		}
		if updated.Lines[0].Quantity != 1 || updated.Lines[0].Pieces != 2 {
			t.Errorf("expected line reduced to 1 pair / 2 pieces, got %d/%d",
				updated.Lines[0].Quantity, updated.Lines[0].Pieces)
		}

		records, err := f.lenses.GetPowerInventory(ctx, 1, f.lens.ID)
		if err != nil {
			t.Fatalf("GetPowerInventory: %v", err)
		}
		if len(records) != 1 || records[0].Quantity != 8 {
			t.Errorf("expected 8 pieces after restock, got %+v", records)
		}
	})
}

func TestPurchaseService_Lifecycle(t *testing.T) {
	f, closePool := newInvoiceFixture(t)
	defer closePool()
	ctx := context.Background()

	pur, err := f.purchases.CreatePurchase(ctx, 1, core.PurchaseInput{
		VendorID:   f.vendor.ID,
		AmountPaid: mustDec(t, "500"),
		Lines: []core.PurchaseLineInput{
			{
				Kind:     core.LineLensPower,
				LensID:   f.lens.ID,
				PowerKey: "-1.00_-0.50",
				Quantity: 10,
				UnitCost: mustDec(t, "150"),
			},
			{
				Kind:      core.LineProduct,
				ProductID: f.product.ID,
				Quantity:  2,
				UnitCost:  mustDec(t, "600"),
			},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if pur.PurchaseNumber != "PUR-MAIN-00001" {
		t.Errorf("expected PUR-MAIN-00001, got %s", pur.PurchaseNumber)
	}
	if !pur.TotalAmount.Equal(mustDec(t, "2700")) { // 10*150 + 2*600
		t.Errorf("expected total 2700, got %s", pur.TotalAmount)
	}

	t.Run("StockReceivedWithBlend", func(t *testing.T) {
		// Fixture seeded 10 @ 100; purchase adds 10 @ 150 -> 20 @ 125.
		records, err := f.lenses.GetPowerInventory(ctx, 1, f.lens.ID)
		if err != nil {
			t.Fatalf("GetPowerInventory: %v", err)
		}
		if len(records) != 1 || records[0].Quantity != 20 {
			t.Fatalf("expected 20 pieces, got %+v", records)
		}
		if !records[0].UnitCost.Equal(mustDec(t, "125")) {
			t.Errorf("expected blended cost 125, got %s", records[0].UnitCost)
		}

		p, err := f.products.GetProductByID(ctx, 1, f.product.ID)
		if err != nil {
			t.Fatalf("GetProductByID: %v", err)
		}
		if p.Quantity != 12 {
			t.Errorf("expected 12 frames, got %d", p.Quantity)
		}
	})

	t.Run("PaymentCappedAtOutstanding", func(t *testing.T) {
		if _, err := f.purchases.RecordPayment(ctx, 1, pur.ID, mustDec(t, "3000")); err == nil {
			t.Error("expected error for payment above outstanding, got nil")
		}
		updated, err := f.purchases.RecordPayment(ctx, 1, pur.ID, mustDec(t, "2200"))
		if err != nil {
			t.Fatalf("RecordPayment: %v", err)
		}
		if !updated.AmountPaid.Equal(mustDec(t, "2700")) {
			t.Errorf("expected paid 2700, got %s", updated.AmountPaid)
		}
	})

	t.Run("CustomerAsVendorRejected", func(t *testing.T) {
		_, err := f.purchases.CreatePurchase(ctx, 1, core.PurchaseInput{
			VendorID: f.customer.ID,
			Lines: []core.PurchaseLineInput{
				{Kind: core.LineProduct, ProductID: f.product.ID, Quantity: 1, UnitCost: mustDec(t, "100")},
			},
		})
		if err == nil {
			t.Error("expected error for customer used as vendor, got nil")
		}
	})
}
