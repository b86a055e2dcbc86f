package core_test

import (
	"context"
	"errors"
	"testing"

	"optics-backoffice/internal/core"
)

func seedLens(t *testing.T, svc core.LensService, lensType core.LensType, code string) *core.Lens {
	t.Helper()
	lens, err := svc.CreateLens(context.Background(), 1, core.LensInput{
		Code:      code,
		Name:      "Test " + code,
		LensType:  lensType,
		SalePrice: mustDec(t, "450"),
	})
	if err != nil {
		t.Fatalf("CreateLens %s: %v", code, err)
	}
	return lens
}

func TestLensService_PowerStockLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewLensService(pool)
	lens := seedLens(t, svc, core.SingleVision, "SV-01")

	t.Run("FirstReceiptCreatesRow", func(t *testing.T) {
		rec, err := svc.ReceivePowerStock(ctx, 1, lens.ID, "-2.00_-0.75", 10, mustDec(t, "100"))
		if err != nil {
			t.Fatalf("ReceivePowerStock: %v", err)
		}
		if rec.Quantity != 10 {
			t.Errorf("expected quantity 10, got %d", rec.Quantity)
		}
		if !rec.UnitCost.Equal(mustDec(t, "100")) {
			t.Errorf("expected unit cost 100, got %s", rec.UnitCost)
		}
		if rec.PowerKey != "-2.00_-0.75" {
			t.Errorf("unexpected power key %s", rec.PowerKey)
		}
	})

	t.Run("SecondReceiptBlendsCost", func(t *testing.T) {
		// 10 @ 100 + 10 @ 200 -> 20 @ 150
		rec, err := svc.ReceivePowerStock(ctx, 1, lens.ID, "-2.00_-0.75", 10, mustDec(t, "200"))
		if err != nil {
			t.Fatalf("ReceivePowerStock: %v", err)
		}
		if rec.Quantity != 20 {
			t.Errorf("expected quantity 20, got %d", rec.Quantity)
		}
		if !rec.UnitCost.Equal(mustDec(t, "150")) {
			t.Errorf("expected blended cost 150, got %s", rec.UnitCost)
		}
	})

	t.Run("TypeMismatchRejected", func(t *testing.T) {
		if _, err := svc.ReceivePowerStock(ctx, 1, lens.ID, "-2.00_-0.75_+2.00", 5, mustDec(t, "100")); err == nil {
			t.Error("expected error receiving bifocal key into single-vision lens, got nil")
		}
	})

	t.Run("SearchRanksExactFirst", func(t *testing.T) {
		if _, err := svc.ReceivePowerStock(ctx, 1, lens.ID, "-2.25_-0.75", 5, mustDec(t, "100")); err != nil {
			t.Fatalf("ReceivePowerStock: %v", err)
		}

		matches, err := svc.SearchPowers(ctx, 1, lens.ID, core.ParsePowerFilter("-2.00", "-0.75", ""))
		if err != nil {
			t.Fatalf("SearchPowers: %v", err)
		}
		if len(matches) == 0 {
			t.Fatal("expected matches, got none")
		}
		if matches[0].PowerKey != "-2.00_-0.75" {
			t.Errorf("expected exact match first, got %s", matches[0].PowerKey)
		}
		if matches[0].Score != 0 {
			t.Errorf("expected exact match score 0, got %f", matches[0].Score)
		}
	})

	t.Run("SelectionRejectsOverrun", func(t *testing.T) {
		_, err := svc.BuildPowerSelection(ctx, 1, lens.ID, "-2.25_-0.75", core.EyeBoth, 3) // needs 6, have 5
		if err == nil {
			t.Error("expected overrun error, got nil")
		}
	})

	t.Run("SelectionDoublesForBothEyes", func(t *testing.T) {
		sel, err := svc.BuildPowerSelection(ctx, 1, lens.ID, "-2.00_-0.75", core.EyeBoth, 3)
		if err != nil {
			t.Fatalf("BuildPowerSelection: %v", err)
		}
		if sel.PieceQuantity != 6 {
			t.Errorf("expected 6 pieces, got %d", sel.PieceQuantity)
		}
		if sel.EyeSelection != core.EyeBoth {
			t.Errorf("expected both, got %s", sel.EyeSelection)
		}
		if !sel.Price.Equal(lens.SalePrice) {
			t.Errorf("expected price %s, got %s", lens.SalePrice, sel.Price)
		}
	})

	t.Run("DeductAndRestore", func(t *testing.T) {
		tx, err := pool.Begin(ctx)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer tx.Rollback(ctx)

		if err := svc.DeductPowerStockTx(ctx, tx, lens.ID, "-2.00_-0.75", 6); err != nil {
			t.Fatalf("DeductPowerStockTx: %v", err)
		}
		if err := svc.DeductPowerStockTx(ctx, tx, lens.ID, "-2.00_-0.75", 100); err == nil {
			t.Error("expected overrun error, got nil")
		}
		if err := svc.RestorePowerStockTx(ctx, tx, lens.ID, "-2.00_-0.75", 6); err != nil {
			t.Fatalf("RestorePowerStockTx: %v", err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit: %v", err)
		}

		records, err := svc.GetPowerInventory(ctx, 1, lens.ID)
		if err != nil {
			t.Fatalf("GetPowerInventory: %v", err)
		}
		for _, r := range records {
			if r.PowerKey == "-2.00_-0.75" && r.Quantity != 20 {
				t.Errorf("expected quantity back at 20, got %d", r.Quantity)
			}
		}
	})
}

func TestLensService_SearchEmptyInventory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewLensService(pool)
	lens := seedLens(t, svc, core.SingleVision, "SV-EMPTY")

	_, err := svc.SearchPowers(ctx, 1, lens.ID, core.PowerFilter{})
	if !errors.Is(err, core.ErrNoPowerInventory) {
		t.Errorf("expected ErrNoPowerInventory, got %v", err)
	}
}

func TestProductService_StockLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewProductService(pool)

	product, err := svc.CreateProduct(ctx, 1, core.ProductInput{
		Category:  core.CategoryFrame,
		Code:      "FR-01",
		Name:      "Test Frame",
		SalePrice: mustDec(t, "1200"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	// 4 @ 300 + 4 @ 500 -> 8 @ 400
	if _, err := svc.ReceiveStock(ctx, 1, product.ID, 4, mustDec(t, "300")); err != nil {
		t.Fatalf("ReceiveStock: %v", err)
	}
	p, err := svc.ReceiveStock(ctx, 1, product.ID, 4, mustDec(t, "500"))
	if err != nil {
		t.Fatalf("ReceiveStock: %v", err)
	}
	if p.Quantity != 8 {
		t.Errorf("expected quantity 8, got %d", p.Quantity)
	}
	if !p.UnitCost.Equal(mustDec(t, "400")) {
		t.Errorf("expected blended cost 400, got %s", p.UnitCost)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)

	if err := svc.DeductStockTx(ctx, tx, product.ID, 10); err == nil {
		t.Error("expected overrun error, got nil")
	}
	if err := svc.DeductStockTx(ctx, tx, product.ID, 3); err != nil {
		t.Fatalf("DeductStockTx: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	p, err = svc.GetProductByID(ctx, 1, product.ID)
	if err != nil {
		t.Fatalf("GetProductByID: %v", err)
	}
	if p.Quantity != 5 {
		t.Errorf("expected quantity 5 after deduction, got %d", p.Quantity)
	}
}
