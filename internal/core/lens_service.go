package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type lensService struct {
	pool *pgxpool.Pool
}

// NewLensService constructs a LensService backed by PostgreSQL.
func NewLensService(pool *pgxpool.Pool) LensService {
	return &lensService{pool: pool}
}

func (s *lensService) CreateLens(ctx context.Context, storeID int, input LensInput) (*Lens, error) {
	if input.Code == "" || input.Name == "" {
		return nil, fmt.Errorf("lens code and name are required")
	}
	if input.LensType != SingleVision && input.LensType != Bifocal {
		return nil, fmt.Errorf("invalid lens type %q", input.LensType)
	}
	axis := input.Axis
	if axis == 0 {
		axis = DefaultAxis
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	l := &Lens{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO lenses (store_id, code, name, lens_type, material, coating, axis, sale_price, reorder_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, store_id, code, name, lens_type, material, coating, axis,
		          sale_price, reorder_level, is_active, created_at`,
		storeID, input.Code, input.Name, string(input.LensType),
		toPtr(input.Material), toPtr(input.Coating), axis, input.SalePrice, input.ReorderLevel,
	).Scan(
		&l.ID, &l.StoreID, &l.Code, &l.Name, &l.LensType, &l.Material, &l.Coating, &l.Axis,
		&l.SalePrice, &l.ReorderLevel, &l.IsActive, &l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create lens %q: %w", input.Code, err)
	}
	return l, nil
}

func (s *lensService) GetLenses(ctx context.Context, storeID int) ([]Lens, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, store_id, code, name, lens_type, material, coating, axis,
		       sale_price, reorder_level, is_active, created_at
		FROM lenses
		WHERE store_id = $1 AND is_active = true
		ORDER BY code`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("get lenses: %w", err)
	}
	defer rows.Close()

	var lenses []Lens
	for rows.Next() {
		var l Lens
		if err := rows.Scan(
			&l.ID, &l.StoreID, &l.Code, &l.Name, &l.LensType, &l.Material, &l.Coating, &l.Axis,
			&l.SalePrice, &l.ReorderLevel, &l.IsActive, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lens: %w", err)
		}
		lenses = append(lenses, l)
	}
	return lenses, rows.Err()
}

func (s *lensService) GetLensByID(ctx context.Context, storeID, lensID int) (*Lens, error) {
	l := &Lens{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, store_id, code, name, lens_type, material, coating, axis,
		       sale_price, reorder_level, is_active, created_at
		FROM lenses
		WHERE store_id = $1 AND id = $2`,
		storeID, lensID,
	).Scan(
		&l.ID, &l.StoreID, &l.Code, &l.Name, &l.LensType, &l.Material, &l.Coating, &l.Axis,
		&l.SalePrice, &l.ReorderLevel, &l.IsActive, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lens %d not found for store %d", lensID, storeID)
		}
		return nil, fmt.Errorf("fetch lens %d: %w", lensID, err)
	}
	return l, nil
}

// GetPowerInventory rebuilds the in-stock power records for one lens. The
// records are a fresh snapshot; selection never mutates them.
func (s *lensService) GetPowerInventory(ctx context.Context, storeID, lensID int) ([]PowerRecord, error) {
	lens, err := s.GetLensByID(ctx, storeID, lensID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT power_key, sph, cyl, addition, quantity, unit_cost
		FROM lens_powers
		WHERE lens_id = $1 AND quantity > 0
		ORDER BY sph, cyl, addition NULLS FIRST`,
		lensID,
	)
	if err != nil {
		return nil, fmt.Errorf("query power inventory for lens %d: %w", lensID, err)
	}
	defer rows.Close()

	axis := lens.Axis
	if axis == 0 {
		axis = DefaultAxis
	}

	var records []PowerRecord
	for rows.Next() {
		var r PowerRecord
		if err := rows.Scan(&r.PowerKey, &r.Sph, &r.Cyl, &r.Addition, &r.Quantity, &r.UnitCost); err != nil {
			return nil, fmt.Errorf("scan power record: %w", err)
		}
		r.Axis = axis
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *lensService) SearchPowers(ctx context.Context, storeID, lensID int, filter PowerFilter) ([]PowerMatch, error) {
	records, err := s.GetPowerInventory(ctx, storeID, lensID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("lens %d: %w", lensID, ErrNoPowerInventory)
	}
	return MatchPowers(records, filter), nil
}

// ReceivePowerStock adds qty pieces of one power in its own transaction,
// blending unit cost by weighted average:
//
//	new_cost = (old_qty*old_cost + qty*unit_cost) / (old_qty + qty)
func (s *lensService) ReceivePowerStock(ctx context.Context, storeID, lensID int, rawKey string, qty int, unitCost decimal.Decimal) (*PowerRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lens, err := s.GetLensByID(ctx, storeID, lensID)
	if err != nil {
		return nil, err
	}

	rec, err := receivePowerStockTx(ctx, tx, lens, rawKey, qty, unitCost)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit power receipt: %w", err)
	}
	return rec, nil
}

// receivePowerStockTx is the shared receipt path, also used by the purchase
// service inside its own transaction.
func receivePowerStockTx(ctx context.Context, tx pgx.Tx, lens *Lens, rawKey string, qty int, unitCost decimal.Decimal) (*PowerRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("receive quantity must be positive, got %d", qty)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	key, err := ParsePowerKey(rawKey)
	if err != nil {
		return nil, err
	}
	if lens.LensType == Bifocal && key.Kind != Bifocal {
		return nil, fmt.Errorf("lens %s is bifocal; power key %q has no addition", lens.Code, rawKey)
	}
	if lens.LensType == SingleVision && key.Kind != SingleVision {
		return nil, fmt.Errorf("lens %s is single-vision; power key %q carries an addition", lens.Code, rawKey)
	}

	var addition *float64
	if add, ok := key.Addition(); ok {
		addition = &add
	}

	// Create the row on first receipt, then lock it for the cost blend.
	var rowID int
	err = tx.QueryRow(ctx, `
		INSERT INTO lens_powers (lens_id, power_key, sph, cyl, addition, quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5, 0, 0)
		ON CONFLICT (lens_id, power_key) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, lens.ID, key.String(), key.Sph, key.Cyl, addition).Scan(&rowID)
	if err != nil {
		return nil, fmt.Errorf("upsert power row %s: %w", key, err)
	}

	var oldQty int
	var oldCost decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT quantity, unit_cost FROM lens_powers WHERE id = $1 FOR UPDATE", rowID,
	).Scan(&oldQty, &oldCost)
	if err != nil {
		return nil, fmt.Errorf("lock power row %s: %w", key, err)
	}

	newQty := oldQty + qty
	newCost := unitCost
	if newQty > 0 {
		newCost = oldCost.Mul(decimal.NewFromInt(int64(oldQty))).
			Add(unitCost.Mul(decimal.NewFromInt(int64(qty)))).
			Div(decimal.NewFromInt(int64(newQty)))
	}

	_, err = tx.Exec(ctx, `
		UPDATE lens_powers SET quantity = $1, unit_cost = $2, updated_at = NOW()
		WHERE id = $3
	`, newQty, newCost, rowID)
	if err != nil {
		return nil, fmt.Errorf("update power row %s: %w", key, err)
	}

	axis := lens.Axis
	if axis == 0 {
		axis = DefaultAxis
	}
	return &PowerRecord{
		PowerKey: key.String(),
		Sph:      key.Sph,
		Cyl:      key.Cyl,
		Addition: addition,
		Axis:     axis,
		Quantity: newQty,
		UnitCost: newCost,
	}, nil
}

// BuildPowerSelection validates a confirmed pick. quantity is pairs for
// EyeBoth and single lenses for EyeLeft/EyeRight; the raw piece deduction is
// doubled for both eyes.
func (s *lensService) BuildPowerSelection(ctx context.Context, storeID, lensID int, rawKey string, eye EyeSelection, quantity int) (*PowerSelection, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("selection quantity must be positive, got %d", quantity)
	}
	if eye != EyeBoth && eye != EyeLeft && eye != EyeRight {
		return nil, fmt.Errorf("invalid eye selection %q", eye)
	}

	key, err := ParsePowerKey(rawKey)
	if err != nil {
		return nil, err
	}

	lens, err := s.GetLensByID(ctx, storeID, lensID)
	if err != nil {
		return nil, err
	}

	var available int
	var addition *float64
	err = s.pool.QueryRow(ctx, `
		SELECT quantity, addition
		FROM lens_powers
		WHERE lens_id = $1 AND power_key = $2`,
		lensID, key.String(),
	).Scan(&available, &addition)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("power %s not stocked for lens %s", key, lens.Code)
		}
		return nil, fmt.Errorf("fetch power %s: %w", key, err)
	}

	pieces := PiecesForEye(eye, quantity)
	if pieces > available {
		return nil, fmt.Errorf("only %d piece(s) of power %s available for lens %s, requested %d",
			available, key, lens.Code, pieces)
	}

	axis := lens.Axis
	if axis == 0 {
		axis = DefaultAxis
	}
	return &PowerSelection{
		LensID:        lensID,
		PowerKey:      key.String(),
		Sph:           key.Sph,
		Cyl:           key.Cyl,
		Addition:      addition,
		Axis:          axis,
		Quantity:      quantity,
		PieceQuantity: pieces,
		EyeSelection:  eye,
		Price:         lens.SalePrice,
	}, nil
}

// PiecesForEye converts a line quantity into raw lens pieces:
// both eyes take two pieces per unit, a single eye takes one.
func PiecesForEye(eye EyeSelection, quantity int) int {
	if eye == EyeBoth {
		return quantity * 2
	}
	return quantity
}

func (s *lensService) DeductPowerStockTx(ctx context.Context, tx pgx.Tx, lensID int, rawKey string, pieces int) error {
	if pieces <= 0 {
		return fmt.Errorf("deduct pieces must be positive, got %d", pieces)
	}
	key, err := ParsePowerKey(rawKey)
	if err != nil {
		return err
	}

	var available int
	err = tx.QueryRow(ctx, `
		SELECT quantity FROM lens_powers
		WHERE lens_id = $1 AND power_key = $2
		FOR UPDATE`,
		lensID, key.String(),
	).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("power %s not stocked for lens %d", key, lensID)
		}
		return fmt.Errorf("lock power %s: %w", key, err)
	}

	if available < pieces {
		return fmt.Errorf("only %d piece(s) of power %s available, requested %d", available, key, pieces)
	}

	_, err = tx.Exec(ctx, `
		UPDATE lens_powers SET quantity = quantity - $1, updated_at = NOW()
		WHERE lens_id = $2 AND power_key = $3
	`, pieces, lensID, key.String())
	if err != nil {
		return fmt.Errorf("deduct power %s: %w", key, err)
	}
	return nil
}

func (s *lensService) RestorePowerStockTx(ctx context.Context, tx pgx.Tx, lensID int, rawKey string, pieces int) error {
	if pieces <= 0 {
		return fmt.Errorf("restore pieces must be positive, got %d", pieces)
	}
	key, err := ParsePowerKey(rawKey)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE lens_powers SET quantity = quantity + $1, updated_at = NOW()
		WHERE lens_id = $2 AND power_key = $3
	`, pieces, lensID, key.String())
	if err != nil {
		return fmt.Errorf("restore power %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("power %s not stocked for lens %d", key, lensID)
	}
	return nil
}
