package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrNoPowerInventory is returned when a lens exists but has no in-stock
// powers to select from.
var ErrNoPowerInventory = errors.New("no power inventory found")

// Lens is a lens catalog entry. Its power stock lives in lens_powers, one row
// per discrete (sph, cyl[, add]) combination.
type Lens struct {
	ID           int             `json:"id"`
	StoreID      int             `json:"store_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	LensType     LensType        `json:"lens_type"`
	Material     *string         `json:"material,omitempty"`
	Coating      *string         `json:"coating,omitempty"`
	Axis         int             `json:"axis"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	ReorderLevel int             `json:"reorder_level"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LensInput holds the fields required to create a new lens.
type LensInput struct {
	Code         string
	Name         string
	LensType     LensType
	Material     string
	Coating      string
	Axis         int // 0 means "use DefaultAxis"
	SalePrice    decimal.Decimal
	ReorderLevel int
}

// LensService manages the lens catalog and per-lens power inventory.
type LensService interface {
	// CreateLens creates a new lens catalog entry for the given store.
	CreateLens(ctx context.Context, storeID int, input LensInput) (*Lens, error)

	// GetLenses returns all active lenses for a store, ordered by code.
	GetLenses(ctx context.Context, storeID int) ([]Lens, error)

	// GetLensByID returns a lens by primary key, scoped to the store.
	GetLensByID(ctx context.Context, storeID, lensID int) (*Lens, error)

	// GetPowerInventory reconstructs the lens's in-stock power records.
	// Zero-quantity rows are excluded; the axis comes from the parent lens.
	GetPowerInventory(ctx context.Context, storeID, lensID int) ([]PowerRecord, error)

	// SearchPowers fetches the power inventory and ranks it against the
	// filter. Returns ErrNoPowerInventory when the lens has nothing in stock.
	SearchPowers(ctx context.Context, storeID, lensID int, filter PowerFilter) ([]PowerMatch, error)

	// ReceivePowerStock adds pieces of one power, creating the row on first
	// receipt and blending unit cost by weighted average.
	ReceivePowerStock(ctx context.Context, storeID, lensID int, rawKey string, qty int, unitCost decimal.Decimal) (*PowerRecord, error)

	// BuildPowerSelection validates a confirmed power pick against available
	// stock and returns the selection for the invoice-line builder. It does
	// not deduct stock; deduction happens inside the invoice transaction.
	BuildPowerSelection(ctx context.Context, storeID, lensID int, rawKey string, eye EyeSelection, quantity int) (*PowerSelection, error)

	// DeductPowerStockTx removes pieces of one power within the caller's
	// transaction, rejecting overruns with a message naming the power.
	DeductPowerStockTx(ctx context.Context, tx pgx.Tx, lensID int, rawKey string, pieces int) error

	// RestorePowerStockTx adds pieces back within the caller's transaction
	// (sales returns).
	RestorePowerStockTx(ctx context.Context, tx pgx.Tx, lensID int, rawKey string, pieces int) error
}
