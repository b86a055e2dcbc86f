package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// LensType identifies the power variant a lens carries. Single-vision powers
// are (sph, cyl) pairs; bifocal powers add a near addition.
type LensType string

const (
	SingleVision LensType = "single_vision"
	Bifocal      LensType = "bifocal"
)

// PowerKey is the decoded form of a lens_powers.power_key string. The variant
// is decided once here, at the store-read boundary; downstream code switches on
// Kind instead of re-splitting the raw key.
type PowerKey struct {
	Kind LensType
	Sph  float64
	Cyl  float64
	Add  float64 // meaningful only when Kind == Bifocal
}

// Addition returns the add power and whether the key carries one.
func (k PowerKey) Addition() (float64, bool) {
	if k.Kind == Bifocal {
		return k.Add, true
	}
	return 0, false
}

// String re-encodes the key in canonical signed two-decimal form,
// e.g. "-2.00_-0.50" or "+1.25_-0.75_+2.00".
func (k PowerKey) String() string {
	if k.Kind == Bifocal {
		return fmt.Sprintf("%+.2f_%+.2f_%+.2f", k.Sph, k.Cyl, k.Add)
	}
	return fmt.Sprintf("%+.2f_%+.2f", k.Sph, k.Cyl)
}

// ParsePowerKey decodes "sph_cyl" (single-vision) or "sph_cyl_add" (bifocal).
// Each component must be a signed decimal; anything else is a malformed key.
func ParsePowerKey(raw string) (PowerKey, error) {
	parts := strings.Split(raw, "_")
	if len(parts) != 2 && len(parts) != 3 {
		return PowerKey{}, fmt.Errorf("power key %q: expected 2 or 3 components, got %d", raw, len(parts))
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return PowerKey{}, fmt.Errorf("power key %q: component %q is not a number", raw, p)
		}
		values[i] = v
	}

	k := PowerKey{Kind: SingleVision, Sph: values[0], Cyl: values[1]}
	if len(values) == 3 {
		k.Kind = Bifocal
		k.Add = values[2]
	}
	return k, nil
}

// PowerRecord is one discrete power in a lens's inventory. Records are
// reconstructed fresh on every fetch and never mutated in place; only rows
// with Quantity > 0 are surfaced to selection.
type PowerRecord struct {
	PowerKey string          `json:"power_key"`
	Sph      float64         `json:"sph"`
	Cyl      float64         `json:"cyl"`
	Addition *float64        `json:"addition,omitempty"`
	Axis     int             `json:"axis"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// PowerSelection is the confirmed output of a power pick, consumed by the
// invoice-line builder. Quantity is the invoice-line quantity (pairs for
// "both", single lenses otherwise); PieceQuantity is the raw number of
// lens pieces to deduct from stock.
type PowerSelection struct {
	LensID        int             `json:"lens_id"`
	PowerKey      string          `json:"power_key"`
	Sph           float64         `json:"sph"`
	Cyl           float64         `json:"cyl"`
	Addition      *float64        `json:"addition,omitempty"`
	Axis          int             `json:"axis"`
	Quantity      int             `json:"quantity"`
	PieceQuantity int             `json:"piece_quantity"`
	EyeSelection  EyeSelection    `json:"eye_selection"`
	Price         decimal.Decimal `json:"price"`
}
