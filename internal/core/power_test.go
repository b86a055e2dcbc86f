package core_test

import (
	"testing"

	"optics-backoffice/internal/core"
)

func TestParsePowerKey(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind core.LensType
		wantSph  float64
		wantCyl  float64
		wantAdd  float64
		wantErr  bool
	}{
		{name: "single vision", raw: "-2.00_-0.50", wantKind: core.SingleVision, wantSph: -2.00, wantCyl: -0.50},
		{name: "bifocal", raw: "+1.25_-0.75_+2.00", wantKind: core.Bifocal, wantSph: 1.25, wantCyl: -0.75, wantAdd: 2.00},
		{name: "unsigned components", raw: "1.00_0.00", wantKind: core.SingleVision, wantSph: 1.00, wantCyl: 0.00},
		{name: "too few components", raw: "-2.00", wantErr: true},
		{name: "too many components", raw: "1_2_3_4", wantErr: true},
		{name: "non-numeric component", raw: "-2.00_abc", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := core.ParsePowerKey(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", tt.raw, k)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePowerKey(%q): %v", tt.raw, err)
			}
			if k.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", k.Kind, tt.wantKind)
			}
			if k.Sph != tt.wantSph || k.Cyl != tt.wantCyl {
				t.Errorf("sph/cyl = %v/%v, want %v/%v", k.Sph, k.Cyl, tt.wantSph, tt.wantCyl)
			}
			add, ok := k.Addition()
			if tt.wantKind == core.Bifocal {
				if !ok || add != tt.wantAdd {
					t.Errorf("addition = %v (present=%v), want %v", add, ok, tt.wantAdd)
				}
			} else if ok {
				t.Errorf("single-vision key must not report an addition")
			}
		})
	}
}

func TestPowerKey_StringRoundTrip(t *testing.T) {
	keys := []string{"-2.00_-0.50", "+1.25_-0.75_+2.00", "+0.00_+0.00"}
	for _, raw := range keys {
		k, err := core.ParsePowerKey(raw)
		if err != nil {
			t.Fatalf("ParsePowerKey(%q): %v", raw, err)
		}
		back, err := core.ParsePowerKey(k.String())
		if err != nil {
			t.Fatalf("re-parse of %q: %v", k.String(), err)
		}
		if back != k {
			t.Errorf("round trip changed key: %+v vs %+v", k, back)
		}
	}
}
