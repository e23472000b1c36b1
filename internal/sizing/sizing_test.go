package sizing

import (
	"testing"

	"github.com/shopspring/decimal"
)

// e constructs value * 10^exp as a decimal for fixed-point test fixtures.
func e(value int64, exp int32) decimal.Decimal {
	return decimal.New(value, exp)
}

// --- DesiredShortUsd ---

func TestDesiredShortUsd_CanonicalScenario(t *testing.T) {
	// 100e18 units at 1800e30 USD with 18 base decimals → 180000e30.
	got, err := DesiredShortUsd(e(100, 18), e(1800, 30), 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(e(180000, 30)) {
		t.Errorf("expected 180000e30, got %s", got)
	}
}

func TestDesiredShortUsd_ZeroExposure(t *testing.T) {
	got, err := DesiredShortUsd(decimal.Zero, e(1800, 30), 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero for zero exposure, got %s", got)
	}
}

func TestDesiredShortUsd_TruncatesTowardZero(t *testing.T) {
	// 3 units at price 1e29+1: (3e29+3)/1e18 leaves a fractional
	// remainder that must be dropped, not rounded.
	got, err := DesiredShortUsd(decimal.NewFromInt(3), e(1, 29).Add(decimal.NewFromInt(1)), 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 * (1e29+1) = 3e29+3; / 1e18 = 3e11 + 3e-18 → truncates to 3e11.
	if !got.Equal(e(3, 11)) {
		t.Errorf("expected 3e11 after truncation, got %s", got)
	}
	if !got.Equal(got.Truncate(0)) {
		t.Errorf("result should be integral, got %s", got)
	}
}

func TestDesiredShortUsd_MultiplyBeforeDivide(t *testing.T) {
	// With exposure below one whole unit, dividing first would floor to
	// zero; the canonical multiply-first order keeps precision.
	got, err := DesiredShortUsd(e(5, 17), e(1800, 30), 18) // 0.5 units
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(e(900, 30)) {
		t.Errorf("expected 900e30, got %s", got)
	}
}

func TestDesiredShortUsd_RejectsNegative(t *testing.T) {
	if _, err := DesiredShortUsd(e(-1, 18), e(1800, 30), 18); err != ErrNegativeQuantity {
		t.Errorf("expected ErrNegativeQuantity for negative exposure, got %v", err)
	}
	if _, err := DesiredShortUsd(e(1, 18), e(-1800, 30), 18); err != ErrNegativeQuantity {
		t.Errorf("expected ErrNegativeQuantity for negative price, got %v", err)
	}
}

// --- CollateralForIncrease ---

func TestCollateralForIncrease_CanonicalScenario(t *testing.T) {
	got, err := CollateralForIncrease(e(180000, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(180001)) {
		t.Errorf("expected 180001, got %s", got)
	}
}

func TestCollateralForIncrease_SmallDeltaStillNonZero(t *testing.T) {
	// A size delta below one collateral unit still reserves 1.
	got, err := CollateralForIncrease(e(5, 29)) // 0.5 USD
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1 for sub-unit delta, got %s", got)
	}
}

func TestCollateralForIncrease_FloorPlusOne(t *testing.T) {
	tests := []struct {
		deltaUsd decimal.Decimal
		want     int64
	}{
		{e(1, 30), 2},
		{e(999, 30), 1000},
		{e(1, 30).Add(e(9, 29)), 2},  // 1.9 → floor 1, +1
		{e(2, 30).Sub(decimal.NewFromInt(1)), 2}, // just under 2
	}
	for _, tt := range tests {
		got, err := CollateralForIncrease(tt.deltaUsd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("CollateralForIncrease(%s) = %s, want %d", tt.deltaUsd, got, tt.want)
		}
	}
}

func TestCollateralForIncrease_RejectsNegative(t *testing.T) {
	if _, err := CollateralForIncrease(e(-1, 30)); err != ErrNegativeQuantity {
		t.Errorf("expected ErrNegativeQuantity, got %v", err)
	}
}

// --- ClampedAdd ---

func TestClampedAdd_Accumulates(t *testing.T) {
	total := decimal.Zero
	for _, delta := range []int64{100, 250, -50} {
		total = ClampedAdd(total, decimal.NewFromInt(delta))
	}
	if !total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected 300, got %s", total)
	}
}

func TestClampedAdd_ClampsOnUnderflow(t *testing.T) {
	got := ClampedAdd(decimal.NewFromInt(10), decimal.NewFromInt(-50))
	if !got.IsZero() {
		t.Errorf("expected clamp to zero, got %s", got)
	}
}

func TestClampedAdd_NeverNegative(t *testing.T) {
	total := decimal.Zero
	deltas := []int64{5, -20, 7, -1, -100, 3}
	for _, d := range deltas {
		total = ClampedAdd(total, decimal.NewFromInt(d))
		if total.IsNegative() {
			t.Fatalf("total went negative after delta %d: %s", d, total)
		}
	}
}
