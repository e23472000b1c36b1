// Package sizing implements the fixed-point arithmetic for hedge sizing.
//
// Three mismatched scales meet here:
//   - base-asset quantities at the asset's native precision (e.g. 1e18)
//   - USD sizes and prices at 1e30 fixed point
//   - collateral amounts at the collateral token's native precision
//
// All operations are integer fixed-point: multiply first, divide after,
// truncate toward zero. All values use shopspring/decimal — never float64
// for money.
package sizing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

var (
	// ErrNegativeQuantity is returned when a quantity that must be
	// non-negative (exposure, price, size delta) is negative.
	ErrNegativeQuantity = errors.New("sizing: quantity must be non-negative")
)

// one collateral unit; the floor-plus-one rule always reserves at least this.
var one = decimal.NewFromInt(1)

// DesiredShortUsd computes the USD size (1e30 scale) of the short position
// that neutralizes the given exposure:
//
//	desiredUsd = exposureQuantity * priceUsd / 10^baseDecimals
//
// Multiplication before division, quotient truncated toward zero. The order
// of operations is canonical: changing it changes the truncation result.
func DesiredShortUsd(exposureQuantity, priceUsd decimal.Decimal, baseDecimals int32) (decimal.Decimal, error) {
	if exposureQuantity.IsNegative() || priceUsd.IsNegative() {
		return decimal.Zero, ErrNegativeQuantity
	}
	q, _ := exposureQuantity.Mul(priceUsd).QuoRem(decimal.New(1, baseDecimals), 0)
	return q, nil
}

// CollateralForIncrease computes the collateral (native units) to attach to
// a size increase:
//
//	collateralDelta = sizeDeltaUsd / 1e30 + 1
//
// Floor plus one: deliberately conservative, so even a sub-dollar size delta
// reserves a non-zero collateral allocation.
func CollateralForIncrease(sizeDeltaUsd decimal.Decimal) (decimal.Decimal, error) {
	if sizeDeltaUsd.IsNegative() {
		return decimal.Zero, ErrNegativeQuantity
	}
	q, _ := sizeDeltaUsd.QuoRem(model.UsdScale, 0)
	return q.Add(one), nil
}

// ClampedAdd applies a signed delta to a non-negative running total,
// saturating at zero. A removal larger than the tracked total yields zero —
// never a negative value, never an error.
func ClampedAdd(total, delta decimal.Decimal) decimal.Decimal {
	sum := total.Add(delta)
	if sum.IsNegative() {
		return decimal.Zero
	}
	return sum
}
