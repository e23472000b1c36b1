// Package model defines the core domain types shared across the hedging
// engine. All monetary values use shopspring/decimal — never float64 for
// money. USD-denominated sizes are fixed-point integers at 1e30 scale;
// base-asset quantities are integers at the asset's native precision.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsdScale is the fixed-point scale for USD-denominated sizes (1e30).
// Position sizes, prices, and thresholds all share this scale. Collateral
// amounts do not — they use the collateral token's native precision.
var UsdScale = decimal.New(1, 30)

// Exposure is the per-pool running total of base-asset units requiring a
// hedge. The quantity is never negative: removals larger than the tracked
// total clamp to zero rather than underflowing.
type Exposure struct {
	PoolID   string          `json:"pool_id" db:"pool_id"`
	Quantity decimal.Decimal `json:"quantity" db:"quantity"` // base-asset native units
}

// PriceQuote is a USD fixed-point price (1e30 scale) for one unit of the
// base asset, together with the asset's own decimal precision. Quotes are
// fetched fresh on every rebalance evaluation and never cached.
type PriceQuote struct {
	PriceUsd     decimal.Decimal `json:"price_usd"` // 1e30 scale
	BaseDecimals int32           `json:"base_decimals"`
}

// HedgePosition is the venue's view of one open position. The engine holds
// no local copy; it re-reads this from the venue on every evaluation.
type HedgePosition struct {
	Market           string          `json:"market"`
	SizeInUsd        decimal.Decimal `json:"size_in_usd"`       // 1e30 scale
	CollateralAmount decimal.Decimal `json:"collateral_amount"` // collateral native units
	IsLong           bool            `json:"is_long"`
}

// Rebalance actions.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
	ActionSkip     = "skip"
)

// CorrectiveOrder is the ephemeral value object handed to the venue:
// constructed, submitted, and discarded — never persisted.
type CorrectiveOrder struct {
	ClientID        string          `json:"client_id"`
	Market          string          `json:"market"`
	Direction       string          `json:"direction"` // increase or decrease
	SizeDeltaUsd    decimal.Decimal `json:"size_delta_usd"`   // 1e30 scale, positive
	CollateralDelta decimal.Decimal `json:"collateral_delta"` // zero for decreases
	ExecutionFee    decimal.Decimal `json:"execution_fee"`    // fee-currency native units
	UnwrapNative    bool            `json:"unwrap_native"`    // decrease only
}

// RebalanceRecord is an immutable record of one rebalance evaluation.
// Once created, these are never modified or deleted.
type RebalanceRecord struct {
	ID              string          `json:"id" db:"id"`
	PoolID          string          `json:"pool_id" db:"pool_id"`
	Action          string          `json:"action" db:"action"`       // increase, decrease, skip
	DeltaUsd        decimal.Decimal `json:"delta_usd" db:"delta_usd"` // signed
	CollateralDelta decimal.Decimal `json:"collateral_delta" db:"collateral_delta"`
	OrderID         string          `json:"order_id,omitempty" db:"order_id"`
	Timestamp       time.Time       `json:"timestamp" db:"timestamp"`
}
