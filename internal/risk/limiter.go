// Package risk implements the notional cap on the hedge position.
//
// The rebalancer reacts mechanically to exposure deltas; the cap is the
// backstop that keeps a runaway exposure feed (or a bad oracle print) from
// growing the short without bound.
package risk

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotionalLimitExceeded is returned when the desired short size
	// would exceed the configured cap.
	ErrNotionalLimitExceeded = errors.New("risk: notional position limit exceeded")
)

// NotionalLimiter enforces a maximum USD size (1e30 scale) for the hedge
// position. A zero limit disables the check.
type NotionalLimiter struct {
	MaxPositionUsd decimal.Decimal
}

// NewNotionalLimiter creates a limiter with the given cap.
func NewNotionalLimiter(maxPositionUsd decimal.Decimal) *NotionalLimiter {
	return &NotionalLimiter{MaxPositionUsd: maxPositionUsd}
}

// CheckLimit validates the desired post-rebalance position size.
func (l *NotionalLimiter) CheckLimit(desiredUsd decimal.Decimal) error {
	if l.MaxPositionUsd.IsZero() {
		return nil
	}
	if desiredUsd.GreaterThan(l.MaxPositionUsd) {
		return ErrNotionalLimitExceeded
	}
	return nil
}
