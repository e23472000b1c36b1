// Package venue talks to the external position venue that holds and
// executes the offsetting short position. The engine has read-only,
// on-demand visibility into open positions and submits corrective orders
// as best-effort single attempts — no retry, no queuing.
package venue

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/market"
	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

var (
	// ErrDuplicatePosition is returned when the venue reports more than
	// one open short for the same market. The engine assumes at most one
	// offsetting position per market and fails loudly rather than picking
	// one by scan order.
	ErrDuplicatePosition = errors.New("venue: multiple short positions for market")
)

// Venue is the external position-management system.
type Venue interface {
	// ListPositions returns all open positions for the account.
	ListPositions(ctx context.Context, account string) ([]model.HedgePosition, error)

	// SubmitOrder submits a corrective order and returns the venue's
	// order identifier.
	SubmitOrder(ctx context.Context, order model.CorrectiveOrder) (string, error)
}

// Reader answers "how large is the open short for this market" against a
// Venue. Zero is a valid answer: no hedge open yet.
type Reader struct {
	venue   Venue
	account string
}

// NewReader creates a position reader scoped to one account.
func NewReader(v Venue, account string) *Reader {
	return &Reader{venue: v, account: account}
}

// ShortSizeUsd returns the USD size (1e30 scale) of the open short for the
// given market, or zero when none exists. More than one matching short is
// an invariant violation and returns ErrDuplicatePosition.
func (r *Reader) ShortSizeUsd(ctx context.Context, mkt string) (decimal.Decimal, error) {
	positions, err := r.venue.ListPositions(ctx, r.account)
	if err != nil {
		return decimal.Zero, err
	}

	var (
		found bool
		size  decimal.Decimal
	)
	for _, p := range positions {
		if p.IsLong || !market.Equal(p.Market, mkt) {
			continue
		}
		if found {
			return decimal.Zero, ErrDuplicatePosition
		}
		found = true
		size = p.SizeInUsd
	}
	return size, nil
}
