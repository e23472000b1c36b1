// Package oracle fetches USD fixed-point prices for the tracked base asset.
//
// Prices are 1e30-scale integers and are fetched fresh on every rebalance
// evaluation — never cached across calls. A non-positive price is fatal to
// the operation that requested it.
package oracle

import (
	"context"
	"errors"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

var (
	// ErrInvalidPrice is returned when the oracle reports a zero or
	// negative price. Callers must abort the current rebalance attempt.
	ErrInvalidPrice = errors.New("oracle: non-positive price")
)

// Oracle returns the current USD price for one unit of an asset.
type Oracle interface {
	Price(ctx context.Context, asset string) (model.PriceQuote, error)
}
