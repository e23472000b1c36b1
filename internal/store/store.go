// Package store defines the persistence interface for the hedging engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Exposure ledger ---

	// GetExposure returns the tracked base-asset quantity for a pool.
	// A pool with no prior deltas reads as zero, not an error.
	GetExposure(ctx context.Context, poolID string) (decimal.Decimal, error)

	// SetExposure stores the new running total for a pool, creating the
	// entry on first write.
	SetExposure(ctx context.Context, poolID string, quantity decimal.Decimal) error

	// ListExposures returns every tracked pool with its quantity.
	ListExposures(ctx context.Context) ([]model.Exposure, error)

	// --- Immutable rebalance history ---

	// InsertRebalanceRecord appends an immutable rebalance outcome.
	InsertRebalanceRecord(ctx context.Context, rec *model.RebalanceRecord) error

	// GetRebalanceRecordsByPool returns all recorded outcomes for a pool
	// in timestamp order.
	GetRebalanceRecordsByPool(ctx context.Context, poolID string) ([]model.RebalanceRecord, error)
}
