package venue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/market"
	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

// MemoryVenue implements Venue with an in-memory position book. Orders are
// applied immediately: an increase grows the short and its collateral, a
// decrease shrinks it and releases collateral pro rata. Used for testing
// and development; not a real venue.
type MemoryVenue struct {
	mu        sync.Mutex
	positions []model.HedgePosition
	failNext  error
}

// NewMemoryVenue creates an empty in-memory venue.
func NewMemoryVenue() *MemoryVenue {
	return &MemoryVenue{}
}

// Seed installs a position directly, bypassing order flow.
func (v *MemoryVenue) Seed(p model.HedgePosition) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.positions = append(v.positions, p)
}

// FailNext makes the next SubmitOrder call return err, then clears itself.
func (v *MemoryVenue) FailNext(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failNext = err
}

func (v *MemoryVenue) ListPositions(_ context.Context, _ string) ([]model.HedgePosition, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]model.HedgePosition, len(v.positions))
	copy(out, v.positions)
	return out, nil
}

func (v *MemoryVenue) SubmitOrder(_ context.Context, order model.CorrectiveOrder) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.failNext != nil {
		err := v.failNext
		v.failNext = nil
		return "", err
	}

	switch order.Direction {
	case model.ActionIncrease:
		v.applyIncrease(order)
	case model.ActionDecrease:
		if err := v.applyDecrease(order); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("venue: unknown order direction %q", order.Direction)
	}

	return uuid.New().String(), nil
}

func (v *MemoryVenue) applyIncrease(order model.CorrectiveOrder) {
	for i, p := range v.positions {
		if !p.IsLong && market.Equal(p.Market, order.Market) {
			v.positions[i].SizeInUsd = p.SizeInUsd.Add(order.SizeDeltaUsd)
			v.positions[i].CollateralAmount = p.CollateralAmount.Add(order.CollateralDelta)
			return
		}
	}
	v.positions = append(v.positions, model.HedgePosition{
		Market:           order.Market,
		SizeInUsd:        order.SizeDeltaUsd,
		CollateralAmount: order.CollateralDelta,
		IsLong:           false,
	})
}

func (v *MemoryVenue) applyDecrease(order model.CorrectiveOrder) error {
	for i, p := range v.positions {
		if p.IsLong || !market.Equal(p.Market, order.Market) {
			continue
		}
		newSize := p.SizeInUsd.Sub(order.SizeDeltaUsd)
		if newSize.IsNegative() {
			return fmt.Errorf("venue: decrease %s exceeds position size %s", order.SizeDeltaUsd, p.SizeInUsd)
		}
		if newSize.IsZero() {
			v.positions = append(v.positions[:i], v.positions[i+1:]...)
			return nil
		}
		// Collateral released pro rata with the size reduction.
		released, _ := p.CollateralAmount.Mul(order.SizeDeltaUsd).QuoRem(p.SizeInUsd, 0)
		v.positions[i].SizeInUsd = newSize
		v.positions[i].CollateralAmount = p.CollateralAmount.Sub(released)
		return nil
	}
	return fmt.Errorf("venue: no short position for market %s", order.Market)
}

// ShortSize reports the current short size for a market, for test assertions.
func (v *MemoryVenue) ShortSize(mkt string) decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, p := range v.positions {
		if !p.IsLong && market.Equal(p.Market, mkt) {
			return p.SizeInUsd
		}
	}
	return decimal.Zero
}
