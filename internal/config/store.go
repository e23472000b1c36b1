package config

import (
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnauthorized is returned when a mutation is attempted without the
	// owner capability. No state changes on failure.
	ErrUnauthorized = errors.New("config: unauthorized")
)

// Store holds the runtime-tunable rebalancing settings. Reads happen on
// every decision; writes pass an owner-capability check at the entry point
// of each mutating operation.
type Store struct {
	mu         sync.RWMutex
	ownerToken string

	threshold      decimal.Decimal // USD 1e30 scale
	executionFee   decimal.Decimal // fee-currency native units
	skip           bool
	maxPositionUsd decimal.Decimal // 0 disables the cap

	// OnChange, when set, observes every successful mutation.
	OnChange func(setting string, value string)
}

// NewStore creates a settings store gated by the given owner token.
func NewStore(ownerToken string, threshold, executionFee decimal.Decimal, skip bool, maxPositionUsd decimal.Decimal) *Store {
	return &Store{
		ownerToken:     ownerToken,
		threshold:      threshold,
		executionFee:   executionFee,
		skip:           skip,
		maxPositionUsd: maxPositionUsd,
	}
}

// Authorize checks the owner capability. Constant-time comparison so the
// token cannot be probed byte by byte.
func (s *Store) Authorize(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.ownerToken)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Threshold returns the hysteresis band half-width (USD 1e30 scale).
func (s *Store) Threshold() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// ExecutionFee returns the per-order venue fee (fee-currency native units).
func (s *Store) ExecutionFee() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executionFee
}

// SkipRebalancing reports whether the decision/order step is disabled.
func (s *Store) SkipRebalancing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skip
}

// MaxPositionUsd returns the notional cap, zero when disabled.
func (s *Store) MaxPositionUsd() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxPositionUsd
}

// SetThreshold updates the hysteresis threshold. Owner only.
func (s *Store) SetThreshold(token string, v decimal.Decimal) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.threshold = v
	s.mu.Unlock()
	s.notify("threshold_updated", v.String())
	return nil
}

// SetExecutionFee updates the per-order fee. Owner only.
func (s *Store) SetExecutionFee(token string, v decimal.Decimal) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.executionFee = v
	s.mu.Unlock()
	s.notify("fee_updated", v.String())
	return nil
}

// SetSkipRebalancing toggles the decision/order step. Owner only. Exposure
// is still tracked while skipping.
func (s *Store) SetSkipRebalancing(token string, skip bool) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.skip = skip
	s.mu.Unlock()
	if skip {
		s.notify("skip_updated", "true")
	} else {
		s.notify("skip_updated", "false")
	}
	return nil
}

// SetMaxPositionUsd updates the notional cap. Owner only.
func (s *Store) SetMaxPositionUsd(token string, v decimal.Decimal) error {
	if err := s.Authorize(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.maxPositionUsd = v
	s.mu.Unlock()
	s.notify("max_position_updated", v.String())
	return nil
}

func (s *Store) notify(setting, value string) {
	if s.OnChange != nil {
		s.OnChange(setting, value)
	}
}
