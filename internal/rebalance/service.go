// Package rebalance implements the delta-neutral rebalancing engine: it
// tracks per-pool exposure, compares the desired short size against the
// venue's open position, and issues corrective orders when the deviation
// leaves the threshold band.
//
// All monetary values use shopspring/decimal — never float64 for money.
package rebalance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/config"
	"github.com/ChinmayGopal931/delta-neutral/internal/custody"
	"github.com/ChinmayGopal931/delta-neutral/internal/metrics"
	"github.com/ChinmayGopal931/delta-neutral/internal/model"
	"github.com/ChinmayGopal931/delta-neutral/internal/oracle"
	"github.com/ChinmayGopal931/delta-neutral/internal/risk"
	"github.com/ChinmayGopal931/delta-neutral/internal/sizing"
	"github.com/ChinmayGopal931/delta-neutral/internal/store"
	"github.com/ChinmayGopal931/delta-neutral/internal/venue"
)

// Hedge identifies the market being hedged and the venue account holding
// the offsetting position.
type Hedge struct {
	Market  string // venue market identifier
	Asset   string // tracked base asset symbol
	Account string // venue account
}

// Outcome is the result of one triggering operation.
type Outcome struct {
	Action          string          `json:"action"` // increase, decrease, skip
	Reason          string          `json:"reason,omitempty"`
	Exposure        decimal.Decimal `json:"exposure"`
	DeltaUsd        decimal.Decimal `json:"delta_usd"` // signed
	SizeDeltaUsd    decimal.Decimal `json:"size_delta_usd,omitempty"`
	CollateralDelta decimal.Decimal `json:"collateral_delta,omitempty"`
	OrderID         string          `json:"order_id,omitempty"`
}

// Skip reasons.
const (
	ReasonWithinThreshold = "within_threshold"
	ReasonDisabled        = "rebalancing_disabled"
)

// Service is the rebalancing engine. Triggering operations are serialized
// with a mutex: the execution model is single-threaded and each invocation
// runs to completion before the next starts.
type Service struct {
	store    store.Store
	oracle   oracle.Oracle
	venue    venue.Venue
	reader   *venue.Reader
	vault    *custody.Vault
	settings *config.Store
	hedge    Hedge
	mu       sync.Mutex
	wsHub    *WSHub // optional, nil disables broadcasts
}

// NewService creates a rebalancing engine.
// Pass nil for hub if WebSocket broadcasting is not needed.
func NewService(st store.Store, o oracle.Oracle, v venue.Venue, vault *custody.Vault, settings *config.Store, hedge Hedge, hub *WSHub) *Service {
	return &Service{
		store:    st,
		oracle:   o,
		venue:    v,
		reader:   venue.NewReader(v, hedge.Account),
		vault:    vault,
		settings: settings,
		hedge:    hedge,
		wsHub:    hub,
	}
}

// Settings exposes the config store for the HTTP layer.
func (s *Service) Settings() *config.Store { return s.settings }

// Vault exposes custody balances for the HTTP layer.
func (s *Service) Vault() *custody.Vault { return s.vault }

// ApplyExposureDelta is the exposure-change entry point: it updates the
// pool's running total (clamped at zero) and re-runs the rebalance
// evaluation. The whole invocation is atomic — a failed order precondition
// rolls back the exposure mutation too.
func (s *Service) ApplyExposureDelta(ctx context.Context, poolID string, delta decimal.Decimal) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	old, err := s.store.GetExposure(ctx, poolID)
	if err != nil {
		return Outcome{}, err
	}
	newQty := sizing.ClampedAdd(old, delta)

	uow := newUnitOfWork()
	if err := uow.do("exposure",
		func() error { return s.store.SetExposure(ctx, poolID, newQty) },
		func() {
			if rerr := s.store.SetExposure(ctx, poolID, old); rerr != nil {
				slog.Error("exposure rollback failed", "pool", poolID, "err", rerr)
			}
		},
	); err != nil {
		metrics.RebalanceFailures.WithLabelValues("store").Inc()
		return Outcome{}, err
	}

	outcome, err := s.evaluate(ctx, uow, poolID, newQty)
	if err != nil {
		return Outcome{}, err
	}

	metrics.PoolExposure.WithLabelValues(poolID).Set(newQty.InexactFloat64())
	metrics.RebalanceLatency.Observe(time.Since(start).Seconds())
	s.broadcast(WSMessage{
		Type:     "exposure_updated",
		PoolID:   poolID,
		Exposure: newQty.String(),
	})

	slog.Info("exposure delta applied",
		"pool", poolID,
		"delta", delta.String(),
		"exposure", newQty.String(),
		"action", outcome.Action,
	)
	return outcome, nil
}

// ManualRebalance re-runs the evaluation for a pool without an exposure
// change. Open to any caller (keeper role).
func (s *Service) ManualRebalance(ctx context.Context, poolID string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	qty, err := s.store.GetExposure(ctx, poolID)
	if err != nil {
		return Outcome{}, err
	}

	outcome, err := s.evaluate(ctx, newUnitOfWork(), poolID, qty)
	if err != nil {
		return Outcome{}, err
	}

	metrics.RebalanceLatency.Observe(time.Since(start).Seconds())
	slog.Info("manual rebalance",
		"pool", poolID,
		"exposure", qty.String(),
		"action", outcome.Action,
	)
	return outcome, nil
}

// CurrentExposure is a pure read of the pool's running total.
func (s *Service) CurrentExposure(ctx context.Context, poolID string) (decimal.Decimal, error) {
	return s.store.GetExposure(ctx, poolID)
}

// evaluate runs the decision algorithm against exposureQty. The caller
// holds the lock and owns the unit of work; any error has already rolled
// the unit of work back.
func (s *Service) evaluate(ctx context.Context, uow *unitOfWork, poolID string, exposureQty decimal.Decimal) (Outcome, error) {
	if s.settings.SkipRebalancing() {
		// Exposure is still tracked; the decision/order step is disabled.
		return Outcome{Action: model.ActionSkip, Reason: ReasonDisabled, Exposure: exposureQty}, nil
	}

	quote, err := s.oracle.Price(ctx, s.hedge.Asset)
	if err != nil {
		uow.rollback()
		metrics.RebalanceFailures.WithLabelValues("invalid_price").Inc()
		return Outcome{}, err
	}

	desiredUsd, err := sizing.DesiredShortUsd(exposureQty, quote.PriceUsd, quote.BaseDecimals)
	if err != nil {
		uow.rollback()
		return Outcome{}, err
	}

	limiter := risk.NewNotionalLimiter(s.settings.MaxPositionUsd())
	if err := limiter.CheckLimit(desiredUsd); err != nil {
		uow.rollback()
		metrics.RebalanceFailures.WithLabelValues("notional_limit").Inc()
		return Outcome{}, err
	}

	currentUsd, err := s.reader.ShortSizeUsd(ctx, s.hedge.Market)
	if err != nil {
		uow.rollback()
		metrics.RebalanceFailures.WithLabelValues("position_read").Inc()
		return Outcome{}, err
	}

	deltaUsd := desiredUsd.Sub(currentUsd)
	threshold := s.settings.Threshold()

	outcome := Outcome{Exposure: exposureQty, DeltaUsd: deltaUsd}

	switch {
	case deltaUsd.GreaterThan(threshold):
		orderID, collateralDelta, err := s.increase(ctx, uow, deltaUsd)
		if err != nil {
			return Outcome{}, err
		}
		outcome.Action = model.ActionIncrease
		outcome.SizeDeltaUsd = deltaUsd
		outcome.CollateralDelta = collateralDelta
		outcome.OrderID = orderID

	case deltaUsd.LessThan(threshold.Neg()):
		orderID, err := s.decrease(ctx, uow, deltaUsd.Neg())
		if err != nil {
			return Outcome{}, err
		}
		outcome.Action = model.ActionDecrease
		outcome.SizeDeltaUsd = deltaUsd.Neg()
		outcome.OrderID = orderID

	default:
		outcome.Action = model.ActionSkip
		outcome.Reason = ReasonWithinThreshold
		s.broadcast(WSMessage{
			Type:     "rebalance_skipped",
			PoolID:   poolID,
			Market:   s.hedge.Market,
			DeltaUsd: deltaUsd.String(),
		})
	}

	metrics.RebalancesTotal.WithLabelValues(outcome.Action).Inc()
	s.record(ctx, poolID, outcome)
	return outcome, nil
}

// increase sizes collateral, validates balances, and submits a
// size-increase order.
func (s *Service) increase(ctx context.Context, uow *unitOfWork, sizeDeltaUsd decimal.Decimal) (string, decimal.Decimal, error) {
	collateralDelta, err := sizing.CollateralForIncrease(sizeDeltaUsd)
	if err != nil {
		uow.rollback()
		return "", decimal.Zero, err
	}

	fee := s.settings.ExecutionFee()

	// Precondition checks before any mutation, collateral first.
	if s.vault.CollateralBalance().LessThan(collateralDelta) {
		uow.rollback()
		metrics.RebalanceFailures.WithLabelValues("insufficient_collateral").Inc()
		return "", decimal.Zero, custody.ErrInsufficientCollateral
	}
	if s.vault.FeeBalance().LessThan(fee) {
		uow.rollback()
		metrics.RebalanceFailures.WithLabelValues("insufficient_fee").Inc()
		return "", decimal.Zero, custody.ErrInsufficientFee
	}

	if err := uow.do("reserve_collateral",
		func() error { return s.vault.ReserveCollateral(collateralDelta) },
		func() { s.vault.ReleaseCollateral(collateralDelta) },
	); err != nil {
		metrics.RebalanceFailures.WithLabelValues("insufficient_collateral").Inc()
		return "", decimal.Zero, err
	}
	if err := uow.do("debit_fee",
		func() error { return s.vault.DebitFee(fee) },
		func() { s.vault.CreditFee(fee) },
	); err != nil {
		metrics.RebalanceFailures.WithLabelValues("insufficient_fee").Inc()
		return "", decimal.Zero, err
	}

	order := model.CorrectiveOrder{
		ClientID:        uuid.New().String(),
		Market:          s.hedge.Market,
		Direction:       model.ActionIncrease,
		SizeDeltaUsd:    sizeDeltaUsd,
		CollateralDelta: collateralDelta,
		ExecutionFee:    fee,
	}

	var orderID string
	if err := uow.do("submit_order",
		func() error {
			var serr error
			orderID, serr = s.venue.SubmitOrder(ctx, order)
			return serr
		},
		nil,
	); err != nil {
		metrics.RebalanceFailures.WithLabelValues("venue").Inc()
		return "", decimal.Zero, err
	}
	s.vault.ConsumeReservation(collateralDelta)

	metrics.OrdersSubmitted.WithLabelValues(model.ActionIncrease).Inc()
	s.broadcast(WSMessage{
		Type:            "position_increased",
		Market:          s.hedge.Market,
		SizeDeltaUsd:    sizeDeltaUsd.String(),
		CollateralDelta: collateralDelta.String(),
		OrderID:         orderID,
	})

	slog.Info("position increased",
		"market", s.hedge.Market,
		"size_delta_usd", sizeDeltaUsd.String(),
		"collateral_delta", collateralDelta.String(),
		"order_id", orderID,
	)
	return orderID, collateralDelta, nil
}

// decrease submits a size-decrease order with zero collateral delta;
// collateral comes back from the existing position at the venue.
func (s *Service) decrease(ctx context.Context, uow *unitOfWork, sizeDeltaUsd decimal.Decimal) (string, error) {
	fee := s.settings.ExecutionFee()

	if s.vault.FeeBalance().LessThan(fee) {
		uow.rollback()
		metrics.RebalanceFailures.WithLabelValues("insufficient_fee").Inc()
		return "", custody.ErrInsufficientFee
	}

	if err := uow.do("debit_fee",
		func() error { return s.vault.DebitFee(fee) },
		func() { s.vault.CreditFee(fee) },
	); err != nil {
		metrics.RebalanceFailures.WithLabelValues("insufficient_fee").Inc()
		return "", err
	}

	order := model.CorrectiveOrder{
		ClientID:     uuid.New().String(),
		Market:       s.hedge.Market,
		Direction:    model.ActionDecrease,
		SizeDeltaUsd: sizeDeltaUsd,
		ExecutionFee: fee,
		UnwrapNative: true,
	}

	var orderID string
	if err := uow.do("submit_order",
		func() error {
			var serr error
			orderID, serr = s.venue.SubmitOrder(ctx, order)
			return serr
		},
		nil,
	); err != nil {
		metrics.RebalanceFailures.WithLabelValues("venue").Inc()
		return "", err
	}

	metrics.OrdersSubmitted.WithLabelValues(model.ActionDecrease).Inc()
	s.broadcast(WSMessage{
		Type:         "position_decreased",
		Market:       s.hedge.Market,
		SizeDeltaUsd: sizeDeltaUsd.String(),
		OrderID:      orderID,
	})

	slog.Info("position decreased",
		"market", s.hedge.Market,
		"size_delta_usd", sizeDeltaUsd.String(),
		"order_id", orderID,
	)
	return orderID, nil
}

// record appends an immutable history entry. History is observability, not
// engine state: a failed insert is logged, never fatal.
func (s *Service) record(ctx context.Context, poolID string, o Outcome) {
	rec := &model.RebalanceRecord{
		ID:              uuid.New().String(),
		PoolID:          poolID,
		Action:          o.Action,
		DeltaUsd:        o.DeltaUsd,
		CollateralDelta: o.CollateralDelta,
		OrderID:         o.OrderID,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.store.InsertRebalanceRecord(ctx, rec); err != nil {
		slog.Warn("failed to record rebalance outcome", "pool", poolID, "err", err)
	}
}

func (s *Service) broadcast(msg WSMessage) {
	if s.wsHub != nil {
		s.wsHub.Broadcast(msg)
	}
}
