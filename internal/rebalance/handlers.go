package rebalance

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/config"
	"github.com/ChinmayGopal931/delta-neutral/internal/custody"
	"github.com/ChinmayGopal931/delta-neutral/internal/market"
	"github.com/ChinmayGopal931/delta-neutral/internal/model"
	"github.com/ChinmayGopal931/delta-neutral/internal/oracle"
	"github.com/ChinmayGopal931/delta-neutral/internal/risk"
	"github.com/ChinmayGopal931/delta-neutral/internal/venue"
)

// --- Request/Response types ---

// ExposureDeltaRequest is the JSON body posted by the host pool system
// after a liquidity change. Delta is a signed decimal string in base-asset
// native units.
type ExposureDeltaRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// AmountRequest carries a single decimal amount (collateral and fee
// deposits/withdrawals).
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ValueRequest carries a single decimal config value.
type ValueRequest struct {
	Value decimal.Decimal `json:"value"`
}

// SkipRequest toggles the skip-rebalancing flag.
type SkipRequest struct {
	Skip bool `json:"skip"`
}

// ConfigResponse is the read-only view of the runtime settings.
type ConfigResponse struct {
	RebalanceThreshold decimal.Decimal `json:"rebalance_threshold"`
	ExecutionFee       decimal.Decimal `json:"execution_fee"`
	SkipRebalancing    bool            `json:"skip_rebalancing"`
	MaxPositionUsd     decimal.Decimal `json:"max_position_usd"`
}

// BalancesResponse reports the custody balances.
type BalancesResponse struct {
	Collateral decimal.Decimal `json:"collateral"`
	Fee        decimal.Decimal `json:"fee"`
}

// --- Handlers ---

// HandleExposureDelta handles POST /api/v1/pools/{poolID}/exposure.
func (s *Service) HandleExposureDelta(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePool(w, r)
	if !ok {
		return
	}

	var req ExposureDeltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Delta.IsZero() {
		writeError(w, "delta must be non-zero", http.StatusBadRequest)
		return
	}

	outcome, err := s.ApplyExposureDelta(r.Context(), poolID, req.Delta)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// HandleManualRebalance handles POST /api/v1/pools/{poolID}/rebalance.
// Open to any caller: keepers use it to force reconciliation.
func (s *Service) HandleManualRebalance(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePool(w, r)
	if !ok {
		return
	}

	outcome, err := s.ManualRebalance(r.Context(), poolID)
	if err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// HandleListPools handles GET /api/v1/pools: every tracked pool with its
// current exposure.
func (s *Service) HandleListPools(w http.ResponseWriter, r *http.Request) {
	exposures, err := s.store.ListExposures(r.Context())
	if err != nil {
		writeError(w, "failed to list pools", http.StatusInternalServerError)
		return
	}
	if exposures == nil {
		exposures = []model.Exposure{}
	}
	writeJSON(w, http.StatusOK, exposures)
}

// HandleGetExposure handles GET /api/v1/pools/{poolID}/exposure.
func (s *Service) HandleGetExposure(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePool(w, r)
	if !ok {
		return
	}

	qty, err := s.store.GetExposure(r.Context(), poolID)
	if err != nil {
		writeError(w, "failed to read exposure", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"exposure": qty})
}

// HandleGetHistory handles GET /api/v1/pools/{poolID}/history.
func (s *Service) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePool(w, r)
	if !ok {
		return
	}

	records, err := s.store.GetRebalanceRecordsByPool(r.Context(), poolID)
	if err != nil {
		writeError(w, "failed to read history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.RebalanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleGetConfig handles GET /api/v1/config.
func (s *Service) HandleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ConfigResponse{
		RebalanceThreshold: s.settings.Threshold(),
		ExecutionFee:       s.settings.ExecutionFee(),
		SkipRebalancing:    s.settings.SkipRebalancing(),
		MaxPositionUsd:     s.settings.MaxPositionUsd(),
	})
}

// HandleSetThreshold handles PUT /api/v1/config/threshold. Owner only.
func (s *Service) HandleSetThreshold(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.settings.SetThreshold(bearerToken(r), req.Value); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"rebalance_threshold": req.Value})
}

// HandleSetFee handles PUT /api/v1/config/fee. Owner only.
func (s *Service) HandleSetFee(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.settings.SetExecutionFee(bearerToken(r), req.Value); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"execution_fee": req.Value})
}

// HandleSetSkip handles PUT /api/v1/config/skip. Owner only.
func (s *Service) HandleSetSkip(w http.ResponseWriter, r *http.Request) {
	var req SkipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.settings.SetSkipRebalancing(bearerToken(r), req.Skip); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"skip_rebalancing": req.Skip})
}

// HandleDepositCollateral handles POST /api/v1/collateral. Open to any
// caller — adding collateral only makes the position safer.
func (s *Service) HandleDepositCollateral(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.vault.DepositCollateral(req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalancesResponse{Collateral: s.vault.CollateralBalance(), Fee: s.vault.FeeBalance()})
}

// HandleWithdrawCollateral handles POST /api/v1/collateral/withdraw.
// Owner only.
func (s *Service) HandleWithdrawCollateral(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.Authorize(bearerToken(r)); err != nil {
		writeOperationError(w, err)
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.vault.WithdrawCollateral(req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalancesResponse{Collateral: s.vault.CollateralBalance(), Fee: s.vault.FeeBalance()})
}

// HandleDepositFee handles POST /api/v1/fee. Open: the engine must be
// funded with the fee currency before it can pay venue execution fees.
func (s *Service) HandleDepositFee(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.vault.DepositFee(req.Amount); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalancesResponse{Collateral: s.vault.CollateralBalance(), Fee: s.vault.FeeBalance()})
}

// HandleGetBalances handles GET /api/v1/collateral.
func (s *Service) HandleGetBalances(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BalancesResponse{Collateral: s.vault.CollateralBalance(), Fee: s.vault.FeeBalance()})
}

// --- Helpers ---

func parsePool(w http.ResponseWriter, r *http.Request) (string, bool) {
	poolID, err := market.ParseID(chi.URLParam(r, "poolID"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return poolID, true
}

// bearerToken extracts the capability token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}

// writeOperationError maps engine errors to HTTP statuses.
func writeOperationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, config.ErrUnauthorized):
		writeError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, custody.ErrInsufficientCollateral),
		errors.Is(err, custody.ErrInsufficientFee),
		errors.Is(err, custody.ErrNegativeAmount),
		errors.Is(err, risk.ErrNotionalLimitExceeded):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, oracle.ErrInvalidPrice),
		errors.Is(err, venue.ErrDuplicatePosition):
		writeError(w, err.Error(), http.StatusBadGateway)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
