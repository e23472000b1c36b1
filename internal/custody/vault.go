// Package custody holds the engine's collateral and fee-currency balances.
//
// The vault is process-owned state: collateral deposited by operators waits
// here until an increase order reserves it for the venue, and the fee
// currency pays venue execution fees. Reservations and fee debits have
// explicit inverse operations so a failed order can be rolled back.
package custody

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientCollateral is returned when a reservation or
	// withdrawal exceeds the available collateral balance.
	ErrInsufficientCollateral = errors.New("custody: insufficient collateral balance")

	// ErrInsufficientFee is returned when a fee debit exceeds the
	// fee-currency balance.
	ErrInsufficientFee = errors.New("custody: insufficient fee balance")

	// ErrNegativeAmount is returned for negative deposit/withdraw/reserve
	// amounts.
	ErrNegativeAmount = errors.New("custody: amount must be non-negative")
)

// Vault tracks collateral (token native precision) and fee-currency
// balances. Safe for concurrent use.
type Vault struct {
	mu         sync.Mutex
	collateral decimal.Decimal
	reserved   decimal.Decimal
	fee        decimal.Decimal
}

// NewVault creates a vault with the given starting balances.
func NewVault(collateral, fee decimal.Decimal) *Vault {
	return &Vault{collateral: collateral, fee: fee}
}

// CollateralBalance returns the available (unreserved) collateral.
func (v *Vault) CollateralBalance() decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.collateral
}

// FeeBalance returns the fee-currency balance.
func (v *Vault) FeeBalance() decimal.Decimal {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fee
}

// DepositCollateral credits collateral. Open to any caller.
func (v *Vault) DepositCollateral(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.collateral = v.collateral.Add(amount)
	return nil
}

// WithdrawCollateral debits collateral, failing when the available balance
// is short. Owner-gated at the service boundary.
func (v *Vault) WithdrawCollateral(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.collateral.LessThan(amount) {
		return ErrInsufficientCollateral
	}
	v.collateral = v.collateral.Sub(amount)
	return nil
}

// DepositFee credits the fee-currency balance.
func (v *Vault) DepositFee(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fee = v.fee.Add(amount)
	return nil
}

// ReserveCollateral moves collateral from available to reserved, approving
// it for the venue. Undone by ReleaseCollateral if the order never lands.
func (v *Vault) ReserveCollateral(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.collateral.LessThan(amount) {
		return ErrInsufficientCollateral
	}
	v.collateral = v.collateral.Sub(amount)
	v.reserved = v.reserved.Add(amount)
	return nil
}

// ReleaseCollateral returns a reservation to the available balance.
func (v *Vault) ReleaseCollateral(amount decimal.Decimal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reserved = v.reserved.Sub(amount)
	v.collateral = v.collateral.Add(amount)
}

// ConsumeReservation settles a reservation after the venue accepted the
// order carrying it.
func (v *Vault) ConsumeReservation(amount decimal.Decimal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reserved = v.reserved.Sub(amount)
}

// DebitFee pays an execution fee, failing when the balance is short.
func (v *Vault) DebitFee(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.fee.LessThan(amount) {
		return ErrInsufficientFee
	}
	v.fee = v.fee.Sub(amount)
	return nil
}

// CreditFee reverses a fee debit after a failed submission.
func (v *Vault) CreditFee(amount decimal.Decimal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fee = v.fee.Add(amount)
}
