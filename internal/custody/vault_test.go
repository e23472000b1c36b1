package custody

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestVault_DepositAndWithdraw(t *testing.T) {
	v := NewVault(n(0), n(0))

	if err := v.DepositCollateral(n(1000)); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if !v.CollateralBalance().Equal(n(1000)) {
		t.Errorf("expected 1000, got %s", v.CollateralBalance())
	}

	if err := v.WithdrawCollateral(n(400)); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !v.CollateralBalance().Equal(n(600)) {
		t.Errorf("expected 600, got %s", v.CollateralBalance())
	}
}

func TestVault_WithdrawMoreThanBalance(t *testing.T) {
	v := NewVault(n(100), n(0))
	if err := v.WithdrawCollateral(n(101)); !errors.Is(err, ErrInsufficientCollateral) {
		t.Errorf("expected ErrInsufficientCollateral, got %v", err)
	}
	if !v.CollateralBalance().Equal(n(100)) {
		t.Errorf("balance changed on failed withdraw: %s", v.CollateralBalance())
	}
}

func TestVault_ReserveReleaseRoundTrip(t *testing.T) {
	v := NewVault(n(500), n(0))

	if err := v.ReserveCollateral(n(200)); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if !v.CollateralBalance().Equal(n(300)) {
		t.Errorf("expected 300 available after reserve, got %s", v.CollateralBalance())
	}

	v.ReleaseCollateral(n(200))
	if !v.CollateralBalance().Equal(n(500)) {
		t.Errorf("expected 500 after release, got %s", v.CollateralBalance())
	}
}

func TestVault_ReserveBeyondBalance(t *testing.T) {
	v := NewVault(n(100), n(0))
	if err := v.ReserveCollateral(n(180001)); !errors.Is(err, ErrInsufficientCollateral) {
		t.Errorf("expected ErrInsufficientCollateral, got %v", err)
	}
}

func TestVault_FeeDebitCredit(t *testing.T) {
	v := NewVault(n(0), n(10))

	if err := v.DebitFee(n(3)); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if !v.FeeBalance().Equal(n(7)) {
		t.Errorf("expected 7, got %s", v.FeeBalance())
	}

	v.CreditFee(n(3))
	if !v.FeeBalance().Equal(n(10)) {
		t.Errorf("expected 10 after credit, got %s", v.FeeBalance())
	}

	if err := v.DebitFee(n(11)); !errors.Is(err, ErrInsufficientFee) {
		t.Errorf("expected ErrInsufficientFee, got %v", err)
	}
}

func TestVault_NegativeAmountsRejected(t *testing.T) {
	v := NewVault(n(100), n(100))
	if err := v.DepositCollateral(n(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
	if err := v.WithdrawCollateral(n(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
	if err := v.ReserveCollateral(n(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
	if err := v.DebitFee(n(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
}
