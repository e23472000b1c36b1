package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoad_RoundTrip(t *testing.T) {
	yml := `
app:
  name: delta-neutral
  port: "8080"
  log_level: info
hedge:
  market: "0x47c031236e19d024b42f8ae6780e44a573170703"
  asset: WETH
  account: "0x9e1028f5f1d5ede59748ffcee5532509976840e0"
  base_decimals: 18
  rebalance_threshold: "100000000000000000000000000000000"
  execution_fee: "200000000000000"
  skip_rebalancing: false
  max_position_usd: "0"
oracle:
  url: http://oracle:9090
venue:
  url: http://venue:9091
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Hedge.Asset != "WETH" || cfg.Hedge.BaseDecimals != 18 {
		t.Errorf("unexpected hedge config: %+v", cfg.Hedge)
	}

	threshold, err := ParseUsd(cfg.Hedge.RebalanceThreshold)
	if err != nil {
		t.Fatalf("parse threshold: %v", err)
	}
	if !threshold.Equal(decimal.New(100, 30)) {
		t.Errorf("expected 100e30, got %s", threshold)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseUsd_EmptyDefaultsToZero(t *testing.T) {
	v, err := ParseUsd("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsZero() {
		t.Errorf("expected zero, got %s", v)
	}
}

func TestStore_OwnerGatedMutation(t *testing.T) {
	st := NewStore("owner-secret", decimal.New(100, 30), decimal.NewFromInt(1), false, decimal.Zero)

	if err := st.SetThreshold("wrong-token", decimal.New(200, 30)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if !st.Threshold().Equal(decimal.New(100, 30)) {
		t.Errorf("threshold changed on unauthorized call: %s", st.Threshold())
	}

	if err := st.SetThreshold("owner-secret", decimal.New(200, 30)); err != nil {
		t.Fatalf("authorized mutation failed: %v", err)
	}
	if !st.Threshold().Equal(decimal.New(200, 30)) {
		t.Errorf("expected 200e30, got %s", st.Threshold())
	}
}

func TestStore_SkipFlag(t *testing.T) {
	st := NewStore("tok", decimal.Zero, decimal.Zero, false, decimal.Zero)

	if st.SkipRebalancing() {
		t.Error("skip should start false")
	}
	if err := st.SetSkipRebalancing("tok", true); err != nil {
		t.Fatalf("set skip failed: %v", err)
	}
	if !st.SkipRebalancing() {
		t.Error("skip should be true after set")
	}
}

func TestStore_ChangeNotifications(t *testing.T) {
	st := NewStore("tok", decimal.Zero, decimal.Zero, false, decimal.Zero)

	var events []string
	st.OnChange = func(setting, value string) {
		events = append(events, setting+"="+value)
	}

	st.SetThreshold("tok", decimal.New(5, 30))
	st.SetExecutionFee("tok", decimal.NewFromInt(2))
	st.SetSkipRebalancing("tok", true)
	st.SetThreshold("bad", decimal.Zero) // unauthorized, no event

	want := []string{
		"threshold_updated=" + decimal.New(5, 30).String(),
		"fee_updated=2",
		"skip_updated=true",
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %q, got %q", i, want[i], events[i])
		}
	}
}
