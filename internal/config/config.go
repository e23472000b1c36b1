// Package config exposes the service configuration: static identity loaded
// from YAML and the runtime-tunable rebalancing settings behind owner-gated
// mutation entry points.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings.
type App struct {
	Name     string `yaml:"name"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// Hedge describes the hedged market and the initial rebalancing settings.
// Monetary values are decimal strings: USD values at 1e30 scale, the fee in
// fee-currency native units.
type Hedge struct {
	Market             string `yaml:"market"`  // venue market identifier
	Asset              string `yaml:"asset"`   // tracked base asset symbol
	Account            string `yaml:"account"` // venue account holding the hedge
	BaseDecimals       int32  `yaml:"base_decimals"`
	RebalanceThreshold string `yaml:"rebalance_threshold"`
	ExecutionFee       string `yaml:"execution_fee"`
	SkipRebalancing    bool   `yaml:"skip_rebalancing"`
	MaxPositionUsd     string `yaml:"max_position_usd"` // 0 disables the cap
}

// Oracle and Venue point at the external collaborators.
type Oracle struct {
	URL string `yaml:"url"`
}

type Venue struct {
	URL string `yaml:"url"`
}

// Config collects every configuration leaf for marshaling from YAML.
type Config struct {
	App    App    `yaml:"app"`
	Hedge  Hedge  `yaml:"hedge"`
	Oracle Oracle `yaml:"oracle"`
	Venue  Venue  `yaml:"venue"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return &cfg, nil
}

// ParseUsd parses a decimal string from the config file, defaulting to zero
// for the empty string.
func ParseUsd(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: parse %q: %w", s, err)
	}
	return v, nil
}
