// config.go - Configuration management for the transfer-with-fee operator tool
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"feeproof/internal/transferfee"
)

// Config represents the application configuration
type Config struct {
	// Protocol settings
	Variant            string `json:"variant"`
	NumTransfers       int    `json:"num_transfers"`
	InitialBalance     uint64 `json:"initial_balance"`
	BaseAmount         uint64 `json:"base_amount"`
	FeeRateBasisPoints uint16 `json:"fee_rate_basis_points"`
	MaximumFee         uint64 `json:"maximum_fee"`

	// File paths
	BundlePath string `json:"bundle_path"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Performance
	MaxConcurrency int `json:"max_concurrency"`

	// Security
	EnableAudit  bool   `json:"enable_audit"`
	AuditLogPath string `json:"audit_log_path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Variant:            transferfee.Narrow.String(),
		NumTransfers:       10,
		InitialBalance:     1_000_000,
		BaseAmount:         100,
		FeeRateBasisPoints: 400,
		MaximumFee:         3,
		BundlePath:         "bundle.json",
		LogLevel:           "info",
		LogFile:            "transferfee.log",
		MaxConcurrency:     4,
		EnableAudit:        true,
		AuditLogPath:       "audit.log",
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		config := DefaultConfig()
		if err := json.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return config, nil
	}

	// Create default config and save it
	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	variant, err := transferfee.ParseVariant(c.Variant)
	if err != nil {
		return err
	}
	if c.NumTransfers <= 0 {
		return fmt.Errorf("num_transfers must be positive")
	}
	if c.FeeRateBasisPoints > transferfee.MaxFeeBasisPoints {
		return fmt.Errorf("fee_rate_basis_points must be at most %d", transferfee.MaxFeeBasisPoints)
	}
	// the largest amount of the scenario is BaseAmount + NumTransfers - 1
	last := c.BaseAmount + uint64(c.NumTransfers-1)
	if last < c.BaseAmount || last > variant.MaxAmount() {
		return fmt.Errorf("base_amount %d too large for the %s variant", c.BaseAmount, variant)
	}
	if c.InitialBalance < last {
		return fmt.Errorf("initial_balance must cover the largest transfer amount %d", last)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	if c.BundlePath == "" {
		return fmt.Errorf("bundle_path must be set")
	}
	return nil
}

// ProtocolVariant returns the parsed variant. Call Validate first.
func (c *Config) ProtocolVariant() transferfee.Variant {
	v, _ := transferfee.ParseVariant(c.Variant)
	return v
}

// FeeParameters returns the fee settings every transfer is proved against.
func (c *Config) FeeParameters() transferfee.FeeParameters {
	return transferfee.FeeParameters{
		FeeRateBasisPoints: c.FeeRateBasisPoints,
		MaximumFee:         c.MaximumFee,
	}
}
