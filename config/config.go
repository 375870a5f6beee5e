// Package config handles client configuration.
//
// The client keeps a small JSON settings file under the data directory;
// anything not present there falls back to the defaults below. Protocol
// details (currency, minor units, contract identity) are constants because
// they must match the ledger service.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Ledger protocol constants. These must agree with the remote service.
const (
	// MinorUnits is the number of minor currency units per whole unit (cents).
	MinorUnits = 100

	// MaxAmount is the exclusive upper bound on a credit amount in minor
	// units ($1,000,000,000.00).
	MaxAmount = 1e11

	// LedgerContractID identifies the credit-ledger contract on the service.
	LedgerContractID = "trustline-usd"
)

// Config holds client runtime configuration.
type Config struct {
	// APIEndpoint is the base URL of the ledger service JSON-RPC endpoint.
	APIEndpoint string `json:"api_endpoint"`

	// DataDir holds the vault and settings files.
	DataDir string `json:"data_dir"`

	// RequestTimeout bounds every individual ledger call. The reconciliation
	// layer itself imposes no timeouts.
	RequestTimeout time.Duration `json:"request_timeout"`

	// Logging
	Log LogConfig `json:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
	JSON  bool   `json:"json"`
}

// Default returns the default client configuration.
func Default() *Config {
	return &Config{
		APIEndpoint:    "http://127.0.0.1:7402",
		DataDir:        DefaultDataDir(),
		RequestTimeout: 10 * time.Second,
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.trustline
//	macOS:   ~/Library/Application Support/Trustline
//	Windows: %APPDATA%\Trustline
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".trustline"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Trustline")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Trustline")
		}
		return filepath.Join(home, "AppData", "Roaming", "Trustline")
	default:
		return filepath.Join(home, ".trustline")
	}
}

// VaultFile returns the encrypted account vault path.
func (c *Config) VaultFile() string {
	return filepath.Join(c.DataDir, "account.vault")
}

// SettingsFile returns the settings file path.
func (c *Config) SettingsFile() string {
	return filepath.Join(c.DataDir, "trustline.json")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
