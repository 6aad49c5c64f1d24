// Package settings persists per-user transaction settings: slippage
// tolerances per operation kind and the transaction deadline.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Defaults applied when no settings file exists or a field is out of range.
const (
	DefaultProvideSlippageBps = 50
	DefaultRemoveSlippageBps  = 50
	DefaultSwapSlippageBps    = 50
	DefaultExpirationSeconds  = 3600

	maxSlippageBps       = 5000
	minExpirationSeconds = 30
	maxExpirationSeconds = 86400
)

// TransactionSettings holds the recognized options. Slippages are basis
// points; expiration is the deadline offset in seconds.
type TransactionSettings struct {
	ProvideSlippageBps           uint64 `json:"provide_slippage_bps"`
	RemoveSlippageBps            uint64 `json:"remove_slippage_bps"`
	SwapSlippageBps              uint64 `json:"swap_slippage_bps"`
	TransactionExpirationSeconds uint64 `json:"transaction_expiration_seconds"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() TransactionSettings {
	return TransactionSettings{
		ProvideSlippageBps:           DefaultProvideSlippageBps,
		RemoveSlippageBps:            DefaultRemoveSlippageBps,
		SwapSlippageBps:              DefaultSwapSlippageBps,
		TransactionExpirationSeconds: DefaultExpirationSeconds,
	}
}

// Validate rejects settings a router submission would refuse anyway.
func (s TransactionSettings) Validate() error {
	if s.ProvideSlippageBps == 0 || s.ProvideSlippageBps > maxSlippageBps {
		return fmt.Errorf("provide slippage %d bps out of range (1..%d)", s.ProvideSlippageBps, maxSlippageBps)
	}
	if s.RemoveSlippageBps == 0 || s.RemoveSlippageBps > maxSlippageBps {
		return fmt.Errorf("remove slippage %d bps out of range (1..%d)", s.RemoveSlippageBps, maxSlippageBps)
	}
	if s.SwapSlippageBps == 0 || s.SwapSlippageBps > maxSlippageBps {
		return fmt.Errorf("swap slippage %d bps out of range (1..%d)", s.SwapSlippageBps, maxSlippageBps)
	}
	if s.TransactionExpirationSeconds < minExpirationSeconds || s.TransactionExpirationSeconds > maxExpirationSeconds {
		return fmt.Errorf("transaction expiration %d s out of range (%d..%d)",
			s.TransactionExpirationSeconds, minExpirationSeconds, maxExpirationSeconds)
	}
	return nil
}

// Store persists settings to a JSON file with atomic replace.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get loads the current settings, falling back to defaults when the file is
// missing or unreadable. A corrupt settings file is not fatal.
func (s *Store) Get() TransactionSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return DefaultSettings()
	}

	var loaded TransactionSettings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return DefaultSettings()
	}
	if err := loaded.Validate(); err != nil {
		return DefaultSettings()
	}
	return loaded
}

// Set validates and persists new settings.
func (s *Store) Set(settings TransactionSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write settings tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename settings: %w", err)
	}
	return nil
}
