package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/logging"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/compression"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/backend"
)

// ValidateConfig validates every section
func ValidateConfig(config *Config) error {
	if err := config.Token.Validate(); err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}
	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}
	if err := config.Journal.Validate(); err != nil {
		return fmt.Errorf("journal validation failed: %w", err)
	}
	if err := config.RPC.Validate(); err != nil {
		return fmt.Errorf("rpc validation failed: %w", err)
	}
	if err := config.GRPC.Validate(); err != nil {
		return fmt.Errorf("grpc validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}
	return nil
}

func (t TokenConfig) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return errors.New("symbol is required")
	}
	if t.Decimals > 77 {
		return fmt.Errorf("decimals %d exceeds 77", t.Decimals)
	}
	if _, err := t.PremintUnits(); err != nil {
		return err
	}
	if _, err := t.FeeParams(); err != nil {
		return err
	}
	if _, err := t.FeeRecipientAddress(); err != nil {
		return fmt.Errorf("fee_recipient: %w", err)
	}
	return nil
}

func (s StorageConfig) Validate() error {
	if !slices.Contains(backend.Names(), s.Backend) {
		return fmt.Errorf("unsupported backend %q (supported: %s)", s.Backend, strings.Join(backend.Names(), ", "))
	}
	if s.Backend != backend.Memory && s.Path == "" {
		return errors.New("path is required for on-disk backends")
	}
	if !slices.Contains(compression.Available(), s.Compression) {
		return fmt.Errorf("unsupported compression %q (supported: %s)", s.Compression, strings.Join(compression.Available(), ", "))
	}
	if s.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", s.CacheSize)
	}
	return nil
}

func (j JournalConfig) Validate() error {
	return j.Relational().Validate()
}

func (r RPCConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if err := validateListenAddress(r.Address); err != nil {
		return err
	}
	if !strings.HasPrefix(r.WSPath, "/") {
		return fmt.Errorf("ws_path must start with '/', got %q", r.WSPath)
	}
	if r.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

func (g GRPCConfig) Validate() error {
	if !g.Enabled {
		return nil
	}
	if err := validateListenAddress(g.Address); err != nil {
		return err
	}
	if g.MaxRecvMsgSize <= 0 || g.MaxSendMsgSize <= 0 {
		return errors.New("message size limits must be positive")
	}
	return nil
}

func (l LogConfig) Validate() error {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return err
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported format %q (supported: text, json)", l.Format)
	}
	if l.MaxSizeMB < 0 || l.MaxBackups < 0 || l.MaxAgeDays < 0 {
		return errors.New("rotation limits must be non-negative")
	}
	return nil
}

func validateListenAddress(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}
