package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/address"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/amount"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/core/fee"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/crypto/secp256k1"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/logging"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

// Config represents the complete thermd configuration
type Config struct {
	Token   TokenConfig   `toml:"token" mapstructure:"token"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`
	RPC     RPCConfig     `toml:"rpc" mapstructure:"rpc"`
	GRPC    GRPCConfig    `toml:"grpc" mapstructure:"grpc"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`

	configPath string
}

// ConfigPath returns the file the configuration was read from, if any.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// TokenConfig is the genesis definition of the token. It is only used when
// the state store is empty; afterwards the stored state wins.
type TokenConfig struct {
	Name     string `toml:"name" mapstructure:"name"`
	Symbol   string `toml:"symbol" mapstructure:"symbol"`
	Decimals uint8  `toml:"decimals" mapstructure:"decimals"`

	// Premint is in whole tokens and may carry a fraction.
	Premint string `toml:"premint" mapstructure:"premint"`

	// Fee parameters are in smallest units.
	BaseTxFee       string `toml:"base_tx_fee" mapstructure:"base_tx_fee"`
	FeeIncrement    string `toml:"fee_increment" mapstructure:"fee_increment"`
	VolumeThreshold string `toml:"volume_threshold" mapstructure:"volume_threshold"`

	// Owner is a hex address or the path of a file holding a hex private key.
	Owner        string `toml:"owner" mapstructure:"owner"`
	FeeRecipient string `toml:"fee_recipient" mapstructure:"fee_recipient"`
}

// FeeParams parses the fee parameters.
func (t TokenConfig) FeeParams() (fee.Params, error) {
	var (
		p   fee.Params
		err error
	)
	if p.BaseTxFee, err = amount.Parse(t.BaseTxFee); err != nil {
		return p, fmt.Errorf("base_tx_fee: %w", err)
	}
	if p.FeeIncrement, err = amount.Parse(t.FeeIncrement); err != nil {
		return p, fmt.Errorf("fee_increment: %w", err)
	}
	if p.VolumeThreshold, err = amount.Parse(t.VolumeThreshold); err != nil {
		return p, fmt.Errorf("volume_threshold: %w", err)
	}
	return p, p.Validate()
}

// PremintUnits converts the premint to smallest units.
func (t TokenConfig) PremintUnits() (*uint256.Int, error) {
	if strings.TrimSpace(t.Premint) == "" {
		return amount.Zero(), nil
	}
	v, err := amount.ParseUnits(t.Premint, t.Decimals)
	if err != nil {
		return nil, fmt.Errorf("premint: %w", err)
	}
	return v, nil
}

// OwnerAddress resolves the owner. An empty owner yields the zero address.
func (t TokenConfig) OwnerAddress() (address.Address, error) {
	s := strings.TrimSpace(t.Owner)
	if s == "" {
		return address.Zero, nil
	}
	if a, err := address.Parse(s); err == nil {
		return a, nil
	}

	data, err := os.ReadFile(s)
	if err != nil {
		return address.Zero, fmt.Errorf("owner %q is neither an address nor a readable key file: %w", s, err)
	}
	key, err := secp256k1.ParsePrivateKey(string(data))
	if err != nil {
		return address.Zero, fmt.Errorf("owner key file %s: %w", s, err)
	}
	return secp256k1.KeyAddress(key), nil
}

// FeeRecipientAddress parses the fee recipient. Empty means fees are burned.
func (t TokenConfig) FeeRecipientAddress() (address.Address, error) {
	if strings.TrimSpace(t.FeeRecipient) == "" {
		return address.Zero, nil
	}
	return address.Parse(t.FeeRecipient)
}

// StorageConfig selects the key-value backend for token state
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	Compression string `toml:"compression" mapstructure:"compression"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
}

// JournalConfig selects the SQL event journal
type JournalConfig struct {
	Driver           string        `toml:"driver" mapstructure:"driver"`
	Path             string        `toml:"path" mapstructure:"path"`
	ConnectionString string        `toml:"connection_string" mapstructure:"connection_string"`
	Host             string        `toml:"host" mapstructure:"host"`
	Port             int           `toml:"port" mapstructure:"port"`
	User             string        `toml:"user" mapstructure:"user"`
	Password         string        `toml:"password" mapstructure:"password"`
	Database         string        `toml:"database" mapstructure:"database"`
	SSLMode          string        `toml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns     int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns     int           `toml:"max_idle_conns" mapstructure:"max_idle_conns"`
	Timeout          time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// Relational maps the section onto the journal driver configuration.
func (j JournalConfig) Relational() *relationaldb.Config {
	var c *relationaldb.Config
	switch j.Driver {
	case relationaldb.DriverSQLite, "sqlite3":
		c = relationaldb.SQLiteConfig(j.Path)
	case relationaldb.DriverPostgres, "postgresql":
		c = relationaldb.PostgresConfig()
		c.Host = j.Host
		c.Port = j.Port
		c.Username = j.User
		c.Password = j.Password
		c.Database = j.Database
		c.SSLMode = j.SSLMode
		if j.MaxOpenConns > 0 {
			c.MaxOpenConns = j.MaxOpenConns
		}
		if j.MaxIdleConns > 0 {
			c.MaxIdleConns = j.MaxIdleConns
		}
	default:
		c = relationaldb.NewConfig()
		c.Driver = j.Driver
	}
	c.ConnectionString = j.ConnectionString
	if j.Timeout > 0 {
		c.DefaultTimeout = j.Timeout
	}
	return c
}

// RPCConfig configures the JSON-RPC and WebSocket listener
type RPCConfig struct {
	Enabled        bool          `toml:"enabled" mapstructure:"enabled"`
	Address        string        `toml:"address" mapstructure:"address"`
	WSPath         string        `toml:"ws_path" mapstructure:"ws_path"`
	Timeout        time.Duration `toml:"timeout" mapstructure:"timeout"`
	AllowedOrigins []string      `toml:"allowed_origins" mapstructure:"allowed_origins"`
}

// GRPCConfig configures the gRPC health listener
type GRPCConfig struct {
	Enabled        bool   `toml:"enabled" mapstructure:"enabled"`
	Address        string `toml:"address" mapstructure:"address"`
	MaxRecvMsgSize int    `toml:"max_recv_msg_size" mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize int    `toml:"max_send_msg_size" mapstructure:"max_send_msg_size"`
}

// LogConfig configures process logging
type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	Format     string `toml:"format" mapstructure:"format"`
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Logging converts the section for the logging package.
func (l LogConfig) Logging() logging.Config {
	return logging.Config{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}
