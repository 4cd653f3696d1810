package relationaldb

import (
	"fmt"
	"net/url"
	"time"
)

// Journal drivers.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains journal database settings
type Config struct {
	// Database connection settings
	Driver           string `mapstructure:"driver"`
	ConnectionString string `mapstructure:"connection_string"`
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Database         string `mapstructure:"database"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	SSLMode          string `mapstructure:"ssl_mode"`

	// Connection pool settings
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`

	DefaultTimeout time.Duration `mapstructure:"default_timeout"`

	// SQLite only
	EnableWALMode bool `mapstructure:"enable_wal_mode"`
}

// NewConfig creates a new Config with the journal disabled
func NewConfig() *Config {
	return &Config{
		Driver:          DriverNone,
		Host:            "localhost",
		Port:            5432,
		Database:        "thermcoin",
		Username:        "thermcoin",
		SSLMode:         "prefer",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 15,
		DefaultTimeout:  time.Second * 30,
		EnableWALMode:   true,
	}
}

// PostgresConfig creates a PostgreSQL-specific configuration
func PostgresConfig() *Config {
	config := NewConfig()
	config.Driver = DriverPostgres
	return config
}

// SQLiteConfig creates a SQLite-specific configuration
func SQLiteConfig(dbPath string) *Config {
	config := NewConfig()
	config.Driver = DriverSQLite
	config.Database = dbPath
	config.MaxOpenConns = 1 // SQLite allows a single writer
	config.MaxIdleConns = 1
	return config
}

// Validate checks the configuration for common errors
func (c *Config) Validate() error {
	switch c.Driver {
	case "", DriverNone:
		c.Driver = DriverNone
		return nil
	case DriverPostgres, "postgresql":
		c.Driver = DriverPostgres
	case DriverSQLite, "sqlite3":
		c.Driver = DriverSQLite
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}

	if c.Driver == DriverPostgres && c.ConnectionString == "" {
		if c.Host == "" {
			return ErrMissingHost
		}
		if c.Port <= 0 || c.Port > 65535 {
			return ErrInvalidPort
		}
		if c.Database == "" {
			return ErrMissingDatabase
		}
		if c.Username == "" {
			return ErrMissingUsername
		}
		switch c.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
		}
	}
	if c.Driver == DriverSQLite && c.Database == "" && c.ConnectionString == "" {
		return ErrMissingDatabase
	}

	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.MaxIdleConns < 0 {
		return ErrInvalidMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return ErrMaxIdleExceedsMaxOpen
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ConnMaxLifetime < 0 {
		return ErrInvalidConnMaxLifetime
	}
	if c.ConnMaxIdleTime < 0 {
		return ErrInvalidConnMaxIdleTime
	}
	return nil
}

// BuildConnectionString builds a connection string from the config
func (c *Config) BuildConnectionString() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}

	switch c.Driver {
	case DriverPostgres:
		return c.buildPostgresConnectionString(), nil
	case DriverSQLite:
		return c.buildSQLiteConnectionString(), nil
	default:
		return "", fmt.Errorf("%w: no connection string for %s", ErrInvalidDriver, c.Driver)
	}
}

func (c *Config) buildPostgresConnectionString() string {
	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	params.Set("connect_timeout", "30")
	params.Set("application_name", "thermd-journal")

	u := url.URL{
		Scheme:   "postgres",
		Host:     c.Host,
		Path:     "/" + c.Database,
		RawQuery: params.Encode(),
	}
	if c.Port != 0 && c.Port != 5432 {
		u.Host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	return u.String()
}

// buildSQLiteConnectionString uses the _pragma query form of modernc.org/sqlite.
func (c *Config) buildSQLiteConnectionString() string {
	params := url.Values{}
	if c.EnableWALMode {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "synchronous(NORMAL)")
	return c.Database + "?" + params.Encode()
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config with the password redacted
func (c *Config) String() string {
	clone := c.Clone()
	if clone.Password != "" {
		clone.Password = "***"
	}
	connStr, _ := clone.BuildConnectionString()
	return fmt.Sprintf("Config{Driver: %s, Host: %s, Port: %d, Database: %s, Connection: %s}",
		clone.Driver, clone.Host, clone.Port, clone.Database, connStr)
}
