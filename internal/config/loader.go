// Package config loads thermd configuration from defaults, an optional TOML
// file and THERMD_ environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. THERMD_RPC_ADDRESS.
const EnvPrefix = "THERMD"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file, when path is non-empty
// 3. Environment variables (THERMD_ prefix)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		if err := loadMainConfig(v, path); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("config: defaults do not unmarshal: %v", err))
	}
	return &config
}

// loadMainConfig loads the main configuration file
func loadMainConfig(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	return nil
}
