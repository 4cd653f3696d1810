package config

import "github.com/spf13/viper"

// setDefaults sets every default value
func setDefaults(v *viper.Viper) {
	// Token genesis
	v.SetDefault("token.name", "ThermCoin")
	v.SetDefault("token.symbol", "THERM")
	v.SetDefault("token.decimals", 18)
	v.SetDefault("token.premint", "0")
	v.SetDefault("token.base_tx_fee", "1")
	v.SetDefault("token.fee_increment", "1")
	v.SetDefault("token.volume_threshold", "1000")
	v.SetDefault("token.owner", "")
	v.SetDefault("token.fee_recipient", "")

	// Storage
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.compression", "lz4")
	v.SetDefault("storage.cache_size", 8192)

	// Journal
	v.SetDefault("journal.driver", "none")
	v.SetDefault("journal.path", "data/journal.db")
	v.SetDefault("journal.host", "localhost")
	v.SetDefault("journal.port", 5432)
	v.SetDefault("journal.database", "thermcoin")
	v.SetDefault("journal.user", "thermcoin")
	v.SetDefault("journal.ssl_mode", "prefer")
	v.SetDefault("journal.max_open_conns", 10)
	v.SetDefault("journal.max_idle_conns", 2)
	v.SetDefault("journal.timeout", "30s")

	// RPC
	v.SetDefault("rpc.enabled", true)
	v.SetDefault("rpc.address", "127.0.0.1:8545")
	v.SetDefault("rpc.ws_path", "/ws")
	v.SetDefault("rpc.timeout", "30s")
	v.SetDefault("rpc.allowed_origins", []string{})

	// gRPC
	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.address", "127.0.0.1:9090")
	v.SetDefault("grpc.max_recv_msg_size", 4<<20)
	v.SetDefault("grpc.max_send_msg_size", 4<<20)

	// Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}
