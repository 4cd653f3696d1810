// Package sqlite is the embedded SQLite event journal.
package sqlite

import (
	"context"
	"log/slog"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb/sqljournal"
)

var dialect = sqljournal.Dialect{
	Name: relationaldb.DriverSQLite,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS token_events (
			seq INTEGER PRIMARY KEY,
			op TEXT NOT NULL,
			kind TEXT NOT NULL,
			from_addr TEXT NOT NULL,
			to_addr TEXT NOT NULL,
			amount TEXT,
			old_factor TEXT,
			new_factor TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_token_events_from ON token_events(from_addr, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_token_events_to ON token_events(to_addr, seq)`,
	},
	Insert: `INSERT INTO token_events (` + sqljournal.Columns() + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (seq) DO NOTHING`,
	ByAccount: `SELECT ` + sqljournal.Columns() + `
		FROM token_events WHERE from_addr = ? OR to_addr = ?
		ORDER BY seq DESC LIMIT ?`,
	Latest: `SELECT ` + sqljournal.Columns() + `
		FROM token_events ORDER BY seq DESC LIMIT ?`,
}

// Open opens or creates the SQLite journal at cfg.Database.
func Open(ctx context.Context, cfg *relationaldb.Config, logger *slog.Logger) (*sqljournal.Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, relationaldb.NewConfigurationError("open", "invalid configuration", err)
	}
	return sqljournal.Open(ctx, "sqlite", dialect, cfg, logger)
}
