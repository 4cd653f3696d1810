// Package postgres is the PostgreSQL event journal.
package postgres

import (
	"context"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb/sqljournal"
)

var dialect = sqljournal.Dialect{
	Name: relationaldb.DriverPostgres,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS token_events (
			seq BIGINT PRIMARY KEY,
			op VARCHAR(32) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			from_addr CHAR(42) NOT NULL,
			to_addr CHAR(42) NOT NULL,
			amount NUMERIC(78,0),
			old_factor NUMERIC(78,0),
			new_factor NUMERIC(78,0),
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_token_events_from ON token_events(from_addr, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_token_events_to ON token_events(to_addr, seq)`,
	},
	Insert: `INSERT INTO token_events (` + sqljournal.Columns() + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (seq) DO NOTHING`,
	ByAccount: `SELECT seq, op, kind, from_addr, to_addr, amount::TEXT, old_factor::TEXT, new_factor::TEXT, created_at
		FROM token_events WHERE from_addr = $1 OR to_addr = $2
		ORDER BY seq DESC LIMIT $3`,
	Latest: `SELECT seq, op, kind, from_addr, to_addr, amount::TEXT, old_factor::TEXT, new_factor::TEXT, created_at
		FROM token_events ORDER BY seq DESC LIMIT $1`,
}

// Open connects to PostgreSQL and creates the journal table.
func Open(ctx context.Context, cfg *relationaldb.Config, logger *slog.Logger) (*sqljournal.Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, relationaldb.NewConfigurationError("open", "invalid configuration", err)
	}
	return sqljournal.Open(ctx, "postgres", dialect, cfg, logger)
}
