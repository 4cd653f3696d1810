package node

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/config"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb/postgres"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb/sqlite"
)

// openJournal opens the configured journal. Driver "none" returns nil.
func openJournal(ctx context.Context, jc config.JournalConfig, logger *slog.Logger) (relationaldb.Journal, error) {
	rc := jc.Relational()
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	switch rc.Driver {
	case relationaldb.DriverNone:
		return nil, nil
	case relationaldb.DriverSQLite:
		if rc.ConnectionString == "" {
			if err := os.MkdirAll(filepath.Dir(rc.Database), 0o755); err != nil {
				return nil, fmt.Errorf("create journal directory: %w", err)
			}
		}
		j, err := sqlite.Open(ctx, rc, logger)
		if err != nil {
			return nil, err
		}
		return j, nil
	case relationaldb.DriverPostgres:
		j, err := postgres.Open(ctx, rc, logger)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, fmt.Errorf("%w: %q", relationaldb.ErrInvalidDriver, rc.Driver)
	}
}
