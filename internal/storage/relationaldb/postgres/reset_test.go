package postgres

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/relationaldb"
)

func reset(t *testing.T, cfg *relationaldb.Config) {
	t.Helper()
	db, err := sql.Open("postgres", cfg.ConnectionString)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`DROP TABLE IF EXISTS token_events`)
	require.NoError(t, err)
}
