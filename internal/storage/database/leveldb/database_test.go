package leveldb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/dbtest"
)

func TestLevelDB(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) database.DB {
		db, err := Open(t.TempDir())
		require.NoError(t, err)
		return db
	})
}

func TestLevelDBMemory(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) database.DB {
		db, err := OpenMemory()
		require.NoError(t, err)
		return db
	})
}
