package memory

import (
	"testing"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database/dbtest"
)

func TestMemoryDB(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) database.DB {
		return New()
	})
}
