package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
)

func TestOpenEveryBackend(t *testing.T) {
	ctx := context.Background()
	for _, kind := range Names() {
		t.Run(kind, func(t *testing.T) {
			db, err := Open(kind, t.TempDir(), "state")
			require.NoError(t, err)
			defer db.Close()

			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("rocksdb", t.TempDir(), "state")
	assert.ErrorIs(t, err, database.ErrInvalidBackend)
}
