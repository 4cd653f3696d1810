// Package dbtest holds a behavioural test suite every database backend runs.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThermCoin-Protocol/thermcoin-smart-contracts/internal/storage/database"
)

// Run exercises db against the database.DB contract. open must return a fresh,
// empty database; Run closes it.
func Run(t *testing.T, open func(t *testing.T) database.DB) {
	ctx := context.Background()

	t.Run("ReadWriteDelete", func(t *testing.T) {
		db := open(t)
		defer db.Close()

		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v1")))
		got, err := db.Read(ctx, []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v2")))
		got, err = db.Read(ctx, []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		require.NoError(t, db.Delete(ctx, []byte("k1")))
		_, err = db.Read(ctx, []byte("k1"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Batch", func(t *testing.T) {
		db := open(t)
		defer db.Close()

		require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))
		err := db.Batch(ctx, []database.BatchOperation{
			database.Put([]byte("a"), []byte("1")),
			database.Put([]byte("b"), []byte("2")),
			database.Del([]byte("gone")),
		})
		require.NoError(t, err)

		got, err := db.Read(ctx, []byte("b"))
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), got)
		_, err = db.Read(ctx, []byte("gone"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		err = db.Batch(ctx, []database.BatchOperation{{Type: database.BatchOpType(99), Key: []byte("z")}})
		assert.ErrorIs(t, err, database.ErrUnknownBatchOp)
	})

	t.Run("Iterator", func(t *testing.T) {
		db := open(t)
		defer db.Close()

		for _, k := range []string{"acct/b", "acct/a", "acct/c", "meta", "acc"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
		}

		prefix := []byte("acct/")
		it, err := db.Iterator(ctx, prefix, database.PrefixEnd(prefix))
		require.NoError(t, err)

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, "v-"+string(it.Key()), string(it.Value()))
		}
		require.NoError(t, it.Error())
		require.NoError(t, it.Close())
		assert.Equal(t, []string{"acct/a", "acct/b", "acct/c"}, keys)

		it, err = db.Iterator(ctx, nil, nil)
		require.NoError(t, err)
		count := 0
		for it.Next() {
			count++
		}
		require.NoError(t, it.Close())
		assert.Equal(t, 5, count)
	})

	t.Run("Closed", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Close())

		_, err := db.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrDBClosed)
		assert.ErrorIs(t, db.Write(ctx, []byte("k"), []byte("v")), database.ErrDBClosed)
	})
}
