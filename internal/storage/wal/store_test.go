package wal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingScope/internal/model"
)

func TestStoreWriteAndReplay(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, store.Close())
	}()

	records := []model.SnapshotRecord{
		{Network: "testnet", PoolID: "0xaa", User: "0xbeef", Snapshot: model.ZeroSnapshot(), ObservedAt: "2024-01-01T00:00:00Z"},
		{Network: "testnet", PoolID: "0xaa", User: "0xbeef", Snapshot: model.PoolSnapshot{PoolBalance: "3.0000", UserBalance: "1.0000", UserDebt: "0.5000"}, ObservedAt: "2024-01-01T00:00:30Z"},
	}
	require.NoError(t, store.PutSnapshotBatch(context.Background(), records))
	assert.Equal(t, uint64(2), store.CurrentIndex())

	replayed, err := store.Snapshots()
	require.NoError(t, err)
	assert.ElementsMatch(t, records, replayed)
}

func TestStoreRejectsIncompleteRecord(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	err = store.PutSnapshotBatch(context.Background(), []model.SnapshotRecord{{Network: "testnet"}})
	assert.Error(t, err)
}
