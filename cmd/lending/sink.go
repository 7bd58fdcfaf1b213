package main

import (
	"context"
	"fmt"

	"lendingScope/internal/config"
	"lendingScope/internal/model"
	"lendingScope/internal/storage"
	"lendingScope/internal/storage/postgres"
	"lendingScope/internal/storage/wal"
)

// openSink returns the configured snapshot sink and its closer.
func openSink(ctx context.Context, cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.Sink {
	case config.SinkJSONL, "":
		return storage.NewJsonlStorage(cfg.Out), func() {}, nil
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, store.Close, nil
	case config.SinkWAL:
		store, err := wal.NewStore(cfg.WALDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}

// readHistory loads stored records for the configured pool and addresses.
// Postgres keeps only the latest record per address in this view.
func readHistory(ctx context.Context, cfg config.Config) ([]model.SnapshotRecord, error) {
	var records []model.SnapshotRecord
	switch cfg.Sink {
	case config.SinkJSONL, "":
		all, err := storage.ReadSnapshots(cfg.Out)
		if err != nil {
			return nil, err
		}
		records = all
	case config.SinkWAL:
		store, err := wal.NewStore(cfg.WALDir)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		all, err := store.Snapshots()
		if err != nil {
			return nil, err
		}
		records = all
	case config.SinkPostgres:
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		for _, user := range cfg.Addresses {
			rec, ok, err := store.LatestSnapshot(ctx, cfg.Network, cfg.PoolID, user)
			if err != nil {
				return nil, err
			}
			if ok {
				records = append(records, rec)
			}
		}
		return records, nil
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
	return filterRecords(records, cfg.PoolID, cfg.Addresses), nil
}

func filterRecords(records []model.SnapshotRecord, poolID string, users []string) []model.SnapshotRecord {
	wanted := make(map[string]struct{}, len(users))
	for _, u := range users {
		wanted[u] = struct{}{}
	}
	out := make([]model.SnapshotRecord, 0, len(records))
	for _, rec := range records {
		if poolID != "" && rec.PoolID != poolID {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[rec.User]; !ok {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}
