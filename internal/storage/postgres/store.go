package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lendingScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	id           BIGSERIAL PRIMARY KEY,
	network      TEXT NOT NULL,
	pool_id      TEXT NOT NULL,
	user_address TEXT NOT NULL,
	pool_balance NUMERIC NOT NULL,
	user_balance NUMERIC NOT NULL,
	user_debt    NUMERIC NOT NULL,
	degraded     TEXT[] NOT NULL DEFAULT '{}',
	observed_at  TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS pool_snapshots_lookup
	ON pool_snapshots (network, pool_id, user_address, observed_at DESC);
`

// Store provides Postgres persistence for pool snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// PutSnapshotBatch inserts snapshot records in one round trip.
func (s *Store) PutSnapshotBatch(ctx context.Context, records []model.SnapshotRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		degraded := r.Degraded
		if degraded == nil {
			degraded = []string{}
		}
		batch.Queue(`
			INSERT INTO pool_snapshots (
				network, pool_id, user_address, pool_balance, user_balance, user_debt, degraded, observed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			r.Network,
			r.PoolID,
			r.User,
			r.Snapshot.PoolBalance,
			r.Snapshot.UserBalance,
			r.Snapshot.UserDebt,
			degraded,
			r.ObservedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LatestSnapshot returns the most recent record for a user and pool.
func (s *Store) LatestSnapshot(ctx context.Context, network, poolID, user string) (model.SnapshotRecord, bool, error) {
	var (
		rec        model.SnapshotRecord
		observedAt time.Time
	)
	row := s.pool.QueryRow(ctx, `
		SELECT network, pool_id, user_address,
			to_char(pool_balance, 'FM999999999999990.0000'),
			to_char(user_balance, 'FM999999999999990.0000'),
			to_char(user_debt, 'FM999999999999990.0000'),
			degraded, observed_at
		FROM pool_snapshots
		WHERE network = $1 AND pool_id = $2 AND user_address = $3
		ORDER BY observed_at DESC
		LIMIT 1
	`, network, poolID, user)
	if err := row.Scan(
		&rec.Network,
		&rec.PoolID,
		&rec.User,
		&rec.Snapshot.PoolBalance,
		&rec.Snapshot.UserBalance,
		&rec.Snapshot.UserDebt,
		&rec.Degraded,
		&observedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SnapshotRecord{}, false, nil
		}
		return model.SnapshotRecord{}, false, err
	}
	rec.ObservedAt = observedAt.UTC().Format(time.RFC3339Nano)
	return rec, true, nil
}
