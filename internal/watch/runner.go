package watch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lendingScope/internal/model"
	"lendingScope/internal/pool"
	"lendingScope/internal/storage"
)

// Inspector reads one pool snapshot for a user.
type Inspector interface {
	Inspect(ctx context.Context, user, poolID string) pool.Report
}

// RunConfig holds runtime settings for the watcher.
type RunConfig struct {
	Network      string
	PoolID       string
	Users        []string
	Interval     time.Duration
	MaxPolls     int
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner polls pool snapshots and writes them to storage.
type Runner struct {
	cfg       RunConfig
	inspector Inspector
	storage   storage.Storage
	logger    *zap.Logger
	retry     retryPolicy
	now       func() time.Time
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, inspector Inspector, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		inspector: inspector,
		storage:   storageSink,
		logger:    logger,
		retry:     newRetryPolicy(cfg.MaxRetries, cfg.RetryBackoff, logger),
		now:       time.Now,
	}
}

// Run polls until the context ends or MaxPolls rounds have been stored.
// A zero MaxPolls polls forever.
func (r *Runner) Run(ctx context.Context) error {
	if r.inspector == nil {
		return fmt.Errorf("inspector is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.PoolID == "" {
		return fmt.Errorf("pool id is required")
	}
	if len(r.cfg.Users) == 0 {
		return fmt.Errorf("at least one address is required")
	}
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be greater than zero")
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for round := 1; ; round++ {
		if err := r.Poll(ctx); err != nil {
			return err
		}
		if r.cfg.MaxPolls > 0 && round >= r.cfg.MaxPolls {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll takes one snapshot per user and stores them as a single batch.
func (r *Runner) Poll(ctx context.Context) error {
	records := make([]model.SnapshotRecord, 0, len(r.cfg.Users))
	for _, user := range r.cfg.Users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report := r.inspector.Inspect(ctx, user, r.cfg.PoolID)
		rec := model.SnapshotRecord{
			Network:    r.cfg.Network,
			PoolID:     r.cfg.PoolID,
			User:       user,
			Snapshot:   report.Snapshot,
			Degraded:   report.Degraded(),
			ObservedAt: r.now().UTC().Format(time.RFC3339Nano),
		}
		if len(rec.Degraded) > 0 {
			r.logger.Warn("snapshot degraded", zap.String("user", user), zap.Strings("stages", rec.Degraded))
		}
		records = append(records, rec)
	}

	fields := []zap.Field{zap.String("pool", r.cfg.PoolID), zap.Int("records", len(records))}
	err := r.retry.do(ctx, "store snapshots", fields, func(ctx context.Context) error {
		return r.storage.PutSnapshotBatch(ctx, records)
	})
	if err != nil {
		return fmt.Errorf("store snapshots: %w", err)
	}

	r.logger.Info("poll complete", zap.String("pool", r.cfg.PoolID), zap.Int("records", len(records)))
	return nil
}
