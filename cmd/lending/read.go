package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lendingScope/internal/model"
	"lendingScope/internal/pool"
	"lendingScope/internal/sui"
	"lendingScope/internal/watch"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.RequirePool(); err != nil {
		return err
	}
	if len(cfg.Addresses) == 0 {
		return fmt.Errorf("address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sui.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	reader := pool.NewReader(client, cfg.PackageID, pool.WithLogger(logger))

	records := make([]model.SnapshotRecord, 0, len(cfg.Addresses))
	for _, user := range cfg.Addresses {
		report := reader.Inspect(ctx, user, cfg.PoolID)
		records = append(records, model.SnapshotRecord{
			Network:    cfg.Network,
			PoolID:     cfg.PoolID,
			User:       user,
			Snapshot:   report.Snapshot,
			Degraded:   report.Degraded(),
			ObservedAt: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}

	if store, _ := cmd.Flags().GetBool("store"); store {
		sink, closeSink, err := openSink(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSink()
		if err := sink.PutSnapshotBatch(ctx, records); err != nil {
			return fmt.Errorf("store snapshots: %w", err)
		}
	}

	return printJSON(records)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.RequirePool(); err != nil {
		return err
	}
	polls, _ := cmd.Flags().GetInt("polls")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sui.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	sink, closeSink, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	reader := pool.NewReader(client, cfg.PackageID, pool.WithLogger(logger))
	runner := watch.NewRunner(watch.RunConfig{
		Network:      cfg.Network,
		PoolID:       cfg.PoolID,
		Users:        cfg.Addresses,
		Interval:     cfg.Interval,
		MaxPolls:     polls,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, reader, sink, logger)

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("network", cfg.Network),
		zap.String("pool", cfg.PoolID),
		zap.Int("addresses", len(cfg.Addresses)),
		zap.Duration("interval", cfg.Interval),
		zap.String("sink", cfg.Sink),
	)

	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	records, err := readHistory(context.Background(), cfg)
	if err != nil {
		return err
	}
	return printJSON(records)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
