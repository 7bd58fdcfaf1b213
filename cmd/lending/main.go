package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lendingScope/internal/config"
	"lendingScope/internal/lending"
)

func main() {
	root := &cobra.Command{
		Use:          "lending",
		Short:        "Sui lending pool client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Read the pool and account snapshot once",
		RunE:  runSnapshot,
	}
	addLedgerFlags(snapshotCmd)
	snapshotCmd.Flags().Bool("store", false, "also write the snapshot to the configured sink")
	addSinkFlags(snapshotCmd)
	root.AddCommand(snapshotCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll snapshots and write them to a sink",
		RunE:  runWatch,
	}
	addLedgerFlags(watchCmd)
	addSinkFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 30*time.Second, "poll interval")
	watchCmd.Flags().Int("polls", 0, "stop after this many polls, 0 means forever")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts for sink writes")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	root.AddCommand(watchCmd)

	buildCmd := &cobra.Command{
		Use:   "build deposit|borrow|repay",
		Short: "Build an unsigned transaction kind",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	addLedgerFlags(buildCmd)
	buildCmd.Flags().String("amount", "", "amount in SUI")
	root.AddCommand(buildCmd)

	executeCmd := &cobra.Command{
		Use:   "execute deposit|borrow|repay",
		Short: "Build, sign through an external wallet, and execute an action",
		Args:  cobra.ExactArgs(1),
		RunE:  runExecute,
	}
	addLedgerFlags(executeCmd)
	executeCmd.Flags().String("amount", "", "amount in SUI")
	executeCmd.Flags().String("request-type", "WaitForLocalExecution", "execute wait mode (WaitForLocalExecution, WaitForEffectsCert)")
	root.AddCommand(executeCmd)

	submitCmd := &cobra.Command{
		Use:   "submit <tx-bytes> <signature>",
		Short: "Execute pre-signed transaction bytes",
		Args:  cobra.ExactArgs(2),
		RunE:  runSubmit,
	}
	addLedgerFlags(submitCmd)
	submitCmd.Flags().String("request-type", "WaitForLocalExecution", "execute wait mode (WaitForLocalExecution, WaitForEffectsCert)")
	root.AddCommand(submitCmd)

	explorerCmd := &cobra.Command{
		Use:   "explorer <digest>",
		Short: "Print the explorer link for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runExplorer,
	}
	explorerCmd.Flags().String("network", lending.NetworkTestnet, "network (mainnet, testnet, devnet)")
	explorerCmd.Flags().String("explorer-host", "", "explorer host override")
	root.AddCommand(explorerCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored snapshots",
		RunE:  runHistory,
	}
	historyCmd.Flags().String("pool-id", "", "lending pool object id")
	historyCmd.Flags().StringSlice("address", nil, "account addresses (comma-separated)")
	historyCmd.Flags().String("network", lending.NetworkTestnet, "network (mainnet, testnet, devnet)")
	historyCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	addSinkFlags(historyCmd)
	root.AddCommand(historyCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLedgerFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Sui fullnode RPC URL")
	cmd.Flags().String("network", lending.NetworkTestnet, "network (mainnet, testnet, devnet)")
	cmd.Flags().String("package-id", "", "lending package id")
	cmd.Flags().String("pool-id", "", "lending pool object id")
	cmd.Flags().StringSlice("address", nil, "account addresses (comma-separated)")
	cmd.Flags().String("explorer-host", "", "explorer host override")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addSinkFlags(cmd *cobra.Command) {
	cmd.Flags().String("sink", config.SinkJSONL, "snapshot sink (jsonl, postgres, wal)")
	cmd.Flags().String("out", "./data/snapshots.jsonl", "output JSONL path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("wal-dir", "./data/wal", "snapshot WAL directory")
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	if cfg.ExplorerHost == "" {
		cfg.ExplorerHost = lending.ExplorerHost(cfg.Network)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
