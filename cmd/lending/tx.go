package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lendingScope/internal/lending"
	"lendingScope/internal/pool"
	"lendingScope/internal/sui"
	"lendingScope/internal/txn"
)

type builtTransaction struct {
	Request *txn.Request `json:"request"`
	TxKind  string       `json:"tx_kind"`
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.RequirePool(); err != nil {
		return err
	}
	op, err := txn.ParseOperation(args[0])
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetString("amount")

	req, err := txn.Build(op, txn.TransactionParams{Amount: amount, PackageID: cfg.PackageID, PoolID: cfg.PoolID})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sui.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	if err := txn.ResolveSharedObjects(ctx, client, req); err != nil {
		return err
	}
	kind, err := req.KindBytes()
	if err != nil {
		return err
	}

	return printJSON(builtTransaction{Request: req, TxKind: base64.StdEncoding.EncodeToString(kind)})
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.RequirePool(); err != nil {
		return err
	}
	if len(cfg.Addresses) != 1 {
		return fmt.Errorf("exactly one address is required")
	}
	op, err := txn.ParseOperation(args[0])
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetString("amount")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sui.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()
	if err := client.SetRequestType(cfg.RequestType); err != nil {
		return err
	}

	session := lending.NewSession(lending.SessionConfig{
		PackageID:    cfg.PackageID,
		PoolID:       cfg.PoolID,
		ExplorerHost: cfg.ExplorerHost,
	},
		lending.NewLedgerSubmitter(lending.NewPromptSigner(os.Stdin, os.Stderr), client),
		pool.NewReader(client, cfg.PackageID, pool.WithLogger(logger)),
		logger,
	)

	before := session.Connect(ctx, cfg.Addresses[0])
	logger.Info("account connected", zap.String("address", cfg.Addresses[0]), zap.Any("snapshot", before))

	outcome := session.Execute(ctx, op, amount)
	fmt.Fprintln(os.Stdout, outcome.Message)
	if !outcome.Success() {
		return outcome.Err
	}
	fmt.Fprintln(os.Stdout, outcome.ExplorerURL)
	return printJSON(session.Snapshot())
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	txBytes, err := base64.StdEncoding.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("decode tx bytes: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sui.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()
	if err := client.SetRequestType(cfg.RequestType); err != nil {
		return err
	}

	resp, err := client.ExecuteTransactionBlock(ctx, txBytes, []string{args[1]})
	if err != nil {
		return err
	}
	logger.Info("transaction executed", zap.String("digest", resp.Digest))
	fmt.Fprintln(os.Stdout, lending.ExplorerURL(cfg.ExplorerHost, resp.Digest))
	return nil
}

func runExplorer(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Fprintln(os.Stdout, lending.ExplorerURL(cfg.ExplorerHost, args[0]))
	return nil
}
