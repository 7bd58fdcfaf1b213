package lending

import (
	"context"
	"fmt"

	"lendingScope/internal/sui"
	"lendingScope/internal/txn"
)

// Signer wraps a TransactionKind into TransactionData (sender, gas payment,
// budget) and signs it. Wallets implement this; keys never reach this module.
type Signer interface {
	Sign(ctx context.Context, txKind []byte) (txBytes []byte, signatures []string, err error)
}

// Executor is the node side of a submission.
type Executor interface {
	txn.ObjectGetter
	ExecuteTransactionBlock(ctx context.Context, txBytes []byte, signatures []string) (*sui.TransactionResponse, error)
}

// LedgerSubmitter resolves, signs, and executes a request in a single attempt.
type LedgerSubmitter struct {
	signer Signer
	node   Executor
}

func NewLedgerSubmitter(signer Signer, node Executor) *LedgerSubmitter {
	return &LedgerSubmitter{signer: signer, node: node}
}

func (s *LedgerSubmitter) SignAndExecute(ctx context.Context, req *txn.Request) (Result, error) {
	if err := txn.ResolveSharedObjects(ctx, s.node, req); err != nil {
		return Result{}, err
	}
	kind, err := req.KindBytes()
	if err != nil {
		return Result{}, fmt.Errorf("encode transaction: %w", err)
	}
	txBytes, signatures, err := s.signer.Sign(ctx, kind)
	if err != nil {
		return Result{}, fmt.Errorf("sign transaction: %w", err)
	}
	resp, err := s.node.ExecuteTransactionBlock(ctx, txBytes, signatures)
	if err != nil {
		return Result{}, err
	}
	return Result{Digest: resp.Digest}, nil
}
