package lending

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lendingScope/internal/txn"
)

var (
	ErrNotConnected  = errors.New("please connect your wallet first")
	ErrInvalidAmount = errors.New("please enter a valid amount")
	ErrInFlight      = errors.New("a transaction of this kind is already pending")
)

// Result is what a submitter reports for a committed transaction.
type Result struct {
	Digest string `json:"digest"`
}

type Status string

const (
	StatusSuccess         Status = "success"
	StatusValidationError Status = "validation_error"
	StatusSubmissionError Status = "submission_error"
	// StatusBuildError marks a transaction that could not be assembled
	// locally; nothing reached the signer.
	StatusBuildError Status = "build_error"
)

// Outcome is the structured result of one user action, delivered to the
// presentation layer instead of a modal alert.
type Outcome struct {
	RequestID   string        `json:"request_id,omitempty"`
	Operation   txn.Operation `json:"operation"`
	Status      Status        `json:"status"`
	Digest      string        `json:"digest,omitempty"`
	ExplorerURL string        `json:"explorer_url,omitempty"`
	Message     string        `json:"message"`
	Err         error         `json:"-"`
}

func (o Outcome) Success() bool {
	return o.Status == StatusSuccess
}

// SubmissionError wraps a signing or execution failure.
type SubmissionError struct {
	Operation txn.Operation
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ResultHandler turns submission results into outcomes.
type ResultHandler struct {
	explorerHost string
	logger       *zap.Logger
}

func NewResultHandler(explorerHost string, logger *zap.Logger) *ResultHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultHandler{explorerHost: explorerHost, logger: logger}
}

// OnSuccess records the digest through setDigest and always runs refresh.
// A refresh error is logged; the transaction itself already committed.
func (h *ResultHandler) OnSuccess(
	ctx context.Context,
	result Result,
	op txn.Operation,
	setDigest func(digest string),
	refresh func(ctx context.Context) error,
) Outcome {
	h.logger.Info("transaction successful", zap.String("operation", string(op)), zap.String("digest", result.Digest))

	if setDigest != nil {
		setDigest(result.Digest)
	}
	if refresh != nil {
		if err := refresh(ctx); err != nil {
			h.logger.Warn("refresh after transaction failed", zap.String("operation", string(op)), zap.Error(err))
		}
	}

	return Outcome{
		Operation:   op,
		Status:      StatusSuccess,
		Digest:      result.Digest,
		ExplorerURL: ExplorerURL(h.explorerHost, result.Digest),
		Message:     fmt.Sprintf("%s successful! Tx: %s", title(op), result.Digest),
	}
}

// OnError reports a failed submission. There is no retry.
func (h *ResultHandler) OnError(err error, op txn.Operation) Outcome {
	h.logger.Error("transaction failed", zap.String("operation", string(op)), zap.Error(err))

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{
		Operation: op,
		Status:    StatusSubmissionError,
		Message:   fmt.Sprintf("%s failed: %s", title(op), msg),
		Err:       &SubmissionError{Operation: op, Err: err},
	}
}

func title(op txn.Operation) string {
	s := string(op)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
