package lending

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lendingScope/internal/model"
	"lendingScope/internal/txn"
	"lendingScope/internal/units"
)

const defaultOutcomeBuffer = 16

// Submitter signs and executes a request. Implementations own the keys.
type Submitter interface {
	SignAndExecute(ctx context.Context, req *txn.Request) (Result, error)
}

// Refresher produces a fresh snapshot for a user.
type Refresher interface {
	Refresh(ctx context.Context, user, poolID string) model.PoolSnapshot
}

type SessionConfig struct {
	PackageID     string
	PoolID        string
	ExplorerHost  string
	OutcomeBuffer int
}

// Session is the caller-side state of one connected account: the form, the
// latest snapshot, and the in-flight guard. Core components stay stateless.
type Session struct {
	cfg       SessionConfig
	submitter Submitter
	reader    Refresher
	handler   *ResultHandler
	guard     *Guard
	logger    *zap.Logger
	outcomes  chan Outcome

	mu       sync.RWMutex
	account  string
	form     FormState
	snapshot model.PoolSnapshot
}

func NewSession(cfg SessionConfig, submitter Submitter, reader Refresher, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OutcomeBuffer <= 0 {
		cfg.OutcomeBuffer = defaultOutcomeBuffer
	}
	return &Session{
		cfg:       cfg,
		submitter: submitter,
		reader:    reader,
		handler:   NewResultHandler(cfg.ExplorerHost, logger),
		guard:     NewGuard(),
		logger:    logger,
		outcomes:  make(chan Outcome, cfg.OutcomeBuffer),
		snapshot:  model.ZeroSnapshot(),
	}
}

// Outcomes delivers every action result. Results are dropped, with a log
// line, when the consumer falls behind by more than the buffer size.
func (s *Session) Outcomes() <-chan Outcome {
	return s.outcomes
}

// Connect switches the active account and loads its snapshot. An empty
// account disconnects.
func (s *Session) Connect(ctx context.Context, account string) model.PoolSnapshot {
	s.mu.Lock()
	s.account = account
	s.form = FormState{}
	s.snapshot = model.ZeroSnapshot()
	s.mu.Unlock()

	if account == "" {
		return model.ZeroSnapshot()
	}
	s.refresh(ctx)
	return s.Snapshot()
}

func (s *Session) Account() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

func (s *Session) Snapshot() model.PoolSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Session) Form() FormState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}

// SetAmount records what the user typed for op.
func (s *Session) SetAmount(op txn.Operation, amount string) {
	s.update(func(f FormState) FormState { return f.WithAmount(op, amount) })
}

// Submit runs op with the amount currently in the form.
func (s *Session) Submit(ctx context.Context, op txn.Operation) Outcome {
	return s.Execute(ctx, op, s.Form().Amount(op))
}

// Execute validates, builds, submits, and reports one action. A second call
// for the same operation while the first is pending is rejected.
func (s *Session) Execute(ctx context.Context, op txn.Operation, amount string) Outcome {
	requestID := uuid.NewString()
	logger := s.logger.With(zap.String("request_id", requestID), zap.String("operation", string(op)))

	account := s.Account()
	if account == "" {
		return s.publish(validationOutcome(requestID, op, ErrNotConnected))
	}
	if !units.ValidateAmount(amount) {
		return s.publish(validationOutcome(requestID, op, ErrInvalidAmount))
	}

	release, err := s.guard.Acquire(op)
	if err != nil {
		logger.Warn("duplicate submission rejected")
		return s.publish(validationOutcome(requestID, op, err))
	}
	s.update(func(f FormState) FormState { return f.WithLoading(true) })
	defer func() {
		release()
		s.update(func(f FormState) FormState { return f.WithLoading(s.guard.Busy()) })
	}()

	req, err := txn.Build(op, txn.TransactionParams{
		Amount:    amount,
		PackageID: s.cfg.PackageID,
		PoolID:    s.cfg.PoolID,
	})
	if err != nil {
		logger.Error("build transaction failed", zap.Error(err))
		return s.publish(buildOutcome(requestID, op, err))
	}

	logger.Info("submitting transaction", zap.String("amount", amount))
	result, err := s.submitter.SignAndExecute(ctx, req)
	if err != nil {
		outcome := s.handler.OnError(err, op)
		outcome.RequestID = requestID
		return s.publish(outcome)
	}

	outcome := s.handler.OnSuccess(ctx, result, op,
		func(digest string) {
			s.update(func(f FormState) FormState { return f.WithDigest(digest) })
		},
		func(ctx context.Context) error {
			s.refresh(ctx)
			return nil
		},
	)
	outcome.RequestID = requestID
	s.update(func(f FormState) FormState { return f.ClearAmount(op) })
	return s.publish(outcome)
}

func (s *Session) refresh(ctx context.Context) {
	account := s.Account()
	if account == "" || s.reader == nil {
		return
	}
	snapshot := s.reader.Refresh(ctx, account, s.cfg.PoolID)

	s.mu.Lock()
	if s.account == account {
		s.snapshot = snapshot
	}
	s.mu.Unlock()
}

func (s *Session) update(fn func(FormState) FormState) {
	s.mu.Lock()
	s.form = fn(s.form)
	s.mu.Unlock()
}

func (s *Session) publish(outcome Outcome) Outcome {
	select {
	case s.outcomes <- outcome:
	default:
		s.logger.Warn("outcome dropped, consumer is behind",
			zap.String("request_id", outcome.RequestID),
			zap.String("operation", string(outcome.Operation)),
			zap.String("status", string(outcome.Status)),
		)
	}
	return outcome
}

func validationOutcome(requestID string, op txn.Operation, err error) Outcome {
	return Outcome{
		RequestID: requestID,
		Operation: op,
		Status:    StatusValidationError,
		Message:   err.Error(),
		Err:       err,
	}
}

func buildOutcome(requestID string, op txn.Operation, err error) Outcome {
	return Outcome{
		RequestID: requestID,
		Operation: op,
		Status:    StatusBuildError,
		Message:   fmt.Sprintf("Failed to %s: %v", op, err),
		Err:       fmt.Errorf("build %s: %w", op, err),
	}
}
