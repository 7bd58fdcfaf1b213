package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lendingScope/internal/bcs"
	"lendingScope/internal/model"
	"lendingScope/internal/sui"
	"lendingScope/internal/txn"
	"lendingScope/internal/units"
)

// DepositsField is the pool struct field holding total deposits in MIST.
const DepositsField = "deposits"

// Ledger is the subset of the node API the reader needs.
type Ledger interface {
	GetObject(ctx context.Context, id string, opts sui.ObjectDataOptions) (*sui.ObjectResponse, error)
	GetBalance(ctx context.Context, owner, coinType string) (*sui.Balance, error)
	DevInspectTransactionBlock(ctx context.Context, sender string, txKind []byte) (*sui.DevInspectResults, error)
}

// Stage names one of the independent reads behind a snapshot.
type Stage string

const (
	StagePoolObject  Stage = "pool_object"
	StageUserBalance Stage = "user_balance"
	StageUserDebt    Stage = "user_debt"
)

// Failure is a read that fell back to zero.
type Failure struct {
	Stage Stage
	Err   error
}

// Report is a snapshot plus the reads that degraded while building it.
type Report struct {
	Snapshot model.PoolSnapshot
	Failures []Failure
}

// Degraded returns the failed stage names.
func (r Report) Degraded() []string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, string(f.Stage))
	}
	return out
}

// FailureHook is called for every read that degrades to zero. It may be
// called from several goroutines.
type FailureHook func(stage Stage, err error)

type Option func(*Reader)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithFailureHook(hook FailureHook) Option {
	return func(r *Reader) {
		r.hook = hook
	}
}

// Reader assembles pool snapshots from the ledger. It holds no state between
// calls; every Refresh produces a fresh snapshot.
type Reader struct {
	ledger    Ledger
	packageID string
	logger    *zap.Logger
	hook      FailureHook
}

func NewReader(ledger Ledger, packageID string, opts ...Option) *Reader {
	r := &Reader{
		ledger:    ledger,
		packageID: packageID,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh never fails: a pool or balance read error yields an all-zero
// snapshot, a debt probe error yields a zero debt.
func (r *Reader) Refresh(ctx context.Context, user, poolID string) model.PoolSnapshot {
	return r.Inspect(ctx, user, poolID).Snapshot
}

// Inspect is Refresh with the list of degraded reads.
func (r *Reader) Inspect(ctx context.Context, user, poolID string) Report {
	var (
		mu       sync.Mutex
		failures []Failure
		snapshot = model.PoolSnapshot{UserDebt: model.ZeroAmount}
	)
	record := func(stage Stage, err error) {
		mu.Lock()
		failures = append(failures, Failure{Stage: stage, Err: err})
		mu.Unlock()
		if r.hook != nil {
			r.hook(stage, err)
		}
	}

	// No shared cancellation: a failing read does not abort the others.
	var g errgroup.Group
	g.Go(func() error {
		obj, err := r.ledger.GetObject(ctx, poolID, sui.ObjectDataOptions{ShowContent: true, ShowOwner: true})
		if err != nil {
			return &stageError{stage: StagePoolObject, err: err}
		}
		if obj == nil {
			return &stageError{stage: StagePoolObject, err: errors.New("empty object response")}
		}

		balance, err := poolBalance(obj)
		if err != nil {
			r.logger.Warn("pool deposits unreadable", zap.String("pool", poolID), zap.Error(err))
			record(StagePoolObject, err)
			balance = model.ZeroAmount
		}
		snapshot.PoolBalance = balance

		debt, err := r.fetchDebt(ctx, user, poolID, obj)
		if err != nil {
			r.logger.Warn("failed to fetch user debt", zap.String("user", user), zap.String("pool", poolID), zap.Error(err))
			record(StageUserDebt, err)
			debt = model.ZeroAmount
		}
		snapshot.UserDebt = debt
		return nil
	})
	g.Go(func() error {
		bal, err := r.ledger.GetBalance(ctx, user, sui.NativeCoinType)
		if err != nil {
			return &stageError{stage: StageUserBalance, err: err}
		}
		if bal == nil {
			return &stageError{stage: StageUserBalance, err: errors.New("empty balance response")}
		}
		snapshot.UserBalance = units.ToDisplayUnits(bal.TotalBalance)
		return nil
	})

	if err := g.Wait(); err != nil {
		var se *stageError
		stage := StagePoolObject
		if errors.As(err, &se) {
			stage = se.stage
		}
		r.logger.Error("error fetching pool data", zap.String("user", user), zap.String("pool", poolID), zap.String("stage", string(stage)), zap.Error(err))
		record(stage, err)
		return Report{Snapshot: model.ZeroSnapshot(), Failures: failures}
	}

	return Report{Snapshot: snapshot, Failures: failures}
}

func poolBalance(obj *sui.ObjectResponse) (string, error) {
	if obj.Data == nil || obj.Data.Content == nil || obj.Data.Content.DataType != sui.DataTypeMoveObject {
		return model.ZeroAmount, nil
	}
	deposits, _, err := obj.Data.Content.U64Field(DepositsField)
	if err != nil {
		return "", err
	}
	return units.FormatBase(deposits), nil
}

func (r *Reader) fetchDebt(ctx context.Context, user, poolID string, obj *sui.ObjectResponse) (string, error) {
	if obj.Data == nil {
		if obj.Error != nil {
			return "", obj.Error
		}
		return "", errors.New("pool object has no data")
	}
	if obj.Data.Owner == nil || obj.Data.Owner.Shared == nil {
		return "", fmt.Errorf("pool %s is not a shared object", poolID)
	}

	req, err := txn.BuildGetDebt(r.packageID, poolID, user)
	if err != nil {
		return "", err
	}
	poolAddr, err := sui.ParseAddress(poolID)
	if err != nil {
		return "", err
	}
	req.ResolveShared(poolAddr, uint64(obj.Data.Owner.Shared.InitialSharedVersion))

	kind, err := req.KindBytes()
	if err != nil {
		return "", err
	}
	res, err := r.ledger.DevInspectTransactionBlock(ctx, user, kind)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", errors.New("empty dev inspect response")
	}
	rv, err := res.FirstReturnValue()
	if err != nil {
		return "", err
	}
	debt, err := bcs.DecodeU64LE(rv.Bytes)
	if err != nil {
		return "", err
	}
	return units.FormatBase(debt), nil
}

type stageError struct {
	stage Stage
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}
