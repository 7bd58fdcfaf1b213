package pool

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lendingScope/internal/bcs"
	"lendingScope/internal/model"
	"lendingScope/internal/sui"
	"lendingScope/internal/txn"
)

const (
	testPackage = "0x1"
	testPool    = "0xaa"
	testUser    = "0xbeef"
)

type fakeLedger struct {
	object     *sui.ObjectResponse
	objectErr  error
	balance    *sui.Balance
	balanceErr error
	inspect    *sui.DevInspectResults
	inspectErr error

	mu          sync.Mutex
	inspectKind []byte
}

func (f *fakeLedger) GetObject(ctx context.Context, id string, opts sui.ObjectDataOptions) (*sui.ObjectResponse, error) {
	return f.object, f.objectErr
}

func (f *fakeLedger) GetBalance(ctx context.Context, owner, coinType string) (*sui.Balance, error) {
	return f.balance, f.balanceErr
}

func (f *fakeLedger) DevInspectTransactionBlock(ctx context.Context, sender string, txKind []byte) (*sui.DevInspectResults, error) {
	f.mu.Lock()
	f.inspectKind = txKind
	f.mu.Unlock()
	return f.inspect, f.inspectErr
}

func poolObject(deposits string) *sui.ObjectResponse {
	fields := map[string]json.RawMessage{}
	if deposits != "" {
		fields[DepositsField] = json.RawMessage(`"` + deposits + `"`)
	}
	return &sui.ObjectResponse{Data: &sui.ObjectData{
		ObjectID: testPool,
		Version:  10,
		Owner:    &sui.ObjectOwner{Shared: &sui.SharedOwner{InitialSharedVersion: 5}},
		Content:  &sui.ObjectContent{DataType: sui.DataTypeMoveObject, Fields: fields},
	}}
}

func debtResult(v uint64) *sui.DevInspectResults {
	return &sui.DevInspectResults{
		Effects: &sui.TransactionEffects{Status: sui.ExecutionStatus{Status: sui.StatusSuccess}},
		Results: []sui.ExecutionResult{{ReturnValues: []sui.ReturnValue{{Bytes: bcs.U64(v), Type: "u64"}}}},
	}
}

func healthyLedger() *fakeLedger {
	return &fakeLedger{
		object:  poolObject("12345000000"),
		balance: &sui.Balance{CoinType: sui.NativeCoinType, TotalBalance: "2500000000"},
		inspect: debtResult(1_000_000_000),
	}
}

func TestRefreshHealthy(t *testing.T) {
	ledger := healthyLedger()
	reader := NewReader(ledger, testPackage, WithLogger(zap.NewNop()))

	report := reader.Inspect(context.Background(), testUser, testPool)
	assert.Empty(t, report.Failures)
	assert.Equal(t, model.PoolSnapshot{
		PoolBalance: "12.3450",
		UserBalance: "2.5000",
		UserDebt:    "1.0000",
	}, report.Snapshot)

	want, err := txn.BuildGetDebt(testPackage, testPool, testUser)
	require.NoError(t, err)
	want.ResolveShared(sui.MustParseAddress(testPool), 5)
	wantKind, err := want.KindBytes()
	require.NoError(t, err)
	assert.Equal(t, wantKind, ledger.inspectKind)
}

func TestRefreshObjectFetchFails(t *testing.T) {
	ledger := healthyLedger()
	ledger.objectErr = errors.New("connection refused")

	var stages []Stage
	var mu sync.Mutex
	reader := NewReader(ledger, testPackage, WithFailureHook(func(stage Stage, err error) {
		mu.Lock()
		stages = append(stages, stage)
		mu.Unlock()
	}))

	snapshot := reader.Refresh(context.Background(), testUser, testPool)
	assert.Equal(t, model.ZeroSnapshot(), snapshot)
	assert.Equal(t, []Stage{StagePoolObject}, stages)
}

func TestRefreshBalanceFetchFails(t *testing.T) {
	ledger := healthyLedger()
	ledger.balanceErr = errors.New("timeout")

	report := NewReader(ledger, testPackage).Inspect(context.Background(), testUser, testPool)
	assert.Equal(t, model.ZeroSnapshot(), report.Snapshot)
	assert.Contains(t, report.Degraded(), string(StageUserBalance))
}

func TestRefreshDebtProbeIsolated(t *testing.T) {
	ledger := healthyLedger()
	ledger.inspectErr = errors.New("simulation failed")

	report := NewReader(ledger, testPackage).Inspect(context.Background(), testUser, testPool)
	assert.Equal(t, "12.3450", report.Snapshot.PoolBalance)
	assert.Equal(t, "2.5000", report.Snapshot.UserBalance)
	assert.Equal(t, "0", report.Snapshot.UserDebt)
	assert.Equal(t, []string{string(StageUserDebt)}, report.Degraded())
}

func TestRefreshDebtMalformedResponses(t *testing.T) {
	cases := map[string]*sui.DevInspectResults{
		"no results":     {Effects: &sui.TransactionEffects{Status: sui.ExecutionStatus{Status: sui.StatusSuccess}}},
		"short bytes":    {Results: []sui.ExecutionResult{{ReturnValues: []sui.ReturnValue{{Bytes: []byte{1, 2}, Type: "u64"}}}}},
		"execution fail": {Effects: &sui.TransactionEffects{Status: sui.ExecutionStatus{Status: "failure", Error: "MoveAbort"}}},
		"nil response":   nil,
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			ledger := healthyLedger()
			ledger.inspect = resp

			snapshot := NewReader(ledger, testPackage).Refresh(context.Background(), testUser, testPool)
			assert.Equal(t, "0", snapshot.UserDebt)
			assert.Equal(t, "12.3450", snapshot.PoolBalance)
			assert.Equal(t, "2.5000", snapshot.UserBalance)
		})
	}
}

func TestRefreshNonMoveObject(t *testing.T) {
	ledger := healthyLedger()
	ledger.object = &sui.ObjectResponse{Error: &sui.ObjectError{Code: "notExists", ObjectID: testPool}}

	report := NewReader(ledger, testPackage).Inspect(context.Background(), testUser, testPool)
	assert.Equal(t, "0", report.Snapshot.PoolBalance)
	assert.Equal(t, "2.5000", report.Snapshot.UserBalance)
	assert.Equal(t, "0", report.Snapshot.UserDebt)
	assert.Equal(t, []string{string(StageUserDebt)}, report.Degraded())
}

func TestRefreshMissingDepositsField(t *testing.T) {
	ledger := healthyLedger()
	ledger.object = poolObject("")

	snapshot := NewReader(ledger, testPackage).Refresh(context.Background(), testUser, testPool)
	assert.Equal(t, "0.0000", snapshot.PoolBalance)
	assert.Equal(t, "1.0000", snapshot.UserDebt)
}
