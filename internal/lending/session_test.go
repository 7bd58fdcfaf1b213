package lending

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingScope/internal/model"
	"lendingScope/internal/sui"
	"lendingScope/internal/txn"
)

const (
	testPackage = "0x1"
	testPool    = "0xaa"
	testUser    = "0xbeef"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	requests []*txn.Request
	digest   string
	err      error
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeSubmitter) SignAndExecute(ctx context.Context, req *txn.Request) (Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{Digest: f.digest}, nil
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	snap  model.PoolSnapshot
}

func (f *fakeRefresher) Refresh(ctx context.Context, user, poolID string) model.PoolSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snap
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSession(sub Submitter, ref Refresher) *Session {
	return NewSession(SessionConfig{
		PackageID:    testPackage,
		PoolID:       testPool,
		ExplorerHost: ExplorerHost(NetworkTestnet),
	}, sub, ref, nil)
}

func TestSessionRequiresConnection(t *testing.T) {
	s := newTestSession(&fakeSubmitter{}, &fakeRefresher{})

	outcome := s.Execute(context.Background(), txn.OpDeposit, "1")
	assert.Equal(t, StatusValidationError, outcome.Status)
	assert.ErrorIs(t, outcome.Err, ErrNotConnected)
	assert.NotEmpty(t, outcome.RequestID)

	published := <-s.Outcomes()
	assert.Equal(t, outcome.RequestID, published.RequestID)
}

func TestSessionRejectsInvalidAmount(t *testing.T) {
	sub := &fakeSubmitter{}
	s := newTestSession(sub, &fakeRefresher{})
	s.Connect(context.Background(), testUser)

	for _, amount := range []string{"", "0", "-1", "abc"} {
		outcome := s.Execute(context.Background(), txn.OpBorrow, amount)
		assert.ErrorIs(t, outcome.Err, ErrInvalidAmount, amount)
	}
	assert.Empty(t, sub.requests)
}

func TestSessionSuccessFlow(t *testing.T) {
	sub := &fakeSubmitter{digest: "Dg1"}
	ref := &fakeRefresher{snap: model.PoolSnapshot{PoolBalance: "5.0000", UserBalance: "1.0000", UserDebt: "0.0000"}}
	s := newTestSession(sub, ref)

	snap := s.Connect(context.Background(), testUser)
	assert.Equal(t, ref.snap, snap)
	assert.Equal(t, 1, ref.count())

	s.SetAmount(txn.OpDeposit, "2.5")
	outcome := s.Submit(context.Background(), txn.OpDeposit)

	require.True(t, outcome.Success(), outcome.Message)
	assert.Equal(t, "Dg1", outcome.Digest)
	assert.Equal(t, "https://testnet.suivision.xyz/txblock/Dg1", outcome.ExplorerURL)
	assert.Equal(t, 2, ref.count())

	form := s.Form()
	assert.Equal(t, "Dg1", form.TxDigest)
	assert.Equal(t, "", form.DepositAmount)
	assert.False(t, form.Loading)

	require.Len(t, sub.requests, 1)
	assert.Equal(t, []string{sui.MustParseAddress(testPackage).Hex() + "::defi::deposit"}, sub.requests[0].MoveCallTargets())
}

func TestSessionSubmissionFailure(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("insufficient gas")}
	ref := &fakeRefresher{}
	s := newTestSession(sub, ref)
	s.Connect(context.Background(), testUser)

	s.SetAmount(txn.OpRepay, "1")
	outcome := s.Submit(context.Background(), txn.OpRepay)

	assert.Equal(t, StatusSubmissionError, outcome.Status)
	assert.Equal(t, "Repay failed: insufficient gas", outcome.Message)
	assert.Equal(t, 1, ref.count())
	assert.Equal(t, "1", s.Form().RepayAmount)
	assert.Len(t, sub.requests, 1)
}

func TestSessionBuildFailureSkipsSigner(t *testing.T) {
	sub := &fakeSubmitter{digest: "never"}
	ref := &fakeRefresher{}
	s := newTestSession(sub, ref)
	s.Connect(context.Background(), testUser)

	outcome := s.Execute(context.Background(), txn.OpDeposit, "1e400")

	assert.Equal(t, StatusBuildError, outcome.Status)
	assert.Contains(t, outcome.Message, "Failed to deposit: ")
	assert.Error(t, outcome.Err)
	var subErr *SubmissionError
	assert.False(t, errors.As(outcome.Err, &subErr))
	assert.Empty(t, sub.requests)
	assert.Equal(t, 1, ref.count())
	assert.False(t, s.Form().Loading)
}

func TestSessionRejectsDuplicateSubmission(t *testing.T) {
	sub := &fakeSubmitter{digest: "Dg2", block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := newTestSession(sub, &fakeRefresher{})
	s.Connect(context.Background(), testUser)

	done := make(chan Outcome, 1)
	go func() {
		done <- s.Execute(context.Background(), txn.OpBorrow, "1")
	}()
	<-sub.started
	assert.True(t, s.Form().Loading)

	second := s.Execute(context.Background(), txn.OpBorrow, "1")
	assert.ErrorIs(t, second.Err, ErrInFlight)

	close(sub.block)
	first := <-done
	assert.True(t, first.Success())
	assert.False(t, s.Form().Loading)

	third := s.Execute(context.Background(), txn.OpBorrow, "1")
	assert.True(t, third.Success())
}

func TestSessionDisconnect(t *testing.T) {
	ref := &fakeRefresher{snap: model.PoolSnapshot{PoolBalance: "1.0000", UserBalance: "1.0000", UserDebt: "1.0000"}}
	s := newTestSession(&fakeSubmitter{}, ref)
	s.Connect(context.Background(), testUser)

	snap := s.Connect(context.Background(), "")
	assert.Equal(t, model.ZeroSnapshot(), snap)
	assert.Equal(t, model.ZeroSnapshot(), s.Snapshot())
	assert.Equal(t, "", s.Account())
}

type fakeSigner struct {
	kind []byte
	err  error
}

func (f *fakeSigner) Sign(ctx context.Context, txKind []byte) ([]byte, []string, error) {
	f.kind = txKind
	if f.err != nil {
		return nil, nil, f.err
	}
	return []byte("signed"), []string{"sig"}, nil
}

type fakeExecutor struct {
	version uint64
	execErr error
	txBytes []byte
}

func (f *fakeExecutor) GetObject(ctx context.Context, id string, opts sui.ObjectDataOptions) (*sui.ObjectResponse, error) {
	return &sui.ObjectResponse{Data: &sui.ObjectData{
		ObjectID: id,
		Owner:    &sui.ObjectOwner{Shared: &sui.SharedOwner{InitialSharedVersion: sui.U64(f.version)}},
	}}, nil
}

func (f *fakeExecutor) ExecuteTransactionBlock(ctx context.Context, txBytes []byte, signatures []string) (*sui.TransactionResponse, error) {
	f.txBytes = txBytes
	if f.execErr != nil {
		return nil, f.execErr
	}
	return &sui.TransactionResponse{Digest: "ExecDigest"}, nil
}

func TestLedgerSubmitter(t *testing.T) {
	signer := &fakeSigner{}
	node := &fakeExecutor{version: 4}
	sub := NewLedgerSubmitter(signer, node)

	req, err := txn.BuildDeposit(txn.TransactionParams{Amount: "1", PackageID: testPackage, PoolID: testPool})
	require.NoError(t, err)

	res, err := sub.SignAndExecute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ExecDigest", res.Digest)
	assert.Equal(t, []byte("signed"), node.txBytes)

	want, err := req.KindBytes()
	require.NoError(t, err)
	assert.Equal(t, want, signer.kind)
}

func TestLedgerSubmitterErrors(t *testing.T) {
	req, err := txn.BuildBorrow(txn.TransactionParams{Amount: "1", PackageID: testPackage, PoolID: testPool})
	require.NoError(t, err)

	_, err = NewLedgerSubmitter(&fakeSigner{err: errors.New("rejected")}, &fakeExecutor{version: 1}).SignAndExecute(context.Background(), req)
	assert.ErrorContains(t, err, "rejected")

	_, err = NewLedgerSubmitter(&fakeSigner{}, &fakeExecutor{version: 1, execErr: errors.New("MoveAbort")}).SignAndExecute(context.Background(), req)
	assert.ErrorContains(t, err, "MoveAbort")
}
