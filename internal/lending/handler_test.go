package lending

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lendingScope/internal/txn"
)

func TestOnSuccessSetsDigestAndRefreshes(t *testing.T) {
	h := NewResultHandler(ExplorerHost(NetworkTestnet), zap.NewNop())

	var digest string
	refreshed := 0
	outcome := h.OnSuccess(context.Background(), Result{Digest: "AbC123"}, txn.OpDeposit,
		func(d string) { digest = d },
		func(ctx context.Context) error {
			refreshed++
			return nil
		},
	)

	assert.Equal(t, "AbC123", digest)
	assert.Equal(t, 1, refreshed)
	assert.True(t, outcome.Success())
	assert.Equal(t, "Deposit successful! Tx: AbC123", outcome.Message)
	assert.Equal(t, "https://testnet.suivision.xyz/txblock/AbC123", outcome.ExplorerURL)
}

func TestOnSuccessRefreshErrorDoesNotFail(t *testing.T) {
	h := NewResultHandler("suivision.xyz", nil)

	outcome := h.OnSuccess(context.Background(), Result{Digest: "d"}, txn.OpRepay, nil,
		func(ctx context.Context) error { return errors.New("node lagging") })
	assert.True(t, outcome.Success())
	assert.Equal(t, "Repay successful! Tx: d", outcome.Message)
}

func TestOnError(t *testing.T) {
	h := NewResultHandler("", nil)

	cause := errors.New("Rejected from user")
	outcome := h.OnError(cause, txn.OpBorrow)

	assert.Equal(t, StatusSubmissionError, outcome.Status)
	assert.Equal(t, "Borrow failed: Rejected from user", outcome.Message)

	var subErr *SubmissionError
	require.ErrorAs(t, outcome.Err, &subErr)
	assert.Equal(t, txn.OpBorrow, subErr.Operation)
	assert.ErrorIs(t, outcome.Err, cause)
}

func TestExplorerURL(t *testing.T) {
	assert.Equal(t, "https://suivision.xyz/txblock/xyz", ExplorerURL(ExplorerHost(NetworkMainnet), "xyz"))
	assert.Equal(t, "testnet.suivision.xyz", ExplorerHost(""))
	assert.Equal(t, "devnet.suivision.xyz", ExplorerHost(NetworkDevnet))
}

func TestFormStateTransitions(t *testing.T) {
	base := FormState{}
	next := base.WithAmount(txn.OpDeposit, "1.5").WithAmount(txn.OpBorrow, "2").WithLoading(true).WithDigest("d1")

	assert.Equal(t, FormState{}, base)
	assert.Equal(t, "1.5", next.Amount(txn.OpDeposit))
	assert.Equal(t, "2", next.Amount(txn.OpBorrow))
	assert.Equal(t, "", next.Amount(txn.OpRepay))
	assert.True(t, next.Loading)
	assert.Equal(t, "d1", next.TxDigest)

	cleared := next.ClearAmount(txn.OpDeposit)
	assert.Equal(t, "", cleared.DepositAmount)
	assert.Equal(t, "1.5", next.DepositAmount)
}

func TestGuard(t *testing.T) {
	g := NewGuard()

	release, err := g.Acquire(txn.OpDeposit)
	require.NoError(t, err)
	assert.True(t, g.Busy())

	_, err = g.Acquire(txn.OpDeposit)
	assert.ErrorIs(t, err, ErrInFlight)

	releaseBorrow, err := g.Acquire(txn.OpBorrow)
	require.NoError(t, err)
	releaseBorrow()

	release()
	release()
	assert.False(t, g.Busy())

	_, err = g.Acquire(txn.OpDeposit)
	assert.NoError(t, err)
}
