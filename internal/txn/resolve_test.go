package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingScope/internal/sui"
)

type objectGetter map[string]*sui.ObjectResponse

func (g objectGetter) GetObject(ctx context.Context, id string, opts sui.ObjectDataOptions) (*sui.ObjectResponse, error) {
	resp, ok := g[id]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return resp, nil
}

func TestResolveSharedObjects(t *testing.T) {
	poolHex := sui.MustParseAddress(testPool).Hex()
	getter := objectGetter{
		poolHex: {Data: &sui.ObjectData{
			ObjectID: poolHex,
			Owner:    &sui.ObjectOwner{Shared: &sui.SharedOwner{InitialSharedVersion: 19}},
		}},
	}

	req, err := BuildRepay(params("1"))
	require.NoError(t, err)
	require.NoError(t, ResolveSharedObjects(context.Background(), getter, req))

	for _, input := range req.Inputs {
		if input.Kind == InputSharedObject {
			assert.Equal(t, uint64(19), input.InitialSharedVersion)
		}
	}
	_, err = req.KindBytes()
	assert.NoError(t, err)
}

func TestResolveSharedObjectsErrors(t *testing.T) {
	poolHex := sui.MustParseAddress(testPool).Hex()

	owned := objectGetter{poolHex: {Data: &sui.ObjectData{ObjectID: poolHex, Owner: &sui.ObjectOwner{AddressOwner: "0x1"}}}}
	req, err := BuildDeposit(params("1"))
	require.NoError(t, err)
	assert.Error(t, ResolveSharedObjects(context.Background(), owned, req))

	missing := objectGetter{poolHex: {Error: &sui.ObjectError{Code: "notExists", ObjectID: poolHex}}}
	assert.Error(t, ResolveSharedObjects(context.Background(), missing, req))

	assert.Error(t, ResolveSharedObjects(context.Background(), objectGetter{}, req))
}
