package sui

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// RequestType values for sui_executeTransactionBlock.
const (
	WaitForEffectsCert    = "WaitForEffectsCert"
	WaitForLocalExecution = "WaitForLocalExecution"
)

// Client wraps a JSON-RPC connection to a Sui full node.
type Client struct {
	rpcClient   *rpc.Client
	requestType string
}

// NewClient dials the node at rpcURL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return NewClientFromRPC(rpcClient), nil
}

// NewClientFromRPC wraps an existing RPC connection.
func NewClientFromRPC(rpcClient *rpc.Client) *Client {
	return &Client{rpcClient: rpcClient, requestType: WaitForLocalExecution}
}

// SetRequestType chooses how long sui_executeTransactionBlock waits:
// WaitForLocalExecution (default) or WaitForEffectsCert.
func (c *Client) SetRequestType(requestType string) error {
	switch requestType {
	case "":
		c.requestType = WaitForLocalExecution
	case WaitForLocalExecution, WaitForEffectsCert:
		c.requestType = requestType
	default:
		return fmt.Errorf("unknown request type %q", requestType)
	}
	return nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetObject fetches an object by id. A missing object is reported through
// ObjectResponse.Error, not as a call error.
func (c *Client) GetObject(ctx context.Context, id string, opts ObjectDataOptions) (*ObjectResponse, error) {
	var resp ObjectResponse
	if err := c.rpcClient.CallContext(ctx, &resp, "sui_getObject", id, opts); err != nil {
		return nil, fmt.Errorf("sui_getObject %s: %w", id, err)
	}
	return &resp, nil
}

// GetBalance returns the owner's total balance of coinType.
func (c *Client) GetBalance(ctx context.Context, owner, coinType string) (*Balance, error) {
	var resp Balance
	if err := c.rpcClient.CallContext(ctx, &resp, "suix_getBalance", owner, coinType); err != nil {
		return nil, fmt.Errorf("suix_getBalance %s: %w", owner, err)
	}
	return &resp, nil
}

// DevInspectTransactionBlock runs a BCS-encoded TransactionKind against
// current state without committing it.
func (c *Client) DevInspectTransactionBlock(ctx context.Context, sender string, txKind []byte) (*DevInspectResults, error) {
	var resp DevInspectResults
	encoded := base64.StdEncoding.EncodeToString(txKind)
	if err := c.rpcClient.CallContext(ctx, &resp, "sui_devInspectTransactionBlock", sender, encoded); err != nil {
		return nil, fmt.Errorf("sui_devInspectTransactionBlock: %w", err)
	}
	return &resp, nil
}

// ExecuteTransactionBlock submits signed TransactionData bytes.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytes []byte, signatures []string) (*TransactionResponse, error) {
	var resp TransactionResponse
	encoded := base64.StdEncoding.EncodeToString(txBytes)
	opts := TransactionResponseOptions{ShowEffects: true}
	if err := c.rpcClient.CallContext(ctx, &resp, "sui_executeTransactionBlock", encoded, signatures, opts, c.requestType); err != nil {
		return nil, fmt.Errorf("sui_executeTransactionBlock: %w", err)
	}
	if resp.Effects != nil && resp.Effects.Status.Status != StatusSuccess {
		return &resp, fmt.Errorf("transaction %s %s: %s", resp.Digest, resp.Effects.Status.Status, resp.Effects.Status.Error)
	}
	return &resp, nil
}
