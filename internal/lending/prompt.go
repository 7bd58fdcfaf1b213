package lending

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"
)

// PromptSigner hands the unsigned transaction kind to an external wallet and
// reads back the signed TransactionData and its signature, one base64 line
// each.
type PromptSigner struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func NewPromptSigner(in io.Reader, out io.Writer) *PromptSigner {
	return &PromptSigner{in: bufio.NewReader(in), out: out}
}

func (p *PromptSigner) Sign(ctx context.Context, txKind []byte) ([]byte, []string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "tx kind (base64): %s\n", base64.StdEncoding.EncodeToString(txKind))
	fmt.Fprint(p.out, "signed tx bytes (base64): ")
	encoded, err := p.readLine(ctx)
	if err != nil {
		return nil, nil, err
	}
	txBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, fmt.Errorf("decode tx bytes: %w", err)
	}

	fmt.Fprint(p.out, "signature (base64): ")
	sig, err := p.readLine(ctx)
	if err != nil {
		return nil, nil, err
	}
	if sig == "" {
		return nil, nil, fmt.Errorf("signature is required")
	}
	return txBytes, []string{sig}, nil
}

func (p *PromptSigner) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read signer input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
