package sui

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"lendingScope/internal/bcs"
)

// Address is a 32-byte Sui account address or object id.
type Address [bcs.AddressLength]byte

// ParseAddress accepts short ("0x2") and full-length hex forms.
func ParseAddress(input string) (Address, error) {
	input = strings.TrimSpace(input)
	digits := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	if digits == "" {
		return Address{}, fmt.Errorf("invalid address: %q", input)
	}
	if len(digits) > 2*bcs.AddressLength {
		return Address{}, fmt.Errorf("invalid address length: %s", input)
	}
	for _, r := range digits {
		if !isHexDigit(r) {
			return Address{}, fmt.Errorf("invalid address: %s", input)
		}
	}

	var addr Address
	copy(addr[:], common.LeftPadBytes(common.FromHex(digits), bcs.AddressLength))
	return addr, nil
}

// MustParseAddress is ParseAddress for constants.
func MustParseAddress(input string) Address {
	addr, err := ParseAddress(input)
	if err != nil {
		panic(err)
	}
	return addr
}

// Hex returns the canonical 0x-prefixed, 64-digit form.
func (a Address) Hex() string {
	return hexutil.Encode(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
