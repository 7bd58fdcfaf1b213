package bcs

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidLength is returned when a fixed-width value has the wrong size.
var ErrInvalidLength = errors.New("bcs: invalid length")

// DecodeU64LE decodes an 8-byte little-endian unsigned integer, the BCS
// encoding of a Move u64 return value.
func DecodeU64LE(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: u64 needs 8 bytes, got %d", ErrInvalidLength, len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}
