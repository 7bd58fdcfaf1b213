package bcs

import "encoding/binary"

// AddressLength is the size of a Sui address or object id.
const AddressLength = 32

// U64 returns the BCS encoding of v, the pure argument bytes for a u64.
func U64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
