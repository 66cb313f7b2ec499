// Package hashutil provides the keccak-256, IPFS multihash, and
// canonical CBOR primitives used by the linker-symbol derivation
// (internal/library) and the metadata trailer assembler
// (internal/metadata).
package hashutil

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the 32-byte Keccak-256 digest of data. Ethereum's
// Keccak-256 predates the NIST SHA-3 padding change, so this uses the
// legacy sha3.NewLegacyKeccak256 constructor rather than sha3.New256.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// Keccak256Hex returns the lowercase hex encoding of Keccak256(data),
// without a leading "0x".
func Keccak256Hex(data []byte) string {
	return hex.EncodeToString(Keccak256(data))
}
