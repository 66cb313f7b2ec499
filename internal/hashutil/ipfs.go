package hashutil

import (
	"crypto/sha256"

	"github.com/multiformats/go-multihash"
)

// IPFSHash computes the multihash-wrapped sha2-256 digest of data, the
// form used by the CBOR metadata trailer's "ipfs" hash entry
// (spec §4.4, §6): a CIDv0-style multihash, not a full CID — the
// trailer carries the raw multihash bytes, and tooling that wants a
// CID prefixes it with the "Qm" base58btc encoding convention.
func IPFSHash(data []byte) ([]byte, error) {
	sum := sha256.Sum256(data)
	return multihash.Encode(sum[:], multihash.SHA2_256)
}
