package hashutil

import "github.com/fxamacker/cbor/v2"

// canonicalEncMode is the CBOR encoding mode used both for the
// metadata trailer and for the subprocess wire format (internal/wire):
// canonical core determinism mode sorts map keys and uses the
// shortest-form integer/length encoding, which is what makes the
// trailer and the subprocess round-trip byte-deterministic (spec §8,
// "Determinism" and "Subprocess protocol round-trip").
var canonicalEncMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// MarshalCanonicalCBOR encodes v using the canonical core determinism
// mode (RFC 8949 §4.2.1): sorted map keys, shortest-form lengths.
func MarshalCanonicalCBOR(v interface{}) ([]byte, error) {
	return canonicalEncMode.Marshal(v)
}

// UnmarshalCBOR decodes into v using the default (permissive) decode
// mode; canonical encoding only constrains the encoder side.
func UnmarshalCBOR(data []byte, v interface{}) error {
	return cbor.Unmarshal(data, v)
}
