package hashutil

import (
	"encoding/hex"
	"testing"
)

func TestKeccak256Properties(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "short ascii", input: "abc"},
		{name: "library placeholder seed", input: "contracts/Token.sol:SafeMath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest := Keccak256([]byte(tt.input))
			if len(digest) != 32 {
				t.Fatalf("Keccak256(%q) produced %d bytes, want 32", tt.input, len(digest))
			}
			hexDigest := Keccak256Hex([]byte(tt.input))
			if len(hexDigest) != 64 {
				t.Fatalf("Keccak256Hex(%q) produced %d hex chars, want 64", tt.input, len(hexDigest))
			}
			if hexDigest != hex.EncodeToString(digest) {
				t.Fatalf("Keccak256Hex and hex.EncodeToString(Keccak256) disagree for %q", tt.input)
			}
		})
	}

	if Keccak256Hex([]byte("a")) == Keccak256Hex([]byte("b")) {
		t.Fatal("distinct inputs hashed to the same digest")
	}
}

func TestKeccak256Deterministic(t *testing.T) {
	a := Keccak256([]byte("path/to/contract.sol:Library"))
	b := Keccak256([]byte("path/to/contract.sol:Library"))
	if hex.EncodeToString(a) != hex.EncodeToString(b) {
		t.Fatal("Keccak256 is not deterministic for identical input")
	}
}

func TestIPFSHashLength(t *testing.T) {
	sum, err := IPFSHash([]byte("contract metadata json"))
	if err != nil {
		t.Fatalf("IPFSHash returned error: %v", err)
	}
	if len(sum) == 0 {
		t.Fatal("IPFSHash returned empty digest")
	}
}

func TestCanonicalCBORRoundTrip(t *testing.T) {
	type payload struct {
		B int               `cbor:"b"`
		A string            `cbor:"a"`
		M map[string]string `cbor:"m"`
	}
	in := payload{B: 7, A: "hello", M: map[string]string{"z": "1", "a": "2"}}

	encoded, err := MarshalCanonicalCBOR(in)
	if err != nil {
		t.Fatalf("MarshalCanonicalCBOR: %v", err)
	}

	var out payload
	if err := UnmarshalCBOR(encoded, &out); err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}
	if out.A != in.A || out.B != in.B || len(out.M) != len(in.M) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}

	encodedAgain, err := MarshalCanonicalCBOR(in)
	if err != nil {
		t.Fatalf("MarshalCanonicalCBOR (second pass): %v", err)
	}
	if hex.EncodeToString(encoded) != hex.EncodeToString(encodedAgain) {
		t.Fatal("canonical CBOR encoding is not deterministic across runs")
	}
}
