package metadata

import (
	"bytes"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/library"
)

func TestBuildTrailerDisabled(t *testing.T) {
	trailer, err := BuildTrailer(Settings{AppendCBOR: false}, []byte(`{}`))
	if err != nil {
		t.Fatalf("BuildTrailer: %v", err)
	}
	if trailer != nil {
		t.Errorf("expected nil trailer when AppendCBOR is false, got %v", trailer)
	}
}

func TestBuildTrailerEndsInLengthSuffix(t *testing.T) {
	settings := Settings{
		AppendCBOR: true,
		HashKind:   catalog.MetadataHashIPFS,
		Version:    VersionInfo{ExecutableName: "solx", ExecutableVersion: "1.0.0"},
	}
	trailer, err := BuildTrailer(settings, []byte(`{"language":"Solidity"}`))
	if err != nil {
		t.Fatalf("BuildTrailer: %v", err)
	}
	if len(trailer) < trailerLengthSuffixSize {
		t.Fatalf("trailer too short: %d bytes", len(trailer))
	}
	cborLen := int(trailer[len(trailer)-2])<<8 | int(trailer[len(trailer)-1])
	if cborLen != len(trailer)-trailerLengthSuffixSize {
		t.Errorf("length suffix %d does not match CBOR body length %d", cborLen, len(trailer)-trailerLengthSuffixSize)
	}
}

func TestBuildTrailerNoneHashKindOmitsHashEntry(t *testing.T) {
	settings := Settings{
		AppendCBOR: true,
		HashKind:   catalog.MetadataHashNone,
		Version:    VersionInfo{ExecutableName: "solx", ExecutableVersion: "1.0.0"},
	}
	trailer, err := BuildTrailer(settings, []byte(`{}`))
	if err != nil {
		t.Fatalf("BuildTrailer: %v", err)
	}
	if len(trailer) == 0 {
		t.Fatal("expected a non-empty trailer even without a hash entry")
	}
}

func TestAttachToRuntimeAppendsExactlyOnce(t *testing.T) {
	runtime := []byte{0x60, 0x00, 0x00}
	trailer := []byte{0xde, 0xad, 0x00, 0x02}
	out := AttachToRuntime(runtime, trailer)
	if !bytes.Equal(out, append(append([]byte{}, runtime...), trailer...)) {
		t.Errorf("unexpected attach result: %x", out)
	}
}

func TestAttachToRuntimeNoopWhenTrailerEmpty(t *testing.T) {
	runtime := []byte{0x60, 0x00, 0x00}
	out := AttachToRuntime(runtime, nil)
	if !bytes.Equal(out, runtime) {
		t.Errorf("expected unchanged bytecode, got %x", out)
	}
}

func TestLinkResolvesPlaceholder(t *testing.T) {
	table, err := library.Parse([]string{"a.sol:L=0x0000000000000000000000000000000000000042"})
	if err != nil {
		t.Fatalf("library.Parse: %v", err)
	}
	marker := library.PlaceholderBytes("a.sol", "L")

	code := append(append([]byte{0x60, 0x00}, marker[:]...), 0x00)
	result := Link(code, "a.sol", []string{"L"}, table)

	if len(result.Unresolved) != 0 {
		t.Errorf("expected no unresolved placeholders, got %v", result.Unresolved)
	}
	if bytes.Contains(result.Bytecode, marker[:]) {
		t.Error("expected the marker to be substituted out of the bytecode")
	}
	if len(result.Bytecode) != len(code) {
		t.Errorf("expected substitution to preserve length (no offset shift): got %d, want %d", len(result.Bytecode), len(code))
	}
}

func TestLinkReportsUnresolvedPlaceholder(t *testing.T) {
	emptyTable := library.Table{}
	marker := library.PlaceholderBytes("missing.sol", "Lib")
	code := append([]byte{0x60}, marker[:]...)

	result := Link(code, "missing.sol", []string{"Lib"}, emptyTable)
	if len(result.Unresolved) != 1 {
		t.Fatalf("expected exactly one unresolved placeholder, got %v", result.Unresolved)
	}
	want := library.Placeholder("missing.sol", "Lib")
	if result.Unresolved[0] != want {
		t.Errorf("unresolved placeholder mismatch: got %q, want %q", result.Unresolved[0], want)
	}
	if !bytes.Contains(result.Bytecode, marker[:]) {
		t.Error("expected unresolved marker bytes to remain untouched")
	}
}

func TestLinkWithNoRefsIsIdentity(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01}
	result := Link(code, "a.sol", nil, library.Table{})
	if !bytes.Equal(result.Bytecode, code) {
		t.Errorf("expected identity for a segment with no library references, got %x", result.Bytecode)
	}
	if len(result.Unresolved) != 0 {
		t.Errorf("expected no unresolved placeholders, got %v", result.Unresolved)
	}
}
