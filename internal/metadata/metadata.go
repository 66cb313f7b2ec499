// Package metadata builds the CBOR trailer appended to runtime
// bytecode (spec §4.4 "Metadata & Artifact Assembly") and performs
// library-address linking against the placeholder markers
// internal/library derives.
package metadata

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/hashutil"
	"github.com/r3e-network/solx-go/internal/library"
)

// trailerLengthSuffixSize is the 2-byte big-endian length field every
// deployed contract's trailer ends in (spec §6 "Parsers of deployed
// bytecode may discover the trailer by reading the last two bytes").
const trailerLengthSuffixSize = 2

// maxTrailerLength is the largest value the 2-byte length suffix can
// represent.
const maxTrailerLength = 0xffff

// VersionInfo names this driver and, when known, the front-end it
// cooperated with (spec §4.4 "version vector").
type VersionInfo struct {
	ExecutableName    string
	ExecutableVersion string
	FrontEndVersion   string // "solc" entry; empty if unknown
	FrontEndLLVMRev   string // "llvm" entry; empty if unknown
}

// Settings controls trailer construction for one runtime artifact.
type Settings struct {
	AppendCBOR bool
	HashKind   catalog.MetadataHashKind
	Version    VersionInfo
}

// trailer is the canonical CBOR map shape spec §4.4 describes: an
// optional hash entry plus a version vector. Field order here is
// irrelevant to the wire bytes — hashutil's canonical encoder sorts
// map keys regardless — but keeping the struct ordered the same way
// the prose lists them keeps the mapping easy to eyeball.
type trailer struct {
	IPFS    []byte            `cbor:"ipfs,omitempty"`
	Keccak  []byte            `cbor:"keccak256,omitempty"`
	Version map[string]string `cbor:"version"`
}

// BuildTrailer constructs the CBOR trailer for one runtime artifact's
// metadata JSON (the standard-JSON-shaped description of the
// compilation spec §4.4 says the hash is computed over), returning
// the encoded bytes. Returns (nil, nil) when metadata appending is
// disabled (spec "Built unless the user disables metadata appending").
func BuildTrailer(settings Settings, metadataJSON []byte) ([]byte, error) {
	if !settings.AppendCBOR {
		return nil, nil
	}

	t := trailer{Version: versionVector(settings.Version)}

	switch settings.HashKind {
	case catalog.MetadataHashNone, "":
		// no hash entry
	case catalog.MetadataHashIPFS:
		digest, err := hashutil.IPFSHash(metadataJSON)
		if err != nil {
			return nil, fmt.Errorf("metadata: computing IPFS hash: %w", err)
		}
		t.IPFS = digest
	case catalog.MetadataHashKeccak:
		t.Keccak = hashutil.Keccak256(metadataJSON)
	default:
		return nil, fmt.Errorf("metadata: unsupported hash kind %q", settings.HashKind)
	}

	body, err := hashutil.MarshalCanonicalCBOR(t)
	if err != nil {
		return nil, fmt.Errorf("metadata: encoding trailer: %w", err)
	}
	if len(body) > maxTrailerLength {
		return nil, fmt.Errorf("metadata: trailer length %d exceeds the 2-byte length suffix's range", len(body))
	}

	out := make([]byte, 0, len(body)+trailerLengthSuffixSize)
	out = append(out, body...)
	var lenSuffix [trailerLengthSuffixSize]byte
	binary.BigEndian.PutUint16(lenSuffix[:], uint16(len(body)))
	out = append(out, lenSuffix[:]...)
	return out, nil
}

func versionVector(v VersionInfo) map[string]string {
	vec := map[string]string{v.ExecutableName: v.ExecutableVersion}
	if v.FrontEndVersion != "" {
		vec["solc"] = v.FrontEndVersion
	}
	if v.FrontEndLLVMRev != "" {
		vec["llvm"] = v.FrontEndLLVMRev
	}
	return vec
}

// AttachToRuntime appends trailer to runtime bytecode exactly once.
// Callers must never call this for a deploy artifact (spec invariant
// (c): "The CBOR trailer is attached only to runtime bytecode, never
// deploy").
func AttachToRuntime(runtimeBytecode, trailer []byte) []byte {
	if len(trailer) == 0 {
		return runtimeBytecode
	}
	out := make([]byte, 0, len(runtimeBytecode)+len(trailer))
	out = append(out, runtimeBytecode...)
	out = append(out, trailer...)
	return out
}

// LinkResult reports the outcome of substituting library placeholders
// into assembled bytecode.
type LinkResult struct {
	Bytecode   []byte
	Unresolved []string // placeholder strings with no table entry, sorted
}

// Link resolves every library reference nativebackend's code
// generator recorded for one segment (refs, spec §4.2's linkersymbol
// built-in) against table, scoped to contractPath the same way a
// --libraries specification is ("path:name"). Each reference's
// generated bytecode carries a 20-byte marker
// (internal/library.PlaceholderBytes) at the position its value
// occupies; a resolved reference has that marker replaced
// byte-for-byte with its address, so no jump-label offset computed
// earlier in codegen ever shifts. A reference absent from table is
// left untouched in the bytecode and reported, via its human-readable
// form (internal/library.Placeholder), in LinkResult.Unresolved — per
// spec §4.4: "Unresolved placeholders are reported but do not abort
// assembly of the other artifacts."
func Link(code []byte, contractPath string, refs []string, table library.Table) LinkResult {
	out := code
	var unresolved []string

	for _, name := range refs {
		marker := library.PlaceholderBytes(contractPath, name)
		if addr, ok := table[contractPath][name]; ok {
			out = bytesReplaceAll(out, marker[:], addr[:])
			continue
		}
		unresolved = append(unresolved, library.Placeholder(contractPath, name))
	}
	sort.Strings(unresolved)

	return LinkResult{Bytecode: out, Unresolved: unresolved}
}

func bytesReplaceAll(haystack, old, new []byte) []byte {
	return []byte(strings.ReplaceAll(string(haystack), string(old), string(new)))
}
