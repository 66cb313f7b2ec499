// Package wire implements the subprocess protocol of spec §4.1/§6:
// "8-byte little-endian length, then a canonical CBOR-encoded Input
// record; response is a CBOR-encoded Result<Output, Error>." It is the
// boundary every `--recursive-process` child and its parent orchestrator
// (internal/pipeline) read and write on stdin/stdout.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/hashutil"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/optimizer"
)

// lengthPrefixSize is the byte width of the frame's length header.
const lengthPrefixSize = 8

// maxFrameBytes guards against a corrupt or hostile length prefix
// causing an unbounded allocation; no real compile unit approaches
// this size.
const maxFrameBytes = 1 << 30

// Input is one child's worth of work: compile a single contract's
// single code segment. The parent constructs one per (contract,
// segment) pair and, for the recovery loop, re-sends it with an
// updated OptimizerSettings (spec §4.1 "optimizer_settings
// monotonically weaken").
type Input struct {
	ContractPath     string              `cbor:"contract_path"`
	ContractName     string              `cbor:"contract_name"`
	Segment          catalog.CodeSegment `cbor:"segment"`
	EVMVersion       string              `cbor:"evm_version"`
	Optimizer        optimizer.Settings  `cbor:"optimizer"`
	MetadataHashKind string              `cbor:"metadata_hash_kind"`
	AppendCBOR       bool                `cbor:"append_cbor"`
	LLVMOptions      []string            `cbor:"llvm_options,omitempty"`

	// Module is the literal compile unit: the already-lowered IR for
	// this (contract, segment) pair. A subprocess child shares no
	// memory with the parent, so unlike the front-end parsing and
	// lowering stages (pure Go, cheap, never touch the LLVM embedding
	// and so never need crash isolation), the module itself has to be
	// serialized across the pipe rather than referenced by path —
	// ir.Module's fields are already flat strings and slices (no
	// Yul-AST interfaces survive past lowering), so it round-trips
	// through CBOR with no custom encoding.
	Module *ir.Module `cbor:"module"`

	// Immutables carries the runtime pass's discovered name→offsets
	// map into the deploy pass (spec §4.1 "Immutables propagation"),
	// passed by value across the subprocess boundary rather than
	// shared memory.
	Immutables map[string][]int `cbor:"immutables,omitempty"`
}

// Output is a successfully compiled segment's deliverable.
type Output struct {
	Bytecode   []byte           `cbor:"bytecode"`
	Immutables map[string][]int `cbor:"immutables,omitempty"`
	// LibraryRefs lists the library names this segment's bytecode
	// embeds unresolved linker markers for (internal/library.
	// PlaceholderBytes), so the parent's linking pass (run after
	// every subprocess has returned, spec §4.4) knows what to look
	// for without re-deriving it from the module.
	LibraryRefs []string       `cbor:"library_refs,omitempty"`
	Timings     []TimingSample `cbor:"timings,omitempty"`
}

// TimingSample is one named start/finish pair from the per-stage
// profiler (spec §4.1 "Profiler").
type TimingSample struct {
	Stage      string `cbor:"stage"`
	StartNanos int64  `cbor:"start_nanos"`
	EndNanos   int64  `cbor:"end_nanos"`
}

// ErrorKind tags which variant an Error carries, since CBOR has no
// native sum type and the parent must distinguish a recoverable
// StackTooDeep from a terminal diagnostic (spec §4.1 point 4 /
// §7 "Global LLVM context & signal handler").
type ErrorKind string

const (
	ErrorKindStackTooDeep ErrorKind = "stack_too_deep"
	ErrorKindDiagnostic   ErrorKind = "diagnostic"
)

// Error is the subprocess response's failure variant.
type Error struct {
	Kind ErrorKind `cbor:"kind"`

	// Populated when Kind == ErrorKindStackTooDeep.
	SpillAreaSize  uint64 `cbor:"spill_area_size,omitempty"`
	IsSizeFallback bool   `cbor:"is_size_fallback,omitempty"`

	// Populated when Kind == ErrorKindDiagnostic.
	Severity     string `cbor:"severity,omitempty"`
	Message      string `cbor:"message,omitempty"`
	SourceFile   string `cbor:"source_file,omitempty"`
	SourceLine   int    `cbor:"source_line,omitempty"`
	SourceColumn int    `cbor:"source_column,omitempty"`
	ErrorCode    string `cbor:"error_code,omitempty"`
}

// Result is the subprocess response envelope: exactly one of Output
// or Err is populated, mirroring spec §6's Result<Output, Error>.
type Result struct {
	Output *Output `cbor:"output,omitempty"`
	Err    *Error  `cbor:"err,omitempty"`
}

// WriteFrame writes an 8-byte little-endian length prefix followed by
// the canonical CBOR encoding of v (spec §4.1 "Subprocess protocol"
// steps 1 and 3). It shares internal/hashutil's canonical encoding
// mode with the metadata trailer, so both boundaries that spec §8
// requires to be byte-deterministic go through the same encoder.
func WriteFrame(w io.Writer, v any) error {
	body, err := hashutil.MarshalCanonicalCBOR(v)
	if err != nil {
		return fmt.Errorf("wire: encode frame: %w", err)
	}
	var header [lengthPrefixSize]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(body)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("wire: write length prefix: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("wire: write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed CBOR frame and decodes it into
// v (spec §4.1 "Subprocess protocol" step 2).
func ReadFrame(r io.Reader, v any) error {
	var header [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("wire: read length prefix: %w", err)
	}
	length := binary.LittleEndian.Uint64(header[:])
	if length > maxFrameBytes {
		return fmt.Errorf("wire: frame length %d exceeds maximum %d", length, maxFrameBytes)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("wire: read frame body: %w", err)
	}
	if err := hashutil.UnmarshalCBOR(body, v); err != nil {
		return fmt.Errorf("wire: decode frame: %w", err)
	}
	return nil
}

// WriteInput and ReadInput/ReadResult/WriteResult are typed
// convenience wrappers over WriteFrame/ReadFrame for the two
// directions of the protocol.

func WriteInput(w io.Writer, in Input) error {
	return WriteFrame(w, in)
}

func ReadInput(r io.Reader) (Input, error) {
	var in Input
	err := ReadFrame(r, &in)
	return in, err
}

func WriteResult(w io.Writer, res Result) error {
	return WriteFrame(w, res)
}

func ReadResult(r io.Reader) (Result, error) {
	var res Result
	err := ReadFrame(r, &res)
	return res, err
}
