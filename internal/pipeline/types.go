// Package pipeline implements the compilation pipeline orchestrator of
// spec §4.1: a parallel per-contract dispatcher that drives each
// contract through two subprocess-isolated code-segment compilations
// (runtime, then deploy), with a bounded multi-pass recovery loop
// reacting to stack-too-deep signals from the back-end.
package pipeline

import (
	"encoding/json"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/library"
	"github.com/r3e-network/solx-go/internal/optimizer"
	"github.com/r3e-network/solx-go/internal/stdjson"
)

// ContractName is the (full_path, optional name) pair spec §3 keys
// every contract, output selector, and immutables map by.
type ContractName struct {
	Path string
	Name string
}

// FullPath is path for name-less sources, otherwise "path:name", the
// exact key output-selection checks use (spec §3 "Contract name").
func (c ContractName) FullPath() string {
	if c.Name == "" {
		return c.Path
	}
	return c.Path + ":" + c.Name
}

// Contract is one compile unit: its already-lowered IR for each
// segment it owns, plus the front-end-produced facts this driver
// passes through without reinterpreting (spec §3 "Project... carrying
// IR, metadata JSON, ABI, method identifiers, user/dev docs, storage
// layouts"). A Yul deploy contract's Runtime module is non-nil; an
// LLVM-IR or legacy-assembly deploy contract may likewise carry both.
type Contract struct {
	Name ContractName

	Deploy  *ir.Module // nil if this contract has no deploy segment (a pure library, e.g.)
	Runtime *ir.Module

	MetadataJSON  json.RawMessage
	ABI           json.RawMessage
	UserDoc       json.RawMessage
	DevDoc        json.RawMessage
	StorageLayout json.RawMessage
}

// Project is the orchestrator's whole input: every contract to build
// plus the library table linking consults (spec §3 "Project").
type Project struct {
	Language    stdjson.Language
	FrontEndVersion string // "solc" version vector entry; empty if unknown
	Contracts   map[string]*Contract // keyed by ContractName.FullPath()
	Libraries   library.Table
}

// Options bundles compile_project's remaining parameters (spec §4.1
// "compile_project(project, output_selection, evm_version,
// metadata_hash_kind, append_cbor, optimizer_settings, llvm_options,
// debug) → Build").
type Options struct {
	OutputSelection  stdjson.OutputSelection
	EVMVersion       catalog.EVMVersion
	MetadataHashKind catalog.MetadataHashKind
	AppendCBOR       bool
	Optimizer        optimizer.Settings
	LLVMOptions      []string
	Debug            bool

	// Threads bounds concurrent contract tasks; 0 means
	// runtime.GOMAXPROCS(0) (spec §4.1, "--threads" override per §6).
	Threads int
}

// SegmentArtifact is one segment's build output (spec §3 "Build
// artifact per segment").
type SegmentArtifact struct {
	Segment      catalog.CodeSegment
	Bytecode     []byte
	Immutables   map[string][]int
	SizeFallback bool
	// LibraryRefs lists the library names this segment's Bytecode
	// embeds unresolved linker markers for; metadata.Link consults it
	// to resolve or report each one (spec §4.4).
	LibraryRefs []string
	Timings     []TimingSample
}

// ContractArtifact bundles both segments' outputs for one contract,
// plus whatever front-end facts the emitter needs (internal/jsonemit
// projects this into stdjson.Contract).
type ContractArtifact struct {
	Name    ContractName
	Runtime *SegmentArtifact
	Deploy  *SegmentArtifact

	MetadataJSON  json.RawMessage
	ABI           json.RawMessage
	UserDoc       json.RawMessage
	DevDoc        json.RawMessage
	StorageLayout json.RawMessage

	Unresolved []string // unresolved library placeholders from linking (spec §4.4, invariant (d))
}

// Build is compile_project's return value: one artifact per contract,
// plus any per-contract fatal diagnostics that stopped its build
// (spec §3 "Build artifact", §7 "Diagnostics").
type Build struct {
	Contracts []*ContractArtifact
	Errors    map[string]error // ContractName.FullPath() -> fatal error, for contracts that didn't finish
}
