// Package catalog holds the enumerated values shared by every other
// package in this module: LLVM attributes, EVM address spaces, code
// segments, EVM versions, and metadata-hash kinds.
package catalog

import "fmt"

// CodeSegment identifies one of the two independently compiled halves
// of a contract.
type CodeSegment string

const (
	SegmentDeploy  CodeSegment = "deploy"
	SegmentRuntime CodeSegment = "runtime"
)

// AddressSpace is the EVM-specific memory class an LLVM pointer lives in.
type AddressSpace int

const (
	AddressSpaceStack           AddressSpace = 0
	AddressSpaceHeap            AddressSpace = 1
	AddressSpaceCallData        AddressSpace = 2
	AddressSpaceReturnData      AddressSpace = 3
	AddressSpaceCode            AddressSpace = 4
	AddressSpaceStorage         AddressSpace = 5
	AddressSpaceTransientStorage AddressSpace = 6
)

func (a AddressSpace) String() string {
	switch a {
	case AddressSpaceStack:
		return "stack"
	case AddressSpaceHeap:
		return "heap"
	case AddressSpaceCallData:
		return "calldata"
	case AddressSpaceReturnData:
		return "returndata"
	case AddressSpaceCode:
		return "code"
	case AddressSpaceStorage:
		return "storage"
	case AddressSpaceTransientStorage:
		return "transient"
	default:
		return fmt.Sprintf("addrspace(%d)", int(a))
	}
}

// EVMVersion is the target hard fork. Semantics of a handful of
// builtins and legacy-assembly opcodes are gated on it.
type EVMVersion int

const (
	Cancun EVMVersion = iota
	Prague
	Osaka
)

func (v EVMVersion) String() string {
	switch v {
	case Cancun:
		return "cancun"
	case Prague:
		return "prague"
	case Osaka:
		return "osaka"
	default:
		return "unknown"
	}
}

func ParseEVMVersion(s string) (EVMVersion, error) {
	switch s {
	case "cancun":
		return Cancun, nil
	case "prague":
		return Prague, nil
	case "osaka":
		return Osaka, nil
	default:
		return 0, fmt.Errorf("unsupported EVM version %q, supported: cancun, prague, osaka", s)
	}
}

// AtLeast reports whether v is the same version or a later one than other.
func (v EVMVersion) AtLeast(other EVMVersion) bool {
	return v >= other
}

// MetadataHashKind selects what kind of content hash, if any, is
// embedded in the CBOR metadata trailer.
type MetadataHashKind string

const (
	MetadataHashNone    MetadataHashKind = "none"
	MetadataHashIPFS    MetadataHashKind = "ipfs"
	MetadataHashKeccak  MetadataHashKind = "keccak256"
)

func ParseMetadataHashKind(s string) (MetadataHashKind, error) {
	switch MetadataHashKind(s) {
	case MetadataHashNone, MetadataHashIPFS, MetadataHashKeccak:
		return MetadataHashKind(s), nil
	default:
		return "", fmt.Errorf("unsupported metadata hash kind %q", s)
	}
}

// OptimizationLevel is the middle-end optimization level. "z" and "s"
// both prioritize size, "z" more aggressively than "s".
type OptimizationLevel string

const (
	Level1 OptimizationLevel = "1"
	Level2 OptimizationLevel = "2"
	Level3 OptimizationLevel = "3"
	LevelS OptimizationLevel = "s"
	LevelZ OptimizationLevel = "z"
)

func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	switch OptimizationLevel(s) {
	case Level1, Level2, Level3, LevelS, LevelZ:
		return OptimizationLevel(s), nil
	default:
		return "", fmt.Errorf("invalid optimization level %q, expected one of 1,2,3,s,z", s)
	}
}

// SizePreferring reports whether the level trades cycles for size.
func (l OptimizationLevel) SizePreferring() bool {
	return l == LevelS || l == LevelZ
}

// Attribute is an LLVM function/parameter attribute the IR lowering
// engine attaches to every generated function, grounded on
// original_source/solx-codegen-evm/src/context/attribute/mod.rs.
type Attribute string

const (
	AttrNoFree          Attribute = "nofree"
	AttrNoUnwind        Attribute = "nounwind"
	AttrWillReturn      Attribute = "willreturn"
	AttrNoProfile       Attribute = "noprofile"
	AttrNoInline        Attribute = "noinline"
	AttrAlwaysInline    Attribute = "alwaysinline"
	AttrMinSize         Attribute = "minsize"
	AttrOptSize         Attribute = "optsize"
	AttrReadOnly        Attribute = "readonly"
	AttrArgMemOnly      Attribute = "argmemonly"
	AttrNoReturn        Attribute = "noreturn"
)

// DefaultFunctionAttributes returns the attribute set every lowered
// function receives, adjusted for the chosen optimization level.
func DefaultFunctionAttributes(level OptimizationLevel) []Attribute {
	attrs := []Attribute{AttrNoFree, AttrNoUnwind, AttrWillReturn, AttrNoProfile}
	if level.SizePreferring() {
		attrs = append(attrs, AttrMinSize, AttrOptSize)
	}
	return attrs
}

// EntryPointName is the fixed symbol name LLVM uses for each segment's
// no-argument, no-return entrypoint, per the EVM calling convention.
func EntryPointName(segment CodeSegment) string {
	switch segment {
	case SegmentDeploy:
		return "__entry_deploy"
	case SegmentRuntime:
		return "__entry_runtime"
	default:
		return "__entry_unknown"
	}
}
