// Package ir implements the driver's core: lowering of Yul, EVM
// legacy assembly, or raw LLVM-IR into a textual LLVM-IR model under
// the EVM-specific calling convention of spec §4.2 (address spaces
// per memory class, a no-argument/no-return entrypoint, global arrays
// backing the 256-bit virtual stack spill). The model is a thin
// string-builder-plus-instruction-list, sufficient to drive
// internal/llvmapi without embedding a real LLVM C++ binding.
package ir

import (
	"fmt"
	"strings"

	"github.com/r3e-network/solx-go/internal/catalog"
)

// Op is one lowered instruction: an EVM opcode/intrinsic name plus its
// operands. Operands are either literal immediates (decimal or hex
// text) or %-prefixed virtual register names produced by an earlier Op.
type Op struct {
	Name     string
	Operands []string
	Result   string // virtual register this op defines, "" if none
}

// Function is one lowered Yul function, or the segment's synthesized
// entrypoint (named via catalog.EntryPointName).
type Function struct {
	Name    string
	Params  []string
	Returns []string
	Body    []Op
	Attrs   []catalog.Attribute
}

// Module is the lowering output for one code segment of one contract:
// a sequence of functions plus the dependency names (Yul
// dataoffset/datasize references, or legacy-assembly sub-assembly
// indices rendered as strings) the linker/metadata layer must resolve.
type Module struct {
	Segment      catalog.CodeSegment
	AddressSpace map[string]catalog.AddressSpace
	Functions    []*Function
	EntryPoint   string
	Dependencies []string
	// ContractPath is the source path this module was lowered from,
	// the same key a --libraries specification uses to scope a
	// library name (path:name). The raw-LLVM-IR entry point never
	// sets it: that path never references a library.
	ContractPath string
	// LibraryRefs records every library name this module's
	// linkersymbol built-ins reference, deduplicated, in the order
	// first seen. internal/metadata's linker resolves each one
	// against ContractPath and the library table; a name with no
	// table entry is reported unresolved rather than aborting the
	// build (spec §4.4).
	LibraryRefs []string
	// Immutables records each name passed to setimmutable, with one -1
	// entry per store, in whichever segment is being lowered. No
	// back-end replaces the -1 entries with byte offsets within the
	// runtime bytecode.
	Immutables map[string][]int
	UnsafeAsm  bool
}

// NewModule constructs an empty module for segment, with the standard
// EVM address-space bindings (spec §4.2 "(i) a distinguished address
// space per memory class").
func NewModule(segment catalog.CodeSegment) *Module {
	return &Module{
		Segment: segment,
		AddressSpace: map[string]catalog.AddressSpace{
			"heap":       catalog.AddressSpaceHeap,
			"calldata":   catalog.AddressSpaceCallData,
			"returndata": catalog.AddressSpaceReturnData,
			"code":       catalog.AddressSpaceCode,
			"storage":    catalog.AddressSpaceStorage,
			"transient":  catalog.AddressSpaceTransientStorage,
		},
		EntryPoint: catalog.EntryPointName(segment),
		Immutables: make(map[string][]int),
	}
}

// AddFunction appends a lowered function to the module.
func (m *Module) AddFunction(fn *Function) {
	m.Functions = append(m.Functions, fn)
}

// AddDependency records a name this module references through
// dataoffset/datasize/datacopy (Yul) or push_sub/push_sub_size
// (legacy assembly), deduplicated.
func (m *Module) AddDependency(name string) {
	for _, d := range m.Dependencies {
		if d == name {
			return
		}
	}
	m.Dependencies = append(m.Dependencies, name)
}

// AddLibraryRef records a library name this module references through
// linkersymbol, deduplicated.
func (m *Module) AddLibraryRef(name string) {
	for _, r := range m.LibraryRefs {
		if r == name {
			return
		}
	}
	m.LibraryRefs = append(m.LibraryRefs, name)
}

// String renders the module as indented pseudo-LLVM-IR text, useful
// for --ir output and for debugging; it is not fed back into a real
// LLVM parser anywhere in this driver.
func (m *Module) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; segment = %s\n", m.Segment)
	for _, fn := range m.Functions {
		fmt.Fprintf(&b, "define void @%s(%s) {\n", fn.Name, strings.Join(fn.Params, ", "))
		for _, op := range fn.Body {
			if op.Result != "" {
				fmt.Fprintf(&b, "  %s = %s %s\n", op.Result, op.Name, strings.Join(op.Operands, ", "))
			} else {
				fmt.Fprintf(&b, "  %s %s\n", op.Name, strings.Join(op.Operands, ", "))
			}
		}
		b.WriteString("}\n")
	}
	return b.String()
}
