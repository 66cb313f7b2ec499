package ir

import (
	"fmt"

	"github.com/r3e-network/solx-go/internal/catalog"
)

// RawIR is a module whose source is already LLVM-IR text, rather than
// Yul or legacy assembly. The driver does not parse or verify this
// text itself (spec treats the real LLVM library as an external
// collaborator reached only through internal/llvmapi); it is carried
// through as an opaque payload plus the handful of facts the pipeline
// and metadata layers need: which segment it is, and for a deploy
// segment, which runtime identifier it references.
type RawIR struct {
	Segment     catalog.CodeSegment
	Text        string
	RuntimeName string // set only when Segment == SegmentDeploy
}

// LowerRawLLVMIR wraps hand-authored LLVM-IR into a Module whose sole
// function body is a passthrough "raw.ir" op carrying the source text,
// and, for a deploy segment, synthesizes a minimal deploy stub that
// references the runtime identifier (spec §3: "For LLVM-IR deploy
// contracts, a synthesized minimal deploy stub is generated that
// references the runtime identifier").
func LowerRawLLVMIR(raw RawIR) (*Module, error) {
	module := NewModule(raw.Segment)
	entry := &Function{Name: module.EntryPoint, Attrs: catalog.DefaultFunctionAttributes(catalog.Level3)}

	if raw.Segment == catalog.SegmentDeploy {
		if raw.RuntimeName == "" {
			return nil, fmt.Errorf("raw LLVM-IR deploy segment requires a runtime identifier to stub against")
		}
		module.AddDependency(raw.RuntimeName)
		entry.Body = append(entry.Body, synthesizeDeployStub(raw.RuntimeName)...)
	}

	entry.Body = append(entry.Body, Op{Name: "raw.ir", Operands: []string{raw.Text}})
	module.AddFunction(entry)
	return module, nil
}

// synthesizeDeployStub emits the minimal sequence a deploy segment
// needs when its body is raw LLVM-IR with no Yul-level constructor
// logic of its own: copy the runtime segment's code to memory and
// return it, the same shape datacopy/dataoffset/datasize/return would
// produce in hand-written deploy Yul.
func synthesizeDeployStub(runtimeName string) []Op {
	offsetReg := "%deploy_stub_offset"
	sizeReg := "%deploy_stub_size"
	return []Op{
		{Name: "dataoffset", Operands: []string{runtimeName}, Result: offsetReg},
		{Name: "datasize", Operands: []string{runtimeName}, Result: sizeReg},
		{Name: "datacopy", Operands: []string{"0", offsetReg, sizeReg}},
		{Name: "control.return", Operands: []string{"0", sizeReg}},
	}
}
