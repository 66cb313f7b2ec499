// Package llvmapi is the embedding-API boundary this driver reaches
// the external LLVM library through (spec.md §1: "consumed through a
// C++ embedding API"). Go code elsewhere in this module never touches
// LLVM directly; it only ever talks to the Backend/Context interfaces
// declared here, mirroring the handful of calls the original binds via
// inkwell/llvm-sys: construct a context, load a module, run the
// middle-end pass pipeline at a given optimization level, and codegen
// one segment to bytes.
package llvmapi

import (
	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/ir"
)

// Backend constructs fresh Contexts. One Backend instance is shared
// across a process; each compilation attempt gets its own Context so
// that stack-too-deep recovery reattempts start from a clean slate.
type Backend interface {
	NewContext() Context
}

// Context is a single compilation attempt's handle into the backend:
// load a module, optionally run passes, then codegen one segment.
type Context interface {
	// ParseModule loads a lowered module for code generation. It
	// corresponds to the original's ParseIR call over a memory buffer;
	// this driver's "IR" is always already a structured ir.Module
	// rather than text, since internal/ir never serializes to a real
	// LLVM textual format except for debug output.
	ParseModule(mod *ir.Module) error

	// RunMiddleEndPasses runs the pass pipeline implied by level
	// (spec §4.3's optimizer Level).
	RunMiddleEndPasses(level catalog.OptimizationLevel) error

	// Codegen emits the final bytecode for the module's segment. It
	// returns *errs.StackTooDeep (not a terminal error) when the
	// module's virtual-stack spill requirement exceeds spillBudget;
	// the orchestrator's recovery loop is expected to retry with a
	// larger budget.
	Codegen(spillBudget uint64) ([]byte, error)

	// InstallStackErrorHandler registers a callback invoked whenever
	// Codegen is about to return a StackTooDeep, mirroring the
	// original's signal-safe stack-overflow handler installation
	// (spec §7's "StackTooDeep" note); this driver's analogue never
	// runs in a signal handler, so the callback may allocate freely.
	InstallStackErrorHandler(handler func(*errs.StackTooDeep))
}
