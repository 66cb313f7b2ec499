package pipeline

import (
	"fmt"
	"io"

	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/llvmapi"
	"github.com/r3e-network/solx-go/internal/wire"
)

// RunRecursiveProcess is the --recursive-process child's whole body
// (spec §4.1 "Subprocess protocol" steps 2-4), mirroring
// original_source/solx-core/src/process/mod.rs's run(): read one
// Input frame, compile it on backend, write one Result frame.
//
// It returns a Go error only for a transport-level failure — the
// input frame couldn't be read, or the result couldn't be written.
// Every compiler-level outcome, success, stack-too-deep, or a fatal
// diagnostic, is encoded into the written Result with a nil return,
// so cmd/solx exits 0 exactly when spec §5's exit-code table says to:
// "A subprocess that reports StackTooDeep returns success to the OS
// ... Any non-zero exit is reported as a fatal diagnostic".
func RunRecursiveProcess(r io.Reader, w io.Writer, backend llvmapi.Backend) error {
	in, err := wire.ReadInput(r)
	if err != nil {
		return fmt.Errorf("pipeline: reading recursive-process input: %w", err)
	}

	result := compileOneSegment(backend, in)
	if err := wire.WriteResult(w, result); err != nil {
		return fmt.Errorf("pipeline: writing recursive-process result: %w", err)
	}
	return nil
}

// compileOneSegment runs one (contract, segment) compilation attempt
// on backend, a fresh Context per attempt (spec §4.1: "each
// compilation attempt gets its own Context so that stack-too-deep
// recovery reattempts start from a clean slate" —
// internal/llvmapi.Backend's doc comment).
func compileOneSegment(backend llvmapi.Backend, in wire.Input) wire.Result {
	if in.Module == nil {
		return wire.Result{Err: &wire.Error{
			Kind:       wire.ErrorKindDiagnostic,
			Severity:   "error",
			Message:    "recursive-process input carried no module",
			SourceFile: in.ContractPath,
		}}
	}

	profiler := NewProfiler()
	ctx := backend.NewContext()

	stop := profiler.Stage("parse")
	err := ctx.ParseModule(in.Module)
	stop()
	if err != nil {
		return wire.Result{Err: diagnosticFromErr(in.ContractPath, err)}
	}

	stop = profiler.Stage("middle_end")
	err = ctx.RunMiddleEndPasses(in.Optimizer.Level)
	stop()
	if err != nil {
		return wire.Result{Err: diagnosticFromErr(in.ContractPath, err)}
	}

	stop = profiler.Stage("codegen")
	code, err := ctx.Codegen(in.Optimizer.SpillAreaSize)
	stop()
	if err != nil {
		if stackErr, ok := err.(*errs.StackTooDeep); ok {
			return wire.Result{Err: &wire.Error{
				Kind:           wire.ErrorKindStackTooDeep,
				SpillAreaSize:  stackErr.SpillAreaSize,
				IsSizeFallback: stackErr.IsSizeFallback,
			}}
		}
		return wire.Result{Err: diagnosticFromErr(in.ContractPath, err)}
	}

	if err := ir.CheckUnsafeAsm(in.Module, in.Optimizer.SpillAreaSize, in.ContractPath); err != nil {
		return wire.Result{Err: diagnosticFromErr(in.ContractPath, err)}
	}

	return wire.Result{Output: &wire.Output{
		Bytecode:    code,
		Immutables:  in.Module.Immutables,
		LibraryRefs: in.Module.LibraryRefs,
		Timings:     profiler.ToWire(),
	}}
}

func diagnosticFromErr(path string, err error) *wire.Error {
	if e, ok := err.(*errs.Error); ok {
		return &wire.Error{
			Kind:         wire.ErrorKindDiagnostic,
			Severity:     "error",
			Message:      e.Message,
			SourceFile:   path,
			SourceLine:   e.Line,
			SourceColumn: e.Column,
			ErrorCode:    string(e.Kind),
		}
	}
	return &wire.Error{
		Kind:       wire.ErrorKindDiagnostic,
		Severity:   "error",
		Message:    err.Error(),
		SourceFile: path,
	}
}
