package pipeline

import (
	"bytes"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/llvmapi/nativebackend"
	"github.com/r3e-network/solx-go/internal/optimizer"
	"github.com/r3e-network/solx-go/internal/wire"
)

func simpleModule() *ir.Module {
	mod := ir.NewModule(catalog.SegmentRuntime)
	mod.AddFunction(&ir.Function{
		Name: mod.EntryPoint,
		Body: []ir.Op{
			{Name: "const", Operands: []string{"1"}, Result: "%1"},
			{Name: "const", Operands: []string{"2"}, Result: "%2"},
			{Name: "arithmetic.add", Operands: []string{"%1", "%2"}, Result: "%3"},
			{Name: "storage.sstore", Operands: []string{"0", "%3"}},
		},
	})
	return mod
}

func TestRunRecursiveProcessSucceeds(t *testing.T) {
	in := wire.Input{
		ContractPath: "contracts/Adder.sol",
		Segment:      catalog.SegmentRuntime,
		Optimizer:    optimizer.New(catalog.Level3, false, false, false),
		Module:       simpleModule(),
	}
	in.Optimizer.SetSpillAreaSize(1 << 20)

	var inBuf, out bytes.Buffer
	if err := wire.WriteInput(&inBuf, in); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}

	if err := RunRecursiveProcess(&inBuf, &out, nativebackend.New()); err != nil {
		t.Fatalf("RunRecursiveProcess: %v", err)
	}

	res, err := wire.ReadResult(&out)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("unexpected error result: %+v", res.Err)
	}
	if len(res.Output.Bytecode) == 0 {
		t.Error("expected non-empty bytecode")
	}
}

func TestRunRecursiveProcessReportsStackTooDeep(t *testing.T) {
	in := wire.Input{
		ContractPath: "contracts/Adder.sol",
		Segment:      catalog.SegmentRuntime,
		Optimizer:    optimizer.New(catalog.Level3, false, false, false), // SpillAreaSize defaults to 0
		Module:       simpleModule(),
	}

	var inBuf, out bytes.Buffer
	if err := wire.WriteInput(&inBuf, in); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}

	if err := RunRecursiveProcess(&inBuf, &out, nativebackend.New()); err != nil {
		t.Fatalf("RunRecursiveProcess: %v", err)
	}

	res, err := wire.ReadResult(&out)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if res.Err == nil || res.Err.Kind != wire.ErrorKindStackTooDeep {
		t.Fatalf("expected stack_too_deep result, got %+v", res)
	}
	if !res.Err.IsSizeFallback {
		t.Error("expected IsSizeFallback to be recommended on first overflow")
	}
}

func TestRunRecursiveProcessRejectsMissingModule(t *testing.T) {
	in := wire.Input{ContractPath: "contracts/Empty.sol"}

	var inBuf, out bytes.Buffer
	if err := wire.WriteInput(&inBuf, in); err != nil {
		t.Fatalf("WriteInput: %v", err)
	}
	if err := RunRecursiveProcess(&inBuf, &out, nativebackend.New()); err != nil {
		t.Fatalf("RunRecursiveProcess: %v", err)
	}
	res, err := wire.ReadResult(&out)
	if err != nil {
		t.Fatalf("ReadResult: %v", err)
	}
	if res.Err == nil || res.Err.Kind != wire.ErrorKindDiagnostic {
		t.Fatalf("expected a diagnostic error for a missing module, got %+v", res)
	}
}

func TestRunRecursiveProcessFailsOnUnreadableInput(t *testing.T) {
	var empty bytes.Buffer
	var out bytes.Buffer
	if err := RunRecursiveProcess(&empty, &out, nativebackend.New()); err == nil {
		t.Fatal("expected a transport-level error for an empty input stream")
	}
}
