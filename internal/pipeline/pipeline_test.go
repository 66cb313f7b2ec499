package pipeline

import (
	"context"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/optimizer"
	"github.com/r3e-network/solx-go/internal/stdjson"
	"github.com/r3e-network/solx-go/internal/wire"
)

func singleOpModule(segment catalog.CodeSegment) *ir.Module {
	mod := ir.NewModule(segment)
	mod.AddFunction(&ir.Function{
		Name: mod.EntryPoint,
		Body: []ir.Op{{Name: "const", Operands: []string{"1"}, Result: "%1"}},
	})
	return mod
}

func fakeRunnerAlwaysSucceeds(bytecode byte) segmentRunner {
	return func(in wire.Input) (wire.Result, error) {
		immutables := map[string][]int(nil)
		if in.Segment == catalog.SegmentRuntime {
			immutables = map[string][]int{"owner": {64}}
		}
		return wire.Result{Output: &wire.Output{Bytecode: []byte{bytecode}, Immutables: immutables}}, nil
	}
}

func baseOptions() Options {
	return Options{
		OutputSelection: stdjson.OutputSelection{},
		EVMVersion:      catalog.Cancun,
		Optimizer:       optimizer.New(catalog.Level3, false, false, false),
	}
}

func TestCompileProjectOrdersRuntimeBeforeDeployAndThreadsImmutables(t *testing.T) {
	var seenSegments []catalog.CodeSegment
	var seenImmutables []map[string][]int

	run := func(in wire.Input) (wire.Result, error) {
		seenSegments = append(seenSegments, in.Segment)
		seenImmutables = append(seenImmutables, in.Immutables)
		out := &wire.Output{Bytecode: []byte{0x01}}
		if in.Segment == catalog.SegmentRuntime {
			out.Immutables = map[string][]int{"owner": {64, 96}}
		}
		return wire.Result{Output: out}, nil
	}

	o := New(nil).withRunner(run)
	project := &Project{
		Contracts: map[string]*Contract{
			"contracts/Token.sol": {
				Name:    ContractName{Path: "contracts/Token.sol"},
				Runtime: singleOpModule(catalog.SegmentRuntime),
				Deploy:  singleOpModule(catalog.SegmentDeploy),
			},
		},
	}

	build, err := o.CompileProject(context.Background(), project, baseOptions())
	if err != nil {
		t.Fatalf("CompileProject: %v", err)
	}
	if len(build.Errors) != 0 {
		t.Fatalf("unexpected build errors: %+v", build.Errors)
	}
	if len(seenSegments) != 2 || seenSegments[0] != catalog.SegmentRuntime || seenSegments[1] != catalog.SegmentDeploy {
		t.Fatalf("expected runtime strictly before deploy, got %v", seenSegments)
	}
	if len(seenImmutables[0]) != 0 {
		t.Errorf("runtime pass should not receive immutables, got %v", seenImmutables[0])
	}
	if seenImmutables[1]["owner"][1] != 96 {
		t.Errorf("deploy pass should receive the runtime pass's discovered immutables, got %v", seenImmutables[1])
	}

	if len(build.Contracts) != 1 {
		t.Fatalf("expected one contract artifact, got %d", len(build.Contracts))
	}
	artifact := build.Contracts[0]
	if artifact.Runtime == nil || artifact.Deploy == nil {
		t.Fatalf("expected both segment artifacts, got %+v", artifact)
	}
}

func TestCompileProjectIsolatesPerContractFailures(t *testing.T) {
	run := func(in wire.Input) (wire.Result, error) {
		if in.ContractPath == "contracts/Bad.sol" {
			return wire.Result{Err: &wire.Error{Kind: wire.ErrorKindDiagnostic, Severity: "error", Message: "boom"}}, nil
		}
		return wire.Result{Output: &wire.Output{Bytecode: []byte{0x01}}}, nil
	}

	o := New(nil).withRunner(run)
	project := &Project{
		Contracts: map[string]*Contract{
			"contracts/Good.sol": {Name: ContractName{Path: "contracts/Good.sol"}, Runtime: singleOpModule(catalog.SegmentRuntime)},
			"contracts/Bad.sol":  {Name: ContractName{Path: "contracts/Bad.sol"}, Runtime: singleOpModule(catalog.SegmentRuntime)},
		},
	}

	build, err := o.CompileProject(context.Background(), project, baseOptions())
	if err != nil {
		t.Fatalf("CompileProject: %v", err)
	}
	if len(build.Contracts) != 1 || build.Contracts[0].Name.Path != "contracts/Good.sol" {
		t.Fatalf("expected only the good contract to succeed, got %+v", build.Contracts)
	}
	if _, ok := build.Errors["contracts/Bad.sol"]; !ok {
		t.Fatalf("expected a recorded error for the bad contract, got %+v", build.Errors)
	}
}

func TestCompileSegmentReportsSizeFallbackAfterRecovery(t *testing.T) {
	calls := 0
	run := func(in wire.Input) (wire.Result, error) {
		calls++
		if calls == 1 {
			return wire.Result{Err: &wire.Error{
				Kind:           wire.ErrorKindStackTooDeep,
				SpillAreaSize:  4096,
				IsSizeFallback: true,
			}}, nil
		}
		return wire.Result{Output: &wire.Output{Bytecode: []byte{0x01}}}, nil
	}

	o := New(nil).withRunner(run)
	seg, err := o.compileSegment(context.Background(), ContractName{Path: "contracts/Deep.sol"}, singleOpModule(catalog.SegmentRuntime), catalog.SegmentRuntime, baseOptions(), nil)
	if err != nil {
		t.Fatalf("compileSegment: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one recovery attempt (2 calls), got %d", calls)
	}
	if !seg.SizeFallback {
		t.Error("expected the segment artifact to report size fallback after a successful escalation")
	}
}

func TestCompileSegmentSizeFallbackFalseWithoutRecovery(t *testing.T) {
	o := New(nil).withRunner(fakeRunnerAlwaysSucceeds(0x01))
	seg, err := o.compileSegment(context.Background(), ContractName{Path: "contracts/Shallow.sol"}, singleOpModule(catalog.SegmentRuntime), catalog.SegmentRuntime, baseOptions(), nil)
	if err != nil {
		t.Fatalf("compileSegment: %v", err)
	}
	if seg.SizeFallback {
		t.Error("did not expect size fallback when no recovery was needed")
	}
}

func TestCompileProjectHandlesMultipleContractsConcurrently(t *testing.T) {
	o := New(nil).withRunner(fakeRunnerAlwaysSucceeds(0x42))
	project := &Project{Contracts: map[string]*Contract{}}
	for _, name := range []string{"contracts/A.sol", "contracts/B.sol", "contracts/C.sol"} {
		project.Contracts[name] = &Contract{Name: ContractName{Path: name}, Runtime: singleOpModule(catalog.SegmentRuntime)}
	}

	build, err := o.CompileProject(context.Background(), project, baseOptions())
	if err != nil {
		t.Fatalf("CompileProject: %v", err)
	}
	if len(build.Contracts) != 3 {
		t.Fatalf("expected 3 contract artifacts, got %d", len(build.Contracts))
	}
	for _, artifact := range build.Contracts {
		if len(artifact.Runtime.Bytecode) != 1 || artifact.Runtime.Bytecode[0] != 0x42 {
			t.Errorf("unexpected bytecode for %s: %x", artifact.Name.Path, artifact.Runtime.Bytecode)
		}
	}
}
