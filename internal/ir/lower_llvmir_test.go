package ir

import (
	"strings"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
)

func TestLowerRawLLVMIRRuntimePassthrough(t *testing.T) {
	mod, err := LowerRawLLVMIR(RawIR{Segment: catalog.SegmentRuntime, Text: "define void @entry() { ret void }"})
	if err != nil {
		t.Fatalf("LowerRawLLVMIR: %v", err)
	}
	if len(mod.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Functions))
	}
	last := mod.Functions[0].Body[len(mod.Functions[0].Body)-1]
	if last.Name != "raw.ir" {
		t.Errorf("expected final op to be raw.ir passthrough, got %+v", last)
	}
}

func TestLowerRawLLVMIRDeploySynthesizesStub(t *testing.T) {
	mod, err := LowerRawLLVMIR(RawIR{Segment: catalog.SegmentDeploy, Text: "; empty", RuntimeName: "Contract_runtime"})
	if err != nil {
		t.Fatalf("LowerRawLLVMIR: %v", err)
	}
	var found bool
	for _, d := range mod.Dependencies {
		if d == "Contract_runtime" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected dependency on runtime identifier, got %v", mod.Dependencies)
	}
	body := mod.Functions[0].Body
	var sawReturn bool
	for _, op := range body {
		if strings.Contains(op.Name, "return") {
			sawReturn = true
		}
	}
	if !sawReturn {
		t.Errorf("expected synthesized deploy stub to end in a return, got %+v", body)
	}
}

func TestLowerRawLLVMIRDeployRequiresRuntimeName(t *testing.T) {
	if _, err := LowerRawLLVMIR(RawIR{Segment: catalog.SegmentDeploy, Text: "; empty"}); err == nil {
		t.Fatal("expected error when deploy segment has no runtime identifier")
	}
}
