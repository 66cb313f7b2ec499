package ir

import (
	"strings"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/legacyasm"
)

func TestLowerLegacyAssemblyFlattensItemsAndDeps(t *testing.T) {
	data := []byte(`{
		"code": [
			{"kind": "opcode", "value": "PUSH1"},
			{"kind": "push_sub", "subIndex": 0},
			{"kind": "tag", "value": "1"},
			{"kind": "opcode", "value": "STOP"}
		],
		"subAssemblies": {
			"0": {"code": [{"kind": "opcode", "value": "STOP"}]}
		}
	}`)
	asm, err := legacyasm.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	mod, err := LowerLegacyAssembly(asm, catalog.SegmentDeploy, "test.json", catalog.Prague)
	if err != nil {
		t.Fatalf("LowerLegacyAssembly: %v", err)
	}
	if len(mod.Functions) != 1 || len(mod.Functions[0].Body) != 4 {
		t.Fatalf("expected 1 function with 4 ops, got %+v", mod.Functions)
	}
	if len(mod.Dependencies) != 1 || mod.Dependencies[0] != "sub0" {
		t.Errorf("expected dependency on sub0, got %v", mod.Dependencies)
	}
}

func TestLowerLegacyAssemblyAcceptsMCOPYAtCancun(t *testing.T) {
	data := []byte(`{"code": [{"kind": "opcode", "value": "MCOPY"}]}`)
	asm, err := legacyasm.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// All three versions this driver supports postdate Cancun, so
	// MCOPY is always available; this asserts the pass-through path
	// rather than a rejection, since there's no pre-Cancun version to
	// target in this driver's catalog.
	mod, err := LowerLegacyAssembly(asm, catalog.SegmentRuntime, "test.json", catalog.Cancun)
	if err != nil {
		t.Fatalf("unexpected error for MCOPY at Cancun: %v", err)
	}
	if !strings.Contains(mod.Functions[0].Body[0].Name, "MCOPY") {
		t.Errorf("expected MCOPY op, got %+v", mod.Functions[0].Body)
	}
}
