package legacyasm

import (
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
)

func TestParseAndDependencies(t *testing.T) {
	data := []byte(`{
		"code": [
			{"kind": "opcode", "value": "PUSH1"},
			{"kind": "push_sub", "subIndex": 0},
			{"kind": "push_sub_size", "subIndex": 0}
		],
		"subAssemblies": {
			"0": {
				"code": [
					{"kind": "push_sub", "subIndex": 1}
				],
				"subAssemblies": {
					"1": {"code": [{"kind": "opcode", "value": "STOP"}]}
				}
			}
		}
	}`)

	asm, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	deps := asm.Dependencies()
	if len(deps) != 2 {
		t.Fatalf("expected 2 distinct dependencies, got %v", deps)
	}
	seen := map[int]bool{}
	for _, d := range deps {
		seen[d] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("expected dependencies on sub-assemblies 0 and 1, got %v", deps)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSemanticsForTargetedVersions(t *testing.T) {
	for _, v := range []catalog.EVMVersion{catalog.Cancun, catalog.Prague, catalog.Osaka} {
		sem := SemanticsFor(v)
		if !sem.HasMCopy || !sem.HasTransientStorage {
			t.Errorf("%s: expected mcopy and transient storage support, got %+v", v, sem)
		}
	}
}
