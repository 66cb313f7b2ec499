package jsonemit

import (
	"encoding/json"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/pipeline"
	"github.com/r3e-network/solx-go/internal/stdjson"
)

func TestEmitHonorsOutputSelection(t *testing.T) {
	build := &pipeline.Build{
		Contracts: []*pipeline.ContractArtifact{
			{
				Name:    pipeline.ContractName{Path: "contracts/Token.sol", Name: "Token"},
				Runtime: &pipeline.SegmentArtifact{Segment: catalog.SegmentRuntime, Bytecode: []byte{0xde, 0xad}},
				Deploy:  &pipeline.SegmentArtifact{Segment: catalog.SegmentDeploy, Bytecode: []byte{0xbe, 0xef}},
				ABI:     json.RawMessage(`[{"type":"function"}]`),
			},
		},
	}
	selection := stdjson.OutputSelection{"*": {"*": {"abi"}}}

	out := Emit(build, selection)

	c := out.Contracts["contracts/Token.sol"]["Token"]
	if string(c.ABI) != `[{"type":"function"}]` {
		t.Errorf("expected ABI selected, got %q", c.ABI)
	}
	if c.EVM.Bytecode.Object != "" {
		t.Errorf("bin was not selected but got %q", c.EVM.Bytecode.Object)
	}
}

func TestEmitIncludesBytecodeWhenSelected(t *testing.T) {
	build := &pipeline.Build{
		Contracts: []*pipeline.ContractArtifact{
			{
				Name:    pipeline.ContractName{Path: "a.sol"},
				Runtime: &pipeline.SegmentArtifact{Bytecode: []byte{0xde, 0xad}, Immutables: map[string][]int{"owner": {64}}},
				Deploy:  &pipeline.SegmentArtifact{Bytecode: []byte{0xbe, 0xef}},
			},
		},
	}
	selection := stdjson.OutputSelection{"*": {"*": {"evm.bytecode.object", "evm.deployedBytecode.object"}}}

	out := Emit(build, selection)

	c := out.Contracts["a.sol"][""]
	if c.EVM.Bytecode.Object != "beef" {
		t.Errorf("unexpected deploy bytecode: %q", c.EVM.Bytecode.Object)
	}
	if c.EVM.DeployedBytecode.Object != "dead" {
		t.Errorf("unexpected runtime bytecode: %q", c.EVM.DeployedBytecode.Object)
	}
	if len(c.EVM.DeployedBytecode.ImmutableReferences["owner"]) != 1 {
		t.Errorf("expected one immutable reference for owner, got %+v", c.EVM.DeployedBytecode.ImmutableReferences)
	}
}

func TestEmitReportsBuildErrorsAndUnresolvedLinks(t *testing.T) {
	build := &pipeline.Build{
		Contracts: []*pipeline.ContractArtifact{
			{Name: pipeline.ContractName{Path: "b.sol"}, Unresolved: []string{"__$deadbeef$__"}},
		},
		Errors: map[string]error{
			"a.sol": errs.New(errs.KindLowering, "a.sol", "boom"),
		},
	}

	out := Emit(build, stdjson.OutputSelection{})

	if len(out.Errors) != 2 {
		t.Fatalf("expected 2 diagnostics (1 fatal + 1 unresolved-link warning), got %d: %+v", len(out.Errors), out.Errors)
	}
}
