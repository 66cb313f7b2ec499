package main

import (
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/legacyasm"
)

func TestLowerLegacyContractRuntimeOnly(t *testing.T) {
	asm := &legacyasm.Assembly{Items: []legacyasm.Item{{Kind: legacyasm.ItemOpcode, Value: "STOP"}}}

	contract, err := lowerLegacyContract("lib.json", asm, catalog.Cancun)
	if err != nil {
		t.Fatalf("lowerLegacyContract: %v", err)
	}
	if contract.Runtime == nil {
		t.Fatal("expected a runtime module for a sub-assembly-free legacy assembly tree")
	}
	if contract.Deploy != nil {
		t.Fatal("did not expect a deploy module for a sub-assembly-free legacy assembly tree")
	}
}

func TestLowerLegacyContractDeployAndRuntime(t *testing.T) {
	runtime := &legacyasm.Assembly{Items: []legacyasm.Item{{Kind: legacyasm.ItemOpcode, Value: "STOP"}}}
	deploy := &legacyasm.Assembly{
		Items:         []legacyasm.Item{{Kind: legacyasm.ItemPushSub, SubIndex: 0}},
		SubAssemblies: map[string]*legacyasm.Assembly{"0": runtime},
	}

	contract, err := lowerLegacyContract("Token.json", deploy, catalog.Cancun)
	if err != nil {
		t.Fatalf("lowerLegacyContract: %v", err)
	}
	if contract.Runtime == nil || contract.Deploy == nil {
		t.Fatalf("expected both runtime and deploy modules, got %+v", contract)
	}
}

func TestLowerLegacyContractRejectsMissingSubZero(t *testing.T) {
	asm := &legacyasm.Assembly{
		Items:         []legacyasm.Item{{Kind: legacyasm.ItemPushSub, SubIndex: 1}},
		SubAssemblies: map[string]*legacyasm.Assembly{"1": {}},
	}

	if _, err := lowerLegacyContract("Token.json", asm, catalog.Cancun); err == nil {
		t.Fatal("expected an error when no sub-assembly is keyed \"0\"")
	}
}

func TestBuildProjectFromFilesRejectsMultipleModes(t *testing.T) {
	f := &flags{yul: true, legacyAssembly: true}
	if _, err := buildProjectFromFiles(f, []string{"a"}, catalog.Cancun); err == nil {
		t.Fatal("expected an error when more than one input mode flag is set")
	}
}

func TestBuildProjectFromFilesReportsMissingFrontend(t *testing.T) {
	f := &flags{}
	if _, err := buildProjectFromFiles(f, []string{"a"}, catalog.Cancun); err == nil {
		t.Fatal("expected a frontend-not-embedded error with no mode flag set")
	}
}
