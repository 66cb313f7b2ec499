package benchmark

import "testing"

func TestFromInputsMergesFoundryGasAndSize(t *testing.T) {
	gas := Report{Kind: ReportFoundryGas, FoundryGas: FoundryGasReport{
		{
			Contract:   "Token",
			Deployment: FoundryDeploymentGas{Gas: 100000},
			Functions:  map[string]FoundryFunctionGas{"transfer": {Mean: 21000}},
		},
	}}
	size := Report{Kind: ReportFoundrySize, FoundrySize: FoundrySizeReport{
		"Token": {InitSize: 500, RuntimeSize: 300},
	}}

	b, err := FromInputs([]Input{
		NewInput(ReportFoundryGas, gas, "aave-v3", "solx"),
		NewInput(ReportFoundrySize, size, "aave-v3", "solx"),
	})
	if err != nil {
		t.Fatalf("FromInputs: %v", err)
	}

	deployKey := Selector{Project: "aave-v3", Case: "Token", Input: &TestInput{Kind: InputDeployer, ContractIdentifier: "Token"}}.Key()
	deployTest, ok := b.Tests[deployKey]
	if !ok {
		t.Fatalf("expected a deploy test at key %q, got tests %v", deployKey, b.SortedTestNames())
	}
	run := deployTest.toolchain("solx").codegen("").versioned("").executable("").Run
	if run.AverageGas() != 100000 {
		t.Errorf("expected deploy gas 100000, got %d", run.AverageGas())
	}
	if run.AverageSize() != 500 || run.AverageRuntimeSize() != 300 {
		t.Errorf("expected merged size data, got size=%d runtime=%d", run.AverageSize(), run.AverageRuntimeSize())
	}
}

func TestRemoveZeroDeployGasPrunesAllZeroTests(t *testing.T) {
	b := New()
	selector := Selector{Project: "p", Case: "Dead", Input: &TestInput{Kind: InputDeployer, ContractIdentifier: "Dead"}}
	run := b.test(selector).run("solx", "", "", "")
	run.Gas = append(run.Gas, 0)

	b.RemoveZeroDeployGas()

	if _, ok := b.Tests[selector.Key()]; ok {
		t.Fatal("expected the all-zero deploy test to be pruned")
	}
}

func TestRunExtendDropsGasOverflowMarkers(t *testing.T) {
	r := &Run{}
	r.Extend(Run{Gas: []uint64{100, gasOverflowMarker, gasOverflowMarker + 1}})
	if len(r.Gas) != 1 || r.Gas[0] != 100 {
		t.Errorf("expected overflow-marker gas samples dropped, got %v", r.Gas)
	}
}

func TestSelectorKeyFormatting(t *testing.T) {
	plain := Selector{Project: "p"}
	if plain.Key() != "p" {
		t.Errorf("Key() = %q, want %q", plain.Key(), "p")
	}

	withCase := Selector{Project: "p", Case: "C"}
	if withCase.Key() != "p:C" {
		t.Errorf("Key() = %q, want %q", withCase.Key(), "p:C")
	}

	withInput := Selector{Project: "p", Case: "C", Input: &TestInput{Kind: InputDeployer, ContractIdentifier: "C"}}
	if withInput.Key() != "p:C/deploy:C" {
		t.Errorf("Key() = %q, want %q", withInput.Key(), "p:C/deploy:C")
	}
}
