package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
)

// Input is one benchmark report plus the (toolchain, project) tag spec
// §4.5 "Inputs" requires every heterogeneous report to carry (spec §3
// "tagged with (toolchain, project)"), grounded on
// original_source/solx-benchmark-converter/src/input/mod.rs's `Input`.
type Input struct {
	Data      Report
	Project   string
	Toolchain string
}

// ReportKind tags which shape Report.Data actually holds. The
// original Rust type derives serde's "untagged" enum and lets the
// deserializer probe variants structurally; Go's encoding/json has no
// equivalent, so this driver requires callers to say which kind a
// report file is (its CLI subcommand already knows), rather than
// guessing from JSON shape alone.
type ReportKind string

const (
	ReportNative          ReportKind = "native"
	ReportFoundryGas      ReportKind = "foundry_gas"
	ReportFoundrySize     ReportKind = "foundry_size"
	ReportCompilationTime ReportKind = "compilation_time"
	ReportTestingTime     ReportKind = "testing_time"
	ReportBuildFailures   ReportKind = "build_failures"
	ReportTestFailures    ReportKind = "test_failures"
)

// Report is the union of tool report formats spec §4.5 "Inputs" lists.
// Exactly one field is populated, selected by Kind.
type Report struct {
	Kind ReportKind

	Native          *Benchmark
	FoundryGas      FoundryGasReport
	FoundrySize     FoundrySizeReport
	CompilationTime CompilationTimeReport
	TestingTime     TestingTimeReport
	BuildFailures   BuildFailuresReport
	TestFailures    TestFailuresReport
}

// FoundryGasReport is a per-contract gas report: one deployment figure
// plus a mean per called function (spec §4.5 step 1 "Gas report ->
// one deploy entry per contract plus one runtime entry per (contract,
// function, index)").
type FoundryGasReport []FoundryContractGas

// FoundryContractGas is one contract's entry in a gas report.
type FoundryContractGas struct {
	Contract   string                        `json:"contract"`
	Deployment FoundryDeploymentGas          `json:"deployment"`
	Functions  map[string]FoundryFunctionGas `json:"functions"`
}

// FoundryDeploymentGas is the gas spent deploying one contract.
type FoundryDeploymentGas struct {
	Gas uint64 `json:"gas"`
}

// FoundryFunctionGas is one function's gas statistics; only Mean
// feeds the merged Run (spec §4.5 step 1 uses the mean, consistent
// with Run's own averaging reductions).
type FoundryFunctionGas struct {
	Calls  uint64 `json:"calls"`
	Min    uint64 `json:"min"`
	Mean   uint64 `json:"mean"`
	Median uint64 `json:"median"`
	Max    uint64 `json:"max"`
}

// FoundrySizeReport maps contract name to its deploy/runtime sizes
// (spec §4.5 step 1 "Size report -> one deploy entry per contract,
// recording deploy-size and runtime-size").
type FoundrySizeReport map[string]FoundryContractSize

// FoundryContractSize is one contract's code-size entry.
type FoundryContractSize struct {
	InitSize    uint64 `json:"init_size"`
	RuntimeSize uint64 `json:"runtime_size"`
}

// CompilationTimeReport is a whole-project compilation duration in
// milliseconds (spec §4.5 step 1 "Timing/failure reports -> one
// project-level entry").
type CompilationTimeReport uint64

// TestingTimeReport is a whole-project test-suite duration in
// milliseconds.
type TestingTimeReport uint64

// BuildFailuresReport is a whole-project build-failure count.
type BuildFailuresReport uint64

// TestFailuresReport is a whole-project test-failure count.
type TestFailuresReport uint64

// NewInput tags report with its (project, toolchain) pair and kind,
// mirroring original_source's `Input::new`.
func NewInput(kind ReportKind, report Report, project, toolchain string) Input {
	report.Kind = kind
	return Input{Data: report, Project: project, Toolchain: toolchain}
}

// ReadInput loads and tags one report file, per
// original_source/solx-benchmark-converter/src/input/mod.rs's
// `TryFrom<&Path>`: empty files are rejected explicitly rather than
// failing later with an opaque JSON-parse error.
func ReadInput(path string, kind ReportKind, project, toolchain string) (Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("benchmark input %q: reading: %w", path, err)
	}
	if len(raw) == 0 {
		return Input{}, fmt.Errorf("benchmark input %q: file is empty", path)
	}

	report := Report{Kind: kind}
	switch kind {
	case ReportNative:
		var b Benchmark
		if err := json.Unmarshal(raw, &b); err != nil {
			return Input{}, fmt.Errorf("benchmark input %q: parsing native report: %w", path, err)
		}
		report.Native = &b
	case ReportFoundryGas:
		if err := json.Unmarshal(raw, &report.FoundryGas); err != nil {
			return Input{}, fmt.Errorf("benchmark input %q: parsing foundry gas report: %w", path, err)
		}
	case ReportFoundrySize:
		if err := json.Unmarshal(raw, &report.FoundrySize); err != nil {
			return Input{}, fmt.Errorf("benchmark input %q: parsing foundry size report: %w", path, err)
		}
	case ReportCompilationTime:
		if err := json.Unmarshal(raw, &report.CompilationTime); err != nil {
			return Input{}, fmt.Errorf("benchmark input %q: parsing compilation-time report: %w", path, err)
		}
	case ReportTestingTime:
		if err := json.Unmarshal(raw, &report.TestingTime); err != nil {
			return Input{}, fmt.Errorf("benchmark input %q: parsing testing-time report: %w", path, err)
		}
	case ReportBuildFailures:
		if err := json.Unmarshal(raw, &report.BuildFailures); err != nil {
			return Input{}, fmt.Errorf("benchmark input %q: parsing build-failures report: %w", path, err)
		}
	case ReportTestFailures:
		if err := json.Unmarshal(raw, &report.TestFailures); err != nil {
			return Input{}, fmt.Errorf("benchmark input %q: parsing test-failures report: %w", path, err)
		}
	default:
		return Input{}, fmt.Errorf("benchmark input %q: unknown report kind %q", path, kind)
	}

	return Input{Data: report, Project: project, Toolchain: toolchain}, nil
}
