package benchmark

import (
	"sort"
	"strings"
)

// Benchmark is the canonical merged hierarchy (spec §3 "Benchmark test
// entity"), grounded on
// original_source/solx-benchmark-converter/src/benchmark/mod.rs.
type Benchmark struct {
	Tests map[string]*Test `json:"tests"`
}

func New() *Benchmark {
	return &Benchmark{Tests: map[string]*Test{}}
}

// FromInputs merges every input into a fresh Benchmark and prunes
// non-deployable contracts, per spec §4.5's algorithm and invariant
// (e).
func FromInputs(inputs []Input) (*Benchmark, error) {
	b := New()
	for _, in := range inputs {
		if err := b.Extend(in); err != nil {
			return nil, err
		}
	}
	b.RemoveZeroDeployGas()
	return b, nil
}

func (b *Benchmark) test(selector Selector) *Test {
	key := selector.Key()
	t, ok := b.Tests[key]
	if !ok {
		t = newTest(selector)
		b.Tests[key] = t
	}
	return t
}

// Extend merges one tagged report into the benchmark, dispatching on
// its kind (spec §4.5 step 1, grounded on
// solx-benchmark-converter/src/benchmark/mod.rs's `extend`).
func (b *Benchmark) Extend(in Input) error {
	switch in.Data.Kind {
	case ReportNative:
		b.extendWithNative(in.Toolchain, in.Project, in.Data.Native)
	case ReportFoundryGas:
		b.extendWithFoundryGas(in.Toolchain, in.Project, in.Data.FoundryGas)
	case ReportFoundrySize:
		b.extendWithFoundrySize(in.Toolchain, in.Project, in.Data.FoundrySize)
	case ReportCompilationTime:
		b.extendWithCompilationTime(in.Toolchain, in.Project, in.Data.CompilationTime)
	case ReportTestingTime:
		b.extendWithTestingTime(in.Toolchain, in.Project, in.Data.TestingTime)
	case ReportBuildFailures:
		b.extendWithBuildFailures(in.Toolchain, in.Project, in.Data.BuildFailures)
	case ReportTestFailures:
		b.extendWithTestFailures(in.Toolchain, in.Project, in.Data.TestFailures)
	}
	return nil
}

// extendWithNative merges another toolchain's own benchmark tree
// (e.g. this driver's own pipeline profiler output re-ingested),
// reparenting each of its tests' selectors under project and folding
// its toolchain groups into toolchain (spec §4.5 step 1 "Native ->
// nested hierarchy merge").
func (b *Benchmark) extendWithNative(toolchain, project string, report *Benchmark) {
	if report == nil {
		return
	}
	for name, incoming := range report.Tests {
		selector := incoming.Metadata.Selector
		selector.Project = project
		if selector.Case == "" {
			selector.Case = strings.SplitN(name, "/", 2)[0]
		}

		existing := b.test(selector)
		existingGroup := existing.toolchain(toolchain)
		for _, incomingGroup := range incoming.ToolchainGroups {
			for codegenName, codegenGroup := range incomingGroup.CodegenGroups {
				for versionName, versionedGroup := range codegenGroup.VersionedGroups {
					for optName, execGroup := range versionedGroup.Executables {
						existingGroup.codegen(codegenName).versioned(versionName).executable(optName).Run.Extend(execGroup.Run)
					}
				}
			}
		}
	}
}

// extendWithFoundryGas records one deploy entry per contract plus one
// runtime entry per (contract, function, index), keyed under the
// (None, None, None) codegen/version/optimization path since Foundry
// reports carry no codegen/version breakdown (spec §4.5 step 1).
func (b *Benchmark) extendWithFoundryGas(toolchain, project string, report FoundryGasReport) {
	for _, contract := range report {
		deploySelector := Selector{
			Project: project,
			Case:    contract.Contract,
			Input:   &TestInput{Kind: InputDeployer, ContractIdentifier: contract.Contract},
		}
		deployRun := b.test(deploySelector).run(toolchain, "", "", "")
		deployRun.Gas = append(deployRun.Gas, contract.Deployment.Gas)

		names := make([]string, 0, len(contract.Functions))
		for name := range contract.Functions {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			fn := contract.Functions[name]
			runtimeSelector := Selector{
				Project: project,
				Case:    contract.Contract,
				Input:   &TestInput{Kind: InputRuntime, InputIndex: i + 1, Name: name},
			}
			run := b.test(runtimeSelector).run(toolchain, "", "", "")
			run.Gas = append(run.Gas, fn.Mean)
		}
	}
}

// extendWithFoundrySize records one deploy entry per contract with
// both its deploy and runtime code sizes (spec §4.5 step 1).
func (b *Benchmark) extendWithFoundrySize(toolchain, project string, report FoundrySizeReport) {
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		size := report[name]
		selector := Selector{
			Project: project,
			Case:    name,
			Input:   &TestInput{Kind: InputDeployer, ContractIdentifier: name},
		}
		run := b.test(selector).run(toolchain, "", "", "")
		run.Size = append(run.Size, size.InitSize)
		run.RuntimeSize = append(run.RuntimeSize, size.RuntimeSize)
	}
}

func (b *Benchmark) projectLevelRun(toolchain, project string) *Run {
	selector := Selector{Project: project}
	return b.test(selector).run(toolchain, "", "", "")
}

func (b *Benchmark) extendWithCompilationTime(toolchain, project string, v CompilationTimeReport) {
	run := b.projectLevelRun(toolchain, project)
	run.CompilationTime = append(run.CompilationTime, uint64(v))
}

func (b *Benchmark) extendWithTestingTime(toolchain, project string, v TestingTimeReport) {
	run := b.projectLevelRun(toolchain, project)
	run.TestingTime = append(run.TestingTime, uint64(v))
}

func (b *Benchmark) extendWithBuildFailures(toolchain, project string, v BuildFailuresReport) {
	run := b.projectLevelRun(toolchain, project)
	run.BuildFailures += uint64(v)
}

func (b *Benchmark) extendWithTestFailures(toolchain, project string, v TestFailuresReport) {
	run := b.projectLevelRun(toolchain, project)
	run.TestFailures += uint64(v)
}

// RemoveZeroDeployGas drops tests that have no toolchain groups, drops
// deploy tests all of whose observations are zero (average size,
// runtime size and gas), interpreting them as non-deployable
// contracts, and computes each surviving deploy test's
// NonZeroGasValues tie-breaker (spec §3 invariant (e), §4.5 step 4).
// Runtime and project-level tests with groups are kept whatever their
// values.
func (b *Benchmark) RemoveZeroDeployGas() {
	for name, test := range b.Tests {
		if len(test.ToolchainGroups) == 0 {
			delete(b.Tests, name)
			continue
		}
		if !test.IsDeploy() {
			continue
		}

		test.NonZeroGasValues = 0
		anyNonZero := false
		for _, tg := range test.ToolchainGroups {
			toolchainHasNonZeroGas := false
			for _, cg := range tg.CodegenGroups {
				for _, vg := range cg.VersionedGroups {
					for _, eg := range vg.Executables {
						if eg.Run.AverageGas() != 0 {
							toolchainHasNonZeroGas = true
						}
						if eg.Run.AverageSize() != 0 || eg.Run.AverageRuntimeSize() != 0 || eg.Run.AverageGas() != 0 {
							anyNonZero = true
						}
					}
				}
			}
			if toolchainHasNonZeroGas {
				test.NonZeroGasValues++
			}
		}

		if !anyNonZero {
			delete(b.Tests, name)
		}
	}
}

// SortedTestNames returns every test key in lexicographic order, the
// iteration order every emitter in this package uses to stay
// byte-deterministic (spec §9 "Stable output").
func (b *Benchmark) SortedTestNames() []string {
	names := make([]string, 0, len(b.Tests))
	for name := range b.Tests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
