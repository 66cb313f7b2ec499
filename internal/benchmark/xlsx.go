package benchmark

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Workbook is the eight-worksheet benchmark output of spec §4.5
// "Spreadsheet emitter": build failures, test failures, runtime gas,
// deploy gas, runtime size, deploy size, compilation time, testing
// time — grounded on
// original_source/solx-benchmark-converter/src/output/xlsx/mod.rs's
// `Xlsx`.
type Workbook struct {
	file *excelize.File

	BuildFailures   *Worksheet
	TestFailures    *Worksheet
	RuntimeGas      *Worksheet
	DeployGas       *Worksheet
	RuntimeSize     *Worksheet
	DeploySize      *Worksheet
	CompilationTime *Worksheet
	TestingTime     *Worksheet

	toolchains    []string
	toolchainIDs  map[string]int
}

// NewWorkbook constructs the eight worksheets with their fixed header
// columns, matching mod.rs's `Xlsx::new` column layout.
func NewWorkbook() (*Workbook, error) {
	file := excelize.NewFile()

	project := headerColumn{"Project", 15}
	contract := headerColumn{"Contract", 60}
	function := headerColumn{"Function", 40}

	w := &Workbook{
		file:         file,
		toolchainIDs: map[string]int{},
	}

	var err error
	if w.BuildFailures, err = newWorksheet(file, "Build Failures", []headerColumn{project}); err != nil {
		return nil, err
	}
	if w.TestFailures, err = newWorksheet(file, "Test Failures", []headerColumn{project}); err != nil {
		return nil, err
	}
	if w.RuntimeGas, err = newWorksheet(file, "Runtime Gas", []headerColumn{project, contract, function}); err != nil {
		return nil, err
	}
	if w.DeployGas, err = newWorksheet(file, "Deploy Gas", []headerColumn{project, contract}); err != nil {
		return nil, err
	}
	if w.RuntimeSize, err = newWorksheet(file, "Runtime Size", []headerColumn{project, contract}); err != nil {
		return nil, err
	}
	if w.DeploySize, err = newWorksheet(file, "Deploy Size", []headerColumn{project, contract}); err != nil {
		return nil, err
	}
	if w.CompilationTime, err = newWorksheet(file, "Compilation Time", []headerColumn{project}); err != nil {
		return nil, err
	}
	if w.TestingTime, err = newWorksheet(file, "Testing Time", []headerColumn{project}); err != nil {
		return nil, err
	}

	// excelize.NewFile() seeds a default "Sheet1"; every real sheet is
	// added above, so the placeholder is no longer needed.
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	return w, nil
}

// worksheets returns every worksheet in the fixed order mod.rs's
// `finalize`/`set_diffs` loop lists them.
func (w *Workbook) worksheets() []*Worksheet {
	return []*Worksheet{
		w.BuildFailures, w.TestFailures,
		w.RuntimeGas, w.DeployGas,
		w.RuntimeSize, w.DeploySize,
		w.CompilationTime, w.TestingTime,
	}
}

// toolchainID allocates or reuses a stable column ID for name,
// interned on first encounter (spec §4.5 "Columns are toolchains,
// interned on first encounter, allocating stable IDs").
func (w *Workbook) toolchainID(name string) int {
	if id, ok := w.toolchainIDs[name]; ok {
		return id
	}
	id := len(w.toolchainIDs)
	w.toolchainIDs[name] = id
	w.toolchains = append(w.toolchains, name)
	return id
}

// BuildWorkbook projects benchmark into a workbook, applying the
// comparison-pairing diff columns for provenance (spec §4.5 "Spreadsheet
// emitter"; Open Question resolution in comparison.go), grounded on
// mod.rs's `TryFrom<(Benchmark, Source)>`.
func BuildWorkbook(b *Benchmark, provenance Provenance) (*Workbook, error) {
	w, err := NewWorkbook()
	if err != nil {
		return nil, err
	}

	for _, testName := range b.SortedTestNames() {
		test := b.Tests[testName]
		if err := w.writeTest(test); err != nil {
			return nil, fmt.Errorf("benchmark: writing test %q: %w", testName, err)
		}
	}

	for _, ws := range w.worksheets() {
		if err := ws.SetTotals(len(w.toolchainIDs)); err != nil {
			return nil, err
		}
	}

	pairs := ComparisonPairs(provenance, len(w.toolchains))
	for index, pair := range pairs {
		for _, ws := range w.worksheets() {
			if err := ws.SetDiffs(pair.ReferenceID, w.toolchains[pair.ReferenceID], pair.CandidateID, w.toolchains[pair.CandidateID], len(w.toolchains), index); err != nil {
				return nil, err
			}
		}
	}

	return w, nil
}

// noisyRowBlacklist skips known-noisy fallback-function benchmarks,
// carried from original_source/solx-benchmark-converter/src/output/
// xlsx/mod.rs's hard-coded (project, contract, function) skip list —
// it only suppresses specific rows, it does not change merge
// semantics (SPEC_FULL.md §4 "Supplemented features").
var noisyRowBlacklist = [][3]string{
	{"aave-v3", "lib/solidity-utils/lib/openzeppelin-contracts-upgradeable/lib/openzeppelin-contracts/contracts/proxy/transparent/TransparentUpgradeableProxy.sol:TransparentUpgradeableProxy", "fallback()"},
	{"solady", "test/utils/mocks/MockMulticallable.sol:MockMulticallable", "multicallBrutalized(bytes[])"},
	{"solady", "src/accounts/ERC6551Proxy.sol:ERC6551Proxy", "fallback()"},
}

func isBlacklisted(project, contract, function string) bool {
	for _, row := range noisyRowBlacklist {
		if row[0] == project && row[1] == contract && row[2] == function {
			return true
		}
	}
	return false
}

func (w *Workbook) writeTest(test *Test) error {
	isDeploy := test.IsDeploy()
	project := test.Metadata.Selector.Project
	var contract, function *string
	if test.Metadata.Selector.Case != "" {
		c := test.Metadata.Selector.Case
		contract = &c
	}
	if test.Metadata.Selector.Input != nil {
		if name := test.Metadata.Selector.Input.RuntimeName(); name != "" {
			function = &name
		}
	}
	if contract != nil && function != nil && isBlacklisted(project, *contract, *function) {
		return nil
	}

	codegenNames := make([]string, 0, len(test.ToolchainGroups))
	for name := range test.ToolchainGroups {
		codegenNames = append(codegenNames, name)
	}
	sort.Strings(codegenNames)

	for _, toolchainName := range codegenNames {
		toolchainGroup := test.ToolchainGroups[toolchainName]

		codegens := sortedKeys(toolchainGroup.CodegenGroups)
		for _, codegenName := range codegens {
			codegenGroup := toolchainGroup.CodegenGroups[codegenName]

			versions := sortedKeys(codegenGroup.VersionedGroups)
			for _, versionName := range versions {
				versionedGroup := codegenGroup.VersionedGroups[versionName]

				optimizations := sortedKeys(versionedGroup.Executables)
				for _, optimizationName := range optimizations {
					executableGroup := versionedGroup.Executables[optimizationName]

					fullName := toolchainName
					if codegenName != "" {
						fullName += "-" + codegenName
					}
					if versionName != "" {
						fullName += "-" + versionName
					}
					if optimizationName != "" {
						fullName += "-" + optimizationName
					}
					toolchainID := w.toolchainID(fullName)

					run := executableGroup.Run
					if len(run.CompilationTime) > 0 {
						if err := w.CompilationTime.AddToolchainColumn(fullName, toolchainID); err != nil {
							return err
						}
						if err := w.CompilationTime.WriteTestValue(project, nil, nil, toolchainID, run.AverageCompilationTime()); err != nil {
							return err
						}
					}
					if len(run.TestingTime) > 0 {
						if err := w.TestingTime.AddToolchainColumn(fullName, toolchainID); err != nil {
							return err
						}
						if err := w.TestingTime.WriteTestValue(project, nil, nil, toolchainID, run.AverageTestingTime()); err != nil {
							return err
						}
					}

					if err := w.BuildFailures.AddToolchainColumn(fullName, toolchainID); err != nil {
						return err
					}
					if err := w.BuildFailures.WriteTestValue(project, nil, nil, toolchainID, run.BuildFailures); err != nil {
						return err
					}
					if err := w.TestFailures.AddToolchainColumn(fullName, toolchainID); err != nil {
						return err
					}
					if err := w.TestFailures.WriteTestValue(project, nil, nil, toolchainID, run.TestFailures); err != nil {
						return err
					}

					if contract == nil && function == nil {
						continue
					}

					if isDeploy {
						if test.NonZeroGasValues > 0 {
							if err := w.DeployGas.AddToolchainColumn(fullName, toolchainID); err != nil {
								return err
							}
							if err := w.DeployGas.WriteTestValue(project, contract, nil, toolchainID, run.AverageGas()); err != nil {
								return err
							}
						}
					} else {
						if err := w.RuntimeGas.AddToolchainColumn(fullName, toolchainID); err != nil {
							return err
						}
						if err := w.RuntimeGas.WriteTestValue(project, contract, function, toolchainID, run.AverageGas()); err != nil {
							return err
						}
					}

					if len(run.Size) > 0 {
						if err := w.DeploySize.AddToolchainColumn(fullName, toolchainID); err != nil {
							return err
						}
						if err := w.DeploySize.WriteTestValue(project, contract, nil, toolchainID, run.AverageSize()); err != nil {
							return err
						}
					}
					if len(run.RuntimeSize) > 0 {
						if err := w.RuntimeSize.AddToolchainColumn(fullName, toolchainID); err != nil {
							return err
						}
						if err := w.RuntimeSize.WriteTestValue(project, contract, nil, toolchainID, run.AverageRuntimeSize()); err != nil {
							return err
						}
					}
				}
			}
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save writes the workbook to path.
func (w *Workbook) Save(path string) error {
	return w.file.SaveAs(path)
}
