// Package benchmark implements the benchmark aggregation core of spec
// §4.5: a many-to-one merge from heterogeneous tool reports into a
// canonical test/toolchain/codegen/version/optimization hierarchy,
// with statistical reduction and a spreadsheet emitter for
// cross-toolchain diff tables.
package benchmark

import "fmt"

// InputKind distinguishes what a test measures, per spec §3
// "input_kind is one of {None, Deployer(contract_id),
// Runtime(index,function_name)}".
type InputKind int

const (
	InputNone InputKind = iota
	InputDeployer
	InputRuntime
)

// TestInput is the optional per-test payload identifying a deployer
// or a specific runtime call; the zero value (InputNone) means the
// test is project-level (timing/failure reports, spec §4.5 step 1).
type TestInput struct {
	Kind InputKind

	ContractIdentifier string // set when Kind == InputDeployer

	InputIndex int    // set when Kind == InputRuntime
	Name       string // runtime function name, set when Kind == InputRuntime
}

// IsDeploy reports whether this input identifies a deployment.
func (t TestInput) IsDeploy() bool {
	return t.Kind == InputDeployer
}

// RuntimeName returns the runtime function name, or "" if this input
// does not identify a runtime call.
func (t TestInput) RuntimeName() string {
	if t.Kind != InputRuntime {
		return ""
	}
	return t.Name
}

func (t TestInput) String() string {
	switch t.Kind {
	case InputDeployer:
		return fmt.Sprintf("deploy:%s", t.ContractIdentifier)
	case InputRuntime:
		return fmt.Sprintf("runtime:%d:%s", t.InputIndex, t.Name)
	default:
		return ""
	}
}

// Selector is the hierarchical test key of spec §3: "project -> case
// -> input_kind".
type Selector struct {
	Project string
	Case    string // "" if absent
	Input   *TestInput
}

// Key renders the selector into the test-node map key spec §4.5 step 1
// describes as `project[:case[/input]]`.
func (s Selector) Key() string {
	key := s.Project
	if s.Case != "" {
		key += ":" + s.Case
	}
	if s.Input != nil && s.Input.Kind != InputNone {
		key += "/" + s.Input.String()
	}
	return key
}

// Run holds one (toolchain, codegen, version, optimization) leaf's
// observations: multisets of sizes/gas/times plus scalar failure
// counters (spec §3 "Benchmark test entity... Run"), grounded on
// original_source/solx-benchmark-converter/src/model/.../run.rs.
type Run struct {
	Size            []uint64 `json:"size,omitempty"`
	RuntimeSize     []uint64 `json:"runtime_size,omitempty"`
	Gas             []uint64 `json:"gas,omitempty"`
	CompilationTime []uint64 `json:"compilation_time,omitempty"`
	TestingTime     []uint64 `json:"testing_time,omitempty"`
	BuildFailures   uint64   `json:"build_failures,omitempty"`
	TestFailures    uint64   `json:"test_failures,omitempty"`
}

// gasOverflowMarker is the cutoff spec §8 "Merge idempotence" and
// §4.5 step 3 both name: "gas samples >= 2^32 are dropped as overflow
// markers" (tool reports use a value at or beyond this as a sentinel
// for "not measured", not a real gas figure).
const gasOverflowMarker = uint64(1) << 32

// Extend merges other into r: vector fields concatenate (gas samples
// at or above the overflow marker are dropped), scalar failure
// counters sum (spec §4.5 step 3 "Run-merge rule").
func (r *Run) Extend(other Run) {
	r.Size = append(r.Size, other.Size...)
	r.RuntimeSize = append(r.RuntimeSize, other.RuntimeSize...)
	for _, g := range other.Gas {
		if g < gasOverflowMarker {
			r.Gas = append(r.Gas, g)
		}
	}
	r.CompilationTime = append(r.CompilationTime, other.CompilationTime...)
	r.TestingTime = append(r.TestingTime, other.TestingTime...)
	r.BuildFailures += other.BuildFailures
	r.TestFailures += other.TestFailures
}

// average is the shared integer-division reduction spec §4.5
// "Reductions" specifies: "integer divisions Σ/N (N>0), per field
// independently; N=0 yields 0."
func average(values []uint64) uint64 {
	if len(values) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range values {
		sum += v
	}
	return sum / uint64(len(values))
}

func (r Run) AverageSize() uint64            { return average(r.Size) }
func (r Run) AverageRuntimeSize() uint64      { return average(r.RuntimeSize) }
func (r Run) AverageGas() uint64             { return average(r.Gas) }
func (r Run) AverageCompilationTime() uint64 { return average(r.CompilationTime) }
func (r Run) AverageTestingTime() uint64     { return average(r.TestingTime) }

// ExecutableGroup is the innermost node of the hierarchy, holding one
// Run per (toolchain, codegen, version, optimization) path.
type ExecutableGroup struct {
	Run Run `json:"run"`
}

// VersionedGroup fans out by front-end/compiler version.
type VersionedGroup struct {
	// Executables maps optimization-mode name ("" if none) to its group.
	Executables map[string]*ExecutableGroup `json:"executables"`
}

func newVersionedGroup() *VersionedGroup {
	return &VersionedGroup{Executables: map[string]*ExecutableGroup{}}
}

func (v *VersionedGroup) executable(name string) *ExecutableGroup {
	g, ok := v.Executables[name]
	if !ok {
		g = &ExecutableGroup{}
		v.Executables[name] = g
	}
	return g
}

// CodegenGroup fans out by code-generation backend name.
type CodegenGroup struct {
	// VersionedGroups maps version name ("" if none) to its group.
	VersionedGroups map[string]*VersionedGroup `json:"versioned_groups"`
}

func newCodegenGroup() *CodegenGroup {
	return &CodegenGroup{VersionedGroups: map[string]*VersionedGroup{}}
}

func (c *CodegenGroup) versioned(name string) *VersionedGroup {
	g, ok := c.VersionedGroups[name]
	if !ok {
		g = newVersionedGroup()
		c.VersionedGroups[name] = g
	}
	return g
}

// ToolchainGroup fans out by toolchain name (solx, solc, etc).
type ToolchainGroup struct {
	// CodegenGroups maps codegen name ("" if none) to its group.
	CodegenGroups map[string]*CodegenGroup `json:"codegen_groups"`
}

func newToolchainGroup() *ToolchainGroup {
	return &ToolchainGroup{CodegenGroups: map[string]*CodegenGroup{}}
}

func (t *ToolchainGroup) codegen(name string) *CodegenGroup {
	g, ok := t.CodegenGroups[name]
	if !ok {
		g = newCodegenGroup()
		t.CodegenGroups[name] = g
	}
	return g
}

// Metadata is the descriptive payload carried alongside a Selector —
// spec.md's hierarchy keys tests by the selector alone, but every test
// node also needs to remember its own selector to answer
// is-this-a-deploy-test and project/case/function questions when the
// spreadsheet emitter walks the merged tree (see xlsx.go).
type Metadata struct {
	Selector Selector
	Notes    []string
}

// Test is one node of the canonical hierarchy: a selector plus its
// nested toolchain groups (spec §3 "Benchmark test entity").
type Test struct {
	Metadata       Metadata
	ToolchainGroups map[string]*ToolchainGroup

	// NonZeroGasValues counts toolchains reporting a non-zero average
	// gas for a deploy test — spec §4.5 step 4's tie-breaker field used
	// by the spreadsheet emitter.
	NonZeroGasValues int
}

func newTest(selector Selector) *Test {
	return &Test{
		Metadata:        Metadata{Selector: selector},
		ToolchainGroups: map[string]*ToolchainGroup{},
	}
}

// IsDeploy reports whether this test measures a contract deployment.
func (t *Test) IsDeploy() bool {
	return t.Metadata.Selector.Input != nil && t.Metadata.Selector.Input.IsDeploy()
}

func (t *Test) toolchain(name string) *ToolchainGroup {
	g, ok := t.ToolchainGroups[name]
	if !ok {
		g = newToolchainGroup()
		t.ToolchainGroups[name] = g
	}
	return g
}

// run locates (or creates) the Run at the end of the
// (toolchain, codegen, version, optimization) path, per spec §4.5
// step 2: "For each key, locate or create the test node, then the
// (toolchain, codegen?, version?, optimization?) path, then the Run."
func (t *Test) run(toolchain, codegen, version, optimization string) *Run {
	return &t.toolchain(toolchain).codegen(codegen).versioned(version).executable(optimization).Run
}
