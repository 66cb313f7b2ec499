package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/config"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/legacyasm"
	"github.com/r3e-network/solx-go/internal/metadata"
	"github.com/r3e-network/solx-go/internal/pipeline"
	"github.com/r3e-network/solx-go/internal/yul"
)

// runCompile is the flag-mode entrypoint spec §6's CLI surface
// drives: mode selection, then per-contract lowering, then
// compile_project, then metadata assembly, then writing the selected
// outputs. --standard-json short-circuits into runStandardJSON before
// any of the flag-mode machinery below runs.
func runCompile(cmd *cobra.Command, f *flags, loader *config.Loader, args []string) error {
	logger := newLogger(f.debug)
	defer logger.Sync() //nolint:errcheck

	if err := bindLoaderFlags(cmd, loader); err != nil {
		exitCode = 1
		return err
	}

	if f.standardJSON != "" {
		return runStandardJSON(f, loader, logger)
	}

	if len(args) == 0 {
		exitCode = 1
		return fmt.Errorf("no input files given")
	}

	version, err := catalog.ParseEVMVersion(f.evmVersion)
	if err != nil {
		exitCode = 1
		return err
	}

	project, err := buildProjectFromFiles(f, args, version)
	if err != nil {
		exitCode = 1
		return err
	}

	libs, err := parseLibraries(f.libraries)
	if err != nil {
		exitCode = 1
		return err
	}
	project.Libraries = libs

	opts, err := resolveOptions(f, loader, version)
	if err != nil {
		exitCode = 1
		return err
	}

	build, err := compileAndAssemble(logger, project, opts)
	if err != nil {
		exitCode = 1
		return err
	}

	if len(build.Errors) > 0 {
		exitCode = 1
		for _, path := range sortedErrorKeys(build.Errors) {
			fmt.Fprintf(os.Stderr, "solx: %s: %v\n", path, build.Errors[path])
		}
	}

	if dir := loader.DebugOutputDir(); dir != "" {
		if err := writeDebugArtifacts(dir, build); err != nil {
			logger.Warn("writing debug artifacts", zap.Error(err))
		}
	}

	return writeFlagModeOutput(f, build)
}

// bindLoaderFlags gives the relevant flags precedence over
// environment variables and the config file (spec §1 "Configuration":
// "flag > env > file > default").
func bindLoaderFlags(cmd *cobra.Command, loader *config.Loader) error {
	for key, flagName := range map[string]string{
		"optimization":               "optimization",
		"optimization_size_fallback": "size-fallback",
		"debug_output_dir":           "debug-output-dir",
	} {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := loader.BindFlag(key, flag); err != nil {
			return fmt.Errorf("binding --%s: %w", flagName, err)
		}
	}
	return nil
}

// buildProjectFromFiles dispatches on the mode flags to one of the
// three supported direct-input paths: Yul, raw LLVM-IR, or a captured
// legacy-assembly tree. Plain Solidity (no mode flag) needs the
// reference front-end to produce one of those three forms in the
// first place, and that front-end is an external collaborator this
// driver does not embed (spec §1 "Out of scope"), so that path reports
// a frontend-kind diagnostic rather than attempting to parse Solidity
// itself.
func buildProjectFromFiles(f *flags, paths []string, version catalog.EVMVersion) (*pipeline.Project, error) {
	modes := 0
	for _, on := range []bool{f.yul, f.llvmIR, f.legacyAssembly} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return nil, fmt.Errorf("--yul, --llvm-ir, and --legacy-assembly are mutually exclusive")
	}
	switch {
	case f.yul:
		return buildYulProject(paths, version)
	case f.llvmIR:
		return buildLLVMIRProject(paths)
	case f.legacyAssembly:
		return buildLegacyAssemblyProject(paths, version)
	default:
		return nil, frontendNotEmbeddedErr()
	}
}

func frontendNotEmbeddedErr() error {
	return errs.New(errs.KindFrontend, "",
		"no Solidity front-end is embedded in this build; pass --yul, --llvm-ir, or --legacy-assembly, "+
			"or drive this binary through --standard-json with language \"Yul\" or \"LLVMIR\"")
}

func buildYulProject(paths []string, version catalog.EVMVersion) (*pipeline.Project, error) {
	project := &pipeline.Project{Contracts: map[string]*pipeline.Contract{}}
	for _, path := range paths {
		src, err := readSource(path)
		if err != nil {
			return nil, err
		}
		parser, err := yul.NewParser(path, src)
		if err != nil {
			return nil, err
		}
		obj, err := parser.ParseObject()
		if err != nil {
			return nil, err
		}
		contract, err := lowerYulContract(path, obj, version)
		if err != nil {
			return nil, err
		}
		project.Contracts[contract.Name.FullPath()] = contract
	}
	return project, nil
}

// lowerYulContract lowers a top-level Yul object into deploy/runtime
// modules, per spec §3's invariant (a): "Every Yul deploy object has
// exactly one embedded runtime object." An object with no nested
// sub-object is itself the runtime (a library with no constructor
// logic of its own has no deploy segment).
func lowerYulContract(path string, obj *yul.Object, version catalog.EVMVersion) (*pipeline.Contract, error) {
	name := pipeline.ContractName{Path: path, Name: obj.Name}
	contract := &pipeline.Contract{Name: name}

	if len(obj.Objects) == 0 {
		runtime, err := ir.LowerYulObject(obj, catalog.SegmentRuntime, path, version)
		if err != nil {
			return nil, err
		}
		contract.Runtime = runtime
		return contract, nil
	}

	runtime, err := ir.LowerYulObject(obj.Objects[0], catalog.SegmentRuntime, path, version)
	if err != nil {
		return nil, err
	}
	deploy, err := ir.LowerYulObject(obj, catalog.SegmentDeploy, path, version)
	if err != nil {
		return nil, err
	}
	contract.Runtime = runtime
	contract.Deploy = deploy
	return contract, nil
}

// buildLLVMIRProject treats each input file as a contract's runtime
// segment and synthesizes the matching deploy stub, per spec §3's
// "For LLVM-IR deploy contracts, a synthesized minimal deploy stub is
// generated that references the runtime identifier" — the CLI has no
// file-naming convention of its own for deploy-vs-runtime LLVM-IR
// sources, so the synthesized deploy stub is always generated rather
// than guessed from a filename suffix.
func buildLLVMIRProject(paths []string) (*pipeline.Project, error) {
	project := &pipeline.Project{Contracts: map[string]*pipeline.Contract{}}
	for _, path := range paths {
		src, err := readSource(path)
		if err != nil {
			return nil, err
		}
		runtime, err := ir.LowerRawLLVMIR(ir.RawIR{Segment: catalog.SegmentRuntime, Text: src})
		if err != nil {
			return nil, err
		}
		deploy, err := ir.LowerRawLLVMIR(ir.RawIR{Segment: catalog.SegmentDeploy, RuntimeName: path})
		if err != nil {
			return nil, err
		}
		name := pipeline.ContractName{Path: path}
		project.Contracts[name.FullPath()] = &pipeline.Contract{Name: name, Runtime: runtime, Deploy: deploy}
	}
	return project, nil
}

// buildLegacyAssemblyProject lowers a front-end-emitted legacy-assembly
// JSON tree per file (spec §3/§4.2 "Legacy assembly"). This driver
// never produces legacy assembly itself — the reference front-end is
// the only thing that emits it, and that front-end is an external
// collaborator this driver does not embed (spec §1 "Out of scope") —
// so --legacy-assembly exists purely to let a caller hand this driver
// a tree it captured from that front-end directly, the same role
// --yul/--llvm-ir play for their own intermediate forms.
func buildLegacyAssemblyProject(paths []string, version catalog.EVMVersion) (*pipeline.Project, error) {
	project := &pipeline.Project{Contracts: map[string]*pipeline.Contract{}}
	for _, path := range paths {
		src, err := readSource(path)
		if err != nil {
			return nil, err
		}
		asm, err := legacyasm.Parse([]byte(src))
		if err != nil {
			return nil, errs.Wrap(errs.KindInputIO, path, err)
		}
		contract, err := lowerLegacyContract(path, asm, version)
		if err != nil {
			return nil, err
		}
		project.Contracts[contract.Name.FullPath()] = contract
	}
	return project, nil
}

// lowerLegacyContract mirrors lowerYulContract's deploy/runtime split:
// a deploy assembly embeds its runtime sub-assembly under key "0"
// (solc's own convention for the first, and in practice only, nested
// sub-assembly of a contract's creation code); an assembly with no
// sub-assemblies of its own is a library with no constructor logic and
// is lowered as the runtime segment alone.
func lowerLegacyContract(path string, asm *legacyasm.Assembly, version catalog.EVMVersion) (*pipeline.Contract, error) {
	name := pipeline.ContractName{Path: path}
	contract := &pipeline.Contract{Name: name}

	if len(asm.SubAssemblies) == 0 {
		runtime, err := ir.LowerLegacyAssembly(asm, catalog.SegmentRuntime, path, version)
		if err != nil {
			return nil, err
		}
		contract.Runtime = runtime
		return contract, nil
	}

	sub, ok := asm.SubAssemblies["0"]
	if !ok {
		return nil, errs.New(errs.KindInputIO, path, `legacy assembly has sub-assemblies but none keyed "0"`)
	}
	runtime, err := ir.LowerLegacyAssembly(sub, catalog.SegmentRuntime, path, version)
	if err != nil {
		return nil, err
	}
	deploy, err := ir.LowerLegacyAssembly(asm, catalog.SegmentDeploy, path, version)
	if err != nil {
		return nil, err
	}
	contract.Runtime = runtime
	contract.Deploy = deploy
	return contract, nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(errs.KindInputIO, path, err)
	}
	if len(data) == 0 {
		return "", errs.New(errs.KindInputIO, path, "empty source file")
	}
	return string(data), nil
}

// compileAndAssemble runs the orchestrator, then finishes artifact
// assembly (spec §4.4): library linking on both segments, then the
// CBOR metadata trailer attached exactly once to runtime bytecode.
func compileAndAssemble(logger *zap.Logger, project *pipeline.Project, opts pipeline.Options) (*pipeline.Build, error) {
	orch := pipeline.New(logger)
	build, err := orch.CompileProject(context.Background(), project, opts)
	if err != nil {
		return nil, err
	}

	for _, artifact := range build.Contracts {
		if artifact.Deploy != nil {
			linked := metadata.Link(artifact.Deploy.Bytecode, artifact.Name.Path, artifact.Deploy.LibraryRefs, project.Libraries)
			artifact.Deploy.Bytecode = linked.Bytecode
			artifact.Unresolved = append(artifact.Unresolved, linked.Unresolved...)
		}
		if artifact.Runtime != nil {
			metaJSON := artifact.MetadataJSON
			if len(metaJSON) == 0 {
				metaJSON, err = defaultMetadataJSON(project, opts, artifact.Name)
				if err != nil {
					return nil, err
				}
			}
			trailer, err := metadata.BuildTrailer(metadata.Settings{
				AppendCBOR: opts.AppendCBOR,
				HashKind:   opts.MetadataHashKind,
				Version: metadata.VersionInfo{
					ExecutableName:    executableName,
					ExecutableVersion: version,
					FrontEndVersion:   project.FrontEndVersion,
				},
			}, metaJSON)
			if err != nil {
				return nil, err
			}
			linked := metadata.Link(artifact.Runtime.Bytecode, artifact.Name.Path, artifact.Runtime.LibraryRefs, project.Libraries)
			linked.Bytecode = metadata.AttachToRuntime(linked.Bytecode, trailer)
			artifact.Runtime.Bytecode = linked.Bytecode
			artifact.Unresolved = append(artifact.Unresolved, linked.Unresolved...)
		}
	}
	return build, nil
}

// defaultMetadataJSON synthesizes a minimal metadata document when no
// front-end supplied one (the --yul/--llvm-ir paths never go through
// a front-end at all), so the metadata hash in the CBOR trailer still
// covers something meaningful rather than an empty byte string.
func defaultMetadataJSON(project *pipeline.Project, opts pipeline.Options, name pipeline.ContractName) ([]byte, error) {
	doc := map[string]any{
		"compiler": map[string]string{"version": version},
		"contract": name.FullPath(),
		"settings": map[string]any{
			"evmVersion": opts.EVMVersion.String(),
			"optimizer": map[string]any{
				"level":        string(opts.Optimizer.Level),
				"sizeFallback": opts.Optimizer.SizeFallback,
			},
		},
	}
	return json.Marshal(doc)
}

func sortedErrorKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeFlagModeOutput prints or writes (with --output-dir) the
// selected fields for every built contract.
func writeFlagModeOutput(f *flags, build *pipeline.Build) error {
	if f.outputDir == "" {
		for _, a := range build.Contracts {
			if f.bin && a.Deploy != nil {
				fmt.Printf("%s:\n%s\n", a.Name.FullPath(), hex.EncodeToString(a.Deploy.Bytecode))
			}
			if f.binRuntime && a.Runtime != nil {
				fmt.Printf("%s (runtime):\n%s\n", a.Name.FullPath(), hex.EncodeToString(a.Runtime.Bytecode))
			}
			if f.metadataOut && len(a.MetadataJSON) > 0 {
				fmt.Printf("%s (metadata):\n%s\n", a.Name.FullPath(), string(a.MetadataJSON))
			}
		}
		return nil
	}

	if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating --output-dir: %w", err)
	}
	for _, a := range build.Contracts {
		base := filepath.Join(f.outputDir, contractFileStem(a.Name))
		if f.bin && a.Deploy != nil {
			if err := writeOutputFile(base+".bin", []byte(hex.EncodeToString(a.Deploy.Bytecode)), f.overwrite); err != nil {
				return err
			}
		}
		if f.binRuntime && a.Runtime != nil {
			if err := writeOutputFile(base+".bin-runtime", []byte(hex.EncodeToString(a.Runtime.Bytecode)), f.overwrite); err != nil {
				return err
			}
		}
		if f.metadataOut && len(a.MetadataJSON) > 0 {
			if err := writeOutputFile(base+"_meta.json", a.MetadataJSON, f.overwrite); err != nil {
				return err
			}
		}
	}
	return nil
}

func contractFileStem(name pipeline.ContractName) string {
	stem := strings.TrimSuffix(filepath.Base(name.Path), filepath.Ext(name.Path))
	if name.Name != "" {
		stem += "_" + name.Name
	}
	return stem
}

func writeOutputFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing file %s (pass --overwrite)", path)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// writeDebugArtifacts dumps per-contract bytecode under a
// UUID-named subdirectory of dir, per SPEC_FULL.md's domain-stack
// entry for google/uuid ("UUID for debug-output directory naming") —
// every invocation gets its own directory so repeated runs with
// --debug-output-dir never collide.
func writeDebugArtifacts(dir string, build *pipeline.Build) error {
	runDir := filepath.Join(dir, uuid.NewString())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	for _, a := range build.Contracts {
		stem := contractFileStem(a.Name)
		if a.Deploy != nil {
			if err := os.WriteFile(filepath.Join(runDir, stem+".deploy.hex"), []byte(hex.EncodeToString(a.Deploy.Bytecode)), 0o644); err != nil {
				return err
			}
		}
		if a.Runtime != nil {
			if err := os.WriteFile(filepath.Join(runDir, stem+".runtime.hex"), []byte(hex.EncodeToString(a.Runtime.Bytecode)), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}
