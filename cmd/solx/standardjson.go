package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/config"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/jsonemit"
	"github.com/r3e-network/solx-go/internal/library"
	"github.com/r3e-network/solx-go/internal/optimizer"
	"github.com/r3e-network/solx-go/internal/pipeline"
	"github.com/r3e-network/solx-go/internal/stdjson"
	"github.com/r3e-network/solx-go/internal/yul"
)

// runStandardJSON drives the --standard-json entrypoint (spec §6
// "Standard-JSON mode", §7 "Standard-JSON mode always emits a
// parseable output to stdout even on failure"): it always sets
// exitCode = 0, since every outcome — success or diagnostic-carrying
// failure — rides inside the printed JSON body rather than the
// process exit status.
func runStandardJSON(f *flags, loader *config.Loader, logger *zap.Logger) error {
	exitCode = 0

	raw, err := readStandardJSONInput(f.standardJSON)
	if err != nil {
		printStdJSONOutput(stdjson.Output{Errors: []stdjson.Error{{
			Severity: "error",
			Message:  err.Error(),
		}}})
		return nil
	}

	in, err := stdjson.UnmarshalInput(raw)
	if err != nil {
		printStdJSONOutput(stdjson.Output{Errors: []stdjson.Error{{
			Severity:  "error",
			ErrorCode: "json_parse_error",
			Message:   err.Error(),
		}}})
		return nil
	}

	out := compileStandardJSON(logger, in)
	printStdJSONOutput(out)
	return nil
}

func readStandardJSONInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printStdJSONOutput(out stdjson.Output) {
	data, err := stdjson.MarshalOutput(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "solx: marshaling standard-json output: %v\n", err)
		return
	}
	os.Stdout.Write(data)
	os.Stdout.Write([]byte("\n"))
}

// compileStandardJSON mirrors runCompile's file-mode pipeline but
// sourced entirely from in.Sources, returning diagnostics inline
// rather than via stderr/exit code. Solidity input reports the same
// frontend-not-embedded diagnostic flag mode does (spec §1 "Out of
// scope": the reference front-end is an external collaborator this
// driver never implements).
func compileStandardJSON(logger *zap.Logger, in stdjson.Input) stdjson.Output {
	if in.Language == stdjson.LanguageSolidity {
		return stdjson.Output{Errors: []stdjson.Error{frontendNotEmbeddedError()}}
	}

	version, err := catalog.ParseEVMVersion(defaultString(in.Settings.EVMVersion, "cancun"))
	if err != nil {
		return stdjson.Output{Errors: []stdjson.Error{{Severity: "error", ErrorCode: "config", Message: err.Error()}}}
	}

	project, err := buildProjectFromSources(in, version)
	if err != nil {
		return stdjson.Output{Errors: []stdjson.Error{errToStdjson(err)}}
	}

	libs, err := library.ParseNested(in.Settings.Libraries)
	if err != nil {
		return stdjson.Output{Errors: []stdjson.Error{{Severity: "error", ErrorCode: "config", Message: err.Error()}}}
	}
	project.Libraries = libs

	opts, err := optionsFromStandardJSON(in, version)
	if err != nil {
		return stdjson.Output{Errors: []stdjson.Error{{Severity: "error", ErrorCode: "config", Message: err.Error()}}}
	}

	build, err := compileAndAssemble(logger, project, opts)
	if err != nil {
		return stdjson.Output{Errors: []stdjson.Error{errToStdjson(err)}}
	}

	return jsonemit.Emit(build, opts.OutputSelection)
}

// buildProjectFromSources lowers every standard-JSON source entry,
// dispatching on in.Language the same way buildProjectFromFiles
// dispatches on --yul/--llvm-ir, but reading content from the request
// body instead of the filesystem (spec §3 "S. Standard-JSON schema").
func buildProjectFromSources(in stdjson.Input, evmVersion catalog.EVMVersion) (*pipeline.Project, error) {
	project := &pipeline.Project{
		Language:        in.Language,
		FrontEndVersion: executableName + "-" + version + "+" + evmVersion.String(),
		Contracts:       map[string]*pipeline.Contract{},
	}

	for _, path := range stdjson.SortedKeys(in.Sources) {
		src := in.Sources[path]
		if src.Content == nil {
			return nil, errs.New(errs.KindInputIO, path,
				"no content provided and URL resolution is not available in this driver")
		}

		switch in.Language {
		case stdjson.LanguageYul:
			parser, err := yul.NewParser(path, *src.Content)
			if err != nil {
				return nil, err
			}
			obj, err := parser.ParseObject()
			if err != nil {
				return nil, err
			}
			contract, err := lowerYulContract(path, obj, evmVersion)
			if err != nil {
				return nil, err
			}
			project.Contracts[contract.Name.FullPath()] = contract

		case stdjson.LanguageLLVMIR:
			runtime, err := ir.LowerRawLLVMIR(ir.RawIR{Segment: catalog.SegmentRuntime, Text: *src.Content})
			if err != nil {
				return nil, err
			}
			deploy, err := ir.LowerRawLLVMIR(ir.RawIR{Segment: catalog.SegmentDeploy, RuntimeName: path})
			if err != nil {
				return nil, err
			}
			name := pipeline.ContractName{Path: path}
			project.Contracts[name.FullPath()] = &pipeline.Contract{Name: name, Runtime: runtime, Deploy: deploy}

		default:
			return nil, errs.New(errs.KindConfig, path, fmt.Sprintf("unsupported language %q", in.Language))
		}
	}

	return project, nil
}

// optionsFromStandardJSON projects in.Settings onto pipeline.Options,
// the standard-JSON counterpart to resolveOptions. Flag-mode
// SOLX_*/--config precedence does not apply here: standard-JSON
// requests are self-contained per spec §6.
func optionsFromStandardJSON(in stdjson.Input, version catalog.EVMVersion) (pipeline.Options, error) {
	hashKind, err := catalog.ParseMetadataHashKind(defaultString(in.Settings.Metadata.HashKind, "ipfs"))
	if err != nil {
		return pipeline.Options{}, err
	}

	level := catalog.Level3
	if in.Settings.Optimizer.Level != "" {
		level, err = catalog.ParseOptimizationLevel(in.Settings.Optimizer.Level)
		if err != nil {
			return pipeline.Options{}, err
		}
	}
	settings := optimizer.New(level, in.Settings.Optimizer.SizeFallback, false, false)

	selection := in.Settings.OutputSelection
	if selection == nil {
		selection = stdjson.OutputSelection{}
	}

	return pipeline.Options{
		OutputSelection:  selection,
		EVMVersion:       version,
		MetadataHashKind: hashKind,
		AppendCBOR:       in.Settings.Metadata.AppendCBOR,
		Optimizer:        settings,
		LLVMOptions:      in.Settings.LLVMOptions,
	}, nil
}

// errToStdjson renders a top-level pipeline/config error (not a
// per-contract one — those are already folded into jsonemit.Emit's
// output) into the standard-JSON error shape.
func errToStdjson(err error) stdjson.Error {
	var typed *errs.Error
	if errors.As(err, &typed) {
		e := stdjson.Error{
			Severity:         "error",
			ErrorCode:        string(typed.Kind),
			Message:          typed.Message,
			FormattedMessage: typed.Error(),
		}
		if typed.Path != "" {
			e.SourceLocation = &stdjson.SourceLocation{File: typed.Path}
		}
		return e
	}
	return stdjson.Error{Severity: "error", Message: err.Error(), FormattedMessage: err.Error()}
}

func frontendNotEmbeddedError() stdjson.Error {
	return stdjson.Error{
		Severity:  "error",
		ErrorCode: string(errs.KindFrontend),
		Component: "frontend",
		Message:   frontendNotEmbeddedErr().Error(),
	}
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
