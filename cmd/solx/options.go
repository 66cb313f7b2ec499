package main

import (
	"fmt"
	"strings"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/config"
	"github.com/r3e-network/solx-go/internal/library"
	"github.com/r3e-network/solx-go/internal/pipeline"
	"github.com/r3e-network/solx-go/internal/stdjson"
)

// resolveOptions turns the flag-mode CLI surface into the
// pipeline.Options compile_project takes (spec §4.1's entry
// contract), after config.Loader has already applied flag > env >
// file > default precedence for the optimizer fields.
func resolveOptions(f *flags, loader *config.Loader, version catalog.EVMVersion) (pipeline.Options, error) {
	hashKind, err := catalog.ParseMetadataHashKind(f.metadataHash)
	if err != nil {
		return pipeline.Options{}, err
	}

	settings, err := loader.OptimizerSettings(f.llvmVerifyEach, f.llvmDebugLogging)
	if err != nil {
		return pipeline.Options{}, err
	}
	if f.sizeFallback {
		settings.SwitchToSizeFallback()
	}

	var llvmOpts []string
	if f.llvmOptions != "" {
		llvmOpts = strings.Fields(f.llvmOptions)
	}

	return pipeline.Options{
		OutputSelection:  outputSelectionFromFlags(f),
		EVMVersion:       version,
		MetadataHashKind: hashKind,
		AppendCBOR:       !f.noCBORMetadata,
		Optimizer:        settings,
		LLVMOptions:      llvmOpts,
		Debug:            f.debug,
		Threads:          f.threads,
	}, nil
}

// outputSelectionFromFlags projects spec §6's "Output selection" flag
// family onto internal/stdjson.OutputSelection's "*"-wildcarded
// path/contract-name keys: the CLI has no notion of per-file or
// per-contract selection the way standard-JSON mode does, so every
// requested key applies to every contract.
func outputSelectionFromFlags(f *flags) stdjson.OutputSelection {
	var keys []string
	add := func(want bool, key string) {
		if want {
			keys = append(keys, key)
		}
	}
	add(f.abi, "abi")
	add(f.userdoc, "userdoc")
	add(f.devdoc, "devdoc")
	add(f.storageLayout, "storageLayout")
	add(f.transientStorageLayout, "transientStorageLayout")
	add(f.metadataOut, "metadata")
	add(f.bin, "evm.bytecode.object")
	add(f.binRuntime, "evm.deployedBytecode.object")

	return stdjson.OutputSelection{"*": {"*": keys}}
}

// parseLibraries wraps library.Parse with the flag family's name so
// error messages read naturally at the CLI boundary.
func parseLibraries(specs []string) (library.Table, error) {
	table, err := library.Parse(specs)
	if err != nil {
		return nil, fmt.Errorf("--libraries: %w", err)
	}
	return table, nil
}
