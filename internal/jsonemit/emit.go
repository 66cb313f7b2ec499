// Package jsonemit projects a completed pipeline.Build back into the
// shared standard-JSON schema (spec §4.4/§3 "R. Standard-JSON
// emitter"), honoring output selection at key granularity and
// producing a result whose every map walks in sorted key order before
// marshaling (spec §9 "Stable output").
package jsonemit

import (
	"encoding/hex"
	"errors"
	"sort"

	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/pipeline"
	"github.com/r3e-network/solx-go/internal/stdjson"
)

// Emit projects build into a stdjson.Output, including only the
// fields selection requests for each (path, contract) pair. Callers
// are expected to have already run internal/metadata's linking and
// trailer attachment over each artifact's bytecode before calling
// Emit — this package only formats, it does not finish assembly.
func Emit(build *pipeline.Build, selection stdjson.OutputSelection) stdjson.Output {
	out := stdjson.Output{Contracts: map[string]map[string]stdjson.Contract{}}

	for path, err := range build.Errors {
		out.Errors = append(out.Errors, errorToStdjson(path, err))
	}

	for _, artifact := range build.Contracts {
		path, name := artifact.Name.Path, artifact.Name.Name
		if out.Contracts[path] == nil {
			out.Contracts[path] = map[string]stdjson.Contract{}
		}
		out.Contracts[path][name] = contractOutput(artifact, path, name, selection)

		for _, placeholder := range artifact.Unresolved {
			out.Errors = append(out.Errors, stdjson.Error{
				Severity:       "warning",
				ErrorCode:      "unresolved_link",
				Message:        "unresolved library placeholder: " + placeholder,
				SourceLocation: &stdjson.SourceLocation{File: path},
			})
		}
	}

	sort.Slice(out.Errors, func(i, j int) bool {
		if out.Errors[i].Severity != out.Errors[j].Severity {
			return out.Errors[i].Severity < out.Errors[j].Severity
		}
		return out.Errors[i].Message < out.Errors[j].Message
	})

	return out
}

func contractOutput(a *pipeline.ContractArtifact, path, name string, selection stdjson.OutputSelection) stdjson.Contract {
	var c stdjson.Contract

	if selection.Wants(path, name, "abi") {
		c.ABI = a.ABI
	}
	if selection.Wants(path, name, "devdoc") {
		c.DevDoc = a.DevDoc
	}
	if selection.Wants(path, name, "userdoc") {
		c.UserDoc = a.UserDoc
	}
	if selection.Wants(path, name, "storageLayout") {
		c.StorageLayout = a.StorageLayout
	}
	if selection.Wants(path, name, "metadata") && len(a.MetadataJSON) > 0 {
		c.Metadata = string(a.MetadataJSON)
	}

	if a.Deploy != nil && selection.Wants(path, name, "evm.bytecode.object") {
		c.EVM.Bytecode.Object = hex.EncodeToString(a.Deploy.Bytecode)
	}
	if a.Runtime != nil && selection.Wants(path, name, "evm.deployedBytecode.object") {
		c.EVM.DeployedBytecode.Object = hex.EncodeToString(a.Runtime.Bytecode)
		c.EVM.DeployedBytecode.ImmutableReferences = immutableReferences(a.Runtime.Immutables)
	}

	return c
}

// immutableReferences renders a segment's discovered immutables map
// (spec §3 "runtime... name -> set of byte offsets") into the
// standard-JSON schema's offset/length reference list; every
// immutable this driver tracks is a single 32-byte EVM word.
func immutableReferences(immutables map[string][]int) map[string][]stdjson.OffsetLength {
	if len(immutables) == 0 {
		return nil
	}
	out := make(map[string][]stdjson.OffsetLength, len(immutables))
	for name, offsets := range immutables {
		refs := make([]stdjson.OffsetLength, len(offsets))
		for i, offset := range offsets {
			refs[i] = stdjson.OffsetLength{Start: offset, Length: 32}
		}
		out[name] = refs
	}
	return out
}

func errorToStdjson(path string, err error) stdjson.Error {
	var typed *errs.Error
	if errors.As(err, &typed) {
		e := stdjson.Error{
			Severity:         "error",
			ErrorCode:        string(typed.Kind),
			Message:          typed.Message,
			FormattedMessage: typed.Error(),
		}
		loc := typed.Path
		if loc == "" {
			loc = path
		}
		if loc != "" {
			e.SourceLocation = &stdjson.SourceLocation{File: loc}
		}
		return e
	}
	return stdjson.Error{
		Severity:         "error",
		Message:          err.Error(),
		FormattedMessage: path + ": " + err.Error(),
		SourceLocation:   &stdjson.SourceLocation{File: path},
	}
}
