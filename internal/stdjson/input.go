// Package stdjson models the standard-JSON input/output schema shared
// with the front-end (spec §3 "S. Standard-JSON schema", §6
// "Standard-JSON schema"): sources, settings, output selectors,
// per-contract outputs, and errors with source locations. Field tags
// follow the reference front-end's camelCase wire names, the same
// convention the teacher's `neovm_types.go`/`supporting_types.go`
// already use for their JSON-tagged structs.
package stdjson

import "encoding/json"

// Language selects the front-end mode (spec §6 "Mode selection").
type Language string

const (
	LanguageSolidity Language = "Solidity"
	LanguageYul      Language = "Yul"
	LanguageLLVMIR   Language = "LLVMIR"
)

// Input is the top-level standard-JSON request.
type Input struct {
	Language Language          `json:"language"`
	Sources  map[string]Source `json:"sources"`
	Settings Settings          `json:"settings"`
}

// Source is either inline content or a URL list the import callback
// resolves; resolution happens lazily and the content is then owned
// by this entry (spec §3 "Source").
type Source struct {
	Content *string  `json:"content,omitempty"`
	URLs    []string `json:"urls,omitempty"`
	Keccak256 string `json:"keccak256,omitempty"`
}

// Settings carries the optimizer, EVM version, via-IR flag, library
// table, remappings, output selection, metadata, and LLVM passthrough
// options (spec §6).
type Settings struct {
	Optimizer        OptimizerSettings            `json:"optimizer"`
	EVMVersion       string                       `json:"evmVersion,omitempty"`
	ViaIR            bool                         `json:"viaIR,omitempty"`
	Libraries        map[string]map[string]string `json:"libraries,omitempty"`
	Remappings       []string                     `json:"remappings,omitempty"`
	OutputSelection  OutputSelection              `json:"outputSelection,omitempty"`
	Metadata         MetadataSettings             `json:"metadata,omitempty"`
	LLVMOptions      []string                     `json:"llvmOptions,omitempty"`
}

// OptimizerSettings is the standard-JSON mirror of
// internal/optimizer.Settings's initial (pre-recovery-loop) state.
type OptimizerSettings struct {
	Enabled      bool   `json:"enabled"`
	Level        string `json:"level,omitempty"` // one of 1/2/3/s/z
	SizeFallback bool   `json:"sizeFallback,omitempty"`
}

// MetadataSettings controls CBOR trailer construction (spec §4.4).
type MetadataSettings struct {
	AppendCBOR bool   `json:"appendCBOR"`
	HashKind   string `json:"hash,omitempty"` // "none" | "ipfs" | "keccak256"
	Literal    bool   `json:"useLiteralContent,omitempty"`
}

// OutputSelection is sources[*] -> contract-or-"*" -> requested keys.
// An empty contract key ("") selects file-level outputs (e.g. AST).
type OutputSelection map[string]map[string][]string

// Wants reports whether key is requested for contractName within
// path, honoring the "*" wildcards the reference schema allows at
// both the path and contract level.
func (s OutputSelection) Wants(path, contractName, key string) bool {
	for _, p := range []string{path, "*"} {
		contracts, ok := s[p]
		if !ok {
			continue
		}
		for _, c := range []string{contractName, "*"} {
			keys, ok := contracts[c]
			if !ok {
				continue
			}
			for _, k := range keys {
				if k == key || k == "*" {
					return true
				}
			}
		}
	}
	return false
}

// MarshalInput serializes an Input with stable key ordering; Go's
// encoding/json already sorts map keys during marshaling, which is
// sufficient for spec §6's "Key ordering is lexicographic."
func MarshalInput(in Input) ([]byte, error) {
	return json.Marshal(in)
}

// UnmarshalInput parses a standard-JSON request body.
func UnmarshalInput(data []byte) (Input, error) {
	var in Input
	err := json.Unmarshal(data, &in)
	return in, err
}
