// Package library parses --libraries specifications and standard-JSON
// settings.libraries entries into a path -> name -> address table, and
// derives the 40-character "__$H$__" linker placeholders the IR lowering engine
// emits for unresolved references (spec §3, §6).
package library

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/r3e-network/solx-go/internal/hashutil"
)

// AddressLength is the byte length of an EVM address.
const AddressLength = 20

// PlaceholderHexDigits is the length of H in the "__$H$__" linker
// placeholder (3 + 34 + 3 = 40 characters in all, see Placeholder);
// H is a 34-hex-digit prefix of keccak256(path:name).
const PlaceholderHexDigits = 34

var addressPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)

// Table is a path -> name -> 20-byte address map, read-only after
// construction per spec §5 "Shared resources".
type Table map[string]map[string][20]byte

// Parse parses a set of "path:Name=0xADDR" specifications, the shape
// the --libraries flag and standard-JSON settings.libraries both use
// once flattened to strings.
func Parse(specs []string) (Table, error) {
	table := make(Table)
	for _, spec := range specs {
		if err := parseOne(table, spec); err != nil {
			return nil, fmt.Errorf("invalid library specification %q: %w", spec, err)
		}
	}
	return table, nil
}

// ParseNested parses the standard-JSON settings.libraries shape:
// path -> name -> address, already split into path/name/address triples.
func ParseNested(nested map[string]map[string]string) (Table, error) {
	table := make(Table)
	for path, names := range nested {
		for name, addr := range names {
			a, err := parseAddress(addr)
			if err != nil {
				return nil, fmt.Errorf("library %s:%s: %w", path, name, err)
			}
			putAddress(table, path, name, a)
		}
	}
	return table, nil
}

func parseOne(table Table, spec string) error {
	eq := strings.LastIndex(spec, "=")
	if eq < 0 {
		return fmt.Errorf("missing '=' separator")
	}
	left, right := spec[:eq], spec[eq+1:]

	colon := strings.LastIndex(left, ":")
	if colon < 0 {
		return fmt.Errorf("missing ':' separator between path and name")
	}
	path, name := left[:colon], left[colon+1:]
	if path == "" || name == "" {
		return fmt.Errorf("empty path or library name")
	}

	addr, err := parseAddress(right)
	if err != nil {
		return err
	}
	putAddress(table, path, name, addr)
	return nil
}

func putAddress(table Table, path, name string, addr [20]byte) {
	if table[path] == nil {
		table[path] = make(map[string][20]byte)
	}
	table[path][name] = addr
}

func parseAddress(s string) ([20]byte, error) {
	var out [20]byte
	if !addressPattern.MatchString(s) {
		return out, fmt.Errorf("address %q is not a 20-byte hex value", s)
	}
	trimmed := strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, fmt.Errorf("decoding address: %w", err)
	}
	copy(out[:], raw)
	return out, nil
}

// Placeholder returns the 40-character linker placeholder
// "__$H$__" for path:name, where H is the first 34 hex digits of
// keccak256("path:name"), per spec §6.
func Placeholder(path, name string) string {
	digest := hashutil.Keccak256Hex([]byte(path + ":" + name))
	return "__$" + digest[:PlaceholderHexDigits] + "$__"
}

// PlaceholderTable maps each placeholder string directly to its
// resolved address, derived from Table. This is the shape the linker
// (internal/metadata) consumes.
func (t Table) PlaceholderTable() map[string][20]byte {
	out := make(map[string][20]byte)
	for path, names := range t {
		for name, addr := range names {
			out[Placeholder(path, name)] = addr
		}
	}
	return out
}

// Paths returns the library paths in sorted order, for deterministic
// iteration when building standard-JSON output (spec §4.4/§9).
func (t Table) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// AddressHex formats a 20-byte address as a 40-hex-digit lowercase
// string with no "0x" prefix, the form linking substitutes into
// placeholders.
func AddressHex(addr [20]byte) string {
	return hex.EncodeToString(addr[:])
}

// PlaceholderBytes derives the raw 20-byte marker nativebackend's
// codegen embeds in place of an address it cannot resolve on its own
// (a library reference, spec §4.2's linkersymbol built-in). It is
// keyed off the same keccak256(path:name) digest as Placeholder, just
// sliced to one EVM word's address width instead of rendered as the
// delimited hex string spec §6 uses for human-readable reporting:
// since the marker is exactly as wide as the address that eventually
// replaces it, linking never shifts any byte that follows it.
func PlaceholderBytes(path, name string) [20]byte {
	digest := hashutil.Keccak256Hex([]byte(path + ":" + name))
	var out [20]byte
	raw, err := hex.DecodeString(digest[:AddressLength*2])
	if err != nil {
		panic("library: keccak256 hex digest too short to derive a placeholder: " + err.Error())
	}
	copy(out[:], raw)
	return out
}
