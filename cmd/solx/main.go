// Command solx is the compiler-driver binary of spec.md §1: it
// consumes Solidity, Yul, or LLVM-IR sources, cooperates with the
// embedded native front-end (internal/yul, internal/legacyasm) for
// Yul/legacy-assembly inputs, lowers each contract's deploy and
// runtime code segments (internal/ir), drives the LLVM pipeline twice
// per contract through internal/pipeline's subprocess-isolated
// orchestrator, and emits EVM bytecode with CBOR metadata
// (internal/metadata) linked against library addresses.
package main

import (
	"os"

	"github.com/r3e-network/solx-go/internal/pipeline"
)

func main() {
	// --recursive-process is dispatched before cobra ever sees argv,
	// mirroring spec §4.1's "Internal: --recursive-process reserved
	// for the subprocess protocol" and §9's "the --recursive-process
	// flag dispatches to the compile-one-contract handler instead of
	// the normal entrypoint" — the child's whole job is to read one
	// wire.Input frame and write one wire.Result frame, so it has no
	// use for the ordinary flag surface at all.
	if len(os.Args) >= 2 && os.Args[1] == pipeline.RecursiveProcessFlag {
		os.Exit(runRecursiveProcess())
	}
	os.Exit(Execute())
}
