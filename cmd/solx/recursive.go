package main

import (
	"fmt"
	"os"

	"github.com/r3e-network/solx-go/internal/llvmapi/nativebackend"
	"github.com/r3e-network/solx-go/internal/pipeline"
)

// runRecursiveProcess is the --recursive-process child's entrypoint
// (spec §4.1 "Subprocess protocol"): read one wire.Input frame from
// stdin, compile it against the one Backend this binary ships
// (nativebackend, standing in for the real LLVM embedding per
// internal/llvmapi's doc comment), and write one wire.Result frame to
// stdout. It returns a process exit code, never panicking past main:
// per spec §5, "A subprocess that reports StackTooDeep returns
// success to the OS (exit code 0) with the error in its output body.
// Any non-zero exit is reported as a fatal diagnostic" — so only a
// transport-level failure (the frame itself couldn't be read or
// written) earns a non-zero exit here.
func runRecursiveProcess() int {
	backend := nativebackend.New()
	if err := pipeline.RunRecursiveProcess(os.Stdin, os.Stdout, backend); err != nil {
		fmt.Fprintf(os.Stderr, "solx: recursive-process: %v\n", err)
		return 1
	}
	return 0
}
