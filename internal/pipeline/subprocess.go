package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/wire"
)

// executableOverride, when set, replaces os.Executable as the binary
// re-invoked for --recursive-process children (spec §4.1 supplemented
// from original_source/solx-core/src/process/mod.rs: an EXECUTABLE
// environment override used by tests so they don't have to re-invoke
// the real, possibly not-yet-built, binary under `go test`).
var executableOverride string

// SetExecutableOverride sets the binary path used for recursive-process
// children. Passing "" restores the default (os.Executable()).
func SetExecutableOverride(path string) {
	executableOverride = path
}

func executablePath() (string, error) {
	if executableOverride != "" {
		return executableOverride, nil
	}
	return os.Executable()
}

// RecursiveProcessFlag is the argument spec §4.1 names: "launched with
// a --recursive-process flag and the contract's full path as arg".
const RecursiveProcessFlag = "--recursive-process"

// runSubprocess is the production segmentRunner: it launches a fresh
// child instance of this executable, writes in on its stdin, and
// decodes the Result from its stdout (spec §4.1 "Subprocess
// protocol"). Any non-zero exit is a fatal diagnostic bound to the
// contract's source location, carrying the child's captured stderr —
// the one behavior the distilled spec.md omits that
// original_source/solx-core/src/process/mod.rs's run() implements.
func runSubprocess(ctx context.Context, in wire.Input) (wire.Result, error) {
	exe, err := executablePath()
	if err != nil {
		return wire.Result{}, fmt.Errorf("pipeline: locating executable: %w", err)
	}

	cmd := exec.CommandContext(ctx, exe, RecursiveProcessFlag, in.ContractPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return wire.Result{}, fmt.Errorf("pipeline: opening child stdin: %w", err)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return wire.Result{}, fmt.Errorf("pipeline: starting child process: %w", err)
	}
	writeErr := wire.WriteInput(stdin, in)
	stdin.Close()

	waitErr := cmd.Wait()
	if waitErr != nil {
		return wire.Result{}, errs.New(errs.KindBackend, in.ContractPath,
			fmt.Sprintf("recursive-process child exited abnormally: %v, stderr: %s", waitErr, stderr.String()))
	}
	if writeErr != nil {
		return wire.Result{}, fmt.Errorf("pipeline: writing child input: %w", writeErr)
	}

	return wire.ReadResult(&stdout)
}
