package pipeline

import (
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/optimizer"
	"github.com/r3e-network/solx-go/internal/wire"
)

// maxRecoveryAttempts is the "at most two escalations" bound of spec
// §4.1: a third stack-too-deep report is a hard error.
const maxRecoveryAttempts = 2

// segmentRunner performs one subprocess round trip for in, returning
// its Result. Factored out so the recovery loop is unit-testable
// without spawning a real child process: tests inject a fake runner
// directly, while runSubprocess (subprocess.go) is the production
// implementation wired in by the orchestrator.
type segmentRunner func(wire.Input) (wire.Result, error)

// runSegmentWithRecovery drives spec §4.1's pseudocode exactly: call,
// and on StackTooDeep, weaken the optimizer settings monotonically
// (spill area only grows; size_fallback only latches on) and retry,
// up to maxRecoveryAttempts escalations. It returns the Settings the
// successful attempt actually ran with — in is passed by value, so a
// mutation inside this loop never reaches the caller's copy; callers
// that need to know whether size fallback was eventually used (spec
// §8 scenario 4's build-artifact flag) must read it from this return
// value, not from the Settings they passed in.
func runSegmentWithRecovery(run segmentRunner, in wire.Input) (*wire.Output, optimizer.Settings, error) {
	attempt := 0
	for {
		res, err := run(in)
		if err != nil {
			return nil, in.Optimizer, err
		}
		attempt++

		if res.Err == nil {
			return res.Output, in.Optimizer, nil
		}

		if res.Err.Kind != wire.ErrorKindStackTooDeep {
			return nil, in.Optimizer, diagnosticToErr(in.ContractPath, res.Err)
		}

		if attempt > maxRecoveryAttempts {
			return nil, in.Optimizer, &errs.RecoveryExhausted{Path: in.ContractPath, Attempts: attempt}
		}
		if res.Err.IsSizeFallback {
			in.Optimizer.SwitchToSizeFallback()
		}
		in.Optimizer.SetSpillAreaSize(res.Err.SpillAreaSize)
	}
}

// diagnosticToErr converts a terminal wire.Error into the typed
// errs.Error this module reports diagnostics as (spec §7's kinds 3-5).
func diagnosticToErr(path string, e *wire.Error) error {
	kind := errs.KindBackend
	switch e.ErrorCode {
	case "ir_analysis":
		kind = errs.KindIRAnalysis
	case "lowering":
		kind = errs.KindLowering
	case "frontend":
		kind = errs.KindFrontend
	}
	diagPath := path
	if e.SourceFile != "" {
		diagPath = e.SourceFile
	}
	err := errs.New(kind, diagPath, e.Message)
	err.Line = e.SourceLine
	err.Column = e.SourceColumn
	return err
}
