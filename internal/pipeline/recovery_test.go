package pipeline

import (
	"errors"
	"testing"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/optimizer"
	"github.com/r3e-network/solx-go/internal/wire"
)

func newInput() wire.Input {
	return wire.Input{
		ContractPath: "contracts/Deep.sol",
		Optimizer:    optimizer.New(catalog.Level3, false, false, false),
	}
}

func TestRunSegmentWithRecoverySucceedsFirstTry(t *testing.T) {
	calls := 0
	run := func(in wire.Input) (wire.Result, error) {
		calls++
		return wire.Result{Output: &wire.Output{Bytecode: []byte{0x00}}}, nil
	}
	out, settings, err := runSegmentWithRecovery(run, newInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one call, got %d", calls)
	}
	if len(out.Bytecode) != 1 {
		t.Errorf("unexpected output: %+v", out)
	}
	if settings.SizeFallback {
		t.Error("expected size fallback to remain off when no recovery was needed")
	}
}

func TestRunSegmentWithRecoverySucceedsAfterOneEscalation(t *testing.T) {
	calls := 0
	run := func(in wire.Input) (wire.Result, error) {
		calls++
		if calls == 1 {
			if in.Optimizer.SizeFallback {
				t.Fatal("first attempt should not already be in size fallback")
			}
			return wire.Result{Err: &wire.Error{
				Kind:           wire.ErrorKindStackTooDeep,
				SpillAreaSize:  4096,
				IsSizeFallback: true,
			}}, nil
		}
		if !in.Optimizer.SizeFallback {
			t.Error("second attempt should have switched to size fallback")
		}
		if in.Optimizer.SpillAreaSize != 4096 {
			t.Errorf("second attempt spill area size = %d, want 4096", in.Optimizer.SpillAreaSize)
		}
		return wire.Result{Output: &wire.Output{Bytecode: []byte{0x01}}}, nil
	}

	out, settings, err := runSegmentWithRecovery(run, newInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly one recovery attempt (2 calls), got %d", calls)
	}
	if len(out.Bytecode) != 1 || out.Bytecode[0] != 0x01 {
		t.Errorf("unexpected output: %+v", out)
	}
	if !settings.SizeFallback {
		t.Error("expected the returned settings to report size fallback after a successful escalation")
	}
}

func TestRunSegmentWithRecoveryExhaustsAfterThreeFailures(t *testing.T) {
	calls := 0
	run := func(in wire.Input) (wire.Result, error) {
		calls++
		return wire.Result{Err: &wire.Error{
			Kind:           wire.ErrorKindStackTooDeep,
			SpillAreaSize:  uint64(calls) * 1024,
			IsSizeFallback: true,
		}}, nil
	}

	_, _, err := runSegmentWithRecovery(run, newInput())
	if err == nil {
		t.Fatal("expected RecoveryExhausted error")
	}
	var exhausted *errs.RecoveryExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *errs.RecoveryExhausted, got %T: %v", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", exhausted.Attempts)
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 subprocess calls, got %d", calls)
	}
}

func TestRunSegmentWithRecoveryPropagatesTerminalDiagnostic(t *testing.T) {
	run := func(in wire.Input) (wire.Result, error) {
		return wire.Result{Err: &wire.Error{
			Kind:      wire.ErrorKindDiagnostic,
			Severity:  "error",
			Message:   "unsupported opcode SELFDESTRUCT",
			ErrorCode: "lowering",
		}}, nil
	}

	_, _, err := runSegmentWithRecovery(run, newInput())
	if err == nil {
		t.Fatal("expected a terminal diagnostic error")
	}
	var typed *errs.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected *errs.Error, got %T: %v", err, err)
	}
	if typed.Kind != errs.KindLowering {
		t.Errorf("expected KindLowering, got %q", typed.Kind)
	}
}

func TestRunSegmentWithRecoveryPropagatesTransportError(t *testing.T) {
	sentinel := errors.New("broken pipe")
	run := func(in wire.Input) (wire.Result, error) {
		return wire.Result{}, sentinel
	}
	_, _, err := runSegmentWithRecovery(run, newInput())
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected transport error to propagate unchanged, got %v", err)
	}
}
