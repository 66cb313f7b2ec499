package errs

import (
	"errors"
	"testing"
)

func TestErrorFormatsWithAndWithoutPath(t *testing.T) {
	withPath := New(KindLowering, "a.yul", "boom")
	if got, want := withPath.Error(), "lowering: a.yul: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	withoutPath := New(KindConfig, "", "bad flag")
	if got, want := withoutPath.Error(), "config: bad flag"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	wrapped := Wrap(KindInputIO, "b.yul", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if wrapped.Message != cause.Error() {
		t.Errorf("Message = %q, want %q", wrapped.Message, cause.Error())
	}
}

func TestStackTooDeepError(t *testing.T) {
	err := &StackTooDeep{SpillAreaSize: 256, IsSizeFallback: true}
	if err.Error() == "" {
		t.Error("expected a non-empty message")
	}
}

func TestRecoveryExhaustedError(t *testing.T) {
	err := &RecoveryExhausted{Path: "c.yul", Attempts: 2}
	want := "c.yul: stack-too-deep recovery exhausted after 2 attempts"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDiagnosticIsError(t *testing.T) {
	if !(Diagnostic{Severity: "error"}).IsError() {
		t.Error("expected severity \"error\" to report IsError() true")
	}
	if (Diagnostic{Severity: "warning"}).IsError() {
		t.Error("expected severity \"warning\" to report IsError() false")
	}
}
