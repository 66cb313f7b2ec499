// Package errs defines the error kinds of spec §7: config/CLI, input
// I/O, front-end diagnostics, IR analysis, lowering, back-end,
// size-limit, and linker errors, plus the StackTooDeep recoverable
// value the pipeline orchestrator handles explicitly rather than
// treating as a terminal failure.
package errs

import "fmt"

// Kind classifies an error for reporting and for deciding whether the
// orchestrator can recover from it.
type Kind string

const (
	KindConfig       Kind = "config"
	KindInputIO      Kind = "input_io"
	KindFrontend     Kind = "frontend"
	KindIRAnalysis   Kind = "ir_analysis"
	KindLowering     Kind = "lowering"
	KindBackend      Kind = "backend"
	KindSizeLimit    Kind = "size_limit"
	KindLinker       Kind = "linker"
)

// Error is the generic typed error every fatal condition in this
// module is wrapped in before crossing a package boundary.
type Error struct {
	Kind    Kind
	Path    string
	Line    int
	Column  int
	Message string
	Cause   error
}

func New(kind Kind, path, message string) *Error {
	return &Error{Kind: kind, Path: path, Message: message}
}

func Wrap(kind Kind, path string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Message: cause.Error(), Cause: cause}
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StackTooDeep is the recoverable back-end error of spec §4.1/§4.3/§7.
// It is never returned as a terminal failure by the subprocess: the
// child serializes it and exits 0, and the orchestrator's recovery
// loop type-switches on it to decide the next attempt's optimizer
// settings.
type StackTooDeep struct {
	SpillAreaSize  uint64
	IsSizeFallback bool
}

func (s *StackTooDeep) Error() string {
	return fmt.Sprintf("stack too deep: requires spill area of at least %d bytes (size_fallback=%v)", s.SpillAreaSize, s.IsSizeFallback)
}

// RecoveryExhausted is returned when the bounded recovery loop in the
// pipeline orchestrator has used up its two escalation attempts and
// the subprocess still reports StackTooDeep.
type RecoveryExhausted struct {
	Path     string
	Attempts int
}

func (r *RecoveryExhausted) Error() string {
	return fmt.Sprintf("%s: stack-too-deep recovery exhausted after %d attempts", r.Path, r.Attempts)
}

// Diagnostic is a single front-end/IR-analysis/lowering diagnostic
// attachable to a standard-JSON errors array entry (see internal/stdjson).
type Diagnostic struct {
	Kind             Kind
	Severity         string // "error" or "warning"
	Message          string
	SourceFile       string
	SourceLine       int
	SourceColumn     int
	SourceLength     int
	ErrorCode        string
}

func (d Diagnostic) IsError() bool {
	return d.Severity == "error"
}
