package ir

import (
	"os"

	"github.com/r3e-network/solx-go/internal/errs"
)

// UnsafeAsmEscapeHatchEnv is the environment variable named in spec §6
// ("one disable-switch for the unsafe-assembly stack-too-deep check")
// that lets a build proceed when a module both uses unsafeasm and
// requires a non-trivial spill area.
const UnsafeAsmEscapeHatchEnv = "SOLX_UNSAFE_ASM_ALLOW_SPILL"

// CheckUnsafeAsm enforces spec §4.2's unsafe-inline-assembly rule: a
// module flagged UnsafeAsm refuses to compile once the back-end has
// determined it needs a non-trivial spill area, unless the escape
// hatch is set. The back-end computes spillAreaSize only after a
// lowering+codegen attempt, so this check runs in the pipeline
// orchestrator after each attempt, not during lowering itself.
func CheckUnsafeAsm(module *Module, spillAreaSize uint64, path string) error {
	if !module.UnsafeAsm || spillAreaSize == 0 {
		return nil
	}
	if os.Getenv(UnsafeAsmEscapeHatchEnv) != "" {
		return nil
	}
	return errs.New(errs.KindLowering, path, "module uses unsafeasm and requires a non-trivial spill area; set "+UnsafeAsmEscapeHatchEnv+" to allow this build")
}
