package nativebackend

import (
	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/llvmapi"
)

// Backend is llvmapi.Backend's sole implementation.
type Backend struct{}

var _ llvmapi.Backend = (*Backend)(nil)
var _ llvmapi.Context = (*Context)(nil)

// New constructs a Backend. There is no process-wide state to
// initialize — unlike a real LLVM embedding, this assembler carries
// no global context, pass registry, or target triple setup.
func New() *Backend { return &Backend{} }

// NewContext returns a fresh compilation attempt handle.
func (b *Backend) NewContext() llvmapi.Context {
	return &Context{}
}

// Context is one compilation attempt: load a module, run passes
// (a no-op here beyond bookkeeping — see RunMiddleEndPasses), codegen.
type Context struct {
	module       *ir.Module
	level        catalog.OptimizationLevel
	errorHandler func(*errs.StackTooDeep)
}

func (c *Context) ParseModule(mod *ir.Module) error {
	c.module = mod
	return nil
}

// RunMiddleEndPasses records the requested optimization level; this
// assembler has no separate optimization pass pipeline to run (it
// emits already-minimal per-op bytecode). Codegen does not read the
// recorded level: its output is the same at every level, and zero
// immediates are always pushed with PUSH0.
func (c *Context) RunMiddleEndPasses(level catalog.OptimizationLevel) error {
	c.level = level
	return nil
}

// Codegen assembles the loaded module, raising StackTooDeep if the
// module's virtual-register spill requirement exceeds spillBudget.
func (c *Context) Codegen(spillBudget uint64) ([]byte, error) {
	if c.module == nil {
		return nil, errs.New(errs.KindBackend, "", "Codegen called before ParseModule")
	}
	code, spillBytes, err := assembleModule(c.module)
	if err != nil {
		return nil, errs.Wrap(errs.KindBackend, "", err)
	}
	if spillBytes > spillBudget {
		// This assembler has no mid-point diagnosis between "grow the
		// spill area a little" and "switch to the size-preferring
		// level" — any overflow it reports recommends both escalation
		// steps at once (spec §4.1's recovery loop latches
		// switch_to_size_fallback idempotently, so recommending it
		// again once already engaged costs nothing).
		stackErr := &errs.StackTooDeep{
			SpillAreaSize:  spillBytes,
			IsSizeFallback: true,
		}
		if c.errorHandler != nil {
			c.errorHandler(stackErr)
		}
		return nil, stackErr
	}
	return code, nil
}

func (c *Context) InstallStackErrorHandler(handler func(*errs.StackTooDeep)) {
	c.errorHandler = handler
}
