package nativebackend

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/r3e-network/solx-go/internal/ir"
	"github.com/r3e-network/solx-go/internal/library"
)

// spillBase is the memory offset the first virtual-register spill
// slot lives at; it sits past Solidity's conventional 0x00-0x3f
// scratch space and free-memory-pointer slot so generated code never
// collides with the reserved region real compiled contracts use.
const spillBase = 0x80

const slotSize = 32

type pendingRef struct {
	label string
	pos   int // byte offset of the 2-byte PUSH2 operand to patch
}

// loopCtx entries form one LIFO control stack shared by if-statements
// and loops: an "if" entry only ever needs its own end label popped by
// the matching if.end, but break/continue must see past any nested
// if-entries to find the nearest enclosing *loop*.
type loopCtx struct {
	kind             string // "if" or "loop"
	start, post, end string
}

type switchCtx struct {
	reg         string
	end         string
	pendingNext string
}

// assembler flattens one ir.Module into EVM bytecode. Every virtual
// register the lowering engine produced is backed by a fixed memory
// slot (spec §4.2's "global arrays holding the 256-bit virtual stack
// spills"): every read is an MLOAD, every write an MSTORE, so the
// real EVM operand stack never needs to hold more than one op's
// worth of live values at a time. This keeps the generated bytecode's
// stack depth bounded by opcode arity rather than by program size,
// trading code size for the stack-safety property spec §4.1/§4.3's
// recovery loop exists to manage.
type assembler struct {
	code         []byte
	labels       map[string]int
	pending      []pendingRef
	spillSlots   map[string]int
	aliases      map[string]string
	loopStack    []*loopCtx
	switchStack  []*switchCtx
	funcParams   map[string][]string
	funcReturns  map[string][]string
	labelCounter int
	contractPath string
}

func newAssembler(mod *ir.Module) *assembler {
	a := &assembler{
		labels:       make(map[string]int),
		spillSlots:   make(map[string]int),
		aliases:      make(map[string]string),
		funcParams:   make(map[string][]string),
		funcReturns:  make(map[string][]string),
		contractPath: mod.ContractPath,
	}
	for _, fn := range mod.Functions {
		a.funcParams[fn.Name] = fn.Params
		a.funcReturns[fn.Name] = fn.Returns
	}
	return a
}

// assembleModule is the entry point: entrypoint function first (EVM
// execution always starts at byte offset 0), any user-defined
// functions follow as jump-reachable subroutines.
func assembleModule(mod *ir.Module) ([]byte, uint64, error) {
	a := newAssembler(mod)

	var entry *ir.Function
	var rest []*ir.Function
	for _, fn := range mod.Functions {
		if fn.Name == mod.EntryPoint {
			entry = fn
		} else {
			rest = append(rest, fn)
		}
	}
	if entry == nil {
		return nil, 0, fmt.Errorf("module has no entrypoint function named %q", mod.EntryPoint)
	}

	if err := a.assembleEntrypoint(entry); err != nil {
		return nil, 0, err
	}
	if len(rest) > 0 {
		a.emit(byte(opINVALID)) // guard against fallthrough into subroutine bodies
	}
	for _, fn := range rest {
		if err := a.assembleFunction(fn); err != nil {
			return nil, 0, err
		}
	}

	if err := a.resolveLabels(); err != nil {
		return nil, 0, err
	}
	return a.code, uint64(len(a.spillSlots) * slotSize), nil
}

func (a *assembler) assembleEntrypoint(fn *ir.Function) error {
	if err := a.assembleOps(fn.Body, ""); err != nil {
		return err
	}
	a.emit(byte(opSTOP))
	return nil
}

func (a *assembler) assembleFunction(fn *ir.Function) error {
	a.markLabel("func_" + fn.Name)
	epilogue := a.newLabel("epilogue_" + fn.Name)
	if err := a.assembleOps(fn.Body, epilogue); err != nil {
		return err
	}
	a.markLabel(epilogue)
	retSlot := a.slotFor("%ret_" + fn.Name)
	a.pushOffset(retSlot)
	a.emit(byte(opMLOAD))
	a.emit(byte(opJUMP))
	return nil
}

func (a *assembler) assembleOps(ops []ir.Op, epilogue string) error {
	for _, op := range ops {
		if err := a.assembleOp(op, epilogue); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) assembleOp(op ir.Op, epilogue string) error {
	switch op.Name {
	case "const":
		val, err := parseLiteralValue(op.Operands[0])
		if err != nil {
			return err
		}
		a.pushValue(val)
		a.storeReg(op.Result)
		return nil

	case "mov":
		a.loadReg(op.Operands[0])
		a.storeReg(op.Result)
		return nil

	case "linkersymbol":
		// The operand is a literal library name; internal/metadata's
		// linker resolves it against a.contractPath once the
		// --libraries table is known, so this emits the same 20-byte
		// marker the linker will search for, not a resolved address.
		// PUSH-ing it at its true 20-byte width (never collapsed to a
		// shorter push by leading zero bytes) keeps the substitution
		// byte-for-byte, so linking never shifts anything after it.
		marker := library.PlaceholderBytes(a.contractPath, op.Operands[0])
		a.pushFixedBytes(marker[:])
		a.storeReg(op.Result)
		return nil

	case "dataoffset", "datasize":
		// Resolved against the sibling sub-assembly's own layout, a
		// different mechanism from library linking: this driver
		// compiles each code segment as its own subprocess-isolated
		// unit (spec §4.1) rather than assembling nested Yul objects
		// into a single instruction stream, so there is no sibling
		// object layout available here to resolve against. Push a
		// zero placeholder; the identical gap exists in
		// legacy-assembly lowering's push.sub/push.subsize (unwired
		// in this backend, same reason).
		a.pushValue(big.NewInt(0))
		a.storeReg(op.Result)
		return nil

	case "datacopy":
		a.pushOperandsReversed(op.Operands)
		a.emit(byte(opCODECOPY))
		return nil

	case "immutable.load":
		a.pushValue(big.NewInt(0)) // reads memory word 0; no immutable offset is assigned
		a.emit(byte(opMLOAD))
		a.storeReg(op.Result)
		return nil

	case "immutable.store":
		// operands: base, name, value — value is what we persist; the
		// name/base feed the runtime->deploy immutable handoff, tracked
		// on Module.Immutables by the lowering pass already.
		a.loadReg(op.Operands[2])
		a.storeReg("%immutable_" + op.Operands[1])
		return nil

	case "unsafeasm":
		a.pushOperandsReversed(op.Operands)
		a.storeReg(op.Result)
		return nil

	case "if.cond":
		a.loadReg(op.Operands[0])
		a.emit(byte(opISZERO))
		end := a.newLabel("if_end")
		a.pushLabelRef(end)
		a.emit(byte(opJUMPI))
		a.loopStack = append(a.loopStack, &loopCtx{kind: "if", end: end})
		return nil

	case "if.end":
		ctx := a.loopStack[len(a.loopStack)-1]
		a.loopStack = a.loopStack[:len(a.loopStack)-1]
		a.markLabel(ctx.end)
		return nil

	case "switch.start":
		reg := a.newInternalReg("switch")
		a.loadReg(op.Operands[0])
		a.storeReg(reg)
		ctx := &switchCtx{reg: reg, end: a.newLabel("switch_end")}
		a.switchStack = append(a.switchStack, ctx)
		return nil

	case "switch.case":
		ctx := a.topSwitch()
		a.flushSwitchCase(ctx)
		next := a.newLabel("switch_next")
		a.loadReg(ctx.reg)
		val, err := parseLiteralValue(op.Operands[0])
		if err != nil {
			return err
		}
		a.pushValue(val)
		a.emit(byte(opEQ))
		a.emit(byte(opISZERO))
		a.pushLabelRef(next)
		a.emit(byte(opJUMPI))
		ctx.pendingNext = next
		return nil

	case "switch.default":
		ctx := a.topSwitch()
		a.flushSwitchCase(ctx)
		return nil

	case "switch.end":
		ctx := a.switchStack[len(a.switchStack)-1]
		a.switchStack = a.switchStack[:len(a.switchStack)-1]
		a.flushSwitchCase(ctx)
		a.markLabel(ctx.end)
		return nil

	case "loop.start":
		ctx := &loopCtx{
			kind:  "loop",
			start: a.newLabel("loop_start"),
			end:   a.newLabel("loop_end"),
			post:  a.newLabel("loop_post"),
		}
		a.markLabel(ctx.start)
		a.loopStack = append(a.loopStack, ctx)
		return nil

	case "loop.cond":
		ctx := a.topLoop()
		a.loadReg(op.Operands[0])
		a.emit(byte(opISZERO))
		a.pushLabelRef(ctx.end)
		a.emit(byte(opJUMPI))
		return nil

	case "loop.post":
		ctx := a.topLoop()
		a.markLabel(ctx.post)
		return nil

	case "loop.end":
		ctx := a.popLoop()
		a.pushLabelRef(ctx.start)
		a.emit(byte(opJUMP))
		a.markLabel(ctx.end)
		return nil

	case "br":
		ctx := a.nearestLoop()
		a.pushLabelRef(ctx.end)
		a.emit(byte(opJUMP))
		return nil

	case "continue":
		ctx := a.nearestLoop()
		a.pushLabelRef(ctx.post)
		a.emit(byte(opJUMP))
		return nil

	case "leave":
		if epilogue == "" {
			a.emit(byte(opSTOP))
			return nil
		}
		a.pushLabelRef(epilogue)
		a.emit(byte(opJUMP))
		return nil

	default:
		if strings.HasPrefix(op.Name, "call ") {
			return a.assembleCall(strings.TrimPrefix(op.Name, "call "), op)
		}
		return a.assembleBuiltin(op)
	}
}

// flushSwitchCase closes out the previous case/default branch (if
// any): jump to the switch's end, then mark the comparison-miss
// target the next branch resumes at.
func (a *assembler) flushSwitchCase(ctx *switchCtx) {
	if ctx.pendingNext == "" {
		return
	}
	a.pushLabelRef(ctx.end)
	a.emit(byte(opJUMP))
	a.markLabel(ctx.pendingNext)
	ctx.pendingNext = ""
}

// assembleBuiltin handles every category-prefixed Yul/EVM builtin
// (e.g. "arithmetic.add", "storage.sload") by stripping the category
// prefix and mapping the base name to its EVM opcode.
func (a *assembler) assembleBuiltin(op ir.Op) error {
	idx := strings.LastIndex(op.Name, ".")
	name := op.Name
	if idx >= 0 {
		name = op.Name[idx+1:]
	}
	if name == "memoryguard" {
		// memoryguard(x) is the identity function at this lowering
		// level; the back-end would otherwise use it to pin a
		// reserved-memory boundary, but this assembler has no notion
		// of one, so it degrades to a no-op pass-through.
		a.pushOperandsReversed(op.Operands)
		if op.Result != "" {
			a.storeReg(op.Result)
		}
		return nil
	}
	code, ok := builtinOpcodes[name]
	if !ok {
		return fmt.Errorf("nativebackend: no opcode mapping for builtin %q", op.Name)
	}
	a.pushOperandsReversed(op.Operands)
	a.emit(byte(code))
	if op.Result != "" {
		a.storeReg(op.Result)
	}
	return nil
}

func (a *assembler) assembleCall(name string, op ir.Op) error {
	if strings.HasPrefix(name, "__") {
		// Polyfill calls (e.g. __clz_polyfill) have no declared
		// parameter list; pass arguments through on the stack and
		// treat the call as an opaque external jump target.
		a.pushOperandsReversed(op.Operands)
		a.emit(byte(opJUMPDEST))
		if op.Result != "" {
			a.storeReg(op.Result)
		}
		return nil
	}

	params := a.funcParams[name]
	for i, argOp := range op.Operands {
		a.loadReg(argOp)
		if i < len(params) {
			a.storeReg(params[i])
		} else {
			a.emit(byte(opPOP))
		}
	}

	retLabel := a.newLabel("ret_" + name)
	retSlot := a.slotFor("%ret_" + name)
	a.pushLabelRef(retLabel)
	a.pushOffset(retSlot)
	a.emit(byte(opMSTORE))

	a.pushLabelRef("func_" + name)
	a.emit(byte(opJUMP))
	a.markLabel(retLabel)

	if op.Result != "" {
		returns := a.funcReturns[name]
		if len(returns) > 0 {
			a.aliases[op.Result] = returns[0]
		}
	}
	return nil
}

func (a *assembler) pushOperandsReversed(operands []string) {
	for i := len(operands) - 1; i >= 0; i-- {
		a.loadOperand(operands[i])
	}
}

func (a *assembler) loadOperand(operand string) {
	if strings.HasPrefix(operand, "%") {
		a.loadReg(operand)
		return
	}
	val, err := parseLiteralValue(operand)
	if err != nil {
		// Named symbol references (e.g. a bare data-object name used
		// as an expression) fall back to a zero placeholder, same as
		// the dataoffset/datasize cases above.
		a.pushValue(big.NewInt(0))
		return
	}
	a.pushValue(val)
}

func (a *assembler) loadReg(reg string) {
	if dot := strings.Index(reg, "."); dot >= 0 {
		reg = reg[:dot] // multi-return aliasing is approximated by its base register
	}
	if aliased, ok := a.aliases[reg]; ok {
		reg = aliased
	}
	slot := a.slotFor(reg)
	a.pushOffset(slot)
	a.emit(byte(opMLOAD))
}

func (a *assembler) storeReg(reg string) {
	slot := a.slotFor(reg)
	a.pushOffset(slot)
	a.emit(byte(opMSTORE))
}

func (a *assembler) slotFor(reg string) int {
	if slot, ok := a.spillSlots[reg]; ok {
		return slot
	}
	slot := len(a.spillSlots)
	a.spillSlots[reg] = slot
	return slot
}

func (a *assembler) newInternalReg(prefix string) string {
	a.labelCounter++
	return fmt.Sprintf("%%_%s%d", prefix, a.labelCounter)
}

func (a *assembler) newLabel(prefix string) string {
	a.labelCounter++
	return fmt.Sprintf("%s_%d", prefix, a.labelCounter)
}

func (a *assembler) topLoop() *loopCtx {
	return a.loopStack[len(a.loopStack)-1]
}

func (a *assembler) popLoop() *loopCtx {
	ctx := a.loopStack[len(a.loopStack)-1]
	a.loopStack = a.loopStack[:len(a.loopStack)-1]
	return ctx
}

// nearestLoop finds the innermost enclosing loop context for a
// break/continue, skipping over any if-statement scratch entries
// nested between the statement and its loop.
func (a *assembler) nearestLoop() *loopCtx {
	for i := len(a.loopStack) - 1; i >= 0; i-- {
		if a.loopStack[i].kind == "loop" {
			return a.loopStack[i]
		}
	}
	panic("nativebackend: break/continue outside a loop")
}

func (a *assembler) topSwitch() *switchCtx {
	return a.switchStack[len(a.switchStack)-1]
}

func (a *assembler) pushOffset(slot int) {
	a.pushValue(big.NewInt(int64(spillBase + slot*slotSize)))
}

// pushFixedBytes emits a PUSH of exactly len(b) bytes, unlike
// pushValue it never collapses a leading-zero-byte value to a
// narrower push: callers that need the emitted width to stay fixed
// regardless of the value (a linker marker a later pass substitutes
// byte-for-byte) use this instead.
func (a *assembler) pushFixedBytes(b []byte) {
	a.emit(byte(pushOp(len(b))))
	a.code = append(a.code, b...)
}

func (a *assembler) pushValue(v *big.Int) {
	if v.Sign() == 0 {
		a.emit(byte(opPUSH0))
		return
	}
	b := v.Bytes()
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	a.emit(byte(pushOp(len(b))))
	a.code = append(a.code, b...)
}

// pushLabelRef emits a PUSH2 with a placeholder operand, patched once
// every label in the module has been assembled. PUSH2 bounds this
// backend's output to 64KiB of code, ample for the synthetic programs
// this driver's own tests construct.
func (a *assembler) pushLabelRef(label string) {
	a.emit(byte(pushOp(2)))
	pos := len(a.code)
	a.code = append(a.code, 0, 0)
	a.pending = append(a.pending, pendingRef{label: label, pos: pos})
}

func (a *assembler) markLabel(name string) {
	a.emit(byte(opJUMPDEST))
	a.labels[name] = len(a.code) - 1
}

func (a *assembler) emit(b byte) {
	a.code = append(a.code, b)
}

func (a *assembler) resolveLabels() error {
	for _, p := range a.pending {
		target, ok := a.labels[p.label]
		if !ok {
			return fmt.Errorf("nativebackend: undefined label %q", p.label)
		}
		a.code[p.pos] = byte(target >> 8)
		a.code[p.pos+1] = byte(target)
	}
	return nil
}

func parseLiteralValue(lit string) (*big.Int, error) {
	v := new(big.Int)
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		if _, ok := v.SetString(lit[2:], 16); !ok {
			return nil, fmt.Errorf("nativebackend: invalid hex literal %q", lit)
		}
		return v, nil
	}
	if _, ok := v.SetString(lit, 10); !ok {
		return nil, fmt.Errorf("nativebackend: invalid literal %q", lit)
	}
	return v, nil
}
