package ir

import (
	"fmt"

	"github.com/r3e-network/solx-go/internal/catalog"
	"github.com/r3e-network/solx-go/internal/errs"
	"github.com/r3e-network/solx-go/internal/yul"
)

// userFunc is what the lowering engine needs to know about a
// Yul-defined function to verify call arity (spec §4.2 "User-defined
// functions... Calls verify arity at lowering time; mismatches abort
// with a located diagnostic").
type userFunc struct {
	params  int
	returns int
}

// yulLowerer carries the per-segment state a recursive lowering walk
// needs: a register counter, lexical variable scopes, the known
// user-defined functions, and the module being built.
type yulLowerer struct {
	path      string
	version   catalog.EVMVersion
	module    *Module
	functions map[string]userFunc
	scopes    []map[string]string
	regCount  int
	loopDepth int
}

// LowerYulObject lowers one Yul object's code block (the deploy
// object's own code for a deploy segment, or the nested runtime
// object's code for a runtime segment) into a Module. datasize/
// dataoffset/datacopy references are recorded as module dependencies
// and emitted as symbolic ops; their numeric resolution happens once
// the referenced segment's own compilation has finished (spec §4.1
// "deploy segment... using the immutables discovered by the runtime
// pass", and scenario 2 of spec §8).
func LowerYulObject(obj *yul.Object, segment catalog.CodeSegment, path string, version catalog.EVMVersion) (*Module, error) {
	module := NewModule(segment)
	module.ContractPath = path
	for _, dep := range yul.Dependencies(obj) {
		module.AddDependency(dep)
	}

	l := &yulLowerer{
		path:      path,
		version:   version,
		module:    module,
		functions: make(map[string]userFunc),
	}
	l.pushScope()
	defer l.popScope()

	if obj.Code != nil {
		l.collectFunctionSignatures(obj.Code)
	}

	entry := &Function{Name: module.EntryPoint, Attrs: catalog.DefaultFunctionAttributes(catalog.Level3)}
	if obj.Code != nil {
		body, err := l.lowerBlock(obj.Code)
		if err != nil {
			return nil, err
		}
		entry.Body = body
	}
	module.AddFunction(entry)

	if obj.Code != nil {
		if err := l.lowerNestedFunctionDefinitions(obj.Code, module); err != nil {
			return nil, err
		}
	}
	return module, nil
}

func (l *yulLowerer) collectFunctionSignatures(block *yul.Block) {
	for _, stmt := range block.Statements {
		if fn, ok := stmt.(*yul.FunctionDefinition); ok {
			l.functions[fn.Name] = userFunc{params: len(fn.Parameters), returns: len(fn.Returns)}
		}
	}
}

func (l *yulLowerer) lowerNestedFunctionDefinitions(block *yul.Block, module *Module) error {
	for _, stmt := range block.Statements {
		fn, ok := stmt.(*yul.FunctionDefinition)
		if !ok {
			continue
		}
		l.pushScope()
		var params, returns []string
		for _, p := range fn.Parameters {
			reg := l.bind(p.Name)
			params = append(params, reg)
		}
		for _, r := range fn.Returns {
			reg := l.bind(r.Name)
			returns = append(returns, reg)
		}
		l.collectFunctionSignatures(fn.Body)
		body, err := l.lowerBlock(fn.Body)
		if err != nil {
			l.popScope()
			return err
		}
		module.AddFunction(&Function{Name: fn.Name, Params: params, Returns: returns, Body: body})
		if err := l.lowerNestedFunctionDefinitions(fn.Body, module); err != nil {
			l.popScope()
			return err
		}
		l.popScope()
	}
	return nil
}

func (l *yulLowerer) pushScope() { l.scopes = append(l.scopes, make(map[string]string)) }
func (l *yulLowerer) popScope()  { l.scopes = l.scopes[:len(l.scopes)-1] }

func (l *yulLowerer) bind(name string) string {
	reg := l.newReg()
	l.scopes[len(l.scopes)-1][name] = reg
	return reg
}

func (l *yulLowerer) lookup(name string) (string, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if reg, ok := l.scopes[i][name]; ok {
			return reg, true
		}
	}
	return "", false
}

func (l *yulLowerer) newReg() string {
	l.regCount++
	return fmt.Sprintf("%%v%d", l.regCount)
}

func (l *yulLowerer) errf(pos yul.Position, format string, args ...interface{}) error {
	msg := fmt.Sprintf("line %d: %s", pos.Line, fmt.Sprintf(format, args...))
	return errs.New(errs.KindLowering, l.path, msg)
}

func (l *yulLowerer) lowerBlock(block *yul.Block) ([]Op, error) {
	l.pushScope()
	defer l.popScope()

	var ops []Op
	for _, stmt := range block.Statements {
		stmtOps, err := l.lowerStatement(stmt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, stmtOps...)
	}
	return ops, nil
}

func (l *yulLowerer) lowerStatement(stmt yul.Statement) ([]Op, error) {
	switch s := stmt.(type) {
	case *yul.ExpressionStatement:
		if s.Expr == nil {
			return nil, nil
		}
		_, ops, err := l.lowerExpr(s.Expr)
		return ops, err

	case *yul.VariableDeclaration:
		var ops []Op
		var valueReg string
		if s.Value != nil {
			reg, valOps, err := l.lowerExpr(s.Value)
			if err != nil {
				return nil, err
			}
			ops = append(ops, valOps...)
			valueReg = reg
		}
		for i, v := range s.Variables {
			reg := l.bind(v.Name)
			if s.Value != nil {
				src := valueReg
				if len(s.Variables) > 1 {
					src = fmt.Sprintf("%s.%d", valueReg, i)
				}
				ops = append(ops, Op{Name: "mov", Operands: []string{src}, Result: reg})
			} else {
				ops = append(ops, Op{Name: "const", Operands: []string{"0"}, Result: reg})
			}
		}
		return ops, nil

	case *yul.Assignment:
		reg, ops, err := l.lowerExpr(s.Value)
		if err != nil {
			return nil, err
		}
		for i, name := range s.Targets {
			target, ok := l.lookup(name)
			if !ok {
				return nil, l.errf(s.Position, "assignment to undeclared variable %q", name)
			}
			src := reg
			if len(s.Targets) > 1 {
				src = fmt.Sprintf("%s.%d", reg, i)
			}
			ops = append(ops, Op{Name: "mov", Operands: []string{src}, Result: target})
		}
		return ops, nil

	case *yul.If:
		cond, ops, err := l.lowerExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		body, err := l.lowerBlock(s.Body)
		if err != nil {
			return nil, err
		}
		ops = append(ops, Op{Name: "if.cond", Operands: []string{cond}})
		ops = append(ops, body...)
		ops = append(ops, Op{Name: "if.end"})
		return ops, nil

	case *yul.Switch:
		disc, ops, err := l.lowerExpr(s.Expr)
		if err != nil {
			return nil, err
		}
		ops = append(ops, Op{Name: "switch.start", Operands: []string{disc}})
		for _, c := range s.Cases {
			caseOps, err := l.lowerBlock(c.Body)
			if err != nil {
				return nil, err
			}
			if c.Value != nil {
				ops = append(ops, Op{Name: "switch.case", Operands: []string{c.Value.Value}})
			} else {
				ops = append(ops, Op{Name: "switch.default"})
			}
			ops = append(ops, caseOps...)
		}
		ops = append(ops, Op{Name: "switch.end"})
		return ops, nil

	case *yul.ForLoop:
		l.pushScope()
		defer l.popScope()
		init, err := l.lowerBlockNoScope(s.Init)
		if err != nil {
			return nil, err
		}
		cond, condOps, err := l.lowerExpr(s.Condition)
		if err != nil {
			return nil, err
		}
		post, err := l.lowerBlockNoScope(s.Post)
		if err != nil {
			return nil, err
		}
		l.loopDepth++
		body, err := l.lowerBlockNoScope(s.Body)
		l.loopDepth--
		if err != nil {
			return nil, err
		}
		var ops []Op
		ops = append(ops, init...)
		ops = append(ops, Op{Name: "loop.start"})
		ops = append(ops, condOps...)
		ops = append(ops, Op{Name: "loop.cond", Operands: []string{cond}})
		ops = append(ops, body...)
		ops = append(ops, Op{Name: "loop.post"})
		ops = append(ops, post...)
		ops = append(ops, Op{Name: "loop.end"})
		return ops, nil

	case *yul.FunctionDefinition:
		// Nested function definitions are hoisted into top-level
		// Module functions by lowerNestedFunctionDefinitions; they
		// contribute no inline ops at the point they're declared.
		return nil, nil

	case *yul.Break:
		if l.loopDepth == 0 {
			return nil, l.errf(s.Position, "break statement outside a loop")
		}
		return []Op{{Name: "br"}}, nil
	case *yul.Continue:
		if l.loopDepth == 0 {
			return nil, l.errf(s.Position, "continue statement outside a loop")
		}
		return []Op{{Name: "continue"}}, nil
	case *yul.Leave:
		return []Op{{Name: "leave"}}, nil
	case *yul.BlockStatement:
		return l.lowerBlock(s.Block)

	default:
		return nil, l.errf(stmt.Pos(), "unhandled statement type %T", stmt)
	}
}

// lowerBlockNoScope lowers a block's statements without introducing a
// fresh scope, for the three sibling blocks of a for-loop which share
// one lexical scope per the Yul specification.
func (l *yulLowerer) lowerBlockNoScope(block *yul.Block) ([]Op, error) {
	var ops []Op
	for _, stmt := range block.Statements {
		stmtOps, err := l.lowerStatement(stmt)
		if err != nil {
			return nil, err
		}
		ops = append(ops, stmtOps...)
	}
	return ops, nil
}

func (l *yulLowerer) lowerExpr(expr yul.Expression) (string, []Op, error) {
	switch e := expr.(type) {
	case *yul.Literal:
		reg := l.newReg()
		return reg, []Op{{Name: "const", Operands: []string{e.Value}, Result: reg}}, nil

	case *yul.Identifier:
		reg, ok := l.lookup(e.Name)
		if !ok {
			return "", nil, l.errf(e.Position, "reference to undeclared identifier %q", e.Name)
		}
		return reg, nil, nil

	case *yul.FunctionCall:
		return l.lowerCall(e)

	default:
		return "", nil, l.errf(expr.Pos(), "unhandled expression type %T", expr)
	}
}

func (l *yulLowerer) lowerCall(call *yul.FunctionCall) (string, []Op, error) {
	if yul.UnsupportedOpcodes[call.Name] {
		return "", nil, l.errf(call.Position, "opcode %q is not supported by this driver", call.Name)
	}

	if call.Name == "unsafeasm" {
		return l.lowerUnsafeAsm(call)
	}

	if fn, ok := l.functions[call.Name]; ok {
		return l.lowerUserCall(call, fn)
	}

	category, arity, returns, ok := yul.LookupBuiltin(call.Name)
	if !ok {
		return "", nil, l.errf(call.Position, "reference to unknown function %q", call.Name)
	}

	switch call.Name {
	case "dataoffset", "datasize", "datacopy", "linkersymbol", "loadimmutable", "setimmutable":
		return l.lowerPseudoBuiltin(call)
	}

	if arity >= 0 && len(call.Arguments) != arity {
		return "", nil, l.errf(call.Position, "builtin %q expects %d arguments, got %d", call.Name, arity, len(call.Arguments))
	}
	if call.Name == "clz" && !l.version.AtLeast(catalog.Osaka) {
		return l.lowerPolyfillCall("__clz_polyfill", call)
	}

	var ops []Op
	var operands []string
	for _, arg := range call.Arguments {
		reg, argOps, err := l.lowerExpr(arg)
		if err != nil {
			return "", nil, err
		}
		ops = append(ops, argOps...)
		operands = append(operands, reg)
	}
	var result string
	if returns > 0 {
		result = l.newReg()
	}
	ops = append(ops, Op{Name: string(category) + "." + call.Name, Operands: operands, Result: result})
	return result, ops, nil
}

func (l *yulLowerer) lowerPolyfillCall(polyfillName string, call *yul.FunctionCall) (string, []Op, error) {
	var ops []Op
	var operands []string
	for _, arg := range call.Arguments {
		reg, argOps, err := l.lowerExpr(arg)
		if err != nil {
			return "", nil, err
		}
		ops = append(ops, argOps...)
		operands = append(operands, reg)
	}
	result := l.newReg()
	ops = append(ops, Op{Name: "call " + polyfillName, Operands: operands, Result: result})
	return result, ops, nil
}

// lowerPseudoBuiltin handles the built-ins whose (some) arguments must
// be literal name/string tokens resolved at lowering time rather than
// evaluated as expressions (spec §7 kind 5: "missing literal arguments
// for pseudo-builtins").
func (l *yulLowerer) lowerPseudoBuiltin(call *yul.FunctionCall) (string, []Op, error) {
	nameArg := func(i int) (string, error) {
		if i >= len(call.Arguments) {
			return "", l.errf(call.Position, "%q requires a literal name argument", call.Name)
		}
		lit, ok := call.Arguments[i].(*yul.Literal)
		if !ok || lit.Kind != yul.LiteralString {
			return "", l.errf(call.Position, "%q requires argument %d to be a literal string, not an expression", call.Name, i)
		}
		return lit.Value, nil
	}

	switch call.Name {
	case "dataoffset", "datasize":
		name, err := nameArg(0)
		if err != nil {
			return "", nil, err
		}
		l.module.AddDependency(name)
		result := l.newReg()
		return result, []Op{{Name: call.Name, Operands: []string{name}, Result: result}}, nil

	case "linkersymbol":
		name, err := nameArg(0)
		if err != nil {
			return "", nil, err
		}
		l.module.AddLibraryRef(name)
		result := l.newReg()
		return result, []Op{{Name: "linkersymbol", Operands: []string{name}, Result: result}}, nil

	case "datacopy":
		if len(call.Arguments) != 3 {
			return "", nil, l.errf(call.Position, "datacopy expects 3 arguments, got %d", len(call.Arguments))
		}
		var ops []Op
		var operands []string
		for i, arg := range call.Arguments {
			if i == 1 {
				// the source operand of datacopy is itself normally a
				// dataoffset(name) call; lower it like any expression.
			}
			reg, argOps, err := l.lowerExpr(arg)
			if err != nil {
				return "", nil, err
			}
			ops = append(ops, argOps...)
			operands = append(operands, reg)
		}
		ops = append(ops, Op{Name: "datacopy", Operands: operands})
		return "", ops, nil

	case "loadimmutable":
		name, err := nameArg(0)
		if err != nil {
			return "", nil, err
		}
		result := l.newReg()
		return result, []Op{{Name: "immutable.load", Operands: []string{name}, Result: result}}, nil

	case "setimmutable":
		if len(call.Arguments) != 3 {
			return "", nil, l.errf(call.Position, "setimmutable expects 3 arguments, got %d", len(call.Arguments))
		}
		baseReg, ops, err := l.lowerExpr(call.Arguments[0])
		if err != nil {
			return "", nil, err
		}
		name, err := nameArg(1)
		if err != nil {
			return "", nil, err
		}
		valueReg, valueOps, err := l.lowerExpr(call.Arguments[2])
		if err != nil {
			return "", nil, err
		}
		ops = append(ops, valueOps...)
		ops = append(ops, Op{Name: "immutable.store", Operands: []string{baseReg, name, valueReg}})
		l.module.Immutables[name] = append(l.module.Immutables[name], -1)
		return "", ops, nil

	default:
		return "", nil, l.errf(call.Position, "unhandled pseudo-builtin %q", call.Name)
	}
}

// lowerUnsafeAsm handles the unsafeasm marker (spec §4.2 "Unsafe
// inline assembly"): it is not an EVM opcode and has no fixed arity,
// it simply flags the module and passes its arguments through
// unverified. The spill-area/escape-hatch check happens later, once
// the back-end has computed the module's actual spill requirement
// (see CheckUnsafeAsm).
func (l *yulLowerer) lowerUnsafeAsm(call *yul.FunctionCall) (string, []Op, error) {
	l.module.UnsafeAsm = true
	var ops []Op
	var operands []string
	for _, arg := range call.Arguments {
		reg, argOps, err := l.lowerExpr(arg)
		if err != nil {
			return "", nil, err
		}
		ops = append(ops, argOps...)
		operands = append(operands, reg)
	}
	result := l.newReg()
	ops = append(ops, Op{Name: "unsafeasm", Operands: operands, Result: result})
	return result, ops, nil
}

func (l *yulLowerer) lowerUserCall(call *yul.FunctionCall, fn userFunc) (string, []Op, error) {
	if len(call.Arguments) != fn.params {
		return "", nil, l.errf(call.Position, "function %q expects %d arguments, got %d", call.Name, fn.params, len(call.Arguments))
	}
	var ops []Op
	var operands []string
	for _, arg := range call.Arguments {
		reg, argOps, err := l.lowerExpr(arg)
		if err != nil {
			return "", nil, err
		}
		ops = append(ops, argOps...)
		operands = append(operands, reg)
	}
	var result string
	if fn.returns > 0 {
		result = l.newReg()
	}
	ops = append(ops, Op{Name: "call " + call.Name, Operands: operands, Result: result})
	return result, ops, nil
}
