package yul

// BuiltinCategory groups a Yul built-in function by the EVM
// subsystem it touches, mirroring the teacher's lexer categorization
// (arithmeticOps/memoryOps/storageOps/environmentOps/controlOps) but
// extended to the full built-in surface spec §4.2's glossary
// paragraph requires the IR lowering engine to support.
type BuiltinCategory string

const (
	CategoryArithmetic BuiltinCategory = "arithmetic"
	CategoryComparison BuiltinCategory = "comparison"
	CategoryBitwise    BuiltinCategory = "bitwise"
	CategoryMemory     BuiltinCategory = "memory"
	CategoryStorage    BuiltinCategory = "storage"
	CategoryImmutable  BuiltinCategory = "immutable"
	CategoryEnvironment BuiltinCategory = "environment"
	CategoryControl    BuiltinCategory = "control"
	CategoryLog        BuiltinCategory = "log"
	CategoryCreate     BuiltinCategory = "create"
	CategoryCall       BuiltinCategory = "call"
	CategoryLinker     BuiltinCategory = "linker"
	CategoryObject     BuiltinCategory = "object"
)

// builtinArity lists every built-in with its fixed arity; each
// call/log/create variant has its own entry and internal/ir checks it
// like any other built-in.
var builtinArity = map[string]struct {
	category BuiltinCategory
	arity    int
	returns  int
}{
	// Arithmetic
	"add": {CategoryArithmetic, 2, 1}, "sub": {CategoryArithmetic, 2, 1},
	"mul": {CategoryArithmetic, 2, 1}, "div": {CategoryArithmetic, 2, 1},
	"sdiv": {CategoryArithmetic, 2, 1}, "mod": {CategoryArithmetic, 2, 1},
	"smod": {CategoryArithmetic, 2, 1}, "exp": {CategoryArithmetic, 2, 1},
	"addmod": {CategoryArithmetic, 3, 1}, "mulmod": {CategoryArithmetic, 3, 1},
	"signextend": {CategoryArithmetic, 2, 1},

	// Comparison
	"lt": {CategoryComparison, 2, 1}, "gt": {CategoryComparison, 2, 1},
	"slt": {CategoryComparison, 2, 1}, "sgt": {CategoryComparison, 2, 1},
	"eq": {CategoryComparison, 2, 1}, "iszero": {CategoryComparison, 1, 1},

	// Bitwise
	"and": {CategoryBitwise, 2, 1}, "or": {CategoryBitwise, 2, 1},
	"xor": {CategoryBitwise, 2, 1}, "not": {CategoryBitwise, 1, 1},
	"byte": {CategoryBitwise, 2, 1}, "shl": {CategoryBitwise, 2, 1},
	"shr": {CategoryBitwise, 2, 1}, "sar": {CategoryBitwise, 2, 1},
	"clz": {CategoryBitwise, 1, 1},

	// Hashing
	"keccak256": {CategoryMemory, 2, 1},

	// Memory
	"mload": {CategoryMemory, 1, 1}, "mstore": {CategoryMemory, 2, 0},
	"mstore8": {CategoryMemory, 2, 0}, "msize": {CategoryMemory, 0, 1},
	"mcopy": {CategoryMemory, 3, 0},

	// Calldata
	"calldataload": {CategoryMemory, 1, 1}, "calldatasize": {CategoryMemory, 0, 1},
	"calldatacopy": {CategoryMemory, 3, 0},

	// Code
	"codesize": {CategoryMemory, 0, 1}, "codecopy": {CategoryMemory, 3, 0},
	"extcodesize": {CategoryEnvironment, 1, 1}, "extcodecopy": {CategoryMemory, 4, 0},
	"extcodehash": {CategoryEnvironment, 1, 1},

	// Returndata
	"returndatasize": {CategoryMemory, 0, 1}, "returndatacopy": {CategoryMemory, 3, 0},

	// Storage
	"sload": {CategoryStorage, 1, 1}, "sstore": {CategoryStorage, 2, 0},

	// Transient storage
	"tload": {CategoryStorage, 1, 1}, "tstore": {CategoryStorage, 2, 0},

	// Immutables (pseudo-builtins: the name argument, loadimmutable's
	// only one and setimmutable's second, is a literal resolved by
	// internal/ir, not evaluated as an expression)
	"loadimmutable": {CategoryImmutable, 1, 1}, "setimmutable": {CategoryImmutable, 3, 0},

	// Environment
	"address": {CategoryEnvironment, 0, 1}, "balance": {CategoryEnvironment, 1, 1},
	"selfbalance": {CategoryEnvironment, 0, 1}, "caller": {CategoryEnvironment, 0, 1},
	"callvalue": {CategoryEnvironment, 0, 1}, "origin": {CategoryEnvironment, 0, 1},
	"gasprice": {CategoryEnvironment, 0, 1}, "gas": {CategoryEnvironment, 0, 1},
	"blockhash": {CategoryEnvironment, 1, 1}, "blobhash": {CategoryEnvironment, 1, 1},
	"coinbase": {CategoryEnvironment, 0, 1}, "timestamp": {CategoryEnvironment, 0, 1},
	"number": {CategoryEnvironment, 0, 1}, "prevrandao": {CategoryEnvironment, 0, 1},
	"difficulty": {CategoryEnvironment, 0, 1}, "gaslimit": {CategoryEnvironment, 0, 1},
	"chainid": {CategoryEnvironment, 0, 1}, "basefee": {CategoryEnvironment, 0, 1},
	"blobbasefee": {CategoryEnvironment, 0, 1},

	// Control flow
	"stop": {CategoryControl, 0, 0}, "return": {CategoryControl, 2, 0},
	"revert": {CategoryControl, 2, 0}, "invalid": {CategoryControl, 0, 0},
	"pop": {CategoryControl, 1, 0}, "pc": {CategoryControl, 0, 1},

	// Logs: log0 takes (offset, size), logN takes (offset, size, topic1..topicN)
	"log0": {CategoryLog, 2, 0}, "log1": {CategoryLog, 3, 0},
	"log2": {CategoryLog, 4, 0}, "log3": {CategoryLog, 5, 0},
	"log4": {CategoryLog, 6, 0},

	// Creates
	"create": {CategoryCreate, 3, 1}, "create2": {CategoryCreate, 4, 1},

	// Calls
	"call": {CategoryCall, 7, 1}, "callcode": {CategoryCall, 7, 1},
	"delegatecall": {CategoryCall, 6, 1}, "staticcall": {CategoryCall, 6, 1},

	// Linker / object intrinsics
	"linkersymbol": {CategoryLinker, 1, 1},
	"dataoffset":   {CategoryObject, 1, 1},
	"datasize":     {CategoryObject, 1, 1},
	"datacopy":     {CategoryObject, 3, 0},
	"memoryguard":  {CategoryMemory, 1, 1},

	// Self-destruct is accepted by the lexer/parser like any call but
	// rejected at lowering time (spec §7 kind 5: "unsupported opcodes").
	"selfdestruct": {CategoryControl, 1, 0},
}

// LookupBuiltin reports whether name is a recognized Yul built-in and,
// if so, its category and fixed arity (-1 meaning variable).
func LookupBuiltin(name string) (category BuiltinCategory, arity int, returns int, ok bool) {
	entry, found := builtinArity[name]
	if !found {
		return "", 0, 0, false
	}
	return entry.category, entry.arity, entry.returns, true
}

// UnsupportedOpcodes names the Yul built-ins the lowering engine
// recognizes but rejects with a KindLowering diagnostic (spec §7 kind
// 5): CALLCODE and SELFDESTRUCT have no EVM-calling-convention-safe
// lowering in this driver, and PC has no meaning once Yul statements
// no longer map 1:1 to bytecode offsets.
var UnsupportedOpcodes = map[string]bool{
	"callcode":     true,
	"selfdestruct": true,
	"pc":           true,
}
