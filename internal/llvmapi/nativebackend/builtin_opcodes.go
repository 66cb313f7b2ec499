package nativebackend

// builtinOpcodes maps a Yul built-in's base name (after its category
// prefix is stripped) to the EVM opcode that implements it. One
// opcode per entry: the handful of built-ins spec §4.2 calls out as
// "demanding a contract-call boundary" are single real opcodes too
// (CALL/STATICCALL/DELEGATECALL/CREATE/CREATE2/LOG*), so no
// multi-instruction expansion is needed beyond the push/store sequence
// every op already gets.
var builtinOpcodes = map[string]opcode{
	"add": opADD, "sub": opSUB, "mul": opMUL, "div": opDIV, "sdiv": opSDIV,
	"mod": opMOD, "smod": opSMOD, "exp": opEXP, "addmod": opADDMOD,
	"mulmod": opMULMOD, "signextend": opSIGNEXTEND,

	"lt": opLT, "gt": opGT, "slt": opSLT, "sgt": opSGT, "eq": opEQ, "iszero": opISZERO,

	"and": opAND, "or": opOR, "xor": opXOR, "not": opNOT, "byte": opBYTE,
	"shl": opSHL, "shr": opSHR, "sar": opSAR, "clz": opCLZ,

	"keccak256": opKECCAK256,

	"mload": opMLOAD, "mstore": opMSTORE, "mstore8": opMSTORE8, "msize": opMSIZE,
	"mcopy": opMCOPY,

	"calldataload": opCALLDATALOAD, "calldatasize": opCALLDATASIZE,
	"calldatacopy": opCALLDATACOPY,

	"codesize": opCODESIZE, "codecopy": opCODECOPY,
	"extcodesize": opEXTCODESIZE, "extcodecopy": opEXTCODECOPY, "extcodehash": opEXTCODEHASH,

	"returndatasize": opRETURNDATASIZE, "returndatacopy": opRETURNDATACOPY,

	"sload": opSLOAD, "sstore": opSSTORE,
	"tload": opTLOAD, "tstore": opTSTORE,

	"address": opADDRESS, "balance": opBALANCE, "selfbalance": opSELFBALANCE,
	"caller": opCALLER, "callvalue": opCALLVALUE, "origin": opORIGIN,
	"gasprice": opGASPRICE, "gas": opGAS, "blockhash": opBLOCKHASH,
	"blobhash": opBLOBHASH, "coinbase": opCOINBASE, "timestamp": opTIMESTAMP,
	"number": opNUMBER, "prevrandao": opPREVRANDAO, "difficulty": opPREVRANDAO,
	"gaslimit": opGASLIMIT, "chainid": opCHAINID, "basefee": opBASEFEE,
	"blobbasefee": opBLOBBASEFEE,

	"stop": opSTOP, "return": opRETURN, "revert": opREVERT, "invalid": opINVALID,
	"pop": opPOP, "pc": opPC,

	"log0": opLOG0, "log1": 0xa1, "log2": 0xa2, "log3": 0xa3, "log4": 0xa4,

	"create": opCREATE, "create2": opCREATE2,

	"call": opCALL, "delegatecall": opDELEGATECALL, "staticcall": opSTATICCALL,
}
