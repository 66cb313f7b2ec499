// Package nativebackend is llvmapi.Backend's only concrete
// implementation: a pure-Go ir.Module-to-bytecode assembler, adapted
// from the teacher's code_generator.go (retargeted from NeoVM's
// syscall-based opcode set to real EVM opcodes) and standing in for
// the real LLVM pipeline the same way a test double stands in for a
// collaborator that lives outside this module's scope (spec.md §1).
package nativebackend

// opcode is one EVM instruction byte.
type opcode byte

const (
	opSTOP       opcode = 0x00
	opADD        opcode = 0x01
	opMUL        opcode = 0x02
	opSUB        opcode = 0x03
	opDIV        opcode = 0x04
	opSDIV       opcode = 0x05
	opMOD        opcode = 0x06
	opSMOD       opcode = 0x07
	opADDMOD     opcode = 0x08
	opMULMOD     opcode = 0x09
	opEXP        opcode = 0x0a
	opSIGNEXTEND opcode = 0x0b

	opLT     opcode = 0x10
	opGT     opcode = 0x11
	opSLT    opcode = 0x12
	opSGT    opcode = 0x13
	opEQ     opcode = 0x14
	opISZERO opcode = 0x15
	opAND    opcode = 0x16
	opOR     opcode = 0x17
	opXOR    opcode = 0x18
	opNOT    opcode = 0x19
	opBYTE   opcode = 0x1a
	opSHL    opcode = 0x1b
	opSHR    opcode = 0x1c
	opSAR    opcode = 0x1d
	opCLZ    opcode = 0x1e // EIP-7939, Osaka

	opKECCAK256 opcode = 0x20

	opADDRESS        opcode = 0x30
	opBALANCE        opcode = 0x31
	opORIGIN         opcode = 0x32
	opCALLER         opcode = 0x33
	opCALLVALUE      opcode = 0x34
	opCALLDATALOAD   opcode = 0x35
	opCALLDATASIZE   opcode = 0x36
	opCALLDATACOPY   opcode = 0x37
	opCODESIZE       opcode = 0x38
	opCODECOPY       opcode = 0x39
	opGASPRICE       opcode = 0x3a
	opEXTCODESIZE    opcode = 0x3b
	opEXTCODECOPY    opcode = 0x3c
	opRETURNDATASIZE opcode = 0x3d
	opRETURNDATACOPY opcode = 0x3e
	opEXTCODEHASH    opcode = 0x3f

	opBLOCKHASH   opcode = 0x40
	opCOINBASE    opcode = 0x41
	opTIMESTAMP   opcode = 0x42
	opNUMBER      opcode = 0x43
	opPREVRANDAO  opcode = 0x44
	opGASLIMIT    opcode = 0x45
	opCHAINID     opcode = 0x46
	opSELFBALANCE opcode = 0x47
	opBASEFEE     opcode = 0x48
	opBLOBHASH    opcode = 0x49
	opBLOBBASEFEE opcode = 0x4a

	opPOP      opcode = 0x50
	opMLOAD    opcode = 0x51
	opMSTORE   opcode = 0x52
	opMSTORE8  opcode = 0x53
	opSLOAD    opcode = 0x54
	opSSTORE   opcode = 0x55
	opJUMP     opcode = 0x56
	opJUMPI    opcode = 0x57
	opPC       opcode = 0x58
	opMSIZE    opcode = 0x59
	opGAS      opcode = 0x5a
	opJUMPDEST opcode = 0x5b
	opTLOAD    opcode = 0x5c
	opTSTORE   opcode = 0x5d
	opMCOPY    opcode = 0x5e
	opPUSH0    opcode = 0x5f

	// PUSH1..PUSH32 are 0x60..0x7f; DUP1..DUP16 are 0x80..0x8f;
	// SWAP1..SWAP16 are 0x90..0x9f.
	opPUSH1 opcode = 0x60
	opDUP1  opcode = 0x80
	opSWAP1 opcode = 0x90

	opLOG0 opcode = 0xa0
	// LOG1..LOG4 follow at 0xa1..0xa4.

	opCREATE       opcode = 0xf0
	opCALL         opcode = 0xf1
	opCALLCODE     opcode = 0xf2
	opRETURN       opcode = 0xf3
	opDELEGATECALL opcode = 0xf4
	opCREATE2      opcode = 0xf5
	opSTATICCALL   opcode = 0xfa
	opREVERT       opcode = 0xfd
	opINVALID      opcode = 0xfe
	opSELFDESTRUCT opcode = 0xff
)

// pushOp returns the PUSH<n> opcode for an n-byte immediate, n in 1..32.
func pushOp(n int) opcode { return opcode(int(opPUSH1) + n - 1) }

// dupOp returns the DUP<n> opcode, n in 1..16.
func dupOp(n int) opcode { return opcode(int(opDUP1) + n - 1) }

// swapOp returns the SWAP<n> opcode, n in 1..16.
func swapOp(n int) opcode { return opcode(int(opSWAP1) + n - 1) }

// logOp returns the LOG<n> opcode, n in 0..4.
func logOp(n int) opcode { return opcode(int(opLOG0) + n) }
