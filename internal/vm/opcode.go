package vm

import "fmt"

// OpCode is a decoded two-byte instruction.
type OpCode struct {
	Code uint16 // Raw instruction word

	Op  uint8  // Instruction family (high nibble of the first byte)
	X   uint8  // Low nibble of the first byte
	Y   uint8  // High nibble of the second byte
	N   uint8  // Low nibble of the second byte
	NN  uint8  // Second byte
	NNN uint16 // Low 12 bits
}

// Decode splits an instruction word into its fields. Every byte pair decodes;
// whether the result is a defined instruction is decided by the executor.
func Decode(hi, lo uint8) OpCode {
	return OpCode{
		Code: uint16(hi)<<8 | uint16(lo),
		Op:   hi >> 4,
		X:    hi & 0x0F,
		Y:    lo >> 4,
		N:    lo & 0x0F,
		NN:   lo,
		NNN:  uint16(hi&0x0F)<<8 | uint16(lo),
	}
}

// Defined reports whether the opcode maps to an implemented instruction.
func (op OpCode) Defined() bool {
	return lookup(op) != unknownInstruction
}

// String returns the mnemonic form of the instruction.
func (op OpCode) String() string {
	return lookup(op).Name(op)
}

// Hex returns the raw instruction word as 0xNNNN.
func (op OpCode) Hex() string {
	return fmt.Sprintf("0x%04x", op.Code)
}
