package vm

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode  = errors.New("unknown op code")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrROMTooLarge    = errors.New("rom too large")
)

// ExecutionError is returned by Execute when an instruction cannot be
// completed. The machine should not be stepped further afterwards.
type ExecutionError struct {
	PC     uint16
	OpCode OpCode
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("0x%04x: %s (%s): %v", e.PC, e.OpCode.Hex(), e.OpCode, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
