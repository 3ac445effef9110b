// Package disasm produces a linear listing of a CHIP-8 program image.
package disasm

import (
	"fmt"
	"io"
	"sort"

	"github.com/kapitanov/chip8/internal/vm"
)

// Line is one listed instruction or data word.
type Line struct {
	Address uint16
	Bytes   []byte
	OpCode  vm.OpCode
	Data    bool // Not a defined instruction
	Label   string
}

// Disassemble decodes program, loaded at base, two bytes at a time. Words
// that do not decode to a defined instruction are kept as data. Targets of
// jmp/jsr and the start address get labels.
func Disassemble(program []byte, base uint16) []Line {
	lines := make([]Line, 0, (len(program)+1)/vm.InstructionSize)
	targets := map[uint16]struct{}{base: {}}

	for offset := 0; offset < len(program); offset += vm.InstructionSize {
		addr := base + uint16(offset)

		if offset+1 >= len(program) {
			lines = append(lines, Line{
				Address: addr,
				Bytes:   program[offset:],
				Data:    true,
			})
			break
		}

		op := vm.Decode(program[offset], program[offset+1])
		line := Line{
			Address: addr,
			Bytes:   program[offset : offset+vm.InstructionSize],
			OpCode:  op,
			Data:    !op.Defined(),
		}

		if !line.Data && (op.Op == 0x1 || op.Op == 0x2) {
			targets[op.NNN] = struct{}{}
		}

		lines = append(lines, line)
	}

	names := labelNames(targets, base)
	for i := range lines {
		lines[i].Label = names[lines[i].Address]
	}

	return lines
}

func labelNames(targets map[uint16]struct{}, base uint16) map[uint16]string {
	addrs := make([]uint16, 0, len(targets))
	for addr := range targets {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	names := make(map[uint16]string, len(addrs))
	for _, addr := range addrs {
		if addr == base {
			names[addr] = "start"
			continue
		}
		names[addr] = fmt.Sprintf("L%03x", addr)
	}
	return names
}

// Write prints the listing, one line per word.
func Write(w io.Writer, lines []Line) error {
	for _, line := range lines {
		if line.Label != "" {
			if _, err := fmt.Fprintf(w, "%s:\n", line.Label); err != nil {
				return err
			}
		}

		var err error
		switch {
		case len(line.Bytes) == 1:
			_, err = fmt.Fprintf(w, "  0x%04x  %02x       db 0x%02x\n", line.Address, line.Bytes[0], line.Bytes[0])
		case line.Data:
			_, err = fmt.Fprintf(w, "  0x%04x  %02x %02x    db 0x%02x, 0x%02x\n", line.Address, line.Bytes[0], line.Bytes[1], line.Bytes[0], line.Bytes[1])
		default:
			_, err = fmt.Fprintf(w, "  0x%04x  %02x %02x    %s\n", line.Address, line.Bytes[0], line.Bytes[1], line.OpCode)
		}
		if err != nil {
			return err
		}
	}

	return nil
}
