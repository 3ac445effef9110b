package vm

import (
	"context"
	"fmt"
	"log/slog"
)

type instruction struct {
	Name    func(op OpCode) string
	Execute func(vm *VM, op OpCode) error
}

// Execute runs one decoded instruction against the machine state. FetchDecode
// has already moved PC past the instruction.
func (vm *VM) Execute(op OpCode) error {
	instr := lookup(op)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", (vm.pc-InstructionSize)&AddressMask),
			"opcode", op.Hex(),
			"instr", instr.Name(op),
		)
	}

	if err := instr.Execute(vm, op); err != nil {
		return &ExecutionError{
			PC:     (vm.pc - InstructionSize) & AddressMask,
			OpCode: op,
			Err:    err,
		}
	}

	return nil
}

func lookup(op OpCode) *instruction {
	switch op.Op {
	case 0x0:
		switch op.NNN {
		case 0x0E0:
			// 00E0 - Clear screen
			return clsInstruction

		case 0x0EE:
			// 00EE - Return from subroutine
			return rtsInstruction
		}

	case 0x1:
		// 1NNN - Jumps to address NNN
		return jmpInstruction

	case 0x2:
		// 2NNN - Calls subroutine at NNN
		return jsrInstruction

	case 0x3:
		// 3XNN - Skips the next instruction if VX equals NN
		return skeq1Instruction

	case 0x4:
		// 4XNN - Skips the next instruction if VX does not equal NN
		return skne1Instruction

	case 0x5:
		// 5XY0 - Skips the next instruction if VX equals VY
		if op.N == 0x0 {
			return skeq2Instruction
		}

	case 0x6:
		// 6XNN - Sets VX to NN
		return mov1Instruction

	case 0x7:
		// 7XNN - Adds NN to VX, no carry
		return add1Instruction

	case 0x8:
		switch op.N {
		case 0x0:
			// 8XY0 - Sets VX to the value of VY
			return mov2Instruction

		case 0x1:
			// 8XY1 - Sets VX to (VX OR VY)
			return orInstruction

		case 0x2:
			// 8XY2 - Sets VX to (VX AND VY)
			return andInstruction

		case 0x3:
			// 8XY3 - Sets VX to (VX XOR VY)
			return xorInstruction

		case 0x4:
			// 8XY4 - Adds VY to VX. VF is set to 1 on carry.
			return add2Instruction

		case 0x5:
			// 8XY5 - VY is subtracted from VX. VF is set to 0 on borrow.
			return subInstruction

		case 0x6:
			// 8XY6 - Shifts VX right by one. VF gets the old bit 0.
			return shrInstruction

		case 0x7:
			// 8XY7 - Sets VX to VY minus VX. VF is set to 0 on borrow.
			return rsbInstruction

		case 0xE:
			// 8XYE - Shifts VX left by one. VF gets the old bit 7.
			return shlInstruction
		}

	case 0x9:
		// 9XY0 - Skips the next instruction if VX doesn't equal VY
		if op.N == 0x0 {
			return skne2Instruction
		}

	case 0xA:
		// ANNN - Sets I to the address NNN
		return mviInstruction

	case 0xB:
		// BNNN - Jumps to the address NNN plus V0
		return jmiInstruction

	case 0xC:
		// CXNN - Sets VX to a random number, masked by NN
		return randInstruction

	case 0xD:
		// DXYN - Draws an 8xN sprite from memory at I to (VX, VY).
		// VF is set to 1 if any lit pixel is turned off.
		return spriteInstruction

	case 0xE:
		switch op.NN {
		case 0x9E:
			// EX9E - Skips the next instruction if the key stored in VX is pressed
			return skprInstruction

		case 0xA1:
			// EXA1 - Skips the next instruction if the key stored in VX isn't pressed
			return skupInstruction
		}

	case 0xF:
		switch op.NN {
		case 0x07:
			// FX07 - Sets VX to the value of the delay timer
			return gdelayInstruction

		case 0x0A:
			// FX0A - A key press is awaited, and then stored in VX
			return keyInstruction

		case 0x15:
			// FX15 - Sets the delay timer to VX
			return sdelayInstruction

		case 0x18:
			// FX18 - Sets the sound timer to VX
			return ssoundInstruction

		case 0x1E:
			// FX1E - Adds VX to I. VF is not affected.
			return adiInstruction

		case 0x29:
			// FX29 - Sets I to the location of the font glyph for VX
			return fontInstruction

		case 0x33:
			// FX33 - Stores the BCD representation of VX at I, I+1 and I+2
			return bcdInstruction

		case 0x55:
			// FX55 - Stores V0 to VX in memory starting at address I
			return strInstruction

		case 0x65:
			// FX65 - Reads memory starting at address I into V0...VX
			return ldrInstruction
		}
	}

	return unknownInstruction
}

var (
	// 00E0	cls	Clear the screen
	clsInstruction = &instruction{
		Name: func(op OpCode) string {
			return "cls"
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.gfx.clear()
			vm.drawFlag = true
			return nil
		},
	}

	// 00EE	rts	return from subroutine call
	rtsInstruction = &instruction{
		Name: func(op OpCode) string {
			return "rts"
		},
		Execute: func(vm *VM, op OpCode) error {
			pc, err := vm.pop()
			if err != nil {
				return err
			}
			vm.pc = pc
			return nil
		},
	}

	// 1xxx	jmp xxx	jump to address xxx
	jmpInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("jmp 0x%04x", op.NNN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.pc = op.NNN
			return nil
		},
	}

	// 2xxx	jsr xxx	jump to subroutine at address xxx
	jsrInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("jsr 0x%04x", op.NNN)
		},
		Execute: func(vm *VM, op OpCode) error {
			if err := vm.push(vm.pc); err != nil {
				return err
			}
			vm.pc = op.NNN
			return nil
		},
	}

	// 3rxx	skeq vr,xx	skip if register r = constant
	skeq1Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("skeq v%x, %d", op.X, op.NN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.skipIf(vm.registers[op.X] == op.NN)
			return nil
		},
	}

	// 4rxx	skne vr,xx	skip if register r <> constant
	skne1Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("skne v%x, %d", op.X, op.NN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.skipIf(vm.registers[op.X] != op.NN)
			return nil
		},
	}

	// 5ry0	skeq vr,vy	skip if register r = register y
	skeq2Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("skeq v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.skipIf(vm.registers[op.X] == vm.registers[op.Y])
			return nil
		},
	}

	// 6rxx	mov vr,xx	move constant to register r
	mov1Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("mov v%x, %d", op.X, op.NN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] = op.NN
			return nil
		},
	}

	// 7rxx	add vr,xx	add constant to register r	No carry generated
	add1Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("add v%x, %d", op.X, op.NN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] += op.NN
			return nil
		},
	}

	// 8ry0	mov vr,vy	move register vy into vr
	mov2Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("mov v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] = vm.registers[op.Y]
			return nil
		},
	}

	// 8ry1	or rx,ry	or register vy into register vx
	orInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("or v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] |= vm.registers[op.Y]
			return nil
		},
	}

	// 8ry2	and rx,ry	and register vy into register vx
	andInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("and v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] &= vm.registers[op.Y]
			return nil
		},
	}

	// 8ry3	xor rx,ry	exclusive or register ry into register rx
	xorInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("xor v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] ^= vm.registers[op.Y]
			return nil
		},
	}

	// 8ry4	add vr,vy	add register vy to vr,carry in vf
	add2Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("add v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			x := vm.registers[op.X]
			y := vm.registers[op.Y]
			sum := uint16(x) + uint16(y)

			vm.registers[op.X] = uint8(sum)
			vm.setFlag(sum > 0xFF)
			return nil
		},
	}

	// 8ry5	sub vr,vy	subtract register vy from vr	vf set to 0 if borrows
	subInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("sub v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			x := vm.registers[op.X]
			y := vm.registers[op.Y]

			vm.registers[op.X] = x - y
			vm.setFlag(x >= y)
			return nil
		},
	}

	// 8r06	shr vr	shift register vr right, bit 0 goes into register vf
	shrInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("shr v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			x := vm.registers[op.X]

			vm.registers[op.X] = x >> 1
			vm.registers[FlagRegister] = x & 0x01
			return nil
		},
	}

	// 8ry7	rsb vr,vy	subtract register vr from register vy, result in vr	vf set to 0 if borrows
	rsbInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("rsb v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			x := vm.registers[op.X]
			y := vm.registers[op.Y]

			vm.registers[op.X] = y - x
			vm.setFlag(y >= x)
			return nil
		},
	}

	// 8r0e	shl vr	shift register vr left, bit 7 goes into register vf
	shlInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("shl v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			x := vm.registers[op.X]

			vm.registers[op.X] = x << 1
			vm.registers[FlagRegister] = x >> 7
			return nil
		},
	}

	// 9ry0	skne vr,vy	skip if register r <> register y
	skne2Instruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("skne v%x, v%x", op.X, op.Y)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.skipIf(vm.registers[op.X] != vm.registers[op.Y])
			return nil
		},
	}

	// axxx	mvi xxx	Load index register with constant xxx
	mviInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("mvi 0x%04x", op.NNN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.index = op.NNN
			return nil
		},
	}

	// bxxx	jmi xxx	Jump to address xxx+register v0
	jmiInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("jmi 0x%04x", op.NNN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.pc = (op.NNN + uint16(vm.registers[0x0])) & AddressMask
			return nil
		},
	}

	// crxx	rand vr,xx	vr = random byte AND xx
	randInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("rand v%x, 0x%02x", op.X, op.NN)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] = vm.rng.NextByte() & op.NN
			return nil
		},
	}

	// drys	sprite rx,ry,s	Draw sprite at screen location rx,ry height s
	// Sprite rows are read from memory at I, 8 pixels wide, MSB first.
	// The start position wraps, the sprite itself is clipped at the edges.
	// All drawing is xor drawing; vf is set to 1 if a lit pixel is cleared.
	spriteInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("sprite v%x, v%x, %d", op.X, op.Y, op.N)
		},
		Execute: func(vm *VM, op OpCode) error {
			xLocation := int(vm.registers[op.X]) % ScreenWidth
			yLocation := int(vm.registers[op.Y]) % ScreenHeight

			vm.registers[FlagRegister] = 0
			hasCollision := false

			for row := 0; row < int(op.N); row++ {
				y := yLocation + row
				if y >= ScreenHeight {
					break
				}

				pixels := vm.readMemory(vm.index + uint16(row))

				const width = 8
				for col := 0; col < width; col++ {
					x := xLocation + col
					if x >= ScreenWidth {
						break
					}

					if pixels&(0x80>>col) == 0 {
						continue
					}

					if vm.gfx[y][x] {
						hasCollision = true
					}
					vm.gfx[y][x] = !vm.gfx[y][x]
				}
			}

			vm.setFlag(hasCollision)
			vm.drawFlag = true
			return nil
		},
	}

	// ek9e	skpr k	skip if key (register rk) pressed
	skprInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("skpr v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			key := vm.registers[op.X] & 0x0F
			vm.skipIf(vm.keypad[key])
			return nil
		},
	}

	// eka1	skup k	skip if key (register rk) not pressed
	skupInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("skup v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			key := vm.registers[op.X] & 0x0F
			vm.skipIf(!vm.keypad[key])
			return nil
		},
	}

	// fr07	gdelay vr	get delay timer into vr
	gdelayInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("gdelay v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.registers[op.X] = vm.delayTimer
			return nil
		},
	}

	// fr0a	key vr	wait for keypress, put key in register vr
	keyInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("key v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			for i, pressed := range vm.keypad {
				if pressed {
					vm.registers[op.X] = uint8(i)
					return nil
				}
			}

			// Nothing pressed: present the same instruction on the next fetch.
			vm.pc = (vm.pc - InstructionSize) & AddressMask
			return nil
		},
	}

	// fr15	sdelay vr	set the delay timer to vr
	sdelayInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("sdelay v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.delayTimer = vm.registers[op.X]
			return nil
		},
	}

	// fr18	ssound vr	set the sound timer to vr
	ssoundInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("ssound v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.soundTimer = vm.registers[op.X]
			return nil
		},
	}

	// fr1e	adi vr	add register vr to the index register
	adiInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("adi v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			vm.index += uint16(vm.registers[op.X])
			return nil
		},
	}

	// fr29	font vr	point I to the sprite for hexadecimal character in vr	Sprite is 5 bytes high
	fontInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("font v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			digit := uint16(vm.registers[op.X] & 0x0F)
			vm.index = FontStart + digit*FontGlyphSize
			return nil
		},
	}

	// fr33	bcd vr	store the bcd representation of register vr at location I,I+1,I+2	Doesn't change I
	bcdInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("bcd v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			x := vm.registers[op.X]

			vm.writeMemory(vm.index, x/100)
			vm.writeMemory(vm.index+1, (x/10)%10)
			vm.writeMemory(vm.index+2, x%10)
			return nil
		},
	}

	// fr55	str v0-vr	store registers v0-vr at location I onwards	I is not changed
	strInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("str v0-v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			for i := uint16(0); i <= uint16(op.X); i++ {
				vm.writeMemory(vm.index+i, vm.registers[i])
			}
			return nil
		},
	}

	// fr65	ldr v0-vr	load registers v0-vr from location I onwards	I is not changed
	ldrInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("ldr v0-v%x", op.X)
		},
		Execute: func(vm *VM, op OpCode) error {
			for i := uint16(0); i <= uint16(op.X); i++ {
				vm.registers[i] = vm.readMemory(vm.index + i)
			}
			return nil
		},
	}

	unknownInstruction = &instruction{
		Name: func(op OpCode) string {
			return fmt.Sprintf("unknown 0x%04X", op.Code)
		},
		Execute: func(vm *VM, op OpCode) error {
			return ErrUnknownOpcode
		},
	}
)
