package vm

import (
	"fmt"
	"log/slog"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	KeyCount      = 16

	AddressMask  = uint16(MemorySize - 1)
	FlagRegister = 0x0F

	ProgramStart    = uint16(0x200)
	MaxProgramSize  = MemorySize - int(ProgramStart)
	InstructionSize = 2
)

// VM owns the complete machine state. It is not safe for concurrent use: a
// single driver fetches, executes, ticks timers and forwards key events.
type VM struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack [StackSize]uint16 // Stack
	sp    uint16            // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	gfx      Framebuffer    // Graphics buffer
	keypad   [KeyCount]bool // Keypad
	drawFlag bool           // Indicates a draw has occurred

	rng     RandomSource
	program []byte
}

// New returns a powered-on machine with an empty program area.
func New() *VM {
	vm := &VM{
		rng: NewRandomSource(0),
	}
	vm.initialize()
	return vm
}

// SetRandomSource replaces the byte source used by the rand instruction.
func (vm *VM) SetRandomSource(rng RandomSource) {
	vm.rng = rng
}

// LoadROM copies a program image to ProgramStart. Images that do not fit
// below the end of memory are rejected and memory is left untouched.
func (vm *VM) LoadROM(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrROMTooLarge, len(program), MaxProgramSize)
	}

	vm.program = append(vm.program[:0], program...)

	clear(vm.memory[ProgramStart:])
	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	copy(vm.memory[ProgramStart:], vm.program)
	return nil
}

// Reset restores the power-on state and reloads the last program image.
func (vm *VM) Reset() {
	vm.initialize()

	if len(vm.program) > 0 {
		slog.Debug("reload program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(vm.program))
		copy(vm.memory[ProgramStart:], vm.program)
	}
}

func (vm *VM) initialize() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.sp = 0

	// Clear the display
	vm.gfx.clear()
	vm.drawFlag = true

	// Clear the stack, keypad, and V registers
	vm.stack = [StackSize]uint16{}
	vm.keypad = [KeyCount]bool{}
	vm.registers = [RegisterCount]uint8{}

	// Clear memory
	vm.memory = [MemorySize]uint8{}

	// Load font set into memory
	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", FontStart), "n", len(chip8Font))
	copy(vm.memory[FontStart:], chip8Font[:])

	// Reset timers
	vm.delayTimer = 0
	vm.soundTimer = 0
}

// FetchDecode reads the instruction at PC, advances PC past it and returns
// the decoded form.
func (vm *VM) FetchDecode() OpCode {
	hi := vm.readMemory(vm.pc)
	lo := vm.readMemory(vm.pc + 1)

	vm.pc = (vm.pc + InstructionSize) & AddressMask
	return Decode(hi, lo)
}

// Step fetches and executes a single instruction.
func (vm *VM) Step() error {
	return vm.Execute(vm.FetchDecode())
}

// Tick decrements both timers toward zero. It is driven at 60 Hz by the
// caller, independently of instruction throughput.
func (vm *VM) Tick() {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}

	if vm.soundTimer > 0 {
		vm.soundTimer--
	}
}

// SoundActive reports whether the sound timer is running.
func (vm *VM) SoundActive() bool {
	return vm.soundTimer > 0
}

func (vm *VM) KeyDown(key Key) {
	vm.keypad[key&0x0F] = true
}

func (vm *VM) KeyUp(key Key) {
	vm.keypad[key&0x0F] = false
}

// KeyPressed reports the current state of a keypad key.
func (vm *VM) KeyPressed(key Key) bool {
	return vm.keypad[key&0x0F]
}

// Framebuffer returns a snapshot of the display.
func (vm *VM) Framebuffer() Framebuffer {
	return vm.gfx
}

// Pixel reports whether the pixel at (x, y) is lit. Out of range
// coordinates are reported as unlit.
func (vm *VM) Pixel(x, y int) bool {
	return vm.gfx.At(x, y)
}

// ConsumeDrawFlag reports whether the display changed since the previous
// call and clears the flag.
func (vm *VM) ConsumeDrawFlag() bool {
	drawn := vm.drawFlag
	vm.drawFlag = false
	return drawn
}

func (vm *VM) PC() uint16 {
	return vm.pc
}

func (vm *VM) Index() uint16 {
	return vm.index
}

// Register returns the value of register V0..VF. The index is masked to 4 bits.
func (vm *VM) Register(i int) uint8 {
	return vm.registers[i&0x0F]
}

func (vm *VM) DelayTimer() uint8 {
	return vm.delayTimer
}

func (vm *VM) SoundTimer() uint8 {
	return vm.soundTimer
}

// StackDepth returns the number of pending return addresses.
func (vm *VM) StackDepth() int {
	return int(vm.sp)
}

// ReadMemory returns the byte at addr, masked into the address space.
func (vm *VM) ReadMemory(addr uint16) uint8 {
	return vm.readMemory(addr)
}

func (vm *VM) readMemory(addr uint16) uint8 {
	return vm.memory[addr&AddressMask]
}

func (vm *VM) writeMemory(addr uint16, value uint8) {
	vm.memory[addr&AddressMask] = value
}

func (vm *VM) push(addr uint16) error {
	if int(vm.sp) >= len(vm.stack) {
		return ErrStackOverflow
	}
	vm.stack[vm.sp] = addr
	vm.sp++
	return nil
}

func (vm *VM) pop() (uint16, error) {
	if vm.sp == 0 {
		return 0, ErrStackUnderflow
	}
	vm.sp--
	return vm.stack[vm.sp], nil
}

func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.pc = (vm.pc + InstructionSize) & AddressMask
	}
}

// setFlag writes VF. It is always called after the result register has been
// written, so with X == 0xF the flag is what remains.
func (vm *VM) setFlag(cond bool) {
	if cond {
		vm.registers[FlagRegister] = 1
	} else {
		vm.registers[FlagRegister] = 0
	}
}
