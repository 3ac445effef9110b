// Package emulator paces a vm.VM against a hal.HAL: it runs a fixed number of
// instructions per frame, decays the timers at the frame rate and redraws
// when the display changed.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/vm"
)

// DefaultCyclesPerFrame gives roughly 660 instructions per second at 60 Hz.
const DefaultCyclesPerFrame = 11

type Emulator struct {
	machine *vm.VM
	hal     hal.HAL
	cycles  int

	halted bool
	frames uint64
}

func New(machine *vm.VM, h hal.HAL, cyclesPerFrame int) *Emulator {
	if cyclesPerFrame <= 0 {
		cyclesPerFrame = DefaultCyclesPerFrame
	}

	return &Emulator{
		machine: machine,
		hal:     h,
		cycles:  cyclesPerFrame,
	}
}

// Run drives the machine until the context is cancelled, the HAL reports
// ErrQuit, or the machine fails. A program that jumps to itself is treated
// as finished: the last frame stays on screen until the user quits or
// reboots.
func (e *Emulator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := e.runFrame()
		switch {
		case err == nil:
		case errors.Is(err, hal.ErrQuit):
			slog.Debug("emulator: quit", "frames", e.frames)
			return nil
		case errors.Is(err, hal.ErrReboot):
			slog.Info("reboot")
			e.reboot()
		default:
			return err
		}
	}
}

// Halted reports whether the program has stopped in a self-jump.
func (e *Emulator) Halted() bool {
	return e.halted
}

func (e *Emulator) reboot() {
	e.machine.Reset()
	e.halted = false
}

func (e *Emulator) runFrame() error {
	if err := e.hal.ReadInput(e.machine.KeyDown, e.machine.KeyUp); err != nil {
		return err
	}

	if !e.halted {
		if err := e.runCycles(); err != nil {
			return err
		}
	}
	e.machine.Tick()

	if e.machine.ConsumeDrawFlag() {
		if err := e.hal.Draw(e.machine.Framebuffer()); err != nil {
			return err
		}
	}

	e.frames++
	return e.hal.WaitForNextFrame()
}

func (e *Emulator) runCycles() error {
	for i := 0; i < e.cycles; i++ {
		pc := e.machine.PC()

		op := e.machine.FetchDecode()
		if err := e.machine.Execute(op); err != nil {
			return fmt.Errorf("emulation stopped: %w", err)
		}

		if op.Op == 0x1 && e.machine.PC() == pc {
			slog.Info("program looped", "pc", fmt.Sprintf("0x%04x", pc))
			e.halted = true
			return nil
		}
	}

	return nil
}
