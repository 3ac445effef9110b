package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kapitanov/chip8/internal/disasm"
	"github.com/kapitanov/chip8/internal/emulator"
	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/hal/terminal"
	"github.com/kapitanov/chip8/internal/hal/window"
	"github.com/kapitanov/chip8/internal/vm"
	"github.com/spf13/cobra"
)

const (
	displaySDL      = "sdl"
	displayTerminal = "terminal"
)

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	verbose := cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	display := cmd.Flags().StringP("display", "d", displaySDL, "display backend: sdl or terminal")
	cycles := cmd.Flags().IntP("cycles", "c", emulator.DefaultCyclesPerFrame, "instructions executed per 60 Hz frame")
	seed := cmd.Flags().Uint64("seed", 0, "random seed for the rand instruction (0 picks one)")
	scale := cmd.Flags().Int("scale", window.DefaultScale, "window pixels per CHIP-8 pixel (sdl)")
	hold := cmd.Flags().Int("hold", terminal.DefaultHoldFrames, "frames a key stays pressed after a keystroke (terminal)")

	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if *verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))
	}

	cmd.RunE = func(c *cobra.Command, args []string) error {
		bs, err := readROM(args[0])
		if err != nil {
			return err
		}

		machine := vm.New()
		if *seed != 0 {
			machine.SetRandomSource(vm.NewRandomSource(*seed))
		}
		if err := machine.LoadROM(bs); err != nil {
			return fmt.Errorf("unable to load rom %q: %w", args[0], err)
		}

		h, shutdown, err := newHAL(*display, *scale, *hold)
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer shutdown()

		return emulator.New(machine, h, *cycles).Run(c.Context())
	}

	disasmCmd := &cobra.Command{
		Use:   "disasm PATH_TO_ROM_FILE",
		Short: "Print a listing of a ROM",
		Args:  cobra.ExactArgs(1),
	}
	base := disasmCmd.Flags().Uint16("base", vm.ProgramStart, "load address of the first byte")

	disasmCmd.RunE = func(c *cobra.Command, args []string) error {
		bs, err := readROM(args[0])
		if err != nil {
			return err
		}

		return disasm.Write(c.OutOrStdout(), disasm.Disassemble(bs, *base))
	}
	cmd.AddCommand(disasmCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetArgs(os.Args[1:])
	if err := cmd.ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "err", err)
		stop()
		os.Exit(1)
	}
}

func readROM(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load file %q: %w", path, err)
	}
	return bs, nil
}

func newHAL(display string, scale, hold int) (hal.HAL, func(), error) {
	switch display {
	case displaySDL:
		w, err := window.New(scale)
		if err != nil {
			return nil, nil, err
		}
		return w, w.Shutdown, nil

	case displayTerminal:
		t, err := terminal.New(os.Stdin, os.Stdout, hold)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Shutdown, nil

	default:
		return nil, nil, fmt.Errorf("unknown display %q", display)
	}
}
