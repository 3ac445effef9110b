// Package terminal is a text-mode backend. The terminal is switched to raw
// mode with termios, the display is drawn with half-block characters (two
// pixel rows per text line) and key releases are synthesised because
// terminals only report presses.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/vm"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// DefaultHoldFrames is how long a key stays down after its last press.
const DefaultHoldFrames = 6

const (
	keyInterrupt = 0x03 // ctrl-c
	keyBackspace = 0x08
	keyDelete    = 0x7f

	escClearScreen = "\x1b[2J"
	escHome        = "\x1b[H"
	escHideCursor  = "\x1b[?25l"
	escShowCursor  = "\x1b[?25h"
	escReset       = "\x1b[0m"
)

type Terminal struct {
	input  *os.File
	output *bufio.Writer

	canAttr unix.Termios
	rawAttr unix.Termios

	keys    *keyboard
	events  chan byte
	done    chan struct{}
	stopped chan struct{}
	limiter *hal.FrameLimiter
}

var _ hal.HAL = (*Terminal)(nil)

// New puts input into raw mode and prepares output for drawing.
func New(input, output *os.File, holdFrames int) (*Terminal, error) {
	if input == nil {
		return nil, fmt.Errorf("terminal requires an input file")
	}
	if output == nil {
		return nil, fmt.Errorf("terminal requires an output file")
	}

	t := &Terminal{
		input:   input,
		output:  bufio.NewWriter(output),
		keys:    newKeyboard(holdFrames),
		events:  make(chan byte, 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		limiter: hal.NewFrameLimiter(hal.FrameDuration),
	}

	if err := termios.Tcgetattr(t.input.Fd(), &t.canAttr); err != nil {
		return nil, fmt.Errorf("failed to read terminal attributes: %w", err)
	}
	t.rawAttr = t.canAttr
	termios.Cfmakeraw(&t.rawAttr)

	if err := termios.Tcsetattr(t.input.Fd(), termios.TCSANOW, &t.rawAttr); err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	slog.Debug("hal: terminal in raw mode")

	t.output.WriteString(escClearScreen + escHideCursor)
	if err := t.output.Flush(); err != nil {
		t.restore()
		return nil, fmt.Errorf("failed to write to terminal: %w", err)
	}

	go t.readLoop()
	return t, nil
}

// Shutdown restores the terminal to canonical mode. The reader goroutine
// exits once the pending Read returns, which for an interactive terminal is
// the next keystroke or process exit.
func (t *Terminal) Shutdown() {
	close(t.done)

	t.output.WriteString(escReset + escShowCursor + "\r\n")
	if err := t.output.Flush(); err != nil {
		slog.Error("failed to flush terminal", "err", err)
	}

	t.restore()
}

func (t *Terminal) restore() {
	if err := termios.Tcsetattr(t.input.Fd(), termios.TCSANOW, &t.canAttr); err != nil {
		slog.Error("failed to restore terminal attributes", "err", err)
	}
}

func (t *Terminal) readLoop() {
	defer close(t.stopped)

	buf := make([]byte, 16)
	for {
		n, err := t.input.Read(buf)
		for _, b := range buf[:n] {
			select {
			case t.events <- b:
			case <-t.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				slog.Debug("hal: terminal read failed", "err", err)
			}
			close(t.events)
			return
		}

		select {
		case <-t.done:
			return
		default:
		}
	}
}

func (t *Terminal) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	for {
		select {
		case b, ok := <-t.events:
			if !ok {
				return hal.ErrQuit
			}
			if err := t.keys.press(b, keyDown); err != nil {
				return err
			}
		default:
			t.keys.release(keyUp)
			return nil
		}
	}
}

func (t *Terminal) Draw(fb vm.Framebuffer) error {
	t.output.WriteString(escHome)
	t.output.WriteString(render(&fb))
	return t.output.Flush()
}

func (t *Terminal) WaitForNextFrame() error {
	t.limiter.Wait()
	return nil
}
