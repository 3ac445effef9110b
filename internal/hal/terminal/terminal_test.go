package terminal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/vm"
	"github.com/pkg/term/termios"
	"github.com/retroenv/retrogolib/assert"
	"golang.org/x/sys/unix"
)

type keyLog struct {
	down []vm.Key
	up   []vm.Key
}

func (l *keyLog) keyDown(k vm.Key) { l.down = append(l.down, k) }
func (l *keyLog) keyUp(k vm.Key)   { l.up = append(l.up, k) }

func TestKeyboard_PressAndRelease(t *testing.T) {
	kb := newKeyboard(2)
	var log keyLog

	assert.NoError(t, kb.press('w', log.keyDown))
	assert.Equal(t, 1, len(log.down))
	assert.Equal(t, vm.Key5, log.down[0])

	kb.release(log.keyUp)
	assert.Equal(t, 0, len(log.up))

	kb.release(log.keyUp)
	assert.Equal(t, 1, len(log.up))
	assert.Equal(t, vm.Key5, log.up[0])
}

func TestKeyboard_RepeatExtendsHold(t *testing.T) {
	kb := newKeyboard(2)
	var log keyLog

	assert.NoError(t, kb.press('X', log.keyDown))
	kb.release(log.keyUp)
	assert.NoError(t, kb.press('x', log.keyDown))
	kb.release(log.keyUp)

	assert.Equal(t, 1, len(log.down))
	assert.Equal(t, vm.Key0, log.down[0])
	assert.Equal(t, 0, len(log.up))
}

func TestKeyboard_ControlKeys(t *testing.T) {
	kb := newKeyboard(0)
	var log keyLog

	assert.True(t, errors.Is(kb.press(keyInterrupt, log.keyDown), hal.ErrQuit))
	assert.True(t, errors.Is(kb.press(keyDelete, log.keyDown), hal.ErrReboot))
	assert.True(t, errors.Is(kb.press(keyBackspace, log.keyDown), hal.ErrReboot))
	assert.NoError(t, kb.press('p', log.keyDown))
	assert.Equal(t, 0, len(log.down))
}

func TestRender(t *testing.T) {
	var fb vm.Framebuffer
	fb[0][0] = true
	fb[1][0] = true
	fb[0][1] = true
	fb[1][2] = true

	lines := strings.Split(render(&fb), "\r\n")
	assert.Equal(t, vm.ScreenHeight/2+1, len(lines))

	first := []rune(lines[0])
	assert.Equal(t, vm.ScreenWidth, len(first))
	assert.Equal(t, blockFull, first[0])
	assert.Equal(t, blockUpper, first[1])
	assert.Equal(t, blockLower, first[2])
	assert.Equal(t, blockEmpty, first[3])
	assert.Equal(t, strings.Repeat(" ", vm.ScreenWidth), lines[1])
}

func openPty(t *testing.T) (*os.File, *os.File) {
	t.Helper()

	ptm, pts, err := termios.Pty()
	if err != nil {
		t.Skipf("pseudo terminal unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = pts.Close()
		_ = ptm.Close()
	})
	return ptm, pts
}

func openOutput(t *testing.T) *os.File {
	t.Helper()

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func canonical(t *testing.T, f *os.File) bool {
	t.Helper()

	var attr unix.Termios
	assert.NoError(t, termios.Tcgetattr(f.Fd(), &attr))
	return attr.Lflag&unix.ICANON != 0
}

func TestNew_NotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	defer r.Close()
	defer w.Close()

	term, err := New(r, w, 0)
	assert.True(t, err != nil)
	assert.True(t, term == nil)
}

func TestNew_RestoresOnOutputFailure(t *testing.T) {
	_, pts := openPty(t)
	assert.True(t, canonical(t, pts))

	out := openOutput(t)
	assert.NoError(t, out.Close())

	term, err := New(pts, out, 0)
	assert.True(t, err != nil)
	assert.True(t, term == nil)
	assert.True(t, canonical(t, pts))
}

func TestTerminal_Lifecycle(t *testing.T) {
	ptm, pts := openPty(t)

	term, err := New(pts, openOutput(t), 2)
	assert.NoError(t, err)
	assert.False(t, canonical(t, pts))

	_, err = ptm.Write([]byte("q"))
	assert.NoError(t, err)

	var log keyLog
	deadline := time.Now().Add(2 * time.Second)
	for len(log.down) == 0 && time.Now().Before(deadline) {
		assert.NoError(t, term.ReadInput(log.keyDown, log.keyUp))
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 1, len(log.down))
	assert.Equal(t, vm.Key4, log.down[0])

	term.Shutdown()
	assert.True(t, canonical(t, pts))

	// The reader leaves once its pending read completes.
	_, err = ptm.Write([]byte("x\n"))
	assert.NoError(t, err)
	select {
	case <-term.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("reader still running after shutdown")
	}
}
