// Package hal defines the boundary between the emulator loop and the
// platform backends that draw the display, read the keyboard and pace frames.
package hal

import (
	"errors"
	"time"

	"github.com/kapitanov/chip8/internal/vm"
)

// FrameRate is the timer and display refresh rate.
const FrameRate = 60

// FrameDuration is the length of one frame at FrameRate.
const FrameDuration = time.Second / FrameRate

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

// HAL is implemented by every display/input backend.
type HAL interface {
	// ReadInput drains pending input events. It returns ErrQuit or ErrReboot
	// when the user asked for it.
	ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error

	// Draw presents a framebuffer snapshot.
	Draw(fb vm.Framebuffer) error

	// WaitForNextFrame blocks until the next frame is due.
	WaitForNextFrame() error
}

// FrameLimiter sleeps so that successive Wait calls are at least one period
// apart.
type FrameLimiter struct {
	period time.Duration
	next   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func NewFrameLimiter(period time.Duration) *FrameLimiter {
	return &FrameLimiter{
		period: period,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (l *FrameLimiter) Wait() {
	now := l.now()
	if l.next.IsZero() {
		l.next = now
	}

	l.next = l.next.Add(l.period)
	if d := l.next.Sub(now); d > 0 {
		l.sleep(d)
		return
	}

	// Running behind: restart the schedule instead of bursting to catch up.
	l.next = now
}
