package terminal

import (
	"log/slog"

	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/vm"
)

// keyboard turns a stream of typed characters into press/release pairs. A
// pressed key is held for holdFrames frames, and every repeat of the
// character restarts the count.
type keyboard struct {
	holdFrames int
	held       [vm.KeyCount]int
}

func newKeyboard(holdFrames int) *keyboard {
	if holdFrames <= 0 {
		holdFrames = DefaultHoldFrames
	}
	return &keyboard{holdFrames: holdFrames}
}

func (k *keyboard) press(b byte, keyDown func(vm.Key)) error {
	switch b {
	case keyInterrupt:
		slog.Debug("hal: exit requested")
		return hal.ErrQuit
	case keyBackspace, keyDelete:
		slog.Debug("hal: reboot requested")
		return hal.ErrReboot
	}

	key, ok := hal.KeyForRune(rune(b))
	if !ok {
		return nil
	}

	if k.held[key] == 0 {
		keyDown(key)
	}
	k.held[key] = k.holdFrames
	return nil
}

// release ages every held key by one frame and reports the ones that expired.
func (k *keyboard) release(keyUp func(vm.Key)) {
	for i := range k.held {
		if k.held[i] == 0 {
			continue
		}

		k.held[i]--
		if k.held[i] == 0 {
			keyUp(vm.Key(i))
		}
	}
}
