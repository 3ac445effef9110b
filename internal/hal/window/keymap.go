package window

import (
	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

// scancodes places hal.Layout on physical key positions, so the keypad stays
// in the same spot whatever the host keyboard layout is.
var scancodes = buildScancodes(hal.Layout)

func buildScancodes(layout map[rune]vm.Key) map[sdl.Scancode]vm.Key {
	m := make(map[sdl.Scancode]vm.Key, len(layout))
	for r, key := range layout {
		if code, ok := scancodeForRune(r); ok {
			m[code] = key
		}
	}
	return m
}

// scancodeForRune returns the US QWERTY position of a letter or digit.
func scancodeForRune(r rune) (sdl.Scancode, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return sdl.Scancode(sdl.SCANCODE_A) + sdl.Scancode(r-'a'), true
	case r >= '1' && r <= '9':
		return sdl.Scancode(sdl.SCANCODE_1) + sdl.Scancode(r-'1'), true
	case r == '0':
		return sdl.Scancode(sdl.SCANCODE_0), true
	default:
		return 0, false
	}
}

func keyMap(code sdl.Scancode) (vm.Key, bool) {
	key, ok := scancodes[code]
	return key, ok
}
