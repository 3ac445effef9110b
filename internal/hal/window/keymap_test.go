package window

import (
	"testing"

	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/vm"
	"github.com/retroenv/retrogolib/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestKeyMap(t *testing.T) {
	tests := []struct {
		code     sdl.Scancode
		expected vm.Key
	}{
		{sdl.SCANCODE_X, vm.Key0},
		{sdl.SCANCODE_1, vm.Key1},
		{sdl.SCANCODE_4, vm.KeyC},
		{sdl.SCANCODE_Q, vm.Key4},
		{sdl.SCANCODE_R, vm.KeyD},
		{sdl.SCANCODE_Z, vm.KeyA},
		{sdl.SCANCODE_V, vm.KeyF},
	}

	for _, tt := range tests {
		key, ok := keyMap(tt.code)
		assert.True(t, ok)
		assert.Equal(t, tt.expected, key)
	}

	_, ok := keyMap(sdl.SCANCODE_P)
	assert.False(t, ok)
	_, ok = keyMap(sdl.SCANCODE_BACKSPACE)
	assert.False(t, ok)
	assert.Equal(t, len(hal.Layout), len(scancodes))
}

func TestScancodeForRune(t *testing.T) {
	code, ok := scancodeForRune('0')
	assert.True(t, ok)
	assert.Equal(t, sdl.Scancode(sdl.SCANCODE_0), code)

	code, ok = scancodeForRune('9')
	assert.True(t, ok)
	assert.Equal(t, sdl.Scancode(sdl.SCANCODE_9), code)

	code, ok = scancodeForRune('m')
	assert.True(t, ok)
	assert.Equal(t, sdl.Scancode(sdl.SCANCODE_M), code)

	_, ok = scancodeForRune('#')
	assert.False(t, ok)
}
