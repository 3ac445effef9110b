package vm

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// drawROM is: mov v0, x; mov v1, y; mvi 0x300; sprite v0, v1, n.
func drawROM(x, y, n uint8) []byte {
	return []byte{
		0x60, x,
		0x61, y,
		0xa3, 0x00,
		0xd0, 0x10 | n,
	}
}

func newSpriteVM(t *testing.T, rom []byte, sprite ...byte) *VM {
	t.Helper()

	vm := newTestVM(t, rom...)
	for i, b := range sprite {
		vm.writeMemory(0x300+uint16(i), b)
	}
	return vm
}

func TestSprite_ClipsAtRightEdge(t *testing.T) {
	vm := newSpriteVM(t, drawROM(60, 0, 1), 0xff)
	step(t, vm, 4)

	for x := 0; x < ScreenWidth; x++ {
		assert.Equal(t, x >= 60, vm.Pixel(x, 0))
	}
	assert.Equal(t, 4, vm.gfx.Lit())
	assert.Equal(t, uint8(0), vm.Register(FlagRegister))
}

func TestSprite_ClipsAtBottomEdge(t *testing.T) {
	vm := newSpriteVM(t, drawROM(0, 30, 4), 0x80, 0x80, 0x80, 0x80)
	step(t, vm, 4)

	assert.True(t, vm.Pixel(0, 30))
	assert.True(t, vm.Pixel(0, 31))
	assert.False(t, vm.Pixel(0, 0))
	assert.False(t, vm.Pixel(0, 1))
	assert.Equal(t, 2, vm.gfx.Lit())
}

func TestSprite_StartPositionWraps(t *testing.T) {
	vm := newSpriteVM(t, drawROM(64+3, 32+2, 1), 0xc0)
	step(t, vm, 4)

	assert.True(t, vm.Pixel(3, 2))
	assert.True(t, vm.Pixel(4, 2))
	assert.Equal(t, 2, vm.gfx.Lit())
}

func TestSprite_DrawTwiceRestores(t *testing.T) {
	rom := drawROM(10, 5, 3)
	rom = append(rom, 0xd0, 0x13) // sprite v0, v1, 3
	vm := newSpriteVM(t, rom, 0x3c, 0x42, 0x81)

	step(t, vm, 4)
	assert.Equal(t, 4+2+2, vm.gfx.Lit())
	assert.Equal(t, uint8(0), vm.Register(FlagRegister))

	step(t, vm, 1)
	assert.Equal(t, 0, vm.gfx.Lit())
	assert.Equal(t, uint8(1), vm.Register(FlagRegister))
}

func TestSprite_CollisionInEarlyRowIsKept(t *testing.T) {
	vm := newSpriteVM(t, drawROM(0, 0, 2), 0x80, 0x40)
	vm.gfx[0][0] = true
	step(t, vm, 4)

	assert.False(t, vm.Pixel(0, 0))
	assert.True(t, vm.Pixel(1, 1))
	assert.Equal(t, uint8(1), vm.Register(FlagRegister))
}

func TestSprite_ZeroBitsLeavePixels(t *testing.T) {
	vm := newSpriteVM(t, drawROM(0, 0, 1), 0x0f)
	vm.gfx[0][0] = true
	step(t, vm, 4)

	assert.True(t, vm.Pixel(0, 0))
	assert.True(t, vm.Pixel(4, 0))
	assert.Equal(t, uint8(0), vm.Register(FlagRegister))
}

func TestSprite_FlagRegisterCoordinates(t *testing.T) {
	vm := newSpriteVM(t, []byte{
		0x6f, 0x08, // mov vf, 8
		0x61, 0x01, // mov v1, 1
		0xa3, 0x00, // mvi 0x300
		0xdf, 0x11, // sprite vf, v1, 1
	}, 0x80)
	step(t, vm, 4)

	assert.True(t, vm.Pixel(8, 1))
	assert.Equal(t, uint8(0), vm.Register(FlagRegister))
}

func TestClearScreen(t *testing.T) {
	rom := drawROM(0, 0, 5)
	rom = append(rom, 0x00, 0xe0) // cls
	vm := newSpriteVM(t, rom, 0xff, 0xff, 0xff, 0xff, 0xff)

	step(t, vm, 4)
	assert.Equal(t, 40, vm.gfx.Lit())
	assert.True(t, vm.ConsumeDrawFlag())
	assert.False(t, vm.ConsumeDrawFlag())

	step(t, vm, 1)
	assert.Equal(t, 0, vm.gfx.Lit())
	assert.True(t, vm.ConsumeDrawFlag())
}

func TestFramebuffer_String(t *testing.T) {
	var fb Framebuffer
	fb[0][1] = true

	s := fb.String()
	assert.Equal(t, (ScreenWidth+1)*ScreenHeight, len(s))
	assert.Equal(t, ".#..", s[:4])
}
