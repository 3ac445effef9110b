// Package window is the SDL2 backend: a scaled window for the display,
// scancodes for the keypad and SDL ticks for frame pacing.
package window

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	DefaultScale = 16

	bgColor = uint32(0x000000)
	fgColor = uint32(0xbea700)
)

type Window struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	nextFrame uint64
}

var _ hal.HAL = (*Window)(nil)

// New opens a window of ScreenWidth x ScreenHeight pixels, each drawn as a
// scale x scale square.
func New(scale int) (*Window, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	width := int32(vm.ScreenWidth * scale)
	height := int32(vm.ScreenHeight * scale)

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_TIMER); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	w := &Window{
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: vm.ScreenWidth * int(unsafe.Sizeof(uint32(0))),
	}
	if err := w.create(width, height); err != nil {
		w.Shutdown()
		return nil, err
	}
	return w, nil
}

func (w *Window) create(width, height int32) error {
	var err error

	w.window, err = sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, sdl.WINDOW_SHOWN|sdl.WINDOW_UTILITY)
	if err != nil {
		return fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window", "width", width, "height", height)
	w.window.Show()

	w.renderer, err = sdl.CreateRenderer(w.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	if err := w.renderer.SetLogicalSize(width, height); err != nil {
		return fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	w.texture, err = w.renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		return fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	return nil
}

// Shutdown releases whatever New managed to create, in reverse order, and
// quits SDL.
func (w *Window) Shutdown() {
	if w.texture != nil {
		if err := w.texture.Destroy(); err != nil {
			slog.Error("failed to destroy sdl texture", "err", err)
		}
		w.texture = nil
	}

	if w.renderer != nil {
		if err := w.renderer.Destroy(); err != nil {
			slog.Error("failed to destroy sdl renderer", "err", err)
		}
		w.renderer = nil
	}

	if w.window != nil {
		if err := w.window.Destroy(); err != nil {
			slog.Error("failed to destroy sdl window", "err", err)
		}
		w.window = nil
	}

	sdl.Quit()
}

func (w *Window) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e.GetType() {
		case sdl.QUIT:
			slog.Debug("hal: exit requested")
			return hal.ErrQuit

		case sdl.KEYDOWN:
			ke := e.(*sdl.KeyboardEvent)
			if ke.Repeat != 0 {
				continue
			}
			if err := processKeyDown(ke.Keysym.Scancode, keyDown); err != nil {
				return err
			}

		case sdl.KEYUP:
			processKeyUp(e.(*sdl.KeyboardEvent).Keysym.Scancode, keyUp)
		}
	}

	return nil
}

func processKeyDown(code sdl.Scancode, callback func(vm.Key)) error {
	switch code {
	case sdl.SCANCODE_BACKSPACE:
		slog.Debug("hal: reboot requested")
		return hal.ErrReboot
	case sdl.SCANCODE_ESCAPE:
		slog.Debug("hal: exit requested")
		return hal.ErrQuit
	}

	if key, ok := keyMap(code); ok {
		callback(key)
	}

	return nil
}

func processKeyUp(code sdl.Scancode, callback func(vm.Key)) {
	if key, ok := keyMap(code); ok {
		callback(key)
	}
}

func (w *Window) Draw(fb vm.Framebuffer) error {
	for y := 0; y < vm.ScreenHeight; y++ {
		for x := 0; x < vm.ScreenWidth; x++ {
			color := bgColor
			if fb[y][x] {
				color = fgColor
			}

			w.backBuffer[x+y*vm.ScreenWidth] = color
		}
	}

	backBufferPtr := unsafe.Pointer(&w.backBuffer[0])
	if err := w.texture.Update(nil, backBufferPtr, w.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := w.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	w.renderer.Present()
	return nil
}

// WaitForNextFrame sleeps on SDL ticks until one frame period has passed
// since the previous frame.
func (w *Window) WaitForNextFrame() error {
	const period = uint64(1000 / hal.FrameRate)

	now := sdl.GetTicks64()
	if w.nextFrame == 0 || now > w.nextFrame+period {
		w.nextFrame = now
	}

	w.nextFrame += period
	if w.nextFrame > now {
		sdl.Delay(uint32(w.nextFrame - now))
	}
	return nil
}
