package window

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestShutdown_Empty(t *testing.T) {
	w := &Window{}
	w.Shutdown()

	assert.True(t, w.window == nil)
	assert.True(t, w.renderer == nil)
	assert.True(t, w.texture == nil)
}

func TestNew_ReleasesSDL(t *testing.T) {
	t.Setenv("SDL_VIDEODRIVER", "dummy")

	// The dummy driver has no accelerated renderer, so New may fail after
	// the window exists. Either way nothing is left initialised.
	w, err := New(1)
	if err == nil {
		w.Shutdown()
	}
	assert.Equal(t, uint32(0), sdl.WasInit(sdl.INIT_VIDEO))
}
