package terminal

import (
	"strings"

	"github.com/kapitanov/chip8/internal/vm"
)

const (
	blockFull  = '█'
	blockUpper = '▀'
	blockLower = '▄'
	blockEmpty = ' '
)

// render draws two framebuffer rows per text line. Lines end in "\r\n"
// because the terminal is in raw mode.
func render(fb *vm.Framebuffer) string {
	var sb strings.Builder
	sb.Grow(vm.ScreenHeight / 2 * (vm.ScreenWidth*3 + 2))

	for y := 0; y < vm.ScreenHeight; y += 2 {
		for x := 0; x < vm.ScreenWidth; x++ {
			top, bottom := fb.At(x, y), fb.At(x, y+1)

			switch {
			case top && bottom:
				sb.WriteRune(blockFull)
			case top:
				sb.WriteRune(blockUpper)
			case bottom:
				sb.WriteRune(blockLower)
			default:
				sb.WriteRune(blockEmpty)
			}
		}
		sb.WriteString("\r\n")
	}

	return sb.String()
}
