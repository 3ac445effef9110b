package vm

import "strings"

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Framebuffer is the monochrome display, stored row-major and indexed
// [y][x]. It is a value type: copies handed to renderers are snapshots.
type Framebuffer [ScreenHeight][ScreenWidth]bool

// At reports whether the pixel at (x, y) is lit.
func (fb *Framebuffer) At(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	return fb[y][x]
}

// Lit returns the number of lit pixels.
func (fb *Framebuffer) Lit() int {
	n := 0
	for y := range fb {
		for x := range fb[y] {
			if fb[y][x] {
				n++
			}
		}
	}
	return n
}

// String renders the framebuffer as text, '#' for lit and '.' for unlit
// pixels, one line per row.
func (fb *Framebuffer) String() string {
	var sb strings.Builder
	sb.Grow((ScreenWidth + 1) * ScreenHeight)

	for y := range fb {
		for x := range fb[y] {
			if fb[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (fb *Framebuffer) clear() {
	*fb = Framebuffer{}
}
