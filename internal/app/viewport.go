package app

import (
	"time"

	"github.com/chewxy/math32"
)

// The software renderer is the bottleneck in the window; cap its pixel
// count and frame rate independently of the window size.
const (
	viewerMaxPixels = 640 * 360
	viewerInterval  = time.Second / 30
)

// renderSize scales w x h down to at most viewerMaxPixels, keeping the
// aspect ratio.
func renderSize(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	px := float32(w * h)
	if px <= viewerMaxPixels {
		return w, h
	}
	k := math32.Sqrt(viewerMaxPixels / px)
	return int(math32.Max(1, math32.Floor(float32(w)*k))), int(math32.Max(1, math32.Floor(float32(h)*k)))
}
