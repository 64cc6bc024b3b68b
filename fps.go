package frontend

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	debugCanvasID     = "debug"
	debugCanvasWidth  = 160
	debugCanvasHeight = 48
)

// CreateDebugCanvas adds an overlay handler with id "debug" to the root
// that prints the frame statistics. It is appended last so it draws on top.
// Calling it again returns the existing overlay.
func (c *Context) CreateDebugCanvas() *CanvasHandler {
	if c.debugHandler != nil && c.debugHandler.Registered() {
		return c.debugHandler
	}
	h := c.CreateCanvas(debugCanvasID, debugCanvasWidth, debugCanvasHeight)
	h.OnPaint = func(_ *CanvasHandler, img *ebiten.Image) {
		// Semi-transparent background for readability
		img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(img, debugText(c.Stats()))
	}
	c.root.AddChild(h)
	c.debugHandler = h
	return h
}

func debugText(s Stats) string {
	return fmt.Sprintf("FPS: %.1f\nMin: %.1f (%.1f)\nFrames: %d",
		s.FPS, s.MinFPS, s.SampleMinFPS, s.NFrame)
}
