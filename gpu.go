package frontend

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// GLState is the GPU-side collaborator. The Context calls Draw once per drawn
// frame with the root handler; everything below that call is the backend's
// business.
type GLState interface {
	Draw(root *CanvasHandler)
}

// EbitenState draws the handler tree onto an ebiten image. Each handler with
// an OnPaint hook owns a surface sized to the handler; surfaces of handlers
// that were not drawn in a frame are released at the end of it.
type EbitenState struct {
	// ClearColor fills the target before the tree is drawn. A zero value
	// leaves the target untouched.
	ClearColor Color

	target   *ebiten.Image
	white    *ebiten.Image
	surfaces map[uint64]*ebiten.Image
	seen     map[uint64]bool
	op       ebiten.DrawImageOptions

	drawCalls int
}

// NewEbitenState returns a state with no target; Draw is a no-op until
// SetTarget is called.
func NewEbitenState() *EbitenState {
	return &EbitenState{
		surfaces: make(map[uint64]*ebiten.Image),
		seen:     make(map[uint64]bool),
	}
}

// SetTarget sets the image the next Draw renders into, usually the screen
// passed to ebiten.Game.Draw.
func (s *EbitenState) SetTarget(img *ebiten.Image) {
	s.target = img
}

// Target returns the current target image.
func (s *EbitenState) Target() *ebiten.Image {
	return s.target
}

// DrawCalls returns the number of DrawImage calls issued by the last Draw.
func (s *EbitenState) DrawCalls() int {
	return s.drawCalls
}

// Draw renders root and its visible descendants in painter order.
func (s *EbitenState) Draw(root *CanvasHandler) {
	s.drawCalls = 0
	if s.target == nil || root == nil {
		return
	}
	if s.white == nil {
		s.white = ebiten.NewImage(1, 1)
		s.white.Fill(ColorWhite.toRGBA())
	}
	if s.ClearColor.A > 0 {
		s.target.Fill(s.ClearColor.toRGBA())
	}
	clear(s.seen)
	s.drawHandler(root, 0, 0, 1)
	s.releaseUnseen()
}

func (s *EbitenState) drawHandler(h *CanvasHandler, parentX, parentY, parentAlpha float64) {
	if !h.visible {
		return
	}
	x := parentX + h.left
	y := parentY + h.top
	alpha := parentAlpha * h.opacity
	w, ht := h.width, h.height

	if alpha > 0 && w >= 1 && ht >= 1 {
		if h.background.A > 0 {
			s.op.GeoM.Reset()
			s.op.GeoM.Scale(w, ht)
			s.op.GeoM.Translate(x, y)
			s.op.ColorScale.Reset()
			bg := h.background
			a := float32(bg.A * alpha)
			s.op.ColorScale.Scale(float32(bg.R)*a, float32(bg.G)*a, float32(bg.B)*a, a)
			s.target.DrawImage(s.white, &s.op)
			s.drawCalls++
		}
		if h.OnPaint != nil {
			surface := s.surfaceFor(h)
			surface.Clear()
			h.OnPaint(h, surface)
			s.op.GeoM.Reset()
			s.op.GeoM.Translate(x, y)
			s.op.ColorScale.Reset()
			s.op.ColorScale.ScaleAlpha(float32(alpha))
			s.target.DrawImage(surface, &s.op)
			s.drawCalls++
		}
	}

	for _, child := range h.children {
		s.drawHandler(child, x, y, alpha)
	}
}

// surfaceFor returns h's surface, reallocating it when the size changed.
func (s *EbitenState) surfaceFor(h *CanvasHandler) *ebiten.Image {
	w, ht := int(h.width), int(h.height)
	s.seen[h.idx] = true
	if img, ok := s.surfaces[h.idx]; ok {
		b := img.Bounds()
		if b.Dx() == w && b.Dy() == ht {
			return img
		}
		img.Deallocate()
	}
	img := ebiten.NewImage(w, ht)
	s.surfaces[h.idx] = img
	return img
}

func (s *EbitenState) releaseUnseen() {
	for idx, img := range s.surfaces {
		if !s.seen[idx] {
			img.Deallocate()
			delete(s.surfaces, idx)
		}
	}
}
