package frontend

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestEbitenStateNoTarget(t *testing.T) {
	s := NewEbitenState()
	root := NewCanvasHandler(1, "root", 100, 100)
	root.OnPaint = func(*CanvasHandler, *ebiten.Image) {}
	s.Draw(root)
	if s.DrawCalls() != 0 {
		t.Errorf("DrawCalls = %d, want 0", s.DrawCalls())
	}
	if s.Target() != nil {
		t.Error("Target should be nil")
	}
}

func TestEbitenStateNilRoot(t *testing.T) {
	s := NewEbitenState()
	s.Draw(nil)
	if s.DrawCalls() != 0 {
		t.Errorf("DrawCalls = %d, want 0", s.DrawCalls())
	}
}

func TestContextDrawsThroughEbitenState(t *testing.T) {
	c, _, _ := newTestContext(t)
	s := NewEbitenState()
	c.SetGLState(s)
	if c.GLState() != GLState(s) {
		t.Fatal("SetGLState did not install the ebiten state")
	}
	// Without a target the frame completes and nothing is drawn.
	c.Frame(true)
	if s.DrawCalls() != 0 {
		t.Errorf("DrawCalls = %d, want 0", s.DrawCalls())
	}
}
