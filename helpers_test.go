package frontend

import (
	"errors"
	"testing"
	"time"
)

// fakeGL records Draw calls.
type fakeGL struct {
	draws  []*CanvasHandler
	onDraw func(root *CanvasHandler)
}

func (g *fakeGL) Draw(root *CanvasHandler) {
	g.draws = append(g.draws, root)
	if g.onDraw != nil {
		g.onDraw(root)
	}
}

// fakeShader succeeds unless err is set.
type fakeShader struct {
	err   error
	calls int
}

func (s *fakeShader) Init() error {
	s.calls++
	return s.err
}

// fakeUI records forwarded calls.
type fakeUI struct {
	calls    []string
	size     [2]int
	position [2]int
}

func (u *fakeUI) Log(msg string) { u.calls = append(u.calls, "log:"+msg) }
func (u *fakeUI) LogClear()      { u.calls = append(u.calls, "clear") }
func (u *fakeUI) LogShow()       { u.calls = append(u.calls, "show") }
func (u *fakeUI) LogHide()       { u.calls = append(u.calls, "hide") }

func (u *fakeUI) SetWindowSize(w, h int)     { u.size = [2]int{w, h} }
func (u *fakeUI) SetWindowPosition(x, y int) { u.position = [2]int{x, y} }

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var errShaderBroken = errors.New("shader broken")

// newTestContext returns a 800x600 Context with fake collaborators.
func newTestContext(t *testing.T) (*Context, *fakeGL, *fakeClock) {
	t.Helper()
	gl := &fakeGL{}
	clk := newFakeClock()
	c, err := NewContext(Options{
		Width:      800,
		Height:     600,
		GLState:    gl,
		ShaderLang: &fakeShader{},
		Clock:      clk.Now,
	})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return c, gl, clk
}

// addChild creates a registered child of parent at (left, top).
func addChild(c *Context, parent *CanvasHandler, id string, left, top, w, h float64) *CanvasHandler {
	child := c.CreateCanvas(id, w, h)
	child.left, child.top = left, top
	parent.AddChild(child)
	return child
}

// eventNames records the names of every event of the listed types reaching h.
func eventNames(h *CanvasHandler, types ...EventType) *[]string {
	var names []string
	for _, typ := range types {
		h.AddEventListener(typ, func(ev *Event) {
			names = append(names, ev.Name)
		})
	}
	return &names
}
