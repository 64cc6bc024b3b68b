package frontend

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestNewContextRequiresGLState(t *testing.T) {
	_, err := NewContext(Options{Width: 10, Height: 10, ShaderLang: &fakeShader{}})
	if !errors.Is(err, ErrNoGLState) {
		t.Errorf("err = %v, want ErrNoGLState", err)
	}
}

func TestNewContextShaderFailureAborts(t *testing.T) {
	sh := &fakeShader{err: errShaderBroken}
	c, err := NewContext(Options{Width: 10, Height: 10, GLState: &fakeGL{}, ShaderLang: sh})
	if c != nil {
		t.Error("context returned despite shader failure")
	}
	if !errors.Is(err, errShaderBroken) {
		t.Errorf("err = %v, want wrapped shader error", err)
	}
	if sh.calls != 1 {
		t.Errorf("Init calls = %d, want 1", sh.calls)
	}
}

func TestNewContextInvalidSize(t *testing.T) {
	_, err := NewContext(Options{Width: -1, Height: 10, GLState: &fakeGL{}, ShaderLang: &fakeShader{}})
	if err == nil {
		t.Error("expected error for negative width")
	}
}

func TestNewContextRoot(t *testing.T) {
	c, _, _ := newTestContext(t)
	root := c.RootHandler()
	if root == nil {
		t.Fatal("nil root")
	}
	if root.ID() != "root" {
		t.Errorf("root ID = %q, want root", root.ID())
	}
	if root.Width() != 800 || root.Height() != 600 {
		t.Errorf("root size = %vx%v, want 800x600", root.Width(), root.Height())
	}
	if c.GetCanvasByID("root") != root || c.GetCanvasByIdx(root.Idx()) != root {
		t.Error("root not registered")
	}
	if c.ID() == "" {
		t.Error("empty context ID")
	}
	if _, ok := c.UI().(nopUI); !ok {
		t.Errorf("default UI = %T, want nopUI", c.UI())
	}
}

func TestRegisterScenario(t *testing.T) {
	c, _, _ := newTestContext(t)
	h := NewCanvasHandler(7, "root", 10, 10)
	if err := c.Register(h); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if c.GetCanvasByIdx(7) != h {
		t.Error("GetCanvasByIdx(7) did not return handler")
	}
	if c.GetCanvasByID("root") != h {
		t.Error("GetCanvasByID(root) did not return handler")
	}

	c.Unregister(h)
	if c.GetCanvasByIdx(7) != nil {
		t.Error("GetCanvasByIdx(7) after Unregister != nil")
	}
	if c.GetCanvasByID("root") != nil {
		t.Error("GetCanvasByID(root) after Unregister != nil")
	}
}

func TestRegisterDuplicateIdx(t *testing.T) {
	c, _, _ := newTestContext(t)
	dup := NewCanvasHandler(c.RootHandler().Idx(), "dup", 1, 1)
	if err := c.Register(dup); !errors.Is(err, ErrDuplicateIdx) {
		t.Errorf("err = %v, want ErrDuplicateIdx", err)
	}
}

func TestCreateCanvasSkipsRegisteredIdx(t *testing.T) {
	c, _, _ := newTestContext(t)
	if err := c.Register(NewCanvasHandler(50, "manual", 1, 1)); err != nil {
		t.Fatal(err)
	}
	h := c.CreateCanvas("auto", 1, 1)
	if h.Idx() <= 50 {
		t.Errorf("CreateCanvas idx = %d, want > 50", h.Idx())
	}
}

func TestLookupMissReturnsNil(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.SetDebugMode(true)
	if c.GetCanvasByID("nope") != nil {
		t.Error("GetCanvasByID(nope) != nil")
	}
	if c.GetCanvasByIdx(9999) != nil {
		t.Error("GetCanvasByIdx(9999) != nil")
	}
}

func TestSizeChangesCoalesce(t *testing.T) {
	c, _, _ := newTestContext(t)

	var sizes [][2]float64
	c.RootHandler().AddEventListener(EventResize, func(ev *Event) {
		sizes = append(sizes, [2]float64{ev.Width, ev.Height})
	})

	c.SizeChanged(100, 100)
	c.SizeChanged(200, 150)
	c.SizeChanged(320, 240)
	if !c.IsSizeDirty() {
		t.Fatal("IsSizeDirty = false after SizeChanged")
	}
	if w := c.RootHandler().Width(); w != 800 {
		t.Errorf("root resized before frame: width = %v", w)
	}

	c.Frame(false)

	if c.IsSizeDirty() {
		t.Error("IsSizeDirty = true after frame")
	}
	root := c.RootHandler()
	if root.Width() != 320 || root.Height() != 240 {
		t.Errorf("root = %vx%v, want 320x240", root.Width(), root.Height())
	}
	if want := [][2]float64{{320, 240}}; !reflect.DeepEqual(sizes, want) {
		t.Errorf("resize events = %v, want %v", sizes, want)
	}
	if w, h := c.WindowSize(); w != 320 || h != 240 {
		t.Errorf("WindowSize = %dx%d, want 320x240", w, h)
	}
}

func TestSizeNeedUpdateIdempotent(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.SizeNeedUpdate()
	c.SizeNeedUpdate()
	if !c.IsSizeDirty() {
		t.Fatal("IsSizeDirty = false")
	}
	if !c.IsSizeDirty() {
		t.Error("IsSizeDirty is not side-effect free")
	}
	c.Frame(false)
	if c.IsSizeDirty() {
		t.Error("IsSizeDirty = true after frame")
	}
}

func TestSetWindowFrameUsesSizer(t *testing.T) {
	ui := &fakeUI{}
	c, _, _ := newTestContext(t)
	c.SetUIObject(ui)

	c.SetWindowFrame(10, 20, 300, 200)
	if ui.size != [2]int{300, 200} {
		t.Errorf("sizer size = %v, want [300 200]", ui.size)
	}
	if ui.position != [2]int{10, 20} {
		t.Errorf("sizer position = %v, want [10 20]", ui.position)
	}
	x, y, w, h := c.WindowFrame()
	if x != 10 || y != 20 || w != 300 || h != 200 {
		t.Errorf("WindowFrame = %d,%d %dx%d", x, y, w, h)
	}
	if !c.IsSizeDirty() {
		t.Error("SetWindowFrame did not mark size dirty")
	}
}

func TestSizeChangedConcurrent(t *testing.T) {
	c, _, _ := newTestContext(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.SizeChanged(100+i, 100+i)
		}(i)
	}
	wg.Wait()
	c.Frame(false)
	w, h := c.WindowSize()
	if c.RootHandler().Width() != float64(w) || c.RootHandler().Height() != float64(h) {
		t.Errorf("root %vx%v does not match window %dx%d", c.RootHandler().Width(), c.RootHandler().Height(), w, h)
	}
}

func TestFrameDrawFlag(t *testing.T) {
	c, gl, _ := newTestContext(t)

	c.Frame(false)
	if len(gl.draws) != 0 {
		t.Errorf("draws = %d after Frame(false), want 0", len(gl.draws))
	}
	c.Frame(true)
	if len(gl.draws) != 1 || gl.draws[0] != c.RootHandler() {
		t.Errorf("draws = %v, want [root]", gl.draws)
	}
}

func TestFrameStepOrder(t *testing.T) {
	c, gl, _ := newTestContext(t)
	h := addChild(c, c.RootHandler(), "box", 0, 0, 10, 10)

	var order []string
	h.OnChange = func(*CanvasHandler) { order = append(order, "pending") }
	h.AddCustomListener("ev", func(*Event) { order = append(order, "event") })
	gl.onDraw = func(*CanvasHandler) { order = append(order, "draw") }
	c.RootHandler().AddEventListener(EventResize, func(*Event) { order = append(order, "resize") })

	c.AddJob(func(any) {
		order = append(order, "job")
		h.SetLeft(3)
		h.FireEvent("ev", nil)
	}, nil)
	c.RequestAnimationFrame(func(float64) { order = append(order, "raf") })
	c.SizeChanged(10, 10)

	c.Frame(true)

	want := []string{"job", "pending", "resize", "event", "raf", "draw"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestChangeFromJobVisibleSameFrame(t *testing.T) {
	c, gl, _ := newTestContext(t)
	h := addChild(c, c.RootHandler(), "box", 0, 0, 10, 10)

	var leftAtDraw float64
	gl.onDraw = func(*CanvasHandler) { leftAtDraw = h.Left() }
	c.AddJob(func(any) { h.SetLeft(42) }, nil)
	c.Frame(true)

	if leftAtDraw != 42 {
		t.Errorf("left at draw = %v, want 42", leftAtDraw)
	}
}

func TestRequestAnimationFrameTimestamp(t *testing.T) {
	c, _, clk := newTestContext(t)
	clk.Advance(250 * time.Millisecond)

	var ts []float64
	c.RequestAnimationFrame(func(v float64) {
		ts = append(ts, v)
		c.RequestAnimationFrame(func(v float64) { ts = append(ts, v) })
	})
	c.Frame(false)
	clk.Advance(16 * time.Millisecond)
	c.Frame(false)

	if want := []float64{250, 266}; !reflect.DeepEqual(ts, want) {
		t.Errorf("timestamps = %v, want %v", ts, want)
	}
}

func TestCurrentClickedClearedOnUnregister(t *testing.T) {
	c, _, _ := newTestContext(t)
	h := addChild(c, c.RootHandler(), "box", 0, 0, 10, 10)

	c.SetCurrentClickedHandler(h)
	if c.GetCurrentClickedHandler() != h {
		t.Fatal("clicked handler not stored")
	}
	h.Dispose()
	if c.GetCurrentClickedHandler() != nil {
		t.Error("clicked handler survived unregister")
	}
}

func TestLogForwarding(t *testing.T) {
	ui := &fakeUI{}
	c, _, _ := newTestContext(t)
	c.SetUIObject(ui)

	c.Log("hello")
	c.LogShow()
	c.LogHide()
	c.LogClear()

	want := []string{"log:hello", "show", "hide", "clear"}
	if !reflect.DeepEqual(ui.calls, want) {
		t.Errorf("calls = %v, want %v", ui.calls, want)
	}

	c.SetUIObject(nil)
	c.Log("dropped")
	if len(ui.calls) != len(want) {
		t.Error("log reached detached UI")
	}
}

func TestSetGLState(t *testing.T) {
	c, gl, _ := newTestContext(t)
	other := &fakeGL{}
	c.SetGLState(nil)
	if c.GLState() != gl {
		t.Error("SetGLState(nil) replaced the state")
	}
	c.SetGLState(other)
	c.Frame(true)
	if len(other.draws) != 1 || len(gl.draws) != 0 {
		t.Error("frame drew with the old state")
	}
}

type renderedRecorder struct {
	want  bool
	calls int
	w, h  int
}

func (r *renderedRecorder) WantsPixels() bool { return r.want }
func (r *renderedRecorder) Rendered(pix []byte, w, h int) {
	r.calls++
	r.w, r.h = w, h
}

func TestRenderedObservers(t *testing.T) {
	c, _, _ := newTestContext(t)
	if c.WantsPixels() {
		t.Error("WantsPixels with no observers")
	}
	a := &renderedRecorder{}
	b := &renderedRecorder{want: true}
	c.OnRendered(a)
	c.OnRendered(b)
	if !c.WantsPixels() {
		t.Error("WantsPixels = false with an interested observer")
	}

	c.Rendered(make([]byte, 4*2*3), 2, 3)
	if a.calls != 1 || b.calls != 1 || b.w != 2 || b.h != 3 {
		t.Errorf("observers: a=%+v b=%+v", a, b)
	}
}

func TestDebugCanvas(t *testing.T) {
	gl := &fakeGL{}
	c, err := NewContext(Options{
		Width: 100, Height: 100, GLState: gl, ShaderLang: &fakeShader{}, DebugCanvas: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	h := c.GetCanvasByID("debug")
	if h == nil {
		t.Fatal("debug canvas not registered")
	}
	if h.Parent() != c.RootHandler() {
		t.Error("debug canvas not attached to root")
	}
	if h.OnPaint == nil {
		t.Error("debug canvas has no paint hook")
	}
	if again := c.CreateDebugCanvas(); again != h {
		t.Error("CreateDebugCanvas created a second overlay")
	}
}

func TestDebugText(t *testing.T) {
	s := Stats{FPS: 59.94, MinFPS: 30, SampleMinFPS: 45.5, NFrame: 12}
	want := "FPS: 59.9\nMin: 30.0 (45.5)\nFrames: 12"
	if got := debugText(s); got != want {
		t.Errorf("debugText = %q, want %q", got, want)
	}
}

func TestDestroy(t *testing.T) {
	c, _, _ := newTestContext(t)
	h := addChild(c, c.RootHandler(), "box", 0, 0, 10, 10)
	ran := false
	c.AddJob(func(any) { ran = true }, nil)

	c.Destroy()

	if !h.IsDisposed() || !c.RootHandler().IsDisposed() {
		t.Error("tree not disposed")
	}
	if c.CanvasCount() != 0 {
		t.Errorf("CanvasCount = %d, want 0", c.CanvasCount())
	}
	if c.PendingJobs() != 0 {
		t.Error("jobs survived Destroy")
	}
	if ran {
		t.Error("job ran during Destroy")
	}
}
