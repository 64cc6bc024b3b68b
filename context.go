package frontend

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoGLState is returned by NewContext when no GLState is supplied.
var ErrNoGLState = errors.New("frontend: nil GL state")

// Options configures a Context.
type Options struct {
	// Width and Height are the initial window size.
	Width, Height int

	// GLState draws the handler tree. Required.
	GLState GLState
	// ShaderLang is initialized during construction. Defaults to naga.
	ShaderLang ShaderLang
	// UI receives log forwarding and window requests. Defaults to a no-op shell.
	UI UIInterface

	// Debug enables per-frame phase timing logs and debug checks.
	Debug bool
	// DebugCanvas adds the fps overlay handler to the root.
	DebugCanvas bool

	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

// RenderedObserver receives the pixels of drawn frames during offline
// rendering. WantsPixels lets the host skip the read-back when nobody needs it.
type RenderedObserver interface {
	WantsPixels() bool
	Rendered(pix []byte, width, height int)
}

// Context is the per-application frame orchestrator. It owns the canvas
// registry, the job queue and the window geometry, and sequences one frame:
// size resolution, job drain, pending canvas changes, events, animation-frame
// callbacks, then the draw call.
//
// Frame and PostDraw run on a single render goroutine and must not be
// re-entered. AddJob, geometry changes, canvas attribute setters and input
// pushes are safe from any goroutine.
type Context struct {
	id  string
	log zerolog.Logger

	ui         UIInterface
	glState    GLState
	shaderLang ShaderLang
	store      EntityStore

	root         *CanvasHandler
	debugHandler *CanvasHandler
	input        *InputHandler

	registry *canvasRegistry
	jobs     jobQueue
	raf      rafQueue
	preload  *PreloadTable
	nextIdx  atomic.Uint64

	currentClicked *CanvasHandler
	tweens         []*TweenGroup

	sizeMu     sync.Mutex
	winX, winY int
	width      int
	height     int
	sizeDirty  bool

	clock     func() time.Time
	lastFrame time.Time

	statsMu sync.Mutex
	stats   Stats

	postDrawObservers []func(Stats)
	renderedObservers []RenderedObserver
}

// NewContext builds a Context. Shader-language or handler-tree initialization
// failures abort construction; there is no degraded mode.
func NewContext(opts Options) (*Context, error) {
	if opts.GLState == nil {
		return nil, ErrNoGLState
	}
	c := &Context{
		id:         uuid.NewString(),
		ui:         opts.UI,
		glState:    opts.GLState,
		shaderLang: opts.ShaderLang,
		registry:   newCanvasRegistry(),
		preload:    newPreloadTable(),
		clock:      opts.Clock,
		width:      opts.Width,
		height:     opts.Height,
	}
	if c.ui == nil {
		c.ui = nopUI{}
	}
	if c.shaderLang == nil {
		c.shaderLang = &NagaShaderLang{}
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	c.log = Logger().With().Str("context", c.id).Logger()
	c.registry.onUnregister = c.handlerRemoved
	c.input = newInputHandler()

	if err := c.initShaderLang(); err != nil {
		return nil, err
	}
	if err := c.initHandlers(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	c.initStats()
	c.SetDebugMode(opts.Debug)
	if opts.DebugCanvas {
		c.CreateDebugCanvas()
	}

	c.log.Info().Int("width", opts.Width).Int("height", opts.Height).Msg("context created")
	return c, nil
}

func (c *Context) initShaderLang() error {
	if err := c.shaderLang.Init(); err != nil {
		return fmt.Errorf("frontend: init shader language: %w", err)
	}
	return nil
}

func (c *Context) initHandlers(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("frontend: init handlers: invalid window size %dx%d", width, height)
	}
	root := NewCanvasHandler(c.nextIdx.Add(1), "root", float64(width), float64(height))
	if err := c.registry.register(root); err != nil {
		return fmt.Errorf("frontend: init handlers: %w", err)
	}
	c.root = root
	return nil
}

func (c *Context) initStats() {
	now := c.clock()
	c.stats = newStats(now)
	c.lastFrame = now
}

// ID returns the session id of this Context.
func (c *Context) ID() string { return c.id }

// RootHandler returns the root of the handler tree.
func (c *Context) RootHandler() *CanvasHandler { return c.root }

// InputHandler returns the input router.
func (c *Context) InputHandler() *InputHandler { return c.input }

// Preload returns the table of precompiled script units.
func (c *Context) Preload() *PreloadTable { return c.preload }

// Cloner returns the structured-clone hooks for orchestrator-owned objects.
func (c *Context) Cloner() StructuredCloner { return canvasCloner{reg: c.registry} }

// GLState returns the GPU collaborator.
func (c *Context) GLState() GLState { return c.glState }

// ShaderLang returns the initialized shader-language runtime.
func (c *Context) ShaderLang() ShaderLang { return c.shaderLang }

// SetGLState replaces the GPU collaborator. Nil is ignored.
func (c *Context) SetGLState(s GLState) {
	if s != nil {
		c.glState = s
	}
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-handler
// access panics, frame phase timings are logged and lookup misses log the
// closest known id.
func (c *Context) SetDebugMode(enabled bool) {
	c.registry.debug.Store(enabled)
}

// DebugMode reports whether debug mode is enabled.
func (c *Context) DebugMode() bool {
	return c.registry.debug.Load()
}

// --- Frame sequencing ---

// Frame runs one orchestration pass. With draw false every bookkeeping step
// runs but the root is not drawn, for headless ticking.
func (c *Context) Frame(draw bool) {
	now := c.clock()
	dt := now.Sub(c.lastFrame)

	debug := c.DebugMode()
	var t frameTimings
	mark := now
	lap := func() time.Duration {
		if !debug {
			return 0
		}
		n := c.clock()
		d := n.Sub(mark)
		mark = n
		return d
	}

	t.sizeResolved = c.resolveSize()
	t.size = lap()
	t.jobCount = c.execJobs()
	t.jobs = lap()
	c.advanceTweens(dt.Seconds())
	t.tweens = lap()
	t.pendingCount = c.execPendingCanvasChanges()
	t.pending = lap()
	t.eventCount = c.triggerEvents()
	t.events = lap()
	t.callbackCount = c.callFrameCallbacks(now)
	t.callbacks = lap()
	if draw {
		c.glState.Draw(c.root)
	}
	t.draw = lap()

	c.lastFrame = now
	if debug {
		c.debugLog(t)
	}
}

// resolveSize pushes a pending geometry change to the root tree and clears
// the dirty flag. Reports whether anything was resolved.
func (c *Context) resolveSize() bool {
	c.sizeMu.Lock()
	if !c.sizeDirty {
		c.sizeMu.Unlock()
		return false
	}
	w, h := c.width, c.height
	c.sizeDirty = false
	c.sizeMu.Unlock()

	c.root.resize(float64(w), float64(h))
	layoutTree(c.root)
	return true
}

// layoutTree re-applies fluid sizing below h.
func layoutTree(h *CanvasHandler) {
	for _, child := range h.children {
		child.resize(child.fluidSize(child.width, child.height))
		layoutTree(child)
	}
}

func (c *Context) execJobs() int {
	return c.jobs.drain()
}

// execPendingCanvasChanges applies the mutations queued before the step
// started. Every listed handler is detached up front, so changes queued by
// OnChange callbacks wait for the next frame. Handlers removed earlier in the
// same pass are skipped.
func (c *Context) execPendingCanvasChanges() int {
	handlers := c.registry.takePending()
	changes := make([][]attrChange, len(handlers))
	for i, h := range handlers {
		changes[i] = h.takePendingChanges()
	}

	n := 0
	for i, h := range handlers {
		if !h.Registered() {
			continue
		}
		if h.applyChanges(changes[i]) {
			n++
		}
	}
	return n
}

// triggerEvents resolves queued input into handler events, then dispatches
// the events present at the start of the step. Each listed handler's queue
// is detached before any listener runs, so events raised by listeners are
// delivered next frame.
func (c *Context) triggerEvents() int {
	c.input.process(c)

	handlers := c.registry.takeEvents()
	events := make([][]*Event, len(handlers))
	for i, h := range handlers {
		events[i] = h.takeEvents()
	}

	n := 0
	for i, h := range handlers {
		if !h.Registered() {
			c.log.Warn().Uint64("idx", h.idx).Msg("dropping events for removed canvas")
			continue
		}
		for _, ev := range events[i] {
			h.dispatch(ev)
			c.emitInteractionEvent(h, ev)
			n++
		}
	}
	return n
}

// PostDraw is called once the backend consumed the frame's draw commands.
// It records the frame interval and notifies post-draw observers.
func (c *Context) PostDraw() {
	now := c.clock()

	c.statsMu.Lock()
	diff := now.Sub(c.stats.LastMeasuredTime)
	c.stats.LastDiffTime = diff
	c.stats.LastMeasuredTime = now
	c.stats.Record(float64(diff) / float64(time.Millisecond))
	snap := c.stats
	c.statsMu.Unlock()

	for _, fn := range c.postDrawObservers {
		fn(snap)
	}
}

// OnPostDraw registers fn to run after every PostDraw with the updated stats.
func (c *Context) OnPostDraw(fn func(Stats)) {
	c.postDrawObservers = append(c.postDrawObservers, fn)
}

// Stats returns a copy of the frame statistics.
func (c *Context) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Rendered hands the pixels of the frame just drawn to the rendered
// observers. Pixels are premultiplied RGBA, width*height*4 bytes.
func (c *Context) Rendered(pix []byte, width, height int) {
	for _, obs := range c.renderedObservers {
		obs.Rendered(pix, width, height)
	}
}

// OnRendered registers an offline-rendering observer.
func (c *Context) OnRendered(obs RenderedObserver) {
	c.renderedObservers = append(c.renderedObservers, obs)
}

// WantsPixels reports whether any rendered observer needs this frame's pixels.
func (c *Context) WantsPixels() bool {
	for _, obs := range c.renderedObservers {
		if obs.WantsPixels() {
			return true
		}
	}
	return false
}

// --- Jobs ---

// AddJob queues job to run with arg on the render goroutine at the next
// frame's drain. Safe from any goroutine, including from inside a job; it
// never blocks. A job queued during a drain runs on the following frame.
func (c *Context) AddJob(job func(arg any), arg any) {
	if job == nil {
		panic("frontend: nil job")
	}
	c.jobs.push(job, arg)
}

// PendingJobs returns the number of jobs waiting for the next drain.
func (c *Context) PendingJobs() int {
	return c.jobs.len()
}

// --- Geometry ---

// SizeChanged records a new window size. The canvas tree sees it at the
// start of the next frame; calls in between coalesce to the last value.
func (c *Context) SizeChanged(width, height int) {
	c.sizeMu.Lock()
	c.width, c.height = width, height
	c.sizeDirty = true
	c.sizeMu.Unlock()
}

// SetWindowSize asks the shell to resize the window (when it can) and
// records the new size.
func (c *Context) SetWindowSize(width, height int) {
	if ws, ok := c.ui.(WindowSizer); ok {
		ws.SetWindowSize(width, height)
	}
	c.SizeChanged(width, height)
}

// SetWindowFrame moves and resizes the window.
func (c *Context) SetWindowFrame(x, y, width, height int) {
	c.sizeMu.Lock()
	c.winX, c.winY = x, y
	c.sizeMu.Unlock()
	if ws, ok := c.ui.(WindowSizer); ok {
		ws.SetWindowPosition(x, y)
	}
	c.SetWindowSize(width, height)
}

// WindowSize returns the last recorded window size.
func (c *Context) WindowSize() (width, height int) {
	c.sizeMu.Lock()
	defer c.sizeMu.Unlock()
	return c.width, c.height
}

// WindowFrame returns the last recorded window position and size.
func (c *Context) WindowFrame() (x, y, width, height int) {
	c.sizeMu.Lock()
	defer c.sizeMu.Unlock()
	return c.winX, c.winY, c.width, c.height
}

// SizeNeedUpdate forces a layout pass on the next frame.
func (c *Context) SizeNeedUpdate() {
	c.sizeMu.Lock()
	c.sizeDirty = true
	c.sizeMu.Unlock()
}

// IsSizeDirty reports whether a geometry change awaits the next frame.
func (c *Context) IsSizeDirty() bool {
	c.sizeMu.Lock()
	defer c.sizeMu.Unlock()
	return c.sizeDirty
}

// --- Canvas registry ---

// Register makes h known to the Context. Fails with ErrDuplicateIdx when
// another handler holds the same numeric idx. A reused string id is taken
// over by the last handler registered with it.
func (c *Context) Register(h *CanvasHandler) error {
	if err := c.registry.register(h); err != nil {
		return fmt.Errorf("%w: %d", err, h.idx)
	}
	for {
		cur := c.nextIdx.Load()
		if h.idx <= cur || c.nextIdx.CompareAndSwap(cur, h.idx) {
			return nil
		}
	}
}

// Unregister removes h from every index, including pending changes and
// queued events.
func (c *Context) Unregister(h *CanvasHandler) {
	c.registry.unregister(h)
}

// CreateCanvas allocates a fresh idx, creates a detached handler and
// registers it.
func (c *Context) CreateCanvas(id string, width, height float64) *CanvasHandler {
	for {
		h := NewCanvasHandler(c.nextIdx.Add(1), id, width, height)
		if err := c.registry.register(h); err == nil {
			return h
		}
	}
}

// GetCanvasByID returns the handler with the given string id, or nil.
func (c *Context) GetCanvasByID(id string) *CanvasHandler {
	h := c.registry.getByID(id)
	if h == nil && c.DebugMode() {
		c.logLookupMiss(id)
	}
	return h
}

// GetCanvasByIdx returns the handler with the given numeric idx, or nil.
func (c *Context) GetCanvasByIdx(idx uint64) *CanvasHandler {
	return c.registry.getByIdx(idx)
}

// CanvasCount returns the number of registered handlers.
func (c *Context) CanvasCount() int {
	return c.registry.len()
}

// SetCurrentClickedHandler records the target of the latest pointer press.
func (c *Context) SetCurrentClickedHandler(h *CanvasHandler) {
	c.currentClicked = h
}

// GetCurrentClickedHandler returns the target of the latest pointer press,
// or nil once that handler was removed.
func (c *Context) GetCurrentClickedHandler() *CanvasHandler {
	return c.currentClicked
}

// handlerRemoved drops Context-level references to a handler that left the
// registry.
func (c *Context) handlerRemoved(h *CanvasHandler) {
	if c.currentClicked == h {
		c.currentClicked = nil
	}
	c.input.forget(h)
}

// --- UI shell ---

// SetUIObject replaces the UI shell. Nil installs a no-op shell.
func (c *Context) SetUIObject(ui UIInterface) {
	if ui == nil {
		ui = nopUI{}
	}
	c.ui = ui
}

// UI returns the UI shell.
func (c *Context) UI() UIInterface { return c.ui }

func (c *Context) Log(msg string) { c.ui.Log(msg) }
func (c *Context) LogClear()      { c.ui.LogClear() }
func (c *Context) LogShow()       { c.ui.LogShow() }
func (c *Context) LogHide()       { c.ui.LogHide() }

// Destroy disposes the handler tree and drops queued work. The Context must
// not be used afterwards.
func (c *Context) Destroy() {
	if c.debugHandler != nil {
		c.debugHandler.Dispose()
		c.debugHandler = nil
	}
	c.root.Dispose()
	c.jobs.reset()
	c.raf.take()
	c.tweens = nil
	c.log.Info().Msg("context destroyed")
}
