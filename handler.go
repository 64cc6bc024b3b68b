package frontend

import (
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// changeNotifier is the only view of the orchestrator a handler gets. The
// registry implements it; a handler that is not registered has none.
type changeNotifier interface {
	markPendingChange(h *CanvasHandler)
	markEvent(h *CanvasHandler)
	rename(h *CanvasHandler, id string)
	unregister(h *CanvasHandler)
}

type attrKind uint8

const (
	attrLeft attrKind = iota
	attrTop
	attrPosition
	attrSize
	attrOpacity
	attrVisible
	attrBackground
	attrFluid
)

// attrChange is one queued attribute mutation, applied during the
// pending-changes step of the next frame.
type attrChange struct {
	kind  attrKind
	a, b  float64
	flag  bool
	flag2 bool
	color Color
}

// Event is delivered to handler listeners during the event step of a frame.
type Event struct {
	Type EventType
	// Name is Type.String() for built-in events and the user-supplied name
	// for EventCustom.
	Name string

	Target        *CanvasHandler
	CurrentTarget *CanvasHandler

	GlobalX, GlobalY float64
	LocalX, LocalY   float64

	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX, StartY float64
	DeltaX, DeltaY float64

	// Wheel fields (valid for EventWheel)
	WheelX, WheelY float64

	// Resize fields (valid for EventResize)
	Width, Height float64

	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
	Key       ebiten.Key

	// Data carries the payload of FireEvent.
	Data any

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

type listener struct {
	id   uint32
	typ  EventType
	name string
	fn   func(*Event)
}

// ListenerHandle allows removing a registered event listener.
type ListenerHandle struct {
	id uint32
	h  *CanvasHandler
}

// Remove unregisters the listener so it no longer fires.
func (l ListenerHandle) Remove() {
	if l.h == nil {
		return
	}
	s := l.h.listeners
	for i := range s {
		if s[i].id == l.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = listener{}
			l.h.listeners = s[:len(s)-1]
			return
		}
	}
}

// CanvasHandler is a node in the drawable tree. It is addressable by a
// numeric idx (always present, unique within a Context) and an optional
// string id.
//
// Attribute setters are safe to call from any goroutine: they queue the
// mutation and the owning Context applies it at the start of the next frame.
// Getters return the applied (live) state and, like tree manipulation and
// listener registration, belong to the render goroutine.
type CanvasHandler struct {
	idx uint64
	id  string

	parent   *CanvasHandler
	children []*CanvasHandler

	left, top     float64
	width, height float64
	opacity       float64
	visible       bool
	fluidWidth    bool
	fluidHeight   bool
	background    Color

	// EntityID links the handler to an ECS entity. When non-zero, interaction
	// events are forwarded to the Context's EntityStore.
	EntityID uint32
	UserData any

	// OnPaint draws the handler's content onto its own surface. The surface
	// has the handler's size and is cleared before each call.
	OnPaint func(h *CanvasHandler, surface *ebiten.Image)
	// OnChange runs once per frame in which queued attribute changes were
	// applied to this handler.
	OnChange func(h *CanvasHandler)

	mu      sync.Mutex
	pending []attrChange
	events  []*Event

	listeners      []listener
	nextListenerID uint32

	notifier changeNotifier
	debug    *atomic.Bool
	disposed bool
}

// NewCanvasHandler creates a detached handler with the given numeric idx,
// string id (may be empty) and size. The idx must be unique among handlers
// registered with the same Context.
func NewCanvasHandler(idx uint64, id string, width, height float64) *CanvasHandler {
	return &CanvasHandler{
		idx:     idx,
		id:      id,
		width:   width,
		height:  height,
		opacity: 1,
		visible: true,
	}
}

// Idx returns the numeric identifier.
func (h *CanvasHandler) Idx() uint64 { return h.idx }

// ID returns the string identifier, or "" when absent.
func (h *CanvasHandler) ID() string { return h.id }

// SetID changes the string identifier and re-indexes it.
func (h *CanvasHandler) SetID(id string) {
	if n := h.currentNotifier(); n != nil {
		n.rename(h, id)
		return
	}
	h.id = id
}

func (h *CanvasHandler) Left() float64          { return h.left }
func (h *CanvasHandler) Top() float64           { return h.top }
func (h *CanvasHandler) Width() float64         { return h.width }
func (h *CanvasHandler) Height() float64        { return h.height }
func (h *CanvasHandler) Opacity() float64       { return h.opacity }
func (h *CanvasHandler) Visible() bool          { return h.visible }
func (h *CanvasHandler) Background() Color      { return h.background }
func (h *CanvasHandler) Parent() *CanvasHandler { return h.parent }

// Fluid reports whether width and height follow the parent's size.
func (h *CanvasHandler) Fluid() (width, height bool) {
	return h.fluidWidth, h.fluidHeight
}

// Registered reports whether the handler is currently known to a Context.
func (h *CanvasHandler) Registered() bool {
	return h.currentNotifier() != nil
}

func (h *CanvasHandler) currentNotifier() changeNotifier {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.notifier
}

// debugMode reports whether the Context that registered h is in debug mode.
func (h *CanvasHandler) debugMode() bool {
	h.mu.Lock()
	d := h.debug
	h.mu.Unlock()
	return d != nil && d.Load()
}

// setNotifier is called by the registry on register and unregister.
func (h *CanvasHandler) setNotifier(n changeNotifier) {
	h.mu.Lock()
	h.notifier = n
	h.mu.Unlock()
}

// --- Queued attribute setters ---

func (h *CanvasHandler) queueChange(c attrChange) {
	h.mu.Lock()
	h.pending = append(h.pending, c)
	n := h.notifier
	h.mu.Unlock()
	if n != nil {
		n.markPendingChange(h)
	}
}

// SetLeft queues a new left offset relative to the parent.
func (h *CanvasHandler) SetLeft(v float64) { h.queueChange(attrChange{kind: attrLeft, a: v}) }

// SetTop queues a new top offset relative to the parent.
func (h *CanvasHandler) SetTop(v float64) { h.queueChange(attrChange{kind: attrTop, a: v}) }

// SetPosition queues both offsets at once.
func (h *CanvasHandler) SetPosition(left, top float64) {
	h.queueChange(attrChange{kind: attrPosition, a: left, b: top})
}

// SetSize queues a new size. Negative values are clamped to zero.
func (h *CanvasHandler) SetSize(width, height float64) {
	h.queueChange(attrChange{kind: attrSize, a: max(width, 0), b: max(height, 0)})
}

// SetOpacity queues a new opacity, clamped to [0, 1].
func (h *CanvasHandler) SetOpacity(v float64) {
	h.queueChange(attrChange{kind: attrOpacity, a: clamp01(v)})
}

// SetVisible queues a visibility change.
func (h *CanvasHandler) SetVisible(v bool) { h.queueChange(attrChange{kind: attrVisible, flag: v}) }

// SetBackground queues a new background fill color.
func (h *CanvasHandler) SetBackground(c Color) {
	h.queueChange(attrChange{kind: attrBackground, color: c})
}

// SetFluid queues whether width and height follow the parent's size.
func (h *CanvasHandler) SetFluid(width, height bool) {
	h.queueChange(attrChange{kind: attrFluid, flag: width, flag2: height})
}

// hasPendingChanges reports whether mutations are waiting to be applied.
func (h *CanvasHandler) hasPendingChanges() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending) > 0
}

// takePendingChanges detaches the queued mutations.
func (h *CanvasHandler) takePendingChanges() []attrChange {
	h.mu.Lock()
	changes := h.pending
	h.pending = nil
	h.mu.Unlock()
	return changes
}

// applyChanges applies changes in order and runs OnChange. Reports whether
// anything was applied. Render goroutine only.
func (h *CanvasHandler) applyChanges(changes []attrChange) bool {
	if len(changes) == 0 {
		return false
	}

	w, ht := h.width, h.height
	for _, c := range changes {
		switch c.kind {
		case attrLeft:
			h.left = c.a
		case attrTop:
			h.top = c.a
		case attrPosition:
			h.left, h.top = c.a, c.b
		case attrSize:
			w, ht = c.a, c.b
		case attrOpacity:
			h.opacity = c.a
		case attrVisible:
			h.visible = c.flag
		case attrBackground:
			h.background = c.color
		case attrFluid:
			h.fluidWidth, h.fluidHeight = c.flag, c.flag2
			if h.parent != nil {
				w, ht = h.fluidSize(w, ht)
			}
		}
	}
	h.resize(w, ht)

	if h.OnChange != nil {
		h.OnChange(h)
	}
	return true
}

// --- Events ---

// AddEventListener registers fn for events of the given type. Listeners run
// on the render goroutine in registration order.
func (h *CanvasHandler) AddEventListener(t EventType, fn func(*Event)) ListenerHandle {
	return h.addListener(t, t.String(), fn)
}

// AddCustomListener registers fn for custom events raised with FireEvent.
func (h *CanvasHandler) AddCustomListener(name string, fn func(*Event)) ListenerHandle {
	return h.addListener(EventCustom, name, fn)
}

func (h *CanvasHandler) addListener(t EventType, name string, fn func(*Event)) ListenerHandle {
	if fn == nil {
		panic("frontend: nil event listener")
	}
	h.nextListenerID++
	id := h.nextListenerID
	h.listeners = append(h.listeners, listener{id: id, typ: t, name: name, fn: fn})
	return ListenerHandle{id: id, h: h}
}

// FireEvent queues a custom event on the handler. It is dispatched during the
// event step of the next frame. Safe from any goroutine.
func (h *CanvasHandler) FireEvent(name string, data any) {
	h.queueEvent(&Event{Type: EventCustom, Name: name, Data: data})
}

// queueEvent stores ev for dispatch and marks the handler in the ordered
// event list.
func (h *CanvasHandler) queueEvent(ev *Event) {
	if ev.Name == "" {
		ev.Name = ev.Type.String()
	}
	if ev.Target == nil {
		ev.Target = h
	}
	h.mu.Lock()
	h.events = append(h.events, ev)
	n := h.notifier
	h.mu.Unlock()
	if n != nil {
		n.markEvent(h)
	}
}

// takeEvents detaches the queued events.
func (h *CanvasHandler) takeEvents() []*Event {
	h.mu.Lock()
	evs := h.events
	h.events = nil
	h.mu.Unlock()
	return evs
}

// dispatch delivers ev to this handler and, for bubbling types, to its
// ancestors until a listener stops propagation.
func (h *CanvasHandler) dispatch(ev *Event) {
	for cur := h; cur != nil; cur = cur.parent {
		ev.CurrentTarget = cur
		cur.invokeListeners(ev)
		if ev.stopped || !ev.Type.bubbles() {
			return
		}
	}
}

func (h *CanvasHandler) invokeListeners(ev *Event) {
	// Listeners may remove themselves; iterate over a stable copy.
	n := len(h.listeners)
	if n == 0 {
		return
	}
	ls := make([]listener, n)
	copy(ls, h.listeners)
	for _, l := range ls {
		if l.typ != ev.Type || (ev.Type == EventCustom && l.name != ev.Name) {
			continue
		}
		l.fn(ev)
	}
}

// --- Tree manipulation ---

// AddChild appends child to this handler's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this handler (cycle).
func (h *CanvasHandler) AddChild(child *CanvasHandler) {
	if child == nil {
		panic("frontend: cannot add nil child")
	}
	if h.debugMode() || child.debugMode() {
		debugCheckDisposed(h, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, h) {
		panic("frontend: adding child would create a cycle")
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	child.parent = h
	h.children = append(h.children, child)
	child.resize(child.fluidSize(child.width, child.height))
}

// RemoveChild detaches child from this handler. The child stays registered.
// Panics if child's parent is not h.
func (h *CanvasHandler) RemoveChild(child *CanvasHandler) {
	if child.parent != h {
		panic("frontend: child's parent is not this handler")
	}
	h.removeChildByPtr(child)
	child.parent = nil
}

// RemoveFromParent detaches this handler from its parent.
// No-op if it has no parent.
func (h *CanvasHandler) RemoveFromParent() {
	if h.parent == nil {
		return
	}
	h.parent.RemoveChild(h)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (h *CanvasHandler) Children() []*CanvasHandler {
	return h.children
}

// NumChildren returns the number of children.
func (h *CanvasHandler) NumChildren() int {
	return len(h.children)
}

// --- Disposal ---

// Dispose detaches the handler, unregisters it and all its descendants from
// their Context, and drops listeners and hooks.
func (h *CanvasHandler) Dispose() {
	if h.disposed {
		return
	}
	h.RemoveFromParent()
	h.dispose()
}

func (h *CanvasHandler) dispose() {
	if n := h.currentNotifier(); n != nil {
		n.unregister(h)
	}
	h.disposed = true
	for _, child := range h.children {
		child.parent = nil
		child.dispose()
	}
	h.children = nil
	h.parent = nil
	h.listeners = nil
	h.OnPaint = nil
	h.OnChange = nil
	h.UserData = nil
	h.mu.Lock()
	h.pending = nil
	h.events = nil
	h.mu.Unlock()
}

// IsDisposed returns true if the handler has been disposed.
func (h *CanvasHandler) IsDisposed() bool {
	return h.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of (or equal to) node.
func isAncestor(candidate, node *CanvasHandler) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from h.children without clearing child.parent.
func (h *CanvasHandler) removeChildByPtr(child *CanvasHandler) {
	for i, c := range h.children {
		if c == child {
			copy(h.children[i:], h.children[i+1:])
			h.children[len(h.children)-1] = nil
			h.children = h.children[:len(h.children)-1]
			return
		}
	}
}
