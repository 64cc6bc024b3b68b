package frontend

import (
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// --- Queued input ---

type inputKind uint8

const (
	inputPointer inputKind = iota
	inputKey
	inputWheel
)

// inputRecord is one raw input sample waiting for the next frame's event
// step. Window coordinates.
type inputRecord struct {
	kind      inputKind
	pointerID int
	x, y      float64
	pressed   bool
	button    MouseButton
	mods      KeyModifiers
	key       ebiten.Key
	dx, dy    float64
}

// --- Per-pointer state ---

type pointerState struct {
	down         bool
	startX       float64
	startY       float64
	lastX        float64
	lastY        float64
	hitHandler   *CanvasHandler
	hoverHandler *CanvasHandler // last handler the pointer was over (for enter/leave)
	dragging     bool
	button       MouseButton // button captured at press time
}

// InputHandler turns raw pointer, key and wheel input into handler events.
// Push methods are safe from any goroutine; the queued input is resolved
// against the handler tree during the event step of the next frame, so hit
// testing always sees the attributes applied in that frame.
type InputHandler struct {
	mu          sync.Mutex
	queue       []inputRecord
	injectQueue []syntheticPointerEvent

	pointers     [maxPointers]pointerState
	captured     [maxPointers]*CanvasHandler
	dragDeadZone float64
	hitBuf       []*CanvasHandler

	// ebiten polling state
	prevTouchIDs []ebiten.TouchID
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	keyBuf       []ebiten.Key
}

func newInputHandler() *InputHandler {
	return &InputHandler{dragDeadZone: defaultDragDeadZone}
}

// PushPointer queues the state of a pointer: its position and whether its
// button is held. Pointer 0 is the mouse.
func (in *InputHandler) PushPointer(pointerID int, x, y float64, pressed bool, button MouseButton, mods KeyModifiers) {
	if pointerID < 0 || pointerID >= maxPointers {
		return
	}
	in.push(inputRecord{kind: inputPointer, pointerID: pointerID, x: x, y: y,
		pressed: pressed, button: button, mods: mods})
}

// PushKey queues a key press or release.
func (in *InputHandler) PushKey(key ebiten.Key, down bool, mods KeyModifiers) {
	in.push(inputRecord{kind: inputKey, key: key, pressed: down, mods: mods})
}

// PushWheel queues a wheel scroll at the given window position.
func (in *InputHandler) PushWheel(x, y, dx, dy float64, mods KeyModifiers) {
	in.push(inputRecord{kind: inputWheel, x: x, y: y, dx: dx, dy: dy, mods: mods})
}

func (in *InputHandler) push(r inputRecord) {
	in.mu.Lock()
	in.queue = append(in.queue, r)
	in.mu.Unlock()
}

// Pending returns the number of queued raw input records.
func (in *InputHandler) Pending() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.queue) + len(in.injectQueue)
}

// CapturePointer routes all events for pointerID to h.
func (in *InputHandler) CapturePointer(pointerID int, h *CanvasHandler) {
	if pointerID >= 0 && pointerID < maxPointers {
		in.captured[pointerID] = h
	}
}

// ReleasePointer stops routing events for pointerID to a captured handler.
func (in *InputHandler) ReleasePointer(pointerID int) {
	if pointerID >= 0 && pointerID < maxPointers {
		in.captured[pointerID] = nil
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (in *InputHandler) SetDragDeadZone(pixels float64) {
	in.dragDeadZone = pixels
}

// forget drops every reference to h. Called when h leaves the registry.
func (in *InputHandler) forget(h *CanvasHandler) {
	for i := range in.pointers {
		ps := &in.pointers[i]
		if ps.hitHandler == h {
			ps.hitHandler = nil
			ps.dragging = false
		}
		if ps.hoverHandler == h {
			ps.hoverHandler = nil
		}
		if in.captured[i] == h {
			in.captured[i] = nil
		}
	}
}

// --- Hit testing ---

// collectHittable walks the tree in painter order, appending visible
// handlers with a non-empty area to buf. Invisible subtrees are skipped.
func collectHittable(h *CanvasHandler, buf []*CanvasHandler) []*CanvasHandler {
	if !h.visible {
		return buf
	}
	if h.width > 0 && h.height > 0 {
		buf = append(buf, h)
	}
	for _, child := range h.children {
		buf = collectHittable(child, buf)
	}
	return buf
}

// hitTest finds the topmost handler under (x, y). Returns nil if nothing is
// hit.
func (in *InputHandler) hitTest(root *CanvasHandler, x, y float64) *CanvasHandler {
	in.hitBuf = collectHittable(root, in.hitBuf[:0])

	// Iterate backward (reverse painter order): topmost handler first.
	for i := len(in.hitBuf) - 1; i >= 0; i-- {
		h := in.hitBuf[i]
		if h.Bounds().Contains(x, y) {
			clear(in.hitBuf)
			return h
		}
	}
	clear(in.hitBuf)
	return nil
}

// --- Ebiten polling ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// PollEbiten samples mouse, touch, keyboard and wheel state from ebiten and
// queues it. Call it from ebiten.Game.Update.
func (in *InputHandler) PollEbiten() {
	mods := readModifiers()

	mx, my := ebiten.CursorPosition()
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}
	in.PushPointer(0, float64(mx), float64(my), pressed, button, mods)

	in.pollTouches(mods)

	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		in.PushWheel(float64(mx), float64(my), wx, wy, mods)
	}

	in.keyBuf = inpututil.AppendJustPressedKeys(in.keyBuf[:0])
	for _, k := range in.keyBuf {
		in.PushKey(k, true, mods)
	}
	in.keyBuf = inpututil.AppendJustReleasedKeys(in.keyBuf[:0])
	for _, k := range in.keyBuf {
		in.PushKey(k, false, mods)
	}
}

// pollTouches queues touch pointers 1-9.
func (in *InputHandler) pollTouches(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(in.prevTouchIDs[:0])
	in.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := in.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		in.PushPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && !activeSlots[i] {
			ps := &in.pointers[i]
			in.PushPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft, mods)
			in.touchUsed[i] = false
			in.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (in *InputHandler) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if in.touchUsed[i] && in.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !in.touchUsed[i] {
			in.touchUsed[i] = true
			in.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// --- Frame processing ---

// process resolves the input queued since the previous frame into handler
// events. At most one injected pointer event is consumed per frame. Render
// goroutine only.
func (in *InputHandler) process(c *Context) {
	in.mu.Lock()
	queue := in.queue
	in.queue = nil
	var injected *syntheticPointerEvent
	if len(in.injectQueue) > 0 {
		evt := in.injectQueue[0]
		injected = &evt
		copy(in.injectQueue, in.injectQueue[1:])
		in.injectQueue = in.injectQueue[:len(in.injectQueue)-1]
	}
	in.mu.Unlock()

	if injected != nil {
		in.processPointer(c, 0, injected.x, injected.y, injected.pressed, injected.button, 0)
	}
	for _, r := range queue {
		switch r.kind {
		case inputPointer:
			// Injected input owns the mouse for this frame.
			if injected != nil && r.pointerID == 0 {
				continue
			}
			in.processPointer(c, r.pointerID, r.x, r.y, r.pressed, r.button, r.mods)
		case inputKey:
			in.processKey(c, r)
		case inputWheel:
			in.processWheel(c, r)
		}
	}
}

// processPointer runs the pointer state machine for a single pointer.
func (in *InputHandler) processPointer(c *Context, pointerID int, x, y float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &in.pointers[pointerID]

	// Determine target handler: captured handler or hit test.
	var target *CanvasHandler
	if in.captured[pointerID] != nil {
		target = in.captured[pointerID]
	} else {
		target = in.hitTest(c.root, x, y)
	}

	// Fire hover enter/leave when the hovered handler changes.
	if target != ps.hoverHandler {
		if ps.hoverHandler != nil {
			firePointer(ps.hoverHandler, EventPointerLeave, pointerID, x, y, button, mods)
		}
		if target != nil {
			firePointer(target, EventPointerEnter, pointerID, x, y, button, mods)
		}
		ps.hoverHandler = target
	}

	switch {
	case pressed && !ps.down:
		// Just pressed: capture button for the duration of this interaction.
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.hitHandler = target
		ps.dragging = false
		c.SetCurrentClickedHandler(target)

		firePointer(target, EventPointerDown, pointerID, x, y, ps.button, mods)
	case !pressed && ps.down:
		if ps.dragging {
			fireDrag(ps.hitHandler, EventDragEnd, pointerID, x, y, ps.startX, ps.startY,
				x-ps.lastX, y-ps.lastY, ps.button, mods)
		} else if target != nil && ps.hitHandler == target && c.GetCurrentClickedHandler() == target {
			firePointer(target, EventClick, pointerID, x, y, ps.button, mods)
		}

		firePointer(target, EventPointerUp, pointerID, x, y, ps.button, mods)

		// Auto-release capture.
		in.captured[pointerID] = nil
		ps.down = false
		ps.hitHandler = nil
		ps.dragging = false
		ps.lastX, ps.lastY = x, y
	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging {
				dx := x - ps.startX
				dy := y - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > in.dragDeadZone {
					ps.dragging = true
					fireDrag(ps.hitHandler, EventDragStart, pointerID, x, y, ps.startX, ps.startY,
						x-ps.startX, y-ps.startY, ps.button, mods)
				}
			}
			if ps.dragging {
				fireDrag(ps.hitHandler, EventDrag, pointerID, x, y, ps.startX, ps.startY,
					x-ps.lastX, y-ps.lastY, ps.button, mods)
			}
		}
		ps.lastX, ps.lastY = x, y
	default:
		// Hover move.
		if x != ps.lastX || y != ps.lastY {
			firePointer(target, EventPointerMove, pointerID, x, y, button, mods)
			ps.lastX, ps.lastY = x, y
		}
	}
}

// processKey delivers a key event to the handler that was last clicked, or
// to the root when nothing has focus.
func (in *InputHandler) processKey(c *Context, r inputRecord) {
	target := c.GetCurrentClickedHandler()
	if target == nil {
		target = c.root
	}
	typ := EventKeyUp
	if r.pressed {
		typ = EventKeyDown
	}
	target.queueEvent(&Event{Type: typ, Key: r.key, Modifiers: r.mods})
}

// processWheel delivers a wheel event to the handler under the position.
func (in *InputHandler) processWheel(c *Context, r inputRecord) {
	target := in.hitTest(c.root, r.x, r.y)
	if target == nil {
		return
	}
	lx, ly := target.WorldToLocal(r.x, r.y)
	target.queueEvent(&Event{
		Type: EventWheel, GlobalX: r.x, GlobalY: r.y, LocalX: lx, LocalY: ly,
		WheelX: r.dx, WheelY: r.dy, Modifiers: r.mods,
	})
}

// --- Event construction ---

func firePointer(h *CanvasHandler, typ EventType, pointerID int, x, y float64, button MouseButton, mods KeyModifiers) {
	if h == nil {
		return
	}
	lx, ly := h.WorldToLocal(x, y)
	h.queueEvent(&Event{
		Type: typ, GlobalX: x, GlobalY: y, LocalX: lx, LocalY: ly,
		Button: button, PointerID: pointerID, Modifiers: mods,
	})
}

func fireDrag(h *CanvasHandler, typ EventType, pointerID int, x, y, startX, startY, deltaX, deltaY float64, button MouseButton, mods KeyModifiers) {
	if h == nil {
		return
	}
	lx, ly := h.WorldToLocal(x, y)
	h.queueEvent(&Event{
		Type: typ, GlobalX: x, GlobalY: y, LocalX: lx, LocalY: ly,
		StartX: startX, StartY: startY, DeltaX: deltaX, DeltaY: deltaY,
		Button: button, PointerID: pointerID, Modifiers: mods,
	})
}
