package frontend

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
)

// ErrDuplicateIdx is returned when registering a handler whose numeric idx is
// already held by another handler.
var ErrDuplicateIdx = errors.New("frontend: duplicate canvas idx")

// canvasRegistry is the single owner of the live handler set. byIdx is the
// authoritative store; every other structure only holds idx keys into it, so
// removing a handler is one operation under one lock.
type canvasRegistry struct {
	mu sync.Mutex

	// debug is the owning Context's debug flag. Registered handlers keep a
	// pointer to it after they are removed.
	debug atomic.Bool

	byIdx map[uint64]*CanvasHandler
	byID  map[string]uint64

	// handlers with queued attribute mutations, in marking order
	pending      map[uint64]struct{}
	pendingOrder []uint64

	// handlers with queued events, in marking order (collapsed: one entry per
	// handler per frame)
	events     map[uint64]struct{}
	eventOrder []uint64

	// onUnregister runs after a handler left every index, outside the lock.
	onUnregister func(h *CanvasHandler)
}

func newCanvasRegistry() *canvasRegistry {
	return &canvasRegistry{
		byIdx:   make(map[uint64]*CanvasHandler),
		byID:    make(map[string]uint64),
		pending: make(map[uint64]struct{}),
		events:  make(map[uint64]struct{}),
	}
}

// register inserts h in the numeric and string indices. Registering the same
// handler twice is a no-op; a different handler with the same idx fails.
func (r *canvasRegistry) register(h *CanvasHandler) error {
	r.mu.Lock()
	if cur, ok := r.byIdx[h.idx]; ok {
		r.mu.Unlock()
		if cur == h {
			return nil
		}
		return ErrDuplicateIdx
	}
	r.byIdx[h.idx] = h
	if h.id != "" {
		r.byID[h.id] = h.idx
	}
	r.mu.Unlock()

	h.setNotifier(r)
	h.mu.Lock()
	h.debug = &r.debug
	h.mu.Unlock()
	// Mutations or events queued while detached are picked up next frame.
	if h.hasPendingChanges() {
		r.markPendingChange(h)
	}
	h.mu.Lock()
	hasEvents := len(h.events) > 0
	h.mu.Unlock()
	if hasEvents {
		r.markEvent(h)
	}
	return nil
}

// unregister removes h from every index. Unknown handlers are ignored.
func (r *canvasRegistry) unregister(h *CanvasHandler) {
	r.mu.Lock()
	if r.byIdx[h.idx] != h {
		r.mu.Unlock()
		return
	}
	delete(r.byIdx, h.idx)
	if h.id != "" && r.byID[h.id] == h.idx {
		delete(r.byID, h.id)
	}
	if _, ok := r.pending[h.idx]; ok {
		delete(r.pending, h.idx)
		r.pendingOrder = removeIdx(r.pendingOrder, h.idx)
	}
	if _, ok := r.events[h.idx]; ok {
		delete(r.events, h.idx)
		r.eventOrder = removeIdx(r.eventOrder, h.idx)
	}
	cb := r.onUnregister
	r.mu.Unlock()

	h.setNotifier(nil)
	if cb != nil {
		cb(h)
	}
}

// rename moves h to a new string id.
func (r *canvasRegistry) rename(h *CanvasHandler, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byIdx[h.idx] != h {
		h.id = id
		return
	}
	if h.id != "" && r.byID[h.id] == h.idx {
		delete(r.byID, h.id)
	}
	h.id = id
	if id != "" {
		r.byID[id] = h.idx
	}
}

func (r *canvasRegistry) getByIdx(idx uint64) *CanvasHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byIdx[idx]
}

func (r *canvasRegistry) getByID(id string) *CanvasHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[id]
	if !ok {
		return nil
	}
	return r.byIdx[idx]
}

// ids returns the registered string ids, sorted.
func (r *canvasRegistry) ids() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

func (r *canvasRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byIdx)
}

// markPendingChange records h as having queued mutations. Idempotent.
func (r *canvasRegistry) markPendingChange(h *CanvasHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byIdx[h.idx] != h {
		return
	}
	if _, ok := r.pending[h.idx]; ok {
		return
	}
	r.pending[h.idx] = struct{}{}
	r.pendingOrder = append(r.pendingOrder, h.idx)
}

// markEvent appends h to the ordered event list unless it is already there.
func (r *canvasRegistry) markEvent(h *CanvasHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byIdx[h.idx] != h {
		return
	}
	if _, ok := r.events[h.idx]; ok {
		return
	}
	r.events[h.idx] = struct{}{}
	r.eventOrder = append(r.eventOrder, h.idx)
}

// takePending detaches the pending set and resolves it to handlers, in
// marking order.
func (r *canvasRegistry) takePending() []*CanvasHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.resolve(r.pendingOrder)
	r.pendingOrder = r.pendingOrder[:0]
	clear(r.pending)
	return out
}

// takeEvents detaches the ordered event list and resolves it to handlers.
func (r *canvasRegistry) takeEvents() []*CanvasHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.resolve(r.eventOrder)
	r.eventOrder = r.eventOrder[:0]
	clear(r.events)
	return out
}

func (r *canvasRegistry) pendingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pendingOrder)
}

func (r *canvasRegistry) eventsLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.eventOrder)
}

// resolve maps idx keys to live handlers. Caller holds r.mu.
func (r *canvasRegistry) resolve(order []uint64) []*CanvasHandler {
	if len(order) == 0 {
		return nil
	}
	out := make([]*CanvasHandler, 0, len(order))
	for _, idx := range order {
		if h, ok := r.byIdx[idx]; ok {
			out = append(out, h)
		}
	}
	return out
}

func removeIdx(s []uint64, idx uint64) []uint64 {
	for i, v := range s {
		if v == idx {
			copy(s[i:], s[i+1:])
			return s[:len(s)-1]
		}
	}
	return s
}
