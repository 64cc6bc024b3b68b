package frontend

// EntityStore is the interface for optional ECS integration.
// When set on a Context, interaction events dispatched to handlers with a
// non-zero EntityID are forwarded to it.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	CanvasIdx uint64
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
}

// SetEntityStore sets the optional ECS bridge.
func (c *Context) SetEntityStore(store EntityStore) {
	c.store = store
}

// emitInteractionEvent forwards pointer events on ECS-linked handlers.
func (c *Context) emitInteractionEvent(h *CanvasHandler, ev *Event) {
	if c.store == nil || h.EntityID == 0 {
		return
	}
	switch ev.Type {
	case EventResize, EventCustom, EventKeyDown, EventKeyUp:
		return
	}
	c.store.EmitEvent(InteractionEvent{
		Type:      ev.Type,
		EntityID:  h.EntityID,
		CanvasIdx: h.idx,
		GlobalX:   ev.GlobalX,
		GlobalY:   ev.GlobalY,
		LocalX:    ev.LocalX,
		LocalY:    ev.LocalY,
		Button:    ev.Button,
		Modifiers: ev.Modifiers,
		StartX:    ev.StartX,
		StartY:    ev.StartY,
		DeltaX:    ev.DeltaX,
		DeltaY:    ev.DeltaY,
	})
}
