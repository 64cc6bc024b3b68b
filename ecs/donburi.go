package ecs

import (
	"github.com/phanxgames/frontend"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for frontend interaction
// events. Subscribe to this in your ECS systems to receive pointer, drag and
// wheel events.
var InteractionEventType = events.NewEventType[frontend.InteractionEvent]()

// Canvas is the component linking an entity to a canvas handler by idx.
type Canvas struct {
	Idx uint64
}

// CanvasComponent stores the Canvas of linked entities.
var CanvasComponent = donburi.NewComponentType[Canvas]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) frontend.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event frontend.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// Link records h on entry's entity and tags h with the entity id so its
// interaction events reach the store.
func Link(entry *donburi.Entry, h *frontend.CanvasHandler) {
	if !entry.HasComponent(CanvasComponent) {
		entry.AddComponent(CanvasComponent)
	}
	CanvasComponent.SetValue(entry, Canvas{Idx: h.Idx()})
	h.EntityID = uint32(entry.Entity().Id())
}

// CanvasOf returns the handler linked to entry, or nil when the entity has no
// canvas or the canvas left the registry.
func CanvasOf(c *frontend.Context, entry *donburi.Entry) *frontend.CanvasHandler {
	if !entry.HasComponent(CanvasComponent) {
		return nil
	}
	return c.GetCanvasByIdx(CanvasComponent.Get(entry).Idx)
}
