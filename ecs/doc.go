// Package ecs provides ECS adapters for frontend's interaction events.
//
// The primary adapter is [NewDonburiStore], which bridges pointer, click,
// drag and wheel events on linked canvases into a [Donburi] world as typed
// events. Subscribe to [InteractionEventType] in your ECS systems to receive
// them, and use [Link] to tie an entity to a canvas.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	ctx.SetEntityStore(store)
//	ecs.Link(world.Entry(entity), ctx.CreateCanvas("player", 32, 32))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
