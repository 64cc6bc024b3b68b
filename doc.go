// Package frontend is the per-application frame orchestrator of a canvas UI
// runtime built on [Ebitengine].
//
// A [Context] owns a tree of [CanvasHandler] values, a registry that finds
// them by numeric idx or string id, a job queue, window geometry and frame
// statistics. Each call to [Context.Frame] runs one frame in a fixed order:
//
//  1. resolve a pending window size change and relayout the tree
//  2. drain the jobs queued with [Context.AddJob]
//  3. advance tweens ([TweenGroup], via [gween])
//  4. apply the attribute changes queued on handlers
//  5. resolve input and dispatch queued events
//  6. run [Context.RequestAnimationFrame] callbacks
//  7. draw the root through the [GLState]
//
// Handler setters and AddJob are safe from any goroutine; everything they
// queue is observed by the render goroutine at the next frame.
//
// # Quick start
//
// [Run] opens a window and drives the Context from ebiten's loop:
//
//	state := frontend.NewEbitenState()
//	ctx, err := frontend.NewContext(frontend.Options{
//		Width: 640, Height: 480, GLState: state,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	box := ctx.CreateCanvas("box", 80, 40)
//	box.SetBackground(frontend.Color{R: 0.3, G: 0.7, B: 1, A: 1})
//	ctx.RootHandler().AddChild(box)
//	frontend.Run(ctx, state, frontend.RunConfig{Title: "demo"})
//
// For full control, implement [ebiten.Game] yourself: poll input with
// [InputHandler.PollEbiten] in Update and call [Context.Frame] and
// [Context.PostDraw] in Draw.
//
// Scripts run through the goja engine in the script subpackage, and the ecs
// module bridges interaction events to [Donburi].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package frontend
