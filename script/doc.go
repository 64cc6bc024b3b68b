// Package script runs goja programs against a frontend.Context.
//
// An Engine installs a small host API on a fresh goja runtime:
//
//	console.log(...args)             forwards to Context.Log
//	canvas.byId(id), canvas.byIdx(n) look up registered canvases
//	canvas.create(id, w, h)          registers a new canvas
//	setImmediate(fn, ...args)        runs fn as a job on the next frame
//	requestAnimationFrame(fn)        runs fn(ts) before the next draw
//	structuredClone(v)               deep-copies v through Serialize
//
// Canvas objects are stable: looking up the same canvas twice yields the
// same JavaScript object. An Engine is not safe for concurrent use; drive it
// from the goroutine that calls Context.Frame.
package script
