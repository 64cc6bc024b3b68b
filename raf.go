package frontend

import (
	"sync"
	"time"
)

// rafQueue holds animation-frame callbacks. Callbacks registered while the
// queue is being run wait for the following frame.
type rafQueue struct {
	mu  sync.Mutex
	fns []func(ts float64)
}

func (q *rafQueue) push(fn func(ts float64)) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *rafQueue) take() []func(ts float64) {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	return fns
}

func (q *rafQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

// RequestAnimationFrame schedules fn to run once, after events are
// dispatched and before the draw call of the next frame. fn receives the
// frame timestamp in milliseconds since the Context started. Safe from any
// goroutine.
func (c *Context) RequestAnimationFrame(fn func(ts float64)) {
	if fn == nil {
		panic("frontend: nil animation frame callback")
	}
	c.raf.push(fn)
}

// callFrameCallbacks runs the callbacks registered before this step.
func (c *Context) callFrameCallbacks(now time.Time) int {
	fns := c.raf.take()
	if len(fns) == 0 {
		return 0
	}
	ts := float64(now.Sub(c.stats.StartTime)) / float64(time.Millisecond)
	for _, fn := range fns {
		fn(ts)
	}
	return len(fns)
}
