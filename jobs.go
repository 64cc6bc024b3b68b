package frontend

import "sync"

// jobEntry is one deferred callback with its opaque argument.
type jobEntry struct {
	fn  func(arg any)
	arg any
}

// jobQueue is an unbounded FIFO of deferred callbacks. push is safe from any
// goroutine; drain runs on the render goroutine only.
type jobQueue struct {
	mu      sync.Mutex
	entries []jobEntry
}

func (q *jobQueue) push(fn func(arg any), arg any) {
	q.mu.Lock()
	q.entries = append(q.entries, jobEntry{fn: fn, arg: arg})
	q.mu.Unlock()
}

// drain detaches the entries queued so far and runs them in submission
// order. Jobs pushed while draining go into a fresh slice and wait for the
// next drain. Returns the number of jobs run.
func (q *jobQueue) drain() int {
	q.mu.Lock()
	snapshot := q.entries
	q.entries = nil
	q.mu.Unlock()

	for i := range snapshot {
		e := snapshot[i]
		snapshot[i] = jobEntry{}
		e.fn(e.arg)
	}
	return len(snapshot)
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// reset drops every queued job without running it.
func (q *jobQueue) reset() {
	q.mu.Lock()
	q.entries = nil
	q.mu.Unlock()
}
