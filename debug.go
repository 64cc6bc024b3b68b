package frontend

import (
	"fmt"
	"time"

	"github.com/agnivade/levenshtein"
)

// frameTimings holds per-phase durations and counters of one frame.
// Durations are only measured when the Context is in debug mode.
type frameTimings struct {
	size      time.Duration
	jobs      time.Duration
	tweens    time.Duration
	pending   time.Duration
	events    time.Duration
	callbacks time.Duration
	draw      time.Duration

	sizeResolved  bool
	jobCount      int
	pendingCount  int
	eventCount    int
	callbackCount int
}

func (t frameTimings) total() time.Duration {
	return t.size + t.jobs + t.tweens + t.pending + t.events + t.callbacks + t.draw
}

// debugLog writes the phase timings of a frame at debug level.
func (c *Context) debugLog(t frameTimings) {
	c.log.Debug().
		Dur("size", t.size).
		Dur("jobs", t.jobs).
		Dur("tweens", t.tweens).
		Dur("pending", t.pending).
		Dur("events", t.events).
		Dur("callbacks", t.callbacks).
		Dur("draw", t.draw).
		Dur("total", t.total()).
		Bool("resized", t.sizeResolved).
		Int("job_count", t.jobCount).
		Int("pending_count", t.pendingCount).
		Int("event_count", t.eventCount).
		Int("callback_count", t.callbackCount).
		Msg("frame")
}

// debugCheckDisposed panics with a descriptive message when a disposed
// handler is used in a tree operation. Only called in debug mode.
func debugCheckDisposed(h *CanvasHandler, op string) {
	if h.disposed {
		panic(fmt.Sprintf("frontend debug: %s on disposed canvas %q (idx was %d)", op, h.id, h.idx))
	}
}

// lookupSuggestDistance bounds how far a registered id may be from a missed
// lookup to be suggested.
const lookupSuggestDistance = 3

// logLookupMiss logs a failed id lookup together with the closest registered
// id, which is usually a typo.
func (c *Context) logLookupMiss(id string) {
	ev := c.log.Debug().Str("id", id)
	if s, ok := closestID(id, c.registry.ids()); ok {
		ev = ev.Str("did_you_mean", s)
	}
	ev.Msg("canvas lookup miss")
}

// closestID returns the candidate with the smallest edit distance to id,
// provided it is within lookupSuggestDistance.
func closestID(id string, candidates []string) (string, bool) {
	best, bestDist := "", lookupSuggestDistance+1
	for _, cand := range candidates {
		if d := levenshtein.ComputeDistance(id, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, best != ""
}
