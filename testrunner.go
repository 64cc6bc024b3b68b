package frontend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input, window resizes and captures across
// frames for automated visual testing. Call Step once per frame before
// Context.Frame; Run does this for the windowed loop and RunHeadless for
// offscreen runs.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	exporter  *PNGExporter
}

var knownActions = map[string]bool{
	"capture": true, "click": true, "drag": true,
	"resize": true, "wait": true, "frame": true,
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetExporter sets the exporter that receives "capture" steps. Without one,
// capture steps are skipped.
func (r *TestRunner) SetExporter(e *PNGExporter) {
	r.exporter = e
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Step advances the runner by one frame.
func (r *TestRunner) Step(c *Context) {
	if r.done {
		return
	}
	in := c.InputHandler()
	// Wait for pending injections to drain before advancing.
	if in.Pending() > 0 {
		return
	}
	// Count down wait frames.
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "capture":
		if r.exporter != nil {
			r.exporter.Capture(st.Label)
		}
	case "click":
		in.InjectClick(st.X, st.Y)
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		in.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames)
	case "resize":
		c.SizeChanged(st.Width, st.Height)
	case "wait", "frame":
		frames := st.Frames
		if frames < 1 {
			frames = 1
		}
		r.waitCount = frames - 1 // this frame counts as one
	}

	// Check if we've reached the end after executing.
	if r.cursor >= len(r.steps) && r.waitCount == 0 && in.Pending() == 0 {
		r.done = true
	}
}

// ErrRunnerStalled is returned by RunHeadless when the script did not finish
// within the frame limit.
var ErrRunnerStalled = errors.New("frontend: test script did not finish")

// RunHeadless ticks c without a window until r is done, running every frame
// step and PostDraw. When the GL state is an *EbitenState with a target, the
// root is drawn and captured pixels are handed to the rendered observers.
// maxFrames bounds the run.
func RunHeadless(c *Context, r *TestRunner, maxFrames int) (frames int, err error) {
	state, _ := c.GLState().(*EbitenState)
	draw := state != nil && state.Target() != nil
	var pix []byte

	for frames < maxFrames {
		if r.Done() {
			return frames, nil
		}
		r.Step(c)
		c.Frame(draw)
		if draw && c.WantsPixels() {
			pix = readTarget(state, pix)
			b := state.Target().Bounds()
			c.Rendered(pix, b.Dx(), b.Dy())
		}
		c.PostDraw()
		frames++
	}
	if r.Done() {
		return frames, nil
	}
	return frames, fmt.Errorf("%w after %d frames", ErrRunnerStalled, frames)
}
