package frontend

// syntheticPointerEvent represents a single injected pointer event in window
// coordinates. It is fed through the same state machine as real input.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

func (in *InputHandler) inject(evt syntheticPointerEvent) {
	in.mu.Lock()
	in.injectQueue = append(in.injectQueue, evt)
	in.mu.Unlock()
}

// InjectPress queues a pointer press at the given window coordinates (left
// button). Injected events are consumed one per frame, ahead of real mouse
// input.
func (in *InputHandler) InjectPress(x, y float64) {
	in.inject(syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (in *InputHandler) InjectMove(x, y float64) {
	in.inject(syntheticPointerEvent{x: x, y: y, pressed: true, button: MouseButtonLeft})
}

// InjectRelease queues a pointer release at the given window coordinates.
func (in *InputHandler) InjectRelease(x, y float64) {
	in.inject(syntheticPointerEvent{x: x, y: y, pressed: false, button: MouseButtonLeft})
}

// InjectClick queues a press followed by a release at the same coordinates.
// Consumes two frames.
func (in *InputHandler) InjectClick(x, y float64) {
	in.InjectPress(x, y)
	in.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes `frames` frames. Minimum frames is
// 2 (press + release).
func (in *InputHandler) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	in.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		in.InjectMove(x, y)
	}
	in.InjectRelease(toX, toY)
}
