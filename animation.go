package frontend

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 attributes of a CanvasHandler simultaneously.
// Create one via the convenience constructors (TweenPosition, TweenSize,
// TweenOpacity) and either call Update(dt) yourself or hand it to
// Context.AddTween, which advances it every frame before pending changes are
// applied. Values are written through the queued setters, so they land in
// the same frame. If the target handler is disposed, the group stops
// immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	values [4]float64
	apply  func(v *[4]float64)
	target *CanvasHandler
	Done   bool
}

// Update advances all tweens by dt seconds and queues the resulting values on
// the target. If the target has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.apply != nil {
		g.apply(&g.values)
	}
}

// TweenPosition creates a TweenGroup that moves h to (toLeft, toTop) over the
// specified duration using the easing function.
func TweenPosition(h *CanvasHandler, toLeft, toTop float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: h}
	g.tweens[0] = gween.New(float32(h.left), float32(toLeft), duration, fn)
	g.tweens[1] = gween.New(float32(h.top), float32(toTop), duration, fn)
	g.apply = func(v *[4]float64) { h.SetPosition(v[0], v[1]) }
	return g
}

// TweenSize creates a TweenGroup that resizes h to toWidth x toHeight.
func TweenSize(h *CanvasHandler, toWidth, toHeight float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: h}
	g.tweens[0] = gween.New(float32(h.width), float32(toWidth), duration, fn)
	g.tweens[1] = gween.New(float32(h.height), float32(toHeight), duration, fn)
	g.apply = func(v *[4]float64) { h.SetSize(v[0], v[1]) }
	return g
}

// TweenOpacity creates a TweenGroup that fades h to the target opacity.
func TweenOpacity(h *CanvasHandler, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: h}
	g.tweens[0] = gween.New(float32(h.opacity), float32(to), duration, fn)
	g.apply = func(v *[4]float64) { h.SetOpacity(v[0]) }
	return g
}

// TweenBackground animates all four components of h's background color.
func TweenBackground(h *CanvasHandler, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4, target: h}
	from := h.background
	g.tweens[0] = gween.New(float32(from.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(from.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(from.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(from.A), float32(to.A), duration, fn)
	g.apply = func(v *[4]float64) { h.SetBackground(Color{R: v[0], G: v[1], B: v[2], A: v[3]}) }
	return g
}

// AddTween registers g to be advanced by the frame delta at every frame.
// Finished groups are dropped.
func (c *Context) AddTween(g *TweenGroup) {
	if g == nil {
		return
	}
	c.tweens = append(c.tweens, g)
}

// advanceTweens steps every registered group and compacts out finished ones.
func (c *Context) advanceTweens(dt float64) {
	if len(c.tweens) == 0 {
		return
	}
	live := c.tweens[:0]
	for _, g := range c.tweens {
		g.Update(float32(dt))
		if !g.Done {
			live = append(live, g)
		}
	}
	for i := len(live); i < len(c.tweens); i++ {
		c.tweens[i] = nil
	}
	c.tweens = live
}
