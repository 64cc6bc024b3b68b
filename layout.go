package frontend

// resize sets the handler's size, lets fluid children follow and queues an
// EventResize when the size actually changed.
func (h *CanvasHandler) resize(width, height float64) {
	if width == h.width && height == h.height {
		return
	}
	h.width, h.height = width, height
	for _, child := range h.children {
		child.resize(child.fluidSize(child.width, child.height))
	}
	h.queueEvent(&Event{Type: EventResize, Width: width, Height: height})
}

// fluidSize returns the size h should have given its fluid flags: a fluid
// dimension fills the parent from the handler's offset to the parent's edge.
func (h *CanvasHandler) fluidSize(width, height float64) (float64, float64) {
	if h.parent == nil {
		return width, height
	}
	if h.fluidWidth {
		width = max(h.parent.width-h.left, 0)
	}
	if h.fluidHeight {
		height = max(h.parent.height-h.top, 0)
	}
	return width, height
}

// AbsolutePosition returns the handler's top-left corner in window
// coordinates, accumulated through its ancestors.
func (h *CanvasHandler) AbsolutePosition() (x, y float64) {
	for p := h; p != nil; p = p.parent {
		x += p.left
		y += p.top
	}
	return x, y
}

// Bounds returns the handler's rectangle in window coordinates.
func (h *CanvasHandler) Bounds() Rect {
	x, y := h.AbsolutePosition()
	return Rect{X: x, Y: y, Width: h.width, Height: h.height}
}

// WorldToLocal converts window coordinates into the handler's local space.
func (h *CanvasHandler) WorldToLocal(wx, wy float64) (float64, float64) {
	x, y := h.AbsolutePosition()
	return wx - x, wy - y
}

// isVisibleInTree reports whether h and all its ancestors are visible.
func (h *CanvasHandler) isVisibleInTree() bool {
	for p := h; p != nil; p = p.parent {
		if !p.visible {
			return false
		}
	}
	return true
}

// worldOpacity multiplies the opacity of h and its ancestors.
func (h *CanvasHandler) worldOpacity() float64 {
	a := 1.0
	for p := h; p != nil; p = p.parent {
		a *= p.opacity
	}
	return a
}
