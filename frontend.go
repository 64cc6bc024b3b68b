package frontend

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw submission time.
type Color struct {
	R, G, B, A float64
}

// ColorTransparent is the default handler background (nothing is filled).
var ColorTransparent = Color{}

// ColorWhite is an opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// EventType identifies a kind of event delivered to a CanvasHandler.
type EventType uint8

const (
	EventPointerDown  EventType = iota // a pointer button was pressed over the handler
	EventPointerUp                     // a pointer button was released
	EventPointerMove                   // the pointer moved (hover, no button)
	EventClick                         // press then release over the same handler
	EventDragStart                     // movement exceeded the drag dead zone
	EventDrag                          // fires each frame while dragging
	EventDragEnd                       // the pointer was released after dragging
	EventPointerEnter                  // the pointer entered the handler's bounds
	EventPointerLeave                  // the pointer left the handler's bounds
	EventWheel                         // mouse wheel scrolled over the handler
	EventKeyDown                       // a key was pressed while the handler had focus
	EventKeyUp                         // a key was released while the handler had focus
	EventResize                        // the handler's size changed
	EventCustom                        // user event raised with FireEvent
)

var eventTypeNames = [...]string{
	EventPointerDown:  "pointerdown",
	EventPointerUp:    "pointerup",
	EventPointerMove:  "pointermove",
	EventClick:        "click",
	EventDragStart:    "dragstart",
	EventDrag:         "drag",
	EventDragEnd:      "dragend",
	EventPointerEnter: "pointerenter",
	EventPointerLeave: "pointerleave",
	EventWheel:        "wheel",
	EventKeyDown:      "keydown",
	EventKeyUp:        "keyup",
	EventResize:       "resize",
	EventCustom:       "custom",
}

// String returns the DOM-style name of the event type.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// ParseEventType returns the EventType whose String is name.
func ParseEventType(name string) (EventType, bool) {
	for i, n := range eventTypeNames {
		if n == name {
			return EventType(i), true
		}
	}
	return 0, false
}

// bubbles reports whether events of this type propagate to ancestors.
func (t EventType) bubbles() bool {
	switch t {
	case EventPointerDown, EventPointerUp, EventPointerMove, EventClick,
		EventWheel, EventKeyDown, EventKeyUp:
		return true
	}
	return false
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
