package script

import (
	"github.com/dop251/goja"
	"github.com/phanxgames/frontend"
)

func (e *Engine) jsByID(call goja.FunctionCall) goja.Value {
	return e.wrap(e.ctx.GetCanvasByID(call.Argument(0).String()))
}

func (e *Engine) jsByIdx(call goja.FunctionCall) goja.Value {
	idx := call.Argument(0).ToInteger()
	if idx < 0 {
		return goja.Null()
	}
	return e.wrap(e.ctx.GetCanvasByIdx(uint64(idx)))
}

func (e *Engine) jsCreate(call goja.FunctionCall) goja.Value {
	var id string
	if a := call.Argument(0); !goja.IsUndefined(a) && !goja.IsNull(a) {
		id = a.String()
	}
	h := e.ctx.CreateCanvas(id, call.Argument(1).ToFloat(), call.Argument(2).ToFloat())
	e.prune()
	return e.wrap(h)
}

// wrap returns the script object for h, creating it on first use, or null
// for a nil handler.
func (e *Engine) wrap(h *frontend.CanvasHandler) goja.Value {
	if h == nil {
		return goja.Null()
	}
	if obj, ok := e.objects[h.Idx()]; ok && e.natives[obj] == h {
		return obj
	}
	obj := e.newCanvasObject(h)
	e.objects[h.Idx()] = obj
	e.natives[obj] = h
	return obj
}

// handlerOf returns the handler behind a canvas object, throwing a TypeError
// for anything else.
func (e *Engine) handlerOf(v goja.Value) *frontend.CanvasHandler {
	if obj, ok := v.(*goja.Object); ok {
		if h := e.natives[obj]; h != nil {
			return h
		}
	}
	panic(e.rt.NewTypeError("argument is not a canvas"))
}

// prune drops objects of handlers that left the registry once they clearly
// outnumber the live ones.
func (e *Engine) prune() {
	if len(e.objects) <= 2*e.ctx.CanvasCount()+16 {
		return
	}
	for idx, obj := range e.objects {
		if h := e.natives[obj]; !h.Registered() {
			delete(e.objects, idx)
			delete(e.natives, obj)
		}
	}
}

func (e *Engine) newCanvasObject(h *frontend.CanvasHandler) *goja.Object {
	rt := e.rt
	obj := rt.NewObject()

	getter := func(fn func() any) goja.Value {
		return rt.ToValue(func(goja.FunctionCall) goja.Value { return rt.ToValue(fn()) })
	}
	readOnly := func(name string, fn func() any) {
		_ = obj.DefineAccessorProperty(name, getter(fn), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}

	_ = obj.DefineAccessorProperty("id", getter(func() any { return h.ID() }),
		rt.ToValue(func(call goja.FunctionCall) goja.Value {
			h.SetID(call.Argument(0).String())
			return goja.Undefined()
		}), goja.FLAG_FALSE, goja.FLAG_TRUE)
	readOnly("idx", func() any { return h.Idx() })
	readOnly("left", func() any { return h.Left() })
	readOnly("top", func() any { return h.Top() })
	readOnly("width", func() any { return h.Width() })
	readOnly("height", func() any { return h.Height() })
	readOnly("opacity", func() any { return h.Opacity() })
	readOnly("visible", func() any { return h.Visible() })

	method := func(name string, fn func(call goja.FunctionCall) goja.Value) {
		_ = obj.Set(name, fn)
	}
	method("setPosition", func(call goja.FunctionCall) goja.Value {
		h.SetPosition(call.Argument(0).ToFloat(), call.Argument(1).ToFloat())
		return goja.Undefined()
	})
	method("setSize", func(call goja.FunctionCall) goja.Value {
		h.SetSize(call.Argument(0).ToFloat(), call.Argument(1).ToFloat())
		return goja.Undefined()
	})
	method("setOpacity", func(call goja.FunctionCall) goja.Value {
		h.SetOpacity(call.Argument(0).ToFloat())
		return goja.Undefined()
	})
	method("setVisible", func(call goja.FunctionCall) goja.Value {
		h.SetVisible(call.Argument(0).ToBoolean())
		return goja.Undefined()
	})
	method("setFluid", func(call goja.FunctionCall) goja.Value {
		h.SetFluid(call.Argument(0).ToBoolean(), call.Argument(1).ToBoolean())
		return goja.Undefined()
	})
	method("setBackground", func(call goja.FunctionCall) goja.Value {
		a := 1.0
		if v := call.Argument(3); !goja.IsUndefined(v) {
			a = v.ToFloat()
		}
		h.SetBackground(frontend.Color{
			R: call.Argument(0).ToFloat(),
			G: call.Argument(1).ToFloat(),
			B: call.Argument(2).ToFloat(),
			A: a,
		})
		return goja.Undefined()
	})
	method("addChild", func(call goja.FunctionCall) goja.Value {
		child := e.handlerOf(call.Argument(0))
		e.rethrow(func() { h.AddChild(child) })
		return goja.Undefined()
	})
	method("removeChild", func(call goja.FunctionCall) goja.Value {
		child := e.handlerOf(call.Argument(0))
		e.rethrow(func() { h.RemoveChild(child) })
		return goja.Undefined()
	})
	method("removeFromParent", func(goja.FunctionCall) goja.Value {
		h.RemoveFromParent()
		return goja.Undefined()
	})
	method("parent", func(goja.FunctionCall) goja.Value {
		return e.wrap(h.Parent())
	})
	method("children", func(goja.FunctionCall) goja.Value {
		children := h.Children()
		items := make([]any, len(children))
		for i, child := range children {
			items[i] = e.wrap(child)
		}
		return rt.NewArray(items...)
	})
	method("on", func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		fn := e.callable(call.Argument(1))
		listener := func(ev *frontend.Event) {
			e.invoke("event:"+ev.Name, fn, e.eventObject(ev))
		}
		var handle frontend.ListenerHandle
		if t, ok := frontend.ParseEventType(name); ok && t != frontend.EventCustom {
			handle = h.AddEventListener(t, listener)
		} else {
			handle = h.AddCustomListener(name, listener)
		}
		return rt.ToValue(func(goja.FunctionCall) goja.Value {
			handle.Remove()
			return goja.Undefined()
		})
	})
	method("fire", func(call goja.FunctionCall) goja.Value {
		h.FireEvent(call.Argument(0).String(), call.Argument(1))
		return goja.Undefined()
	})
	method("dispose", func(goja.FunctionCall) goja.Value {
		h.Dispose()
		return goja.Undefined()
	})
	return obj
}

// eventObject converts ev for a script listener. Data passed from scripts is
// handed back unchanged.
func (e *Engine) eventObject(ev *frontend.Event) *goja.Object {
	rt := e.rt
	obj := rt.NewObject()
	_ = obj.Set("type", ev.Name)
	_ = obj.Set("target", e.wrap(ev.Target))
	_ = obj.Set("currentTarget", e.wrap(ev.CurrentTarget))

	switch ev.Type {
	case frontend.EventResize:
		_ = obj.Set("width", ev.Width)
		_ = obj.Set("height", ev.Height)
	case frontend.EventKeyDown, frontend.EventKeyUp:
		_ = obj.Set("key", ev.Key.String())
	case frontend.EventCustom:
		if v, ok := ev.Data.(goja.Value); ok {
			_ = obj.Set("data", v)
		} else {
			_ = obj.Set("data", rt.ToValue(ev.Data))
		}
	default:
		_ = obj.Set("x", ev.GlobalX)
		_ = obj.Set("y", ev.GlobalY)
		_ = obj.Set("localX", ev.LocalX)
		_ = obj.Set("localY", ev.LocalY)
		_ = obj.Set("button", int(ev.Button))
		_ = obj.Set("deltaX", ev.DeltaX)
		_ = obj.Set("deltaY", ev.DeltaY)
		_ = obj.Set("wheelX", ev.WheelX)
		_ = obj.Set("wheelY", ev.WheelY)
	}

	_ = obj.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		ev.StopPropagation()
		return goja.Undefined()
	})
	return obj
}
