package script

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/phanxgames/frontend"
	"github.com/rs/zerolog"
)

// Engine binds a goja runtime to a Context.
type Engine struct {
	ctx *frontend.Context
	rt  *goja.Runtime
	log zerolog.Logger

	objects map[uint64]*goja.Object
	natives map[*goja.Object]*frontend.CanvasHandler
}

// New creates a runtime for c and installs the host globals.
func New(c *frontend.Context) *Engine {
	if c == nil {
		panic("script: nil context")
	}
	e := &Engine{
		ctx:     c,
		rt:      goja.New(),
		log:     frontend.Logger().With().Str("context", c.ID()).Str("component", "script").Logger(),
		objects: make(map[uint64]*goja.Object),
		natives: make(map[*goja.Object]*frontend.CanvasHandler),
	}
	e.installGlobals()
	return e
}

// Runtime returns the underlying goja runtime.
func (e *Engine) Runtime() *goja.Runtime {
	return e.rt
}

// RunString evaluates src.
func (e *Engine) RunString(src string) (goja.Value, error) {
	return e.rt.RunString(src)
}

// RunPreloaded runs the program stored under name in the context's preload
// table. It returns frontend.ErrNotPreloaded when there is none.
func (e *Engine) RunPreloaded(name string) (goja.Value, error) {
	p, err := e.ctx.Preload().Get(name)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("unit", name).Msg("running preloaded unit")
	return e.rt.RunProgram(p)
}

func (e *Engine) installGlobals() {
	console := e.rt.NewObject()
	_ = console.Set("log", e.jsLog)
	_ = e.rt.Set("console", console)

	canvas := e.rt.NewObject()
	_ = canvas.Set("byId", e.jsByID)
	_ = canvas.Set("byIdx", e.jsByIdx)
	_ = canvas.Set("create", e.jsCreate)
	_ = e.rt.Set("canvas", canvas)

	_ = e.rt.Set("setImmediate", e.jsSetImmediate)
	_ = e.rt.Set("requestAnimationFrame", e.jsRequestAnimationFrame)
	_ = e.rt.Set("structuredClone", e.jsStructuredClone)
}

func (e *Engine) jsLog(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, arg := range call.Arguments {
		parts[i] = arg.String()
	}
	e.ctx.Log(strings.Join(parts, " "))
	return goja.Undefined()
}

func (e *Engine) jsSetImmediate(call goja.FunctionCall) goja.Value {
	fn := e.callable(call.Argument(0))
	var args []goja.Value
	if len(call.Arguments) > 1 {
		args = append(args, call.Arguments[1:]...)
	}
	e.ctx.AddJob(func(any) { e.invoke("setImmediate", fn, args...) }, nil)
	return goja.Undefined()
}

func (e *Engine) jsRequestAnimationFrame(call goja.FunctionCall) goja.Value {
	fn := e.callable(call.Argument(0))
	e.ctx.RequestAnimationFrame(func(ts float64) {
		e.invoke("requestAnimationFrame", fn, e.rt.ToValue(ts))
	})
	return goja.Undefined()
}

func (e *Engine) jsStructuredClone(call goja.FunctionCall) goja.Value {
	data, err := e.Serialize(call.Argument(0))
	if err != nil {
		panic(e.rt.NewGoError(err))
	}
	v, err := e.Deserialize(data)
	if err != nil {
		panic(e.rt.NewGoError(err))
	}
	return v
}

// callable asserts v is a function, throwing a TypeError otherwise.
func (e *Engine) callable(v goja.Value) goja.Callable {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		panic(e.rt.NewTypeError("argument is not a function"))
	}
	return fn
}

// invoke calls fn from a frame step. Script errors are logged and reported
// to the UI shell; they never abort the frame.
func (e *Engine) invoke(source string, fn goja.Callable, args ...goja.Value) {
	if _, err := fn(goja.Undefined(), args...); err != nil {
		e.log.Warn().Err(err).Str("source", source).Msg("script callback failed")
		e.ctx.Log("Error: " + err.Error())
	}
}

// rethrow runs fn and turns a Go panic into a script exception.
func (e *Engine) rethrow(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			panic(e.rt.NewGoError(fmt.Errorf("%v", r)))
		}
	}()
	fn()
}
