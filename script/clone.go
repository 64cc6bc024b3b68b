package script

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dop251/goja"
	"github.com/phanxgames/frontend"
)

// cloneKey marks a native object in the serialized form:
//
//	{"$clone": {"tag": 4294934529, "data": "<base64 payload>"}}
const cloneKey = "$clone"

// ErrCyclicValue is returned by Serialize for values that contain themselves.
var ErrCyclicValue = errors.New("script: value contains a cycle")

type clonePayload struct {
	Tag  uint32 `json:"tag"`
	Data []byte `json:"data"`
}

// Serialize encodes v as JSON. Object key order is preserved. Canvas objects
// are written through the context's StructuredCloner; functions and other
// host objects fail with frontend.ErrCloneUnsupported. NaN and infinities
// encode as null.
func (e *Engine) Serialize(v goja.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.encode(&buf, v, make(map[*goja.Object]bool)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Engine) encode(buf *bytes.Buffer, v goja.Value, stack map[*goja.Object]bool) error {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		buf.WriteString("null")
		return nil
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return encodePrimitive(buf, v.Export())
	}

	if h := e.natives[obj]; h != nil {
		tag, payload, err := e.ctx.Cloner().WriteClone(h)
		if err != nil {
			return err
		}
		b, err := json.Marshal(map[string]clonePayload{cloneKey: {Tag: tag, Data: payload}})
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
	if _, isFn := goja.AssertFunction(obj); isFn {
		return fmt.Errorf("%w: function", frontend.ErrCloneUnsupported)
	}
	if stack[obj] {
		return ErrCyclicValue
	}
	stack[obj] = true
	defer delete(stack, obj)

	if obj.ClassName() == "Array" {
		n := int(obj.Get("length").ToInteger())
		buf.WriteByte('[')
		for i := 0; i < n; i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf, obj.Get(strconv.Itoa(i)), stack); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	buf.WriteByte('{')
	for i, key := range obj.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if err := e.encode(buf, obj.Get(key), stack); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodePrimitive(buf *bytes.Buffer, x any) error {
	if f, ok := x.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		buf.WriteString("null")
		return nil
	}
	switch x.(type) {
	case bool, int64, float64, string:
	default:
		return fmt.Errorf("%w: %T", frontend.ErrCloneUnsupported, x)
	}
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// Deserialize decodes data produced by Serialize into a new value. Canvas
// references resolve against the registry and fail with
// frontend.ErrCloneUnknownCanvas once the canvas is gone.
func (e *Engine) Deserialize(data []byte) (goja.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := e.decode(dec)
	if err != nil {
		return nil, fmt.Errorf("script: deserialize: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("script: deserialize: trailing data")
	}
	return v, nil
}

func (e *Engine) decode(dec *json.Decoder) (goja.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '[' {
			return e.decodeArray(dec)
		}
		return e.decodeObject(dec)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return e.rt.ToValue(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return e.rt.ToValue(f), nil
	case string:
		return e.rt.ToValue(t), nil
	case bool:
		return e.rt.ToValue(t), nil
	case nil:
		return goja.Null(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func (e *Engine) decodeArray(dec *json.Decoder) (goja.Value, error) {
	var items []any
	for dec.More() {
		v, err := e.decode(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return e.rt.NewArray(items...), nil
}

func (e *Engine) decodeObject(dec *json.Decoder) (goja.Value, error) {
	obj := e.rt.NewObject()
	first := true
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		if first && key == cloneKey {
			return e.decodeNative(dec)
		}
		first = false
		v, err := e.decode(dec)
		if err != nil {
			return nil, err
		}
		_ = obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (e *Engine) decodeNative(dec *json.Decoder) (goja.Value, error) {
	var p clonePayload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '}' {
		return nil, fmt.Errorf("%s reference has extra key %v", cloneKey, tok)
	}
	native, err := e.ctx.Cloner().ReadClone(p.Tag, p.Data)
	if err != nil {
		return nil, err
	}
	h, ok := native.(*frontend.CanvasHandler)
	if !ok {
		return nil, fmt.Errorf("%w: %T", frontend.ErrCloneUnsupported, native)
	}
	return e.wrap(h), nil
}
