package frontend

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrCloneUnsupported is returned for objects or tags the cloner does
	// not know.
	ErrCloneUnsupported = errors.New("frontend: unsupported structured clone object")
	// ErrCloneUnknownCanvas is returned when a cloned canvas no longer exists.
	ErrCloneUnknownCanvas = errors.New("frontend: cloned canvas no longer registered")
)

// CloneTagCanvas tags a serialized *CanvasHandler.
const CloneTagCanvas uint32 = 0xFFFF8001

// StructuredCloner maps native objects to and from the scripting engine's
// clone stream. The stream format itself belongs to the engine.
type StructuredCloner interface {
	WriteClone(obj any) (tag uint32, payload []byte, err error)
	ReadClone(tag uint32, payload []byte) (any, error)
}

// canvasCloner serializes handlers by idx and resolves them against the
// registry on read.
type canvasCloner struct {
	reg *canvasRegistry
}

func (c canvasCloner) WriteClone(obj any) (uint32, []byte, error) {
	h, ok := obj.(*CanvasHandler)
	if !ok || h == nil {
		return 0, nil, fmt.Errorf("%w: %T", ErrCloneUnsupported, obj)
	}
	payload := binary.LittleEndian.AppendUint64(nil, h.idx)
	return CloneTagCanvas, payload, nil
}

func (c canvasCloner) ReadClone(tag uint32, payload []byte) (any, error) {
	if tag != CloneTagCanvas {
		return nil, fmt.Errorf("%w: tag %#x", ErrCloneUnsupported, tag)
	}
	if len(payload) != 8 {
		return nil, fmt.Errorf("frontend: canvas clone payload is %d bytes, want 8", len(payload))
	}
	idx := binary.LittleEndian.Uint64(payload)
	h := c.reg.getByIdx(idx)
	if h == nil {
		return nil, fmt.Errorf("%w: idx %d", ErrCloneUnknownCanvas, idx)
	}
	return h, nil
}
