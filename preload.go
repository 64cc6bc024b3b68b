package frontend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dop251/goja"
)

// ErrNotPreloaded is returned when a script unit is missing from the table.
var ErrNotPreloaded = errors.New("frontend: script not preloaded")

// PreloadTable maps identifiers to precompiled script units. A loader fills
// it before the first frame; the script engine reads it.
type PreloadTable struct {
	mu    sync.RWMutex
	units map[string]*goja.Program
}

func newPreloadTable() *PreloadTable {
	return &PreloadTable{units: make(map[string]*goja.Program)}
}

// Set stores a compiled unit, replacing any previous one.
func (t *PreloadTable) Set(name string, p *goja.Program) {
	t.mu.Lock()
	t.units[name] = p
	t.mu.Unlock()
}

// Compile compiles src in strict mode and stores it under name.
func (t *PreloadTable) Compile(name, src string) error {
	p, err := goja.Compile(name, src, true)
	if err != nil {
		return fmt.Errorf("frontend: preload %s: %w", name, err)
	}
	t.Set(name, p)
	return nil
}

// Get returns the unit stored under name.
func (t *PreloadTable) Get(name string) (*goja.Program, error) {
	t.mu.RLock()
	p, ok := t.units[name]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotPreloaded, name)
	}
	return p, nil
}

// Names returns the stored identifiers, sorted.
func (t *PreloadTable) Names() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.units))
	for name := range t.units {
		out = append(out, name)
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}
