package frontend

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// PNGExporter is a RenderedObserver that writes captured frames to PNG files
// in Dir. Capture queues a label; the next rendered frame is written once per
// queued label as <stamp>_<label>.png. With EveryFrame set, every rendered
// frame is written as <stamp>_frame_<n>.png.
type PNGExporter struct {
	Dir        string
	EveryFrame bool

	mu      sync.Mutex
	labels  []string
	frame   uint64
	written []string
	now     func() time.Time
}

// NewPNGExporter returns an exporter writing into dir.
func NewPNGExporter(dir string) *PNGExporter {
	return &PNGExporter{Dir: dir, now: time.Now}
}

// Capture queues a labeled capture of the next rendered frame. Safe from any
// goroutine.
func (e *PNGExporter) Capture(label string) {
	e.mu.Lock()
	e.labels = append(e.labels, label)
	e.mu.Unlock()
}

// WantsPixels reports whether a capture is queued.
func (e *PNGExporter) WantsPixels() bool {
	if e.EveryFrame {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.labels) > 0
}

// Written returns the paths of every file written so far.
func (e *PNGExporter) Written() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.written...)
}

// Rendered writes the frame for each queued label. pix is premultiplied RGBA.
func (e *PNGExporter) Rendered(pix []byte, width, height int) {
	e.mu.Lock()
	labels := e.labels
	e.labels = nil
	e.frame++
	frame := e.frame
	e.mu.Unlock()

	if e.EveryFrame {
		labels = append(labels, fmt.Sprintf("frame_%06d", frame))
	}
	if len(labels) == 0 {
		return
	}
	if len(pix) < 4*width*height {
		Logger().Warn().Int("len", len(pix)).Int("width", width).Int("height", height).
			Msg("capture: short pixel buffer")
		return
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		Logger().Error().Err(err).Str("dir", e.Dir).Msg("capture: mkdir")
		return
	}

	img := unpremultiply(pix, width, height)
	stamp := e.now().Format("20060102_150405")

	for _, label := range labels {
		path := filepath.Join(e.Dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			Logger().Error().Err(err).Msg("capture")
			continue
		}
		e.mu.Lock()
		e.written = append(e.written, path)
		e.mu.Unlock()
	}
}

// unpremultiply converts premultiplied RGBA to straight-alpha NRGBA.
func unpremultiply(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < 4*w*h; i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
