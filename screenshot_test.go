package frontend

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-spawn", "after-spawn"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"back\\slash", "back_slash"},
		{"special!@#$%", "special_____"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"MixedCase123", "MixedCase123"},
	}
	for _, tt := range tests {
		got := sanitizeLabel(tt.in)
		if got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func fixedExporter(dir string) *PNGExporter {
	e := NewPNGExporter(dir)
	e.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return e
}

func TestPNGExporterWantsPixelsOnlyWhenQueued(t *testing.T) {
	e := fixedExporter(t.TempDir())
	if e.WantsPixels() {
		t.Error("WantsPixels with empty queue")
	}
	e.Capture("a")
	if !e.WantsPixels() {
		t.Error("WantsPixels = false after Capture")
	}
	e.Rendered(make([]byte, 4), 1, 1)
	if e.WantsPixels() {
		t.Error("queue not drained by Rendered")
	}
}

func TestPNGExporterWritesQueuedLabels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "captures")
	e := fixedExporter(dir)
	e.Capture("first")
	e.Capture("with space")

	// 2x1: opaque red, half-transparent premultiplied white
	pix := []byte{
		255, 0, 0, 255,
		128, 128, 128, 128,
	}
	e.Rendered(pix, 2, 1)

	want := []string{
		filepath.Join(dir, "20240506_070809_first.png"),
		filepath.Join(dir, "20240506_070809_with_space.png"),
	}
	got := e.Written()
	if len(got) != len(want) {
		t.Fatalf("written = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("written[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	f, err := os.Open(want[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Errorf("image size = %dx%d, want 2x1", b.Dx(), b.Dy())
	}
	r, _, _, a := img.At(1, 0).RGBA()
	if a>>8 != 128 || r>>8 < 120 {
		t.Errorf("pixel (1,0) r=%d a=%d, want unpremultiplied white at half alpha", r>>8, a>>8)
	}
}

func TestPNGExporterEveryFrame(t *testing.T) {
	e := fixedExporter(t.TempDir())
	e.EveryFrame = true
	if !e.WantsPixels() {
		t.Error("WantsPixels = false with EveryFrame")
	}
	e.Rendered(make([]byte, 4), 1, 1)
	e.Rendered(make([]byte, 4), 1, 1)
	if n := len(e.Written()); n != 2 {
		t.Errorf("written = %d, want 2", n)
	}
}

func TestPNGExporterShortBuffer(t *testing.T) {
	e := fixedExporter(t.TempDir())
	e.Capture("x")
	e.Rendered(make([]byte, 3), 1, 1)
	if n := len(e.Written()); n != 0 {
		t.Errorf("written = %d, want 0", n)
	}
}

func TestUnpremultiply(t *testing.T) {
	img := unpremultiply([]byte{50, 25, 0, 100}, 1, 1)
	want := []uint8{127, 63, 0, 100}
	for i, v := range want {
		if img.Pix[i] != v {
			t.Errorf("Pix[%d] = %d, want %d", i, img.Pix[i], v)
		}
	}
}
