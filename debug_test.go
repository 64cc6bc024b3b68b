package frontend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// ---- Debug mode tests ------------------------------------------------------

func TestDebugMode_DisposedChildPanics(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.SetDebugMode(true)

	parent := addChild(c, c.RootHandler(), "parent", 0, 0, 10, 10)
	child := c.CreateCanvas("child", 10, 10)
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed canvas, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestDebugMode_DisposedParentPanics(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.SetDebugMode(true)

	parent := c.CreateCanvas("parent", 10, 10)
	parent.Dispose()
	child := c.CreateCanvas("child", 10, 10)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild to disposed parent, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestReleaseMode_DisposedCanvasNoPanic(t *testing.T) {
	c, _, _ := newTestContext(t)
	c.SetDebugMode(false)

	child := c.CreateCanvas("child", 10, 10)
	child.Dispose()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("release mode should not panic on disposed canvas, got: %v", r)
		}
	}()
	c.RootHandler().AddChild(child)
}

// captureLog installs a debug-level JSON logger writing to the returned
// buffer for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	SetLogger(&l)
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

// logLines decodes every JSON line in buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestDebugMode_FrameTimingsLogged(t *testing.T) {
	buf := captureLog(t)
	c, _, _ := newTestContext(t)
	c.SetDebugMode(true)

	c.AddJob(func(any) {}, nil)
	c.Frame(true)

	var frame map[string]any
	for _, m := range logLines(t, buf) {
		if m["message"] == "frame" {
			frame = m
		}
	}
	if frame == nil {
		t.Fatalf("no frame log line in %q", buf.String())
	}
	for _, key := range []string{"size", "jobs", "tweens", "pending", "events", "callbacks", "draw", "total", "context"} {
		if _, ok := frame[key]; !ok {
			t.Errorf("frame log missing %q", key)
		}
	}
	if frame["job_count"] != float64(1) {
		t.Errorf("job_count = %v, want 1", frame["job_count"])
	}
	if frame["context"] != c.ID() {
		t.Errorf("context = %v, want %v", frame["context"], c.ID())
	}
}

func TestReleaseMode_NoFrameLog(t *testing.T) {
	buf := captureLog(t)
	c, _, _ := newTestContext(t)
	c.Frame(true)
	for _, m := range logLines(t, buf) {
		if m["message"] == "frame" {
			t.Error("frame timings logged outside debug mode")
		}
	}
}

func TestDebugMode_LookupMissSuggestion(t *testing.T) {
	buf := captureLog(t)
	c, _, _ := newTestContext(t)
	c.SetDebugMode(true)
	c.CreateCanvas("sidebar", 10, 10)

	if c.GetCanvasByID("sidebr") != nil {
		t.Fatal("lookup of misspelled id succeeded")
	}

	var miss map[string]any
	for _, m := range logLines(t, buf) {
		if m["message"] == "canvas lookup miss" {
			miss = m
		}
	}
	if miss == nil {
		t.Fatal("no lookup miss logged")
	}
	if miss["did_you_mean"] != "sidebar" {
		t.Errorf("did_you_mean = %v, want sidebar", miss["did_you_mean"])
	}
}

func TestClosestID(t *testing.T) {
	candidates := []string{"debug", "header", "root", "sidebar"}
	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"sidebr", "sidebar", true},
		{"roots", "root", true},
		{"heade", "header", true},
		{"completely-different", "", false},
	}
	for _, tt := range tests {
		got, ok := closestID(tt.id, candidates)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("closestID(%q) = %q, %v, want %q, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFrameTimingsTotal(t *testing.T) {
	ft := frameTimings{size: 1, jobs: 2, tweens: 3, pending: 4, events: 5, callbacks: 6, draw: 7}
	if got := ft.total(); got != 28 {
		t.Errorf("total = %v, want 28", got)
	}
}

func TestDebugModeIsPerContext(t *testing.T) {
	debugCtx, _, _ := newTestContext(t)
	releaseCtx, _, _ := newTestContext(t)
	debugCtx.SetDebugMode(true)

	if !debugCtx.DebugMode() || releaseCtx.DebugMode() {
		t.Fatalf("DebugMode = %v and %v, want true and false", debugCtx.DebugMode(), releaseCtx.DebugMode())
	}

	child := releaseCtx.CreateCanvas("child", 10, 10)
	child.Dispose()
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("debug mode of another context leaked: %v", r)
		}
	}()
	releaseCtx.RootHandler().AddChild(child)
}
