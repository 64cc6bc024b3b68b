package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/phanxgames/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ frontend.UIInterface = (*Console)(nil)
	_ frontend.WindowSizer = (*Console)(nil)
)

func newTestConsole(opts ...Option) (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	c := New(&buf, opts...)
	c.now = func() time.Time { return time.Date(2024, 1, 1, 12, 30, 45, 0, time.UTC) }
	return c, &buf
}

func TestLogPrintsWhenShown(t *testing.T) {
	c, buf := newTestConsole()
	c.Log("hello")
	assert.Equal(t, "12:30:45 hello\n", buf.String())
	assert.Equal(t, []string{"12:30:45 hello"}, c.History())
}

func TestHiddenBuffersUntilShow(t *testing.T) {
	c, buf := newTestConsole(Hidden())
	require.False(t, c.Shown())
	c.Log("one")
	c.Log("two")
	assert.Empty(t, buf.String())

	c.LogShow()
	out := buf.String()
	assert.Contains(t, out, "console")
	assert.Contains(t, out, "12:30:45 one")
	assert.Contains(t, out, "12:30:45 two")
	assert.Less(t, strings.Index(out, "one"), strings.Index(out, "two"))

	buf.Reset()
	c.LogShow()
	assert.Empty(t, buf.String(), "showing a visible console reprints history")
}

func TestLogHide(t *testing.T) {
	c, buf := newTestConsole()
	c.LogHide()
	c.Log("quiet")
	assert.Empty(t, buf.String())
	assert.Len(t, c.History(), 1)
}

func TestLogClear(t *testing.T) {
	c, _ := newTestConsole(Hidden())
	c.Log("a")
	c.LogClear()
	assert.Empty(t, c.History())
}

func TestHistoryBounded(t *testing.T) {
	c, _ := newTestConsole(WithHistory(2), Hidden())
	c.Log("a")
	c.Log("b")
	c.Log("c")
	h := c.History()
	require.Len(t, h, 2)
	assert.True(t, strings.HasSuffix(h[0], "b"))
	assert.True(t, strings.HasSuffix(h[1], "c"))
}

func TestWindowRequests(t *testing.T) {
	c, _ := newTestConsole()
	var size, pos [2]int
	c.setSize = func(w, h int) { size = [2]int{w, h} }
	c.setPosition = func(x, y int) { pos = [2]int{x, y} }

	ctx, err := frontend.NewContext(frontend.Options{
		Width:      100,
		Height:     100,
		GLState:    nopGL{},
		ShaderLang: okShader{},
		UI:         c,
	})
	require.NoError(t, err)

	ctx.SetWindowFrame(10, 20, 300, 200)
	assert.Equal(t, [2]int{300, 200}, size)
	assert.Equal(t, [2]int{10, 20}, pos)

	ctx.Log("from context")
	assert.True(t, strings.HasSuffix(c.History()[0], "from context"))
}

type nopGL struct{}

func (nopGL) Draw(*frontend.CanvasHandler) {}

type okShader struct{}

func (okShader) Init() error { return nil }
