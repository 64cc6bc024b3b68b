// Package console is a terminal UI shell for a frontend.Context. Log output
// is styled with lipgloss and kept in a bounded history so a hidden console
// can be shown again with its backlog.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hajimehoshi/ebiten/v2"
)

const defaultHistory = 200

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorSubtext lipgloss.Color = "#6c7086"
	colorBorder  lipgloss.Color = "#585b70"
	colorError   lipgloss.Color = "#f38ba8"
	colorAccent  lipgloss.Color = "#89b4fa"
)

type styles struct {
	stamp lipgloss.Style
	text  lipgloss.Style
	err   lipgloss.Style
	title lipgloss.Style
	box   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		stamp: r.NewStyle().Foreground(colorSubtext),
		text:  r.NewStyle().Foreground(colorText),
		err:   r.NewStyle().Foreground(colorError).Bold(true),
		title: r.NewStyle().Foreground(colorAccent).Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
	}
}

// Console implements frontend.UIInterface and frontend.WindowSizer.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	styles  styles
	history []string
	max     int
	shown   bool
	now     func() time.Time

	setSize     func(width, height int)
	setPosition func(x, y int)
}

// Option configures a Console.
type Option func(*Console)

// WithHistory bounds the number of lines kept for LogShow. Non-positive
// values keep the default.
func WithHistory(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.max = n
		}
	}
}

// Hidden starts the console hidden; lines are only buffered until LogShow.
func Hidden() Option {
	return func(c *Console) { c.shown = false }
}

// New returns a visible console writing to out. Window requests go to the
// ebiten window.
func New(out io.Writer, opts ...Option) *Console {
	c := &Console{
		out:         out,
		styles:      newStyles(lipgloss.NewRenderer(out)),
		max:         defaultHistory,
		shown:       true,
		now:         time.Now,
		setSize:     ebiten.SetWindowSize,
		setPosition: ebiten.SetWindowPosition,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Log records msg and prints it when the console is shown. Messages starting
// with "Error" are highlighted.
func (c *Console) Log(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := c.format(msg)
	c.history = append(c.history, line)
	if over := len(c.history) - c.max; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
	if c.shown {
		fmt.Fprintln(c.out, line)
	}
}

// LogClear drops the history.
func (c *Console) LogClear() {
	c.mu.Lock()
	c.history = c.history[:0]
	c.mu.Unlock()
}

// LogShow makes the console visible and prints the history in a box.
func (c *Console) LogShow() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shown {
		return
	}
	c.shown = true
	body := c.styles.title.Render("console")
	if len(c.history) > 0 {
		body += "\n" + strings.Join(c.history, "\n")
	}
	fmt.Fprintln(c.out, c.styles.box.Render(body))
}

// LogHide stops printing. Lines keep being recorded.
func (c *Console) LogHide() {
	c.mu.Lock()
	c.shown = false
	c.mu.Unlock()
}

// Shown reports whether the console prints new lines.
func (c *Console) Shown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shown
}

// History returns the recorded lines, oldest first.
func (c *Console) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

// SetWindowSize resizes the native window.
func (c *Console) SetWindowSize(width, height int) {
	c.setSize(width, height)
}

// SetWindowPosition moves the native window.
func (c *Console) SetWindowPosition(x, y int) {
	c.setPosition(x, y)
}

func (c *Console) format(msg string) string {
	stamp := c.styles.stamp.Render(c.now().Format("15:04:05"))
	style := c.styles.text
	if strings.HasPrefix(msg, "Error") {
		style = c.styles.err
	}
	return stamp + " " + style.Render(msg)
}
