package frontend

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	// TPS sets ebiten's ticks per second. Zero keeps ebiten's default.
	TPS int
	// Runner, when set, is stepped every tick and the window closes once it
	// is done.
	Runner *TestRunner
}

// errRunnerDone ends the ebiten loop after a scripted run.
var errRunnerDone = errors.New("frontend: test script done")

// Run opens a window and drives c from ebiten's game loop: input is polled in
// Update, the frame runs in Draw with the screen as the EbitenState target,
// and window size changes are reported through Layout. Run blocks until the
// window is closed.
func Run(c *Context, state *EbitenState, cfg RunConfig) error {
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	c.SetGLState(state)

	err := ebiten.RunGame(&gameShell{ctx: c, state: state, runner: cfg.Runner})
	if errors.Is(err, errRunnerDone) {
		return nil
	}
	return err
}

// gameShell adapts a Context to ebiten.Game.
type gameShell struct {
	ctx    *Context
	state  *EbitenState
	runner *TestRunner
	pix    []byte
	w, h   int
}

func (g *gameShell) Update() error {
	if g.runner != nil {
		if g.runner.Done() {
			return errRunnerDone
		}
		g.runner.Step(g.ctx)
	}
	g.ctx.InputHandler().PollEbiten()
	return nil
}

func (g *gameShell) Draw(screen *ebiten.Image) {
	g.state.SetTarget(screen)
	g.ctx.Frame(true)
	if g.ctx.WantsPixels() {
		g.pix = readTarget(g.state, g.pix)
		b := screen.Bounds()
		g.ctx.Rendered(g.pix, b.Dx(), b.Dy())
	}
	g.ctx.PostDraw()
}

func (g *gameShell) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.ctx.SizeChanged(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// readTarget reads the state's target pixels into buf, growing it as needed.
func readTarget(state *EbitenState, buf []byte) []byte {
	b := state.Target().Bounds()
	n := 4 * b.Dx() * b.Dy()
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	state.Target().ReadPixels(buf)
	return buf
}
