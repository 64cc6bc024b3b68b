package frontend

// UIInterface is the window shell the Context reports to. Log calls are
// forwarded verbatim; the Context does no buffering or filtering.
type UIInterface interface {
	Log(msg string)
	LogClear()
	LogShow()
	LogHide()
}

// WindowSizer is implemented by shells that can resize or move the native
// window. SetWindowSize and SetWindowFrame use it when available.
type WindowSizer interface {
	SetWindowSize(width, height int)
	SetWindowPosition(x, y int)
}

type nopUI struct{}

func (nopUI) Log(string) {}
func (nopUI) LogClear()  {}
func (nopUI) LogShow()   {}
func (nopUI) LogHide()   {}
