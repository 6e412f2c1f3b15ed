package tui

import "github.com/csheth/quickbar/internal/overlay"

// pageLayout carves the window into the transcript pane, the bordered
// composer, and the status footer.
type pageLayout struct {
	windowWidth  int
	windowHeight int

	transcriptHeight int
	composerRows     int
}

const (
	composerChrome = 2 // top and bottom border
	footerRows     = 2 // status bar + info line
)

func (l *pageLayout) Update(width, height int) {
	if width < minWindowWidth {
		width = minWindowWidth
	}
	l.windowWidth = width
	l.windowHeight = height
	l.composerRows = 1
	transcript := height - l.composerRows - composerChrome - footerRows
	if transcript < 3 {
		transcript = 3
	}
	l.transcriptHeight = transcript
}

// composerRect is the bordered composer block, the anchor reference
// for every floating bar.
func (l *pageLayout) composerRect() overlay.Rect {
	if l.windowWidth == 0 {
		return overlay.Rect{}
	}
	return overlay.Rect{
		X: 0,
		Y: l.transcriptHeight,
		W: l.windowWidth,
		H: l.composerRows + composerChrome,
	}
}

func (l *pageLayout) innerWidth() int {
	w := l.windowWidth - 2
	if w < 10 {
		w = 10
	}
	return w
}
