package tui

import (
	"time"

	"github.com/csheth/quickbar/internal/enhance"
	"github.com/csheth/quickbar/internal/overlay"
	"github.com/csheth/quickbar/internal/toolbar"
)

// pollInterval drives anchor re-observation so bars follow the composer
// when the layout changes between input events.
const pollInterval = 500 * time.Millisecond

const (
	minWindowWidth   = 40
	transcriptIndent = 2
)

const heroTagline = "Float your formatting toolkit over any draft."

// barState is the runtime side of a bar definition: its stored
// placement plus the rectangles from the last render, used for mouse
// hit testing on the next event.
type barState struct {
	def       toolbar.Bar
	placement overlay.Placement
	docked    bool
	edit      overlay.EditMode
	// restZ is the stored stacking order the bar returns to when edit
	// mode ends; placement.Z holds the transient elevated value.
	restZ int

	rect        overlay.Rect
	widgetRects map[string]overlay.Rect
	ctrlRects   map[string]overlay.Rect
	visible     bool
}

// Control names for the edit-mode row. They hit-test separately from
// widgets so taps on them never start a drag.
const (
	ctrlZoomOut = "zoom-out"
	ctrlZoomIn  = "zoom-in"
	ctrlDock    = "dock"
	ctrlSave    = "save"
)

// transcriptLog holds the conversation and doubles as the history
// provider for enhance prompts.
type transcriptLog struct {
	turns []enhance.Turn
}

func (t *transcriptLog) Append(turn enhance.Turn) {
	t.turns = append(t.turns, turn)
}

func (t *transcriptLog) RecentTurns(limit int) []enhance.Turn {
	if limit <= 0 || len(t.turns) == 0 {
		return nil
	}
	if limit >= len(t.turns) {
		return t.turns
	}
	return t.turns[len(t.turns)-limit:]
}

type pollTickMsg time.Time

type enhanceDeltaMsg struct {
	sessionID string
	// updates is the channel the delta came from, so a session that was
	// replaced mid-stream can still be drained to its close.
	updates <-chan enhance.Delta
	delta   enhance.Delta
	closed  bool
}

type barsReloadedMsg struct {
	bars []toolbar.Bar
}

type copyResultMsg struct {
	err error
}
