package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/csheth/quickbar/internal/enhance"
	"github.com/csheth/quickbar/internal/toolbar"
)

// awaitDeltaCmd delivers the next streaming delta for a session. The
// session ID rides along so deltas from a replaced session are dropped
// instead of touching the composer.
func awaitDeltaCmd(sessionID string, updates <-chan enhance.Delta) tea.Cmd {
	return func() tea.Msg {
		delta, ok := <-updates
		if !ok {
			return enhanceDeltaMsg{sessionID: sessionID, updates: updates, closed: true}
		}
		return enhanceDeltaMsg{sessionID: sessionID, updates: updates, delta: delta}
	}
}

func awaitBarsCmd(watcher *toolbar.Watcher) tea.Cmd {
	if watcher == nil {
		return nil
	}
	return func() tea.Msg {
		bars, ok := <-watcher.Updates()
		if !ok {
			return nil
		}
		return barsReloadedMsg{bars: bars}
	}
}

// changeSummary describes what an enhance pass changed, in characters
// added and removed.
func changeSummary(before, after string) string {
	if before == after {
		return "Enhance finished with no changes."
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	added, removed := 0, 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			removed += len([]rune(d.Text))
		}
	}
	return fmt.Sprintf("Enhanced draft: +%d/-%d characters. Ctrl+U restores the original.", added, removed)
}
