package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/quickbar/internal/compose"
	"github.com/csheth/quickbar/internal/enhance"
	"github.com/csheth/quickbar/internal/overlay"
	"github.com/csheth/quickbar/internal/settings"
	"github.com/csheth/quickbar/internal/toolbar"
)

func newTestModel(t *testing.T) *model {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	if err != nil {
		t.Fatalf("settings open failed: %v", err)
	}
	m := New(Config{
		Settings: store,
		Bars:     toolbar.Defaults(),
		Client:   enhance.NewClient("http://localhost:1", "test-key"),
		Model:    "test-model",
		Persona:  enhance.Persona{User: "Sam", Character: "Iris"},
	}).(*model)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.View()
	return m
}

func press(m *model, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Type: tea.MouseLeft})
	m.View()
}

func TestTypingEditsComposer(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	if got := m.composer.Value(); got != "hello" {
		t.Fatalf("unexpected composer value: %q", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.composer.Value(); got != "hell" {
		t.Fatalf("backspace failed: %q", got)
	}
}

func TestEnterSendsDraftToTranscript(t *testing.T) {
	m := newTestModel(t)
	before := len(m.transcript.turns)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a message")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.transcript.turns) != before+1 {
		t.Fatalf("expected one new turn, got %d", len(m.transcript.turns)-before)
	}
	last := m.transcript.turns[len(m.transcript.turns)-1]
	if !last.Own || last.Text != "a message" {
		t.Fatalf("unexpected turn: %+v", last)
	}
	if m.composer.Value() != "" {
		t.Fatalf("composer not cleared: %q", m.composer.Value())
	}
}

func TestWidgetClickWrapsSelection(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("hello world")
	m.composer.SetSelection(compose.Selection{Start: 6, End: 11})
	m.View()

	bs := m.barByID("format")
	if bs == nil || !bs.visible {
		t.Fatal("format bar should be visible")
	}
	r, ok := bs.widgetRects["italic"]
	if !ok {
		t.Fatal("italic widget rect missing")
	}
	press(m, r.X, r.Y)

	if got := m.composer.Value(); got != "hello *world*" {
		t.Fatalf("unexpected value after wrap: %q", got)
	}
	sel := m.composer.Selection()
	if sel.Start != 7 || sel.End != 12 {
		t.Fatalf("selection not re-applied to wrapped text: %+v", sel)
	}
}

func TestDoubleClickUnlocksBar(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	r := bs.widgetRects["quote"]

	press(m, r.X, r.Y)
	if bs.edit.Unlocked() {
		t.Fatal("single click must not unlock the bar")
	}
	press(m, r.X, r.Y)
	if !bs.edit.Unlocked() {
		t.Fatal("double click should unlock the bar")
	}
	if len(bs.ctrlRects) == 0 {
		t.Fatal("unlocked bar should render its control row")
	}
}

func TestDragCommitsAndPersistsPlacement(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	r := bs.widgetRects["quote"]
	press(m, r.X, r.Y)
	press(m, r.X, r.Y)
	if !bs.edit.Unlocked() {
		t.Fatal("setup: bar should be unlocked")
	}

	start := bs.widgetRects["quote"]
	baseX := bs.placement.X
	baseY := bs.placement.Y
	m.Update(tea.MouseMsg{X: start.X, Y: start.Y, Type: tea.MouseLeft})
	m.Update(tea.MouseMsg{X: start.X + 20, Y: start.Y - 3, Type: tea.MouseLeft})
	m.Update(tea.MouseMsg{X: start.X + 20, Y: start.Y - 3, Type: tea.MouseRelease})

	wantX := overlay.ClampX(baseX + 20.0/100.0)
	if bs.placement.X != wantX {
		t.Fatalf("expected X %v after drag, got %v", wantX, bs.placement.X)
	}
	if bs.placement.Y != baseY+3 {
		t.Fatalf("expected Y %d after upward drag, got %d", baseY+3, bs.placement.Y)
	}
	if got := m.config.Settings.Float("bar.format.x", -1); got != wantX {
		t.Fatalf("placement not persisted: %v", got)
	}
}

func TestHeldMotionMovesBarBeforeRelease(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	r := bs.widgetRects["quote"]
	press(m, r.X, r.Y)
	press(m, r.X, r.Y)

	start := bs.widgetRects["quote"]
	baseX := bs.placement.X
	m.Update(tea.MouseMsg{X: start.X, Y: start.Y, Type: tea.MouseLeft})
	m.Update(tea.MouseMsg{X: start.X + 20, Y: start.Y, Type: tea.MouseLeft})

	wantX := overlay.ClampX(baseX + 20.0/100.0)
	if bs.placement.X != wantX {
		t.Fatalf("bar should track held-button motion live: want X %v, got %v", wantX, bs.placement.X)
	}
	if !m.drag.Dragging() {
		t.Fatal("drag session should still be live before release")
	}
}

func TestHeldMotionOverControlDoesNotActivateIt(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	r := bs.widgetRects["quote"]
	press(m, r.X, r.Y)
	press(m, r.X, r.Y)

	zoomIn, ok := bs.ctrlRects[ctrlZoomIn]
	if !ok {
		t.Fatal("zoom-in control rect missing")
	}
	start := bs.widgetRects["quote"]
	m.Update(tea.MouseMsg{X: start.X, Y: start.Y, Type: tea.MouseLeft})
	m.Update(tea.MouseMsg{X: zoomIn.X, Y: zoomIn.Y, Type: tea.MouseLeft})
	if bs.placement.Scale != 1.0 {
		t.Fatalf("dragging across the zoom control mutated scale: %v", bs.placement.Scale)
	}
	m.Update(tea.MouseMsg{X: zoomIn.X, Y: zoomIn.Y, Type: tea.MouseRelease})
	if bs.placement.Scale != 1.0 {
		t.Fatalf("releasing over the zoom control mutated scale: %v", bs.placement.Scale)
	}
}

func TestZoomAndSaveControls(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	r := bs.widgetRects["quote"]
	press(m, r.X, r.Y)
	press(m, r.X, r.Y)

	zoomIn, ok := bs.ctrlRects[ctrlZoomIn]
	if !ok {
		t.Fatal("zoom-in control rect missing")
	}
	press(m, zoomIn.X, zoomIn.Y)
	if bs.placement.Scale != 1.1 {
		t.Fatalf("expected scale 1.1, got %v", bs.placement.Scale)
	}

	save, ok := bs.ctrlRects[ctrlSave]
	if !ok {
		t.Fatal("save control rect missing")
	}
	press(m, save.X, save.Y)
	if bs.edit.Unlocked() {
		t.Fatal("save should lock the bar")
	}
	if got := m.config.Settings.Float("bar.format.scale", -1); got != 1.1 {
		t.Fatalf("scale not persisted: %v", got)
	}
}

func TestEnhanceDeltasDriveComposer(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("rough draft")
	m.enhanceBase = "rough draft"
	m.sessionID = "session-1"
	ch := make(chan enhance.Delta, 4)
	m.sessionCh = ch

	m.Update(enhanceDeltaMsg{sessionID: "session-1", delta: enhance.Delta{Text: "Polished", Replace: true}})
	if got := m.composer.Value(); got != "Polished" {
		t.Fatalf("replace delta failed: %q", got)
	}
	m.Update(enhanceDeltaMsg{sessionID: "session-1", delta: enhance.Delta{Text: " draft."}})
	if got := m.composer.Value(); got != "Polished draft." {
		t.Fatalf("append delta failed: %q", got)
	}
	m.Update(enhanceDeltaMsg{sessionID: "session-1", delta: enhance.Delta{Done: true}})
	if m.errorMsg != "" {
		t.Fatalf("unexpected error after done: %q", m.errorMsg)
	}
}

func TestStaleSessionDeltasIgnoredButDrained(t *testing.T) {
	m := newTestModel(t)
	m.composer.SetValue("current text")
	m.sessionID = "session-2"

	stale := make(chan enhance.Delta, 1)
	_, cmd := m.Update(enhanceDeltaMsg{sessionID: "old-session", updates: stale, delta: enhance.Delta{Text: "stale", Replace: true}})
	if got := m.composer.Value(); got != "current text" {
		t.Fatalf("stale delta mutated the composer: %q", got)
	}
	if cmd == nil {
		t.Fatal("stale delta must re-arm draining of its channel")
	}
	close(stale)
	msg, ok := cmd().(enhanceDeltaMsg)
	if !ok || !msg.closed || msg.sessionID != "old-session" {
		t.Fatalf("drain command should report the stale channel's close: %+v", msg)
	}
	_, cmd = m.Update(msg)
	if cmd != nil {
		t.Fatal("a closed stale channel needs no further draining")
	}
}

func TestEscLocksBarsBeforeQuitting(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	r := bs.widgetRects["quote"]
	press(m, r.X, r.Y)
	press(m, r.X, r.Y)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil {
		t.Fatal("first Esc should lock bars, not quit")
	}
	if bs.edit.Unlocked() {
		t.Fatal("Esc should have locked the bar")
	}
}

func TestResetRestoresDefaultPlacements(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	bs.placement.X = 0.9
	bs.placement.Y = 7

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	want := overlay.DefaultPlacement(defaultBarX(0, len(m.bars)))
	if bs.placement.X != want.X || bs.placement.Y != want.Y {
		t.Fatalf("reset failed: %+v", bs.placement)
	}
}

func TestStackingOrderPersistsAcrossLoads(t *testing.T) {
	m := newTestModel(t)
	m.config.Settings.Set("bar.assist.z", 2000)
	m.setBars(toolbar.Defaults())

	bs := m.barByID("assist")
	if bs.placement.Z != 2000 {
		t.Fatalf("stored stacking order not loaded: %d", bs.placement.Z)
	}

	// An unlock elevates the bar; locking drops it back to the stored
	// order and persists it.
	bs.edit.Unlock()
	bs.placement.Z = overlay.ZTop
	m.lockUnlockedBars()
	if bs.placement.Z != 2000 {
		t.Fatalf("lock should restore the stored order, got %d", bs.placement.Z)
	}
	if got := m.config.Settings.Int("bar.assist.z", -1); got != 2000 {
		t.Fatalf("stacking order not persisted: %d", got)
	}
}

func TestBarsHiddenWhileHelpOpen(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	m.View()
	for _, bs := range m.bars {
		if bs.visible {
			t.Fatalf("bar %q should hide behind the help overlay", bs.def.ID)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	m.View()
	if !m.barByID("format").visible {
		t.Fatal("bars should return when help closes")
	}
}

func TestDoubleTapWindowExpires(t *testing.T) {
	m := newTestModel(t)
	bs := m.barByID("format")
	r := bs.widgetRects["quote"]
	press(m, r.X, r.Y)
	m.taps = overlay.TapTracker{}
	time.Sleep(time.Millisecond)
	press(m, r.X, r.Y)
	if bs.edit.Unlocked() {
		t.Fatal("taps separated by a tracker reset must not unlock")
	}
}

func TestSpliceLineOverlaysAtColumn(t *testing.T) {
	got := spliceLine("abcdefghij", "XX", 3)
	if got != "abcXXfghij" {
		t.Fatalf("unexpected splice: %q", got)
	}
	short := spliceLine("ab", "XX", 5)
	if short != "ab   XX" {
		t.Fatalf("expected padding before overlay, got %q", short)
	}
}

func TestChangeSummaryCounts(t *testing.T) {
	got := changeSummary("abc", "abXc")
	if got != "Enhanced draft: +1/-0 characters. Ctrl+U restores the original." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if changeSummary("same", "same") != "Enhance finished with no changes." {
		t.Fatal("no-op diff should report no changes")
	}
}

func TestScalePadSteps(t *testing.T) {
	cases := map[float64]int{0.5: 0, 1.0: 1, 1.5: 2, 2.0: 3}
	for scale, want := range cases {
		if got := scalePad(scale); got != want {
			t.Fatalf("scale %v: expected pad %d, got %d", scale, want, got)
		}
	}
}
