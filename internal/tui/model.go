package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/quickbar/internal/compose"
	"github.com/csheth/quickbar/internal/enhance"
	"github.com/csheth/quickbar/internal/overlay"
	"github.com/csheth/quickbar/internal/settings"
	"github.com/csheth/quickbar/internal/toolbar"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Settings *settings.Store
	Bars     []toolbar.Bar
	BarWatch *toolbar.Watcher
	Client   *enhance.Client
	Model    string
	Persona  enhance.Persona
	Params   enhance.Params
	Context  int
	Stream   bool
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	transcript := &transcriptLog{}
	if config.Persona.Character != "" {
		transcript.Append(enhance.Turn{
			Author: config.Persona.Character,
			Text:   fmt.Sprintf("%s settles in across from you, waiting for your first message.", config.Persona.Character),
		})
	}

	m := &model{
		config:     config,
		composer:   compose.NewBuffer(),
		transcript: transcript,
		enhancer:   enhance.NewController(config.Client, transcript),
		spinner:    spin,
		jobs:       newJobBus(),
		infoMsg:    "Double-click a bar to unlock it, then drag it anywhere.",
	}
	m.composer.Focus()
	m.setBars(config.Bars)
	return m
}

type model struct {
	config Config

	composer   *compose.Buffer
	transcript *transcriptLog
	enhancer   *enhance.Controller
	spinner    spinner.Model
	jobs       *jobBus

	tracker overlay.Tracker
	drag    overlay.DragController
	taps    overlay.TapTracker
	bars    []*barState

	layout pageLayout

	sessionID   string
	sessionCh   <-chan enhance.Delta
	enhanceBase string

	helpVisible bool
	infoMsg     string
	errorMsg    string
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{pollTickCmd()}
	if m.config.BarWatch != nil {
		cmds = append(cmds, awaitBarsCmd(m.config.BarWatch))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.observeComposer()
		return m, nil
	case pollTickMsg:
		m.observeComposer()
		return m, pollTickCmd()
	case spinner.TickMsg:
		if m.enhancer.Generating() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case enhanceDeltaMsg:
		return m.handleEnhanceDelta(msg)
	case barsReloadedMsg:
		m.setBars(msg.bars)
		m.infoMsg = fmt.Sprintf("Reloaded %d bar(s) from disk.", len(msg.bars))
		return m, awaitBarsCmd(m.config.BarWatch)
	case copyResultMsg:
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.infoMsg = "Draft copied to clipboard."
			m.errorMsg = ""
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyCtrlC:
		m.flushSettings()
		return m, tea.Quit
	case tea.KeyEsc:
		if m.helpVisible {
			m.helpVisible = false
			m.observeComposer()
			return m, nil
		}
		if m.lockUnlockedBars() {
			m.infoMsg = "Bars locked."
			return m, nil
		}
		m.flushSettings()
		return m, tea.Quit
	case tea.KeyF1:
		m.helpVisible = !m.helpVisible
		m.observeComposer()
		return m, nil
	case tea.KeyEnter:
		return m, m.sendDraft()
	case tea.KeyCtrlE:
		return m, m.toggleEnhance()
	case tea.KeyCtrlN:
		return m, m.continueConversation()
	case tea.KeyCtrlU:
		m.undoEnhance()
		return m, nil
	case tea.KeyCtrlY:
		return m, m.copyDraft()
	case tea.KeyCtrlR:
		m.resetPlacements()
		return m, nil
	case tea.KeyCtrlA:
		m.composer.SelectAll()
		return m, nil
	case tea.KeyBackspace:
		m.composer.Backspace()
		return m, nil
	case tea.KeyLeft:
		m.composer.MoveCursor(-1, false)
		return m, nil
	case tea.KeyRight:
		m.composer.MoveCursor(1, false)
		return m, nil
	case tea.KeyShiftLeft:
		m.composer.MoveCursor(-1, true)
		return m, nil
	case tea.KeyShiftRight:
		m.composer.MoveCursor(1, true)
		return m, nil
	case tea.KeyHome:
		m.composer.CursorToStart()
		return m, nil
	case tea.KeyEnd:
		m.composer.CursorToEnd()
		return m, nil
	case tea.KeySpace:
		m.composer.InsertString(" ")
		return m, nil
	case tea.KeyRunes:
		m.composer.InsertRunes(key.Runes)
		return m, nil
	}
	return m, nil
}

func (m *model) sendDraft() tea.Cmd {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		m.infoMsg = "Type a message before sending."
		return nil
	}
	if m.enhancer.Generating() {
		m.infoMsg = "Wait for the enhance pass to finish or stop it with Ctrl+E."
		return nil
	}
	author := m.config.Persona.User
	if author == "" {
		author = "You"
	}
	m.transcript.Append(enhance.Turn{Author: author, Text: text, Own: true})
	m.composer.Clear()
	m.errorMsg = ""
	m.infoMsg = "Message sent."
	return nil
}

func (m *model) toggleEnhance() tea.Cmd {
	input := m.composer.Value()
	id, updates, err := m.enhancer.Toggle(context.Background(), input, m.sessionOptions(enhance.ModeRewrite))
	if err != nil {
		m.errorMsg = err.Error()
		return nil
	}
	if updates == nil {
		m.infoMsg = "Enhance stopped; partial text kept."
		return nil
	}
	m.sessionID = id
	m.sessionCh = updates
	m.enhanceBase = input
	m.errorMsg = ""
	m.infoMsg = "Enhancing draft…"
	return tea.Batch(m.spinner.Tick, awaitDeltaCmd(id, updates))
}

func (m *model) continueConversation() tea.Cmd {
	if m.enhancer.Generating() {
		m.infoMsg = "A generation is already running."
		return nil
	}
	id, updates, err := m.enhancer.Begin(context.Background(), "", m.sessionOptions(enhance.ModeContinue))
	if err != nil {
		m.errorMsg = err.Error()
		return nil
	}
	m.sessionID = id
	m.sessionCh = updates
	m.enhanceBase = m.composer.Value()
	m.errorMsg = ""
	m.infoMsg = "Drafting your next message…"
	return tea.Batch(m.spinner.Tick, awaitDeltaCmd(id, updates))
}

func (m *model) sessionOptions(mode enhance.Mode) enhance.Options {
	return enhance.Options{
		Model:        m.config.Model,
		Mode:         mode,
		Persona:      m.config.Persona,
		Params:       m.config.Params,
		ContextLimit: m.config.Context,
		Stream:       m.config.Stream,
	}
}

func (m *model) handleEnhanceDelta(msg enhanceDeltaMsg) (tea.Model, tea.Cmd) {
	// Deltas from an already-replaced session still drain their channel
	// but must not touch the composer.
	if msg.sessionID != m.sessionID {
		if msg.closed {
			return m, nil
		}
		return m, awaitDeltaCmd(msg.sessionID, msg.updates)
	}
	if msg.closed {
		m.sessionID = ""
		m.sessionCh = nil
		return m, nil
	}
	d := msg.delta
	switch {
	case d.Err != nil:
		m.enhancer.Finish(msg.sessionID)
		m.errorMsg = d.Err.Error()
		m.infoMsg = "Enhance failed; draft left as-is. Ctrl+U restores the original."
	case d.Canceled:
		m.enhancer.Finish(msg.sessionID)
		m.infoMsg = "Enhance stopped; partial text kept."
	case d.Done:
		m.enhancer.Finish(msg.sessionID)
		m.errorMsg = ""
		m.infoMsg = changeSummary(m.enhanceBase, m.composer.Value())
	case d.Replace:
		m.composer.SetValue(d.Text)
		m.composer.CursorToEnd()
	default:
		m.composer.Append(d.Text)
	}
	return m, awaitDeltaCmd(msg.sessionID, m.sessionCh)
}

func (m *model) undoEnhance() {
	if m.enhancer.Generating() {
		m.infoMsg = "Stop the enhance pass before undoing."
		return
	}
	original, ok := m.enhancer.Undo()
	if !ok {
		m.infoMsg = "Nothing to undo."
		return
	}
	m.composer.SetValue(original)
	m.composer.CursorToEnd()
	m.infoMsg = "Restored your original draft."
}

func (m *model) copyDraft() tea.Cmd {
	text := m.composer.Value()
	if strings.TrimSpace(text) == "" {
		m.infoMsg = "Nothing to copy."
		return nil
	}
	return m.jobs.Start(jobKindCopy, func(context.Context) (tea.Msg, error) {
		err := clipboard.WriteAll(text)
		return copyResultMsg{err: err}, err
	})
}

// setBars rebuilds runtime bar state after startup or a file reload,
// pulling each bar's stored placement from settings.
func (m *model) setBars(defs []toolbar.Bar) {
	states := make([]*barState, 0, len(defs))
	for i, def := range defs {
		p := m.loadPlacement(def.ID, defaultBarX(i, len(defs)))
		states = append(states, &barState{
			def:       def,
			placement: p,
			docked:    m.docked(def.ID),
			restZ:     p.Z,
		})
	}
	m.bars = states
	m.drag.Cancel()
}

// defaultBarX spreads bars across the composer so fresh installs do
// not stack them on one spot.
func defaultBarX(index, total int) float64 {
	if total <= 1 {
		return 0.5
	}
	span := 0.6 / float64(total-1)
	return 0.2 + span*float64(index)
}

func (m *model) loadPlacement(barID string, fallbackX float64) overlay.Placement {
	store := m.config.Settings
	def := overlay.DefaultPlacement(fallbackX)
	if store == nil {
		return def
	}
	p := overlay.Placement{
		X:     store.Float(settingKey(barID, "x"), def.X),
		Y:     store.Int(settingKey(barID, "y"), def.Y),
		Scale: store.Float(settingKey(barID, "scale"), def.Scale),
		Z:     store.Int(settingKey(barID, "z"), def.Z),
	}
	return p.Normalize()
}

func (m *model) docked(barID string) bool {
	if m.config.Settings == nil {
		return false
	}
	return m.config.Settings.Bool(settingKey(barID, "docked"), false)
}

func (m *model) persistPlacement(bs *barState) {
	store := m.config.Settings
	if store == nil {
		return
	}
	store.Set(settingKey(bs.def.ID, "x"), bs.placement.X)
	store.Set(settingKey(bs.def.ID, "y"), bs.placement.Y)
	store.Set(settingKey(bs.def.ID, "scale"), bs.placement.Scale)
	store.Set(settingKey(bs.def.ID, "z"), bs.restZ)
	store.Set(settingKey(bs.def.ID, "docked"), bs.docked)
}

func settingKey(barID, field string) string {
	return "bar." + barID + "." + field
}

func (m *model) flushSettings() {
	if m.config.Settings == nil {
		return
	}
	if err := m.config.Settings.Flush(); err != nil {
		m.errorMsg = fmt.Sprintf("settings save failed: %v", err)
	}
}

func (m *model) resetPlacements() {
	for i, bs := range m.bars {
		bs.placement = overlay.DefaultPlacement(defaultBarX(i, len(m.bars)))
		bs.restZ = bs.placement.Z
		bs.docked = false
		bs.edit.Lock()
		m.persistPlacement(bs)
	}
	m.drag.Cancel()
	m.infoMsg = "Bar positions reset."
}

func (m *model) lockUnlockedBars() bool {
	locked := false
	for _, bs := range m.bars {
		if bs.edit.Unlocked() {
			bs.edit.Lock()
			bs.placement.Z = bs.restZ
			m.persistPlacement(bs)
			locked = true
		}
	}
	if locked {
		m.drag.Cancel()
	}
	return locked
}

// observeComposer feeds the anchor tracker the composer's current
// rectangle. Bars disappear while the help overlay covers the screen.
func (m *model) observeComposer() {
	viewport := overlay.Rect{W: m.layout.windowWidth, H: m.layout.windowHeight}
	present := !m.helpVisible && m.layout.windowWidth > 0
	m.tracker.Observe(viewport, m.layout.composerRect(), present)
	if !present {
		m.drag.Cancel()
	}
}

func (m *model) barByID(id string) *barState {
	for _, bs := range m.bars {
		if bs.def.ID == id {
			return bs
		}
	}
	return nil
}

func pollTickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}
