package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/quickbar/internal/overlay"
	"github.com/csheth/quickbar/internal/toolbar"
)

func (m *model) View() string {
	if m.layout.windowWidth == 0 {
		return "Starting quickbar…"
	}
	base := strings.Join([]string{
		m.transcriptView(),
		m.composerView(),
		m.statusView(),
	}, "\n")
	return m.spliceBars(base)
}

func (m *model) transcriptView() string {
	height := m.layout.transcriptHeight
	width := m.layout.innerWidth()

	var lines []string
	if m.helpVisible {
		lines = helpLines()
	} else {
		lines = m.transcriptLines(width)
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append([]string{""}, lines...)
	}
	return strings.Join(lines, "\n")
}

func (m *model) transcriptLines(width int) []string {
	if len(m.transcript.turns) == 0 {
		return []string{
			taglineStyle.Render(heroTagline),
			helperStyle.Render("Send a message with Enter. F1 shows every shortcut."),
		}
	}
	var lines []string
	wrap := width - transcriptIndent
	if wrap < 20 {
		wrap = 20
	}
	for _, turn := range m.transcript.turns {
		label := turn.Author
		if label == "" {
			label = "—"
		}
		style := partnerLabelStyle
		if turn.Own {
			style = ownLabelStyle
		}
		lines = append(lines, style.Render(label))
		body := wordwrap.String(turn.Text, wrap)
		for _, l := range strings.Split(body, "\n") {
			lines = append(lines, strings.Repeat(" ", transcriptIndent)+l)
		}
		lines = append(lines, "")
	}
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (m *model) composerView() string {
	width := m.layout.windowWidth
	inner := width - 2
	line := m.composerLine(inner)
	borderStyle := composerBorderStyle
	if m.enhancer.Generating() {
		borderStyle = composerBusyStyle
	}
	top := borderStyle.Render("╭" + strings.Repeat("─", inner) + "╮")
	mid := borderStyle.Render("│") + line + borderStyle.Render("│")
	bottom := borderStyle.Render("╰" + strings.Repeat("─", inner) + "╯")
	return top + "\n" + mid + "\n" + bottom
}

// composerLine renders the draft with selection and caret styling,
// horizontally scrolled so the caret stays in view.
func (m *model) composerLine(width int) string {
	value := []rune(m.composer.Value())
	sel := m.composer.Selection()
	caret := sel.End

	start := scrollStart(value, caret, width-1)
	var b strings.Builder
	cols := 0
	for i := start; i < len(value); i++ {
		r := value[i]
		rw := runewidth.RuneWidth(r)
		if rw <= 0 {
			rw = 1
		}
		if cols+rw > width-1 {
			break
		}
		cell := string(r)
		switch {
		case !sel.Empty() && i >= sel.Start && i < sel.End:
			cell = selectionStyle.Render(cell)
		case sel.Empty() && i == caret:
			cell = caretStyle.Render(cell)
		}
		b.WriteString(cell)
		cols += rw
	}
	if sel.Empty() && caret >= len(value) {
		b.WriteString(caretStyle.Render(" "))
		cols++
	}
	if cols < width {
		b.WriteString(strings.Repeat(" ", width-cols))
	}
	return b.String()
}

// scrollStart finds the first rune index to show so the caret fits in
// the given column budget.
func scrollStart(value []rune, caret, budget int) int {
	if budget <= 0 || caret <= 0 {
		return 0
	}
	cols := 0
	start := caret
	for start > 0 {
		rw := runewidth.RuneWidth(value[start-1])
		if rw <= 0 {
			rw = 1
		}
		if cols+rw > budget {
			break
		}
		cols += rw
		start--
	}
	return start
}

func (m *model) statusView() string {
	stats := []string{fmt.Sprintf("Model %s", m.config.Model)}
	if m.editing() {
		stats = append(stats, "EDIT")
	}
	switch {
	case m.enhancer.Generating():
		stats = append(stats, fmt.Sprintf("%s enhancing", m.spinner.View()))
	case m.enhancer.UndoArmed():
		stats = append(stats, "undo ready")
	}
	stats = append(stats, fmt.Sprintf("Bars %d", len(m.bars)))
	bar := statusBarStyle.Render(strings.Join(stats, "  •  "))

	note := m.infoMsg
	style := helperStyle
	if m.errorMsg != "" {
		note = m.errorMsg
		style = errorStyle
	}
	return bar + "\n" + style.Render(note)
}

func (m *model) editing() bool {
	for _, bs := range m.bars {
		if bs.edit.Unlocked() {
			return true
		}
	}
	return false
}

// spliceBars composites every visible bar over the base frame, lowest
// Z first so the dragged bar lands on top.
func (m *model) spliceBars(base string) string {
	ordered := append([]*barState(nil), m.bars...)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].placement.Z < ordered[i].placement.Z {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	out := base
	for _, bs := range ordered {
		lines, widgets, ctrls := renderBar(bs, m.enhancer.Generating(), m.enhancer.UndoArmed())
		w := 0
		for _, l := range lines {
			if lw := ansi.StringWidth(l); lw > w {
				w = lw
			}
		}
		pt, ok := m.tracker.Resolve(bs.placement, bs.docked, w, len(lines))
		bs.visible = ok
		if !ok {
			bs.rect = overlay.Rect{}
			continue
		}
		bs.rect = overlay.Rect{X: pt.X, Y: pt.Y, W: w, H: len(lines)}
		bs.widgetRects = offsetRects(widgets, pt)
		bs.ctrlRects = offsetRects(ctrls, pt)
		out = spliceLines(out, lines, pt.X, pt.Y)
	}
	return out
}

func offsetRects(rel map[string]overlay.Rect, pt overlay.Point) map[string]overlay.Rect {
	abs := make(map[string]overlay.Rect, len(rel))
	for id, r := range rel {
		abs[id] = overlay.Rect{X: r.X + pt.X, Y: r.Y + pt.Y, W: r.W, H: r.H}
	}
	return abs
}

// renderBar draws one bar and reports widget and control rectangles
// relative to the bar's top-left corner.
func renderBar(bs *barState, generating, undoArmed bool) ([]string, map[string]overlay.Rect, map[string]overlay.Rect) {
	pad := scalePad(bs.placement.Scale)
	edge := barGapStyle
	if bs.edit.Unlocked() {
		edge = barEditEdgeStyle
	}

	widgets := map[string]overlay.Rect{}
	var row strings.Builder
	row.WriteString(edge.Render(" "))
	x := 1
	for i, w := range bs.def.Widgets {
		glyph := w.Glyph
		style := buttonStyle
		if w.Action == toolbar.ActionEnhance && generating {
			glyph = "■"
			style = buttonActiveStyle
		}
		if w.Action == toolbar.ActionUndo && undoArmed {
			style = buttonArmedStyle
		}
		label := strings.Repeat(" ", pad) + glyph + strings.Repeat(" ", pad)
		lw := runewidth.StringWidth(label)
		row.WriteString(style.Render(label))
		widgets[w.ID] = overlay.Rect{X: x, Y: 0, W: lw, H: 1}
		x += lw
		if i < len(bs.def.Widgets)-1 {
			row.WriteString(edge.Render(" "))
			x++
		}
	}
	row.WriteString(edge.Render(" "))
	x++

	lines := []string{row.String()}
	ctrls := map[string]overlay.Rect{}
	if bs.edit.Unlocked() {
		ctrl, rects := renderControls(bs, x)
		lines = append(lines, ctrl)
		ctrls = rects
	}
	return lines, widgets, ctrls
}

// renderControls draws the edit-mode row, padded to the bar's width.
func renderControls(bs *barState, barWidth int) (string, map[string]overlay.Rect) {
	dockLabel := "DOCK"
	if bs.docked {
		dockLabel = "FLOAT"
	}
	segments := []struct {
		name  string
		label string
	}{
		{ctrlZoomOut, "−"},
		{ctrlZoomIn, "+"},
		{ctrlDock, dockLabel},
		{ctrlSave, "SAVE"},
	}
	rects := map[string]overlay.Rect{}
	var row strings.Builder
	row.WriteString(barEditEdgeStyle.Render(" "))
	x := 1
	for i, seg := range segments {
		lw := runewidth.StringWidth(seg.label)
		row.WriteString(controlStyle.Render(seg.label))
		rects[seg.name] = overlay.Rect{X: x, Y: 1, W: lw, H: 1}
		x += lw
		if i < len(segments)-1 {
			row.WriteString(barEditEdgeStyle.Render(" "))
			x++
		}
	}
	if x < barWidth-1 {
		row.WriteString(barEditEdgeStyle.Render(strings.Repeat(" ", barWidth-1-x)))
		x = barWidth - 1
	}
	row.WriteString(barEditEdgeStyle.Render(" "))
	return row.String(), rects
}

// scalePad maps the stored scale to horizontal button padding in
// cells: 0.5 is the tightest fit, 2.0 the widest.
func scalePad(scale float64) int {
	pad := int(math.Round(scale*2)) - 1
	if pad < 0 {
		pad = 0
	}
	return pad
}

// spliceLines overlays the given lines onto the base frame at (x, y),
// preserving ANSI styling on both sides of the cut.
func spliceLines(base string, lines []string, x, y int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range lines {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		baseLines[row] = spliceLine(baseLines[row], line, x)
	}
	return strings.Join(baseLines, "\n")
}

func spliceLine(base, over string, x int) string {
	if x < 0 {
		x = 0
	}
	w := ansi.StringWidth(over)
	left := ansi.Truncate(base, x, "")
	if lw := ansi.StringWidth(left); lw < x {
		left += strings.Repeat(" ", x-lw)
	}
	right := ansi.TruncateLeft(base, x+w, "")
	return left + over + right
}

func helpLines() []string {
	return []string{
		sectionHeaderStyle.Render("Quickbar Shortcuts"),
		helperStyle.Render("Enter        send the draft to the conversation"),
		helperStyle.Render("Ctrl+E       enhance the draft (press again to stop)"),
		helperStyle.Render("Ctrl+N       draft your next message from context"),
		helperStyle.Render("Ctrl+U       restore the draft from before the last enhance"),
		helperStyle.Render("Ctrl+Y       copy the draft to the clipboard"),
		helperStyle.Render("Ctrl+R       reset every bar to its default spot"),
		helperStyle.Render("Double-click a bar to unlock it; drag to move; − / + resize;"),
		helperStyle.Render("DOCK pins it above the composer; SAVE locks it in place."),
		helperStyle.Render("Esc locks unlocked bars, or quits. F1 closes this help."),
	}
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	taglineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347")).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)

	ownLabelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	partnerLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))

	composerBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#56526e"))
	composerBusyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166"))
	selectionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))
	caretStyle          = lipgloss.NewStyle().Reverse(true)

	buttonStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166"))
	buttonActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fff4d0")).Background(lipgloss.Color("#d62828"))
	buttonArmedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#a3be8c"))
	controlStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ff8c00"))
	barGapStyle       = lipgloss.NewStyle().Background(lipgloss.Color("#2b1400"))
	barEditEdgeStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#7f5af0"))
)
