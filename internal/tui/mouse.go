package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/quickbar/internal/compose"
	"github.com/csheth/quickbar/internal/overlay"
	"github.com/csheth/quickbar/internal/toolbar"
)

func (m *model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	ptr := overlay.Pointer{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case tea.MouseLeft:
		// X10 encoding reports held-button motion with the same event type
		// as the press, so a live drag claims every MouseLeft until release.
		// Without this, motion would re-enter the press path and trigger
		// whatever control the pointer crosses mid-drag.
		if m.drag.Dragging() {
			return m.handleMotion(ptr)
		}
		return m.handlePress(ptr)
	case tea.MouseMotion:
		return m.handleMotion(ptr)
	case tea.MouseRelease:
		return m.handleRelease(ptr)
	}
	return m, nil
}

func (m *model) handlePress(ptr overlay.Pointer) (tea.Model, tea.Cmd) {
	bs := m.barAt(ptr)
	if bs == nil {
		return m, nil
	}
	if bs.edit.Unlocked() {
		if name, ok := controlAt(bs, ptr); ok {
			m.activateControl(bs, name)
			return m, nil
		}
		// Anywhere else on an unlocked bar grabs it.
		if m.drag.Start(bs.def.ID, ptr, bs.placement) {
			bs.placement.Z = overlay.ZTop
		}
		return m, nil
	}
	if m.taps.Tap(bs.def.ID, time.Now()) {
		bs.edit.Unlock()
		bs.placement.Z = overlay.ZTop
		m.infoMsg = fmt.Sprintf("Bar %q unlocked. Drag to move, SAVE to lock.", bs.def.ID)
		return m, nil
	}
	if w, ok := widgetAt(bs, ptr); ok {
		return m, m.activateWidget(w)
	}
	return m, nil
}

func (m *model) handleMotion(ptr overlay.Pointer) (tea.Model, tea.Cmd) {
	if !m.drag.Dragging() {
		return m, nil
	}
	p, ok := m.drag.Move(ptr, m.layout.windowWidth)
	if !ok {
		return m, nil
	}
	if id, ok := m.drag.Widget(); ok {
		if bs := m.barByID(id); bs != nil {
			p.Z = overlay.ZTop
			bs.placement = p
		}
	}
	return m, nil
}

func (m *model) handleRelease(ptr overlay.Pointer) (tea.Model, tea.Cmd) {
	id, p, ok := m.drag.Release(ptr, m.layout.windowWidth)
	if !ok {
		return m, nil
	}
	if bs := m.barByID(id); bs != nil {
		// The bar is still unlocked after the drop, so it keeps top stacking
		// until SAVE or Esc locks it.
		p.Z = overlay.ZTop
		bs.placement = p
		m.persistPlacement(bs)
		m.infoMsg = fmt.Sprintf("Bar %q moved.", id)
	}
	return m, nil
}

func (m *model) activateControl(bs *barState, name string) {
	switch name {
	case ctrlZoomOut:
		bs.placement = bs.placement.Zoom(-overlay.ScaleStep)
		m.infoMsg = fmt.Sprintf("Scale %.1f", bs.placement.Scale)
	case ctrlZoomIn:
		bs.placement = bs.placement.Zoom(overlay.ScaleStep)
		m.infoMsg = fmt.Sprintf("Scale %.1f", bs.placement.Scale)
	case ctrlDock:
		bs.docked = !bs.docked
		if bs.docked {
			m.infoMsg = fmt.Sprintf("Bar %q docked above the composer.", bs.def.ID)
		} else {
			m.infoMsg = fmt.Sprintf("Bar %q floating again.", bs.def.ID)
		}
	case ctrlSave:
		bs.edit.Lock()
		bs.placement.Z = bs.restZ
		m.drag.Cancel()
		m.infoMsg = fmt.Sprintf("Bar %q locked.", bs.def.ID)
	}
	m.persistPlacement(bs)
}

func (m *model) activateWidget(w toolbar.Widget) tea.Cmd {
	switch w.Action {
	case toolbar.ActionEnhance:
		return m.toggleEnhance()
	case toolbar.ActionUndo:
		m.undoEnhance()
		return nil
	case toolbar.ActionCopy:
		return m.copyDraft()
	case toolbar.ActionReset:
		m.resetPlacements()
		return nil
	default:
		compose.WrapSelection(m.composer, w.Prefix, w.Suffix)
		if w.Tooltip != "" {
			m.infoMsg = w.Tooltip
		}
		return nil
	}
}

// barAt returns the topmost visible bar under the pointer. The bar
// being dragged wins ties since it renders above the rest.
func (m *model) barAt(ptr overlay.Pointer) *barState {
	var hit *barState
	for _, bs := range m.bars {
		if !bs.visible || !contains(bs.rect, ptr) {
			continue
		}
		if hit == nil || bs.placement.Z >= hit.placement.Z {
			hit = bs
		}
	}
	return hit
}

func widgetAt(bs *barState, ptr overlay.Pointer) (toolbar.Widget, bool) {
	for _, w := range bs.def.Widgets {
		if r, ok := bs.widgetRects[w.ID]; ok && contains(r, ptr) {
			return w, true
		}
	}
	return toolbar.Widget{}, false
}

func controlAt(bs *barState, ptr overlay.Pointer) (string, bool) {
	for name, r := range bs.ctrlRects {
		if contains(r, ptr) {
			return name, true
		}
	}
	return "", false
}

func contains(r overlay.Rect, ptr overlay.Pointer) bool {
	return ptr.X >= r.X && ptr.X < r.X+r.W && ptr.Y >= r.Y && ptr.Y < r.Y+r.H
}
