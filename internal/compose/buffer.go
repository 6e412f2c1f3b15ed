package compose

// Buffer is the in-process Field implementation backing the TUI composer.
// Offsets are rune-based throughout.
type Buffer struct {
	value    []rune
	sel      Selection
	focused  bool
	onChange func()
}

// NewBuffer returns an empty, unfocused buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// OnChange registers the host's change observer. Only one observer is kept.
func (b *Buffer) OnChange(fn func()) { b.onChange = fn }

func (b *Buffer) Value() string { return string(b.value) }

func (b *Buffer) SetValue(v string) {
	b.value = []rune(v)
	b.sel = clampSelection(b.sel, len(b.value))
}

func (b *Buffer) Selection() Selection { return b.sel }

func (b *Buffer) SetSelection(s Selection) {
	b.sel = clampSelection(s, len(b.value))
}

func (b *Buffer) Focus()        { b.focused = true }
func (b *Buffer) Blur()         { b.focused = false }
func (b *Buffer) Focused() bool { return b.focused }

func (b *Buffer) Changed() {
	if b.onChange != nil {
		b.onChange()
	}
}

// Len returns the value length in runes.
func (b *Buffer) Len() int { return len(b.value) }

// InsertRunes replaces the current selection with the given text and leaves a
// caret after it.
func (b *Buffer) InsertRunes(rs []rune) {
	sel := clampSelection(b.sel, len(b.value))
	out := make([]rune, 0, len(b.value)-(sel.End-sel.Start)+len(rs))
	out = append(out, b.value[:sel.Start]...)
	out = append(out, rs...)
	out = append(out, b.value[sel.End:]...)
	b.value = out
	caret := sel.Start + len(rs)
	b.sel = Selection{Start: caret, End: caret}
	b.Changed()
}

// InsertString is InsertRunes for string input.
func (b *Buffer) InsertString(s string) { b.InsertRunes([]rune(s)) }

// Backspace deletes the selection, or the rune before the caret.
func (b *Buffer) Backspace() {
	sel := clampSelection(b.sel, len(b.value))
	if sel.Empty() {
		if sel.Start == 0 {
			return
		}
		sel.Start--
	}
	b.value = append(b.value[:sel.Start], b.value[sel.End:]...)
	b.sel = Selection{Start: sel.Start, End: sel.Start}
	b.Changed()
}

// MoveCursor shifts the caret by delta runes. With extend, the selection end
// moves while its anchor stays, growing or shrinking the selection.
func (b *Buffer) MoveCursor(delta int, extend bool) {
	sel := clampSelection(b.sel, len(b.value))
	if extend {
		sel.End += delta
		b.sel = clampExtended(sel, len(b.value))
		return
	}
	pos := sel.End + delta
	if !sel.Empty() {
		// Collapsing a selection lands on its edge, not past it.
		if delta < 0 {
			pos = sel.Start
		} else {
			pos = sel.End
		}
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.value) {
		pos = len(b.value)
	}
	b.sel = Selection{Start: pos, End: pos}
}

// CursorToEnd places a caret after the last rune.
func (b *Buffer) CursorToEnd() {
	n := len(b.value)
	b.sel = Selection{Start: n, End: n}
}

// CursorToStart places a caret before the first rune.
func (b *Buffer) CursorToStart() {
	b.sel = Selection{}
}

// SelectAll selects the whole value.
func (b *Buffer) SelectAll() {
	b.sel = Selection{Start: 0, End: len(b.value)}
}

// Append adds streamed text at the end of the value, scrolls the caret to the
// end, and notifies the host. Used by the enhance stream so each delta is a
// complete read-modify-write against the current value.
func (b *Buffer) Append(s string) {
	b.value = append(b.value, []rune(s)...)
	b.CursorToEnd()
	b.Changed()
}

// Clear empties the buffer and notifies the host.
func (b *Buffer) Clear() {
	b.value = nil
	b.sel = Selection{}
	b.Changed()
}

// clampExtended keeps an extending selection within bounds without letting
// Start and End swap silently (a crossed extension flips them).
func clampExtended(s Selection, n int) Selection {
	if s.End < 0 {
		s.End = 0
	}
	if s.End > n {
		s.End = n
	}
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	return s
}
