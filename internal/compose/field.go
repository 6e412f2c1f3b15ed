// Package compose models the composer input the toolbar operates on: a text
// value with a rune-offset selection, focus control, and the change
// notification the host UI observes after programmatic edits.
package compose

// Selection is a rune-offset range within the field value. Start == End is a
// plain caret.
type Selection struct {
	Start int
	End   int
}

// Empty reports whether the selection is a caret.
func (s Selection) Empty() bool { return s.Start == s.End }

// Field is the write surface shared by the insertion buttons, the enhance
// stream, and the host itself. Every mutation must be a read-modify-write
// against the current value; the host owns the element and may edit it
// between calls.
type Field interface {
	Value() string
	SetValue(string)
	Selection() Selection
	SetSelection(Selection)
	Focus()
	// Changed fires the host-observable change notification. Every mutation
	// path must call it or the host misses the edit.
	Changed()
}

// WrapSelection surrounds the field's current selection with the prefix and
// suffix pair. An empty selection leaves a caret immediately after the
// prefix; a non-empty one re-selects exactly the original substring between
// the inserted markers. A nil field is a silent no-op: the composer not
// existing yet is a normal transient state.
func WrapSelection(f Field, prefix, suffix string) {
	if f == nil {
		return
	}
	value := []rune(f.Value())
	sel := clampSelection(f.Selection(), len(value))
	pre := []rune(prefix)
	selected := value[sel.Start:sel.End]

	var out []rune
	out = append(out, value[:sel.Start]...)
	out = append(out, pre...)
	out = append(out, selected...)
	out = append(out, []rune(suffix)...)
	out = append(out, value[sel.End:]...)
	f.SetValue(string(out))

	caret := sel.Start + len(pre)
	if sel.Empty() {
		f.SetSelection(Selection{Start: caret, End: caret})
	} else {
		f.SetSelection(Selection{Start: caret, End: caret + len(selected)})
	}
	f.Focus()
	f.Changed()
}

func clampSelection(s Selection, n int) Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	if s.Start < 0 {
		s.Start = 0
	}
	if s.End > n {
		s.End = n
	}
	if s.Start > n {
		s.Start = n
	}
	return s
}
