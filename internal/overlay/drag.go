package overlay

// Pointer identifies one input contact. Terminal mice only ever report a
// single contact (ID 0), but the identity is kept explicit so the
// single-session invariant is enforceable and testable: moves and releases
// from any other contact are ignored while a session is live.
type Pointer struct {
	ID int
	X  int
	Y  int
}

type dragSession struct {
	widget  string
	pointer int
	startX  int
	startY  int
	base    Placement
}

// DragController owns at most one drag session process-wide. Each move
// recomputes the placement from the start-of-gesture baseline plus the
// cumulative pointer delta, so dropped or reordered motion events cannot
// corrupt the final position.
type DragController struct {
	active *dragSession
}

// Dragging reports whether a session is live.
func (c *DragController) Dragging() bool { return c.active != nil }

// Widget returns the identifier of the widget being dragged.
func (c *DragController) Widget() (string, bool) {
	if c.active == nil {
		return "", false
	}
	return c.active.widget, true
}

// Start begins a session for the widget with the pointer's current position
// and the widget's current placement as baseline. It reports false, changing
// nothing, when another session is already live.
func (c *DragController) Start(widget string, ptr Pointer, base Placement) bool {
	if c.active != nil {
		return false
	}
	c.active = &dragSession{
		widget:  widget,
		pointer: ptr.ID,
		startX:  ptr.X,
		startY:  ptr.Y,
		base:    base.Normalize(),
	}
	return true
}

// Move applies a motion event, returning the live (uncommitted) placement.
// Events from a different pointer than the one that started the gesture are
// ignored. Horizontal deltas convert to viewport-width fractions; vertical
// deltas invert sign (the offset counts rows above the anchor) and floor at
// zero so a widget cannot be dragged below its anchor line.
func (c *DragController) Move(ptr Pointer, viewportW int) (Placement, bool) {
	s := c.active
	if s == nil || ptr.ID != s.pointer || viewportW <= 0 {
		return Placement{}, false
	}
	p := s.base
	p.X = ClampX(s.base.X + float64(ptr.X-s.startX)/float64(viewportW))
	p.Y = s.base.Y - (ptr.Y - s.startY)
	if p.Y < 0 {
		p.Y = 0
	}
	return p, true
}

// Release ends the session and returns the widget plus its final placement
// for the caller to persist. Releases from a foreign pointer are ignored and
// the session stays live.
func (c *DragController) Release(ptr Pointer, viewportW int) (string, Placement, bool) {
	s := c.active
	if s == nil || ptr.ID != s.pointer {
		return "", Placement{}, false
	}
	final, ok := c.Move(ptr, viewportW)
	if !ok {
		final = s.base
	}
	c.active = nil
	return s.widget, final, true
}

// Cancel aborts the session without committing anything. Safe to call when
// no session is live, e.g. when the dragged widget vanished mid-gesture.
func (c *DragController) Cancel() {
	c.active = nil
}
