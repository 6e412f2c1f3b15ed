package overlay

import "math"

// Rect is a cell-grid rectangle. The zero value stands in for an absent
// reference element, which is a normal state rather than an error.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Point is a computed top-left render position.
type Point struct {
	X, Y int
}

// Position resolves a widget placement against the current viewport and
// reference rectangles. The placement's anchor is the widget's bottom-center,
// so a widget growing upward (taller h) never shifts its anchor line. Docked
// widgets pin to the reference edge regardless of the stored vertical offset.
//
// The resolved corner is clamped so the widget stays within the viewport even
// when the stored offsets would push it off-screen.
func Position(viewport, ref Rect, p Placement, docked bool, w, h int) Point {
	p = p.Normalize()
	effY := p.Y
	if docked {
		effY = dockedOffsetY
	}
	anchorX := int(math.Round(float64(viewport.W) * p.X))
	x := anchorX - w/2
	y := ref.Y - effY - h

	if x < 0 {
		x = 0
	}
	if max := viewport.W - w; x > max && max >= 0 {
		x = max
	}
	if y < 0 {
		y = 0
	}
	if max := viewport.H - h; y > max && max >= 0 {
		y = max
	}
	return Point{X: x, Y: y}
}

// Tracker keeps the last observed reference geometry and visibility so the
// render path can resolve widget positions without re-querying the host. The
// reference may not exist yet; the tracker simply reports hidden until it
// appears.
type Tracker struct {
	viewport Rect
	ref      Rect
	present  bool
}

// Observe records the current viewport and reference rectangles. A zero ref
// or present=false marks the reference as absent.
func (t *Tracker) Observe(viewport, ref Rect, present bool) {
	t.viewport = viewport
	t.ref = ref
	t.present = present && !ref.Empty()
}

// Visible reports whether floating widgets should render at all.
func (t *Tracker) Visible() bool {
	return t.present && !t.viewport.Empty()
}

// Viewport returns the last observed viewport rectangle.
func (t *Tracker) Viewport() Rect { return t.viewport }

// Reference returns the last observed reference rectangle and whether it was
// present.
func (t *Tracker) Reference() (Rect, bool) { return t.ref, t.present }

// Resolve computes the rendered top-left corner for a widget of the given
// size, or reports false when the reference is absent.
func (t *Tracker) Resolve(p Placement, docked bool, w, h int) (Point, bool) {
	if !t.Visible() {
		return Point{}, false
	}
	return Position(t.viewport, t.ref, p, docked, w, h), true
}
