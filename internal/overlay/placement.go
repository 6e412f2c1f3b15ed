// Package overlay implements the positioning engine for floating toolbar
// widgets anchored to the composer: persisted placements, anchor tracking,
// drag sessions, and the edit-mode gate.
package overlay

import "math"

const (
	// ScaleMin and ScaleMax bound the uniform widget zoom factor. Every
	// mutation clamps back into this range.
	ScaleMin  = 0.5
	ScaleMax  = 2.0
	ScaleStep = 0.1

	// ZDefault is the resting stacking order; ZTop is the sentinel applied
	// to every widget while edit mode is unlocked.
	ZDefault = 1000
	ZTop     = 9999

	// Widgets in the docked visual style hug the composer's top edge and
	// ignore their stored vertical offset.
	dockedOffsetY = 1

	// Horizontal clamp keeps the anchor away from the extreme edges so a
	// sliver of every widget stays on-screen.
	minAnchorX = 0.02
	maxAnchorX = 0.98
)

// Placement is one widget's persisted position relative to the composer.
// X is the fraction of the viewport width at which the widget's bottom-center
// anchor sits; Y counts rows above the composer's top edge (larger Y is
// farther above, never negative). Scale and Z follow the stored settings.
type Placement struct {
	X     float64
	Y     int
	Scale float64
	Z     int
}

// DefaultPlacement positions a widget at the given viewport fraction, resting
// one row above the composer at normal zoom.
func DefaultPlacement(x float64) Placement {
	return Placement{X: ClampX(x), Y: 1, Scale: 1.0, Z: ZDefault}
}

// ClampX bounds a horizontal anchor fraction so the anchor stays on-screen.
func ClampX(x float64) float64 {
	if x < minAnchorX {
		return minAnchorX
	}
	if x > maxAnchorX {
		return maxAnchorX
	}
	return x
}

// ClampScale bounds a zoom factor to [ScaleMin, ScaleMax].
func ClampScale(s float64) float64 {
	if s < ScaleMin {
		return ScaleMin
	}
	if s > ScaleMax {
		return ScaleMax
	}
	return s
}

// Normalize clamps every field back into its legal range.
func (p Placement) Normalize() Placement {
	p.X = ClampX(p.X)
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Scale == 0 {
		p.Scale = 1.0
	}
	p.Scale = ClampScale(p.Scale)
	if p.Z == 0 {
		p.Z = ZDefault
	}
	return p
}

// Zoom returns the placement with the scale stepped by delta and re-clamped.
func (p Placement) Zoom(delta float64) Placement {
	p.Scale = ClampScale(math.Round((p.Scale+delta)*10) / 10)
	return p
}
