package overlay

import "time"

// doubleTapWindow is how close two presses on the same widget must land to
// count as the unlock gesture.
const doubleTapWindow = 500 * time.Millisecond

// EditMode gates how widget presses are interpreted: locked presses fire the
// widget's click action, unlocked presses begin a drag. Unlocking elevates
// every widget to ZTop; locking restores persisted stacking order (the
// caller re-reads it from settings).
type EditMode struct {
	unlocked bool
}

// Unlocked reports whether drag interpretation is active.
func (e *EditMode) Unlocked() bool { return e.unlocked }

// Unlock enters edit mode.
func (e *EditMode) Unlock() { e.unlocked = true }

// Lock leaves edit mode.
func (e *EditMode) Lock() { e.unlocked = false }

// TapTracker folds successive presses into double-tap detection. A press
// counts as the second tap only when it lands on the same widget within the
// window; any other press restarts the count.
type TapTracker struct {
	widget string
	at     time.Time
}

// Tap records a press and reports whether it completed a double tap.
func (t *TapTracker) Tap(widget string, now time.Time) bool {
	if t.widget == widget && !t.at.IsZero() && now.Sub(t.at) <= doubleTapWindow {
		t.widget = ""
		t.at = time.Time{}
		return true
	}
	t.widget = widget
	t.at = now
	return false
}
