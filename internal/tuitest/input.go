package tuitest

var (
	// KeyEnter sends a carriage return to the PTY.
	KeyEnter = []byte{'\r'}
	// KeyCtrlC requests the program to terminate.
	KeyCtrlC = []byte{3}
	// KeyEsc locks unlocked bars or quits.
	KeyEsc = []byte{27}
	// KeyCtrlE toggles the enhance session.
	KeyCtrlE = []byte{5}
	// KeyCtrlU restores the pre-enhance draft.
	KeyCtrlU = []byte{21}
	// KeyF1 toggles the shortcut help.
	KeyF1 = []byte("\x1bOP")
)

// X10 mouse reporting: ESC [ M Cb Cx Cy, with 32 added to the button
// byte and 33 to each zero-based cell coordinate. This is the only
// encoding bubbletea's input parser understands; held-button motion
// sets bit 5 of Cb and coordinates cap at 223.
func mouseEvent(button, x, y int) []byte {
	return []byte{0x1b, '[', 'M', byte(32 + button), byte(33 + x), byte(33 + y)}
}

// MousePress encodes a left-button press at the given cell.
func MousePress(x, y int) []byte {
	return mouseEvent(0, x, y)
}

// MouseMotion encodes pointer motion with the left button held.
func MouseMotion(x, y int) []byte {
	return mouseEvent(32, x, y)
}

// MouseRelease encodes a button release.
func MouseRelease(x, y int) []byte {
	return mouseEvent(3, x, y)
}

// Click is a full press-release pair on one cell.
func Click(x, y int) []byte {
	return append(MousePress(x, y), MouseRelease(x, y)...)
}

// DoubleClick sends two quick clicks, the gesture that unlocks a bar.
func DoubleClick(x, y int) []byte {
	return append(Click(x, y), Click(x, y)...)
}

// Drag scripts a press at the origin, held motion through a midpoint
// and the destination, and a release at the final cell.
func Drag(fromX, fromY, toX, toY int) []byte {
	seq := MousePress(fromX, fromY)
	seq = append(seq, MouseMotion((fromX+toX)/2, (fromY+toY)/2)...)
	seq = append(seq, MouseMotion(toX, toY)...)
	seq = append(seq, MouseRelease(toX, toY)...)
	return seq
}
