package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one full-screen render pulled out of the raw PTY stream.
// Plain strips escape sequences and trailing blank space, which is the
// form assertions match against.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

// Contains reports whether the frame's plain text includes substr.
func (f Frame) Contains(substr string) bool {
	return strings.Contains(f.Plain, substr)
}

// Full-screen programs repaint by clearing first, so erase-display
// sequences delimit frames.
var (
	eraseDisplay = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSeq       = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSeq       = regexp.MustCompile(`\x1b\][^\x07]*(?:\x07|\x1b\\)`)
	shiftChars   = strings.NewReplacer("\x0e", "", "\x0f", "")
)

func parseFrames(raw []byte) []Frame {
	text := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, seg := range eraseDisplay.Split(text, -1) {
		seg = strings.TrimPrefix(strings.Trim(seg, "\x00"), "\x1b[H")
		plain := stripEscapes(seg)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: seg, Plain: tidy(plain)})
	}
	if len(frames) == 0 && text != "" {
		frames = append(frames, Frame{ANSI: text, Plain: tidy(stripEscapes(text))})
	}
	return frames
}

// FinalFrame returns the last render, i.e. what the program left on
// screen when it exited. The second value is false when nothing was
// captured.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

func stripEscapes(s string) string {
	s = oscSeq.ReplaceAllString(s, "")
	s = csiSeq.ReplaceAllString(s, "")
	return shiftChars.Replace(s)
}

// tidy trims trailing spaces per line and drops empty tail lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
