package tuitest

import (
	"bytes"
	"io"
)

type replyRule struct {
	query []byte
	reply []byte
}

// queryResponder answers the capability queries a TUI sends on startup
// (cursor position, foreground and background color). Without replies
// some renderers block waiting on them.
type queryResponder struct {
	w     io.Writer
	tail  []byte
	rules []replyRule
}

func newQueryResponder(w io.Writer) *queryResponder {
	return &queryResponder{
		w: w,
		rules: []replyRule{
			{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
			{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
			{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
			{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
			{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
		},
	}
}

// Feed scans a chunk of program output for queries. A short tail is
// kept between calls so a query split across two reads still matches.
func (q *queryResponder) Feed(chunk []byte) {
	q.tail = append(q.tail, chunk...)
	for {
		matched := false
		for _, r := range q.rules {
			if i := bytes.Index(q.tail, r.query); i >= 0 {
				q.tail = q.tail[i+len(r.query):]
				_, _ = q.w.Write(r.reply)
				matched = true
			}
		}
		if !matched {
			break
		}
	}
	if len(q.tail) > 256 {
		q.tail = q.tail[len(q.tail)-64:]
	}
}
