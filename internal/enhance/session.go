package enhance

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyInput is returned when a rewrite is requested with nothing
// in the composer.
var ErrEmptyInput = errors.New("nothing to enhance")

// ErrBusy is returned by Begin while another session is in flight.
// Toggle never returns it.
var ErrBusy = errors.New("a generation is already running")

// Delta is one event on a session's update channel. Text deltas carry
// Replace=true on the first chunk so the receiver swaps out the draft,
// then false for appends. Exactly one terminal delta arrives per
// session: Done, Canceled, or Err set.
type Delta struct {
	Text     string
	Replace  bool
	Done     bool
	Canceled bool
	Err      error
}

// Options configures one enhance session.
type Options struct {
	Model        string
	Mode         Mode
	Persona      Persona
	Params       Params
	ContextLimit int
	Stream       bool
}

// UndoSlot holds at most one snapshot of the composer taken before an
// enhance run replaced it. Taking the snapshot empties the slot, so a
// second undo has nothing to restore.
type UndoSlot struct {
	text    string
	present bool
}

func (u *UndoSlot) Set(text string) {
	u.text = text
	u.present = true
}

func (u *UndoSlot) Take() (string, bool) {
	if !u.present {
		return "", false
	}
	u.present = false
	return u.text, true
}

func (u *UndoSlot) Present() bool {
	return u.present
}

// Controller owns the lifecycle of enhance sessions. At most one runs
// at a time; it must only be driven from the program's event loop.
type Controller struct {
	client  *Client
	history History
	active  *run
	undo    UndoSlot
}

type run struct {
	id     string
	cancel context.CancelFunc
}

func NewController(client *Client, history History) *Controller {
	return &Controller{client: client, history: history}
}

// Generating reports whether a session is in flight.
func (c *Controller) Generating() bool {
	return c.active != nil
}

// SessionID returns the in-flight session's ID, or "".
func (c *Controller) SessionID() string {
	if c.active == nil {
		return ""
	}
	return c.active.id
}

// Toggle either starts a session or cancels the in-flight one. A
// cancel returns ("", nil, nil); the canceled session still emits its
// terminal delta on its own channel.
func (c *Controller) Toggle(parent context.Context, input string, opts Options) (string, <-chan Delta, error) {
	if c.Cancel() {
		return "", nil, nil
	}
	return c.Begin(parent, input, opts)
}

// Begin starts a new session. The returned channel delivers streaming
// deltas followed by exactly one terminal delta. The caller must hand
// the terminal delta's session ID back to Finish.
func (c *Controller) Begin(parent context.Context, input string, opts Options) (string, <-chan Delta, error) {
	if c.active != nil {
		return "", nil, ErrBusy
	}
	if opts.Mode != ModeContinue && strings.TrimSpace(input) == "" {
		return "", nil, ErrEmptyInput
	}
	if !c.client.Authorized() {
		return "", nil, ErrNoAPIKey
	}

	if opts.Mode != ModeContinue {
		c.undo.Set(input)
	}

	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()
	c.active = &run{id: id, cancel: cancel}

	updates := make(chan Delta, 16)
	req := Request{
		Model:    opts.Model,
		Messages: buildMessages(opts.Mode, opts.Persona, c.history, input, opts.ContextLimit),
		Params:   opts.Params,
	}
	log.Printf("[enhance] session %s started (model=%s stream=%v)", id, opts.Model, opts.Stream)
	go c.run(ctx, req, opts.Stream, updates)
	return id, updates, nil
}

// Cancel aborts the in-flight session, if any.
func (c *Controller) Cancel() bool {
	if c.active == nil {
		return false
	}
	log.Printf("[enhance] session %s canceled", c.active.id)
	c.active.cancel()
	c.active = nil
	return true
}

// Finish releases the session slot after its terminal delta was seen.
// Stale IDs from already-canceled sessions are ignored.
func (c *Controller) Finish(id string) {
	if c.active == nil || c.active.id != id {
		return
	}
	c.active.cancel()
	c.active = nil
}

// Undo returns the pre-enhance draft, once.
func (c *Controller) Undo() (string, bool) {
	return c.undo.Take()
}

// UndoArmed reports whether an undo snapshot is waiting.
func (c *Controller) UndoArmed() bool {
	return c.undo.Present()
}

func (c *Controller) run(ctx context.Context, req Request, stream bool, updates chan<- Delta) {
	defer close(updates)
	if stream {
		c.runStreaming(ctx, req, updates)
		return
	}
	text, err := c.client.Complete(ctx, req)
	if err != nil {
		send(ctx, updates, terminalDelta(ctx, err))
		return
	}
	if !send(ctx, updates, Delta{Text: text, Replace: true}) {
		return
	}
	send(ctx, updates, Delta{Done: true})
}

func (c *Controller) runStreaming(ctx context.Context, req Request, updates chan<- Delta) {
	stream, err := c.client.StreamCompletion(ctx, req)
	if err != nil {
		send(ctx, updates, terminalDelta(ctx, err))
		return
	}
	defer stream.Close()

	first := true
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			send(ctx, updates, Delta{Done: true})
			return
		}
		if err != nil {
			send(ctx, updates, terminalDelta(ctx, err))
			return
		}
		if !send(ctx, updates, Delta{Text: chunk, Replace: first}) {
			return
		}
		first = false
	}
}

// send delivers one delta unless the session was canceled and the
// buffer is full. A canceled session may never be drained again, so an
// unconditional channel send could park the run goroutine forever. The
// non-blocking attempt comes first so a terminal delta still lands
// when there is room, cancellation or not.
func send(ctx context.Context, updates chan<- Delta, d Delta) bool {
	select {
	case updates <- d:
		return true
	default:
	}
	select {
	case updates <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

// terminalDelta maps a run error to its terminal event. Errors caused
// by our own cancellation are reported as Canceled, not failures.
func terminalDelta(ctx context.Context, err error) Delta {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return Delta{Canceled: true}
	}
	return Delta{Err: err}
}
