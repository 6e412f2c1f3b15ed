package tui

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type jobKind string

const jobKindCopy jobKind = "copy"

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs fire-and-forget background work and logs each outcome
// under a stable job ID.
type jobBus struct {
	counter int64
}

func newJobBus() *jobBus {
	return &jobBus{}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	return func() tea.Msg {
		payload, err := runner(context.Background())
		log.Printf("[jobs] %s done (duration=%s, err=%v)", id, time.Since(started), err)
		return payload
	}
}
