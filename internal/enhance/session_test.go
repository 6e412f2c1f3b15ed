package enhance

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeHistory struct {
	turns []Turn
}

func (f *fakeHistory) RecentTurns(limit int) []Turn {
	if limit >= len(f.turns) {
		return f.turns
	}
	return f.turns[len(f.turns)-limit:]
}

func drain(t *testing.T, updates <-chan Delta) []Delta {
	t.Helper()
	var all []Delta
	timeout := time.After(5 * time.Second)
	for {
		select {
		case d, ok := <-updates:
			if !ok {
				return all
			}
			all = append(all, d)
		case <-timeout:
			t.Fatalf("timed out waiting for deltas; got %v", all)
		}
	}
}

func TestSessionStreamsThenFinishes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseEvent("Bet"))
		io.WriteString(w, sseEvent("ter."))
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	ctrl := NewController(NewClient(server.URL, "key"), nil)
	id, updates, err := ctrl.Begin(context.Background(), "draft text", Options{Model: "m", Stream: true})
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if !ctrl.Generating() {
		t.Fatal("controller should report a session in flight")
	}

	deltas := drain(t, updates)
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %v", deltas)
	}
	if !deltas[0].Replace || deltas[0].Text != "Bet" {
		t.Fatalf("first delta should replace: %+v", deltas[0])
	}
	if deltas[1].Replace || deltas[1].Text != "ter." {
		t.Fatalf("second delta should append: %+v", deltas[1])
	}
	if !deltas[2].Done {
		t.Fatalf("expected terminal done delta: %+v", deltas[2])
	}

	ctrl.Finish(id)
	if ctrl.Generating() {
		t.Fatal("controller should be idle after finish")
	}
}

func TestToggleCancelsInFlightSessionExactlyOnce(t *testing.T) {
	requests := make(chan struct{}, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- struct{}{}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseEvent("partial"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	ctrl := NewController(NewClient(server.URL, "key"), nil)
	id, updates, err := ctrl.Toggle(context.Background(), "draft", Options{Model: "m", Stream: true})
	if err != nil {
		t.Fatalf("toggle failed to start: %v", err)
	}
	if id == "" || updates == nil {
		t.Fatal("first toggle should start a session")
	}
	<-requests

	cancelID, cancelCh, err := ctrl.Toggle(context.Background(), "draft", Options{Model: "m", Stream: true})
	if err != nil {
		t.Fatalf("toggle cancel errored: %v", err)
	}
	if cancelID != "" || cancelCh != nil {
		t.Fatal("second toggle should cancel, not start a new session")
	}
	if ctrl.Generating() {
		t.Fatal("controller should be idle after toggle cancel")
	}

	deltas := drain(t, updates)
	last := deltas[len(deltas)-1]
	if !last.Canceled {
		t.Fatalf("expected canceled terminal delta, got %+v", last)
	}
	select {
	case <-requests:
		t.Fatal("cancel must not issue a second request")
	case <-time.After(100 * time.Millisecond):
	}

	// The canceled session's terminal ID must not release a newer one.
	ctrl.Finish(id)
}

func TestCancelWhileStreamSaturatedStopsProducing(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 40; i++ {
			io.WriteString(w, sseEvent("chunk"))
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctrl := NewController(NewClient(server.URL, "key"), nil)
	_, updates, err := ctrl.Begin(context.Background(), "draft", Options{Model: "m", Stream: true})
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	// Nothing reads yet, so the run goroutine fills the channel buffer
	// and parks on the next send before the cancel lands.
	time.Sleep(100 * time.Millisecond)
	ctrl.Cancel()

	deltas := drain(t, updates)
	if len(deltas) >= 40 {
		t.Fatalf("canceled session kept producing: %d deltas", len(deltas))
	}
	for _, d := range deltas {
		if d.Err != nil {
			t.Fatalf("cancellation surfaced as an error: %v", d.Err)
		}
	}
}

func TestUndoRestoresDraftExactlyOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"replacement"}}]}`))
	}))
	defer server.Close()

	ctrl := NewController(NewClient(server.URL, "key"), nil)
	id, updates, err := ctrl.Begin(context.Background(), "original draft", Options{Model: "m"})
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	drain(t, updates)
	ctrl.Finish(id)

	if !ctrl.UndoArmed() {
		t.Fatal("undo slot should be armed after a rewrite")
	}
	restored, ok := ctrl.Undo()
	if !ok || restored != "original draft" {
		t.Fatalf("expected original draft back, got %q ok=%v", restored, ok)
	}
	if _, ok := ctrl.Undo(); ok {
		t.Fatal("second undo should have nothing to restore")
	}
	if ctrl.UndoArmed() {
		t.Fatal("undo slot should be empty after restore")
	}
}

func TestBeginRejectsEmptyDraft(t *testing.T) {
	ctrl := NewController(NewClient("http://localhost:1", "key"), nil)
	if _, _, err := ctrl.Begin(context.Background(), "   ", Options{Model: "m"}); err != ErrEmptyInput {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if ctrl.UndoArmed() {
		t.Fatal("a rejected session must not arm undo")
	}
}

func TestContinueModeAllowsEmptyDraftAndSkipsUndo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"next turn"}}]}`))
	}))
	defer server.Close()

	ctrl := NewController(NewClient(server.URL, "key"), &fakeHistory{})
	id, updates, err := ctrl.Begin(context.Background(), "", Options{Model: "m", Mode: ModeContinue})
	if err != nil {
		t.Fatalf("continue begin failed: %v", err)
	}
	deltas := drain(t, updates)
	if deltas[0].Text != "next turn" {
		t.Fatalf("unexpected text: %+v", deltas[0])
	}
	ctrl.Finish(id)
	if ctrl.UndoArmed() {
		t.Fatal("continue mode must not arm undo")
	}
}

func TestFinishIgnoresStaleSessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	ctrl := NewController(NewClient(server.URL, "key"), nil)
	id, updates, err := ctrl.Begin(context.Background(), "draft", Options{Model: "m"})
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	ctrl.Finish("not-the-session")
	if !ctrl.Generating() {
		t.Fatal("stale finish must not release the active session")
	}
	drain(t, updates)
	ctrl.Finish(id)
	if ctrl.Generating() {
		t.Fatal("matching finish should release the session")
	}
}
