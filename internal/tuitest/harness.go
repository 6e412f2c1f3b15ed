// Package tuitest drives a built binary inside a pseudo terminal,
// replays a scripted interaction, and records what the program drew so
// tests can assert against the final rendered frame.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

// Step is one scripted interaction: wait Delay, then write Input to
// the terminal. Either field may be zero.
type Step struct {
	Delay time.Duration
	Input []byte
}

// Config describes the program under test and the script to replay.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	Width   int
	Height  int
	Steps   []Step
	Timeout time.Duration
	// AllowInterrupt accepts death by SIGINT as a clean exit; Ctrl+C is
	// how these scripts normally end the program.
	AllowInterrupt bool
}

// Recording is the captured terminal stream plus its parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Run starts the program under a PTY sized per the config, replays the
// script, and waits for the program to exit.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: empty command")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = runEnv(cfg.Env)

	size := &pty.Winsize{
		Rows: uint16(orDefault(cfg.Height, 32)),
		Cols: uint16(orDefault(cfg.Width, 120)),
	}
	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	var out bytes.Buffer
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		respond := newQueryResponder(ptmx)
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				respond.Feed(buf[:n])
				out.Write(buf[:n])
			}
			if readErr != nil {
				return
			}
		}
	}()

	start := time.Now()
	for _, step := range cfg.Steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tuitest: script interrupted: %w", ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) > 0 {
			if _, err := ptmx.Write(step.Input); err != nil {
				return nil, fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()
	select {
	case err := <-waitCh:
		if err != nil && !exitAllowed(err, cfg.AllowInterrupt) {
			return nil, fmt.Errorf("tuitest: program exited: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timed out waiting for exit: %w", ctx.Err())
	}

	// Closing the PTY unblocks the reader so it can finish draining.
	_ = ptmx.Close()
	<-drained

	raw := out.Bytes()
	return &Recording{
		Raw:      raw,
		Frames:   parseFrames(raw),
		Duration: time.Since(start),
	}, nil
}

func exitAllowed(err error, allowInterrupt bool) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	if allowInterrupt && strings.Contains(exitErr.Error(), "signal: interrupt") {
		return true
	}
	return exitErr.ExitCode() == 0
}

// runEnv layers the caller's variables over the ambient environment
// and guarantees a TERM value so the program renders at all.
func runEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
