// Package testjson reads go test -json NDJSON event streams.
package testjson

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// Test actions emitted by go test -json.
const (
	ActionStart  = "start"
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
	ActionBench  = "bench"
)

// TestEvent is a single line of go test -json output.
type TestEvent struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// IsTest reports whether the event belongs to a test rather than a package.
func (e TestEvent) IsTest() bool {
	return e.Test != ""
}

// IsTerminal reports whether the event ends a test or package.
func (e TestEvent) IsTerminal() bool {
	switch e.Action {
	case ActionPass, ActionFail, ActionSkip:
		return true
	default:
		return false
	}
}

// ElapsedDuration converts Elapsed seconds to a time.Duration.
func (e TestEvent) ElapsedDuration() time.Duration {
	return time.Duration(e.Elapsed * float64(time.Second))
}

// Title returns the human-readable title of the test: the innermost
// subtest name with underscores turned back into spaces, since go test
// rewrites spaces in subtest names.
func (e TestEvent) Title() string {
	name := e.Test
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ReplaceAll(name, "_", " ")
}

// ProcessFunc handles one decoded event. Returning an error stops Stream.
type ProcessFunc func(TestEvent) error

// scanResult carries a scanned line or terminal error from the scanner goroutine.
type scanResult struct {
	line []byte
	err  error
}

// Stream decodes go test -json events from r and calls fn for each one.
// It stops on EOF, when fn returns an error, or when ctx is cancelled.
// Malformed lines (plain build output, partial writes) are skipped and
// counted.
//
// On cancellation Stream closes r if it implements io.Closer, so the
// scanner goroutine can exit.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan scanResult)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			// Copy bytes; the scanner reuses its buffer.
			cp := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- scanResult{line: cp}:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scanResult{err: err}:
			case <-done:
			}
		}
	}()

	var malformed int
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case res, ok := <-lines:
			if !ok {
				return malformed, nil
			}
			if res.err != nil {
				return malformed, res.err
			}
			if len(res.line) == 0 {
				continue
			}
			var event TestEvent
			if err := json.Unmarshal(res.line, &event); err != nil || event.Action == "" {
				malformed++
				continue
			}
			if err := fn(event); err != nil {
				return malformed, err
			}
		}
	}
}
