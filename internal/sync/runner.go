// Package sync drives a status synchronizer from a go test -json stream.
package sync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nhle/automation-sync/internal/logging"
	"github.com/nhle/automation-sync/internal/reporter"
	"github.com/nhle/automation-sync/internal/testjson"
)

// Lifecycle is the host notification contract implemented by
// *reporter.Reporter.
type Lifecycle interface {
	OnBegin(ctx context.Context, info reporter.RunInfo) error
	OnTestBegin(ctx context.Context, test reporter.TestCase) error
	OnTestEnd(ctx context.Context, test reporter.TestCase, result reporter.TestResult)
	OnEnd(ctx context.Context)
}

// TestFailure is a synchronization error attributed to one test.
type TestFailure struct {
	Test reporter.TestCase
	Err  error
}

// Summary describes a completed run.
type Summary struct {
	TestsStarted  int
	TestsFinished int
	Malformed     int
	Failures      []TestFailure
	Duration      time.Duration
}

// Failed reports whether any test failed to synchronize.
func (s *Summary) Failed() bool {
	return len(s.Failures) > 0
}

// Runner feeds lifecycle notifications to a Lifecycle as events arrive.
type Runner struct {
	lifecycle Lifecycle
	logger    *logging.Logger

	// FailFast aborts the run on the first synchronization error instead
	// of collecting it.
	FailFast bool
}

// NewRunner creates a runner for lc.
func NewRunner(lc Lifecycle, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{lifecycle: lc, logger: logger}
}

// Run reads events from r until EOF. OnBegin is called before the first
// event; its error aborts the run. OnEnd is called once the stream is
// exhausted, whether or not individual tests failed to synchronize.
func (rn *Runner) Run(ctx context.Context, r io.Reader, info reporter.RunInfo) (*Summary, error) {
	start := time.Now()
	if info.StartedAt.IsZero() {
		info.StartedAt = start
	}

	if err := rn.lifecycle.OnBegin(ctx, info); err != nil {
		return nil, fmt.Errorf("starting run: %w", err)
	}

	summary := &Summary{}
	malformed, err := testjson.Stream(ctx, r, func(e testjson.TestEvent) error {
		return rn.handle(ctx, e, summary)
	})
	summary.Malformed = malformed
	summary.Duration = time.Since(start)
	if err != nil {
		return summary, err
	}

	rn.lifecycle.OnEnd(ctx)
	return summary, nil
}

// handle dispatches a single event.
func (rn *Runner) handle(ctx context.Context, e testjson.TestEvent, summary *Summary) error {
	if !e.IsTest() {
		return nil
	}

	test := reporter.TestCase{
		Package: e.Package,
		Name:    e.Test,
		Title:   e.Title(),
	}

	switch {
	case e.Action == testjson.ActionRun:
		summary.TestsStarted++
		err := rn.lifecycle.OnTestBegin(ctx, test)
		if err == nil {
			return nil
		}
		if rn.FailFast {
			return fmt.Errorf("synchronizing %s %s: %w", e.Package, e.Test, err)
		}
		rn.logger.Printf("%s %s: %v", e.Package, e.Test, err)
		summary.Failures = append(summary.Failures, TestFailure{Test: test, Err: err})

	case e.IsTerminal():
		summary.TestsFinished++
		rn.lifecycle.OnTestEnd(ctx, test, reporter.TestResult{
			Status:  e.Action,
			Elapsed: e.ElapsedDuration(),
		})
	}

	return nil
}
