package reporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/automation-sync/internal/model"
	"github.com/nhle/automation-sync/internal/source"
)

// RunInfo describes the test run passed to OnBegin.
type RunInfo struct {
	// Label names the run configuration (e.g., the go test invocation).
	Label string

	// Suite is the name of the top-level suite.
	Suite string

	StartedAt time.Time
}

// TestCase is the descriptor of a single test.
type TestCase struct {
	Package string

	// Name is the full host-side test name (e.g., TestLogin/flow_[12]).
	Name string

	// Title is the human-readable title identifiers are extracted from.
	Title string
}

// TestResult is the outcome reported at test end.
type TestResult struct {
	Status  string
	Elapsed time.Duration
}

// AcquireFunc acquires a work item client handle.
type AcquireFunc func(ctx context.Context) (source.WorkItemAPI, error)

// Recorder receives the outcome of each synchronized case.
type Recorder interface {
	RecordSync(ctx context.Context, rec model.SyncRecord) error
}

// Stats holds counters for a run.
type Stats struct {
	TestsSeen int
	Linked    int
	Updated   int
	Unchanged int
}

// MultipleCaseIDsError is returned when a test title links more than one
// case identifier.
type MultipleCaseIDsError struct {
	Title string
	IDs   []string
}

func (e *MultipleCaseIDsError) Error() string {
	return fmt.Sprintf(
		"found more than one test case id in test title: %s (ids: %s)",
		e.Title, strings.Join(e.IDs, ", "),
	)
}
