// Package reporter synchronizes the automation status of work items linked
// from test titles. A Reporter receives run and test lifecycle
// notifications from a host and, for each test linking exactly one case,
// flips "Not Automated" to "Automated" on the remote work item.
package reporter

import (
	"context"
	"fmt"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/nhle/automation-sync/internal/caseid"
	"github.com/nhle/automation-sync/internal/logging"
	"github.com/nhle/automation-sync/internal/model"
	"github.com/nhle/automation-sync/internal/source"
	"github.com/nhle/automation-sync/internal/source/azdo"
)

// Reporter is the status synchronizer. Its methods are safe for concurrent
// use by a host that runs tests in parallel.
type Reporter struct {
	acquire  AcquireFunc
	logger   *logging.Logger
	recorder Recorder

	// mu guards the single initialization point of api.
	mu  gosync.Mutex
	api source.WorkItemAPI

	testsSeen atomic.Int64
	linked    atomic.Int64
	updated   atomic.Int64
	unchanged atomic.Int64
}

// New validates cfg and creates a Reporter backed by an Azure DevOps
// connection. No request is made until OnBegin or the first linked test.
func New(cfg Config, logger *logging.Logger) (*Reporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reporter config: %w", err)
	}

	conn := azdo.NewConnection(cfg.OrgURL, cfg.Token, azdo.RequestOptions{
		AllowRetries: true,
		MaxRetries:   cfg.maxRetries(),
	})

	acquire := func(ctx context.Context) (source.WorkItemAPI, error) {
		api, err := conn.WorkItemTrackingAPI(ctx)
		if err != nil {
			return nil, err
		}
		return api, nil
	}

	return NewWithAcquirer(acquire, logger), nil
}

// NewWithAcquirer creates a Reporter that obtains its client handle from
// acquire.
func NewWithAcquirer(acquire AcquireFunc, logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reporter{
		acquire: acquire,
		logger:  logger,
	}
}

// SetRecorder attaches a sink for per-case outcomes. Call before the run
// starts.
func (r *Reporter) SetRecorder(rec Recorder) {
	r.recorder = rec
}

// OnBegin acquires the work item client for the run. An acquisition
// failure is returned to the host and should fail the run.
func (r *Reporter) OnBegin(ctx context.Context, info RunInfo) error {
	if _, err := r.workItemAPI(ctx); err != nil {
		return err
	}
	return nil
}

// OnTestBegin synchronizes the case linked from the test title, if any.
// Titles linking more than one case yield a *MultipleCaseIDsError without
// any remote call. Remote errors are returned unchanged in meaning.
func (r *Reporter) OnTestBegin(ctx context.Context, test TestCase) error {
	r.testsSeen.Add(1)

	ids := caseid.Extract(test.Title)
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > 1 {
		return &MultipleCaseIDsError{Title: test.Title, IDs: ids}
	}

	id, err := caseid.ParseID(ids[0])
	if err != nil {
		return err
	}
	r.linked.Add(1)

	// OnBegin normally acquired the client already; this covers hosts that
	// skipped it.
	api, err := r.workItemAPI(ctx)
	if err != nil {
		return err
	}

	item, err := api.GetWorkItem(ctx, id, []string{model.AutomationStatusField})
	if err != nil {
		return err
	}

	previous := item.AutomationStatus()
	if previous != model.AutomationStatusNotAutomated {
		r.unchanged.Add(1)
		r.record(ctx, test, id, previous, previous, model.SyncActionUnchanged)
		return nil
	}

	targetID := item.ID
	if targetID == 0 {
		targetID = id
	}
	patch := model.SetFieldPatch(model.AutomationStatusField, model.AutomationStatusAutomated)
	if _, err := api.UpdateWorkItem(ctx, patch, targetID); err != nil {
		return err
	}

	r.updated.Add(1)
	r.record(ctx, test, targetID, previous, model.AutomationStatusAutomated, model.SyncActionUpdated)
	return nil
}

// OnTestEnd is a no-op hook.
func (r *Reporter) OnTestEnd(ctx context.Context, test TestCase, result TestResult) {}

// OnEnd emits the end-of-run diagnostic line.
func (r *Reporter) OnEnd(ctx context.Context) {
	r.logger.Printf("run finished")
}

// Stats returns a snapshot of the run counters.
func (r *Reporter) Stats() Stats {
	return Stats{
		TestsSeen: int(r.testsSeen.Load()),
		Linked:    int(r.linked.Load()),
		Updated:   int(r.updated.Load()),
		Unchanged: int(r.unchanged.Load()),
	}
}

// workItemAPI returns the client handle, acquiring it on first use. A failed
// acquisition leaves the handle unset so a later call can try again.
func (r *Reporter) workItemAPI(ctx context.Context) (source.WorkItemAPI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.api != nil {
		return r.api, nil
	}

	api, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	r.api = api
	return api, nil
}

// record forwards an outcome to the recorder. Ledger failures never fail a
// test; they are only logged.
func (r *Reporter) record(
	ctx context.Context,
	test TestCase,
	id int,
	previous string,
	current string,
	action string,
) {
	if r.recorder == nil {
		return
	}
	err := r.recorder.RecordSync(ctx, model.SyncRecord{
		CaseID:         id,
		TestName:       testName(test),
		PreviousStatus: previous,
		NewStatus:      current,
		Action:         action,
		SyncedAt:       time.Now(),
	})
	if err != nil {
		r.logger.Printf("recording sync of case %d: %v", id, err)
	}
}

func testName(test TestCase) string {
	if test.Name != "" {
		return test.Name
	}
	return test.Title
}
