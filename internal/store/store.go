package store

import (
	"context"

	"github.com/nhle/automation-sync/internal/model"
)

// SyncFilter controls filtering and pagination for sync record queries.
type SyncFilter struct {
	RunID  *string
	CaseID *int
	Action *string
	Limit  int
	Offset int
}

// Store defines the persistence interface for the sync ledger.
type Store interface {
	// === Runs ===

	CreateRun(ctx context.Context, run model.Run) (model.Run, error)
	FinishRun(ctx context.Context, id string, stats RunStats) error
	GetRuns(ctx context.Context, limit int) ([]model.Run, error)

	// === Sync records ===

	RecordSync(ctx context.Context, rec model.SyncRecord) error
	GetSyncRecords(ctx context.Context, filter SyncFilter) ([]model.SyncRecord, error)

	Close() error
}

// RunStats are the final counters written when a run finishes.
type RunStats struct {
	TestsSeen int
	Updated   int
	Errors    int
}
