package model

import "time"

// Sync action constants recorded in the ledger.
const (
	SyncActionUpdated   = "updated"
	SyncActionUnchanged = "unchanged"
)

// SyncRecord captures the outcome of synchronizing one case identifier.
type SyncRecord struct {
	ID             string    `json:"id" db:"id"`
	RunID          string    `json:"run_id" db:"run_id"`
	CaseID         int       `json:"case_id" db:"case_id"`
	TestName       string    `json:"test_name" db:"test_name"`
	PreviousStatus string    `json:"previous_status" db:"previous_status"`
	NewStatus      string    `json:"new_status" db:"new_status"`
	Action         string    `json:"action" db:"action"`
	SyncedAt       time.Time `json:"synced_at" db:"synced_at"`
}

// Run is a single invocation of the synchronizer against a test run.
type Run struct {
	ID         string     `json:"id" db:"id"`
	OrgURL     string     `json:"org_url" db:"org_url"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	TestsSeen  int        `json:"tests_seen" db:"tests_seen"`
	Updated    int        `json:"updated" db:"updated"`
	Errors     int        `json:"errors" db:"errors"`
}
