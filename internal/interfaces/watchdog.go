package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/vigil/internal/models"
)

// WatchdogStatus is a point-in-time view of the watchdog state for the
// health/status endpoints.
type WatchdogStatus struct {
	ProjectID     string         `json:"project_id"`
	CheckInterval string         `json:"check_interval_seconds"`
	LastCheck     *time.Time     `json:"last_check,omitempty"`
	SeenCount     int            `json:"errors_tracked"`
	ErrorCounts   map[string]int `json:"error_counts_by_service"`
	CycleRunning  bool           `json:"cycle_running"`
}

// WatchdogService is the poll cycle orchestrator plus its trigger gate.
// RunCycle, TriggerNow and ClearSeen all serialize through one gate; at most
// one cycle ever mutates the seen-set at a time.
type WatchdogService interface {
	// RunCycle executes one complete poll-fetch-fingerprint-alert pass.
	// It always returns a result, possibly partial; per-service fetch
	// failures are recorded in the result, never raised.
	RunCycle(ctx context.Context) *models.CycleResult

	// RunScheduled is the scheduler entry point: it coalesces, skipping the
	// tick when a cycle is already in progress.
	RunScheduled(ctx context.Context) error

	// TriggerNow requests an immediate cycle. It waits for any in-progress
	// cycle to finish, then runs exactly once.
	TriggerNow(ctx context.Context) *models.CycleResult

	// ClearSeen empties the seen-set and per-service counts, returning the
	// number of fingerprints cleared. Serialized with RunCycle.
	ClearSeen(ctx context.Context) int

	// SeenCount returns the current seen-set size
	SeenCount() int

	// Status returns a snapshot of watchdog state for status reporting
	Status() WatchdogStatus

	// LastResult returns the most recent cycle result, nil before the first cycle
	LastResult() *models.CycleResult
}
