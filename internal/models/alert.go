package models

import "time"

// AlertKind distinguishes crash alerts from log-error alerts
type AlertKind string

const (
	AlertKindLogError AlertKind = "log_error"
	AlertKindCrash    AlertKind = "crash"
)

// AlertEvent is a newly-seen alert-worthy event produced by one poll cycle.
// Ownership is transient: it is handed to the notifier and alert storage and
// then discarded.
type AlertEvent struct {
	Service     string    `json:"service"`
	Kind        AlertKind `json:"kind"`
	Fingerprint string    `json:"fingerprint"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

// AlertRecord is the persisted form of an AlertEvent for alert history
type AlertRecord struct {
	ID          string    `json:"id" badgerhold:"key"`
	Service     string    `json:"service" badgerhold:"index"`
	Kind        AlertKind `json:"kind"`
	Fingerprint string    `json:"fingerprint"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// ServiceFailure records a per-service fetch failure within a cycle.
// A failed fetch skips that service for the cycle; it never aborts the cycle.
type ServiceFailure struct {
	Service string `json:"service"`
	Error   string `json:"error"`
}

// CycleResult is the outcome of one complete poll-fetch-fingerprint-alert
// pass over all monitored services. Alerts preserve input order per service.
type CycleResult struct {
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Services    int              `json:"services"`
	Alerts      []AlertEvent     `json:"alerts"`
	Failures    []ServiceFailure `json:"failures,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// NewAlerts returns the number of alert events in the result
func (r *CycleResult) NewAlerts() int {
	return len(r.Alerts)
}
