package models

import "time"

// DeploymentStatus is the deployment state reported by the platform for a
// service's latest deployment. Values other than the constants below are
// passed through untouched.
type DeploymentStatus string

const (
	DeploymentSuccess DeploymentStatus = "SUCCESS"
	DeploymentRunning DeploymentStatus = "RUNNING"
	DeploymentCrashed DeploymentStatus = "CRASHED"
)

// IsCrashed returns true when the deployment is in the crashed state
func (s DeploymentStatus) IsCrashed() bool {
	return s == DeploymentCrashed
}

// LogSeverityError is the only severity the watchdog alerts on
const LogSeverityError = "error"

// LogEntry is a single log line fetched from a deployment. Immutable once fetched.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
}

// IsError returns true for error-severity entries
func (e LogEntry) IsError() bool {
	return e.Severity == LogSeverityError
}

// ServiceInfo identifies a monitored service and its latest deployment
type ServiceInfo struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	DeploymentID string           `json:"deployment_id"`
	Status       DeploymentStatus `json:"status"`
}

// ServiceSnapshot is one service's state for a single poll cycle: identity,
// latest deployment status, and the recent log entries in the order the
// platform returned them. Created fresh each cycle and discarded after.
type ServiceSnapshot struct {
	Service ServiceInfo `json:"service"`
	Logs    []LogEntry  `json:"logs"`
}
