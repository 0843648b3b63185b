package interfaces

import "context"

// AlertType is the gateway-facing severity of a posted alert
type AlertType string

const (
	AlertTypeError   AlertType = "error"
	AlertTypeWarning AlertType = "warning"
)

// Notifier posts alert messages to the chat gateway. A failed post is
// reported to the caller but never re-queues a fingerprint as unseen
// (at-most-once alert delivery).
type Notifier interface {
	PostAlert(ctx context.Context, alertType AlertType, message string) error
}
