package interfaces

import (
	"context"

	"github.com/ternarybob/vigil/internal/models"
)

// AlertStorage persists alert history. This is operational data only; the
// seen-set used for deduplication is in-memory and never stored here.
type AlertStorage interface {
	// SaveAlert persists one alert record
	SaveAlert(ctx context.Context, record *models.AlertRecord) error

	// ListAlerts returns the most recent alerts, newest first
	ListAlerts(ctx context.Context, limit int) ([]models.AlertRecord, error)

	// CountsByService returns total alerts recorded per service name
	CountsByService(ctx context.Context) (map[string]int, error)

	// DeleteAll removes all alert history, returning the number deleted
	DeleteAll(ctx context.Context) (int, error)
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	AlertStorage() AlertStorage
	Close() error
}
