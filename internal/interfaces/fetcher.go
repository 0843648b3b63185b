package interfaces

import (
	"context"

	"github.com/ternarybob/vigil/internal/models"
)

// SnapshotFetcher retrieves per-service log/deployment snapshots from the
// hosting platform. Fetches are read-only and independent; the orchestrator
// may call FetchSnapshot concurrently for different services.
type SnapshotFetcher interface {
	// ListServices returns every service in the monitored project with its
	// latest deployment id and status.
	ListServices(ctx context.Context) ([]models.ServiceInfo, error)

	// FetchSnapshot returns the snapshot for one service. A transient fetch
	// error skips the service for the cycle, not the whole cycle.
	FetchSnapshot(ctx context.Context, service models.ServiceInfo) (*models.ServiceSnapshot, error)
}
