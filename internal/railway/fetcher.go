package railway

import (
	"context"
	"fmt"

	"github.com/ternarybob/vigil/internal/interfaces"
	"github.com/ternarybob/vigil/internal/models"
)

// Fetcher adapts the Railway client to the orchestrator's SnapshotFetcher
// contract for a single monitored project.
type Fetcher struct {
	client    *Client
	projectID string
	logLimit  int
}

// NewFetcher creates a snapshot fetcher for one project
func NewFetcher(client *Client, projectID string, logLimit int) interfaces.SnapshotFetcher {
	if logLimit <= 0 {
		logLimit = 50
	}
	return &Fetcher{
		client:    client,
		projectID: projectID,
		logLimit:  logLimit,
	}
}

// ListServices returns the project's services with latest deployment status
func (f *Fetcher) ListServices(ctx context.Context) ([]models.ServiceInfo, error) {
	return f.client.ListServices(ctx, f.projectID)
}

// FetchSnapshot fetches the recent deployment logs for one service
func (f *Fetcher) FetchSnapshot(ctx context.Context, service models.ServiceInfo) (*models.ServiceSnapshot, error) {
	logs, err := f.client.DeploymentLogs(ctx, service.DeploymentID, f.logLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot for %s: %w", service.Name, err)
	}

	return &models.ServiceSnapshot{
		Service: service,
		Logs:    logs,
	}, nil
}
