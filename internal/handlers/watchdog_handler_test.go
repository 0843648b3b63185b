package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/common"
	"github.com/ternarybob/vigil/internal/interfaces"
	"github.com/ternarybob/vigil/internal/models"
)

// stubWatchdog returns canned data and records which operations were invoked
type stubWatchdog struct {
	status       interfaces.WatchdogStatus
	cycleResult  *models.CycleResult
	clearedCount int

	triggered bool
	cleared   bool
}

func (s *stubWatchdog) RunCycle(ctx context.Context) *models.CycleResult { return s.cycleResult }
func (s *stubWatchdog) RunScheduled(ctx context.Context) error           { return nil }
func (s *stubWatchdog) TriggerNow(ctx context.Context) *models.CycleResult {
	s.triggered = true
	return s.cycleResult
}
func (s *stubWatchdog) ClearSeen(ctx context.Context) int {
	s.cleared = true
	return s.clearedCount
}
func (s *stubWatchdog) SeenCount() int                    { return s.status.SeenCount }
func (s *stubWatchdog) Status() interfaces.WatchdogStatus { return s.status }
func (s *stubWatchdog) LastResult() *models.CycleResult   { return s.cycleResult }

// stubFetcher serves a fixed service list
type stubFetcher struct {
	services []models.ServiceInfo
	listErr  error
}

func (s *stubFetcher) ListServices(ctx context.Context) ([]models.ServiceInfo, error) {
	return s.services, s.listErr
}

func (s *stubFetcher) FetchSnapshot(ctx context.Context, service models.ServiceInfo) (*models.ServiceSnapshot, error) {
	return &models.ServiceSnapshot{Service: service}, nil
}

// stubAlertStorage serves fixed history
type stubAlertStorage struct {
	alerts   []models.AlertRecord
	gotLimit int
	purged   bool
}

func (s *stubAlertStorage) SaveAlert(ctx context.Context, record *models.AlertRecord) error {
	return nil
}
func (s *stubAlertStorage) ListAlerts(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	s.gotLimit = limit
	return s.alerts, nil
}
func (s *stubAlertStorage) CountsByService(ctx context.Context) (map[string]int, error) {
	return nil, nil
}
func (s *stubAlertStorage) DeleteAll(ctx context.Context) (int, error) {
	s.purged = true
	return len(s.alerts), nil
}

func newTestHandler(watchdog *stubWatchdog, fetcher *stubFetcher, storage interfaces.AlertStorage) *WatchdogHandler {
	cfg := common.NewDefaultConfig()
	cfg.Railway.ProjectID = "proj-1"
	return NewWatchdogHandler(watchdog, fetcher, storage, cfg, arbor.NewLogger())
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthHandler(t *testing.T) {
	lastCheck := time.Now().Add(-time.Minute)
	watchdog := &stubWatchdog{
		status: interfaces.WatchdogStatus{
			SeenCount:   7,
			LastCheck:   &lastCheck,
			ErrorCounts: map[string]int{"api": 7},
		},
	}
	handler := newTestHandler(watchdog, &stubFetcher{}, nil)

	w := httptest.NewRecorder()
	handler.HealthHandler(w, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(7), body["errors_tracked"])
	assert.NotNil(t, body["last_check"])
	assert.Contains(t, body, "goroutines_spawned")
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&stubWatchdog{}, &stubFetcher{}, nil)

	w := httptest.NewRecorder()
	handler.HealthHandler(w, httptest.NewRequest("POST", "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStatusHandler(t *testing.T) {
	watchdog := &stubWatchdog{
		status: interfaces.WatchdogStatus{
			ProjectID:     "proj-1",
			CheckInterval: "1m0s",
			ErrorCounts:   map[string]int{"api": 3},
		},
	}
	fetcher := &stubFetcher{services: []models.ServiceInfo{
		{ID: "svc-api", Name: "api", Status: models.DeploymentSuccess},
		{ID: "svc-worker", Name: "worker", Status: models.DeploymentCrashed},
	}}
	handler := newTestHandler(watchdog, fetcher, nil)

	w := httptest.NewRecorder()
	handler.StatusHandler(w, httptest.NewRequest("GET", "/api/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "proj-1", body["project_id"])
	assert.Equal(t, float64(2), body["services_monitored"])

	services := body["services"].([]interface{})
	first := services[0].(map[string]interface{})
	assert.Equal(t, "api", first["name"])
	assert.Equal(t, float64(3), first["errors_seen"])
}

func TestStatusHandler_ListFailure(t *testing.T) {
	fetcher := &stubFetcher{listErr: assert.AnError}
	handler := newTestHandler(&stubWatchdog{}, fetcher, nil)

	w := httptest.NewRecorder()
	handler.StatusHandler(w, httptest.NewRequest("GET", "/api/status", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCheckNowHandler(t *testing.T) {
	watchdog := &stubWatchdog{
		cycleResult: &models.CycleResult{
			Services: 2,
			Alerts:   []models.AlertEvent{{Service: "api", Kind: models.AlertKindLogError}},
		},
	}
	handler := newTestHandler(watchdog, &stubFetcher{}, nil)

	w := httptest.NewRecorder()
	handler.CheckNowHandler(w, httptest.NewRequest("POST", "/api/check-now", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, watchdog.triggered)
	body := decodeBody(t, w)
	assert.Equal(t, "check completed", body["status"])

	// GET is rejected.
	w = httptest.NewRecorder()
	handler.CheckNowHandler(w, httptest.NewRequest("GET", "/api/check-now", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestClearSeenHandler(t *testing.T) {
	watchdog := &stubWatchdog{clearedCount: 12}
	handler := newTestHandler(watchdog, &stubFetcher{}, nil)

	w := httptest.NewRecorder()
	handler.ClearSeenHandler(w, httptest.NewRequest("POST", "/api/clear-seen", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, watchdog.cleared)
	body := decodeBody(t, w)
	assert.Equal(t, float64(12), body["errors_cleared"])
}

func TestAlertsHandler(t *testing.T) {
	storage := &stubAlertStorage{alerts: []models.AlertRecord{
		{ID: "1", Service: "api", Kind: models.AlertKindCrash},
	}}
	handler := newTestHandler(&stubWatchdog{}, &stubFetcher{}, storage)

	w := httptest.NewRecorder()
	handler.AlertsHandler(w, httptest.NewRequest("GET", "/api/alerts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, storage.gotLimit, "default limit")
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	// Limit is parsed and capped at 500.
	w = httptest.NewRecorder()
	handler.AlertsHandler(w, httptest.NewRequest("GET", "/api/alerts?limit=9999", nil))
	assert.Equal(t, 500, storage.gotLimit)
}

func TestAlertsHandler_Delete(t *testing.T) {
	storage := &stubAlertStorage{alerts: []models.AlertRecord{{ID: "1"}, {ID: "2"}}}
	handler := newTestHandler(&stubWatchdog{}, &stubFetcher{}, storage)

	w := httptest.NewRecorder()
	handler.AlertsHandler(w, httptest.NewRequest("DELETE", "/api/alerts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, storage.purged)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["deleted"])

	// Other methods are rejected.
	w = httptest.NewRecorder()
	handler.AlertsHandler(w, httptest.NewRequest("PUT", "/api/alerts", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAlertsHandler_NoStorage(t *testing.T) {
	handler := newTestHandler(&stubWatchdog{}, &stubFetcher{}, nil)

	w := httptest.NewRecorder()
	handler.AlertsHandler(w, httptest.NewRequest("GET", "/api/alerts", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestVersionHandler(t *testing.T) {
	handler := newTestHandler(&stubWatchdog{}, &stubFetcher{}, nil)

	w := httptest.NewRecorder()
	handler.VersionHandler(w, httptest.NewRequest("GET", "/api/version", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["version"])
}
