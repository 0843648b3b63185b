package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/common"
	"github.com/ternarybob/vigil/internal/interfaces"
)

// WatchdogHandler handles the health/status/trigger/clear HTTP surface. It
// translates requests into watchdog service calls; all serialization and
// dedup logic lives in the service.
type WatchdogHandler struct {
	watchdog     interfaces.WatchdogService
	fetcher      interfaces.SnapshotFetcher
	alertStorage interfaces.AlertStorage
	config       *common.Config
	logger       arbor.ILogger
}

// NewWatchdogHandler creates a new WatchdogHandler
func NewWatchdogHandler(watchdog interfaces.WatchdogService, fetcher interfaces.SnapshotFetcher, alertStorage interfaces.AlertStorage, config *common.Config, logger arbor.ILogger) *WatchdogHandler {
	return &WatchdogHandler{
		watchdog:     watchdog,
		fetcher:      fetcher,
		alertStorage: alertStorage,
		config:       config,
		logger:       logger,
	}
}

// HealthHandler handles GET /health
func (h *WatchdogHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := h.watchdog.Status()

	var lastCheck interface{}
	if status.LastCheck != nil {
		lastCheck = status.LastCheck.Format(time.RFC3339)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":                  "healthy",
		"watchdog_running":        true,
		"cycle_in_progress":       status.CycleRunning,
		"last_check":              lastCheck,
		"errors_tracked":          status.SeenCount,
		"error_counts_by_service": status.ErrorCounts,
		"goroutines_spawned":      common.GetGoroutineCount(),
	})
}

// StatusHandler handles GET /api/status with a live view of monitored services
func (h *WatchdogHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := h.watchdog.Status()

	services, err := h.fetcher.ListServices(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Status: failed to list services")
		WriteError(w, http.StatusBadGateway, "failed to list services: "+err.Error())
		return
	}

	serviceViews := make([]map[string]interface{}, 0, len(services))
	for _, svc := range services {
		serviceViews = append(serviceViews, map[string]interface{}{
			"name":        svc.Name,
			"status":      svc.Status,
			"errors_seen": status.ErrorCounts[svc.Name],
		})
	}

	var lastCheck interface{}
	if status.LastCheck != nil {
		lastCheck = status.LastCheck.Format(time.RFC3339)
	}

	// Persisted totals survive restarts, unlike the in-memory counts above
	var alertTotals map[string]int
	if h.alertStorage != nil {
		if totals, err := h.alertStorage.CountsByService(r.Context()); err == nil {
			alertTotals = totals
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"project_id":         status.ProjectID,
		"services_monitored": len(services),
		"services":           serviceViews,
		"check_interval":     status.CheckInterval,
		"last_check":         lastCheck,
		"last_cycle":         h.watchdog.LastResult(),
		"alert_totals":       alertTotals,
	})
}

// CheckNowHandler handles POST /api/check-now, running a cycle synchronously
func (h *WatchdogHandler) CheckNowHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	result := h.watchdog.TriggerNow(r.Context())

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "check completed",
		"result": result,
	})
}

// ClearSeenHandler handles POST /api/clear-seen
func (h *WatchdogHandler) ClearSeenHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	cleared := h.watchdog.ClearSeen(r.Context())

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "cleared",
		"errors_cleared": cleared,
	})
}

// AlertsHandler handles GET /api/alerts?limit=N (history) and DELETE
// /api/alerts (purge history). Purging history does not touch the seen-set.
func (h *WatchdogHandler) AlertsHandler(w http.ResponseWriter, r *http.Request) {
	if h.alertStorage == nil {
		WriteError(w, http.StatusServiceUnavailable, "alert history storage not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit := GetLimitParam(r, 50, 500)
		alerts, err := h.alertStorage.ListAlerts(r.Context(), limit)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to list alerts")
			WriteError(w, http.StatusInternalServerError, "failed to list alerts")
			return
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"alerts": alerts,
			"count":  len(alerts),
		})

	case http.MethodDelete:
		deleted, err := h.alertStorage.DeleteAll(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to delete alert history")
			WriteError(w, http.StatusInternalServerError, "failed to delete alert history")
			return
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "deleted",
			"deleted": deleted,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// VersionHandler handles GET /api/version
func (h *WatchdogHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}
