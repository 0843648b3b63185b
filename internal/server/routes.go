package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health and status
	mux.HandleFunc("/health", s.app.WatchdogHandler.HealthHandler)
	mux.HandleFunc("/api/status", s.app.WatchdogHandler.StatusHandler)
	mux.HandleFunc("/api/version", s.app.WatchdogHandler.VersionHandler)

	// Watchdog control
	mux.HandleFunc("/api/check-now", s.app.WatchdogHandler.CheckNowHandler)
	mux.HandleFunc("/api/clear-seen", s.app.WatchdogHandler.ClearSeenHandler)

	// Alert history
	mux.HandleFunc("/api/alerts", s.app.WatchdogHandler.AlertsHandler)

	// Scheduler job control
	mux.HandleFunc("/api/scheduler/jobs", s.app.SchedulerHandler.ListJobsHandler)
	mux.HandleFunc("/api/scheduler/jobs/", s.app.SchedulerHandler.JobActionHandler)

	// Live alert stream
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	return mux
}
