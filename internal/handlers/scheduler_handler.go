package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/interfaces"
)

// SchedulerHandler exposes scheduler job control over HTTP
type SchedulerHandler struct {
	scheduler interfaces.SchedulerService
	logger    arbor.ILogger
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(scheduler interfaces.SchedulerService, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// ListJobsHandler handles GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.scheduler.IsRunning(),
		"jobs":    h.scheduler.GetAllJobStatuses(),
	})
}

// JobActionHandler handles POST /api/scheduler/jobs/{name}/{enable|disable|trigger}
// and GET /api/scheduler/jobs/{name}
func (h *SchedulerHandler) JobActionHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/scheduler/jobs/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "job name required")
		return
	}
	name := parts[0]

	if len(parts) == 1 {
		if !RequireMethod(w, r, "GET") {
			return
		}
		status, err := h.scheduler.GetJobStatus(name)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, status)
		return
	}

	if !RequireMethod(w, r, "POST") {
		return
	}

	var err error
	var message string
	action := parts[1]
	switch action {
	case "enable":
		err = h.scheduler.EnableJob(name)
		message = "job enabled"
	case "disable":
		err = h.scheduler.DisableJob(name)
		message = "job disabled"
	case "trigger":
		err = h.scheduler.TriggerJob(name)
		message = "job triggered"
	default:
		WriteError(w, http.StatusBadRequest, "unknown action: "+action)
		return
	}

	if err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	WriteSuccess(w, message)
}
