package watchdog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/common"
	"github.com/ternarybob/vigil/internal/interfaces"
	"github.com/ternarybob/vigil/internal/models"
)

// Service is the poll cycle orchestrator. It owns the seen-set and the
// single execution gate through which every cycle and every clear runs.
//
// Gate policy: scheduled ticks coalesce (a tick arriving while a cycle is in
// progress is dropped and the next tick covers it); manual triggers and
// clears block on the gate and run exactly once after the current cycle
// finishes. Two cycles can never mutate the seen-set concurrently.
type Service struct {
	config       *common.Config
	fetcher      interfaces.SnapshotFetcher
	notifier     interfaces.Notifier
	alertStorage interfaces.AlertStorage
	eventService interfaces.EventService
	logger       arbor.ILogger

	seen *SeenSet

	// gateMu serializes RunCycle and ClearSeen
	gateMu sync.Mutex

	statusMu    sync.RWMutex
	lastCheck   *time.Time
	lastResult  *models.CycleResult
	errorCounts map[string]int
	running     bool
}

// NewService creates a watchdog service. The notifier and alert storage may
// be nil; alerts are then only logged and counted.
func NewService(config *common.Config, fetcher interfaces.SnapshotFetcher, notifier interfaces.Notifier, alertStorage interfaces.AlertStorage, eventService interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		config:       config,
		fetcher:      fetcher,
		notifier:     notifier,
		alertStorage: alertStorage,
		eventService: eventService,
		logger:       logger,
		seen:         NewSeenSet(),
		errorCounts:  make(map[string]int),
	}
}

// RunCycle executes one complete poll-fetch-fingerprint-alert pass. It always
// returns a result; per-service fetch failures are recorded in the result and
// a total listing failure is carried in result.Error. Nothing escapes the
// cycle boundary.
func (s *Service) RunCycle(ctx context.Context) *models.CycleResult {
	s.gateMu.Lock()
	defer s.gateMu.Unlock()

	return s.runCycleLocked(ctx)
}

// RunScheduled is the scheduler entry point. If a cycle is already in
// progress the tick is dropped; the next scheduled tick covers it.
func (s *Service) RunScheduled(ctx context.Context) error {
	if !s.gateMu.TryLock() {
		s.logger.Debug().Msg("Cycle already in progress, skipping scheduled tick")
		return nil
	}
	defer s.gateMu.Unlock()

	result := s.runCycleLocked(ctx)
	if result.Error != "" {
		return fmt.Errorf("scheduled cycle failed: %s", result.Error)
	}
	return nil
}

// TriggerNow requests an immediate cycle, waiting for any in-progress cycle
// to finish first.
func (s *Service) TriggerNow(ctx context.Context) *models.CycleResult {
	s.logger.Info().Msg("Manual check triggered")

	if s.eventService != nil {
		_ = s.eventService.Publish(ctx, interfaces.Event{Type: interfaces.EventCheckTriggered})
	}

	return s.RunCycle(ctx)
}

// ClearSeen empties the seen-set and per-service error counts. It serializes
// through the same gate as RunCycle, so it never interleaves with a cycle.
func (s *Service) ClearSeen(ctx context.Context) int {
	s.gateMu.Lock()
	defer s.gateMu.Unlock()

	cleared := s.seen.Clear()

	s.statusMu.Lock()
	s.errorCounts = make(map[string]int)
	s.statusMu.Unlock()

	s.logger.Info().Int("cleared", cleared).Msg("Seen errors cleared, existing errors will re-alert")

	if s.eventService != nil {
		_ = s.eventService.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventSeenCleared,
			Payload: map[string]interface{}{"cleared": cleared},
		})
	}

	return cleared
}

// SeenCount returns the current seen-set size
func (s *Service) SeenCount() int {
	return s.seen.Size()
}

// Status returns a snapshot of watchdog state for status reporting
func (s *Service) Status() interfaces.WatchdogStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()

	counts := make(map[string]int, len(s.errorCounts))
	for k, v := range s.errorCounts {
		counts[k] = v
	}

	return interfaces.WatchdogStatus{
		ProjectID:     s.config.Railway.ProjectID,
		CheckInterval: s.config.Watchdog.CheckInterval.String(),
		LastCheck:     s.lastCheck,
		SeenCount:     s.seen.Size(),
		ErrorCounts:   counts,
		CycleRunning:  s.running,
	}
}

// LastResult returns the most recent cycle result, or nil before the first cycle
func (s *Service) LastResult() *models.CycleResult {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.lastResult
}

// runCycleLocked does the actual cycle work. Caller holds gateMu.
func (s *Service) runCycleLocked(ctx context.Context) *models.CycleResult {
	result := &models.CycleResult{StartedAt: time.Now()}

	s.setRunning(true)
	defer s.setRunning(false)

	services, err := s.fetcher.ListServices(ctx)
	if err != nil {
		result.Error = err.Error()
		result.CompletedAt = time.Now()
		s.logger.Error().Err(err).Msg("Check failed: could not list services")
		s.finishCycle(result)
		return result
	}
	result.Services = len(services)

	snapshots := s.collectSnapshots(ctx, services, result)

	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}
		s.evaluateSnapshot(snapshot, result)
	}

	s.dispatchAlerts(ctx, result)

	result.CompletedAt = time.Now()
	s.finishCycle(result)

	s.logger.Info().
		Int("services", result.Services).
		Int("new_alerts", result.NewAlerts()).
		Int("failures", len(result.Failures)).
		Dur("duration", result.CompletedAt.Sub(result.StartedAt)).
		Msg("Check complete")

	if s.eventService != nil {
		_ = s.eventService.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventCycleCompleted,
			Payload: result,
		})
	}

	return result
}

// collectSnapshots fetches per-service snapshots concurrently. The returned
// slice preserves the service listing order so alert ordering stays
// deterministic; a failed fetch leaves a nil slot and a recorded failure.
func (s *Service) collectSnapshots(ctx context.Context, services []models.ServiceInfo, result *models.CycleResult) []*models.ServiceSnapshot {
	snapshots := make([]*models.ServiceSnapshot, len(services))

	var wg sync.WaitGroup
	var failMu sync.Mutex

	for i, svc := range services {
		if s.isSelf(svc.Name) {
			continue
		}

		wg.Add(1)
		go func(i int, svc models.ServiceInfo) {
			defer wg.Done()

			snapshot, err := s.fetcher.FetchSnapshot(ctx, svc)
			if err != nil {
				s.logger.Warn().
					Str("service", svc.Name).
					Err(err).
					Msg("Failed to fetch snapshot, skipping service for this cycle")

				failMu.Lock()
				result.Failures = append(result.Failures, models.ServiceFailure{
					Service: svc.Name,
					Error:   err.Error(),
				})
				failMu.Unlock()
				return
			}
			snapshots[i] = snapshot
		}(i, svc)
	}

	wg.Wait()
	return snapshots
}

// evaluateSnapshot partitions one snapshot's signals into new-vs-seen,
// appending new events in input order: crash state first, then error log
// entries in the order received.
func (s *Service) evaluateSnapshot(snapshot *models.ServiceSnapshot, result *models.CycleResult) {
	svc := snapshot.Service

	if svc.Status.IsCrashed() {
		fp := CrashFingerprint(svc.ID)
		if s.seen.CheckAndMark(fp) {
			result.Alerts = append(result.Alerts, models.AlertEvent{
				Service:     svc.Name,
				Kind:        models.AlertKindCrash,
				Fingerprint: string(fp),
				Message:     fmt.Sprintf("deployment %s is CRASHED", svc.DeploymentID),
				Timestamp:   time.Now(),
			})
			s.bumpCount(svc.Name)
		}
	}

	for _, entry := range snapshot.Logs {
		if !entry.IsError() {
			continue
		}

		fp := LogFingerprint(svc.ID, Normalize(entry.Message))
		if !s.seen.CheckAndMark(fp) {
			continue
		}

		result.Alerts = append(result.Alerts, models.AlertEvent{
			Service:     svc.Name,
			Kind:        models.AlertKindLogError,
			Fingerprint: string(fp),
			Message:     truncate(entry.Message, s.config.Watchdog.MaxMessageLength),
			Timestamp:   entry.Timestamp,
		})
		s.bumpCount(svc.Name)
	}
}

// dispatchAlerts hands new events to the notifier and alert history storage.
// Delivery is at-most-once: a failed post is logged and the fingerprint stays
// seen.
func (s *Service) dispatchAlerts(ctx context.Context, result *models.CycleResult) {
	if len(result.Alerts) == 0 {
		return
	}

	for i := range result.Alerts {
		event := &result.Alerts[i]

		if s.alertStorage != nil {
			record := &models.AlertRecord{
				ID:          uuid.New().String(),
				Service:     event.Service,
				Kind:        event.Kind,
				Fingerprint: event.Fingerprint,
				Message:     event.Message,
				CreatedAt:   time.Now(),
			}
			if err := s.alertStorage.SaveAlert(ctx, record); err != nil {
				s.logger.Warn().Err(err).Str("service", event.Service).Msg("Failed to persist alert record")
			}
		}

		if s.eventService != nil {
			_ = s.eventService.Publish(ctx, interfaces.Event{
				Type:    interfaces.EventAlertRaised,
				Payload: *event,
			})
		}
	}

	if s.notifier == nil {
		return
	}

	for _, message := range FormatAlertMessages(result.Alerts, s.config.Watchdog.BatchThreshold) {
		if err := s.notifier.PostAlert(ctx, message.Type, message.Text); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to post alert to war room")
		}
	}
}

func (s *Service) finishCycle(result *models.CycleResult) {
	now := time.Now()
	s.statusMu.Lock()
	s.lastCheck = &now
	s.lastResult = result
	s.statusMu.Unlock()
}

func (s *Service) setRunning(running bool) {
	s.statusMu.Lock()
	s.running = running
	s.statusMu.Unlock()
}

func (s *Service) bumpCount(serviceName string) {
	s.statusMu.Lock()
	s.errorCounts[serviceName]++
	s.statusMu.Unlock()
}

func (s *Service) isSelf(serviceName string) bool {
	self := s.config.Railway.SelfServiceName
	return self != "" && strings.EqualFold(serviceName, self)
}

// truncate caps msg at max bytes, backing up to a rune boundary so the
// result is always valid UTF-8.
func truncate(msg string, max int) string {
	if max <= 0 || len(msg) <= max {
		return msg
	}
	for max > 0 && !utf8.RuneStart(msg[max]) {
		max--
	}
	return msg[:max]
}
