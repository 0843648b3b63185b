package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/interfaces"
	"github.com/ternarybob/vigil/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AlertStorage implements the AlertStorage interface for Badger. Records are
// alert history only; the in-memory seen-set is the source of truth for
// deduplication.
type AlertStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAlertStorage creates a new AlertStorage instance
func NewAlertStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AlertStorage {
	return &AlertStorage{
		db:     db,
		logger: logger,
	}
}

// SaveAlert persists one alert record
func (s *AlertStorage) SaveAlert(ctx context.Context, record *models.AlertRecord) error {
	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// ListAlerts returns the most recent alerts, newest first
func (s *AlertStorage) ListAlerts(ctx context.Context, limit int) ([]models.AlertRecord, error) {
	var alerts []models.AlertRecord

	query := &badgerhold.Query{}
	query = query.SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := s.db.Store().Find(&alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// CountsByService returns total alerts recorded per service name
func (s *AlertStorage) CountsByService(ctx context.Context) (map[string]int, error) {
	var alerts []models.AlertRecord
	if err := s.db.Store().Find(&alerts, nil); err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	counts := make(map[string]int)
	for _, alert := range alerts {
		counts[alert.Service]++
	}
	return counts, nil
}

// DeleteAll removes all alert history, returning the number deleted
func (s *AlertStorage) DeleteAll(ctx context.Context) (int, error) {
	var alerts []models.AlertRecord
	if err := s.db.Store().Find(&alerts, nil); err != nil {
		return 0, fmt.Errorf("failed to enumerate alerts: %w", err)
	}

	deleted := 0
	for _, alert := range alerts {
		if err := s.db.Store().Delete(alert.ID, &models.AlertRecord{}); err != nil {
			s.logger.Warn().Err(err).Str("id", alert.ID).Msg("Failed to delete alert record")
			continue
		}
		deleted++
	}

	return deleted, nil
}
