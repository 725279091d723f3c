package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jstittsworth/streamer-hq/internal/models"
	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// RefreshLogService persists one audit row per scoring run.
type RefreshLogService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRefreshLogService creates the audit writer.
func NewRefreshLogService(db *gorm.DB, logger *logrus.Logger) *RefreshLogService {
	return &RefreshLogService{db: db, logger: logger}
}

// RecordRefresh writes the audit row. Failures are logged, never propagated;
// auditing must not break the refresh path.
func (s *RefreshLogService) RecordRefresh(ctx context.Context, snap *nfl.Snapshot, trigger string, took time.Duration, runErr error) {
	row := models.RefreshLog{
		Trigger:    trigger,
		DurationMs: took.Milliseconds(),
	}
	if snap != nil {
		row.SnapshotID = snap.ID
		row.Week = snap.Week
		row.Mode = snap.Mode
		row.Degraded = snap.Degraded
		row.Players = len(snap.Players)
	}
	if runErr != nil {
		row.Error = runErr.Error()
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.logger.WithField("component", "refresh-log").WithError(err).Warn("Failed to record refresh")
	}
}

// Recent returns the latest audit rows, newest first.
func (s *RefreshLogService) Recent(ctx context.Context, limit int) ([]models.RefreshLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.RefreshLog
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
