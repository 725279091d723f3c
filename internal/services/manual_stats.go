package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jstittsworth/streamer-hq/internal/models"
	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// ManualStatService owns operator-entered stat rows. These are the highest
// precedence signal source: anything entered here overrides feed-derived
// values for the same metric.
type ManualStatService struct {
	db *gorm.DB
}

// NewManualStatService creates a manual stat store over the given database.
func NewManualStatService(db *gorm.DB) *ManualStatService {
	return &ManualStatService{db: db}
}

// ManualStats returns all entries for one week and mode keyed player key ->
// metric -> value. Non-numeric stat values are skipped rather than failing
// the whole fetch.
func (s *ManualStatService) ManualStats(ctx context.Context, week int, mode string) (map[string]map[string]float64, error) {
	var rows []models.ManualStatEntry
	if err := s.db.WithContext(ctx).
		Where("week = ? AND mode = ?", week, nfl.ParseMode(mode)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load manual stats week %d: %w", week, err)
	}

	out := make(map[string]map[string]float64, len(rows))
	for _, row := range rows {
		metrics := make(map[string]float64, len(row.Stats))
		for metric, raw := range row.Stats {
			if v, ok := raw.(float64); ok {
				metrics[metric] = v
			}
		}
		if len(metrics) > 0 {
			out[row.PlayerKey] = metrics
		}
	}
	return out, nil
}

// List returns the raw entry rows for one week and mode.
func (s *ManualStatService) List(ctx context.Context, week int, mode string) ([]models.ManualStatEntry, error) {
	var rows []models.ManualStatEntry
	err := s.db.WithContext(ctx).
		Where("week = ? AND mode = ?", week, nfl.ParseMode(mode)).
		Order("player_key").
		Find(&rows).Error
	return rows, err
}

// Upsert writes one entry, replacing any existing row for the same
// (player, week, mode).
func (s *ManualStatService) Upsert(ctx context.Context, entry *models.ManualStatEntry) error {
	entry.Mode = nfl.ParseMode(entry.Mode)
	if entry.PlayerKey == "" {
		return fmt.Errorf("manual stat entry requires a player key")
	}
	if entry.Week <= 0 {
		return fmt.Errorf("manual stat entry requires a positive week")
	}
	if len(entry.Stats) == 0 {
		return fmt.Errorf("manual stat entry requires at least one stat")
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_key"}, {Name: "week"}, {Name: "mode"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "note", "stats", "updated_at"}),
	}).Create(entry).Error
}

// Delete removes the entry for one (player, week, mode). Deleting a missing
// entry is not an error.
func (s *ManualStatService) Delete(ctx context.Context, playerKey string, week int, mode string) error {
	return s.db.WithContext(ctx).
		Where("player_key = ? AND week = ? AND mode = ?", playerKey, week, nfl.ParseMode(mode)).
		Delete(&models.ManualStatEntry{}).Error
}
