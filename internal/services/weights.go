package services

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jstittsworth/streamer-hq/internal/models"
	"github.com/jstittsworth/streamer-hq/internal/nfl"
	"github.com/jstittsworth/streamer-hq/internal/streamer"
)

// WeightService serves the active weight table: built-in defaults with any
// stored per-position overrides applied row-wholesale. An empty table means
// pure defaults.
type WeightService struct {
	db *gorm.DB
}

// NewWeightService creates a weight store over the given database.
func NewWeightService(db *gorm.DB) *WeightService {
	return &WeightService{db: db}
}

// Weights returns the merged table the engine scores with.
func (s *WeightService) Weights(ctx context.Context) (streamer.WeightTable, error) {
	table := streamer.DefaultWeights()

	var rows []models.WeightSet
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load weight overrides: %w", err)
	}

	for _, row := range rows {
		pos, ok := nfl.ParsePosition(row.Position)
		if !ok {
			continue
		}
		override := make(map[string]float64, len(row.Weights))
		for metric, raw := range row.Weights {
			if v, ok := raw.(float64); ok {
				override[metric] = v
			}
		}
		if len(override) > 0 {
			table[pos] = override
		}
	}
	return table, nil
}

// Overrides lists the stored override rows as-is.
func (s *WeightService) Overrides(ctx context.Context) ([]models.WeightSet, error) {
	var rows []models.WeightSet
	err := s.db.WithContext(ctx).Order("position").Find(&rows).Error
	return rows, err
}

// SetPosition replaces one position's weight row.
func (s *WeightService) SetPosition(ctx context.Context, position string, weights map[string]float64, updatedBy string) error {
	pos, ok := nfl.ParsePosition(position)
	if !ok {
		return fmt.Errorf("unknown position %q", position)
	}
	if len(weights) == 0 {
		return fmt.Errorf("weight row for %s must not be empty", pos)
	}

	stored := datatypes.JSONMap{}
	for metric, v := range weights {
		stored[metric] = v
	}

	row := models.WeightSet{Position: string(pos), Weights: stored, UpdatedBy: updatedBy}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "position"}},
		DoUpdates: clause.AssignmentColumns([]string{"weights", "updated_by", "updated_at"}),
	}).Create(&row).Error
}

// ResetPosition removes the override for one position, restoring defaults.
func (s *WeightService) ResetPosition(ctx context.Context, position string) error {
	pos, ok := nfl.ParsePosition(position)
	if !ok {
		return fmt.Errorf("unknown position %q", position)
	}
	return s.db.WithContext(ctx).Where("position = ?", string(pos)).Delete(&models.WeightSet{}).Error
}
