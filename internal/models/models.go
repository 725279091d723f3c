package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ManualStatEntry is one operator-entered stat row: a bundle of metric
// values for one player in one scoring week and mode. Stats is a flat
// metric-name -> number object.
type ManualStatEntry struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	PlayerKey string            `gorm:"index:idx_manual_player_week,unique;not null" json:"player_key"`
	Week      int               `gorm:"index:idx_manual_player_week,unique;not null" json:"week"`
	Mode      string            `gorm:"index:idx_manual_player_week,unique;not null;default:weekly" json:"mode"`
	Position  string            `json:"position"`
	Note      string            `json:"note,omitempty"`
	Stats     datatypes.JSONMap `gorm:"type:jsonb" json:"stats"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// WeightSet is one stored per-position weight override row. Absence of a row
// for a position means the built-in defaults apply.
type WeightSet struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Position  string            `gorm:"uniqueIndex;not null" json:"position"`
	Weights   datatypes.JSONMap `gorm:"type:jsonb" json:"weights"`
	UpdatedBy string            `json:"updated_by,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RefreshLog records every scoring run for the admin dashboard.
type RefreshLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SnapshotID string    `gorm:"index" json:"snapshot_id"`
	Week       int       `json:"week"`
	Mode       string    `json:"mode"`
	Trigger    string    `json:"trigger"`
	Degraded   bool      `json:"degraded"`
	Players    int       `json:"players"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ManualStatEntry{},
		&WeightSet{},
		&RefreshLog{},
	)
}
