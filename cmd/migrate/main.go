package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/jstittsworth/streamer-hq/internal/models"
	"github.com/jstittsworth/streamer-hq/internal/nfl"
	"github.com/jstittsworth/streamer-hq/internal/streamer"
	"github.com/jstittsworth/streamer-hq/pkg/config"
	"github.com/jstittsworth/streamer-hq/pkg/database"
)

// Usage: migrate [up|seed|down]
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := models.Migrate(db.DB); err != nil {
			logger.WithError(err).Fatal("Migration failed")
		}
		logger.Info("Migrations applied")

	case "seed":
		if err := models.Migrate(db.DB); err != nil {
			logger.WithError(err).Fatal("Migration failed")
		}
		if err := seedWeights(db); err != nil {
			logger.WithError(err).Fatal("Seed failed")
		}
		logger.Info("Default weights seeded")

	case "down":
		if err := db.DB.Migrator().DropTable(
			&models.ManualStatEntry{},
			&models.WeightSet{},
			&models.RefreshLog{},
		); err != nil {
			logger.WithError(err).Fatal("Drop failed")
		}
		logger.Info("Tables dropped")

	default:
		logger.Fatalf("Unknown command %q (want up, seed, or down)", cmd)
	}
}

// seedWeights writes the built-in defaults as explicit override rows so
// operators can inspect and tweak them from the weights API.
func seedWeights(db *database.DB) error {
	defaults := streamer.DefaultWeights()
	for _, pos := range nfl.FantasyPositions {
		row := defaults[pos]
		stored := datatypes.JSONMap{}
		for metric, w := range row {
			stored[metric] = w
		}
		set := models.WeightSet{Position: string(pos), Weights: stored, UpdatedBy: "seed"}
		if err := db.DB.Where("position = ?", string(pos)).
			Assign(models.WeightSet{Weights: stored, UpdatedBy: "seed"}).
			FirstOrCreate(&set).Error; err != nil {
			return err
		}
	}
	return nil
}
