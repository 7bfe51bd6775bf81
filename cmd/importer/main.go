package main

import (
	"context"
	"villa/config"
	"villa/di"
	"villa/shared/logger"

	"github.com/rs/zerolog/log"
)

// Runs one import pass over every active room with configured feeds.
// Intended to run on a schedule (cron, systemd timer).
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	importer := di.InitializeImporter()

	results, err := importer.ImportAll(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Feed import failed")
	}

	for _, result := range results {
		log.Info().
			Str("room_id", result.RoomID).
			Int("imported", result.Imported).
			Int("skipped", result.Skipped).
			Int("overlaps", result.Overlaps).
			Msg("Room feeds imported")
	}
}
