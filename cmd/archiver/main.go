// Command archiver is the one-shot batch job behind the daily cron: it
// archives past trips without active reservations, then purges archived trips
// that never accumulated reservation history.
package main

import (
	"context"
	"flag"

	triprepository "tripdesk/internal/trips/repository"
	tripservice "tripdesk/internal/trips/service"
	tripvalidator "tripdesk/internal/trips/validator"
	"tripdesk/pkg/config"
	dbmongo "tripdesk/pkg/db/mongo"
	"tripdesk/pkg/events"
	"tripdesk/pkg/storage"
)

const ServiceName = "archiver"

func main() {
	skipPurge := flag.Bool("skip-purge", false, "archive past trips but leave archived trips in place")
	flag.Parse()

	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting archival run", "skip_purge", *skipPurge)

	mongoClient, err := dbmongo.Connect(cfg.MongoURI, cfg.MongoConnTimeout)
	if err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(cfg.ShutdownTimeout); err != nil {
			cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	store, err := storage.NewS3Store(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize object storage", "error", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Log)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	tripSvc := tripservice.NewTripService(
		triprepository.NewMongoTripRepository(cfg, mongoClient.Client),
		tripvalidator.NewTripValidator(cfg.Log),
		store,
		publisher,
		cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	archiveReport, err := tripSvc.ArchivePast(ctx)
	if err != nil {
		cfg.Log.Fatal("Archival pass failed", "error", err)
	}
	cfg.Log.Info("Archival pass finished",
		"archived", archiveReport.ArchivedCount,
		"skipped", archiveReport.SkippedCount,
		"total_checked", archiveReport.TotalChecked,
	)

	if *skipPurge {
		return
	}

	purgeReport, err := tripSvc.PurgeArchived(ctx)
	if err != nil {
		cfg.Log.Fatal("Purge pass failed", "error", err)
	}
	cfg.Log.Info("Purge pass finished",
		"deleted", purgeReport.DeletedCount,
		"images_deleted", purgeReport.ImagesDeleted,
	)
}
