package main

import (
	"context"

	adminhandler "tripdesk/internal/admins/handler"
	adminrepository "tripdesk/internal/admins/repository"
	adminservice "tripdesk/internal/admins/service"
	categoryhandler "tripdesk/internal/categories/handler"
	categoryrepository "tripdesk/internal/categories/repository"
	categoryservice "tripdesk/internal/categories/service"
	categoryvalidator "tripdesk/internal/categories/validator"
	mediahandler "tripdesk/internal/media/handler"
	mediaservice "tripdesk/internal/media/service"
	settinghandler "tripdesk/internal/settings/handler"
	settingrepository "tripdesk/internal/settings/repository"
	settingservice "tripdesk/internal/settings/service"
	triphandler "tripdesk/internal/trips/handler"
	triprepository "tripdesk/internal/trips/repository"
	tripservice "tripdesk/internal/trips/service"
	tripvalidator "tripdesk/internal/trips/validator"
	"tripdesk/pkg/app"
	"tripdesk/pkg/config"
	dbmongo "tripdesk/pkg/db/mongo"
	"tripdesk/pkg/events"
	"tripdesk/pkg/storage"
)

const ServiceName = "tripdesk"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting TripDesk admin API")

	mongoClient, err := dbmongo.Connect(cfg.MongoURI, cfg.MongoConnTimeout)
	if err != nil {
		cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(cfg.ShutdownTimeout); err != nil {
			cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := adminrepository.EnsureIndexes(ctx, cfg, mongoClient.Client); err != nil {
		cfg.Log.Fatal("Failed to ensure admin indexes", "error", err)
	}

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
	categorySvc := categoryservice.NewCategoryService(
		categoryrepository.NewMongoCategoryRepository(cfg, mongoClient.Client),
		categoryvalidator.NewCategoryValidator(cfg.Log),
		store,
		cfg,
	)
	adminSvc := adminservice.NewAdminService(
		adminrepository.NewMongoAdminRepository(cfg, mongoClient.Client),
		cfg,
	)
	settingSvc := settingservice.NewSettingService(
		settingrepository.NewMongoSettingRepository(cfg, mongoClient.Client),
		store,
		cfg,
	)
	mediaSvc := mediaservice.NewMediaService(
		store,
		mediaservice.NewImageProcessor(config.MaxImageDimension, config.DefaultImageQuality),
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(mongoClient.Client, adminSvc,
		triphandler.NewTripHandler(tripSvc, cfg),
		categoryhandler.NewCategoryHandler(categorySvc, cfg),
		adminhandler.NewAdminHandler(adminSvc, cfg),
		settinghandler.NewSettingHandler(settingSvc, cfg),
		mediahandler.NewMediaHandler(mediaSvc, cfg),
	)
	serverApp.Run()
}
