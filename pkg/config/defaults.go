package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tripdesk"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort            = "8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxRequestSize  = 1 << 20 // 1MB for JSON bodies; uploads have their own limit

	DefaultDBReadTimeout  = 5 * time.Second
	DefaultDBWriteTimeout = 10 * time.Second

	DefaultLogLevel = "info"

	DefaultStorageRegion  = "us-east-1"
	DefaultPresignTTL     = time.Hour
	DefaultKafkaTopic     = "trip-events"
	DefaultPageLimit      = 30
	DefaultMaxUploadSize  = 4 << 20 // matches the 4MB hosting limit the UI was built around
	MaxImageDimension     = 1920
	DefaultImageQuality   = 80
	VideoKeyPrefix        = "videos/"
)
