package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort            = "PORT"
	EnvReadTimeout     = "HTTP_READ_TIMEOUT"
	EnvWriteTimeout    = "HTTP_WRITE_TIMEOUT"
	EnvIdleTimeout     = "HTTP_IDLE_TIMEOUT"
	EnvShutdownTimeout = "HTTP_SHUTDOWN_TIMEOUT"
	EnvRequestTimeout  = "HTTP_REQUEST_TIMEOUT"
	EnvMaxRequestSize  = "HTTP_MAX_REQUEST_SIZE"

	EnvDBReadTimeout  = "DB_READ_TIMEOUT"
	EnvDBWriteTimeout = "DB_WRITE_TIMEOUT"

	EnvLogLevel = "LOG_LEVEL"

	EnvAuthSecret = "AUTH_JWT_SECRET"

	EnvStorageEndpoint  = "STORAGE_ENDPOINT"
	EnvStorageRegion    = "STORAGE_REGION"
	EnvStorageBucket    = "STORAGE_BUCKET"
	EnvStorageAccessKey = "STORAGE_ACCESS_KEY"
	EnvStorageSecretKey = "STORAGE_SECRET_KEY"
	EnvStorageUseSSL    = "STORAGE_USE_SSL"
	EnvStoragePublicURL = "STORAGE_PUBLIC_URL"
	EnvStoragePresign   = "STORAGE_PRESIGN_TTL"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvKafkaTopic   = "KAFKA_TRIP_EVENTS_TOPIC"

	EnvPageLimit     = "DEFAULT_PAGE_LIMIT"
	EnvMaxUploadSize = "MAX_UPLOAD_SIZE"
)
