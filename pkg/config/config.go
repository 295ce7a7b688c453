package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tripdesk/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	MaxRequestSize  int

	DBReadTimeout  time.Duration
	DBWriteTimeout time.Duration

	AuthSecret string

	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool
	StoragePublicURL string
	PresignTTL       time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	PageLimit     int
	MaxUploadSize int64

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	// .env is a local-development convenience; absent in deployment.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:            getEnvStr(EnvPort, DefaultPort),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),
		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize:  getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		DBReadTimeout:  getEnvDuration(EnvDBReadTimeout, DefaultDBReadTimeout),
		DBWriteTimeout: getEnvDuration(EnvDBWriteTimeout, DefaultDBWriteTimeout),

		AuthSecret: getEnvStr(EnvAuthSecret, ""),

		StorageEndpoint:  getEnvStr(EnvStorageEndpoint, ""),
		StorageRegion:    getEnvStr(EnvStorageRegion, DefaultStorageRegion),
		StorageBucket:    getEnvStr(EnvStorageBucket, ""),
		StorageAccessKey: getEnvStr(EnvStorageAccessKey, ""),
		StorageSecretKey: getEnvStr(EnvStorageSecretKey, ""),
		StorageUseSSL:    getEnvBool(EnvStorageUseSSL, true),
		StoragePublicURL: getEnvStr(EnvStoragePublicURL, ""),
		PresignTTL:       getEnvDuration(EnvStoragePresign, DefaultPresignTTL),

		KafkaBrokers: getEnvList(EnvKafkaBrokers),
		KafkaTopic:   getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),

		PageLimit:     getEnvNum(EnvPageLimit, DefaultPageLimit),
		MaxUploadSize: int64(getEnvNum(EnvMaxUploadSize, DefaultMaxUploadSize)),

		Log: logger.New(logger.Options{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.FormatJSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.AuthSecret == "" {
		problems = append(problems, "AuthSecret cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"ReadTimeout":     cfg.ReadTimeout,
		"WriteTimeout":    cfg.WriteTimeout,
		"IdleTimeout":     cfg.IdleTimeout,
		"ShutdownTimeout": cfg.ShutdownTimeout,
		"RequestTimeout":  cfg.RequestTimeout,
		"DBReadTimeout":   cfg.DBReadTimeout,
		"DBWriteTimeout":  cfg.DBWriteTimeout,
		"PresignTTL":      cfg.PresignTTL,
	} {
		if d <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.MaxUploadSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxUploadSize must be positive, got: %d", cfg.MaxUploadSize))
	}
	if cfg.PageLimit <= 0 {
		problems = append(problems, fmt.Sprintf("PageLimit must be positive, got: %d", cfg.PageLimit))
	}

	if len(problems) > 0 {
		msg := "Configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"db_read_timeout", cfg.DBReadTimeout,
		"db_write_timeout", cfg.DBWriteTimeout,
		"auth_secret_set", cfg.AuthSecret != "",
		"storage_endpoint", cfg.StorageEndpoint,
		"storage_bucket", cfg.StorageBucket,
		"storage_configured", cfg.StorageConfigured(),
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"page_limit", cfg.PageLimit,
		"max_upload_size", cfg.MaxUploadSize,
	)
}

// StorageConfigured reports whether object storage credentials are present.
// Media operations degrade to no-ops without them.
func (cfg *Config) StorageConfigured() bool {
	return cfg.StorageEndpoint != "" && cfg.StorageBucket != "" &&
		cfg.StorageAccessKey != "" && cfg.StorageSecretKey != ""
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
