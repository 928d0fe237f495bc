package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ReportStoreFirestore = "firestore"
	ReportStoreMongo     = "mongo"
	ReportStoreMemory    = "memory"

	ImageStoreGCS   = "gcs"
	ImageStoreMinio = "minio"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string
	CORSOrigins []string

	ReportStore string
	ImageStore  string

	FirebaseProject        string
	ServiceAccountJSON     string
	ServiceAccountPath     string
	StorageBucket          string
	StorageFolder          string
	MinioEndpoint          string
	MinioAccessKey         string
	MinioSecretKey         string
	MinioBucket            string
	MinioUseSSL            bool
	MinioPublicURL         string
	MongoURI               string
	MongoDatabase          string
	MongoConnectTimeout    time.Duration
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	CacheTTL               time.Duration
	NatsURL                string
	NatsSubject            string
	UploadTimeout          time.Duration
	PersistenceTimeout     time.Duration
	MaxUploadSize          int64
	UploadRateLimitPerMin  int
	UploadRateLimitBurst   int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		ReportStore: strings.ToLower(getEnv("REPORT_STORE", ReportStoreFirestore)),
		ImageStore:  strings.ToLower(getEnv("IMAGE_STORE", ImageStoreGCS)),

		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		StorageFolder:      getEnv("STORAGE_FOLDER", "lost-and-found"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "campusfinder"),
		MinioUseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),

		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "campusfinder"),
		MongoConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsDuration("CACHE_TTL", time.Hour),

		NatsURL:     getEnv("NATS_URL", ""),
		NatsSubject: getEnv("NATS_SUBJECT", "campusfinder.reports.created"),

		UploadTimeout:         getEnvAsDuration("UPLOAD_TIMEOUT", 30*time.Second),
		PersistenceTimeout:    getEnvAsDuration("PERSISTENCE_TIMEOUT", 8*time.Second),
		MaxUploadSize:         getEnvAsInt64("MAX_UPLOAD_SIZE", 5*1024*1024),
		UploadRateLimitPerMin: getEnvAsInt("UPLOAD_RATE_LIMIT_PER_MIN", 30),
		UploadRateLimitBurst:  getEnvAsInt("UPLOAD_RATE_LIMIT_BURST", 10),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.ReportStore {
	case ReportStoreFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore report store")
		}
	case ReportStoreMongo, ReportStoreMemory:
	default:
		return fmt.Errorf("unknown REPORT_STORE %q", c.ReportStore)
	}

	switch c.ImageStore {
	case ImageStoreGCS:
		if c.StorageBucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for the gcs image store")
		}
	case ImageStoreMinio:
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio image store")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore)
	}

	if c.UploadTimeout <= 0 || c.PersistenceTimeout <= 0 {
		return fmt.Errorf("UPLOAD_TIMEOUT and PERSISTENCE_TIMEOUT must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	return int(getEnvAsInt64(key, int64(defaultValue)))
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
