package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppMode string

	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string
	PresignTTL   time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	Upload UploadConfig
}

// UploadConfig carries the numeric upload tuning knobs. Defaults mirror the
// production deployment: 1.5 GiB cap, 100 MiB multipart threshold, 8 MiB parts.
type UploadConfig struct {
	MaxFileSize             int64
	LargeFileThreshold      int64
	PartSize                int64
	PartConcurrency         int
	MaxConcurrentLargeFiles int
	TempDir                 string
	TempMaxAge              time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		AppMode:       getEnv("APP_MODE", "debug"),
		S3Region:      getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET_NAME", ""),
		S3AccessKey:   getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3PublicBase:  getEnv("S3_PUBLIC_BASE_URL", ""),
		PresignTTL:    time.Duration(getEnvAsInt("PRESIGN_TTL_SECONDS", 3600)) * time.Second,
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		Upload: UploadConfig{
			MaxFileSize:             getEnvAsInt64("MAX_FILE_SIZE", 1610612736),                // 1.5GB
			LargeFileThreshold:      getEnvAsInt64("LARGE_FILE_THRESHOLD_BYTES", 104857600),    // 100MB
			PartSize:                getEnvAsInt64("MULTIPART_PART_SIZE_BYTES", 8388608),       // 8MB
			PartConcurrency:         getEnvAsInt("MULTIPART_PART_CONCURRENCY", 3),
			MaxConcurrentLargeFiles: getEnvAsInt("MAX_CONCURRENT_LARGE_UPLOADS", 2),
			TempDir:                 getEnv("TEMP_UPLOAD_DIR", "temp-uploads"),
			TempMaxAge:              time.Duration(getEnvAsInt("TEMP_MAX_AGE_MINUTES", 60)) * time.Minute,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return fallback
}
