package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snap-point/fieldtrack/geo"
)

// Config holds every runtime setting of the service.
type Config struct {
	Port      string
	PublicURL string

	Database DatabaseConfig
	Storage  StorageConfig
	Location LocationConfig
	Routing  RoutingConfig
	Upload   UploadConfig
}

type LocationConfig struct {
	Driver string // memory | redis
	MaxAge time.Duration
	Redis  RedisConfig

	// Sensor parameters handed to clients.
	HighAccuracy  bool
	SensorTimeout time.Duration
	SensorMaxAge  time.Duration
}

type RoutingConfig struct {
	Enabled     bool
	BaseURL     string
	Profile     string
	Timeout     time.Duration
	Concurrency int
}

type UploadConfig struct {
	MaxFileBytes      int64
	MaxFilesPerUpload int
	AllowedExtensions []string
	MinDistance       float64
}

// Load reads the configuration from the environment. Call godotenv.Load first
// if a .env file should be honoured.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		PublicURL: strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		Database:  GetDatabaseConfig(),
		Storage:   GetStorageConfig(),
		Location: LocationConfig{
			Driver:        getEnv("LOCATION_DRIVER", "memory"),
			MaxAge:        getEnvDuration("LOCATION_MAX_AGE", 5*time.Minute),
			Redis:         GetRedisConfig(),
			HighAccuracy:  true,
			SensorTimeout: 5 * time.Second,
			SensorMaxAge:  0,
		},
		Routing: RoutingConfig{
			Enabled:     getEnvBool("ROUTING_ENABLED", true),
			BaseURL:     strings.TrimRight(getEnv("ROUTING_URL", "https://router.project-osrm.org"), "/"),
			Profile:     getEnv("ROUTING_PROFILE", "driving"),
			Timeout:     getEnvDuration("ROUTING_TIMEOUT", 5*time.Second),
			Concurrency: getEnvInt("ROUTING_CONCURRENCY", 4),
		},
		Upload: UploadConfig{
			MaxFileBytes:      int64(getEnvInt("MAX_FILE_BYTES", 10*1024*1024)),
			MaxFilesPerUpload: getEnvInt("MAX_FILES_PER_UPLOAD", 10),
			AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".jpg", ".jpeg", ".png"},
			MinDistance:       getEnvFloat("MIN_UPLOAD_DISTANCE", geo.MinUploadDistance),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := time.ParseDuration(value); err == nil {
			return v
		}
	}
	return fallback
}
