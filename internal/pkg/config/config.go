package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Media    MediaConfig
	Identity IdentityConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Cleanup  CleanupConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	BodyLimit    int    // bytes
	AllowOrigins string // comma-separated CORS origins; empty allows none
}

type MediaConfig struct {
	FFmpegPath    string
	FFprobePath   string
	WatermarkPath string
	JPEGQuality   int
	// Watermark geometry; the defaults reproduce the studio stamp.
	WatermarkSize    float64 // fraction of the image diagonal
	WatermarkOpacity float64
	WatermarkAngle   float64 // degrees, counter-clockwise
	WatermarkStride  float64 // fraction of the watermark size
	JobTimeout       time.Duration
	Workers          int
}

type IdentityConfig struct {
	Organization string
	Author       string
	Contact      string
	ProjectLabel string
	Copyright    string
}

type StorageConfig struct {
	Driver    string // none, local, s3
	ExportDir string
	Bucket    string
	Region    string
	Prefix    string
}

type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      string
	JobKey    string
	ResultKey string
}

type CleanupConfig struct {
	Dirs     []string
	MaxAge   time.Duration
	Schedule string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	StorageNone  = "none"
	StorageLocal = "local"
	StorageS3    = "s3"
)

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "3000"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			BodyLimit:    getEnvAsInt("SERVER_BODY_LIMIT", 4*1024*1024),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", ""),
		},
		Media: MediaConfig{
			FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath:      getEnv("FFPROBE_PATH", "ffprobe"),
			WatermarkPath:    getEnv("WATERMARK_PATH", "assets/watermark.png"),
			JPEGQuality:      getEnvAsInt("JPEG_QUALITY", 95),
			WatermarkSize:    getEnvAsFloat("WATERMARK_SIZE", 0.18),
			WatermarkOpacity: getEnvAsFloat("WATERMARK_OPACITY", 0.4),
			WatermarkAngle:   getEnvAsFloat("WATERMARK_ANGLE", 45),
			WatermarkStride:  getEnvAsFloat("WATERMARK_STRIDE", 0.9),
			JobTimeout:       getEnvAsDuration("MEDIA_JOB_TIMEOUT", 30*time.Minute),
			Workers:          getEnvAsInt("MEDIA_WORKERS", 1),
		},
		Identity: IdentityConfig{
			Organization: getEnv("IDENTITY_ORGANIZATION", "MediaStamp Studio"),
			Author:       getEnv("IDENTITY_AUTHOR", "MediaStamp Studio"),
			Contact:      getEnv("IDENTITY_CONTACT", "Contact: studio@mediastamp.example"),
			ProjectLabel: getEnv("IDENTITY_PROJECT_LABEL", "Graphic design project"),
			Copyright:    getEnv("IDENTITY_COPYRIGHT", "© 2024 MediaStamp Studio"),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(getEnv("STORAGE_DRIVER", StorageNone)),
			ExportDir: getEnv("STORAGE_EXPORT_DIR", "exports"),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Prefix:    getEnv("S3_PREFIX", "media-stamp"),
		},
		Redis: RedisConfig{
			Enabled:   getEnvAsBool("REDIS_ENABLED", false),
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			JobKey:    getEnv("REDIS_JOB_KEY", "media_job_queue"),
			ResultKey: getEnv("REDIS_RESULT_KEY", "media_processed_queue"),
		},
		Cleanup: CleanupConfig{
			Dirs:     getEnvAsList("CLEANUP_DIRS"),
			MaxAge:   getEnvAsDuration("CLEANUP_MAX_AGE", 24*time.Hour),
			Schedule: getEnv("CLEANUP_SCHEDULE", "0 */5 * * * *"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
