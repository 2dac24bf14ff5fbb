package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AWS      AWSConfig
	Player   PlayerConfig
	Catalog  CatalogConfig
	Log      LogConfig
	GeoIP    GeoIPConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	BaseURL            string // public origin used to absolutize relative media paths; empty derives it per request
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int // 0 keeps the go-redis default
	DialTimeout time.Duration
}

// AWSConfig holds AWS credentials and the media bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	MediaPublicRead      bool
	PresignExpireMinutes int
}

// PlayerConfig holds settings for embed player sessions.
type PlayerConfig struct {
	AllowedAPIURLs   []string
	FetchTimeout     time.Duration
	AnalyticsTimeout time.Duration
	EndOfVideoTail   float64 // seconds before the end when end-of-video carousels may appear
}

// CatalogConfig holds catalog read cache settings.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// GeoIPConfig points at a MaxMind City database. Empty disables lookups.
type GeoIPConfig struct {
	DBPath string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	tail, err := getEnvFloat("PLAYER_END_OF_VIDEO_TAIL_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	if tail < 0 {
		return nil, fmt.Errorf("PLAYER_END_OF_VIDEO_TAIL_SECONDS must not be negative")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			BaseURL:            strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "shoppable"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 0)),
			MaxConnLifetime: time.Duration(getEnvInt("DB_MAX_CONN_LIFETIME_MIN", 30)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),

			PoolSize:    getEnvInt("REDIS_POOL_SIZE", 0),
			DialTimeout: time.Duration(getEnvInt("REDIS_DIAL_TIMEOUT_SEC", 5)) * time.Second,
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MediaBucket:          getEnv("AWS_S3_MEDIA_BUCKET", ""),
			MediaPublicRead:      getEnv("AWS_S3_MEDIA_PUBLIC", "false") == "true",
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Player: PlayerConfig{
			AllowedAPIURLs:   splitTrim(getEnv("PLAYER_ALLOWED_API_URLS", ""), ","),
			FetchTimeout:     time.Duration(getEnvInt("PLAYER_FETCH_TIMEOUT_SEC", 10)) * time.Second,
			AnalyticsTimeout: time.Duration(getEnvInt("PLAYER_ANALYTICS_TIMEOUT_SEC", 5)) * time.Second,
			EndOfVideoTail:   tail,
		},
		Catalog: CatalogConfig{
			CacheTTL: time.Duration(getEnvInt("CATALOG_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		},
		GeoIP: GeoIPConfig{
			DBPath: getEnv("GEOIP_DB_PATH", ""),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
