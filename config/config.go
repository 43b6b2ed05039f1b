// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// DefaultAllowedOrigins are the local dev servers of the game frontend.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

type Config struct {
	Port string

	Database DatabaseConfig

	AllowedOrigins []string

	// Leaderboard cache; disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Leaderboard export; disabled when ExportInterval is zero.
	ExportInterval time.Duration
	R2             R2Config
	AppName        string
}

type DatabaseConfig struct {
	Driver       string
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// ExportEnabled reports whether periodic leaderboard export is on.
func (c *Config) ExportEnabled() bool {
	return c.ExportInterval > 0
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{
		Port:          getenv("PORT", "8000"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AppName:       getenv("APP_NAME", "Ping Pong Game"),
		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
		},
	}

	if cfg.Database, err = loadDatabase(); err != nil {
		return nil, err
	}

	cfg.AllowedOrigins = splitOrigins(os.Getenv("ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}

	if cfg.RedisDB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("LEADERBOARD_CACHE_TTL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ExportInterval, err = getenvDuration("EXPORT_INTERVAL", 0); err != nil {
		return nil, err
	}

	if cfg.ExportEnabled() {
		if cfg.R2.Bucket == "" || cfg.R2.AccountID == "" {
			return nil, errors.New("EXPORT_INTERVAL is set but R2_BUCKET_NAME or CLOUDFLARE_ACCOUNT_ID is missing")
		}
		if cfg.R2.AccessKeyID == "" || cfg.R2.AccessKeySecret == "" {
			return nil, errors.New("EXPORT_INTERVAL is set but R2 credentials are missing")
		}
	}

	return cfg, nil
}

func loadDatabase() (DatabaseConfig, error) {
	db := DatabaseConfig{
		Driver:   strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		URL:      os.Getenv("DATABASE_URL"),
		Host:     getenv("DB_HOST", "localhost"),
		User:     getenv("DB_USER", "root"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     getenv("DB_NAME", "ping-pong-game"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}

	var defaultPort int
	switch db.Driver {
	case DriverPostgres:
		defaultPort = 5432
	case DriverMySQL:
		defaultPort = 3306
	case DriverSQLite:
	default:
		return DatabaseConfig{}, fmt.Errorf("unsupported DB_DRIVER %q", db.Driver)
	}

	var err error
	if db.Port, err = getenvInt("DB_PORT", defaultPort); err != nil {
		return DatabaseConfig{}, err
	}
	if db.MaxOpenConns, err = getenvInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return DatabaseConfig{}, err
	}
	if db.MaxIdleConns, err = getenvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return DatabaseConfig{}, err
	}
	return db, nil
}

// DSN returns URL when set, otherwise a driver-specific DSN built from parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	switch d.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case DriverSQLite:
		return d.Name + ".db"
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	}
}

// String is safe to log: the password is never included.
func (d DatabaseConfig) String() string {
	return fmt.Sprintf("driver=%s host=%s port=%d user=%s db=%s", d.Driver, d.Host, d.Port, d.User, d.Name)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
