package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/punchclock/internal/earnings"
	"github.com/geocoder89/punchclock/internal/geo"
	"github.com/joho/godotenv"
)

const (
	DriverCSV      = "csv"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

type Config struct {
	Env  string
	Port int

	StorageDriver string
	DataDir       string
	BoltPath      string
	DBURL         string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SecretKey       string
	SessionTTLHours int

	HourlyWage      float64
	SiteName        string
	SiteLat         float64
	SiteLon         float64
	AllowedRadiusKm float64
	Timezone        string
	UniqueEmails    bool

	OTLPEndpoint string
	ServiceName  string

	LoginRateRPS       float64
	LoginRateBurst     int
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "err", err)
	}

	dataDir := getEnv("DATA_DIR", ".")

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverCSV)),
		DataDir:       dataDir,
		BoltPath:      getEnv("BOLT_PATH", filepath.Join(dataDir, "punchclock.db")),
		DBURL:         buildDBURL(),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SecretKey:       getEnv("SECRET_KEY", ""),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 12),

		HourlyWage:      getEnvFloat("HOURLY_WAGE", 22),
		SiteName:        getEnv("SITE_NAME", "Mercy University's Dobbs Ferry Campus"),
		SiteLat:         getEnvFloat("SITE_LAT", 41.0165728),
		SiteLon:         getEnvFloat("SITE_LON", -73.8610076),
		AllowedRadiusKm: getEnvFloat("ALLOWED_RADIUS_KM", 2),
		Timezone:        getEnv("TIMEZONE", "Local"),
		UniqueEmails:    getEnvBool("UNIQUE_EMAILS", false),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "punchclock"),

		LoginRateRPS:       getEnvFloat("LOGIN_RATE_RPS", 1),
		LoginRateBurst:     getEnvInt("LOGIN_RATE_BURST", 5),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

func (c Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case DriverCSV, DriverBolt, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be one of csv, bolt, postgres (got %q)", c.StorageDriver))
	}

	if c.HourlyWage <= 0 {
		errs = append(errs, fmt.Errorf("HOURLY_WAGE must be positive (got %v)", c.HourlyWage))
	}
	if c.AllowedRadiusKm <= 0 {
		errs = append(errs, fmt.Errorf("ALLOWED_RADIUS_KM must be positive (got %v)", c.AllowedRadiusKm))
	}
	if err := geo.ValidateCoordinate(c.SiteLat, c.SiteLon); err != nil {
		errs = append(errs, fmt.Errorf("SITE_LAT/SITE_LON: %w", err))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	if c.SecretKey == "" && c.Env != "dev" && c.Env != "test" {
		errs = append(errs, errors.New("SECRET_KEY is required outside dev"))
	}
	if c.SessionTTLHours <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL_HOURS must be positive (got %d)", c.SessionTTLHours))
	}

	return errors.Join(errs...)
}

func (c Config) Fence() geo.Fence {
	return geo.Fence{
		Name:     c.SiteName,
		Lat:      c.SiteLat,
		Lon:      c.SiteLon,
		RadiusKm: c.AllowedRadiusKm,
	}
}

func (c Config) Calculator() earnings.Calculator {
	return earnings.NewCalculator(c.HourlyWage)
}

// Location is the zone stored timestamps are written and read in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func buildDBURL() string {
	if url := getEnv("DATABASE_URL", ""); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "punchclock")
	pass := getEnv("DB_PASSWORD", "punchclock")
	name := getEnv("DB_NAME", "punchclock")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.ParseFloat(v, 64)

		if err != nil {
			slog.Warn("invalid number in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			slog.Warn("invalid boolean in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return b
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
