package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StorageDriver string
	DatabaseURL   string
	EnableDBCheck bool
	// MigrationsPath is a golang-migrate source URL, e.g. file://migrations.
	MigrationsPath string

	// RedisURL is optional; without it the report cache and worker are disabled.
	RedisURL       string
	ReportCacheTTL time.Duration

	AuthEnabled bool
	JWTSecret   string

	RateLimit          string
	CORSAllowedOrigins []string
	PosthogAPIKey      string

	ShuAccountCode            string
	ShuCounterAccountCode     string
	OpeningBalanceCounterCode string

	// ClientJenis is the jenis simpanan mapping served on /api/client-config.
	ClientJenis map[string]int64

	SnapshotRefreshCron string
	WorkerConcurrency   int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REPORT_CACHE_TTL", "10m")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("SHU_ACCOUNT_CODE", "3-1300")
	v.SetDefault("SHU_COUNTER_ACCOUNT_CODE", "3-9000")
	v.SetDefault("OPENING_BALANCE_COUNTER_CODE", "3-9000")
	v.SetDefault("CLIENT_CONFIG_JENIS", "harian=1,wajib=2")
	v.SetDefault("SNAPSHOT_REFRESH_CRON", "@hourly")
	v.SetDefault("WORKER_CONCURRENCY", 4)

	// Environment variables override the defaults above.
	v.AutomaticEnv()

	cfg := &Config{
		Port:                      v.GetString("PORT"),
		IsProduction:              v.GetBool("IS_PRODUCTION"),
		StorageDriver:             strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		DatabaseURL:               v.GetString("PGSQL_URL"),
		EnableDBCheck:             v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:            v.GetString("MIGRATIONS_PATH"),
		RedisURL:                  v.GetString("REDIS_URL"),
		AuthEnabled:               v.GetBool("AUTH_ENABLED"),
		JWTSecret:                 v.GetString("JWT_SECRET"),
		RateLimit:                 v.GetString("RATE_LIMIT"),
		PosthogAPIKey:             v.GetString("POSTHOG_API_KEY"),
		ShuAccountCode:            v.GetString("SHU_ACCOUNT_CODE"),
		ShuCounterAccountCode:     v.GetString("SHU_COUNTER_ACCOUNT_CODE"),
		OpeningBalanceCounterCode: v.GetString("OPENING_BALANCE_COUNTER_CODE"),
		SnapshotRefreshCron:       v.GetString("SNAPSHOT_REFRESH_CRON"),
		WorkerConcurrency:         v.GetInt("WORKER_CONCURRENCY"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %q", StorageDriverPostgres)
		}
	case StorageDriverMemory:
		log.Println("Warning: STORAGE_DRIVER=memory, the ledger will not survive a restart.")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	ttlStr := v.GetString("REPORT_CACHE_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 10 * time.Minute
		log.Printf("Warning: Invalid value for REPORT_CACHE_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl)
	}
	cfg.ReportCacheTTL = ttl

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set. Report cache and background worker are disabled.")
	}

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
	}

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 4
		log.Printf("Warning: WORKER_CONCURRENCY must be positive. Defaulting to %d.\n", cfg.WorkerConcurrency)
	}

	jenis, err := ParseJenis(v.GetString("CLIENT_CONFIG_JENIS"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLIENT_CONFIG_JENIS: %w", err)
	}
	cfg.ClientJenis = jenis

	return cfg, nil
}

// ParseJenis parses "harian=1,wajib=2" into a name to id map.
func ParseJenis(raw string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, pair := range splitList(raw) {
		name, idStr, ok := strings.Cut(pair, "=")
		name, idStr = strings.TrimSpace(name), strings.TrimSpace(idStr)
		if !ok || name == "" {
			return nil, fmt.Errorf("entry %q must look like name=id", pair)
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: id is not an integer", pair)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("duplicate jenis %q", name)
		}
		out[name] = id
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
