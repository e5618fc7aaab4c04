package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	DBDriver    string
	DBDSN       string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
	RateRPS     int
	StaleRefs   string
	SeedFile    string
	SeedReset   bool
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Msg("ignoring non-integer value")
		}
		return def
	}
	driver := env("DB_DRIVER", "mysql")
	dsn := "root:root@tcp(localhost:3306)/hr?parseTime=true&charset=utf8mb4,utf8&loc=UTC"
	if driver == "sqlite3" {
		dsn = "file:hr.db?_busy_timeout=5000"
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		DBDriver:    driver,
		DBDSN:       env("DB_DSN", dsn),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		RateRPS:     atoi("RATE_LIMIT_RPS", 50),
		StaleRefs:   env("STALE_REFS", "strict"),
		SeedFile:    env("SEED_FILE", ""),
		SeedReset:   env("SEED_RESET", "false") == "true",
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
