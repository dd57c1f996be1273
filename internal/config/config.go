// Package config provides runtime configuration values for the service
// binaries.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the knobs shared by the api and worker binaries. Zero
// values never occur; Load fills every field from the environment or a
// default.
type Config struct {
	HTTPPort          string
	PostgresURL       string
	RedisAddr         string
	KafkaBrokers      string
	CachePrefix       string
	CacheTTL          time.Duration
	CacheCapacity     int
	MusicBrainzURL    string
	EnrichTimeout     time.Duration
	LowStockThreshold int
	ShutdownTimeout   time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load collects configuration from environment variables with defaults.
// POSTGRES_URL has no default and must be checked by the caller; the
// optional REDIS_ADDR and KAFKA_BROKERS stay empty when unset and the
// corresponding integrations are skipped.
func Load() Config {
	return Config{
		HTTPPort:          getenv("PORT", "8080"),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		CachePrefix:       getenv("CACHE_PREFIX", "records"),
		CacheTTL:          durenvs("CACHE_TTL_SECONDS", 60),
		CacheCapacity:     atoienv("CACHE_CAPACITY", 100),
		MusicBrainzURL:    getenv("MUSICBRAINZ_URL", "https://musicbrainz.org/ws/2"),
		EnrichTimeout:     durenvs("MUSICBRAINZ_TIMEOUT_SECONDS", 10),
		LowStockThreshold: atoienv("LOW_STOCK_THRESHOLD", 5),
		ShutdownTimeout:   durenvs("SHUTDOWN_TIMEOUT_SECONDS", 10),
	}
}
