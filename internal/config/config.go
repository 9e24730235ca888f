// Package config collects the explicit runtime configuration. Nothing
// else in the engine reads the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string

	// ProcessKey is the Redis key holding the serialized process list.
	ProcessKey string

	// DefaultOutputLocation is the stock location id for newly created
	// output records. Empty means unconfigured.
	DefaultOutputLocation string

	RunTimeout  time.Duration
	WorkerCount int
	QueueSize   int
}

func FromEnv() Config {
	return Config{
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:              getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/processes?parseTime=true"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		ProcessKey:            getEnv("PROCESS_KEY", "processes:json"),
		DefaultOutputLocation: getEnv("DEFAULT_OUTPUT_LOCATION", ""),
		RunTimeout:            getDuration("RUN_TIMEOUT", 5*time.Second),
		WorkerCount:           getInt("WORKER_COUNT", 4),
		QueueSize:             getInt("QUEUE_SIZE", 1024),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
