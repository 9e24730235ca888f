package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "processes:json", cfg.ProcessKey)
	assert.Empty(t, cfg.DefaultOutputLocation)
	assert.Equal(t, 5*time.Second, cfg.RunTimeout)
	assert.Equal(t, 4, cfg.WorkerCount)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DEFAULT_OUTPUT_LOCATION", "7")
	t.Setenv("RUN_TIMEOUT", "30s")
	t.Setenv("WORKER_COUNT", "8")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "7", cfg.DefaultOutputLocation)
	assert.Equal(t, 30*time.Second, cfg.RunTimeout)
	assert.Equal(t, 8, cfg.WorkerCount)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RUN_TIMEOUT", "soon")
	t.Setenv("WORKER_COUNT", "many")

	cfg := FromEnv()
	assert.Equal(t, 5*time.Second, cfg.RunTimeout)
	assert.Equal(t, 4, cfg.WorkerCount)
}
