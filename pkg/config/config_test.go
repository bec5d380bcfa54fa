package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, StorageDriverFile, cfg.Storage.Driver)
	assert.Equal(t, "edusmart_ai_data", cfg.Storage.Key)
	assert.Equal(t, time.Duration(0), cfg.AI.AttemptTimeout)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
	assert.Equal(t, 1, cfg.Exports.WorkerConcurrency)
	assert.Len(t, cfg.CORS.AllowedOrigins, 2)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORAGE_DRIVER", " Redis ")
	v.Set("AI_ATTEMPT_TIMEOUT", "45s")
	v.Set("GEMINI_API_KEY", "  key-1 ")
	v.Set("EXPORTS_WORKER_CONCURRENCY", 0)
	v.Set("EXPORTS_CLEANUP_INTERVAL", "not-a-duration")

	cfg := fromViper(v)
	assert.Equal(t, StorageDriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 45*time.Second, cfg.AI.AttemptTimeout)
	assert.Equal(t, "key-1", cfg.AI.APIKey)
	assert.Equal(t, 1, cfg.Exports.WorkerConcurrency)
	assert.Equal(t, 30*time.Minute, cfg.Exports.CleanupInterval)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
