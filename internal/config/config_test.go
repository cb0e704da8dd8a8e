package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	cfg := Load()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.VisionBackend)
	assert.Equal(t, 3*time.Second, cfg.TranscribePollInterval)
	assert.Equal(t, time.Duration(0), cfg.TranscribeMaxWait)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test123")
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("TRANSCRIBE_LANGUAGE", "en")
	t.Setenv("TRANSCRIBE_POLL_INTERVAL", "500ms")
	t.Setenv("TRANSCRIBE_MAX_WAIT", "2m")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "sk-or-test123", cfg.OpenRouterAPIKey)
	assert.Equal(t, "claude", cfg.VisionBackend)
	assert.Equal(t, "en", cfg.TranscribeLanguage)
	assert.Equal(t, 500*time.Millisecond, cfg.TranscribePollInterval)
	assert.Equal(t, 2*time.Minute, cfg.TranscribeMaxWait)
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("TRANSCRIBE_POLL_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.TranscribePollInterval)
}
