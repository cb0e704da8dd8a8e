package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string
	MediaPath  string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	VisionBackend     string
	VisionModel       string
	NutritionModel    string
	ClaudeAPIKey      string
	ClaudeModel       string

	AssemblyAIAPIKey       string
	TranscribeLanguage     string
	TranscribePollInterval time.Duration
	TranscribeMaxWait      time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() *Config {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/nutrisnap.db"),
		MediaPath:  getEnv("MEDIA_PATH", "/data/media"),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", ""),
		VisionBackend:     getEnv("VISION_BACKEND", "openrouter"),
		VisionModel:       getEnv("VISION_MODEL", "google/gemini-pro-vision"),
		NutritionModel:    getEnv("NUTRITION_MODEL", "openai/gpt-3.5-turbo"),
		ClaudeAPIKey:      getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),

		AssemblyAIAPIKey:       getEnv("ASSEMBLYAI_API_KEY", ""),
		TranscribeLanguage:     getEnv("TRANSCRIBE_LANGUAGE", "id"),
		TranscribePollInterval: getDuration("TRANSCRIBE_POLL_INTERVAL", 3*time.Second),
		TranscribeMaxWait:      getDuration("TRANSCRIBE_MAX_WAIT", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not parse duration from env var %s=%q: %v. Using default value.\n", key, raw, err)
		return defaultVal
	}
	return d
}
