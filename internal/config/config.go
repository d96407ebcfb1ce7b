package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv       string
	Port          string
	InspectorName string
	BaseURL       string
	Database      DatabaseConfig
	Local         LocalStoreConfig
	Refine        RefineConfig
	Sync          SyncConfig
}

// DatabaseConfig holds remote store (PostgreSQL) configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// LocalStoreConfig holds local draft/queue store configuration
type LocalStoreConfig struct {
	Path string // SQLite file path

	// DebounceInterval is the minimum quiet period between draft
	// writes; saves arriving faster than this collapse into one.
	DebounceInterval time.Duration
}

// RefineConfig holds AI refinement configuration
type RefineConfig struct {
	Backend      string // webhook, gemini
	WebhookURL   string
	Timeout      time.Duration
	GeminiAPIKey string
	GeminiModel  string
}

// SyncConfig holds queue drain and connectivity configuration
type SyncConfig struct {
	DrainInterval time.Duration
	ProbeURL      string // connectivity probe endpoint
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	refineBackend := getEnv("REFINE_BACKEND", "webhook")
	webhookURL := os.Getenv("REFINE_WEBHOOK_URL")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	switch refineBackend {
	case "webhook":
		if webhookURL == "" {
			return nil, fmt.Errorf("REFINE_WEBHOOK_URL is required for the webhook backend")
		}
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
		}
	default:
		return nil, fmt.Errorf("unknown REFINE_BACKEND %q (want webhook or gemini)", refineBackend)
	}

	return &Config{
		NodeEnv:       getEnv("NODE_ENV", "development"),
		Port:          getEnv("PORT", "3220"),
		InspectorName: os.Getenv("INSPECTOR_NAME"),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3220"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "fieldvoice"),
		},
		Local: LocalStoreConfig{
			Path:             getEnv("LOCAL_STORE_PATH", "./fieldvoice_local.db"),
			DebounceInterval: getDurationEnv("DRAFT_DEBOUNCE_MS", 300*time.Millisecond),
		},
		Refine: RefineConfig{
			Backend:      refineBackend,
			WebhookURL:   webhookURL,
			Timeout:      getDurationEnv("REFINE_TIMEOUT_MS", 30*time.Second),
			GeminiAPIKey: geminiKey,
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Sync: SyncConfig{
			DrainInterval: getDurationEnv("SYNC_DRAIN_INTERVAL_MS", 60*time.Second),
			ProbeURL:      getEnv("SYNC_PROBE_URL", webhookURL),
			ProbeInterval: getDurationEnv("SYNC_PROBE_INTERVAL_MS", 30*time.Second),
			ProbeTimeout:  getDurationEnv("SYNC_PROBE_TIMEOUT_MS", 10*time.Second),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a millisecond-valued environment variable
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
