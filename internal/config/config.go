package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string

	LLMProvider   string // ollama | openai
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int

	AssistantMaxLoopSteps int
	AssistantRecentLimit  int
	AssistantPersonaFile  string

	InvoiceSweepEnabled bool
	InvoiceSweepCron    string
}

func FromEnv() Config {
	dataDir := stringOrDefault("FREETRACK_DATA_DIR", "/data")
	dbPath := stringOrDefault("FREETRACK_DB_PATH", filepath.Join(dataDir, "freetrack", "freetrack.sqlite"))

	return Config{
		Environment: stringOrDefault("FREETRACK_ENV", "development"),
		HTTPAddr:    stringOrDefault("FREETRACK_HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,

		LLMProvider:   stringOrDefault("FREETRACK_LLM_PROVIDER", "ollama"),
		LLMBaseURL:    stringOrDefault("FREETRACK_LLM_BASE_URL", "http://localhost:11434"),
		LLMAPIKey:     strings.TrimSpace(os.Getenv("FREETRACK_LLM_API_KEY")),
		LLMModel:      stringOrDefault("FREETRACK_LLM_MODEL", "mistral"),
		LLMTimeoutSec: intOrDefault("FREETRACK_LLM_TIMEOUT_SECONDS", 60),

		AssistantMaxLoopSteps: intOrDefault("FREETRACK_ASSISTANT_MAX_LOOP_STEPS", 3),
		AssistantRecentLimit:  intOrDefault("FREETRACK_ASSISTANT_RECENT_LIMIT", 10),
		AssistantPersonaFile:  strings.TrimSpace(os.Getenv("FREETRACK_PERSONA_FILE")),

		InvoiceSweepEnabled: boolOrDefault("FREETRACK_INVOICE_SWEEP_ENABLED", true),
		InvoiceSweepCron:    stringOrDefault("FREETRACK_INVOICE_SWEEP_CRON", "0 6 * * *"),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
