package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	AppName     = "telegram-poker-bot"
	EnvFileName = "config.env"

	DefaultDBPath          = "tournaments.db"
	DefaultExternalTimeout = 8 * time.Second
)

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// Settings holds the runtime configuration read from the environment.
type Settings struct {
	BotToken        string
	GeminiAPIKey    string
	DatabaseURL     string
	DBPath          string
	SessionBackend  string
	ExternalTimeout time.Duration
	LogLevel        zerolog.Level
}

// OCREnabled reports whether ticket recognition can be configured.
func (s Settings) OCREnabled() bool {
	return s.GeminiAPIKey != ""
}

// LoadEnvFile loads environment variables from .env in the working directory
// and from the config file in the user's config directory. Errors are ignored
// since the files may not exist. Variables already set are not overridden.
func LoadEnvFile() {
	_ = godotenv.Load()

	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads settings from the process environment.
func Load() (Settings, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads settings using the given lookup function.
func FromLookup(lookup func(string) (string, bool)) (Settings, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	s := Settings{
		BotToken:        get("BOT_TOKEN"),
		GeminiAPIKey:    get("GEMINI_API_KEY"),
		DatabaseURL:     get("DATABASE_URL"),
		DBPath:          get("DB_PATH"),
		SessionBackend:  strings.ToLower(get("SESSION_BACKEND")),
		ExternalTimeout: DefaultExternalTimeout,
		LogLevel:        zerolog.InfoLevel,
	}

	if s.BotToken == "" {
		return s, fmt.Errorf("BOT_TOKEN is not set")
	}
	if s.DBPath == "" {
		s.DBPath = DefaultDBPath
	}

	switch s.SessionBackend {
	case "":
		s.SessionBackend = SessionBackendMemory
	case SessionBackendMemory, SessionBackendSQLite:
	default:
		return s, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", SessionBackendMemory, SessionBackendSQLite, s.SessionBackend)
	}

	if v := get("EXTERNAL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("invalid EXTERNAL_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return s, fmt.Errorf("EXTERNAL_TIMEOUT must be positive, got %s", d)
		}
		s.ExternalTimeout = d
	}

	if v := get("LOG_LEVEL"); v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return s, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		s.LogLevel = level
	}

	return s, nil
}
