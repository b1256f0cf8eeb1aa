package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the socratis CLI.
type Config struct {
	// APIURL is the base URL of the Socratis backend, including the API prefix.
	APIURL string
	// DataDir is where the session, theme preference and local history live.
	DataDir string
	// HTTPTimeout bounds every single request issued by the API client.
	HTTPTimeout time.Duration
}

const defaultAPIURL = "http://localhost:8000/api/v1"

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		// No .env is the common case; environment variables still apply.
	}

	cfg := Config{
		APIURL:      getEnv("SOCRATIS_API_URL", defaultAPIURL),
		DataDir:     getEnv("SOCRATIS_DATA_DIR", ""),
		HTTPTimeout: getEnvAsDuration("SOCRATIS_HTTP_TIMEOUT", 30*time.Second),
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			log.Fatalf("resolve data dir: %v", err)
		}
		cfg.DataDir = dir
	}
	return cfg
}

// DefaultDataDir resolves the per-user data directory, honoring XDG_CONFIG_HOME.
func DefaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "socratis"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "socratis"), nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
