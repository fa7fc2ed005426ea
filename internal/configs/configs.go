/*
Package configs loads the application's runtime configuration.

Settings come from environment variables (optionally seeded from a .env file),
covering the running environment, listen port, CORS allowed origins, and the
message history window served to newly joined clients.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig contains all configuration parameters required for the server to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string

	// HistoryWindow bounds how far back the message snapshot for a newly
	// joined client reaches.
	HistoryWindow time.Duration
}

// LoadConfig reads and parses the application configuration from environment
// variables, applying defaults and validating values. A .env file in the
// working directory is loaded first if present.
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "3000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	if port < 1024 || port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the allowed range (1024-65535)", port)
	}
	cfg.Port = port

	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	windowStr := os.Getenv("HISTORY_WINDOW_HOURS")
	if windowStr == "" {
		windowStr = "24"
	}
	windowHours, err := strconv.Atoi(windowStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_WINDOW_HOURS environment variable: %w", err)
	}
	if windowHours <= 0 {
		return nil, fmt.Errorf("HISTORY_WINDOW_HOURS must be positive, got %d", windowHours)
	}
	cfg.HistoryWindow = time.Duration(windowHours) * time.Hour

	return cfg, nil
}
