package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr          string
	DatabaseURL   string
	TeamCount     int
	RoundDuration time.Duration
	Seed          int64
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("BOARDROOM_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:          addr,
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TeamCount:     envIntDefault("BOARDROOM_TEAM_COUNT", 6),
		RoundDuration: envDurationDefault("BOARDROOM_ROUND_SECONDS", 5*time.Minute),
		Seed:          envInt64Default("BOARDROOM_SEED", 0),
	}
	if cfg.TeamCount < 1 || cfg.TeamCount > 12 {
		return cfg, fmt.Errorf("BOARDROOM_TEAM_COUNT must be between 1 and 12")
	}
	if cfg.RoundDuration <= 0 {
		return cfg, fmt.Errorf("BOARDROOM_ROUND_SECONDS must be positive")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("BRD_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// envDurationDefault accepts either a Go duration string ("5m") or a
// bare number of seconds ("300").
func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
