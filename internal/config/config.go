package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds all runtime configuration parameters
type Config struct {
	TargetURL         string `json:"target_url"`
	NATSURL           string `json:"nats_url"`
	BadgeSubject      string `json:"badge_subject"`
	BadgeTimeoutMs    int    `json:"badge_timeout_ms"`
	DBPath            string `json:"db_path"`
	PrefsPath         string `json:"prefs_path"`
	ListenAddr        string `json:"listen_addr"`
	Headless          bool   `json:"headless"`
	ReportAllChanges  bool   `json:"report_all_changes"`
	NavigateTimeoutMs int    `json:"navigate_timeout_ms"`
}

// LoadConfig reads and validates configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.NATSURL == "" {
		cfg.NATSURL = "nats://127.0.0.1:4222"
	}
	if cfg.BadgeSubject == "" {
		cfg.BadgeSubject = "vitals.badge"
	}
	if cfg.BadgeTimeoutMs == 0 {
		cfg.BadgeTimeoutMs = 2000
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "vitalview.db"
	}
	if cfg.PrefsPath == "" {
		cfg.PrefsPath = "prefs.json"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":9109"
	}
	if cfg.NavigateTimeoutMs == 0 {
		cfg.NavigateTimeoutMs = 60000
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if cfg.TargetURL == "" {
		return fmt.Errorf("target_url is required")
	}
	if cfg.BadgeTimeoutMs < 100 {
		return fmt.Errorf("badge_timeout_ms must be >= 100")
	}
	if cfg.NavigateTimeoutMs < 1000 {
		return fmt.Errorf("navigate_timeout_ms must be >= 1000")
	}
	return nil
}
