package config

import (
	"fmt"
	"strings"
)

var knownModules = map[string]struct{}{
	"distribution": {},
	"token":        {},
}

// Validate rejects configurations the node cannot start with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}
	if _, err := cfg.Program(); err != nil {
		return fmt.Errorf("ProgramID: %w", err)
	}
	if _, _, err := cfg.TokenPrograms(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("DataDir must not be empty")
	}
	for _, m := range cfg.PausedModules {
		if _, ok := knownModules[strings.ToLower(strings.TrimSpace(m))]; !ok {
			return fmt.Errorf("PausedModules: unknown module %q", m)
		}
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("Log.Format: must be json or text, got %q", cfg.Log.Format)
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("Log.Level: unknown level %q", cfg.Log.Level)
	}
	if (cfg.Telemetry.Traces || cfg.Telemetry.Metrics) && strings.TrimSpace(cfg.Telemetry.Endpoint) == "" {
		return fmt.Errorf("Telemetry.Endpoint required when exporters are enabled")
	}
	return nil
}
