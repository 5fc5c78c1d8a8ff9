package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for semantic errors.
func Validate(cfg Config) error {
	var errs []string

	if cfg.General.TimeoutSecs <= 0 {
		errs = append(errs, "general.timeout_seconds must be > 0")
	}
	if !oneOf(cfg.General.LogLevel, "debug", "info", "warn", "error") {
		errs = append(errs, "general.log_level must be one of debug|info|warn|error")
	}

	if len(cfg.Policy.Safe) == 0 && len(cfg.Policy.Dangerous) == 0 {
		errs = append(errs, "policy lists are empty: every command would classify unknown")
	}

	if cfg.Brain.TimeoutSecs < 0 {
		errs = append(errs, "brain.timeout_seconds cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func oneOf(val string, options ...string) bool {
	for _, opt := range options {
		if val == opt {
			return true
		}
	}
	return false
}
