// Package config implements hierarchical configuration for nucleo.
// Precedence: defaults < user (~/.nucleo/config.toml) < project
// (.nucleo/config.toml) < env (NUCLEO_*) < flags.
package config

// Config is the top-level configuration structure.
type Config struct {
	General GeneralConfig `toml:"general" mapstructure:"general"`
	Policy  PolicyConfig  `toml:"policy" mapstructure:"policy"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Brain   BrainConfig   `toml:"brain" mapstructure:"brain"`
}

// GeneralConfig holds core dispatcher knobs.
type GeneralConfig struct {
	// TimeoutSecs bounds synchronous command execution.
	TimeoutSecs int `toml:"timeout_seconds" mapstructure:"timeout_seconds"`
	// Shell runs commands through `bash -c`.
	Shell bool `toml:"shell" mapstructure:"shell"`
	// LogLevel is the structured-log verbosity (debug|info|warn|error).
	LogLevel string `toml:"log_level" mapstructure:"log_level"`
}

// PolicyConfig seeds the classification lists. The lists are loaded once per
// process; the dispatcher never mutates them.
type PolicyConfig struct {
	Safe           []string `toml:"safe" mapstructure:"safe"`
	Dangerous      []string `toml:"dangerous" mapstructure:"dangerous"`
	Backgroundable []string `toml:"backgroundable" mapstructure:"backgroundable"`
}

// JournalConfig holds the append-only execution log settings.
type JournalConfig struct {
	// Path is the JSONL journal file; empty means ~/.nucleo/journal.jsonl.
	Path string `toml:"path" mapstructure:"path"`
}

// HistoryConfig holds the queryable execution-record mirror settings.
type HistoryConfig struct {
	// DatabasePath is the SQLite mirror; empty means ~/.nucleo/history.db.
	DatabasePath string `toml:"database_path" mapstructure:"database_path"`
	// MirrorEnabled toggles mirroring journal records into SQLite.
	MirrorEnabled bool `toml:"mirror_enabled" mapstructure:"mirror_enabled"`
}

// BrainConfig holds the external neural-nucleus bridge settings.
type BrainConfig struct {
	// Endpoint is the nucleus suggest API base URL.
	Endpoint string `toml:"endpoint" mapstructure:"endpoint"`
	// TimeoutSecs bounds a suggest round trip.
	TimeoutSecs int `toml:"timeout_seconds" mapstructure:"timeout_seconds"`
	// Context is an optional hint sent with every suggest call.
	Context string `toml:"context" mapstructure:"context"`
}
