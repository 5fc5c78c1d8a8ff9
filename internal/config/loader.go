package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ProjectDir is used to locate .nucleo/config.toml. Defaults to CWD.
	ProjectDir string
	// ConfigPath overrides the project config path if provided.
	ConfigPath string
	// FlagOverrides are highest-priority overrides from CLI flags
	// (dot-notated keys).
	FlagOverrides map[string]any
}

// Load returns the effective configuration after applying precedence:
// defaults < user (~/.nucleo/config.toml) < project (.nucleo/config.toml)
// < env (NUCLEO_*) < flags.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	projectDir := opts.ProjectDir
	if projectDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			projectDir = cwd
		}
	}

	// 1) User config
	if err := mergeConfigFile(v, UserConfigPath()); err != nil {
		return Config{}, err
	}
	// 2) Project config
	if err := mergeConfigFile(v, projectConfigPath(projectDir, opts.ConfigPath)); err != nil {
		return Config{}, err
	}
	// 3) Environment variables
	if err := applyEnvOverrides(v); err != nil {
		return Config{}, err
	}
	// 4) CLI flags (highest)
	applyFlagOverrides(v, opts.FlagOverrides)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults seeds viper with built-in defaults.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("general.timeout_seconds", def.General.TimeoutSecs)
	v.SetDefault("general.shell", def.General.Shell)
	v.SetDefault("general.log_level", def.General.LogLevel)

	v.SetDefault("policy.safe", def.Policy.Safe)
	v.SetDefault("policy.dangerous", def.Policy.Dangerous)
	v.SetDefault("policy.backgroundable", def.Policy.Backgroundable)

	v.SetDefault("journal.path", def.Journal.Path)

	v.SetDefault("history.database_path", def.History.DatabasePath)
	v.SetDefault("history.mirror_enabled", def.History.MirrorEnabled)

	v.SetDefault("brain.endpoint", def.Brain.Endpoint)
	v.SetDefault("brain.timeout_seconds", def.Brain.TimeoutSecs)
	v.SetDefault("brain.context", def.Brain.Context)
}

// mergeConfigFile merges the TOML config file if it exists.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides reads NUCLEO_* env vars and applies them.
func applyEnvOverrides(v *viper.Viper) error {
	for _, binding := range envBindings {
		val := os.Getenv(binding.Env)
		if val == "" {
			continue
		}
		parsed, err := parseValueByKind(val, binding.Kind)
		if err != nil {
			return fmt.Errorf("env %s: %w", binding.Env, err)
		}
		v.Set(binding.Key, parsed)
	}
	return nil
}

// applyFlagOverrides applies CLI overrides as highest-precedence values.
func applyFlagOverrides(v *viper.Viper, overrides map[string]any) {
	for k, val := range overrides {
		v.Set(k, val)
	}
}

// UserConfigPath returns ~/.nucleo/config.toml.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nucleo", "config.toml")
}

// DataDir returns ~/.nucleo, the default home for the journal and mirror.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nucleo"
	}
	return filepath.Join(home, ".nucleo")
}

func projectConfigPath(projectDir, override string) string {
	if override != "" {
		return override
	}
	if projectDir == "" {
		return ".nucleo/config.toml"
	}
	return filepath.Join(projectDir, ".nucleo", "config.toml")
}

// JournalPath resolves the effective journal file path.
func JournalPath(cfg Config) string {
	if cfg.Journal.Path != "" {
		return cfg.Journal.Path
	}
	return filepath.Join(DataDir(), "journal.jsonl")
}

// HistoryDBPath resolves the effective history mirror path.
func HistoryDBPath(cfg Config) string {
	if cfg.History.DatabasePath != "" {
		return cfg.History.DatabasePath
	}
	return filepath.Join(DataDir(), "history.db")
}

// ParseValue parses a raw string into the expected type for a config key.
func ParseValue(key, raw string) (any, error) {
	kind, ok := keyKinds[key]
	if !ok {
		return nil, fmt.Errorf("unsupported key %q", key)
	}
	return parseValueByKind(raw, kind)
}

// GetValue retrieves a dot-notated value from the Config.
func GetValue(cfg Config, key string) (any, bool) {
	switch key {
	case "general.timeout_seconds":
		return cfg.General.TimeoutSecs, true
	case "general.shell":
		return cfg.General.Shell, true
	case "general.log_level":
		return cfg.General.LogLevel, true
	case "policy.safe":
		return cfg.Policy.Safe, true
	case "policy.dangerous":
		return cfg.Policy.Dangerous, true
	case "policy.backgroundable":
		return cfg.Policy.Backgroundable, true
	case "journal.path":
		return cfg.Journal.Path, true
	case "history.database_path":
		return cfg.History.DatabasePath, true
	case "history.mirror_enabled":
		return cfg.History.MirrorEnabled, true
	case "brain.endpoint":
		return cfg.Brain.Endpoint, true
	case "brain.timeout_seconds":
		return cfg.Brain.TimeoutSecs, true
	case "brain.context":
		return cfg.Brain.Context, true
	default:
		return nil, false
	}
}

// Keys returns every supported dot-notated config key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteValue sets a single key/value into the specified TOML config file
// (creating it if needed).
func WriteValue(path, key string, value any) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	var existing map[string]any
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &existing); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
		if existing == nil {
			existing = map[string]any{}
		}
	} else {
		existing = map[string]any{}
	}

	if err := setNested(existing, key, value); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create config %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(existing); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func setNested(m map[string]any, key string, value any) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return fmt.Errorf("invalid key %q", key)
	}
	cur := m
	for i, p := range parts {
		if i == len(parts)-1 {
			cur[p] = value
			return nil
		}
		next, ok := cur[p]
		if !ok {
			child := map[string]any{}
			cur[p] = child
			cur = child
			continue
		}
		childMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot set %s: %s is not a table", key, strings.Join(parts[:i+1], "."))
		}
		cur = childMap
	}
	return nil
}

// Helpers for env + parsing ---------------------------------------------------

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindInt
	kindStringSlice
)

var keyKinds = map[string]valueKind{
	"general.timeout_seconds": kindInt,
	"general.shell":           kindBool,
	"general.log_level":       kindString,

	"policy.safe":           kindStringSlice,
	"policy.dangerous":      kindStringSlice,
	"policy.backgroundable": kindStringSlice,

	"journal.path": kindString,

	"history.database_path":  kindString,
	"history.mirror_enabled": kindBool,

	"brain.endpoint":        kindString,
	"brain.timeout_seconds": kindInt,
	"brain.context":         kindString,
}

var envBindings = []struct {
	Env  string
	Key  string
	Kind valueKind
}{
	{"NUCLEO_TIMEOUT_SECONDS", "general.timeout_seconds", kindInt},
	{"NUCLEO_SHELL", "general.shell", kindBool},
	{"NUCLEO_LOG_LEVEL", "general.log_level", kindString},

	{"NUCLEO_POLICY_SAFE", "policy.safe", kindStringSlice},
	{"NUCLEO_POLICY_DANGEROUS", "policy.dangerous", kindStringSlice},
	{"NUCLEO_POLICY_BACKGROUNDABLE", "policy.backgroundable", kindStringSlice},

	{"NUCLEO_JOURNAL_PATH", "journal.path", kindString},

	{"NUCLEO_HISTORY_DB_PATH", "history.database_path", kindString},
	{"NUCLEO_HISTORY_MIRROR", "history.mirror_enabled", kindBool},

	{"NUCLEO_BRAIN_ENDPOINT", "brain.endpoint", kindString},
	{"NUCLEO_BRAIN_TIMEOUT_SECONDS", "brain.timeout_seconds", kindInt},
	{"NUCLEO_BRAIN_CONTEXT", "brain.context", kindString},
}

func parseValueByKind(raw string, kind valueKind) (any, error) {
	switch kind {
	case kindString:
		return raw, nil
	case kindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected boolean: %w", err)
		}
		return v, nil
	case kindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected integer: %w", err)
		}
		return v, nil
	case kindStringSlice:
		parts := strings.Split(raw, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported value kind")
	}
}
