package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.General.TimeoutSecs != 300 {
		t.Errorf("default timeout = %d, want 300", cfg.General.TimeoutSecs)
	}
	if !cfg.General.Shell {
		t.Error("shell mode should default on")
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("default log level = %q", cfg.General.LogLevel)
	}
	if len(cfg.Policy.Safe) == 0 || len(cfg.Policy.Dangerous) == 0 {
		t.Error("default policy lists must be seeded")
	}
	if !cfg.History.MirrorEnabled {
		t.Error("history mirror should default on")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(LoadOptions{ProjectDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.TimeoutSecs != 300 {
		t.Errorf("timeout = %d, want 300", cfg.General.TimeoutSecs)
	}
	if cfg.Brain.Endpoint != "http://localhost:5000" {
		t.Errorf("brain endpoint = %q", cfg.Brain.Endpoint)
	}
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	userCfg := filepath.Join(home, ".nucleo", "config.toml")
	writeTOML(t, userCfg, map[string]any{
		"general": map[string]any{"timeout_seconds": 60, "log_level": "debug"},
	})

	project := t.TempDir()
	writeTOML(t, filepath.Join(project, ".nucleo", "config.toml"), map[string]any{
		"general": map[string]any{"timeout_seconds": 120},
	})

	cfg, err := Load(LoadOptions{ProjectDir: project})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.TimeoutSecs != 120 {
		t.Errorf("project should override user: timeout = %d", cfg.General.TimeoutSecs)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("user value should survive where project is silent: %q", cfg.General.LogLevel)
	}
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NUCLEO_TIMEOUT_SECONDS", "45")
	t.Setenv("NUCLEO_POLICY_SAFE", "ls, cat ,grep")

	project := t.TempDir()
	writeTOML(t, filepath.Join(project, ".nucleo", "config.toml"), map[string]any{
		"general": map[string]any{"timeout_seconds": 120},
	})

	cfg, err := Load(LoadOptions{ProjectDir: project})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.TimeoutSecs != 45 {
		t.Errorf("env should override project: timeout = %d", cfg.General.TimeoutSecs)
	}
	if len(cfg.Policy.Safe) != 3 || cfg.Policy.Safe[1] != "cat" {
		t.Errorf("env list parse failed: %v", cfg.Policy.Safe)
	}
}

func TestLoad_FlagsWin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NUCLEO_TIMEOUT_SECONDS", "45")

	cfg, err := Load(LoadOptions{
		ProjectDir:    t.TempDir(),
		FlagOverrides: map[string]any{"general.timeout_seconds": 15},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.TimeoutSecs != 15 {
		t.Errorf("flag should override env: timeout = %d", cfg.General.TimeoutSecs)
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NUCLEO_TIMEOUT_SECONDS", "soon")

	if _, err := Load(LoadOptions{ProjectDir: t.TempDir()}); err == nil {
		t.Fatal("non-integer timeout env must fail load")
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	project := t.TempDir()
	writeTOML(t, filepath.Join(project, ".nucleo", "config.toml"), map[string]any{
		"general": map[string]any{"timeout_seconds": -5},
	})

	if _, err := Load(LoadOptions{ProjectDir: project}); err == nil {
		t.Fatal("negative timeout must fail validation")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero timeout", func(c *Config) { c.General.TimeoutSecs = 0 }, "timeout_seconds"},
		{"bad log level", func(c *Config) { c.General.LogLevel = "verbose" }, "log_level"},
		{"empty policy", func(c *Config) { c.Policy.Safe = nil; c.Policy.Dangerous = nil }, "policy"},
		{"negative brain timeout", func(c *Config) { c.Brain.TimeoutSecs = -1 }, "brain"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		key  string
		raw  string
		want any
	}{
		{"general.timeout_seconds", "90", 90},
		{"general.shell", "false", false},
		{"general.log_level", "debug", "debug"},
	}
	for _, tc := range cases {
		got, err := ParseValue(tc.key, tc.raw)
		if err != nil {
			t.Fatalf("ParseValue(%s): %v", tc.key, err)
		}
		if got != tc.want {
			t.Errorf("ParseValue(%s, %q) = %v, want %v", tc.key, tc.raw, got, tc.want)
		}
	}

	if _, err := ParseValue("policy.safe", "ls,cat"); err != nil {
		t.Errorf("list parse: %v", err)
	}
	if _, err := ParseValue("general.timeout_seconds", "soon"); err == nil {
		t.Error("expected parse error for non-integer")
	}
	if _, err := ParseValue("no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestGetValue_CoversAllKeys(t *testing.T) {
	cfg := DefaultConfig()
	for _, key := range Keys() {
		if _, ok := GetValue(cfg, key); !ok {
			t.Errorf("GetValue missing key %q", key)
		}
	}
	if _, ok := GetValue(cfg, "bogus"); ok {
		t.Error("unknown key should not resolve")
	}
}

func TestWriteValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".nucleo", "config.toml")

	if err := WriteValue(path, "general.timeout_seconds", 42); err != nil {
		t.Fatalf("WriteValue: %v", err)
	}
	// Second write must preserve the first.
	if err := WriteValue(path, "brain.endpoint", "http://10.0.0.5:5000"); err != nil {
		t.Fatalf("WriteValue: %v", err)
	}

	var got map[string]any
	if _, err := toml.DecodeFile(path, &got); err != nil {
		t.Fatalf("decoding written config: %v", err)
	}
	general, ok := got["general"].(map[string]any)
	if !ok || general["timeout_seconds"] != int64(42) {
		t.Errorf("timeout not preserved: %v", got)
	}
	brain, ok := got["brain"].(map[string]any)
	if !ok || brain["endpoint"] != "http://10.0.0.5:5000" {
		t.Errorf("endpoint not written: %v", got)
	}
}

func TestJournalAndHistoryPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	if got := JournalPath(cfg); got != filepath.Join(home, ".nucleo", "journal.jsonl") {
		t.Errorf("JournalPath = %q", got)
	}
	if got := HistoryDBPath(cfg); got != filepath.Join(home, ".nucleo", "history.db") {
		t.Errorf("HistoryDBPath = %q", got)
	}

	cfg.Journal.Path = "/var/log/nucleo.jsonl"
	if got := JournalPath(cfg); got != "/var/log/nucleo.jsonl" {
		t.Errorf("explicit JournalPath = %q", got)
	}
}

func writeTOML(t *testing.T, path string, data map[string]any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(data); err != nil {
		t.Fatalf("encode: %v", err)
	}
}
