package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRunCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell execution tests use Unix commands")
	}

	t.Run("shell mode executes raw command", func(t *testing.T) {
		spec := &CommandSpec{
			Raw:   "echo 'hello world'",
			Shell: true,
		}
		result, err := RunCommand(context.Background(), spec, "", nil)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		if result.ExitCode != 0 {
			t.Errorf("exit code = %d, want 0", result.ExitCode)
		}
		if !strings.Contains(result.Output, "hello world") {
			t.Errorf("output = %q, want to contain 'hello world'", result.Output)
		}
	})

	t.Run("argv mode parses raw when empty", func(t *testing.T) {
		spec := &CommandSpec{
			Raw:   "echo direct",
			Shell: false,
		}
		result, err := RunCommand(context.Background(), spec, "", nil)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		if !strings.Contains(result.Output, "direct") {
			t.Errorf("output = %q, want to contain 'direct'", result.Output)
		}
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		spec := &CommandSpec{
			Raw:   "exit 3",
			Shell: true,
		}
		result, err := RunCommand(context.Background(), spec, "", nil)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		if result.ExitCode != 3 {
			t.Errorf("exit code = %d, want 3", result.ExitCode)
		}
		if result.TimedOut {
			t.Error("TimedOut should be false for a plain failure")
		}
	})

	t.Run("captures stderr", func(t *testing.T) {
		spec := &CommandSpec{
			Raw:   "echo oops >&2",
			Shell: true,
		}
		result, err := RunCommand(context.Background(), spec, "", nil)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		if !strings.Contains(result.Output, "oops") {
			t.Errorf("stderr missing from capture: %q", result.Output)
		}
	})

	t.Run("context deadline maps to timeout exit code", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		spec := &CommandSpec{
			Raw:   "sleep 5",
			Shell: true,
		}
		result, err := RunCommand(ctx, spec, "", nil)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		if !result.TimedOut {
			t.Error("TimedOut should be true")
		}
		if result.ExitCode != TimeoutExitCode {
			t.Errorf("exit code = %d, want %d", result.ExitCode, TimeoutExitCode)
		}
	})

	t.Run("cwd is honored", func(t *testing.T) {
		dir := t.TempDir()
		spec := &CommandSpec{
			Raw:   "pwd",
			Cwd:   dir,
			Shell: true,
		}
		result, err := RunCommand(context.Background(), spec, "", nil)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		// macOS prefixes /private to temp dirs; compare suffix.
		if !strings.Contains(result.Output, filepath.Base(dir)) {
			t.Errorf("pwd output %q does not reflect cwd %q", result.Output, dir)
		}
	})

	t.Run("mirrors output to log file with header", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "exec.log")
		spec := &CommandSpec{
			Raw:   "echo logged",
			Shell: true,
		}
		if _, err := RunCommand(context.Background(), spec, logPath, nil); err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		data, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("reading log: %v", err)
		}
		content := string(data)
		if !strings.Contains(content, "nucleo command execution") {
			t.Errorf("log missing header: %q", content)
		}
		if !strings.Contains(content, "logged") {
			t.Errorf("log missing output: %q", content)
		}
	})

	t.Run("streams output while capturing", func(t *testing.T) {
		var stream bytes.Buffer
		spec := &CommandSpec{
			Raw:   "echo streamed",
			Shell: true,
		}
		result, err := RunCommand(context.Background(), spec, "", &stream)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		if !strings.Contains(stream.String(), "streamed") {
			t.Errorf("stream missing output: %q", stream.String())
		}
		if !strings.Contains(result.Output, "streamed") {
			t.Errorf("capture missing output: %q", result.Output)
		}
	})

	t.Run("spawn failure is an error", func(t *testing.T) {
		spec := &CommandSpec{
			Raw:   "definitely-not-a-real-binary-xyz",
			Shell: false,
		}
		if _, err := RunCommand(context.Background(), spec, "", nil); err == nil {
			t.Fatal("expected spawn error")
		}
	})

	t.Run("nil and empty specs rejected", func(t *testing.T) {
		if _, err := RunCommand(context.Background(), nil, "", nil); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("nil spec err = %v", err)
		}
		if _, err := RunCommand(context.Background(), &CommandSpec{}, "", nil); !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("empty spec err = %v", err)
		}
	})

	t.Run("duration is measured", func(t *testing.T) {
		spec := &CommandSpec{
			Raw:   "sleep 0.2",
			Shell: true,
		}
		result, err := RunCommand(context.Background(), spec, "", nil)
		if err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		if result.Duration < 100*time.Millisecond {
			t.Errorf("duration = %v, expected at least 100ms", result.Duration)
		}
	})
}
