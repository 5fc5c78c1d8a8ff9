package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	shellwords "github.com/mattn/go-shellwords"
)

// CommandSpec describes how a command is executed.
type CommandSpec struct {
	// Raw is the full command line.
	Raw string
	// Argv is the parsed argument vector, used when Shell is false.
	Argv []string
	// Cwd is the working directory; empty means inherit.
	Cwd string
	// Shell runs Raw through `bash -c` instead of exec-ing Argv directly.
	Shell bool
}

// ExecResult is the capture of one synchronous execution.
type ExecResult struct {
	// Output is the combined stdout/stderr.
	Output string
	// ExitCode is the command's exit code; TimeoutExitCode if it timed out.
	ExitCode int
	// Duration is the measured wall-clock time.
	Duration time.Duration
	// TimedOut reports whether the context deadline killed the command.
	TimedOut bool
}

// RunCommand is the single narrow primitive that touches the OS: run one
// approved command under the caller's context, capture combined output, and
// report the exit code without treating non-zero exits as errors.
//
// When logPath is non-empty the capture is mirrored to that file under a
// small header. When streamWriter is non-nil the output is additionally
// streamed there as it arrives. A context deadline kills the process and is
// reported as ExitCode TimeoutExitCode with TimedOut set, matching the
// timeout(1) convention.
func RunCommand(ctx context.Context, spec *CommandSpec, logPath string, streamWriter io.Writer) (*ExecResult, error) {
	if spec == nil || spec.Raw == "" {
		return nil, ErrInvalidCommand
	}

	var cmd *exec.Cmd
	if spec.Shell {
		cmd = exec.CommandContext(ctx, "bash", "-c", spec.Raw)
	} else {
		argv := spec.Argv
		if len(argv) == 0 {
			parser := shellwords.NewParser()
			parsed, err := parser.Parse(spec.Raw)
			if err != nil {
				return nil, fmt.Errorf("parsing command: %w", err)
			}
			argv = parsed
		}
		if len(argv) == 0 {
			return nil, ErrInvalidCommand
		}
		cmd = exec.CommandContext(ctx, argv[0], argv[1:]...)
	}
	if spec.Cwd != "" {
		cmd.Dir = spec.Cwd
	}

	var capture bytes.Buffer
	writers := []io.Writer{&capture}

	var logFile *os.File
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening execution log: %w", err)
		}
		logFile = f
		defer logFile.Close()
		fmt.Fprintf(logFile, "=== nucleo command execution ===\n# %s\n# started %s\n\n",
			spec.Raw, time.Now().UTC().Format(time.RFC3339))
		writers = append(writers, logFile)
	}
	if streamWriter != nil {
		writers = append(writers, streamWriter)
	}

	sink := io.MultiWriter(writers...)
	cmd.Stdout = sink
	cmd.Stderr = sink

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &ExecResult{
		Output:   capture.String(),
		Duration: duration,
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = TimeoutExitCode
		return result, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			if result.ExitCode == TimeoutExitCode {
				result.TimedOut = true
			}
			return result, nil
		}
		// Spawn failure: the command never ran.
		return nil, fmt.Errorf("starting command: %w", runErr)
	}

	result.ExitCode = 0
	return result, nil
}
